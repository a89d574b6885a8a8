package store

import (
	"database/sql"
	"database/sql/driver"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	libsql "github.com/tursodatabase/libsql-client-go/libsql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/camuso/kabiparser/internal/graph"
	"github.com/camuso/kabiparser/internal/kabierr"
)

// SQLiteBackend is the default Backend: GORM over mattn/go-sqlite3 for a
// plain file DSN, or over the tursodatabase libsql client for a remote
// libsql://-style DSN. Grounded on the teacher's db.Connect/db/sqlite.go.
type SQLiteBackend struct {
	db   *gorm.DB
	conn *sql.DB
}

// Open connects to dsn, creating its containing directory for file-based
// DSNs, and runs the decl_nodes/instances migration.
func Open(dsn string) (*SQLiteBackend, error) {
	if !isURL(dsn) {
		if dir := filepath.Dir(dsn); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, kabierr.Wrap(kabierr.IOOpen, "create database directory", err)
			}
		}
	}

	var (
		dialector gorm.Dialector
		conn      *sql.DB
	)
	if isURL(dsn) {
		var (
			connector driver.Connector
			err       error
		)
		if token := os.Getenv("KABI_LIBSQL_AUTH_TOKEN"); token != "" {
			connector, err = libsql.NewConnector(dsn, libsql.WithAuthToken(token))
		} else {
			connector, err = libsql.NewConnector(dsn)
		}
		if err != nil {
			return nil, kabierr.Wrap(kabierr.IOOpen, "create libsql connector", err)
		}
		conn = sql.OpenDB(connector)
		dialector = sqlite.New(sqlite.Config{DriverName: "libsql", Conn: conn, DSN: dsn})
	} else {
		dialector = sqlite.Open(dsn)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		if conn != nil {
			conn.Close()
		}
		return nil, kabierr.Wrap(kabierr.IOOpen, "connect to "+dsn, err)
	}

	if err := db.AutoMigrate(&declNodeRow{}, &instanceRow{}); err != nil {
		return nil, kabierr.Wrap(kabierr.IOOpen, "migrate schema", err)
	}

	return &SQLiteBackend{db: db, conn: conn}, nil
}

// isURL reports whether dsn names a remote libsql endpoint rather than a
// local file path.
func isURL(dsn string) bool {
	return strings.HasPrefix(dsn, "http://") || strings.HasPrefix(dsn, "https://") || strings.HasPrefix(dsn, "libsql")
}

// Load reads every decl_nodes/instances row back into a fresh graph.Store.
// An absent or empty database yields an empty store, not an error.
func (b *SQLiteBackend) Load() (*graph.Store, error) {
	var declRows []declNodeRow
	if err := b.db.Find(&declRows).Error; err != nil {
		return nil, kabierr.Wrap(kabierr.IOFormat, "read decl_nodes", err)
	}
	var instRows []instanceRow
	if err := b.db.Find(&instRows).Error; err != nil {
		return nil, kabierr.Wrap(kabierr.IOFormat, "read instances", err)
	}
	return loadStore(declRows, instRows), nil
}

// Save truncates and rewrites both tables with s's full contents. A builder
// or compaction run always writes a complete snapshot, never a delta.
func (b *SQLiteBackend) Save(s *graph.Store) error {
	declRows, instRows := dumpStore(s)

	return b.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&instanceRow{}).Error; err != nil {
			return err
		}
		if err := tx.Where("1 = 1").Delete(&declNodeRow{}).Error; err != nil {
			return err
		}
		if len(declRows) > 0 {
			if err := tx.CreateInBatches(declRows, 200).Error; err != nil {
				return err
			}
		}
		if len(instRows) > 0 {
			if err := tx.CreateInBatches(instRows, 200).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Close releases the underlying database connection.
func (b *SQLiteBackend) Close() error {
	sqlDB, err := b.db.DB()
	if err != nil {
		return fmt.Errorf("sqlite backend: %w", err)
	}
	return sqlDB.Close()
}
