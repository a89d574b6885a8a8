package store

import (
	"os"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/camuso/kabiparser/internal/graph"
	"github.com/camuso/kabiparser/internal/kabierr"
)

// PureGoBackend is the cgo-free alternative to SQLiteBackend, used behind
// the same Backend interface wherever -pure-sqlite is set — for
// cross-compiled builds and CI sandboxes without a C toolchain. This is the
// one teacher dependency (glebarez/sqlite) that sat unwired in the original
// go.mod; it earns a real caller here.
type PureGoBackend struct {
	db *gorm.DB
}

// OpenPure connects to a local file DSN via glebarez/sqlite and runs the
// same migration SQLiteBackend does. Remote libsql DSNs are not supported
// by this backend — only SQLiteBackend accepts those.
func OpenPure(dsn string) (*PureGoBackend, error) {
	if dir := filepath.Dir(dsn); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, kabierr.Wrap(kabierr.IOOpen, "create database directory", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, kabierr.Wrap(kabierr.IOOpen, "connect to "+dsn, err)
	}
	if err := db.AutoMigrate(&declNodeRow{}, &instanceRow{}); err != nil {
		return nil, kabierr.Wrap(kabierr.IOOpen, "migrate schema", err)
	}
	return &PureGoBackend{db: db}, nil
}

func (b *PureGoBackend) Load() (*graph.Store, error) {
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

func (b *PureGoBackend) Save(s *graph.Store) error {
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

func (b *PureGoBackend) Close() error {
	sqlDB, err := b.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
