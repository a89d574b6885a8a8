package frontend

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"sync/atomic"

	sitter "github.com/smacker/go-tree-sitter"
)

// Cache holds parsed trees keyed by the SHA-256 of their source, so an
// input file whose bytes match one already parsed by the same Parser skips
// the tree-sitter parse. The cache lives in memory only; nothing carries
// over from one builder invocation to the next. Grounded on providers/base.ASTCache; simplified to drop that
// cache's time-based eviction, since a kabi-builder invocation is a single
// short-lived process with no long-running cache to prune.
type Cache struct {
	entries sync.Map // sha256 hex -> *sitter.Tree
	hits    atomic.Int64
	misses  atomic.Int64
}

// NewCache returns an empty Cache.
func NewCache() *Cache { return &Cache{} }

// GetOrParse returns the cached tree for source if present, else parses it
// with parser and caches the result.
func (c *Cache) GetOrParse(ctx context.Context, parser *sitter.Parser, source []byte) (*sitter.Tree, error) {
	key := c.hash(source)

	if cached, ok := c.entries.Load(key); ok {
		c.hits.Add(1)
		return cached.(*sitter.Tree).Copy(), nil
	}

	c.misses.Add(1)
	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, err
	}

	if existing, loaded := c.entries.LoadOrStore(key, tree.Copy()); loaded {
		return existing.(*sitter.Tree).Copy(), nil
	}
	return tree, nil
}

func (c *Cache) hash(source []byte) string {
	sum := sha256.Sum256(source)
	return hex.EncodeToString(sum[:])
}

// Stats reports cache hit/miss counts.
func (c *Cache) Stats() map[string]int64 {
	return map[string]int64{
		"hits":   c.hits.Load(),
		"misses": c.misses.Load(),
	}
}
