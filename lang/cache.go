package lang

import (
	"context"
	"io"
	"log/slog"
	"strconv"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/klauspost/readahead"
	"github.com/zeebo/xxh3"
	"golang.org/x/sync/singleflight"

	"github.com/ardnew/abuild/log"
)

// DefaultCacheSize is the number of parsed buildfiles retained by a [Cache]
// created with a non-positive size.
const DefaultCacheSize = 64

// Cache memoizes parsed ASTs keyed by a hash of their source text.
//
// Concurrent requests for the same uncached source share a single parse.
// Cached ASTs are shared between callers and must not be modified.
type Cache struct {
	entries *lru.Cache[uint64, *AST]
	group   singleflight.Group
	opts    []Option
}

// NewCache returns a cache holding at most size parsed trees. The options
// are applied to every parse.
func NewCache(size int, opts ...Option) *Cache {
	if size <= 0 {
		size = DefaultCacheSize
	}

	// lru.New only fails for non-positive sizes
	entries, _ := lru.New[uint64, *AST](size)

	return &Cache{entries: entries, opts: opts}
}

// ParseReader reads all of r and parses it through the cache.
func (c *Cache) ParseReader(ctx context.Context, r io.Reader) (*AST, error) {
	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return nil, ErrReadInput.Wrap(err).
			With(slog.String("source", "reader"))
	}

	return c.ParseString(ctx, string(data))
}

// ParseString parses s, returning a cached tree if s was parsed before.
func (c *Cache) ParseString(ctx context.Context, s string) (*AST, error) {
	key := xxh3.HashString(s)
	logger := c.logger()

	if ast, ok := c.entries.Get(key); ok {
		logger.TraceContext(ctx, "cache lookup",
			slog.String("source_hash", strconv.FormatUint(key, 16)),
			slog.Bool("cache_hit", true))

		return ast, nil
	}

	logger.TraceContext(ctx, "cache lookup",
		slog.String("source_hash", strconv.FormatUint(key, 16)),
		slog.Bool("cache_hit", false))

	v, err, _ := c.group.Do(strconv.FormatUint(key, 36), func() (any, error) {
		ast, err := ParseString(ctx, s, c.opts...)
		if err != nil {
			return nil, err
		}

		c.entries.Add(key, ast)

		return ast, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*AST), nil
}

// Len returns the number of cached trees.
func (c *Cache) Len() int { return c.entries.Len() }

// Purge removes all cached trees.
func (c *Cache) Purge() { c.entries.Purge() }

func (c *Cache) logger() log.Logger {
	var ast AST

	for _, opt := range c.opts {
		opt(&ast)
	}

	return ast.logger
}
