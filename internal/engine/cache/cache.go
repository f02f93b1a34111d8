// Package cache maps raw source bytes to parsed syntax trees. Entries are
// keyed by a 128-bit content hash, held in a bounded memory tier and,
// when a directory is configured, persisted as `<dir>/<hash>` blobs.
package cache

import (
	"context"
	"encoding/hex"
	stderrors "errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"inspector/internal/core/errors"
	"inspector/internal/engine/parser"
	"inspector/internal/shared/observability"

	"github.com/zeebo/xxh3"
	"golang.org/x/sync/singleflight"
)

// TreeParser produces a syntax tree for one file's content.
type TreeParser interface {
	Parse(file string, content []byte) (*parser.SyntaxTree, error)
}

type Options struct {
	// Dir enables the disk tier. Empty keeps the cache in memory only.
	Dir           string
	MemoryEntries int
}

type Stats struct {
	MemoryHits    int64
	DiskHits      int64
	Misses        int64
	FormatErrors  int64
	MemoryEntries int
}

type ParseCache struct {
	dir    string
	parser TreeParser
	memory *memoryTier
	group  singleflight.Group
	now    func() time.Time

	memoryHits   atomic.Int64
	diskHits     atomic.Int64
	misses       atomic.Int64
	formatErrors atomic.Int64
}

func New(p TreeParser, opts Options) *ParseCache {
	return &ParseCache{
		dir:    opts.Dir,
		parser: p,
		memory: newMemoryTier(opts.MemoryEntries),
		now:    time.Now,
	}
}

// ContentHash returns the lower-case hex xxh3-128 digest of content.
func ContentHash(content []byte) string {
	sum := xxh3.Hash128(content).Bytes()
	return hex.EncodeToString(sum[:])
}

func (c *ParseCache) Dir() string { return c.dir }

// GetOrParse returns the tree for content, parsing it at most once per
// distinct content across concurrent callers. Syntax errors are never
// cached and are reported against file.
func (c *ParseCache) GetOrParse(ctx context.Context, file string, content []byte) (*parser.SyntaxTree, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := ContentHash(content)
	if tree, ok := c.memory.get(key); ok {
		c.memoryHits.Add(1)
		observability.ParseCacheHitsTotal.WithLabelValues("memory").Inc()
		return tree, nil
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		if tree, ok := c.memory.get(key); ok {
			c.memoryHits.Add(1)
			observability.ParseCacheHitsTotal.WithLabelValues("memory").Inc()
			return tree, nil
		}

		tree, err := c.load(key)
		if err != nil {
			return nil, err
		}
		if tree != nil {
			c.diskHits.Add(1)
			observability.ParseCacheHitsTotal.WithLabelValues("disk").Inc()
			c.memory.put(key, tree)
			return tree, nil
		}

		c.misses.Add(1)
		observability.ParseCacheMissesTotal.Inc()
		tree, err = c.parser.Parse(file, content)
		if err != nil {
			return nil, err
		}
		if err := c.store(key, tree); err != nil {
			return nil, err
		}
		c.memory.put(key, tree)
		return tree, nil
	})
	if err != nil {
		var syntaxErr *errors.SyntaxError
		if stderrors.As(err, &syntaxErr) && syntaxErr.File != file {
			return nil, syntaxErr.WithFile(file)
		}
		return nil, err
	}
	return v.(*parser.SyntaxTree), nil
}

// load returns (nil, nil) on a miss, including entries written with an
// incompatible encoding.
func (c *ParseCache) load(key string) (*parser.SyntaxTree, error) {
	if c.dir == "" {
		return nil, nil
	}

	path := filepath.Join(c.dir, key)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.AddContext(errors.Wrap(err, errors.CodeInternal, "read cache entry"), errors.CtxHash, key)
	}

	tree, err := parser.DecodeTree(key, data)
	if err != nil {
		var formatErr *errors.CacheFormatError
		if stderrors.As(err, &formatErr) {
			c.formatErrors.Add(1)
			observability.ParseCacheFormatErrorsTotal.Inc()
			slog.Warn("discarding unreadable cache entry", "hash", key, "error", err)
			return nil, nil
		}
		return nil, err
	}

	now := c.now()
	if err := os.Chtimes(path, now, now); err != nil {
		slog.Warn("failed to refresh cache entry access time", "hash", key, "error", err)
	}
	return tree, nil
}

func (c *ParseCache) store(key string, tree *parser.SyntaxTree) error {
	if c.dir == "" {
		return nil
	}

	data, err := parser.EncodeTree(tree)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("create cache directory %q: %w", c.dir, err)
	}

	tmp, err := os.CreateTemp(c.dir, key+".tmp-*")
	if err != nil {
		return fmt.Errorf("create cache temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write cache entry %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close cache entry %s: %w", key, err)
	}
	if err := os.Rename(tmpPath, filepath.Join(c.dir, key)); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("publish cache entry %s: %w", key, err)
	}
	return nil
}

func (c *ParseCache) Stats() Stats {
	return Stats{
		MemoryHits:    c.memoryHits.Load(),
		DiskHits:      c.diskHits.Load(),
		Misses:        c.misses.Load(),
		FormatErrors:  c.formatErrors.Load(),
		MemoryEntries: c.memory.len(),
	}
}
