package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"inspector/internal/shared/observability"
)

// tempGrace is how old an abandoned write must be before Prune removes it
// when no ttl is configured.
const tempGrace = time.Hour

type PruneResult struct {
	Scanned int
	Removed int
	Kept    int
}

// Prune bounds the disk tier. Entries not accessed within ttl are removed
// first, then the least recently accessed entries beyond maxEntries.
// Zero disables the corresponding bound. Temporary files left behind by
// interrupted writes are removed once they are older than ttl (or
// tempGrace). Other files are left alone.
func (c *ParseCache) Prune(maxEntries int, ttl time.Duration) (PruneResult, error) {
	var res PruneResult
	if c.dir == "" {
		return res, nil
	}

	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return res, nil
		}
		return res, fmt.Errorf("read cache directory %q: %w", c.dir, err)
	}

	type candidate struct {
		path     string
		accessed time.Time
	}
	now := c.now()
	live := make([]candidate, 0, len(entries))

	tempAge := ttl
	if tempAge <= 0 {
		tempAge = tempGrace
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if isTempEntry(entry.Name()) {
			info, err := entry.Info()
			if err != nil || now.Sub(info.ModTime()) <= tempAge {
				continue
			}
			if err := removeEntry(filepath.Join(c.dir, entry.Name())); err != nil {
				return res, err
			}
			res.Removed++
			continue
		}
		if !isContentKey(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		res.Scanned++
		path := filepath.Join(c.dir, entry.Name())

		if ttl > 0 && now.Sub(info.ModTime()) > ttl {
			if err := removeEntry(path); err != nil {
				return res, err
			}
			res.Removed++
			continue
		}
		live = append(live, candidate{path: path, accessed: info.ModTime()})
	}

	if maxEntries > 0 && len(live) > maxEntries {
		sort.Slice(live, func(i, j int) bool {
			return live[i].accessed.After(live[j].accessed)
		})
		for _, stale := range live[maxEntries:] {
			if err := removeEntry(stale.path); err != nil {
				return res, err
			}
			res.Removed++
		}
		live = live[:maxEntries]
	}

	res.Kept = len(live)
	observability.ParseCacheEvictedTotal.Add(float64(res.Removed))
	return res, nil
}

func removeEntry(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove cache entry %q: %w", path, err)
	}
	return nil
}

func isContentKey(name string) bool {
	if len(name) != 32 {
		return false
	}
	for _, r := range name {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
			return false
		}
	}
	return true
}

// isTempEntry matches the <key>.tmp-* files created while storing an entry.
func isTempEntry(name string) bool {
	return len(name) > 32 && isContentKey(name[:32]) && strings.HasPrefix(name[32:], ".tmp-")
}
