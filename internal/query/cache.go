package query

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang/snappy"
	"github.com/spaolacci/murmur3"

	"github.com/landex/landex/internal/errors"
	"github.com/landex/landex/pkg/types"
)

// ResultCache persists raw query results on disk so repeated extractions
// against an unchanged database skip the scan. Entries are JSON-encoded row
// slices compressed with Snappy, keyed by a fingerprint of the database file
// and the query text. A stale or unreadable entry is treated as a miss and
// evicted; the cache never fails an extraction.
type ResultCache struct {
	dir string
}

// NewResultCache creates a cache rooted at dir, creating it if needed.
func NewResultCache(dir string) (*ResultCache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrap(errors.ErrCategoryIO, errors.CodeWriteFailed,
			"create cache directory "+dir, err)
	}
	return &ResultCache{dir: dir}, nil
}

// Fingerprint derives the cache key for one (database, query) pair. The
// database file's size and modification time participate, so any rewrite of
// the database invalidates prior entries.
func Fingerprint(dbPath, queryText string) (string, error) {
	info, err := os.Stat(dbPath)
	if err != nil {
		return "", errors.Wrap(errors.ErrCategoryIO, errors.CodeReadFailed,
			"stat database "+dbPath, err)
	}

	h := murmur3.New128()
	fmt.Fprintf(h, "%s\x00%d\x00%d\x00%s", dbPath, info.Size(), info.ModTime().UnixNano(), queryText)
	h1, h2 := h.Sum128()
	return fmt.Sprintf("%016x%016x", h1, h2), nil
}

// Get returns the cached rows for key, or (nil, false) on a miss.
func (c *ResultCache) Get(key string) ([]types.RawRow, bool) {
	compressed, err := os.ReadFile(c.path(key))
	if err != nil {
		return nil, false
	}

	data, err := snappy.Decode(nil, compressed)
	if err != nil {
		// Corrupt entry: evict and miss.
		os.Remove(c.path(key))
		return nil, false
	}

	var rows []types.RawRow
	if err := json.Unmarshal(data, &rows); err != nil {
		os.Remove(c.path(key))
		return nil, false
	}
	return rows, true
}

// Put stores rows under key. The entry is written to a temp file and renamed
// so readers never observe a partial entry.
func (c *ResultCache) Put(key string, rows []types.RawRow) error {
	data, err := json.Marshal(rows)
	if err != nil {
		return errors.Wrap(errors.ErrCategoryIO, errors.CodeWriteFailed,
			"encode cache entry", err)
	}
	compressed := snappy.Encode(nil, data)

	tmp, err := os.CreateTemp(c.dir, "entry-*.tmp")
	if err != nil {
		return errors.Wrap(errors.ErrCategoryIO, errors.CodeWriteFailed,
			"create cache temp file", err)
	}
	if _, err := tmp.Write(compressed); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return errors.Wrap(errors.ErrCategoryIO, errors.CodeWriteFailed,
			"write cache entry", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrap(errors.ErrCategoryIO, errors.CodeWriteFailed,
			"close cache entry", err)
	}

	if err := os.Rename(tmp.Name(), c.path(key)); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrap(errors.ErrCategoryIO, errors.CodeWriteFailed,
			"publish cache entry", err)
	}
	return nil
}

func (c *ResultCache) path(key string) string {
	return filepath.Join(c.dir, key+".rows.sz")
}
