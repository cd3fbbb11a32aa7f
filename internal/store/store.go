// Package store implements the flat-file persistence layer: one pretty-printed
// JSON array file per collection, rewritten in full on every mutation.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"
)

// Collection is a JSON-file backed sequence of records. A per-collection
// mutex serializes the read-modify-write cycle so concurrent requests
// cannot interleave partial updates within this process.
type Collection[T any] struct {
	mu   sync.Mutex
	path string
}

func NewCollection[T any](dataDir, filename string) *Collection[T] {
	return &Collection[T]{path: filepath.Join(dataDir, filename)}
}

// Path returns the location of the backing file.
func (c *Collection[T]) Path() string {
	return c.path
}

// Exists reports whether the backing file has been created.
func (c *Collection[T]) Exists() bool {
	_, err := os.Stat(c.path)
	return err == nil
}

// Load reads the full collection. A missing file is an empty collection.
// An unparsable file is also treated as empty: the store is lenient about
// corruption and logs instead of failing the request.
func (c *Collection[T]) Load(ctx context.Context) ([]T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.load()
}

func (c *Collection[T]) load() ([]T, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []T{}, nil
		}
		return nil, fmt.Errorf("read %s: %w", c.path, err)
	}

	var records []T
	if err := json.Unmarshal(data, &records); err != nil {
		log.Warn().Err(err).Str("path", c.path).Msg("store file unparsable, treating as empty collection")
		return []T{}, nil
	}
	if records == nil {
		records = []T{}
	}
	return records, nil
}

// Append adds one record to the end of the collection and rewrites the file.
func (c *Collection[T]) Append(ctx context.Context, record T) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	records, err := c.load()
	if err != nil {
		return err
	}
	return c.replaceAll(append(records, record))
}

// ReplaceAll rewrites the backing file with the given records.
func (c *Collection[T]) ReplaceAll(ctx context.Context, records []T) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.replaceAll(records)
}

// Update loads the collection, applies fn, and rewrites the file when fn
// reports a change. The whole cycle runs under the collection lock.
func (c *Collection[T]) Update(ctx context.Context, fn func(records []T) ([]T, bool, error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	records, err := c.load()
	if err != nil {
		return err
	}

	updated, changed, err := fn(records)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}
	return c.replaceAll(updated)
}

func (c *Collection[T]) replaceAll(records []T) error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	data, err := json.MarshalIndent(records, "", "    ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", c.path, err)
	}

	// Write-then-rename keeps a crash from leaving a half-written file.
	tmp, err := os.CreateTemp(filepath.Dir(c.path), filepath.Base(c.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", c.path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", c.path, err)
	}
	if err := os.Rename(tmpName, c.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename %s: %w", c.path, err)
	}
	return nil
}
