package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mkravets/datalift/internal/cache"
	"github.com/mkravets/datalift/internal/model"
)

// TableReader reads a full table back from the store.
type TableReader interface {
	SelectAll(ctx context.Context, table string) ([]model.Record, error)
}

// CachedReader wraps a TableReader with a cache so that validation and
// analysis against the same table share one fetch. Only reads are cached;
// inserts always go to the store.
type CachedReader struct {
	reader   TableReader
	cache    cache.Cache
	storeURL string
	ttl      time.Duration
}

// NewCachedReader creates a caching table reader. storeURL namespaces the
// cache keys so two stores never collide.
func NewCachedReader(reader TableReader, c cache.Cache, storeURL string, ttl time.Duration) *CachedReader {
	return &CachedReader{reader: reader, cache: c, storeURL: storeURL, ttl: ttl}
}

// SelectAll implements TableReader.
func (r *CachedReader) SelectAll(ctx context.Context, table string) ([]model.Record, error) {
	key := cache.TableKey(r.storeURL, table)

	if data, found := r.cache.Get(key); found {
		var records []model.Record
		if err := json.Unmarshal(data, &records); err == nil {
			return records, nil
		}
		// Corrupt entry: drop it and fall through to a fresh fetch.
		_ = r.cache.Delete(key)
	}

	records, err := r.reader.SelectAll(ctx, table)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("encode read-back: %w", err)
	}
	_ = r.cache.Set(key, data, r.ttl)
	return records, nil
}

// Invalidate removes a table's cached read-back, used after a load run
// changes the table.
func (r *CachedReader) Invalidate(table string) {
	_ = r.cache.Delete(cache.TableKey(r.storeURL, table))
}
