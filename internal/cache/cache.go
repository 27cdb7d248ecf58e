package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache stores serialized table read-backs so that validation and analysis in
// the same run fetch the remote table only once.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// TableKey generates a cache key for a table read-back on a given store.
func TableKey(storeURL, table string) string {
	hash := sha256.Sum256([]byte(storeURL + "/" + table))
	return "datalift:v1:" + hex.EncodeToString(hash[:])
}
