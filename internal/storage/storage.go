// Package storage holds the key-value backends that stand in for a browser's
// local storage. Every backend stores opaque JSON blobs under string keys.
package storage

import (
	"context"
	"fmt"
)

// UpdateFunc receives the current value (found is false when the key is
// absent) and returns the value to write back. Returning remove=true deletes
// the key instead. A non-nil error aborts the update without writing.
type UpdateFunc func(current []byte, found bool) (next []byte, remove bool, err error)

// Backend is a string-keyed blob store.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
	// Update performs a single read-modify-write pass over key.
	Update(ctx context.Context, key string, fn UpdateFunc) error
}

// Driver names accepted by STORAGE_DRIVER.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

// TableName is the table (or collection) every persistent backend uses.
const TableName = "kv_entries"

func validateKey(key string) error {
	if key == "" {
		return fmt.Errorf("storage key cannot be empty")
	}
	return nil
}
