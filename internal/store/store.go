// Package store defines the key-value port shared by the persistence tiers
// and provides its adapters: a bbolt file database for the fast synchronous
// tier, a sqlite database for the durable backstop tier, and an in-memory
// map for tests.
package store

// KV is the storage port the persistence coordinator composes. Each value
// is written as a whole; there are no partial updates. Get returns a nil
// slice without error when the key is absent.
type KV interface {
	Get(key string) ([]byte, error)
	Put(key string, value []byte) error
	Delete(key string) error
	Close() error
}
