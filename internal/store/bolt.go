package store

import (
	"errors"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

// ErrValueTooLarge is returned by the bolt adapter when a value exceeds the
// configured quota. The primary tier is capacity-limited; callers treat a
// full tier like any other storage error.
var ErrValueTooLarge = errors.New("value exceeds tier quota")

var bucketName = []byte("flashcards")

// Bolt is the primary-tier adapter: a single-file transactional store whose
// writes complete before Put returns.
type Bolt struct {
	db    *bolt.DB
	quota int
}

// OpenBolt opens (creating if needed) the bolt database at path. quota is
// the maximum size in bytes of a single value; zero means unlimited.
func OpenBolt(path string, quota int) (*Bolt, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt database: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create bucket: %w", err)
	}
	return &Bolt{db: db, quota: quota}, nil
}

// Get returns the stored value for key, or nil when absent.
func (b *Bolt) Get(key string) ([]byte, error) {
	var value []byte
	err := b.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketName).Get([]byte(key))
		if v != nil {
			value = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read key %s: %w", key, err)
	}
	return value, nil
}

// Put overwrites the value for key in a single transaction.
func (b *Bolt) Put(key string, value []byte) error {
	if b.quota > 0 && len(value) > b.quota {
		return fmt.Errorf("key %s: %w", key, ErrValueTooLarge)
	}
	err := b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Put([]byte(key), value)
	})
	if err != nil {
		return fmt.Errorf("failed to write key %s: %w", key, err)
	}
	return nil
}

// Delete removes key; deleting an absent key is not an error.
func (b *Bolt) Delete(key string) error {
	err := b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("failed to delete key %s: %w", key, err)
	}
	return nil
}

// Close closes the underlying database file.
func (b *Bolt) Close() error {
	return b.db.Close()
}
