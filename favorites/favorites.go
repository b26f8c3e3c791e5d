// Package favorites persists the set of favorited vehicle ids across
// sessions. The set is independent of the catalog lifecycle: the catalog
// itself is always refetched, favorites are the only durable state.
package favorites

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
)

const bucketFavorites = "favorites"

// Set is a bbolt-backed set of vehicle ids.
type Set struct {
	db *bbolt.DB
}

// Open opens (or creates) the favorites database at path.
func Open(path string) (*Set, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create favorites dir: %w", err)
		}
	}

	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open favorites db: %w", err)
	}

	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketFavorites))
		return err
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create favorites bucket: %w", err)
	}

	return &Set{db: db}, nil
}

// Add inserts id into the set. Adding an id that is already present is a
// no-op; uniqueness is guaranteed by the keyspace.
func (s *Set) Add(id string) error {
	if id == "" {
		return fmt.Errorf("favorite id cannot be empty")
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketFavorites)).Put([]byte(id), []byte{1})
	})
}

// Remove deletes id from the set if present.
func (s *Set) Remove(id string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketFavorites)).Delete([]byte(id))
	})
}

// Contains reports whether id is in the set.
func (s *Set) Contains(id string) (bool, error) {
	var found bool
	err := s.db.View(func(tx *bbolt.Tx) error {
		found = tx.Bucket([]byte(bucketFavorites)).Get([]byte(id)) != nil
		return nil
	})
	return found, err
}

// IDs returns all favorited ids in key order.
func (s *Set) IDs() ([]string, error) {
	var ids []string
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketFavorites)).ForEach(func(k, _ []byte) error {
			ids = append(ids, string(k))
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// Close closes the underlying database.
func (s *Set) Close() error {
	return s.db.Close()
}
