package storage

import (
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

const sessionKeyPrefix = "session:"

// SessionStore is process-scoped storage, the equivalent of a browser tab's
// session storage. It is backed by an in-memory Badger instance and is
// discarded on Close.
type SessionStore struct {
	db *badger.DB
}

// OpenSession creates an empty in-memory session store
func OpenSession() (*SessionStore, error) {
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}
	return &SessionStore{db: db}, nil
}

// Close releases the store and everything in it
func (s *SessionStore) Close() error {
	return s.db.Close()
}

// Get returns the value stored under key, or ErrNotFound
func (s *SessionStore) Get(key string) (string, error) {
	var value string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(sessionKeyPrefix + key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			value = string(val)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get %s: %w", key, err)
	}
	return value, nil
}

// Set stores value under key
func (s *SessionStore) Set(key, value string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(sessionKeyPrefix+key), []byte(value))
	})
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *SessionStore) Delete(key string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(sessionKeyPrefix + key))
	})
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}
