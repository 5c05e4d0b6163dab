package storage

import "errors"

// Well-known keys for persisted client state
const (
	TokenKey          = "jwt-token"
	ScrollPositionKey = "qna-scroll-position"
)

// ErrNotFound is returned by Get when a key has no value
var ErrNotFound = errors.New("storage: key not found")

// Store is a string key/value store. DB is durable across runs,
// SessionStore lives only as long as the process.
type Store interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}

var (
	_ Store = (*DB)(nil)
	_ Store = (*SessionStore)(nil)
)
