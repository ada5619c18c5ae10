package storage

import (
	"errors"
	"fmt"

	"github.com/cockroachdb/pebble"
)

// Storage keys. The credential lives under its own key, separate from the
// persisted UI state, so logout can drop one without touching the other.
const (
	KeyToken   = "auth/token"
	KeyUIState = "ui/state"
)

// Local is the durable key-value record shared by the store's persistence
// hook and the gateway's credential write. All access runs through Get and
// Put; nothing reads-modifies-writes a key concurrently.
type Local struct {
	db *pebble.DB
}

func Open(dir string) (*Local, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open local storage at %s: %w", dir, err)
	}
	return &Local{db: db}, nil
}

// Get returns nil with no error when the key is absent.
func (l *Local) Get(key string) ([]byte, error) {
	value, closer, err := l.db.Get([]byte(key))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	defer closer.Close()

	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

func (l *Local) Put(key string, value []byte) error {
	if err := l.db.Set([]byte(key), value, pebble.Sync); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

func (l *Local) Delete(key string) error {
	if err := l.db.Delete([]byte(key), pebble.Sync); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

func (l *Local) Close() error {
	return l.db.Close()
}
