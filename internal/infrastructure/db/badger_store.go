package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v3"
)

// defaultMaxUpdateAttempts bounds how often an update is re-applied after a write conflict
const defaultMaxUpdateAttempts = 10

// ErrTooManyConflicts is returned when an update keeps losing against concurrent writers
var ErrTooManyConflicts = errors.New("update aborted after repeated write conflicts")

// BadgerStore stores whole JSON values under namespaced keys in BadgerDB
type BadgerStore struct {
	db          *badger.DB
	maxAttempts int
	onConflict  func()
}

// NewBadgerStore creates a new BadgerDB backed store
func NewBadgerStore(db *badger.DB) *BadgerStore {
	return &BadgerStore{
		db:          db,
		maxAttempts: defaultMaxUpdateAttempts,
	}
}

// OnConflict registers a callback invoked every time an update is retried
func (s *BadgerStore) OnConflict(fn func()) {
	s.onConflict = fn
}

// Namespace returns a view of the store limited to one namespace
func (s *BadgerStore) Namespace(name string) *Namespace {
	return &Namespace{store: s, prefix: name + "/"}
}

// Namespace is a set of named JSON values sharing a key prefix
type Namespace struct {
	store  *BadgerStore
	prefix string
}

func (n *Namespace) key(name string) []byte {
	return []byte(n.prefix + name)
}

// Get decodes the value stored under name into v. It reports false when no value exists.
func (n *Namespace) Get(ctx context.Context, name string, v interface{}) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	found := false
	err := n.store.db.View(func(txn *badger.Txn) error {
		var err error
		found, err = getJSON(txn, n.key(name), v)
		return err
	})
	if err != nil {
		return false, fmt.Errorf("failed to read %s%s: %w", n.prefix, name, err)
	}

	return found, nil
}

// Put replaces the value stored under name
func (n *Namespace) Put(ctx context.Context, name string, v interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s%s: %w", n.prefix, name, err)
	}

	err = n.store.db.Update(func(txn *badger.Txn) error {
		return txn.Set(n.key(name), data)
	})
	if err != nil {
		return fmt.Errorf("failed to store %s%s: %w", n.prefix, name, err)
	}

	return nil
}

// UpdateJSON reads the value under name into a value produced by init, lets
// mutate change it and writes it back in one transaction. On a write conflict
// the whole read-mutate-write cycle is repeated against the newly committed
// value, so mutate must not have side effects outside the value.
func UpdateJSON[T any](ctx context.Context, n *Namespace, name string, init func() *T, mutate func(v *T) error) (*T, error) {
	for attempt := 1; attempt <= n.store.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		value := init()
		err := n.store.db.Update(func(txn *badger.Txn) error {
			if _, err := getJSON(txn, n.key(name), value); err != nil {
				return err
			}
			if err := mutate(value); err != nil {
				return err
			}

			data, err := json.Marshal(value)
			if err != nil {
				return fmt.Errorf("failed to marshal: %w", err)
			}
			return txn.Set(n.key(name), data)
		})

		if errors.Is(err, badger.ErrConflict) {
			if n.store.onConflict != nil {
				n.store.onConflict()
			}
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to update %s%s: %w", n.prefix, name, err)
		}

		return value, nil
	}

	return nil, fmt.Errorf("failed to update %s%s: %w", n.prefix, name, ErrTooManyConflicts)
}

func getJSON(txn *badger.Txn, key []byte, v interface{}) (bool, error) {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, v)
	})
	if err != nil {
		return false, err
	}

	return true, nil
}
