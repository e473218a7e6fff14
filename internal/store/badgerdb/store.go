// Package badgerdb implements store.Store on an embedded Badger key-value
// database. It also backs the in-memory store used by tests and demos.
package badgerdb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dgraph-io/badger/v4"
	jsoniter "github.com/json-iterator/go"

	"github.com/shelfkeeper/shelfkeeper-server/internal/store"
)

// maxConflictRetries bounds how often an optimistic transaction is replayed
// after losing a write conflict.
const maxConflictRetries = 32

// sequenceBandwidth is how many IDs a sequence leases per disk write.
const sequenceBandwidth = 100

var json = jsoniter.ConfigFastest

// Options configures Open.
type Options struct {
	// Path is the database directory. Ignored when InMemory is set.
	Path     string
	InMemory bool
	Logger   *slog.Logger
}

// Store wraps a Badger database instance.
type Store struct {
	db     *badger.DB
	logger *slog.Logger

	bookSeq  *badger.Sequence
	userSeq  *badger.Sequence
	entrySeq *badger.Sequence

	closeOnce sync.Once
	closeErr  error
}

var _ store.Store = (*Store)(nil)

// Open opens (or creates) a Badger store.
func Open(opts Options) (*Store, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var bopts badger.Options
	if opts.InMemory {
		bopts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		bopts = badger.DefaultOptions(opts.Path)
		bopts.SyncWrites = true       // Ensure writes are synced to disk to prevent corruption on crashes
		bopts.CompactL0OnClose = true // Compact L0 tables on close for faster startup
	}
	bopts.Logger = nil // Disable Badger's internal logging

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	s := &Store{db: db, logger: logger}
	for _, seq := range []struct {
		key  string
		dest **badger.Sequence
	}{
		{"seq:book", &s.bookSeq},
		{"seq:user", &s.userSeq},
		{"seq:entry", &s.entrySeq},
	} {
		*seq.dest, err = db.GetSequence([]byte(seq.key), sequenceBandwidth)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("open sequence %s: %w", seq.key, err)
		}
	}

	logger.Info("Badger database opened successfully", "path", opts.Path, "in_memory", opts.InMemory)

	return s, nil
}

// OpenInMemory opens a store that lives only in process memory.
func OpenInMemory(logger *slog.Logger) (*Store, error) {
	return Open(Options{InMemory: true, Logger: logger})
}

// Close releases the ID sequences and closes the database. Later calls
// return the first call's result.
func (s *Store) Close() error {
	s.closeOnce.Do(func() {
		var errs []error
		for _, seq := range []*badger.Sequence{s.bookSeq, s.userSeq, s.entrySeq} {
			if seq != nil {
				errs = append(errs, seq.Release())
			}
		}
		errs = append(errs, s.db.Close())
		s.closeErr = errors.Join(errs...)
	})
	return s.closeErr
}

// Ping reports whether the database is open.
func (s *Store) Ping(_ context.Context) error {
	if s.db.IsClosed() {
		return errors.New("badger database is closed")
	}
	return nil
}

// nextID returns the next ID from seq. IDs start at 1.
func nextID(seq *badger.Sequence) (int64, error) {
	n, err := seq.Next()
	if err != nil {
		return 0, fmt.Errorf("next id: %w", err)
	}
	return int64(n) + 1, nil
}

// update runs fn in a read-write transaction, replaying it when the commit
// loses a conflict with a concurrent writer.
func (s *Store) update(ctx context.Context, fn func(txn *badger.Txn) error) error {
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := s.db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) || attempt >= maxConflictRetries {
			return err
		}
		s.logger.Debug("badger transaction conflict, retrying", "attempt", attempt+1)
	}
}

// getJSON loads the value at key into dest. Returns badger.ErrKeyNotFound
// when the key is absent.
func getJSON(txn *badger.Txn, key []byte, dest any) error {
	item, err := txn.Get(key)
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, dest)
	})
}

// setJSON stores value at key.
func setJSON(txn *badger.Txn, key []byte, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}
	return txn.Set(key, data)
}

// scanPrefix decodes each value under prefix in key order and passes it to fn
// until fn returns false.
func scanPrefix[T any](txn *badger.Txn, prefix []byte, fn func(v *T) bool) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	it := txn.NewIterator(opts)
	defer it.Close()

	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		var v T
		if err := it.Item().Value(func(val []byte) error {
			return json.Unmarshal(val, &v)
		}); err != nil {
			return err
		}
		if !fn(&v) {
			return nil
		}
	}
	return nil
}
