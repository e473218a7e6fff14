package badgerdb

import (
	"cmp"
	"context"
	"errors"
	"slices"

	"github.com/dgraph-io/badger/v4"

	"github.com/shelfkeeper/shelfkeeper-server/internal/domain"
	"github.com/shelfkeeper/shelfkeeper-server/internal/store"
)

func getEntry(txn *badger.Txn, userID, bookID int64) (*domain.LibraryEntry, error) {
	var e domain.LibraryEntry
	if err := getJSON(txn, entryKey(userID, bookID), &e); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, store.ErrEntryNotFound
		}
		return nil, err
	}
	return &e, nil
}

// AddEntry inserts entry unless the user already has one for the book, and
// returns whichever entry is stored. An existing entry is returned unchanged.
func (s *Store) AddEntry(ctx context.Context, entry *domain.LibraryEntry) (*domain.LibraryEntry, bool, error) {
	var (
		stored  *domain.LibraryEntry
		created bool
	)
	err := s.update(ctx, func(txn *badger.Txn) error {
		created = false
		existing, err := getEntry(txn, entry.UserID, entry.BookID)
		if err == nil {
			stored = existing
			return nil
		}
		if !errors.Is(err, store.ErrEntryNotFound) {
			return err
		}

		id, err := nextID(s.entrySeq)
		if err != nil {
			return err
		}
		e := *entry
		e.ID = id
		if err := setJSON(txn, entryKey(e.UserID, e.BookID), &e); err != nil {
			return err
		}
		stored, created = &e, true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return stored, created, nil
}

// GetEntry retrieves the user's entry for a book.
// Returns store.ErrEntryNotFound if there is none.
func (s *Store) GetEntry(_ context.Context, userID, bookID int64) (*domain.LibraryEntry, error) {
	var e *domain.LibraryEntry
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		e, err = getEntry(txn, userID, bookID)
		return err
	})
	return e, err
}

// UpdateEntry applies patch to the stored entry and returns the result.
// Returns store.ErrEntryNotFound if there is none.
func (s *Store) UpdateEntry(ctx context.Context, userID, bookID int64, patch domain.EntryPatch) (*domain.LibraryEntry, error) {
	var updated *domain.LibraryEntry
	err := s.update(ctx, func(txn *badger.Txn) error {
		e, err := getEntry(txn, userID, bookID)
		if err != nil {
			return err
		}
		if !patch.IsEmpty() {
			patch.ApplyTo(e)
			if err := setJSON(txn, entryKey(userID, bookID), e); err != nil {
				return err
			}
		}
		updated = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteEntry removes the user's entry for a book.
// Returns false if there was none.
func (s *Store) DeleteEntry(ctx context.Context, userID, bookID int64) (bool, error) {
	var deleted bool
	err := s.update(ctx, func(txn *badger.Txn) error {
		deleted = false
		key := entryKey(userID, bookID)
		if _, err := txn.Get(key); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return nil
			}
			return err
		}
		deleted = true
		return txn.Delete(key)
	})
	return deleted, err
}

// ListEntriesByUser returns every entry the user owns, oldest first.
func (s *Store) ListEntriesByUser(_ context.Context, userID int64) ([]*domain.LibraryEntry, error) {
	entries := make([]*domain.LibraryEntry, 0)
	err := s.db.View(func(txn *badger.Txn) error {
		return scanPrefix(txn, userEntriesPrefix(userID), func(e *domain.LibraryEntry) bool {
			entries = append(entries, e)
			return true
		})
	})
	if err != nil {
		return nil, err
	}

	// Keys are ordered by book ID; the listing is ordered by insertion.
	slices.SortFunc(entries, func(a, b *domain.LibraryEntry) int {
		if c := a.AddedAt.Compare(b.AddedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return entries, nil
}
