package badgerdb

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/shelfkeeper/shelfkeeper-server/internal/domain"
	"github.com/shelfkeeper/shelfkeeper-server/internal/store"
)

// CreateBook inserts a book and assigns its ID.
func (s *Store) CreateBook(ctx context.Context, book *domain.Book) error {
	id, err := nextID(s.bookSeq)
	if err != nil {
		return err
	}

	b := *book
	b.ID = id
	if err := s.update(ctx, func(txn *badger.Txn) error {
		return setJSON(txn, bookKey(id), &b)
	}); err != nil {
		return err
	}

	book.ID = id
	return nil
}

func getBook(txn *badger.Txn, id int64) (*domain.Book, error) {
	var b domain.Book
	if err := getJSON(txn, bookKey(id), &b); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, store.ErrBookNotFound
		}
		return nil, err
	}
	return &b, nil
}

// GetBook retrieves a book by ID.
// Returns store.ErrBookNotFound if the book does not exist.
func (s *Store) GetBook(_ context.Context, id int64) (*domain.Book, error) {
	var b *domain.Book
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		b, err = getBook(txn, id)
		return err
	})
	return b, err
}

// GetBooksByIDs returns the books that exist among ids, keyed by ID.
func (s *Store) GetBooksByIDs(_ context.Context, ids []int64) (map[int64]*domain.Book, error) {
	result := make(map[int64]*domain.Book, len(ids))
	err := s.db.View(func(txn *badger.Txn) error {
		for _, id := range ids {
			b, err := getBook(txn, id)
			if errors.Is(err, store.ErrBookNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			result[id] = b
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ListBooks returns one page of the catalog in ascending ID order.
func (s *Store) ListBooks(_ context.Context, page store.Page) ([]*domain.Book, error) {
	page = page.Normalize()

	books := make([]*domain.Book, 0)
	err := s.db.View(func(txn *badger.Txn) error {
		skipped := 0
		return scanPrefix(txn, []byte(bookPrefix), func(b *domain.Book) bool {
			if skipped < page.Offset {
				skipped++
				return true
			}
			books = append(books, b)
			return len(books) < page.Limit
		})
	})
	if err != nil {
		return nil, err
	}
	return books, nil
}

// CountBooks returns the number of books in the catalog.
func (s *Store) CountBooks(_ context.Context) (int, error) {
	n := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(bookPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			n++
		}
		return nil
	})
	return n, err
}

// UpdateBook applies patch to the stored book and returns the result.
// Returns store.ErrBookNotFound if the book does not exist.
func (s *Store) UpdateBook(ctx context.Context, id int64, patch domain.BookPatch, now time.Time) (*domain.Book, error) {
	var updated *domain.Book
	err := s.update(ctx, func(txn *badger.Txn) error {
		b, err := getBook(txn, id)
		if err != nil {
			return err
		}
		patch.ApplyTo(b, now)
		if err := setJSON(txn, bookKey(id), b); err != nil {
			return err
		}
		updated = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteBook removes a book. Library entries referencing it are kept.
// Returns false if the book did not exist.
func (s *Store) DeleteBook(ctx context.Context, id int64) (bool, error) {
	var deleted bool
	err := s.update(ctx, func(txn *badger.Txn) error {
		deleted = false
		key := bookKey(id)
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

// SearchBooks returns books matching every non-empty filter field, ignoring
// case, in ascending ID order.
func (s *Store) SearchBooks(_ context.Context, filter domain.BookFilter) ([]*domain.Book, error) {
	books := make([]*domain.Book, 0)
	err := s.db.View(func(txn *badger.Txn) error {
		return scanPrefix(txn, []byte(bookPrefix), func(b *domain.Book) bool {
			if filter.Matches(b) {
				books = append(books, b)
			}
			return true
		})
	})
	if err != nil {
		return nil, err
	}
	return books, nil
}
