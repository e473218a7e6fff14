// Package store defines the persistence contract for the catalog and reading
// libraries. Implementations live in subpackages: sqlite for production and
// badgerdb for embedded key-value and in-memory use.
package store

import (
	"context"
	"time"

	"github.com/shelfkeeper/shelfkeeper-server/internal/domain"
)

// Store is the persistence collaborator used by the services.
//
// Two invariants are enforced here rather than by callers: usernames are
// unique, and there is at most one library entry per (user, book) pair.
// GetOrCreateUser and AddEntry are atomic insert-or-fetch operations, so
// concurrent callers racing on the same key all observe the same record.
type Store interface {
	// Lifecycle
	Close() error
	Ping(ctx context.Context) error

	// Books
	CreateBook(ctx context.Context, book *domain.Book) error
	GetBook(ctx context.Context, id int64) (*domain.Book, error)
	GetBooksByIDs(ctx context.Context, ids []int64) (map[int64]*domain.Book, error)
	ListBooks(ctx context.Context, page Page) ([]*domain.Book, error)
	CountBooks(ctx context.Context) (int, error)
	UpdateBook(ctx context.Context, id int64, patch domain.BookPatch, now time.Time) (*domain.Book, error)
	DeleteBook(ctx context.Context, id int64) (bool, error)
	SearchBooks(ctx context.Context, filter domain.BookFilter) ([]*domain.Book, error)

	// Users
	GetOrCreateUser(ctx context.Context, username string, now time.Time) (user *domain.User, created bool, err error)
	GetUser(ctx context.Context, id int64) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)

	// Library entries
	AddEntry(ctx context.Context, entry *domain.LibraryEntry) (stored *domain.LibraryEntry, created bool, err error)
	GetEntry(ctx context.Context, userID, bookID int64) (*domain.LibraryEntry, error)
	UpdateEntry(ctx context.Context, userID, bookID int64, patch domain.EntryPatch) (*domain.LibraryEntry, error)
	DeleteEntry(ctx context.Context, userID, bookID int64) (bool, error)
	ListEntriesByUser(ctx context.Context, userID int64) ([]*domain.LibraryEntry, error)
}
