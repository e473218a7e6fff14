package service

import (
	"context"

	"github.com/shelfkeeper/shelfkeeper-server/internal/domain"
	"github.com/shelfkeeper/shelfkeeper-server/internal/store"
)

// QueryService builds read-only views that join library entries with the
// catalog.
type QueryService struct {
	store   store.Store
	library *LibraryService
}

// NewQueryService creates a new query service.
func NewQueryService(st store.Store, library *LibraryService) *QueryService {
	return &QueryService{store: st, library: library}
}

// LibraryWithDetails returns the user's library with each entry's book
// attached, oldest first. Entries whose book has been deleted from the
// catalog are skipped.
func (s *QueryService) LibraryWithDetails(ctx context.Context, username string) ([]*domain.LibraryItem, error) {
	entries, err := s.library.List(ctx, username)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.BookID)
	}
	books, err := s.store.GetBooksByIDs(ctx, ids)
	if err != nil {
		return nil, wrapInternal(err, "load library books")
	}

	items := make([]*domain.LibraryItem, 0, len(entries))
	for _, e := range entries {
		book, ok := books[e.BookID]
		if !ok {
			continue
		}
		items = append(items, &domain.LibraryItem{LibraryEntry: *e, Book: book})
	}
	return items, nil
}
