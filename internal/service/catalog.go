package service

import (
	"context"
	"log/slog"

	"github.com/shelfkeeper/shelfkeeper-server/internal/domain"
	domainerrors "github.com/shelfkeeper/shelfkeeper-server/internal/errors"
	"github.com/shelfkeeper/shelfkeeper-server/internal/store"
	"github.com/shelfkeeper/shelfkeeper-server/internal/validation"
)

// CatalogService manages the book catalog.
type CatalogService struct {
	store     store.Store
	validator *validation.Validator
	logger    *slog.Logger
	now       Clock
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(st store.Store, v *validation.Validator, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		store:     st,
		validator: v,
		logger:    logger,
		now:       defaultClock,
	}
}

// Create validates in and adds a new book to the catalog.
func (s *CatalogService) Create(ctx context.Context, in domain.BookInput) (*domain.Book, error) {
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	book := domain.NewBook(in, s.now())
	if err := s.store.CreateBook(ctx, book); err != nil {
		return nil, wrapInternal(err, "create book")
	}

	s.logger.Info("book created",
		"book_id", book.ID,
		"title", book.Title,
	)

	return book, nil
}

// Get returns a book by ID.
func (s *CatalogService) Get(ctx context.Context, id int64) (*domain.Book, error) {
	book, err := s.store.GetBook(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "get book", "book %d not found", id)
	}
	return book, nil
}

// List returns one page of the catalog in ID order. A zero limit selects
// the default page size.
func (s *CatalogService) List(ctx context.Context, offset, limit int) ([]*domain.Book, error) {
	details := make(map[string]string)
	if offset < 0 {
		details["skip"] = "must be greater than or equal to 0"
	}
	if limit < 0 {
		details["limit"] = "must be greater than or equal to 0"
	}
	if limit > store.MaxPageLimit {
		details["limit"] = "must be less than or equal to 1000"
	}
	if len(details) > 0 {
		return nil, domainerrors.ValidationWithDetails("invalid page", details)
	}

	books, err := s.store.ListBooks(ctx, store.Page{Offset: offset, Limit: limit}.Normalize())
	if err != nil {
		return nil, wrapInternal(err, "list books")
	}
	return books, nil
}

// Count returns the number of books in the catalog.
func (s *CatalogService) Count(ctx context.Context) (int, error) {
	n, err := s.store.CountBooks(ctx)
	if err != nil {
		return 0, wrapInternal(err, "count books")
	}
	return n, nil
}

// Update applies the set fields of patch to a book. Every set field is
// validated before anything is written.
func (s *CatalogService) Update(ctx context.Context, id int64, patch domain.BookPatch) (*domain.Book, error) {
	if err := s.validatePatch(patch); err != nil {
		return nil, err
	}

	book, err := s.store.UpdateBook(ctx, id, patch, s.now())
	if err != nil {
		return nil, notFoundOr(err, "update book", "book %d not found", id)
	}

	s.logger.Info("book updated", "book_id", id)

	return book, nil
}

func (s *CatalogService) validatePatch(patch domain.BookPatch) error {
	var fields []validation.Field
	if v, ok := patch.Title.Get(); ok {
		fields = append(fields, validation.Field{Name: "title", Value: v, Tag: "required,max=200"})
	}
	if v, ok := patch.Author.Get(); ok {
		fields = append(fields, validation.Field{Name: "author", Value: v, Tag: "required,max=100"})
	}
	if v, ok := patch.Year.Get(); ok {
		fields = append(fields, validation.Field{Name: "year", Value: v, Tag: "gte=1000,lte=2025"})
	}
	if v, ok := patch.Genre.Get(); ok {
		fields = append(fields, validation.Field{Name: "genre", Value: v, Tag: "required,max=50"})
	}
	if v, ok := patch.Description.Get(); ok && v != nil {
		fields = append(fields, validation.Field{Name: "description", Value: *v, Tag: "max=1000"})
	}
	return s.validator.Fields(fields...)
}

// Delete removes a book from the catalog and reports whether it existed.
// Library entries that reference the book are left in place.
func (s *CatalogService) Delete(ctx context.Context, id int64) (bool, error) {
	deleted, err := s.store.DeleteBook(ctx, id)
	if err != nil {
		return false, wrapInternal(err, "delete book")
	}
	if deleted {
		s.logger.Info("book deleted", "book_id", id)
	}
	return deleted, nil
}

// Search returns the books matching every non-empty field of filter,
// ignoring case. An empty filter returns the whole catalog.
func (s *CatalogService) Search(ctx context.Context, filter domain.BookFilter) ([]*domain.Book, error) {
	books, err := s.store.SearchBooks(ctx, filter)
	if err != nil {
		return nil, wrapInternal(err, "search books")
	}
	return books, nil
}
