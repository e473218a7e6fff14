package service

import (
	"context"
	"log/slog"

	"github.com/shelfkeeper/shelfkeeper-server/internal/domain"
	domainerrors "github.com/shelfkeeper/shelfkeeper-server/internal/errors"
	"github.com/shelfkeeper/shelfkeeper-server/internal/store"
	"github.com/shelfkeeper/shelfkeeper-server/internal/validation"
)

// LibraryService manages each user's reading library: which catalog books a
// user has added, and the read flag, rating and notes on each.
//
// A user has at most one entry per book. Adding a book that is already in
// the library returns the existing entry unchanged, including under
// concurrent adds; the store performs the insert-or-fetch atomically.
type LibraryService struct {
	store     store.Store
	users     *UserService
	validator *validation.Validator
	logger    *slog.Logger
	now       Clock
}

// NewLibraryService creates a new library service.
func NewLibraryService(st store.Store, users *UserService, v *validation.Validator, logger *slog.Logger) *LibraryService {
	return &LibraryService{
		store:     st,
		users:     users,
		validator: v,
		logger:    logger,
		now:       defaultClock,
	}
}

func (s *LibraryService) validatePatch(patch domain.EntryPatch) error {
	var fields []validation.Field
	if v, ok := patch.Rating.Get(); ok && v != nil {
		fields = append(fields, validation.Field{Name: "rating", Value: *v, Tag: "gte=1,lte=5"})
	}
	if v, ok := patch.Notes.Get(); ok && v != nil {
		fields = append(fields, validation.Field{Name: "notes", Value: *v, Tag: "max=500"})
	}
	return s.validator.Fields(fields...)
}

// Add puts a catalog book into the user's library, registering the user on
// first reference. A new entry starts unread with no rating or notes, then
// takes the set fields of initial. If the entry already exists it is
// returned unchanged and initial is ignored.
func (s *LibraryService) Add(ctx context.Context, username string, bookID int64, initial domain.EntryPatch) (*domain.LibraryEntry, error) {
	if err := s.validatePatch(initial); err != nil {
		return nil, err
	}

	user, err := s.users.GetOrCreate(ctx, username)
	if err != nil {
		return nil, err
	}

	if _, err := s.store.GetBook(ctx, bookID); err != nil {
		return nil, notFoundOr(err, "get book", "book %d not found", bookID)
	}

	entry := domain.NewLibraryEntry(user.ID, bookID, s.now(), initial)
	stored, created, err := s.store.AddEntry(ctx, entry)
	if err != nil {
		return nil, wrapInternal(err, "add library entry")
	}

	if created {
		s.logger.Info("book added to library",
			"user_id", user.ID,
			"book_id", bookID,
			"entry_id", stored.ID,
		)
	}

	return stored, nil
}

// Get returns the user's entry for a book.
func (s *LibraryService) Get(ctx context.Context, username string, bookID int64) (*domain.LibraryEntry, error) {
	user, err := s.users.lookup(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, entryNotFound(bookID)
	}

	entry, err := s.store.GetEntry(ctx, user.ID, bookID)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, entryNotFound(bookID)
		}
		return nil, wrapInternal(err, "get library entry")
	}
	return entry, nil
}

// Update applies the set fields of patch to the user's entry for a book.
// Setting Rating or Notes to nil clears them. Every set field is validated
// before anything is written.
func (s *LibraryService) Update(ctx context.Context, username string, bookID int64, patch domain.EntryPatch) (*domain.LibraryEntry, error) {
	if err := s.validatePatch(patch); err != nil {
		return nil, err
	}

	user, err := s.users.lookup(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, entryNotFound(bookID)
	}

	entry, err := s.store.UpdateEntry(ctx, user.ID, bookID, patch)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, entryNotFound(bookID)
		}
		return nil, wrapInternal(err, "update library entry")
	}

	s.logger.Info("library entry updated",
		"user_id", user.ID,
		"book_id", bookID,
	)

	return entry, nil
}

// MarkRead sets the read flag on the user's entry for a book.
func (s *LibraryService) MarkRead(ctx context.Context, username string, bookID int64) (*domain.LibraryEntry, error) {
	return s.Update(ctx, username, bookID, domain.EntryPatch{IsRead: domain.Some(true)})
}

// MarkUnread clears the read flag on the user's entry for a book.
func (s *LibraryService) MarkUnread(ctx context.Context, username string, bookID int64) (*domain.LibraryEntry, error) {
	return s.Update(ctx, username, bookID, domain.EntryPatch{IsRead: domain.Some(false)})
}

// Remove deletes the user's entry for a book and reports whether one existed.
func (s *LibraryService) Remove(ctx context.Context, username string, bookID int64) (bool, error) {
	user, err := s.users.lookup(ctx, username)
	if err != nil || user == nil {
		return false, err
	}

	deleted, err := s.store.DeleteEntry(ctx, user.ID, bookID)
	if err != nil {
		return false, wrapInternal(err, "delete library entry")
	}
	if deleted {
		s.logger.Info("book removed from library",
			"user_id", user.ID,
			"book_id", bookID,
		)
	}
	return deleted, nil
}

// List returns every entry in the user's library, oldest first. An unknown
// user has an empty library.
func (s *LibraryService) List(ctx context.Context, username string) ([]*domain.LibraryEntry, error) {
	user, err := s.users.lookup(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return []*domain.LibraryEntry{}, nil
	}

	entries, err := s.store.ListEntriesByUser(ctx, user.ID)
	if err != nil {
		return nil, wrapInternal(err, "list library entries")
	}
	return entries, nil
}

// ListRead returns the read entries of the user's library, oldest first.
func (s *LibraryService) ListRead(ctx context.Context, username string) ([]*domain.LibraryEntry, error) {
	entries, err := s.List(ctx, username)
	if err != nil {
		return nil, err
	}
	read, _ := domain.PartitionByRead(entries)
	return read, nil
}

// ListUnread returns the unread entries of the user's library, oldest first.
func (s *LibraryService) ListUnread(ctx context.Context, username string) ([]*domain.LibraryEntry, error) {
	entries, err := s.List(ctx, username)
	if err != nil {
		return nil, err
	}
	_, unread := domain.PartitionByRead(entries)
	return unread, nil
}

func entryNotFound(bookID int64) error {
	return domainerrors.NotFoundf("book %d not found in library", bookID)
}
