// Package seed loads the demo catalog and a sample reader library into an
// empty store.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shelfkeeper/shelfkeeper-server/internal/domain"
	"github.com/shelfkeeper/shelfkeeper-server/internal/service"
)

// DemoUsername owns the sample library.
const DemoUsername = "test_user"

// Result summarizes a seeding run.
type Result struct {
	Seeded  bool
	Books   int
	Entries int
}

func ptr[T any](v T) *T { return &v }

// DemoBooks is the catalog loaded into an empty store.
func DemoBooks() []domain.BookInput {
	return []domain.BookInput{
		{
			Title:       "Преступление и наказание",
			Author:      "Федор Достоевский",
			Year:        1866,
			Genre:       "Роман",
			Description: ptr("Философский роман о моральных дилеммах"),
		},
		{
			Title:       "Мастер и Маргарита",
			Author:      "Михаил Булгаков",
			Year:        1967,
			Genre:       "Роман",
			Description: ptr("Мистический роман о добре и зле"),
		},
		{
			Title:       "Война и мир",
			Author:      "Лев Толстой",
			Year:        1869,
			Genre:       "Роман-эпопея",
			Description: ptr("Масштабное произведение о войне 1812 года"),
		},
		{
			Title:       "1984",
			Author:      "Джордж Оруэлл",
			Year:        1949,
			Genre:       "Антиутопия",
			Description: ptr("Роман о тоталитарном обществе"),
		},
		{
			Title:       "Гарри Поттер и философский камень",
			Author:      "Джоан Роулинг",
			Year:        1997,
			Genre:       "Фэнтези",
			Description: ptr("Первая книга о юном волшебнике"),
		},
	}
}

// Seeder fills an empty catalog with demo data.
type Seeder struct {
	catalog *service.CatalogService
	library *service.LibraryService
	logger  *slog.Logger
}

// New creates a seeder.
func New(catalog *service.CatalogService, library *service.LibraryService, logger *slog.Logger) *Seeder {
	return &Seeder{catalog: catalog, library: library, logger: logger}
}

// Run seeds the demo data unless the catalog already holds books, in which
// case it does nothing and reports Seeded=false.
//
// The demo user gets the first book marked read with a rating of 5 and the
// second book unread. A failed run removes what it wrote, so the catalog is
// empty again and the next run retries.
func (s *Seeder) Run(ctx context.Context) (Result, error) {
	count, err := s.catalog.Count(ctx)
	if err != nil {
		return Result{}, err
	}
	if count > 0 {
		s.logger.Debug("catalog not empty, skipping demo data", "books", count)
		return Result{}, nil
	}

	var ids []int64
	for _, in := range DemoBooks() {
		book, err := s.catalog.Create(ctx, in)
		if err != nil {
			s.rollback(ctx, ids, nil)
			return Result{}, fmt.Errorf("seed book %q: %w", in.Title, err)
		}
		ids = append(ids, book.ID)
	}

	entries := []struct {
		bookID int64
		patch  domain.EntryPatch
	}{
		{ids[0], domain.EntryPatch{IsRead: domain.Some(true), Rating: domain.Some(ptr(5))}},
		{ids[1], domain.EntryPatch{}},
	}
	var added []int64
	for _, e := range entries {
		if _, err := s.library.Add(ctx, DemoUsername, e.bookID, e.patch); err != nil {
			s.rollback(ctx, ids, added)
			return Result{}, fmt.Errorf("seed library entry for book %d: %w", e.bookID, err)
		}
		added = append(added, e.bookID)
	}

	res := Result{Seeded: true, Books: len(ids), Entries: len(entries)}
	s.logger.Info("demo data created",
		"books", res.Books,
		"user", DemoUsername,
		"library_entries", res.Entries,
	)
	return res, nil
}

// rollback removes the entries and books written by a failed run. It runs
// even when ctx is already cancelled.
func (s *Seeder) rollback(ctx context.Context, bookIDs, entryBookIDs []int64) {
	ctx = context.WithoutCancel(ctx)

	var errs []error
	for _, id := range entryBookIDs {
		if _, err := s.library.Remove(ctx, DemoUsername, id); err != nil {
			errs = append(errs, fmt.Errorf("remove library entry for book %d: %w", id, err))
		}
	}
	for _, id := range bookIDs {
		if _, err := s.catalog.Delete(ctx, id); err != nil {
			errs = append(errs, fmt.Errorf("delete book %d: %w", id, err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		s.logger.Error("demo data rollback incomplete, empty the catalog before seeding again",
			"error", err,
			"books", len(bookIDs),
		)
		return
	}
	s.logger.Warn("demo data rolled back after a failed run", "books", len(bookIDs), "library_entries", len(entryBookIDs))
}
