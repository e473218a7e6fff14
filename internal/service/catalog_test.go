package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfkeeper/shelfkeeper-server/internal/domain"
	domainerrors "github.com/shelfkeeper/shelfkeeper-server/internal/errors"
)

func validInput(title string) domain.BookInput {
	return domain.BookInput{
		Title:  title,
		Author: "Федор Достоевский",
		Year:   1866,
		Genre:  "Роман",
	}
}

func TestCatalog_CreateThenGet(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()

	in := domain.BookInput{
		Title:       "Преступление и наказание",
		Author:      "Федор Достоевский",
		Year:        1866,
		Genre:       "Роман",
		Description: ptr("Философский роман о моральных дилеммах"),
		IsAvailable: ptr(false),
	}

	created, err := svc.catalog.Create(ctx, in)
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := svc.catalog.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, in.Title, got.Title)
	assert.Equal(t, in.Author, got.Author)
	assert.Equal(t, in.Year, got.Year)
	assert.Equal(t, in.Genre, got.Genre)
	require.NotNil(t, got.Description)
	assert.Equal(t, *in.Description, *got.Description)
	assert.False(t, got.IsAvailable)
}

func TestCatalog_CreateValidation(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		in    domain.BookInput
		field string
	}{
		{"empty title", domain.BookInput{Author: "a", Year: 2000, Genre: "g"}, "title"},
		{"long title", domain.BookInput{Title: strings.Repeat("я", 201), Author: "a", Year: 2000, Genre: "g"}, "title"},
		{"year too early", domain.BookInput{Title: "t", Author: "a", Year: 999, Genre: "g"}, "year"},
		{"year too late", domain.BookInput{Title: "t", Author: "a", Year: 2026, Genre: "g"}, "year"},
		{"long genre", domain.BookInput{Title: "t", Author: "a", Year: 2000, Genre: strings.Repeat("g", 51)}, "genre"},
		{"long description", domain.BookInput{Title: "t", Author: "a", Year: 2000, Genre: "g", Description: ptr(strings.Repeat("d", 1001))}, "description"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.catalog.Create(ctx, tt.in)
			require.Error(t, err)
			assert.ErrorIs(t, err, domainerrors.ErrValidation)

			var derr *domainerrors.Error
			require.ErrorAs(t, err, &derr)
			assert.Contains(t, derr.Details, tt.field)
		})
	}

	n, err := svc.catalog.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "rejected input must not be written")
}

func TestCatalog_TitleLengthCountsCharacters(t *testing.T) {
	svc := newTestServices(t)

	_, err := svc.catalog.Create(context.Background(), validInput(strings.Repeat("я", 200)))
	assert.NoError(t, err)
}

func TestCatalog_GetMissing(t *testing.T) {
	svc := newTestServices(t)

	_, err := svc.catalog.Get(context.Background(), 404)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestCatalog_List(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()

	for _, title := range []string{"A", "B", "C"} {
		_, err := svc.catalog.Create(ctx, validInput(title))
		require.NoError(t, err)
	}

	books, err := svc.catalog.List(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, books, 3)
	assert.Equal(t, "A", books[0].Title)
	assert.Equal(t, "C", books[2].Title)

	books, err = svc.catalog.List(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "B", books[0].Title)

	_, err = svc.catalog.List(ctx, -1, 10)
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
	_, err = svc.catalog.List(ctx, 0, 1001)
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestCatalog_UpdatePartial(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()
	svc.catalog.now = steppingClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	book, err := svc.catalog.Create(ctx, validInput("Идиот"))
	require.NoError(t, err)

	updated, err := svc.catalog.Update(ctx, book.ID, domain.BookPatch{
		Year:        domain.Some(1869),
		IsAvailable: domain.Some(false),
	})
	require.NoError(t, err)
	assert.Equal(t, "Идиот", updated.Title)
	assert.Equal(t, book.Author, updated.Author)
	assert.Equal(t, 1869, updated.Year)
	assert.False(t, updated.IsAvailable)
	assert.True(t, updated.UpdatedAt.After(book.UpdatedAt))
	assert.True(t, updated.CreatedAt.Equal(book.CreatedAt))
}

func TestCatalog_UpdateValidatesBeforeWriting(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()

	book, err := svc.catalog.Create(ctx, validInput("Бесы"))
	require.NoError(t, err)

	_, err = svc.catalog.Update(ctx, book.ID, domain.BookPatch{
		Title: domain.Some("Братья Карамазовы"),
		Year:  domain.Some(3000),
	})
	require.ErrorIs(t, err, domainerrors.ErrValidation)

	got, err := svc.catalog.Get(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, "Бесы", got.Title, "no partial write")

	_, err = svc.catalog.Update(ctx, book.ID, domain.BookPatch{Title: domain.Some("")})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestCatalog_UpdateMissing(t *testing.T) {
	svc := newTestServices(t)

	_, err := svc.catalog.Update(context.Background(), 9, domain.BookPatch{Title: domain.Some("x")})
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestCatalog_Delete(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()

	book, err := svc.catalog.Create(ctx, validInput("Бедные люди"))
	require.NoError(t, err)

	ok, err := svc.catalog.Delete(ctx, book.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.catalog.Delete(ctx, book.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = svc.catalog.Get(ctx, book.ID)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestCatalog_SearchGenreScenario(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()

	crime, err := svc.catalog.Create(ctx, domain.BookInput{Title: "Преступление и наказание", Author: "Федор Достоевский", Year: 1866, Genre: "Роман"})
	require.NoError(t, err)
	master, err := svc.catalog.Create(ctx, domain.BookInput{Title: "Мастер и Маргарита", Author: "Михаил Булгаков", Year: 1967, Genre: "Роман"})
	require.NoError(t, err)
	_, err = svc.catalog.Create(ctx, domain.BookInput{Title: "1984", Author: "Джордж Оруэлл", Year: 1949, Genre: "Антиутопия"})
	require.NoError(t, err)

	for _, genre := range []string{"Роман", "роман", "РОМ"} {
		found, err := svc.catalog.Search(ctx, domain.BookFilter{Genre: genre})
		require.NoError(t, err)
		require.Len(t, found, 2, "genre %q", genre)
		assert.Equal(t, crime.ID, found[0].ID)
		assert.Equal(t, master.ID, found[1].ID)
	}

	all, err := svc.catalog.Search(ctx, domain.BookFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	found, err := svc.catalog.Search(ctx, domain.BookFilter{Genre: "роман", Author: "булгаков"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, master.ID, found[0].ID)
}
