// Package storetest holds the behavioral tests every store.Store
// implementation must pass.
package storetest

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfkeeper/shelfkeeper-server/internal/domain"
	"github.com/shelfkeeper/shelfkeeper-server/internal/store"
)

// Factory returns a fresh, empty store. The factory registers its own cleanup.
type Factory func(t *testing.T) store.Store

// Run exercises s against the full store contract.
func Run(t *testing.T, newStore Factory) {
	t.Run("Books", func(t *testing.T) { testBooks(t, newStore) })
	t.Run("Search", func(t *testing.T) { testSearch(t, newStore) })
	t.Run("Users", func(t *testing.T) { testUsers(t, newStore) })
	t.Run("Entries", func(t *testing.T) { testEntries(t, newStore) })
}

var epoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

// CreateBook inserts a book built from the given fields and returns it.
func CreateBook(t *testing.T, s store.Store, title, author, genre string, year int) *domain.Book {
	t.Helper()
	b := domain.NewBook(domain.BookInput{Title: title, Author: author, Year: year, Genre: genre}, epoch)
	require.NoError(t, s.CreateBook(context.Background(), b))
	require.NotZero(t, b.ID)
	return b
}

func testBooks(t *testing.T, newStore Factory) {
	ctx := context.Background()

	t.Run("create and get", func(t *testing.T) {
		s := newStore(t)
		in := domain.BookInput{
			Title:       "Война и мир",
			Author:      "Лев Толстой",
			Year:        1869,
			Genre:       "Роман-эпопея",
			Description: ptr("Эпический роман"),
		}
		b := domain.NewBook(in, epoch)
		require.NoError(t, s.CreateBook(ctx, b))

		got, err := s.GetBook(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, b.ID, got.ID)
		assert.Equal(t, "Война и мир", got.Title)
		assert.Equal(t, 1869, got.Year)
		require.NotNil(t, got.Description)
		assert.Equal(t, "Эпический роман", *got.Description)
		assert.True(t, got.IsAvailable)
		assert.True(t, epoch.Equal(got.CreatedAt))
		assert.True(t, epoch.Equal(got.UpdatedAt))
	})

	t.Run("ids are distinct and increasing", func(t *testing.T) {
		s := newStore(t)
		a := CreateBook(t, s, "A", "x", "g", 2000)
		b := CreateBook(t, s, "B", "x", "g", 2000)
		assert.Greater(t, b.ID, a.ID)
	})

	t.Run("get missing", func(t *testing.T) {
		s := newStore(t)
		_, err := s.GetBook(ctx, 42)
		assert.ErrorIs(t, err, store.ErrBookNotFound)
	})

	t.Run("list pages in id order", func(t *testing.T) {
		s := newStore(t)
		var ids []int64
		for i := range 5 {
			ids = append(ids, CreateBook(t, s, fmt.Sprintf("Book %d", i), "a", "g", 2000).ID)
		}

		all, err := s.ListBooks(ctx, store.DefaultPage())
		require.NoError(t, err)
		require.Len(t, all, 5)
		for i, b := range all {
			assert.Equal(t, ids[i], b.ID)
		}

		page, err := s.ListBooks(ctx, store.Page{Offset: 3, Limit: 10})
		require.NoError(t, err)
		require.Len(t, page, 2)
		assert.Equal(t, ids[3], page[0].ID)

		page, err = s.ListBooks(ctx, store.Page{Offset: 1, Limit: 2})
		require.NoError(t, err)
		require.Len(t, page, 2)
		assert.Equal(t, ids[1], page[0].ID)
		assert.Equal(t, ids[2], page[1].ID)

		page, err = s.ListBooks(ctx, store.Page{Offset: 10, Limit: 2})
		require.NoError(t, err)
		assert.Empty(t, page)

		n, err := s.CountBooks(ctx)
		require.NoError(t, err)
		assert.Equal(t, 5, n)
	})

	t.Run("get by ids skips missing", func(t *testing.T) {
		s := newStore(t)
		a := CreateBook(t, s, "A", "x", "g", 2000)
		b := CreateBook(t, s, "B", "x", "g", 2000)

		got, err := s.GetBooksByIDs(ctx, []int64{a.ID, b.ID, 999})
		require.NoError(t, err)
		assert.Len(t, got, 2)
		assert.Equal(t, "A", got[a.ID].Title)
		assert.Equal(t, "B", got[b.ID].Title)

		got, err = s.GetBooksByIDs(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("update applies only patched fields", func(t *testing.T) {
		s := newStore(t)
		in := domain.BookInput{Title: "Title", Author: "Author", Year: 1900, Genre: "Genre", Description: ptr("desc")}
		b := domain.NewBook(in, epoch)
		require.NoError(t, s.CreateBook(ctx, b))

		later := epoch.Add(time.Hour)
		got, err := s.UpdateBook(ctx, b.ID, domain.BookPatch{
			Year:        domain.Some(1901),
			IsAvailable: domain.Some(false),
		}, later)
		require.NoError(t, err)
		assert.Equal(t, "Title", got.Title)
		assert.Equal(t, "Author", got.Author)
		assert.Equal(t, 1901, got.Year)
		assert.False(t, got.IsAvailable)
		require.NotNil(t, got.Description)
		assert.Equal(t, "desc", *got.Description)
		assert.True(t, epoch.Equal(got.CreatedAt))
		assert.True(t, later.Equal(got.UpdatedAt))

		got, err = s.UpdateBook(ctx, b.ID, domain.BookPatch{Description: domain.Some[*string](nil)}, later)
		require.NoError(t, err)
		assert.Nil(t, got.Description)

		stored, err := s.GetBook(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, got, stored)
	})

	t.Run("update refreshes search keys", func(t *testing.T) {
		s := newStore(t)
		b := CreateBook(t, s, "Old", "Author", "Genre", 2000)

		_, err := s.UpdateBook(ctx, b.ID, domain.BookPatch{Title: domain.Some("Новое")}, epoch)
		require.NoError(t, err)

		found, err := s.SearchBooks(ctx, domain.BookFilter{Title: "новое"})
		require.NoError(t, err)
		require.Len(t, found, 1)
		found, err = s.SearchBooks(ctx, domain.BookFilter{Title: "old"})
		require.NoError(t, err)
		assert.Empty(t, found)
	})

	t.Run("update missing", func(t *testing.T) {
		s := newStore(t)
		_, err := s.UpdateBook(ctx, 7, domain.BookPatch{Title: domain.Some("x")}, epoch)
		assert.ErrorIs(t, err, store.ErrBookNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		s := newStore(t)
		b := CreateBook(t, s, "A", "x", "g", 2000)

		ok, err := s.DeleteBook(ctx, b.ID)
		require.NoError(t, err)
		assert.True(t, ok)

		_, err = s.GetBook(ctx, b.ID)
		assert.ErrorIs(t, err, store.ErrBookNotFound)

		ok, err = s.DeleteBook(ctx, b.ID)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func testSearch(t *testing.T, newStore Factory) {
	ctx := context.Background()
	s := newStore(t)

	master := CreateBook(t, s, "Мастер и Маргарита", "Михаил Булгаков", "Роман", 1967)
	war := CreateBook(t, s, "Война и мир", "Лев Толстой", "Роман-эпопея", 1869)
	onegin := CreateBook(t, s, "Евгений Онегин", "Александр Пушкин", "Роман в стихах", 1833)
	dune := CreateBook(t, s, "Dune", "Frank Herbert", "Science Fiction", 1965)

	tests := []struct {
		name   string
		filter domain.BookFilter
		want   []int64
	}{
		{"empty filter returns all", domain.BookFilter{}, []int64{master.ID, war.ID, onegin.ID, dune.ID}},
		{"title lowercase cyrillic", domain.BookFilter{Title: "мастер"}, []int64{master.ID}},
		{"title uppercase cyrillic", domain.BookFilter{Title: "ВОЙНА"}, []int64{war.ID}},
		{"genre substring", domain.BookFilter{Genre: "роман"}, []int64{master.ID, war.ID, onegin.ID}},
		{"combined filters and", domain.BookFilter{Genre: "роман", Author: "пушкин"}, []int64{onegin.ID}},
		{"latin case", domain.BookFilter{Author: "HERBERT"}, []int64{dune.ID}},
		{"no match", domain.BookFilter{Title: "Идиот"}, []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			found, err := s.SearchBooks(ctx, tt.filter)
			require.NoError(t, err)

			got := make([]int64, 0, len(found))
			for _, b := range found {
				got = append(got, b.ID)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func testUsers(t *testing.T, newStore Factory) {
	ctx := context.Background()

	t.Run("get or create", func(t *testing.T) {
		s := newStore(t)

		u, created, err := s.GetOrCreateUser(ctx, "alice", epoch)
		require.NoError(t, err)
		assert.True(t, created)
		assert.NotZero(t, u.ID)
		assert.Equal(t, "alice", u.Username)

		again, created, err := s.GetOrCreateUser(ctx, "alice", epoch.Add(time.Hour))
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, u.ID, again.ID)
		assert.True(t, epoch.Equal(again.CreatedAt))

		byID, err := s.GetUser(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, "alice", byID.Username)

		byName, err := s.GetUserByUsername(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, u.ID, byName.ID)
	})

	t.Run("usernames are case sensitive", func(t *testing.T) {
		s := newStore(t)
		a, _, err := s.GetOrCreateUser(ctx, "bob", epoch)
		require.NoError(t, err)
		b, _, err := s.GetOrCreateUser(ctx, "Bob", epoch)
		require.NoError(t, err)
		assert.NotEqual(t, a.ID, b.ID)
	})

	t.Run("missing", func(t *testing.T) {
		s := newStore(t)
		_, err := s.GetUser(ctx, 1)
		assert.ErrorIs(t, err, store.ErrUserNotFound)
		_, err = s.GetUserByUsername(ctx, "nobody")
		assert.ErrorIs(t, err, store.ErrUserNotFound)
	})

	t.Run("concurrent get or create yields one user", func(t *testing.T) {
		s := newStore(t)

		const workers = 16
		ids := make([]int64, workers)
		created := make([]bool, workers)
		errs := make([]error, workers)

		var wg sync.WaitGroup
		for i := range workers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				u, c, err := s.GetOrCreateUser(ctx, "racer", epoch)
				errs[i] = err
				created[i] = c
				if u != nil {
					ids[i] = u.ID
				}
			}()
		}
		wg.Wait()

		creations := 0
		for i := range workers {
			require.NoError(t, errs[i])
			assert.Equal(t, ids[0], ids[i])
			if created[i] {
				creations++
			}
		}
		assert.Equal(t, 1, creations)
	})
}

func testEntries(t *testing.T, newStore Factory) {
	ctx := context.Background()

	setup := func(t *testing.T) (store.Store, *domain.User, *domain.Book) {
		s := newStore(t)
		u, _, err := s.GetOrCreateUser(ctx, "reader", epoch)
		require.NoError(t, err)
		b := CreateBook(t, s, "Книга", "Автор", "Жанр", 2000)
		return s, u, b
	}

	t.Run("add and get", func(t *testing.T) {
		s, u, b := setup(t)

		e := domain.NewLibraryEntry(u.ID, b.ID, epoch, domain.EntryPatch{Rating: domain.Some(ptr(4))})
		stored, created, err := s.AddEntry(ctx, e)
		require.NoError(t, err)
		assert.True(t, created)
		assert.NotZero(t, stored.ID)
		assert.Equal(t, u.ID, stored.UserID)
		assert.Equal(t, b.ID, stored.BookID)
		assert.False(t, stored.IsRead)
		require.NotNil(t, stored.Rating)
		assert.Equal(t, 4, *stored.Rating)
		assert.Nil(t, stored.Notes)

		got, err := s.GetEntry(ctx, u.ID, b.ID)
		require.NoError(t, err)
		assert.Equal(t, stored, got)
	})

	t.Run("duplicate add returns existing unchanged", func(t *testing.T) {
		s, u, b := setup(t)

		first, _, err := s.AddEntry(ctx, domain.NewLibraryEntry(u.ID, b.ID, epoch, domain.EntryPatch{}))
		require.NoError(t, err)

		second, created, err := s.AddEntry(ctx, domain.NewLibraryEntry(u.ID, b.ID, epoch.Add(time.Hour), domain.EntryPatch{
			IsRead: domain.Some(true),
			Notes:  domain.Some(ptr("ignored")),
		}))
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, first, second)

		entries, err := s.ListEntriesByUser(ctx, u.ID)
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})

	t.Run("concurrent add yields one entry", func(t *testing.T) {
		s, u, b := setup(t)

		const workers = 16
		ids := make([]int64, workers)
		errs := make([]error, workers)

		var wg sync.WaitGroup
		for i := range workers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				e, _, err := s.AddEntry(ctx, domain.NewLibraryEntry(u.ID, b.ID, epoch, domain.EntryPatch{}))
				errs[i] = err
				if e != nil {
					ids[i] = e.ID
				}
			}()
		}
		wg.Wait()

		for i := range workers {
			require.NoError(t, errs[i])
			assert.Equal(t, ids[0], ids[i])
		}

		entries, err := s.ListEntriesByUser(ctx, u.ID)
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})

	t.Run("update applies only patched fields", func(t *testing.T) {
		s, u, b := setup(t)
		_, _, err := s.AddEntry(ctx, domain.NewLibraryEntry(u.ID, b.ID, epoch, domain.EntryPatch{
			IsRead: domain.Some(true),
			Notes:  domain.Some(ptr("keep me")),
		}))
		require.NoError(t, err)

		got, err := s.UpdateEntry(ctx, u.ID, b.ID, domain.EntryPatch{Rating: domain.Some(ptr(5))})
		require.NoError(t, err)
		assert.True(t, got.IsRead)
		require.NotNil(t, got.Notes)
		assert.Equal(t, "keep me", *got.Notes)
		require.NotNil(t, got.Rating)
		assert.Equal(t, 5, *got.Rating)

		got, err = s.UpdateEntry(ctx, u.ID, b.ID, domain.EntryPatch{
			IsRead: domain.Some(false),
			Rating: domain.Some[*int](nil),
			Notes:  domain.Some[*string](nil),
		})
		require.NoError(t, err)
		assert.False(t, got.IsRead)
		assert.Nil(t, got.Rating)
		assert.Nil(t, got.Notes)

		got, err = s.UpdateEntry(ctx, u.ID, b.ID, domain.EntryPatch{})
		require.NoError(t, err)
		assert.False(t, got.IsRead)
		assert.True(t, epoch.Equal(got.AddedAt))
	})

	t.Run("update missing", func(t *testing.T) {
		s, u, b := setup(t)
		_, err := s.UpdateEntry(ctx, u.ID, b.ID, domain.EntryPatch{IsRead: domain.Some(true)})
		assert.ErrorIs(t, err, store.ErrEntryNotFound)
		_, err = s.UpdateEntry(ctx, u.ID, b.ID, domain.EntryPatch{})
		assert.ErrorIs(t, err, store.ErrEntryNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		s, u, b := setup(t)
		_, _, err := s.AddEntry(ctx, domain.NewLibraryEntry(u.ID, b.ID, epoch, domain.EntryPatch{}))
		require.NoError(t, err)

		ok, err := s.DeleteEntry(ctx, u.ID, b.ID)
		require.NoError(t, err)
		assert.True(t, ok)

		_, err = s.GetEntry(ctx, u.ID, b.ID)
		assert.ErrorIs(t, err, store.ErrEntryNotFound)

		ok, err = s.DeleteEntry(ctx, u.ID, b.ID)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("list is per user and ordered by added time", func(t *testing.T) {
		s, u, b1 := setup(t)
		b2 := CreateBook(t, s, "Вторая", "Автор", "Жанр", 2001)
		b3 := CreateBook(t, s, "Третья", "Автор", "Жанр", 2002)
		other, _, err := s.GetOrCreateUser(ctx, "other", epoch)
		require.NoError(t, err)

		// Insert out of chronological order.
		for _, add := range []struct {
			book *domain.Book
			at   time.Time
		}{
			{b2, epoch.Add(2 * time.Second)},
			{b1, epoch.Add(1 * time.Second)},
			{b3, epoch.Add(1500 * time.Millisecond)},
		} {
			_, _, err := s.AddEntry(ctx, domain.NewLibraryEntry(u.ID, add.book.ID, add.at, domain.EntryPatch{}))
			require.NoError(t, err)
		}
		_, _, err = s.AddEntry(ctx, domain.NewLibraryEntry(other.ID, b1.ID, epoch, domain.EntryPatch{}))
		require.NoError(t, err)

		entries, err := s.ListEntriesByUser(ctx, u.ID)
		require.NoError(t, err)
		require.Len(t, entries, 3)
		assert.Equal(t, b1.ID, entries[0].BookID)
		assert.Equal(t, b3.ID, entries[1].BookID)
		assert.Equal(t, b2.ID, entries[2].BookID)
		for _, e := range entries {
			assert.Equal(t, u.ID, e.UserID)
		}

		entries, err = s.ListEntriesByUser(ctx, 9999)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("entries survive book deletion", func(t *testing.T) {
		s, u, b := setup(t)
		_, _, err := s.AddEntry(ctx, domain.NewLibraryEntry(u.ID, b.ID, epoch, domain.EntryPatch{}))
		require.NoError(t, err)

		ok, err := s.DeleteBook(ctx, b.ID)
		require.NoError(t, err)
		require.True(t, ok)

		entries, err := s.ListEntriesByUser(ctx, u.ID)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, b.ID, entries[0].BookID)
	})
}
