package seed

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfkeeper/shelfkeeper-server/internal/domain"
	"github.com/shelfkeeper/shelfkeeper-server/internal/service"
	"github.com/shelfkeeper/shelfkeeper-server/internal/store"
	"github.com/shelfkeeper/shelfkeeper-server/internal/store/badgerdb"
	"github.com/shelfkeeper/shelfkeeper-server/internal/validation"
)

type fixture struct {
	catalog *service.CatalogService
	library *service.LibraryService
	seeder  *Seeder
}

// flakyStore fails every CreateBook after the first failAfter calls.
type flakyStore struct {
	store.Store

	failAfter int
	creates   int
}

func (s *flakyStore) CreateBook(ctx context.Context, book *domain.Book) error {
	s.creates++
	if s.creates > s.failAfter {
		return errors.New("disk full")
	}
	return s.Store.CreateBook(ctx, book)
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)

	st, err := badgerdb.OpenInMemory(logger)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	return newFixtureWithStore(st, logger)
}

func newFixtureWithStore(st store.Store, logger *slog.Logger) *fixture {
	v := validation.New()
	users := service.NewUserService(st, v, logger)
	catalog := service.NewCatalogService(st, v, logger)
	library := service.NewLibraryService(st, users, v, logger)

	return &fixture{
		catalog: catalog,
		library: library,
		seeder:  New(catalog, library, logger),
	}
}

func TestRun_EmptyCatalog(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	res, err := f.seeder.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, Result{Seeded: true, Books: 5, Entries: 2}, res)

	count, err := f.catalog.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, count)

	read, err := f.library.ListRead(ctx, DemoUsername)
	require.NoError(t, err)
	require.Len(t, read, 1)
	assert.Equal(t, int64(1), read[0].BookID)
	require.NotNil(t, read[0].Rating)
	assert.Equal(t, 5, *read[0].Rating)

	unread, err := f.library.ListUnread(ctx, DemoUsername)
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.Equal(t, int64(2), unread[0].BookID)
	assert.Nil(t, unread[0].Rating)
}

func TestRun_SkipsNonEmptyCatalog(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	_, err := f.catalog.Create(ctx, domain.BookInput{Title: "Идиот", Author: "Федор Достоевский", Year: 1869, Genre: "Роман"})
	require.NoError(t, err)

	res, err := f.seeder.Run(ctx)
	require.NoError(t, err)
	assert.False(t, res.Seeded)

	count, err := f.catalog.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	entries, err := f.library.List(ctx, DemoUsername)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRun_Twice(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	_, err := f.seeder.Run(ctx)
	require.NoError(t, err)

	res, err := f.seeder.Run(ctx)
	require.NoError(t, err)
	assert.False(t, res.Seeded)

	count, err := f.catalog.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, count)
}

func TestDemoBooks_Valid(t *testing.T) {
	v := validation.New()
	for _, in := range DemoBooks() {
		assert.NoError(t, v.Validate(in), in.Title)
	}
}

func TestRun_FailureLeavesCatalogEmpty(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)
	st, err := badgerdb.OpenInMemory(logger)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	flaky := &flakyStore{Store: st, failAfter: 3}
	f := newFixtureWithStore(flaky, logger)
	ctx := t.Context()

	_, err = f.seeder.Run(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")

	count, err := f.catalog.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	flaky.failAfter = 100
	res, err := f.seeder.Run(ctx)
	require.NoError(t, err)
	assert.True(t, res.Seeded)

	count, err = f.catalog.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, count)
}
