package service

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/shelfkeeper/shelfkeeper-server/internal/store/badgerdb"
	"github.com/shelfkeeper/shelfkeeper-server/internal/validation"
)

type testServices struct {
	store   *badgerdb.Store
	catalog *CatalogService
	users   *UserService
	library *LibraryService
	query   *QueryService
}

func newTestServices(t *testing.T) *testServices {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	st, err := badgerdb.OpenInMemory(logger)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	v := validation.New()
	users := NewUserService(st, v, logger)
	library := NewLibraryService(st, users, v, logger)

	return &testServices{
		store:   st,
		catalog: NewCatalogService(st, v, logger),
		users:   users,
		library: library,
		query:   NewQueryService(st, library),
	}
}

// steppingClock returns a clock that advances by one second per call.
func steppingClock(start time.Time) Clock {
	next := start
	return func() time.Time {
		now := next
		next = next.Add(time.Second)
		return now
	}
}

func ptr[T any](v T) *T { return &v }
