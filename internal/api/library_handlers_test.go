package api

import (
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfkeeper/shelfkeeper-server/internal/domain"
)

func TestLibrary_CrimeAndPunishment(t *testing.T) {
	env := setupTestServer(t, nil)
	book := createBook(t, env, map[string]any{
		"title": "Crime and Punishment", "author": "Fyodor Dostoevsky", "year": 1866, "genre": "Novel",
	})
	require.Equal(t, int64(1), book.ID)

	resp := env.api.Post("/user/library?username=alice", map[string]any{"book_id": 1})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	entry := decodeJSON[*domain.LibraryEntry](t, resp)
	assert.Equal(t, int64(1), entry.BookID)
	assert.False(t, entry.IsRead)
	assert.Nil(t, entry.Rating)
	assert.Nil(t, entry.Notes)

	resp = env.api.Patch("/user/library/1?username=alice", map[string]any{"is_read": true, "rating": 5})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	entry = decodeJSON[*domain.LibraryEntry](t, resp)
	assert.True(t, entry.IsRead)
	require.NotNil(t, entry.Rating)
	assert.Equal(t, 5, *entry.Rating)

	resp = env.api.Get("/user/library/read?username=alice")
	require.Equal(t, http.StatusOK, resp.Code)
	read := decodeJSON[[]*domain.LibraryEntry](t, resp)
	require.Len(t, read, 1)
	assert.Equal(t, entry.ID, read[0].ID)

	resp = env.api.Get("/user/library/unread?username=alice")
	assert.Empty(t, decodeJSON[[]*domain.LibraryEntry](t, resp))

	resp = env.api.Delete("/user/library/1?username=alice")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "book removed from library", decodeJSON[MessageResponse](t, resp).Message)

	resp = env.api.Get("/user/library/1?username=alice")
	assertErrorCode(t, resp, http.StatusNotFound, "NOT_FOUND")
}

func TestLibrary_DetailsView(t *testing.T) {
	env := setupTestServer(t, nil)
	seedRussianClassics(t, env)

	for _, id := range []int{2, 1} {
		resp := env.api.Post("/user/library?username=bob", map[string]any{"book_id": id})
		require.Equal(t, http.StatusOK, resp.Code)
	}

	resp := env.api.Get("/user/library?username=bob")
	require.Equal(t, http.StatusOK, resp.Code)

	items := decodeJSON[[]map[string]any](t, resp)
	require.Len(t, items, 2)
	assert.EqualValues(t, 2, items[0]["book_id"])
	assert.Equal(t, false, items[0]["is_read"])
	book, ok := items[0]["book"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Мастер и Маргарита", book["title"])

	// Deleting a catalog book hides the entry from the details view only.
	require.Equal(t, http.StatusNoContent, env.api.Delete("/admin/books/2", adminHeader).Code)

	resp = env.api.Get("/user/library?username=bob")
	items = decodeJSON[[]map[string]any](t, resp)
	require.Len(t, items, 1)
	assert.EqualValues(t, 1, items[0]["book_id"])

	resp = env.api.Get("/user/library/unread?username=bob")
	assert.Len(t, decodeJSON[[]*domain.LibraryEntry](t, resp), 2)
}

func TestLibrary_AddIdempotent(t *testing.T) {
	env := setupTestServer(t, nil)
	seedRussianClassics(t, env)

	resp := env.api.Post("/user/library?username=carol", map[string]any{"book_id": 3, "rating": 4, "notes": "перечитать"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	first := decodeJSON[*domain.LibraryEntry](t, resp)
	require.NotNil(t, first.Rating)
	assert.Equal(t, 4, *first.Rating)

	resp = env.api.Post("/user/library?username=carol", map[string]any{"book_id": 3, "is_read": true, "rating": 1})
	require.Equal(t, http.StatusOK, resp.Code)
	second := decodeJSON[*domain.LibraryEntry](t, resp)

	assert.Equal(t, first.ID, second.ID)
	assert.False(t, second.IsRead)
	assert.Equal(t, 4, *second.Rating)
	assert.True(t, first.AddedAt.Equal(second.AddedAt))
}

func TestLibrary_ConcurrentAdd(t *testing.T) {
	env := setupTestServer(t, nil)
	seedRussianClassics(t, env)

	const n = 10
	ids := make([]int64, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp := env.api.Post("/user/library?username=dave", map[string]any{"book_id": 1})
			if resp.Code == http.StatusOK {
				var e domain.LibraryEntry
				if json.Unmarshal(resp.Body.Bytes(), &e) == nil {
					ids[i] = e.ID
				}
			}
		}()
	}
	wg.Wait()

	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
	assert.NotZero(t, ids[0])

	resp := env.api.Get("/user/library?username=dave")
	assert.Len(t, decodeJSON[[]map[string]any](t, resp), 1)
}

func TestLibrary_UsernameFromCookie(t *testing.T) {
	env := setupTestServer(t, nil)
	seedRussianClassics(t, env)

	resp := env.api.Post("/user/library", "Cookie: username=erin", map[string]any{"book_id": 2})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = env.api.Get("/user/library?username=erin")
	assert.Len(t, decodeJSON[[]map[string]any](t, resp), 1)

	// The query parameter wins over the cookie.
	resp = env.api.Get("/user/library?username=frank", "Cookie: username=erin")
	assert.Empty(t, decodeJSON[[]map[string]any](t, resp))
}

func TestLibrary_MissingUsername(t *testing.T) {
	env := setupTestServer(t, nil)

	for _, path := range []string{"/user/library", "/user/library/read", "/user/library/1"} {
		resp := env.api.Get(path)
		body := assertErrorCode(t, resp, http.StatusBadRequest, "VALIDATION")
		assert.Equal(t, "username is required", body["message"])
	}
}

func TestLibrary_AddMissingBook(t *testing.T) {
	env := setupTestServer(t, nil)

	resp := env.api.Post("/user/library?username=gina", map[string]any{"book_id": 99})
	body := assertErrorCode(t, resp, http.StatusNotFound, "NOT_FOUND")
	assert.Equal(t, "book 99 not found", body["message"])
}

func TestLibrary_AddInvalidRating(t *testing.T) {
	env := setupTestServer(t, nil)
	seedRussianClassics(t, env)

	resp := env.api.Post("/user/library?username=hank", map[string]any{"book_id": 1, "rating": 6})
	body := assertErrorCode(t, resp, http.StatusBadRequest, "VALIDATION")
	assert.Contains(t, body["details"], "rating")

	resp = env.api.Get("/user/library?username=hank")
	assert.Empty(t, decodeJSON[[]map[string]any](t, resp))
}

func TestLibrary_PatchPresence(t *testing.T) {
	env := setupTestServer(t, nil)
	seedRussianClassics(t, env)

	resp := env.api.Post("/user/library?username=ivy", map[string]any{"book_id": 1, "is_read": true, "rating": 3, "notes": "зима"})
	require.Equal(t, http.StatusOK, resp.Code)

	// Omitted fields stay as they are.
	resp = env.api.Patch("/user/library/1?username=ivy", map[string]any{"rating": 4})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	entry := decodeJSON[*domain.LibraryEntry](t, resp)
	assert.True(t, entry.IsRead)
	require.NotNil(t, entry.Notes)
	assert.Equal(t, "зима", *entry.Notes)
	assert.Equal(t, 4, *entry.Rating)

	// Explicit false is a value, not an omission.
	resp = env.api.Patch("/user/library/1?username=ivy", map[string]any{"is_read": false})
	entry = decodeJSON[*domain.LibraryEntry](t, resp)
	assert.False(t, entry.IsRead)
	assert.Equal(t, 4, *entry.Rating)

	// Null clears.
	resp = env.api.Patch("/user/library/1?username=ivy", map[string]any{"rating": nil, "notes": nil})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	entry = decodeJSON[*domain.LibraryEntry](t, resp)
	assert.Nil(t, entry.Rating)
	assert.Nil(t, entry.Notes)
	assert.False(t, entry.IsRead)

	resp = env.api.Patch("/user/library/1?username=ivy", map[string]any{"is_read": nil})
	body := assertErrorCode(t, resp, http.StatusBadRequest, "VALIDATION")
	assert.Equal(t, map[string]any{"is_read": "cannot be null"}, body["details"])

	resp = env.api.Patch("/user/library/1?username=ivy", map[string]any{"rating": 0})
	assertErrorCode(t, resp, http.StatusBadRequest, "VALIDATION")
}

func TestLibrary_MarkReadUnread(t *testing.T) {
	env := setupTestServer(t, nil)
	seedRussianClassics(t, env)
	require.Equal(t, http.StatusOK, env.api.Post("/user/library?username=jack", map[string]any{"book_id": 2}).Code)

	resp := env.api.Patch("/user/library/2/read?username=jack")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.True(t, decodeJSON[*domain.LibraryEntry](t, resp).IsRead)

	resp = env.api.Patch("/user/library/2/unread?username=jack")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.False(t, decodeJSON[*domain.LibraryEntry](t, resp).IsRead)

	resp = env.api.Patch("/user/library/3/read?username=jack")
	body := assertErrorCode(t, resp, http.StatusNotFound, "NOT_FOUND")
	assert.Equal(t, "book 3 not found in library", body["message"])

	resp = env.api.Patch("/user/library/2/read?username=nobody")
	assertErrorCode(t, resp, http.StatusNotFound, "NOT_FOUND")
}

func TestLibrary_RemoveMissing(t *testing.T) {
	env := setupTestServer(t, nil)

	resp := env.api.Delete("/user/library/5?username=kate")
	body := assertErrorCode(t, resp, http.StatusNotFound, "NOT_FOUND")
	assert.Equal(t, "book 5 not found in library", body["message"])
}

func TestLibrary_UnknownUserIsEmpty(t *testing.T) {
	env := setupTestServer(t, nil)

	for _, path := range []string{"/user/library", "/user/library/read", "/user/library/unread"} {
		resp := env.api.Get(path + "?username=stranger")
		require.Equal(t, http.StatusOK, resp.Code)
		assert.Equal(t, "[]", trimNewline(resp.Body.String()))
	}
}

func trimNewline(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	return s
}
