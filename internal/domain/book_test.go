package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBook_DefaultsAvailable(t *testing.T) {
	now := time.Now()
	b := NewBook(BookInput{Title: "1984", Author: "Джордж Оруэлл", Year: 1949, Genre: "Антиутопия"}, now)

	assert.True(t, b.IsAvailable)
	assert.Nil(t, b.Description)
	assert.Equal(t, now, b.CreatedAt)
	assert.Equal(t, now, b.UpdatedAt)
	assert.Zero(t, b.ID)
}

func TestNewBook_ExplicitUnavailable(t *testing.T) {
	b := NewBook(BookInput{Title: "t", Author: "a", Year: 2000, Genre: "g", IsAvailable: ptr(false)}, time.Now())

	assert.False(t, b.IsAvailable)
}

func TestBookPatch_AppliesOnlySetFields(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	b := &Book{
		Title:       "Война и мир",
		Author:      "Лев Толстой",
		Year:        1869,
		Genre:       "Роман-эпопея",
		Description: ptr("epic"),
		IsAvailable: true,
		CreatedAt:   created,
		UpdatedAt:   created,
	}
	later := created.Add(time.Hour)

	BookPatch{Year: Some(1867), IsAvailable: Some(false)}.ApplyTo(b, later)

	assert.Equal(t, "Война и мир", b.Title)
	assert.Equal(t, 1867, b.Year)
	assert.False(t, b.IsAvailable)
	require.NotNil(t, b.Description)
	assert.Equal(t, "epic", *b.Description)
	assert.Equal(t, created, b.CreatedAt)
	assert.Equal(t, later, b.UpdatedAt)
}

func TestBookPatch_ClearsDescription(t *testing.T) {
	b := &Book{Description: ptr("old")}

	BookPatch{Description: Some[*string](nil)}.ApplyTo(b, time.Now())

	assert.Nil(t, b.Description)
}

func TestBookFilter_IsEmpty(t *testing.T) {
	assert.True(t, BookFilter{}.IsEmpty())
	assert.False(t, BookFilter{Genre: "Роман"}.IsEmpty())
}

func TestBookFilter_Matches(t *testing.T) {
	b := &Book{Title: "Мастер и Маргарита", Author: "Михаил Булгаков", Genre: "Роман"}

	assert.True(t, BookFilter{}.Matches(b))
	assert.True(t, BookFilter{Title: "мастер"}.Matches(b))
	assert.True(t, BookFilter{Title: "МАРГАРИТА", Author: "булгаков"}.Matches(b))
	assert.False(t, BookFilter{Title: "мастер", Genre: "Поэма"}.Matches(b))
}

func TestOptional(t *testing.T) {
	var o Optional[int]
	_, ok := o.Get()
	assert.False(t, ok)
	assert.False(t, o.IsSet())

	dst := 7
	assert.False(t, o.ApplyTo(&dst))
	assert.Equal(t, 7, dst)

	o = Some(0)
	assert.True(t, o.ApplyTo(&dst))
	assert.Equal(t, 0, dst)
	assert.False(t, Unset[string]().IsSet())
}
