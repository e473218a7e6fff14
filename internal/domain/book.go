package domain

import (
	"time"

	"github.com/shelfkeeper/shelfkeeper-server/internal/normalize"
)

// Catalog field bounds.
const (
	MaxTitleLength       = 200
	MaxAuthorLength      = 100
	MaxGenreLength       = 50
	MaxDescriptionLength = 1000
	MinPublicationYear   = 1000
	MaxPublicationYear   = 2025
)

// Book is a catalog record, independent of any user.
type Book struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Author      string    `json:"author"`
	Year        int       `json:"year"`
	Genre       string    `json:"genre"`
	Description *string   `json:"description"`
	IsAvailable bool      `json:"is_available"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// BookInput carries the caller-supplied fields of a new book.
// A nil IsAvailable means the book is available.
type BookInput struct {
	Title       string  `json:"title" validate:"required,min=1,max=200"`
	Author      string  `json:"author" validate:"required,min=1,max=100"`
	Year        int     `json:"year" validate:"gte=1000,lte=2025"`
	Genre       string  `json:"genre" validate:"required,min=1,max=50"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
	IsAvailable *bool   `json:"is_available"`
}

// NewBook builds a Book from input. The ID is assigned by the store.
func NewBook(in BookInput, now time.Time) *Book {
	available := true
	if in.IsAvailable != nil {
		available = *in.IsAvailable
	}
	return &Book{
		Title:       in.Title,
		Author:      in.Author,
		Year:        in.Year,
		Genre:       in.Genre,
		Description: clonePtr(in.Description),
		IsAvailable: available,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// BookPatch is a partial update of a book. Unset fields are left unchanged;
// Description set to nil clears it.
type BookPatch struct {
	Title       Optional[string]
	Author      Optional[string]
	Year        Optional[int]
	Genre       Optional[string]
	Description Optional[*string]
	IsAvailable Optional[bool]
}

// ApplyTo writes every set field into b and refreshes UpdatedAt.
func (p BookPatch) ApplyTo(b *Book, now time.Time) {
	p.Title.ApplyTo(&b.Title)
	p.Author.ApplyTo(&b.Author)
	p.Year.ApplyTo(&b.Year)
	p.Genre.ApplyTo(&b.Genre)
	if desc, ok := p.Description.Get(); ok {
		b.Description = clonePtr(desc)
	}
	p.IsAvailable.ApplyTo(&b.IsAvailable)
	b.UpdatedAt = now
}

// BookFilter selects books by case-insensitive substring. Empty fields do
// not constrain the result; non-empty fields are combined with AND.
type BookFilter struct {
	Title  string
	Author string
	Genre  string
}

// IsEmpty reports whether the filter matches every book.
func (f BookFilter) IsEmpty() bool {
	return f.Title == "" && f.Author == "" && f.Genre == ""
}

// Matches reports whether b satisfies every non-empty field of the filter.
func (f BookFilter) Matches(b *Book) bool {
	return normalize.ContainsFold(b.Title, f.Title) &&
		normalize.ContainsFold(b.Author, f.Author) &&
		normalize.ContainsFold(b.Genre, f.Genre)
}
