package domain

import "time"

// Library entry field bounds.
const (
	MinRating      = 1
	MaxRating      = 5
	MaxNotesLength = 500
)

// LibraryEntry is one user's relationship to one book. There is at most one
// entry per (UserID, BookID) pair. The entry references the book by ID only;
// the book may be deleted while the entry survives.
type LibraryEntry struct {
	ID      int64     `json:"id"`
	UserID  int64     `json:"user_id"`
	BookID  int64     `json:"book_id"`
	IsRead  bool      `json:"is_read"`
	Rating  *int      `json:"rating"`
	Notes   *string   `json:"notes"`
	AddedAt time.Time `json:"added_at"`
}

// EntryPatch is a partial update of a library entry. Rating or Notes set to
// nil clears the field; unset fields are left unchanged.
type EntryPatch struct {
	IsRead Optional[bool]
	Rating Optional[*int]
	Notes  Optional[*string]
}

// IsEmpty reports whether the patch changes nothing.
func (p EntryPatch) IsEmpty() bool {
	return !p.IsRead.IsSet() && !p.Rating.IsSet() && !p.Notes.IsSet()
}

// ApplyTo writes every set field into e.
func (p EntryPatch) ApplyTo(e *LibraryEntry) {
	p.IsRead.ApplyTo(&e.IsRead)
	if rating, ok := p.Rating.Get(); ok {
		e.Rating = clonePtr(rating)
	}
	if notes, ok := p.Notes.Get(); ok {
		e.Notes = clonePtr(notes)
	}
}

// NewLibraryEntry builds an unread, unrated entry and applies the initial
// overrides. The ID is assigned by the store.
func NewLibraryEntry(userID, bookID int64, now time.Time, initial EntryPatch) *LibraryEntry {
	e := &LibraryEntry{
		UserID:  userID,
		BookID:  bookID,
		AddedAt: now,
	}
	initial.ApplyTo(e)
	return e
}

// PartitionByRead splits entries into read and unread, preserving order.
// Every entry lands in exactly one of the two slices.
func PartitionByRead(entries []*LibraryEntry) (read, unread []*LibraryEntry) {
	read = make([]*LibraryEntry, 0, len(entries))
	unread = make([]*LibraryEntry, 0, len(entries))
	for _, e := range entries {
		if e.IsRead {
			read = append(read, e)
		} else {
			unread = append(unread, e)
		}
	}
	return read, unread
}

// LibraryItem is a library entry joined with the book it references.
type LibraryItem struct {
	LibraryEntry
	Book *Book `json:"book"`
}
