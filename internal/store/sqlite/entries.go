package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"

	"github.com/shelfkeeper/shelfkeeper-server/internal/domain"
	"github.com/shelfkeeper/shelfkeeper-server/internal/store"
)

// entryColumns must match the scan order in scanEntry.
const entryColumns = `id, user_id, book_id, is_read, rating, notes, added_at`

func scanEntry(scanner interface{ Scan(dest ...any) error }) (*domain.LibraryEntry, error) {
	var e domain.LibraryEntry

	var (
		isRead  int
		rating  sql.NullInt64
		notes   sql.NullString
		addedAt string
	)

	err := scanner.Scan(
		&e.ID,
		&e.UserID,
		&e.BookID,
		&isRead,
		&rating,
		&notes,
		&addedAt,
	)
	if err != nil {
		return nil, err
	}

	e.IsRead = isRead != 0
	if rating.Valid {
		r := int(rating.Int64)
		e.Rating = &r
	}
	if notes.Valid {
		n := notes.String
		e.Notes = &n
	}
	e.AddedAt, err = parseTime(addedAt)
	if err != nil {
		return nil, fmt.Errorf("parse added_at: %w", err)
	}

	return &e, nil
}

func (s *Store) getEntry(ctx context.Context, q rowQuerier, userID, bookID int64) (*domain.LibraryEntry, error) {
	e, err := scanEntry(q.QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM library_entries WHERE user_id = ? AND book_id = ?`,
		userID, bookID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrEntryNotFound
	}
	return e, err
}

// AddEntry inserts entry unless the user already has one for the book, and
// returns whichever entry is stored. created reports whether this call
// inserted it. An existing entry is returned unchanged.
func (s *Store) AddEntry(ctx context.Context, entry *domain.LibraryEntry) (*domain.LibraryEntry, bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO library_entries (user_id, book_id, is_read, rating, notes, added_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, book_id) DO NOTHING`,
		entry.UserID,
		entry.BookID,
		boolToInt(entry.IsRead),
		nullableInt(entry.Rating),
		nullableString(entry.Notes),
		formatTime(entry.AddedAt),
	)
	if err != nil {
		return nil, false, fmt.Errorf("insert library entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, false, err
	}

	stored, err := s.getEntry(ctx, tx, entry.UserID, entry.BookID)
	if err != nil {
		return nil, false, err
	}
	if err := tx.Commit(); err != nil {
		return nil, false, err
	}
	return stored, n > 0, nil
}

// GetEntry retrieves the user's entry for a book.
// Returns store.ErrEntryNotFound if there is none.
func (s *Store) GetEntry(ctx context.Context, userID, bookID int64) (*domain.LibraryEntry, error) {
	return s.getEntry(ctx, s.db, userID, bookID)
}

// UpdateEntry applies patch to the stored entry in a single statement and
// returns the result. An empty patch returns the entry unchanged.
// Returns store.ErrEntryNotFound if there is none.
func (s *Store) UpdateEntry(ctx context.Context, userID, bookID int64, patch domain.EntryPatch) (*domain.LibraryEntry, error) {
	if patch.IsEmpty() {
		return s.GetEntry(ctx, userID, bookID)
	}

	record := goqu.Record{}
	if v, ok := patch.IsRead.Get(); ok {
		record["is_read"] = boolToInt(v)
	}
	if v, ok := patch.Rating.Get(); ok {
		record["rating"] = nullableValue(v)
	}
	if v, ok := patch.Notes.Get(); ok {
		record["notes"] = nullableValue(v)
	}

	query, args, err := dialect.Update("library_entries").
		Set(record).
		Where(goqu.C("user_id").Eq(userID), goqu.C("book_id").Eq(bookID)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build update: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("update library entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, store.ErrEntryNotFound
	}

	e, err := s.getEntry(ctx, tx, userID, bookID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return e, nil
}

// DeleteEntry removes the user's entry for a book.
// Returns false if there was none.
func (s *Store) DeleteEntry(ctx context.Context, userID, bookID int64) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM library_entries WHERE user_id = ? AND book_id = ?`, userID, bookID)
	if err != nil {
		return false, fmt.Errorf("delete library entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListEntriesByUser returns every entry the user owns, oldest first.
func (s *Store) ListEntriesByUser(ctx context.Context, userID int64) ([]*domain.LibraryEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+entryColumns+` FROM library_entries WHERE user_id = ? ORDER BY added_at, id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]*domain.LibraryEntry, 0)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
