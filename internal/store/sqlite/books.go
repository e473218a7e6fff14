package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"

	"github.com/shelfkeeper/shelfkeeper-server/internal/domain"
	"github.com/shelfkeeper/shelfkeeper-server/internal/normalize"
	"github.com/shelfkeeper/shelfkeeper-server/internal/store"
)

// bookColumns is the ordered list of columns selected in book queries.
// Must match the scan order in scanBook.
var bookColumns = []any{
	"id", "title", "author", "year", "genre", "description",
	"is_available", "created_at", "updated_at",
}

// scanBook scans a sql.Row (or sql.Rows via its Scan method) into a domain.Book.
func scanBook(scanner interface{ Scan(dest ...any) error }) (*domain.Book, error) {
	var b domain.Book

	var (
		description sql.NullString
		isAvailable int
		createdAt   string
		updatedAt   string
	)

	err := scanner.Scan(
		&b.ID,
		&b.Title,
		&b.Author,
		&b.Year,
		&b.Genre,
		&description,
		&isAvailable,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if description.Valid {
		d := description.String
		b.Description = &d
	}
	b.IsAvailable = isAvailable != 0

	b.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	b.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}

	return &b, nil
}

func (s *Store) scanBooks(rows *sql.Rows) ([]*domain.Book, error) {
	defer rows.Close()

	books := make([]*domain.Book, 0)
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	return books, rows.Err()
}

// CreateBook inserts a book and assigns its ID.
func (s *Store) CreateBook(ctx context.Context, book *domain.Book) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO books (
			title, author, year, genre, description, is_available,
			title_key, author_key, genre_key, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		book.Title,
		book.Author,
		book.Year,
		book.Genre,
		nullableString(book.Description),
		boolToInt(book.IsAvailable),
		normalize.SearchKey(book.Title),
		normalize.SearchKey(book.Author),
		normalize.SearchKey(book.Genre),
		formatTime(book.CreatedAt),
		formatTime(book.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert book: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("book id: %w", err)
	}
	book.ID = id
	return nil
}

// GetBook retrieves a book by ID.
// Returns store.ErrBookNotFound if the book does not exist.
func (s *Store) GetBook(ctx context.Context, id int64) (*domain.Book, error) {
	return s.getBook(ctx, s.db, id)
}

func (s *Store) getBook(ctx context.Context, q rowQuerier, id int64) (*domain.Book, error) {
	query, args, err := dialect.From("books").
		Select(bookColumns...).
		Where(goqu.C("id").Eq(id)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	b, err := scanBook(q.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrBookNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// GetBooksByIDs returns the books that exist among ids, keyed by ID.
// Missing IDs are absent from the map.
func (s *Store) GetBooksByIDs(ctx context.Context, ids []int64) (map[int64]*domain.Book, error) {
	result := make(map[int64]*domain.Book, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	rows, err := s.query(ctx, dialect.From("books").
		Select(bookColumns...).
		Where(goqu.C("id").In(ids)))
	if err != nil {
		return nil, err
	}
	books, err := s.scanBooks(rows)
	if err != nil {
		return nil, err
	}

	for _, b := range books {
		result[b.ID] = b
	}
	return result, nil
}

// ListBooks returns one page of the catalog in ascending ID order.
func (s *Store) ListBooks(ctx context.Context, page store.Page) ([]*domain.Book, error) {
	page = page.Normalize()

	rows, err := s.query(ctx, dialect.From("books").
		Select(bookColumns...).
		Order(goqu.C("id").Asc()).
		Limit(uint(page.Limit)).
		Offset(uint(page.Offset)))
	if err != nil {
		return nil, err
	}
	return s.scanBooks(rows)
}

// CountBooks returns the number of books in the catalog.
func (s *Store) CountBooks(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM books`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// UpdateBook applies patch to the stored book in a single statement and
// returns the result. Only the patched columns are written.
// Returns store.ErrBookNotFound if the book does not exist.
func (s *Store) UpdateBook(ctx context.Context, id int64, patch domain.BookPatch, now time.Time) (*domain.Book, error) {
	record := goqu.Record{"updated_at": formatTime(now)}
	if v, ok := patch.Title.Get(); ok {
		record["title"] = v
		record["title_key"] = normalize.SearchKey(v)
	}
	if v, ok := patch.Author.Get(); ok {
		record["author"] = v
		record["author_key"] = normalize.SearchKey(v)
	}
	if v, ok := patch.Year.Get(); ok {
		record["year"] = v
	}
	if v, ok := patch.Genre.Get(); ok {
		record["genre"] = v
		record["genre_key"] = normalize.SearchKey(v)
	}
	if v, ok := patch.Description.Get(); ok {
		record["description"] = nullableValue(v)
	}
	if v, ok := patch.IsAvailable.Get(); ok {
		record["is_available"] = boolToInt(v)
	}

	query, args, err := dialect.Update("books").
		Set(record).
		Where(goqu.C("id").Eq(id)).
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
		return nil, fmt.Errorf("update book: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, store.ErrBookNotFound
	}

	b, err := s.getBook(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return b, nil
}

// DeleteBook removes a book. Library entries referencing it are kept.
// Returns false if the book did not exist.
func (s *Store) DeleteBook(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM books WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete book: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// SearchBooks returns books whose title, author and genre each contain the
// corresponding non-empty filter field, ignoring case. Results are ordered by ID.
func (s *Store) SearchBooks(ctx context.Context, filter domain.BookFilter) ([]*domain.Book, error) {
	ds := dialect.From("books").
		Select(bookColumns...).
		Order(goqu.C("id").Asc())

	terms := []struct{ column, needle string }{
		{"title_key", filter.Title},
		{"author_key", filter.Author},
		{"genre_key", filter.Genre},
	}
	for _, term := range terms {
		if term.needle == "" {
			continue
		}
		ds = ds.Where(goqu.L("instr(?, ?) > 0", goqu.C(term.column), normalize.SearchKey(term.needle)))
	}

	rows, err := s.query(ctx, ds)
	if err != nil {
		return nil, err
	}
	return s.scanBooks(rows)
}
