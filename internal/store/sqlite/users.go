package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shelfkeeper/shelfkeeper-server/internal/domain"
	"github.com/shelfkeeper/shelfkeeper-server/internal/store"
)

// userColumns must match the scan order in scanUser.
const userColumns = `id, username, created_at`

func scanUser(scanner interface{ Scan(dest ...any) error }) (*domain.User, error) {
	var (
		u         domain.User
		createdAt string
	)
	if err := scanner.Scan(&u.ID, &u.Username, &createdAt); err != nil {
		return nil, err
	}

	var err error
	u.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	return &u, nil
}

// GetOrCreateUser returns the user with the given username, inserting it
// first if absent. The insert and lookup race safely against concurrent
// callers: the UNIQUE constraint on username makes the loser's insert a no-op.
func (s *Store) GetOrCreateUser(ctx context.Context, username string, now time.Time) (*domain.User, bool, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO users (username, created_at) VALUES (?, ?)
		ON CONFLICT(username) DO NOTHING`,
		username, formatTime(now),
	)
	if err != nil {
		return nil, false, fmt.Errorf("insert user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, false, err
	}

	u, err := s.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, false, err
	}
	if n > 0 {
		s.logger.Debug("user created", "user_id", u.ID, "username", username)
	}
	return u, n > 0, nil
}

// GetUser retrieves a user by ID.
// Returns store.ErrUserNotFound if the user does not exist.
func (s *Store) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrUserNotFound
	}
	return u, err
}

// GetUserByUsername retrieves a user by exact username.
// Returns store.ErrUserNotFound if the user does not exist.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = ?`, username))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrUserNotFound
	}
	return u, err
}
