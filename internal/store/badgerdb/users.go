package badgerdb

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/shelfkeeper/shelfkeeper-server/internal/domain"
	"github.com/shelfkeeper/shelfkeeper-server/internal/store"
)

func getUser(txn *badger.Txn, id int64) (*domain.User, error) {
	var u domain.User
	if err := getJSON(txn, userKey(id), &u); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, store.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func getUserByUsername(txn *badger.Txn, username string) (*domain.User, error) {
	item, err := txn.Get(usernameKey(username))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, store.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	var id int64
	if err := item.Value(func(val []byte) error {
		id, err = strconv.ParseInt(string(val), 10, 64)
		return err
	}); err != nil {
		return nil, err
	}
	return getUser(txn, id)
}

// GetOrCreateUser returns the user with the given username, inserting it
// first if absent. Racing callers conflict on the username index key; the
// loser replays and finds the winner's record.
func (s *Store) GetOrCreateUser(ctx context.Context, username string, now time.Time) (*domain.User, bool, error) {
	var (
		user    *domain.User
		created bool
	)
	err := s.update(ctx, func(txn *badger.Txn) error {
		created = false
		u, err := getUserByUsername(txn, username)
		if err == nil {
			user = u
			return nil
		}
		if !errors.Is(err, store.ErrUserNotFound) {
			return err
		}

		id, err := nextID(s.userSeq)
		if err != nil {
			return err
		}
		u = &domain.User{ID: id, Username: username, CreatedAt: now}
		if err := setJSON(txn, userKey(id), u); err != nil {
			return err
		}
		if err := txn.Set(usernameKey(username), strconv.AppendInt(nil, id, 10)); err != nil {
			return err
		}
		user, created = u, true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	if created {
		s.logger.Debug("user created", "user_id", user.ID, "username", username)
	}
	return user, created, nil
}

// GetUser retrieves a user by ID.
// Returns store.ErrUserNotFound if the user does not exist.
func (s *Store) GetUser(_ context.Context, id int64) (*domain.User, error) {
	var u *domain.User
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		u, err = getUser(txn, id)
		return err
	})
	return u, err
}

// GetUserByUsername retrieves a user by exact username.
// Returns store.ErrUserNotFound if the user does not exist.
func (s *Store) GetUserByUsername(_ context.Context, username string) (*domain.User, error) {
	var u *domain.User
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		u, err = getUserByUsername(txn, username)
		return err
	})
	return u, err
}
