package service

import (
	"context"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"github.com/shelfkeeper/shelfkeeper-server/internal/domain"
	domainerrors "github.com/shelfkeeper/shelfkeeper-server/internal/errors"
	"github.com/shelfkeeper/shelfkeeper-server/internal/id"
	"github.com/shelfkeeper/shelfkeeper-server/internal/store"
	"github.com/shelfkeeper/shelfkeeper-server/internal/validation"
)

// guestAttempts bounds how many random names CreateGuest tries before
// giving up on finding an unused one.
const guestAttempts = 5

// UserService is the user directory. Users are created on first reference
// by username and never deleted.
type UserService struct {
	store     store.Store
	validator *validation.Validator
	logger    *slog.Logger
	now       Clock

	// inflight collapses concurrent GetOrCreate calls for one username.
	inflight singleflight.Group
}

// NewUserService creates a new user directory.
func NewUserService(st store.Store, v *validation.Validator, logger *slog.Logger) *UserService {
	return &UserService{
		store:     st,
		validator: v,
		logger:    logger,
		now:       defaultClock,
	}
}

func (s *UserService) validateUsername(username string) error {
	return s.validator.Fields(validation.Field{
		Name:  "username",
		Value: username,
		Tag:   "required,max=100",
	})
}

// GetOrCreate returns the user with the given username, registering it on
// first reference. Concurrent calls for the same username return the same user.
func (s *UserService) GetOrCreate(ctx context.Context, username string) (*domain.User, error) {
	user, _, err := s.getOrCreate(ctx, username)
	return user, err
}

type getOrCreateResult struct {
	user    *domain.User
	created bool
}

func (s *UserService) getOrCreate(ctx context.Context, username string) (*domain.User, bool, error) {
	if err := s.validateUsername(username); err != nil {
		return nil, false, err
	}

	// The flight outlives any one caller, so it runs detached from the
	// leader's cancellation. Only the leader may report created.
	leader := false
	ch := s.inflight.DoChan(username, func() (any, error) {
		leader = true
		user, created, err := s.store.GetOrCreateUser(context.WithoutCancel(ctx), username, s.now())
		if err != nil {
			return nil, err
		}
		if created {
			s.logger.Info("user registered",
				"user_id", user.ID,
				"username", user.Username,
			)
		}
		return getOrCreateResult{user: user, created: created}, nil
	})

	select {
	case <-ctx.Done():
		return nil, false, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return nil, false, wrapInternal(r.Err, "get or create user")
		}
		res := r.Val.(getOrCreateResult)
		return res.user, res.created && leader, nil
	}
}

// Get returns a user by ID.
func (s *UserService) Get(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, notFoundOr(err, "get user", "user %d not found", userID)
	}
	return user, nil
}

// GetByUsername returns a user by exact username without creating it.
func (s *UserService) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, notFoundOr(err, "get user", "user %q not found", username)
	}
	return user, nil
}

// lookup resolves username without creating it. A missing user yields
// (nil, nil).
func (s *UserService) lookup(ctx context.Context, username string) (*domain.User, error) {
	user, err := s.store.GetUserByUsername(ctx, username)
	if store.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapInternal(err, "get user")
	}
	return user, nil
}

// CreateGuest registers a user under a freshly generated "user_xxxxxxxx" name.
func (s *UserService) CreateGuest(ctx context.Context) (*domain.User, error) {
	for range guestAttempts {
		username, err := id.GuestUsername()
		if err != nil {
			return nil, wrapInternal(err, "generate guest username")
		}

		user, created, err := s.getOrCreate(ctx, username)
		if err != nil {
			return nil, err
		}
		if created {
			return user, nil
		}
	}
	return nil, domainerrors.Internal("could not allocate a guest username")
}
