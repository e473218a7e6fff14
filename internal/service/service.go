// Package service holds the business logic of the catalog and reading
// libraries. Services validate input, enforce the entity invariants and
// translate store sentinels into domain errors.
package service

import (
	"context"
	"errors"
	"time"

	domainerrors "github.com/shelfkeeper/shelfkeeper-server/internal/errors"
	"github.com/shelfkeeper/shelfkeeper-server/internal/store"
)

// Clock returns the current time. Tests substitute a fixed clock.
type Clock func() time.Time

func defaultClock() time.Time {
	return time.Now().UTC()
}

// notFoundOr converts a store not-found sentinel into a domain NotFound error
// with the formatted message and wraps anything else as internal.
func notFoundOr(err error, op, format string, args ...any) error {
	if store.IsNotFound(err) {
		return domainerrors.NotFoundf(format, args...)
	}
	return wrapInternal(err, op)
}

// wrapInternal wraps an unexpected store failure. Context errors pass through.
func wrapInternal(err error, op string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return domainerrors.Wrap(err, domainerrors.CodeInternal, op+" failed")
}
