package store

import "errors"

// Sentinel errors returned by Store implementations.
var (
	ErrBookNotFound  = errors.New("book not found")
	ErrUserNotFound  = errors.New("user not found")
	ErrEntryNotFound = errors.New("library entry not found")
)

// IsNotFound reports whether err is one of the not-found sentinels.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrBookNotFound) ||
		errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrEntryNotFound)
}
