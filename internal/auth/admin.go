package auth

import (
	"errors"
	"fmt"
)

// ErrNoAdminToken is returned when neither a token nor a hash is configured.
var ErrNoAdminToken = errors.New("admin token not configured")

// AdminGuard verifies the shared admin token. Only an Argon2id hash of the
// token is held in memory.
type AdminGuard struct {
	encoded string
}

// NewAdminGuard builds a guard from a plaintext token or a pre-computed
// Argon2id hash. A non-empty hash wins over the token.
func NewAdminGuard(token, encodedHash string) (*AdminGuard, error) {
	if encodedHash != "" {
		if _, _, _, err := decodeHash(encodedHash); err != nil {
			return nil, fmt.Errorf("admin token hash: %w", err)
		}
		return &AdminGuard{encoded: encodedHash}, nil
	}
	if token == "" {
		return nil, ErrNoAdminToken
	}

	encoded, err := HashSecret(token)
	if err != nil {
		return nil, fmt.Errorf("hash admin token: %w", err)
	}
	return &AdminGuard{encoded: encoded}, nil
}

// Verify reports whether candidate is the admin token.
func (g *AdminGuard) Verify(candidate string) bool {
	return VerifySecret(g.encoded, candidate)
}
