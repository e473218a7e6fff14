// Package id generates short random identifiers.
package id

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// guestAlphabet keeps generated usernames lowercase and unambiguous in URLs.
const guestAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// GuestSuffixLength is the number of random characters in a guest username.
const GuestSuffixLength = 8

// Generate returns prefix followed by size random characters from the guest
// alphabet, e.g. Generate("user_", 8) yields "user_k3v9q0zd".
//
// Returns an error if the system has insufficient entropy for secure random generation.
func Generate(prefix string, size int) (string, error) {
	suffix, err := gonanoid.Generate(guestAlphabet, size)
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + suffix, nil
}

// GuestUsername returns a fresh username of the form "user_xxxxxxxx".
func GuestUsername() (string, error) {
	return Generate("user_", GuestSuffixLength)
}
