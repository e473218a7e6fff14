// Package main provides shelfctl, an operator tool for inspecting and
// seeding a Shelfkeeper data directory without running the HTTP server.
//
// Usage:
//
//	shelfctl seed
//	shelfctl books list --skip 0 --limit 20
//	shelfctl books search --genre роман
//	shelfctl library show test_user
//	shelfctl hash-token
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
