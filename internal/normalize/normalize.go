// Package normalize builds comparison keys for case-insensitive text matching.
package normalize

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// SearchKey returns the form of s used for substring search.
// It composes s to NFC and applies full Unicode case folding, so "РОМАН",
// "роман" and "Роман" share a key.
// A cases.Caser carries state, so one is built per call.
func SearchKey(s string) string {
	if s == "" {
		return ""
	}
	return cases.Fold().String(norm.NFC.String(s))
}

// ContainsFold reports whether needle occurs in haystack ignoring case.
// An empty needle matches everything.
func ContainsFold(haystack, needle string) bool {
	if needle == "" {
		return true
	}
	return strings.Contains(SearchKey(haystack), SearchKey(needle))
}
