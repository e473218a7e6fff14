package store

// Default and maximum page sizes for catalog listings.
const (
	DefaultPageLimit = 100
	MaxPageLimit     = 1000
)

// Page selects a window of an id-ordered listing.
type Page struct {
	Offset int
	Limit  int
}

// DefaultPage returns the first page with the default size.
func DefaultPage() Page {
	return Page{Offset: 0, Limit: DefaultPageLimit}
}

// Normalize clamps the page to sane bounds: a non-positive limit becomes the
// default, an oversized one is capped, and a negative offset becomes zero.
func (p Page) Normalize() Page {
	if p.Limit <= 0 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}
