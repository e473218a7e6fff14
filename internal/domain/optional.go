package domain

// Optional is a patch field that is either unset or carries a value.
// The zero value is unset, so a patch struct built with only the fields a
// caller cares about leaves every other field untouched.
type Optional[T any] struct {
	value T
	set   bool
}

// Some returns an Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, set: true}
}

// Unset returns an empty Optional.
func Unset[T any]() Optional[T] {
	return Optional[T]{}
}

// IsSet reports whether a value was provided.
func (o Optional[T]) IsSet() bool {
	return o.set
}

// Get returns the value and whether it was provided.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.set
}

// ApplyTo writes the value into dst when set and reports whether it did.
func (o Optional[T]) ApplyTo(dst *T) bool {
	if !o.set {
		return false
	}
	*dst = o.value
	return true
}

// clonePtr copies the pointee so stored records never alias caller memory.
func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
