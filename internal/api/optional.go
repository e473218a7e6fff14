package api

import (
	"bytes"
	"reflect"

	"github.com/danielgtaylor/huma/v2"

	"github.com/shelfkeeper/shelfkeeper-server/internal/domain"
	domainerrors "github.com/shelfkeeper/shelfkeeper-server/internal/errors"
)

// OmittableNullable is a JSON body field that distinguishes "omitted",
// "null" and a value. Patch bodies use it so omission leaves a field
// unchanged while null clears it.
type OmittableNullable[T any] struct {
	Sent  bool
	Null  bool
	Value T
}

// UnmarshalJSON is only called when the key is present.
func (o *OmittableNullable[T]) UnmarshalJSON(b []byte) error {
	o.Sent = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		o.Null = true
		return nil
	}
	return json.Unmarshal(b, &o.Value)
}

// Schema documents the field as the schema of T, plus null.
func (o OmittableNullable[T]) Schema(r huma.Registry) *huma.Schema {
	s := r.Schema(reflect.TypeOf(o.Value), true, "")
	s.Nullable = true
	return s
}

// nullable converts the field for a column that may be cleared: null maps
// to Some(nil).
func nullable[T any](o OmittableNullable[T]) domain.Optional[*T] {
	switch {
	case !o.Sent:
		return domain.Unset[*T]()
	case o.Null:
		return domain.Some[*T](nil)
	default:
		v := o.Value
		return domain.Some(&v)
	}
}

// required converts the field for a column that cannot be cleared; null is
// rejected with a validation error naming the field.
func required[T any](o OmittableNullable[T], field string, details map[string]string) domain.Optional[T] {
	switch {
	case !o.Sent:
		return domain.Unset[T]()
	case o.Null:
		details[field] = "cannot be null"
		return domain.Unset[T]()
	default:
		return domain.Some(o.Value)
	}
}

// nullFieldsError reports the fields required() rejected, if any.
func nullFieldsError(details map[string]string) error {
	if len(details) == 0 {
		return nil
	}
	return domainerrors.ValidationWithDetails("validation failed", details)
}
