package errors

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsMatchesByCode(t *testing.T) {
	err := NotFoundf("book %d not found", 7)

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrValidation))
	assert.Equal(t, "book 7 not found", err.Error())
}

func TestWrappedDomainErrorStillMatches(t *testing.T) {
	err := fmt.Errorf("update entry: %w", ValidationWithDetails("validation failed", map[string]string{"rating": "must be less than or equal to 5"}))

	assert.True(t, errors.Is(err, ErrValidation))

	var domainErr *Error
	assert.True(t, errors.As(err, &domainErr))
	assert.Equal(t, CodeValidation, domainErr.Code)
}

func TestWrapKeepsCause(t *testing.T) {
	err := Wrap(io.ErrUnexpectedEOF, CodeInternal, "read book")

	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.Equal(t, "read book: unexpected EOF", err.Error())
}

func TestHTTPStatus(t *testing.T) {
	tests := map[Code]int{
		CodeNotFound:     http.StatusNotFound,
		CodeValidation:   http.StatusBadRequest,
		CodeUnauthorized: http.StatusUnauthorized,
		CodeForbidden:    http.StatusForbidden,
		CodeRateLimited:  http.StatusTooManyRequests,
		CodeInternal:     http.StatusInternalServerError,
		Code("UNKNOWN"):  http.StatusInternalServerError,
	}
	for code, want := range tests {
		assert.Equal(t, want, code.HTTPStatus(), string(code))
	}
}
