package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(ErrBookNotFound))
	assert.True(t, IsNotFound(fmt.Errorf("get entry: %w", ErrEntryNotFound)))
	assert.True(t, IsNotFound(ErrUserNotFound))
	assert.False(t, IsNotFound(errors.New("disk full")))
	assert.False(t, IsNotFound(nil))
}
