package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeOf(t *testing.T) {
	t.Run("should extract the code from domain errors", func(t *testing.T) {
		assert.Equal(t, "NOT_FOUND", CodeOf(ErrNotFound("users")))
		assert.Equal(t, "ALREADY_EXISTS", CodeOf(ErrAlreadyExists("users")))
		assert.Equal(t, "INVALID_IDENTIFIER", CodeOf(ErrInvalidIdentifier("xyz")))
		assert.Equal(t, "INVALID_CREDENTIALS", CodeOf(ErrInvalidCredentials()))
		assert.Equal(t, "UNAUTHENTICATED", CodeOf(ErrUnauthenticated()))
	})

	t.Run("should survive fmt wrapping", func(t *testing.T) {
		wrapped := fmt.Errorf("while loading profile: %w", ErrNotFound("users"))
		assert.Equal(t, "NOT_FOUND", CodeOf(wrapped))
	})

	t.Run("should report UNKNOWN for foreign errors", func(t *testing.T) {
		assert.Equal(t, "UNKNOWN", CodeOf(errors.New("plain")))
	})

	t.Run("should be empty for nil", func(t *testing.T) {
		assert.Empty(t, CodeOf(nil))
	})
}

func TestHasCode(t *testing.T) {
	err := ErrStoreUnavailable(errors.New("connection refused"))

	assert.True(t, HasCode(err, ErrCodeStoreUnavailable))
	assert.False(t, HasCode(err, ErrCodeNotFound))
	assert.False(t, HasCode(nil, ErrCodeNotFound))
}
