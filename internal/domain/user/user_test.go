package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minsukang/accounts/internal/domain/shared"
)

func TestNewUser(t *testing.T) {
	t.Run("should hash the password and normalize the email", func(t *testing.T) {
		u, err := NewUser("  Alice@Example.COM ", "secret123")
		require.NoError(t, err)

		assert.Equal(t, "alice@example.com", u.Email)
		assert.NotEmpty(t, u.PasswordHash)
		assert.NotContains(t, u.PasswordHash, "secret123")
		assert.True(t, u.ID.IsZero(), "id is assigned by the repository, not the constructor")
		assert.Equal(t, u.CreatedAt, u.UpdatedAt)
	})

	t.Run("should reject invalid emails", func(t *testing.T) {
		for _, email := range []string{"", "no-at-sign", "@example.com", "alice@"} {
			_, err := NewUser(email, "secret123")
			require.Error(t, err, "email %q", email)
			assert.True(t, shared.HasCode(err, shared.ErrCodeInvalidInput))
		}
	})

	t.Run("should reject short passwords", func(t *testing.T) {
		_, err := NewUser("alice@example.com", "short")
		require.Error(t, err)
		assert.True(t, shared.HasCode(err, shared.ErrCodeInvalidInput))
	})
}

func TestUser_Authenticate(t *testing.T) {
	u, err := NewUser("alice@example.com", "secret123")
	require.NoError(t, err)

	t.Run("should accept the original password", func(t *testing.T) {
		assert.True(t, u.Authenticate("secret123"))
	})

	t.Run("should reject any other password", func(t *testing.T) {
		assert.False(t, u.Authenticate("secret124"))
		assert.False(t, u.Authenticate(""))
	})
}

func TestHashPassword(t *testing.T) {
	t.Run("should produce distinct hashes for the same input", func(t *testing.T) {
		first, err := HashPassword("secret123")
		require.NoError(t, err)
		second, err := HashPassword("secret123")
		require.NoError(t, err)
		assert.NotEqual(t, first, second, "bcrypt salts every hash")
	})
}
