package userauth_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	userauth "github.com/cmontedonico/go-userauth"
)

func TestUserJSONNeverIncludesHash(t *testing.T) {
	now := time.Now()
	user := &userauth.User{
		ID:           uuid.New(),
		Email:        "ada@example.com",
		PasswordHash: "$2a$12$abcdefghijklmnopqrstuv",
		FirstName:    "Ada",
		IsActive:     true,
		CreatedAt:    &now,
	}

	raw, err := json.Marshal(user)
	require.NoError(t, err)

	assert.NotContains(t, string(raw), "password")
	assert.NotContains(t, string(raw), "$2a$")
	assert.Contains(t, string(raw), "ada@example.com")
}

func TestUserProfile(t *testing.T) {
	t.Run("copies the public fields", func(t *testing.T) {
		user := &userauth.User{
			ID:           uuid.New(),
			Email:        "ada@example.com",
			PasswordHash: "hash",
			FirstName:    "Ada",
			LastName:     "Lovelace",
			Phone:        "+14155552671",
			IsActive:     true,
		}

		profile := user.Profile()

		require.NotNil(t, profile)
		assert.Equal(t, user.ID, profile.ID)
		assert.Equal(t, user.Email, profile.Email)
		assert.Equal(t, user.FirstName, profile.FirstName)
		assert.Equal(t, user.LastName, profile.LastName)
		assert.Equal(t, user.Phone, profile.Phone)
		assert.True(t, profile.IsActive)
	})

	t.Run("nil receiver yields nil", func(t *testing.T) {
		var user *userauth.User

		assert.Nil(t, user.Profile())
	})

	t.Run("profile has no hash field at all", func(t *testing.T) {
		user := &userauth.User{Email: "a@example.com", PasswordHash: "secret-hash"}

		raw, err := json.Marshal(user.Profile())
		require.NoError(t, err)

		assert.NotContains(t, string(raw), "secret-hash")
		assert.NotContains(t, string(raw), "password")
	})
}

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercases", "Ada@Example.COM", "ada@example.com"},
		{"trims whitespace", "  ada@example.com  ", "ada@example.com"},
		{"already normal", "ada@example.com", "ada@example.com"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, userauth.NormalizeEmail(tt.input))
		})
	}
}
