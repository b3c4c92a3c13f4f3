package domain

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAvatarURLIsDeterministic(t *testing.T) {
	assert.Equal(t, "https://api.dicebear.com/7.x/avatars/svg?seed=bob", AvatarURL("bob"))
	assert.Equal(t, AvatarURL("bob"), AvatarURL("bob"))
	assert.Equal(t, "https://api.dicebear.com/7.x/avatars/svg?seed=ann+lee%26co", AvatarURL("ann lee&co"))
}

func TestNewMessage(t *testing.T) {
	t.Run("keeps content as typed", func(t *testing.T) {
		msg, err := NewMessage("bob", "  hi  ")
		require.NoError(t, err)
		assert.Equal(t, "  hi  ", msg.Content)
		assert.Equal(t, "bob", msg.UserName)
		assert.Equal(t, AvatarURL("bob"), msg.AvatarURL)
		assert.NoError(t, msg.Validate())
	})

	for _, content := range []string{"", "   ", "\n\t"} {
		_, err := NewMessage("bob", content)
		assert.ErrorIs(t, err, ErrEmptyMessage, "content %q", content)
	}

	_, err := NewMessage("", "hello")
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestCredentialsValidate(t *testing.T) {
	assert.NoError(t, Credentials{Username: "alice", Password: "secret"}.Validate())
	assert.ErrorIs(t, Credentials{Username: "  ", Password: "secret"}.Validate(), ErrMissingCredentials)
	assert.ErrorIs(t, Credentials{Username: "alice", Password: ""}.Validate(), ErrMissingCredentials)
	assert.NoError(t, Credentials{Username: strings.Repeat("a", 200), Password: "secret"}.Validate(), "usernames have no length limit")
}

func TestDescribe(t *testing.T) {
	wrapped := fmt.Errorf("login: %w", ErrInvalidCredentials)
	assert.Equal(t, "Invalid credentials", Describe(wrapped, "Authentication failed"))
	assert.Equal(t, "Username already taken", Describe(ErrUsernameTaken, "Authentication failed"))
	assert.Equal(t, "Authentication failed", Describe(errors.New("boom"), "Authentication failed"))
}
