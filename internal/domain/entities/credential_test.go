//go:build unit

package entities_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rios0rios0/secureclone/internal/domain/entities"
)

func TestCredentialRespond(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		prompt   string
		expected string
	}{
		{name: "should answer the username prompt", prompt: "Username for 'https://github.com': ", expected: "x-access-token"},
		{name: "should ignore case in the username prompt", prompt: "USERNAME:", expected: "x-access-token"},
		{name: "should answer the password prompt with the token", prompt: "Password for 'https://github.com': ", expected: "ghp_token"},
		{name: "should answer any other prompt with the token", prompt: "Passphrase?", expected: "ghp_token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			// given
			credential := entities.NewCredential("x-access-token", []byte("ghp_token"), entities.CredentialSourceFile)

			// when
			answer := credential.Respond(tt.prompt)

			// then
			assert.Equal(t, tt.expected, answer)
		})
	}
}

func TestCredentialLifecycle(t *testing.T) {
	t.Parallel()

	t.Run("should own a copy of the token", func(t *testing.T) {
		t.Parallel()

		// given
		buffer := []byte("ghp_token")
		credential := entities.NewCredential("azdo", buffer, entities.CredentialSourceEnv)

		// when
		buffer[0] = 'X'

		// then
		assert.Equal(t, "ghp_token", credential.Token())
	})

	t.Run("should never render the token", func(t *testing.T) {
		t.Parallel()

		// given
		credential := entities.NewCredential("azdo", []byte("ghp_token"), entities.CredentialSourceFile)

		// when
		rendered := credential.String()

		// then
		assert.NotContains(t, rendered, "ghp_token")
		assert.Equal(t, "azdo:**** (from file)", rendered)
	})

	t.Run("should be empty after wipe", func(t *testing.T) {
		t.Parallel()

		// given
		credential := entities.NewCredential("azdo", []byte("ghp_token"), entities.CredentialSourceFile)

		// when
		credential.Wipe()

		// then
		assert.True(t, credential.Empty())
		assert.Empty(t, credential.Token())
		assert.Empty(t, credential.Respond("Password"))
		assert.Equal(t, "azdo:<empty> (from file)", credential.String())
	})
}
