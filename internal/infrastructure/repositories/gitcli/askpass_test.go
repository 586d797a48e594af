//go:build unit

package gitcli //nolint:testpackage // tests unexported functions

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/secureclone/internal/domain/entities"
)

func newTestCredential() *entities.Credential {
	return entities.NewCredential("azdo", []byte("s3cr3t-token"), entities.CredentialSourceFile)
}

func TestAskpassHandle(t *testing.T) {
	t.Parallel()

	t.Run("should write an owner-only helper that does not contain the token", func(t *testing.T) {
		t.Parallel()

		// given
		credential := newTestCredential()

		// when
		handle, err := NewAskpassHandle(credential)

		// then
		require.NoError(t, err)
		t.Cleanup(func() { _ = handle.Close() })
		info, statErr := os.Stat(handle.Path())
		require.NoError(t, statErr)
		assert.Equal(t, os.FileMode(0o700), info.Mode().Perm())
		content, readErr := os.ReadFile(handle.Path())
		require.NoError(t, readErr)
		assert.NotContains(t, string(content), "s3cr3t-token")
	})

	t.Run("should pass the secret only through the child environment", func(t *testing.T) {
		t.Parallel()

		// given
		handle, err := NewAskpassHandle(newTestCredential())
		require.NoError(t, err)
		t.Cleanup(func() { _ = handle.Close() })

		// when
		env := handle.Env()

		// then
		assert.Contains(t, env, "GIT_ASKPASS="+handle.Path())
		assert.Contains(t, env, "GIT_TERMINAL_PROMPT=0")
		assert.Contains(t, env, usernameEnv+"=azdo")
		assert.Contains(t, env, tokenEnv+"=s3cr3t-token")
	})

	t.Run("should answer git prompts from the environment", func(t *testing.T) {
		t.Parallel()

		// given
		if _, lookErr := exec.LookPath("sh"); lookErr != nil {
			t.Skip("sh is not available")
		}
		handle, err := NewAskpassHandle(newTestCredential())
		require.NoError(t, err)
		t.Cleanup(func() { _ = handle.Close() })
		ask := func(prompt string) string {
			cmd := exec.Command(handle.Path(), prompt)
			cmd.Env = handle.Env()
			out, runErr := cmd.Output()
			require.NoError(t, runErr)
			return strings.TrimSpace(string(out))
		}

		// when
		username := ask("Username for 'https://dev.azure.com': ")
		password := ask("Password for 'https://azdo@dev.azure.com': ")

		// then
		assert.Equal(t, "azdo", username)
		assert.Equal(t, "s3cr3t-token", password)
	})

	t.Run("should remove the helper on close and tolerate a second close", func(t *testing.T) {
		t.Parallel()

		// given
		handle, err := NewAskpassHandle(newTestCredential())
		require.NoError(t, err)
		dir := filepath.Dir(handle.Path())

		// when
		firstErr := handle.Close()
		secondErr := handle.Close()

		// then
		require.NoError(t, firstErr)
		require.NoError(t, secondErr)
		assert.NoDirExists(t, dir)
		assert.NotContains(t, strings.Join(handle.Env(), " "), "s3cr3t-token")
	})

	t.Run("should let git commands read the environment while a signal closes the helper", func(t *testing.T) {
		t.Parallel()

		// given
		handle, err := NewAskpassHandle(newTestCredential())
		require.NoError(t, err)
		dir := filepath.Dir(handle.Path())
		var readers sync.WaitGroup
		for range 4 {
			readers.Add(1)
			go func() {
				defer readers.Done()
				for range 200 {
					env := handle.Env()
					assert.Len(t, env, 4)
				}
			}()
		}

		// when
		handle.signals <- syscall.SIGTERM
		readers.Wait()

		// then
		assert.Eventually(t, func() bool {
			_, statErr := os.Stat(dir)
			return os.IsNotExist(statErr)
		}, 2*time.Second, 10*time.Millisecond)
		assert.Contains(t, handle.Env(), tokenEnv+"=")
	})
}
