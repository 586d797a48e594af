//go:build unit

package gitconfig_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/secureclone/internal/infrastructure/repositories/gitconfig"
)

func TestSafeDirectoryRepositoryTrust(t *testing.T) {
	t.Parallel()

	t.Run("should create the config file with the directory", func(t *testing.T) {
		t.Parallel()

		// given
		configPath := filepath.Join(t.TempDir(), "git", "config")
		dir := filepath.Join(t.TempDir(), "repos", "app")
		repository := gitconfig.NewSafeDirectoryRepository()

		// when
		err := repository.Trust(configPath, dir)

		// then
		require.NoError(t, err)
		content, readErr := os.ReadFile(configPath)
		require.NoError(t, readErr)
		assert.Contains(t, string(content), "[safe]")
		assert.Contains(t, string(content), "directory = "+dir)
		assert.NoFileExists(t, configPath+".lock")
	})

	t.Run("should add the directory only once", func(t *testing.T) {
		t.Parallel()

		// given
		configPath := filepath.Join(t.TempDir(), ".gitconfig")
		dir := filepath.Join(t.TempDir(), "app")
		repository := gitconfig.NewSafeDirectoryRepository()
		require.NoError(t, repository.Trust(configPath, dir))

		// when
		err := repository.Trust(configPath, dir)

		// then
		require.NoError(t, err)
		content, readErr := os.ReadFile(configPath)
		require.NoError(t, readErr)
		assert.Equal(t, 1, strings.Count(string(content), dir))
	})

	t.Run("should keep existing settings and file mode", func(t *testing.T) {
		t.Parallel()

		// given
		configPath := filepath.Join(t.TempDir(), ".gitconfig")
		existing := "[user]\n\tname = Builder\n[safe]\n\tdirectory = /srv/other\n"
		require.NoError(t, os.WriteFile(configPath, []byte(existing), 0o600))
		dir := filepath.Join(t.TempDir(), "app")
		repository := gitconfig.NewSafeDirectoryRepository()

		// when
		err := repository.Trust(configPath, dir)

		// then
		require.NoError(t, err)
		content, readErr := os.ReadFile(configPath)
		require.NoError(t, readErr)
		assert.Contains(t, string(content), "name = Builder")
		assert.Contains(t, string(content), "directory = /srv/other")
		assert.Contains(t, string(content), "directory = "+dir)
		info, statErr := os.Stat(configPath)
		require.NoError(t, statErr)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	})

	t.Run("should keep comments and quoting of the existing file byte for byte", func(t *testing.T) {
		t.Parallel()

		// given
		configPath := filepath.Join(t.TempDir(), ".gitconfig")
		existing := "# my personal settings\n" +
			"[user]\n" +
			"\tname = Jane ; work identity\n" +
			"[alias]\n" +
			"\tlg = \"log --graph --format='%h %s'\"\n"
		require.NoError(t, os.WriteFile(configPath, []byte(existing), 0o644))
		dir := filepath.Join(t.TempDir(), "app")
		repository := gitconfig.NewSafeDirectoryRepository()

		// when
		err := repository.Trust(configPath, dir)

		// then
		require.NoError(t, err)
		content, readErr := os.ReadFile(configPath)
		require.NoError(t, readErr)
		assert.Equal(t, existing+"[safe]\n\tdirectory = "+dir+"\n", string(content))
	})

	t.Run("should start the entry on its own line when the file lacks a final newline", func(t *testing.T) {
		t.Parallel()

		// given
		configPath := filepath.Join(t.TempDir(), ".gitconfig")
		existing := "[user]\n\tname = Builder"
		require.NoError(t, os.WriteFile(configPath, []byte(existing), 0o644))
		dir := filepath.Join(t.TempDir(), "app")
		repository := gitconfig.NewSafeDirectoryRepository()

		// when
		err := repository.Trust(configPath, dir)

		// then
		require.NoError(t, err)
		content, readErr := os.ReadFile(configPath)
		require.NoError(t, readErr)
		assert.Equal(t, existing+"\n[safe]\n\tdirectory = "+dir+"\n", string(content))
	})

	t.Run("should quote a directory holding comment characters so git reads it back", func(t *testing.T) {
		t.Parallel()

		// given
		configPath := filepath.Join(t.TempDir(), ".gitconfig")
		dir := filepath.Join(t.TempDir(), "team#1;app")
		repository := gitconfig.NewSafeDirectoryRepository()
		require.NoError(t, repository.Trust(configPath, dir))

		// when
		err := repository.Trust(configPath, dir)

		// then
		require.NoError(t, err)
		content, readErr := os.ReadFile(configPath)
		require.NoError(t, readErr)
		assert.Equal(t, "[safe]\n\tdirectory = \""+dir+"\"\n", string(content))
	})

	t.Run("should not add anything when every directory is trusted", func(t *testing.T) {
		t.Parallel()

		// given
		configPath := filepath.Join(t.TempDir(), ".gitconfig")
		existing := "[safe]\n\tdirectory = *\n"
		require.NoError(t, os.WriteFile(configPath, []byte(existing), 0o644))
		repository := gitconfig.NewSafeDirectoryRepository()

		// when
		err := repository.Trust(configPath, filepath.Join(t.TempDir(), "app"))

		// then
		require.NoError(t, err)
		content, readErr := os.ReadFile(configPath)
		require.NoError(t, readErr)
		assert.Equal(t, existing, string(content))
	})

	t.Run("should fail when no config file is known", func(t *testing.T) {
		t.Parallel()

		// given
		repository := gitconfig.NewSafeDirectoryRepository()

		// when
		err := repository.Trust("", t.TempDir())

		// then
		require.Error(t, err)
	})
}
