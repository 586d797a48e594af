//go:build unit

package gogit //nolint:testpackage // tests unexported functions

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInspect(t *testing.T) {
	t.Parallel()

	t.Run("should report a missing directory as empty", func(t *testing.T) {
		t.Parallel()

		// given
		dir := filepath.Join(t.TempDir(), "missing")

		// when
		tree, err := Inspect(dir)

		// then
		require.NoError(t, err)
		assert.True(t, tree.Empty)
		assert.False(t, tree.IsGit)
		assert.Equal(t, dir, tree.Path)
	})

	t.Run("should report an empty directory as empty", func(t *testing.T) {
		t.Parallel()

		// given
		dir := t.TempDir()

		// when
		tree, err := Inspect(dir)

		// then
		require.NoError(t, err)
		assert.True(t, tree.Empty)
	})

	t.Run("should report a regular file as non-empty unrelated content", func(t *testing.T) {
		t.Parallel()

		// given
		path := filepath.Join(t.TempDir(), "app")
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))

		// when
		tree, err := Inspect(path)

		// then
		require.NoError(t, err)
		assert.False(t, tree.Empty)
		assert.False(t, tree.IsGit)
	})

	t.Run("should report a directory without metadata as unrelated content", func(t *testing.T) {
		t.Parallel()

		// given
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600))

		// when
		tree, err := Inspect(dir)

		// then
		require.NoError(t, err)
		assert.False(t, tree.Empty)
		assert.False(t, tree.IsGit)
	})

	t.Run("should report a repository without origin", func(t *testing.T) {
		t.Parallel()

		// given
		dir := t.TempDir()
		_, err := git.PlainInit(dir, false)
		require.NoError(t, err)

		// when
		tree, err := Inspect(dir)

		// then
		require.NoError(t, err)
		assert.True(t, tree.IsGit)
		assert.Empty(t, tree.OriginURL)
	})

	t.Run("should report the origin URL of a repository", func(t *testing.T) {
		t.Parallel()

		// given
		dir := t.TempDir()
		repository, err := git.PlainInit(dir, false)
		require.NoError(t, err)
		_, err = repository.CreateRemote(&gitconfig.RemoteConfig{
			Name: "origin",
			URLs: []string{"https://github.com/org/app.git"},
		})
		require.NoError(t, err)

		// when
		tree, err := Inspect(dir)

		// then
		require.NoError(t, err)
		assert.True(t, tree.IsGit)
		assert.Equal(t, "https://github.com/org/app.git", tree.OriginURL)
	})
}
