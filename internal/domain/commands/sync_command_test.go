//go:build unit

package commands_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/secureclone/internal/domain/commands"
	"github.com/rios0rios0/secureclone/internal/domain/entities"
	domainRepos "github.com/rios0rios0/secureclone/internal/domain/repositories"
	infraRepos "github.com/rios0rios0/secureclone/internal/infrastructure/repositories"
	doubles "github.com/rios0rios0/secureclone/test/infrastructure/repositorydoubles"
)

type syncFixture struct {
	git         *doubles.SpyGitRepository
	credentials *doubles.StubCredentialRepository
	trust       *doubles.SpyTrustRepository
	locks       *doubles.StubLockRepository
}

func newSyncFixture() *syncFixture {
	return &syncFixture{
		git:         &doubles.SpyGitRepository{BackendName: "gogit"},
		credentials: &doubles.StubCredentialRepository{Token: "s3cr3t-token"},
		trust:       &doubles.SpyTrustRepository{},
		locks:       &doubles.StubLockRepository{},
	}
}

func (f *syncFixture) command() *commands.SyncCommand {
	backends := infraRepos.NewBackendRegistry()
	backends.Register("gogit", func(_ *entities.Settings) domainRepos.GitRepository { return f.git })
	return commands.NewSyncCommand(
		entities.NewResolver(entities.NewDefaultProviderRegistry()),
		backends,
		f.credentials,
		f.trust,
		f.locks,
	)
}

func syncSettings(t *testing.T, repos string) *entities.Settings {
	t.Helper()
	return &entities.Settings{
		Repos:       repos,
		Branch:      "main",
		Backend:     "gogit",
		ProjectDir:  t.TempDir(),
		LockTimeout: time.Second,
		GitConfig:   filepath.Join(t.TempDir(), "gitconfig"),
	}
}

func TestSyncCommandFatalErrors(t *testing.T) {
	t.Parallel()

	t.Run("should abort with a configuration error when no reference is given", func(t *testing.T) {
		t.Parallel()

		// given
		fixture := newSyncFixture()
		settings := syncSettings(t, "")

		// when
		report, err := fixture.command().Execute(context.Background(), settings)

		// then
		require.Error(t, err)
		assert.ErrorIs(t, err, entities.ErrConfiguration)
		assert.True(t, entities.IsFatal(err))
		assert.Nil(t, report)
		assert.Empty(t, fixture.credentials.Usernames)
		assert.Zero(t, fixture.git.Opened)
	})

	t.Run("should abort before touching the filesystem when a reference is malformed", func(t *testing.T) {
		t.Parallel()

		// given
		fixture := newSyncFixture()
		settings := syncSettings(t, "org/app ../escape")

		// when
		report, err := fixture.command().Execute(context.Background(), settings)

		// then
		require.Error(t, err)
		assert.ErrorIs(t, err, entities.ErrConfiguration)
		assert.Nil(t, report)
		assert.NoDirExists(t, settings.ReposRoot())
	})

	t.Run("should abort with a configuration error when the backend is not registered", func(t *testing.T) {
		t.Parallel()

		// given
		fixture := newSyncFixture()
		settings := syncSettings(t, "org/app")
		settings.Backend = "cli"

		// when
		report, err := fixture.command().Execute(context.Background(), settings)

		// then
		require.Error(t, err)
		assert.ErrorIs(t, err, entities.ErrConfiguration)
		assert.Nil(t, report)
	})

	t.Run("should abort with a credential error before creating the repositories root", func(t *testing.T) {
		t.Parallel()

		// given
		fixture := newSyncFixture()
		fixture.credentials.Err = entities.ErrCredential
		settings := syncSettings(t, "org/app")

		// when
		report, err := fixture.command().Execute(context.Background(), settings)

		// then
		require.Error(t, err)
		assert.ErrorIs(t, err, entities.ErrCredential)
		assert.Nil(t, report)
		assert.NoDirExists(t, settings.ReposRoot())
		assert.Zero(t, fixture.locks.Acquired)
		assert.Zero(t, fixture.git.Opened)
	})

	t.Run("should abort with a permission error when the repositories root cannot be created", func(t *testing.T) {
		t.Parallel()

		// given
		fixture := newSyncFixture()
		settings := syncSettings(t, "org/app")
		require.NoError(t, os.WriteFile(settings.ReposRoot(), []byte("not a directory"), 0o600))

		// when
		report, err := fixture.command().Execute(context.Background(), settings)

		// then
		require.Error(t, err)
		assert.ErrorIs(t, err, entities.ErrPermission)
		assert.Nil(t, report)
		assert.Zero(t, fixture.git.Opened)
		assert.True(t, fixture.credentials.Materialized[0].Empty())
	})

	t.Run("should abort when another run holds the lock", func(t *testing.T) {
		t.Parallel()

		// given
		fixture := newSyncFixture()
		fixture.locks.Err = entities.ErrLocked
		settings := syncSettings(t, "org/app")

		// when
		report, err := fixture.command().Execute(context.Background(), settings)

		// then
		require.Error(t, err)
		assert.ErrorIs(t, err, entities.ErrLocked)
		assert.Nil(t, report)
		assert.Zero(t, fixture.git.Opened)
		assert.Empty(t, fixture.git.Calls)
	})

	t.Run("should abort with a credential error when the session cannot be opened", func(t *testing.T) {
		t.Parallel()

		// given
		fixture := newSyncFixture()
		fixture.git.OpenErr = errors.New("cannot write askpass script")
		settings := syncSettings(t, "org/app")

		// when
		report, err := fixture.command().Execute(context.Background(), settings)

		// then
		require.Error(t, err)
		assert.ErrorIs(t, err, entities.ErrCredential)
		assert.Nil(t, report)
		assert.Equal(t, 1, fixture.locks.Released)
	})

	t.Run("should keep a configuration error when the git binary is missing", func(t *testing.T) {
		t.Parallel()

		// given
		fixture := newSyncFixture()
		fixture.git.OpenErr = fmt.Errorf("%w: git binary %q not found", entities.ErrConfiguration, "/opt/git")
		settings := syncSettings(t, "org/app")

		// when
		report, err := fixture.command().Execute(context.Background(), settings)

		// then
		require.ErrorIs(t, err, entities.ErrConfiguration)
		assert.NotErrorIs(t, err, entities.ErrCredential)
		assert.Nil(t, report)
		assert.Equal(t, 1, fixture.locks.Released)
	})
}

func TestSyncCommandRun(t *testing.T) {
	t.Parallel()

	t.Run("should clone every reference in order and release every resource", func(t *testing.T) {
		t.Parallel()

		// given
		fixture := newSyncFixture()
		settings := syncSettings(t, "org/app, org/lib")

		// when
		report, err := fixture.command().Execute(context.Background(), settings)

		// then
		require.NoError(t, err)
		require.NotNil(t, report)
		require.Len(t, report.Results, 2)
		assert.Equal(t, "app", report.Results[0].Repo.Name)
		assert.Equal(t, "lib", report.Results[1].Repo.Name)
		assert.Equal(t, []string{"clone app", "clone lib"}, fixture.git.Calls)
		assert.DirExists(t, filepath.Join(settings.ReposRoot(), "app"))
		assert.DirExists(t, filepath.Join(settings.ReposRoot(), "lib"))
		assert.Equal(t, []string{settings.GitConfig, settings.GitConfig}, fixture.trust.ConfigPaths)

		assert.Equal(t, 1, fixture.git.Opened)
		assert.Equal(t, 1, fixture.git.Closed)
		assert.Equal(t, []string{settings.ReposRoot()}, fixture.locks.Roots)
		assert.Equal(t, []time.Duration{time.Second}, fixture.locks.Timeouts)
		assert.Equal(t, 1, fixture.locks.Released)
		require.Len(t, fixture.credentials.Materialized, 1)
		assert.True(t, fixture.credentials.Materialized[0].Empty())
	})

	t.Run("should hand the credential to the session as its prompter", func(t *testing.T) {
		t.Parallel()

		// given
		fixture := newSyncFixture()
		settings := syncSettings(t, "org/app")

		// when
		_, err := fixture.command().Execute(context.Background(), settings)

		// then
		require.NoError(t, err)
		assert.Same(t, fixture.credentials.Materialized[0], fixture.git.Prompter)
	})

	t.Run("should keep going after a failed reference and report it", func(t *testing.T) {
		t.Parallel()

		// given
		fixture := newSyncFixture()
		fixture.git.CloneErrs = map[string]error{"app": entities.ErrNetwork}
		settings := syncSettings(t, "org/app org/lib")

		// when
		report, err := fixture.command().Execute(context.Background(), settings)

		// then
		require.Error(t, err)
		assert.False(t, entities.IsFatal(err))
		var syncErr *entities.SyncError
		require.ErrorAs(t, err, &syncErr)
		assert.Equal(t, "app", syncErr.Name)

		require.NotNil(t, report)
		require.Len(t, report.Failed(), 1)
		assert.Equal(t, entities.OutcomeFailed, report.Results[0].Outcome)
		assert.Equal(t, entities.OutcomeCloned, report.Results[1].Outcome)
		assert.NoDirExists(t, filepath.Join(settings.ReposRoot(), "app"))
		assert.DirExists(t, filepath.Join(settings.ReposRoot(), "lib"))
	})

	t.Run("should clone a duplicated reference only once", func(t *testing.T) {
		t.Parallel()

		// given
		fixture := newSyncFixture()
		settings := syncSettings(t, "org/app org/app")

		// when
		report, err := fixture.command().Execute(context.Background(), settings)

		// then
		require.NoError(t, err)
		assert.Len(t, report.Results, 1)
		assert.Equal(t, []string{"clone app"}, fixture.git.Calls)
	})

	t.Run("should update on the second run without cloning again", func(t *testing.T) {
		t.Parallel()

		// given
		fixture := newSyncFixture()
		settings := syncSettings(t, "org/app")
		_, err := fixture.command().Execute(context.Background(), settings)
		require.NoError(t, err)
		fixture.git.Calls = nil

		// when
		report, err := fixture.command().Execute(context.Background(), settings)

		// then
		require.NoError(t, err)
		assert.Equal(t, entities.OutcomeUpdated, report.Results[0].Outcome)
		assert.NotContains(t, fixture.git.Calls, "clone app")
	})

	t.Run("should mark every reference as failed when interrupted", func(t *testing.T) {
		t.Parallel()

		// given
		fixture := newSyncFixture()
		settings := syncSettings(t, "org/app org/lib")
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		// when
		report, err := fixture.command().Execute(ctx, settings)

		// then
		require.Error(t, err)
		assert.ErrorIs(t, err, context.Canceled)
		require.NotNil(t, report)
		assert.Len(t, report.Failed(), 2)
		assert.Empty(t, fixture.git.Calls)
		assert.Equal(t, 1, fixture.locks.Released)
	})
}

func TestSyncCommandUsername(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		provider string
		username string
		want     string
	}{
		{name: "should use the generic default for GitHub", provider: "github", want: "x-access-token"},
		{name: "should use the Azure DevOps default for Azure", provider: "azure", want: "azdo"},
		{name: "should prefer the configured username", provider: "azure", username: "builder", want: "builder"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			// given
			fixture := newSyncFixture()
			settings := syncSettings(t, "org/project/app")
			settings.Provider = tt.provider
			settings.Username = tt.username

			// when
			_, _ = fixture.command().Execute(context.Background(), settings)

			// then
			assert.Equal(t, []string{tt.want}, fixture.credentials.Usernames)
		})
	}
}
