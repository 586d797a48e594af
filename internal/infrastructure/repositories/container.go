package repositories

import (
	"go.uber.org/dig"

	"github.com/rios0rios0/secureclone/internal/infrastructure/repositories/credentials"
	"github.com/rios0rios0/secureclone/internal/infrastructure/repositories/gitcli"
	"github.com/rios0rios0/secureclone/internal/infrastructure/repositories/gitconfig"
	"github.com/rios0rios0/secureclone/internal/infrastructure/repositories/gogit"
	"github.com/rios0rios0/secureclone/internal/infrastructure/repositories/lock"
)

// RegisterProviders registers all repository providers with the DIG container.
func RegisterProviders(container *dig.Container) error {
	// Register backend registry with all version-control backends
	if err := container.Provide(func() *BackendRegistry {
		reg := NewBackendRegistry()
		reg.Register("gogit", gogit.NewGitRepository)
		reg.Register("cli", gitcli.NewGitRepository)
		return reg
	}); err != nil {
		return err
	}

	if err := container.Provide(credentials.NewCredentialRepository); err != nil {
		return err
	}
	if err := container.Provide(gitconfig.NewSafeDirectoryRepository); err != nil {
		return err
	}
	if err := container.Provide(lock.NewFlockLockRepository); err != nil {
		return err
	}

	return nil
}
