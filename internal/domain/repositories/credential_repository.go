package repositories

import (
	"context"

	"github.com/rios0rios0/secureclone/internal/domain/entities"
)

// CredentialRepository obtains the run's credential from a mounted secret
// file or, with a warning, from the environment.
type CredentialRepository interface {
	Materialize(ctx context.Context, settings *entities.Settings, username string) (*entities.Credential, error)
}
