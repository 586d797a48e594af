//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"
	"io"
	"time"

	"github.com/rios0rios0/secureclone/internal/domain/entities"
	"github.com/rios0rios0/secureclone/internal/domain/repositories"
)

// StubCredentialRepository implements repositories.CredentialRepository.
type StubCredentialRepository struct {
	Token        string
	Source       entities.CredentialSource
	Err          error
	Usernames    []string
	Materialized []*entities.Credential
}

var _ repositories.CredentialRepository = (*StubCredentialRepository)(nil)

func (c *StubCredentialRepository) Materialize(
	_ context.Context, _ *entities.Settings, username string,
) (*entities.Credential, error) {
	c.Usernames = append(c.Usernames, username)
	if c.Err != nil {
		return nil, c.Err
	}
	source := c.Source
	if source == "" {
		source = entities.CredentialSourceFile
	}
	credential := entities.NewCredential(username, []byte(c.Token), source)
	c.Materialized = append(c.Materialized, credential)
	return credential, nil
}

// SpyTrustRepository implements repositories.TrustRepository.
type SpyTrustRepository struct {
	Err         error
	ConfigPaths []string
	Trusted     []string
}

var _ repositories.TrustRepository = (*SpyTrustRepository)(nil)

func (t *SpyTrustRepository) Trust(configPath, dir string) error {
	t.ConfigPaths = append(t.ConfigPaths, configPath)
	t.Trusted = append(t.Trusted, dir)
	return t.Err
}

// StubLockRepository implements repositories.LockRepository.
type StubLockRepository struct {
	Err      error
	Roots    []string
	Timeouts []time.Duration
	Acquired int
	Released int
}

var _ repositories.LockRepository = (*StubLockRepository)(nil)

func (l *StubLockRepository) Acquire(_ context.Context, root string, timeout time.Duration) (io.Closer, error) {
	l.Roots = append(l.Roots, root)
	l.Timeouts = append(l.Timeouts, timeout)
	if l.Err != nil {
		return nil, l.Err
	}
	l.Acquired++
	return releaser{lock: l}, nil
}

type releaser struct {
	lock *StubLockRepository
}

func (r releaser) Close() error {
	r.lock.Released++
	return nil
}
