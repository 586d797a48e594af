package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/secureclone/internal/domain/entities"
	"github.com/rios0rios0/secureclone/internal/domain/repositories"
	infraRepos "github.com/rios0rios0/secureclone/internal/infrastructure/repositories"
)

const (
	reposRootMode = 0o755
	probePattern  = ".secureclone-probe-*"
)

// Sync is the interface for the sync command.
type Sync interface {
	Execute(ctx context.Context, settings *entities.Settings) (*entities.RunReport, error)
}

// SyncCommand orchestrates a full run:
// resolve references -> materialize credential -> lock root -> sync each repository.
type SyncCommand struct {
	resolver    *entities.Resolver
	backends    *infraRepos.BackendRegistry
	credentials repositories.CredentialRepository
	trust       repositories.TrustRepository
	locks       repositories.LockRepository
}

// NewSyncCommand creates a new SyncCommand.
func NewSyncCommand(
	resolver *entities.Resolver,
	backends *infraRepos.BackendRegistry,
	credentials repositories.CredentialRepository,
	trust repositories.TrustRepository,
	locks repositories.LockRepository,
) *SyncCommand {
	return &SyncCommand{
		resolver:    resolver,
		backends:    backends,
		credentials: credentials,
		trust:       trust,
		locks:       locks,
	}
}

// Execute synchronizes every reference of the settings in order. Fatal
// errors (configuration, credential, permission) are returned before any
// repository is touched and with a nil report. Otherwise every reference is
// attempted and the returned error joins the per-reference failures.
func (it *SyncCommand) Execute(ctx context.Context, settings *entities.Settings) (*entities.RunReport, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	repos, err := it.resolver.ResolveAll(settings)
	if err != nil {
		return nil, err
	}

	backend, err := it.backends.Get(settings.Backend, settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", entities.ErrConfiguration, err)
	}

	username := settings.Username
	if username == "" {
		username = it.resolver.DefaultUsername(settings.Provider, settings.Host)
	}

	credential, err := it.credentials.Materialize(ctx, settings, username)
	if err != nil {
		return nil, err
	}
	defer credential.Wipe()

	root := settings.ReposRoot()
	if rootErr := ensureWritable(root); rootErr != nil {
		return nil, rootErr
	}

	lock, err := it.locks.Acquire(ctx, root, settings.LockTimeout)
	if err != nil {
		return nil, err
	}
	defer func() {
		if unlockErr := lock.Close(); unlockErr != nil {
			logger.Warnf("Failed to release the lock on %s: %v", root, unlockErr)
		}
	}()

	session, err := backend.Open(ctx, credential)
	if errors.Is(err, entities.ErrConfiguration) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to install the askpass handler: %w", entities.ErrCredential, err)
	}
	defer func() {
		if closeErr := session.Close(); closeErr != nil {
			logger.Errorf("Failed to close the %s session: %v", backend.Name(), closeErr)
		}
	}()

	logger.Infof("Synchronizing %d repositories into %s (backend %s, credential %s)",
		len(repos), root, backend.Name(), credential)

	worker := &synchronizer{
		git:       backend,
		session:   session,
		trust:     it.trust,
		gitConfig: settings.GitConfig,
		root:      root,
		force:     settings.ForceReclone,
		opTimeout: settings.OpTimeout,
	}

	report := &entities.RunReport{}
	for _, repo := range repos {
		if ctx.Err() != nil {
			report.Add(worker.fail(entities.SyncResult{Repo: repo}, fmt.Errorf("interrupted: %w", ctx.Err())))
			continue
		}
		logger.Infof("[%s] Processing %s", repo.Name, repo)
		report.Add(worker.sync(ctx, repo))
	}

	logger.Infof("Run complete: %s", report.Summary())
	return report, report.Err()
}

// ensureWritable creates the repositories root and probes that files can be
// created in it.
func ensureWritable(root string) error {
	if err := os.MkdirAll(root, reposRootMode); err != nil {
		return fmt.Errorf("%w: cannot create %s: %w", entities.ErrPermission, root, err)
	}
	probe, err := os.CreateTemp(root, probePattern)
	if err != nil {
		return fmt.Errorf("%w: %s is not writable: %w", entities.ErrPermission, root, err)
	}
	name := probe.Name()
	_ = probe.Close()
	if removeErr := os.Remove(name); removeErr != nil {
		return fmt.Errorf("%w: cannot remove probe file in %s: %w", entities.ErrPermission, root, removeErr)
	}
	return nil
}
