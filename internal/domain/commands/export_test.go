package commands

import (
	"context"

	"github.com/rios0rios0/secureclone/internal/domain/entities"
	"github.com/rios0rios0/secureclone/internal/domain/repositories"
)

// EnsureWritable exports ensureWritable for testing.
var EnsureWritable = ensureWritable //nolint:gochecknoglobals // test export

// SyncOne runs the per-destination state machine for a single repository.
func SyncOne(
	ctx context.Context,
	git repositories.GitRepository,
	trust repositories.TrustRepository,
	root string,
	force bool,
	repo entities.ResolvedRepo,
) entities.SyncResult {
	session, err := git.Open(ctx, nil)
	if err != nil {
		panic(err)
	}
	worker := &synchronizer{
		git:       git,
		session:   session,
		trust:     trust,
		gitConfig: "gitconfig",
		root:      root,
		force:     force,
	}
	return worker.sync(ctx, repo)
}
