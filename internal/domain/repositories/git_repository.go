package repositories

import (
	"context"

	"github.com/rios0rios0/secureclone/internal/domain/entities"
)

// GitRepository abstracts a version-control backend (go-git in process, or
// the git binary). Inspect needs no credentials; every network operation
// happens inside a session opened with the run's credential.
type GitRepository interface {
	// Name returns the backend identifier (e.g. "gogit", "cli").
	Name() string

	// Inspect reports what is on disk at dir without modifying it.
	Inspect(ctx context.Context, dir string) (entities.WorkingTree, error)

	// Open installs the askpass handler for the credential. The session must
	// be closed on every exit path; closing removes any ephemeral helper.
	Open(ctx context.Context, prompter entities.Prompter) (GitSession, error)
}

// GitSession is an authenticated scope over which clone and update
// operations run.
type GitSession interface {
	// Clone clones repo.URL on repo.Branch into dir, which must not exist yet.
	Clone(ctx context.Context, dir string, repo entities.ResolvedRepo) error

	// SetOrigin points the origin remote of dir at url; repeating it is harmless.
	SetOrigin(ctx context.Context, dir, url string) error

	// Fetch fetches every configured remote with pruning.
	Fetch(ctx context.Context, dir string) error

	// Checkout switches dir to branch: an existing local branch wins, then a
	// remote tracking branch, then a new local branch.
	Checkout(ctx context.Context, dir, branch string) (entities.CheckoutMode, error)

	// Pull fast-forwards branch from origin; it never merges.
	Pull(ctx context.Context, dir, branch string) error

	Close() error
}
