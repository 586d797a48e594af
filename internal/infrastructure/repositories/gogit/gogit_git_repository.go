package gogit

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/protocol/packp/capability"
	"github.com/go-git/go-git/v5/plumbing/transport"
	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/secureclone/internal/domain/entities"
	"github.com/rios0rios0/secureclone/internal/domain/repositories"
)

const (
	backendName   = "gogit"
	originFetchFn = "+refs/heads/*:refs/remotes/%s/*"
)

func init() {
	// Azure DevOps rejects thin packs: https://github.com/go-git/go-git/issues/64
	transport.UnsupportedCapabilities = []capability.Capability{
		capability.ThinPack,
	}
}

// GitRepository implements repositories.GitRepository in process with
// go-git. Credentials are answered through an in-memory callback.
type GitRepository struct{}

// NewGitRepository creates the go-git backend. It needs nothing from the settings.
func NewGitRepository(_ *entities.Settings) repositories.GitRepository {
	return &GitRepository{}
}

func (r *GitRepository) Name() string { return backendName }

func (r *GitRepository) Inspect(_ context.Context, dir string) (entities.WorkingTree, error) {
	return Inspect(dir)
}

func (r *GitRepository) Open(_ context.Context, prompter entities.Prompter) (repositories.GitSession, error) {
	if prompter == nil {
		return nil, errors.New("no credential to answer authentication prompts")
	}
	return &session{auth: &promptAuth{prompter: prompter}}, nil
}

type session struct {
	auth *promptAuth
}

func (s *session) Clone(ctx context.Context, dir string, repo entities.ResolvedRepo) error {
	_, err := git.PlainCloneContext(ctx, dir, false, &git.CloneOptions{
		URL:           repo.URL,
		Auth:          s.auth,
		RemoteName:    originRemote,
		ReferenceName: plumbing.NewBranchReferenceName(repo.Branch),
	})
	if err != nil {
		return fmt.Errorf("%w: clone of %s failed: %w", entities.ErrNetwork, repo.RedactedURL(), err)
	}
	return nil
}

func (s *session) SetOrigin(_ context.Context, dir, url string) error {
	repository, err := git.PlainOpen(dir)
	if err != nil {
		return err
	}
	cfg, err := repository.Config()
	if err != nil {
		return err
	}

	remote, ok := cfg.Remotes[originRemote]
	if !ok {
		remote = &gitconfig.RemoteConfig{
			Name:  originRemote,
			Fetch: []gitconfig.RefSpec{gitconfig.RefSpec(fmt.Sprintf(originFetchFn, originRemote))},
		}
		cfg.Remotes[originRemote] = remote
	}
	if len(remote.URLs) == 1 && remote.URLs[0] == url {
		return nil
	}
	remote.URLs = []string{url}
	return repository.Storer.SetConfig(cfg)
}

// Fetch fetches every configured remote with pruning, like git fetch --all --prune.
func (s *session) Fetch(ctx context.Context, dir string) error {
	repository, err := git.PlainOpen(dir)
	if err != nil {
		return err
	}
	remotes, err := repository.Remotes()
	if err != nil {
		return err
	}
	for _, remote := range remotes {
		name := remote.Config().Name
		err = remote.FetchContext(ctx, &git.FetchOptions{
			RemoteName: name,
			Auth:       s.auth,
			Prune:      true,
		})
		if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
			return fmt.Errorf("%w: fetch of %s in %s failed: %w", entities.ErrNetwork, name, dir, err)
		}
	}
	return nil
}

func (s *session) Checkout(_ context.Context, dir, branch string) (entities.CheckoutMode, error) {
	repository, err := git.PlainOpen(dir)
	if err != nil {
		return "", err
	}
	worktree, err := repository.Worktree()
	if err != nil {
		return "", err
	}

	local := plumbing.NewBranchReferenceName(branch)
	if _, refErr := repository.Reference(local, true); refErr == nil {
		if head, headErr := repository.Head(); headErr == nil && head.Name() == local {
			return entities.CheckoutLocal, nil
		}
		return entities.CheckoutLocal, worktree.Checkout(&git.CheckoutOptions{Branch: local})
	} else if !errors.Is(refErr, plumbing.ErrReferenceNotFound) {
		return "", refErr
	}

	remoteRef, err := repository.Reference(plumbing.NewRemoteReferenceName(originRemote, branch), true)
	if err == nil {
		if checkoutErr := worktree.Checkout(&git.CheckoutOptions{
			Branch: local,
			Hash:   remoteRef.Hash(),
			Create: true,
		}); checkoutErr != nil {
			return "", checkoutErr
		}
		trackErr := repository.CreateBranch(&gitconfig.Branch{
			Name:   branch,
			Remote: originRemote,
			Merge:  local,
		})
		if trackErr != nil && !errors.Is(trackErr, git.ErrBranchExists) {
			return "", trackErr
		}
		return entities.CheckoutTracking, nil
	}
	if !errors.Is(err, plumbing.ErrReferenceNotFound) {
		return "", err
	}

	if _, headErr := repository.Head(); headErr != nil {
		// unborn HEAD: point it at the new branch, there is nothing to check out
		logger.Debugf("%s has no commits, pointing HEAD at %s", dir, local)
		return entities.CheckoutNew, repository.Storer.SetReference(plumbing.NewSymbolicReference(plumbing.HEAD, local))
	}
	return entities.CheckoutNew, worktree.Checkout(&git.CheckoutOptions{Branch: local, Create: true})
}

func (s *session) Pull(ctx context.Context, dir, branch string) error {
	repository, err := git.PlainOpen(dir)
	if err != nil {
		return err
	}
	worktree, err := repository.Worktree()
	if err != nil {
		return err
	}
	err = worktree.PullContext(ctx, &git.PullOptions{
		RemoteName:    originRemote,
		ReferenceName: plumbing.NewBranchReferenceName(branch),
		Auth:          s.auth,
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return fmt.Errorf("fast-forward of %s failed: %w", branch, err)
	}
	return nil
}

// Close drops the reference to the credential; there is nothing on disk.
func (s *session) Close() error {
	s.auth.prompter = nil
	return nil
}
