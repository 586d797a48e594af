package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/secureclone/internal/domain/entities"
	"github.com/rios0rios0/secureclone/internal/domain/repositories"
)

const stagingPattern = ".%s.clone-*"

// synchronizer brings one destination directory into a terminal state.
type synchronizer struct {
	git       repositories.GitRepository
	session   repositories.GitSession
	trust     repositories.TrustRepository
	gitConfig string
	root      string
	force     bool
	opTimeout time.Duration
}

// sync runs the per-destination state machine:
//
//	absent                      -> clone
//	present-non-git             -> conflict, or reclone when forced
//	present-git-matching-origin -> set origin, fetch, checkout, ff-only pull
//	present-git-mismatched      -> conflict, or reclone when forced
func (s *synchronizer) sync(ctx context.Context, repo entities.ResolvedRepo) entities.SyncResult {
	result := entities.SyncResult{Repo: repo}
	dest := filepath.Join(s.root, repo.Name)

	tree, err := s.git.Inspect(ctx, dest)
	if err != nil {
		return s.fail(result, fmt.Errorf("failed to inspect %s: %w", dest, err))
	}
	result.State = tree.State(repo)
	logger.Debugf("[%s] %s is %s", repo.Name, dest, result.State)

	switch result.State {
	case entities.StateAbsent:
		if cloneErr := s.cloneInto(ctx, dest, repo, false); cloneErr != nil {
			return s.fail(result, cloneErr)
		}
		result.Outcome = entities.OutcomeCloned

	case entities.StatePresentNonGit, entities.StateMismatchedOrigin:
		if !s.force {
			return s.fail(result, conflictError(dest, tree, result.State))
		}
		logger.Warnf("[%s] Replacing %s (%s) because GIT_FORCE_RECLONE=1", repo.Name, dest, result.State)
		if cloneErr := s.cloneInto(ctx, dest, repo, true); cloneErr != nil {
			return s.fail(result, cloneErr)
		}
		result.Outcome = entities.OutcomeRecloned

	case entities.StateMatchingOrigin:
		if updateErr := s.update(ctx, dest, &result); updateErr != nil {
			return s.fail(result, updateErr)
		}
		result.Outcome = entities.OutcomeUpdated
	}

	if trustErr := s.trust.Trust(s.gitConfig, dest); trustErr != nil {
		logger.Warnf("[%s] Failed to mark %s as a trusted directory: %v", repo.Name, dest, trustErr)
	}
	return result
}

// cloneInto clones into a staging directory next to dest and renames it into
// place, so a failed clone never leaves a half-formed destination behind.
func (s *synchronizer) cloneInto(ctx context.Context, dest string, repo entities.ResolvedRepo, replace bool) error {
	staging, err := os.MkdirTemp(s.root, fmt.Sprintf(stagingPattern, repo.Name))
	if err != nil {
		return fmt.Errorf("%w: failed to create staging directory in %s: %w", entities.ErrPermission, s.root, err)
	}
	defer func() {
		if removeErr := os.RemoveAll(staging); removeErr != nil {
			logger.Warnf("[%s] Failed to remove staging directory %s: %v", repo.Name, staging, removeErr)
		}
	}()

	target := filepath.Join(staging, repo.Name)
	logger.Infof("[%s] Cloning %s (branch %s)", repo.Name, repo.RedactedURL(), repo.Branch)

	opCtx, cancel := s.withTimeout(ctx)
	defer cancel()
	if cloneErr := s.session.Clone(opCtx, target, repo); cloneErr != nil {
		return cloneErr
	}

	if replace {
		if removeErr := os.RemoveAll(dest); removeErr != nil {
			return fmt.Errorf("failed to remove %s before replacing it: %w", dest, removeErr)
		}
	} else if removeErr := os.Remove(dest); removeErr != nil && !errors.Is(removeErr, os.ErrNotExist) {
		return fmt.Errorf("failed to remove empty directory %s: %w", dest, removeErr)
	}

	if renameErr := os.Rename(target, dest); renameErr != nil {
		return fmt.Errorf("failed to move clone into %s: %w", dest, renameErr)
	}
	logger.Infof("[%s] Cloned into %s", repo.Name, dest)
	return nil
}

// update refreshes an existing clone whose origin matches. A failed
// fast-forward is recorded on the result as a warning, not returned.
func (s *synchronizer) update(ctx context.Context, dest string, result *entities.SyncResult) error {
	repo := result.Repo
	logger.Infof("[%s] Updating existing clone in %s", repo.Name, dest)

	if err := s.session.SetOrigin(ctx, dest, repo.URL); err != nil {
		return fmt.Errorf("failed to set origin of %s: %w", dest, err)
	}

	fetchCtx, cancelFetch := s.withTimeout(ctx)
	defer cancelFetch()
	if err := s.session.Fetch(fetchCtx, dest); err != nil {
		return err
	}

	mode, err := s.session.Checkout(ctx, dest, repo.Branch)
	if err != nil {
		return fmt.Errorf("failed to check out branch %q in %s: %w", repo.Branch, dest, err)
	}
	result.Checkout = mode
	logger.Infof("[%s] Checked out %s (%s)", repo.Name, repo.Branch, mode)

	pullCtx, cancelPull := s.withTimeout(ctx)
	defer cancelPull()
	if pullErr := s.session.Pull(pullCtx, dest, repo.Branch); pullErr != nil {
		logger.Warnf("[%s] Fast-forward pull of %s failed, keeping the current tree: %v",
			repo.Name, repo.Branch, pullErr)
		result.PullWarning = pullErr
		return nil
	}
	logger.Infof("[%s] Updated %s", repo.Name, dest)
	return nil
}

func (s *synchronizer) fail(result entities.SyncResult, err error) entities.SyncResult {
	result.Outcome = entities.OutcomeFailed
	result.Err = &entities.SyncError{
		Reference: result.Repo.Reference,
		Name:      result.Repo.Name,
		URL:       result.Repo.RedactedURL(),
		Err:       err,
	}
	logger.Errorf("[%s] %v", result.Repo.Name, result.Err)
	return result
}

func (s *synchronizer) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.opTimeout)
}

func conflictError(dest string, tree entities.WorkingTree, state entities.WorkingTreeState) error {
	if state == entities.StateMismatchedOrigin {
		origin := tree.OriginURL
		if origin == "" {
			origin = "<none>"
		}
		return fmt.Errorf("%w: %s is a clone of a different repository (origin %s); set GIT_FORCE_RECLONE=1 to replace it",
			entities.ErrConflict, dest, redact(origin))
	}
	return fmt.Errorf("%w: %s is not empty and is not a git repository; set GIT_FORCE_RECLONE=1 to replace it",
		entities.ErrConflict, dest)
}

func redact(rawURL string) string {
	return entities.ResolvedRepo{URL: rawURL}.RedactedURL()
}
