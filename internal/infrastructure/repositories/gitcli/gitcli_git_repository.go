package gitcli

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/secureclone/internal/domain/entities"
	"github.com/rios0rios0/secureclone/internal/domain/repositories"
	"github.com/rios0rios0/secureclone/internal/infrastructure/repositories/gogit"
)

const (
	backendName  = "cli"
	originRemote = "origin"
)

// strippedEnv never reaches a git child process.
var strippedEnv = []string{"GIT_TOKEN=", "GIT_ASKPASS=", "SSH_ASKPASS=", usernameEnv + "=", tokenEnv + "="}

// GitRepository implements repositories.GitRepository by running the git
// binary. Credentials reach git only through a temporary askpass helper.
type GitRepository struct {
	binary string
}

// NewGitRepository creates the git binary backend.
func NewGitRepository(settings *entities.Settings) repositories.GitRepository {
	binary := entities.DefaultGitBinary
	if settings != nil && settings.GitBinary != "" {
		binary = settings.GitBinary
	}
	return &GitRepository{binary: binary}
}

func (r *GitRepository) Name() string { return backendName }

func (r *GitRepository) Inspect(_ context.Context, dir string) (entities.WorkingTree, error) {
	return gogit.Inspect(dir)
}

func (r *GitRepository) Open(_ context.Context, prompter entities.Prompter) (repositories.GitSession, error) {
	if _, err := exec.LookPath(r.binary); err != nil {
		return nil, fmt.Errorf("%w: git binary %q not found: %w", entities.ErrConfiguration, r.binary, err)
	}
	handle, err := NewAskpassHandle(prompter)
	if err != nil {
		return nil, err
	}
	return &session{binary: r.binary, askpass: handle}, nil
}

type session struct {
	binary  string
	askpass *AskpassHandle
}

func (s *session) Clone(ctx context.Context, dir string, repo entities.ResolvedRepo) error {
	if _, err := s.run(ctx, "", "clone", "--branch", repo.Branch, "--", repo.URL, dir); err != nil {
		return fmt.Errorf("%w: clone of %s failed: %w", entities.ErrNetwork, repo.RedactedURL(), err)
	}
	return nil
}

func (s *session) SetOrigin(ctx context.Context, dir, url string) error {
	if _, err := s.run(ctx, dir, "remote", "set-url", originRemote, url); err != nil {
		logger.Debugf("set-url failed in %s, adding origin instead: %v", dir, err)
		_, err = s.run(ctx, dir, "remote", "add", originRemote, url)
		return err
	}
	return nil
}

func (s *session) Fetch(ctx context.Context, dir string) error {
	if _, err := s.run(ctx, dir, "fetch", "--all", "--prune"); err != nil {
		return fmt.Errorf("%w: fetch in %s failed: %w", entities.ErrNetwork, dir, err)
	}
	return nil
}

func (s *session) Checkout(ctx context.Context, dir, branch string) (entities.CheckoutMode, error) {
	if s.hasRef(ctx, dir, "refs/heads/"+branch) {
		_, err := s.run(ctx, dir, "checkout", branch)
		return entities.CheckoutLocal, err
	}
	if s.hasRef(ctx, dir, "refs/remotes/"+originRemote+"/"+branch) {
		_, err := s.run(ctx, dir, "checkout", "-b", branch, "--track", originRemote+"/"+branch)
		return entities.CheckoutTracking, err
	}
	_, err := s.run(ctx, dir, "checkout", "-b", branch)
	return entities.CheckoutNew, err
}

func (s *session) Pull(ctx context.Context, dir, branch string) error {
	_, err := s.run(ctx, dir, "pull", "--ff-only", originRemote, branch)
	return err
}

func (s *session) Close() error {
	return s.askpass.Close()
}

func (s *session) hasRef(ctx context.Context, dir, ref string) bool {
	// show-ref --verify exits non-zero if missing
	_, err := s.run(ctx, dir, "show-ref", "--verify", "--quiet", ref)
	return err == nil
}

// run executes git with credential helpers disabled, so the token is never
// written to a credential store.
func (s *session) run(ctx context.Context, dir string, args ...string) (string, error) {
	fullArgs := []string{"-c", "credential.helper="}
	if dir != "" {
		fullArgs = append(fullArgs, "-C", dir)
	}
	fullArgs = append(fullArgs, args...)

	cmd := exec.CommandContext(ctx, s.binary, fullArgs...)
	cmd.Env = append(childEnv(os.Environ()), s.askpass.Env()...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("git %s: %w: %s", args[0], err, strings.TrimSpace(string(out)))
	}
	return string(out), nil
}

func childEnv(environ []string) []string {
	env := make([]string, 0, len(environ))
	for _, entry := range environ {
		if !isStripped(entry) {
			env = append(env, entry)
		}
	}
	return env
}

func isStripped(entry string) bool {
	for _, prefix := range strippedEnv {
		if strings.HasPrefix(entry, prefix) {
			return true
		}
	}
	return false
}
