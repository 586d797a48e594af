//go:build integration || unit || test

// Package repositorydoubles provides test doubles (spies, stubs, dummies) for
// repository interfaces. These are hand-crafted implementations, no mock frameworks.
package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rios0rios0/secureclone/internal/domain/entities"
	"github.com/rios0rios0/secureclone/internal/domain/repositories"
)

// ClonedMarker is the file a spy clone writes with the cloned URL.
const ClonedMarker = "CLONED_FROM"

// SpyGitRepository implements repositories.GitRepository and
// repositories.GitSession as a configurable spy. Clones create a real
// directory holding ClonedMarker and an empty .git directory.
type SpyGitRepository struct {
	// --- identity ---
	BackendName string

	// --- Inspect ---
	// Trees overrides what Inspect reports for a directory. Any other
	// directory is observed on disk; a spy clone reads back as a
	// repository whose origin is the cloned URL.
	Trees      map[string]entities.WorkingTree
	InspectErr error

	// --- Open / Close ---
	OpenErr  error
	CloseErr error
	Prompter entities.Prompter
	Opened   int
	Closed   int

	// --- Clone ---
	CloneErr    error
	CloneErrs   map[string]error // by repository name
	ClonedRepos []entities.ResolvedRepo

	// --- update ---
	SetOriginErr error
	FetchErr     error
	CheckoutErr  error
	CheckoutMode entities.CheckoutMode
	PullErr      error

	// spy: every session operation in call order
	Calls []string
}

var (
	_ repositories.GitRepository = (*SpyGitRepository)(nil)
	_ repositories.GitSession    = (*SpyGitRepository)(nil)
)

func (g *SpyGitRepository) Name() string {
	if g.BackendName == "" {
		return "spy"
	}
	return g.BackendName
}

func (g *SpyGitRepository) Inspect(_ context.Context, dir string) (entities.WorkingTree, error) {
	if g.InspectErr != nil {
		return entities.WorkingTree{}, g.InspectErr
	}
	if tree, ok := g.Trees[dir]; ok {
		tree.Path = dir
		return tree, nil
	}

	tree := entities.WorkingTree{Path: dir}
	handle, err := os.Open(dir)
	if errors.Is(err, os.ErrNotExist) {
		tree.Empty = true
		return tree, nil
	}
	if err != nil {
		return tree, err
	}
	defer handle.Close()
	if _, readErr := handle.Readdirnames(1); errors.Is(readErr, io.EOF) {
		tree.Empty = true
		return tree, nil
	}
	if _, statErr := os.Stat(filepath.Join(dir, ".git")); statErr == nil {
		tree.IsGit = true
		if origin, readErr := os.ReadFile(filepath.Join(dir, ClonedMarker)); readErr == nil {
			tree.OriginURL = string(origin)
		}
	}
	return tree, nil
}

func (g *SpyGitRepository) Open(_ context.Context, prompter entities.Prompter) (repositories.GitSession, error) {
	if g.OpenErr != nil {
		return nil, g.OpenErr
	}
	g.Opened++
	g.Prompter = prompter
	return g, nil
}

func (g *SpyGitRepository) Close() error {
	g.Closed++
	return g.CloseErr
}

func (g *SpyGitRepository) Clone(_ context.Context, dir string, repo entities.ResolvedRepo) error {
	g.Calls = append(g.Calls, "clone "+repo.Name)
	if err := g.CloneErrs[repo.Name]; err != nil {
		return err
	}
	if g.CloneErr != nil {
		return g.CloneErr
	}
	if err := os.MkdirAll(filepath.Join(dir, ".git"), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, ClonedMarker), []byte(repo.URL), 0o600); err != nil {
		return err
	}
	g.ClonedRepos = append(g.ClonedRepos, repo)
	return nil
}

func (g *SpyGitRepository) SetOrigin(_ context.Context, dir, url string) error {
	g.Calls = append(g.Calls, fmt.Sprintf("set-origin %s %s", filepath.Base(dir), url))
	return g.SetOriginErr
}

func (g *SpyGitRepository) Fetch(_ context.Context, dir string) error {
	g.Calls = append(g.Calls, "fetch "+filepath.Base(dir))
	return g.FetchErr
}

func (g *SpyGitRepository) Checkout(_ context.Context, dir, branch string) (entities.CheckoutMode, error) {
	g.Calls = append(g.Calls, fmt.Sprintf("checkout %s %s", filepath.Base(dir), branch))
	if g.CheckoutErr != nil {
		return "", g.CheckoutErr
	}
	if g.CheckoutMode == "" {
		return entities.CheckoutLocal, nil
	}
	return g.CheckoutMode, nil
}

func (g *SpyGitRepository) Pull(_ context.Context, dir, branch string) error {
	g.Calls = append(g.Calls, fmt.Sprintf("pull %s %s", filepath.Base(dir), branch))
	return g.PullErr
}
