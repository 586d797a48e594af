package gogit

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"

	"github.com/rios0rios0/secureclone/internal/domain/entities"
)

const (
	originRemote = "origin"
	dotGit       = ".git"
)

// Inspect reports what is at dir without modifying it. A directory with
// unreadable version-control metadata is reported as a repository with no
// origin so that it is only ever replaced on explicit request.
func Inspect(dir string) (entities.WorkingTree, error) {
	tree := entities.WorkingTree{Path: dir}

	info, err := os.Stat(dir)
	if errors.Is(err, os.ErrNotExist) {
		tree.Empty = true
		return tree, nil
	}
	if err != nil {
		return tree, fmt.Errorf("%w: %w", entities.ErrPermission, err)
	}
	if !info.IsDir() {
		return tree, nil
	}

	empty, err := isEmptyDir(dir)
	if err != nil {
		return tree, fmt.Errorf("%w: %w", entities.ErrPermission, err)
	}
	tree.Empty = empty
	if empty {
		return tree, nil
	}

	repository, err := git.PlainOpen(dir)
	if errors.Is(err, git.ErrRepositoryNotExists) {
		return tree, nil
	}
	tree.IsGit = true
	if err != nil {
		if _, statErr := os.Stat(filepath.Join(dir, dotGit)); statErr != nil {
			tree.IsGit = false
		}
		return tree, nil
	}

	remote, err := repository.Remote(originRemote)
	if errors.Is(err, git.ErrRemoteNotFound) {
		return tree, nil
	}
	if err != nil {
		return tree, fmt.Errorf("failed to read origin of %s: %w", dir, err)
	}
	if urls := remote.Config().URLs; len(urls) > 0 {
		tree.OriginURL = urls[0]
	}
	return tree, nil
}

func isEmptyDir(dir string) (bool, error) {
	handle, err := os.Open(dir)
	if err != nil {
		return false, err
	}
	defer handle.Close()

	_, err = handle.Readdirnames(1)
	if errors.Is(err, io.EOF) {
		return true, nil
	}
	return false, err
}
