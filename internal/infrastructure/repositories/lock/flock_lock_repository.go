package lock

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/secureclone/internal/domain/entities"
	"github.com/rios0rios0/secureclone/internal/domain/repositories"
)

const (
	lockFileName = ".secureclone.lock"
	retryDelay   = 100 * time.Millisecond
)

// FlockLockRepository takes an advisory file lock inside the repositories root.
type FlockLockRepository struct{}

// NewFlockLockRepository creates the lock repository.
func NewFlockLockRepository() repositories.LockRepository {
	return &FlockLockRepository{}
}

func (r *FlockLockRepository) Acquire(ctx context.Context, root string, timeout time.Duration) (io.Closer, error) {
	path := filepath.Join(root, lockFileName)
	fileLock := flock.New(path)

	lockCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		lockCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	locked, err := fileLock.TryLockContext(lockCtx, retryDelay)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %s is held by another run (waited %s)", entities.ErrLocked, path, timeout)
		}
		return nil, fmt.Errorf("%w: acquiring %s: %w", entities.ErrLocked, path, err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: timed out acquiring %s", entities.ErrLocked, path)
	}

	logger.Debugf("Acquired lock %s", path)
	return &release{lock: fileLock}, nil
}

type release struct {
	lock *flock.Flock
}

func (r *release) Close() error {
	logger.Debugf("Releasing lock %s", r.lock.Path())
	return r.lock.Unlock()
}
