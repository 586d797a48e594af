package repositories

import (
	"context"
	"io"
	"time"
)

// TrustRepository marks working trees as trusted in the ambient
// version-control configuration file at configPath.
type TrustRepository interface {
	Trust(configPath, dir string) error
}

// LockRepository guards the repositories root against concurrent runs.
type LockRepository interface {
	// Acquire blocks until the lock is held or the timeout expires. Closing
	// the returned value releases the lock.
	Acquire(ctx context.Context, root string, timeout time.Duration) (io.Closer, error)
}
