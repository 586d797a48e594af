package entities

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration is returned when no reference is supplied or a reference is malformed.
	ErrConfiguration = errors.New("configuration error")
	// ErrCredential is returned when no token can be obtained from the file or the environment.
	ErrCredential = errors.New("credential error")
	// ErrPermission is returned when the repositories root cannot be created or written.
	ErrPermission = errors.New("permission error")
	// ErrLocked is returned when another invocation holds the repositories root lock.
	ErrLocked = errors.New("repositories root is locked")
	// ErrConflict is returned when a destination is occupied by unrelated content.
	ErrConflict = errors.New("conflict")
	// ErrNetwork is returned when a clone or fetch fails at the transport level.
	ErrNetwork = errors.New("network error")
)

// SyncError carries enough context to diagnose a failed reference without
// re-running in verbose mode. It never holds credential material.
type SyncError struct {
	Reference string
	Name      string
	URL       string
	Err       error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("reference %q (name %q, url %s): %v", e.Reference, e.Name, e.URL, e.Err)
}

func (e *SyncError) Unwrap() error {
	return e.Err
}

// IsFatal reports whether the error belongs to a class that aborts the run
// before any per-reference work begins. Errors scoped to a reference are
// never fatal, whatever they wrap.
func IsFatal(err error) bool {
	var syncErr *SyncError
	if errors.As(err, &syncErr) {
		return false
	}
	return errors.Is(err, ErrConfiguration) ||
		errors.Is(err, ErrCredential) ||
		errors.Is(err, ErrPermission) ||
		errors.Is(err, ErrLocked)
}
