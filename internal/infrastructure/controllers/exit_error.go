package controllers

import (
	"errors"
	"fmt"

	"github.com/rios0rios0/secureclone/internal/domain/entities"
)

// Process exit codes.
const (
	ExitOK            = 0
	ExitFailure       = 1
	ExitConfiguration = 2
	ExitCredential    = 3
	ExitPermission    = 4
	ExitSyncFailed    = 5
)

// ExitError carries the exit code of a follow-on command.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d: %v", e.Code, e.Err)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// ExitCode maps an error returned by a controller to the process exit code.
// Per-reference failures are checked before the fatal classes because a
// SyncError may wrap one of them.
func ExitCode(err error) int {
	var exitErr *ExitError
	var syncErr *entities.SyncError
	switch {
	case err == nil:
		return ExitOK
	case errors.As(err, &exitErr):
		return exitErr.Code
	case errors.As(err, &syncErr):
		return ExitSyncFailed
	case errors.Is(err, entities.ErrConfiguration):
		return ExitConfiguration
	case errors.Is(err, entities.ErrCredential):
		return ExitCredential
	case errors.Is(err, entities.ErrPermission), errors.Is(err, entities.ErrLocked):
		return ExitPermission
	default:
		return ExitFailure
	}
}
