//go:build integration || unit || test

package commanddoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"github.com/rios0rios0/secureclone/internal/domain/commands"
	"github.com/rios0rios0/secureclone/internal/domain/entities"
)

// StubResolveCommand is a stub implementation of commands.Resolve.
type StubResolveCommand struct {
	ExecuteCallCount int
	ExecuteErr       error
	Repos            []entities.ResolvedRepo
	LastSettings     *entities.Settings
}

var _ commands.Resolve = (*StubResolveCommand)(nil)

func (s *StubResolveCommand) Execute(settings *entities.Settings) ([]entities.ResolvedRepo, error) {
	s.ExecuteCallCount++
	s.LastSettings = settings
	return s.Repos, s.ExecuteErr
}
