package commands

import (
	"github.com/rios0rios0/secureclone/internal/domain/entities"
)

// Resolve is the interface for the resolve command.
type Resolve interface {
	Execute(settings *entities.Settings) ([]entities.ResolvedRepo, error)
}

// ResolveCommand expands the configured references without touching the
// network, the filesystem or the credential.
type ResolveCommand struct {
	resolver *entities.Resolver
}

// NewResolveCommand creates a new ResolveCommand.
func NewResolveCommand(resolver *entities.Resolver) *ResolveCommand {
	return &ResolveCommand{resolver: resolver}
}

// Execute resolves every reference in processing order.
func (it *ResolveCommand) Execute(settings *entities.Settings) ([]entities.ResolvedRepo, error) {
	return it.resolver.ResolveAll(settings)
}
