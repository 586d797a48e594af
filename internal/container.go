package internal

import (
	"go.uber.org/dig"

	"github.com/rios0rios0/secureclone/internal/domain/commands"
	"github.com/rios0rios0/secureclone/internal/domain/entities"
	"github.com/rios0rios0/secureclone/internal/infrastructure/controllers"
	"github.com/rios0rios0/secureclone/internal/infrastructure/logging"
	"github.com/rios0rios0/secureclone/internal/infrastructure/repositories"
)

// RegisterProviders registers all internal providers with the DIG container.
func RegisterProviders(container *dig.Container) error {
	// bottom-up: logging -> infrastructure repos -> entities -> commands -> controllers
	registrations := []func(*dig.Container) error{
		logging.RegisterProviders,
		repositories.RegisterProviders,
		entities.RegisterProviders,
		commands.RegisterProviders,
		controllers.RegisterProviders,
	}
	for _, register := range registrations {
		if err := register(container); err != nil {
			return err
		}
	}

	return container.Provide(NewAppInternal)
}
