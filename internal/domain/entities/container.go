package entities

import (
	"go.uber.org/dig"
)

// RegisterProviders registers all entity providers with the DIG container.
func RegisterProviders(container *dig.Container) error {
	// Settings requires the --config flag, so it is built by the controllers layer
	if err := container.Provide(NewDefaultProviderRegistry); err != nil {
		return err
	}
	if err := container.Provide(NewResolver); err != nil {
		return err
	}
	return nil
}
