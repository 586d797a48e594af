package logging

import (
	"go.uber.org/dig"
)

// RegisterProviders registers the logging hooks shared across layers.
func RegisterProviders(container *dig.Container) error {
	// one redaction hook per process: the credential broker feeds it, the logger fires it
	return container.Provide(NewRedactionHook)
}
