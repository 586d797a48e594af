package main

import (
	"go.uber.org/dig"

	"github.com/rios0rios0/secureclone/internal"
	"github.com/rios0rios0/secureclone/internal/infrastructure/controllers"
)

func injectAppContext() (*internal.AppInternal, *controllers.SyncController) {
	container := dig.New()

	// Register all providers
	if err := internal.RegisterProviders(container); err != nil {
		panic(err)
	}

	// Invoke to get AppInternal and the root controller from the same graph
	var (
		appInternal    *internal.AppInternal
		syncController *controllers.SyncController
	)
	if err := container.Invoke(func(ai *internal.AppInternal, sc *controllers.SyncController) {
		appInternal = ai
		syncController = sc
	}); err != nil {
		panic(err)
	}

	return appInternal, syncController
}
