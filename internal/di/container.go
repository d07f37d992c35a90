// Package di provides dependency injection configuration for the recipe server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/listenupapp/recipe-server/internal/config"
	"github.com/listenupapp/recipe-server/internal/di/providers"
	"github.com/listenupapp/recipe-server/internal/logger"
)

// NewContainer creates the DI container for cfg. Providers are lazy, so
// commands that only need the store and services never build the HTTP stack.
func NewContainer(cfg *config.Config) *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.ProvideValue(injector, cfg)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideSlogLogger)
	do.Provide(injector, providers.ProvideAuthKey)
	do.Provide(injector, providers.ProvideValidator)
	do.Provide(injector, providers.ProvideMetrics)

	// Database layer
	do.Provide(injector, providers.ProvideStore)

	// Storage layer
	do.Provide(injector, providers.ProvideImageStorages)
	do.Provide(injector, providers.ProvideImageProcessor)

	// Auth layer
	do.Provide(injector, providers.ProvideTokenService)

	// Business services
	do.Provide(injector, providers.ProvideAuthService)
	do.Provide(injector, providers.ProvideRecipeService)
	do.Provide(injector, providers.ProvideAttributeServices)

	// Server
	do.Provide(injector, providers.ProvideAPIServer)
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap builds everything the HTTP server needs and returns the server
// handle. Failures surface here rather than on the first request.
func Bootstrap(injector do.Injector) (*providers.HTTPServerHandle, error) {
	if _, err := do.Invoke[*logger.Logger](injector); err != nil {
		return nil, err
	}
	if _, err := do.Invoke[*providers.StoreHandle](injector); err != nil {
		return nil, err
	}
	return do.Invoke[*providers.HTTPServerHandle](injector)
}
