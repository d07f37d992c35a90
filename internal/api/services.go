package api

import (
	"github.com/listenupapp/recipe-server/internal/media/images"
	"github.com/listenupapp/recipe-server/internal/service"
)

// Services groups the business logic services used by the API server.
type Services struct {
	Auth        *service.AuthService
	Recipe      *service.RecipeService
	Tags        *service.AttributeService
	Ingredients *service.AttributeService
}

// StorageServices groups file storage used by the API server.
type StorageServices struct {
	RecipeImages *images.Storage
}
