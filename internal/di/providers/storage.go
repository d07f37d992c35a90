package providers

import (
	"fmt"

	"github.com/samber/do/v2"

	"github.com/listenupapp/recipe-server/internal/config"
	"github.com/listenupapp/recipe-server/internal/logger"
	"github.com/listenupapp/recipe-server/internal/media/images"
)

// ImageStorages groups the image storage directories.
type ImageStorages struct {
	Recipes *images.Storage
}

// ProvideImageStorages provides the image storage directories under the media path.
func ProvideImageStorages(i do.Injector) (*ImageStorages, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	recipes, err := images.NewStorage(cfg.MediaPath(), "recipes")
	if err != nil {
		return nil, fmt.Errorf("recipe image storage: %w", err)
	}

	log.Info("Image storage initialized", "path", recipes.Dir())

	return &ImageStorages{Recipes: recipes}, nil
}

// ProvideImageProcessor provides the processor for recipe images.
func ProvideImageProcessor(i do.Injector) (*images.Processor, error) {
	storages := do.MustInvoke[*ImageStorages](i)
	log := do.MustInvoke[*logger.Logger](i)

	return images.NewProcessor(storages.Recipes, "recipe", log.Logger), nil
}
