package providers

import (
	"github.com/samber/do/v2"

	"github.com/listenupapp/recipe-server/internal/auth"
	"github.com/listenupapp/recipe-server/internal/domain"
	"github.com/listenupapp/recipe-server/internal/logger"
	"github.com/listenupapp/recipe-server/internal/media/images"
	"github.com/listenupapp/recipe-server/internal/metrics"
	"github.com/listenupapp/recipe-server/internal/service"
	"github.com/listenupapp/recipe-server/internal/validation"
)

// AttributeServices holds the tag and ingredient services. They share a
// type, so the container keys them by this wrapper.
type AttributeServices struct {
	Tags        *service.AttributeService
	Ingredients *service.AttributeService
}

// ProvideAuthService provides the user and token service.
func ProvideAuthService(i do.Injector) (*service.AuthService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokens := do.MustInvoke[*auth.TokenService](i)
	v := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAuthService(storeHandle.Store, tokens, v, log.WithComponent("auth").Logger), nil
}

// ProvideRecipeService provides the recipe service.
func ProvideRecipeService(i do.Injector) (*service.RecipeService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	processor := do.MustInvoke[*images.Processor](i)
	m := do.MustInvoke[*metrics.Metrics](i)
	v := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewRecipeService(storeHandle.Store, processor, m, v, log.WithComponent("recipes").Logger), nil
}

// ProvideAttributeServices provides the tag and ingredient services.
func ProvideAttributeServices(i do.Injector) (*AttributeServices, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	v := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i).WithComponent("attributes")

	return &AttributeServices{
		Tags:        service.NewAttributeService(domain.KindTag, storeHandle.Store, v, log.Logger),
		Ingredients: service.NewAttributeService(domain.KindIngredient, storeHandle.Store, v, log.Logger),
	}, nil
}
