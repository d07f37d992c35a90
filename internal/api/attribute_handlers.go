package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/listenupapp/recipe-server/internal/service"
)

// attributeResource serves the list, rename and delete operations for one
// attribute kind. Tags and ingredients each get their own value.
type attributeResource struct {
	svc *service.AttributeService
}

func (s *Server) registerAttributeRoutes() {
	for _, svc := range []*service.AttributeService{s.services.Tags, s.services.Ingredients} {
		if svc != nil {
			attributeResource{svc: svc}.register(s.api)
		}
	}
}

func (a attributeResource) register(api huma.API) {
	kind := string(a.svc.Kind())
	plural := a.svc.Kind().Plural()
	title := strings.ToUpper(kind[:1]) + kind[1:]
	group := []string{strings.ToUpper(plural[:1]) + plural[1:]}
	base := apiPrefix + "/" + plural

	huma.Register(api, huma.Operation{
		OperationID: "list" + title + "s",
		Method:      http.MethodGet,
		Path:        base,
		Summary:     "List " + plural,
		Description: "Returns the current user's " + plural + " ordered by name descending",
		Tags:        group,
		Security:    bearerSecurity,
	}, a.list)

	for _, method := range []string{http.MethodPut, http.MethodPatch} {
		op := "update" + title
		if method == http.MethodPut {
			op = "replace" + title
		}
		huma.Register(api, huma.Operation{
			OperationID: op,
			Method:      method,
			Path:        base + "/{id}",
			Summary:     "Rename " + kind,
			Description: "Renames a " + kind + ". The name must not be used by another of the user's " + plural + ".",
			Tags:        group,
			Security:    bearerSecurity,
		}, a.rename)
	}

	huma.Register(api, huma.Operation{
		OperationID:   "delete" + title,
		Method:        http.MethodDelete,
		Path:          base + "/{id}",
		Summary:       "Delete " + kind,
		Description:   "Deletes a " + kind + " and removes it from every recipe",
		Tags:          group,
		Security:      bearerSecurity,
		DefaultStatus: http.StatusNoContent,
	}, a.delete)
}

// === DTOs ===

// ListAttributesInput contains the list filters.
type ListAttributesInput struct {
	AssignedOnly string `query:"assigned_only" enum:"0,1" default:"0" doc:"1 to return only entries used by at least one recipe"`
}

// ListAttributesOutput wraps an attribute list for Huma.
type ListAttributesOutput struct {
	Body []AttributeResponse
}

// AttributeWriteRequest is the writable shape of a tag or ingredient.
type AttributeWriteRequest struct {
	_    struct{} `json:"-" additionalProperties:"true"`
	Name string   `json:"name" minLength:"1" maxLength:"255" doc:"New name"`
}

// RenameAttributeInput wraps the rename request for Huma.
type RenameAttributeInput struct {
	ID   int64 `path:"id" doc:"Tag or ingredient ID"`
	Body AttributeWriteRequest
}

// AttributeIDInput identifies a tag or ingredient.
type AttributeIDInput struct {
	ID int64 `path:"id" doc:"Tag or ingredient ID"`
}

// AttributeOutput wraps an attribute for Huma.
type AttributeOutput struct {
	Body AttributeResponse
}

// === Handlers ===

func (a attributeResource) list(ctx context.Context, input *ListAttributesInput) (*ListAttributesOutput, error) {
	userID, err := RequireUserID(ctx)
	if err != nil {
		return nil, err
	}

	attrs, err := a.svc.List(ctx, userID, input.AssignedOnly == "1")
	if err != nil {
		return nil, err
	}

	resp := make([]AttributeResponse, len(attrs))
	for i, attr := range attrs {
		resp[i] = AttributeResponse{ID: attr.ID, Name: attr.Name}
	}
	return &ListAttributesOutput{Body: resp}, nil
}

func (a attributeResource) rename(ctx context.Context, input *RenameAttributeInput) (*AttributeOutput, error) {
	userID, err := RequireUserID(ctx)
	if err != nil {
		return nil, err
	}

	attr, err := a.svc.Rename(ctx, userID, input.ID, service.RenameRequest{Name: input.Body.Name})
	if err != nil {
		return nil, err
	}
	return &AttributeOutput{Body: AttributeResponse{ID: attr.ID, Name: attr.Name}}, nil
}

func (a attributeResource) delete(ctx context.Context, input *AttributeIDInput) (*struct{}, error) {
	userID, err := RequireUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := a.svc.Delete(ctx, userID, input.ID); err != nil {
		return nil, err
	}
	return &struct{}{}, nil
}
