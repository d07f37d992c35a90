package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	domainerrors "github.com/listenupapp/recipe-server/internal/errors"
	"github.com/listenupapp/recipe-server/internal/http/response"
	"github.com/listenupapp/recipe-server/internal/media/images"
)

// multipartMemory bounds the in-memory part of a parsed upload form.
const multipartMemory = 8 << 20

// ImageResponse is returned after a successful upload.
type ImageResponse struct {
	ID            int64   `json:"id"`
	Image         string  `json:"image"`
	ImageBlurHash *string `json:"image_blurhash"`
}

// handleUploadImage accepts a multipart form with an "image" file field.
func (s *Server) handleUploadImage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := userIDFrom(ctx)
	if !ok {
		response.Unauthorized(w, "authentication credentials were not provided or are invalid", s.logger)
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.HandleError(w, domainerrors.NotFound("recipe not found"), s.logger)
		return
	}

	maxBytes := s.opts.MaxUploadBytes
	if maxBytes <= 0 {
		maxBytes = 10 << 20
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+multipartMemory)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.HandleError(w, domainerrors.InvalidField("image", fmt.Sprintf("file exceeds the %d byte limit", maxBytes)), s.logger)
			return
		}
		response.HandleError(w, domainerrors.InvalidField("image", "expected a multipart form with an image field"), s.logger)
		return
	}
	defer r.MultipartForm.RemoveAll() //nolint:errcheck

	file, header, err := r.FormFile("image")
	if err != nil {
		response.HandleError(w, domainerrors.InvalidField("image", "no file was submitted"), s.logger)
		return
	}
	defer file.Close()

	if header.Size > maxBytes {
		response.HandleError(w, domainerrors.InvalidField("image", fmt.Sprintf("file exceeds the %d byte limit", maxBytes)), s.logger)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
	if err != nil {
		s.logger.Error("failed to read uploaded file", "error", err, "recipe_id", id)
		response.HandleError(w, err, s.logger)
		return
	}

	recipe, err := s.services.Recipe.UploadImage(ctx, userID, id, data)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	resp := ImageResponse{ID: recipe.ID, Image: imageURL(recipe.Image)}
	if recipe.ImageBlurHash != "" {
		hash := recipe.ImageBlurHash
		resp.ImageBlurHash = &hash
	}
	response.Success(w, resp, s.logger)
}

// handleServeImage serves a stored recipe image. Names are random, so the
// files are public and cacheable.
func (s *Server) handleServeImage(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "file")
	if s.storage == nil || s.storage.RecipeImages == nil || !images.ValidName(name) {
		http.NotFound(w, r)
		return
	}

	path, err := s.storage.RecipeImages.Path(name)
	if err != nil || !s.storage.RecipeImages.Exists(name) {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Cache-Control", CacheOneWeek)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	http.ServeFile(w, r, path)
}
