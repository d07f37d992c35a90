package api

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/recipe-server/internal/http/response"
)

func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for x := range 8 {
		for y := range 8 {
			img.Set(x, y, color.RGBA{uint8(x * 32), 64, uint8(y * 32), 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// upload posts data as the "image" field. A nil data sends a form with no file.
func (ts *testServer) upload(t *testing.T, authz string, recipeID any, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	if data != nil {
		part, err := writer.CreateFormFile("image", "photo.png")
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/v1/recipes/%v/upload-image", recipeID), &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if authz != "" {
		req.Header.Set("Authorization", authz[len("Authorization: "):])
	}
	w := httptest.NewRecorder()
	ts.ServeHTTP(w, req)
	return w
}

func TestUploadImage_Success(t *testing.T) {
	ts := setupTestServer(t, Options{})
	authz, _ := ts.createUser(t, "cook@example.com")
	r := ts.createRecipe(t, authz, sampleRecipe("Pie"))

	w := ts.upload(t, authz, r.ID, testPNG(t))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	got := decodeBody[ImageResponse](t, w.Body.Bytes())
	assert.Equal(t, r.ID, got.ID)
	assert.Contains(t, got.Image, mediaPrefix)
	require.NotNil(t, got.ImageBlurHash)
	assert.NotEmpty(t, *got.ImageBlurHash)
	assert.True(t, ts.storage.Exists(path.Base(got.Image)))

	detail := decodeBody[RecipeDetail](t, ts.api.Get(fmt.Sprintf("/api/v1/recipes/%d", r.ID), authz).Body.Bytes())
	require.NotNil(t, detail.Image)
	assert.Equal(t, got.Image, *detail.Image)

	// Media is served without authentication.
	mw := httptest.NewRecorder()
	ts.ServeHTTP(mw, httptest.NewRequest(http.MethodGet, got.Image, nil))
	require.Equal(t, http.StatusOK, mw.Code)
	assert.Equal(t, CacheOneWeek, mw.Header().Get("Cache-Control"))
	assert.NotEmpty(t, mw.Body.Bytes())
}

func TestUploadImage_ReplacesPreviousFile(t *testing.T) {
	ts := setupTestServer(t, Options{})
	authz, _ := ts.createUser(t, "cook@example.com")
	r := ts.createRecipe(t, authz, sampleRecipe("Pie"))

	first := decodeBody[ImageResponse](t, ts.upload(t, authz, r.ID, testPNG(t)).Body.Bytes())
	second := decodeBody[ImageResponse](t, ts.upload(t, authz, r.ID, testPNG(t)).Body.Bytes())

	assert.NotEqual(t, first.Image, second.Image)
	assert.False(t, ts.storage.Exists(path.Base(first.Image)))
	assert.True(t, ts.storage.Exists(path.Base(second.Image)))

	// Deleting the recipe removes its image.
	require.Equal(t, http.StatusNoContent, ts.api.Delete(fmt.Sprintf("/api/v1/recipes/%d", r.ID), authz).Code)
	assert.False(t, ts.storage.Exists(path.Base(second.Image)))
}

func TestUploadImage_Rejects(t *testing.T) {
	ts := setupTestServer(t, Options{})
	authz, _ := ts.createUser(t, "cook@example.com")
	otherAuthz, _ := ts.createUser(t, "other@example.com")
	r := ts.createRecipe(t, authz, sampleRecipe("Pie"))

	tests := []struct {
		name     string
		authz    string
		id       any
		data     []byte
		status   int
		imageErr bool
	}{
		{"not an image", authz, r.ID, []byte("this is not an image file, just plain text"), http.StatusBadRequest, true},
		{"no file", authz, r.ID, nil, http.StatusBadRequest, true},
		{"empty file", authz, r.ID, []byte{}, http.StatusBadRequest, true},
		{"other user", otherAuthz, r.ID, testPNG(t), http.StatusNotFound, false},
		{"missing recipe", authz, 98765, testPNG(t), http.StatusNotFound, false},
		{"non-numeric id", authz, "abc", testPNG(t), http.StatusNotFound, false},
		{"unauthenticated", "", r.ID, testPNG(t), http.StatusUnauthorized, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ts.upload(t, tt.authz, tt.id, tt.data)
			require.Equal(t, tt.status, w.Code, w.Body.String())

			body := decodeBody[response.ErrorBody](t, w.Body.Bytes())
			if tt.imageErr {
				assert.Equal(t, "VALIDATION", body.Code)
				details, ok := body.Details.(map[string]any)
				require.True(t, ok, "details: %v", body.Details)
				assert.Contains(t, details, "image")
			}
		})
	}

	detail := decodeBody[RecipeDetail](t, ts.api.Get(fmt.Sprintf("/api/v1/recipes/%d", r.ID), authz).Body.Bytes())
	assert.Nil(t, detail.Image)
}

func TestUploadImage_TooLarge(t *testing.T) {
	ts := setupTestServer(t, Options{MaxUploadBytes: 64})
	authz, _ := ts.createUser(t, "cook@example.com")
	r := ts.createRecipe(t, authz, sampleRecipe("Pie"))

	w := ts.upload(t, authz, r.ID, bytes.Repeat([]byte{0x89}, 512))
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "byte limit")
}

func TestServeImage_NotFound(t *testing.T) {
	ts := setupTestServer(t, Options{})

	for _, p := range []string{"/media/recipes/missing.jpg", "/media/recipes/..%2Fsecret"} {
		w := httptest.NewRecorder()
		ts.ServeHTTP(w, httptest.NewRequest(http.MethodGet, p, nil))
		assert.Equal(t, http.StatusNotFound, w.Code, p)
	}
}
