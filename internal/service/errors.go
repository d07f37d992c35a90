package service

import (
	"errors"
	"fmt"

	domainerrors "github.com/listenupapp/recipe-server/internal/errors"
	"github.com/listenupapp/recipe-server/internal/store"
)

// storeError converts store sentinels to domain errors. what names the
// missing resource ("recipe", "tag").
func storeError(err error, what, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return domainerrors.NotFoundf("%s not found", what).WithCause(err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
