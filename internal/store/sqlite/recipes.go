package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/listenupapp/recipe-server/internal/domain"
	"github.com/listenupapp/recipe-server/internal/store"
)

const recipeNotFound = "recipe not found"

// recipeColumns must match the scan order in scanRecipe.
const recipeColumns = `r.id, r.user_id, r.title, r.time_minutes, r.price_cents, r.link,
	r.description, r.image, r.image_blurhash, r.created_at, r.updated_at`

func scanRecipe(scanner interface{ Scan(dest ...any) error }) (*domain.Recipe, error) {
	var (
		r         domain.Recipe
		image     sql.NullString
		blurHash  sql.NullString
		createdAt string
		updatedAt string
	)
	err := scanner.Scan(
		&r.ID,
		&r.UserID,
		&r.Title,
		&r.TimeMinutes,
		&r.PriceCents,
		&r.Link,
		&r.Description,
		&image,
		&blurHash,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}
	r.Image = image.String
	r.ImageBlurHash = blurHash.String

	if r.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if r.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &r, nil
}

// CreateRecipe inserts r and reconciles its tags and ingredients in one
// transaction.
func (s *Store) CreateRecipe(ctx context.Context, r *domain.Recipe, tags, ingredients []string) (store.ReconcileStats, error) {
	stats := store.ReconcileStats{}
	now := time.Now().UTC()

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO recipes (user_id, title, time_minutes, price_cents, link, description, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			r.UserID,
			r.Title,
			r.TimeMinutes,
			r.PriceCents,
			r.Link,
			r.Description,
			formatTime(now),
			formatTime(now),
		)
		if err != nil {
			if isForeignKeyViolation(err) {
				return store.ErrNotFound.WithMessage("user not found")
			}
			return fmt.Errorf("insert recipe: %w", err)
		}
		if r.ID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("recipe id: %w", err)
		}

		names := map[domain.AttributeKind][]string{
			domain.KindTag:        tags,
			domain.KindIngredient: ingredients,
		}
		for _, kind := range domain.AttributeKinds {
			n, err := replaceAssociations(ctx, tx, attrTables[kind], r.UserID, r.ID, names[kind])
			if err != nil {
				return err
			}
			stats.Add(kind, n)
		}

		return attachAssociations(ctx, tx, []*domain.Recipe{r})
	})
	if err != nil {
		r.ID = 0
		return nil, err
	}

	r.CreatedAt, r.UpdatedAt = now, now
	s.logger.Debug("recipe inserted", "recipe_id", r.ID, "user_id", r.UserID, "created_attributes", stats.Total())
	return stats, nil
}

// GetRecipe retrieves a recipe owned by userID with its associations.
func (s *Store) GetRecipe(ctx context.Context, userID, id int64) (*domain.Recipe, error) {
	r, err := getRecipe(ctx, s.db, userID, id)
	if err != nil {
		return nil, err
	}
	if err := attachAssociations(ctx, s.db, []*domain.Recipe{r}); err != nil {
		return nil, err
	}
	return r, nil
}

func getRecipe(ctx context.Context, q querier, userID, id int64) (*domain.Recipe, error) {
	row := q.QueryRowContext(ctx,
		`SELECT `+recipeColumns+` FROM recipes r WHERE r.id = ? AND r.user_id = ?`, id, userID)
	r, err := scanRecipe(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound.WithMessage(recipeNotFound)
	}
	return r, err
}

// ListRecipes returns the user's recipes, most recent first. Each recipe
// appears once even when it matches several filter ids.
func (s *Store) ListRecipes(ctx context.Context, userID int64, filter store.RecipeFilter) ([]*domain.Recipe, error) {
	var (
		where = []string{"r.user_id = ?"}
		args  = []any{userID}
	)
	filterIDs := map[domain.AttributeKind][]int64{
		domain.KindTag:        filter.TagIDs,
		domain.KindIngredient: filter.IngredientIDs,
	}
	for _, kind := range domain.AttributeKinds {
		ids := filterIDs[kind]
		if len(ids) == 0 {
			continue
		}
		t := attrTables[kind]
		where = append(where, `r.id IN (SELECT j.recipe_id FROM `+t.join+` j WHERE j.`+t.fk+` IN (`+placeholders(len(ids))+`))`)
		args = append(args, int64Args(ids)...)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+recipeColumns+` FROM recipes r WHERE `+strings.Join(where, " AND ")+` ORDER BY r.id DESC`,
		args...)
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}

	recipes := []*domain.Recipe{}
	err = func() error {
		defer rows.Close()
		for rows.Next() {
			r, err := scanRecipe(rows)
			if err != nil {
				return err
			}
			recipes = append(recipes, r)
		}
		return rows.Err()
	}()
	if err != nil {
		return nil, err
	}

	if err := attachAssociations(ctx, s.db, recipes); err != nil {
		return nil, err
	}
	return recipes, nil
}

// UpdateRecipe applies patch to the user's recipe in one transaction.
func (s *Store) UpdateRecipe(ctx context.Context, userID, id int64, patch domain.RecipePatch) (*domain.Recipe, store.ReconcileStats, error) {
	stats := store.ReconcileStats{}
	var updated *domain.Recipe

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		r, err := getRecipe(ctx, tx, userID, id)
		if err != nil {
			return err
		}

		patch.Apply(r)
		r.UpdatedAt = time.Now().UTC()

		_, err = tx.ExecContext(ctx, `
			UPDATE recipes
			SET title = ?, time_minutes = ?, price_cents = ?, link = ?, description = ?, updated_at = ?
			WHERE id = ? AND user_id = ?`,
			r.Title,
			r.TimeMinutes,
			r.PriceCents,
			r.Link,
			r.Description,
			formatTime(r.UpdatedAt),
			id,
			userID,
		)
		if err != nil {
			return fmt.Errorf("update recipe: %w", err)
		}

		for _, kind := range domain.AttributeKinds {
			names := patch.Names(kind)
			if names == nil {
				continue
			}
			n, err := replaceAssociations(ctx, tx, attrTables[kind], userID, id, names)
			if err != nil {
				return err
			}
			stats.Add(kind, n)
		}

		if err := attachAssociations(ctx, tx, []*domain.Recipe{r}); err != nil {
			return err
		}
		updated = r
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return updated, stats, nil
}

// DeleteRecipe removes the user's recipe; associations cascade, attributes stay.
func (s *Store) DeleteRecipe(ctx context.Context, userID, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM recipes WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete recipe: %w", err)
	}
	return checkAffected(res, recipeNotFound)
}

// SetRecipeImage records a new image for the recipe and returns the old one.
func (s *Store) SetRecipeImage(ctx context.Context, userID, id int64, image, blurHash string) (string, error) {
	var previous string
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var old sql.NullString
		err := tx.QueryRowContext(ctx,
			`SELECT image FROM recipes WHERE id = ? AND user_id = ?`, id, userID).Scan(&old)
		if errors.Is(err, sql.ErrNoRows) {
			return store.ErrNotFound.WithMessage(recipeNotFound)
		}
		if err != nil {
			return err
		}
		previous = old.String

		_, err = tx.ExecContext(ctx,
			`UPDATE recipes SET image = ?, image_blurhash = ?, updated_at = ? WHERE id = ? AND user_id = ?`,
			nullString(image), nullString(blurHash), formatTime(time.Now().UTC()), id, userID)
		if err != nil {
			return fmt.Errorf("set recipe image: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return previous, nil
}

// attachAssociations fills Tags and Ingredients on every recipe. Slices are
// never nil so empty associations render as [].
func attachAssociations(ctx context.Context, q querier, recipes []*domain.Recipe) error {
	if len(recipes) == 0 {
		return nil
	}
	ids := make([]int64, len(recipes))
	for i, r := range recipes {
		ids[i] = r.ID
	}

	for _, kind := range domain.AttributeKinds {
		byRecipe, err := loadAssociations(ctx, q, attrTables[kind], ids)
		if err != nil {
			return err
		}
		for _, r := range recipes {
			attrs := byRecipe[r.ID]
			if attrs == nil {
				attrs = []domain.Attribute{}
			}
			r.SetAttributes(kind, attrs)
		}
	}
	return nil
}
