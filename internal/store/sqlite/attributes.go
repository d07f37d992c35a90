package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/listenupapp/recipe-server/internal/domain"
	"github.com/listenupapp/recipe-server/internal/normalize"
	"github.com/listenupapp/recipe-server/internal/store"
)

// attrTable names the tables backing one attribute kind.
type attrTable struct {
	kind  domain.AttributeKind
	table string // attribute rows
	join  string // recipe association rows
	fk    string // attribute column in join
}

var attrTables = map[domain.AttributeKind]attrTable{
	domain.KindTag:        {kind: domain.KindTag, table: "tags", join: "recipe_tags", fk: "tag_id"},
	domain.KindIngredient: {kind: domain.KindIngredient, table: "ingredients", join: "recipe_ingredients", fk: "ingredient_id"},
}

func tableFor(kind domain.AttributeKind) (attrTable, error) {
	t, ok := attrTables[kind]
	if !ok {
		return attrTable{}, fmt.Errorf("unknown attribute kind %q", kind)
	}
	return t, nil
}

func (t attrTable) notFound() string {
	return string(t.kind) + " not found"
}

// attributeColumns must match the scan order in scanAttribute.
const attributeColumns = `a.id, a.user_id, a.name, a.created_at, a.updated_at`

func scanAttribute(kind domain.AttributeKind, scanner interface{ Scan(dest ...any) error }) (*domain.Attribute, error) {
	var (
		a         = domain.Attribute{Kind: kind}
		createdAt string
		updatedAt string
	)
	if err := scanner.Scan(&a.ID, &a.UserID, &a.Name, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	var err error
	if a.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if a.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

// GetAttribute retrieves one attribute owned by userID.
func (s *Store) GetAttribute(ctx context.Context, userID int64, kind domain.AttributeKind, id int64) (*domain.Attribute, error) {
	t, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	return getAttribute(ctx, s.db, t, userID, id)
}

func getAttribute(ctx context.Context, q querier, t attrTable, userID, id int64) (*domain.Attribute, error) {
	row := q.QueryRowContext(ctx,
		`SELECT `+attributeColumns+` FROM `+t.table+` a WHERE a.id = ? AND a.user_id = ?`, id, userID)
	a, err := scanAttribute(t.kind, row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound.WithMessage(t.notFound())
	}
	return a, err
}

func getAttributeByName(ctx context.Context, q querier, t attrTable, userID int64, name string) (*domain.Attribute, error) {
	row := q.QueryRowContext(ctx,
		`SELECT `+attributeColumns+` FROM `+t.table+` a WHERE a.user_id = ? AND a.name = ?`, userID, name)
	a, err := scanAttribute(t.kind, row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound.WithMessage(t.notFound())
	}
	return a, err
}

// GetOrCreateAttribute returns the user's attribute with the given name,
// creating it if needed. created reports whether a new row was inserted.
func (s *Store) GetOrCreateAttribute(ctx context.Context, userID int64, kind domain.AttributeKind, name string) (*domain.Attribute, bool, error) {
	t, err := tableFor(kind)
	if err != nil {
		return nil, false, err
	}
	return getOrCreateAttribute(ctx, s.db, t, userID, normalize.Name(name))
}

// getOrCreateAttribute is lookup, then insert, then lookup again if the
// insert lost a race on the (user_id, name) unique index.
func getOrCreateAttribute(ctx context.Context, q querier, t attrTable, userID int64, name string) (*domain.Attribute, bool, error) {
	existing, err := getAttributeByName(ctx, q, t, userID, name)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, false, err
	}

	now := time.Now().UTC()
	res, err := q.ExecContext(ctx,
		`INSERT INTO `+t.table+` (user_id, name, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		userID, name, formatTime(now), formatTime(now))
	if err != nil {
		if isUniqueViolation(err) {
			existing, err := getAttributeByName(ctx, q, t, userID, name)
			if err != nil {
				return nil, false, err
			}
			return existing, false, nil
		}
		if isForeignKeyViolation(err) {
			return nil, false, store.ErrNotFound.WithMessage("user not found")
		}
		return nil, false, fmt.Errorf("insert %s: %w", t.kind, err)
	}

	newID, err := res.LastInsertId()
	if err != nil {
		return nil, false, fmt.Errorf("%s id: %w", t.kind, err)
	}
	return &domain.Attribute{
		ID:        newID,
		UserID:    userID,
		Kind:      t.kind,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}, true, nil
}

// ListAttributes returns the user's attributes of kind, newest name first
// (name descending, then id descending).
func (s *Store) ListAttributes(ctx context.Context, userID int64, kind domain.AttributeKind, filter store.AttributeFilter) ([]*domain.Attribute, error) {
	t, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + attributeColumns + ` FROM ` + t.table + ` a WHERE a.user_id = ?`
	if filter.AssignedOnly {
		query += ` AND EXISTS (SELECT 1 FROM ` + t.join + ` j WHERE j.` + t.fk + ` = a.id)`
	}
	query += ` ORDER BY a.name DESC, a.id DESC`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	attrs := []*domain.Attribute{}
	for rows.Next() {
		a, err := scanAttribute(kind, rows)
		if err != nil {
			return nil, err
		}
		attrs = append(attrs, a)
	}
	return attrs, rows.Err()
}

// RenameAttribute changes an attribute's name.
// Returns store.ErrAlreadyExists if the user already has one with that name.
func (s *Store) RenameAttribute(ctx context.Context, userID int64, kind domain.AttributeKind, id int64, name string) (*domain.Attribute, error) {
	t, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	name = normalize.Name(name)

	var renamed *domain.Attribute
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE `+t.table+` SET name = ?, updated_at = ? WHERE id = ? AND user_id = ?`,
			name, formatTime(time.Now().UTC()), id, userID)
		if err != nil {
			if isUniqueViolation(err) {
				return store.ErrAlreadyExists.WithMessage(string(kind) + " with this name already exists")
			}
			return fmt.Errorf("rename %s: %w", kind, err)
		}
		if err := checkAffected(res, t.notFound()); err != nil {
			return err
		}
		renamed, err = getAttribute(ctx, tx, t, userID, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return renamed, nil
}

// DeleteAttribute removes an attribute; its recipe associations cascade.
func (s *Store) DeleteAttribute(ctx context.Context, userID int64, kind domain.AttributeKind, id int64) error {
	t, err := tableFor(kind)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM `+t.table+` WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete %s: %w", kind, err)
	}
	return checkAffected(res, t.notFound())
}

// replaceAssociations clears the recipe's associations of one kind and
// links it to the reconciled set of names. Returns how many attributes had
// to be created.
func replaceAssociations(ctx context.Context, tx *sql.Tx, t attrTable, userID, recipeID int64, names []string) (int, error) {
	if _, err := tx.ExecContext(ctx, `DELETE FROM `+t.join+` WHERE recipe_id = ?`, recipeID); err != nil {
		return 0, fmt.Errorf("clear %s: %w", t.join, err)
	}

	created := 0
	for _, name := range normalize.Names(names) {
		a, isNew, err := getOrCreateAttribute(ctx, tx, t, userID, name)
		if err != nil {
			return 0, err
		}
		if isNew {
			created++
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO `+t.join+` (recipe_id, `+t.fk+`) VALUES (?, ?)`,
			recipeID, a.ID); err != nil {
			return 0, fmt.Errorf("link %s: %w", t.kind, err)
		}
	}
	return created, nil
}

// maxBatchIDs keeps IN lists well below SQLite's bound-variable limit.
const maxBatchIDs = 500

// loadAssociations returns the attributes of one kind for each recipe id,
// ordered by attribute id.
func loadAssociations(ctx context.Context, q querier, t attrTable, recipeIDs []int64) (map[int64][]domain.Attribute, error) {
	out := make(map[int64][]domain.Attribute, len(recipeIDs))

	for start := 0; start < len(recipeIDs); start += maxBatchIDs {
		end := min(start+maxBatchIDs, len(recipeIDs))
		batch := recipeIDs[start:end]

		rows, err := q.QueryContext(ctx, `
			SELECT j.recipe_id, `+attributeColumns+`
			FROM `+t.join+` j
			JOIN `+t.table+` a ON a.id = j.`+t.fk+`
			WHERE j.recipe_id IN (`+placeholders(len(batch))+`)
			ORDER BY j.recipe_id, a.id`,
			int64Args(batch)...)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", t.join, err)
		}

		err = func() error {
			defer rows.Close()
			for rows.Next() {
				var (
					recipeID  int64
					a         = domain.Attribute{Kind: t.kind}
					createdAt string
					updatedAt string
				)
				if err := rows.Scan(&recipeID, &a.ID, &a.UserID, &a.Name, &createdAt, &updatedAt); err != nil {
					return err
				}
				if a.CreatedAt, err = parseTime(createdAt); err != nil {
					return err
				}
				if a.UpdatedAt, err = parseTime(updatedAt); err != nil {
					return err
				}
				out[recipeID] = append(out[recipeID], a)
			}
			return rows.Err()
		}()
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}
