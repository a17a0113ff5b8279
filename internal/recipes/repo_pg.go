package recipes

import (
	"context"
	"database/sql"
	"errors"
	"strings"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const recipeColumns = `id, name, ingredient, category, image, created_at, updated_at`

// Create inserts a new recipe.
func (r *PGRepo) Create(ctx context.Context, recipe Recipe) error {
	const query = `
INSERT INTO recipes (id, name, ingredient, category, image, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.DB.ExecContext(ctx, query,
		recipe.ID,
		nullString(recipe.Name),
		nullString(recipe.Ingredient),
		nullString(recipe.Category),
		nullString(recipe.Image),
		recipe.CreatedAt,
		recipe.UpdatedAt,
	)
	return err
}

// List returns every recipe, oldest first.
func (r *PGRepo) List(ctx context.Context) ([]Recipe, error) {
	query := `SELECT ` + recipeColumns + ` FROM recipes ORDER BY created_at, id`
	return r.query(ctx, query)
}

// GetByID returns one recipe.
func (r *PGRepo) GetByID(ctx context.Context, id string) (Recipe, error) {
	query := `SELECT ` + recipeColumns + ` FROM recipes WHERE id = $1`
	recipe, err := scanRecipe(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Recipe{}, ErrNotFound
		}
		return Recipe{}, err
	}
	return recipe, nil
}

// Update overwrites the writable fields of an existing recipe.
func (r *PGRepo) Update(ctx context.Context, recipe Recipe) error {
	const query = `
UPDATE recipes
SET name = $2, ingredient = $3, category = $4, image = $5, updated_at = $6
WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query,
		recipe.ID,
		nullString(recipe.Name),
		nullString(recipe.Ingredient),
		nullString(recipe.Category),
		nullString(recipe.Image),
		recipe.UpdatedAt,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// Delete removes a recipe.
func (r *PGRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM recipes WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// SearchByName matches term as a case-insensitive substring of the name.
func (r *PGRepo) SearchByName(ctx context.Context, term string) ([]Recipe, error) {
	query := `SELECT ` + recipeColumns + ` FROM recipes WHERE name ILIKE $1 ESCAPE '\' ORDER BY created_at, id`
	return r.query(ctx, query, "%"+escapeLike(term)+"%")
}

func (r *PGRepo) query(ctx context.Context, query string, args ...any) ([]Recipe, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Recipe, 0)
	for rows.Next() {
		recipe, err := scanRecipe(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, recipe)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecipe(row rowScanner) (Recipe, error) {
	var recipe Recipe
	var name, ingredient, category, image sql.NullString
	if err := row.Scan(&recipe.ID, &name, &ingredient, &category, &image, &recipe.CreatedAt, &recipe.UpdatedAt); err != nil {
		return Recipe{}, err
	}
	recipe.Name = name.String
	recipe.Ingredient = ingredient.String
	recipe.Category = category.String
	recipe.Image = image.String
	return recipe, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
