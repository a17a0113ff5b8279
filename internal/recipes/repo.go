package recipes

import (
	"context"
	"errors"
)

var (
	ErrNotFound     = errors.New("recipe not found")
	ErrInvalidInput = errors.New("invalid input")
)

// Repo defines persistence operations for recipes.
type Repo interface {
	Create(ctx context.Context, recipe Recipe) error
	List(ctx context.Context) ([]Recipe, error)
	GetByID(ctx context.Context, id string) (Recipe, error)
	Update(ctx context.Context, recipe Recipe) error
	Delete(ctx context.Context, id string) error
	SearchByName(ctx context.Context, term string) ([]Recipe, error)
}
