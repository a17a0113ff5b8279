package recipes

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]Recipe
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string]Recipe)}
}

func (r *MemoryRepo) Create(ctx context.Context, recipe Recipe) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[recipe.ID] = recipe
	return nil
}

func (r *MemoryRepo) List(ctx context.Context) ([]Recipe, error) {
	return r.filter(ctx, func(Recipe) bool { return true })
}

func (r *MemoryRepo) GetByID(ctx context.Context, id string) (Recipe, error) {
	if err := ctx.Err(); err != nil {
		return Recipe{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	recipe, ok := r.data[id]
	if !ok {
		return Recipe{}, ErrNotFound
	}
	return recipe, nil
}

func (r *MemoryRepo) Update(ctx context.Context, recipe Recipe) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[recipe.ID]; !ok {
		return ErrNotFound
	}
	r.data[recipe.ID] = recipe
	return nil
}

func (r *MemoryRepo) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[id]; !ok {
		return ErrNotFound
	}
	delete(r.data, id)
	return nil
}

func (r *MemoryRepo) SearchByName(ctx context.Context, term string) ([]Recipe, error) {
	term = strings.ToLower(term)
	return r.filter(ctx, func(recipe Recipe) bool {
		return strings.Contains(strings.ToLower(recipe.Name), term)
	})
}

func (r *MemoryRepo) filter(ctx context.Context, keep func(Recipe) bool) ([]Recipe, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Recipe, 0, len(r.data))
	for _, recipe := range r.data {
		if keep(recipe) {
			out = append(out, recipe)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}
