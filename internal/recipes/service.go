package recipes

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

const idLength = 10

const idAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789_-"

// Service contains business logic for recipes.
type Service struct {
	Repo  Repo
	Now   func() time.Time
	NewID func() string
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *Service) newID() string {
	if s.NewID != nil {
		return s.NewID()
	}
	return NewID()
}

// NewID returns a random 10-character URL-safe identifier.
func NewID() string {
	u := uuid.New()
	// Bytes 6 and 8 carry the UUID version and variant bits.
	src := make([]byte, 0, idLength)
	src = append(src, u[:6]...)
	src = append(src, u[10:14]...)
	out := make([]byte, idLength)
	for i, b := range src {
		out[i] = idAlphabet[b&63]
	}
	return string(out)
}

// Create stores a new recipe.
func (s *Service) Create(ctx context.Context, in Input) (Recipe, error) {
	now := s.now()
	recipe := Recipe{ID: s.newID(), CreatedAt: now, UpdatedAt: now}
	in.apply(&recipe)
	if err := s.Repo.Create(ctx, recipe); err != nil {
		return Recipe{}, err
	}
	return recipe, nil
}

// List returns every recipe.
func (s *Service) List(ctx context.Context) ([]Recipe, error) {
	return s.Repo.List(ctx)
}

// Get returns one recipe.
func (s *Service) Get(ctx context.Context, id string) (Recipe, error) {
	if strings.TrimSpace(id) == "" {
		return Recipe{}, ErrNotFound
	}
	return s.Repo.GetByID(ctx, id)
}

// Update applies the non-nil fields of in to an existing recipe.
func (s *Service) Update(ctx context.Context, id string, in Input) (Recipe, error) {
	recipe, err := s.Get(ctx, id)
	if err != nil {
		return Recipe{}, err
	}
	in.apply(&recipe)
	recipe.UpdatedAt = s.now()
	if err := s.Repo.Update(ctx, recipe); err != nil {
		return Recipe{}, err
	}
	return recipe, nil
}

// Delete removes a recipe.
func (s *Service) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrNotFound
	}
	return s.Repo.Delete(ctx, id)
}

// Search returns recipes whose name contains term. An empty term is invalid
// and no match is ErrNotFound.
func (s *Service) Search(ctx context.Context, term string) ([]Recipe, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, ErrInvalidInput
	}
	found, err := s.Repo.SearchByName(ctx, term)
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, ErrNotFound
	}
	return found, nil
}
