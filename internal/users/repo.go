package users

import (
	"context"
	"errors"
)

var (
	ErrNotFound     = errors.New("user not found")
	ErrConflict     = errors.New("username or email already taken")
	ErrInvalidInput = errors.New("invalid input")
)

type Repo interface {
	Create(ctx context.Context, user User) error
	List(ctx context.Context) ([]User, error)
	GetByID(ctx context.Context, userID string) (User, error)
	Update(ctx context.Context, user User) error
	Delete(ctx context.Context, userID string) error
	SearchByUsername(ctx context.Context, term string) ([]User, error)
}
