package users

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	Repo Repo
	Now  func() time.Time
}

func NewService(repo Repo) *Service {
	return &Service{Repo: repo}
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Register stores a new user profile. Username and email are required.
func (s *Service) Register(ctx context.Context, p Profile) (User, error) {
	if s == nil || s.Repo == nil {
		return User{}, errors.New("users service not configured")
	}
	now := s.now()
	user := User{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now}
	p.apply(&user)
	if strings.TrimSpace(user.Username) == "" || strings.TrimSpace(user.Email) == "" {
		return User{}, ErrInvalidInput
	}
	if err := s.Repo.Create(ctx, user); err != nil {
		return User{}, err
	}
	return user, nil
}

func (s *Service) List(ctx context.Context) ([]User, error) {
	if s == nil || s.Repo == nil {
		return nil, errors.New("users service not configured")
	}
	return s.Repo.List(ctx)
}

func (s *Service) GetByID(ctx context.Context, userID string) (User, error) {
	if s == nil || s.Repo == nil {
		return User{}, errors.New("users service not configured")
	}
	if _, err := uuid.Parse(strings.TrimSpace(userID)); err != nil {
		return User{}, ErrNotFound
	}
	return s.Repo.GetByID(ctx, userID)
}

// UpdateProfile applies the non-nil fields of p to an existing user.
func (s *Service) UpdateProfile(ctx context.Context, userID string, p Profile) (User, error) {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return User{}, err
	}
	p.apply(&user)
	user.UpdatedAt = s.now()
	if err := s.Repo.Update(ctx, user); err != nil {
		return User{}, err
	}
	return user, nil
}

func (s *Service) Delete(ctx context.Context, userID string) error {
	if _, err := s.GetByID(ctx, userID); err != nil {
		return err
	}
	return s.Repo.Delete(ctx, userID)
}

// SearchByUsername matches term as a case-insensitive substring.
func (s *Service) SearchByUsername(ctx context.Context, term string) ([]User, error) {
	if s == nil || s.Repo == nil {
		return nil, errors.New("users service not configured")
	}
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, ErrInvalidInput
	}
	found, err := s.Repo.SearchByUsername(ctx, term)
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, ErrNotFound
	}
	return found, nil
}
