package service

import (
	"context"

	"github.com/ekrsw/knowledge/internal/hash"
	"github.com/ekrsw/knowledge/internal/models"
	"github.com/ekrsw/knowledge/internal/repo"
)

type UserService struct {
	Repo *repo.Repo
}

// UserPatch applies only provided fields. A supplied password is
// re-hashed; IsAdmin may only be flipped by an admin.
type UserPatch struct {
	FullName *string `json:"full_name"`
	Password *string `json:"password"`
	IsAdmin  *bool   `json:"is_admin"`
}

func (s *UserService) List(ctx context.Context, skip, limit int) ([]models.User, error) {
	return s.Repo.ListUsers(ctx, skip, limit)
}

func (s *UserService) Get(ctx context.Context, id uint) (*models.User, error) {
	return s.Repo.GetUser(ctx, id)
}

func (s *UserService) Update(ctx context.Context, id uint, patch UserPatch, actor *models.User) (*models.User, error) {
	if actor.ID != id && !actor.IsAdmin {
		return nil, ErrForbidden
	}

	user, err := s.Repo.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.FullName != nil {
		user.FullName = *patch.FullName
	}
	if patch.Password != nil {
		pwHash, err := hash.HashPassword(*patch.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = pwHash
	}
	if patch.IsAdmin != nil {
		if !actor.IsAdmin {
			return nil, ErrForbidden
		}
		user.IsAdmin = *patch.IsAdmin
	}

	if err := s.Repo.SaveUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
