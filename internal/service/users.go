package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Skotchmaster/quickcart/internal/domain"
	"github.com/Skotchmaster/quickcart/internal/events"
	"github.com/Skotchmaster/quickcart/internal/models"
	"github.com/Skotchmaster/quickcart/internal/repo"
	pkg_hash "github.com/Skotchmaster/quickcart/pkg/hash"
)

type UserService struct {
	Repo   *repo.GormRepo
	Events events.Publisher
}

func (s *UserService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.Repo.ListUsers(ctx)
}

func (s *UserService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	return s.Repo.GetUserByID(ctx, id)
}

// UpdateUser replaces username, password and role. Promoting a user to admin
// while another admin exists fails with domain.ErrAdminExists.
func (s *UserService) UpdateUser(ctx context.Context, id uint, username, password string, role models.Role) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, domain.Validation("username and password are required")
	}
	if len(password) > pkg_hash.MaxPasswordBytes {
		return nil, domain.Validation("password must be at most %d bytes", pkg_hash.MaxPasswordBytes)
	}
	if role == 0 {
		role = models.RoleUser
	}

	pwHash, err := pkg_hash.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.Repo.ReplaceUser(ctx, id, username, pwHash, role)
	if err != nil {
		return nil, err
	}

	publish(ctx, s.Events, events.TopicUsers, user.ID, "user_updated", user)
	return user, nil
}

func (s *UserService) DeleteUser(ctx context.Context, id uint) error {
	if err := s.Repo.DeleteUser(ctx, id); err != nil {
		return err
	}
	publish(ctx, s.Events, events.TopicUsers, id, "user_deleted", nil)
	return nil
}
