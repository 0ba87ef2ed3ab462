package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Skotchmaster/quickcart/internal/domain"
	"github.com/Skotchmaster/quickcart/internal/events"
	"github.com/Skotchmaster/quickcart/internal/models"
	"github.com/Skotchmaster/quickcart/internal/repo"
	pkg_hash "github.com/Skotchmaster/quickcart/pkg/hash"
	"github.com/Skotchmaster/quickcart/pkg/logging"
	"github.com/Skotchmaster/quickcart/pkg/tokens"
)

type AuthService struct {
	Repo   *repo.GormRepo
	Tokens *tokens.Service
	Events events.Publisher
}

type LoginResult struct {
	AccessToken string
	ExpiresAt   time.Time
}

func (s *AuthService) Register(ctx context.Context, username, password string, role models.Role) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register", "username", username)

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
		l.Error("register_error", "status", 500, "reason", "cannot hash the password", "error", err)
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		PasswordHash: pwHash,
		Role:         role,
	}
	if err := s.Repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			l.Warn("register_error", "status", 400, "reason", err.Error())
		} else {
			l.Error("register_error", "status", 500, "reason", "cannot create user", "error", err)
		}
		return nil, err
	}

	publish(ctx, s.Events, events.TopicUsers, user.ID, "user_registered", user)
	l.Info("register_success", "user_id", user.ID, "role", user.Role.String())
	return user, nil
}

// Verify reports whether password matches the stored hash for username.
func (s *AuthService) Verify(ctx context.Context, username, password string) (bool, error) {
	_, err := s.checkCredentials(ctx, username, password)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, domain.ErrInvalidCredentials):
		return false, nil
	default:
		return false, err
	}
}

func (s *AuthService) checkCredentials(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.Repo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			pkg_hash.BurnCompare(password)
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if !pkg_hash.CheckPassword(user.PasswordHash, password) {
		return nil, domain.ErrInvalidCredentials
	}
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login", "username", username)

	user, err := s.checkCredentials(ctx, username, password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			l.Warn("login_failed", "status", 401, "reason", "invalid username or password")
			return nil, domain.ErrInvalidCredentials
		}
		l.Error("login_failed", "status", 500, "error", err)
		return nil, err
	}

	token, exp, err := s.Tokens.Issue(user.Username)
	if err != nil {
		l.Error("login_failed", "status", 500, "reason", "cannot issue token", "error", err)
		return nil, err
	}

	l.Info("login_success", "user_id", user.ID)
	return &LoginResult{AccessToken: token, ExpiresAt: exp}, nil
}

// publish sends a domain event; failures are logged and swallowed.
func publish(ctx context.Context, pub events.Publisher, topic string, id uint, typ string, data any) {
	if pub == nil {
		return
	}
	ev := events.NewEvent(typ, id, domain.ActorFromContext(ctx), data)
	if err := pub.Publish(ctx, topic, strconv.FormatUint(uint64(id), 10), ev); err != nil {
		logging.FromContext(ctx).Error("publish_event_failed", "topic", topic, "type", typ, "error", err)
	}
}
