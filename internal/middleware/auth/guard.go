package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/Skotchmaster/quickcart/internal/domain"
	"github.com/Skotchmaster/quickcart/internal/models"
	"github.com/Skotchmaster/quickcart/pkg/logging"
	"github.com/Skotchmaster/quickcart/pkg/tokens"
)

type UserLookup interface {
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

// Guard resolves bearer tokens to stored users.
type Guard struct {
	Tokens *tokens.Service
	Users  UserLookup
}

// Authenticate returns the user named by a valid token. A bad token and a
// token whose subject no longer exists both yield domain.ErrUnauthenticated.
func (g *Guard) Authenticate(ctx context.Context, token string) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "guard.authenticate")

	if token == "" {
		return nil, domain.ErrUnauthenticated
	}
	username, err := g.Tokens.Validate(token)
	if err != nil {
		l.Debug("token_rejected", "error", err)
		return nil, domain.ErrUnauthenticated
	}

	user, err := g.Users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			l.Warn("token_subject_missing", "username", username)
			return nil, domain.ErrUnauthenticated
		}
		return nil, err
	}
	return user, nil
}

func (g *Guard) AuthorizeAdmin(ctx context.Context, token string) (*models.User, error) {
	user, err := g.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}
	if !user.Role.IsAdmin() {
		logging.FromContext(ctx).Warn("admin_required", "username", user.Username, "role", user.Role.String())
		return nil, domain.ErrForbidden
	}
	return user, nil
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" value.
func BearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
