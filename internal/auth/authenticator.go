package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Shivanand-hulikatti/coffee-meetup/internal/model"
)

var (
	ErrNoCredentials      = fmt.Errorf("%w: sign in required", model.ErrUnauthorized)
	ErrInvalidCredentials = fmt.Errorf("%w: invalid session token", model.ErrUnauthorized)
	ErrExpiredCredentials = fmt.Errorf("%w: session expired", model.ErrUnauthorized)
)

// TokenCookie is the cookie consulted when no Authorization header is sent.
const TokenCookie = "token"

// Directory resolves a verified identity to the stored member, creating the
// member on first sign-in.
type Directory interface {
	SignIn(ctx context.Context, identity model.Requester) (*model.User, error)
}

// Authenticator verifies request credentials and loads the caller's role.
type Authenticator struct {
	manager *Manager
	users   Directory
}

// NewAuthenticator constructs an Authenticator.
func NewAuthenticator(manager *Manager, users Directory) *Authenticator {
	return &Authenticator{manager: manager, users: users}
}

// Authenticate returns the requester behind r. The role always comes from
// storage, never from the token.
func (a *Authenticator) Authenticate(r *http.Request) (model.Requester, error) {
	raw := extractToken(r)
	if raw == "" {
		return model.Requester{}, ErrNoCredentials
	}

	claims, err := a.manager.Validate(raw)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return model.Requester{}, ErrExpiredCredentials
		}
		return model.Requester{}, ErrInvalidCredentials
	}

	user, err := a.users.SignIn(r.Context(), model.Requester{
		UserID: claims.Subject,
		Email:  claims.Email,
		Name:   claims.Name,
	})
	if err != nil {
		return model.Requester{}, err
	}
	return model.Requester{
		UserID: user.ID,
		Role:   user.Role,
		Email:  user.Email,
		Name:   user.DisplayName,
	}, nil
}

func extractToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			if token = strings.TrimSpace(token); token != "" {
				return token
			}
		}
	}
	if c, err := r.Cookie(TokenCookie); err == nil && c.Value != "" {
		return c.Value
	}
	return ""
}
