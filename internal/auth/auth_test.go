package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Shivanand-hulikatti/coffee-meetup/internal/config"
	"github.com/Shivanand-hulikatti/coffee-meetup/internal/model"
)

const testSecret = "test-secret-that-is-long-enough-1234"

type fakeDirectory struct {
	roles map[string]model.Role
	seen  []model.Requester
}

func (d *fakeDirectory) SignIn(_ context.Context, identity model.Requester) (*model.User, error) {
	d.seen = append(d.seen, identity)
	return &model.User{ID: identity.UserID, Email: identity.Email, DisplayName: identity.Name, Role: d.roles[identity.UserID]}, nil
}

func newManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(config.AuthConfig{JWTSecret: testSecret, Issuer: "coffee-meetup", TokenTTL: time.Hour})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return m
}

func TestNewManager_RequiresSecret(t *testing.T) {
	if _, err := NewManager(config.AuthConfig{}); err == nil {
		t.Fatal("expected error for empty secret")
	}
}

func TestManager_IssueAndValidate(t *testing.T) {
	m := newManager(t)
	token, err := m.Issue("u1", "ana@example.com", "Ana")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	claims, err := m.Validate(token)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if claims.Subject != "u1" || claims.Email != "ana@example.com" || claims.Name != "Ana" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.ExpiresAt == nil {
		t.Fatal("expected expiry to be set")
	}
}

func TestManager_ValidateRejects(t *testing.T) {
	m := newManager(t)
	other, _ := NewManager(config.AuthConfig{JWTSecret: "another-secret-that-is-long-enough", Issuer: "coffee-meetup"})
	foreign, _ := other.Issue("u1", "a@example.com", "")

	wrongIssuer, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "u1", Issuer: "someone-else"},
	}).SignedString([]byte(testSecret))

	noSubject, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{Issuer: "coffee-meetup"},
	}).SignedString([]byte(testSecret))

	unsigned, _ := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "u1", Issuer: "coffee-meetup"},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)

	tests := map[string]string{
		"wrong secret": foreign,
		"wrong issuer": wrongIssuer,
		"no subject":   noSubject,
		"alg none":     unsigned,
		"garbage":      "not-a-token",
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := m.Validate(token); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestAuthenticator_Authenticate(t *testing.T) {
	m := newManager(t)
	dir := &fakeDirectory{roles: map[string]model.Role{"admin-1": model.RoleAdmin}}
	a := NewAuthenticator(m, dir)

	t.Run("bearer header uses stored role", func(t *testing.T) {
		token, _ := m.Issue("admin-1", "boss@example.com", "Boss")
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)

		r, err := a.Authenticate(req)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if r.UserID != "admin-1" || !r.IsAdmin() || r.Email != "boss@example.com" {
			t.Fatalf("unexpected requester: %+v", r)
		}
	})

	t.Run("cookie fallback", func(t *testing.T) {
		token, _ := m.Issue("u2", "u2@example.com", "")
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.AddCookie(&http.Cookie{Name: TokenCookie, Value: token})

		r, err := a.Authenticate(req)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if r.UserID != "u2" || r.IsAdmin() {
			t.Fatalf("unexpected requester: %+v", r)
		}
	})

	t.Run("missing token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		if _, err := a.Authenticate(req); !errors.Is(err, ErrNoCredentials) || !errors.Is(err, model.ErrUnauthorized) {
			t.Fatalf("expected ErrNoCredentials, got %v", err)
		}
	})

	t.Run("expired token", func(t *testing.T) {
		past := time.Now().Add(-2 * time.Hour)
		token, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "u1",
				Issuer:    "coffee-meetup",
				ExpiresAt: jwt.NewNumericDate(past),
			},
		}).SignedString([]byte(testSecret))
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		if _, err := a.Authenticate(req); !errors.Is(err, ErrExpiredCredentials) {
			t.Fatalf("expected ErrExpiredCredentials, got %v", err)
		}
	})

	t.Run("malformed header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Basic abc")
		if _, err := a.Authenticate(req); !errors.Is(err, ErrNoCredentials) {
			t.Fatalf("expected ErrNoCredentials, got %v", err)
		}
	})
}

func TestRequesterContext(t *testing.T) {
	if _, ok := RequesterFromContext(context.Background()); ok {
		t.Fatal("expected no requester")
	}
	ctx := WithRequester(context.Background(), model.Requester{UserID: "u1"})
	r, ok := RequesterFromContext(ctx)
	if !ok || r.UserID != "u1" {
		t.Fatalf("unexpected requester: %+v", r)
	}
}
