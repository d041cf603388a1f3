package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/moviestore/rental-api/internal/core/domain"
	"github.com/moviestore/rental-api/internal/core/ports"
)

var discardLogger = zerolog.Nop()

type stubUserRepo struct {
	users map[string]*domain.User // by uuid
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, u *domain.User) error {
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return domain.ErrUserExists
		}
	}
	r.users[u.UUID] = cloneUser(u)
	return nil
}

func (r *stubUserRepo) Update(_ context.Context, u *domain.User) error {
	if _, ok := r.users[u.UUID]; !ok {
		return domain.ErrUserNotFound
	}
	r.users[u.UUID] = cloneUser(u)
	return nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByUUID(_ context.Context, uuid string) (*domain.User, error) {
	u, ok := r.users[uuid]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) TouchLastLogin(_ context.Context, uuid string, at time.Time) error {
	u, ok := r.users[uuid]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.LastLogin = &at
	return nil
}

func (r *stubUserRepo) List(context.Context, ports.UserFilter) ([]*domain.User, int64, error) {
	return nil, 0, nil
}

type stubDenylist struct {
	revoked map[string]time.Time
}

func (d *stubDenylist) Revoke(_ context.Context, jti string, until time.Time) error {
	d.revoked[jti] = until
	return nil
}

func (d *stubDenylist) IsRevoked(_ context.Context, jti string) (bool, error) {
	_, ok := d.revoked[jti]
	return ok, nil
}

func newAuthFixture(t *testing.T) (*AuthService, *stubUserRepo, *TokenIssuer) {
	t.Helper()
	repo := newStubUserRepo()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret-pass"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	repo.users["user-1"] = &domain.User{UUID: "user-1", Email: "alice@example.com", PasswordHash: string(hash), IsActive: true}
	repo.users["user-2"] = &domain.User{UUID: "user-2", Email: "off@example.com", PasswordHash: string(hash), IsActive: false}

	issuer := NewTokenIssuer("test-secret", time.Minute, time.Hour)
	svc := NewAuthService(repo, &stubDenylist{revoked: map[string]time.Time{}}, issuer, discardLogger)
	return svc, repo, issuer
}

func TestAuthService_Login_Success(t *testing.T) {
	svc, repo, _ := newAuthFixture(t)

	pair, err := svc.Login(context.Background(), "Alice@Example.com", "secret-pass")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if pair.Access.Token == "" || pair.Refresh.Token == "" {
		t.Fatal("expected both tokens")
	}
	if !pair.Refresh.ExpiresAt.After(pair.Access.ExpiresAt) {
		t.Fatal("refresh token should outlive the access token")
	}
	if repo.users["user-1"].LastLogin == nil {
		t.Fatal("expected last_login to be recorded")
	}
}

func TestAuthService_Login_Rejections(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	ctx := context.Background()

	cases := map[string][2]string{
		"wrong password": {"alice@example.com", "nope"},
		"unknown email":  {"bob@example.com", "secret-pass"},
		"inactive user":  {"off@example.com", "secret-pass"},
		"empty fields":   {"", ""},
	}
	for name, c := range cases {
		if _, err := svc.Login(ctx, c[0], c[1]); !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Errorf("%s: expected ErrInvalidCredentials, got %v", name, err)
		}
	}
}

func TestAuthService_Resolve_AnonymousWhenEmpty(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	actor, err := svc.Resolve(context.Background(), "")
	if err != nil || actor != nil {
		t.Fatalf("expected anonymous, got %v, %v", actor, err)
	}
}

func TestAuthService_Resolve_ValidToken(t *testing.T) {
	svc, _, issuer := newAuthFixture(t)
	tok, _ := issuer.IssueAccess("user-1")

	actor, err := svc.Resolve(context.Background(), tok.Token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if actor.UUID != "user-1" || actor.IsAdmin() {
		t.Fatalf("unexpected actor %+v", actor)
	}
}

func TestAuthService_Resolve_InvalidTokens(t *testing.T) {
	svc, _, issuer := newAuthFixture(t)

	refresh, _ := issuer.IssueRefresh("user-1")
	issuer.now = func() time.Time { return time.Now().Add(-time.Hour) }
	expired, _ := issuer.IssueAccess("user-1")
	issuer.now = time.Now
	forged, _ := NewTokenIssuer("other-secret", time.Minute, time.Hour).IssueAccess("user-1")

	cases := map[string]struct {
		raw     string
		message string
	}{
		"garbage":        {"not-a-jwt", "Token is invalid or expired"},
		"expired":        {expired.Token, "Token is invalid or expired"},
		"bad signature":  {forged.Token, "Token is invalid or expired"},
		"refresh token" : {refresh.Token, "Token has wrong type"},
	}
	for name, tc := range cases {
		_, err := svc.Resolve(context.Background(), tc.raw)
		var invalid *domain.InvalidTokenError
		if !errors.As(err, &invalid) {
			t.Fatalf("%s: expected InvalidTokenError, got %v", name, err)
		}
		if invalid.Detail != "Given token not valid for any token type" {
			t.Errorf("%s: unexpected detail %q", name, invalid.Detail)
		}
		if len(invalid.Messages) != 1 || invalid.Messages[0].Message != tc.message || invalid.Messages[0].TokenClass != "AccessToken" {
			t.Errorf("%s: unexpected messages %+v", name, invalid.Messages)
		}
	}
}

func TestAuthService_Resolve_MissingSubject(t *testing.T) {
	svc, _, issuer := newAuthFixture(t)
	claims := tokenClaims{
		TokenType: tokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}
	raw, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(issuer.secret)

	_, err := svc.Resolve(context.Background(), raw)
	var invalid *domain.InvalidTokenError
	if !errors.As(err, &invalid) || invalid.Detail != "Token contained no recognizable user identification" {
		t.Fatalf("expected missing-identity error, got %v", err)
	}
}

func TestAuthService_Resolve_AccountProblems(t *testing.T) {
	svc, _, issuer := newAuthFixture(t)
	ghost, _ := issuer.IssueAccess("user-404")
	inactive, _ := issuer.IssueAccess("user-2")

	var failed *domain.AuthenticationFailedError
	if _, err := svc.Resolve(context.Background(), ghost.Token); !errors.As(err, &failed) || failed.Code != "user_not_found" {
		t.Fatalf("expected user_not_found, got %v", err)
	}
	if _, err := svc.Resolve(context.Background(), inactive.Token); !errors.As(err, &failed) || failed.Code != "user_inactive" {
		t.Fatalf("expected user_inactive, got %v", err)
	}
}

func TestAuthService_RefreshAndLogout(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	ctx := context.Background()
	pair, _ := svc.Login(ctx, "alice@example.com", "secret-pass")

	access, err := svc.Refresh(ctx, pair.Refresh.Token)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if _, err := svc.Resolve(ctx, access.Token); err != nil {
		t.Fatalf("refreshed access token should resolve: %v", err)
	}

	if err := svc.Logout(ctx, pair.Refresh.Token); err != nil {
		t.Fatalf("logout: %v", err)
	}
	var invalid *domain.InvalidTokenError
	if _, err := svc.Refresh(ctx, pair.Refresh.Token); !errors.As(err, &invalid) {
		t.Fatalf("revoked refresh token must be rejected, got %v", err)
	}
}

func TestAuthService_Refresh_RejectsAccessToken(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	ctx := context.Background()
	pair, _ := svc.Login(ctx, "alice@example.com", "secret-pass")

	var invalid *domain.InvalidTokenError
	if _, err := svc.Refresh(ctx, pair.Access.Token); !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidTokenError, got %v", err)
	}
}
