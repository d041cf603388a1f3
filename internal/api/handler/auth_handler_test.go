package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/moviestore/rental-api/internal/api/middleware"
	"github.com/moviestore/rental-api/internal/core/domain"
	"github.com/moviestore/rental-api/internal/core/ports"
)

type stubAuthService struct {
	loginFn   func(ctx context.Context, email, password string) (*ports.TokenPair, error)
	refreshFn func(ctx context.Context, refresh string) (*ports.IssuedToken, error)
	logoutFn  func(ctx context.Context, refresh string) error
}

func (s *stubAuthService) Resolve(ctx context.Context, raw string) (*domain.Actor, error) {
	return nil, nil
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (*ports.TokenPair, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAuthService) Refresh(ctx context.Context, refresh string) (*ports.IssuedToken, error) {
	return s.refreshFn(ctx, refresh)
}

func (s *stubAuthService) Logout(ctx context.Context, refresh string) error {
	return s.logoutFn(ctx, refresh)
}

func newAuthContext(method, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(method, "/auth/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func responseCookies(rec *httptest.ResponseRecorder) map[string]*http.Cookie {
	out := map[string]*http.Cookie{}
	for _, c := range (&http.Response{Header: rec.Header()}).Cookies() {
		out[c.Name] = c
	}
	return out
}

func TestAuthHandler_Login_SetsCookies(t *testing.T) {
	exp := time.Now().Add(time.Hour)
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, email, password string) (*ports.TokenPair, error) {
			if email != "alice@example.com" || password != "secret" {
				t.Fatalf("unexpected args: %s %s", email, password)
			}
			return &ports.TokenPair{
				Access:  ports.IssuedToken{Token: "acc", ExpiresAt: exp},
				Refresh: ports.IssuedToken{Token: "ref", ExpiresAt: exp},
			}, nil
		},
	}
	h := NewAuthHandler(stub, CookieConfig{Secure: true})

	c, rec := newAuthContext(http.MethodPost, `{"email":"alice@example.com","password":"secret"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp tokenResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Access != "acc" || resp.Refresh != "ref" {
		t.Fatalf("unexpected tokens: %+v", resp)
	}

	cookies := responseCookies(rec)
	access, ok := cookies[middleware.AccessCookie]
	if !ok || access.Value != "acc" || !access.HttpOnly || !access.Secure {
		t.Fatalf("unexpected access cookie: %+v", access)
	}
	if refresh, ok := cookies[middleware.RefreshCookie]; !ok || refresh.Value != "ref" {
		t.Fatalf("unexpected refresh cookie: %+v", refresh)
	}
}

func TestAuthHandler_Login_MissingFields(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, email, password string) (*ports.TokenPair, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	h := NewAuthHandler(stub, CookieConfig{})

	c, _ := newAuthContext(http.MethodPost, `{"email":"alice@example.com"}`)
	err := h.Login(c)

	var verrs domain.ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected validation errors, got %v", err)
	}
	if len(verrs) != 1 || verrs[0].Field != "password" {
		t.Fatalf("unexpected fields: %v", verrs)
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, email, password string) (*ports.TokenPair, error) {
			return nil, domain.ErrInvalidCredentials
		},
	}
	h := NewAuthHandler(stub, CookieConfig{})

	c, rec := newAuthContext(http.MethodPost, `{"email":"alice@example.com","password":"bad"}`)
	if err := h.Login(c); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if len(responseCookies(rec)) != 0 {
		t.Fatalf("no cookies expected on failure")
	}
}

func TestAuthHandler_Refresh_PrefersBody(t *testing.T) {
	var got string
	stub := &stubAuthService{
		refreshFn: func(ctx context.Context, refresh string) (*ports.IssuedToken, error) {
			got = refresh
			return &ports.IssuedToken{Token: "new-access", ExpiresAt: time.Now().Add(time.Minute)}, nil
		},
	}
	h := NewAuthHandler(stub, CookieConfig{})

	c, rec := newAuthContext(http.MethodPatch, `{"refresh":"from-body"}`)
	c.Request().AddCookie(&http.Cookie{Name: middleware.RefreshCookie, Value: "from-cookie"})
	if err := h.Refresh(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if got != "from-body" {
		t.Fatalf("expected body token, got %q", got)
	}
	if cookie := responseCookies(rec)[middleware.AccessCookie]; cookie == nil || cookie.Value != "new-access" {
		t.Fatalf("access cookie not refreshed: %+v", cookie)
	}
}

func TestAuthHandler_Refresh_FallsBackToCookie(t *testing.T) {
	var got string
	stub := &stubAuthService{
		refreshFn: func(ctx context.Context, refresh string) (*ports.IssuedToken, error) {
			got = refresh
			return &ports.IssuedToken{Token: "new-access"}, nil
		},
	}
	h := NewAuthHandler(stub, CookieConfig{})

	c, rec := newAuthContext(http.MethodPatch, `{}`)
	c.Request().AddCookie(&http.Cookie{Name: middleware.RefreshCookie, Value: "from-cookie"})
	if err := h.Refresh(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if got != "from-cookie" {
		t.Fatalf("expected cookie token, got %q", got)
	}

	var resp tokenResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Access != "new-access" || resp.Refresh != "" {
		t.Fatalf("unexpected body: %+v", resp)
	}
}

func TestAuthHandler_Logout_ClearsCookies(t *testing.T) {
	var revoked string
	stub := &stubAuthService{
		logoutFn: func(ctx context.Context, refresh string) error {
			revoked = refresh
			return nil
		},
	}
	h := NewAuthHandler(stub, CookieConfig{})

	c, rec := newAuthContext(http.MethodDelete, ``)
	c.Request().AddCookie(&http.Cookie{Name: middleware.RefreshCookie, Value: "ref"})
	if err := h.Logout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if revoked != "ref" {
		t.Fatalf("expected refresh token to be revoked, got %q", revoked)
	}

	cookies := responseCookies(rec)
	for _, name := range []string{middleware.AccessCookie, middleware.RefreshCookie} {
		cookie, ok := cookies[name]
		if !ok {
			t.Fatalf("cookie %s not cleared", name)
		}
		if cookie.Value != "" || cookie.MaxAge >= 0 {
			t.Fatalf("cookie %s not expired: %+v", name, cookie)
		}
	}
}
