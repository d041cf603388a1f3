package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/moviestore/rental-api/internal/api/middleware"
	"github.com/moviestore/rental-api/internal/core/ports"
)

// CookieConfig controls the attributes of the token cookies.
type CookieConfig struct {
	Secure bool
}

type AuthHandler struct {
	authService ports.AuthService
	cookies     CookieConfig
}

func NewAuthHandler(authService ports.AuthService, cookies CookieConfig) *AuthHandler {
	return &AuthHandler{authService: authService, cookies: cookies}
}

// Login exchanges credentials for an access and a refresh token.
//
// @Summary      Login
// @Description  Sets the access_token and refresh_token httpOnly cookies and returns both tokens.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  tokenResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /auth/ [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	pair, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	c.SetCookie(h.cookie(middleware.AccessCookie, pair.Access))
	c.SetCookie(h.cookie(middleware.RefreshCookie, pair.Refresh))
	return c.JSON(http.StatusOK, tokenResponse{Access: pair.Access.Token, Refresh: pair.Refresh.Token})
}

// Refresh issues a new access token from a refresh token.
//
// @Summary      Refresh the access token
// @Description  The refresh token is read from the body or, when absent, from the refresh_token cookie.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      refreshRequest  false  "Refresh token"
// @Success      200   {object}  tokenResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /auth/ [patch]
func (h *AuthHandler) Refresh(c echo.Context) error {
	raw, err := h.refreshToken(c)
	if err != nil {
		return err
	}

	access, err := h.authService.Refresh(c.Request().Context(), raw)
	if err != nil {
		return err
	}

	c.SetCookie(h.cookie(middleware.AccessCookie, *access))
	return c.JSON(http.StatusOK, tokenResponse{Access: access.Token})
}

// Logout revokes the refresh token and clears both cookies.
//
// @Summary      Logout
// @Tags         auth
// @Accept       json
// @Param        body  body  refreshRequest  false  "Refresh token"
// @Success      200
// @Router       /auth/ [delete]
func (h *AuthHandler) Logout(c echo.Context) error {
	raw, err := h.refreshToken(c)
	if err != nil {
		return err
	}
	if err := h.authService.Logout(c.Request().Context(), raw); err != nil {
		return err
	}

	c.SetCookie(h.expired(middleware.AccessCookie))
	c.SetCookie(h.expired(middleware.RefreshCookie))
	return c.NoContent(http.StatusOK)
}

func (h *AuthHandler) refreshToken(c echo.Context) (string, error) {
	var req refreshRequest
	if err := c.Bind(&req); err != nil {
		return "", err
	}
	if req.Refresh != "" {
		return req.Refresh, nil
	}
	if cookie, err := c.Cookie(middleware.RefreshCookie); err == nil {
		return cookie.Value, nil
	}
	return "", nil
}

func (h *AuthHandler) cookie(name string, tok ports.IssuedToken) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    tok.Token,
		Path:     "/",
		Expires:  tok.ExpiresAt.UTC(),
		HttpOnly: true,
		Secure:   h.cookies.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (h *AuthHandler) expired(name string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookies.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}
