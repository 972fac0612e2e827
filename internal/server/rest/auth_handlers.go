package rest

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/gophtasks/internal/common"
	"github.com/dmitrijs2005/gophtasks/internal/server/models"
	"github.com/dmitrijs2005/gophtasks/internal/server/services"
)

// AuthAPI is what the auth endpoints need from services.AuthService.
type AuthAPI interface {
	TokenVerifier
	SignIn(ctx context.Context, email, password string) (*services.Session, error)
	SignUp(ctx context.Context, name, email, password string) (*models.User, error)
	CurrentUser(ctx context.Context, token string) (*models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
}

// CookieSettings describes the session cookie.
type CookieSettings struct {
	Secure bool
	TTL    time.Duration
}

func (c CookieSettings) session(token string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     common.AuthCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(c.TTL / time.Second),
		Expires:  expires,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteStrictMode,
	}
}

func (c CookieSettings) expired() *http.Cookie {
	return &http.Cookie{
		Name:     common.AuthCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteStrictMode,
	}
}

type AuthHandler struct {
	svc     AuthAPI
	cookies CookieSettings
}

func NewAuthHandler(svc AuthAPI, cookies CookieSettings) *AuthHandler {
	return &AuthHandler{svc: svc, cookies: cookies}
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signInResponse struct {
	User      models.PublicUser `json:"user"`
	Token     string            `json:"token"`
	ExpiresAt time.Time         `json:"expiresAt"`
}

func (h *AuthHandler) HandleSignIn(w http.ResponseWriter, r *http.Request) error {
	var req signInRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}

	sess, err := h.svc.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	http.SetCookie(w, h.cookies.session(sess.Token, sess.Payload.ExpiresAt))
	RespondWithJSON(w, http.StatusOK, signInResponse{
		User:      sess.User.Public(),
		Token:     sess.Token,
		ExpiresAt: sess.Payload.ExpiresAt,
	})
	return nil
}

type signUpRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) HandleSignUp(w http.ResponseWriter, r *http.Request) error {
	var req signUpRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}

	user, err := h.svc.SignUp(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrConflict) {
			return NewHTTPError(http.StatusConflict, "email already registered", err)
		}
		return err
	}

	RespondWithJSON(w, http.StatusCreated, user.Public())
	return nil
}

// HandleMe resolves the caller's token itself rather than sitting behind
// RequireAuth, so a deleted account is told apart (404) from a bad token.
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) error {
	setNoCache(w)

	token := TokenFromRequest(r)
	if token == "" {
		return ErrUnauthorized(common.ErrInvalidToken)
	}

	user, err := h.svc.CurrentUser(r.Context(), token)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return NewHTTPError(http.StatusNotFound, "user not found", err)
		}
		return err
	}

	RespondWithJSON(w, http.StatusOK, user.Public())
	return nil
}

// HandleSignOut always succeeds. Tokens are stateless, so signing out only
// drops the cookie.
func (h *AuthHandler) HandleSignOut(w http.ResponseWriter, r *http.Request) error {
	http.SetCookie(w, h.cookies.expired())
	RespondWithJSON(w, http.StatusOK, map[string]bool{"success": true})
	return nil
}

type checkEmailRequest struct {
	Email string `json:"email"`
}

func (h *AuthHandler) HandleCheckEmail(w http.ResponseWriter, r *http.Request) error {
	var req checkEmailRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}

	exists, err := h.svc.EmailExists(r.Context(), req.Email)
	if err != nil {
		return err
	}

	RespondWithJSON(w, http.StatusOK, map[string]bool{"exists": exists})
	return nil
}

var _ AuthAPI = (*services.AuthService)(nil)
