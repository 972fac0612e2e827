package rest

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophtasks/internal/common"
	"github.com/dmitrijs2005/gophtasks/internal/guard"
	"github.com/dmitrijs2005/gophtasks/internal/logging"
	"github.com/dmitrijs2005/gophtasks/internal/server/auth"
	"github.com/dmitrijs2005/gophtasks/internal/server/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// TokenVerifier resolves a session token to its payload.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (*auth.Payload, error)
}

type ctxKey int

const userIDKey ctxKey = iota

// WithUserID stores the authenticated user id in ctx.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext returns the id stored by RequireAuth.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

// TokenFromRequest extracts the session token. A Bearer Authorization
// header wins over the auth cookie.
func TokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, common.AuthorizationScheme) {
			if token = strings.TrimSpace(token); token != "" {
				return token
			}
		}
	}
	if c, err := r.Cookie(common.AuthCookieName); err == nil {
		return c.Value
	}
	return ""
}

// RequireAuth rejects requests without a valid token with 401. The wrapped
// handler only runs once the token has been verified, and it finds the
// user id via UserIDFromContext.
func RequireAuth(v TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			payload, err := v.VerifyToken(r.Context(), TokenFromRequest(r))
			if err != nil {
				respondWithError(w, ErrUnauthorized(err))
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), payload.UserID)))
		})
	}
}

// PageGuard applies the navigation policy to page loads (GET and HEAD).
// Authentication is decided by verifying the auth cookie on every request;
// a cookie that fails verification is cleared.
func PageGuard(policy guard.Policy, v TokenVerifier, cookies CookieSettings) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet && r.Method != http.MethodHead {
				next.ServeHTTP(w, r)
				return
			}
			if policy.Classify(r.URL.Path) == guard.Ignored {
				next.ServeHTTP(w, r)
				return
			}

			state := guard.State{}
			if c, err := r.Cookie(common.AuthCookieName); err == nil && c.Value != "" {
				if _, err := v.VerifyToken(r.Context(), c.Value); err == nil {
					state.IsAuthenticated = true
				} else {
					http.SetCookie(w, cookies.expired())
				}
			}

			d := policy.Decide(state, r.URL.Path)
			if d.Action == guard.Redirect {
				http.Redirect(w, r, d.Location, http.StatusFound)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequestLogger logs one line per request. It sits after RequestID so the
// id is available.
func RequestLogger(log logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			log.Info(r.Context(), "http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", statusOf(ww),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}

// CountRequests records every response by chi route pattern, so ids in the
// URL do not explode label cardinality.
func CountRequests(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			route := "unmatched"
			if rc := chi.RouteContext(r.Context()); rc != nil {
				if p := rc.RoutePattern(); p != "" {
					route = p
				}
			}
			m.HTTPRequest(route, statusOf(ww))
		})
	}
}

func statusOf(ww middleware.WrapResponseWriter) int {
	if s := ww.Status(); s != 0 {
		return s
	}
	return http.StatusOK
}
