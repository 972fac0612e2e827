package rest

import (
	"fmt"
	"html"
	"net/http"
	"time"

	"github.com/dmitrijs2005/gophtasks/internal/guard"
	"github.com/dmitrijs2005/gophtasks/internal/logging"
	"github.com/dmitrijs2005/gophtasks/internal/server/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterDeps is everything NewRouter wires together.
type RouterDeps struct {
	Auth           AuthAPI
	Tasks          TaskAPI
	Log            logging.Logger
	Metrics        *metrics.Metrics
	Gatherer       prometheus.Gatherer
	Policy         guard.Policy
	Cookies        CookieSettings
	RequestTimeout time.Duration
}

func NewRouter(d RouterDeps) http.Handler {
	log := d.Log.With("module", "rest")
	ah := NewAuthHandler(d.Auth, d.Cookies)
	th := NewTaskHandler(d.Tasks)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(log))
	r.Use(middleware.Recoverer)
	if d.RequestTimeout > 0 {
		r.Use(middleware.Timeout(d.RequestTimeout))
	}
	r.Use(CountRequests(d.Metrics))
	r.Use(PageGuard(d.Policy, d.Auth, d.Cookies))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if d.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/signin", MakeHandler(log, ah.HandleSignIn))
			r.Post("/signup", MakeHandler(log, ah.HandleSignUp))
			r.Get("/me", MakeHandler(log, ah.HandleMe))
			r.Post("/signout", MakeHandler(log, ah.HandleSignOut))
			r.Post("/check-email", MakeHandler(log, ah.HandleCheckEmail))
		})

		r.Route("/tasks", func(r chi.Router) {
			r.Use(RequireAuth(d.Auth))
			r.Get("/", MakeHandler(log, th.HandleList))
			r.Post("/", MakeHandler(log, th.HandleCreate))
			r.Patch("/{id}", MakeHandler(log, th.HandleUpdate))
			r.Delete("/{id}", MakeHandler(log, th.HandleDelete))
			r.Put("/{id}/toggle", MakeHandler(log, th.HandleToggle))
		})

		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			respondWithError(w, NewHTTPError(http.StatusNotFound, msgNotFound, nil))
		})
	})

	// Page routes. PageGuard has already redirected anything the caller may
	// not see, so the page itself only names where it is.
	r.Get("/*", pageHandler)
	r.Head("/*", pageHandler)

	return r
}

func pageHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set(headerContentType, "text/html; charset=utf-8")
	_, _ = fmt.Fprintf(w, "<!doctype html><title>GophTasks</title><p>%s</p>\n", html.EscapeString(r.URL.Path))
}
