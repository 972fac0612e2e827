package rest

import (
	"net/http"

	"github.com/dmitrijs2005/gophtasks/internal/logging"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/samber/oops"
)

// AppHandler is a handler that reports failure by returning an error
// instead of writing the error response itself.
type AppHandler func(w http.ResponseWriter, r *http.Request) error

// MakeHandler adapts an AppHandler. A returned error is logged with its
// cause and turned into a JSON error body; the cause never reaches the
// client.
func MakeHandler(log logging.Logger, h AppHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := h(w, r)
		if err == nil {
			return
		}

		he := FromError(err)

		args := []any{
			"status", he.Code,
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()),
		}
		if cause := he.Unwrap(); cause != nil {
			args = append(args, "error", cause)
		}
		if oe, ok := oops.AsOops(err); ok {
			args = append(args, "code", oe.Code())
		}

		if he.Code >= http.StatusInternalServerError {
			log.Error(r.Context(), "request failed", args...)
		} else {
			log.Warn(r.Context(), "request rejected", args...)
		}

		respondWithError(w, he)
	}
}
