package web

// errors.go maps lookup failures to status codes and renders the error page.
// The technical error is logged with the request id; the visitor only sees
// the not-found page or a generic message.

import (
	"errors"
	"net/http"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/qrcatalog/internal/logging"
	"github.com/JonMunkholm/qrcatalog/internal/web/templates"
)

// statusFor maps a Lookup error to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrProductNotFound), errors.Is(err, ErrCatalogMissing):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs err and writes the response for a failed product
// request.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, id string, err error, statusCode int) {
	logger := logging.FromContext(r.Context())
	attrs := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"slug", id,
		"error", err.Error(),
	}

	if statusCode >= http.StatusInternalServerError {
		logger.Error("request error", attrs...)
		http.Error(w, "internal error (request "+middleware.GetReqID(r.Context())+")", statusCode)
		return
	}

	if errors.Is(err, ErrCatalogMissing) {
		logger.Warn("catalog not built yet", attrs...)
	} else {
		logger.Debug("product not found", attrs...)
	}
	templ.Handler(templates.NotFoundPage(id), templ.WithStatus(statusCode)).ServeHTTP(w, r)
}
