// Package httpapi exposes the auth flows as a JSON HTTP API. Handlers are
// thin glue: decode, call the service, map the error kind to a status code.
package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/dmitrijs2005/authkeeper/internal/server/services"
)

// NewRouter builds the API router around the auth service.
func NewRouter(svc *services.AuthService, log logging.Logger) http.Handler {
	h := &handler{svc: svc, log: log.With("component", "httpapi")}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Post("/register", h.register)
		r.Post("/login", h.login)
		r.Post("/refresh", h.refresh)
		r.Post("/logout", h.logout)
		r.Post("/password-reset/request", h.passwordResetRequest)
		r.Post("/password-reset/confirm", h.passwordResetConfirm)
		r.Get("/verify", h.verify)
	})

	return r
}
