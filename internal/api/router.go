package api

import (
	_ "fxconvert/docs"
	"fxconvert/internal/api/handler"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	swagger "github.com/swaggo/http-swagger"
)

// NewRouter mounts the public endpoints. authenticate guards every per-user route,
// quota is admitted only on the routes that count against it.
func NewRouter(h *handler.Handler, authenticate func(http.Handler) http.Handler, tracker handler.Admitter, metrics http.Handler) *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Heartbeat("/healthz"))

	// Swagger UI
	router.Get("/swagger/*", swagger.WrapHandler)
	router.Method(http.MethodGet, "/metrics", metrics)

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/currencies", h.GetCurrencies)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Get("/conversions", h.ListConversions)

			r.Group(func(r chi.Router) {
				r.Use(h.Quota(tracker))
				r.Get("/rates", h.GetRates)
				r.Post("/convert", h.Convert)
			})
		})
	})
	return router
}
