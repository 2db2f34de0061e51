package transport

import (
	"net/http"

	"storefront-be/internal/config"
	"storefront-be/internal/logger"
	"storefront-be/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// NewRouter assembles the public checkout surface and the admin subtree.
func NewRouter(h *Handler, admin *AdminHandler, traffic *middleware.Traffic, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	r.Use(recoverer)
	r.Use(logger.RequestIDMiddleware)
	r.Use(logger.LoggingMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	if traffic != nil {
		r.Use(traffic.Handler)
	}

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, orderResponse{
			Success: false,
			Message: "Method not allowed.",
		})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/orders", h.SubmitOrder)
		r.Post("/orders/confirm", h.ConfirmPayment)

		r.Route("/admin", func(r chi.Router) {
			r.Post("/login", admin.Login)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin([]byte(cfg.JWTSecret)))
				r.Get("/orders", admin.ListOrders)
				r.Patch("/orders/{orderNumber}/status", admin.UpdateStatus)
			})
		})
	})

	return r
}

// recoverer is the outermost failure boundary: nothing escaping a handler
// may crash the process or leak a stack trace to the client.
func recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.FromCtx(r.Context()).Error("panic recovered in handler",
					zap.Any("panic", rec),
					zap.String("path", r.URL.Path),
				)
				writeJSON(w, http.StatusInternalServerError, orderResponse{
					Success: false,
					Message: genericMessage("general"),
				})
			}
		}()
		next.ServeHTTP(w, r)
	})
}
