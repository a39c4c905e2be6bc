package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/mclrc/microblog/internal/middleware"
	"github.com/mclrc/microblog/internal/obs"
)

func NewRouter(handler *Handler, authMiddleware *middleware.AuthMiddleware, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(obs.Instrument)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
	r.Handle("/metrics", obs.Handler())

	r.Route("/user", func(r chi.Router) {
		r.Use(middleware.RateLimit(5, time.Minute))

		r.Post("/", handler.Register)
		r.Post("/login", handler.Login)
		r.Post("/refresh", handler.RefreshToken)
		r.Delete("/", handler.DeleteUser)
		r.Get("/{id}", handler.GetUser)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.VerifyToken)
			r.Use(middleware.RequireLogin)
			r.Get("/logins", handler.GetLogins)
		})
	})

	r.Route("/post", func(r chi.Router) {
		r.Get("/{id}", handler.GetPost)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.VerifyToken)
			r.Use(middleware.RequireLogin)

			// Posting gets its own, tighter window.
			r.With(middleware.RateLimit(3, time.Minute)).Post("/", handler.CreatePost)
			r.Delete("/{id}", handler.DeletePost)
		})
	})

	return r
}
