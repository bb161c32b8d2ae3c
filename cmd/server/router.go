package main

import (
	"net/http"

	"github.com/Ketaiwk/10xcards/internal/api"
	apiMiddleware "github.com/Ketaiwk/10xcards/internal/api/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
)

// setupRouter creates the router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   app.config.Server.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler)
	r.Use(apiMiddleware.TraceMiddleware(app.logger))

	setHandler := api.NewFlashcardSetHandler(app.setService, app.logger)
	cardHandler := api.NewFlashcardHandler(app.cardService, app.logger)
	genHandler := api.NewGenerationHandler(app.accumulator, app.logger)
	authHandler := api.NewAuthHandler(app.authProvider, app.logger)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.authProvider)

	r.Route("/api", func(r chi.Router) {
		// Authentication endpoints (public)
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/refresh", authHandler.RefreshToken)
		r.Post("/auth/forgot-password", authHandler.ForgotPassword)
		r.Post("/auth/reset-password", authHandler.ResetPassword)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)
			r.Post("/auth/logout", authHandler.Logout)

			r.Route("/flashcard-sets", func(r chi.Router) {
				r.Post("/", setHandler.CreateSet)
				r.Get("/", setHandler.ListSets)
				r.Get("/{set_id}", setHandler.GetSet)
				r.Patch("/{set_id}", setHandler.UpdateSet)

				r.Post("/{set_id}/flashcards", cardHandler.CreateFlashcard)
				r.Get("/{set_id}/flashcards", cardHandler.ListFlashcards)
				r.Patch("/{set_id}/flashcards/{id}", cardHandler.UpdateFlashcard)
				r.Delete("/{set_id}/flashcards/{id}", cardHandler.DeleteFlashcard)
			})

			r.Post("/generations", genHandler.Generate)
			r.Get("/generations/models", genHandler.ListModels)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
