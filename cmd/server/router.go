package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/taskflow-api/internal/api"
	apiMiddleware "github.com/phrazzld/taskflow-api/internal/api/middleware"
)

// Rate limits applied per client IP.
const (
	resetPasswordLimit = 1
	editProfileLimit   = 3
	rateLimitWindow    = 2 * time.Minute
)

// setupRouter creates the API router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(apiMiddleware.TraceMiddleware(app.logger))
	r.Use(apiMiddleware.Recoverer)

	r.NotFound(api.NotFoundHandler)
	r.MethodNotAllowed(api.MethodNotAllowedHandler)

	authHandler := api.NewAuthHandler(app.authService, app.logger)
	userHandler := api.NewUserHandler(app.userService, app.authService, app.logger)
	taskHandler := api.NewTaskHandler(app.taskService, app.logger)
	reportHandler := api.NewReportHandler(app.reportService, app.logger)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	r.Route("/v1", func(r chi.Router) {
		// Public authentication endpoints
		r.Post("/authentication/sign-up", authHandler.SignUp)
		r.Post("/authentication/sign-in", authHandler.SignIn)
		r.Post("/authentication/refresh", authHandler.Refresh)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.With(apiMiddleware.RateLimit(resetPasswordLimit, rateLimitWindow)).
				Post("/authentication/reset-password", authHandler.ResetPassword)

			r.Route("/tasks", func(r chi.Router) {
				r.Post("/", taskHandler.Create)
				r.Delete("/", taskHandler.DeleteAll)
				r.Get("/my", taskHandler.ListMine)
				r.Get("/favorites", taskHandler.ListFavorites)
				r.Get("/{id}", taskHandler.Get)
				r.Put("/{id}", taskHandler.Update)
				r.Delete("/{id}", taskHandler.Delete)
				r.Post("/{id}/favorite", taskHandler.AddFavorite)
				r.Delete("/{id}/favorite", taskHandler.RemoveFavorite)
			})

			r.Route("/users", func(r chi.Router) {
				r.Get("/", userHandler.GetProfile)
				r.With(apiMiddleware.RateLimit(editProfileLimit, rateLimitWindow)).
					Put("/edit-profile", userHandler.EditProfile)
				r.Delete("/delete-account", userHandler.DeleteAccount)
				r.Post("/log-out", userHandler.Logout)
			})

			r.Get("/reports", reportHandler.Request)
			r.Get("/reports/{id}", reportHandler.Status)
		})
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}

// setupSocketRouter serves the WebSocket gateway on the configured path.
func (app *application) setupSocketRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(apiMiddleware.Recoverer)
	r.Handle(app.config.Socket.Path, app.gateway)
	return r
}
