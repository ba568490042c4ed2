package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/quill-api/internal/api"
	apiMiddleware "github.com/phrazzld/quill-api/internal/api/middleware"
)

// setupRouter creates the router with every route and middleware. Routes
// live under /api/<version>.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(app.metrics.InstrumentHandler)
	r.Use(apiMiddleware.TraceMiddleware(app.logger))
	r.Use(middleware.Recoverer)

	authMiddleware := apiMiddleware.NewAuthMiddleware(
		app.authenticator,
		app.masterKeys,
		app.config.Auth.MasterKeyHeader,
		apiMiddleware.WithFailureRecorder(app.metrics),
		apiMiddleware.WithLogger(app.logger),
	)

	postHandler := api.NewPostHandler(app.postService, app.logger)
	clientHandler := api.NewClientHandler(app.clientService, app.logger)

	r.Route("/api/"+app.config.API.Version, func(r chi.Router) {
		r.Route("/posts", func(r chi.Router) {
			// Statistics are administrative: master key, no bearer.
			r.With(authMiddleware.RequireMasterKey).Get("/statistics/", postHandler.GetStatistics)

			r.Group(func(r chi.Router) {
				r.Use(authMiddleware.RequireClient)

				r.Post("/", postHandler.CreatePost)
				r.Get("/", postHandler.GetPost)
				r.Put("/", postHandler.UpdatePost)
				r.Delete("/", postHandler.DeletePost)
				r.Get("/list", postHandler.ListPosts)
				r.Post("/search", postHandler.SearchPosts)
			})
		})

		r.Route("/clients", func(r chi.Router) {
			r.Use(authMiddleware.RequireMasterKey)

			r.Post("/", clientHandler.CreateClient)
			r.Get("/", clientHandler.GetClient)
			r.Put("/", clientHandler.UpdateClient)
			r.Delete("/", clientHandler.DeleteClient)
			r.Get("/list", clientHandler.ListClients)
		})
	})

	r.Handle("/metrics", app.metrics.Handler())

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
