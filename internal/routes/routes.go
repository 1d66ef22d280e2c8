package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rjosephs/daybook-backend/internal/handlers"
)

// Setup registers the API routes. requireAuth wraps everything except
// signup and login.
func Setup(r *chi.Mux, users *handlers.UserHandler, posts *handlers.PostHandler, requireAuth func(http.Handler) http.Handler) {
	r.Route("/api/user", func(r chi.Router) {
		r.Post("/signup", users.Signup)
		r.Post("/login", users.Login)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/profile", users.Profile)
			r.Get("/collaborators", users.Collaborators)
			r.Post("/add-collaborator", users.AddCollaborator)
		})
	})

	r.Route("/api/posts", func(r chi.Router) {
		r.Use(requireAuth)
		r.Get("/", posts.List)
		r.Post("/", posts.Create)
		r.Get("/{id}", posts.Get)
		r.Patch("/{id}", posts.Update)
		r.Delete("/{id}", posts.Delete)
		r.Post("/{id}/verify", posts.Verify)
		r.Post("/{id}/share", posts.Share)
	})
}
