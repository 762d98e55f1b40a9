package auth

import (
	"net/http"

	"github.com/KiezTask/KT-Backend/internal/middleware"
	"github.com/go-chi/chi/v5"
)

func SetupRoutes() http.Handler {
	sessionFetcher := SessionInfo{}

	r := chi.NewRouter()

	// Public routes
	r.Post("/register", RegisterHandler)
	r.Post("/login", LoginHandler)
	r.Post("/verify", VerifyEmailHandler)

	// Session-protected routes
	r.Group(func(r chi.Router) {
		r.Use(middleware.SessionMiddleware(sessionFetcher))
		r.Post("/logout", LogoutHandler)
		r.Get("/me", MeHandler)
	})

	return r
}
