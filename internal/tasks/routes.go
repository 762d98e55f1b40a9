package tasks

import (
	"net/http"

	"github.com/KiezTask/KT-Backend/internal/auth"
	"github.com/KiezTask/KT-Backend/internal/middleware"
	"github.com/go-chi/chi/v5"
)

func SetupRoutes() http.Handler {
	sessionFetcher := auth.SessionInfo{}

	r := chi.NewRouter()

	// Public, personalized when a session is present
	r.With(middleware.OptionalSessionMiddleware(sessionFetcher)).
		Get("/discover", DiscoverTasks)

	return r
}
