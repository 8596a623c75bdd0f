package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	doubtHandler "github.com/arjunvk/mentorloop/internal/handler/doubt"
	resourceHandler "github.com/arjunvk/mentorloop/internal/handler/resource"
	"github.com/arjunvk/mentorloop/internal/identity"
	middlewarePkg "github.com/arjunvk/mentorloop/internal/middleware"
	resourceModel "github.com/arjunvk/mentorloop/internal/model/resource"
	doubtService "github.com/arjunvk/mentorloop/internal/service/doubt"
	sessionService "github.com/arjunvk/mentorloop/internal/service/session"
	"github.com/arjunvk/mentorloop/internal/store"
	"github.com/arjunvk/mentorloop/pkg/utils"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(doubtSvc *doubtService.Service, sessions *sessionService.Manager, catalog *resourceModel.Catalog, repo store.Repository) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	r.Route("/api", func(api chi.Router) {
		api.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
			if err := repo.Ping(r.Context()); err != nil {
				utils.RespondErrorKind(w, http.StatusServiceUnavailable, "transient", "store unreachable")
				return
			}
			utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		// Everything below requires a resolved caller identity.
		api.Group(func(authed chi.Router) {
			authed.Use(identity.Middleware)
			doubtHandler.New(doubtSvc, sessions).RegisterRoutes(authed)
			resourceHandler.New(catalog).RegisterRoutes(authed)
		})
	})

	return r
}
