package wire

import (
	"capsule-hotel/internal/adaptor"
	"capsule-hotel/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireHold(r chi.Router, holdHandler *adaptor.HoldHandler, log *zap.Logger) {
	r.Route("/api/holds", func(r chi.Router) {
		r.With(middleware.Manager(log)).Post("/cleanup", holdHandler.CleanupHolds)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireSession)

			r.Post("/", holdHandler.CreateHold)
			r.Get("/session", holdHandler.ListSessionHolds)
			r.Patch("/{id}/extend", holdHandler.ExtendHold)
			r.Get("/{id}/validate", holdHandler.ValidateHold)
			r.Delete("/{id}", holdHandler.ReleaseHold)
		})
	})
}
