package wire

import (
	"capsule-hotel/internal/adaptor"
	"capsule-hotel/pkg/middleware"

	"github.com/go-chi/chi/v5"
)

func wireRoom(r chi.Router, roomHandler *adaptor.RoomHandler) {
	r.Route("/api/rooms", func(r chi.Router) {
		r.Get("/", roomHandler.ListRooms)
		r.Get("/available", roomHandler.AvailableRooms)
		r.Get("/{id}", roomHandler.GetRoom)

		// the session's own holds are treated as free
		r.With(middleware.RequireSession).Post("/group-search", roomHandler.GroupSearch)
	})
}
