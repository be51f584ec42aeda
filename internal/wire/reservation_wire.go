package wire

import (
	"capsule-hotel/internal/adaptor"
	"capsule-hotel/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireReservation(r chi.Router, reservationHandler *adaptor.ReservationHandler, log *zap.Logger) {
	r.Route("/api/reservations", func(r chi.Router) {
		// creating claims rooms on behalf of a session
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireSession)

			r.Post("/", reservationHandler.CreateReservation)
			r.Post("/group", reservationHandler.CreateGroupReservation)
		})

		r.Get("/", reservationHandler.ListReservations)
		r.Get("/{id}", reservationHandler.GetReservation)
		r.Put("/{id}", reservationHandler.UpdateReservation)
		r.Post("/{id}/cancel", reservationHandler.CancelReservation)
		r.Post("/{id}/pay", reservationHandler.PayReservation)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Manager(log))

			r.Post("/{id}/check-in", reservationHandler.CheckIn)
			r.Post("/{id}/check-out", reservationHandler.CheckOut)
			r.Patch("/{id}/status", reservationHandler.UpdateStatus)
			r.Delete("/{id}", reservationHandler.DeleteReservation)
		})
	})
}
