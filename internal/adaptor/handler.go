package adaptor

import (
	"capsule-hotel/internal/usecase"

	"go.uber.org/zap"
)

type Handler struct {
	Room        *RoomHandler
	Hold        *HoldHandler
	Reservation *ReservationHandler
}

func NewHandler(service *usecase.Service, log *zap.Logger) *Handler {
	return &Handler{
		Room:        NewRoomHandler(service.Room, service.Group, log),
		Hold:        NewHoldHandler(service.Hold, service.Sweeper, log),
		Reservation: NewReservationHandler(service.Reservation, log),
	}
}
