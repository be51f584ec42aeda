package repository

import (
	"capsule-hotel/pkg/database"

	"go.uber.org/zap"
)

type Repository struct {
	Tx          Transactor
	Room        RoomRepository
	Offering    OfferingRepository
	Hold        HoldRepository
	Reservation ReservationRepository
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		Tx:          NewTransactor(db, log),
		Room:        NewRoomRepository(db, log),
		Offering:    NewOfferingRepository(db, log),
		Hold:        NewHoldRepository(db, log),
		Reservation: NewReservationRepository(db, log),
	}
}
