package usecase

import (
	"capsule-hotel/internal/data/repository"
	"capsule-hotel/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Room        RoomService
	Hold        HoldService
	Reservation ReservationService
	Group       GroupService
	Sweeper     *Sweeper
}

func NewService(repo *repository.Repository, config *utils.Config, log *zap.Logger, opts ...Option) *Service {
	hold := NewHoldService(repo, config.Hold, log, opts...)

	return &Service{
		Room:        NewRoomService(repo, log, opts...),
		Hold:        hold,
		Reservation: NewReservationService(repo, config.Booking, log, opts...),
		Group:       NewGroupService(repo, log, opts...),
		Sweeper:     NewSweeper(hold, config.Hold.SweepInterval, log, opts...),
	}
}
