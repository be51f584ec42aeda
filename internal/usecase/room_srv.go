package usecase

import (
	"context"
	"fmt"
	"time"

	"capsule-hotel/internal/data/entity"
	"capsule-hotel/internal/data/repository"
	"capsule-hotel/internal/dto/request"
	"capsule-hotel/internal/dto/response"
	"capsule-hotel/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type RoomService interface {
	ListRooms(ctx context.Context, req *request.RoomFilterRequest) ([]response.RoomResponse, error)
	GetRoom(ctx context.Context, id string) (*response.RoomResponse, error)
	AvailableRooms(ctx context.Context, caller utils.Caller, req *request.AvailableRoomsRequest) ([]response.RoomResponse, error)
}

type roomService struct {
	repo *repository.Repository
	opts *options
	log  *zap.Logger
}

func NewRoomService(repo *repository.Repository, log *zap.Logger, opts ...Option) RoomService {
	return &roomService{
		repo: repo,
		opts: buildOptions(log, opts),
		log:  log.With(zap.String("service", "room")),
	}
}

func (s *roomService) ListRooms(ctx context.Context, req *request.RoomFilterRequest) ([]response.RoomResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, validationError(errs)
	}

	rooms, err := s.catalog(ctx)
	if err != nil {
		return nil, err
	}

	filtered := make([]*entity.Room, 0, len(rooms))
	for _, room := range rooms {
		if req.Zone != "" && string(room.Zone) != req.Zone {
			continue
		}
		if req.Quality != "" && string(room.Quality) != req.Quality {
			continue
		}
		if req.Status != "" && string(room.Status) != req.Status {
			continue
		}
		filtered = append(filtered, room)
	}

	return response.RoomsToResponse(filtered), nil
}

// catalog serves the full room list from cache, filling it on a miss.
// Cache failures degrade to a storage read.
func (s *roomService) catalog(ctx context.Context) ([]*entity.Room, error) {
	rooms, ok, err := s.opts.cache.GetRooms(ctx)
	if err != nil {
		s.log.Warn("Room cache read failed", zap.Error(err))
	}
	if ok {
		return rooms, nil
	}

	rooms, err = s.repo.Room.List(ctx, repository.RoomFilter{})
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	if err := s.opts.cache.SetRooms(ctx, rooms); err != nil {
		s.log.Warn("Room cache write failed", zap.Error(err))
	}
	return rooms, nil
}

func (s *roomService) GetRoom(ctx context.Context, id string) (*response.RoomResponse, error) {
	roomID, err := uuid.Parse(id)
	if err != nil {
		return nil, newError(ErrValidation, "invalid room ID format")
	}

	room, err := s.repo.Room.FindByID(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("get room %s: %w", id, err)
	}
	if room == nil {
		return nil, newError(ErrNotFound, "room %s not found", id)
	}

	resp := response.RoomToResponse(room)
	return &resp, nil
}

func (s *roomService) AvailableRooms(ctx context.Context, caller utils.Caller, req *request.AvailableRoomsRequest) ([]response.RoomResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, validationError(errs)
	}

	from, to, err := parseDayRange(req.CheckInDate, req.CheckOutDate, s.opts.loc)
	if err != nil {
		return nil, err
	}

	q := repository.AvailabilityQuery{
		From:           from,
		To:             to,
		MinCapacity:    req.Guests,
		ExcludeSession: caller.SessionID,
		Now:            s.opts.clock.Now(),
	}
	if req.Zone != "" {
		zone := entity.RoomZone(req.Zone)
		q.Zone = &zone
	}
	if req.Quality != "" {
		quality := entity.RoomQuality(req.Quality)
		q.Quality = &quality
	}

	rooms, err := s.repo.Room.FindAvailable(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("find available rooms: %w", err)
	}
	return response.RoomsToResponse(rooms), nil
}

// parseDayRange parses a YYYY-MM-DD range in loc; check-out must follow check-in.
func parseDayRange(checkIn, checkOut string, loc *time.Location) (time.Time, time.Time, error) {
	from, err := utils.ParseDate(checkIn, loc)
	if err != nil {
		return time.Time{}, time.Time{}, newError(ErrValidation, "%s", err.Error())
	}
	to, err := utils.ParseDate(checkOut, loc)
	if err != nil {
		return time.Time{}, time.Time{}, newError(ErrValidation, "%s", err.Error())
	}
	if !to.After(from) {
		return time.Time{}, time.Time{}, newError(ErrValidation, "check-out date must be after check-in date")
	}
	return from, to, nil
}
