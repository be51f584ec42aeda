package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"capsule-hotel/internal/data/entity"
	"capsule-hotel/internal/data/repository"
	"capsule-hotel/internal/dto/request"
	"capsule-hotel/internal/dto/response"
	"capsule-hotel/internal/event"
	"capsule-hotel/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type HoldService interface {
	CreateHold(ctx context.Context, caller utils.Caller, req *request.CreateHoldRequest) (*response.HoldResponse, error)
	ExtendHold(ctx context.Context, caller utils.Caller, holdID string, req *request.ExtendHoldRequest) (*response.HoldResponse, error)
	ReleaseHold(ctx context.Context, caller utils.Caller, holdID string) error
	ValidateHold(ctx context.Context, caller utils.Caller, holdID string) (bool, error)
	ListSessionHolds(ctx context.Context, caller utils.Caller) ([]response.HoldResponse, error)

	// CleanupExpiredHolds deletes unconverted holds past expiry.
	CleanupExpiredHolds(ctx context.Context) (int64, error)
}

type holdService struct {
	repo *repository.Repository
	cfg  utils.HoldConfig
	opts *options
	log  *zap.Logger
}

func NewHoldService(repo *repository.Repository, cfg utils.HoldConfig, log *zap.Logger, opts ...Option) HoldService {
	return &holdService{
		repo: repo,
		cfg:  cfg,
		opts: buildOptions(log, opts),
		log:  log.With(zap.String("service", "hold")),
	}
}

func (s *holdService) ttl(stage entity.HoldStage) time.Duration {
	if stage == entity.HoldStagePayment {
		return s.cfg.PaymentTTL
	}
	return s.cfg.ConfirmationTTL
}

func (s *holdService) CreateHold(ctx context.Context, caller utils.Caller, req *request.CreateHoldRequest) (*response.HoldResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create hold validation failed", zap.Any("errors", errs))
		return nil, validationError(errs)
	}
	if caller.SessionID == "" {
		return nil, newError(ErrValidation, "session id is required")
	}

	roomID := uuid.MustParse(req.RoomID)
	checkIn, checkOut, err := parseDayRange(req.CheckInDate, req.CheckOutDate, s.opts.loc)
	if err != nil {
		return nil, err
	}

	now := s.opts.clock.Now()
	if checkIn.Before(utils.StartOfDay(now, s.opts.loc)) {
		return nil, newError(ErrValidation, "check-in date cannot be in the past")
	}

	stage := entity.HoldStage(req.Stage)
	if stage == "" {
		stage = entity.HoldStageConfirmation
	}

	var (
		hold    *entity.Hold
		created bool
	)
	err = s.repo.Tx.WithTx(ctx, func(ctx context.Context) error {
		room, err := s.repo.Room.LockByID(ctx, roomID)
		if err != nil {
			return err
		}
		if room == nil {
			return newError(ErrNotFound, "room %s not found", req.RoomID)
		}
		if room.Status == entity.RoomStatusMaintenance {
			return newError(ErrConflict, "room %s is under maintenance", room.Code)
		}

		booked, err := s.repo.Reservation.FindOverlappingDays(ctx, roomID, checkIn, checkOut)
		if err != nil {
			return err
		}
		if len(booked) > 0 {
			return newError(ErrConflict, "room %s is already booked for these dates", room.Code)
		}

		holds, err := s.repo.Hold.FindActiveOverlapping(ctx, roomID, checkIn, checkOut, now)
		if err != nil {
			return err
		}
		var superseded []*entity.Hold
		for _, h := range holds {
			switch {
			case !h.OwnedBy(caller.SessionID):
				return newError(ErrConflict, "room %s is being booked by another user", room.Code)
			case h.Matches(roomID, checkIn, checkOut):
				hold = h
			default:
				superseded = append(superseded, h)
			}
		}
		if hold != nil {
			hold.Room = room
			return nil
		}

		// the session changed its dates on this room; the old claim goes
		for _, h := range superseded {
			if _, err := s.repo.Hold.Delete(ctx, h.ID); err != nil {
				return err
			}
		}

		hold = &entity.Hold{
			Base: entity.Base{
				ID:        uuid.New(),
				CreatedAt: now,
				UpdatedAt: now,
			},
			RoomID:       roomID,
			CheckInDate:  checkIn,
			CheckOutDate: checkOut,
			SessionID:    caller.SessionID,
			UserID:       caller.UserID,
			Stage:        stage,
			ExpiresAt:    now.Add(s.ttl(stage)),
		}
		if err := s.repo.Hold.Create(ctx, hold); err != nil {
			return err
		}
		hold.Room = room
		created = true
		return nil
	})
	if err != nil {
		var appErr *Error
		if errors.As(err, &appErr) {
			s.log.Warn("Hold rejected",
				zap.String("room_id", req.RoomID),
				zap.String("reason", appErr.Message),
			)
			return nil, err
		}
		return nil, fmt.Errorf("create hold: %w", err)
	}

	if created {
		s.log.Info("Hold created",
			zap.String("hold_id", hold.ID.String()),
			zap.String("room_id", req.RoomID),
			zap.String("stage", string(hold.Stage)),
			zap.Time("expires_at", hold.ExpiresAt),
		)
		publish(ctx, s.log, s.opts.events, event.Event{
			Type:       event.HoldCreated,
			Key:        hold.RoomID.String(),
			OccurredAt: now,
			Payload:    response.HoldToResponse(hold),
		})
	}

	resp := response.HoldToResponse(hold)
	return &resp, nil
}

func (s *holdService) ExtendHold(ctx context.Context, caller utils.Caller, holdID string, req *request.ExtendHoldRequest) (*response.HoldResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, validationError(errs)
	}
	id, err := uuid.Parse(holdID)
	if err != nil {
		return nil, newError(ErrValidation, "invalid hold ID format")
	}

	var hold *entity.Hold
	err = s.repo.Tx.WithTx(ctx, func(ctx context.Context) error {
		h, err := s.repo.Hold.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if h == nil {
			return newError(ErrNotFound, "hold %s not found", holdID)
		}

		// conversion runs under the same room lock
		room, err := s.repo.Room.LockByID(ctx, h.RoomID)
		if err != nil {
			return err
		}
		if h, err = s.repo.Hold.FindByID(ctx, id); err != nil {
			return err
		}
		if h == nil {
			return newError(ErrNotFound, "hold %s not found", holdID)
		}
		h.Room = room
		hold = h

		if !h.OwnedBy(caller.SessionID) {
			return newError(ErrForbidden, "hold belongs to a different session")
		}
		if h.Converted {
			return nil
		}

		now := s.opts.clock.Now()
		if !h.IsActive(now) {
			return newError(ErrGone, "hold has expired, please restart checkout")
		}

		stage := h.Stage
		if req.Stage != "" {
			stage = entity.HoldStage(req.Stage)
		}
		expiresAt := now.Add(s.ttl(stage))
		if err := s.repo.Hold.UpdateExpiry(ctx, id, stage, expiresAt, now); err != nil {
			return err
		}
		h.Stage = stage
		h.ExpiresAt = expiresAt
		h.UpdatedAt = now
		return nil
	})
	if err != nil {
		var appErr *Error
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, fmt.Errorf("extend hold %s: %w", holdID, err)
	}

	if !hold.Converted {
		s.log.Info("Hold extended",
			zap.String("hold_id", holdID),
			zap.String("stage", string(hold.Stage)),
			zap.Time("expires_at", hold.ExpiresAt),
		)
	}

	resp := response.HoldToResponse(hold)
	return &resp, nil
}

func (s *holdService) ReleaseHold(ctx context.Context, caller utils.Caller, holdID string) error {
	id, err := uuid.Parse(holdID)
	if err != nil {
		return newError(ErrValidation, "invalid hold ID format")
	}

	hold, err := s.repo.Hold.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("release hold %s: %w", holdID, err)
	}
	if hold == nil {
		return nil
	}
	if !hold.OwnedBy(caller.SessionID) {
		return newError(ErrForbidden, "hold belongs to a different session")
	}
	if hold.Converted {
		return nil
	}

	deleted, err := s.repo.Hold.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("release hold %s: %w", holdID, err)
	}

	if deleted {
		s.log.Info("Hold released", zap.String("hold_id", holdID))
		publish(ctx, s.log, s.opts.events, event.Event{
			Type:       event.HoldReleased,
			Key:        hold.RoomID.String(),
			OccurredAt: s.opts.clock.Now(),
			Payload:    map[string]string{"hold_id": holdID, "room_id": hold.RoomID.String()},
		})
	}
	return nil
}

func (s *holdService) ValidateHold(ctx context.Context, caller utils.Caller, holdID string) (bool, error) {
	id, err := uuid.Parse(holdID)
	if err != nil {
		return false, nil
	}

	hold, err := s.repo.Hold.FindByID(ctx, id)
	if err != nil {
		return false, fmt.Errorf("validate hold %s: %w", holdID, err)
	}
	if hold == nil {
		return false, nil
	}

	return hold.OwnedBy(caller.SessionID) && hold.IsActive(s.opts.clock.Now()), nil
}

func (s *holdService) ListSessionHolds(ctx context.Context, caller utils.Caller) ([]response.HoldResponse, error) {
	if caller.SessionID == "" {
		return nil, newError(ErrValidation, "session id is required")
	}

	holds, err := s.repo.Hold.FindActiveBySession(ctx, caller.SessionID, s.opts.clock.Now())
	if err != nil {
		return nil, fmt.Errorf("list session holds: %w", err)
	}

	result := make([]response.HoldResponse, 0, len(holds))
	for _, h := range holds {
		room, err := s.repo.Room.FindByID(ctx, h.RoomID)
		if err != nil {
			return nil, fmt.Errorf("list session holds: %w", err)
		}
		h.Room = room
		result = append(result, response.HoldToResponse(h))
	}
	return result, nil
}

func (s *holdService) CleanupExpiredHolds(ctx context.Context) (int64, error) {
	n, err := s.repo.Hold.DeleteExpired(ctx, s.opts.clock.Now())
	if err != nil {
		return 0, fmt.Errorf("cleanup expired holds: %w", err)
	}
	if n > 0 {
		s.log.Info("Expired holds removed", zap.Int64("count", n))
	}
	return n, nil
}
