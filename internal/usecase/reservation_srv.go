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
	"capsule-hotel/internal/payment"
	"capsule-hotel/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ReservationService interface {
	CreateReservation(ctx context.Context, caller utils.Caller, req *request.CreateReservationRequest) (*response.ReservationResponse, error)
	CreateGroupReservation(ctx context.Context, caller utils.Caller, req *request.CreateGroupReservationRequest) (*response.GroupReservationResponse, error)

	GetReservation(ctx context.Context, caller utils.Caller, id string) (*response.ReservationResponse, error)
	ListReservations(ctx context.Context, caller utils.Caller, req *request.PaginatedRequest) (*response.PaginatedResponse[response.ReservationResponse], error)

	// State machine
	Confirm(ctx context.Context, caller utils.Caller, id string) (*response.ReservationResponse, error)
	Cancel(ctx context.Context, caller utils.Caller, id string, req *request.CancelReservationRequest) (*response.ReservationResponse, error)
	CheckIn(ctx context.Context, caller utils.Caller, id string) (*response.ReservationResponse, error)
	CheckOut(ctx context.Context, caller utils.Caller, id string) (*response.ReservationResponse, error)
	UpdateStatus(ctx context.Context, caller utils.Caller, id string, req *request.UpdateStatusRequest) (*response.ReservationResponse, error)

	// Role-specific edits
	UpdateAsGuest(ctx context.Context, caller utils.Caller, id string, req *request.GuestUpdateRequest) (*response.ReservationResponse, error)
	UpdateAsManager(ctx context.Context, caller utils.Caller, id string, req *request.ManagerUpdateRequest) (*response.ReservationResponse, error)

	Delete(ctx context.Context, caller utils.Caller, id string) error
	Pay(ctx context.Context, caller utils.Caller, id string, req *request.PayReservationRequest) (*response.PaymentResponse, error)
}

type reservationService struct {
	repo *repository.Repository
	cfg  utils.BookingConfig
	opts *options
	log  *zap.Logger
}

func NewReservationService(repo *repository.Repository, cfg utils.BookingConfig, log *zap.Logger, opts ...Option) ReservationService {
	return &reservationService{
		repo: repo,
		cfg:  cfg,
		opts: buildOptions(log, opts),
		log:  log.With(zap.String("service", "reservation")),
	}
}

// stay is one room's worth of booking input, already parsed.
type stay struct {
	roomID     uuid.UUID
	holdID     *uuid.UUID
	offeringID uuid.UUID
	guestName  string
	guestEmail string
	guestPhone string
	checkIn    time.Time
	checkOut   time.Time
	guests     int
	addOnIDs   []uuid.UUID
	groupID    *uuid.UUID
}

func (s *reservationService) CreateReservation(ctx context.Context, caller utils.Caller, req *request.CreateReservationRequest) (*response.ReservationResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create reservation validation failed", zap.Any("errors", errs))
		return nil, validationError(errs)
	}

	st := stay{
		roomID:     uuid.MustParse(req.RoomID),
		offeringID: uuid.MustParse(req.OfferingID),
		guestName:  req.GuestName,
		guestEmail: req.GuestEmail,
		guestPhone: req.GuestPhone,
		checkIn:    req.CheckIn,
		checkOut:   req.CheckOut,
		guests:     req.NumberOfGuests,
		addOnIDs:   parseIDs(req.AddOnIDs),
	}
	if req.HoldID != nil {
		id := uuid.MustParse(*req.HoldID)
		st.holdID = &id
	}

	now := s.opts.clock.Now()
	if err := s.validateDates(st.checkIn, st.checkOut, now); err != nil {
		return nil, err
	}

	var res *entity.Reservation
	err := s.repo.Tx.WithTx(ctx, func(ctx context.Context) error {
		var err error
		res, err = s.reserve(ctx, caller, st, now)
		return err
	})
	if err != nil {
		return nil, s.fail(err, "create reservation", zap.String("room_id", req.RoomID))
	}

	s.log.Info("Reservation created",
		zap.String("reservation_id", res.ID.String()),
		zap.String("confirmation_code", res.ConfirmationCode),
		zap.String("room_id", req.RoomID),
		zap.Bool("from_hold", st.holdID != nil),
		zap.Float64("total_price", res.TotalPrice),
	)
	s.afterChange(ctx, event.ReservationCreated, res, now)

	resp := response.ReservationToResponse(res)
	return &resp, nil
}

func (s *reservationService) CreateGroupReservation(ctx context.Context, caller utils.Caller, req *request.CreateGroupReservationRequest) (*response.GroupReservationResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create group reservation validation failed", zap.Any("errors", errs))
		return nil, validationError(errs)
	}

	now := s.opts.clock.Now()
	if err := s.validateDates(req.CheckIn, req.CheckOut, now); err != nil {
		return nil, err
	}

	groupID := uuid.New()
	addOnIDs := parseIDs(req.AddOnIDs)

	var reservations []*entity.Reservation
	err := s.repo.Tx.WithTx(ctx, func(ctx context.Context) error {
		for _, item := range req.Items {
			st := stay{
				roomID:     uuid.MustParse(item.RoomID),
				offeringID: uuid.MustParse(req.OfferingID),
				guestName:  req.GuestName,
				guestEmail: req.GuestEmail,
				guestPhone: req.GuestPhone,
				checkIn:    req.CheckIn,
				checkOut:   req.CheckOut,
				guests:     item.NumberOfGuests,
				addOnIDs:   addOnIDs,
				groupID:    &groupID,
			}
			if item.HoldID != nil {
				id := uuid.MustParse(*item.HoldID)
				st.holdID = &id
			}

			res, err := s.reserve(ctx, caller, st, now)
			if err != nil {
				return err
			}
			reservations = append(reservations, res)
		}
		return nil
	})
	if err != nil {
		return nil, s.fail(err, "create group reservation", zap.Int("rooms", len(req.Items)))
	}

	result := &response.GroupReservationResponse{
		GroupID:      groupID.String(),
		Reservations: make([]response.ReservationResponse, 0, len(reservations)),
	}
	for _, res := range reservations {
		result.Reservations = append(result.Reservations, response.ReservationToResponse(res))
		result.TotalPrice += res.TotalPrice
	}
	result.TotalPrice = roundCents(result.TotalPrice)

	s.log.Info("Group reservation created",
		zap.String("group_id", groupID.String()),
		zap.Int("rooms", len(reservations)),
		zap.Float64("total_price", result.TotalPrice),
	)
	invalidateRooms(ctx, s.log, s.opts.cache)
	for _, res := range reservations {
		publish(ctx, s.log, s.opts.events, event.Event{
			Type:       event.ReservationCreated,
			Key:        res.RoomID.String(),
			OccurredAt: now,
			Payload:    response.ReservationToResponse(res),
		})
	}
	publish(ctx, s.log, s.opts.events, event.Event{
		Type:       event.ReservationGroupBooked,
		Key:        groupID.String(),
		OccurredAt: now,
		Payload:    result,
	})

	return result, nil
}

func (s *reservationService) validateDates(checkIn, checkOut, now time.Time) error {
	if !checkOut.After(checkIn) {
		return newError(ErrValidation, "check-out must be after check-in")
	}
	if checkIn.Before(now) {
		return newError(ErrValidation, "check-in cannot be in the past")
	}
	if utils.SameDay(checkIn, now, s.opts.loc) && checkIn.Before(now.Add(s.cfg.CheckInBuffer)) {
		return newError(ErrValidation, "same-day check-in must be at least %s from now", s.cfg.CheckInBuffer)
	}
	return nil
}

// reserve books one room. It must run inside WithTx: every write below is
// undone if a later step fails.
func (s *reservationService) reserve(ctx context.Context, caller utils.Caller, st stay, now time.Time) (*entity.Reservation, error) {
	room, err := s.repo.Room.LockByID(ctx, st.roomID)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, newError(ErrNotFound, "room %s not found", st.roomID.String())
	}
	if room.Status == entity.RoomStatusMaintenance {
		return nil, newError(ErrConflict, "room %s is under maintenance", room.Code)
	}
	if st.guests > room.Capacity() {
		return nil, newError(ErrValidation, "room %s holds at most %d guest(s)", room.Code, room.Capacity())
	}

	if st.holdID != nil {
		hold, err := s.repo.Hold.FindByID(ctx, *st.holdID)
		if err != nil {
			return nil, err
		}
		switch {
		case hold == nil:
			return nil, newError(ErrNotFound, "hold %s not found", st.holdID.String())
		case !hold.OwnedBy(caller.SessionID):
			return nil, newError(ErrForbidden, "hold belongs to a different session")
		case hold.IsExpired(now):
			return nil, newError(ErrGone, "hold has expired, please search again")
		case hold.Converted:
			return nil, newError(ErrGone, "hold has already been converted")
		case !hold.Matches(st.roomID, st.checkIn.In(s.opts.loc), st.checkOut.In(s.opts.loc)):
			return nil, newError(ErrGone, "hold does not match the requested room and dates")
		}
	}

	overlapping, err := s.repo.Reservation.FindOverlapping(ctx, st.roomID, st.checkIn, st.checkOut, nil)
	if err != nil {
		return nil, err
	}
	if len(overlapping) > 0 {
		return nil, newError(ErrConflict, "room %s is already booked for the selected dates", room.Code)
	}

	fromDay, toDay := utils.DayRange(st.checkIn, st.checkOut, s.opts.loc)
	holds, err := s.repo.Hold.FindActiveOverlapping(ctx, st.roomID, fromDay, toDay, now)
	if err != nil {
		return nil, err
	}
	for _, h := range holds {
		if !h.OwnedBy(caller.SessionID) {
			return nil, newError(ErrConflict, "room %s is being booked by another user", room.Code)
		}
	}

	offering, err := s.repo.Offering.FindByID(ctx, st.offeringID)
	if err != nil {
		return nil, err
	}
	if offering == nil {
		return nil, newError(ErrNotFound, "offering %s not found", st.offeringID.String())
	}
	if offering.ID != room.OfferingID {
		return nil, newError(ErrValidation, "offering %s does not apply to room %s", offering.Name, room.Code)
	}

	selected := make([]entity.AddOn, 0, len(st.addOnIDs))
	for _, id := range st.addOnIDs {
		addOn, ok := offering.FindAddOn(id)
		if !ok {
			return nil, newError(ErrValidation, "add-on %s is not part of offering %s", id.String(), offering.Name)
		}
		selected = append(selected, addOn)
	}
	price := priceStay(offering.NightlyRate, snapshotAddOns(selected), countNights(st.checkIn, st.checkOut), st.guests)

	res := &entity.Reservation{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		ConfirmationCode: utils.GenerateConfirmationCode(now),
		GroupID:          st.groupID,
		RoomID:           st.roomID,
		UserID:           caller.UserID,
		OfferingID:       offering.ID,
		GuestName:        st.guestName,
		GuestEmail:       st.guestEmail,
		GuestPhone:       st.guestPhone,
		CheckIn:          st.checkIn,
		CheckOut:         st.checkOut,
		CheckInDay:       fromDay,
		CheckOutDay:      toDay,
		NumberOfGuests:   st.guests,
		NightlyRate:      offering.NightlyRate,
		Nights:           price.Nights,
		AddOns:           price.AddOns,
		TotalPrice:       price.Total,
		Status:           entity.ReservationStatusPending,
		PaymentStatus:    entity.PaymentStatusUnpaid,
	}
	if err := s.repo.Reservation.Create(ctx, res); err != nil {
		return nil, err
	}

	if st.holdID != nil {
		if err := s.repo.Hold.MarkConverted(ctx, *st.holdID, res.ID, now); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Room.UpdateStatus(ctx, room.ID, entity.RoomStatusReserved, now); err != nil {
		return nil, err
	}
	room.Status = entity.RoomStatusReserved
	res.Room = room

	return res, nil
}

func (s *reservationService) GetReservation(ctx context.Context, caller utils.Caller, id string) (*response.ReservationResponse, error) {
	resID, err := uuid.Parse(id)
	if err != nil {
		return nil, newError(ErrValidation, "invalid reservation ID format")
	}

	res, err := s.repo.Reservation.FindByID(ctx, resID)
	if err != nil {
		return nil, fmt.Errorf("get reservation %s: %w", id, err)
	}
	if res == nil {
		return nil, newError(ErrNotFound, "reservation %s not found", id)
	}
	if err := authorize(caller, res); err != nil {
		return nil, err
	}

	if res.Room, err = s.repo.Room.FindByID(ctx, res.RoomID); err != nil {
		return nil, fmt.Errorf("get reservation %s: %w", id, err)
	}

	resp := response.ReservationToResponse(res)
	return &resp, nil
}

func (s *reservationService) ListReservations(ctx context.Context, caller utils.Caller, req *request.PaginatedRequest) (*response.PaginatedResponse[response.ReservationResponse], error) {
	if caller.UserID == nil {
		return nil, newError(ErrForbidden, "a signed-in user is required to list reservations")
	}

	limit := req.Limit()
	offset := req.Offset()

	reservations, err := s.repo.Reservation.FindByUserID(ctx, *caller.UserID, limit, offset)
	if err != nil {
		s.log.Error("Failed to get user reservations",
			zap.Error(err),
			zap.String("user_id", caller.UserID.String()),
		)
		return nil, fmt.Errorf("get user reservations: %w", err)
	}

	total, err := s.repo.Reservation.CountByUserID(ctx, *caller.UserID)
	if err != nil {
		return nil, fmt.Errorf("count user reservations: %w", err)
	}

	items := make([]response.ReservationResponse, 0, len(reservations))
	for _, res := range reservations {
		items = append(items, response.ReservationToResponse(res))
	}

	page := req.Page
	if page < 1 {
		page = 1
	}
	return response.NewPaginatedResponse(items, page, limit, total), nil
}

func (s *reservationService) Confirm(ctx context.Context, caller utils.Caller, id string) (*response.ReservationResponse, error) {
	return s.transition(ctx, caller, id, true, "", func(res *entity.Reservation, _ time.Time) (entity.RoomStatus, error) {
		if res.Status != entity.ReservationStatusPending {
			return "", newError(ErrInvalidState, "only pending reservations can be confirmed, current status is %s", res.Status)
		}
		res.Status = entity.ReservationStatusConfirmed
		return "", nil
	})
}

func (s *reservationService) Cancel(ctx context.Context, caller utils.Caller, id string, req *request.CancelReservationRequest) (*response.ReservationResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, validationError(errs)
	}

	return s.transition(ctx, caller, id, false, event.ReservationCancelled, func(res *entity.Reservation, now time.Time) (entity.RoomStatus, error) {
		switch res.Status {
		case entity.ReservationStatusCancelled:
			return "", newError(ErrInvalidState, "reservation is already cancelled")
		case entity.ReservationStatusCheckedOut:
			return "", newError(ErrInvalidState, "a checked-out reservation cannot be cancelled")
		}
		if res.PaymentStatus == entity.PaymentStatusProcessing {
			return "", newError(ErrInvalidState, "a payment for this reservation is in progress")
		}

		wasCheckedIn := res.Status == entity.ReservationStatusCheckedIn
		res.Status = entity.ReservationStatusCancelled
		res.PaymentStatus = entity.PaymentStatusRefunded
		res.CancelledAt = &now
		if req.Reason != "" {
			reason := req.Reason
			res.CancellationReason = &reason
		}

		if wasCheckedIn {
			return "", nil
		}
		return entity.RoomStatusAvailable, nil
	})
}

func (s *reservationService) CheckIn(ctx context.Context, caller utils.Caller, id string) (*response.ReservationResponse, error) {
	return s.transition(ctx, caller, id, true, event.ReservationCheckedIn, func(res *entity.Reservation, _ time.Time) (entity.RoomStatus, error) {
		switch res.Status {
		case entity.ReservationStatusCheckedIn:
			return "", newError(ErrInvalidState, "guest is already checked in")
		case entity.ReservationStatusCancelled, entity.ReservationStatusCheckedOut:
			return "", newError(ErrInvalidState, "cannot check in a %s reservation", res.Status)
		}
		res.Status = entity.ReservationStatusCheckedIn
		return entity.RoomStatusOccupied, nil
	})
}

func (s *reservationService) CheckOut(ctx context.Context, caller utils.Caller, id string) (*response.ReservationResponse, error) {
	return s.transition(ctx, caller, id, true, event.ReservationCheckedOut, func(res *entity.Reservation, _ time.Time) (entity.RoomStatus, error) {
		if res.Status != entity.ReservationStatusCheckedIn {
			return "", newError(ErrInvalidState, "only checked-in reservations can be checked out, current status is %s", res.Status)
		}
		res.Status = entity.ReservationStatusCheckedOut
		return entity.RoomStatusAvailable, nil
	})
}

func (s *reservationService) UpdateStatus(ctx context.Context, caller utils.Caller, id string, req *request.UpdateStatusRequest) (*response.ReservationResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, validationError(errs)
	}
	if !caller.IsManager() {
		return nil, newError(ErrForbidden, "manager role required")
	}

	switch entity.ReservationStatus(req.Status) {
	case entity.ReservationStatusConfirmed:
		return s.Confirm(ctx, caller, id)
	case entity.ReservationStatusCheckedIn:
		return s.CheckIn(ctx, caller, id)
	case entity.ReservationStatusCheckedOut:
		return s.CheckOut(ctx, caller, id)
	default:
		return s.Cancel(ctx, caller, id, &request.CancelReservationRequest{Reason: req.Reason})
	}
}

// transition loads the reservation and its locked room, applies fn, and
// persists both in one transaction. fn returns the room status to set, or
// "" to leave the room alone.
func (s *reservationService) transition(
	ctx context.Context,
	caller utils.Caller,
	id string,
	managerOnly bool,
	eventType string,
	fn func(res *entity.Reservation, now time.Time) (entity.RoomStatus, error),
) (*response.ReservationResponse, error) {
	if managerOnly && !caller.IsManager() {
		return nil, newError(ErrForbidden, "manager role required")
	}
	resID, err := uuid.Parse(id)
	if err != nil {
		return nil, newError(ErrValidation, "invalid reservation ID format")
	}

	now := s.opts.clock.Now()
	var res *entity.Reservation
	err = s.repo.Tx.WithTx(ctx, func(ctx context.Context) error {
		var err error
		if res, err = s.loadForUpdate(ctx, caller, resID); err != nil {
			return err
		}

		roomStatus, err := fn(res, now)
		if err != nil {
			return err
		}
		res.UpdatedAt = now
		if err := s.repo.Reservation.Update(ctx, res); err != nil {
			return err
		}

		if roomStatus != "" && res.Room != nil {
			if err := s.repo.Room.UpdateStatus(ctx, res.RoomID, roomStatus, now); err != nil {
				return err
			}
			res.Room.Status = roomStatus
		}
		return nil
	})
	if err != nil {
		return nil, s.fail(err, "update reservation "+id)
	}

	s.log.Info("Reservation status changed",
		zap.String("reservation_id", id),
		zap.String("status", string(res.Status)),
	)
	if eventType != "" {
		s.afterChange(ctx, eventType, res, now)
	} else {
		invalidateRooms(ctx, s.log, s.opts.cache)
	}

	resp := response.ReservationToResponse(res)
	return &resp, nil
}

// loadForUpdate returns the reservation with its room row locked.
func (s *reservationService) loadForUpdate(ctx context.Context, caller utils.Caller, id uuid.UUID) (*entity.Reservation, error) {
	res, err := s.repo.Reservation.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, newError(ErrNotFound, "reservation %s not found", id.String())
	}
	if err := authorize(caller, res); err != nil {
		return nil, err
	}

	if res.Room, err = s.repo.Room.LockByID(ctx, res.RoomID); err != nil {
		return nil, err
	}
	// re-read under the lock so concurrent transitions see each other
	locked, err := s.repo.Reservation.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if locked == nil {
		return nil, newError(ErrNotFound, "reservation %s not found", id.String())
	}
	locked.Room = res.Room
	return locked, nil
}

func (s *reservationService) UpdateAsGuest(ctx context.Context, caller utils.Caller, id string, req *request.GuestUpdateRequest) (*response.ReservationResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, validationError(errs)
	}

	return s.edit(ctx, caller, id, func(ctx context.Context, res *entity.Reservation, _ time.Time) error {
		applyGuestUpdate(res, req)
		return nil
	})
}

func (s *reservationService) UpdateAsManager(ctx context.Context, caller utils.Caller, id string, req *request.ManagerUpdateRequest) (*response.ReservationResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, validationError(errs)
	}
	if !caller.IsManager() {
		return nil, newError(ErrForbidden, "manager role required")
	}

	return s.edit(ctx, caller, id, func(ctx context.Context, res *entity.Reservation, now time.Time) error {
		applyGuestUpdate(res, &req.GuestUpdateRequest)
		if req.PaymentStatus != nil {
			res.PaymentStatus = entity.PaymentStatus(*req.PaymentStatus)
		}
		if req.CheckIn == nil && req.CheckOut == nil && req.NumberOfGuests == nil {
			return nil
		}

		checkIn, checkOut, guests := res.CheckIn, res.CheckOut, res.NumberOfGuests
		if req.CheckIn != nil {
			checkIn = *req.CheckIn
		}
		if req.CheckOut != nil {
			checkOut = *req.CheckOut
		}
		if req.NumberOfGuests != nil {
			guests = *req.NumberOfGuests
		}
		return s.restay(ctx, res, caller.SessionID, checkIn, checkOut, guests, now)
	})
}

// restay re-runs the date, capacity and overlap checks for changed dates
// or guest count, then reprices from the stored snapshots. Holds owned by
// sessionID do not block the move.
func (s *reservationService) restay(ctx context.Context, res *entity.Reservation, sessionID string, checkIn, checkOut time.Time, guests int, now time.Time) error {
	datesChanged := !checkIn.Equal(res.CheckIn) || !checkOut.Equal(res.CheckOut)
	if datesChanged {
		if err := s.validateDates(checkIn, checkOut, now); err != nil {
			return err
		}
	}
	if res.Room != nil && guests > res.Room.Capacity() {
		return newError(ErrValidation, "room %s holds at most %d guest(s)", res.Room.Code, res.Room.Capacity())
	}

	if datesChanged {
		overlapping, err := s.repo.Reservation.FindOverlapping(ctx, res.RoomID, checkIn, checkOut, &res.ID)
		if err != nil {
			return err
		}
		if len(overlapping) > 0 {
			return newError(ErrConflict, "room is already booked for the new dates")
		}

		fromDay, toDay := utils.DayRange(checkIn, checkOut, s.opts.loc)
		holds, err := s.repo.Hold.FindActiveOverlapping(ctx, res.RoomID, fromDay, toDay, now)
		if err != nil {
			return err
		}
		for _, h := range holds {
			if !h.OwnedBy(sessionID) {
				return newError(ErrConflict, "room is being booked by another user for the new dates")
			}
		}
		res.CheckIn, res.CheckOut = checkIn, checkOut
		res.CheckInDay, res.CheckOutDay = fromDay, toDay
	}

	res.NumberOfGuests = guests
	price := priceStay(res.NightlyRate, res.AddOns, countNights(res.CheckIn, res.CheckOut), guests)
	res.Nights = price.Nights
	res.AddOns = price.AddOns
	res.TotalPrice = price.Total
	return nil
}

func applyGuestUpdate(res *entity.Reservation, req *request.GuestUpdateRequest) {
	if req.GuestName != nil {
		res.GuestName = *req.GuestName
	}
	if req.GuestEmail != nil {
		res.GuestEmail = *req.GuestEmail
	}
	if req.GuestPhone != nil {
		res.GuestPhone = *req.GuestPhone
	}
}

func (s *reservationService) edit(ctx context.Context, caller utils.Caller, id string, fn func(ctx context.Context, res *entity.Reservation, now time.Time) error) (*response.ReservationResponse, error) {
	resID, err := uuid.Parse(id)
	if err != nil {
		return nil, newError(ErrValidation, "invalid reservation ID format")
	}

	now := s.opts.clock.Now()
	var res *entity.Reservation
	err = s.repo.Tx.WithTx(ctx, func(ctx context.Context) error {
		var err error
		if res, err = s.loadForUpdate(ctx, caller, resID); err != nil {
			return err
		}
		if res.Status != entity.ReservationStatusPending && res.Status != entity.ReservationStatusConfirmed {
			return newError(ErrInvalidState, "a %s reservation can no longer be edited", res.Status)
		}

		if err := fn(ctx, res, now); err != nil {
			return err
		}
		res.UpdatedAt = now
		return s.repo.Reservation.Update(ctx, res)
	})
	if err != nil {
		return nil, s.fail(err, "edit reservation "+id)
	}

	s.log.Info("Reservation updated", zap.String("reservation_id", id))
	resp := response.ReservationToResponse(res)
	return &resp, nil
}

func (s *reservationService) Delete(ctx context.Context, caller utils.Caller, id string) error {
	if !caller.IsManager() {
		return newError(ErrForbidden, "manager role required")
	}
	resID, err := uuid.Parse(id)
	if err != nil {
		return newError(ErrValidation, "invalid reservation ID format")
	}

	now := s.opts.clock.Now()
	err = s.repo.Tx.WithTx(ctx, func(ctx context.Context) error {
		res, err := s.loadForUpdate(ctx, caller, resID)
		if err != nil {
			return err
		}
		if err := s.repo.Reservation.Delete(ctx, resID); err != nil {
			return err
		}
		if !res.IsTerminal() && res.Room != nil {
			return s.repo.Room.UpdateStatus(ctx, res.RoomID, entity.RoomStatusAvailable, now)
		}
		return nil
	})
	if err != nil {
		return s.fail(err, "delete reservation "+id)
	}

	s.log.Info("Reservation deleted", zap.String("reservation_id", id))
	invalidateRooms(ctx, s.log, s.opts.cache)
	return nil
}

func (s *reservationService) Pay(ctx context.Context, caller utils.Caller, id string, req *request.PayReservationRequest) (*response.PaymentResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, validationError(errs)
	}
	resID, err := uuid.Parse(id)
	if err != nil {
		return nil, newError(ErrValidation, "invalid reservation ID format")
	}

	// claim the payment first so a concurrent call fails payable instead
	// of charging a second time
	var res *entity.Reservation
	var previous entity.PaymentStatus
	err = s.repo.Tx.WithTx(ctx, func(ctx context.Context) error {
		var err error
		if res, err = s.loadForUpdate(ctx, caller, resID); err != nil {
			return err
		}
		if err := payable(res); err != nil {
			return err
		}
		previous = res.PaymentStatus
		res.PaymentStatus = entity.PaymentStatusProcessing
		res.UpdatedAt = s.opts.clock.Now()
		return s.repo.Reservation.Update(ctx, res)
	})
	if err != nil {
		return nil, s.fail(err, "pay reservation "+id)
	}

	// the processor is called outside any transaction
	receipt, err := s.opts.payments.Charge(ctx, payment.Charge{
		ReservationID: res.ID,
		Amount:        res.TotalPrice,
		Method:        req.Method,
		Reference:     res.ConfirmationCode,
	})
	if err != nil {
		s.log.Error("Payment processor failed", zap.Error(err), zap.String("reservation_id", id))
		s.releasePaymentClaim(ctx, caller, resID, previous)
		return nil, fmt.Errorf("charge reservation %s: %w", id, err)
	}

	now := s.opts.clock.Now()
	err = s.repo.Tx.WithTx(ctx, func(ctx context.Context) error {
		var err error
		if res, err = s.loadForUpdate(ctx, caller, resID); err != nil {
			return err
		}
		if res.PaymentStatus != entity.PaymentStatusProcessing {
			s.log.Warn("Payment claim lost before the charge was recorded",
				zap.String("reservation_id", id),
				zap.String("transaction_id", receipt.TransactionID),
				zap.Bool("approved", receipt.Approved),
			)
			return newError(ErrInvalidState, "reservation payment changed while the charge was processed")
		}

		if receipt.Approved {
			res.PaymentStatus = entity.PaymentStatusPaid
			if res.Status == entity.ReservationStatusPending {
				res.Status = entity.ReservationStatusConfirmed
			}
		} else {
			res.PaymentStatus = entity.PaymentStatusFailed
		}
		res.UpdatedAt = now
		return s.repo.Reservation.Update(ctx, res)
	})
	if err != nil {
		return nil, s.fail(err, "pay reservation "+id)
	}

	if receipt.Approved {
		s.log.Info("Reservation paid",
			zap.String("reservation_id", id),
			zap.String("transaction_id", receipt.TransactionID),
		)
		publish(ctx, s.log, s.opts.events, event.Event{
			Type:       event.ReservationPaid,
			Key:        res.RoomID.String(),
			OccurredAt: now,
			Payload:    map[string]any{"reservation_id": id, "amount": res.TotalPrice, "transaction_id": receipt.TransactionID},
		})
	} else {
		s.log.Warn("Payment declined", zap.String("reservation_id", id), zap.String("reason", receipt.Reason))
	}

	return &response.PaymentResponse{
		ReservationID: id,
		TransactionID: receipt.TransactionID,
		Approved:      receipt.Approved,
		Reason:        receipt.Reason,
		Amount:        res.TotalPrice,
		PaymentStatus: res.PaymentStatus,
		Status:        res.Status,
	}, nil
}

// releasePaymentClaim puts the payment status back after the processor
// failed without a verdict.
func (s *reservationService) releasePaymentClaim(ctx context.Context, caller utils.Caller, id uuid.UUID, previous entity.PaymentStatus) {
	err := s.repo.Tx.WithTx(context.WithoutCancel(ctx), func(ctx context.Context) error {
		res, err := s.loadForUpdate(ctx, caller, id)
		if err != nil {
			return err
		}
		if res.PaymentStatus != entity.PaymentStatusProcessing {
			return nil
		}
		res.PaymentStatus = previous
		res.UpdatedAt = s.opts.clock.Now()
		return s.repo.Reservation.Update(ctx, res)
	})
	if err != nil {
		s.log.Error("Failed to release payment claim", zap.Error(err), zap.String("reservation_id", id.String()))
	}
}

func payable(res *entity.Reservation) error {
	if res.Status == entity.ReservationStatusCancelled {
		return newError(ErrInvalidState, "cannot pay for a cancelled reservation")
	}
	switch res.PaymentStatus {
	case entity.PaymentStatusPaid:
		return newError(ErrInvalidState, "reservation is already paid")
	case entity.PaymentStatusProcessing:
		return newError(ErrInvalidState, "a payment for this reservation is already in progress")
	}
	return nil
}

// authorize lets managers through and guests only onto their own bookings.
func authorize(caller utils.Caller, res *entity.Reservation) error {
	if caller.IsManager() {
		return nil
	}
	if res.UserID == nil || caller.UserID == nil || *res.UserID != *caller.UserID {
		return newError(ErrForbidden, "reservation belongs to another user")
	}
	return nil
}

func (s *reservationService) afterChange(ctx context.Context, eventType string, res *entity.Reservation, now time.Time) {
	invalidateRooms(ctx, s.log, s.opts.cache)
	publish(ctx, s.log, s.opts.events, event.Event{
		Type:       eventType,
		Key:        res.RoomID.String(),
		OccurredAt: now,
		Payload:    response.ReservationToResponse(res),
	})
}

// fail classifies an error that aborted a transaction.
func (s *reservationService) fail(err error, op string, fields ...zap.Field) error {
	if errors.Is(err, repository.ErrOverlap) {
		return newError(ErrConflict, "room is already booked for the selected dates")
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		s.log.Warn(op+" rejected", append(fields, zap.String("reason", appErr.Message))...)
		return err
	}
	s.log.Error(op+" failed", append(fields, zap.Error(err))...)
	return fmt.Errorf("%s: %w", op, err)
}

func parseIDs(ids []string) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		out = append(out, uuid.MustParse(id))
	}
	return out
}
