package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"capsule-hotel/internal/data/entity"
	"capsule-hotel/internal/data/repository"

	"github.com/google/uuid"
)

type reservationRepository struct {
	s *Store
}

// Create and Update enforce the same no-overlap rule as the reservations
// exclusion constraint in Postgres.
func (r *reservationRepository) Create(ctx context.Context, res *entity.Reservation) error {
	defer r.s.lock(ctx)()

	if _, exists := r.s.reservations[res.ID]; exists {
		return fmt.Errorf("reservation %s already exists", res.ID.String())
	}
	if r.overlapsExisting(res) {
		return repository.ErrOverlap
	}
	r.s.reservations[res.ID] = cloneReservation(res)
	return nil
}

func (r *reservationRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Reservation, error) {
	defer r.s.lock(ctx)()

	res, ok := r.s.reservations[id]
	if !ok {
		return nil, nil
	}
	return cloneReservation(res), nil
}

func (r *reservationRepository) FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Reservation, error) {
	defer r.s.lock(ctx)()

	all := r.filter(func(res *entity.Reservation) bool {
		return res.UserID != nil && *res.UserID == userID
	})
	sort.SliceStable(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (r *reservationRepository) CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	defer r.s.lock(ctx)()

	var n int64
	for _, res := range r.s.reservations {
		if res.UserID != nil && *res.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (r *reservationRepository) Update(ctx context.Context, res *entity.Reservation) error {
	defer r.s.lock(ctx)()

	if _, ok := r.s.reservations[res.ID]; !ok {
		return fmt.Errorf("reservation %s not found", res.ID.String())
	}
	if res.Status != entity.ReservationStatusCancelled && r.overlapsExisting(res) {
		return repository.ErrOverlap
	}
	r.s.reservations[res.ID] = cloneReservation(res)
	return nil
}

func (r *reservationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	defer r.s.lock(ctx)()

	if _, ok := r.s.reservations[id]; !ok {
		return fmt.Errorf("reservation %s not found", id.String())
	}
	delete(r.s.reservations, id)
	return nil
}

func (r *reservationRepository) FindOverlapping(ctx context.Context, roomID uuid.UUID, checkIn, checkOut time.Time, excludeID *uuid.UUID) ([]*entity.Reservation, error) {
	defer r.s.lock(ctx)()

	return r.filter(func(res *entity.Reservation) bool {
		if excludeID != nil && res.ID == *excludeID {
			return false
		}
		return res.RoomID == roomID &&
			res.Status != entity.ReservationStatusCancelled &&
			res.Overlaps(checkIn, checkOut)
	}), nil
}

func (r *reservationRepository) FindOverlappingDays(ctx context.Context, roomID uuid.UUID, from, to time.Time) ([]*entity.Reservation, error) {
	defer r.s.lock(ctx)()

	return r.filter(func(res *entity.Reservation) bool {
		return res.RoomID == roomID &&
			res.Status != entity.ReservationStatusCancelled &&
			res.OverlapsDays(from, to)
	}), nil
}

func (r *reservationRepository) overlapsExisting(res *entity.Reservation) bool {
	for _, other := range r.s.reservations {
		if other.ID == res.ID || other.RoomID != res.RoomID || other.Status == entity.ReservationStatusCancelled {
			continue
		}
		if other.Overlaps(res.CheckIn, res.CheckOut) {
			return true
		}
	}
	return false
}

func (r *reservationRepository) filter(keep func(*entity.Reservation) bool) []*entity.Reservation {
	var out []*entity.Reservation
	for _, res := range r.s.reservations {
		if keep(res) {
			out = append(out, cloneReservation(res))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CheckIn.Before(out[j].CheckIn) })
	return out
}
