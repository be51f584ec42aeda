// Package memory is an in-process implementation of every repository and
// of the Transactor. It backs STORAGE_DRIVER=memory and the service tests.
package memory

import (
	"context"
	"sync"

	"capsule-hotel/internal/data/entity"
	"capsule-hotel/internal/data/repository"

	"github.com/google/uuid"
)

type txKey struct{}

// Store keeps all rows behind one mutex. A transaction holds the mutex for
// its whole duration and restores a snapshot when fn fails.
type Store struct {
	mu sync.Mutex

	rooms        map[uuid.UUID]*entity.Room
	offerings    map[uuid.UUID]*entity.Offering
	holds        map[uuid.UUID]*entity.Hold
	reservations map[uuid.UUID]*entity.Reservation
}

func NewStore() *Store {
	return &Store{
		rooms:        make(map[uuid.UUID]*entity.Room),
		offerings:    make(map[uuid.UUID]*entity.Offering),
		holds:        make(map[uuid.UUID]*entity.Hold),
		reservations: make(map[uuid.UUID]*entity.Reservation),
	}
}

// Repository exposes the store through the same aggregate the pgx
// implementation returns.
func (s *Store) Repository() *repository.Repository {
	return &repository.Repository{
		Tx:          s,
		Room:        &roomRepository{s},
		Offering:    &offeringRepository{s},
		Hold:        &holdRepository{s},
		Reservation: &reservationRepository{s},
	}
}

func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if inTx(ctx) {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshot()
	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

func inTx(ctx context.Context) bool {
	v, _ := ctx.Value(txKey{}).(bool)
	return v
}

// lock acquires the store mutex unless ctx already runs inside WithTx.
func (s *Store) lock(ctx context.Context) func() {
	if inTx(ctx) {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

type snapshot struct {
	rooms        map[uuid.UUID]*entity.Room
	holds        map[uuid.UUID]*entity.Hold
	reservations map[uuid.UUID]*entity.Reservation
}

// Offerings are read-only and not part of the snapshot.
func (s *Store) snapshot() snapshot {
	snap := snapshot{
		rooms:        make(map[uuid.UUID]*entity.Room, len(s.rooms)),
		holds:        make(map[uuid.UUID]*entity.Hold, len(s.holds)),
		reservations: make(map[uuid.UUID]*entity.Reservation, len(s.reservations)),
	}
	for id, r := range s.rooms {
		snap.rooms[id] = cloneRoom(r)
	}
	for id, h := range s.holds {
		snap.holds[id] = cloneHold(h)
	}
	for id, r := range s.reservations {
		snap.reservations[id] = cloneReservation(r)
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.rooms = snap.rooms
	s.holds = snap.holds
	s.reservations = snap.reservations
}

func cloneRoom(r *entity.Room) *entity.Room {
	c := *r
	return &c
}

func cloneOffering(o *entity.Offering) *entity.Offering {
	c := *o
	c.AddOns = append([]entity.AddOn(nil), o.AddOns...)
	return &c
}

func cloneHold(h *entity.Hold) *entity.Hold {
	c := *h
	c.UserID = cloneID(h.UserID)
	c.ReservationID = cloneID(h.ReservationID)
	c.Room = nil
	return &c
}

func cloneReservation(r *entity.Reservation) *entity.Reservation {
	c := *r
	c.GroupID = cloneID(r.GroupID)
	c.UserID = cloneID(r.UserID)
	c.AddOns = append([]entity.ReservationAddOn(nil), r.AddOns...)
	if r.CancelledAt != nil {
		t := *r.CancelledAt
		c.CancelledAt = &t
	}
	if r.CancellationReason != nil {
		s := *r.CancellationReason
		c.CancellationReason = &s
	}
	c.Room = nil
	return &c
}

func cloneID(id *uuid.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	c := *id
	return &c
}
