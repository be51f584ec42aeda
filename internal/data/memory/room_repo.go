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

type roomRepository struct {
	s *Store
}

func (r *roomRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Room, error) {
	defer r.s.lock(ctx)()

	room, ok := r.s.rooms[id]
	if !ok {
		return nil, nil
	}
	return cloneRoom(room), nil
}

// LockByID is FindByID; inside WithTx the store mutex already serializes.
func (r *roomRepository) LockByID(ctx context.Context, id uuid.UUID) (*entity.Room, error) {
	return r.FindByID(ctx, id)
}

func (r *roomRepository) List(ctx context.Context, filter repository.RoomFilter) ([]*entity.Room, error) {
	defer r.s.lock(ctx)()

	var rooms []*entity.Room
	for _, room := range r.s.rooms {
		if filter.Zone != nil && room.Zone != *filter.Zone {
			continue
		}
		if filter.Quality != nil && room.Quality != *filter.Quality {
			continue
		}
		if filter.Status != nil && room.Status != *filter.Status {
			continue
		}
		rooms = append(rooms, cloneRoom(room))
	}
	sortByCode(rooms)
	return rooms, nil
}

func (r *roomRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entity.RoomStatus, now time.Time) error {
	defer r.s.lock(ctx)()

	room, ok := r.s.rooms[id]
	if !ok {
		return fmt.Errorf("room %s not found", id.String())
	}
	room.Status = status
	room.UpdatedAt = now
	return nil
}

func (r *roomRepository) FindAvailable(ctx context.Context, q repository.AvailabilityQuery) ([]*entity.Room, error) {
	defer r.s.lock(ctx)()

	busy := make(map[uuid.UUID]bool)
	for _, res := range r.s.reservations {
		if res.Status != entity.ReservationStatusCancelled && res.OverlapsDays(q.From, q.To) {
			busy[res.RoomID] = true
		}
	}
	for _, h := range r.s.holds {
		if h.IsActive(q.Now) && h.SessionID != q.ExcludeSession && h.Overlaps(q.From, q.To) {
			busy[h.RoomID] = true
		}
	}

	var rooms []*entity.Room
	for _, room := range r.s.rooms {
		switch {
		case room.Status == entity.RoomStatusMaintenance,
			busy[room.ID],
			room.Capacity() < q.MinCapacity,
			q.Zone != nil && room.Zone != *q.Zone,
			q.Quality != nil && room.Quality != *q.Quality:
			continue
		}
		rooms = append(rooms, cloneRoom(room))
	}
	sortByCode(rooms)
	return rooms, nil
}

func sortByCode(rooms []*entity.Room) {
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].Code < rooms[j].Code })
}
