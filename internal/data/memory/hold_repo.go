package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"capsule-hotel/internal/data/entity"

	"github.com/google/uuid"
)

type holdRepository struct {
	s *Store
}

func (r *holdRepository) Create(ctx context.Context, hold *entity.Hold) error {
	defer r.s.lock(ctx)()

	if _, exists := r.s.holds[hold.ID]; exists {
		return fmt.Errorf("hold %s already exists", hold.ID.String())
	}
	r.s.holds[hold.ID] = cloneHold(hold)
	return nil
}

func (r *holdRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Hold, error) {
	defer r.s.lock(ctx)()

	h, ok := r.s.holds[id]
	if !ok {
		return nil, nil
	}
	return cloneHold(h), nil
}

func (r *holdRepository) UpdateExpiry(ctx context.Context, id uuid.UUID, stage entity.HoldStage, expiresAt, now time.Time) error {
	defer r.s.lock(ctx)()

	h, ok := r.s.holds[id]
	if !ok || h.Converted {
		return fmt.Errorf("hold %s not found", id.String())
	}
	h.Stage = stage
	h.ExpiresAt = expiresAt
	h.UpdatedAt = now
	return nil
}

func (r *holdRepository) MarkConverted(ctx context.Context, id, reservationID uuid.UUID, now time.Time) error {
	defer r.s.lock(ctx)()

	h, ok := r.s.holds[id]
	if !ok || h.Converted {
		return fmt.Errorf("hold %s not found or already converted", id.String())
	}
	h.Converted = true
	h.ReservationID = &reservationID
	h.UpdatedAt = now
	return nil
}

func (r *holdRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	defer r.s.lock(ctx)()

	h, ok := r.s.holds[id]
	if !ok || h.Converted {
		return false, nil
	}
	delete(r.s.holds, id)
	return true, nil
}

func (r *holdRepository) FindActiveOverlapping(ctx context.Context, roomID uuid.UUID, from, to, now time.Time) ([]*entity.Hold, error) {
	defer r.s.lock(ctx)()

	return r.filter(func(h *entity.Hold) bool {
		return h.RoomID == roomID && h.IsActive(now) && h.Overlaps(from, to)
	}), nil
}

func (r *holdRepository) FindActiveBySession(ctx context.Context, sessionID string, now time.Time) ([]*entity.Hold, error) {
	defer r.s.lock(ctx)()

	return r.filter(func(h *entity.Hold) bool {
		return h.SessionID == sessionID && h.IsActive(now)
	}), nil
}

func (r *holdRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	defer r.s.lock(ctx)()

	var n int64
	for id, h := range r.s.holds {
		if !h.Converted && h.ExpiresAt.Before(now) {
			delete(r.s.holds, id)
			n++
		}
	}
	return n, nil
}

func (r *holdRepository) filter(keep func(*entity.Hold) bool) []*entity.Hold {
	var holds []*entity.Hold
	for _, h := range r.s.holds {
		if keep(h) {
			holds = append(holds, cloneHold(h))
		}
	}
	sort.Slice(holds, func(i, j int) bool { return holds[i].CreatedAt.Before(holds[j].CreatedAt) })
	return holds
}
