package memory

import (
	"context"

	"capsule-hotel/internal/data/entity"

	"github.com/google/uuid"
)

type offeringRepository struct {
	s *Store
}

func (r *offeringRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Offering, error) {
	defer r.s.lock(ctx)()

	o, ok := r.s.offerings[id]
	if !ok {
		return nil, nil
	}
	return cloneOffering(o), nil
}
