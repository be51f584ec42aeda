package repository

import (
	"context"
	"errors"
	"fmt"

	"capsule-hotel/internal/data/entity"
	"capsule-hotel/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// OfferingRepository is a read-only view of the pricing catalog.
type OfferingRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Offering, error)
}

type offeringRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewOfferingRepository(db database.PgxIface, log *zap.Logger) OfferingRepository {
	return &offeringRepository{
		db:  db,
		log: log.With(zap.String("repository", "offering")),
	}
}

func (r *offeringRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Offering, error) {
	query := `SELECT id, name, nightly_rate, add_ons FROM offerings WHERE id = $1`

	var offering entity.Offering
	err := conn(ctx, r.db).QueryRow(ctx, query, id).Scan(
		&offering.ID,
		&offering.Name,
		&offering.NightlyRate,
		&offering.AddOns,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find offering by ID",
			zap.Error(err),
			zap.String("offering_id", id.String()),
		)
		return nil, fmt.Errorf("find offering %s: %w", id.String(), err)
	}

	return &offering, nil
}
