package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"capsule-hotel/internal/data/entity"
	"capsule-hotel/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type HoldRepository interface {
	Create(ctx context.Context, hold *entity.Hold) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Hold, error)
	UpdateExpiry(ctx context.Context, id uuid.UUID, stage entity.HoldStage, expiresAt, now time.Time) error
	MarkConverted(ctx context.Context, id, reservationID uuid.UUID, now time.Time) error

	// Delete removes an unconverted hold; converted holds are never deleted.
	Delete(ctx context.Context, id uuid.UUID) (bool, error)

	// Business queries. "Active" means expires_at > now AND NOT converted.
	FindActiveOverlapping(ctx context.Context, roomID uuid.UUID, from, to, now time.Time) ([]*entity.Hold, error)
	FindActiveBySession(ctx context.Context, sessionID string, now time.Time) ([]*entity.Hold, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type holdRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewHoldRepository(db database.PgxIface, log *zap.Logger) HoldRepository {
	return &holdRepository{
		db:  db,
		log: log.With(zap.String("repository", "hold")),
	}
}

const holdColumns = `id, room_id, check_in_date, check_out_date, session_id, user_id, stage,
	expires_at, converted, reservation_id, created_at, updated_at`

func scanHold(row scanner) (*entity.Hold, error) {
	var hold entity.Hold
	err := row.Scan(
		&hold.ID,
		&hold.RoomID,
		&hold.CheckInDate,
		&hold.CheckOutDate,
		&hold.SessionID,
		&hold.UserID,
		&hold.Stage,
		&hold.ExpiresAt,
		&hold.Converted,
		&hold.ReservationID,
		&hold.CreatedAt,
		&hold.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &hold, nil
}

func (r *holdRepository) Create(ctx context.Context, hold *entity.Hold) error {
	query := `
		INSERT INTO holds (id, room_id, check_in_date, check_out_date, session_id, user_id, stage,
		                   expires_at, converted, reservation_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := conn(ctx, r.db).Exec(ctx, query,
		hold.ID,
		hold.RoomID,
		hold.CheckInDate,
		hold.CheckOutDate,
		hold.SessionID,
		hold.UserID,
		hold.Stage,
		hold.ExpiresAt,
		hold.Converted,
		hold.ReservationID,
		hold.CreatedAt,
		hold.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to create hold",
			zap.Error(err),
			zap.String("room_id", hold.RoomID.String()),
			zap.String("session_id", hold.SessionID),
		)
		return fmt.Errorf("create hold for room %s: %w", hold.RoomID.String(), err)
	}

	return nil
}

func (r *holdRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Hold, error) {
	query := `SELECT ` + holdColumns + ` FROM holds WHERE id = $1`

	hold, err := scanHold(conn(ctx, r.db).QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find hold by ID",
			zap.Error(err),
			zap.String("hold_id", id.String()),
		)
		return nil, fmt.Errorf("find hold %s: %w", id.String(), err)
	}

	return hold, nil
}

func (r *holdRepository) UpdateExpiry(ctx context.Context, id uuid.UUID, stage entity.HoldStage, expiresAt, now time.Time) error {
	query := `
		UPDATE holds
		SET stage = $2, expires_at = $3, updated_at = $4
		WHERE id = $1 AND converted = false
	`

	result, err := conn(ctx, r.db).Exec(ctx, query, id, stage, expiresAt, now)
	if err != nil {
		r.log.Error("Failed to update hold expiry",
			zap.Error(err),
			zap.String("hold_id", id.String()),
		)
		return fmt.Errorf("update hold %s expiry: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("hold %s not found", id.String())
	}

	return nil
}

func (r *holdRepository) MarkConverted(ctx context.Context, id, reservationID uuid.UUID, now time.Time) error {
	query := `
		UPDATE holds
		SET converted = true, reservation_id = $2, updated_at = $3
		WHERE id = $1 AND converted = false
	`

	result, err := conn(ctx, r.db).Exec(ctx, query, id, reservationID, now)
	if err != nil {
		r.log.Error("Failed to convert hold",
			zap.Error(err),
			zap.String("hold_id", id.String()),
			zap.String("reservation_id", reservationID.String()),
		)
		return fmt.Errorf("convert hold %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("hold %s not found or already converted", id.String())
	}

	return nil
}

func (r *holdRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `DELETE FROM holds WHERE id = $1 AND converted = false`

	result, err := conn(ctx, r.db).Exec(ctx, query, id)
	if err != nil {
		r.log.Error("Failed to delete hold",
			zap.Error(err),
			zap.String("hold_id", id.String()),
		)
		return false, fmt.Errorf("delete hold %s: %w", id.String(), err)
	}

	return result.RowsAffected() > 0, nil
}

func (r *holdRepository) FindActiveOverlapping(ctx context.Context, roomID uuid.UUID, from, to, now time.Time) ([]*entity.Hold, error) {
	query := `
		SELECT ` + holdColumns + `
		FROM holds
		WHERE room_id = $1
		  AND converted = false
		  AND expires_at > $4
		  AND check_in_date < $3 AND $2 < check_out_date
		ORDER BY created_at
	`

	rows, err := conn(ctx, r.db).Query(ctx, query, roomID, from, to, now)
	if err != nil {
		r.log.Error("Failed to find overlapping holds",
			zap.Error(err),
			zap.String("room_id", roomID.String()),
		)
		return nil, fmt.Errorf("find overlapping holds for room %s: %w", roomID.String(), err)
	}
	return r.collect(rows)
}

func (r *holdRepository) FindActiveBySession(ctx context.Context, sessionID string, now time.Time) ([]*entity.Hold, error) {
	query := `
		SELECT ` + holdColumns + `
		FROM holds
		WHERE session_id = $1 AND converted = false AND expires_at > $2
		ORDER BY created_at
	`

	rows, err := conn(ctx, r.db).Query(ctx, query, sessionID, now)
	if err != nil {
		r.log.Error("Failed to find holds by session",
			zap.Error(err),
			zap.String("session_id", sessionID),
		)
		return nil, fmt.Errorf("find holds for session: %w", err)
	}
	return r.collect(rows)
}

func (r *holdRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	query := `DELETE FROM holds WHERE expires_at < $1 AND converted = false`

	result, err := conn(ctx, r.db).Exec(ctx, query, now)
	if err != nil {
		r.log.Error("Failed to delete expired holds", zap.Error(err))
		return 0, fmt.Errorf("delete expired holds: %w", err)
	}

	return result.RowsAffected(), nil
}

func (r *holdRepository) collect(rows pgx.Rows) ([]*entity.Hold, error) {
	defer rows.Close()

	var holds []*entity.Hold
	for rows.Next() {
		hold, err := scanHold(rows)
		if err != nil {
			r.log.Error("Failed to scan hold row", zap.Error(err))
			return nil, fmt.Errorf("scan hold row: %w", err)
		}
		holds = append(holds, hold)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate hold rows: %w", err)
	}

	return holds, nil
}
