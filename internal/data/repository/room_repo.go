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

type RoomFilter struct {
	Zone    *entity.RoomZone
	Quality *entity.RoomQuality
	Status  *entity.RoomStatus
}

// AvailabilityQuery selects rooms free over the calendar days [From, To).
type AvailabilityQuery struct {
	From           time.Time
	To             time.Time
	Zone           *entity.RoomZone
	Quality        *entity.RoomQuality
	MinCapacity    int
	ExcludeSession string
	Now            time.Time
}

type RoomRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Room, error)
	List(ctx context.Context, filter RoomFilter) ([]*entity.Room, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status entity.RoomStatus, now time.Time) error

	// LockByID loads the room and, inside a transaction, holds its row lock
	// until commit so claims on one room are serialized.
	LockByID(ctx context.Context, id uuid.UUID) (*entity.Room, error)
	FindAvailable(ctx context.Context, q AvailabilityQuery) ([]*entity.Room, error)
}

type roomRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewRoomRepository(db database.PgxIface, log *zap.Logger) RoomRepository {
	return &roomRepository{
		db:  db,
		log: log.With(zap.String("repository", "room")),
	}
}

const roomColumns = `id, code, zone, quality, status, offering_id, created_at, updated_at`

func scanRoom(row scanner) (*entity.Room, error) {
	var room entity.Room
	err := row.Scan(
		&room.ID,
		&room.Code,
		&room.Zone,
		&room.Quality,
		&room.Status,
		&room.OfferingID,
		&room.CreatedAt,
		&room.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *roomRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Room, error) {
	return r.findOne(ctx, `SELECT `+roomColumns+` FROM rooms WHERE id = $1`, id)
}

func (r *roomRepository) LockByID(ctx context.Context, id uuid.UUID) (*entity.Room, error) {
	return r.findOne(ctx, `SELECT `+roomColumns+` FROM rooms WHERE id = $1 FOR UPDATE`, id)
}

func (r *roomRepository) findOne(ctx context.Context, query string, id uuid.UUID) (*entity.Room, error) {
	room, err := scanRoom(conn(ctx, r.db).QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find room by ID",
			zap.Error(err),
			zap.String("room_id", id.String()),
		)
		return nil, fmt.Errorf("find room %s: %w", id.String(), err)
	}
	return room, nil
}

func (r *roomRepository) List(ctx context.Context, filter RoomFilter) ([]*entity.Room, error) {
	query := `
		SELECT ` + roomColumns + `
		FROM rooms
		WHERE ($1::text IS NULL OR zone = $1)
		  AND ($2::text IS NULL OR quality = $2)
		  AND ($3::text IS NULL OR status = $3)
		ORDER BY code
	`

	rows, err := conn(ctx, r.db).Query(ctx, query, filter.Zone, filter.Quality, filter.Status)
	if err != nil {
		r.log.Error("Failed to list rooms", zap.Error(err))
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	return r.collect(rows)
}

func (r *roomRepository) FindAvailable(ctx context.Context, q AvailabilityQuery) ([]*entity.Room, error) {
	query := `
		SELECT ` + roomColumns + `
		FROM rooms r
		WHERE r.status <> 'maintenance'
		  AND ($1::text IS NULL OR r.zone = $1)
		  AND ($2::text IS NULL OR r.quality = $2)
		  AND r.capacity >= $3
		  AND NOT EXISTS (
		      SELECT 1 FROM reservations v
		      WHERE v.room_id = r.id
		        AND v.status <> 'cancelled'
		        AND v.check_in_day < $5 AND $4 < v.check_out_day
		  )
		  AND NOT EXISTS (
		      SELECT 1 FROM holds h
		      WHERE h.room_id = r.id
		        AND h.converted = false
		        AND h.expires_at > $6
		        AND h.session_id <> $7
		        AND h.check_in_date < $5 AND $4 < h.check_out_date
		  )
		ORDER BY r.code
	`

	rows, err := conn(ctx, r.db).Query(ctx, query,
		q.Zone,
		q.Quality,
		q.MinCapacity,
		q.From,
		q.To,
		q.Now,
		q.ExcludeSession,
	)
	if err != nil {
		r.log.Error("Failed to find available rooms",
			zap.Error(err),
			zap.Time("from", q.From),
			zap.Time("to", q.To),
		)
		return nil, fmt.Errorf("find available rooms: %w", err)
	}
	return r.collect(rows)
}

func (r *roomRepository) collect(rows pgx.Rows) ([]*entity.Room, error) {
	defer rows.Close()

	var rooms []*entity.Room
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			r.log.Error("Failed to scan room row", zap.Error(err))
			return nil, fmt.Errorf("scan room row: %w", err)
		}
		rooms = append(rooms, room)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate room rows: %w", err)
	}

	return rooms, nil
}

func (r *roomRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entity.RoomStatus, now time.Time) error {
	query := `UPDATE rooms SET status = $2, updated_at = $3 WHERE id = $1`

	result, err := conn(ctx, r.db).Exec(ctx, query, id, status, now)
	if err != nil {
		r.log.Error("Failed to update room status",
			zap.Error(err),
			zap.String("room_id", id.String()),
			zap.String("status", string(status)),
		)
		return fmt.Errorf("update room %s status to %s: %w", id.String(), status, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("room %s not found", id.String())
	}

	return nil
}
