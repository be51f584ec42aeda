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

type ReservationRepository interface {
	Create(ctx context.Context, reservation *entity.Reservation) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Reservation, error)
	FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Reservation, error)
	CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error)
	Update(ctx context.Context, reservation *entity.Reservation) error
	Delete(ctx context.Context, id uuid.UUID) error

	// Business queries. Cancelled reservations never overlap anything.
	// FindOverlapping compares timestamps; FindOverlappingDays compares
	// calendar days, the granularity of holds.
	FindOverlapping(ctx context.Context, roomID uuid.UUID, checkIn, checkOut time.Time, excludeID *uuid.UUID) ([]*entity.Reservation, error)
	FindOverlappingDays(ctx context.Context, roomID uuid.UUID, from, to time.Time) ([]*entity.Reservation, error)
}

type reservationRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewReservationRepository(db database.PgxIface, log *zap.Logger) ReservationRepository {
	return &reservationRepository{
		db:  db,
		log: log.With(zap.String("repository", "reservation")),
	}
}

const reservationColumns = `id, confirmation_code, group_id, room_id, user_id, offering_id,
	guest_name, guest_email, guest_phone, check_in, check_out, check_in_day, check_out_day,
	number_of_guests, nightly_rate, nights, add_ons, total_price, status, payment_status,
	cancelled_at, cancellation_reason, created_at, updated_at`

func scanReservation(row scanner) (*entity.Reservation, error) {
	var res entity.Reservation
	err := row.Scan(
		&res.ID,
		&res.ConfirmationCode,
		&res.GroupID,
		&res.RoomID,
		&res.UserID,
		&res.OfferingID,
		&res.GuestName,
		&res.GuestEmail,
		&res.GuestPhone,
		&res.CheckIn,
		&res.CheckOut,
		&res.CheckInDay,
		&res.CheckOutDay,
		&res.NumberOfGuests,
		&res.NightlyRate,
		&res.Nights,
		&res.AddOns,
		&res.TotalPrice,
		&res.Status,
		&res.PaymentStatus,
		&res.CancelledAt,
		&res.CancellationReason,
		&res.CreatedAt,
		&res.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *reservationRepository) Create(ctx context.Context, res *entity.Reservation) error {
	query := `
		INSERT INTO reservations (` + reservationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
		        $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24)
	`

	_, err := conn(ctx, r.db).Exec(ctx, query,
		res.ID,
		res.ConfirmationCode,
		res.GroupID,
		res.RoomID,
		res.UserID,
		res.OfferingID,
		res.GuestName,
		res.GuestEmail,
		res.GuestPhone,
		res.CheckIn,
		res.CheckOut,
		res.CheckInDay,
		res.CheckOutDay,
		res.NumberOfGuests,
		res.NightlyRate,
		res.Nights,
		res.AddOns,
		res.TotalPrice,
		res.Status,
		res.PaymentStatus,
		res.CancelledAt,
		res.CancellationReason,
		res.CreatedAt,
		res.UpdatedAt,
	)
	if err != nil {
		if isOverlapViolation(err) {
			return ErrOverlap
		}
		r.log.Error("Failed to create reservation",
			zap.Error(err),
			zap.String("confirmation_code", res.ConfirmationCode),
			zap.String("room_id", res.RoomID.String()),
		)
		return fmt.Errorf("create reservation %s: %w", res.ConfirmationCode, err)
	}

	return nil
}

func (r *reservationRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1`

	res, err := scanReservation(conn(ctx, r.db).QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find reservation by ID",
			zap.Error(err),
			zap.String("reservation_id", id.String()),
		)
		return nil, fmt.Errorf("find reservation %s: %w", id.String(), err)
	}

	return res, nil
}

func (r *reservationRepository) FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := conn(ctx, r.db).Query(ctx, query, userID, limit, offset)
	if err != nil {
		r.log.Error("Failed to find reservations by user ID",
			zap.Error(err),
			zap.String("user_id", userID.String()),
			zap.Int("limit", limit),
			zap.Int("offset", offset),
		)
		return nil, fmt.Errorf("find reservations by user ID %s: %w", userID.String(), err)
	}
	return r.collect(rows)
}

func (r *reservationRepository) CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM reservations WHERE user_id = $1`

	var count int64
	if err := conn(ctx, r.db).QueryRow(ctx, query, userID).Scan(&count); err != nil {
		r.log.Error("Failed to count reservations by user ID",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return 0, fmt.Errorf("count reservations by user ID %s: %w", userID.String(), err)
	}

	return count, nil
}

func (r *reservationRepository) Update(ctx context.Context, res *entity.Reservation) error {
	query := `
		UPDATE reservations
		SET guest_name = $2, guest_email = $3, guest_phone = $4,
		    check_in = $5, check_out = $6, check_in_day = $7, check_out_day = $8,
		    number_of_guests = $9, nights = $10, add_ons = $11, total_price = $12,
		    status = $13, payment_status = $14, cancelled_at = $15, cancellation_reason = $16,
		    updated_at = $17
		WHERE id = $1
	`

	result, err := conn(ctx, r.db).Exec(ctx, query,
		res.ID,
		res.GuestName,
		res.GuestEmail,
		res.GuestPhone,
		res.CheckIn,
		res.CheckOut,
		res.CheckInDay,
		res.CheckOutDay,
		res.NumberOfGuests,
		res.Nights,
		res.AddOns,
		res.TotalPrice,
		res.Status,
		res.PaymentStatus,
		res.CancelledAt,
		res.CancellationReason,
		res.UpdatedAt,
	)
	if err != nil {
		if isOverlapViolation(err) {
			return ErrOverlap
		}
		r.log.Error("Failed to update reservation",
			zap.Error(err),
			zap.String("reservation_id", res.ID.String()),
		)
		return fmt.Errorf("update reservation %s: %w", res.ID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("reservation %s not found", res.ID.String())
	}

	return nil
}

func (r *reservationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM reservations WHERE id = $1`

	result, err := conn(ctx, r.db).Exec(ctx, query, id)
	if err != nil {
		r.log.Error("Failed to delete reservation",
			zap.Error(err),
			zap.String("reservation_id", id.String()),
		)
		return fmt.Errorf("delete reservation %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("reservation %s not found", id.String())
	}

	r.log.Info("Reservation deleted", zap.String("reservation_id", id.String()))
	return nil
}

func (r *reservationRepository) FindOverlapping(ctx context.Context, roomID uuid.UUID, checkIn, checkOut time.Time, excludeID *uuid.UUID) ([]*entity.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations
		WHERE room_id = $1
		  AND status <> 'cancelled'
		  AND check_in < $3 AND $2 < check_out
		  AND ($4::uuid IS NULL OR id <> $4)
		ORDER BY check_in
	`

	rows, err := conn(ctx, r.db).Query(ctx, query, roomID, checkIn, checkOut, excludeID)
	if err != nil {
		r.log.Error("Failed to find overlapping reservations",
			zap.Error(err),
			zap.String("room_id", roomID.String()),
		)
		return nil, fmt.Errorf("find overlapping reservations for room %s: %w", roomID.String(), err)
	}
	return r.collect(rows)
}

func (r *reservationRepository) FindOverlappingDays(ctx context.Context, roomID uuid.UUID, from, to time.Time) ([]*entity.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations
		WHERE room_id = $1
		  AND status <> 'cancelled'
		  AND check_in_day < $3 AND $2 < check_out_day
		ORDER BY check_in
	`

	rows, err := conn(ctx, r.db).Query(ctx, query, roomID, from, to)
	if err != nil {
		r.log.Error("Failed to find reservations overlapping days",
			zap.Error(err),
			zap.String("room_id", roomID.String()),
		)
		return nil, fmt.Errorf("find reservations overlapping days for room %s: %w", roomID.String(), err)
	}
	return r.collect(rows)
}

func (r *reservationRepository) collect(rows pgx.Rows) ([]*entity.Reservation, error) {
	defer rows.Close()

	var reservations []*entity.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			r.log.Error("Failed to scan reservation row", zap.Error(err))
			return nil, fmt.Errorf("scan reservation row: %w", err)
		}
		reservations = append(reservations, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reservation rows: %w", err)
	}

	return reservations, nil
}
