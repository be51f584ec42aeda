package entity

import (
	"time"

	"github.com/google/uuid"
)

type ReservationStatus string

const (
	ReservationStatusPending    ReservationStatus = "pending"
	ReservationStatusConfirmed  ReservationStatus = "confirmed"
	ReservationStatusCheckedIn  ReservationStatus = "checked_in"
	ReservationStatusCheckedOut ReservationStatus = "checked_out"
	ReservationStatusCancelled  ReservationStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentStatusUnpaid   PaymentStatus = "unpaid"
	PaymentStatusPartial  PaymentStatus = "partial"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusRefunded PaymentStatus = "refunded"
	PaymentStatusFailed   PaymentStatus = "failed"

	// PaymentStatusProcessing marks a charge in flight at the processor.
	PaymentStatusProcessing PaymentStatus = "processing"
)

// ReservationAddOn is a price snapshot taken at booking time.
type ReservationAddOn struct {
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	PriceType PriceType `json:"price_type"`
	Total     float64   `json:"total"`
}

type Reservation struct {
	Base
	ConfirmationCode   string             `db:"confirmation_code"`
	GroupID            *uuid.UUID         `db:"group_id"`
	RoomID             uuid.UUID          `db:"room_id"`
	UserID             *uuid.UUID         `db:"user_id"`
	OfferingID         uuid.UUID          `db:"offering_id"`
	GuestName          string             `db:"guest_name"`
	GuestEmail         string             `db:"guest_email"`
	GuestPhone         string             `db:"guest_phone"`
	CheckIn            time.Time          `db:"check_in"`
	CheckOut           time.Time          `db:"check_out"`
	CheckInDay         time.Time          `db:"check_in_day"`  // calendar day of CheckIn
	CheckOutDay        time.Time          `db:"check_out_day"` // exclusive; compared against hold days
	NumberOfGuests     int                `db:"number_of_guests"`
	NightlyRate        float64            `db:"nightly_rate"`
	Nights             int                `db:"nights"`
	AddOns             []ReservationAddOn `db:"add_ons"`
	TotalPrice         float64            `db:"total_price"`
	Status             ReservationStatus  `db:"status"`
	PaymentStatus      PaymentStatus      `db:"payment_status"`
	CancelledAt        *time.Time         `db:"cancelled_at"`
	CancellationReason *string            `db:"cancellation_reason"`

	Room *Room `db:"-"`
}

func (r *Reservation) Overlaps(checkIn, checkOut time.Time) bool {
	return r.CheckIn.Before(checkOut) && checkIn.Before(r.CheckOut)
}

// OverlapsDays compares calendar days, the granularity holds use.
func (r *Reservation) OverlapsDays(from, to time.Time) bool {
	return r.CheckInDay.Before(to) && from.Before(r.CheckOutDay)
}

func (r *Reservation) IsTerminal() bool {
	return r.Status == ReservationStatusCancelled || r.Status == ReservationStatusCheckedOut
}
