package entity

import (
	"time"

	"github.com/google/uuid"
)

type HoldStage string

const (
	HoldStageConfirmation HoldStage = "confirmation"
	HoldStagePayment      HoldStage = "payment"
)

func (s HoldStage) Valid() bool {
	return s == HoldStageConfirmation || s == HoldStagePayment
}

// Hold is a session-owned, time-boxed claim on a room for a range of
// calendar days [CheckInDate, CheckOutDate).
type Hold struct {
	Base
	RoomID        uuid.UUID  `db:"room_id"`
	CheckInDate   time.Time  `db:"check_in_date"`
	CheckOutDate  time.Time  `db:"check_out_date"`
	SessionID     string     `db:"session_id"`
	UserID        *uuid.UUID `db:"user_id"`
	Stage         HoldStage  `db:"stage"`
	ExpiresAt     time.Time  `db:"expires_at"`
	Converted     bool       `db:"converted"`
	ReservationID *uuid.UUID `db:"reservation_id"`

	Room *Room `db:"-"`
}

// IsActive is computed from the row alone; sweeper progress never matters.
func (h *Hold) IsActive(now time.Time) bool {
	return !h.Converted && now.Before(h.ExpiresAt)
}

func (h *Hold) IsExpired(now time.Time) bool {
	return now.After(h.ExpiresAt)
}

func (h *Hold) OwnedBy(sessionID string) bool {
	return h.SessionID == sessionID
}

func (h *Hold) Overlaps(checkIn, checkOut time.Time) bool {
	return h.CheckInDate.Before(checkOut) && checkIn.Before(h.CheckOutDate)
}

// Matches compares calendar days as written, so a date read back from a
// DATE column in UTC still matches the same day parsed in the hotel zone.
func (h *Hold) Matches(roomID uuid.UUID, checkIn, checkOut time.Time) bool {
	return h.RoomID == roomID &&
		h.CheckInDate.Format(dayLayout) == checkIn.Format(dayLayout) &&
		h.CheckOutDate.Format(dayLayout) == checkOut.Format(dayLayout)
}

const dayLayout = "2006-01-02"
