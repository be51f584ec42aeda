package response

import (
	"time"

	"capsule-hotel/internal/data/entity"
)

type ReservationResponse struct {
	ID                 string                    `json:"id"`
	ConfirmationCode   string                    `json:"confirmation_code"`
	GroupID            *string                   `json:"group_id,omitempty"`
	RoomID             string                    `json:"room_id"`
	Room               *RoomResponse             `json:"room,omitempty"`
	UserID             *string                   `json:"user_id,omitempty"`
	OfferingID         string                    `json:"offering_id"`
	GuestName          string                    `json:"guest_name"`
	GuestEmail         string                    `json:"guest_email"`
	GuestPhone         string                    `json:"guest_phone"`
	CheckIn            time.Time                 `json:"check_in"`
	CheckOut           time.Time                 `json:"check_out"`
	NumberOfGuests     int                       `json:"number_of_guests"`
	NightlyRate        float64                   `json:"nightly_rate"`
	Nights             int                       `json:"nights"`
	AddOns             []entity.ReservationAddOn `json:"add_ons"`
	TotalPrice         float64                   `json:"total_price"`
	Status             entity.ReservationStatus  `json:"status"`
	PaymentStatus      entity.PaymentStatus      `json:"payment_status"`
	CancelledAt        *time.Time                `json:"cancelled_at,omitempty"`
	CancellationReason *string                   `json:"cancellation_reason,omitempty"`
	CreatedAt          time.Time                 `json:"created_at"`
	UpdatedAt          time.Time                 `json:"updated_at"`
}

type GroupReservationResponse struct {
	GroupID      string                `json:"group_id"`
	Reservations []ReservationResponse `json:"reservations"`
	TotalPrice   float64               `json:"total_price"`
}

type PaymentResponse struct {
	ReservationID string                   `json:"reservation_id"`
	TransactionID string                   `json:"transaction_id"`
	Approved      bool                     `json:"approved"`
	Reason        string                   `json:"reason,omitempty"`
	Amount        float64                  `json:"amount"`
	PaymentStatus entity.PaymentStatus     `json:"payment_status"`
	Status        entity.ReservationStatus `json:"status"`
}

func ReservationToResponse(res *entity.Reservation) ReservationResponse {
	resp := ReservationResponse{
		ID:                 res.ID.String(),
		ConfirmationCode:   res.ConfirmationCode,
		RoomID:             res.RoomID.String(),
		OfferingID:         res.OfferingID.String(),
		GuestName:          res.GuestName,
		GuestEmail:         res.GuestEmail,
		GuestPhone:         res.GuestPhone,
		CheckIn:            res.CheckIn,
		CheckOut:           res.CheckOut,
		NumberOfGuests:     res.NumberOfGuests,
		NightlyRate:        res.NightlyRate,
		Nights:             res.Nights,
		AddOns:             res.AddOns,
		TotalPrice:         res.TotalPrice,
		Status:             res.Status,
		PaymentStatus:      res.PaymentStatus,
		CancelledAt:        res.CancelledAt,
		CancellationReason: res.CancellationReason,
		CreatedAt:          res.CreatedAt,
		UpdatedAt:          res.UpdatedAt,
	}
	if resp.AddOns == nil {
		resp.AddOns = []entity.ReservationAddOn{}
	}
	if res.GroupID != nil {
		id := res.GroupID.String()
		resp.GroupID = &id
	}
	if res.UserID != nil {
		id := res.UserID.String()
		resp.UserID = &id
	}
	if res.Room != nil {
		room := RoomToResponse(res.Room)
		resp.Room = &room
	}
	return resp
}
