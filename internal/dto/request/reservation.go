package request

import "time"

type CreateReservationRequest struct {
	RoomID         string    `json:"room_id" validate:"required,uuid4"`
	OfferingID     string    `json:"offering_id" validate:"required,uuid4"`
	HoldID         *string   `json:"hold_id,omitempty" validate:"omitempty,uuid4"`
	GuestName      string    `json:"guest_name" validate:"required,min=2,max=100"`
	GuestEmail     string    `json:"guest_email" validate:"required,email"`
	GuestPhone     string    `json:"guest_phone" validate:"required,e164"`
	CheckIn        time.Time `json:"check_in" validate:"required"`
	CheckOut       time.Time `json:"check_out" validate:"required,gtfield=CheckIn"`
	NumberOfGuests int       `json:"number_of_guests" validate:"required,min=1,max=2"`
	AddOnIDs       []string  `json:"add_on_ids,omitempty" validate:"omitempty,dive,uuid4"`
}

type GroupReservationItem struct {
	RoomID         string  `json:"room_id" validate:"required,uuid4"`
	HoldID         *string `json:"hold_id,omitempty" validate:"omitempty,uuid4"`
	NumberOfGuests int     `json:"number_of_guests" validate:"required,min=1,max=2"`
}

// CreateGroupReservationRequest books every item or none of them.
type CreateGroupReservationRequest struct {
	OfferingID string                 `json:"offering_id" validate:"required,uuid4"`
	GuestName  string                 `json:"guest_name" validate:"required,min=2,max=100"`
	GuestEmail string                 `json:"guest_email" validate:"required,email"`
	GuestPhone string                 `json:"guest_phone" validate:"required,e164"`
	CheckIn    time.Time              `json:"check_in" validate:"required"`
	CheckOut   time.Time              `json:"check_out" validate:"required,gtfield=CheckIn"`
	AddOnIDs   []string               `json:"add_on_ids,omitempty" validate:"omitempty,dive,uuid4"`
	Items      []GroupReservationItem `json:"items" validate:"required,min=1,max=10,dive"`
}

type CancelReservationRequest struct {
	Reason string `json:"reason,omitempty" validate:"omitempty,max=500"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=confirmed checked_in checked_out cancelled"`
	Reason string `json:"reason,omitempty" validate:"omitempty,max=500"`
}

// GuestUpdateRequest is everything a reservation owner may change.
type GuestUpdateRequest struct {
	GuestName  *string `json:"guest_name,omitempty" validate:"omitempty,min=2,max=100"`
	GuestEmail *string `json:"guest_email,omitempty" validate:"omitempty,email"`
	GuestPhone *string `json:"guest_phone,omitempty" validate:"omitempty,e164"`
}

// ManagerUpdateRequest adds the fields that re-run availability checks.
type ManagerUpdateRequest struct {
	GuestUpdateRequest
	CheckIn        *time.Time `json:"check_in,omitempty"`
	CheckOut       *time.Time `json:"check_out,omitempty"`
	NumberOfGuests *int       `json:"number_of_guests,omitempty" validate:"omitempty,min=1,max=2"`
	PaymentStatus  *string    `json:"payment_status,omitempty" validate:"omitempty,oneof=unpaid partial paid refunded failed"`
}

type PayReservationRequest struct {
	Method string `json:"method" validate:"required,max=50"`
}
