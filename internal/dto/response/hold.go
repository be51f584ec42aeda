package response

import (
	"time"

	"capsule-hotel/internal/data/entity"
	"capsule-hotel/pkg/utils"
)

type HoldResponse struct {
	ID            string           `json:"id"`
	RoomID        string           `json:"room_id"`
	Room          *RoomResponse    `json:"room,omitempty"`
	CheckInDate   string           `json:"check_in_date"`
	CheckOutDate  string           `json:"check_out_date"`
	UserID        *string          `json:"user_id,omitempty"`
	Stage         entity.HoldStage `json:"stage"`
	ExpiresAt     time.Time        `json:"expires_at"`
	Converted     bool             `json:"converted"`
	ReservationID *string          `json:"reservation_id,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
}

type HoldValidationResponse struct {
	Valid bool `json:"valid"`
}

type CleanupResponse struct {
	Deleted int64 `json:"deleted"`
}

func HoldToResponse(hold *entity.Hold) HoldResponse {
	resp := HoldResponse{
		ID:           hold.ID.String(),
		RoomID:       hold.RoomID.String(),
		CheckInDate:  hold.CheckInDate.Format(utils.DateLayout),
		CheckOutDate: hold.CheckOutDate.Format(utils.DateLayout),
		Stage:        hold.Stage,
		ExpiresAt:    hold.ExpiresAt,
		Converted:    hold.Converted,
		CreatedAt:    hold.CreatedAt,
	}
	if hold.UserID != nil {
		id := hold.UserID.String()
		resp.UserID = &id
	}
	if hold.ReservationID != nil {
		id := hold.ReservationID.String()
		resp.ReservationID = &id
	}
	if hold.Room != nil {
		room := RoomToResponse(hold.Room)
		resp.Room = &room
	}
	return resp
}
