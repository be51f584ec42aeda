package request

type CreateHoldRequest struct {
	RoomID       string `json:"room_id" validate:"required,uuid4"`
	CheckInDate  string `json:"check_in_date" validate:"required,datetime=2006-01-02"`
	CheckOutDate string `json:"check_out_date" validate:"required,datetime=2006-01-02"`
	Stage        string `json:"stage,omitempty" validate:"omitempty,oneof=confirmation payment"`
}

// ExtendHoldRequest with an empty stage refreshes the current stage's TTL.
type ExtendHoldRequest struct {
	Stage string `json:"stage,omitempty" validate:"omitempty,oneof=confirmation payment"`
}
