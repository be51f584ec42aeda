package request

type RoomFilterRequest struct {
	Zone    string `json:"zone,omitempty" validate:"omitempty,oneof=women_only men_only couples business"`
	Quality string `json:"quality,omitempty" validate:"omitempty,oneof=classic milk golden crystal matcha"`
	Status  string `json:"status,omitempty" validate:"omitempty,oneof=available occupied maintenance reserved"`
}

type AvailableRoomsRequest struct {
	CheckInDate  string `json:"check_in" validate:"required,datetime=2006-01-02"`
	CheckOutDate string `json:"check_out" validate:"required,datetime=2006-01-02"`
	Zone         string `json:"zone,omitempty" validate:"omitempty,oneof=women_only men_only couples business"`
	Quality      string `json:"quality,omitempty" validate:"omitempty,oneof=classic milk golden crystal matcha"`
	Guests       int    `json:"guests,omitempty" validate:"omitempty,min=1,max=2"`
}

type GroupMemberRequest struct {
	MemberID string  `json:"member_id" validate:"required,max=64"`
	Quality  string  `json:"quality" validate:"required,oneof=classic milk golden crystal matcha"`
	Floor    *string `json:"floor,omitempty" validate:"omitempty,oneof=women_only men_only couples business"`
	Guests   int     `json:"guests,omitempty" validate:"omitempty,min=1,max=2"`
}

type GroupSearchRequest struct {
	CheckInDate      string               `json:"check_in" validate:"required,datetime=2006-01-02"`
	CheckOutDate     string               `json:"check_out" validate:"required,datetime=2006-01-02"`
	Members          []GroupMemberRequest `json:"members" validate:"required,min=1,max=20,dive"`
	ProximityByFloor map[string]bool      `json:"proximity_by_floor,omitempty" validate:"omitempty,dive,keys,oneof=women_only men_only couples business,endkeys"`
}
