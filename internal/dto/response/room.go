package response

import "capsule-hotel/internal/data/entity"

type RoomResponse struct {
	ID         string             `json:"id"`
	Code       string             `json:"code"`
	Zone       entity.RoomZone    `json:"zone"`
	Quality    entity.RoomQuality `json:"quality"`
	Capacity   int                `json:"capacity"`
	Status     entity.RoomStatus  `json:"status"`
	OfferingID string             `json:"offering_id"`
}

func RoomToResponse(room *entity.Room) RoomResponse {
	return RoomResponse{
		ID:         room.ID.String(),
		Code:       room.Code,
		Zone:       room.Zone,
		Quality:    room.Quality,
		Capacity:   room.Capacity(),
		Status:     room.Status,
		OfferingID: room.OfferingID.String(),
	}
}

func RoomsToResponse(rooms []*entity.Room) []RoomResponse {
	out := make([]RoomResponse, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, RoomToResponse(r))
	}
	return out
}

type GroupAssignmentResponse struct {
	MemberID    string             `json:"member_id"`
	RoomID      string             `json:"room_id"`
	RoomCode    string             `json:"room_code"`
	Floor       entity.RoomZone    `json:"floor"`
	Quality     entity.RoomQuality `json:"quality"`
	IsProximate bool               `json:"is_proximate"`
}

type GroupRecommendationResponse struct {
	MemberID     string               `json:"member_id"`
	Quality      entity.RoomQuality   `json:"quality"`
	Floor        entity.RoomZone      `json:"floor"`
	Guests       int                  `json:"guests"`
	Status       string               `json:"status"`
	Alternatives []entity.RoomQuality `json:"alternatives,omitempty"`
}

type GroupSearchResponse struct {
	Primary         []GroupAssignmentResponse     `json:"primary"`
	Recommendations []GroupRecommendationResponse `json:"recommendations"`
}
