package adaptor

import (
	"net/http"

	"capsule-hotel/internal/dto/request"
	"capsule-hotel/internal/usecase"
	"capsule-hotel/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type RoomHandler struct {
	service usecase.RoomService
	group   usecase.GroupService
	log     *zap.Logger
}

func NewRoomHandler(service usecase.RoomService, group usecase.GroupService, log *zap.Logger) *RoomHandler {
	return &RoomHandler{
		service: service,
		group:   group,
		log:     log.With(zap.String("handler", "room")),
	}
}

// ListRooms handles GET /api/rooms?zone=&quality=&status=
func (h *RoomHandler) ListRooms(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := request.RoomFilterRequest{
		Zone:    query.Get("zone"),
		Quality: query.Get("quality"),
		Status:  query.Get("status"),
	}

	rooms, err := h.service.ListRooms(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "list rooms")
		return
	}

	utils.ResponseSuccess(w, "success", rooms)
}

// GetRoom handles GET /api/rooms/{id}
func (h *RoomHandler) GetRoom(w http.ResponseWriter, r *http.Request) {
	room, err := h.service.GetRoom(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.log, err, "get room")
		return
	}

	utils.ResponseSuccess(w, "success", room)
}

// AvailableRooms handles GET /api/rooms/available?check_in=&check_out=
func (h *RoomHandler) AvailableRooms(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := request.AvailableRoomsRequest{
		CheckInDate:  query.Get("check_in"),
		CheckOutDate: query.Get("check_out"),
		Zone:         query.Get("zone"),
		Quality:      query.Get("quality"),
	}
	if g := query.Get("guests"); g != "" {
		req.Guests = utils.ParseInt(g, 1)
	}

	rooms, err := h.service.AvailableRooms(r.Context(), utils.GetCallerFromContext(r.Context()), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "available rooms")
		return
	}

	utils.ResponseSuccess(w, "success", rooms)
}

// GroupSearch handles POST /api/rooms/group-search
func (h *RoomHandler) GroupSearch(w http.ResponseWriter, r *http.Request) {
	var req request.GroupSearchRequest
	if err := decodeJSON(r, &req, false); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.group.Search(r.Context(), utils.GetCallerFromContext(r.Context()), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "group search")
		return
	}

	utils.ResponseSuccess(w, "success", result)
}
