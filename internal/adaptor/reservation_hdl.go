package adaptor

import (
	"errors"
	"io"
	"net/http"

	"capsule-hotel/internal/dto/request"
	"capsule-hotel/internal/usecase"
	"capsule-hotel/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type ReservationHandler struct {
	service usecase.ReservationService
	log     *zap.Logger
}

func NewReservationHandler(service usecase.ReservationService, log *zap.Logger) *ReservationHandler {
	return &ReservationHandler{
		service: service,
		log:     log.With(zap.String("handler", "reservation")),
	}
}

// CreateReservation handles POST /api/reservations
func (h *ReservationHandler) CreateReservation(w http.ResponseWriter, r *http.Request) {
	var req request.CreateReservationRequest
	if err := decodeJSON(r, &req, false); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	res, err := h.service.CreateReservation(r.Context(), utils.GetCallerFromContext(r.Context()), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "create reservation")
		return
	}

	utils.ResponseCreated(w, "Reservation created", res)
}

// CreateGroupReservation handles POST /api/reservations/group
func (h *ReservationHandler) CreateGroupReservation(w http.ResponseWriter, r *http.Request) {
	var req request.CreateGroupReservationRequest
	if err := decodeJSON(r, &req, false); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	res, err := h.service.CreateGroupReservation(r.Context(), utils.GetCallerFromContext(r.Context()), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "create group reservation")
		return
	}

	utils.ResponseCreated(w, "Group reservation created", res)
}

// ListReservations handles GET /api/reservations?page=&per_page=
func (h *ReservationHandler) ListReservations(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := &request.PaginatedRequest{
		Page:    utils.ParseInt(query.Get("page"), 1),
		PerPage: utils.ParseInt(query.Get("per_page"), 10),
	}

	page, err := h.service.ListReservations(r.Context(), utils.GetCallerFromContext(r.Context()), req)
	if err != nil {
		handleServiceError(w, h.log, err, "list reservations")
		return
	}

	utils.ResponseSuccess(w, "success", page)
}

// GetReservation handles GET /api/reservations/{id}
func (h *ReservationHandler) GetReservation(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.GetReservation(r.Context(), utils.GetCallerFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.log, err, "get reservation")
		return
	}

	utils.ResponseSuccess(w, "success", res)
}

// UpdateReservation handles PUT /api/reservations/{id}. Guests and managers
// get different payload shapes; unknown fields are rejected so a guest
// cannot slip in dates or payment status.
func (h *ReservationHandler) UpdateReservation(w http.ResponseWriter, r *http.Request) {
	caller := utils.GetCallerFromContext(r.Context())
	id := chi.URLParam(r, "id")

	if caller.IsManager() {
		var req request.ManagerUpdateRequest
		if err := decodeJSON(r, &req, true); err != nil {
			utils.ResponseBadRequest(w, "Invalid request body", nil)
			return
		}
		res, err := h.service.UpdateAsManager(r.Context(), caller, id, &req)
		if err != nil {
			handleServiceError(w, h.log, err, "update reservation")
			return
		}
		utils.ResponseSuccess(w, "Reservation updated", res)
		return
	}

	var req request.GuestUpdateRequest
	if err := decodeJSON(r, &req, true); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}
	res, err := h.service.UpdateAsGuest(r.Context(), caller, id, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "update reservation")
		return
	}
	utils.ResponseSuccess(w, "Reservation updated", res)
}

// CancelReservation handles POST /api/reservations/{id}/cancel. The body is optional.
func (h *ReservationHandler) CancelReservation(w http.ResponseWriter, r *http.Request) {
	var req request.CancelReservationRequest
	if err := decodeJSON(r, &req, false); err != nil && !errors.Is(err, io.EOF) {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	res, err := h.service.Cancel(r.Context(), utils.GetCallerFromContext(r.Context()), chi.URLParam(r, "id"), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "cancel reservation")
		return
	}

	utils.ResponseSuccess(w, "Reservation cancelled", res)
}

// CheckIn handles POST /api/reservations/{id}/check-in (manager only)
func (h *ReservationHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.CheckIn(r.Context(), utils.GetCallerFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.log, err, "check in")
		return
	}

	utils.ResponseSuccess(w, "Guest checked in", res)
}

// CheckOut handles POST /api/reservations/{id}/check-out (manager only)
func (h *ReservationHandler) CheckOut(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.CheckOut(r.Context(), utils.GetCallerFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.log, err, "check out")
		return
	}

	utils.ResponseSuccess(w, "Guest checked out", res)
}

// UpdateStatus handles PATCH /api/reservations/{id}/status (manager only)
func (h *ReservationHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req request.UpdateStatusRequest
	if err := decodeJSON(r, &req, false); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	res, err := h.service.UpdateStatus(r.Context(), utils.GetCallerFromContext(r.Context()), chi.URLParam(r, "id"), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "update reservation status")
		return
	}

	utils.ResponseSuccess(w, "Reservation status updated", res)
}

// PayReservation handles POST /api/reservations/{id}/pay
func (h *ReservationHandler) PayReservation(w http.ResponseWriter, r *http.Request) {
	var req request.PayReservationRequest
	if err := decodeJSON(r, &req, false); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.service.Pay(r.Context(), utils.GetCallerFromContext(r.Context()), chi.URLParam(r, "id"), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "pay reservation")
		return
	}

	message := "Payment approved"
	if !result.Approved {
		message = "Payment declined"
	}
	utils.ResponseSuccess(w, message, result)
}

// DeleteReservation handles DELETE /api/reservations/{id} (manager only)
func (h *ReservationHandler) DeleteReservation(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), utils.GetCallerFromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, h.log, err, "delete reservation")
		return
	}

	utils.ResponseNoContent(w)
}
