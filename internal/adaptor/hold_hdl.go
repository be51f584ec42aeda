package adaptor

import (
	"context"
	"errors"
	"io"
	"net/http"

	"capsule-hotel/internal/dto/request"
	"capsule-hotel/internal/dto/response"
	"capsule-hotel/internal/usecase"
	"capsule-hotel/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Sweeper runs one hold cleanup on demand.
type Sweeper interface {
	Sweep(ctx context.Context) (int64, error)
}

type HoldHandler struct {
	service usecase.HoldService
	sweeper Sweeper
	log     *zap.Logger
}

func NewHoldHandler(service usecase.HoldService, sweeper Sweeper, log *zap.Logger) *HoldHandler {
	return &HoldHandler{
		service: service,
		sweeper: sweeper,
		log:     log.With(zap.String("handler", "hold")),
	}
}

// CreateHold handles POST /api/holds
func (h *HoldHandler) CreateHold(w http.ResponseWriter, r *http.Request) {
	var req request.CreateHoldRequest
	if err := decodeJSON(r, &req, false); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	hold, err := h.service.CreateHold(r.Context(), utils.GetCallerFromContext(r.Context()), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "create hold")
		return
	}

	utils.ResponseCreated(w, "Room held", hold)
}

// ExtendHold handles PATCH /api/holds/{id}/extend. The body is optional.
func (h *HoldHandler) ExtendHold(w http.ResponseWriter, r *http.Request) {
	var req request.ExtendHoldRequest
	if err := decodeJSON(r, &req, false); err != nil && !errors.Is(err, io.EOF) {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	hold, err := h.service.ExtendHold(r.Context(), utils.GetCallerFromContext(r.Context()), chi.URLParam(r, "id"), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "extend hold")
		return
	}

	utils.ResponseSuccess(w, "Hold extended", hold)
}

// ReleaseHold handles DELETE /api/holds/{id}
func (h *HoldHandler) ReleaseHold(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ReleaseHold(r.Context(), utils.GetCallerFromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, h.log, err, "release hold")
		return
	}

	utils.ResponseNoContent(w)
}

// ListSessionHolds handles GET /api/holds/session
func (h *HoldHandler) ListSessionHolds(w http.ResponseWriter, r *http.Request) {
	holds, err := h.service.ListSessionHolds(r.Context(), utils.GetCallerFromContext(r.Context()))
	if err != nil {
		handleServiceError(w, h.log, err, "list session holds")
		return
	}

	utils.ResponseSuccess(w, "success", holds)
}

// ValidateHold handles GET /api/holds/{id}/validate
func (h *HoldHandler) ValidateHold(w http.ResponseWriter, r *http.Request) {
	valid, err := h.service.ValidateHold(r.Context(), utils.GetCallerFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.log, err, "validate hold")
		return
	}

	utils.ResponseSuccess(w, "success", response.HoldValidationResponse{Valid: valid})
}

// CleanupHolds handles POST /api/holds/cleanup (manager only)
func (h *HoldHandler) CleanupHolds(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.sweeper.Sweep(r.Context())
	if err != nil {
		handleServiceError(w, h.log, err, "cleanup holds")
		return
	}

	utils.ResponseSuccess(w, "Expired holds removed", response.CleanupResponse{Deleted: deleted})
}
