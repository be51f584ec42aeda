package adaptor

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"capsule-hotel/internal/data/entity"
	"capsule-hotel/internal/dto/request"
	"capsule-hotel/internal/dto/response"
	"capsule-hotel/internal/usecase"
	"capsule-hotel/pkg/middleware"
	"capsule-hotel/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newReservationRouter(svc *mockReservationService) *chi.Mux {
	h := NewReservationHandler(svc, zap.NewNop())
	r := chi.NewRouter()
	r.Use(middleware.Identity(zap.NewNop()))
	r.Post("/reservations", h.CreateReservation)
	r.Get("/reservations", h.ListReservations)
	r.Put("/reservations/{id}", h.UpdateReservation)
	r.Post("/reservations/{id}/cancel", h.CancelReservation)
	r.Post("/reservations/{id}/check-in", h.CheckIn)
	r.Post("/reservations/{id}/pay", h.PayReservation)
	r.Delete("/reservations/{id}", h.DeleteReservation)
	return r
}

func serve(r http.Handler, method, path, body, role string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(middleware.HeaderSessionID, "S1")
	req.Header.Set(middleware.HeaderUserID, "7d4c1c38-9b53-4f0e-bb0e-5b0f0c6a0a01")
	if role != "" {
		req.Header.Set(middleware.HeaderUserRole, role)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestReservationHandler_CreateErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"validation", &usecase.Error{Kind: usecase.ErrValidation, Message: "validation failed", Fields: map[string]string{"guest_email": "Invalid email format"}}, http.StatusBadRequest},
		{"overlap", &usecase.Error{Kind: usecase.ErrConflict, Message: "room A101 is already booked for the selected dates"}, http.StatusConflict},
		{"expired hold", &usecase.Error{Kind: usecase.ErrGone, Message: "hold has expired, please search again"}, http.StatusGone},
		{"foreign hold", &usecase.Error{Kind: usecase.ErrForbidden, Message: "hold belongs to a different session"}, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockReservationService{}
			svc.On("CreateReservation", mock.Anything, mock.Anything, mock.Anything).Return(nil, tt.err).Once()

			rec := serve(newReservationRouter(svc), http.MethodPost, "/reservations", `{"room_id":"x"}`, "")

			assert.Equal(t, tt.wantStatus, rec.Code)
			env := decodeEnvelope(t, rec)
			assert.False(t, env.Status)
			if tt.wantStatus == http.StatusBadRequest {
				assert.Equal(t, "Invalid email format", env.Errors["guest_email"])
			}
		})
	}
}

func TestReservationHandler_CreatePassesCaller(t *testing.T) {
	svc := &mockReservationService{}
	svc.On("CreateReservation", mock.Anything, mock.MatchedBy(func(c utils.Caller) bool {
		return c.SessionID == "S1" && c.UserID != nil && c.Role == utils.RoleGuest
	}), mock.MatchedBy(func(req *request.CreateReservationRequest) bool {
		return req.NumberOfGuests == 1 && req.CheckOut.After(req.CheckIn)
	})).Return(&response.ReservationResponse{ID: "r1", Status: entity.ReservationStatusPending}, nil).Once()

	body := `{"room_id":"a","offering_id":"b","guest_name":"Aiko","guest_email":"a@b.co","guest_phone":"+819012345678",
		"check_in":"2026-03-01T15:00:00Z","check_out":"2026-03-03T11:00:00Z","number_of_guests":1}`
	rec := serve(newReservationRouter(svc), http.MethodPost, "/reservations", body, "")

	require.Equal(t, http.StatusCreated, rec.Code)
	var got response.ReservationResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &got))
	assert.Equal(t, "r1", got.ID)
	svc.AssertExpectations(t)
}

func TestReservationHandler_UpdateByRole(t *testing.T) {
	t.Run("guest payload", func(t *testing.T) {
		svc := &mockReservationService{}
		svc.On("UpdateAsGuest", mock.Anything, mock.Anything, "r1", mock.MatchedBy(func(req *request.GuestUpdateRequest) bool {
			return req.GuestName != nil && *req.GuestName == "Aiko T."
		})).Return(&response.ReservationResponse{ID: "r1"}, nil).Once()

		rec := serve(newReservationRouter(svc), http.MethodPut, "/reservations/r1", `{"guest_name":"Aiko T."}`, "guest")
		assert.Equal(t, http.StatusOK, rec.Code)
		svc.AssertExpectations(t)
	})

	t.Run("guest sending manager fields", func(t *testing.T) {
		svc := &mockReservationService{}
		rec := serve(newReservationRouter(svc), http.MethodPut, "/reservations/r1", `{"number_of_guests":2}`, "guest")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		svc.AssertNotCalled(t, "UpdateAsGuest", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("manager payload", func(t *testing.T) {
		svc := &mockReservationService{}
		svc.On("UpdateAsManager", mock.Anything, mock.Anything, "r1", mock.MatchedBy(func(req *request.ManagerUpdateRequest) bool {
			return req.NumberOfGuests != nil && *req.NumberOfGuests == 2 && req.GuestName != nil
		})).Return(&response.ReservationResponse{ID: "r1"}, nil).Once()

		rec := serve(newReservationRouter(svc), http.MethodPut, "/reservations/r1", `{"guest_name":"Aiko","number_of_guests":2}`, "manager")
		assert.Equal(t, http.StatusOK, rec.Code)
		svc.AssertExpectations(t)
	})
}

func TestReservationHandler_StateErrors(t *testing.T) {
	svc := &mockReservationService{}
	svc.On("Cancel", mock.Anything, mock.Anything, "r1", mock.Anything).
		Return(nil, &usecase.Error{Kind: usecase.ErrInvalidState, Message: "reservation is already cancelled"}).Once()
	svc.On("CheckIn", mock.Anything, mock.Anything, "r1").
		Return(nil, &usecase.Error{Kind: usecase.ErrNotFound, Message: "reservation r1 not found"}).Once()

	router := newReservationRouter(svc)

	rec := serve(router, http.MethodPost, "/reservations/r1/cancel", "", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "reservation is already cancelled", decodeEnvelope(t, rec).Message)

	rec = serve(router, http.MethodPost, "/reservations/r1/check-in", "", "manager")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	svc.AssertExpectations(t)
}

func TestReservationHandler_Pay(t *testing.T) {
	svc := &mockReservationService{}
	svc.On("Pay", mock.Anything, mock.Anything, "r1", &request.PayReservationRequest{Method: "declined"}).
		Return(&response.PaymentResponse{ReservationID: "r1", Approved: false, PaymentStatus: entity.PaymentStatusFailed}, nil).Once()

	rec := serve(newReservationRouter(svc), http.MethodPost, "/reservations/r1/pay", `{"method":"declined"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Payment declined", decodeEnvelope(t, rec).Message)
}

func TestReservationHandler_ListAndDelete(t *testing.T) {
	svc := &mockReservationService{}
	svc.On("ListReservations", mock.Anything, mock.Anything, &request.PaginatedRequest{Page: 2, PerPage: 5}).
		Return(response.NewPaginatedResponse([]response.ReservationResponse{}, 2, 5, 0), nil).Once()
	svc.On("Delete", mock.Anything, mock.Anything, "r1").Return(nil).Once()

	router := newReservationRouter(svc)

	rec := serve(router, http.MethodGet, "/reservations?page=2&per_page=5", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(router, http.MethodDelete, "/reservations/r1", "", "manager")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	svc.AssertExpectations(t)
}
