package adaptor

import (
	"context"

	"capsule-hotel/internal/dto/request"
	"capsule-hotel/internal/dto/response"
	"capsule-hotel/pkg/utils"

	"github.com/stretchr/testify/mock"
)

type mockHoldService struct {
	mock.Mock
}

func (m *mockHoldService) CreateHold(ctx context.Context, caller utils.Caller, req *request.CreateHoldRequest) (*response.HoldResponse, error) {
	args := m.Called(ctx, caller, req)
	hold, _ := args.Get(0).(*response.HoldResponse)
	return hold, args.Error(1)
}

func (m *mockHoldService) ExtendHold(ctx context.Context, caller utils.Caller, holdID string, req *request.ExtendHoldRequest) (*response.HoldResponse, error) {
	args := m.Called(ctx, caller, holdID, req)
	hold, _ := args.Get(0).(*response.HoldResponse)
	return hold, args.Error(1)
}

func (m *mockHoldService) ReleaseHold(ctx context.Context, caller utils.Caller, holdID string) error {
	return m.Called(ctx, caller, holdID).Error(0)
}

func (m *mockHoldService) ValidateHold(ctx context.Context, caller utils.Caller, holdID string) (bool, error) {
	args := m.Called(ctx, caller, holdID)
	return args.Bool(0), args.Error(1)
}

func (m *mockHoldService) ListSessionHolds(ctx context.Context, caller utils.Caller) ([]response.HoldResponse, error) {
	args := m.Called(ctx, caller)
	holds, _ := args.Get(0).([]response.HoldResponse)
	return holds, args.Error(1)
}

func (m *mockHoldService) CleanupExpiredHolds(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type mockSweeper struct {
	mock.Mock
}

func (m *mockSweeper) Sweep(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type mockReservationService struct {
	mock.Mock
}

func (m *mockReservationService) reservation(args mock.Arguments) (*response.ReservationResponse, error) {
	res, _ := args.Get(0).(*response.ReservationResponse)
	return res, args.Error(1)
}

func (m *mockReservationService) CreateReservation(ctx context.Context, caller utils.Caller, req *request.CreateReservationRequest) (*response.ReservationResponse, error) {
	return m.reservation(m.Called(ctx, caller, req))
}

func (m *mockReservationService) CreateGroupReservation(ctx context.Context, caller utils.Caller, req *request.CreateGroupReservationRequest) (*response.GroupReservationResponse, error) {
	args := m.Called(ctx, caller, req)
	res, _ := args.Get(0).(*response.GroupReservationResponse)
	return res, args.Error(1)
}

func (m *mockReservationService) GetReservation(ctx context.Context, caller utils.Caller, id string) (*response.ReservationResponse, error) {
	return m.reservation(m.Called(ctx, caller, id))
}

func (m *mockReservationService) ListReservations(ctx context.Context, caller utils.Caller, req *request.PaginatedRequest) (*response.PaginatedResponse[response.ReservationResponse], error) {
	args := m.Called(ctx, caller, req)
	page, _ := args.Get(0).(*response.PaginatedResponse[response.ReservationResponse])
	return page, args.Error(1)
}

func (m *mockReservationService) Confirm(ctx context.Context, caller utils.Caller, id string) (*response.ReservationResponse, error) {
	return m.reservation(m.Called(ctx, caller, id))
}

func (m *mockReservationService) Cancel(ctx context.Context, caller utils.Caller, id string, req *request.CancelReservationRequest) (*response.ReservationResponse, error) {
	return m.reservation(m.Called(ctx, caller, id, req))
}

func (m *mockReservationService) CheckIn(ctx context.Context, caller utils.Caller, id string) (*response.ReservationResponse, error) {
	return m.reservation(m.Called(ctx, caller, id))
}

func (m *mockReservationService) CheckOut(ctx context.Context, caller utils.Caller, id string) (*response.ReservationResponse, error) {
	return m.reservation(m.Called(ctx, caller, id))
}

func (m *mockReservationService) UpdateStatus(ctx context.Context, caller utils.Caller, id string, req *request.UpdateStatusRequest) (*response.ReservationResponse, error) {
	return m.reservation(m.Called(ctx, caller, id, req))
}

func (m *mockReservationService) UpdateAsGuest(ctx context.Context, caller utils.Caller, id string, req *request.GuestUpdateRequest) (*response.ReservationResponse, error) {
	return m.reservation(m.Called(ctx, caller, id, req))
}

func (m *mockReservationService) UpdateAsManager(ctx context.Context, caller utils.Caller, id string, req *request.ManagerUpdateRequest) (*response.ReservationResponse, error) {
	return m.reservation(m.Called(ctx, caller, id, req))
}

func (m *mockReservationService) Delete(ctx context.Context, caller utils.Caller, id string) error {
	return m.Called(ctx, caller, id).Error(0)
}

func (m *mockReservationService) Pay(ctx context.Context, caller utils.Caller, id string, req *request.PayReservationRequest) (*response.PaymentResponse, error) {
	args := m.Called(ctx, caller, id, req)
	res, _ := args.Get(0).(*response.PaymentResponse)
	return res, args.Error(1)
}
