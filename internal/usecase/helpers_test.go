package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"capsule-hotel/internal/data/entity"
	"capsule-hotel/internal/data/memory"
	"capsule-hotel/internal/data/repository"
	"capsule-hotel/internal/dto/request"
	"capsule-hotel/internal/event"
	"capsule-hotel/pkg/clock"
	"capsule-hotel/pkg/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testStart = time.Date(2026, 2, 20, 9, 0, 0, 0, time.UTC)

var testConfig = &utils.Config{
	Hold: utils.HoldConfig{
		ConfirmationTTL: 5 * time.Minute,
		PaymentTTL:      10 * time.Minute,
		SweepInterval:   time.Minute,
	},
	Booking: utils.BookingConfig{CheckInBuffer: 2 * time.Hour},
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []event.Event
}

func (p *recordingPublisher) Publish(_ context.Context, evt event.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type testEnv struct {
	store    *memory.Store
	repo     *repository.Repository
	clock    *clock.FakeClock
	events   *recordingPublisher
	offering *entity.Offering
	svc      *Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := memory.NewStore()
	env := &testEnv{
		store:  store,
		repo:   store.Repository(),
		clock:  clock.Fake(testStart),
		events: &recordingPublisher{},
		offering: &entity.Offering{
			ID:          uuid.New(),
			Name:        "Standard capsule",
			NightlyRate: 40,
			AddOns: []entity.AddOn{
				{ID: uuid.New(), Name: "Breakfast", Price: 8, PriceType: entity.PriceTypePerGuestNight},
				{ID: uuid.New(), Name: "Late checkout", Price: 15, PriceType: entity.PriceTypePerStay},
			},
		},
	}
	store.AddOffering(env.offering)
	env.svc = NewService(env.repo, testConfig, zap.NewNop(), env.options()...)
	return env
}

func (e *testEnv) options() []Option {
	return []Option{WithClock(e.clock), WithEventPublisher(e.events)}
}

func (e *testEnv) addRoom(code string, zone entity.RoomZone, quality entity.RoomQuality) *entity.Room {
	return e.store.AddRoom(&entity.Room{
		Code:       code,
		Zone:       zone,
		Quality:    quality,
		OfferingID: e.offering.ID,
	})
}

func guest(session string) utils.Caller {
	id := uuid.New()
	return utils.Caller{SessionID: session, UserID: &id, Role: utils.RoleGuest}
}

func manager() utils.Caller {
	id := uuid.New()
	return utils.Caller{SessionID: "front-desk", UserID: &id, Role: utils.RoleManager}
}

func holdReq(room *entity.Room, in, out string) *request.CreateHoldRequest {
	return &request.CreateHoldRequest{RoomID: room.ID.String(), CheckInDate: in, CheckOutDate: out}
}

// at returns a timestamp on the given YYYY-MM-DD day at hour:00 UTC.
func at(t *testing.T, day string, hour int) time.Time {
	t.Helper()
	d, err := time.Parse(utils.DateLayout, day)
	require.NoError(t, err)
	return d.Add(time.Duration(hour) * time.Hour)
}

func (e *testEnv) reservationReq(t *testing.T, room *entity.Room, in, out string, holdID *string) *request.CreateReservationRequest {
	return &request.CreateReservationRequest{
		RoomID:         room.ID.String(),
		OfferingID:     e.offering.ID.String(),
		HoldID:         holdID,
		GuestName:      "Aiko Tanaka",
		GuestEmail:     "aiko@example.com",
		GuestPhone:     "+819012345678",
		CheckIn:        at(t, in, 15),
		CheckOut:       at(t, out, 11),
		NumberOfGuests: 1,
	}
}
