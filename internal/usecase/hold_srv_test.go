package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"capsule-hotel/internal/data/entity"
	"capsule-hotel/internal/dto/request"
	"capsule-hotel/internal/event"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateHold(t *testing.T) {
	env := newTestEnv(t)
	room := env.addRoom("A101", entity.ZoneWomenOnly, entity.QualityGolden)
	ctx := context.Background()

	hold, err := env.svc.Hold.CreateHold(ctx, guest("s1"), holdReq(room, "2026-03-01", "2026-03-03"))
	require.NoError(t, err)

	assert.Equal(t, room.ID.String(), hold.RoomID)
	require.NotNil(t, hold.Room)
	assert.Equal(t, "A101", hold.Room.Code)
	assert.Equal(t, "2026-03-01", hold.CheckInDate)
	assert.Equal(t, "2026-03-03", hold.CheckOutDate)
	assert.Equal(t, entity.HoldStageConfirmation, hold.Stage)
	assert.Equal(t, testStart.Add(5*time.Minute), hold.ExpiresAt)
	assert.Equal(t, []string{event.HoldCreated}, env.events.types())

	// room status is untouched until a reservation exists
	stored, _ := env.repo.Room.FindByID(ctx, room.ID)
	assert.Equal(t, entity.RoomStatusAvailable, stored.Status)
}

func TestCreateHold_PaymentStageTTL(t *testing.T) {
	env := newTestEnv(t)
	room := env.addRoom("A101", entity.ZoneWomenOnly, entity.QualityGolden)

	req := holdReq(room, "2026-03-01", "2026-03-03")
	req.Stage = "payment"
	hold, err := env.svc.Hold.CreateHold(context.Background(), guest("s1"), req)
	require.NoError(t, err)
	assert.Equal(t, testStart.Add(10*time.Minute), hold.ExpiresAt)
}

func TestCreateHold_Validation(t *testing.T) {
	env := newTestEnv(t)
	room := env.addRoom("A101", entity.ZoneWomenOnly, entity.QualityGolden)
	ctx := context.Background()

	tests := []struct {
		name string
		req  *request.CreateHoldRequest
	}{
		{"check-out before check-in", holdReq(room, "2026-03-03", "2026-03-01")},
		{"same day", holdReq(room, "2026-03-01", "2026-03-01")},
		{"bad date", holdReq(room, "03/01/2026", "2026-03-03")},
		{"past", holdReq(room, "2026-02-01", "2026-02-03")},
		{"bad stage", &request.CreateHoldRequest{RoomID: room.ID.String(), CheckInDate: "2026-03-01", CheckOutDate: "2026-03-02", Stage: "lobby"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.svc.Hold.CreateHold(ctx, guest("s1"), tt.req)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}

	_, err := env.svc.Hold.CreateHold(ctx, guest(""), holdReq(room, "2026-03-01", "2026-03-02"))
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCreateHold_UnknownRoom(t *testing.T) {
	env := newTestEnv(t)
	req := &request.CreateHoldRequest{RoomID: uuid.NewString(), CheckInDate: "2026-03-01", CheckOutDate: "2026-03-02"}

	_, err := env.svc.Hold.CreateHold(context.Background(), guest("s1"), req)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateHold_Idempotent(t *testing.T) {
	env := newTestEnv(t)
	room := env.addRoom("A101", entity.ZoneWomenOnly, entity.QualityGolden)
	ctx := context.Background()
	caller := guest("s1")

	first, err := env.svc.Hold.CreateHold(ctx, caller, holdReq(room, "2026-03-01", "2026-03-03"))
	require.NoError(t, err)

	env.clock.Advance(time.Minute)
	second, err := env.svc.Hold.CreateHold(ctx, caller, holdReq(room, "2026-03-01", "2026-03-03"))
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.ExpiresAt, second.ExpiresAt, "existing hold is returned unchanged")

	holds, err := env.svc.Hold.ListSessionHolds(ctx, caller)
	require.NoError(t, err)
	assert.Len(t, holds, 1)
}

func TestCreateHold_SameSessionNewDatesSupersedes(t *testing.T) {
	env := newTestEnv(t)
	room := env.addRoom("A101", entity.ZoneWomenOnly, entity.QualityGolden)
	ctx := context.Background()
	caller := guest("s1")

	first, err := env.svc.Hold.CreateHold(ctx, caller, holdReq(room, "2026-03-01", "2026-03-03"))
	require.NoError(t, err)
	second, err := env.svc.Hold.CreateHold(ctx, caller, holdReq(room, "2026-03-02", "2026-03-04"))
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	holds, err := env.svc.Hold.ListSessionHolds(ctx, caller)
	require.NoError(t, err)
	require.Len(t, holds, 1)
	assert.Equal(t, second.ID, holds[0].ID)
}

func TestCreateHold_ConflictWithOtherSession(t *testing.T) {
	env := newTestEnv(t)
	room := env.addRoom("A101", entity.ZoneWomenOnly, entity.QualityGolden)
	ctx := context.Background()

	_, err := env.svc.Hold.CreateHold(ctx, guest("s1"), holdReq(room, "2026-03-01", "2026-03-03"))
	require.NoError(t, err)

	_, err = env.svc.Hold.CreateHold(ctx, guest("s2"), holdReq(room, "2026-03-02", "2026-03-04"))
	assert.ErrorIs(t, err, ErrConflict)

	// touching ranges do not overlap
	_, err = env.svc.Hold.CreateHold(ctx, guest("s2"), holdReq(room, "2026-03-03", "2026-03-04"))
	assert.NoError(t, err)
}

func TestCreateHold_ConcurrentSessionsExactlyOneWins(t *testing.T) {
	env := newTestEnv(t)
	room := env.addRoom("A101", entity.ZoneWomenOnly, entity.QualityGolden)
	ctx := context.Background()

	const n = 8
	var (
		wg        sync.WaitGroup
		start     = make(chan struct{})
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, err := env.svc.Hold.CreateHold(ctx, guest(uuid.NewString()), holdReq(room, "2026-03-01", "2026-03-03"))
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successes++
			} else if assert.ErrorIs(t, err, ErrConflict) {
				conflicts++
			}
		}(i)
	}
	close(start)
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, n-1, conflicts)
}

func TestCreateHold_ExpiredHoldIsInactiveBeforeSweep(t *testing.T) {
	env := newTestEnv(t)
	room := env.addRoom("A101", entity.ZoneWomenOnly, entity.QualityGolden)
	ctx := context.Background()

	stale, err := env.svc.Hold.CreateHold(ctx, guest("s1"), holdReq(room, "2026-03-01", "2026-03-03"))
	require.NoError(t, err)

	env.clock.Advance(5*time.Minute + time.Second)

	fresh, err := env.svc.Hold.CreateHold(ctx, guest("s2"), holdReq(room, "2026-03-01", "2026-03-03"))
	require.NoError(t, err)
	assert.NotEqual(t, stale.ID, fresh.ID)

	n, err := env.svc.Hold.CleanupExpiredHolds(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	gone, err := env.repo.Hold.FindByID(ctx, uuid.MustParse(stale.ID))
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestExtendHold(t *testing.T) {
	env := newTestEnv(t)
	room := env.addRoom("A101", entity.ZoneWomenOnly, entity.QualityGolden)
	ctx := context.Background()
	owner := guest("s1")

	hold, err := env.svc.Hold.CreateHold(ctx, owner, holdReq(room, "2026-03-01", "2026-03-03"))
	require.NoError(t, err)

	t.Run("wrong session", func(t *testing.T) {
		_, err := env.svc.Hold.ExtendHold(ctx, guest("s2"), hold.ID, &request.ExtendHoldRequest{})
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("unknown hold", func(t *testing.T) {
		_, err := env.svc.Hold.ExtendHold(ctx, owner, uuid.NewString(), &request.ExtendHoldRequest{})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("refresh same stage", func(t *testing.T) {
		env.clock.Advance(2 * time.Minute)
		got, err := env.svc.Hold.ExtendHold(ctx, owner, hold.ID, &request.ExtendHoldRequest{})
		require.NoError(t, err)
		assert.Equal(t, entity.HoldStageConfirmation, got.Stage)
		assert.Equal(t, env.clock.Now().Add(5*time.Minute), got.ExpiresAt)
	})

	t.Run("advance to payment", func(t *testing.T) {
		got, err := env.svc.Hold.ExtendHold(ctx, owner, hold.ID, &request.ExtendHoldRequest{Stage: "payment"})
		require.NoError(t, err)
		assert.Equal(t, entity.HoldStagePayment, got.Stage)
		assert.Equal(t, env.clock.Now().Add(10*time.Minute), got.ExpiresAt)
	})

	t.Run("expired", func(t *testing.T) {
		env.clock.Advance(11 * time.Minute)
		_, err := env.svc.Hold.ExtendHold(ctx, owner, hold.ID, &request.ExtendHoldRequest{})
		assert.ErrorIs(t, err, ErrGone)
	})
}

func TestReleaseHold(t *testing.T) {
	env := newTestEnv(t)
	room := env.addRoom("A101", entity.ZoneWomenOnly, entity.QualityGolden)
	ctx := context.Background()
	owner := guest("s1")

	hold, err := env.svc.Hold.CreateHold(ctx, owner, holdReq(room, "2026-03-01", "2026-03-03"))
	require.NoError(t, err)

	assert.ErrorIs(t, env.svc.Hold.ReleaseHold(ctx, guest("s2"), hold.ID), ErrForbidden)

	require.NoError(t, env.svc.Hold.ReleaseHold(ctx, owner, hold.ID))
	// a second release from a racing teardown path is silent
	require.NoError(t, env.svc.Hold.ReleaseHold(ctx, owner, hold.ID))
	require.NoError(t, env.svc.Hold.ReleaseHold(ctx, guest("s2"), hold.ID))

	assert.Equal(t, []string{event.HoldCreated, event.HoldReleased}, env.events.types())

	_, err = env.svc.Hold.CreateHold(ctx, guest("s2"), holdReq(room, "2026-03-01", "2026-03-03"))
	assert.NoError(t, err)
}

func TestValidateHold(t *testing.T) {
	env := newTestEnv(t)
	room := env.addRoom("A101", entity.ZoneWomenOnly, entity.QualityGolden)
	ctx := context.Background()
	owner := guest("s1")

	hold, err := env.svc.Hold.CreateHold(ctx, owner, holdReq(room, "2026-03-01", "2026-03-03"))
	require.NoError(t, err)

	valid, err := env.svc.Hold.ValidateHold(ctx, owner, hold.ID)
	require.NoError(t, err)
	assert.True(t, valid)

	valid, _ = env.svc.Hold.ValidateHold(ctx, guest("s2"), hold.ID)
	assert.False(t, valid)

	valid, _ = env.svc.Hold.ValidateHold(ctx, owner, uuid.NewString())
	assert.False(t, valid)

	valid, _ = env.svc.Hold.ValidateHold(ctx, owner, "not-a-uuid")
	assert.False(t, valid)

	env.clock.Advance(5 * time.Minute)
	valid, _ = env.svc.Hold.ValidateHold(ctx, owner, hold.ID)
	assert.False(t, valid, "a hold is inactive once now reaches its expiry")
}

func TestConvertedHoldIsTerminal(t *testing.T) {
	env := newTestEnv(t)
	room := env.addRoom("A101", entity.ZoneWomenOnly, entity.QualityGolden)
	ctx := context.Background()
	owner := guest("s1")

	hold, err := env.svc.Hold.CreateHold(ctx, owner, holdReq(room, "2026-03-01", "2026-03-03"))
	require.NoError(t, err)
	res, err := env.svc.Reservation.CreateReservation(ctx, owner, env.reservationReq(t, room, "2026-03-01", "2026-03-03", &hold.ID))
	require.NoError(t, err)

	extended, err := env.svc.Hold.ExtendHold(ctx, owner, hold.ID, &request.ExtendHoldRequest{Stage: "payment"})
	require.NoError(t, err)
	assert.True(t, extended.Converted)
	assert.Equal(t, hold.ExpiresAt, extended.ExpiresAt, "extend on a converted hold changes nothing")

	valid, _ := env.svc.Hold.ValidateHold(ctx, owner, hold.ID)
	assert.False(t, valid)

	require.NoError(t, env.svc.Hold.ReleaseHold(ctx, owner, hold.ID))
	env.clock.Advance(time.Hour)
	n, err := env.svc.Hold.CleanupExpiredHolds(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	stored, err := env.repo.Hold.FindByID(ctx, uuid.MustParse(hold.ID))
	require.NoError(t, err)
	require.NotNil(t, stored)
	require.NotNil(t, stored.ReservationID)
	assert.Equal(t, res.ID, stored.ReservationID.String())

	kept, err := env.svc.Reservation.GetReservation(ctx, owner, res.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ReservationStatusPending, kept.Status)
}
