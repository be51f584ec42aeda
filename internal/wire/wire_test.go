package wire

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"capsule-hotel/internal/data/entity"
	"capsule-hotel/internal/data/memory"
	"capsule-hotel/internal/dto/response"
	"capsule-hotel/internal/usecase"
	"capsule-hotel/pkg/clock"
	"capsule-hotel/pkg/middleware"
	"capsule-hotel/pkg/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type api struct {
	t        *testing.T
	router   http.Handler
	store    *memory.Store
	offering *entity.Offering
}

func newAPI(t *testing.T) *api {
	store := memory.NewStore()
	offering := store.SeedDemo()

	config := &utils.Config{
		Hold:    utils.HoldConfig{ConfirmationTTL: 5 * time.Minute, PaymentTTL: 10 * time.Minute, SweepInterval: time.Minute},
		Booking: utils.BookingConfig{CheckInBuffer: 2 * time.Hour},
	}
	fake := clock.Fake(time.Date(2026, 2, 20, 9, 0, 0, 0, time.UTC))
	service := usecase.NewService(store.Repository(), config, zap.NewNop(), usecase.WithClock(fake))

	return &api{t: t, router: Wiring(service, zap.NewNop()).Router, store: store, offering: offering}
}

type call struct {
	method  string
	path    string
	body    string
	session string
	userID  string
	role    string
}

func (a *api) do(c call) (*httptest.ResponseRecorder, utils.Response) {
	a.t.Helper()
	req := httptest.NewRequest(c.method, c.path, strings.NewReader(c.body))
	if c.session != "" {
		req.Header.Set(middleware.HeaderSessionID, c.session)
	}
	if c.userID != "" {
		req.Header.Set(middleware.HeaderUserID, c.userID)
	}
	if c.role != "" {
		req.Header.Set(middleware.HeaderUserRole, c.role)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)

	var env utils.Response
	if rec.Body.Len() > 0 && strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func decodeData[T any](t *testing.T, env utils.Response) T {
	t.Helper()
	raw, err := json.Marshal(env.Data)
	require.NoError(t, err)
	var out T
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func (a *api) roomID(code string) string {
	a.t.Helper()
	_, env := a.do(call{method: http.MethodGet, path: "/api/rooms"})
	for _, r := range decodeData[[]response.RoomResponse](a.t, env) {
		if r.Code == code {
			return r.ID
		}
	}
	a.t.Fatalf("room %s not seeded", code)
	return ""
}

func TestHealthAndCORS(t *testing.T) {
	a := newAPI(t)

	rec, _ := a.do(call{method: http.MethodGet, path: "/health"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())

	rec, _ = a.do(call{method: http.MethodOptions, path: "/api/holds"})
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), middleware.HeaderSessionID)
}

func TestRoutesRequireIdentity(t *testing.T) {
	a := newAPI(t)

	rec, _ := a.do(call{method: http.MethodPost, path: "/api/holds", body: `{}`})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = a.do(call{method: http.MethodPost, path: "/api/holds/cleanup", session: "S1"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, env := a.do(call{method: http.MethodPost, path: "/api/holds/cleanup", role: "manager"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 0, decodeData[response.CleanupResponse](t, env).Deleted)

	rec, _ = a.do(call{method: http.MethodGet, path: "/api/rooms", userID: "not-a-uuid"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHoldToReservationOverHTTP(t *testing.T) {
	a := newAPI(t)
	a101 := a.roomID("A101")
	s1User := uuid.NewString()

	holdBody := `{"room_id":"` + a101 + `","check_in_date":"2026-03-01","check_out_date":"2026-03-03"}`
	rec, env := a.do(call{method: http.MethodPost, path: "/api/holds", body: holdBody, session: "S1", userID: s1User})
	require.Equal(t, http.StatusCreated, rec.Code, env.Message)
	hold := decodeData[response.HoldResponse](t, env)

	rec, _ = a.do(call{method: http.MethodPost, path: "/api/holds", session: "S2",
		body: `{"room_id":"` + a101 + `","check_in_date":"2026-03-02","check_out_date":"2026-03-04"}`})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, env = a.do(call{method: http.MethodGet, path: "/api/holds/" + hold.ID + "/validate", session: "S1"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeData[response.HoldValidationResponse](t, env).Valid)

	rec, env = a.do(call{method: http.MethodGet, path: "/api/rooms/available?check_in=2026-03-01&check_out=2026-03-03&zone=women_only&quality=classic"})
	require.Equal(t, http.StatusOK, rec.Code)
	rooms := decodeData[[]response.RoomResponse](t, env)
	require.Len(t, rooms, 1, "anonymous callers see the held room as taken")
	assert.Equal(t, "A102", rooms[0].Code)

	resBody := `{"room_id":"` + a101 + `","offering_id":"` + a.offering.ID.String() + `","hold_id":"` + hold.ID + `",
		"guest_name":"Aiko Tanaka","guest_email":"aiko@example.com","guest_phone":"+819012345678",
		"check_in":"2026-03-01T15:00:00Z","check_out":"2026-03-03T11:00:00Z","number_of_guests":1}`
	rec, env = a.do(call{method: http.MethodPost, path: "/api/reservations", body: resBody, session: "S1", userID: s1User})
	require.Equal(t, http.StatusCreated, rec.Code, env.Message)
	res := decodeData[response.ReservationResponse](t, env)
	assert.Equal(t, entity.RoomStatusReserved, res.Room.Status)

	rec, _ = a.do(call{method: http.MethodPost, path: "/api/reservations", body: resBody, session: "S1", userID: s1User})
	assert.Equal(t, http.StatusGone, rec.Code)

	rec, _ = a.do(call{method: http.MethodGet, path: "/api/reservations/" + res.ID, session: "S2", userID: uuid.NewString()})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = a.do(call{method: http.MethodPost, path: "/api/reservations/" + res.ID + "/check-in", session: "S1", userID: s1User})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, env = a.do(call{method: http.MethodPost, path: "/api/reservations/" + res.ID + "/cancel", body: `{"reason":"plans changed"}`, session: "S1", userID: s1User})
	require.Equal(t, http.StatusOK, rec.Code, env.Message)
	assert.Equal(t, entity.ReservationStatusCancelled, decodeData[response.ReservationResponse](t, env).Status)

	rec, _ = a.do(call{method: http.MethodPost, path: "/api/reservations/" + res.ID + "/cancel", session: "S1", userID: s1User})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec, _ = a.do(call{method: http.MethodDelete, path: "/api/reservations/" + res.ID, role: "manager"})
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestGroupSearchOverHTTP(t *testing.T) {
	a := newAPI(t)

	body := `{"check_in":"2026-03-01","check_out":"2026-03-03","proximity_by_floor":{"couples":true},
		"members":[{"member_id":"m1","quality":"golden","guests":2},{"member_id":"m2","quality":"golden","guests":2},
		{"member_id":"m3","quality":"golden","guests":2}]}`
	rec, env := a.do(call{method: http.MethodPost, path: "/api/rooms/group-search", body: body, session: "S1"})
	require.Equal(t, http.StatusOK, rec.Code, env.Message)

	got := decodeData[response.GroupSearchResponse](t, env)
	require.Len(t, got.Primary, 2)
	assert.Equal(t, "C105", got.Primary[0].RoomCode)
	assert.Equal(t, "C106", got.Primary[1].RoomCode)
	require.Len(t, got.Recommendations, 1)
	assert.Equal(t, usecase.RecommendationUnavailable, got.Recommendations[0].Status)
	assert.Len(t, got.Recommendations[0].Alternatives, 4)
}
