package usecase

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"capsule-hotel/internal/data/entity"
	"capsule-hotel/internal/data/repository"
	"capsule-hotel/internal/dto/request"
	"capsule-hotel/internal/dto/response"
	"capsule-hotel/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	RecommendationUnavailable      = "unavailable"
	RecommendationCapacityExceeded = "capacity_exceeded"
)

// GroupService proposes a room per member. It is advisory and places no
// holds; callers create holds one by one from a single session.
type GroupService interface {
	Search(ctx context.Context, caller utils.Caller, req *request.GroupSearchRequest) (*response.GroupSearchResponse, error)
}

type groupService struct {
	repo *repository.Repository
	opts *options
	log  *zap.Logger
}

func NewGroupService(repo *repository.Repository, log *zap.Logger, opts ...Option) GroupService {
	return &groupService{
		repo: repo,
		opts: buildOptions(log, opts),
		log:  log.With(zap.String("service", "group")),
	}
}

type groupMember struct {
	id      string
	quality entity.RoomQuality
	floor   entity.RoomZone
	guests  int
}

// resolveFloor: explicit floor, else couples for two guests, else business.
func resolveFloor(m request.GroupMemberRequest) groupMember {
	gm := groupMember{id: m.MemberID, quality: entity.RoomQuality(m.Quality), guests: m.Guests}
	if gm.guests == 0 {
		gm.guests = 1
	}
	switch {
	case m.Floor != nil:
		gm.floor = entity.RoomZone(*m.Floor)
	case gm.guests == 2:
		gm.floor = entity.ZoneCouples
	default:
		gm.floor = entity.ZoneBusiness
	}
	return gm
}

func (s *groupService) Search(ctx context.Context, caller utils.Caller, req *request.GroupSearchRequest) (*response.GroupSearchResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, validationError(errs)
	}
	from, to, err := parseDayRange(req.CheckInDate, req.CheckOutDate, s.opts.loc)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(req.Members))
	var floors []entity.RoomZone
	byFloor := make(map[entity.RoomZone][]groupMember)
	for _, m := range req.Members {
		if seen[m.MemberID] {
			return nil, newError(ErrValidation, "duplicate member_id %s", m.MemberID)
		}
		seen[m.MemberID] = true

		gm := resolveFloor(m)
		if _, ok := byFloor[gm.floor]; !ok {
			floors = append(floors, gm.floor)
		}
		byFloor[gm.floor] = append(byFloor[gm.floor], gm)
	}

	result := &response.GroupSearchResponse{
		Primary:         []response.GroupAssignmentResponse{},
		Recommendations: []response.GroupRecommendationResponse{},
	}
	search := &floorSearch{
		svc:  s,
		from: from,
		to:   to,
		now:  s.opts.clock.Now(),
		// the caller's own holds are about to be re-claimed
		session: caller.SessionID,
		used:    make(map[uuid.UUID]bool),
	}

	for _, floor := range floors {
		assigned, recs, err := search.assignFloor(ctx, floor, byFloor[floor], req.ProximityByFloor[string(floor)])
		if err != nil {
			return nil, err
		}
		result.Primary = append(result.Primary, assigned...)
		result.Recommendations = append(result.Recommendations, recs...)
	}

	s.log.Info("Group search completed",
		zap.Int("members", len(req.Members)),
		zap.Int("assigned", len(result.Primary)),
		zap.Int("unmet", len(result.Recommendations)),
	)
	return result, nil
}

type floorSearch struct {
	svc     *groupService
	from    time.Time
	to      time.Time
	now     time.Time
	session string
	used    map[uuid.UUID]bool
}

func (f *floorSearch) available(ctx context.Context, floor entity.RoomZone, quality entity.RoomQuality) ([]*entity.Room, error) {
	rooms, err := f.svc.repo.Room.FindAvailable(ctx, repository.AvailabilityQuery{
		From:           f.from,
		To:             f.to,
		Zone:           &floor,
		Quality:        &quality,
		ExcludeSession: f.session,
		Now:            f.now,
	})
	if err != nil {
		return nil, fmt.Errorf("find available %s rooms on %s: %w", quality, floor, err)
	}

	free := rooms[:0]
	for _, r := range rooms {
		if !f.used[r.ID] {
			free = append(free, r)
		}
	}
	sort.SliceStable(free, func(i, j int) bool { return entity.LessByCode(free[i], free[j]) })
	return free, nil
}

func (f *floorSearch) assignFloor(ctx context.Context, floor entity.RoomZone, members []groupMember, proximity bool) ([]response.GroupAssignmentResponse, []response.GroupRecommendationResponse, error) {
	var (
		recs      []response.GroupRecommendationResponse
		qualities []entity.RoomQuality
		unmet     []groupMember
	)
	byQuality := make(map[entity.RoomQuality][]groupMember)
	for _, m := range members {
		if m.guests > entity.CapacityForZone(floor) {
			recs = append(recs, recommendation(m, RecommendationCapacityExceeded, nil))
			continue
		}
		if _, ok := byQuality[m.quality]; !ok {
			qualities = append(qualities, m.quality)
		}
		byQuality[m.quality] = append(byQuality[m.quality], m)
	}

	type pick struct {
		member groupMember
		room   *entity.Room
	}
	var picks []pick
	for _, q := range qualities {
		want := byQuality[q]
		rooms, err := f.available(ctx, floor, q)
		if err != nil {
			return nil, nil, err
		}

		chosen := rooms
		if len(chosen) > len(want) {
			if proximity {
				chosen = tightestWindow(rooms, len(want))
			} else {
				chosen = rooms[:len(want)]
			}
		}
		for i, m := range want {
			if i >= len(chosen) {
				unmet = append(unmet, m)
				continue
			}
			f.used[chosen[i].ID] = true
			picks = append(picks, pick{member: m, room: chosen[i]})
		}
	}

	// alternatives are computed after this floor's picks are taken
	for _, m := range unmet {
		alts, err := f.alternatives(ctx, floor, m.quality)
		if err != nil {
			return nil, nil, err
		}
		recs = append(recs, recommendation(m, RecommendationUnavailable, alts))
	}

	rooms := make([]*entity.Room, 0, len(picks))
	for _, p := range picks {
		rooms = append(rooms, p.room)
	}
	assigned := make([]response.GroupAssignmentResponse, 0, len(picks))
	for _, p := range picks {
		assigned = append(assigned, response.GroupAssignmentResponse{
			MemberID:    p.member.id,
			RoomID:      p.room.ID.String(),
			RoomCode:    p.room.Code,
			Floor:       floor,
			Quality:     p.room.Quality,
			IsProximate: proximity && isProximate(p.room, rooms),
		})
	}
	return assigned, recs, nil
}

func (f *floorSearch) alternatives(ctx context.Context, floor entity.RoomZone, except entity.RoomQuality) ([]entity.RoomQuality, error) {
	var alts []entity.RoomQuality
	for _, q := range entity.Qualities {
		if q == except {
			continue
		}
		rooms, err := f.available(ctx, floor, q)
		if err != nil {
			return nil, err
		}
		if len(rooms) > 0 {
			alts = append(alts, q)
		}
	}
	return alts, nil
}

func recommendation(m groupMember, status string, alts []entity.RoomQuality) response.GroupRecommendationResponse {
	return response.GroupRecommendationResponse{
		MemberID:     m.id,
		Quality:      m.quality,
		Floor:        m.floor,
		Guests:       m.guests,
		Status:       status,
		Alternatives: alts,
	}
}

// tightestWindow picks k consecutive rooms (rooms sorted by code) with the
// smallest numeric spread. Ties go to the lowest codes.
func tightestWindow(rooms []*entity.Room, k int) []*entity.Room {
	best, bestSpread := 0, math.MaxInt
	for i := 0; i+k <= len(rooms); i++ {
		if spread := codeSpread(rooms[i], rooms[i+k-1]); spread < bestSpread {
			best, bestSpread = i, spread
		}
	}
	return rooms[best : best+k]
}

func codeSpread(first, last *entity.Room) int {
	pf, nf := first.CodeNumber()
	pl, nl := last.CodeNumber()
	if pf != pl || nf < 0 || nl < 0 {
		return math.MaxInt - 1
	}
	return nl - nf
}

// isProximate reports whether room has a numeric neighbour among the
// floor's assigned rooms, or is the only room assigned there.
func isProximate(room *entity.Room, assigned []*entity.Room) bool {
	if len(assigned) == 1 {
		return true
	}
	prefix, n := room.CodeNumber()
	if n < 0 {
		return false
	}
	for _, other := range assigned {
		if other.ID == room.ID {
			continue
		}
		op, on := other.CodeNumber()
		if op == prefix && (on == n-1 || on == n+1) {
			return true
		}
	}
	return false
}
