package memory

import (
	"fmt"
	"time"

	"capsule-hotel/internal/data/entity"

	"github.com/google/uuid"
)

// AddOffering inserts or replaces an offering.
func (s *Store) AddOffering(o *entity.Offering) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.offerings[o.ID] = cloneOffering(o)
}

// AddRoom inserts or replaces a room, filling ID, status and timestamps
// when they are zero.
func (s *Store) AddRoom(room *entity.Room) *entity.Room {
	if room.ID == uuid.Nil {
		room.ID = uuid.New()
	}
	if room.Status == "" {
		room.Status = entity.RoomStatusAvailable
	}
	if room.CreatedAt.IsZero() {
		room.CreatedAt = time.Now()
		room.UpdatedAt = room.CreatedAt
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[room.ID] = cloneRoom(room)
	return room
}

var zonePrefix = map[entity.RoomZone]string{
	entity.ZoneWomenOnly: "A",
	entity.ZoneMenOnly:   "B",
	entity.ZoneCouples:   "C",
	entity.ZoneBusiness:  "D",
}

// SeedDemo fills an empty store with one offering and two rooms of every
// quality on every floor (A101..A110, B101.., C101.., D101..).
func (s *Store) SeedDemo() *entity.Offering {
	offering := &entity.Offering{
		ID:          uuid.New(),
		Name:        "Standard capsule",
		NightlyRate: 45,
		AddOns: []entity.AddOn{
			{ID: uuid.New(), Name: "Breakfast", Price: 8, PriceType: entity.PriceTypePerGuestNight},
			{ID: uuid.New(), Name: "Towel set", Price: 3, PriceType: entity.PriceTypePerGuest},
			{ID: uuid.New(), Name: "Late checkout", Price: 15, PriceType: entity.PriceTypePerStay},
			{ID: uuid.New(), Name: "Locker upgrade", Price: 2, PriceType: entity.PriceTypePerNight},
		},
	}
	s.AddOffering(offering)

	for _, zone := range entity.Zones {
		n := 101
		for _, quality := range entity.Qualities {
			for i := 0; i < 2; i++ {
				s.AddRoom(&entity.Room{
					Code:       fmt.Sprintf("%s%d", zonePrefix[zone], n),
					Zone:       zone,
					Quality:    quality,
					OfferingID: offering.ID,
				})
				n++
			}
		}
	}

	return offering
}
