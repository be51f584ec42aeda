package entity

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
)

type RoomZone string

const (
	ZoneWomenOnly RoomZone = "women_only"
	ZoneMenOnly   RoomZone = "men_only"
	ZoneCouples   RoomZone = "couples"
	ZoneBusiness  RoomZone = "business"
)

var Zones = []RoomZone{ZoneWomenOnly, ZoneMenOnly, ZoneCouples, ZoneBusiness}

func (z RoomZone) Valid() bool {
	switch z {
	case ZoneWomenOnly, ZoneMenOnly, ZoneCouples, ZoneBusiness:
		return true
	}
	return false
}

type RoomQuality string

const (
	QualityClassic RoomQuality = "classic"
	QualityMilk    RoomQuality = "milk"
	QualityGolden  RoomQuality = "golden"
	QualityCrystal RoomQuality = "crystal"
	QualityMatcha  RoomQuality = "matcha"
)

var Qualities = []RoomQuality{QualityClassic, QualityMilk, QualityGolden, QualityCrystal, QualityMatcha}

func (q RoomQuality) Valid() bool {
	switch q {
	case QualityClassic, QualityMilk, QualityGolden, QualityCrystal, QualityMatcha:
		return true
	}
	return false
}

type RoomStatus string

const (
	RoomStatusAvailable   RoomStatus = "available"
	RoomStatusOccupied    RoomStatus = "occupied"
	RoomStatusMaintenance RoomStatus = "maintenance"
	RoomStatusReserved    RoomStatus = "reserved"
)

// CapacityForZone is the only source of a room's capacity.
func CapacityForZone(zone RoomZone) int {
	if zone == ZoneCouples {
		return 2
	}
	return 1
}

type Room struct {
	Base
	Code       string      `db:"code"` // A101, B204, ...
	Zone       RoomZone    `db:"zone"`
	Quality    RoomQuality `db:"quality"`
	Status     RoomStatus  `db:"status"`
	OfferingID uuid.UUID   `db:"offering_id"`
}

func (r *Room) Capacity() int {
	return CapacityForZone(r.Zone)
}

// CodeNumber splits a room code into its letter prefix and numeric suffix.
// Codes without a numeric suffix return -1.
func (r *Room) CodeNumber() (string, int) {
	i := len(r.Code)
	for i > 0 && r.Code[i-1] >= '0' && r.Code[i-1] <= '9' {
		i--
	}
	if i == len(r.Code) {
		return r.Code, -1
	}
	n, err := strconv.Atoi(r.Code[i:])
	if err != nil {
		return r.Code, -1
	}
	return strings.ToUpper(r.Code[:i]), n
}

// LessByCode orders rooms by code prefix, then numeric suffix.
func LessByCode(a, b *Room) bool {
	pa, na := a.CodeNumber()
	pb, nb := b.CodeNumber()
	if pa != pb {
		return pa < pb
	}
	if na != nb {
		return na < nb
	}
	return a.Code < b.Code
}
