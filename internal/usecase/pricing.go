package usecase

import (
	"math"
	"time"

	"capsule-hotel/internal/data/entity"
)

type priceBreakdown struct {
	Nights int
	Base   float64
	AddOns []entity.ReservationAddOn
	Total  float64
}

// countNights rounds a partial day up; a stay is never shorter than one night.
func countNights(checkIn, checkOut time.Time) int {
	n := int(math.Ceil(checkOut.Sub(checkIn).Hours() / 24))
	if n < 1 {
		return 1
	}
	return n
}

func addOnTotal(price float64, priceType entity.PriceType, nights, guests int) float64 {
	switch priceType {
	case entity.PriceTypePerNight:
		return price * float64(nights)
	case entity.PriceTypePerGuest:
		return price * float64(guests)
	case entity.PriceTypePerGuestNight:
		return price * float64(guests*nights)
	default:
		return price
	}
}

// priceStay totals a stay from snapshot values only; the live offering is
// read once, when the snapshot is taken.
func priceStay(nightlyRate float64, addOns []entity.ReservationAddOn, nights, guests int) priceBreakdown {
	b := priceBreakdown{
		Nights: nights,
		Base:   roundCents(nightlyRate * float64(nights)),
		AddOns: make([]entity.ReservationAddOn, 0, len(addOns)),
	}
	b.Total = b.Base
	for _, a := range addOns {
		a.Total = roundCents(addOnTotal(a.Price, a.PriceType, nights, guests))
		b.AddOns = append(b.AddOns, a)
		b.Total += a.Total
	}
	b.Total = roundCents(b.Total)
	return b
}

func snapshotAddOns(addOns []entity.AddOn) []entity.ReservationAddOn {
	out := make([]entity.ReservationAddOn, 0, len(addOns))
	for _, a := range addOns {
		out = append(out, entity.ReservationAddOn{Name: a.Name, Price: a.Price, PriceType: a.PriceType})
	}
	return out
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
