package entity

import "github.com/google/uuid"

type PriceType string

const (
	PriceTypePerStay       PriceType = "per_stay"
	PriceTypePerNight      PriceType = "per_night"
	PriceTypePerGuest      PriceType = "per_guest"
	PriceTypePerGuestNight PriceType = "per_guest_night"
)

type AddOn struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	PriceType PriceType `json:"price_type"`
}

// Offering is the read-only pricing catalog entry a room points at.
type Offering struct {
	ID          uuid.UUID `db:"id"`
	Name        string    `db:"name"`
	NightlyRate float64   `db:"nightly_rate"`
	AddOns      []AddOn   `db:"add_ons"`
}

func (o *Offering) FindAddOn(id uuid.UUID) (AddOn, bool) {
	for _, a := range o.AddOns {
		if a.ID == id {
			return a, true
		}
	}
	return AddOn{}, false
}
