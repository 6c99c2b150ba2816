package domain

import (
	"time"

	"github.com/google/uuid"
)

// Partner is the tenant every other row is keyed by.
type Partner struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

type Location struct {
	ID        uuid.UUID `json:"id"`
	PartnerID uuid.UUID `json:"partnerId"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"createdAt"`
}

// Resource is a bookable unit owned by a location. Type is one of the partner-defined
// type codes, e.g. "desk" or "meeting_room".
type Resource struct {
	ID         uuid.UUID `json:"id"`
	PartnerID  uuid.UUID `json:"partnerId"`
	LocationID uuid.UUID `json:"locationId"`
	Name       string    `json:"name"`
	Type       string    `json:"resourceType"`
	CreatedAt  time.Time `json:"createdAt"`
}

type ResourceType struct {
	PartnerID uuid.UUID `json:"partnerId"`
	Code      string    `json:"code"`
	Label     string    `json:"label"`
}
