package campaigns

import "time"

// Type de campaña.
// @Enum sterilization, adoption, vaccination, other
type Type string

const (
	TypeSterilization Type = "sterilization"
	TypeAdoption      Type = "adoption"
	TypeVaccination   Type = "vaccination"
	TypeOther         Type = "other"
)

// Status: draft (recién creada) -> published (aprobada por admin) | cancelled.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusCancelled Status = "cancelled"
)

type Campaign struct {
	ID              string
	OrganizerUserID string

	Title       string
	Type        Type
	Description string

	Address  string
	District string
	Lat      float64
	Lng      float64

	StartsAt time.Time
	EndsAt   time.Time

	ContactPhone string
	ImageURL     string

	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

type ListFilter struct {
	Statuses        []Status
	OrganizerUserID string
	District        string
	Type            Type
	// EndsAfter filtra campañas vigentes (EndsAt >= EndsAfter). Cero = sin filtro.
	EndsAfter time.Time

	Limit  int
	Offset int
}
