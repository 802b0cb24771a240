package pets

import (
	"time"

	"github.com/shopspring/decimal"

	"pet-reunite/internal/platform/geo"
)

// Status del reporte.
// @Enum lost, found, sighted, adoption, reunited, adopted
type Status string

const (
	StatusLost     Status = "lost"
	StatusFound    Status = "found"
	StatusSighted  Status = "sighted"
	StatusAdoption Status = "adoption"
	StatusReunited Status = "reunited"
	StatusAdopted  Status = "adopted"
)

// Open indica si el reporte sigue activo (buscando dueño, mascota o adoptante).
func (s Status) Open() bool {
	switch s {
	case StatusLost, StatusFound, StatusSighted, StatusAdoption:
		return true
	default:
		return false
	}
}

// Species define las especies soportadas.
// @Enum dog, cat, bird, rabbit, other
type Species string

const (
	SpeciesDog    Species = "dog"
	SpeciesCat    Species = "cat"
	SpeciesBird   Species = "bird"
	SpeciesRabbit Species = "rabbit"
	SpeciesOther  Species = "other"
)

// Size define el tamaño aproximado.
type Size string

const (
	SizeSmall  Size = "small"
	SizeMedium Size = "medium"
	SizeLarge  Size = "large"
)

// Sex define el sexo de la mascota.
// @Enum male, female, unknown
type Sex string

const (
	SexMale    Sex = "male"
	SexFemale  Sex = "female"
	SexUnknown Sex = "unknown"
)

// Location es donde se perdió / encontró / vio a la mascota.
type Location struct {
	Lat      float64
	Lng      float64
	Address  string
	District string
}

// Pet es un reporte de mascota perdida, encontrada, avistada o en adopción.
type Pet struct {
	ID             string
	ReporterUserID string

	Status  Status
	Species Species
	Breed   string
	Color   string
	Size    Size
	Sex     Sex
	Name    string // puede estar vacío si la mascota fue encontrada

	Description string
	PhotoURLs   []string

	Location Location
	EventAt  time.Time // cuándo se perdió / encontró / vio

	ContactPhone string
	Reward       decimal.Decimal

	CreatedAt time.Time
	UpdatedAt time.Time
	ClosedAt  *time.Time
}

// Actor es quien ejecuta la operación.
type Actor struct {
	UserID string
	Admin  bool
}

func (a Actor) canManage(p Pet) bool {
	return a.Admin || (a.UserID != "" && a.UserID == p.ReporterUserID)
}

type ListFilter struct {
	Statuses       []Status
	Species        Species
	District       string
	Query          string
	ReporterUserID string

	// Búsqueda por cercanía; se ignora si Near es nil.
	Near     *geo.Point
	RadiusKm float64

	Limit  int
	Offset int
}

// ShareLink es lo que el frontend usa para el afiche / QR.
type ShareLink struct {
	Slug      string
	PublicURL string
	QRCodeURL string
}
