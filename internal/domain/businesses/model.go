package businesses

import (
	"time"

	"github.com/shopspring/decimal"

	"pet-reunite/internal/platform/geo"
)

// Type del negocio en el directorio.
// @Enum veterinary, petshop, grooming, shelter, other
type Type string

const (
	TypeVeterinary Type = "veterinary"
	TypePetshop    Type = "petshop"
	TypeGrooming   Type = "grooming"
	TypeShelter    Type = "shelter"
	TypeOther      Type = "other"
)

const DefaultCurrency = "PEN"

// Product es un producto o servicio con precio de referencia.
type Product struct {
	Name     string          `json:"name" validate:"required,max=80"`
	Price    decimal.Decimal `json:"price"`
	Currency string          `json:"currency" validate:"omitempty,len=3"`
}

type Business struct {
	ID          string
	OwnerUserID string

	Name        string
	Type        Type
	Description string
	Phone       string
	Email       string
	Website     string

	Address  string
	District string
	Lat      float64
	Lng      float64
	Hours    string

	Products []Product

	Verified    bool
	RatingAvg   float64
	RatingCount int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Rating: una por usuario y negocio; volver a calificar reemplaza.
type Rating struct {
	ID         string
	BusinessID string
	UserID     string
	Stars      int
	Comment    string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type ListFilter struct {
	Type         Type
	District     string
	Query        string
	OwnerUserID  string
	VerifiedOnly bool

	Near     *geo.Point
	RadiusKm float64

	Limit  int
	Offset int
}
