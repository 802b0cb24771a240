package profiles

import "time"

// Profile son los datos de comunidad de un usuario autenticado.
// El ID es el mismo que emite el proveedor de auth.
type Profile struct {
	UserID      string
	DisplayName string
	Email       string
	Phone       string
	DNI         string
	AvatarURL   string
	District    string
	Role        string
	Banned      bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

type ListFilter struct {
	Query  string
	Role   string
	Banned *bool
	Limit  int
	Offset int
}
