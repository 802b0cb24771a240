package comments

import "time"

// Location de un avistamiento reportado en un comentario.
type Location struct {
	Lat     float64
	Lng     float64
	Address string
}

// Comment en el hilo de un reporte. IsSighting marca "lo vi aquí".
type Comment struct {
	ID           string
	PetID        string
	AuthorUserID string
	Body         string
	IsSighting   bool
	Location     *Location
	CreatedAt    time.Time
}
