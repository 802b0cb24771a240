package gamification

import "time"

// Action identifica qué hizo el usuario para ganar puntos.
type Action string

const (
	ActionPetReported      Action = "pet_reported"
	ActionPetFoundReported Action = "pet_found_reported"
	ActionSighting         Action = "sighting"
	ActionComment          Action = "comment"
	ActionReunion          Action = "reunion"
	ActionBusinessRated    Action = "business_rated"
	ActionCampaignCreated  Action = "campaign_created"
	ActionReportResolved   Action = "report_resolved"
)

// pointsByAction es la tabla fija de puntos.
var pointsByAction = map[Action]int{
	ActionPetReported:      10,
	ActionPetFoundReported: 15,
	ActionSighting:         5,
	ActionComment:          2,
	ActionReunion:          50,
	ActionBusinessRated:    3,
	ActionCampaignCreated:  20,
	ActionReportResolved:   5,
}

// PointsFor devuelve los puntos de una acción (0 si no existe).
func PointsFor(a Action) int {
	return pointsByAction[a]
}

// Entry es una fila del ledger de puntos. (UserID, Action, RefID) es única.
type Entry struct {
	ID        string
	UserID    string
	Action    Action
	RefID     string
	Points    int
	CreatedAt time.Time
}

// Standing es una posición del ranking.
type Standing struct {
	UserID string
	Total  int
}
