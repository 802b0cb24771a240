package support

import (
	"fmt"
	"time"
)

// Category del ticket.
// @Enum account, report, business, bug, other
type Category string

const (
	CategoryAccount  Category = "account"
	CategoryReport   Category = "report"
	CategoryBusiness Category = "business"
	CategoryBug      Category = "bug"
	CategoryOther    Category = "other"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
)

// Status del ticket.
// @Enum open, in_progress, resolved, closed
type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in_progress"
	StatusResolved   Status = "resolved"
	StatusClosed     Status = "closed"
)

// transitions permitidas por SetStatus (admin).
var transitions = map[Status][]Status{
	StatusOpen:       {StatusInProgress, StatusResolved, StatusClosed},
	StatusInProgress: {StatusOpen, StatusResolved, StatusClosed},
	StatusResolved:   {StatusClosed, StatusOpen},
}

func CanTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

type Message struct {
	ID           string
	AuthorUserID string
	Body         string
	FromStaff    bool
	CreatedAt    time.Time
}

type Ticket struct {
	ID       string
	Number   string
	UserID   string
	Subject  string
	Category Category
	Priority Priority
	Status   Status
	Messages []Message

	CreatedAt  time.Time
	UpdatedAt  time.Time
	ResolvedAt *time.Time
}

// FormatNumber arma el número visible: T-000042.
func FormatNumber(seq int64) string {
	return fmt.Sprintf("T-%06d", seq%1_000_000)
}
