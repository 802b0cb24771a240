package moderation

import (
	"context"
	"errors"
	"time"
)

// TargetType es el tipo de contenido reportado.
// @Enum pet, comment, business, campaign, user
type TargetType string

const (
	TargetPet      TargetType = "pet"
	TargetComment  TargetType = "comment"
	TargetBusiness TargetType = "business"
	TargetCampaign TargetType = "campaign"
	TargetUser     TargetType = "user"
)

// Reason del reporte.
// @Enum spam, inappropriate, fraud, duplicate, other
type Reason string

const (
	ReasonSpam          Reason = "spam"
	ReasonInappropriate Reason = "inappropriate"
	ReasonFraud         Reason = "fraud"
	ReasonDuplicate     Reason = "duplicate"
	ReasonOther         Reason = "other"
)

// Status: pending -> resolved | dismissed.
type Status string

const (
	StatusPending   Status = "pending"
	StatusResolved  Status = "resolved"
	StatusDismissed Status = "dismissed"
)

type Report struct {
	ID             string
	ReporterUserID string
	TargetType     TargetType
	TargetID       string
	Reason         Reason
	Details        string

	Status     Status
	ResolvedBy string
	Resolution string

	CreatedAt  time.Time
	ResolvedAt *time.Time
}

var ErrUnsupportedTarget = errors.New("unsupported target type")

// ContentRemover borra (o suspende, para usuarios) el contenido reportado.
type ContentRemover interface {
	RemoveContent(ctx context.Context, t TargetType, targetID string) error
}

type RemoveFunc func(ctx context.Context, targetID string) error

// Removers despacha por tipo de contenido; lo arma el router con los servicios de cada módulo.
type Removers map[TargetType]RemoveFunc

func (m Removers) RemoveContent(ctx context.Context, t TargetType, targetID string) error {
	f, ok := m[t]
	if !ok {
		return ErrUnsupportedTarget
	}
	return f(ctx, targetID)
}
