package audit

import "context"

// Recorder registra acciones de administración. Best-effort: no devuelve error.
type Recorder interface {
	Record(ctx context.Context, adminUserID, action, targetType, targetID string, details map[string]any)
}

// Nop no registra nada.
type Nop struct{}

func (Nop) Record(context.Context, string, string, string, string, map[string]any) {}
