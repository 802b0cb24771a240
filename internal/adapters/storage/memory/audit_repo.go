package memory

import (
	"context"
	"sync"

	"pet-reunite/internal/domain/admin"
)

type auditRepo struct {
	mu      sync.RWMutex
	entries []admin.AuditEntry
}

func NewAuditRepo() admin.AuditRepository {
	return &auditRepo{}
}

func (r *auditRepo) Create(ctx context.Context, e admin.AuditEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
	return nil
}

func (r *auditRepo) List(ctx context.Context, f admin.AuditFilter) ([]admin.AuditEntry, int, error) {
	r.mu.RLock()
	all := make([]admin.AuditEntry, 0)
	for i := len(r.entries) - 1; i >= 0; i-- {
		e := r.entries[i]
		if f.AdminUserID != "" && e.AdminUserID != f.AdminUserID {
			continue
		}
		if f.TargetType != "" && e.TargetType != f.TargetType {
			continue
		}
		if f.TargetID != "" && e.TargetID != f.TargetID {
			continue
		}
		all = append(all, e)
	}
	r.mu.RUnlock()

	out, total := page(all, f.Limit, f.Offset)
	return out, total, nil
}
