package postgres

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/goccy/go-json"
	"github.com/jmoiron/sqlx"

	"pet-reunite/internal/domain/admin"
)

type AuditRepo struct {
	db *sqlx.DB
}

func NewAuditRepo(db *sqlx.DB) *AuditRepo {
	return &AuditRepo{db: db}
}

type auditRow struct {
	ID          string    `db:"id"`
	AdminUserID string    `db:"admin_user_id"`
	Action      string    `db:"action"`
	TargetType  string    `db:"target_type"`
	TargetID    string    `db:"target_id"`
	Details     []byte    `db:"details"`
	CreatedAt   time.Time `db:"created_at"`
	Total       int       `db:"total"`
}

func (r *AuditRepo) Create(ctx context.Context, e admin.AuditEntry) error {
	var details []byte
	if len(e.Details) > 0 {
		b, err := json.Marshal(e.Details)
		if err != nil {
			return err
		}
		details = b
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO admin_audit (id, admin_user_id, action, target_type, target_id, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, e.ID, e.AdminUserID, e.Action, e.TargetType, e.TargetID, details, e.CreatedAt)
	return err
}

func auditListQuery(f admin.AuditFilter) sq.SelectBuilder {
	q := psql.Select("id, admin_user_id, action, target_type, target_id, details, created_at",
		"COUNT(*) OVER() AS total").From("admin_audit")
	eq := sq.Eq{}
	if f.AdminUserID != "" {
		eq["admin_user_id"] = f.AdminUserID
	}
	if f.TargetType != "" {
		eq["target_type"] = f.TargetType
	}
	if f.TargetID != "" {
		eq["target_id"] = f.TargetID
	}
	if len(eq) > 0 {
		q = q.Where(eq)
	}
	return paged(q.OrderBy("created_at DESC", "id DESC"), f.Limit, f.Offset)
}

func (r *AuditRepo) List(ctx context.Context, f admin.AuditFilter) ([]admin.AuditEntry, int, error) {
	query, vals, err := auditListQuery(f).ToSql()
	if err != nil {
		return nil, 0, err
	}
	var rows []auditRow
	err = r.db.SelectContext(ctx, &rows, query, vals...)
	if err != nil {
		return nil, 0, err
	}

	out := make([]admin.AuditEntry, 0, len(rows))
	total := 0
	for _, row := range rows {
		e := admin.AuditEntry{
			ID:          row.ID,
			AdminUserID: row.AdminUserID,
			Action:      row.Action,
			TargetType:  row.TargetType,
			TargetID:    row.TargetID,
			CreatedAt:   row.CreatedAt,
		}
		if len(row.Details) > 0 {
			if err := json.Unmarshal(row.Details, &e.Details); err != nil {
				return nil, 0, err
			}
		}
		out = append(out, e)
		total = row.Total
	}
	return out, total, nil
}
