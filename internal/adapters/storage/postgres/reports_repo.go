package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"pet-reunite/internal/domain/moderation"
)

type ReportsRepo struct {
	db *sqlx.DB
}

func NewReportsRepo(db *sqlx.DB) *ReportsRepo {
	return &ReportsRepo{db: db}
}

type reportRow struct {
	ID             string       `db:"id"`
	ReporterUserID string       `db:"reporter_user_id"`
	TargetType     string       `db:"target_type"`
	TargetID       string       `db:"target_id"`
	Reason         string       `db:"reason"`
	Details        string       `db:"details"`
	Status         string       `db:"status"`
	ResolvedBy     string       `db:"resolved_by"`
	Resolution     string       `db:"resolution"`
	CreatedAt      time.Time    `db:"created_at"`
	ResolvedAt     sql.NullTime `db:"resolved_at"`
	Total          int          `db:"total"`
}

const reportColumns = `id, reporter_user_id, target_type, target_id, reason, details,
	status, resolved_by, resolution, created_at, resolved_at`

func toReportRow(rep moderation.Report) reportRow {
	return reportRow{
		ID:             rep.ID,
		ReporterUserID: rep.ReporterUserID,
		TargetType:     string(rep.TargetType),
		TargetID:       rep.TargetID,
		Reason:         string(rep.Reason),
		Details:        rep.Details,
		Status:         string(rep.Status),
		ResolvedBy:     rep.ResolvedBy,
		Resolution:     rep.Resolution,
		CreatedAt:      rep.CreatedAt,
		ResolvedAt:     toNullTime(rep.ResolvedAt),
	}
}

func (r reportRow) toDomain() moderation.Report {
	rep := moderation.Report{
		ID:             r.ID,
		ReporterUserID: r.ReporterUserID,
		TargetType:     moderation.TargetType(r.TargetType),
		TargetID:       r.TargetID,
		Reason:         moderation.Reason(r.Reason),
		Details:        r.Details,
		Status:         moderation.Status(r.Status),
		ResolvedBy:     r.ResolvedBy,
		Resolution:     r.Resolution,
		CreatedAt:      r.CreatedAt,
	}
	if r.ResolvedAt.Valid {
		t := r.ResolvedAt.Time
		rep.ResolvedAt = &t
	}
	return rep
}

func (r *ReportsRepo) Create(ctx context.Context, rep moderation.Report) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO content_reports (`+reportColumns+`)
		VALUES (:id, :reporter_user_id, :target_type, :target_id, :reason, :details,
			:status, :resolved_by, :resolution, :created_at, :resolved_at)
	`, toReportRow(rep))
	return err
}

func (r *ReportsRepo) Update(ctx context.Context, rep moderation.Report) error {
	if !isUUID(rep.ID) {
		return moderation.ErrNotFound
	}
	res, err := r.db.NamedExecContext(ctx, `
		UPDATE content_reports SET
			status = :status, resolved_by = :resolved_by,
			resolution = :resolution, resolved_at = :resolved_at
		WHERE id = :id
	`, toReportRow(rep))
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return moderation.ErrNotFound
	}
	return nil
}

func (r *ReportsRepo) GetByID(ctx context.Context, id string) (moderation.Report, error) {
	if !isUUID(id) {
		return moderation.Report{}, moderation.ErrNotFound
	}
	var row reportRow
	err := r.db.GetContext(ctx, &row, `SELECT `+reportColumns+` FROM content_reports WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return moderation.Report{}, moderation.ErrNotFound
	}
	if err != nil {
		return moderation.Report{}, err
	}
	return row.toDomain(), nil
}

func (r *ReportsRepo) FindPending(ctx context.Context, reporterUserID string, t moderation.TargetType, targetID string) (moderation.Report, bool, error) {
	var row reportRow
	err := r.db.GetContext(ctx, &row, `
		SELECT `+reportColumns+`
		FROM content_reports
		WHERE status = 'pending' AND reporter_user_id = $1 AND target_type = $2 AND target_id = $3
		LIMIT 1
	`, reporterUserID, string(t), targetID)
	if errors.Is(err, sql.ErrNoRows) {
		return moderation.Report{}, false, nil
	}
	if err != nil {
		return moderation.Report{}, false, err
	}
	return row.toDomain(), true, nil
}

func (r *ReportsRepo) List(ctx context.Context, st moderation.Status, limit, offset int) ([]moderation.Report, int, error) {
	var a args
	if st != "" {
		a.where("status = " + a.add(string(st)))
	}
	var rows []reportRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT `+reportColumns+`, COUNT(*) OVER() AS total
		FROM content_reports`+a.clause()+`
		ORDER BY created_at ASC
		LIMIT `+a.add(limitOrDefault(limit))+` OFFSET `+a.add(offset), a.vals...)
	if err != nil {
		return nil, 0, err
	}
	out := make([]moderation.Report, 0, len(rows))
	total := 0
	for _, row := range rows {
		out = append(out, row.toDomain())
		total = row.Total
	}
	return out, total, nil
}

func (r *ReportsRepo) CountByStatus(ctx context.Context, st moderation.Status) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM content_reports WHERE status = $1`, string(st))
	return n, err
}
