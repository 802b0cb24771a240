package postgres

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"pet-reunite/internal/domain/gamification"
)

type PointsRepo struct {
	db *sqlx.DB
}

func NewPointsRepo(db *sqlx.DB) *PointsRepo {
	return &PointsRepo{db: db}
}

type pointsRow struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	Action    string    `db:"action"`
	RefID     string    `db:"ref_id"`
	Points    int       `db:"points"`
	CreatedAt time.Time `db:"created_at"`
}

// Add se apoya en el UNIQUE (user_id, action, ref_id): si no insertó, es duplicado.
func (r *PointsRepo) Add(ctx context.Context, e gamification.Entry) error {
	res, err := r.db.NamedExecContext(ctx, `
		INSERT INTO points_ledger (id, user_id, action, ref_id, points, created_at)
		VALUES (:id, :user_id, :action, :ref_id, :points, :created_at)
		ON CONFLICT (user_id, action, ref_id) DO NOTHING
	`, pointsRow{
		ID:        e.ID,
		UserID:    e.UserID,
		Action:    string(e.Action),
		RefID:     e.RefID,
		Points:    e.Points,
		CreatedAt: e.CreatedAt,
	})
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return gamification.ErrDuplicate
	}
	return nil
}

func (r *PointsRepo) TotalFor(ctx context.Context, userID string) (int, error) {
	var total int
	err := r.db.GetContext(ctx, &total,
		`SELECT COALESCE(SUM(points), 0) FROM points_ledger WHERE user_id = $1`, userID)
	return total, err
}

func (r *PointsRepo) ListByUser(ctx context.Context, userID string, limit int) ([]gamification.Entry, error) {
	var rows []pointsRow
	if err := r.db.SelectContext(ctx, &rows, `
		SELECT id, user_id, action, ref_id, points, created_at
		FROM points_ledger
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limitOrDefault(limit)); err != nil {
		return nil, err
	}
	out := make([]gamification.Entry, 0, len(rows))
	for _, row := range rows {
		out = append(out, gamification.Entry{
			ID:        row.ID,
			UserID:    row.UserID,
			Action:    gamification.Action(row.Action),
			RefID:     row.RefID,
			Points:    row.Points,
			CreatedAt: row.CreatedAt,
		})
	}
	return out, nil
}

func (r *PointsRepo) Leaderboard(ctx context.Context, limit int) ([]gamification.Standing, error) {
	var rows []struct {
		UserID string `db:"user_id"`
		Total  int    `db:"total"`
	}
	if err := r.db.SelectContext(ctx, &rows, `
		SELECT user_id, SUM(points) AS total
		FROM points_ledger
		GROUP BY user_id
		ORDER BY total DESC, user_id ASC
		LIMIT $1
	`, limitOrDefault(limit)); err != nil {
		return nil, err
	}
	out := make([]gamification.Standing, 0, len(rows))
	for _, row := range rows {
		out = append(out, gamification.Standing{UserID: row.UserID, Total: row.Total})
	}
	return out, nil
}
