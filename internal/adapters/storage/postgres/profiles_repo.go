package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"pet-reunite/internal/domain/profiles"
)

type ProfilesRepo struct {
	db *sqlx.DB
}

func NewProfilesRepo(db *sqlx.DB) *ProfilesRepo {
	return &ProfilesRepo{db: db}
}

type profileRow struct {
	UserID      string    `db:"user_id"`
	DisplayName string    `db:"display_name"`
	Email       string    `db:"email"`
	Phone       string    `db:"phone"`
	DNI         string    `db:"dni"`
	AvatarURL   string    `db:"avatar_url"`
	District    string    `db:"district"`
	Role        string    `db:"role"`
	Banned      bool      `db:"banned"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
	Total       int       `db:"total"`
}

func (r profileRow) toDomain() profiles.Profile {
	return profiles.Profile{
		UserID:      r.UserID,
		DisplayName: r.DisplayName,
		Email:       r.Email,
		Phone:       r.Phone,
		DNI:         r.DNI,
		AvatarURL:   r.AvatarURL,
		District:    r.District,
		Role:        r.Role,
		Banned:      r.Banned,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

const profileColumns = `user_id, display_name, email, phone, dni, avatar_url, district, role, banned, created_at, updated_at`

func (r *ProfilesRepo) Get(ctx context.Context, userID string) (profiles.Profile, error) {
	var row profileRow
	err := r.db.GetContext(ctx, &row, `SELECT `+profileColumns+` FROM profiles WHERE user_id = $1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return profiles.Profile{}, profiles.ErrNotFound
	}
	if err != nil {
		return profiles.Profile{}, err
	}
	return row.toDomain(), nil
}

func (r *ProfilesRepo) Upsert(ctx context.Context, p profiles.Profile) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO profiles (`+profileColumns+`)
		VALUES (:user_id, :display_name, :email, :phone, :dni, :avatar_url, :district, :role, :banned, :created_at, :updated_at)
		ON CONFLICT (user_id) DO UPDATE SET
			display_name = EXCLUDED.display_name,
			email = EXCLUDED.email,
			phone = EXCLUDED.phone,
			dni = EXCLUDED.dni,
			avatar_url = EXCLUDED.avatar_url,
			district = EXCLUDED.district,
			role = EXCLUDED.role,
			banned = EXCLUDED.banned,
			updated_at = EXCLUDED.updated_at
	`, profileRow{
		UserID:      p.UserID,
		DisplayName: p.DisplayName,
		Email:       p.Email,
		Phone:       p.Phone,
		DNI:         p.DNI,
		AvatarURL:   p.AvatarURL,
		District:    p.District,
		Role:        p.Role,
		Banned:      p.Banned,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	})
	return err
}

func (r *ProfilesRepo) GetMany(ctx context.Context, userIDs []string) ([]profiles.Profile, error) {
	if len(userIDs) == 0 {
		return []profiles.Profile{}, nil
	}
	var rows []profileRow
	if err := r.db.SelectContext(ctx, &rows,
		`SELECT `+profileColumns+` FROM profiles WHERE user_id = ANY($1)`, pq.Array(userIDs)); err != nil {
		return nil, err
	}
	out := make([]profiles.Profile, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *ProfilesRepo) List(ctx context.Context, f profiles.ListFilter) ([]profiles.Profile, int, error) {
	var a args
	if f.Role != "" {
		a.where("role = " + a.add(f.Role))
	}
	if f.Banned != nil {
		a.where("banned = " + a.add(*f.Banned))
	}
	if f.Query != "" {
		p := a.add(likePattern(f.Query))
		a.where(fmt.Sprintf("(display_name ILIKE %[1]s OR email ILIKE %[1]s)", p))
	}

	var rows []profileRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT `+profileColumns+`, COUNT(*) OVER() AS total
		FROM profiles`+a.clause()+`
		ORDER BY created_at DESC
		LIMIT `+a.add(limitOrDefault(f.Limit))+` OFFSET `+a.add(f.Offset), a.vals...)
	if err != nil {
		return nil, 0, err
	}
	out := make([]profiles.Profile, 0, len(rows))
	total := 0
	for _, row := range rows {
		out = append(out, row.toDomain())
		total = row.Total
	}
	return out, total, nil
}
