package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"pet-reunite/internal/domain/comments"
)

type CommentsRepo struct {
	db *sqlx.DB
}

func NewCommentsRepo(db *sqlx.DB) *CommentsRepo {
	return &CommentsRepo{db: db}
}

type commentRow struct {
	ID           string          `db:"id"`
	PetID        string          `db:"pet_id"`
	AuthorUserID string          `db:"author_user_id"`
	Body         string          `db:"body"`
	IsSighting   bool            `db:"is_sighting"`
	Lat          sql.NullFloat64 `db:"lat"`
	Lng          sql.NullFloat64 `db:"lng"`
	Address      sql.NullString  `db:"address"`
	CreatedAt    time.Time       `db:"created_at"`
	Total        int             `db:"total"`
}

func (r commentRow) toDomain() comments.Comment {
	c := comments.Comment{
		ID:           r.ID,
		PetID:        r.PetID,
		AuthorUserID: r.AuthorUserID,
		Body:         r.Body,
		IsSighting:   r.IsSighting,
		CreatedAt:    r.CreatedAt,
	}
	if r.Lat.Valid && r.Lng.Valid {
		c.Location = &comments.Location{Lat: r.Lat.Float64, Lng: r.Lng.Float64, Address: r.Address.String}
	}
	return c
}

const commentColumns = `id, pet_id, author_user_id, body, is_sighting, lat, lng, address, created_at`

func (r *CommentsRepo) Create(ctx context.Context, c comments.Comment) error {
	row := commentRow{
		ID:           c.ID,
		PetID:        c.PetID,
		AuthorUserID: c.AuthorUserID,
		Body:         c.Body,
		IsSighting:   c.IsSighting,
		CreatedAt:    c.CreatedAt,
	}
	if c.Location != nil {
		row.Lat = sql.NullFloat64{Float64: c.Location.Lat, Valid: true}
		row.Lng = sql.NullFloat64{Float64: c.Location.Lng, Valid: true}
		row.Address = sql.NullString{String: c.Location.Address, Valid: true}
	}
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO pet_comments (`+commentColumns+`)
		VALUES (:id, :pet_id, :author_user_id, :body, :is_sighting, :lat, :lng, :address, :created_at)
	`, row)
	return err
}

func (r *CommentsRepo) GetByID(ctx context.Context, id string) (comments.Comment, error) {
	if !isUUID(id) {
		return comments.Comment{}, comments.ErrNotFound
	}
	var row commentRow
	err := r.db.GetContext(ctx, &row, `SELECT `+commentColumns+` FROM pet_comments WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return comments.Comment{}, comments.ErrNotFound
	}
	if err != nil {
		return comments.Comment{}, err
	}
	return row.toDomain(), nil
}

func (r *CommentsRepo) ListByPet(ctx context.Context, petID string, limit, offset int) ([]comments.Comment, int, error) {
	var rows []commentRow
	if err := r.db.SelectContext(ctx, &rows, `
		SELECT `+commentColumns+`, COUNT(*) OVER() AS total
		FROM pet_comments
		WHERE pet_id = $1
		ORDER BY created_at ASC
		LIMIT $2 OFFSET $3
	`, petID, limitOrDefault(limit), offset); err != nil {
		return nil, 0, err
	}
	out := make([]comments.Comment, 0, len(rows))
	total := 0
	for _, row := range rows {
		out = append(out, row.toDomain())
		total = row.Total
	}
	return out, total, nil
}

func (r *CommentsRepo) Delete(ctx context.Context, id string) error {
	if !isUUID(id) {
		return comments.ErrNotFound
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM pet_comments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return comments.ErrNotFound
	}
	return nil
}
