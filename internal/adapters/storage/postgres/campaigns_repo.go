package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"pet-reunite/internal/domain/campaigns"
)

type CampaignsRepo struct {
	db *sqlx.DB
}

func NewCampaignsRepo(db *sqlx.DB) *CampaignsRepo {
	return &CampaignsRepo{db: db}
}

type campaignRow struct {
	ID              string    `db:"id"`
	OrganizerUserID string    `db:"organizer_user_id"`
	Title           string    `db:"title"`
	Type            string    `db:"type"`
	Description     string    `db:"description"`
	Address         string    `db:"address"`
	District        string    `db:"district"`
	Lat             float64   `db:"lat"`
	Lng             float64   `db:"lng"`
	StartsAt        time.Time `db:"starts_at"`
	EndsAt          time.Time `db:"ends_at"`
	ContactPhone    string    `db:"contact_phone"`
	ImageURL        string    `db:"image_url"`
	Status          string    `db:"status"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
	Total           int       `db:"total"`
}

const campaignColumns = `id, organizer_user_id, title, type, description, address, district, lat, lng,
	starts_at, ends_at, contact_phone, image_url, status, created_at, updated_at`

func toCampaignRow(c campaigns.Campaign) campaignRow {
	return campaignRow{
		ID:              c.ID,
		OrganizerUserID: c.OrganizerUserID,
		Title:           c.Title,
		Type:            string(c.Type),
		Description:     c.Description,
		Address:         c.Address,
		District:        c.District,
		Lat:             c.Lat,
		Lng:             c.Lng,
		StartsAt:        c.StartsAt,
		EndsAt:          c.EndsAt,
		ContactPhone:    c.ContactPhone,
		ImageURL:        c.ImageURL,
		Status:          string(c.Status),
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

func (r campaignRow) toDomain() campaigns.Campaign {
	return campaigns.Campaign{
		ID:              r.ID,
		OrganizerUserID: r.OrganizerUserID,
		Title:           r.Title,
		Type:            campaigns.Type(r.Type),
		Description:     r.Description,
		Address:         r.Address,
		District:        r.District,
		Lat:             r.Lat,
		Lng:             r.Lng,
		StartsAt:        r.StartsAt,
		EndsAt:          r.EndsAt,
		ContactPhone:    r.ContactPhone,
		ImageURL:        r.ImageURL,
		Status:          campaigns.Status(r.Status),
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

func (r *CampaignsRepo) Create(ctx context.Context, c campaigns.Campaign) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO campaigns (`+campaignColumns+`)
		VALUES (:id, :organizer_user_id, :title, :type, :description, :address, :district, :lat, :lng,
			:starts_at, :ends_at, :contact_phone, :image_url, :status, :created_at, :updated_at)
	`, toCampaignRow(c))
	return err
}

func (r *CampaignsRepo) Update(ctx context.Context, c campaigns.Campaign) error {
	if !isUUID(c.ID) {
		return campaigns.ErrNotFound
	}
	res, err := r.db.NamedExecContext(ctx, `
		UPDATE campaigns SET
			title = :title, type = :type, description = :description,
			address = :address, district = :district, lat = :lat, lng = :lng,
			starts_at = :starts_at, ends_at = :ends_at,
			contact_phone = :contact_phone, image_url = :image_url,
			status = :status, updated_at = :updated_at
		WHERE id = :id
	`, toCampaignRow(c))
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return campaigns.ErrNotFound
	}
	return nil
}

func (r *CampaignsRepo) Delete(ctx context.Context, id string) error {
	if !isUUID(id) {
		return campaigns.ErrNotFound
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM campaigns WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return campaigns.ErrNotFound
	}
	return nil
}

func (r *CampaignsRepo) GetByID(ctx context.Context, id string) (campaigns.Campaign, error) {
	if !isUUID(id) {
		return campaigns.Campaign{}, campaigns.ErrNotFound
	}
	var row campaignRow
	err := r.db.GetContext(ctx, &row, `SELECT `+campaignColumns+` FROM campaigns WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return campaigns.Campaign{}, campaigns.ErrNotFound
	}
	if err != nil {
		return campaigns.Campaign{}, err
	}
	return row.toDomain(), nil
}

func campaignListQuery(f campaigns.ListFilter) sq.SelectBuilder {
	q := psql.Select(campaignColumns, "COUNT(*) OVER() AS total").From("campaigns")
	if len(f.Statuses) > 0 {
		sts := make([]string, 0, len(f.Statuses))
		for _, s := range f.Statuses {
			sts = append(sts, string(s))
		}
		q = q.Where(sq.Eq{"status": sts})
	}
	if f.OrganizerUserID != "" {
		q = q.Where(sq.Eq{"organizer_user_id": f.OrganizerUserID})
	}
	if f.Type != "" {
		q = q.Where(sq.Eq{"type": string(f.Type)})
	}
	if f.District != "" {
		q = q.Where("lower(district) = lower(?)", f.District)
	}
	if !f.EndsAfter.IsZero() {
		q = q.Where(sq.GtOrEq{"ends_at": f.EndsAfter})
	}
	return paged(q.OrderBy("starts_at ASC", "id ASC"), f.Limit, f.Offset)
}

func (r *CampaignsRepo) List(ctx context.Context, f campaigns.ListFilter) ([]campaigns.Campaign, int, error) {
	query, vals, err := campaignListQuery(f).ToSql()
	if err != nil {
		return nil, 0, err
	}
	var rows []campaignRow
	err = r.db.SelectContext(ctx, &rows, query, vals...)
	if err != nil {
		return nil, 0, err
	}
	out := make([]campaigns.Campaign, 0, len(rows))
	total := 0
	for _, row := range rows {
		out = append(out, row.toDomain())
		total = row.Total
	}
	return out, total, nil
}

func (r *CampaignsRepo) CountUpcoming(ctx context.Context, now time.Time) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n,
		`SELECT COUNT(*) FROM campaigns WHERE status = 'published' AND ends_at >= $1`, now)
	return n, err
}
