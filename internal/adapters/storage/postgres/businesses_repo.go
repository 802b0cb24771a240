package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	json "github.com/goccy/go-json"
	"github.com/jmoiron/sqlx"

	"pet-reunite/internal/domain/businesses"
	"pet-reunite/internal/platform/geo"
)

type BusinessesRepo struct {
	db *sqlx.DB
}

func NewBusinessesRepo(db *sqlx.DB) *BusinessesRepo {
	return &BusinessesRepo{db: db}
}

type businessRow struct {
	ID          string    `db:"id"`
	OwnerUserID string    `db:"owner_user_id"`
	Name        string    `db:"name"`
	Type        string    `db:"type"`
	Description string    `db:"description"`
	Phone       string    `db:"phone"`
	Email       string    `db:"email"`
	Website     string    `db:"website"`
	Address     string    `db:"address"`
	District    string    `db:"district"`
	Lat         float64   `db:"lat"`
	Lng         float64   `db:"lng"`
	Hours       string    `db:"hours"`
	Products    []byte    `db:"products"`
	Verified    bool      `db:"verified"`
	RatingAvg   float64   `db:"rating_avg"`
	RatingCount int       `db:"rating_count"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
	Total       int       `db:"total"`
}

const businessColumns = `id, owner_user_id, name, type, description, phone, email, website,
	address, district, lat, lng, hours, products, verified, rating_avg, rating_count, created_at, updated_at`

func toBusinessRow(b businesses.Business) (businessRow, error) {
	products := b.Products
	if products == nil {
		products = []businesses.Product{}
	}
	raw, err := json.Marshal(products)
	if err != nil {
		return businessRow{}, fmt.Errorf("marshal products: %w", err)
	}
	return businessRow{
		ID:          b.ID,
		OwnerUserID: b.OwnerUserID,
		Name:        b.Name,
		Type:        string(b.Type),
		Description: b.Description,
		Phone:       b.Phone,
		Email:       b.Email,
		Website:     b.Website,
		Address:     b.Address,
		District:    b.District,
		Lat:         b.Lat,
		Lng:         b.Lng,
		Hours:       b.Hours,
		Products:    raw,
		Verified:    b.Verified,
		RatingAvg:   b.RatingAvg,
		RatingCount: b.RatingCount,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}, nil
}

func (r businessRow) toDomain() (businesses.Business, error) {
	var products []businesses.Product
	if len(r.Products) > 0 {
		if err := json.Unmarshal(r.Products, &products); err != nil {
			return businesses.Business{}, fmt.Errorf("unmarshal products: %w", err)
		}
	}
	return businesses.Business{
		ID:          r.ID,
		OwnerUserID: r.OwnerUserID,
		Name:        r.Name,
		Type:        businesses.Type(r.Type),
		Description: r.Description,
		Phone:       r.Phone,
		Email:       r.Email,
		Website:     r.Website,
		Address:     r.Address,
		District:    r.District,
		Lat:         r.Lat,
		Lng:         r.Lng,
		Hours:       r.Hours,
		Products:    products,
		Verified:    r.Verified,
		RatingAvg:   r.RatingAvg,
		RatingCount: r.RatingCount,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}, nil
}

func (r *BusinessesRepo) Create(ctx context.Context, b businesses.Business) error {
	row, err := toBusinessRow(b)
	if err != nil {
		return err
	}
	_, err = r.db.NamedExecContext(ctx, `
		INSERT INTO businesses (`+businessColumns+`)
		VALUES (:id, :owner_user_id, :name, :type, :description, :phone, :email, :website,
			:address, :district, :lat, :lng, :hours, :products, :verified, :rating_avg, :rating_count,
			:created_at, :updated_at)
	`, row)
	return err
}

func (r *BusinessesRepo) Update(ctx context.Context, b businesses.Business) error {
	if !isUUID(b.ID) {
		return businesses.ErrNotFound
	}
	row, err := toBusinessRow(b)
	if err != nil {
		return err
	}
	res, err := r.db.NamedExecContext(ctx, `
		UPDATE businesses SET
			name = :name, type = :type, description = :description,
			phone = :phone, email = :email, website = :website,
			address = :address, district = :district, lat = :lat, lng = :lng,
			hours = :hours, products = :products, verified = :verified,
			rating_avg = :rating_avg, rating_count = :rating_count,
			updated_at = :updated_at
		WHERE id = :id
	`, row)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return businesses.ErrNotFound
	}
	return nil
}

func (r *BusinessesRepo) Delete(ctx context.Context, id string) error {
	if !isUUID(id) {
		return businesses.ErrNotFound
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM businesses WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return businesses.ErrNotFound
	}
	return nil
}

func (r *BusinessesRepo) GetByID(ctx context.Context, id string) (businesses.Business, error) {
	if !isUUID(id) {
		return businesses.Business{}, businesses.ErrNotFound
	}
	var row businessRow
	err := r.db.GetContext(ctx, &row, `SELECT `+businessColumns+` FROM businesses WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return businesses.Business{}, businesses.ErrNotFound
	}
	if err != nil {
		return businesses.Business{}, err
	}
	return row.toDomain()
}

func businessListQuery(f businesses.ListFilter) sq.SelectBuilder {
	q := psql.Select(businessColumns, "COUNT(*) OVER() AS total").From("businesses")
	if f.Type != "" {
		q = q.Where(sq.Eq{"type": string(f.Type)})
	}
	if f.OwnerUserID != "" {
		q = q.Where(sq.Eq{"owner_user_id": f.OwnerUserID})
	}
	if f.VerifiedOnly {
		q = q.Where("verified")
	}
	if f.District != "" {
		q = q.Where("lower(district) = lower(?)", f.District)
	}
	if f.Query != "" {
		p := likePattern(f.Query)
		q = q.Where("(name ILIKE ? OR description ILIKE ?)", p, p)
	}
	if f.Near != nil {
		minLat, maxLat, minLng, maxLng := geo.BoundingBox(*f.Near, f.RadiusKm)
		q = q.Where("lat BETWEEN ? AND ?", minLat, maxLat).
			Where("lng BETWEEN ? AND ?", minLng, maxLng).
			Where(haversineSQL("?::float8", "?::float8")+" <= ?", f.Near.Lat, f.Near.Lat, f.Near.Lng, f.RadiusKm)
	}
	return paged(q.OrderBy("verified DESC", "rating_avg DESC", "name ASC"), f.Limit, f.Offset)
}

func (r *BusinessesRepo) List(ctx context.Context, f businesses.ListFilter) ([]businesses.Business, int, error) {
	query, vals, err := businessListQuery(f).ToSql()
	if err != nil {
		return nil, 0, err
	}
	var rows []businessRow
	err = r.db.SelectContext(ctx, &rows, query, vals...)
	if err != nil {
		return nil, 0, err
	}
	out := make([]businesses.Business, 0, len(rows))
	total := 0
	for _, row := range rows {
		b, err := row.toDomain()
		if err != nil {
			return nil, 0, err
		}
		out = append(out, b)
		total = row.Total
	}
	return out, total, nil
}

// RefreshRating recalcula el agregado en una sola sentencia para que dos
// calificaciones concurrentes no dejen un promedio viejo.
func (r *BusinessesRepo) RefreshRating(ctx context.Context, id string) (float64, int, error) {
	if !isUUID(id) {
		return 0, 0, businesses.ErrNotFound
	}
	var agg struct {
		Avg   float64 `db:"rating_avg"`
		Count int     `db:"rating_count"`
	}
	err := r.db.GetContext(ctx, &agg, `
		UPDATE businesses SET
			rating_avg = (
				SELECT COALESCE(ROUND(AVG(stars)::numeric, 2), 0)::float8
				FROM business_ratings WHERE business_id = $1
			),
			rating_count = (SELECT COUNT(*) FROM business_ratings WHERE business_id = $1)
		WHERE id = $1
		RETURNING rating_avg, rating_count
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, 0, businesses.ErrNotFound
	}
	return agg.Avg, agg.Count, err
}

func (r *BusinessesRepo) CountUnverified(ctx context.Context) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM businesses WHERE NOT verified`)
	return n, err
}

type RatingsRepo struct {
	db *sqlx.DB
}

func NewRatingsRepo(db *sqlx.DB) *RatingsRepo {
	return &RatingsRepo{db: db}
}

type ratingRow struct {
	ID         string    `db:"id"`
	BusinessID string    `db:"business_id"`
	UserID     string    `db:"user_id"`
	Stars      int       `db:"stars"`
	Comment    string    `db:"comment"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
	Total      int       `db:"total"`
}

// Upsert: xmax = 0 solo en filas recién insertadas, así distinguimos alta de reemplazo.
// En un reemplazo RETURNING trae el id y created_at de la fila original.
func (r *RatingsRepo) Upsert(ctx context.Context, rt businesses.Rating) (businesses.Rating, bool, error) {
	var out struct {
		ID        string    `db:"id"`
		CreatedAt time.Time `db:"created_at"`
		Created   bool      `db:"created"`
	}
	err := r.db.GetContext(ctx, &out, `
		INSERT INTO business_ratings (id, business_id, user_id, stars, comment, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (business_id, user_id) DO UPDATE SET
			stars = EXCLUDED.stars,
			comment = EXCLUDED.comment,
			updated_at = EXCLUDED.updated_at
		RETURNING id, created_at, (xmax = 0) AS created
	`, rt.ID, rt.BusinessID, rt.UserID, rt.Stars, rt.Comment, rt.CreatedAt, rt.UpdatedAt)
	if err != nil {
		return businesses.Rating{}, false, err
	}
	rt.ID = out.ID
	rt.CreatedAt = out.CreatedAt
	return rt, out.Created, nil
}

func (r *RatingsRepo) ListByBusiness(ctx context.Context, businessID string, limit, offset int) ([]businesses.Rating, int, error) {
	if !isUUID(businessID) {
		return []businesses.Rating{}, 0, nil
	}
	var rows []ratingRow
	if err := r.db.SelectContext(ctx, &rows, `
		SELECT id, business_id, user_id, stars, comment, created_at, updated_at, COUNT(*) OVER() AS total
		FROM business_ratings
		WHERE business_id = $1
		ORDER BY updated_at DESC
		LIMIT $2 OFFSET $3
	`, businessID, limitOrDefault(limit), offset); err != nil {
		return nil, 0, err
	}
	out := make([]businesses.Rating, 0, len(rows))
	total := 0
	for _, row := range rows {
		out = append(out, businesses.Rating{
			ID:         row.ID,
			BusinessID: row.BusinessID,
			UserID:     row.UserID,
			Stars:      row.Stars,
			Comment:    row.Comment,
			CreatedAt:  row.CreatedAt,
			UpdatedAt:  row.UpdatedAt,
		})
		total = row.Total
	}
	return out, total, nil
}

func (r *RatingsRepo) Aggregate(ctx context.Context, businessID string) (float64, int, error) {
	var agg struct {
		Avg   float64 `db:"avg"`
		Count int     `db:"count"`
	}
	err := r.db.GetContext(ctx, &agg, `
		SELECT COALESCE(AVG(stars), 0)::float8 AS avg, COUNT(*) AS count
		FROM business_ratings
		WHERE business_id = $1
	`, businessID)
	return agg.Avg, agg.Count, err
}
