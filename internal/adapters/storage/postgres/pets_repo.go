package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"pet-reunite/internal/domain/pets"
	"pet-reunite/internal/platform/geo"
)

type PetsRepo struct {
	db *sql.DB
}

func NewPetsRepo(db *sql.DB) *PetsRepo {
	return &PetsRepo{db: db}
}

const petColumns = `
	id, reporter_user_id,
	status, species, breed, color, size, sex, name,
	description, photo_urls,
	lat, lng, address, district,
	event_at, contact_phone, reward,
	created_at, updated_at, closed_at`

func (r *PetsRepo) Create(ctx context.Context, p pets.Pet) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO pets (`+petColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21)
	`,
		p.ID,
		p.ReporterUserID,
		string(p.Status),
		string(p.Species),
		p.Breed,
		p.Color,
		string(p.Size),
		string(p.Sex),
		p.Name,
		p.Description,
		pq.Array(p.PhotoURLs),
		p.Location.Lat,
		p.Location.Lng,
		p.Location.Address,
		p.Location.District,
		p.EventAt,
		p.ContactPhone,
		p.Reward,
		p.CreatedAt,
		p.UpdatedAt,
		toNullTime(p.ClosedAt),
	)
	return err
}

// Update usa updated_at como versión: 0 filas con la fila presente es una
// escritura concurrente y se reporta como ErrBadState.
func (r *PetsRepo) Update(ctx context.Context, p pets.Pet, prevUpdatedAt time.Time) error {
	if !isUUID(p.ID) {
		return pets.ErrNotFound
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE pets
		SET
			status = $2,
			species = $3,
			breed = $4,
			color = $5,
			size = $6,
			sex = $7,
			name = $8,
			description = $9,
			photo_urls = $10,
			lat = $11,
			lng = $12,
			address = $13,
			district = $14,
			event_at = $15,
			contact_phone = $16,
			reward = $17,
			updated_at = $18,
			closed_at = $19
		WHERE id = $1 AND updated_at = $20
	`,
		p.ID,
		string(p.Status),
		string(p.Species),
		p.Breed,
		p.Color,
		string(p.Size),
		string(p.Sex),
		p.Name,
		p.Description,
		pq.Array(p.PhotoURLs),
		p.Location.Lat,
		p.Location.Lng,
		p.Location.Address,
		p.Location.District,
		p.EventAt,
		p.ContactPhone,
		p.Reward,
		p.UpdatedAt,
		toNullTime(p.ClosedAt),
		prevUpdatedAt,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}
	var exists bool
	if err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM pets WHERE id = $1)`, p.ID).Scan(&exists); err != nil {
		return err
	}
	if exists {
		return pets.ErrBadState
	}
	return pets.ErrNotFound
}

func (r *PetsRepo) Delete(ctx context.Context, id string) error {
	if !isUUID(id) {
		return pets.ErrNotFound
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM pets WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return pets.ErrNotFound
	}
	return nil
}

func (r *PetsRepo) GetByID(ctx context.Context, id string) (pets.Pet, error) {
	id = strings.TrimSpace(id)
	if !isUUID(id) {
		return pets.Pet{}, pets.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `SELECT `+petColumns+` FROM pets WHERE id = $1`, id)
	p, err := scanPet(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return pets.Pet{}, pets.ErrNotFound
		}
		return pets.Pet{}, err
	}
	return p, nil
}

// List filtra en SQL. Con Near primero recorta por bounding box (usa el índice lat/lng)
// y después por distancia haversine exacta, ordenando por cercanía.
func (r *PetsRepo) List(ctx context.Context, f pets.ListFilter) ([]pets.Pet, int, error) {
	var a args

	if len(f.Statuses) > 0 {
		sts := make([]string, 0, len(f.Statuses))
		for _, s := range f.Statuses {
			sts = append(sts, string(s))
		}
		a.where("status = ANY(" + a.add(pq.Array(sts)) + ")")
	}
	if f.Species != "" {
		a.where("species = " + a.add(string(f.Species)))
	}
	if f.ReporterUserID != "" {
		a.where("reporter_user_id = " + a.add(f.ReporterUserID))
	}
	if f.District != "" {
		a.where("lower(district) = lower(" + a.add(f.District) + ")")
	}
	if f.Query != "" {
		p := a.add(likePattern(f.Query))
		a.where(fmt.Sprintf("(name ILIKE %[1]s OR breed ILIKE %[1]s OR color ILIKE %[1]s OR description ILIKE %[1]s OR address ILIKE %[1]s)", p))
	}

	order := "created_at DESC, id ASC"
	if f.Near != nil {
		minLat, maxLat, minLng, maxLng := geo.BoundingBox(*f.Near, f.RadiusKm)
		a.where(fmt.Sprintf("lat BETWEEN %s AND %s", a.add(minLat), a.add(maxLat)))
		a.where(fmt.Sprintf("lng BETWEEN %s AND %s", a.add(minLng), a.add(maxLng)))
		dist := haversineSQL(a.add(f.Near.Lat), a.add(f.Near.Lng))
		a.where(dist + " <= " + a.add(f.RadiusKm))
		order = dist + " ASC, created_at DESC, id ASC"
	}

	limit := a.add(limitOrDefault(f.Limit))
	offset := a.add(f.Offset)

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+petColumns+`, COUNT(*) OVER() AS total
		FROM pets`+a.clause()+`
		ORDER BY `+order+`
		LIMIT `+limit+` OFFSET `+offset, a.vals...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]pets.Pet, 0)
	total := 0
	for rows.Next() {
		p, err := scanPet(rows, &total)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *PetsRepo) CountOpenByStatus(ctx context.Context) (map[pets.Status]int, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT status, COUNT(*)
		FROM pets
		WHERE status IN ('lost','found','sighted','adoption')
		GROUP BY status
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[pets.Status]int{}
	for rows.Next() {
		var st string
		var n int
		if err := rows.Scan(&st, &n); err != nil {
			return nil, err
		}
		out[pets.Status(st)] = n
	}
	return out, rows.Err()
}

func (r *PetsRepo) CountClosedSince(ctx context.Context, since time.Time) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM pets WHERE status = 'reunited' AND closed_at >= $1
	`, since).Scan(&n)
	return n, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPet(row rowScanner, extra ...any) (pets.Pet, error) {
	var p pets.Pet
	var status, species, size, sex string
	var photos pq.StringArray
	var closed sql.NullTime

	dest := []any{
		&p.ID,
		&p.ReporterUserID,
		&status,
		&species,
		&p.Breed,
		&p.Color,
		&size,
		&sex,
		&p.Name,
		&p.Description,
		&photos,
		&p.Location.Lat,
		&p.Location.Lng,
		&p.Location.Address,
		&p.Location.District,
		&p.EventAt,
		&p.ContactPhone,
		&p.Reward,
		&p.CreatedAt,
		&p.UpdatedAt,
		&closed,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return pets.Pet{}, err
	}

	p.Status = pets.Status(status)
	p.Species = pets.Species(species)
	p.Size = pets.Size(size)
	p.Sex = pets.Sex(sex)
	p.PhotoURLs = []string(photos)
	if closed.Valid {
		t := closed.Time
		p.ClosedAt = &t
	}
	return p, nil
}

// haversineSQL devuelve la expresión de distancia en km entre (lat, lng) y el punto dado.
func haversineSQL(latArg, lngArg string) string {
	return fmt.Sprintf(`(6371 * 2 * asin(sqrt(
		power(sin(radians(lat - %[1]s) / 2), 2) +
		cos(radians(%[1]s)) * cos(radians(lat)) * power(sin(radians(lng - %[2]s) / 2), 2)
	)))`, latArg, lngArg)
}

func toNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{Valid: false}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
