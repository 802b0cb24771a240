package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
)

//go:embed schema.sql
var schemaSQL string

// Open abre una conexión pool a Postgres usando pgx (database/sql).
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// Sqlx envuelve el mismo pool para los repos que escanean a structs.
func Sqlx(db *sql.DB) *sqlx.DB {
	return sqlx.NewDb(db, "pgx")
}

// Migrate aplica el schema embebido. Todas las sentencias son idempotentes
// (IF NOT EXISTS), así que se puede correr en cada deploy.
func Migrate(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return tx.Commit()
}

// psql arma los listados con filtros opcionales.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

func paged(q sq.SelectBuilder, limit, offset int) sq.SelectBuilder {
	return q.Limit(uint64(limitOrDefault(limit))).Offset(uint64(max(offset, 0)))
}

// args acumula parámetros posicionales ($1, $2, ...). Se usa donde el mismo
// parámetro aparece en SELECT, WHERE y ORDER BY (distancia, vector).
type args struct {
	vals  []any
	conds []string
}

func (a *args) add(v any) string {
	a.vals = append(a.vals, v)
	return fmt.Sprintf("$%d", len(a.vals))
}

func (a *args) where(cond string) {
	a.conds = append(a.conds, cond)
}

func (a *args) clause() string {
	if len(a.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(a.conds, " AND ")
}

func likePattern(q string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.TrimSpace(q)) + "%"
}

func limitOrDefault(limit int) int {
	if limit <= 0 {
		return 20
	}
	return limit
}

// isUUID evita mandar a Postgres ids que romperían el cast a uuid (se tratan como not found).
func isUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
