package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	apperrors "github.com/peeyushtyagi09/newShopingAI/pkg/errors"
	"github.com/peeyushtyagi09/newShopingAI/pkg/database"
	"github.com/peeyushtyagi09/newShopingAI/services/storefront/internal/repository"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migrations returns the schema files for database.RunMigrations.
func Migrations() fs.FS {
	sub, err := fs.Sub(migrationFiles, "migrations")
	if err != nil {
		panic(err)
	}
	return sub
}

const (
	getValueSQL = `SELECT value FROM visitor_storage WHERE visitor_id = $1 AND key = $2`

	setValueSQL = `INSERT INTO visitor_storage (visitor_id, key, value, updated_at)
VALUES ($1, $2, $3, NOW())
ON CONFLICT (visitor_id, key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`

	deleteValueSQL = `DELETE FROM visitor_storage WHERE visitor_id = $1 AND key = $2`
)

// DB is the subset of *pgxpool.Pool the store uses.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

// Backend implements repository.Backend on the visitor_storage table.
type Backend struct {
	db DB
}

// NewBackend creates a PostgreSQL-backed store.
func NewBackend(db DB) *Backend {
	return &Backend{db: db}
}

// Scope returns the namespace of visitorID.
func (b *Backend) Scope(visitorID string) repository.KeyValueStore {
	return &store{db: b.db, visitor: visitorID}
}

// Ping checks the database connection.
func (b *Backend) Ping(ctx context.Context) error {
	return b.db.Ping(ctx)
}

type store struct {
	db      DB
	visitor string
}

func (s *store) Get(ctx context.Context, key string) (_ string, err error) {
	ctx, end := database.TraceQuery(ctx, "postgresql", "GetValue", getValueSQL)
	defer func() { end(err) }()

	var value string
	if err = s.db.QueryRow(ctx, getValueSQL, s.visitor, key).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperrors.NotFound("storage key", key)
		}
		return "", fmt.Errorf("select %s: %w", key, err)
	}
	return value, nil
}

func (s *store) Set(ctx context.Context, key, value string) (err error) {
	ctx, end := database.TraceQuery(ctx, "postgresql", "SetValue", setValueSQL)
	defer func() { end(err) }()

	if _, err = s.db.Exec(ctx, setValueSQL, s.visitor, key, value); err != nil {
		return fmt.Errorf("upsert %s: %w", key, err)
	}
	return nil
}

func (s *store) Delete(ctx context.Context, key string) (err error) {
	ctx, end := database.TraceQuery(ctx, "postgresql", "DeleteValue", deleteValueSQL)
	defer func() { end(err) }()

	if _, err = s.db.Exec(ctx, deleteValueSQL, s.visitor, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}
