package client

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"

	"storeadmin/internal/client/migrations"
	"storeadmin/internal/repositories/credentials"
)

// Repositories bundles the local-storage repositories plus the owning DB
// handle so the application can close it on shutdown.
type Repositories struct {
	Credentials credentials.Repository
	DB          *sql.DB
}

func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// InitDatabase opens the local sqlite database at dsn, applies pending
// migrations, and wires the repositories.
func InitDatabase(ctx context.Context, dsn string) (*Repositories, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Repositories{
		Credentials: credentials.NewSQLiteRepository(db),
		DB:          db,
	}, nil
}
