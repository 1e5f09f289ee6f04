package credentials

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"storeadmin/internal/dbx"
)

// accessTokenKey is the single slot name holding the bearer token.
const accessTokenKey = "access_token"

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Get(ctx context.Context) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx,
		`SELECT value FROM credentials WHERE key = ?`, accessTokenKey).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get credential: %w", err)
	}
	return value, nil
}

func (r *SQLiteRepository) Set(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO credentials (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, accessTokenKey, token)
	if err != nil {
		return fmt.Errorf("failed to set credential: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM credentials WHERE key = ?`, accessTokenKey)
	if err != nil {
		return fmt.Errorf("failed to clear credential: %w", err)
	}
	return nil
}
