package db

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/planhub/planhub/internal/config"
	"github.com/planhub/planhub/internal/security"
)

// EnsureSeedUser creates a demo account when SEED_EMAIL/SEED_PASSWORD are
// set. Useful for local runs; a no-op when the account already exists.
func EnsureSeedUser(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if cfg.SeedEmail == "" || cfg.SeedPassword == "" {
		return nil
	}

	var dummy string

	err := pool.QueryRow(ctx, `SELECT id FROM users WHERE email = $1`, cfg.SeedEmail).Scan(&dummy)

	if err == nil {
		return nil
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hash, err := security.HashPassword(cfg.SeedPassword)

	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx,
		`INSERT INTO users (id, email, username, password_hash, created_at)
		VALUES ($1,$2,$3,$4,$5)
		`,
		uuid.NewString(), cfg.SeedEmail, cfg.SeedUsername, hash, time.Now().UTC(),
	)

	return err
}
