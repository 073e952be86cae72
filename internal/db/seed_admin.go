package db

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/inkwell/bloghub/internal/auth"
	"github.com/inkwell/bloghub/internal/config"
	"github.com/inkwell/bloghub/internal/security"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureAdminUser creates the configured admin account on boot if it is not
// present yet. A no-op when the env does not configure one.
func EnsureAdminUser(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}

	var dummy string

	err := pool.QueryRow(ctx, `SELECT id FROM users WHERE email = $1`, cfg.AdminEmail).Scan(&dummy)

	if err == nil {
		return nil
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hash, err := security.HashPassword(cfg.AdminPassword)

	if err != nil {
		return err
	}

	now := time.Now().UTC()

	_, err = pool.Exec(ctx,
		`INSERT INTO users (id, email, password_hash, first_name, last_name, role, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		`,
		uuid.NewString(), cfg.AdminEmail, hash, cfg.AdminName, "", auth.RoleAdmin, now, now,
	)

	return err
}
