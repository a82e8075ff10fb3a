package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"scanmyride/pkg/logger"
	"scanmyride/storage"
)

type clientStateRepo struct {
	db  *pgxpool.Pool
	log logger.ILogger
}

func NewClientStateRepo(db *pgxpool.Pool, log logger.ILogger) storage.IClientStateStorage {
	return &clientStateRepo{db: db, log: log}
}

func (r *clientStateRepo) Get(ctx context.Context, clientID, key string) (string, bool, error) {
	var value string
	query := `SELECT value FROM client_state WHERE client_id = $1 AND key = $2`
	err := r.db.QueryRow(ctx, query, clientID, key).Scan(&value)
	if err != nil {
		if err == pgx.ErrNoRows {
			return "", false, nil
		}
		r.log.Error("failed to get client state", logger.String("key", key), logger.Error(err))
		return "", false, err
	}
	return value, true, nil
}

func (r *clientStateRepo) Set(ctx context.Context, clientID, key, value string) error {
	query := `
		INSERT INTO client_state (client_id, key, value)
		VALUES ($1, $2, $3)
		ON CONFLICT (client_id, key) DO UPDATE
		SET value = EXCLUDED.value, updated_at = NOW()
	`
	if _, err := r.db.Exec(ctx, query, clientID, key, value); err != nil {
		r.log.Error("failed to set client state", logger.String("key", key), logger.Error(err))
		return err
	}
	return nil
}

func (r *clientStateRepo) Delete(ctx context.Context, clientID string, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	_, err := r.db.Exec(ctx, `DELETE FROM client_state WHERE client_id = $1 AND key = ANY($2)`, clientID, keys)
	if err != nil {
		r.log.Error("failed to delete client state", logger.Error(err))
	}
	return err
}

func (r *clientStateRepo) Truncate(ctx context.Context) error {
	_, err := r.db.Exec(ctx, `TRUNCATE TABLE client_state`)
	return err
}
