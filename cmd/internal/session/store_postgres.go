package session

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists device sessions in the warden.device_sessions
// table. The pool is owned by the caller; Close is a no-op.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a store backed by the given pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) GetActiveByUser(ctx context.Context, userID string) ([]Record, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, device_id, status, created_at, last_seen_at, status_changed_at
		FROM warden.device_sessions
		WHERE user_id = $1 AND status = 'active'
		ORDER BY created_at ASC, device_id ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.DeviceID, &rec.Status, &rec.CreatedAt, &rec.LastSeenAt, &rec.StatusChangedAt); err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return recs, nil
}

func (s *PostgresStore) Get(ctx context.Context, userID, deviceID string) (Record, error) {
	var rec Record
	err := s.pool.QueryRow(ctx, `
		SELECT id, user_id, device_id, status, created_at, last_seen_at, status_changed_at
		FROM warden.device_sessions
		WHERE user_id = $1 AND device_id = $2
	`, userID, deviceID).Scan(&rec.ID, &rec.UserID, &rec.DeviceID, &rec.Status, &rec.CreatedAt, &rec.LastSeenAt, &rec.StatusChangedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, err
	}
	return rec, nil
}

func (s *PostgresStore) Upsert(ctx context.Context, rec Record) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO warden.device_sessions (id, user_id, device_id, status, created_at, last_seen_at, status_changed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id, device_id) DO UPDATE SET
			id = EXCLUDED.id,
			status = EXCLUDED.status,
			created_at = EXCLUDED.created_at,
			last_seen_at = EXCLUDED.last_seen_at,
			status_changed_at = EXCLUDED.status_changed_at
	`, rec.ID, rec.UserID, rec.DeviceID, rec.Status, rec.CreatedAt, rec.LastSeenAt, rec.StatusChangedAt)
	return err
}

func (s *PostgresStore) Touch(ctx context.Context, userID, deviceID string, at time.Time) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE warden.device_sessions
		SET last_seen_at = $3
		WHERE user_id = $1 AND device_id = $2 AND status = 'active'
	`, userID, deviceID, at)
	return err
}

func (s *PostgresStore) SetStatus(ctx context.Context, userID, deviceID string, status Status, at time.Time) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE warden.device_sessions
		SET status = $3, status_changed_at = $4
		WHERE user_id = $1 AND device_id = $2
	`, userID, deviceID, status, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, userID, deviceID string) error {
	_, err := s.pool.Exec(ctx, `
		DELETE FROM warden.device_sessions
		WHERE user_id = $1 AND device_id = $2
	`, userID, deviceID)
	return err
}

func (s *PostgresStore) PurgeInactiveBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM warden.device_sessions
		WHERE status <> 'active' AND status_changed_at < $1
	`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (s *PostgresStore) Close() error { return nil }
