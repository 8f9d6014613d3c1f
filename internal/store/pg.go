package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore is a PostgreSQL-backed Store for deployments that outgrow the
// single JSON file.
type PGStore struct {
	pool *pgxpool.Pool
}

// OpenPG connects to PostgreSQL and ensures the users table exists.
func OpenPG(ctx context.Context, databaseURL string) (*PGStore, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing database URL: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	schema := `
		CREATE TABLE IF NOT EXISTS lyrix_users (
			user_id       BIGINT PRIMARY KEY,
			refresh_token TEXT NOT NULL,
			playlist_id   TEXT NOT NULL DEFAULT '',
			username      TEXT NOT NULL DEFAULT '',
			homeserver    TEXT NOT NULL DEFAULT '',
			homeserver_token TEXT NOT NULL DEFAULT ''
		)
	`
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("creating users table: %w", err)
	}

	return &PGStore{pool: pool}, nil
}

// Close closes the connection pool.
func (s *PGStore) Close() {
	s.pool.Close()
}

// Get returns the record for a user id, or ErrNotFound.
func (s *PGStore) Get(ctx context.Context, userID int64) (*UserRecord, error) {
	query := `
		SELECT user_id, refresh_token, playlist_id, username, homeserver, homeserver_token
		FROM lyrix_users
		WHERE user_id = $1
	`
	var rec UserRecord
	err := s.pool.QueryRow(ctx, query, userID).Scan(
		&rec.UserID,
		&rec.RefreshToken,
		&rec.PlaylistID,
		&rec.Username,
		&rec.Homeserver,
		&rec.HomeserverToken,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying user: %w", err)
	}
	return &rec, nil
}

// Upsert creates or replaces the record for rec.UserID.
func (s *PGStore) Upsert(ctx context.Context, rec *UserRecord) error {
	query := `
		INSERT INTO lyrix_users (user_id, refresh_token, playlist_id, username, homeserver, homeserver_token)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO UPDATE SET
			refresh_token = EXCLUDED.refresh_token,
			playlist_id   = EXCLUDED.playlist_id,
			username      = EXCLUDED.username,
			homeserver    = EXCLUDED.homeserver,
			homeserver_token = EXCLUDED.homeserver_token
	`
	_, err := s.pool.Exec(ctx, query,
		rec.UserID,
		rec.RefreshToken,
		rec.PlaylistID,
		rec.Username,
		rec.Homeserver,
		rec.HomeserverToken,
	)
	if err != nil {
		return fmt.Errorf("upserting user: %w", err)
	}
	return nil
}

// All returns every record in the store.
func (s *PGStore) All(ctx context.Context) ([]UserRecord, error) {
	query := `
		SELECT user_id, refresh_token, playlist_id, username, homeserver, homeserver_token
		FROM lyrix_users
	`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying users: %w", err)
	}
	defer rows.Close()

	var users []UserRecord
	for rows.Next() {
		var rec UserRecord
		if err := rows.Scan(&rec.UserID, &rec.RefreshToken, &rec.PlaylistID, &rec.Username, &rec.Homeserver, &rec.HomeserverToken); err != nil {
			return nil, fmt.Errorf("scanning user row: %w", err)
		}
		users = append(users, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating user rows: %w", err)
	}
	return users, nil
}
