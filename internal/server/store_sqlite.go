package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore runs the store's DDL and returns a ready store.
func NewSQLiteStore(ctx context.Context, db *sql.DB) (*SQLiteStore, error) {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS game_snapshot (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			code TEXT NOT NULL,
			updated_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
		)`,
		`CREATE TABLE IF NOT EXISTS auth_sessions (
			id TEXT PRIMARY KEY DEFAULT (lower(hex(randomblob(16)))),
			role TEXT NOT NULL,
			created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
		)`,
	}
	for _, stmt := range ddl {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return nil, fmt.Errorf("creating schema: %w", err)
		}
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) SaveGame(ctx context.Context, code string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO game_snapshot (id, code, updated_at)
		VALUES (1, ?, strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
		ON CONFLICT (id) DO UPDATE SET
			code = excluded.code,
			updated_at = excluded.updated_at
	`, code)
	return err
}

func (s *SQLiteStore) LoadGame(ctx context.Context) (string, error) {
	var code string
	err := s.db.QueryRowContext(ctx, `SELECT code FROM game_snapshot WHERE id = 1`).Scan(&code)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	return code, err
}

func (s *SQLiteStore) ClearGame(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM game_snapshot WHERE id = 1`)
	return err
}

func (s *SQLiteStore) CreateSession(ctx context.Context, role string) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO auth_sessions (role)
		VALUES (?)
		RETURNING id
	`, role).Scan(&id)
	return id, err
}

func (s *SQLiteStore) SessionRole(ctx context.Context, sessionID string) (string, error) {
	var role string
	err := s.db.QueryRowContext(ctx, `
		SELECT role FROM auth_sessions WHERE id = ?
	`, sessionID).Scan(&role)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	return role, err
}

func (s *SQLiteStore) DeleteSession(ctx context.Context, sessionID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM auth_sessions WHERE id = ?`, sessionID)
	return err
}

func (s *SQLiteStore) DeleteSessionsByRole(ctx context.Context, role string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM auth_sessions WHERE role = ?`, role)
	return err
}
