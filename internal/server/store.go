package server

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("not found")

// Roles attached to server-side auth sessions.
const (
	roleHost  = "host"
	roleJudge = "judge"
)

// Store persists the live game snapshot across restarts and holds
// host/judge auth sessions.
type Store interface {
	// SaveGame upserts the single live-session save code.
	SaveGame(ctx context.Context, code string) error
	// LoadGame returns the persisted save code, or ErrNotFound.
	LoadGame(ctx context.Context) (string, error)
	// ClearGame removes the persisted save code. Clearing an empty
	// store is not an error.
	ClearGame(ctx context.Context) error

	CreateSession(ctx context.Context, role string) (string, error)
	SessionRole(ctx context.Context, sessionID string) (string, error)
	DeleteSession(ctx context.Context, sessionID string) error
	// DeleteSessionsByRole drops every session with the given role.
	DeleteSessionsByRole(ctx context.Context, role string) error
}
