// Package arena coordinates concurrent chess matches over a shared
// connection hub: seat assignment, turn enforcement, game lifecycle and
// the derived scoreboard. All mutable state is owned by a single
// Coordinator goroutine; see coordinator.go.
package arena

import (
	"context"
	"errors"
	"time"

	"github.com/park285/chess-arena/pkg/wire"
)

// Phase is a game's lifecycle state.
type Phase string

const (
	PhaseWaiting    Phase = "waiting"
	PhaseInProgress Phase = "in_progress"
	PhaseEnded      Phase = "ended"
)

// Role is what a participant was admitted as.
type Role string

const (
	RoleWhite     Role = "white"
	RoleBlack     Role = "black"
	RoleSpectator Role = "spectator"
)

// Seat is one of the two colored player slots. Score accumulates across
// resets for as long as the game id lives.
type Seat struct {
	ConnID string
	Name   string
	Score  float64
}

func (s Seat) Occupied() bool { return s.ConnID != "" }

// Move preconditions, checked in submit order. Delivered to the sender
// only, never broadcast.
var (
	ErrNotYourTurn        = errors.New("not_your_turn")
	ErrWaitingForOpponent = errors.New("waiting_for_opponent")
	ErrNoActiveGame       = errors.New("no_active_game")
	ErrGameNotFound       = errors.New("game_not_found")
)

// Sender delivers one frame to one connection. Implemented by the
// websocket hub; delivery is best-effort and must not block.
type Sender interface {
	Send(connID string, msg wire.Outbound)
}

// MatchResult is the summary of one finished match, handed to recorders.
type MatchResult struct {
	GameID     int
	White      string
	Black      string
	Winner     string // "White", "Black" or "Draw"
	Reason     string // terminal reason tag
	PGN        string
	MovesUCI   []string
	MovesSAN   []string
	PlyCount   int
	Duration   time.Duration
	FinishedAt time.Time
}

// ResultRecorder persists a finished match. Recorders run outside the
// coordinator loop and must not assume ordering between matches.
type ResultRecorder interface {
	RecordResult(ctx context.Context, res MatchResult) error
}
