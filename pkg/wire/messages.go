// Package wire defines the JSON protocol spoken over the websocket.
// Every frame is an Envelope; Data carries one of the payload types below.
package wire

import (
	"encoding/json"
	"time"
)

// Inbound event names.
const (
	EvtRegister          = "register"
	EvtMove              = "move"
	EvtGetBoardState     = "getBoardState"
	EvtGetGameStats      = "getGameStats"
	EvtGetAvailableGames = "getAvailableGames"
	EvtResetScores       = "resetScores"
)

// Outbound event names.
const (
	EvtRoleAssigned       = "roleAssigned"
	EvtSpectatorAssigned  = "spectatorAssigned"
	EvtGameID             = "gameId"
	EvtSeatNames          = "seatNames"
	EvtBoardState         = "boardState"
	EvtGameStats          = "gameStats"
	EvtMoveApplied        = "moveApplied"
	EvtInvalidMove        = "invalidMove"
	EvtCheck              = "check"
	EvtGameOver           = "gameOver"
	EvtResetGame          = "resetGame"
	EvtGameReady          = "gameReady"
	EvtPlayerDisconnected = "playerDisconnected"
	EvtAvailableGames     = "availableGames"
	EvtScoresUpdate       = "scoresUpdate"
	EvtError              = "error"
)

// Register intents.
const (
	IntentNewGame  = "newGame"
	IntentSpectate = "spectate"
)

// Envelope is the frame read off the socket. Data stays raw until the
// event name selects a payload type.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Outbound is a frame ready for marshalling.
type Outbound struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// Inbound payloads.

type Register struct {
	Name   string `json:"name"`
	Intent string `json:"intent"`
	GameID int    `json:"gameId,omitempty"`
}

type Move struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Promotion string `json:"promotion,omitempty"`
}

// Outbound payloads.

type RoleAssigned struct {
	Role string `json:"role"`
}

type GameID struct {
	GameID int `json:"gameId"`
}

type SeatNames struct {
	White string `json:"white"`
	Black string `json:"black"`
}

type BoardState struct {
	FEN string `json:"fen"`
}

type Scores struct {
	White float64 `json:"white"`
	Black float64 `json:"black"`
}

// Captured holds lowercase piece letters, one per piece taken from that side.
type Captured struct {
	White []string `json:"white"`
	Black []string `json:"black"`
}

type HistoryEntry struct {
	SAN string    `json:"san"`
	UCI string    `json:"uci"`
	FEN string    `json:"fen"`
	At  time.Time `json:"at"`
}

type GameStats struct {
	PlyCount int            `json:"plyCount"`
	Captured Captured       `json:"captured"`
	Turn     string         `json:"turn"`
	InCheck  bool           `json:"inCheck"`
	Scores   Scores         `json:"scores"`
	History  []HistoryEntry `json:"history,omitempty"`
}

type MoveApplied struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Piece    string `json:"piece"`
	SAN      string `json:"san"`
	Captured string `json:"captured,omitempty"`
	Color    string `json:"color"`
}

type InvalidMove struct {
	Reason string `json:"reason"`
	Move   string `json:"move,omitempty"`
	FEN    string `json:"fen,omitempty"`
}

type Check struct {
	Color string `json:"color"`
}

type GameOver struct {
	Winner          string  `json:"winner"`
	Reason          string  `json:"reason"`
	Scores          Scores  `json:"scores"`
	PlyCount        int     `json:"plyCount"`
	DurationSeconds float64 `json:"durationSeconds"`
}

type PlayerDisconnected struct {
	Name    string `json:"name"`
	Message string `json:"message,omitempty"`
}

// GameSummary is one row of the registry listing.
type GameSummary struct {
	GameID         int       `json:"gameId"`
	Players        SeatNames `json:"players"`
	SpectatorCount int       `json:"spectatorCount"`
	Phase          string    `json:"phase"`
	InProgress     bool      `json:"gameInProgress"`
	MoveCount      int       `json:"moveCount"`
}

type ErrorMessage struct {
	Message string `json:"message"`
}
