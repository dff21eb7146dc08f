// Package archive persists finished matches to Postgres. Writes are
// fire-and-forget from the coordinator's point of view; nothing in the
// arena reads them back.
package archive

import (
    "context"
    "database/sql"
    "encoding/json"
    "fmt"
    "strings"
    "time"

    _ "github.com/lib/pq"

    "github.com/park285/chess-arena/internal/arena"
)

type Repository struct {
    db *sql.DB
}

func NewRepository(databaseURL string) (*Repository, error) {
    if strings.TrimSpace(databaseURL) == "" {
        return nil, fmt.Errorf("DATABASE_URL is required")
    }
    db, err := sql.Open("postgres", databaseURL)
    if err != nil {
        return nil, err
    }
    db.SetMaxOpenConns(16)
    db.SetMaxIdleConns(8)
    db.SetConnMaxLifetime(30 * time.Minute)
    ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
    defer cancel()
    if err := db.PingContext(ctx); err != nil {
        return nil, err
    }
    if err := migrate(ctx, db); err != nil {
        return nil, err
    }
    return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
    if r == nil || r.db == nil { return nil }
    return r.db.Close()
}

func migrate(ctx context.Context, db *sql.DB) error {
    _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS arena_games (
        id BIGSERIAL PRIMARY KEY,
        game_id INTEGER NOT NULL,
        white_name TEXT NOT NULL,
        black_name TEXT NOT NULL,
        winner TEXT NOT NULL,
        reason TEXT NOT NULL,
        moves_uci TEXT NOT NULL,
        moves_san TEXT NOT NULL,
        pgn TEXT NOT NULL,
        ply_count INTEGER NOT NULL,
        duration_ms BIGINT NOT NULL,
        finished_at TIMESTAMPTZ NOT NULL
    )`)
    return err
}

// RecordResult appends one finished match. Game ids recycle across the
// process lifetime, so every match is its own row.
func (r *Repository) RecordResult(ctx context.Context, res arena.MatchResult) error {
    if r == nil || r.db == nil {
        return nil
    }

    duration := res.Duration.Milliseconds()
    if duration < 0 { duration = 0 }

    movesUCIRaw, _ := json.Marshal(res.MovesUCI)
    movesSANRaw, _ := json.Marshal(res.MovesSAN)

    q := `INSERT INTO arena_games (
        game_id, white_name, black_name, winner, reason,
        moves_uci, moves_san, pgn, ply_count, duration_ms, finished_at
      ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`

    _, err := r.db.ExecContext(ctx, q,
        res.GameID,
        res.White, res.Black,
        strings.TrimSpace(res.Winner), strings.TrimSpace(res.Reason),
        string(movesUCIRaw), string(movesSANRaw),
        BuildPGN(res), res.PlyCount, duration, res.FinishedAt,
    )
    return err
}

// BuildPGN wraps the recorded movetext with standard headers.
func BuildPGN(res arena.MatchResult) string {
    var b strings.Builder
    date := res.FinishedAt
    if date.IsZero() {
        date = time.Now()
    }
    b.WriteString("[Event \"Chess Arena\"]\n")
    b.WriteString(fmt.Sprintf("[Date \"%04d.%02d.%02d\"]\n", date.Year(), int(date.Month()), date.Day()))
    b.WriteString(fmt.Sprintf("[Round \"%d\"]\n", res.GameID))
    b.WriteString(fmt.Sprintf("[White \"%s\"]\n", sanitizePGN(res.White)))
    b.WriteString(fmt.Sprintf("[Black \"%s\"]\n", sanitizePGN(res.Black)))
    if strings.TrimSpace(res.Reason) != "" {
        b.WriteString(fmt.Sprintf("[Termination \"%s\"]\n", sanitizePGN(strings.ReplaceAll(res.Reason, "_", " "))))
    }
    b.WriteString(fmt.Sprintf("[Result \"%s\"]\n\n", mapResultToPGN(res.Winner)))
    b.WriteString(strings.TrimSpace(res.PGN))
    return b.String()
}

func mapResultToPGN(winner string) string {
    switch strings.ToLower(strings.TrimSpace(winner)) {
    case "white":
        return "1-0"
    case "black":
        return "0-1"
    case "draw":
        return "1/2-1/2"
    default:
        return "*"
    }
}

func sanitizePGN(s string) string {
    s = strings.ReplaceAll(s, "\\", " ")
    s = strings.ReplaceAll(s, "\"", "'")
    return strings.TrimSpace(s)
}
