// Package leaderboard keeps a cross-game win/draw/loss tally per display
// name in Redis. Like the archive it only consumes finished matches;
// gameplay never reads it.
package leaderboard

import (
    "context"
    "fmt"
    "strconv"
    "strings"
    "time"

    "github.com/redis/go-redis/v9"

    "github.com/park285/chess-arena/internal/arena"
)

const rankingKey = "arena:leaderboard"

type Store struct{ rdb *redis.Client }

func NewStore(rdb *redis.Client) *Store { return &Store{rdb: rdb} }

// Open dials Redis from a URL and pings it.
func Open(redisURL string) (*Store, error) {
    if strings.TrimSpace(redisURL) == "" {
        return nil, fmt.Errorf("REDIS_URL is required")
    }
    opt, err := redis.ParseURL(redisURL)
    if err != nil {
        return nil, err
    }
    rdb := redis.NewClient(opt)
    ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
    defer cancel()
    if err := rdb.Ping(ctx).Err(); err != nil {
        return nil, err
    }
    return NewStore(rdb), nil
}

func (s *Store) Close() error {
    if s == nil || s.rdb == nil { return nil }
    return s.rdb.Close()
}

func (s *Store) keyPlayer(name string) string { return "arena:player:" + strings.TrimSpace(name) }

// Entry is one leaderboard row. Points follow match scoring: a win is
// worth 1, a draw 0.5.
type Entry struct {
    Name   string  `json:"name"`
    Wins   int64   `json:"wins"`
    Draws  int64   `json:"draws"`
    Losses int64   `json:"losses"`
    Points float64 `json:"points"`
}

// RecordResult tallies one finished match for both players.
func (s *Store) RecordResult(ctx context.Context, res arena.MatchResult) error {
    if s == nil || s.rdb == nil {
        return nil
    }
    white := strings.TrimSpace(res.White)
    black := strings.TrimSpace(res.Black)
    if white == "" || black == "" {
        return nil
    }

    switch res.Winner {
    case "White":
        return s.tally(ctx, white, "wins", 1, black, "losses", 0)
    case "Black":
        return s.tally(ctx, black, "wins", 1, white, "losses", 0)
    default:
        return s.tally(ctx, white, "draws", 0.5, black, "draws", 0.5)
    }
}

func (s *Store) tally(ctx context.Context, nameA, fieldA string, pointsA float64, nameB, fieldB string, pointsB float64) error {
    pipe := s.rdb.TxPipeline()
    pipe.HIncrBy(ctx, s.keyPlayer(nameA), fieldA, 1)
    pipe.HIncrBy(ctx, s.keyPlayer(nameB), fieldB, 1)
    pipe.ZIncrBy(ctx, rankingKey, pointsA, nameA)
    pipe.ZIncrBy(ctx, rankingKey, pointsB, nameB)
    _, err := pipe.Exec(ctx)
    return err
}

// Top returns the n highest-scoring players, best first.
func (s *Store) Top(ctx context.Context, n int64) ([]Entry, error) {
    if n <= 0 { n = 10 }
    ranked, err := s.rdb.ZRevRangeWithScores(ctx, rankingKey, 0, n-1).Result()
    if err != nil {
        return nil, err
    }
    out := make([]Entry, 0, len(ranked))
    for _, z := range ranked {
        name, _ := z.Member.(string)
        entry := Entry{Name: name, Points: z.Score}
        counts, err := s.rdb.HGetAll(ctx, s.keyPlayer(name)).Result()
        if err != nil && err != redis.Nil {
            return nil, err
        }
        entry.Wins = parseCount(counts["wins"])
        entry.Draws = parseCount(counts["draws"])
        entry.Losses = parseCount(counts["losses"])
        out = append(out, entry)
    }
    return out, nil
}

func parseCount(s string) int64 {
    n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
    if err != nil { return 0 }
    return n
}
