package leaderboard

import (
    "context"
    "testing"

    miniredis "github.com/alicebob/miniredis/v2"
    "github.com/redis/go-redis/v9"

    "github.com/park285/chess-arena/internal/arena"
)

func newTestStore(t *testing.T) *Store {
    t.Helper()
    mr, err := miniredis.Run()
    if err != nil { t.Fatalf("miniredis: %v", err) }
    t.Cleanup(mr.Close)
    rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
    t.Cleanup(func() { _ = rdb.Close() })
    return NewStore(rdb)
}

func TestRecordResultTally(t *testing.T) {
    s := newTestStore(t)
    ctx := context.Background()

    results := []arena.MatchResult{
        {White: "alice", Black: "bob", Winner: "White"},
        {White: "alice", Black: "bob", Winner: "White"},
        {White: "bob", Black: "alice", Winner: "Black"},
        {White: "carol", Black: "bob", Winner: "Draw"},
    }
    for _, res := range results {
        if err := s.RecordResult(ctx, res); err != nil {
            t.Fatalf("RecordResult: %v", err)
        }
    }

    top, err := s.Top(ctx, 10)
    if err != nil { t.Fatalf("Top: %v", err) }
    if len(top) != 3 {
        t.Fatalf("expected 3 players, got %d: %+v", len(top), top)
    }
    if top[0].Name != "alice" || top[0].Points != 3 || top[0].Wins != 3 {
        t.Fatalf("first entry %+v", top[0])
    }
    var bob Entry
    for _, e := range top {
        if e.Name == "bob" { bob = e }
    }
    if bob.Losses != 3 || bob.Draws != 1 || bob.Points != 0.5 {
        t.Fatalf("bob tally %+v", bob)
    }
}

func TestRecordResultSkipsUnseatedNames(t *testing.T) {
    s := newTestStore(t)
    ctx := context.Background()
    if err := s.RecordResult(ctx, arena.MatchResult{White: "", Black: "bob", Winner: "Black"}); err != nil {
        t.Fatalf("RecordResult: %v", err)
    }
    top, err := s.Top(ctx, 10)
    if err != nil { t.Fatalf("Top: %v", err) }
    if len(top) != 0 {
        t.Fatalf("unexpected entries: %+v", top)
    }
}

func TestTopLimit(t *testing.T) {
    s := newTestStore(t)
    ctx := context.Background()
    _ = s.RecordResult(ctx, arena.MatchResult{White: "a", Black: "b", Winner: "White"})
    _ = s.RecordResult(ctx, arena.MatchResult{White: "c", Black: "d", Winner: "White"})
    top, err := s.Top(ctx, 1)
    if err != nil { t.Fatalf("Top: %v", err) }
    if len(top) != 1 {
        t.Fatalf("expected 1 entry, got %d", len(top))
    }
}
