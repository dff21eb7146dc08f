package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/park285/chess-arena/internal/arena"
	"github.com/park285/chess-arena/internal/msgcat"
	"github.com/park285/chess-arena/internal/ws"
	"github.com/park285/chess-arena/pkg/wire"
)

func newTestServer(t *testing.T) (*httptest.Server, *arena.Coordinator) {
	t.Helper()
	msgs, err := msgcat.New("")
	if err != nil {
		t.Fatalf("msgcat: %v", err)
	}
	hub := ws.NewHub()
	coord := arena.NewCoordinator(arena.Options{Send: hub, Messages: msgs})
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go coord.Run(ctx)

	srv := httptest.NewServer(SetupRoutes(Deps{
		Hub:         hub,
		Coordinator: coord,
		Messages:    msgs,
	}))
	t.Cleanup(srv.Close)
	return srv, coord
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
}

func TestListGames(t *testing.T) {
	srv, coord := newTestServer(t)

	resp, err := http.Get(srv.URL + "/games")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	var rows []wire.GameSummary
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		t.Fatalf("decode: %v", err)
	}
	resp.Body.Close()
	if len(rows) != 0 {
		t.Fatalf("expected empty listing, got %+v", rows)
	}

	// Seat a player; the listing request queues behind the registration
	// in the same inbox, so the row is visible.
	coord.Post(arena.Registered{ConnID: "c1", Payload: wire.Register{Name: "alice", Intent: wire.IntentNewGame}})

	resp, err = http.Get(srv.URL + "/games")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	rows = nil
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(rows) != 1 || rows[0].Players.White != "alice" || rows[0].Phase != string(arena.PhaseWaiting) {
		t.Fatalf("listing %+v", rows)
	}
}

func TestLeaderboardRouteAbsentWithoutStore(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, err := http.Get(srv.URL + "/leaderboard")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status %d", resp.StatusCode)
	}
}
