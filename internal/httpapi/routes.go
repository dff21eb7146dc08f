// Package httpapi exposes the HTTP surface: the websocket upgrade plus
// a few read-only endpoints for listings and health.
package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/park285/chess-arena/internal/arena"
	"github.com/park285/chess-arena/internal/leaderboard"
	"github.com/park285/chess-arena/internal/msgcat"
	"github.com/park285/chess-arena/internal/ws"
)

// Deps carries everything the routes need. Leaderboard may be nil when
// no Redis is configured; the endpoint then answers 404.
type Deps struct {
	Hub            *ws.Hub
	Coordinator    *arena.Coordinator
	Messages       *msgcat.Catalog
	Leaderboard    *leaderboard.Store
	AllowedOrigins []string
}

func SetupRoutes(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", Healthz)
	r.Get("/ws", ws.Handler(d.Hub, d.Coordinator, d.Messages, d.AllowedOrigins))
	r.Get("/games", ListGames(d.Coordinator))
	if d.Leaderboard != nil {
		r.Get("/leaderboard", TopPlayers(d.Leaderboard))
	}
	return r
}
