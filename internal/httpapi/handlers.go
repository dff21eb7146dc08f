package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/park285/chess-arena/internal/arena"
	"github.com/park285/chess-arena/internal/leaderboard"
	"github.com/park285/chess-arena/internal/obslog"
	"github.com/park285/chess-arena/pkg/wire"
)

// ListGames asks the coordinator for the advertised games. The request
// travels through the same inbox as gameplay events, so the answer is a
// consistent snapshot.
func ListGames(coord *arena.Coordinator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reply := make(chan []wire.GameSummary, 1)
		coord.Post(arena.ListGames{Reply: reply})
		select {
		case rows := <-reply:
			writeJSON(w, http.StatusOK, rows)
		case <-r.Context().Done():
		}
	}
}

// TopPlayers serves the Redis leaderboard. ?n= bounds the row count.
func TopPlayers(store *leaderboard.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n := int64(10)
		if raw := r.URL.Query().Get("n"); raw != "" {
			if parsed, err := strconv.ParseInt(raw, 10, 64); err == nil && parsed > 0 && parsed <= 100 {
				n = parsed
			}
		}
		rows, err := store.Top(r.Context(), n)
		if err != nil {
			obslog.L().Warn("leaderboard_read_failed", zap.Error(err))
			http.Error(w, "leaderboard unavailable", http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, http.StatusOK, rows)
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
