package arena

import (
	"sort"

	"go.uber.org/zap"

	"github.com/park285/chess-arena/internal/obslog"
	"github.com/park285/chess-arena/pkg/wire"
)

// Registry owns the id -> Game map. Ids are allocated from a
// monotonically increasing counter so listings and matchmaking are
// reproducible. Like Game, it is confined to the coordinator goroutine.
type Registry struct {
	games  map[int]*Game
	nextID int
	create func(id int) *Game
}

func NewRegistry(create func(id int) *Game) *Registry {
	return &Registry{
		games:  make(map[int]*Game),
		nextID: 1,
		create: create,
	}
}

// FindOrCreateJoinable returns the lowest-id waiting game with a free
// seat, creating a fresh game when none qualifies. Never returns a game
// already in progress.
func (r *Registry) FindOrCreateJoinable() *Game {
	for _, id := range r.sortedIDs() {
		g := r.games[id]
		if g.Phase != PhaseWaiting {
			continue
		}
		if g.White.Occupied() && g.Black.Occupied() {
			continue
		}
		return g
	}
	g := r.create(r.nextID)
	r.games[r.nextID] = g
	r.nextID++
	obslog.L().Info("game_created", zap.Int("game_id", g.ID))
	return g
}

func (r *Registry) Get(id int) (*Game, bool) {
	g, ok := r.games[id]
	return g, ok
}

// Require is Get for callers that treat a missing id as an error.
func (r *Registry) Require(id int) (*Game, error) {
	g, ok := r.games[id]
	if !ok {
		return nil, ErrGameNotFound
	}
	return g, nil
}

// List summarizes games that have ever seated a player, ascending by id.
func (r *Registry) List() []wire.GameSummary {
	out := make([]wire.GameSummary, 0, len(r.games))
	for _, id := range r.sortedIDs() {
		g := r.games[id]
		if !g.EverSeated() {
			continue
		}
		out = append(out, g.Summary())
	}
	return out
}

// SweepEmpty drops every game with no seats and no spectators and
// returns the removed ids.
func (r *Registry) SweepEmpty() []int {
	var removed []int
	for id, g := range r.games {
		if g.IsEmpty() {
			delete(r.games, id)
			removed = append(removed, id)
		}
	}
	if len(removed) > 0 {
		sort.Ints(removed)
		obslog.L().Info("empty_games_swept", zap.Ints("game_ids", removed))
	}
	return removed
}

// Len is the number of live games.
func (r *Registry) Len() int { return len(r.games) }

func (r *Registry) sortedIDs() []int {
	ids := make([]int, 0, len(r.games))
	for id := range r.games {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
