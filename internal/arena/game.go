package arena

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/park285/chess-arena/internal/engine"
	"github.com/park285/chess-arena/internal/msgcat"
	"github.com/park285/chess-arena/internal/obslog"
	"github.com/park285/chess-arena/pkg/wire"
)

// Game owns one match: two seats, a spectator set, the live position and
// the derived ledger. All methods must be called from the coordinator
// goroutine only.
type Game struct {
	ID         int
	White      Seat
	Black      Seat
	Spectators map[string]string // connID -> display name
	Phase      Phase
	History    []wire.HistoryEntry
	StartedAt  time.Time

	// everSeated flips once a player takes a seat; games that never
	// seated anyone are hidden from the listing.
	everSeated bool
	// resetGen invalidates stale delayed-reset timers: every board reset
	// bumps it, and a timer fires only against the generation it captured.
	resetGen uint64

	session *engine.Session

	send Sender
	msgs *msgcat.Catalog
	now  func() time.Time
}

// MoveOutcome reports what an accepted move did to the game lifecycle.
type MoveOutcome struct {
	Finished bool
	ResetGen uint64
	Result   MatchResult
}

func NewGame(id int, send Sender, msgs *msgcat.Catalog, now func() time.Time) *Game {
	if now == nil {
		now = time.Now
	}
	return &Game{
		ID:         id,
		Spectators: make(map[string]string),
		Phase:      PhaseWaiting,
		session:    engine.NewSession(),
		send:       send,
		msgs:       msgs,
		now:        now,
	}
}

func (g *Game) broadcast(msg wire.Outbound) {
	if g.White.Occupied() {
		g.send.Send(g.White.ConnID, msg)
	}
	if g.Black.Occupied() {
		g.send.Send(g.Black.ConnID, msg)
	}
	for connID := range g.Spectators {
		g.send.Send(connID, msg)
	}
}

// AddParticipant admits a connection. Players fill white then black;
// once both seats are taken everyone else becomes a spectator. Joining
// never fails.
func (g *Game) AddParticipant(connID, name string, spectate bool) Role {
	role := RoleSpectator
	switch {
	case spectate:
		g.Spectators[connID] = name
	case !g.White.Occupied():
		g.White = Seat{ConnID: connID, Name: name, Score: g.White.Score}
		g.everSeated = true
		role = RoleWhite
	case !g.Black.Occupied():
		g.Black = Seat{ConnID: connID, Name: name, Score: g.Black.Score}
		g.everSeated = true
		role = RoleBlack
	default:
		g.Spectators[connID] = name
	}

	if role == RoleSpectator {
		g.send.Send(connID, wire.Outbound{Event: wire.EvtSpectatorAssigned, Data: wire.RoleAssigned{Role: string(role)}})
	} else {
		g.send.Send(connID, wire.Outbound{Event: wire.EvtRoleAssigned, Data: wire.RoleAssigned{Role: string(role)}})
	}
	g.send.Send(connID, wire.Outbound{Event: wire.EvtGameID, Data: wire.GameID{GameID: g.ID}})

	if role == RoleWhite || role == RoleBlack {
		g.broadcast(wire.Outbound{Event: wire.EvtSeatNames, Data: g.seatNames()})
	} else {
		g.send.Send(connID, wire.Outbound{Event: wire.EvtSeatNames, Data: g.seatNames()})
	}

	if (role == RoleWhite || role == RoleBlack) && g.White.Occupied() && g.Black.Occupied() {
		g.Phase = PhaseInProgress
		g.StartedAt = g.now()
		g.broadcast(wire.Outbound{Event: wire.EvtGameReady})
		obslog.L().Info("game_started",
			zap.Int("game_id", g.ID),
			zap.String("white", g.White.Name),
			zap.String("black", g.Black.Name))
	}

	// The joiner alone gets the full current state.
	g.send.Send(connID, wire.Outbound{Event: wire.EvtBoardState, Data: wire.BoardState{FEN: g.session.FEN()}})
	g.send.Send(connID, wire.Outbound{Event: wire.EvtGameStats, Data: g.stats(false)})

	obslog.L().Info("participant_joined",
		zap.Int("game_id", g.ID),
		zap.String("name", name),
		zap.String("role", string(role)))
	return role
}

// RemoveParticipant unbinds a connection. A vacated seat forces an
// immediate board reset that keeps both scores; spectators leave
// silently; unknown connections are a no-op. Returns whether the
// connection belonged to this game.
func (g *Game) RemoveParticipant(connID string) bool {
	switch connID {
	case "":
		return false
	case g.White.ConnID:
		name := g.White.Name
		g.White = Seat{Score: g.White.Score}
		g.seatVacated(name)
		return true
	case g.Black.ConnID:
		name := g.Black.Name
		g.Black = Seat{Score: g.Black.Score}
		g.seatVacated(name)
		return true
	}
	if _, ok := g.Spectators[connID]; ok {
		delete(g.Spectators, connID)
		return true
	}
	return false
}

func (g *Game) seatVacated(name string) {
	g.broadcast(wire.Outbound{Event: wire.EvtSeatNames, Data: g.seatNames()})
	notice, err := g.msgs.Render("notice.player_disconnected", map[string]string{"Name": name})
	if err != nil {
		notice = fmt.Sprintf("%s disconnected", name)
	}
	g.broadcast(wire.Outbound{Event: wire.EvtPlayerDisconnected, Data: wire.PlayerDisconnected{Name: name, Message: notice}})
	obslog.L().Info("player_disconnected",
		zap.Int("game_id", g.ID),
		zap.String("name", name))
	g.ResetBoard()
}

// SubmitMove runs the fixed precondition chain and, on a legal move,
// emits the broadcast sequence: moveApplied, boardState, gameStats,
// then check and gameOver as applicable.
func (g *Game) SubmitMove(connID string, mv wire.Move) (MoveOutcome, error) {
	mover := g.seatForColor(g.session.SideToMove())
	if mover.ConnID != connID {
		return MoveOutcome{}, ErrNotYourTurn
	}
	if !g.White.Occupied() || !g.Black.Occupied() {
		return MoveOutcome{}, ErrWaitingForOpponent
	}
	// Draw terminals leave legal moves on the board, so the rules engine
	// alone cannot reject play inside the ended window.
	if g.Phase != PhaseInProgress {
		return MoveOutcome{}, engine.ErrIllegalMove
	}

	rec, err := g.session.Apply(engine.MoveInput{From: mv.From, To: mv.To, Promotion: mv.Promotion})
	if err != nil {
		return MoveOutcome{}, err
	}

	g.History = append(g.History, wire.HistoryEntry{
		SAN: rec.SAN,
		UCI: rec.UCI,
		FEN: g.session.FEN(),
		At:  g.now(),
	})

	g.broadcast(wire.Outbound{Event: wire.EvtMoveApplied, Data: wire.MoveApplied{
		From:     rec.From,
		To:       rec.To,
		Piece:    rec.Piece,
		SAN:      rec.SAN,
		Captured: rec.Captured,
		Color:    rec.Color,
	}})
	g.broadcast(wire.Outbound{Event: wire.EvtBoardState, Data: wire.BoardState{FEN: g.session.FEN()}})
	g.broadcast(wire.Outbound{Event: wire.EvtGameStats, Data: g.stats(false)})

	if g.session.InCheck() {
		g.broadcast(wire.Outbound{Event: wire.EvtCheck, Data: wire.Check{Color: g.session.SideToMove()}})
	}
	term, reason := g.session.Terminal()
	if !term {
		return MoveOutcome{}, nil
	}
	return g.finish(reason), nil
}

// finish closes the match: scores, gameOver broadcast, result summary.
// The caller schedules the delayed reset against the returned generation.
func (g *Game) finish(reason string) MoveOutcome {
	g.Phase = PhaseEnded
	winner := g.session.Winner()
	switch winner {
	case "White":
		g.White.Score++
	case "Black":
		g.Black.Score++
	default:
		g.White.Score += 0.5
		g.Black.Score += 0.5
	}

	var duration time.Duration
	if !g.StartedAt.IsZero() {
		duration = g.now().Sub(g.StartedAt)
	}

	g.broadcast(wire.Outbound{Event: wire.EvtGameOver, Data: wire.GameOver{
		Winner:          winner,
		Reason:          g.msgs.Get("gameover." + reason),
		Scores:          wire.Scores{White: g.White.Score, Black: g.Black.Score},
		PlyCount:        g.session.PlyCount(),
		DurationSeconds: duration.Seconds(),
	}})
	obslog.L().Info("game_over",
		zap.Int("game_id", g.ID),
		zap.String("winner", winner),
		zap.String("reason", reason),
		zap.Int("ply_count", g.session.PlyCount()))

	return MoveOutcome{
		Finished: true,
		ResetGen: g.resetGen,
		Result: MatchResult{
			GameID:     g.ID,
			White:      g.White.Name,
			Black:      g.Black.Name,
			Winner:     winner,
			Reason:     reason,
			PGN:        g.session.PGN(),
			MovesUCI:   g.session.MovesUCI(),
			MovesSAN:   g.session.MovesSAN(),
			PlyCount:   g.session.PlyCount(),
			Duration:   duration,
			FinishedAt: g.now(),
		},
	}
}

// ResetBoard clears position, history and startedAt while keeping both
// scores, then restarts immediately when both seats are still taken.
// Any pending delayed reset for an earlier generation becomes a no-op.
func (g *Game) ResetBoard() {
	g.resetGen++
	g.session = engine.NewSession()
	g.History = nil
	g.StartedAt = time.Time{}
	g.Phase = PhaseWaiting

	g.broadcast(wire.Outbound{Event: wire.EvtResetGame})
	g.broadcast(wire.Outbound{Event: wire.EvtBoardState, Data: wire.BoardState{FEN: g.session.FEN()}})

	if g.White.Occupied() && g.Black.Occupied() {
		g.Phase = PhaseInProgress
		g.StartedAt = g.now()
		g.broadcast(wire.Outbound{Event: wire.EvtGameReady})
	}
	obslog.L().Info("game_reset", zap.Int("game_id", g.ID), zap.String("phase", string(g.Phase)))
}

// ResetGen is the current reset generation; see resetGen.
func (g *Game) ResetGen() uint64 { return g.resetGen }

// ResetScores zeroes both seats and broadcasts the new scoreboard.
func (g *Game) ResetScores() {
	g.White.Score = 0
	g.Black.Score = 0
	g.broadcast(wire.Outbound{Event: wire.EvtScoresUpdate, Data: wire.Scores{}})
}

// IsEmpty reports whether both seats are vacant and no spectator remains.
func (g *Game) IsEmpty() bool {
	return !g.White.Occupied() && !g.Black.Occupied() && len(g.Spectators) == 0
}

// EverSeated reports whether a player ever took a seat in this game.
func (g *Game) EverSeated() bool { return g.everSeated }

// FEN is the current position.
func (g *Game) FEN() string { return g.session.FEN() }

func (g *Game) seatForColor(color string) Seat {
	if color == "white" {
		return g.White
	}
	return g.Black
}

func (g *Game) seatNames() wire.SeatNames {
	return wire.SeatNames{White: g.White.Name, Black: g.Black.Name}
}

// stats builds the derived view. The captured tally is recomputed from
// the position string alone, never carried forward incrementally.
func (g *Game) stats(withHistory bool) wire.GameStats {
	byWhite, byBlack, err := engine.CapturedFromFEN(g.session.FEN())
	if err != nil {
		obslog.L().Warn("captured_census_failed", zap.Int("game_id", g.ID), zap.Error(err))
	}
	st := wire.GameStats{
		PlyCount: g.session.PlyCount(),
		Captured: wire.Captured{White: byWhite, Black: byBlack},
		Turn:     g.session.SideToMove(),
		InCheck:  g.session.InCheck(),
		Scores:   wire.Scores{White: g.White.Score, Black: g.Black.Score},
	}
	if withHistory {
		h := g.History
		if len(h) > 10 {
			h = h[len(h)-10:]
		}
		st.History = append([]wire.HistoryEntry(nil), h...)
	}
	return st
}

// Stats is the broadcast form, without history.
func (g *Game) Stats() wire.GameStats { return g.stats(false) }

// StatsWithHistory includes the last ten ledger entries, for explicit
// getGameStats requests.
func (g *Game) StatsWithHistory() wire.GameStats { return g.stats(true) }

// Summary is one registry listing row.
func (g *Game) Summary() wire.GameSummary {
	return wire.GameSummary{
		GameID:         g.ID,
		Players:        g.seatNames(),
		SpectatorCount: len(g.Spectators),
		Phase:          string(g.Phase),
		InProgress:     g.Phase == PhaseInProgress,
		MoveCount:      len(g.History),
	}
}

// Member reports whether the connection is seated or spectating here.
func (g *Game) Member(connID string) bool {
	if connID == "" {
		return false
	}
	if g.White.ConnID == connID || g.Black.ConnID == connID {
		return true
	}
	_, ok := g.Spectators[connID]
	return ok
}
