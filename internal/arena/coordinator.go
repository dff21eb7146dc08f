package arena

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/park285/chess-arena/internal/engine"
	"github.com/park285/chess-arena/internal/msgcat"
	"github.com/park285/chess-arena/internal/obslog"
	"github.com/park285/chess-arena/pkg/wire"
)

// Event is one unit of work for the coordinator loop.
type Event interface{ isEvent() }

type Registered struct {
	ConnID  string
	Payload wire.Register
}

type MoveSubmitted struct {
	ConnID  string
	Payload wire.Move
}

type BoardStateRequested struct{ ConnID string }

type StatsRequested struct{ ConnID string }

type ListingRequested struct{ ConnID string }

type ScoresResetRequested struct{ ConnID string }

type Disconnected struct{ ConnID string }

// ListGames answers over Reply; used by the HTTP listing endpoint.
type ListGames struct{ Reply chan []wire.GameSummary }

type resetDue struct {
	GameID int
	Gen    uint64
}

type sweepDue struct{}

func (Registered) isEvent()           {}
func (MoveSubmitted) isEvent()        {}
func (BoardStateRequested) isEvent()  {}
func (StatsRequested) isEvent()       {}
func (ListingRequested) isEvent()     {}
func (ScoresResetRequested) isEvent() {}
func (Disconnected) isEvent()         {}
func (ListGames) isEvent()            {}
func (resetDue) isEvent()             {}
func (sweepDue) isEvent()             {}

// Coordinator drains a single inbox and applies every mutation itself,
// so games, registry and bindings need no locks. Timers feed events
// back into the same inbox and run as ordinary turns.
type Coordinator struct {
	inbox    chan Event
	registry *Registry
	send     Sender
	msgs     *msgcat.Catalog
	bindings map[string]int // connID -> gameID

	resetDelay    time.Duration
	sweepInterval time.Duration
	recorders     []ResultRecorder

	now   func() time.Time
	after func(time.Duration, func())
}

// Options configures a Coordinator. Now and After exist so tests can
// drive time by hand; zero values fall back to the real clock.
type Options struct {
	Send          Sender
	Messages      *msgcat.Catalog
	ResetDelay    time.Duration
	SweepInterval time.Duration
	Recorders     []ResultRecorder
	Now           func() time.Time
	After         func(time.Duration, func())
}

func NewCoordinator(opts Options) *Coordinator {
	if opts.ResetDelay <= 0 {
		opts.ResetDelay = 5 * time.Second
	}
	if opts.SweepInterval <= 0 {
		opts.SweepInterval = 5 * time.Minute
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.After == nil {
		opts.After = func(d time.Duration, fn func()) { time.AfterFunc(d, fn) }
	}
	c := &Coordinator{
		inbox:         make(chan Event, 256),
		send:          opts.Send,
		msgs:          opts.Messages,
		bindings:      make(map[string]int),
		resetDelay:    opts.ResetDelay,
		sweepInterval: opts.SweepInterval,
		recorders:     opts.Recorders,
		now:           opts.Now,
		after:         opts.After,
	}
	c.registry = NewRegistry(func(id int) *Game {
		return NewGame(id, opts.Send, opts.Messages, opts.Now)
	})
	return c
}

// Post enqueues an event. Blocks only when the inbox is full, which
// back-pressures the transport readers.
func (c *Coordinator) Post(ev Event) {
	c.inbox <- ev
}

// Run processes events until ctx is canceled. Exactly one Run per
// coordinator.
func (c *Coordinator) Run(ctx context.Context) {
	c.after(c.sweepInterval, func() { c.Post(sweepDue{}) })
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-c.inbox:
			c.dispatch(ev)
		}
	}
}

func (c *Coordinator) dispatch(ev Event) {
	switch e := ev.(type) {
	case Registered:
		c.handleRegister(e)
	case MoveSubmitted:
		c.handleMove(e)
	case BoardStateRequested:
		if g, ok := c.bound(e.ConnID); ok {
			c.send.Send(e.ConnID, wire.Outbound{Event: wire.EvtBoardState, Data: wire.BoardState{FEN: g.FEN()}})
		} else {
			c.sendError(e.ConnID, "reject.no_active_game")
		}
	case StatsRequested:
		if g, ok := c.bound(e.ConnID); ok {
			c.send.Send(e.ConnID, wire.Outbound{Event: wire.EvtGameStats, Data: g.StatsWithHistory()})
		} else {
			c.sendError(e.ConnID, "reject.no_active_game")
		}
	case ListingRequested:
		c.send.Send(e.ConnID, wire.Outbound{Event: wire.EvtAvailableGames, Data: c.registry.List()})
	case ScoresResetRequested:
		if g, ok := c.bound(e.ConnID); ok {
			g.ResetScores()
		} else {
			c.sendError(e.ConnID, "reject.no_active_game")
		}
	case Disconnected:
		c.handleDisconnect(e.ConnID)
	case ListGames:
		e.Reply <- c.registry.List()
	case resetDue:
		if g, ok := c.registry.Get(e.GameID); ok && g.ResetGen() == e.Gen {
			g.ResetBoard()
		}
	case sweepDue:
		c.registry.SweepEmpty()
		c.after(c.sweepInterval, func() { c.Post(sweepDue{}) })
	}
}

func (c *Coordinator) handleRegister(ev Registered) {
	// Rebinding always unbinds first.
	c.handleDisconnect(ev.ConnID)

	name := strings.TrimSpace(ev.Payload.Name)
	if name == "" {
		name = "Anonymous"
	}

	var g *Game
	spectate := ev.Payload.Intent == wire.IntentSpectate
	if spectate {
		got, err := c.registry.Require(ev.Payload.GameID)
		if err != nil {
			text, rerr := c.msgs.Render("reject.game_not_found", map[string]int{"GameID": ev.Payload.GameID})
			if rerr != nil {
				text = "game not found"
			}
			c.send.Send(ev.ConnID, wire.Outbound{Event: wire.EvtError, Data: wire.ErrorMessage{Message: text}})
			obslog.L().Warn("spectate_target_missing",
				zap.String("conn_id", ev.ConnID),
				zap.Int("game_id", ev.Payload.GameID),
				zap.Error(err))
			return
		}
		g = got
	} else {
		g = c.registry.FindOrCreateJoinable()
	}

	g.AddParticipant(ev.ConnID, name, spectate)
	c.bindings[ev.ConnID] = g.ID
}

func (c *Coordinator) handleMove(ev MoveSubmitted) {
	g, ok := c.bound(ev.ConnID)
	if !ok {
		c.rejectMove(ev.ConnID, nil, ev.Payload, ErrNoActiveGame)
		return
	}

	outcome, err := g.SubmitMove(ev.ConnID, ev.Payload)
	if err != nil {
		c.rejectMove(ev.ConnID, g, ev.Payload, err)
		return
	}
	if outcome.Finished {
		gameID, gen := g.ID, outcome.ResetGen
		c.after(c.resetDelay, func() { c.Post(resetDue{GameID: gameID, Gen: gen}) })
		c.record(outcome.Result)
	}
}

func (c *Coordinator) rejectMove(connID string, g *Game, mv wire.Move, err error) {
	reject := wire.InvalidMove{}
	switch {
	case errors.Is(err, ErrNoActiveGame):
		reject.Reason = c.msgs.Get("reject.no_active_game")
	case errors.Is(err, ErrNotYourTurn):
		reject.Reason = c.msgs.Get("reject.not_your_turn")
	case errors.Is(err, ErrWaitingForOpponent):
		reject.Reason = c.msgs.Get("reject.waiting_for_opponent")
	case errors.Is(err, engine.ErrIllegalMove):
		reject.Reason = c.msgs.Get("reject.illegal_move")
		reject.Move = engine.MoveInput{From: mv.From, To: mv.To, Promotion: mv.Promotion}.UCI()
		reject.FEN = g.FEN()
	default:
		reject.Reason = err.Error()
	}
	c.send.Send(connID, wire.Outbound{Event: wire.EvtInvalidMove, Data: reject})
	fields := []zap.Field{
		zap.String("conn_id", connID),
		zap.String("reason", reject.Reason),
	}
	if g != nil {
		fields = append(fields, zap.Int("game_id", g.ID))
	}
	obslog.L().Debug("move_rejected", fields...)
}

func (c *Coordinator) handleDisconnect(connID string) {
	gameID, ok := c.bindings[connID]
	if !ok {
		return
	}
	delete(c.bindings, connID)
	if g, ok := c.registry.Get(gameID); ok {
		g.RemoveParticipant(connID)
	}
}

func (c *Coordinator) bound(connID string) (*Game, bool) {
	gameID, ok := c.bindings[connID]
	if !ok {
		return nil, false
	}
	return c.registry.Get(gameID)
}

func (c *Coordinator) sendError(connID, key string) {
	c.send.Send(connID, wire.Outbound{Event: wire.EvtError, Data: wire.ErrorMessage{Message: c.msgs.Get(key)}})
}

// record hands the finished match to every recorder off-loop. Failures
// are logged and dropped; archival never blocks gameplay.
func (c *Coordinator) record(res MatchResult) {
	for _, rec := range c.recorders {
		rec := rec
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := rec.RecordResult(ctx, res); err != nil {
				obslog.L().Warn("result_record_failed",
					zap.Int("game_id", res.GameID),
					zap.Error(err))
			}
		}()
	}
}
