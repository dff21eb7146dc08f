package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/park285/chess-arena/internal/arena"
	"github.com/park285/chess-arena/internal/msgcat"
	"github.com/park285/chess-arena/internal/obslog"
	"github.com/park285/chess-arena/pkg/wire"
)

const writeTimeout = 3 * time.Second

// Handler upgrades the request and runs the connection until the client
// goes away. Every inbound frame becomes a coordinator event; the
// coordinator answers through the hub outbox.
func Handler(h *Hub, coord *arena.Coordinator, msgs *msgcat.Catalog, allowedOrigins []string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: allowedOrigins,
		})
		if err != nil {
			obslog.L().Warn("ws_accept_failed", zap.Error(err))
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		connID := uuid.NewString()
		outbox := h.Bind(connID)
		defer func() {
			coord.Post(arena.Disconnected{ConnID: connID})
			h.Unbind(connID)
		}()

		obslog.L().Info("ws_connected", zap.String("conn_id", connID))

		writeCtx, writeCancel := context.WithCancel(context.Background())
		defer writeCancel()
		go func() {
			for msg := range outbox {
				ctx, cancel := context.WithTimeout(writeCtx, writeTimeout)
				if err := wsjson.Write(ctx, conn, msg); err != nil {
					cancel()
					return
				}
				cancel()
			}
		}()

		for {
			var env wire.Envelope
			if err := wsjson.Read(r.Context(), conn, &env); err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				default:
					obslog.L().Debug("ws_read_closed", zap.String("conn_id", connID), zap.Error(err))
				}
				return
			}
			dispatch(h, coord, msgs, connID, env)
		}
	}
}

// dispatch turns one frame into a coordinator event. Malformed frames
// get a reply to the sender only; the read loop keeps going.
func dispatch(h *Hub, coord *arena.Coordinator, msgs *msgcat.Catalog, connID string, env wire.Envelope) {
	switch env.Event {
	case wire.EvtRegister:
		var reg wire.Register
		if !decode(h, msgs, connID, env.Data, &reg) {
			return
		}
		coord.Post(arena.Registered{ConnID: connID, Payload: reg})
	case wire.EvtMove:
		var mv wire.Move
		if !decode(h, msgs, connID, env.Data, &mv) {
			return
		}
		coord.Post(arena.MoveSubmitted{ConnID: connID, Payload: mv})
	case wire.EvtGetBoardState:
		coord.Post(arena.BoardStateRequested{ConnID: connID})
	case wire.EvtGetGameStats:
		coord.Post(arena.StatsRequested{ConnID: connID})
	case wire.EvtGetAvailableGames:
		coord.Post(arena.ListingRequested{ConnID: connID})
	case wire.EvtResetScores:
		coord.Post(arena.ScoresResetRequested{ConnID: connID})
	default:
		h.Send(connID, wire.Outbound{Event: wire.EvtError, Data: wire.ErrorMessage{
			Message: msgs.Get("reject.bad_payload"),
		}})
		obslog.L().Debug("ws_unknown_event", zap.String("conn_id", connID), zap.String("event", env.Event))
	}
}

func decode(h *Hub, msgs *msgcat.Catalog, connID string, raw json.RawMessage, dst any) bool {
	if len(raw) == 0 {
		h.Send(connID, wire.Outbound{Event: wire.EvtError, Data: wire.ErrorMessage{
			Message: msgs.Get("reject.bad_payload"),
		}})
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		h.Send(connID, wire.Outbound{Event: wire.EvtError, Data: wire.ErrorMessage{
			Message: msgs.Get("reject.bad_payload"),
		}})
		return false
	}
	return true
}
