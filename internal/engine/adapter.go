// Package engine wraps the chess rules library behind the narrow surface the
// arena needs: apply a candidate move, inspect the position, detect terminal
// states. It holds no state beyond the moves of one match.
package engine

import (
	"errors"
	"fmt"
	"strings"

	nchess "github.com/corentings/chess/v2"
)

// StartingFEN is the serialized initial position.
const StartingFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

var ErrIllegalMove = errors.New("illegal move")

// MoveInput is a candidate move as received off the wire.
type MoveInput struct {
	From      string
	To        string
	Promotion string
}

// UCI returns the move in coordinate notation, e.g. "e7e8q".
func (in MoveInput) UCI() string {
	return strings.ToLower(strings.TrimSpace(in.From) + strings.TrimSpace(in.To) + strings.TrimSpace(in.Promotion))
}

// MoveRecord describes an accepted move.
type MoveRecord struct {
	From     string
	To       string
	Piece    string // lowercase letter of the moving piece
	SAN      string
	UCI      string
	Captured string // lowercase letter of the captured piece, "" if none
	Color    string // mover, "white" or "black"
}

// Session owns the rules state for one match since its last reset.
type Session struct {
	game    *nchess.Game
	lastSAN string
}

func NewSession() *Session {
	return &Session{game: nchess.NewGame()}
}

// Load builds a session from a serialized position. A loaded session has no
// move history, so repetition draws cannot be detected from it and InCheck
// reports false until a move is applied. Callers that need full history
// semantics should Replay the move list instead.
func Load(fen string) (*Session, error) {
	opt, err := nchess.FEN(strings.TrimSpace(fen))
	if err != nil {
		return nil, fmt.Errorf("parse fen: %w", err)
	}
	return &Session{game: nchess.NewGame(opt)}, nil
}

// Replay rebuilds a session from the start position by applying UCI moves.
func Replay(movesUCI []string) (*Session, error) {
	s := NewSession()
	notation := nchess.UCINotation{}
	for _, mv := range movesUCI {
		pos := s.game.Position()
		move, err := notation.Decode(pos, strings.ToLower(strings.TrimSpace(mv)))
		if err != nil {
			return nil, fmt.Errorf("decode move %s: %w", mv, err)
		}
		san := nchess.AlgebraicNotation{}.Encode(pos, move)
		if err := s.game.Move(move, nil); err != nil {
			return nil, fmt.Errorf("apply move %s: %w", mv, err)
		}
		s.lastSAN = san
	}
	s.claimAutomaticDraws()
	return s, nil
}

// Apply validates the candidate move against the current position and plays
// it. Any panic out of the rules library is reported as an illegal move.
func (s *Session) Apply(in MoveInput) (rec MoveRecord, err error) {
	defer func() {
		if r := recover(); r != nil {
			rec, err = MoveRecord{}, fmt.Errorf("%w: %v", ErrIllegalMove, r)
		}
	}()

	uci := in.UCI()
	if uci == "" {
		return MoveRecord{}, ErrIllegalMove
	}
	pos := s.game.Position()
	mv, derr := nchess.UCINotation{}.Decode(pos, uci)
	if derr != nil {
		return MoveRecord{}, ErrIllegalMove
	}
	san := nchess.AlgebraicNotation{}.Encode(pos, mv)
	moving := pos.Board().Piece(mv.S1())
	captured := capturedPieceAt(pos, mv)
	mover := colorName(pos.Turn())
	if merr := s.game.Move(mv, nil); merr != nil {
		return MoveRecord{}, ErrIllegalMove
	}
	s.lastSAN = san
	s.claimAutomaticDraws()

	return MoveRecord{
		From:     mv.S1().String(),
		To:       mv.S2().String(),
		Piece:    pieceLetter(moving.Type()),
		SAN:      san,
		UCI:      uci,
		Captured: captured,
		Color:    mover,
	}, nil
}

// FEN serializes the current position.
func (s *Session) FEN() string { return s.game.FEN() }

// SideToMove returns "white" or "black".
func (s *Session) SideToMove() string { return colorName(s.game.Position().Turn()) }

// InCheck reports whether the last applied move gave check, derived from
// its SAN suffix. It reports false on a freshly loaded session even when
// the position itself has the side to move in check; see Load.
func (s *Session) InCheck() bool {
	return strings.HasSuffix(s.lastSAN, "+") || strings.HasSuffix(s.lastSAN, "#")
}

// PlyCount is the number of half-moves played.
func (s *Session) PlyCount() int { return len(s.game.Moves()) }

// Terminal reports whether the game is over and, if so, a stable reason tag
// (checkmate, stalemate, threefold_repetition, fifty_move_rule,
// insufficient_material, ...).
func (s *Session) Terminal() (bool, string) {
	if s.game.Outcome() == nchess.NoOutcome {
		return false, ""
	}
	return true, reasonTag(s.game.Method())
}

// Winner returns "White", "Black", or "Draw" for a terminal position.
func (s *Session) Winner() string {
	switch s.game.Outcome() {
	case nchess.WhiteWon:
		return "White"
	case nchess.BlackWon:
		return "Black"
	default:
		return "Draw"
	}
}

// MovesUCI returns the played moves in coordinate notation.
func (s *Session) MovesUCI() []string {
	moves := s.game.Moves()
	out := make([]string, len(moves))
	for i, mv := range moves {
		out[i] = strings.ToLower(mv.String())
	}
	return out
}

// MovesSAN returns the played moves in algebraic notation.
func (s *Session) MovesSAN() []string {
	moves := s.game.Moves()
	positions := s.game.Positions()
	notation := nchess.AlgebraicNotation{}
	out := make([]string, len(moves))
	for i, mv := range moves {
		if i < len(positions) {
			out[i] = notation.Encode(positions[i], mv)
		}
	}
	return out
}

// PGN renders the match as PGN movetext.
func (s *Session) PGN() string { return s.game.String() }

// claimAutomaticDraws declares threefold and fifty-move draws the moment they
// become eligible. The library treats them as claimable; the arena ends the
// game immediately instead.
func (s *Session) claimAutomaticDraws() {
	if s.game.Outcome() != nchess.NoOutcome {
		return
	}
	if err := s.game.Draw(nchess.ThreefoldRepetition); err == nil {
		return
	}
	_ = s.game.Draw(nchess.FiftyMoveRule)
}

func capturedPieceAt(pos *nchess.Position, mv *nchess.Move) string {
	if !mv.HasTag(nchess.Capture) && !mv.HasTag(nchess.EnPassant) {
		return ""
	}
	sq := mv.S2()
	if mv.HasTag(nchess.EnPassant) {
		file := mv.S2().File()
		rank := mv.S2().Rank()
		if pos.Turn() == nchess.White {
			sq = nchess.NewSquare(file, rank-1)
		} else {
			sq = nchess.NewSquare(file, rank+1)
		}
	}
	piece := pos.Board().Piece(sq)
	if piece == nchess.NoPiece {
		return ""
	}
	return pieceLetter(piece.Type())
}

func colorName(c nchess.Color) string {
	if c == nchess.White {
		return "white"
	}
	return "black"
}

func pieceLetter(t nchess.PieceType) string {
	switch t {
	case nchess.King:
		return "k"
	case nchess.Queen:
		return "q"
	case nchess.Rook:
		return "r"
	case nchess.Bishop:
		return "b"
	case nchess.Knight:
		return "n"
	case nchess.Pawn:
		return "p"
	default:
		return ""
	}
}

func reasonTag(m nchess.Method) string {
	switch m {
	case nchess.Checkmate:
		return "checkmate"
	case nchess.Stalemate:
		return "stalemate"
	case nchess.ThreefoldRepetition:
		return "threefold_repetition"
	case nchess.FivefoldRepetition:
		return "fivefold_repetition"
	case nchess.FiftyMoveRule:
		return "fifty_move_rule"
	case nchess.SeventyFiveMoveRule:
		return "seventy_five_move_rule"
	case nchess.InsufficientMaterial:
		return "insufficient_material"
	default:
		return strings.ToLower(m.String())
	}
}
