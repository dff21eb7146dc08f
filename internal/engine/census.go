package engine

import (
	"fmt"
	"strings"
	"unicode"
)

// startingCensus is the per-side piece census of the initial position.
var startingCensus = map[rune]int{'p': 8, 'n': 2, 'b': 2, 'r': 2, 'q': 1, 'k': 1}

// censusOrder fixes the emission order of captured piece letters.
var censusOrder = []rune{'q', 'r', 'b', 'n', 'p'}

// CapturedFromFEN recomputes the captured-piece tally from the position
// string alone, by diffing each side's census against the starting census.
// A shortfall on one side is attributed as captured by the other.
// Promotions can push a census above its starting count; only shortfalls are
// reported, matching a diff against the start.
func CapturedFromFEN(fen string) (byWhite, byBlack []string, err error) {
	fields := strings.Fields(strings.TrimSpace(fen))
	if len(fields) == 0 {
		return nil, nil, fmt.Errorf("empty fen")
	}
	white := map[rune]int{}
	black := map[rune]int{}
	for _, r := range fields[0] {
		switch {
		case r == '/' || (r >= '1' && r <= '8'):
		case unicode.IsUpper(r):
			white[unicode.ToLower(r)]++
		case unicode.IsLower(r):
			black[r]++
		default:
			return nil, nil, fmt.Errorf("unexpected fen rune %q", r)
		}
	}
	byWhite = make([]string, 0, 4)
	byBlack = make([]string, 0, 4)
	for _, r := range censusOrder {
		for i := black[r]; i < startingCensus[r]; i++ {
			byWhite = append(byWhite, string(r))
		}
		for i := white[r]; i < startingCensus[r]; i++ {
			byBlack = append(byBlack, string(r))
		}
	}
	return byWhite, byBlack, nil
}

// SideToMoveFromFEN reads the active color field of a position string.
func SideToMoveFromFEN(fen string) (string, error) {
	fields := strings.Fields(strings.TrimSpace(fen))
	if len(fields) < 2 {
		return "", fmt.Errorf("fen missing active color: %q", fen)
	}
	switch fields[1] {
	case "w":
		return "white", nil
	case "b":
		return "black", nil
	default:
		return "", fmt.Errorf("bad active color %q", fields[1])
	}
}
