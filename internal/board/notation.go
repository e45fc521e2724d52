package board

import (
	"fmt"
	"strconv"
	"strings"
)

// FENBlackToMove reports whether the side-to-move field of fen is black.
func FENBlackToMove(fen string) bool {
	f := strings.Fields(fen)
	return len(f) > 1 && f[1] == "b"
}

// FENMoveNumber returns the fullmove field of fen, or 1 when it is missing.
func FENMoveNumber(fen string) int {
	f := strings.Fields(fen)
	if len(f) < 6 {
		return 1
	}
	n, err := strconv.Atoi(f[5])
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// NumberMoves groups SAN moves into numbered pairs ("23. e4 e5"), counting
// from the position in startFEN. When black moves first the opening entry is
// "23... Nf6".
func NumberMoves(startFEN string, san []string) []string {
	num := FENMoveNumber(startFEN)
	out := make([]string, 0, len(san)/2+1)
	i := 0
	if FENBlackToMove(startFEN) && len(san) > 0 {
		out = append(out, fmt.Sprintf("%d... %s", num, strings.TrimSpace(san[0])))
		num++
		i = 1
	}
	for ; i < len(san); i += 2 {
		line := fmt.Sprintf("%d. %s", num, strings.TrimSpace(san[i]))
		if i+1 < len(san) {
			line += " " + strings.TrimSpace(san[i+1])
		}
		out = append(out, line)
		num++
	}
	return out
}
