package archive

import (
	"fmt"
	"strings"
	"time"

	"github.com/park285/cheese-board/internal/board"
	"github.com/park285/cheese-board/internal/engine"
	"github.com/park285/cheese-board/internal/opening"
)

// BuildPGN renders the game with a tag section and numbered SAN move text.
func BuildPGN(res Result) string {
	var b strings.Builder
	date := res.EndedAt
	if date.IsZero() {
		date = time.Now()
	}
	pgnResult := res.Outcome.PGNResult()

	b.WriteString("[Event \"Casual game\"]\n")
	b.WriteString("[Site \"Cheese Board\"]\n")
	b.WriteString(fmt.Sprintf("[Date \"%04d.%02d.%02d\"]\n", date.Year(), int(date.Month()), date.Day()))
	b.WriteString("[White \"White\"]\n")
	b.WriteString("[Black \"Black\"]\n")
	b.WriteString(fmt.Sprintf("[Result \"%s\"]\n", pgnResult))
	if start := strings.TrimSpace(res.StartFEN); start != "" && start != engine.StartingFEN {
		b.WriteString("[SetUp \"1\"]\n")
		b.WriteString(fmt.Sprintf("[FEN \"%s\"]\n", sanitizePGN(start)))
	}
	if eco, ok := opening.Classify(res.StartFEN, res.MovesUCI); ok {
		b.WriteString(fmt.Sprintf("[ECO \"%s\"]\n", sanitizePGN(eco.Code)))
		b.WriteString(fmt.Sprintf("[Opening \"%s\"]\n", sanitizePGN(eco.Title)))
	}
	if res.Outcome.Terminal() {
		b.WriteString(fmt.Sprintf("[Termination \"%s\"]\n", sanitizePGN(res.Method())))
	}
	if e := strings.TrimSpace(res.Engine); e != "" {
		b.WriteString(fmt.Sprintf("[Annotator \"%s\"]\n", sanitizePGN(e)))
	}
	b.WriteString("\n")

	for _, line := range board.NumberMoves(res.StartFEN, res.MovesSAN) {
		b.WriteString(line + " ")
	}
	b.WriteString(pgnResult)
	return b.String()
}

func sanitizePGN(s string) string {
	s = strings.ReplaceAll(s, "\\", " ")
	s = strings.ReplaceAll(s, "\"", "'")
	return strings.TrimSpace(s)
}
