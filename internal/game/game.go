// Package game wraps a rules-engine position with the display orientation and
// the two-phase move submission flow used by the board shell.
package game

import (
	"errors"
	"fmt"
	"strings"

	"github.com/park285/cheese-board/internal/board"
	"github.com/park285/cheese-board/internal/engine"
)

var ErrBadPromotion = errors.New("promotion piece must be queen, rook, bishop or knight")

// Game holds exactly one position. The position is replaced on every commit.
type Game struct {
	eng      engine.PositionEngine
	pos      engine.Position
	startFEN string
	reversed bool
	uci      []string
	san      []string
}

// New starts a game from the standard initial position.
func New(eng engine.PositionEngine) *Game {
	pos := eng.Initial()
	return &Game{eng: eng, pos: pos, startFEN: pos.FEN()}
}

// FromFEN starts a game from fen. Malformed input fails with engine.ErrMalformedFEN.
func FromFEN(eng engine.PositionEngine, fen string) (*Game, error) {
	fen = strings.TrimSpace(fen)
	if fen == "" || fen == "startpos" {
		return New(eng), nil
	}
	pos, err := eng.ParseFEN(fen)
	if err != nil {
		return nil, err
	}
	return &Game{eng: eng, pos: pos, startFEN: pos.FEN()}, nil
}

// Restore replays a stored UCI history on top of startFEN.
func Restore(eng engine.PositionEngine, startFEN string, moves []string) (*Game, error) {
	g, err := FromFEN(eng, startFEN)
	if err != nil {
		return nil, err
	}
	for i, s := range moves {
		m, err := board.ParseUCI(s)
		if err != nil {
			return nil, fmt.Errorf("replay ply %d: %w", i+1, err)
		}
		if err := g.commit(m); err != nil {
			return nil, fmt.Errorf("replay ply %d: %w", i+1, err)
		}
	}
	return g, nil
}

// Engine returns the backend the game was built with.
func (g *Game) Engine() engine.PositionEngine { return g.eng }

func (g *Game) EngineName() string { return g.eng.Name() }

func (g *Game) FEN() string      { return g.pos.FEN() }
func (g *Game) StartFEN() string { return g.startFEN }

func (g *Game) Turn() board.Color  { return g.pos.Turn() }
func (g *Game) IsWhiteTurn() bool { return g.pos.Turn() == board.White }

// Outcome classifies the current position. It is derived, never stored.
func (g *Game) Outcome() board.Outcome { return g.pos.Outcome() }

// History returns the committed moves in UCI notation.
func (g *Game) History() []string { return append([]string(nil), g.uci...) }

// SANHistory returns the committed moves in standard algebraic notation.
func (g *Game) SANHistory() []string { return append([]string(nil), g.san...) }

func (g *Game) Reversed() bool       { return g.reversed }
func (g *Game) SetReversed(rev bool) { g.reversed = rev }
func (g *Game) Flip()                { g.reversed = !g.reversed }

func (g *Game) PieceAt(sq board.Square) board.Piece { return g.pos.PieceAt(sq) }

// Grid derives the display grid for the current orientation.
func (g *Game) Grid() board.Grid {
	var grid board.Grid
	for file := 0; file < board.Size; file++ {
		for rank := 0; rank < board.Size; rank++ {
			sq := board.Sq(file, rank)
			c := board.ToDisplay(sq, g.reversed)
			grid[c.Row][c.Col] = g.pos.PieceAt(sq).Letter()
		}
	}
	return grid
}

// LegalTargets lists the destination squares reachable from sq.
func (g *Game) LegalTargets(sq board.Square) []board.Square {
	var out []board.Square
	seen := make(map[board.Square]bool)
	for _, m := range g.pos.LegalMoves() {
		if m.From != sq || seen[m.To] {
			continue
		}
		seen[m.To] = true
		out = append(out, m.To)
	}
	return out
}

// commit applies m and records it. The position is untouched on error.
func (g *Game) commit(m board.Move) error {
	san, err := g.pos.SAN(m)
	if err != nil {
		return err
	}
	next, err := g.pos.Apply(m)
	if err != nil {
		return err
	}
	g.pos = next
	g.uci = append(g.uci, m.UCI())
	g.san = append(g.san, san)
	return nil
}
