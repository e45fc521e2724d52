// Package enginetest is a conformance suite every engine adapter must pass.
package enginetest

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/park285/cheese-board/internal/board"
	"github.com/park285/cheese-board/internal/engine"
)

// Run exercises eng against the behaviors the game state machine relies on.
func Run(t *testing.T, eng engine.PositionEngine) {
	t.Helper()
	t.Run("initial", func(t *testing.T) { initial(t, eng) })
	t.Run("malformed_fen", func(t *testing.T) { malformedFEN(t, eng) })
	t.Run("apply_is_immutable", func(t *testing.T) { applyIsImmutable(t, eng) })
	t.Run("illegal", func(t *testing.T) { illegal(t, eng) })
	t.Run("promotion", func(t *testing.T) { promotion(t, eng) })
	t.Run("san", func(t *testing.T) { san(t, eng) })
	t.Run("special_moves", func(t *testing.T) { specialMoves(t, eng) })
	t.Run("outcomes", func(t *testing.T) { outcomes(t, eng) })
}

// Play applies UCI moves in order and fails the test on the first error.
func Play(t *testing.T, pos engine.Position, moves ...string) engine.Position {
	t.Helper()
	for _, s := range moves {
		m, err := board.ParseUCI(s)
		require.NoError(t, err, s)
		pos, err = pos.Apply(m)
		require.NoError(t, err, s)
	}
	return pos
}

func mustFEN(t *testing.T, eng engine.PositionEngine, fen string) engine.Position {
	t.Helper()
	pos, err := eng.ParseFEN(fen)
	require.NoError(t, err)
	return pos
}

func initial(t *testing.T, eng engine.PositionEngine) {
	pos := eng.Initial()
	assert.Equal(t, engine.StartingFEN, pos.FEN())
	assert.Equal(t, board.White, pos.Turn())
	assert.Len(t, pos.LegalMoves(), 20)
	assert.Equal(t, board.Piece{Kind: board.King, Color: board.White}, pos.PieceAt(board.Sq(4, 0)))
	assert.Equal(t, board.Piece{Kind: board.Queen, Color: board.Black}, pos.PieceAt(board.Sq(3, 7)))
	assert.True(t, pos.PieceAt(board.Sq(4, 4)).Empty())
	assert.True(t, pos.PieceAt(board.Sq(9, 9)).Empty())
	assert.Equal(t, board.Ongoing, pos.Outcome())
}

func malformedFEN(t *testing.T, eng engine.PositionEngine) {
	for _, fen := range []string{"", "not a fen", "rnbqkbnr/pppppppp/8/8 w KQkq - 0 1"} {
		_, err := eng.ParseFEN(fen)
		require.Error(t, err, fen)
		assert.True(t, errors.Is(err, engine.ErrMalformedFEN), fen)
	}
}

func applyIsImmutable(t *testing.T, eng engine.PositionEngine) {
	pos := eng.Initial()
	next := Play(t, pos, "e2e4")
	assert.Equal(t, engine.StartingFEN, pos.FEN())
	assert.Equal(t, board.Black, next.Turn())
	assert.Equal(t, board.Piece{Kind: board.Pawn, Color: board.White}, next.PieceAt(board.Sq(4, 3)))
	assert.True(t, next.PieceAt(board.Sq(4, 1)).Empty())
}

func illegal(t *testing.T, eng engine.PositionEngine) {
	pos := eng.Initial()
	for _, s := range []string{"a1a2", "e2e5", "e7e5", "g1g3"} {
		m, err := board.ParseUCI(s)
		require.NoError(t, err)
		assert.True(t, errors.Is(pos.Validate(m), engine.ErrIllegalMove), s)
		_, err = pos.Apply(m)
		assert.True(t, errors.Is(err, engine.ErrIllegalMove), s)
	}
	off := board.Move{From: board.Sq(-1, 0), To: board.Sq(0, 0)}
	assert.True(t, errors.Is(pos.Validate(off), engine.ErrIllegalMove))
}

func promotion(t *testing.T, eng engine.PositionEngine) {
	pos := mustFEN(t, eng, "4k3/P7/8/8/8/8/8/4K3 w - - 0 1")
	bare := board.Move{From: board.Sq(0, 6), To: board.Sq(0, 7)}
	assert.Error(t, pos.Validate(bare))
	for _, kind := range board.PromotionKinds {
		m := bare
		m.Promotion = kind
		require.NoError(t, pos.Validate(m), kind.String())
	}
	next := Play(t, pos, "a7a8n")
	assert.Equal(t, board.Piece{Kind: board.Knight, Color: board.White}, next.PieceAt(board.Sq(0, 7)))
}

func san(t *testing.T, eng engine.PositionEngine) {
	pos := eng.Initial()
	got, err := pos.SAN(board.Move{From: board.Sq(6, 0), To: board.Sq(5, 2)})
	require.NoError(t, err)
	assert.Equal(t, "Nf3", got)
	got, err = pos.SAN(board.Move{From: board.Sq(4, 1), To: board.Sq(4, 3)})
	require.NoError(t, err)
	assert.Equal(t, "e4", got)
	_, err = pos.SAN(board.Move{From: board.Sq(4, 1), To: board.Sq(4, 4)})
	assert.Error(t, err)
}

func specialMoves(t *testing.T, eng engine.PositionEngine) {
	castle := mustFEN(t, eng, "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")
	after := Play(t, castle, "e1g1")
	assert.Equal(t, board.Piece{Kind: board.Rook, Color: board.White}, after.PieceAt(board.Sq(5, 0)))
	assert.True(t, after.PieceAt(board.Sq(7, 0)).Empty())

	ep := mustFEN(t, eng, "4k3/8/8/3pP3/8/8/8/4K3 w - d6 0 1")
	after = Play(t, ep, "e5d6")
	assert.True(t, after.PieceAt(board.Sq(3, 4)).Empty())
	assert.Equal(t, board.Piece{Kind: board.Pawn, Color: board.White}, after.PieceAt(board.Sq(3, 5)))
}

func outcomes(t *testing.T, eng engine.PositionEngine) {
	fools := Play(t, eng.Initial(), "f2f3", "e7e5", "g2g4", "d8h4")
	assert.Equal(t, board.BlackWon, fools.Outcome())
	assert.Empty(t, fools.LegalMoves())

	stale := Play(t, mustFEN(t, eng, "7k/8/6K1/8/8/8/8/5Q2 w - - 0 1"), "f1f7")
	assert.Equal(t, board.Stalemate, stale.Outcome())

	bare := Play(t, mustFEN(t, eng, "7k/8/8/8/8/8/1q6/K7 w - - 0 1"), "a1b2")
	assert.Equal(t, board.InsufficientMaterial, bare.Outcome())

	shuffle := Play(t, eng.Initial(),
		"g1f3", "g8f6", "f3g1", "f6g8",
		"g1f3", "g8f6", "f3g1", "f6g8")
	assert.Equal(t, board.ThreefoldRepetition, shuffle.Outcome())

	fifty := Play(t, mustFEN(t, eng, "7k/8/8/8/8/8/8/R6K w - - 99 80"), "a1a2")
	assert.Equal(t, board.FiftyMoveRule, fifty.Outcome())
}
