package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisplayRoundTrip(t *testing.T) {
	for _, reversed := range []bool{false, true} {
		for file := 0; file < Size; file++ {
			for rank := 0; rank < Size; rank++ {
				sq := Sq(file, rank)
				cell := ToDisplay(sq, reversed)
				require.True(t, cell.Valid(), "cell for %s reversed=%v", sq, reversed)
				assert.Equal(t, sq, FromDisplay(cell, reversed), "square %s reversed=%v", sq, reversed)
			}
		}
	}
}

func TestDisplayOrientation(t *testing.T) {
	// a1 sits bottom-left for white, top-right when reversed.
	assert.Equal(t, Cell{Row: 7, Col: 0}, ToDisplay(Sq(0, 0), false))
	assert.Equal(t, Cell{Row: 0, Col: 7}, ToDisplay(Sq(0, 0), true))
	assert.Equal(t, Sq(7, 7), FromDisplay(Cell{Row: 0, Col: 7}, false))
	assert.Equal(t, Sq(7, 7), FromDisplay(Cell{Row: 7, Col: 0}, true))
}

func TestReversedMirrorsBothAxes(t *testing.T) {
	for row := 0; row < Size; row++ {
		for col := 0; col < Size; col++ {
			straight := FromDisplay(Cell{Row: row, Col: col}, false)
			flipped := FromDisplay(Cell{Row: Size - 1 - row, Col: Size - 1 - col}, true)
			assert.Equal(t, straight, flipped)
		}
	}
}

func TestParsePromotionKind(t *testing.T) {
	cases := map[string]PieceKind{
		"queen": Queen, "Q": Queen, " q ": Queen,
		"rook": Rook, "R": Rook,
		"Bishop": Bishop, "b": Bishop,
		"knight": Knight, "N": Knight,
	}
	for token, want := range cases {
		got, ok := ParsePromotionKind(token)
		require.True(t, ok, token)
		assert.Equal(t, want, got, token)
	}
	for _, token := range []string{"", "king", "k", "pawn", "p", "x", "queens"} {
		_, ok := ParsePromotionKind(token)
		assert.False(t, ok, token)
	}
}

func TestUCI(t *testing.T) {
	m, err := ParseUCI("e2e4")
	require.NoError(t, err)
	assert.Equal(t, Move{From: Sq(4, 1), To: Sq(4, 3)}, m)
	assert.Equal(t, "e2e4", m.UCI())

	m, err = ParseUCI("A7A8Q")
	require.NoError(t, err)
	assert.Equal(t, Queen, m.Promotion)
	assert.Equal(t, "a7a8q", m.UCI())

	for _, bad := range []string{"", "e2", "e2e9", "i2e4", "e7e8k", "e2e4e5"} {
		_, err := ParseUCI(bad)
		assert.Error(t, err, bad)
	}
}

func TestPieceLetters(t *testing.T) {
	assert.Equal(t, "K", Piece{Kind: King, Color: White}.Letter())
	assert.Equal(t, "n", Piece{Kind: Knight, Color: Black}.Letter())
	assert.Equal(t, "", NoPiece.Letter())
	assert.Equal(t, "♕", Piece{Kind: Queen, Color: White}.Symbol())

	p, ok := PieceFromLetter("r")
	require.True(t, ok)
	assert.Equal(t, Piece{Kind: Rook, Color: Black}, p)
	_, ok = PieceFromLetter("x")
	assert.False(t, ok)
}

func TestOutcome(t *testing.T) {
	assert.False(t, Ongoing.Terminal())
	assert.Equal(t, "1-0", WhiteWon.PGNResult())
	assert.Equal(t, "0-1", BlackWon.PGNResult())
	assert.Equal(t, "1/2-1/2", FiftyMoveRule.PGNResult())
	assert.Equal(t, "*", Ongoing.PGNResult())
	assert.Equal(t, Black, BlackWon.Winner())
	for o := Ongoing; o <= FiftyMoveRule; o++ {
		assert.Equal(t, o, ParseOutcome(o.String()))
	}
}

func TestNumberMoves(t *testing.T) {
	assert.Equal(t, []string{"1. e4 e5", "2. Nf3"}, NumberMoves("", []string{"e4", "e5", "Nf3"}))
	assert.Equal(t,
		[]string{"23... Nf6", "24. e4 e5"},
		NumberMoves("4k3/8/8/8/8/8/8/4K3 b - - 0 23", []string{"Nf6", "e4", "e5"}))
	assert.Equal(t, []string{"7. Kd2"}, NumberMoves("4k3/8/8/8/8/8/8/4K3 w - - 0 7", []string{"Kd2"}))
	assert.Empty(t, NumberMoves("4k3/8/8/8/8/8/8/4K3 b - - 0 23", nil))
}

func TestFENMoveFields(t *testing.T) {
	assert.True(t, FENBlackToMove("8/8/8/8/8/8/8/8 b - - 0 40"))
	assert.False(t, FENBlackToMove(""))
	assert.Equal(t, 40, FENMoveNumber("8/8/8/8/8/8/8/8 b - - 0 40"))
	assert.Equal(t, 1, FENMoveNumber("8/8/8/8/8/8/8/8 w - -"))
	assert.Equal(t, 1, FENMoveNumber("8/8/8/8/8/8/8/8 w - - 0 x"))
}
