// Package engine defines the capability the game state machine needs from a
// chess rules library. Concrete adapters live in the subpackages.
package engine

import (
	"errors"

	"github.com/park285/cheese-board/internal/board"
)

// StartingFEN is the standard initial position.
const StartingFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

var (
	ErrMalformedFEN = errors.New("malformed fen")
	ErrIllegalMove  = errors.New("illegal move")
)

// PositionEngine creates positions backed by one rules library.
type PositionEngine interface {
	Name() string
	Initial() Position
	// ParseFEN fails with an error wrapping ErrMalformedFEN.
	ParseFEN(fen string) (Position, error)
}

// Position is an immutable position snapshot. Apply returns a new Position
// and leaves the receiver untouched.
type Position interface {
	FEN() string
	PieceAt(sq board.Square) board.Piece
	Turn() board.Color
	LegalMoves() []board.Move
	// Validate reports ErrIllegalMove when m is not a legal move here.
	Validate(m board.Move) error
	Apply(m board.Move) (Position, error)
	// SAN encodes a legal move in standard algebraic notation.
	SAN(m board.Move) (string, error)
	Outcome() board.Outcome
}
