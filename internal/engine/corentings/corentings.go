// Package corentings adapts github.com/corentings/chess/v2 to engine.PositionEngine.
package corentings

import (
	"fmt"
	"strings"

	nchess "github.com/corentings/chess/v2"
	"github.com/park285/cheese-board/internal/board"
	"github.com/park285/cheese-board/internal/engine"
)

// Name is the backend name used in configuration.
const Name = "corentings"

type Engine struct{}

func New() *Engine { return &Engine{} }

func (e *Engine) Name() string { return Name }

func (e *Engine) Initial() engine.Position {
	return &position{game: nchess.NewGame()}
}

func (e *Engine) ParseFEN(fen string) (engine.Position, error) {
	opt, err := nchess.FEN(strings.TrimSpace(fen))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", engine.ErrMalformedFEN, err)
	}
	return &position{game: nchess.NewGame(opt)}, nil
}

// position owns a library game whose move history feeds repetition checks.
// The game is never mutated after construction.
type position struct {
	game *nchess.Game
}

func (p *position) FEN() string { return p.game.FEN() }

func (p *position) PieceAt(sq board.Square) board.Piece {
	if !sq.Valid() {
		return board.NoPiece
	}
	return fromPiece(p.game.Position().Board().Piece(toSquare(sq)))
}

func (p *position) Turn() board.Color { return fromColor(p.game.Position().Turn()) }

func (p *position) LegalMoves() []board.Move {
	valid := p.game.ValidMoves()
	out := make([]board.Move, 0, len(valid))
	for i := range valid {
		out = append(out, fromMove(&valid[i]))
	}
	return out
}

func (p *position) Validate(m board.Move) error {
	_, err := p.find(m)
	return err
}

func (p *position) Apply(m board.Move) (engine.Position, error) {
	mv, err := p.find(m)
	if err != nil {
		return nil, err
	}
	next := p.game.Clone()
	if err := next.Move(mv, nil); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", engine.ErrIllegalMove, m.UCI(), err)
	}
	return &position{game: next}, nil
}

func (p *position) SAN(m board.Move) (string, error) {
	mv, err := p.find(m)
	if err != nil {
		return "", err
	}
	return nchess.AlgebraicNotation{}.Encode(p.game.Position(), mv), nil
}

func (p *position) Outcome() board.Outcome {
	return classify(p.game.Outcome(), p.game.Method(), p.game.EligibleDraws())
}

// find decodes m and returns the matching generated move, tags included.
func (p *position) find(m board.Move) (*nchess.Move, error) {
	if !m.From.Valid() || !m.To.Valid() {
		return nil, fmt.Errorf("%w: off-board square in %v", engine.ErrIllegalMove, m)
	}
	mv, err := nchess.UCINotation{}.Decode(p.game.Position(), m.UCI())
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", engine.ErrIllegalMove, m.UCI(), err)
	}
	valid := p.game.ValidMoves()
	for i := range valid {
		v := &valid[i]
		if v.S1() == mv.S1() && v.S2() == mv.S2() && v.Promo() == mv.Promo() {
			found := *v
			return &found, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", engine.ErrIllegalMove, m.UCI())
}

func classify(outcome nchess.Outcome, method nchess.Method, eligible []nchess.Method) board.Outcome {
	switch outcome {
	case nchess.WhiteWon:
		return board.WhiteWon
	case nchess.BlackWon:
		return board.BlackWon
	case nchess.Draw:
		switch method {
		case nchess.Stalemate:
			return board.Stalemate
		case nchess.InsufficientMaterial:
			return board.InsufficientMaterial
		case nchess.ThreefoldRepetition, nchess.FivefoldRepetition:
			return board.ThreefoldRepetition
		case nchess.FiftyMoveRule, nchess.SeventyFiveMoveRule:
			return board.FiftyMoveRule
		}
	}
	// Claimable draws count as terminal.
	for _, m := range eligible {
		if m == nchess.ThreefoldRepetition {
			return board.ThreefoldRepetition
		}
	}
	for _, m := range eligible {
		if m == nchess.FiftyMoveRule {
			return board.FiftyMoveRule
		}
	}
	return board.Ongoing
}

func toSquare(sq board.Square) nchess.Square {
	return nchess.NewSquare(nchess.File(sq.File), nchess.Rank(sq.Rank))
}

func fromSquare(sq nchess.Square) board.Square {
	return board.Square{File: int(sq.File()), Rank: int(sq.Rank())}
}

func fromMove(m *nchess.Move) board.Move {
	return board.Move{From: fromSquare(m.S1()), To: fromSquare(m.S2()), Promotion: fromKind(m.Promo())}
}

func fromColor(c nchess.Color) board.Color {
	switch c {
	case nchess.White:
		return board.White
	case nchess.Black:
		return board.Black
	default:
		return board.NoColor
	}
}

func fromKind(t nchess.PieceType) board.PieceKind {
	switch t {
	case nchess.Pawn:
		return board.Pawn
	case nchess.Knight:
		return board.Knight
	case nchess.Bishop:
		return board.Bishop
	case nchess.Rook:
		return board.Rook
	case nchess.Queen:
		return board.Queen
	case nchess.King:
		return board.King
	default:
		return board.NoKind
	}
}

func fromPiece(p nchess.Piece) board.Piece {
	if p == nchess.NoPiece {
		return board.NoPiece
	}
	return board.Piece{Kind: fromKind(p.Type()), Color: fromColor(p.Color())}
}
