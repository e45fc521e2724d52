// Package notnil adapts github.com/notnil/chess to engine.PositionEngine.
package notnil

import (
	"fmt"
	"strings"

	"github.com/notnil/chess"
	"github.com/park285/cheese-board/internal/board"
	"github.com/park285/cheese-board/internal/engine"
)

const Name = "notnil"

type Engine struct{}

func New() *Engine { return &Engine{} }

func (e *Engine) Name() string { return Name }

func (e *Engine) Initial() engine.Position {
	return &position{game: chess.NewGame()}
}

func (e *Engine) ParseFEN(fen string) (engine.Position, error) {
	opt, err := chess.FEN(strings.TrimSpace(fen))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", engine.ErrMalformedFEN, err)
	}
	return &position{game: chess.NewGame(opt)}, nil
}

type position struct {
	game *chess.Game
}

func (p *position) FEN() string { return p.game.FEN() }

func (p *position) PieceAt(sq board.Square) board.Piece {
	if !sq.Valid() {
		return board.NoPiece
	}
	// a1 is square 0
	return fromPiece(p.game.Position().Board().Piece(chess.Square(sq.Index())))
}

func (p *position) Turn() board.Color { return fromColor(p.game.Position().Turn()) }

func (p *position) LegalMoves() []board.Move {
	valid := p.game.ValidMoves()
	out := make([]board.Move, 0, len(valid))
	for _, m := range valid {
		out = append(out, board.Move{
			From:      fromSquare(m.S1()),
			To:        fromSquare(m.S2()),
			Promotion: fromKind(m.Promo()),
		})
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
	if err := next.Move(mv); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", engine.ErrIllegalMove, m.UCI(), err)
	}
	return &position{game: next}, nil
}

func (p *position) SAN(m board.Move) (string, error) {
	mv, err := p.find(m)
	if err != nil {
		return "", err
	}
	return chess.AlgebraicNotation{}.Encode(p.game.Position(), mv), nil
}

func (p *position) Outcome() board.Outcome {
	switch p.game.Outcome() {
	case chess.WhiteWon:
		return board.WhiteWon
	case chess.BlackWon:
		return board.BlackWon
	case chess.Draw:
		switch p.game.Method() {
		case chess.Stalemate:
			return board.Stalemate
		case chess.InsufficientMaterial:
			return board.InsufficientMaterial
		case chess.ThreefoldRepetition, chess.FivefoldRepetition:
			return board.ThreefoldRepetition
		case chess.FiftyMoveRule, chess.SeventyFiveMoveRule:
			return board.FiftyMoveRule
		}
	}
	var threefold, fifty bool
	for _, m := range p.game.EligibleDraws() {
		switch m {
		case chess.ThreefoldRepetition:
			threefold = true
		case chess.FiftyMoveRule:
			fifty = true
		}
	}
	switch {
	case threefold:
		return board.ThreefoldRepetition
	case fifty:
		return board.FiftyMoveRule
	}
	return board.Ongoing
}

// find returns the library's own legal move matching m so that its tags
// (castling, en passant) are set.
func (p *position) find(m board.Move) (*chess.Move, error) {
	if !m.From.Valid() || !m.To.Valid() {
		return nil, fmt.Errorf("%w: off-board square in %v", engine.ErrIllegalMove, m)
	}
	from := chess.Square(m.From.Index())
	to := chess.Square(m.To.Index())
	promo := toKind(m.Promotion)
	for _, v := range p.game.ValidMoves() {
		if v.S1() == from && v.S2() == to && v.Promo() == promo {
			return v, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", engine.ErrIllegalMove, m.UCI())
}

func fromSquare(sq chess.Square) board.Square {
	return board.Square{File: int(sq.File()), Rank: int(sq.Rank())}
}

func fromColor(c chess.Color) board.Color {
	switch c {
	case chess.White:
		return board.White
	case chess.Black:
		return board.Black
	}
	return board.NoColor
}

var kinds = map[chess.PieceType]board.PieceKind{
	chess.Pawn:   board.Pawn,
	chess.Knight: board.Knight,
	chess.Bishop: board.Bishop,
	chess.Rook:   board.Rook,
	chess.Queen:  board.Queen,
	chess.King:   board.King,
}

func fromKind(t chess.PieceType) board.PieceKind { return kinds[t] }

func toKind(k board.PieceKind) chess.PieceType {
	for t, bk := range kinds {
		if bk == k {
			return t
		}
	}
	return chess.NoPieceType
}

func fromPiece(p chess.Piece) board.Piece {
	if p == chess.NoPiece {
		return board.NoPiece
	}
	return board.Piece{Kind: fromKind(p.Type()), Color: fromColor(p.Color())}
}
