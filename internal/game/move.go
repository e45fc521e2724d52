package game

import (
	"fmt"

	"github.com/park285/cheese-board/internal/board"
	"github.com/park285/cheese-board/internal/engine"
)

type Status int

const (
	Rejected Status = iota
	Committed
	PromotionRequired
)

func (s Status) String() string {
	switch s {
	case Committed:
		return "committed"
	case PromotionRequired:
		return "promotion_required"
	default:
		return "rejected"
	}
}

// PendingPromotion is the move retained between detection of a promotion
// pattern and the player's piece choice. The shell owns it.
type PendingPromotion struct {
	From board.Square
	To   board.Square
}

// MoveResult is the outcome of one submission. Pending is set only for
// PromotionRequired; UCI and SAN only for Committed; Err only for Rejected.
type MoveResult struct {
	Status  Status
	Pending PendingPromotion
	UCI     string
	SAN     string
	Err     error
}

func rejected(err error) MoveResult { return MoveResult{Status: Rejected, Err: err} }

// AttemptMove submits a move given in board file/rank coordinates.
func (g *Game) AttemptMove(startFile, startRank, endFile, endRank int) MoveResult {
	from, to := board.Sq(startFile, startRank), board.Sq(endFile, endRank)
	if !from.Valid() || !to.Valid() {
		return rejected(fmt.Errorf("%w: square out of range", engine.ErrIllegalMove))
	}
	piece := g.pos.PieceAt(from)
	if piece.Empty() {
		return rejected(fmt.Errorf("%w: no piece on %s", engine.ErrIllegalMove, from))
	}
	// Decided from piece and ranks alone, before any legality check.
	// ResolvePromotion validates.
	if isPromotionPattern(piece, from, to) {
		return MoveResult{Status: PromotionRequired, Pending: PendingPromotion{From: from, To: to}}
	}
	if piece.Color != g.pos.Turn() {
		return rejected(fmt.Errorf("%w: %s to move", engine.ErrIllegalMove, g.pos.Turn()))
	}
	return g.submit(board.Move{From: from, To: to})
}

// ResolvePromotion completes a pending promotion with the chosen piece kind.
// Legality is checked again here.
func (g *Game) ResolvePromotion(p PendingPromotion, kind string) MoveResult {
	k, ok := board.ParsePromotionKind(kind)
	if !ok {
		return rejected(fmt.Errorf("%w: %q", ErrBadPromotion, kind))
	}
	if !p.From.Valid() || !p.To.Valid() {
		return rejected(fmt.Errorf("%w: square out of range", engine.ErrIllegalMove))
	}
	return g.submit(board.Move{From: p.From, To: p.To, Promotion: k})
}

func (g *Game) submit(m board.Move) MoveResult {
	if err := g.commit(m); err != nil {
		return rejected(err)
	}
	return MoveResult{Status: Committed, UCI: m.UCI(), SAN: g.san[len(g.san)-1]}
}

func isPromotionPattern(p board.Piece, from, to board.Square) bool {
	if p.Kind != board.Pawn {
		return false
	}
	switch p.Color {
	case board.White:
		return from.Rank == 6 && to.Rank == 7
	case board.Black:
		return from.Rank == 1 && to.Rank == 0
	}
	return false
}
