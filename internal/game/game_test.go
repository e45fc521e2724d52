package game

import (
	"errors"
	"testing"

	"github.com/park285/cheese-board/internal/board"
	"github.com/park285/cheese-board/internal/engine"
	"github.com/park285/cheese-board/internal/engine/corentings"
	"github.com/park285/cheese-board/internal/engine/notnil"
)

var engines = []engine.PositionEngine{corentings.New(), notnil.New()}

func forEachEngine(t *testing.T, fn func(t *testing.T, eng engine.PositionEngine)) {
	t.Helper()
	for _, eng := range engines {
		eng := eng
		t.Run(eng.Name(), func(t *testing.T) { fn(t, eng) })
	}
}

func mustFEN(t *testing.T, eng engine.PositionEngine, fen string) *Game {
	t.Helper()
	g, err := FromFEN(eng, fen)
	if err != nil {
		t.Fatalf("FromFEN(%q): %v", fen, err)
	}
	return g
}

func play(t *testing.T, g *Game, moves ...string) {
	t.Helper()
	for _, s := range moves {
		m, err := board.ParseUCI(s)
		if err != nil {
			t.Fatalf("parse %s: %v", s, err)
		}
		res := g.AttemptMove(m.From.File, m.From.Rank, m.To.File, m.To.Rank)
		if res.Status != Committed {
			t.Fatalf("move %s: status=%v err=%v", s, res.Status, res.Err)
		}
	}
}

func TestPawnDoubleStepCommits(t *testing.T) {
	forEachEngine(t, func(t *testing.T, eng engine.PositionEngine) {
		g := New(eng)
		res := g.AttemptMove(4, 1, 4, 3)
		if res.Status != Committed {
			t.Fatalf("status=%v err=%v", res.Status, res.Err)
		}
		if res.UCI != "e2e4" || res.SAN != "e4" {
			t.Fatalf("uci=%q san=%q", res.UCI, res.SAN)
		}
		if g.IsWhiteTurn() {
			t.Fatal("expected black to move")
		}
		if got := g.History(); len(got) != 1 || got[0] != "e2e4" {
			t.Fatalf("history=%v", got)
		}
	})
}

func TestBlockedRookRejected(t *testing.T) {
	forEachEngine(t, func(t *testing.T, eng engine.PositionEngine) {
		g := New(eng)
		before := g.FEN()
		res := g.AttemptMove(0, 0, 0, 1)
		if res.Status != Rejected {
			t.Fatalf("status=%v", res.Status)
		}
		if !errors.Is(res.Err, engine.ErrIllegalMove) {
			t.Fatalf("err=%v", res.Err)
		}
		if g.FEN() != before {
			t.Fatalf("fen changed: %s", g.FEN())
		}
		if len(g.History()) != 0 {
			t.Fatal("history recorded a rejected move")
		}
	})
}

func TestEveryLegalMoveFlipsTurnOnce(t *testing.T) {
	fens := []string{
		engine.StartingFEN,
		"r3k2r/pppq1ppp/2np1n2/2b1p3/2B1P3/2NP1N2/PPPQ1PPP/R3K2R w KQkq - 0 8",
		"4k3/8/8/3pP3/8/8/8/4K3 w - d6 0 1",
	}
	forEachEngine(t, func(t *testing.T, eng engine.PositionEngine) {
		for _, fen := range fens {
			pos, err := eng.ParseFEN(fen)
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			for _, m := range pos.LegalMoves() {
				if m.Promotion != board.NoKind {
					continue
				}
				g := mustFEN(t, eng, fen)
				turn := g.Turn()
				res := g.AttemptMove(m.From.File, m.From.Rank, m.To.File, m.To.Rank)
				if res.Status != Committed {
					t.Fatalf("%s from %s: status=%v err=%v", m, fen, res.Status, res.Err)
				}
				if g.Turn() != turn.Other() {
					t.Fatalf("%s: turn %v after move", m, g.Turn())
				}
			}
		}
	})
}

func TestEveryIllegalPairRejected(t *testing.T) {
	forEachEngine(t, func(t *testing.T, eng engine.PositionEngine) {
		g := New(eng)
		legal := make(map[board.Move]bool)
		for _, m := range eng.Initial().LegalMoves() {
			legal[m] = true
		}
		before := g.FEN()
		for from := 0; from < 64; from++ {
			for to := 0; to < 64; to++ {
				m := board.Move{From: board.Sq(from%8, from/8), To: board.Sq(to%8, to/8)}
				if legal[m] {
					continue
				}
				res := g.AttemptMove(m.From.File, m.From.Rank, m.To.File, m.To.Rank)
				if res.Status != Rejected {
					t.Fatalf("%s: status=%v", m, res.Status)
				}
				if g.FEN() != before {
					t.Fatalf("%s changed the position", m)
				}
			}
		}
		if res := g.AttemptMove(-1, 0, 0, 0); res.Status != Rejected {
			t.Fatalf("off-board: status=%v", res.Status)
		}
		if res := g.AttemptMove(0, 0, 8, 0); res.Status != Rejected {
			t.Fatalf("off-board: status=%v", res.Status)
		}
	})
}

func TestPromotionTwoPhase(t *testing.T) {
	forEachEngine(t, func(t *testing.T, eng engine.PositionEngine) {
		g := mustFEN(t, eng, "4k3/P7/8/8/8/8/8/4K3 w - - 0 1")
		before := g.FEN()
		res := g.AttemptMove(0, 6, 0, 7)
		if res.Status != PromotionRequired {
			t.Fatalf("status=%v err=%v", res.Status, res.Err)
		}
		want := PendingPromotion{From: board.Sq(0, 6), To: board.Sq(0, 7)}
		if res.Pending != want {
			t.Fatalf("pending=%+v", res.Pending)
		}
		if g.FEN() != before {
			t.Fatal("detection must not change the position")
		}
		res = g.ResolvePromotion(res.Pending, "queen")
		if res.Status != Committed {
			t.Fatalf("resolve: status=%v err=%v", res.Status, res.Err)
		}
		if got := g.PieceAt(board.Sq(0, 7)); got != (board.Piece{Kind: board.Queen, Color: board.White}) {
			t.Fatalf("a8=%+v", got)
		}
		if res.UCI != "a7a8q" {
			t.Fatalf("uci=%q", res.UCI)
		}
	})
}

func TestPromotionPatternIgnoresLegality(t *testing.T) {
	forEachEngine(t, func(t *testing.T, eng engine.PositionEngine) {
		// a8 is blocked and h8 is not reachable, both still match the pattern.
		g := mustFEN(t, eng, "n3k3/P7/8/8/8/8/8/4K3 w - - 0 1")
		for _, to := range []int{0, 7} {
			res := g.AttemptMove(0, 6, to, 7)
			if res.Status != PromotionRequired {
				t.Fatalf("a7->%d8: status=%v", to, res.Status)
			}
			res = g.ResolvePromotion(res.Pending, "q")
			if res.Status != Rejected || !errors.Is(res.Err, engine.ErrIllegalMove) {
				t.Fatalf("resolve a7->%d8: status=%v err=%v", to, res.Status, res.Err)
			}
		}
		// Black to move: the white pawn still matches the pattern.
		g = mustFEN(t, eng, "4k3/P7/8/8/8/8/8/4K3 b - - 0 1")
		res := g.AttemptMove(0, 6, 0, 7)
		if res.Status != PromotionRequired {
			t.Fatalf("off-turn: status=%v", res.Status)
		}
		if res = g.ResolvePromotion(res.Pending, "queen"); res.Status != Rejected {
			t.Fatalf("off-turn resolve: status=%v", res.Status)
		}
	})
}

func TestBlackPromotionCapture(t *testing.T) {
	forEachEngine(t, func(t *testing.T, eng engine.PositionEngine) {
		g := mustFEN(t, eng, "4k3/8/8/8/8/8/p7/1R2K3 b - - 0 1")
		res := g.AttemptMove(0, 1, 1, 0)
		if res.Status != PromotionRequired {
			t.Fatalf("status=%v", res.Status)
		}
		res = g.ResolvePromotion(res.Pending, "N")
		if res.Status != Committed {
			t.Fatalf("resolve: status=%v err=%v", res.Status, res.Err)
		}
		if got := g.PieceAt(board.Sq(1, 0)); got != (board.Piece{Kind: board.Knight, Color: board.Black}) {
			t.Fatalf("b1=%+v", got)
		}
	})
}

func TestResolvePromotionRejectsBadKind(t *testing.T) {
	forEachEngine(t, func(t *testing.T, eng engine.PositionEngine) {
		g := mustFEN(t, eng, "4k3/P7/8/8/8/8/8/4K3 w - - 0 1")
		pending := PendingPromotion{From: board.Sq(0, 6), To: board.Sq(0, 7)}
		before := g.FEN()
		for _, kind := range []string{"", "king", "pawn", "k", "p", "dragon"} {
			res := g.ResolvePromotion(pending, kind)
			if res.Status != Rejected || !errors.Is(res.Err, ErrBadPromotion) {
				t.Fatalf("kind %q: status=%v err=%v", kind, res.Status, res.Err)
			}
		}
		if g.FEN() != before {
			t.Fatal("position changed")
		}
	})
}

func TestOutcomes(t *testing.T) {
	cases := []struct {
		name  string
		fen   string
		moves []string
		want  board.Outcome
	}{
		{"insufficient_material", "7k/8/8/8/8/8/1q6/K7 w - - 0 1", []string{"a1b2"}, board.InsufficientMaterial},
		{"checkmate", "", []string{"f2f3", "e7e5", "g2g4", "d8h4"}, board.BlackWon},
		{"stalemate", "7k/8/6K1/8/8/8/8/5Q2 w - - 0 1", []string{"f1f7"}, board.Stalemate},
		{"threefold", "", []string{"g1f3", "g8f6", "f3g1", "f6g8", "g1f3", "g8f6", "f3g1", "f6g8"}, board.ThreefoldRepetition},
		{"fifty_move", "7k/8/8/8/8/8/8/R6K w - - 99 80", []string{"a1a2"}, board.FiftyMoveRule},
		{"ongoing", "", []string{"e2e4"}, board.Ongoing},
	}
	forEachEngine(t, func(t *testing.T, eng engine.PositionEngine) {
		for _, tc := range cases {
			g := mustFEN(t, eng, tc.fen)
			play(t, g, tc.moves...)
			if got := g.Outcome(); got != tc.want {
				t.Fatalf("%s: outcome=%v want %v", tc.name, got, tc.want)
			}
		}
	})
}

func TestCheckmateLeavesNothingToCommit(t *testing.T) {
	forEachEngine(t, func(t *testing.T, eng engine.PositionEngine) {
		g := New(eng)
		play(t, g, "f2f3", "e7e5", "g2g4", "d8h4")
		before := g.FEN()
		res := g.AttemptMove(0, 1, 0, 2)
		if res.Status != Rejected || !errors.Is(res.Err, engine.ErrIllegalMove) {
			t.Fatalf("status=%v err=%v", res.Status, res.Err)
		}
		if g.FEN() != before {
			t.Fatal("position changed")
		}
		if targets := g.LegalTargets(board.Sq(0, 1)); len(targets) != 0 {
			t.Fatalf("targets=%v", targets)
		}
	})
}

func TestPromotionPatternInMatedPosition(t *testing.T) {
	forEachEngine(t, func(t *testing.T, eng engine.PositionEngine) {
		g := mustFEN(t, eng, "R5k1/1P3ppp/8/8/8/8/8/6K1 b - - 0 1")
		if g.Outcome() != board.WhiteWon {
			t.Fatalf("outcome=%v", g.Outcome())
		}
		res := g.AttemptMove(1, 6, 1, 7)
		if res.Status != PromotionRequired || res.Pending != (PendingPromotion{From: board.Sq(1, 6), To: board.Sq(1, 7)}) {
			t.Fatalf("status=%v pending=%+v err=%v", res.Status, res.Pending, res.Err)
		}
		res = g.ResolvePromotion(res.Pending, "q")
		if res.Status != Rejected || !errors.Is(res.Err, engine.ErrIllegalMove) {
			t.Fatalf("resolve: status=%v err=%v", res.Status, res.Err)
		}
	})
}

func TestClaimableDrawStillTakesLegalMoves(t *testing.T) {
	forEachEngine(t, func(t *testing.T, eng engine.PositionEngine) {
		g := New(eng)
		play(t, g, "g1f3", "g8f6", "f3g1", "f6g8", "g1f3", "g8f6", "f3g1", "f6g8")
		if g.Outcome() != board.ThreefoldRepetition {
			t.Fatalf("outcome=%v", g.Outcome())
		}
		res := g.AttemptMove(4, 1, 4, 3)
		if res.Status != Committed || res.UCI != "e2e4" {
			t.Fatalf("status=%v err=%v", res.Status, res.Err)
		}
		if g.IsWhiteTurn() || g.Outcome() != board.Ongoing {
			t.Fatalf("after e4: white=%v outcome=%v", g.IsWhiteTurn(), g.Outcome())
		}
	})
}

func TestFromFENMalformed(t *testing.T) {
	forEachEngine(t, func(t *testing.T, eng engine.PositionEngine) {
		if _, err := FromFEN(eng, "8/8/8 w - - 0 1"); !errors.Is(err, engine.ErrMalformedFEN) {
			t.Fatalf("err=%v", err)
		}
		g, err := FromFEN(eng, "startpos")
		if err != nil || g.FEN() != engine.StartingFEN {
			t.Fatalf("startpos: %v %s", err, g.FEN())
		}
	})
}

func TestGridOrientation(t *testing.T) {
	forEachEngine(t, func(t *testing.T, eng engine.PositionEngine) {
		g := New(eng)
		grid := g.Grid()
		if grid[7][0] != "R" || grid[0][4] != "k" || grid[6][4] != "P" || grid[4][4] != "" {
			t.Fatalf("white-bottom grid wrong: %v", grid)
		}
		g.Flip()
		grid = g.Grid()
		if !g.Reversed() || grid[0][7] != "R" || grid[7][3] != "k" || grid[1][3] != "P" {
			t.Fatalf("reversed grid wrong: %v", grid)
		}
		before := g.FEN()
		g.SetReversed(false)
		if g.FEN() != before {
			t.Fatal("orientation changed the position")
		}
	})
}

func TestLegalTargets(t *testing.T) {
	forEachEngine(t, func(t *testing.T, eng engine.PositionEngine) {
		g := New(eng)
		got := map[board.Square]bool{}
		for _, sq := range g.LegalTargets(board.Sq(4, 1)) {
			got[sq] = true
		}
		if len(got) != 2 || !got[board.Sq(4, 2)] || !got[board.Sq(4, 3)] {
			t.Fatalf("e2 targets=%v", got)
		}
		if len(g.LegalTargets(board.Sq(4, 4))) != 0 {
			t.Fatal("empty square has targets")
		}
	})
}

func TestRestore(t *testing.T) {
	forEachEngine(t, func(t *testing.T, eng engine.PositionEngine) {
		g := New(eng)
		play(t, g, "e2e4", "e7e5", "g1f3", "b8c6")
		r, err := Restore(eng, g.StartFEN(), g.History())
		if err != nil {
			t.Fatalf("restore: %v", err)
		}
		if r.FEN() != g.FEN() {
			t.Fatalf("fen %s != %s", r.FEN(), g.FEN())
		}
		if san := r.SANHistory(); len(san) != 4 || san[2] != "Nf3" {
			t.Fatalf("san=%v", san)
		}
		if _, err := Restore(eng, "", []string{"e2e5"}); !errors.Is(err, engine.ErrIllegalMove) {
			t.Fatalf("bad replay err=%v", err)
		}
	})
}
