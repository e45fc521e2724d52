package tui

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/park285/cheese-board/internal/board"
	"github.com/park285/cheese-board/internal/engine/corentings"
	"github.com/park285/cheese-board/internal/game"
	"github.com/park285/cheese-board/internal/msgcat"
	"github.com/park285/cheese-board/internal/prefs"
	"github.com/park285/cheese-board/internal/render"
	"github.com/park285/cheese-board/internal/shell"
)

func newApp(t *testing.T, fen string, opts ...Option) *App {
	t.Helper()
	g, err := game.FromFEN(corentings.New(), fen)
	if err != nil {
		t.Fatalf("FromFEN: %v", err)
	}
	cat, err := msgcat.New("en", "")
	if err != nil {
		t.Fatalf("msgcat: %v", err)
	}
	ctrl := shell.New(g, shell.WithTranslator(cat), shell.WithSessionID("tui"))
	return New(ctrl, cat, opts...)
}

func key(r rune) *tcell.EventKey {
	return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone)
}

// click selects the table cell showing square s.
func click(a *App, s string) {
	sq, _ := board.ParseSquare(s)
	c := board.ToDisplay(sq, a.ctrl.Game().Reversed())
	a.selectCell(c.Row, c.Col+1)
}

func cellText(a *App, s string) string {
	sq, _ := board.ParseSquare(s)
	c := board.ToDisplay(sq, a.ctrl.Game().Reversed())
	return strings.TrimSpace(a.table.GetCell(c.Row, c.Col+1).Text)
}

func TestBoardDrawnWithLabels(t *testing.T) {
	a := newApp(t, "")
	if got := cellText(a, "e1"); got != "♔" {
		t.Fatalf("e1 = %q", got)
	}
	if got := a.table.GetCell(labelRow, 1).Text; got != "a" {
		t.Fatalf("first file label = %q", got)
	}
	if got := a.table.GetCell(0, labelCol).Text; got != "8" {
		t.Fatalf("top rank label = %q", got)
	}
	if !strings.Contains(a.status.GetText(true), "White to move") {
		t.Fatalf("status = %q", a.status.GetText(true))
	}
}

func TestClickMoveAndLabelsIgnored(t *testing.T) {
	a := newApp(t, "")
	a.selectCell(labelRow, 3)
	a.selectCell(2, labelCol)
	click(a, "g1")
	click(a, "f3")
	if got := cellText(a, "f3"); got != "♘" {
		t.Fatalf("f3 = %q", got)
	}
	if got := strings.TrimSpace(a.moves.GetText(true)); got != "1. Nf3" {
		t.Fatalf("moves = %q", got)
	}
}

func TestFlipKeyPublishes(t *testing.T) {
	var published []shell.Snapshot
	a := newApp(t, "", WithPublisher(func(s shell.Snapshot) { published = append(published, s) }))
	if ev := a.handleKey(key('f')); ev != nil {
		t.Fatal("flip key not consumed")
	}
	if !a.ctrl.Game().Reversed() || a.table.GetCell(0, labelCol).Text != "1" || a.table.GetCell(labelRow, 1).Text != "h" {
		t.Fatal("labels not mirrored")
	}
	if len(published) != 1 || !published[0].Reversed {
		t.Fatalf("published: %+v", published)
	}
	if ev := a.handleKey(key('z')); ev == nil {
		t.Fatal("unbound key swallowed")
	}
}

func TestTypedMoveWithPromotion(t *testing.T) {
	a := newApp(t, "4k3/P7/8/8/8/8/8/4K3 w - - 0 1")
	a.submitTyped("a7a8n")
	if got := cellText(a, "a8"); got != "♘" {
		t.Fatalf("a8 = %q", got)
	}
	a.submitTyped("zz99")
	if !strings.Contains(a.status.GetText(true), "Illegal move zz99") {
		t.Fatalf("status = %q", a.status.GetText(true))
	}
}

func TestPromotionModal(t *testing.T) {
	a := newApp(t, "4k3/P7/8/8/8/8/8/4K3 w - - 0 1")
	click(a, "a7")
	click(a, "a8")
	if !a.pages.HasPage(promotionTag) {
		t.Fatal("promotion modal not shown")
	}
	if ev := a.handleKey(key('f')); ev == nil || a.ctrl.Game().Reversed() {
		t.Fatal("keys must reach the modal while it is open")
	}
	a.choosePromotion(1) // rook
	if a.pages.HasPage(promotionTag) {
		t.Fatal("modal left open")
	}
	if got := cellText(a, "a8"); got != "♖" {
		t.Fatalf("a8 = %q", got)
	}
}

func TestTypedPromotionWithUnknownPieceAsks(t *testing.T) {
	a := newApp(t, "4k3/P7/8/8/8/8/8/4K3 w - - 0 1")
	a.submitTyped("a7a8x")
	if _, pending := a.ctrl.Pending(); !pending || !a.pages.HasPage(promotionTag) {
		t.Fatal("pending promotion without a prompt")
	}
	a.choosePromotion(0) // queen
	if a.pages.HasPage(promotionTag) {
		t.Fatal("modal left open")
	}
	if got := cellText(a, "a8"); got != "♕" {
		t.Fatalf("a8 = %q", got)
	}
}

func TestPromotionModalCancel(t *testing.T) {
	a := newApp(t, "4k3/P7/8/8/8/8/8/4K3 w - - 0 1")
	before := a.ctrl.Game().FEN()
	a.submitTyped("a7a8")
	a.choosePromotion(-1)
	if a.pages.HasPage(promotionTag) || a.ctrl.Game().FEN() != before {
		t.Fatal("cancel did not restore the board")
	}
}

func TestSnapshotKey(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "shots")
	a := newApp(t, "", WithSnapshots(dir, render.New(16)))
	a.submitTyped("e2e4")
	a.handleKey(key('s'))
	path := filepath.Join(dir, "tui-001.png")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if got := a.status.GetText(true); !strings.Contains(got, "Snapshot saved to "+path) {
		t.Fatalf("status = %q", got)
	}
}

type fixedStats struct {
	stats *prefs.Stats
	err   error
}

func (f fixedStats) LoadStats() (*prefs.Stats, error) { return f.stats, f.err }

func TestStatsKey(t *testing.T) {
	st := prefs.NewStats()
	st.GamesPlayed, st.WhiteWins, st.BlackWins, st.Draws, st.LongestGame = 4, 2, 1, 1, 61
	a := newApp(t, "", WithStats(fixedStats{stats: st}))
	if ev := a.handleKey(key('i')); ev != nil {
		t.Fatal("stats key not consumed")
	}
	want := "Games 4: White 2, Black 1, draws 1 (25%). Longest 61 plies"
	if got := a.status.GetText(true); !strings.Contains(got, want) {
		t.Fatalf("status = %q", got)
	}

	broken := newApp(t, "", WithStats(fixedStats{err: errors.New("closed")}))
	broken.handleKey(key('i'))
	if got := broken.status.GetText(true); !strings.Contains(got, "Statistics unavailable: closed") {
		t.Fatalf("status = %q", got)
	}
}

func TestNewGameKey(t *testing.T) {
	a := newApp(t, "")
	a.submitTyped("e2e4")
	a.handleKey(key('n'))
	if len(a.ctrl.Game().History()) != 0 || strings.TrimSpace(a.moves.GetText(true)) != "" {
		t.Fatal("new game kept history")
	}
}

func TestMovesNumberedFromStartFEN(t *testing.T) {
	a := newApp(t, "4k3/8/8/8/8/8/8/4K3 b - - 0 23")
	a.submitTyped("e8d7")
	a.submitTyped("e1d2")
	if got := strings.TrimSpace(a.moves.GetText(true)); got != "23... Kd7\n24. Kd2" {
		t.Fatalf("moves = %q", got)
	}
}

func TestFormatMoves(t *testing.T) {
	if got := formatMoves("", []string{"e4", "e5", "Nf3"}); got != "1. e4 e5\n2. Nf3\n" {
		t.Fatalf("formatMoves = %q", got)
	}
	if got := formatMoves("4k3/8/8/8/8/8/8/4K3 b - - 0 23", []string{"Kd7", "Kd2"}); got != "23... Kd7\n24. Kd2\n" {
		t.Fatalf("formatMoves from black = %q", got)
	}
}
