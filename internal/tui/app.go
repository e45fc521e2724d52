// Package tui is the terminal presentation shell: a tview table draws the
// controller's view and forwards clicks, typed moves and keys to it.
package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"go.uber.org/zap"

	"github.com/park285/cheese-board/internal/board"
	"github.com/park285/cheese-board/internal/msgcat"
	"github.com/park285/cheese-board/internal/opening"
	"github.com/park285/cheese-board/internal/prefs"
	"github.com/park285/cheese-board/internal/render"
	"github.com/park285/cheese-board/internal/shell"
)

const (
	labelRow     = board.Size // file letters below the board
	labelCol     = 0          // rank digits left of the board
	promotionTag = "promotion"
	boardTag     = "board"
)

var (
	lightSquare  = tcell.NewRGBColor(233, 207, 163)
	darkSquare   = tcell.NewRGBColor(187, 136, 96)
	selectedCell = tcell.NewRGBColor(246, 246, 105)
	targetCell   = tcell.NewRGBColor(130, 151, 105)
	whitePiece   = tcell.NewRGBColor(255, 255, 255)
	blackPiece   = tcell.NewRGBColor(0, 0, 0)
	labelColor   = tcell.NewRGBColor(8, 214, 120)
)

type Option func(*App)

func WithLogger(l *zap.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.log = l
		}
	}
}

// WithSnapshots enables the PNG snapshot key; files go to dir.
func WithSnapshots(dir string, r *render.Renderer) Option {
	return func(a *App) {
		a.snapshotDir = dir
		a.renderer = r
	}
}

// WithPublisher is called after flips and resets, which do not reach the
// controller's commit observers.
func WithPublisher(fn func(shell.Snapshot)) Option {
	return func(a *App) { a.publish = fn }
}

// StatsSource supplies the finished-game counters shown by the stats key.
type StatsSource interface {
	LoadStats() (*prefs.Stats, error)
}

func WithStats(src StatsSource) Option {
	return func(a *App) { a.stats = src }
}

type App struct {
	ctrl *shell.Controller
	tr   shell.Translator
	log  *zap.Logger

	app    *tview.Application
	pages  *tview.Pages
	table  *tview.Table
	status *tview.TextView
	moves  *tview.TextView
	input  *tview.InputField

	snapshotDir string
	renderer    *render.Renderer
	publish     func(shell.Snapshot)
	stats       StatsSource
}

func New(ctrl *shell.Controller, tr shell.Translator, opts ...Option) *App {
	a := &App{
		ctrl:   ctrl,
		tr:     tr,
		log:    zap.NewNop(),
		app:    tview.NewApplication(),
		pages:  tview.NewPages(),
		table:  tview.NewTable(),
		status: tview.NewTextView(),
		moves:  tview.NewTextView(),
		input:  tview.NewInputField(),
	}
	for _, o := range opts {
		o(a)
	}

	a.table.SetSelectable(true, true).
		SetSelectedFunc(func(row, col int) { a.selectCell(row, col) })
	a.table.SetBorder(true).SetTitle(" " + tr.Translate("app.title") + " ")

	a.moves.SetBorder(true).SetTitle(" SAN ")
	a.status.SetDynamicColors(false).SetBorder(true)

	a.input.SetLabel("> ").SetFieldWidth(8).SetDoneFunc(func(key tcell.Key) {
		if key == tcell.KeyEnter {
			a.submitTyped(a.input.GetText())
		}
		a.input.SetText("")
		a.app.SetFocus(a.table)
	})

	side := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(a.moves, 0, 1, false).
		AddItem(a.input, 1, 0, false)
	body := tview.NewFlex().
		AddItem(a.table, 30, 0, true).
		AddItem(side, 24, 0, false)
	root := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(body, 0, 1, true).
		AddItem(a.status, 3, 0, false)

	a.pages.AddPage(boardTag, root, true, true)
	a.app.SetRoot(a.pages, true).SetFocus(a.table)
	a.app.SetInputCapture(a.handleKey)
	a.redraw()
	return a
}

// Run blocks until the user quits.
func (a *App) Run() error {
	return a.app.EnableMouse(true).Run()
}

func (a *App) Stop() { a.app.Stop() }

// handleKey runs on the tview event loop. Keys typed into the move field or a
// modal pass through untouched.
func (a *App) handleKey(ev *tcell.EventKey) *tcell.EventKey {
	if a.app.GetFocus() == a.input || a.pages.HasPage(promotionTag) {
		return ev
	}
	switch ev.Key() {
	case tcell.KeyEscape:
		a.app.Stop()
		return nil
	case tcell.KeyRune:
	default:
		return ev
	}
	switch ev.Rune() {
	case 'q':
		a.app.Stop()
	case 'f':
		a.ctrl.Flip()
		a.published()
	case 'n':
		if err := a.ctrl.Reset(""); err != nil {
			a.log.Warn("tui_reset_error", zap.Error(err))
		}
		a.published()
	case 's':
		a.saveSnapshot()
		return nil
	case 'm', ':':
		a.app.SetFocus(a.input)
	case 'i':
		a.showStats()
		return nil
	case 'h', '?':
		a.status.SetText(a.tr.Translate("help.keys"))
		return nil
	default:
		return ev
	}
	a.redraw()
	return nil
}

func (a *App) published() {
	if a.publish != nil {
		a.publish(a.ctrl.Snapshot())
	}
}

func (a *App) selectCell(row, col int) {
	if row == labelRow || col == labelCol {
		return
	}
	a.handleEvent(a.ctrl.Select(board.Cell{Row: row, Col: col - 1}))
}

// submitTyped accepts a move as two squares, e.g. "e2e4" or "e7 e8", with an
// optional promotion letter ("a7a8n").
func (a *App) submitTyped(text string) {
	text = strings.ToLower(strings.ReplaceAll(strings.TrimSpace(text), " ", ""))
	if len(text) < 4 {
		return
	}
	from, err1 := board.ParseSquare(text[0:2])
	to, err2 := board.ParseSquare(text[2:4])
	if err1 != nil || err2 != nil {
		a.status.SetText(a.tr.Translate("move.rejected", msgcat.P("move", text)))
		return
	}
	rev := a.ctrl.Game().Reversed()
	ev := a.ctrl.Gesture(board.ToDisplay(from, rev), board.ToDisplay(to, rev))
	if ev.Kind == shell.EventPromotionPrompt && len(text) == 5 {
		ev = a.ctrl.ChoosePromotion(text[4:])
		// An unknown piece letter keeps the promotion open; ask with the modal.
		if _, pending := a.ctrl.Pending(); pending {
			a.showPromotion()
		}
	}
	a.handleEvent(ev)
}

func (a *App) handleEvent(ev shell.Event) {
	if ev.Kind == shell.EventPromotionPrompt {
		a.showPromotion()
	}
	a.redraw()
}

func (a *App) showPromotion() {
	v := a.ctrl.View()
	labels := make([]string, 0, len(v.Choices)+1)
	for _, c := range v.Choices {
		labels = append(labels, c.Label)
	}
	labels = append(labels, "x")
	modal := tview.NewModal().
		SetText(v.Prompt).
		AddButtons(labels).
		SetDoneFunc(func(idx int, _ string) { a.choosePromotion(idx) })
	a.pages.AddPage(promotionTag, modal, false, true)
	a.app.SetFocus(modal)
}

// choosePromotion maps a modal button to a piece; out-of-range indexes (the
// cancel button, Escape) cancel.
func (a *App) choosePromotion(idx int) {
	choices := a.ctrl.View().Choices
	if idx >= 0 && idx < len(choices) {
		a.ctrl.ChoosePromotion(choices[idx].Token)
	} else {
		a.ctrl.CancelPromotion()
	}
	if _, pending := a.ctrl.Pending(); !pending {
		a.pages.RemovePage(promotionTag)
		a.app.SetFocus(a.table)
	}
	a.redraw()
}

func (a *App) showStats() {
	if a.stats == nil {
		return
	}
	st, err := a.stats.LoadStats()
	if err != nil {
		a.log.Warn("tui_stats_error", zap.Error(err))
		a.status.SetText(a.tr.Translate("stats.unavailable", msgcat.P("error", err.Error())))
		return
	}
	a.status.SetText(a.tr.Translate("stats.summary",
		msgcat.P("games", strconv.Itoa(st.GamesPlayed)),
		msgcat.P("white", strconv.Itoa(st.WhiteWins)),
		msgcat.P("black", strconv.Itoa(st.BlackWins)),
		msgcat.P("draws", strconv.Itoa(st.Draws)),
		msgcat.P("draw_rate", strconv.FormatFloat(st.DrawRate(), 'f', 0, 64)),
		msgcat.P("longest", strconv.Itoa(st.LongestGame)),
	))
}

func (a *App) saveSnapshot() {
	if a.renderer == nil || a.snapshotDir == "" {
		return
	}
	path, err := a.writeSnapshot()
	if err != nil {
		a.log.Warn("tui_snapshot_error", zap.Error(err))
		a.status.SetText(a.tr.Translate("snapshot.failed", msgcat.P("error", err.Error())))
		return
	}
	a.log.Info("tui_snapshot_saved", zap.String("path", path))
	a.status.SetText(a.tr.Translate("snapshot.saved", msgcat.P("path", path)))
}

func (a *App) writeSnapshot() (string, error) {
	if err := os.MkdirAll(a.snapshotDir, 0o755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}
	v := a.ctrl.View()
	opts := render.Options{Reversed: v.Reversed, Title: a.tr.Translate("app.title"), Turn: v.Turn}
	if hist := a.ctrl.Game().History(); len(hist) > 0 {
		if mv, err := board.ParseUCI(hist[len(hist)-1]); err == nil {
			opts.LastMove = &mv
		}
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	data, err := a.renderer.RenderPNG(ctx, v.Grid, opts)
	if err != nil {
		return "", err
	}
	name := fmt.Sprintf("%s-%03d.png", a.ctrl.SessionID(), len(a.ctrl.Game().History()))
	path := filepath.Join(a.snapshotDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	return path, nil
}

// redraw rebuilds every widget from the controller view.
func (a *App) redraw() {
	v := a.ctrl.View()
	targets := make(map[board.Cell]bool, len(v.Targets))
	for _, c := range v.Targets {
		targets[c] = true
	}

	for row := 0; row < board.Size; row++ {
		rank := board.FromDisplay(board.Cell{Row: row, Col: 0}, v.Reversed).Rank
		a.table.SetCell(row, labelCol, tview.NewTableCell(fmt.Sprintf("%d", rank+1)).
			SetTextColor(labelColor).SetAlign(tview.AlignCenter).SetSelectable(false))
		for col := 0; col < board.Size; col++ {
			cell := board.Cell{Row: row, Col: col}
			bg := lightSquare
			if sq := board.FromDisplay(cell, v.Reversed); (sq.File+sq.Rank)%2 == 0 {
				bg = darkSquare
			}
			switch {
			case v.Selected != nil && *v.Selected == cell:
				bg = selectedCell
			case targets[cell]:
				bg = targetCell
			}
			letter := v.Grid[row][col]
			fg := blackPiece
			if p, ok := board.PieceFromLetter(letter); ok && p.Color == board.White {
				fg = whitePiece
			}
			text := " " + board.SymbolFor(letter) + " "
			if letter == "" {
				text = "   "
			}
			a.table.SetCell(row, col+1, tview.NewTableCell(text).
				SetTextColor(fg).SetBackgroundColor(bg).SetAlign(tview.AlignCenter))
		}
	}
	a.table.SetCell(labelRow, labelCol, tview.NewTableCell("").SetSelectable(false))
	for col := 0; col < board.Size; col++ {
		file := board.FromDisplay(board.Cell{Row: board.Size - 1, Col: col}, v.Reversed).File
		a.table.SetCell(labelRow, col+1, tview.NewTableCell(string(rune('a'+file))).
			SetTextColor(labelColor).SetAlign(tview.AlignCenter).SetSelectable(false))
	}

	g := a.ctrl.Game()
	title := " SAN "
	if eco, ok := opening.Classify(g.StartFEN(), g.History()); ok {
		title = " " + eco.String() + " "
	}
	a.moves.SetTitle(title)
	a.moves.SetText(formatMoves(g.StartFEN(), g.SANHistory()))
	line := v.Turn
	if v.Status != "" {
		line += " | " + v.Status
	}
	a.status.SetText(line)
}

// formatMoves lays SAN out as numbered move pairs, one per line.
func formatMoves(startFEN string, san []string) string {
	var b strings.Builder
	for _, line := range board.NumberMoves(startFEN, san) {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}
