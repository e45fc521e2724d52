// Package shell is the presentation-side controller: it owns the Game, turns
// display clicks into board moves and keeps the pending promotion between the
// two halves of a promotion move.
package shell

import (
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/park285/cheese-board/internal/board"
	"github.com/park285/cheese-board/internal/game"
	"github.com/park285/cheese-board/internal/msgcat"
)

// ErrGameOver rejects gestures once the game has a terminal outcome, claimable
// draws included.
var ErrGameOver = errors.New("game is over")

// Translator renders a message key with %{name} substitutions.
type Translator interface {
	Translate(key string, pairs ...msgcat.Pair) string
}

type keyTranslator struct{}

func (keyTranslator) Translate(key string, pairs ...msgcat.Pair) string {
	return msgcat.Substitute(key, pairs...)
}

type EventKind int

const (
	EventNone EventKind = iota
	EventSelected
	EventDeselected
	EventCommitted
	EventPromotionPrompt
	EventPromotionCancelled
	EventRejected
)

// Event reports what a single user action did.
type Event struct {
	Kind   EventKind
	Result game.MoveResult
}

type Option func(*Controller)

func WithTranslator(tr Translator) Option {
	return func(c *Controller) {
		if tr != nil {
			c.tr = tr
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.log = l
		}
	}
}

// WithAutoFlip keeps the side to move at the bottom after every commit.
func WithAutoFlip(on bool) Option { return func(c *Controller) { c.autoFlip = on } }

func WithObserver(o Observer) Option {
	return func(c *Controller) {
		if o != nil {
			c.observers = append(c.observers, o)
		}
	}
}

// WithSessionID fixes the snapshot ID, used when resuming a stored session.
func WithSessionID(id string) Option {
	return func(c *Controller) {
		if id != "" {
			c.id = id
		}
	}
}

// WithStatus sets the status line shown before the first action.
func WithStatus(text string) Option { return func(c *Controller) { c.status = text } }

// Controller is driven from a single event loop goroutine.
type Controller struct {
	g         *game.Game
	tr        Translator
	log       *zap.Logger
	autoFlip  bool
	observers []Observer
	id        string

	selected *board.Square
	pending  *game.PendingPromotion
	status   string
	lastSAN  string
}

func New(g *game.Game, opts ...Option) *Controller {
	c := &Controller{g: g, tr: keyTranslator{}, log: zap.NewNop(), id: uuid.NewString()}
	for _, o := range opts {
		o(c)
	}
	if c.autoFlip {
		c.g.SetReversed(!c.g.IsWhiteTurn())
	}
	return c
}

// Game exposes the owned game for read-only queries.
func (c *Controller) Game() *game.Game { return c.g }

func (c *Controller) SessionID() string { return c.id }

// Pending returns the outstanding promotion, if any.
func (c *Controller) Pending() (game.PendingPromotion, bool) {
	if c.pending == nil {
		return game.PendingPromotion{}, false
	}
	return *c.pending, true
}

// Select handles click-to-move: the first click picks a piece of the side to
// move, the second submits. Clicking the selected square again clears it.
func (c *Controller) Select(cell board.Cell) Event {
	if !cell.Valid() {
		return Event{}
	}
	c.abandonPending()
	sq := board.FromDisplay(cell, c.g.Reversed())
	if c.ownPiece(sq) {
		if c.selected != nil && *c.selected == sq {
			c.selected = nil
			c.status = ""
			return Event{Kind: EventDeselected}
		}
		c.selected = &sq
		c.status = c.tr.Translate("status.selected", msgcat.P("square", sq.String()))
		return Event{Kind: EventSelected}
	}
	if c.selected == nil {
		return Event{}
	}
	from := *c.selected
	c.selected = nil
	return c.submit(from, sq)
}

// Gesture submits a drag from one display cell to another. A promotion still
// awaiting its piece choice is dropped first.
func (c *Controller) Gesture(from, to board.Cell) Event {
	c.abandonPending()
	c.selected = nil
	if !from.Valid() || !to.Valid() {
		return Event{}
	}
	rev := c.g.Reversed()
	return c.submit(board.FromDisplay(from, rev), board.FromDisplay(to, rev))
}

// ChoosePromotion resolves the pending promotion. An unknown piece kind keeps
// the prompt open; any other rejection drops it.
func (c *Controller) ChoosePromotion(kind string) Event {
	if c.pending == nil {
		return Event{}
	}
	p := *c.pending
	res := c.g.ResolvePromotion(p, kind)
	switch res.Status {
	case game.Committed:
		c.pending = nil
		return c.committed(res)
	default:
		if errors.Is(res.Err, game.ErrBadPromotion) {
			c.status = c.tr.Translate("promotion.invalid")
		} else {
			c.pending = nil
			c.status = c.rejectText(p.From, p.To, res.Err)
		}
		c.log.Debug("board_promotion_rejected",
			zap.String("from", p.From.String()),
			zap.String("to", p.To.String()),
			zap.String("kind", kind),
			zap.Error(res.Err),
		)
		return Event{Kind: EventRejected, Result: res}
	}
}

// CancelPromotion drops the pending promotion without touching the game.
func (c *Controller) CancelPromotion() Event {
	if c.pending == nil {
		return Event{}
	}
	c.pending = nil
	c.status = c.tr.Translate("promotion.cancelled")
	return Event{Kind: EventPromotionCancelled}
}

func (c *Controller) Flip() {
	c.g.Flip()
	c.status = c.tr.Translate("board.flipped")
}

// Reset starts a new game on the same engine. An empty fen means the standard
// initial position. On error the current game is kept.
func (c *Controller) Reset(fen string) error {
	next, err := game.FromFEN(c.g.Engine(), fen)
	if err != nil {
		return err
	}
	next.SetReversed(c.g.Reversed())
	c.g = next
	if c.autoFlip {
		c.g.SetReversed(!c.g.IsWhiteTurn())
	}
	c.selected, c.pending = nil, nil
	c.lastSAN = ""
	c.id = uuid.NewString()
	c.status = c.tr.Translate("board.reset")
	c.log.Info("board_reset", zap.String("session_id", c.id), zap.String("fen", c.g.FEN()))
	return nil
}

func (c *Controller) submit(from, to board.Square) Event {
	if c.g.Outcome().Terminal() {
		res := game.MoveResult{Status: game.Rejected, Err: ErrGameOver}
		c.status = c.rejectText(from, to, res.Err)
		return Event{Kind: EventRejected, Result: res}
	}
	res := c.g.AttemptMove(from.File, from.Rank, to.File, to.Rank)
	switch res.Status {
	case game.Committed:
		return c.committed(res)
	case game.PromotionRequired:
		p := res.Pending
		c.pending = &p
		c.status = c.tr.Translate("promotion.prompt", msgcat.P("square", p.From.String()))
		c.log.Info("board_promotion_pending",
			zap.String("from", p.From.String()),
			zap.String("to", p.To.String()),
		)
		return Event{Kind: EventPromotionPrompt, Result: res}
	default:
		c.status = c.rejectText(from, to, res.Err)
		c.log.Debug("board_move_rejected",
			zap.String("from", from.String()),
			zap.String("to", to.String()),
			zap.Error(res.Err),
		)
		return Event{Kind: EventRejected, Result: res}
	}
}

func (c *Controller) committed(res game.MoveResult) Event {
	mover := c.g.Turn().Other()
	c.selected = nil
	c.lastSAN = res.SAN
	if c.autoFlip {
		c.g.SetReversed(!c.g.IsWhiteTurn())
	}
	outcome := c.g.Outcome()
	c.status = c.tr.Translate("move.committed",
		msgcat.P("side", c.sideName(mover)),
		msgcat.P("san", res.SAN),
	)
	c.log.Info("board_move_commit",
		zap.String("session_id", c.id),
		zap.String("uci", res.UCI),
		zap.String("san", res.SAN),
		zap.String("fen", c.g.FEN()),
		zap.String("outcome", outcome.String()),
	)

	snap := c.Snapshot()
	for _, o := range c.observers {
		o.OnCommit(snap)
	}
	if outcome.Terminal() {
		c.log.Info("board_game_finished",
			zap.String("session_id", c.id),
			zap.String("outcome", outcome.String()),
			zap.Int("ply", snap.Ply()),
		)
		for _, o := range c.observers {
			o.OnFinish(snap)
		}
	}
	return Event{Kind: EventCommitted, Result: res}
}

func (c *Controller) abandonPending() {
	if c.pending == nil {
		return
	}
	c.log.Debug("board_promotion_abandoned",
		zap.String("from", c.pending.From.String()),
		zap.String("to", c.pending.To.String()),
	)
	c.pending = nil
}

func (c *Controller) ownPiece(sq board.Square) bool {
	p := c.g.PieceAt(sq)
	return !p.Empty() && p.Color == c.g.Turn() && !c.g.Outcome().Terminal()
}

func (c *Controller) rejectText(from, to board.Square, err error) string {
	if errors.Is(err, ErrGameOver) {
		return c.tr.Translate("move.game_over")
	}
	return c.tr.Translate("move.rejected", msgcat.P("move", from.String()+to.String()))
}

func (c *Controller) sideName(col board.Color) string {
	return c.tr.Translate("side." + col.String())
}

// Snapshot copies the current game state.
func (c *Controller) Snapshot() Snapshot {
	return Snapshot{
		ID:          c.id,
		Engine:      c.g.EngineName(),
		StartFEN:    c.g.StartFEN(),
		FEN:         c.g.FEN(),
		Moves:       c.g.History(),
		SAN:         c.g.SANHistory(),
		Reversed:    c.g.Reversed(),
		WhiteToMove: c.g.IsWhiteTurn(),
		Outcome:     c.g.Outcome(),
		Grid:        c.g.Grid(),
		UpdatedAt:   time.Now().UTC(),
	}
}

// View is everything the shell needs to draw one frame.
type View struct {
	Grid        board.Grid
	WhiteToMove bool
	Reversed    bool
	Selected    *board.Cell
	Targets     []board.Cell
	LastSAN     string
	MoveNumber  string
	Turn        string // side to move, or the outcome once the game is over
	Status      string // result of the last action
	Prompt      string // non-empty while a promotion choice is outstanding
	Choices     []PromotionChoice
	Outcome     board.Outcome
}

// PromotionChoice pairs a promotion token with its translated label.
type PromotionChoice struct {
	Token string
	Label string
}

func (c *Controller) View() View {
	rev := c.g.Reversed()
	v := View{
		Grid:        c.g.Grid(),
		WhiteToMove: c.g.IsWhiteTurn(),
		Reversed:    rev,
		LastSAN:     c.lastSAN,
		MoveNumber:  strconv.Itoa(board.FENMoveNumber(c.g.FEN())),
		Status:      c.status,
		Outcome:     c.g.Outcome(),
	}
	if v.Outcome.Terminal() {
		v.Turn = c.tr.Translate("outcome." + v.Outcome.String())
	} else {
		v.Turn = c.tr.Translate("status.to_move", msgcat.P("side", c.sideName(c.g.Turn())))
	}
	if c.selected != nil {
		cell := board.ToDisplay(*c.selected, rev)
		v.Selected = &cell
		for _, sq := range c.g.LegalTargets(*c.selected) {
			v.Targets = append(v.Targets, board.ToDisplay(sq, rev))
		}
	}
	if c.pending != nil {
		v.Prompt = c.tr.Translate("promotion.prompt", msgcat.P("square", c.pending.From.String()))
		for _, k := range board.PromotionKinds {
			v.Choices = append(v.Choices, PromotionChoice{Token: k.Letter(), Label: c.tr.Translate("piece." + k.String())})
		}
	}
	return v
}
