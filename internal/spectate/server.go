// Package spectate serves a read-only view of the running game over HTTP.
// The controller publishes snapshots; request handlers never touch the Game.
package spectate

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"sync/atomic"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/park285/cheese-board/internal/board"
	"github.com/park285/cheese-board/internal/msgcat"
	"github.com/park285/cheese-board/internal/opening"
	"github.com/park285/cheese-board/internal/render"
	"github.com/park285/cheese-board/internal/shell"
	"github.com/park285/cheese-board/pkg/boarddto"
)

type Option func(*Server)

func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// WithTranslator localizes the turn line drawn on /board.png.
func WithTranslator(tr shell.Translator) Option {
	return func(s *Server) { s.tr = tr }
}

type Server struct {
	snap     atomic.Pointer[shell.Snapshot]
	renderer *render.Renderer
	tr       shell.Translator
	log      *zap.Logger
	srv      *fasthttp.Server
}

func New(r *render.Renderer, opts ...Option) *Server {
	if r == nil {
		r = render.New(0)
	}
	s := &Server{renderer: r, log: zap.NewNop()}
	for _, o := range opts {
		o(s)
	}
	s.srv = &fasthttp.Server{
		Handler:      s.Handler(),
		Name:         "cheese-board",
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}
	return s
}

// Publish replaces the snapshot served to spectators.
func (s *Server) Publish(snap shell.Snapshot) {
	s.snap.Store(&snap)
}

func (s *Server) OnCommit(snap shell.Snapshot) { s.Publish(snap) }
func (s *Server) OnFinish(snap shell.Snapshot) { s.Publish(snap) }

func (s *Server) Current() (shell.Snapshot, bool) {
	p := s.snap.Load()
	if p == nil {
		return shell.Snapshot{}, false
	}
	return *p, true
}

func (s *Server) ListenAndServe(addr string) error {
	s.log.Info("spectate_listen", zap.String("addr", addr))
	return s.srv.ListenAndServe(addr)
}

func (s *Server) Serve(ln net.Listener) error {
	return s.srv.Serve(ln)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.ShutdownWithContext(ctx)
}

func (s *Server) Handler() fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		if !ctx.IsGet() && !ctx.IsHead() {
			writeError(ctx, fasthttp.StatusMethodNotAllowed, boarddto.DomainError{Code: boarddto.CodeMethodNotAllowed})
			return
		}
		switch string(ctx.Path()) {
		case "/healthz":
			s.health(ctx)
		case "/state":
			s.state(ctx)
		case "/board.png":
			s.boardPNG(ctx)
		case "/board.svg":
			s.boardSVG(ctx)
		default:
			writeError(ctx, fasthttp.StatusNotFound, boarddto.DomainError{Code: boarddto.CodeNotFound, Message: "unknown path"})
		}
	}
}

func (s *Server) health(ctx *fasthttp.RequestCtx) {
	h := boarddto.Health{Status: "ok"}
	if snap, ok := s.Current(); ok {
		h.Ply = snap.Ply()
	}
	writeJSON(ctx, fasthttp.StatusOK, h)
}

func (s *Server) state(ctx *fasthttp.RequestCtx) {
	snap, ok := s.Current()
	if !ok {
		writeError(ctx, fasthttp.StatusNotFound, noGame)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, StateFromSnapshot(snap))
}

func (s *Server) boardPNG(ctx *fasthttp.RequestCtx) {
	snap, ok := s.Current()
	if !ok {
		writeError(ctx, fasthttp.StatusNotFound, noGame)
		return
	}
	rctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	data, err := s.renderer.RenderPNG(rctx, snap.Grid, s.renderOptions(snap))
	if err != nil {
		s.log.Warn("spectate_render_error", zap.String("session_id", snap.ID), zap.Error(err))
		writeError(ctx, fasthttp.StatusInternalServerError, boarddto.DomainError{Code: boarddto.CodeRenderFailed, Message: err.Error(), Retryable: true})
		return
	}
	ctx.SetContentType("image/png")
	ctx.Response.Header.Set("Cache-Control", "no-store")
	ctx.SetBody(data)
}

func (s *Server) boardSVG(ctx *fasthttp.RequestCtx) {
	snap, ok := s.Current()
	if !ok {
		writeError(ctx, fasthttp.StatusNotFound, noGame)
		return
	}
	var buf bytes.Buffer
	render.BoardSVG(&buf, snap.Grid, s.renderOptions(snap), 0)
	ctx.SetContentType("image/svg+xml")
	ctx.Response.Header.Set("Cache-Control", "no-store")
	ctx.SetBody(buf.Bytes())
}

func (s *Server) renderOptions(snap shell.Snapshot) render.Options {
	opts := render.Options{Reversed: snap.Reversed, Title: snap.ID}
	if n := len(snap.Moves); n > 0 {
		if mv, err := board.ParseUCI(snap.Moves[n-1]); err == nil {
			opts.LastMove = &mv
		}
	}
	if s.tr == nil {
		return opts
	}
	if snap.Outcome.Terminal() {
		opts.Turn = s.tr.Translate("outcome." + snap.Outcome.String())
	} else {
		side := board.Black
		if snap.WhiteToMove {
			side = board.White
		}
		opts.Turn = s.tr.Translate("status.to_move", msgcat.P("side", s.tr.Translate("side."+side.String())))
	}
	return opts
}

var noGame = boarddto.DomainError{Code: boarddto.CodeNoGame, Message: "no game published yet", Retryable: true}

// StateFromSnapshot converts a controller snapshot to its wire form.
func StateFromSnapshot(snap shell.Snapshot) boarddto.BoardState {
	st := boarddto.BoardState{
		SessionID:   snap.ID,
		Engine:      snap.Engine,
		StartFEN:    snap.StartFEN,
		FEN:         snap.FEN,
		MovesUCI:    nonNil(snap.Moves),
		MovesSAN:    nonNil(snap.SAN),
		Ply:         snap.Ply(),
		WhiteToMove: snap.WhiteToMove,
		Reversed:    snap.Reversed,
		Outcome:     snap.Outcome.String(),
		Result:      snap.Outcome.PGNResult(),
		Finished:    snap.Outcome.Terminal(),
		Grid:        snap.Grid,
		UpdatedAt:   snap.UpdatedAt,
	}
	if eco, ok := opening.Classify(snap.StartFEN, snap.Moves); ok {
		st.Opening = eco.String()
	}
	return st
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func writeJSON(ctx *fasthttp.RequestCtx, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		ctx.Error("encode response", fasthttp.StatusInternalServerError)
		return
	}
	ctx.SetStatusCode(status)
	ctx.SetContentType("application/json")
	ctx.SetBody(body)
}

func writeError(ctx *fasthttp.RequestCtx, status int, e boarddto.DomainError) {
	writeJSON(ctx, status, e)
}
