package session

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"

	"github.com/park285/cheese-board/internal/board"
	"github.com/park285/cheese-board/internal/engine/corentings"
	"github.com/park285/cheese-board/internal/game"
	"github.com/park285/cheese-board/internal/shell"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	s, err := Open(context.Background(), fmt.Sprintf("redis://%s/0", mr.Addr()), time.Hour)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s, mr
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()
	rec := &Record{ID: "s1", Engine: "corentings", MovesUCI: []string{"e2e4"}, MovesSAN: []string{"e4"}, Status: StatusActive}
	if err := s.Save(ctx, rec); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := s.Load(ctx, "s1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Engine != "corentings" || len(got.MovesUCI) != 1 || got.CreatedAt.IsZero() {
		t.Fatalf("loaded: %+v", got)
	}
	if ttl := mr.TTL(sessionKey("s1")); ttl != time.Hour {
		t.Fatalf("ttl = %v", ttl)
	}
	if _, err := s.Load(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing: %v", err)
	}
}

func TestSaveRejectsStaleWrite(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	long := &Record{ID: "s1", MovesUCI: []string{"e2e4", "e7e5"}, Status: StatusActive, CreatedAt: created, UpdatedAt: created}
	if err := s.Save(ctx, long); err != nil {
		t.Fatalf("Save long: %v", err)
	}
	short := &Record{ID: "s1", MovesUCI: []string{"e2e4"}, Status: StatusActive}
	if err := s.Save(ctx, short); !errors.Is(err, ErrStale) {
		t.Fatalf("stale save err=%v", err)
	}
	longer := &Record{ID: "s1", MovesUCI: []string{"e2e4", "e7e5", "g1f3"}, Status: StatusActive}
	if err := s.Save(ctx, longer); err != nil {
		t.Fatalf("Save longer: %v", err)
	}
	got, _ := s.Load(ctx, "s1")
	if !got.CreatedAt.Equal(created) {
		t.Fatalf("created_at not preserved: %v", got.CreatedAt)
	}
}

func TestLatestSkipsFinished(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	base := time.Now().UTC()
	_ = s.Save(ctx, &Record{ID: "old", Status: StatusActive, UpdatedAt: base.Add(-time.Minute)})
	_ = s.Save(ctx, &Record{ID: "done", Status: StatusActive, UpdatedAt: base})
	_ = s.Save(ctx, &Record{ID: "done", Status: StatusFinished, UpdatedAt: base.Add(time.Second)})

	got, err := s.Latest(ctx)
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if got.ID != "old" {
		t.Fatalf("latest = %s", got.ID)
	}
	if err := s.Delete(ctx, "old"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Latest(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("after delete: %v", err)
	}
}

func TestAutosaveAndResume(t *testing.T) {
	s, _ := newTestStore(t)
	eng := corentings.New()
	c := shell.New(game.New(eng), shell.WithObserver(NewAutosaver(s, nil)), shell.WithSessionID("live"))
	for _, mv := range [][2]string{{"e2", "e4"}, {"e7", "e5"}} {
		from, _ := board.ParseSquare(mv[0])
		to, _ := board.ParseSquare(mv[1])
		c.Gesture(board.ToDisplay(from, false), board.ToDisplay(to, false))
	}
	c.Flip()
	c.Gesture(board.ToDisplay(board.Sq(6, 0), true), board.ToDisplay(board.Sq(5, 2), true))

	g, rec, err := Resume(context.Background(), s, eng, "live")
	if err != nil {
		t.Fatalf("Resume: %v", err)
	}
	if g.FEN() != c.Game().FEN() || !g.Reversed() || len(rec.MovesSAN) != 3 || rec.MovesSAN[2] != "Nf3" {
		t.Fatalf("resumed: fen=%s rec=%+v", g.FEN(), rec)
	}
	if rec.OutcomeValue() != board.Ongoing {
		t.Fatalf("outcome = %s", rec.Outcome)
	}

	g2, _, err := Resume(context.Background(), s, eng, "")
	if err != nil || g2.FEN() != g.FEN() {
		t.Fatalf("resume latest: %v", err)
	}
}

func TestResumeDropsFinishedSession(t *testing.T) {
	s, _ := newTestStore(t)
	eng := corentings.New()
	c := shell.New(game.New(eng), shell.WithObserver(NewAutosaver(s, nil)), shell.WithSessionID("mated"))
	for _, mv := range [][2]string{{"f2", "f3"}, {"e7", "e5"}, {"g2", "g4"}, {"d8", "h4"}} {
		from, _ := board.ParseSquare(mv[0])
		to, _ := board.ParseSquare(mv[1])
		c.Gesture(board.ToDisplay(from, false), board.ToDisplay(to, false))
	}
	ctx := context.Background()
	if rec, err := s.Load(ctx, "mated"); err != nil || rec.Status != StatusFinished {
		t.Fatalf("stored: %+v %v", rec, err)
	}

	g, rec, err := Resume(ctx, s, eng, "mated")
	if !errors.Is(err, ErrFinished) || g != nil || rec == nil || rec.OutcomeValue() != board.BlackWon {
		t.Fatalf("resume finished: g=%v rec=%+v err=%v", g, rec, err)
	}
	if _, err := s.Load(ctx, "mated"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("after resume: %v", err)
	}
}

func TestParseRedisURL(t *testing.T) {
	opts, err := parseRedisURL("redis://:secret@localhost:6380/2")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if opts.Addr != "localhost:6380" || opts.Password != "secret" || opts.DB != 2 {
		t.Fatalf("opts: %+v", opts)
	}
	if _, err := parseRedisURL("http://localhost"); err == nil {
		t.Fatal("expected scheme error")
	}
}
