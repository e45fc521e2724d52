package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/park285/cheese-board/internal/engine"
	"github.com/park285/cheese-board/internal/game"
	"github.com/park285/cheese-board/internal/shell"
)

// Autosaver persists every commit. It implements shell.Observer.
type Autosaver struct {
	store   *Store
	log     *zap.Logger
	timeout time.Duration
}

func NewAutosaver(store *Store, log *zap.Logger) *Autosaver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Autosaver{store: store, log: log, timeout: 2 * time.Second}
}

func (a *Autosaver) OnCommit(s shell.Snapshot) { a.save(s) }

// OnFinish rewrites the final record, which drops it from the active index.
func (a *Autosaver) OnFinish(s shell.Snapshot) { a.save(s) }

func (a *Autosaver) save(s shell.Snapshot) {
	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()
	rec := FromSnapshot(s)
	if err := a.store.Save(ctx, rec); err != nil {
		level := a.log.Error
		if errors.Is(err, ErrStale) {
			level = a.log.Warn
		}
		level("board_session_save_error", zap.String("session_id", s.ID), zap.Int("ply", s.Ply()), zap.Error(err))
		return
	}
	a.log.Debug("board_session_save", zap.String("session_id", s.ID), zap.Int("ply", s.Ply()), zap.String("status", string(rec.Status)))
}

// Resume rebuilds the game stored under id by replaying its moves.
// An empty id picks the most recent active session. A finished session is
// deleted and reported as ErrFinished.
func Resume(ctx context.Context, store *Store, eng engine.PositionEngine, id string) (*game.Game, *Record, error) {
	var (
		rec *Record
		err error
	)
	if id == "" {
		rec, err = store.Latest(ctx)
	} else {
		rec, err = store.Load(ctx, id)
	}
	if err != nil {
		return nil, nil, err
	}
	if rec.Status == StatusFinished {
		if err := store.Delete(ctx, rec.ID); err != nil {
			return nil, nil, fmt.Errorf("drop finished session %s: %w", rec.ID, err)
		}
		return nil, rec, ErrFinished
	}
	g, err := game.Restore(eng, rec.StartFEN, rec.MovesUCI)
	if err != nil {
		return nil, nil, fmt.Errorf("restore session %s: %w", rec.ID, err)
	}
	g.SetReversed(rec.Reversed)
	return g, rec, nil
}
