package archive

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/park285/cheese-board/internal/shell"
)

// Recorder archives games when they finish. It implements shell.Observer.
type Recorder struct {
	repo *Repository
	log  *zap.Logger

	mu      sync.Mutex
	started map[string]time.Time
}

func NewRecorder(repo *Repository, log *zap.Logger) *Recorder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Recorder{repo: repo, log: log, started: make(map[string]time.Time)}
}

// OnCommit remembers when a game's first move was played.
func (r *Recorder) OnCommit(s shell.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.started[s.ID]; !ok {
		r.started[s.ID] = s.UpdatedAt
	}
}

func (r *Recorder) OnFinish(s shell.Snapshot) {
	r.mu.Lock()
	started := r.started[s.ID]
	delete(r.started, s.ID)
	r.mu.Unlock()

	res := Result{
		ID:        s.ID,
		Engine:    s.Engine,
		StartFEN:  s.StartFEN,
		FinalFEN:  s.FEN,
		Outcome:   s.Outcome,
		MovesUCI:  s.Moves,
		MovesSAN:  s.SAN,
		StartedAt: started,
		EndedAt:   s.UpdatedAt,
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.repo.SaveResult(ctx, res); err != nil {
		r.log.Error("board_result_persist_error", zap.String("game_id", s.ID), zap.String("outcome", s.Outcome.String()), zap.Error(err))
		return
	}
	r.log.Info("board_result_persist", zap.String("game_id", s.ID), zap.String("outcome", s.Outcome.String()), zap.String("method", res.Method()))
}
