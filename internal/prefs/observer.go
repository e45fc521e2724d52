package prefs

import (
	"go.uber.org/zap"

	"github.com/park285/cheese-board/internal/shell"
)

// StatsObserver counts finished games. It implements shell.Observer.
type StatsObserver struct {
	s   *Storage
	log *zap.Logger
}

func NewStatsObserver(s *Storage, log *zap.Logger) *StatsObserver {
	if log == nil {
		log = zap.NewNop()
	}
	return &StatsObserver{s: s, log: log}
}

func (o *StatsObserver) OnCommit(shell.Snapshot) {}

func (o *StatsObserver) OnFinish(snap shell.Snapshot) {
	if err := o.s.RecordGame(snap.Outcome, snap.Engine, snap.Ply()); err != nil {
		o.log.Warn("board_stats_record_error", zap.String("session_id", snap.ID), zap.Error(err))
	}
}
