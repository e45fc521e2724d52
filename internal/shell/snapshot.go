package shell

import (
	"time"

	"github.com/park285/cheese-board/internal/board"
)

// Snapshot is an immutable copy of a game handed to observers and the
// spectator feed.
type Snapshot struct {
	ID          string
	Engine      string
	StartFEN    string
	FEN         string
	Moves       []string // UCI
	SAN         []string
	Reversed    bool
	WhiteToMove bool
	Outcome     board.Outcome
	Grid        board.Grid
	UpdatedAt   time.Time
}

// Ply returns the number of committed half-moves.
func (s Snapshot) Ply() int { return len(s.Moves) }

// Observer is notified after every commit. OnFinish follows OnCommit when the
// commit ended the game.
type Observer interface {
	OnCommit(s Snapshot)
	OnFinish(s Snapshot)
}

// ObserverFuncs adapts plain functions to Observer. Nil fields are skipped.
type ObserverFuncs struct {
	Commit func(Snapshot)
	Finish func(Snapshot)
}

func (o ObserverFuncs) OnCommit(s Snapshot) {
	if o.Commit != nil {
		o.Commit(s)
	}
}

func (o ObserverFuncs) OnFinish(s Snapshot) {
	if o.Finish != nil {
		o.Finish(s)
	}
}
