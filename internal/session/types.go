package session

import (
	"time"

	"github.com/park285/cheese-board/internal/board"
	"github.com/park285/cheese-board/internal/shell"
)

type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusFinished Status = "FINISHED"
)

// Record is stored as JSON in Redis under board:session:<id>.
type Record struct {
	ID       string   `json:"id"`
	Engine   string   `json:"engine"`
	StartFEN string   `json:"start_fen"`
	FEN      string   `json:"fen"`
	MovesUCI []string `json:"moves_uci"`
	MovesSAN []string `json:"moves_san"`
	Reversed bool     `json:"reversed"`
	Outcome  string   `json:"outcome"`
	Status   Status   `json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FromSnapshot converts a controller snapshot into a storable record.
func FromSnapshot(s shell.Snapshot) *Record {
	status := StatusActive
	if s.Outcome.Terminal() {
		status = StatusFinished
	}
	updated := s.UpdatedAt
	if updated.IsZero() {
		updated = time.Now().UTC()
	}
	return &Record{
		ID:        s.ID,
		Engine:    s.Engine,
		StartFEN:  s.StartFEN,
		FEN:       s.FEN,
		MovesUCI:  append([]string{}, s.Moves...),
		MovesSAN:  append([]string{}, s.SAN...),
		Reversed:  s.Reversed,
		Outcome:   s.Outcome.String(),
		Status:    status,
		UpdatedAt: updated,
	}
}

// OutcomeValue parses the stored outcome name.
func (r *Record) OutcomeValue() board.Outcome { return board.ParseOutcome(r.Outcome) }
