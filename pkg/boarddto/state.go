// Package boarddto holds the JSON shapes served by the spectator feed.
package boarddto

import "time"

type BoardState struct {
	SessionID   string       `json:"session_id"`
	Engine      string       `json:"engine"`
	StartFEN    string       `json:"start_fen"`
	FEN         string       `json:"fen"`
	MovesUCI    []string     `json:"moves_uci"`
	MovesSAN    []string     `json:"moves_san"`
	Ply         int          `json:"ply"`
	WhiteToMove bool         `json:"white_to_move"`
	Reversed    bool         `json:"reversed"`
	Outcome     string       `json:"outcome"`
	Result      string       `json:"result"` // PGN result token
	Finished    bool         `json:"finished"`
	Opening     string       `json:"opening,omitempty"` // ECO code and name
	Grid        [8][8]string `json:"grid"` // display order, FEN letters, "" for empty
	UpdatedAt   time.Time    `json:"updated_at"`
}

type Health struct {
	Status string `json:"status"`
	Ply    int    `json:"ply"`
}
