// Package archive stores finished games in Postgres or SQLite.
package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/park285/cheese-board/internal/board"
	"github.com/park285/cheese-board/internal/engine"
)

var ErrNotFound = errors.New("archived game not found")

// Result is one finished game.
type Result struct {
	ID        string
	Engine    string
	StartFEN  string
	FinalFEN  string
	Outcome   board.Outcome
	MovesUCI  []string
	MovesSAN  []string
	StartedAt time.Time
	EndedAt   time.Time
}

// Method names how the game ended, used for the PGN Termination tag.
func (r Result) Method() string {
	switch r.Outcome {
	case board.WhiteWon, board.BlackWon:
		return "checkmate"
	default:
		return r.Outcome.String()
	}
}

type Repository struct {
	db     *sql.DB
	driver string
}

// Open accepts postgres://, postgresql:// or sqlite3://<path> URLs.
func Open(databaseURL string) (*Repository, error) {
	raw := strings.TrimSpace(databaseURL)
	if raw == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	driver, dsn := "postgres", raw
	if rest, ok := strings.CutPrefix(raw, "sqlite3://"); ok {
		driver, dsn = "sqlite3", rest
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	if driver == "sqlite3" {
		// one connection keeps :memory: databases alive and serializes writers
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(16)
		db.SetMaxIdleConns(8)
		db.SetConnMaxLifetime(30 * time.Minute)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	r := &Repository{db: db, driver: driver}
	if err := r.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return r, nil
}

func (r *Repository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

func (r *Repository) migrate(ctx context.Context) error {
	ts := "TIMESTAMPTZ"
	if r.driver == "sqlite3" {
		ts = "TIMESTAMP"
	}
	q := `CREATE TABLE IF NOT EXISTS board_games (
        game_id     TEXT PRIMARY KEY,
        engine      TEXT NOT NULL,
        start_fen   TEXT NOT NULL,
        final_fen   TEXT NOT NULL,
        result      TEXT NOT NULL,
        outcome     TEXT NOT NULL,
        moves_uci   TEXT NOT NULL,
        moves_san   TEXT NOT NULL,
        pgn         TEXT NOT NULL,
        started_at  ` + ts + ` NOT NULL,
        ended_at    ` + ts + ` NOT NULL,
        duration_ms BIGINT NOT NULL
      )`
	_, err := r.db.ExecContext(ctx, q)
	return err
}

// rebind turns ? placeholders into $n for Postgres.
func (r *Repository) rebind(q string) string {
	if r.driver != "postgres" {
		return q
	}
	var b strings.Builder
	n := 0
	for _, ch := range q {
		if ch == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(ch)
	}
	return b.String()
}

// SaveResult upserts a finished game.
func (r *Repository) SaveResult(ctx context.Context, res Result) error {
	if r == nil || r.db == nil {
		return nil
	}
	if strings.TrimSpace(res.ID) == "" {
		return fmt.Errorf("game id required")
	}
	if res.EndedAt.IsZero() {
		res.EndedAt = time.Now().UTC()
	}
	if res.StartedAt.IsZero() {
		res.StartedAt = res.EndedAt
	}
	if strings.TrimSpace(res.StartFEN) == "" {
		res.StartFEN = engine.StartingFEN
	}
	movesUCIRaw, _ := json.Marshal(nonNil(res.MovesUCI))
	movesSANRaw, _ := json.Marshal(nonNil(res.MovesSAN))
	duration := res.EndedAt.Sub(res.StartedAt).Milliseconds()
	if duration < 0 {
		duration = 0
	}

	q := r.rebind(`INSERT INTO board_games (
        game_id, engine, start_fen, final_fen, result, outcome,
        moves_uci, moves_san, pgn, started_at, ended_at, duration_ms
      ) VALUES (?,?,?,?,?,?,?,?,?,?,?,?)
      ON CONFLICT (game_id) DO UPDATE SET
        engine=EXCLUDED.engine,
        start_fen=EXCLUDED.start_fen,
        final_fen=EXCLUDED.final_fen,
        result=EXCLUDED.result,
        outcome=EXCLUDED.outcome,
        moves_uci=EXCLUDED.moves_uci,
        moves_san=EXCLUDED.moves_san,
        pgn=EXCLUDED.pgn,
        started_at=EXCLUDED.started_at,
        ended_at=EXCLUDED.ended_at,
        duration_ms=EXCLUDED.duration_ms`)

	_, err := r.db.ExecContext(ctx, q,
		res.ID, res.Engine, res.StartFEN, res.FinalFEN,
		res.Outcome.PGNResult(), res.Outcome.String(),
		string(movesUCIRaw), string(movesSANRaw), BuildPGN(res),
		res.StartedAt.UTC(), res.EndedAt.UTC(), duration,
	)
	return err
}

const selectCols = `game_id, engine, start_fen, final_fen, outcome, moves_uci, moves_san, started_at, ended_at`

func (r *Repository) Get(ctx context.Context, id string) (*Result, error) {
	row := r.db.QueryRowContext(ctx, r.rebind(`SELECT `+selectCols+` FROM board_games WHERE game_id = ?`), id)
	res, err := scanResult(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return res, err
}

// PGN returns the stored PGN text of a game.
func (r *Repository) PGN(ctx context.Context, id string) (string, error) {
	var pgn string
	err := r.db.QueryRowContext(ctx, r.rebind(`SELECT pgn FROM board_games WHERE game_id = ?`), id).Scan(&pgn)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	return pgn, err
}

// Recent lists finished games, newest first.
func (r *Repository) Recent(ctx context.Context, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.db.QueryContext(ctx, r.rebind(`SELECT `+selectCols+` FROM board_games ORDER BY ended_at DESC LIMIT ?`), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Result
	for rows.Next() {
		res, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *res)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanResult(s scanner) (*Result, error) {
	var res Result
	var outcome, movesUCI, movesSAN string
	if err := s.Scan(&res.ID, &res.Engine, &res.StartFEN, &res.FinalFEN, &outcome, &movesUCI, &movesSAN, &res.StartedAt, &res.EndedAt); err != nil {
		return nil, err
	}
	res.Outcome = board.ParseOutcome(outcome)
	if err := json.Unmarshal([]byte(movesUCI), &res.MovesUCI); err != nil {
		return nil, fmt.Errorf("decode moves_uci: %w", err)
	}
	if err := json.Unmarshal([]byte(movesSAN), &res.MovesSAN); err != nil {
		return nil, fmt.Errorf("decode moves_san: %w", err)
	}
	return &res, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
