// Package prefs keeps local preferences and game statistics in BadgerDB.
package prefs

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/park285/cheese-board/internal/board"
)

const (
	keyPreferences = "preferences"
	keyStats       = "stats"
)

// Preferences are the last used board settings.
type Preferences struct {
	Engine      string    `json:"engine"`
	Locale      string    `json:"locale"`
	Reversed    bool      `json:"reversed"`
	AutoFlip    bool      `json:"auto_flip"`
	LastSession string    `json:"last_session"`
	LastPlayed  time.Time `json:"last_played"`
}

// Stats are counters over finished games.
type Stats struct {
	GamesPlayed int            `json:"games_played"`
	WhiteWins   int            `json:"white_wins"`
	BlackWins   int            `json:"black_wins"`
	Draws       int            `json:"draws"`
	ByOutcome   map[string]int `json:"by_outcome"`
	ByEngine    map[string]int `json:"by_engine"`
	TotalPlies  int            `json:"total_plies"`
	LongestGame int            `json:"longest_game"`
}

func NewStats() *Stats {
	return &Stats{ByOutcome: make(map[string]int), ByEngine: make(map[string]int)}
}

// DrawRate returns the share of drawn games as a percentage (0-100).
func (s *Stats) DrawRate() float64 {
	if s.GamesPlayed == 0 {
		return 0
	}
	return float64(s.Draws) / float64(s.GamesPlayed) * 100
}

type Storage struct {
	db *badger.DB
}

// DefaultDir is <user config dir>/cheese-board/prefs.
func DefaultDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "cheese-board", "prefs"), nil
}

// Open opens (or creates) the database in dir. An empty dir uses DefaultDir.
func Open(dir string) (*Storage, error) {
	if dir == "" {
		d, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create prefs dir: %w", err)
	}
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open prefs: %w", err)
	}
	return &Storage{db: db}, nil
}

func (s *Storage) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Storage) SavePreferences(p *Preferences) error {
	p.LastPlayed = time.Now().UTC()
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyPreferences), data)
	})
}

// LoadPreferences returns zero-valued preferences when none are stored.
func (s *Storage) LoadPreferences() (*Preferences, error) {
	p := &Preferences{}
	err := s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, keyPreferences, p)
	})
	return p, err
}

func (s *Storage) LoadStats() (*Stats, error) {
	stats := NewStats()
	err := s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, keyStats, stats)
	})
	return stats, err
}

// RecordGame folds one finished game into the stored statistics.
func (s *Storage) RecordGame(outcome board.Outcome, engineName string, plies int) error {
	if !outcome.Terminal() {
		return nil
	}
	return s.db.Update(func(txn *badger.Txn) error {
		stats := NewStats()
		if err := getJSON(txn, keyStats, stats); err != nil {
			return err
		}
		stats.GamesPlayed++
		switch outcome.Winner() {
		case board.White:
			stats.WhiteWins++
		case board.Black:
			stats.BlackWins++
		default:
			stats.Draws++
		}
		stats.ByOutcome[outcome.String()]++
		if engineName != "" {
			stats.ByEngine[engineName]++
		}
		stats.TotalPlies += plies
		if plies > stats.LongestGame {
			stats.LongestGame = plies
		}
		data, err := json.Marshal(stats)
		if err != nil {
			return err
		}
		return txn.Set([]byte(keyStats), data)
	})
}

func getJSON(txn *badger.Txn, key string, dst any) error {
	item, err := txn.Get([]byte(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, dst)
	})
}
