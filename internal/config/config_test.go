package config

import (
	"errors"
	"strings"
	"testing"
	"time"
)

var boardEnv = []string{
	"BOARD_ENGINE", "BOARD_START_FEN", "BOARD_REVERSED", "BOARD_AUTO_FLIP", "BOARD_LOCALE",
	"BOARD_MESSAGES_DIR", "BOARD_SESSION_ID", "BOARD_SESSION_TTL", "REDIS_URL", "DATABASE_URL",
	"BOARD_PREFS_DIR", "BOARD_SNAPSHOT_DIR", "SPECTATE_ADDR",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range boardEnv {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Engine != "corentings" || cfg.SessionTTL != 24*time.Hour || cfg.SnapshotDir != "snapshots" {
		t.Fatalf("defaults: %+v", cfg)
	}
	if cfg.Reversed || cfg.AutoFlip {
		t.Fatalf("flags default on: %+v", cfg)
	}
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("BOARD_ENGINE", "NotNil")
	t.Setenv("BOARD_REVERSED", "true")
	t.Setenv("BOARD_AUTO_FLIP", "1")
	t.Setenv("BOARD_SESSION_ID", "7f1c2f5e-8a53-4c1b-9a55-0f8a4b8f3c11")
	t.Setenv("BOARD_SESSION_TTL", "90m")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("DATABASE_URL", "sqlite3:///tmp/board.db")
	t.Setenv("SPECTATE_ADDR", ":8089")
	t.Setenv("BOARD_MESSAGES_DIR", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Engine != "notnil" || !cfg.Reversed || !cfg.AutoFlip {
		t.Fatalf("cfg: %+v", cfg)
	}
	if cfg.SessionTTL != 90*time.Minute {
		t.Fatalf("ttl: %v", cfg.SessionTTL)
	}

	t.Setenv("BOARD_SESSION_TTL", "3600")
	cfg, err = Load()
	if err != nil || cfg.SessionTTL != time.Hour {
		t.Fatalf("ttl seconds: %v %v", err, cfg)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"BOARD_ENGINE":      "stockfish",
		"BOARD_SESSION_ID":  "not-a-uuid",
		"BOARD_SESSION_TTL": "soon",
		"DATABASE_URL":      "mysql://db",
		"SPECTATE_ADDR":     "8080",
	}
	for key, val := range cases {
		clearEnv(t)
		t.Setenv(key, val)
		_, err := Load()
		if !errors.Is(err, ErrInvalid) {
			t.Fatalf("%s=%s: err=%v", key, val, err)
		}
	}

	clearEnv(t)
	t.Setenv("BOARD_ENGINE", "stockfish")
	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "Engine must be one of") {
		t.Fatalf("message: %v", err)
	}
}
