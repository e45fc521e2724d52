package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var ErrInvalid = errors.New("invalid configuration")

var validate = validator.New()

type AppConfig struct {
	Engine   string `validate:"required,oneof=corentings notnil"`
	StartFEN string `validate:"omitempty,max=100"`
	Reversed bool
	AutoFlip bool

	Locale      string `validate:"omitempty,max=64"`
	MessagesDir string `validate:"omitempty,dir"`

	SessionID   string        `validate:"omitempty,uuid"`
	SessionTTL  time.Duration `validate:"gte=1m"`
	RedisURL    string        `validate:"omitempty,url"`
	DatabaseURL string        `validate:"omitempty,startswith=postgres://|startswith=postgresql://|startswith=sqlite3://"`

	PrefsDir     string
	SnapshotDir  string `validate:"required"`
	SpectateAddr string `validate:"omitempty,contains=:"`
}

func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		Engine:      "corentings",
		SessionTTL:  24 * time.Hour,
		SnapshotDir: "snapshots",
	}

	if v := strings.TrimSpace(os.Getenv("BOARD_ENGINE")); v != "" {
		cfg.Engine = strings.ToLower(v)
	}
	cfg.StartFEN = strings.TrimSpace(os.Getenv("BOARD_START_FEN"))
	cfg.Reversed = envBool("BOARD_REVERSED", false)
	cfg.AutoFlip = envBool("BOARD_AUTO_FLIP", false)

	cfg.Locale = strings.TrimSpace(os.Getenv("BOARD_LOCALE"))
	cfg.MessagesDir = strings.TrimSpace(os.Getenv("BOARD_MESSAGES_DIR"))

	cfg.SessionID = strings.TrimSpace(os.Getenv("BOARD_SESSION_ID"))
	if v := strings.TrimSpace(os.Getenv("BOARD_SESSION_TTL")); v != "" {
		// seconds or a Go duration such as 12h
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.SessionTTL = time.Duration(n) * time.Second
		} else if d, err := time.ParseDuration(v); err == nil {
			cfg.SessionTTL = d
		} else {
			return nil, fmt.Errorf("%w: BOARD_SESSION_TTL %q", ErrInvalid, v)
		}
	}
	cfg.RedisURL = strings.TrimSpace(os.Getenv("REDIS_URL"))
	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))

	cfg.PrefsDir = strings.TrimSpace(os.Getenv("BOARD_PREFS_DIR"))
	if v := strings.TrimSpace(os.Getenv("BOARD_SNAPSHOT_DIR")); v != "" {
		cfg.SnapshotDir = filepath.Clean(v)
	}
	cfg.SpectateAddr = strings.TrimSpace(os.Getenv("SPECTATE_ADDR"))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the struct tags and reports every failing field at once.
func (c *AppConfig) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	var details strings.Builder
	for _, fe := range verrs {
		if details.Len() > 0 {
			details.WriteString("; ")
		}
		switch fe.Tag() {
		case "required":
			fmt.Fprintf(&details, "%s is required", fe.Field())
		case "oneof":
			fmt.Fprintf(&details, "%s must be one of [%s]", fe.Field(), fe.Param())
		default:
			fmt.Fprintf(&details, "%s failed %s validation", fe.Field(), fe.Tag())
		}
	}
	return fmt.Errorf("%w: %s", ErrInvalid, details.String())
}

func envBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
