package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/park285/cheese-board/internal/archive"
	appcfg "github.com/park285/cheese-board/internal/config"
	"github.com/park285/cheese-board/internal/engine"
	"github.com/park285/cheese-board/internal/enginebuilder"
	"github.com/park285/cheese-board/internal/game"
	"github.com/park285/cheese-board/internal/msgcat"
	"github.com/park285/cheese-board/internal/obslog"
	"github.com/park285/cheese-board/internal/prefs"
	"github.com/park285/cheese-board/internal/render"
	"github.com/park285/cheese-board/internal/session"
	"github.com/park285/cheese-board/internal/shell"
	"github.com/park285/cheese-board/internal/spectate"
	"github.com/park285/cheese-board/internal/tui"
)

func main() {
	cfg, err := appcfg.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	// The terminal belongs to the board; logs only go to the file.
	logOpts := obslog.OptionsFromEnv()
	logOpts.Console = false
	if logOpts.File == "" {
		logOpts.File = "logs/board.log"
	}
	if err := obslog.Init(logOpts); err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	logger := obslog.L()
	defer func() { _ = logger.Sync() }()

	prefStore, saved := openPrefs(cfg, logger)
	if prefStore != nil {
		defer func() { _ = prefStore.Close() }()
	}
	if os.Getenv("BOARD_ENGINE") == "" && saved.Engine != "" {
		cfg.Engine = saved.Engine
	}

	locale := cfg.Locale
	if locale == "" {
		locale = saved.Locale
	}
	if locale == "" {
		locale = msgcat.DetectLocale()
	}
	cat, err := msgcat.New(locale, cfg.MessagesDir)
	if err != nil {
		log.Fatalf("messages init error: %v", err)
	}

	eng, err := enginebuilder.New(cfg.Engine)
	if err != nil {
		log.Fatalf("engine init error: %v", err)
	}

	ctrlOpts := []shell.Option{
		shell.WithTranslator(cat),
		shell.WithLogger(logger),
		shell.WithAutoFlip(cfg.AutoFlip || saved.AutoFlip),
	}

	// Redis session store: resume and autosave
	var g *game.Game
	if cfg.RedisURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		store, err := session.Open(ctx, cfg.RedisURL, cfg.SessionTTL)
		cancel()
		if err != nil {
			log.Fatalf("session store init error: %v", err)
		}
		defer func() { _ = store.Close() }()
		ctrlOpts = append(ctrlOpts, shell.WithObserver(session.NewAutosaver(store, logger)))

		id := cfg.SessionID
		if id == "" {
			id = saved.LastSession
		}
		if id != "" {
			if resumed, rec := resume(store, eng, id, logger); resumed != nil {
				g = resumed
				ctrlOpts = append(ctrlOpts,
					shell.WithSessionID(rec.ID),
					shell.WithStatus(cat.Translate("session.resumed",
						msgcat.P("id", rec.ID),
						msgcat.P("ply", strconv.Itoa(len(rec.MovesUCI))),
					)),
				)
			}
		}
	} else if cfg.SessionID != "" {
		ctrlOpts = append(ctrlOpts, shell.WithSessionID(cfg.SessionID))
	}
	if g == nil {
		g = freshGame(eng, cfg.StartFEN, logger)
		g.SetReversed(cfg.Reversed || saved.Reversed)
	}

	// Result archive
	if cfg.DatabaseURL != "" {
		repo, err := archive.Open(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("archive init error: %v", err)
		}
		defer func() { _ = repo.Close() }()
		ctrlOpts = append(ctrlOpts, shell.WithObserver(archive.NewRecorder(repo, logger)))
	}
	if prefStore != nil {
		ctrlOpts = append(ctrlOpts, shell.WithObserver(prefs.NewStatsObserver(prefStore, logger)))
	}

	renderer := render.New(render.DefaultSquareSize)
	appOpts := []tui.Option{
		tui.WithLogger(logger),
		tui.WithSnapshots(cfg.SnapshotDir, renderer),
	}
	if prefStore != nil {
		appOpts = append(appOpts, tui.WithStats(prefStore))
	}

	// Spectator feed
	var feed *spectate.Server
	if cfg.SpectateAddr != "" {
		feed = spectate.New(renderer, spectate.WithLogger(logger), spectate.WithTranslator(cat))
		ctrlOpts = append(ctrlOpts, shell.WithObserver(feed))
		appOpts = append(appOpts, tui.WithPublisher(feed.Publish))
		go func() {
			if err := feed.ListenAndServe(cfg.SpectateAddr); err != nil {
				logger.Error("spectate_serve_error", zap.Error(err))
			}
		}()
	}

	ctrl := shell.New(g, ctrlOpts...)
	if feed != nil {
		feed.Publish(ctrl.Snapshot())
	}
	logger.Info("board_start",
		zap.String("session_id", ctrl.SessionID()),
		zap.String("engine", g.EngineName()),
		zap.String("locale", cat.Locale()),
		zap.String("fen", g.FEN()),
	)

	app := tui.New(ctrl, cat, appOpts...)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGHUP)
	go func() {
		<-sigCh
		app.Stop()
	}()

	if err := app.Run(); err != nil {
		logger.Error("tui_run_error", zap.Error(err))
	}

	if feed != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		_ = feed.Shutdown(ctx)
		cancel()
	}
	if prefStore != nil {
		last := ctrl.SessionID()
		if ctrl.Game().Outcome().Terminal() {
			last = ""
		}
		err := prefStore.SavePreferences(&prefs.Preferences{
			Engine:      g.EngineName(),
			Locale:      cat.Locale(),
			Reversed:    ctrl.Game().Reversed(),
			AutoFlip:    cfg.AutoFlip || saved.AutoFlip,
			LastSession: last,
		})
		if err != nil {
			logger.Warn("prefs_save_error", zap.Error(err))
		}
	}
	logger.Info("board_exit", zap.String("session_id", ctrl.SessionID()), zap.Int("ply", len(ctrl.Game().History())))
}

// openPrefs never fails the start-up; a missing store only disables stats.
func openPrefs(cfg *appcfg.AppConfig, logger *zap.Logger) (*prefs.Storage, prefs.Preferences) {
	dir := cfg.PrefsDir
	if dir == "" {
		d, err := prefs.DefaultDir()
		if err != nil {
			logger.Warn("prefs_dir_error", zap.Error(err))
			return nil, prefs.Preferences{}
		}
		dir = d
	}
	store, err := prefs.Open(dir)
	if err != nil {
		logger.Warn("prefs_open_error", zap.String("dir", dir), zap.Error(err))
		return nil, prefs.Preferences{}
	}
	p, err := store.LoadPreferences()
	if err != nil {
		logger.Warn("prefs_load_error", zap.Error(err))
		return store, prefs.Preferences{}
	}
	return store, *p
}

// resume returns nil when the stored session is gone, finished or unreadable.
func resume(store *session.Store, eng engine.PositionEngine, id string, logger *zap.Logger) (*game.Game, *session.Record) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	g, rec, err := session.Resume(ctx, store, eng, strings.TrimSpace(id))
	switch {
	case errors.Is(err, session.ErrNotFound):
		logger.Info("board_session_missing", zap.String("session_id", id))
		return nil, nil
	case errors.Is(err, session.ErrFinished):
		logger.Info("board_session_finished", zap.String("session_id", id))
		return nil, nil
	case err != nil:
		logger.Warn("board_session_resume_error", zap.String("session_id", id), zap.Error(err))
		return nil, nil
	}
	logger.Info("board_session_resumed", zap.String("session_id", rec.ID), zap.Int("ply", len(rec.MovesUCI)))
	return g, rec
}

// freshGame falls back to the standard position when the configured FEN is malformed.
func freshGame(eng engine.PositionEngine, fen string, logger *zap.Logger) *game.Game {
	g, err := game.FromFEN(eng, fen)
	if err == nil {
		return g
	}
	logger.Warn("board_start_fen_invalid", zap.String("fen", fen), zap.Error(err))
	return game.New(eng)
}
