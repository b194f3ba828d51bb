package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/seyfullahozdaglar/SpacedRepetitionAppWithJson/internal/app"
	"github.com/seyfullahozdaglar/SpacedRepetitionAppWithJson/internal/config"
	"github.com/seyfullahozdaglar/SpacedRepetitionAppWithJson/internal/persist"
	"github.com/seyfullahozdaglar/SpacedRepetitionAppWithJson/internal/scheduler"
	"github.com/seyfullahozdaglar/SpacedRepetitionAppWithJson/internal/store"
	"github.com/seyfullahozdaglar/SpacedRepetitionAppWithJson/internal/web"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	flags := config.Flags()
	if err := flags.Parse(os.Args[1:]); err != nil {
		return err
	}
	cfg, err := config.Load(flags)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	primary, err := store.OpenBolt(filepath.Join(cfg.DataDir, "flashcards.bolt"), cfg.PrimaryQuota)
	if err != nil {
		return err
	}
	defer primary.Close()

	secondary, err := store.OpenSQLite(filepath.Join(cfg.DataDir, "flashcards.db"))
	if err != nil {
		return err
	}
	defer secondary.Close()

	coord := persist.New(primary, secondary, logger)

	a := app.New(coord, app.Options{
		// Destructive operations are confirmed in the browser via
		// hx-confirm before the request is ever made, so the server-side
		// port always allows them.
		Confirm: app.ConfirmerFunc(func(string) bool { return true }),
		Callbacks: app.Callbacks{
			ReadinessChanged: func(c scheduler.Counts) {
				logger.Debug("readiness changed",
					"total", c.Total, "new", c.NeverPracticed, "ready", c.Ready, "known", c.Known)
			},
			SessionCompleted: func(typ scheduler.SessionType, correct, total int) {
				logger.Info("session completed", "type", typ, "correct", correct, "total", total)
			},
			FileBindingStatusChanged: func(bound bool) {
				logger.Info("bound-file status changed", "bound", bound)
			},
		},
		Logger: logger,
	})
	defer a.Close()

	if err := a.Load(); err != nil {
		return fmt.Errorf("load collection: %w", err)
	}

	srv, err := web.NewServer(a, cfg.BatchSize, logger)
	if err != nil {
		return err
	}

	logger.Info("listening", "addr", cfg.Listen)
	return http.ListenAndServe(cfg.Listen, srv)
}
