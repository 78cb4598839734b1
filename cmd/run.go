package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/interviewdeck/internal/api"
	"github.com/abhisek/interviewdeck/internal/app"
	"github.com/abhisek/interviewdeck/internal/events"
	"github.com/abhisek/interviewdeck/internal/logging"
	"github.com/abhisek/interviewdeck/internal/managers"
	"github.com/abhisek/interviewdeck/internal/poller"
	"github.com/abhisek/interviewdeck/internal/state"
	"github.com/abhisek/interviewdeck/internal/store"
)

// runDashboard builds the client, state and managers and launches the TUI.
func runDashboard(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	// The terminal belongs to the UI, so logs only go to the file.
	logger, err := logging.New(logging.Options{File: cfg.LogFile, Level: cfg.LogLevel})
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer logger.Sync()

	var repo store.EventRepo
	st, err := openStore(cfg)
	if err != nil {
		// History is optional; the dashboard still works without it.
		fmt.Fprintln(os.Stderr, "Job history unavailable:", err)
		logger.Warn("job history unavailable", zap.Error(err))
	} else {
		defer st.Close()
		repo = st.EventRepo()
	}

	bus := events.New()
	appState := state.New(bus)
	client := api.New(cfg.BackendURL,
		api.WithTimeout(cfg.RequestTimeout),
		api.WithLogger(logging.Module(logger, "api")),
	)
	sched := poller.New(cfg.Poller(),
		poller.WithLogger(logging.Module(logger, "poller")),
		poller.WithObserver(managers.NewJobLog(repo, bus, logger)),
	)
	set := managers.New(managers.Deps{
		Client:        client,
		State:         appState,
		Scheduler:     sched,
		Logger:        logger,
		DeviceName:    cfg.DeviceName,
		RecordSeconds: cfg.RecordSeconds,
	})

	logger.Info("dashboard starting",
		zap.String("backend", cfg.BackendURL),
		zap.String("version", version),
	)
	return app.Run(cmd.Context(), app.Options{
		Client:     client,
		State:      appState,
		Managers:   set,
		Scheduler:  sched,
		Refresher:  managers.NewRefresher(set, cfg.RefreshInterval, logger),
		EventRepo:  repo,
		BackendURL: cfg.BackendURL,
		Version:    version,
		Logger:     logger,
	})
}
