package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/interviewdeck/internal/backend"
	"github.com/abhisek/interviewdeck/internal/llm"
	"github.com/abhisek/interviewdeck/internal/logging"
	"github.com/abhisek/interviewdeck/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the reference backend the dashboard talks to",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.ListenAddr = addr
		}

		logger, err := logging.New(logging.Options{File: cfg.LogFile, Level: cfg.LogLevel, Console: true})
		if err != nil {
			return fmt.Errorf("init logging: %w", err)
		}
		defer logger.Sync()

		ctx := cmd.Context()

		var repo store.EventRepo
		if st, err := openStore(cfg); err != nil {
			logger.Warn("LLM request log unavailable", zap.Error(err))
		} else {
			defer st.Close()
			repo = st.EventRepo()
		}

		providers, err := llm.NewRegistry(ctx, llm.ConfigFromEnv(), repo, logging.Module(logger, "llm"))
		if err != nil {
			return fmt.Errorf("LLM providers: %w", err)
		}
		logger.Info("LLM providers ready", zap.Strings("providers", providers.Names()))

		recorder := backend.NewRecorder(cfg.TranscriptFile, nil, logger)
		capturer := &backend.DirCapturer{Source: cfg.CaptureDir, Store: cfg.ScreenshotDir}

		srvCfg := backend.DefaultConfig()
		srvCfg.Addr = cfg.ListenAddr
		srvCfg.Version = version
		srvCfg.ScreenshotDir = cfg.ScreenshotDir

		return backend.New(srvCfg, recorder, capturer, providers, logger).Run(ctx)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides INTERVIEWDECK_LISTEN_ADDR)")
}
