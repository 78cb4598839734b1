package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/interviewdeck/internal/api"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear the backend interview session",
	Long:  "Deletes every screenshot, question, solution and transcription the backend holds for the current interview.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		client := api.New(cfg.BackendURL, api.WithTimeout(cfg.RequestTimeout))
		if err := client.Reset(cmd.Context()); err != nil {
			return fmt.Errorf("reset %s: %w", cfg.BackendURL, err)
		}
		fmt.Println("Interview reset.")
		return nil
	},
}
