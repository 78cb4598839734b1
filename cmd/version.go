package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/interviewdeck/internal/api"
)

// version is set via -ldflags at build time.
var version = "(devel)"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the current version",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("interviewdeck", version)

		if check, _ := cmd.Flags().GetBool("check"); !check {
			return nil
		}
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		h, err := api.New(cfg.BackendURL, api.WithTimeout(cfg.RequestTimeout)).Health(cmd.Context())
		if err != nil {
			return fmt.Errorf("backend %s: %w", cfg.BackendURL, err)
		}
		fmt.Println("backend", h.Version)
		return api.CheckCompatible(version, h.Version)
	},
}

func init() {
	versionCmd.Flags().Bool("check", false, "Also query the backend and check compatibility")
}
