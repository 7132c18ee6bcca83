package main

import (
	"fmt"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	cmd "github.com/shopops/order-csv-exporter/cmd/main"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the export daemon (scheduler, workers and HTTP admin)",
		RunE: func(c *cobra.Command, args []string) error {
			if pidFile := viper.GetString("pid_file"); pidFile != "" {
				lock := flock.New(pidFile)
				locked, err := lock.TryLock()
				if err != nil {
					return fmt.Errorf("could not acquire lock on %s: %w", pidFile, err)
				}
				if !locked {
					return fmt.Errorf("another instance holds %s", pidFile)
				}
				defer func() { _ = lock.Unlock() }()
			}

			cmd.Run()
			return nil
		},
	}
}
