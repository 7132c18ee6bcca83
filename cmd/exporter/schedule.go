package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/shopops/order-csv-exporter/internal/model"
	"github.com/shopops/order-csv-exporter/internal/settings"
)

// newScheduleCmd shows or updates the automated-export settings file. A
// running daemon picks the change up through its settings watcher.
func newScheduleCmd() *cobra.Command {
	var (
		enable   bool
		disable  bool
		interval int
	)

	c := &cobra.Command{
		Use:   "schedule",
		Short: "Show or update the automated export schedule",
		RunE: func(c *cobra.Command, args []string) error {
			store := settings.NewStore(viper.GetString("settings_file"))
			cfg, err := store.Load()
			if err != nil {
				return err
			}

			changed := false
			if enable && disable {
				return fmt.Errorf("--enable and --disable are mutually exclusive")
			}
			if enable {
				cfg.Enabled = true
				changed = true
			}
			if disable {
				cfg.Enabled = false
				changed = true
			}
			if interval > 0 {
				cfg.IntervalMinutes = interval
				changed = true
			}

			if changed {
				if !cfg.Format().ValidFor(cfg.Kind) {
					return fmt.Errorf("invalid %s export format: %q", cfg.Kind, cfg.Format())
				}
				if err := store.Save(cfg); err != nil {
					return err
				}
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(cfg)
		},
	}

	c.Flags().BoolVar(&enable, "enable", false, "Enable the automated export")
	c.Flags().BoolVar(&disable, "disable", false, "Disable the automated export")
	c.Flags().IntVar(&interval, "interval", 0, fmt.Sprintf("Export interval in minutes (default %d)", model.DefaultIntervalMinutes))
	return c
}
