package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/shopops/order-csv-exporter/internal/settings"
	"github.com/shopops/order-csv-exporter/internal/transport"
)

func newTransportTestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "transport-test",
		Short: "Verify the configured transport by opening a connection",
		RunE: func(c *cobra.Command, args []string) error {
			scheduleCfg, err := settings.NewStore(viper.GetString("settings_file")).Load()
			if err != nil {
				return err
			}

			tr, err := transport.New(scheduleCfg.Transport)
			if err != nil {
				return err
			}

			detail, err := tr.TestConnection(c.Context())
			if err != nil {
				return fmt.Errorf("%s transport test failed: %w", tr.Name(), err)
			}
			fmt.Printf("%s transport OK: %s\n", tr.Name(), detail)
			return nil
		},
	}
}
