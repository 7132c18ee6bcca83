package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	conf "github.com/shopops/order-csv-exporter/config"
	"github.com/shopops/order-csv-exporter/internal/model"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "exporter",
		Short:   "Scheduled CSV export pipeline for orders and customers",
		Version: model.CurrentVersion,
		Long: `exporter delivers order and customer data as CSV files over FTP, SFTP,
HTTP POST or to the local filesystem, either on a schedule or on demand.`,
		SilenceUsage: true,
	}

	conf.BindFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(
		newServeCmd(),
		newExportCmd(),
		newScheduleCmd(),
		newCountCmd(),
		newMarkCmd(true),
		newMarkCmd(false),
		newTransportTestCmd(),
	)
	return rootCmd
}
