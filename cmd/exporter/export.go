package main

import (
	"context"
	"fmt"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/shopops/order-csv-exporter/internal/app"
	"github.com/shopops/order-csv-exporter/internal/model"
	"github.com/shopops/order-csv-exporter/internal/settings"
	"github.com/shopops/order-csv-exporter/internal/transport"
)

func newExportCmd() *cobra.Command {
	var (
		filters    filterFlags
		formatName string
		filename   string
		outputDir  string
		markPolicy string
		unexported bool
	)

	c := &cobra.Command{
		Use:   "export",
		Short: "Run a one-shot export and deliver it",
		Long: `Runs a single export synchronously. The destination is the transport from
the schedule settings unless --output redirects the file to a local directory.`,
		RunE: func(c *cobra.Command, args []string) error {
			filter, err := filters.build()
			if err != nil {
				return err
			}
			exportFormat, err := model.ParseExportFormat(formatName, filter.Kind)
			if err != nil {
				return err
			}
			policy, err := parseMarkPolicy(markPolicy)
			if err != nil {
				return err
			}

			st, err := openStore()
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			var transportCfg model.TransportConfig
			if outputDir != "" {
				transportCfg = model.TransportConfig{
					Kind:      model.TransportLocalFile,
					LocalFile: model.LocalFileConfig{Dir: outputDir},
				}
			} else {
				scheduleCfg, err := settings.NewStore(viper.GetString("settings_file")).Load()
				if err != nil {
					return err
				}
				transportCfg = scheduleCfg.Transport
			}
			tr, err := transport.New(transportCfg)
			if err != nil {
				return err
			}

			if filename == "" {
				filename = model.DefaultOrderFilename
				if filter.Kind == model.KindCustomer {
					filename = model.DefaultCustomerFilename
				}
			}

			job := app.ExportJob{
				Filter:           filter,
				Format:           exportFormat,
				FilenameTemplate: filename,
				Transport:        tr,
				MarkPolicy:       policy,
				UnexportedOnly:   unexported,
			}

			result, err := runWithSpinner(c.Context(), app.NewOrchestrator(st), job)
			if err != nil {
				if result.Attempted > 0 {
					return fmt.Errorf("%w (affected records: %d)", err, result.Attempted)
				}
				return err
			}

			if result.Attempted == 0 {
				fmt.Println("No records matched; nothing was exported.")
				return nil
			}
			fmt.Printf("Delivered %s via %s: %d of %d records, %d bytes\n",
				result.Filename, tr.Name(), result.Succeeded, result.Attempted, result.Bytes)
			for _, re := range result.Errors {
				fmt.Printf("  skipped record %d: %s\n", re.RecordID, re.Kind)
			}
			return nil
		},
	}

	filters.register(c)
	c.Flags().StringVar(&formatName, "format", string(model.FormatDefault), "Export format")
	c.Flags().StringVar(&filename, "filename", "", "Filename template; supports %%timestamp%% and %%order_ids%%")
	c.Flags().StringVar(&outputDir, "output", "", "Write the file into this local directory instead of the configured transport")
	c.Flags().StringVar(&markPolicy, "mark", "after", "When to mark records exported: before, after or none")
	c.Flags().BoolVar(&unexported, "unexported-only", false, "Only export records explicitly flagged unexported")
	return c
}

func parseMarkPolicy(s string) (model.MarkPolicy, error) {
	switch s {
	case "before":
		return model.MarkBeforeDeliver, nil
	case "after":
		return model.MarkAfterDeliver, nil
	case "none":
		return model.DoNotMark, nil
	}
	return "", fmt.Errorf("invalid --mark value: %q (want before, after or none)", s)
}

// runWithSpinner keeps a spinner moving while the export runs; delivery over
// a slow transport can take a while.
func runWithSpinner(ctx context.Context, orch *app.Orchestrator, job app.ExportJob) (model.ExportJobResult, error) {
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription("exporting"),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				_ = bar.Add(1)
			}
		}
	}()

	result, err := orch.Run(ctx, job)
	close(done)
	_ = bar.Finish()
	return result, err
}
