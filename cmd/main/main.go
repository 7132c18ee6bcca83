package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	conf "github.com/shopops/order-csv-exporter/config"
	"github.com/shopops/order-csv-exporter/internal/app"
	"github.com/shopops/order-csv-exporter/internal/model"
	logging "github.com/shopops/order-csv-exporter/internal/otel"
)

// Run starts the export daemon and blocks until it stops.
func Run() {

	// Load configuration
	config, appErr := conf.LoadConfig()
	if appErr != nil {
		slog.Error("order_csv_exporter.main.configuration_error", slog.String("error", appErr.Error()))
		return
	}

	// slog + OTEL logging
	service := resource.NewSchemaless(
		semconv.ServiceName(model.AppServiceName),
		semconv.ServiceVersion(model.CurrentVersion),
		semconv.ServiceNamespace(model.NamespaceName),
	)
	shutdown := logging.Setup(service)

	// Initialize the application
	application, appErr := app.New(config, shutdown)
	if appErr != nil {
		slog.Error("order_csv_exporter.main.application_initialization_error", slog.String("error", appErr.Error()))
		return
	}

	// Initialize signal handling for graceful shutdown
	initSignals(application)

	// Log the configuration
	slog.Debug("order_csv_exporter.main.configuration_loaded",
		slog.String("http_address", config.HTTP.Addr),
		slog.String("settings_file", config.Export.SettingsFile),
		slog.Int("workers", config.Export.Workers),
	)

	// Start the application
	slog.Info("order_csv_exporter.main.starting_application")
	startErr := application.Start(context.Background())
	if startErr != nil {
		slog.Error("order_csv_exporter.main.application_start_error", slog.String("error", startErr.Error()))
	} else {
		slog.Info("order_csv_exporter.main.application_started_successfully")
	}

}

func initSignals(application *app.App) {
	slog.Info("order_csv_exporter.main.initializing_stop_signals", slog.String("main", "initializing_stop_signals"))
	sigch := make(chan os.Signal, 1)
	signal.Notify(sigch)

	go func() {
		for {
			s := <-sigch
			handleSignals(s, application)
		}
	}()
}

func handleSignals(signal os.Signal, application *app.App) {
	if signal == syscall.SIGTERM || signal == syscall.SIGINT || signal == syscall.SIGKILL {
		err := application.Stop()
		if err != nil {
			return
		}
		slog.Info(
			"order_csv_exporter.main.received_kill_signal",
			slog.String(
				"signal",
				signal.String(),
			),
			slog.String(
				"status",
				"service gracefully stopped",
			),
		)
		os.Exit(0)
	}
}
