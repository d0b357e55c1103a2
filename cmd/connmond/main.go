package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/dmdmdm-nz/connmon/internal/api"
	"github.com/dmdmdm-nz/connmon/internal/connectivity"
	"github.com/dmdmdm-nz/connmon/internal/netmon"
	"github.com/dmdmdm-nz/connmon/internal/observability"
	"github.com/dmdmdm-nz/connmon/internal/runtime"
	"github.com/dmdmdm-nz/connmon/pkg/cli"
	"github.com/dmdmdm-nz/connmon/pkg/version"
)

func main() {
	// Parse command line flags
	cfg := cli.ParseFlags()

	// Configure logging
	setLogLevel(cfg.LogLevel)
	log.SetFormatter(&log.TextFormatter{
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		FullTimestamp:   true,
	})

	log.Info(version.String())
	log.Infof("Config: %s", cfg)

	source, err := netmon.NewSource(cfg.Source, cfg.PollInterval)
	if err != nil {
		log.WithError(err).Fatal("Failed to create connectivity source")
	}

	collector, err := observability.NewTrackerCollector(nil)
	if err != nil {
		log.WithError(err).Fatal("Failed to register metrics")
	}

	executor := connectivity.NewSerialExecutor(16)
	tracker := connectivity.New(source,
		connectivity.WithExecutor(executor),
		connectivity.WithDebounce(cfg.Debounce),
		connectivity.WithMessage(cfg.Message),
		connectivity.WithRecorder(collector),
		connectivity.WithNotifier(connectivity.LogNotifier{Logger: log.WithField("component", "notifier")}),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	apiSvc := api.NewService(cfg.Host, cfg.Port)
	apiSvc.AttachTracker(tracker)
	apiSvc.AttachMetrics(collector.Handler())

	// Start in dependency order: tracker → api
	super := runtime.NewSupervisor()
	super.Add("tracker", tracker.Run, tracker.Close)
	super.Add("executor", func(ctx context.Context) error {
		<-ctx.Done()
		return nil
	}, executor.Close)
	super.Add("listener", func(ctx context.Context) error {
		return logTransitions(ctx, tracker)
	}, nil)
	super.Add("api", apiSvc.Start, apiSvc.Close)

	if err := super.Start(ctx); err != nil {
		log.WithError(err).Error("supervisor start failed")
		os.Exit(1)
	}
	if err := super.Wait(ctx); err != nil {
		log.WithError(err).Error("supervisor wait failed")
		os.Exit(1)
	}
}

// logTransitions registers a listener that logs debounced connectivity
// changes once the tracker has taken its first reading.
func logTransitions(ctx context.Context, tracker *connectivity.Tracker) error {
	events, unsub := tracker.Subscribe()
	defer unsub()

	var listener *connectivity.Listener
	for listener == nil {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-events:
			if !ok {
				return nil
			}
		}

		l, err := tracker.Listen(
			func() { log.Info("Network connection restored") },
			func() {
				if _, err := tracker.WarnDisconnected(); err != nil {
					log.WithError(err).Debug("Failed to warn about lost connection")
				}
			},
		)
		if err == nil {
			listener = l
		}
	}

	<-ctx.Done()
	_ = tracker.RemoveListener(listener)
	return nil
}

func setLogLevel(level string) {
	switch level {
	case "trace":
		log.SetLevel(log.TraceLevel)
	case "debug":
		log.SetLevel(log.DebugLevel)
	case "info":
		log.SetLevel(log.InfoLevel)
	case "warn":
		log.SetLevel(log.WarnLevel)
	case "error":
		log.SetLevel(log.ErrorLevel)
	default:
		log.SetLevel(log.InfoLevel)
	}
}
