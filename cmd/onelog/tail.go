package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/onelog/onelog-go/internal/metrics"
	"github.com/onelog/onelog-go/pkg/onelog"
)

var (
	// tail flags
	logDir       string
	fileGlob     string
	tailFormat   string
	tailKinds    []string
	fromStart    bool
	filePolling  bool
	waitForLogs  bool
	pollInterval time.Duration
	metricsAddr  string
	maxSystems   int
)

var tailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Follow the newest log file in a directory",
	Long: `Follow the most recently modified log file in a directory and output
classified records as lines are written. When a newer file matching the glob
appears, it is followed from its start.

Examples:
  # Follow *.log files in a directory
  onelog tail --log-dir /var/log/myapp

  # Use the ONELOG_LOGDIR environment variable
  ONELOG_LOGDIR=/var/log/myapp onelog tail

  # Follow rotated files named app-<date>.txt, replaying the current one
  onelog tail -d /var/log/myapp --glob 'app-*.txt' --from-start

  # Only status records, and expose counters for Prometheus
  onelog tail -d /var/log/myapp --kinds status --metrics-addr :9464`,
	RunE: runTail,
}

func init() {
	tailCmd.Flags().StringVarP(&logDir, "log-dir", "d", "",
		"Log directory (default: $ONELOG_LOGDIR)")
	tailCmd.Flags().StringVar(&fileGlob, "glob", onelog.DefaultFileGlob,
		"File name pattern of the log files")
	tailCmd.Flags().StringVarP(&tailFormat, "format", "f", "jsonl",
		"Output format: jsonl, pretty")
	tailCmd.Flags().StringSliceVarP(&tailKinds, "kinds", "k", nil,
		"Record kinds to show (comma-separated: event,status,other)")
	tailCmd.Flags().BoolVar(&fromStart, "from-start", false,
		"Read the current log file from the beginning")
	tailCmd.Flags().BoolVar(&filePolling, "poll", false,
		"Poll for file changes instead of using filesystem notifications")
	tailCmd.Flags().BoolVar(&waitForLogs, "wait", false,
		"Wait for a log file to appear instead of failing")
	tailCmd.Flags().DurationVar(&pollInterval, "poll-interval", 2*time.Second,
		"How often to look for a newer log file")
	tailCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "",
		"Serve Prometheus metrics on this address (e.g. :9464)")
	tailCmd.Flags().IntVar(&maxSystems, "metrics-max-systems", metrics.DefaultMaxSystems,
		"Distinct level/system pairs counted before the rest are grouped as \"other\"")
	rootCmd.AddCommand(tailCmd)
}

func runTail(cmd *cobra.Command, args []string) error {
	if !validFormats[tailFormat] {
		return fmt.Errorf("invalid --format %q (valid: jsonl, pretty)", tailFormat)
	}
	kinds, err := parseKinds(tailKinds)
	if err != nil {
		return err
	}
	cl, err := buildClassifier(grammarFiles, logger)
	if err != nil {
		return err
	}

	// Setup context with signal handling
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var m *metrics.Metrics
	if metricsAddr != "" {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		m = metrics.New(reg, metrics.WithMaxSystems(maxSystems))
		cl = m.Instrument(cl)

		srv := metrics.NewServer(metricsAddr, reg)
		go func() {
			logger.Info("serving metrics", "addr", metricsAddr)
			if err := srv.Serve(); err != nil {
				logger.Error("metrics server failed", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	watcher, err := onelog.NewWatcher(
		onelog.WithLogDir(logDir),
		onelog.WithFileGlob(fileGlob),
		onelog.WithFromStart(fromStart),
		onelog.WithFilePolling(filePolling),
		onelog.WithWaitForLogs(waitForLogs),
		onelog.WithPollInterval(pollInterval),
		onelog.WithWatchLogger(logger),
		onelog.WithClassifier(cl),
		onelog.WithIncludeKinds(kinds...),
	)
	if err != nil {
		return err
	}
	defer watcher.Close()

	records, errs, err := watcher.Watch(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for {
		select {
		case rec, ok := <-records:
			if !ok {
				return nil // Channel closed
			}
			if err := OutputRecord(tailFormat, rec, out); err != nil {
				return fmt.Errorf("output error: %w", err)
			}

		case err, ok := <-errs:
			if !ok {
				return nil // Channel closed
			}
			if m != nil {
				m.ObserveError(err)
			}
			logger.Warn("watch error", "error", err)

		case <-ctx.Done():
			return nil
		}
	}
}
