package main

import (
	"context"
	"fmt"
	"iter"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/onelog/onelog-go/pkg/onelog"
)

var (
	// classify flags
	classifyFormat       string
	classifyKinds        []string
	classifyStopOnError  bool
	classifyMaxLineBytes int
)

var classifyCmd = &cobra.Command{
	Use:   "classify [file...]",
	Short: "Classify the lines of log files or stdin",
	Long: `Classify each line of the given files, or of stdin when no file is
given (or the file is "-"), and write one record per line.

Records are output as JSON Lines by default (one JSON object per line),
which makes it easy to process with tools like jq.

Examples:
  # Classify a file with the built-in grammar
  onelog classify app.log

  # Use a custom grammar and keep only status records
  onelog classify -g service.yaml --kinds status app.log

  # Human-readable output from a pipe
  tail -n 100 app.log | onelog classify --format pretty

  # Count records per system with jq
  onelog classify app.log | jq -r 'select(.kind != "other") | .system' | sort | uniq -c`,
	RunE: runClassify,
}

func init() {
	classifyCmd.Flags().StringVarP(&classifyFormat, "format", "f", "jsonl",
		"Output format: jsonl, pretty")
	classifyCmd.Flags().StringSliceVarP(&classifyKinds, "kinds", "k", nil,
		"Record kinds to show (comma-separated: event,status,other)")
	classifyCmd.Flags().BoolVar(&classifyStopOnError, "stop-on-error", false,
		"Stop at the first file that cannot be read")
	classifyCmd.Flags().IntVar(&classifyMaxLineBytes, "max-line-bytes", onelog.DefaultMaxLineBytes,
		"Maximum size of a single line in bytes")
	rootCmd.AddCommand(classifyCmd)
}

func runClassify(cmd *cobra.Command, args []string) error {
	if !validFormats[classifyFormat] {
		return fmt.Errorf("invalid --format %q (valid: jsonl, pretty)", classifyFormat)
	}
	kinds, err := parseKinds(classifyKinds)
	if err != nil {
		return err
	}
	cl, err := buildClassifier(grammarFiles, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := []onelog.ParseOption{
		onelog.WithParseClassifier(cl),
		onelog.WithParseIncludeKinds(kinds...),
		onelog.WithParseMaxLineBytes(classifyMaxLineBytes),
		onelog.WithParseStopOnError(classifyStopOnError),
	}

	var seq iter.Seq2[onelog.Record, error]
	if len(args) == 0 || (len(args) == 1 && args[0] == "-") {
		seq = onelog.ParseReader(ctx, cmd.InOrStdin(), opts...)
	} else {
		seq = onelog.ParseFiles(ctx, args, opts...)
	}

	return writeRecords(ctx, seq, cmd)
}

// writeRecords writes every record of seq to stdout. Read errors are logged
// and counted; the command fails if any occurred.
func writeRecords(ctx context.Context, seq iter.Seq2[onelog.Record, error], cmd *cobra.Command) error {
	out := cmd.OutOrStdout()
	failures := 0
	for rec, err := range seq {
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			failures++
			logger.Warn("read failed", "error", err)
			continue
		}
		if err := OutputRecord(classifyFormat, rec, out); err != nil {
			return fmt.Errorf("output error: %w", err)
		}
	}
	if failures > 0 {
		return fmt.Errorf("%d input(s) could not be read", failures)
	}
	return nil
}
