// Command onelog classifies log lines against a pattern grammar.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	// global flags
	grammarFiles []string
	verbose      bool
	logLevel     string
	logJSON      bool

	logger = slog.New(slog.DiscardHandler)
)

var rootCmd = &cobra.Command{
	Use:   "onelog",
	Short: "Classify log lines against a pattern grammar",
	Long: `onelog classifies free-form log lines into events, status reports
and unclassified lines, using a grammar of three patterns.

Without --grammar the built-in bracketed grammar is used:

  [12:30:01] [INFO] [net] [conn] handshake complete
  [WARN] [disk] sda1 { used = 91, mount = '/var' }`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := parseLevel(logLevel)
		if err != nil {
			return err
		}
		if verbose {
			level = slog.LevelDebug
		}
		logger = newLogger(cmd.ErrOrStderr(), level, logJSON)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringSliceVarP(&grammarFiles, "grammar", "g", nil,
		"Grammar document (YAML or XML); repeat to try several grammars in order")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn",
		"Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false,
		"Write diagnostics as JSON instead of text")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
