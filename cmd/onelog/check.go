package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/onelog/onelog-go/pkg/onelog"
	"github.com/onelog/onelog-go/pkg/onelog/grammar"
)

var checkSamples []string

var checkCmd = &cobra.Command{
	Use:   "check [grammar...]",
	Short: "Validate grammar documents and show their compiled patterns",
	Long: `Load and compile each grammar document and print the patterns as they
are matched, after quoted-string shorthand expansion and anchoring.
Without arguments the built-in grammar is shown.

Examples:
  onelog check service.yaml
  onelog check service.yaml --sample '[INFO] [db] pool { size = 4 }'`,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().StringArrayVarP(&checkSamples, "sample", "s", nil,
		"Classify this line with each grammar (repeatable)")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if len(args) == 0 {
		def := grammar.Default()
		return checkGrammar(cmd, "built-in", &def)
	}

	for i, path := range args {
		g, err := grammar.Load(path)
		if err != nil {
			return fmt.Errorf("grammar file %d: %w", i+1, err)
		}
		if i > 0 {
			fmt.Fprintln(out)
		}
		if err := checkGrammar(cmd, path, g); err != nil {
			return fmt.Errorf("grammar file %d: %w", i+1, err)
		}
	}
	return nil
}

func checkGrammar(cmd *cobra.Command, label string, g *grammar.Grammar) error {
	f, err := grammar.Compile(g, onelog.WithLogger(logger))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	name := g.Name
	if name == "" {
		name = "-"
	}
	p := f.Patterns()
	fmt.Fprintf(out, "%s (name: %s, version: %d): ok\n", label, name, g.Version)
	fmt.Fprintf(out, "  filter: %s\n", p.Filter)
	fmt.Fprintf(out, "  event:  %s\n", p.Event)
	fmt.Fprintf(out, "  status: %s\n", p.Status)

	for _, line := range checkSamples {
		rec, matchErr := f.Match(line)
		fmt.Fprintf(out, "  sample: %s\n    ", line)
		if err := OutputPretty(rec, out); err != nil {
			return err
		}
		if matchErr != nil {
			fmt.Fprintf(out, "    warning: %v\n", matchErr)
		}
	}
	return nil
}
