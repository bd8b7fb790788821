package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/onelog/onelog-go/pkg/onelog"
	"github.com/onelog/onelog-go/pkg/onelog/grammar"
)

// buildClassifier builds a Classifier from grammar file paths.
// With no files the built-in format is returned. With several, lines are
// tried against each grammar in order.
func buildClassifier(files []string, logger *slog.Logger) (onelog.Classifier, error) {
	formats, err := loadFormats(files, logger)
	if err != nil {
		return nil, err
	}

	switch len(formats) {
	case 0:
		return onelog.Default(), nil
	case 1:
		return formats[0], nil
	}

	chain := &onelog.Chain{Classifiers: make([]onelog.Classifier, 0, len(formats))}
	for _, f := range formats {
		chain.Classifiers = append(chain.Classifiers, f)
	}
	return chain, nil
}

func loadFormats(files []string, logger *slog.Logger) ([]*onelog.Format, error) {
	var formats []*onelog.Format
	for i, path := range files {
		g, err := grammar.Load(path)
		if err != nil {
			// Error from grammar package is already sanitized (no path)
			return nil, fmt.Errorf("grammar file %d: %w", i+1, err)
		}
		f, err := grammar.Compile(g, onelog.WithLogger(logger.With("grammar", grammarName(g, i))))
		if err != nil {
			return nil, fmt.Errorf("grammar file %d: %w", i+1, err)
		}
		formats = append(formats, f)
	}
	return formats, nil
}

func grammarName(g *grammar.Grammar, i int) string {
	if g.Name != "" {
		return g.Name
	}
	return fmt.Sprintf("#%d", i+1)
}

// parseKinds converts flag values to Kinds. Empty input means no filter.
func parseKinds(values []string) ([]onelog.Kind, error) {
	var kinds []onelog.Kind
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		k, err := onelog.ParseKind(v)
		if err != nil {
			return nil, fmt.Errorf("invalid --kinds value %q (valid: event, status, other)", v)
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}
