package onelog

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"strings"

	"github.com/onelog/onelog-go/internal/safefile"
)

// ParseReader classifies each line read from r and yields the resulting
// records in order. Trailing CR characters are removed (CRLF input) and empty
// lines are skipped.
//
// The sequence stops when r is exhausted, when ctx is cancelled (the context
// error is yielded), or when the consumer stops iterating. A read error is
// yielded as a *ParseError and ends the sequence.
//
// Example:
//
//	for rec, err := range onelog.ParseReader(ctx, os.Stdin) {
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(rec.Kind())
//	}
func ParseReader(ctx context.Context, r io.Reader, opts ...ParseOption) iter.Seq2[Record, error] {
	cfg := applyParseOptions(opts)
	return func(yield func(Record, error) bool) {
		parseReader(ctx, r, cfg, yield)
	}
}

// parseReader reports false if the consumer stopped iterating.
func parseReader(ctx context.Context, r io.Reader, cfg *parseConfig, yield func(Record, error) bool) bool {
	cl := cfg.classifier
	if cl == nil {
		cl = Default()
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, min(64*1024, cfg.maxLineBytes)), cfg.maxLineBytes)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return yield(nil, err)
		}

		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}

		rec := cl.Classify(line)
		if !cfg.filter.Allows(rec.Kind()) {
			continue
		}
		if !yield(rec, nil) {
			return false
		}
	}

	if err := scanner.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			err = fmt.Errorf("%w (max %d bytes)", ErrLineTooLong, cfg.maxLineBytes)
		}
		return yield(nil, &ParseError{Err: err})
	}
	return true
}

// ParseFile classifies each line of the file at path.
// Only regular files are accepted; symlinks, FIFOs and devices are rejected.
//
// Example:
//
//	f, _ := grammar.NewFormatFromFile("grammar.yaml")
//	for rec, err := range onelog.ParseFile(ctx, "app.log", onelog.WithParseClassifier(f)) {
//	    ...
//	}
func ParseFile(ctx context.Context, path string, opts ...ParseOption) iter.Seq2[Record, error] {
	cfg := applyParseOptions(opts)
	return func(yield func(Record, error) bool) {
		parseFile(ctx, path, cfg, yield)
	}
}

func parseFile(ctx context.Context, path string, cfg *parseConfig, yield func(Record, error) bool) (cont bool, failed bool) {
	f, _, err := safefile.OpenRegular(path)
	if err != nil {
		return yield(nil, fmt.Errorf("opening log file: %w", err)), true
	}
	defer f.Close()

	cont = parseReader(ctx, f, cfg, func(rec Record, err error) bool {
		if err != nil {
			failed = true
		}
		return yield(rec, err)
	})
	return cont, failed
}

// ParseFiles classifies the files at paths in order. An error opening or
// reading one file is yielded and parsing continues with the next file,
// unless WithParseStopOnError is set or ctx is cancelled.
func ParseFiles(ctx context.Context, paths []string, opts ...ParseOption) iter.Seq2[Record, error] {
	cfg := applyParseOptions(opts)
	return func(yield func(Record, error) bool) {
		for _, path := range paths {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}
			cont, failed := parseFile(ctx, path, cfg, yield)
			if !cont || (failed && cfg.stopOnError) {
				return
			}
		}
	}
}

// ParseFileAll is like ParseFile but collects all records into a slice.
// It stops at the first error.
func ParseFileAll(ctx context.Context, path string, opts ...ParseOption) ([]Record, error) {
	var records []Record
	for rec, err := range ParseFile(ctx, path, opts...) {
		if err != nil {
			return records, err
		}
		records = append(records, rec)
	}
	return records, nil
}
