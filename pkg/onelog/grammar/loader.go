package grammar

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/onelog/onelog-go/internal/safefile"
	"github.com/onelog/onelog-go/pkg/onelog"
)

// sanitizePathError removes the path from os.PathError to prevent information leakage.
// This ensures error messages don't expose file system paths to users.
func sanitizePathError(err error) error {
	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		return fmt.Errorf("%s: %w", pathErr.Op, pathErr.Err)
	}
	return err
}

const (
	// MaxGrammarFileSize is the maximum allowed size for a grammar document (1MB).
	MaxGrammarFileSize = 1 * 1024 * 1024

	// MaxPatternLength is the maximum allowed length of a single pattern text,
	// before expansion.
	MaxPatternLength = 4096

	// SupportedVersion is the currently supported grammar document version.
	SupportedVersion = 1
)

// Load reads and parses a grammar document from the given path.
// Documents whose first non-blank character is '<' are read as XML,
// everything else as YAML.
//
// Only regular files are accepted, so a FIFO or device cannot block the
// caller. Errors do not contain the path.
//
// Example:
//
//	g, err := grammar.Load("grammar.yaml")
//	if err != nil {
//	    log.Fatalf("failed to load grammar: %v", err)
//	}
func Load(path string) (*Grammar, error) {
	data, err := safefile.ReadLimited(path, MaxGrammarFileSize)
	if err != nil {
		return nil, fmt.Errorf("failed to read grammar file: %w", sanitizePathError(err))
	}
	return LoadBytes(data)
}

// LoadBytes parses a grammar document from a byte slice and validates it.
func LoadBytes(data []byte) (*Grammar, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("grammar document is empty")
	}
	if len(data) > MaxGrammarFileSize {
		return nil, fmt.Errorf("grammar document too large: %d bytes (max %d)", len(data), MaxGrammarFileSize)
	}

	var g Grammar
	if isXML(data) {
		if err := xml.Unmarshal(data, &g); err != nil {
			return nil, fmt.Errorf("failed to parse XML: %w", err)
		}
		if g.Version == 0 {
			g.Version = SupportedVersion
		}
	} else {
		if err := yaml.Unmarshal(data, &g); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	}

	if err := g.Validate(); err != nil {
		return nil, err
	}
	return &g, nil
}

var utf8BOM = []byte("\xef\xbb\xbf")

// isXML reports whether data starts with '<' after optional whitespace.
func isXML(data []byte) bool {
	data = bytes.TrimLeft(data, " \t\r\n")
	return len(data) > 0 && data[0] == '<'
}

// Validate performs schema-level validation on the grammar:
//   - supported version number
//   - filter, event and status present
//   - pattern length limits
//
// Validate does NOT compile the patterns; Compile does.
func (g *Grammar) Validate() error {
	if g.Version != SupportedVersion {
		return &ValidationError{
			Field:   "version",
			Message: fmt.Sprintf("unsupported version %d (only version %d is supported)", g.Version, SupportedVersion),
		}
	}

	for _, f := range []struct {
		name  string
		value string
	}{
		{"filter", g.Filter},
		{"event", g.Event},
		{"status", g.Status},
	} {
		if f.value == "" {
			return &ValidationError{Field: f.name, Message: f.name + " is required"}
		}
		if len(f.value) > MaxPatternLength {
			return &ValidationError{
				Field:   f.name,
				Message: fmt.Sprintf("pattern too long: %d bytes (max %d)", len(f.value), MaxPatternLength),
			}
		}
	}
	return nil
}

// Compile builds a onelog.Format from the grammar's three patterns.
// Returns a *onelog.ConfigError naming the failing pattern.
func Compile(g *Grammar, opts ...onelog.Option) (*onelog.Format, error) {
	if g == nil {
		return nil, errors.New("grammar is nil")
	}
	return onelog.New(g.Filter, g.Event, g.Status, opts...)
}

// NewFormatFromFile is a convenience function that loads a grammar document
// and compiles it in one step.
//
// Example:
//
//	f, err := grammar.NewFormatFromFile("grammar.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	rec := f.Classify(line)
func NewFormatFromFile(path string, opts ...onelog.Option) (*onelog.Format, error) {
	g, err := Load(path)
	if err != nil {
		return nil, err
	}
	return Compile(g, opts...)
}
