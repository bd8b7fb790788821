package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/onelog/onelog-go/pkg/onelog"
)

var updateGolden = flag.Bool("update-golden", false, "update golden files")

var (
	sampleEvent = onelog.EventRecord{
		Header: onelog.Header{
			Timestamp: "12:30:01",
			Level:     "INFO",
			System:    "net",
			Tags:      []string{"conn", "tls"},
		},
		Message: "handshake complete",
	}
	sampleStatus = onelog.StatusRecord{
		Header:      onelog.Header{Level: "WARN", System: "disk"},
		ID:          "sda1",
		Assignments: map[string]string{"used": "91", "mount": "'/var'", "note": "a b"},
	}
	sampleOther = onelog.OtherRecord{Message: "plain text"}
)

func TestOutputJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := OutputJSON(sampleStatus, &buf); err != nil {
		t.Fatalf("OutputJSON() error = %v", err)
	}

	var decoded struct {
		Kind        onelog.Kind       `json:"kind"`
		ID          string            `json:"id"`
		Level       string            `json:"level"`
		Assignments map[string]string `json:"assignments"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("OutputJSON() produced invalid JSON: %v", err)
	}
	if decoded.Kind != onelog.KindStatus {
		t.Errorf("kind = %v, want %v", decoded.Kind, onelog.KindStatus)
	}
	if decoded.ID != "sda1" || decoded.Level != "WARN" {
		t.Errorf("decoded = %+v", decoded)
	}
	if decoded.Assignments["mount"] != "'/var'" {
		t.Errorf("assignments = %v", decoded.Assignments)
	}
	if !strings.HasSuffix(buf.String(), "\n") {
		t.Error("OutputJSON() must end with a newline")
	}
}

func TestOutputPretty(t *testing.T) {
	tests := []struct {
		name     string
		rec      onelog.Record
		contains string
	}{
		{"event", sampleEvent, "> handshake complete"},
		{"event_tags", sampleEvent, "#conn #tls"},
		{"status", sampleStatus, "= sda1: mount='/var'"},
		{"other", sampleOther, "? plain text"},
		{"empty_header", onelog.EventRecord{Message: "bare"}, "- > bare"},
		{"tag_with_space", onelog.EventRecord{Header: onelog.Header{Tags: []string{"a b"}}, Message: "x"}, `#"a b"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := OutputPretty(tt.rec, &buf); err != nil {
				t.Fatalf("OutputPretty() error = %v", err)
			}
			if !strings.Contains(buf.String(), tt.contains) {
				t.Errorf("OutputPretty() = %q, want to contain %q", buf.String(), tt.contains)
			}
		})
	}
}

func TestOutputRecord(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"jsonl", false},
		{"pretty", false},
		{"xml", true},
		{"", true},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			err := OutputRecord(tt.format, sampleEvent, &buf)
			if (err != nil) != tt.wantErr {
				t.Errorf("OutputRecord(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
			}
		})
	}
}

// TestOutputRecord_Golden tests output formats using golden files.
// Run with -update-golden to update the golden files.
func TestOutputRecord_Golden(t *testing.T) {
	tests := []struct {
		name   string
		format string
		rec    onelog.Record
	}{
		{"pretty_event", "pretty", sampleEvent},
		{"pretty_status", "pretty", sampleStatus},
		{"pretty_status_empty", "pretty", onelog.StatusRecord{
			Header:      onelog.Header{Level: "INFO", System: "db"},
			ID:          "pool",
			Assignments: map[string]string{},
		}},
		{"pretty_other", "pretty", sampleOther},
		{"jsonl_event", "jsonl", sampleEvent},
		{"jsonl_status", "jsonl", sampleStatus},
		{"jsonl_other", "jsonl", sampleOther},
	}

	// Support both flag and env var for updating golden files
	update := *updateGolden || os.Getenv("UPDATE_GOLDEN") != ""

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := OutputRecord(tt.format, tt.rec, &buf); err != nil {
				t.Fatalf("OutputRecord() error = %v", err)
			}

			golden := filepath.Join("testdata", "golden", tt.name+".golden")

			if update {
				if err := os.MkdirAll(filepath.Dir(golden), 0755); err != nil {
					t.Fatalf("failed to create golden dir: %v", err)
				}
				if err := os.WriteFile(golden, buf.Bytes(), 0644); err != nil {
					t.Fatalf("failed to write golden file: %v", err)
				}
				t.Logf("updated golden file: %s", golden)
				return
			}

			expected, err := os.ReadFile(golden)
			if err != nil {
				t.Fatalf("failed to read golden file %s: %v\nRun with -update-golden to create it", golden, err)
			}

			// Normalize line endings for cross-platform compatibility
			got := bytes.ReplaceAll(buf.Bytes(), []byte("\r\n"), []byte("\n"))
			want := bytes.ReplaceAll(expected, []byte("\r\n"), []byte("\n"))

			if !bytes.Equal(got, want) {
				t.Errorf("output mismatch for %s:\ngot:\n%s\nwant:\n%s", golden, got, want)
			}
		})
	}
}

func TestQuoteIfNeeded(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple", "hello", "hello"},
		{"empty", "", `""`},
		{"with_space", "hello world", `"hello world"`},
		{"with_equals", "a=b", `"a=b"`},
		{"with_quote", `say "hi"`, `"say \"hi\""`},
		{"with_backslash", `path\to`, `"path\\to"`},
		{"with_newline", "line1\nline2", `"line1\nline2"`},
		{"with_tab", "col1\tcol2", `"col1\tcol2"`},
		{"with_null", "a\x00b", `"a\x00b"`},
		{"with_del", "a\x7fb", `"a\x7fb"`},
		{"single_quotes", "'/var'", "'/var'"},
		{"unicode", "テスト", "テスト"},
		{"unicode_with_space", "日本語 テスト", `"日本語 テスト"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := quoteIfNeeded(tt.input)
			if got != tt.want {
				t.Errorf("quoteIfNeeded(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatData(t *testing.T) {
	tests := []struct {
		name  string
		input map[string]string
		want  string
	}{
		{"nil", nil, ""},
		{"empty", map[string]string{}, ""},
		{"single", map[string]string{"key": "value"}, "key=value"},
		{"multiple_sorted", map[string]string{"b": "2", "a": "1", "c": "3"}, "a=1 b=2 c=3"},
		{"with_spaces", map[string]string{"msg": "hello world"}, `msg="hello world"`},
		{"quoted_literal", map[string]string{"label": `"data"`}, `label="\"data\""`},
		{"key_with_equals", map[string]string{"key=name": "value"}, `"key=name"=value`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatData(tt.input)
			if got != tt.want {
				t.Errorf("formatData(%v) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
