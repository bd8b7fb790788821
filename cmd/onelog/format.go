package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/onelog/onelog-go/pkg/onelog"
)

// validFormats lists all valid output formats.
var validFormats = map[string]bool{
	"jsonl":  true,
	"pretty": true,
}

// OutputRecord writes a record in the specified format to the writer.
func OutputRecord(format string, rec onelog.Record, out io.Writer) error {
	switch format {
	case "jsonl":
		return OutputJSON(rec, out)
	case "pretty":
		return OutputPretty(rec, out)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

type eventJSON struct {
	Kind onelog.Kind `json:"kind"`
	onelog.EventRecord
}

type statusJSON struct {
	Kind onelog.Kind `json:"kind"`
	onelog.StatusRecord
}

type otherJSON struct {
	Kind onelog.Kind `json:"kind"`
	onelog.OtherRecord
}

// OutputJSON writes a record as one JSON object per line, with a "kind" field
// naming the variant.
func OutputJSON(rec onelog.Record, out io.Writer) error {
	v := onelog.Fold(rec,
		func(e onelog.EventRecord) any { return eventJSON{onelog.KindEvent, e} },
		func(s onelog.StatusRecord) any { return statusJSON{onelog.KindStatus, s} },
		func(o onelog.OtherRecord) any { return otherJSON{onelog.KindOther, o} },
	)
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}

// OutputPretty writes a record in human-readable format.
func OutputPretty(rec onelog.Record, out io.Writer) error {
	var err error
	switch r := rec.(type) {
	case onelog.EventRecord:
		_, err = fmt.Fprintf(out, "%s > %s\n", formatHeader(r.Header), r.Message)
	case onelog.StatusRecord:
		if len(r.Assignments) > 0 {
			_, err = fmt.Fprintf(out, "%s = %s: %s\n", formatHeader(r.Header), r.ID, formatData(r.Assignments))
		} else {
			_, err = fmt.Fprintf(out, "%s = %s\n", formatHeader(r.Header), r.ID)
		}
	case onelog.OtherRecord:
		_, err = fmt.Fprintf(out, "? %s\n", r.Message)
	}
	return err
}

// formatHeader joins the non-empty header fields, tags prefixed with '#'.
func formatHeader(h onelog.Header) string {
	parts := make([]string, 0, 3+len(h.Tags))
	for _, p := range []string{h.Timestamp, h.Level, h.System} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	for _, tag := range h.Tags {
		parts = append(parts, "#"+quoteIfNeeded(tag))
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, " ")
}

// formatData formats a map as sorted key=value pairs.
// Values are quoted if they contain spaces, equals signs, quotes, or control characters.
func formatData(data map[string]string) string {
	if len(data) == 0 {
		return ""
	}

	// Sort keys for deterministic output
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(data))
	for _, k := range keys {
		parts = append(parts, quoteIfNeeded(k)+"="+quoteIfNeeded(data[k]))
	}
	return strings.Join(parts, " ")
}

// quoteIfNeeded quotes a value if it contains special characters or control characters.
// Returns the value unchanged if no quoting is needed.
func quoteIfNeeded(v string) string {
	if v == "" {
		return `""`
	}

	needsQuote := strings.ContainsFunc(v, func(c rune) bool {
		return c == ' ' || c == '=' || c == '"' || c == '\\' || c < 0x20 || c == 0x7F
	})
	if !needsQuote {
		return v
	}

	var sb strings.Builder
	sb.WriteByte('"')
	for _, c := range v {
		switch {
		case c == '\\':
			sb.WriteString(`\\`)
		case c == '"':
			sb.WriteString(`\"`)
		case c == '\n':
			sb.WriteString(`\n`)
		case c == '\r':
			sb.WriteString(`\r`)
		case c == '\t':
			sb.WriteString(`\t`)
		case c < 0x20 || c == 0x7F:
			// Other control characters (including DEL): escape as \xNN
			fmt.Fprintf(&sb, `\x%02x`, c)
		default:
			sb.WriteRune(c)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}
