package onelog

import (
	"fmt"
	"strings"
)

// Kind identifies which variant a Record holds.
type Kind int

const (
	// KindOther marks a line that produced no structured match.
	KindOther Kind = iota
	// KindEvent marks a header followed by a free-text message.
	KindEvent
	// KindStatus marks a header followed by an identifier and assignments.
	KindStatus
)

var kindNames = [...]string{
	KindOther:  "other",
	KindEvent:  "event",
	KindStatus: "status",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseKind converts "event", "status" or "other" (case-insensitive) to a Kind.
func ParseKind(s string) (Kind, error) {
	for i, name := range kindNames {
		if strings.EqualFold(s, name) {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown record kind %q", s)
}

// Record is the result of classifying one line. Exactly one of EventRecord,
// StatusRecord or OtherRecord is held; no other type implements Record.
//
// Use a type switch or Fold to reach the payload:
//
//	switch r := rec.(type) {
//	case onelog.EventRecord:
//	    fmt.Println(r.Level, r.Message)
//	case onelog.StatusRecord:
//	    fmt.Println(r.ID, r.Assignments)
//	case onelog.OtherRecord:
//	    fmt.Println(r.Message)
//	}
type Record interface {
	// Kind reports the active variant.
	Kind() Kind
	record()
}

// Header holds the fields extracted by the filter stage.
type Header struct {
	Timestamp string   `json:"timestamp,omitempty"`
	Level     string   `json:"level,omitempty"`
	System    string   `json:"system,omitempty"`
	Tags      []string `json:"tags,omitempty"` // in order of appearance, duplicates kept
}

// EventRecord is a header followed by a free-text message.
type EventRecord struct {
	Header
	Message string `json:"message"`
}

// StatusRecord is a header followed by an identifier and key/value assignments.
// When a key is assigned more than once the later value wins.
type StatusRecord struct {
	Header
	ID          string            `json:"id"`
	Assignments map[string]string `json:"assignments"`
}

// OtherRecord holds a line that could not be classified, unchanged.
type OtherRecord struct {
	Message string `json:"message"`
}

func (EventRecord) Kind() Kind  { return KindEvent }
func (StatusRecord) Kind() Kind { return KindStatus }
func (OtherRecord) Kind() Kind  { return KindOther }

func (EventRecord) record()  {}
func (StatusRecord) record() {}
func (OtherRecord) record()  {}

// Fold calls the function matching the variant held by r and returns its result.
// All three functions are required, so every variant is handled at compile time.
// A nil Record is folded as an empty OtherRecord.
func Fold[T any](r Record, onEvent func(EventRecord) T, onStatus func(StatusRecord) T, onOther func(OtherRecord) T) T {
	switch v := r.(type) {
	case EventRecord:
		return onEvent(v)
	case StatusRecord:
		return onStatus(v)
	case OtherRecord:
		return onOther(v)
	default:
		return onOther(OtherRecord{})
	}
}

// HeaderOf returns the header of an event or status record.
// The second result is false for OtherRecord.
func HeaderOf(r Record) (Header, bool) {
	switch v := r.(type) {
	case EventRecord:
		return v.Header, true
	case StatusRecord:
		return v.Header, true
	}
	return Header{}, false
}
