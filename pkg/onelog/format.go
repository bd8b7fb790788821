package onelog

import (
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/dlclark/regexp2"
	"golang.org/x/time/rate"
)

// Capture group names understood by the three stages.
const (
	GroupTimestamp = "timestamp"
	GroupLevel     = "level"
	GroupSystem    = "system"
	GroupTags      = "tags"
	GroupMessage   = "message"
	GroupID        = "id"
	GroupKeys      = "keys"
	GroupValues    = "values"
)

// warnRateLimit bounds how many match-time warnings per second a Format logs.
const warnRateLimit = rate.Limit(1)

// warnBurst allows a few warnings through before rate limiting starts.
const warnBurst = 5

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// Option configures a Format.
type Option func(*formatConfig)

type formatConfig struct {
	logger       *slog.Logger
	matchTimeout time.Duration
}

// WithLogger sets the logger used to report match-time configuration errors
// from Classify. If logger is nil, logging is disabled (default).
func WithLogger(logger *slog.Logger) Option {
	return func(c *formatConfig) {
		c.logger = logger
	}
}

// WithMatchTimeout bounds the time a single stage may spend matching.
// A stage that times out is treated as not matching. Zero (default) means
// no timeout.
func WithMatchTimeout(d time.Duration) Option {
	return func(c *formatConfig) {
		c.matchTimeout = d
	}
}

// Format classifies log lines against a grammar of three patterns: a filter
// pattern matching the header at the start of a line, and status and event
// patterns matching the body at the end of it.
//
// The compiled patterns of a Format never change after New returns and a
// Format is safe for concurrent use by multiple goroutines. The only shared
// mutable state is the rate limiter that throttles Classify's warnings; it
// never affects the returned records.
type Format struct {
	filter *regexp2.Regexp
	event  *regexp2.Regexp
	status *regexp2.Regexp

	patterns Patterns
	log      *slog.Logger
	limiter  *rate.Limiter
}

// Patterns holds the compiled pattern texts of a Format, after expansion and
// anchoring.
type Patterns struct {
	Filter string
	Event  string
	Status string
}

// New builds a Format from filter, event and status pattern texts. Each text
// is passed through Expand before compilation.
//
// The filter pattern is anchored at the start of a line (leading whitespace
// allowed) and may name the groups timestamp, level, system and a repeatable
// tags group. The event pattern is anchored at the end of a line and captured
// as the message group, unless it names a message group itself. The status
// pattern is anchored at the end of a line and may name id and the repeatable
// groups keys and values, paired by position.
//
// New returns a *ConfigError if a pattern is empty or fails to compile.
//
// Example:
//
//	f, err := onelog.New(
//	    `\[(?<level>\w+)\]\s*\[(?<system>\w+)\](?:\s*\[(?<tags>\w+)\])*`,
//	    `.*`,
//	    `(?<id>\w+)\s*\{(?:\s*(?<keys>\w+)\s*=\s*(?<values>\w+))*\s*\}`,
//	)
func New(filter, event, status string, opts ...Option) (*Format, error) {
	cfg := &formatConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}

	for _, p := range []struct {
		role Role
		text string
	}{{RoleFilter, filter}, {RoleEvent, event}, {RoleStatus, status}} {
		if p.text == "" {
			return nil, &ConfigError{Role: p.role, Err: ErrMissingPattern}
		}
	}

	filter, event, status = Expand(filter), Expand(event), Expand(status)

	f := &Format{
		log:     cfg.logger,
		limiter: rate.NewLimiter(warnRateLimit, warnBurst),
	}
	if f.log == nil {
		f.log = discardLogger
	}

	var err error
	f.patterns.Filter = `^\s*(?:` + filter + `)`
	if f.filter, err = compile(RoleFilter, f.patterns.Filter, cfg.matchTimeout); err != nil {
		return nil, err
	}

	// An event pattern that names its own message group keeps it; otherwise
	// the whole pattern becomes the message.
	f.patterns.Event = `\s*(?<message>` + event + `)\s*$`
	if bare, err := compile(RoleEvent, event, 0); err != nil {
		return nil, err
	} else if bare.GroupNumberFromName(GroupMessage) >= 0 {
		f.patterns.Event = `\s*(?:` + event + `)\s*$`
	}
	if f.event, err = compile(RoleEvent, f.patterns.Event, cfg.matchTimeout); err != nil {
		return nil, err
	}

	f.patterns.Status = `\s*(?:` + status + `)\s*$`
	if f.status, err = compile(RoleStatus, f.patterns.Status, cfg.matchTimeout); err != nil {
		return nil, err
	}

	return f, nil
}

// MustNew is like New but panics if the patterns cannot be compiled.
// It simplifies initialization of package-level formats.
func MustNew(filter, event, status string, opts ...Option) *Format {
	f, err := New(filter, event, status, opts...)
	if err != nil {
		panic(err)
	}
	return f
}

func compile(role Role, pattern string, timeout time.Duration) (*regexp2.Regexp, error) {
	re, err := regexp2.Compile(pattern, regexp2.None)
	if err != nil {
		return nil, &ConfigError{Role: role, Pattern: pattern, Err: err}
	}
	if timeout > 0 {
		re.MatchTimeout = timeout
	}
	return re, nil
}

// Patterns returns the pattern texts the Format was compiled from.
func (f *Format) Patterns() Patterns {
	return f.patterns
}

// Classify classifies a single line. It never fails: a line that does not
// match yields an OtherRecord holding the line unchanged.
//
// Errors detected while matching (see Match) are logged and the affected
// stage is treated as not matching.
func (f *Format) Classify(message string) Record {
	rec, err := f.Match(message)
	if err != nil && f.limiter.Allow() {
		f.log.Warn("classification degraded", "error", err, "kind", rec.Kind())
	}
	return rec
}

// Match classifies message like Classify and also returns any error found
// while matching: a *ConfigError wrapping ErrUnpairedAssignments when a status
// match pairs keys and values of different counts, or a *MatchError when a
// stage times out. The returned Record is always valid and equals what
// Classify returns.
//
// Matching runs in three stages:
//  1. The filter pattern is matched at the start of the line. On failure the
//     result is OtherRecord with the whole line.
//  2. The status pattern is searched from the end of the filter match and must
//     reach the end of the line. On success the result is a StatusRecord.
//  3. Otherwise the event pattern is searched the same way. On success the
//     result is an EventRecord; on failure an OtherRecord with the whole line.
func (f *Format) Match(message string) (Record, error) {
	ln := newLine(message)
	runes := ln.runes
	other := OtherRecord{Message: message}

	fm, err := f.filter.FindRunesMatch(runes)
	if err != nil {
		return other, &MatchError{Role: RoleFilter, Err: err}
	}
	if fm == nil {
		return other, nil
	}

	header := Header{
		Timestamp: ln.group(fm, GroupTimestamp),
		Level:     ln.group(fm, GroupLevel),
		System:    ln.group(fm, GroupSystem),
		Tags:      ln.captures(fm, GroupTags),
	}
	end := fm.Index + fm.Length

	var errs []error

	sm, err := f.status.FindRunesMatchStartingAt(runes, end)
	if err != nil {
		errs = append(errs, &MatchError{Role: RoleStatus, Err: err})
	} else if sm != nil {
		assignments, err := ln.pairAssignments(sm)
		if err == nil {
			return StatusRecord{
				Header:      header,
				ID:          ln.group(sm, GroupID),
				Assignments: assignments,
			}, nil
		}
		errs = append(errs, &ConfigError{Role: RoleStatus, Pattern: f.patterns.Status, Err: err})
	}

	em, err := f.event.FindRunesMatchStartingAt(runes, end)
	if err != nil {
		errs = append(errs, &MatchError{Role: RoleEvent, Err: err})
	} else if em != nil {
		return EventRecord{
			Header:  header,
			Message: ln.group(em, GroupMessage),
		}, errors.Join(errs...)
	}

	return other, errors.Join(errs...)
}

// line is a message prepared for matching. regexp2 reports positions in
// runes; offsets maps them back to bytes so captures are sliced from the
// original text and invalid UTF-8 survives unchanged.
type line struct {
	text    string
	runes   []rune
	offsets []int // byte offset of each rune, plus len(text); nil when all ASCII
}

func newLine(text string) *line {
	ln := &line{text: text, runes: []rune(text)}
	if len(ln.runes) == len(text) {
		return ln
	}
	// Each invalid byte decodes to one U+FFFD rune, as in the []rune conversion.
	ln.offsets = make([]int, 0, len(ln.runes)+1)
	for i := range text {
		ln.offsets = append(ln.offsets, i)
	}
	ln.offsets = append(ln.offsets, len(text))
	return ln
}

// slice returns the original bytes of the runes [index, index+length).
func (ln *line) slice(index, length int) string {
	if ln.offsets == nil {
		return ln.text[index : index+length]
	}
	return ln.text[ln.offsets[index]:ln.offsets[index+length]]
}

// group returns the last value captured by the named group, or "" when the
// group does not exist or did not participate.
func (ln *line) group(m *regexp2.Match, name string) string {
	g := m.GroupByName(name)
	if g == nil || len(g.Captures) == 0 {
		return ""
	}
	return ln.slice(g.Index, g.Length)
}

// captures returns every value captured by the named group, in order.
func (ln *line) captures(m *regexp2.Match, name string) []string {
	g := m.GroupByName(name)
	if g == nil || len(g.Captures) == 0 {
		return nil
	}
	out := make([]string, 0, len(g.Captures))
	for _, c := range g.Captures {
		out = append(out, ln.slice(c.Index, c.Length))
	}
	return out
}

// pairAssignments pairs the i-th keys capture with the i-th values capture.
// Later assignments to the same key overwrite earlier ones.
func (ln *line) pairAssignments(m *regexp2.Match) (map[string]string, error) {
	keys := ln.captures(m, GroupKeys)
	values := ln.captures(m, GroupValues)
	if len(keys) != len(values) {
		return nil, ErrUnpairedAssignments
	}

	assignments := make(map[string]string, len(keys))
	for i, k := range keys {
		assignments[k] = values[i]
	}
	return assignments, nil
}
