package onelog

import (
	"errors"
	"fmt"
)

// Sentinel errors.
var (
	// ErrMissingPattern is returned by New when a pattern text is empty.
	ErrMissingPattern = errors.New("pattern is required")

	// ErrUnpairedAssignments is reported when a status match captures a
	// different number of keys and values. It is only detectable at match time.
	ErrUnpairedAssignments = errors.New("keys and values capture counts differ")

	// ErrWatcherClosed is returned when Watch is called on a closed watcher.
	ErrWatcherClosed = errors.New("watcher is closed")

	// ErrAlreadyWatching is returned when Watch is called more than once.
	ErrAlreadyWatching = errors.New("watcher is already watching")

	// ErrLineTooLong is returned when a line exceeds the configured maximum size.
	ErrLineTooLong = errors.New("line too long")
)

// Role names one of the three patterns of a Format.
type Role string

const (
	RoleFilter Role = "filter"
	RoleEvent  Role = "event"
	RoleStatus Role = "status"
)

// ConfigError reports a pattern that is absent, does not compile, or is
// found at match time to be inconsistent.
type ConfigError struct {
	Role    Role
	Pattern string // expanded pattern text, empty when the pattern was absent
	Err     error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s pattern: %v", e.Role, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// MatchError reports a failure of the pattern engine while matching, such as
// a match timeout. The stage that failed is treated as not matching.
type MatchError struct {
	Role Role
	Err  error
}

func (e *MatchError) Error() string {
	return fmt.Sprintf("%s stage: %v", e.Role, e.Err)
}

// Unwrap returns the underlying cause.
func (e *MatchError) Unwrap() error {
	return e.Err
}

// ParseError wraps an error that occurred while reading a line.
type ParseError struct {
	Line string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error: %v", e.Err)
}

// Unwrap returns the underlying cause.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// WatchOp names the operation a WatchError occurred in.
type WatchOp string

const (
	WatchOpFindLatest WatchOp = "find_latest"
	WatchOpTail       WatchOp = "tail"
	WatchOpRotation   WatchOp = "rotation"
)

// WatchError wraps an error from the watcher with the failing operation.
type WatchError struct {
	Op   WatchOp
	Path string
	Err  error
}

func (e *WatchError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("watch %s %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("watch %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying cause.
func (e *WatchError) Unwrap() error {
	return e.Err
}
