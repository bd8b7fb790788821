package onelog

import (
	"fmt"
	"log/slog"
	"time"
)

// DefaultFileGlob is the file name pattern the watcher looks for when none is set.
const DefaultFileGlob = "*.log"

// DefaultMaxLineBytes is the default maximum size of a single line.
const DefaultMaxLineBytes = 512 * 1024

// WatchOption configures Watch behavior using the functional options pattern.
type WatchOption func(*watchConfig)

// watchConfig holds internal configuration for the watcher.
type watchConfig struct {
	logDir       string
	glob         string
	pollInterval time.Duration
	fromStart    bool
	filePolling  bool
	waitForLogs  bool
	logger       *slog.Logger
	filter       *compiledFilter
	classifier   Classifier
}

// defaultWatchConfig returns a watchConfig with sensible defaults.
func defaultWatchConfig() *watchConfig {
	return &watchConfig{
		glob:         DefaultFileGlob,
		pollInterval: 2 * time.Second,
	}
}

// applyWatchOptions applies functional options to a watchConfig.
func applyWatchOptions(opts []WatchOption) *watchConfig {
	cfg := defaultWatchConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	return cfg
}

// validate checks for invalid option combinations.
func (c *watchConfig) validate() error {
	if c.pollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %v", c.pollInterval)
	}
	if c.glob == "" {
		return fmt.Errorf("file glob must not be empty")
	}
	return nil
}

// WithLogDir sets the directory holding the log files to watch.
// If not set, the ONELOG_LOGDIR environment variable is used.
func WithLogDir(dir string) WatchOption {
	return func(c *watchConfig) {
		c.logDir = dir
	}
}

// WithFileGlob sets the file name pattern (as in path.Match) of the log files
// in the log directory. The most recently modified match is watched.
// Default: "*.log".
func WithFileGlob(glob string) WatchOption {
	return func(c *watchConfig) {
		c.glob = glob
	}
}

// WithPollInterval sets how often to check for new/rotated log files.
// Default: 2 seconds.
func WithPollInterval(interval time.Duration) WatchOption {
	return func(c *watchConfig) {
		c.pollInterval = interval
	}
}

// WithFromStart reads the current log file from the beginning instead of
// only following new lines.
func WithFromStart(fromStart bool) WatchOption {
	return func(c *watchConfig) {
		c.fromStart = fromStart
	}
}

// WithFilePolling detects file changes by polling instead of filesystem
// notifications. Useful on network filesystems.
func WithFilePolling(poll bool) WatchOption {
	return func(c *watchConfig) {
		c.filePolling = poll
	}
}

// WithWaitForLogs configures whether to wait for log files to appear.
// When false (default), an error is reported immediately if no file matches.
func WithWaitForLogs(wait bool) WatchOption {
	return func(c *watchConfig) {
		c.waitForLogs = wait
	}
}

// WithWatchLogger sets a custom logger for debug output.
// If logger is nil, logging is disabled (default behavior).
func WithWatchLogger(logger *slog.Logger) WatchOption {
	return func(c *watchConfig) {
		c.logger = logger
	}
}

// WithClassifier sets the classifier applied to each line.
// If cl is nil, this option has no effect (the built-in format remains active).
func WithClassifier(cl Classifier) WatchOption {
	return func(c *watchConfig) {
		if cl != nil {
			c.classifier = cl
		}
	}
}

// WithIncludeKinds only passes records of the given kinds.
// If called multiple times, only the last call takes effect.
func WithIncludeKinds(kinds ...Kind) WatchOption {
	return func(c *watchConfig) {
		if c.filter == nil {
			c.filter = &compiledFilter{}
		}
		c.filter.include = newCompiledFilter(kinds, nil).include
	}
}

// WithExcludeKinds drops records of the given kinds.
// Exclude takes precedence over include.
func WithExcludeKinds(kinds ...Kind) WatchOption {
	return func(c *watchConfig) {
		if c.filter == nil {
			c.filter = &compiledFilter{}
		}
		c.filter.exclude = newCompiledFilter(nil, kinds).exclude
	}
}

// ParseOption configures ParseReader/ParseFile behavior.
type ParseOption func(*parseConfig)

// parseConfig holds internal configuration for parsing.
type parseConfig struct {
	filter       *compiledFilter
	maxLineBytes int
	stopOnError  bool
	classifier   Classifier
}

// defaultParseConfig returns a parseConfig with sensible defaults.
func defaultParseConfig() *parseConfig {
	return &parseConfig{
		maxLineBytes: DefaultMaxLineBytes,
	}
}

// applyParseOptions applies functional options to a parseConfig.
func applyParseOptions(opts []ParseOption) *parseConfig {
	cfg := defaultParseConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	return cfg
}

// WithParseClassifier sets the classifier for ParseReader/ParseFile.
// If cl is nil, this option has no effect (the built-in format remains active).
func WithParseClassifier(cl Classifier) ParseOption {
	return func(c *parseConfig) {
		if cl != nil {
			c.classifier = cl
		}
	}
}

// WithParseIncludeKinds only yields records of the given kinds.
func WithParseIncludeKinds(kinds ...Kind) ParseOption {
	return func(c *parseConfig) {
		if c.filter == nil {
			c.filter = &compiledFilter{}
		}
		c.filter.include = newCompiledFilter(kinds, nil).include
	}
}

// WithParseExcludeKinds drops records of the given kinds.
func WithParseExcludeKinds(kinds ...Kind) ParseOption {
	return func(c *parseConfig) {
		if c.filter == nil {
			c.filter = &compiledFilter{}
		}
		c.filter.exclude = newCompiledFilter(nil, kinds).exclude
	}
}

// WithParseFilter sets both include and exclude kind filters.
func WithParseFilter(include, exclude []Kind) ParseOption {
	return func(c *parseConfig) {
		c.filter = newCompiledFilter(include, exclude)
	}
}

// WithParseMaxLineBytes sets the maximum size of a single line.
// Default is 512KB. A longer line ends parsing with ErrLineTooLong.
func WithParseMaxLineBytes(max int) ParseOption {
	return func(c *parseConfig) {
		if max > 0 {
			c.maxLineBytes = max
		}
	}
}

// WithParseStopOnError stops parsing on the first read error instead of
// reporting it and continuing with the next input.
// Default: false.
func WithParseStopOnError(stop bool) ParseOption {
	return func(c *parseConfig) {
		c.stopOnError = stop
	}
}
