package onelog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/onelog/onelog-go/internal/logfinder"
	"github.com/onelog/onelog-go/internal/tailer"
)

// watcherErrBuffer is the buffer size for the error channel.
const watcherErrBuffer = 16

// Watcher follows the newest log file in a directory and classifies each new
// line. When a newer file matching the glob appears, the watcher switches to
// it and reads it from the start.
type Watcher struct {
	cfg        watchConfig // immutable after creation
	logDir     string
	classifier Classifier
	log        *slog.Logger

	mu       sync.Mutex
	closed   bool
	cancel   context.CancelFunc
	doneCh   chan struct{}
	watching bool
}

// NewWatcher creates a watcher using functional options.
// Validates options and checks that the log directory exists.
// Does NOT start goroutines.
//
// Example:
//
//	w, err := onelog.NewWatcher(
//	    onelog.WithLogDir("/var/log/myapp"),
//	    onelog.WithClassifier(format),
//	    onelog.WithExcludeKinds(onelog.KindOther),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer w.Close()
//	records, errs, err := w.Watch(ctx)
func NewWatcher(opts ...WatchOption) (*Watcher, error) {
	cfg := applyWatchOptions(opts)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	logDir, err := logfinder.FindLogDir(cfg.logDir)
	if err != nil {
		return nil, fmt.Errorf("finding log directory: %w", err)
	}

	log := cfg.logger
	if log == nil {
		log = discardLogger
	}
	cl := cfg.classifier
	if cl == nil {
		cl = Default()
	}

	return &Watcher{
		cfg:        *cfg,
		logDir:     logDir,
		classifier: cl,
		log:        log,
	}, nil
}

// Watch starts watching and returns a channel of records and a channel of
// errors. Both channels are closed when ctx is cancelled, when Close is
// called, or after a fatal error. Watch can only be called once per Watcher.
//
// Returns ErrWatcherClosed if the watcher has been closed.
// Returns ErrAlreadyWatching if Watch has already been called.
func (w *Watcher) Watch(ctx context.Context) (<-chan Record, <-chan error, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil, nil, ErrWatcherClosed
	}
	if w.watching {
		return nil, nil, ErrAlreadyWatching
	}
	w.watching = true

	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.doneCh = make(chan struct{})

	recCh := make(chan Record)
	errCh := make(chan error, watcherErrBuffer)

	go w.run(ctx, recCh, errCh)

	return recCh, errCh, nil
}

// Close stops the watcher and releases resources.
// Safe to call multiple times. Blocks until the watch goroutine has exited.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	if w.cancel != nil {
		w.cancel()
	}
	doneCh := w.doneCh
	w.mu.Unlock()

	if doneCh != nil {
		<-doneCh
	}
	return nil
}

func (w *Watcher) run(ctx context.Context, recCh chan<- Record, errCh chan<- error) {
	defer close(w.doneCh)
	defer close(recCh)
	defer close(errCh)

	logFile, err := w.findLogFileWithWait(ctx, errCh)
	if err != nil {
		return
	}
	w.log.Debug("found latest log file", "path", logFile)

	cfg := tailer.DefaultConfig()
	cfg.FromStart = w.cfg.fromStart
	cfg.Poll = w.cfg.filePolling
	t, err := tailer.New(ctx, logFile, cfg)
	if err != nil {
		sendError(ctx, errCh, &WatchError{Op: WatchOpTail, Path: logFile, Err: err})
		return
	}
	w.log.Debug("started tailing", "path", logFile, "from_start", cfg.FromStart)

	rotationTicker := time.NewTicker(w.cfg.pollInterval)
	defer rotationTicker.Stop()
	defer func() { _ = t.Stop() }()

	currentFile := logFile

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-t.Lines():
			if !ok {
				return
			}
			w.processLine(ctx, line, recCh)
		case err, ok := <-t.Errors():
			if !ok {
				return
			}
			sendError(ctx, errCh, &WatchError{Op: WatchOpTail, Path: currentFile, Err: err})
		case <-rotationTicker.C:
			newFile, err := logfinder.FindLatestLogFile(w.logDir, w.cfg.glob)
			if err != nil {
				sendError(ctx, errCh, &WatchError{Op: WatchOpRotation, Err: err})
				continue
			}
			if newFile == currentFile {
				continue
			}
			w.log.Debug("log rotation detected", "from", currentFile, "to", newFile)
			_ = t.Stop()
			cfg := tailer.DefaultConfig()
			cfg.FromStart = true
			cfg.Poll = w.cfg.filePolling
			newTailer, err := tailer.New(ctx, newFile, cfg)
			if err != nil {
				sendError(ctx, errCh, &WatchError{Op: WatchOpTail, Path: newFile, Err: err})
				return
			}
			t = newTailer
			currentFile = newFile
		}
	}
}

// findLogFileWithWait finds the latest log file, optionally waiting if none exist yet.
// Errors are sent to errCh before being returned.
func (w *Watcher) findLogFileWithWait(ctx context.Context, errCh chan<- error) (string, error) {
	logFile, err := logfinder.FindLatestLogFile(w.logDir, w.cfg.glob)
	if err == nil {
		return logFile, nil
	}
	if !errors.Is(err, logfinder.ErrNoLogFiles) || !w.cfg.waitForLogs {
		sendError(ctx, errCh, &WatchError{Op: WatchOpFindLatest, Err: err})
		return "", err
	}

	w.log.Debug("no log files found, waiting for logs to appear", "poll_interval", w.cfg.pollInterval)
	ticker := time.NewTicker(w.cfg.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// Context is already cancelled, so sendError would drop this
			select {
			case errCh <- &WatchError{Op: WatchOpFindLatest, Err: ctx.Err()}:
			default:
			}
			return "", ctx.Err()
		case <-ticker.C:
			logFile, err := logfinder.FindLatestLogFile(w.logDir, w.cfg.glob)
			if err == nil {
				w.log.Debug("log file appeared", "path", logFile)
				return logFile, nil
			}
			if !errors.Is(err, logfinder.ErrNoLogFiles) {
				sendError(ctx, errCh, &WatchError{Op: WatchOpFindLatest, Err: err})
				return "", err
			}
		}
	}
}

func (w *Watcher) processLine(ctx context.Context, line string, recCh chan<- Record) {
	if line == "" {
		return
	}
	rec := w.classifier.Classify(line)
	if !w.cfg.filter.Allows(rec.Kind()) {
		return
	}
	select {
	case recCh <- rec:
	case <-ctx.Done():
	}
}

// sendError sends an error to the error channel without blocking.
// Errors are dropped only if the buffer is full or the context is done.
func sendError(ctx context.Context, errCh chan<- error, err error) {
	if err == nil {
		return
	}
	select {
	case errCh <- err:
	case <-ctx.Done():
	default:
	}
}
