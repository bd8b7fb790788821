// Package tailer follows a growing log file and delivers complete lines.
package tailer

import (
	"context"
	"io"
	"strings"
	"sync"

	"github.com/nxadm/tail"
)

// Config configures a Tailer.
type Config struct {
	// FromStart reads the file from the beginning instead of from its end.
	FromStart bool

	// Poll uses polling instead of filesystem notifications.
	Poll bool

	// MaxLineSize splits lines longer than this many bytes. Zero means no limit.
	MaxLineSize int
}

// DefaultConfig returns the default tailer configuration: follow new lines
// from the end of the file using filesystem notifications.
func DefaultConfig() Config {
	return Config{}
}

// Tailer follows a single file.
type Tailer struct {
	t      *tail.Tail
	lines  chan string
	errs   chan error
	cancel context.CancelFunc
	done   chan struct{}

	stopOnce sync.Once
	stopErr  error
}

// New starts following path. Lines are delivered until ctx is cancelled or
// Stop is called; the file must already exist.
func New(ctx context.Context, path string, cfg Config) (*Tailer, error) {
	whence := io.SeekEnd
	if cfg.FromStart {
		whence = io.SeekStart
	}

	t, err := tail.TailFile(path, tail.Config{
		Location:      &tail.SeekInfo{Offset: 0, Whence: whence},
		Follow:        true,
		MustExist:     true,
		Poll:          cfg.Poll,
		MaxLineSize:   cfg.MaxLineSize,
		CompleteLines: true,
		Logger:        tail.DiscardingLogger,
	})
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	tl := &Tailer{
		t:      t,
		lines:  make(chan string),
		errs:   make(chan error, 1),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go tl.run(ctx)
	return tl, nil
}

func (tl *Tailer) run(ctx context.Context) {
	defer close(tl.done)
	defer close(tl.lines)
	defer close(tl.errs)

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-tl.t.Lines:
			if !ok {
				if err := tl.t.Err(); err != nil {
					tl.sendError(ctx, err)
				}
				return
			}
			if line.Err != nil {
				tl.sendError(ctx, line.Err)
				continue
			}
			select {
			case tl.lines <- strings.TrimRight(line.Text, "\r"):
			case <-ctx.Done():
				return
			}
		}
	}
}

func (tl *Tailer) sendError(ctx context.Context, err error) {
	select {
	case tl.errs <- err:
	case <-ctx.Done():
	default:
		// Drop when the consumer is not keeping up
	}
}

// Lines returns the channel of lines, without trailing newline or CR.
// It is closed when the tailer stops.
func (tl *Tailer) Lines() <-chan string {
	return tl.lines
}

// Errors returns the channel of read errors. It is closed when the tailer stops.
func (tl *Tailer) Errors() <-chan error {
	return tl.errs
}

// Stop stops following the file and releases its resources.
// Safe to call multiple times.
func (tl *Tailer) Stop() error {
	tl.stopOnce.Do(func() {
		tl.cancel()
		<-tl.done
		tl.stopErr = tl.t.Stop()
		tl.t.Cleanup()
	})
	return tl.stopErr
}
