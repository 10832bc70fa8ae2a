package logger

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// AsyncHook writes log entries asynchronously so request handling never
// blocks on log I/O. Entries are buffered in a channel and drained by a
// dedicated goroutine; when the buffer is full, entries are dropped and
// counted instead of blocking the caller.
type AsyncHook struct {
	writers    []io.Writer
	entries    chan *logrus.Entry
	wg         sync.WaitGroup
	mu         sync.Mutex
	closed     bool
	bufferSize int
	dropped    atomic.Int64
}

// NewAsyncHook creates an async hook with a single writer.
func NewAsyncHook(writer io.Writer, bufferSize int) *AsyncHook {
	return NewAsyncHookWithWriters([]io.Writer{writer}, bufferSize)
}

// NewAsyncHookWithWriters creates an async hook with multiple writers.
// bufferSize defaults to 1000 entries when non-positive.
func NewAsyncHookWithWriters(writers []io.Writer, bufferSize int) *AsyncHook {
	if bufferSize <= 0 {
		bufferSize = 1000
	}

	hook := &AsyncHook{
		writers:    writers,
		entries:    make(chan *logrus.Entry, bufferSize),
		bufferSize: bufferSize,
	}

	hook.wg.Add(1)
	go hook.processEntries()

	return hook
}

// Levels returns the levels this hook handles.
func (h *AsyncHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

// Dropped returns the number of entries discarded because the buffer
// was full.
func (h *AsyncHook) Dropped() int64 {
	return h.dropped.Load()
}

// Fire queues the entry without blocking. After Close, entries are
// written synchronously as a fallback.
func (h *AsyncHook) Fire(entry *logrus.Entry) error {
	h.mu.Lock()
	closed := h.closed
	h.mu.Unlock()

	if closed {
		data, err := formatEntry(entry)
		if err != nil {
			return err
		}
		for _, writer := range h.writers {
			_, _ = writer.Write(data)
		}
		return nil
	}

	select {
	case h.entries <- entry:
	default:
		// Buffer full. Dropping here is deliberate: logging must never
		// stall the request path. Cannot log the drop without recursing.
		h.dropped.Add(1)
	}

	return nil
}

// processEntries drains the channel in its own goroutine. A recover
// guard keeps a formatter or writer panic from taking down the process.
func (h *AsyncHook) processEntries() {
	defer h.wg.Done()

	for entry := range h.entries {
		func() {
			defer func() {
				if r := recover(); r != nil {
					fmt.Fprintf(os.Stderr, "[LOGGER PANIC] recovered: %v\n", r)
					debug.PrintStack()
				}
			}()

			// Entries marked by FilterHook are skipped entirely.
			if filtered, ok := entry.Data["_filtered"].(bool); ok && filtered {
				return
			}

			data, err := formatEntry(entry)
			if err != nil {
				return
			}

			for _, writer := range h.writers {
				if _, err = writer.Write(data); err != nil {
					continue
				}
			}
		}()
	}
}

func formatEntry(entry *logrus.Entry) ([]byte, error) {
	// The _filtered marker is internal bookkeeping, strip it before
	// formatting so it never reaches the output.
	if _, ok := entry.Data["_filtered"]; ok {
		entry = entry.Dup()
		delete(entry.Data, "_filtered")
	}

	if entry.Logger != nil && entry.Logger.Formatter != nil {
		return entry.Logger.Formatter.Format(entry)
	}
	line, err := entry.String()
	if err != nil {
		return nil, err
	}
	return []byte(line), nil
}

// Close stops the hook and waits for queued entries to be written.
func (h *AsyncHook) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	h.mu.Unlock()

	close(h.entries)
	h.wg.Wait()
	return nil
}
