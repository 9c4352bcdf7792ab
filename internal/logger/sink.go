package logger

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// TeeHandler writes every record to a primary handler and copies it to
// secondary sinks. Only primary errors are returned; a failing remote
// sink must not break local logging.
type TeeHandler struct {
	primary     slog.Handler
	secondaries []slog.Handler
}

// NewTeeHandler creates a TeeHandler. Nil secondaries are ignored.
func NewTeeHandler(primary slog.Handler, secondaries ...slog.Handler) *TeeHandler {
	kept := make([]slog.Handler, 0, len(secondaries))
	for _, h := range secondaries {
		if h != nil {
			kept = append(kept, h)
		}
	}
	return &TeeHandler{primary: primary, secondaries: kept}
}

// Enabled reports whether any sink accepts the level.
func (h *TeeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	if h.primary.Enabled(ctx, level) {
		return true
	}
	for _, s := range h.secondaries {
		if s.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

// Handle dispatches a clone of r to each enabled sink.
func (h *TeeHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, s := range h.secondaries {
		if s.Enabled(ctx, r.Level) {
			_ = s.Handle(ctx, r.Clone())
		}
	}
	if !h.primary.Enabled(ctx, r.Level) {
		return nil
	}
	return h.primary.Handle(ctx, r)
}

// WithAttrs applies attrs to every sink.
func (h *TeeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make([]slog.Handler, len(h.secondaries))
	for i, s := range h.secondaries {
		next[i] = s.WithAttrs(attrs)
	}
	return &TeeHandler{primary: h.primary.WithAttrs(attrs), secondaries: next}
}

// WithGroup applies the group to every sink.
func (h *TeeHandler) WithGroup(name string) slog.Handler {
	next := make([]slog.Handler, len(h.secondaries))
	for i, s := range h.secondaries {
		next[i] = s.WithGroup(name)
	}
	return &TeeHandler{primary: h.primary.WithGroup(name), secondaries: next}
}

const (
	defaultAsyncBufferSize   = 1024
	defaultAsyncFlushTimeout = 5 * time.Second
)

// AsyncOptions configures the queue in front of a remote sink.
type AsyncOptions struct {
	BufferSize   int
	FlushTimeout time.Duration
}

type queued struct {
	ctx     context.Context
	record  slog.Record
	handler slog.Handler
}

// queue is shared by an AsyncHandler and all handlers derived from it.
type queue struct {
	ch           chan queued
	flushTimeout time.Duration
	mu           sync.RWMutex // guards closed against sends on a closed channel
	closed       bool
	dropped      atomic.Uint64
	done         sync.WaitGroup
}

func newQueue(opts AsyncOptions) *queue {
	size := opts.BufferSize
	if size <= 0 {
		size = defaultAsyncBufferSize
	}
	timeout := opts.FlushTimeout
	if timeout <= 0 {
		timeout = defaultAsyncFlushTimeout
	}
	q := &queue{ch: make(chan queued, size), flushTimeout: timeout}
	q.done.Go(func() {
		for item := range q.ch {
			_ = item.handler.Handle(item.ctx, item.record)
		}
	})
	return q
}

// AsyncHandler hands records to a background goroutine so slow remote
// shipping never blocks a request. Records are dropped when the queue is full.
type AsyncHandler struct {
	q       *queue
	handler slog.Handler
}

// NewAsyncHandler starts a queue in front of handler.
func NewAsyncHandler(handler slog.Handler, opts AsyncOptions) *AsyncHandler {
	return &AsyncHandler{q: newQueue(opts), handler: handler}
}

// Enabled delegates to the wrapped handler.
func (h *AsyncHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle enqueues a clone of r.
func (h *AsyncHandler) Handle(ctx context.Context, r slog.Record) error {
	h.q.mu.RLock()
	defer h.q.mu.RUnlock()
	if h.q.closed {
		return nil
	}
	select {
	case h.q.ch <- queued{ctx: context.WithoutCancel(ctx), record: r.Clone(), handler: h.handler}:
	default:
		h.q.dropped.Add(1)
	}
	return nil
}

// WithAttrs returns a handler sharing the same queue.
func (h *AsyncHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &AsyncHandler{q: h.q, handler: h.handler.WithAttrs(attrs)}
}

// WithGroup returns a handler sharing the same queue.
func (h *AsyncHandler) WithGroup(name string) slog.Handler {
	return &AsyncHandler{q: h.q, handler: h.handler.WithGroup(name)}
}

// Dropped returns how many records were discarded because the queue was full.
func (h *AsyncHandler) Dropped() uint64 {
	if h == nil || h.q == nil {
		return 0
	}
	return h.q.dropped.Load()
}

// Shutdown stops accepting records and waits for the queue to drain,
// bounded by ctx or the configured flush timeout.
func (h *AsyncHandler) Shutdown(ctx context.Context) error {
	if h == nil || h.q == nil {
		return nil
	}
	h.q.mu.Lock()
	if h.q.closed {
		h.q.mu.Unlock()
		return nil
	}
	h.q.closed = true
	close(h.q.ch)
	h.q.mu.Unlock()

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.q.flushTimeout)
		defer cancel()
	}

	drained := make(chan struct{})
	go func() {
		h.q.done.Wait()
		close(drained)
	}()
	select {
	case <-drained:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
