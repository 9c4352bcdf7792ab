package logger

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingHandler collects messages in memory.
type recordingHandler struct {
	mu       sync.Mutex
	level    slog.Level
	messages []string
	attrs    []slog.Attr
	err      error
	delay    time.Duration
}

func (h *recordingHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *recordingHandler) Handle(_ context.Context, r slog.Record) error {
	if h.delay > 0 {
		time.Sleep(h.delay)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = append(h.messages, r.Message)
	return h.err
}

func (h *recordingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.attrs = append(h.attrs, attrs...)
	return h
}

func (h *recordingHandler) WithGroup(string) slog.Handler { return h }

func (h *recordingHandler) Messages() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.messages...)
}

func TestTeeHandler_FansOut(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	remote := &recordingHandler{level: slog.LevelDebug}
	tee := NewTeeHandler(slog.NewJSONHandler(&buf, nil), nil, remote)

	slog.New(tee).Info("snapshot published")

	assert.Contains(t, buf.String(), "snapshot published")
	assert.Equal(t, []string{"snapshot published"}, remote.Messages())
}

func TestTeeHandler_LevelFiltering(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	remote := &recordingHandler{level: slog.LevelError}
	tee := NewTeeHandler(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}), remote)

	assert.True(t, tee.Enabled(context.Background(), slog.LevelDebug))

	logger := slog.New(tee)
	logger.Debug("cache miss")
	logger.Error("load failed")

	assert.Equal(t, 2, strings.Count(buf.String(), "\n"))
	assert.Equal(t, []string{"load failed"}, remote.Messages())
}

func TestTeeHandler_SecondaryErrorsIgnored(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	remote := &recordingHandler{err: errors.New("network down")}
	tee := NewTeeHandler(slog.NewJSONHandler(&buf, nil), remote)

	r := slog.NewRecord(time.Now(), slog.LevelInfo, "hello", 0)
	assert.NoError(t, tee.Handle(context.Background(), r))
}

func TestTeeHandler_WithAttrs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	remote := &recordingHandler{}
	tee := NewTeeHandler(slog.NewJSONHandler(&buf, nil), remote)

	slog.New(tee.WithAttrs([]slog.Attr{slog.String("service", "ntpu-course-master")})).Info("x")

	assert.Contains(t, buf.String(), `"service":"ntpu-course-master"`)
	require.Len(t, remote.attrs, 1)
}

func TestAsyncHandler_ShutdownDrains(t *testing.T) {
	t.Parallel()

	remote := &recordingHandler{delay: time.Millisecond}
	async := NewAsyncHandler(remote, AsyncOptions{BufferSize: 16})
	logger := slog.New(async)

	for range 5 {
		logger.Info("queued")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, async.Shutdown(ctx))
	assert.Len(t, remote.Messages(), 5)

	logger.Info("after shutdown")
	assert.Len(t, remote.Messages(), 5)
	assert.NoError(t, async.Shutdown(ctx), "second shutdown is a no-op")
}

func TestAsyncHandler_DropsWhenFull(t *testing.T) {
	t.Parallel()

	block := make(chan struct{})
	remote := &blockingHandler{release: block}
	async := NewAsyncHandler(remote, AsyncOptions{BufferSize: 1})
	logger := slog.New(async)

	for range 10 {
		logger.Info("burst")
	}
	assert.Positive(t, async.Dropped())

	close(block)
	require.NoError(t, async.Shutdown(context.Background()))
}

type blockingHandler struct {
	release chan struct{}
}

func (h *blockingHandler) Enabled(context.Context, slog.Level) bool { return true }
func (h *blockingHandler) Handle(context.Context, slog.Record) error {
	<-h.release
	return nil
}
func (h *blockingHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *blockingHandler) WithGroup(string) slog.Handler      { return h }

func TestAsyncHandler_NilShutdown(t *testing.T) {
	t.Parallel()
	var h *AsyncHandler
	assert.NoError(t, h.Shutdown(context.Background()))
}
