package logger

import (
	"context"
	"log/slog"

	"github.com/garyellow/ntpu-course-master/internal/ctxutil"
)

// ContextHandler wraps a slog.Handler and appends the request fields
// found in the record's context, so call sites using the *Context
// methods never pass request_id or operation themselves.
type ContextHandler struct {
	next slog.Handler
}

// NewContextHandler wraps next.
func NewContextHandler(next slog.Handler) *ContextHandler {
	return &ContextHandler{next: next}
}

func (h *ContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, f := range ctxutil.Fields(ctx) {
		r.AddAttrs(slog.String(f.Key, f.Value))
	}
	return h.next.Handle(ctx, r)
}

func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return NewContextHandler(h.next.WithAttrs(attrs))
}

func (h *ContextHandler) WithGroup(name string) slog.Handler {
	return NewContextHandler(h.next.WithGroup(name))
}
