// Package ctxutil carries per-request values (request ID, engine
// operation) through context.Context.
package ctxutil

import "context"

type key int

const (
	requestIDKey key = iota
	operationKey
)

// Field keys shared by log records and error reports.
const (
	FieldRequestID = "request_id"
	FieldOperation = "operation"
)

// Field is a request-scoped key/value pair.
type Field struct {
	Key   string
	Value string
}

// WithRequestID returns ctx tagged with the request ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestID returns the request ID, or "" when unset.
func RequestID(ctx context.Context) string {
	return value(ctx, requestIDKey)
}

// WithOperation returns ctx tagged with the engine operation (search,
// recommend, ...) serving the request.
func WithOperation(ctx context.Context, op string) context.Context {
	return context.WithValue(ctx, operationKey, op)
}

// Operation returns the operation, or "" when unset.
func Operation(ctx context.Context) string {
	return value(ctx, operationKey)
}

// Fields lists the non-empty request values in a fixed order.
func Fields(ctx context.Context) []Field {
	var fields []Field
	if id := RequestID(ctx); id != "" {
		fields = append(fields, Field{FieldRequestID, id})
	}
	if op := Operation(ctx); op != "" {
		fields = append(fields, Field{FieldOperation, op})
	}
	return fields
}

func value(ctx context.Context, k key) string {
	s, _ := ctx.Value(k).(string)
	return s
}
