package errors

import (
	"errors"
	"fmt"
)

// Kind classifies a failure for HTTP status mapping and metric labels.
type Kind string

const (
	KindNoDataset Kind = "no_dataset"
	KindNotFound  Kind = "not_found"
	KindInvalid   Kind = "validation"
	KindInternal  Kind = "internal"
)

// KindOf classifies err. ErrNoDataset is checked before ErrNotFound
// because it matches both.
func KindOf(err error) Kind {
	switch {
	case IsNoDataset(err):
		return KindNoDataset
	case IsNotFound(err):
		return KindNotFound
	case IsInvalidInput(err):
		return KindInvalid
	default:
		return KindInternal
	}
}

// OpError records which operation failed and the detail shown to clients.
type OpError struct {
	Op     string
	Detail string
	Err    error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Detail, e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}

// WithOp wraps err in an OpError. Returns nil if err is nil.
func WithOp(op, detail string, err error) error {
	if err == nil {
		return nil
	}
	return &OpError{Op: op, Detail: detail, Err: err}
}

// Detail returns the client-facing detail of the first OpError in the
// chain, or err's own message when there is none.
func Detail(err error) string {
	if err == nil {
		return ""
	}
	var oe *OpError
	if errors.As(err, &oe) {
		return oe.Detail
	}
	return err.Error()
}
