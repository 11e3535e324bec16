package core

import "fmt"

// ValidationError reports operator input rejected before any backend call.
// It never accompanies a cart or sale mutation.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// NotFoundError reports a lookup miss (unresolved barcode/SKU, unknown id).
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

// BackendError reports an unreachable or failing backend. Message carries the
// server-supplied text when one was returned; it is empty for transport
// failures.
type BackendError struct {
	Message string
	Err     error
}

func (e *BackendError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "backend request failed"
}

func (e *BackendError) Unwrap() error { return e.Err }

// ConflictError reports state that changed underneath the terminal, such as
// stock sold by another register between cart entry and submission.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }
