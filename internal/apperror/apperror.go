// Package apperror declares the error taxonomy shared by every layer of the
// service. Callers wrap these sentinels with fmt.Errorf("...: %w", ...) and
// the HTTP layer maps them to stable status codes via errors.Is.
package apperror

import "errors"

var (
	// ErrValidation reports malformed input: empty names, bad PINs, unknown fields.
	ErrValidation = errors.New("validation error")

	// ErrNotFound reports that no matching active record exists.
	ErrNotFound = errors.New("not found")

	// ErrExpired reports a record that exists but is past its expiry.
	ErrExpired = errors.New("expired")

	// ErrRateLimited reports too many verification attempts from one source.
	ErrRateLimited = errors.New("rate limited")

	// ErrAllocationExhausted reports that no free PIN was found within the retry budget.
	ErrAllocationExhausted = errors.New("pin allocation exhausted")

	// ErrUnauthorized reports an admin or cron secret mismatch.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrSizeLimitExceeded reports a declared or actual upload over the cap.
	ErrSizeLimitExceeded = errors.New("size limit exceeded")

	// ErrBackend reports a failed metadata or blob store call.
	ErrBackend = errors.New("backend failure")
)

// Validation wraps msg as an ErrValidation so the message survives to the client.
func Validation(msg string) error {
	return &detailed{msg: msg, kind: ErrValidation}
}

// SizeLimit wraps msg as an ErrSizeLimitExceeded.
func SizeLimit(msg string) error {
	return &detailed{msg: msg, kind: ErrSizeLimitExceeded}
}

// detailed carries a client-safe message while still matching its sentinel.
type detailed struct {
	msg  string
	kind error
}

func (e *detailed) Error() string { return e.msg }

func (e *detailed) Unwrap() error { return e.kind }

// Message returns the client-safe message attached to err, if any.
func Message(err error) (string, bool) {
	var d *detailed
	if errors.As(err, &d) {
		return d.msg, true
	}
	return "", false
}
