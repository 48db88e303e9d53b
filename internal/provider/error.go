package provider

import "fmt"

// ErrorKind classifies an external-call failure. The dispatcher decides
// from the kind whether to try the next credential or abort.
type ErrorKind string

const (
	// Recoverable kinds: the next credential may still succeed.
	KindRateLimited ErrorKind = "rate_limited"
	KindQuota       ErrorKind = "quota_exceeded"
	KindTimeout     ErrorKind = "timeout"
	KindTransient   ErrorKind = "transient"
	KindMalformed   ErrorKind = "malformed_response"

	// Non-recoverable kinds: retrying other credentials is pointless.
	KindAuth       ErrorKind = "auth_rejected"
	KindBadRequest ErrorKind = "bad_request"
)

// Error is a normalized external-call failure. Raw transport errors never
// cross the provider boundary; they are wrapped here with a kind.
type Error struct {
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("provider %s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Recoverable reports whether trying the next credential makes sense.
// Malformed responses are treated as retryable: another key (or another
// attempt) may produce parseable output.
func (e *Error) Recoverable() bool {
	switch e.Kind {
	case KindRateLimited, KindQuota, KindTimeout, KindTransient, KindMalformed:
		return true
	}
	return false
}

// NewError wraps err with a kind.
func NewError(kind ErrorKind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}
