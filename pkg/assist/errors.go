package assist

import (
	"errors"
	"fmt"
)

// Kind classifies a task failure.
type Kind int

const (
	// KindMissingCredential means the provider API key is not configured.
	// No network call was attempted.
	KindMissingCredential Kind = iota + 1

	// KindProviderCall means the round trip failed: transport error,
	// non-2xx status or a reply without choices.
	KindProviderCall

	// KindNoPayload means the reply carried no usable text at all.
	KindNoPayload

	// KindMalformedResponse means text was present but did not parse into
	// the expected shape.
	KindMalformedResponse
)

// Sentinels matched by errors.Is against any *Error of the same kind.
var (
	ErrMissingCredential = errors.New("provider credential is not configured")
	ErrProviderCall      = errors.New("provider call failed")
	ErrNoPayload         = errors.New("no payload found in provider reply")
	ErrMalformedResponse = errors.New("malformed provider response")
)

// String returns the snake_case name used in logs and metric labels.
func (k Kind) String() string {
	switch k {
	case KindMissingCredential:
		return "missing_credential"
	case KindProviderCall:
		return "provider_call"
	case KindNoPayload:
		return "no_payload"
	case KindMalformedResponse:
		return "malformed_response"
	default:
		return "unknown"
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindMissingCredential:
		return ErrMissingCredential
	case KindProviderCall:
		return ErrProviderCall
	case KindNoPayload:
		return ErrNoPayload
	case KindMalformedResponse:
		return ErrMalformedResponse
	default:
		return nil
	}
}

// Error is a classified task failure. Raw holds the provider text that
// failed to parse; it is kept for operator logs and is never part of
// Error().
type Error struct {
	Kind  Kind
	Task  string
	Cause error
	Raw   string
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Kind.sentinel()
	if msg == nil {
		msg = errors.New(e.Kind.String())
	}
	prefix := "assist"
	if e.Task != "" {
		prefix += ": " + e.Task
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, msg, e.Cause)
	}
	return fmt.Sprintf("%s: %s", prefix, msg)
}

// Unwrap returns the cause.
func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether target is the sentinel for e's kind.
func (e *Error) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

// KindOf returns the kind of the outermost *Error in err's chain, or 0
// when err is not a classified task failure.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
