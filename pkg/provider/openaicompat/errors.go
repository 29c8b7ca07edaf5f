package openaicompat

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// CallError describes a failed round trip to the provider. StatusCode is
// zero when no HTTP response was received.
type CallError struct {
	StatusCode int
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *CallError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("provider call failed (HTTP %d): %s", e.StatusCode, e.Message)
	}
	return "provider call failed: " + e.Message
}

// Unwrap returns the underlying error, if any.
func (e *CallError) Unwrap() error { return e.Err }

// MapHTTPError converts a non-2xx response into a CallError, using the
// backend's error message when the body carries one.
func MapHTTPError(resp *http.Response) *CallError {
	message := ExtractErrorMessage(resp.Body)
	if message == "" {
		switch {
		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			message = "provider rejected the credential"
		case resp.StatusCode == http.StatusTooManyRequests:
			message = "provider rate limit exceeded"
		case resp.StatusCode >= http.StatusInternalServerError:
			message = "provider server error"
		default:
			message = "unexpected provider status"
		}
	}
	return &CallError{StatusCode: resp.StatusCode, Message: message}
}

// MapNetworkError converts a transport-level failure (refused connection,
// timeout, DNS) into a CallError.
func MapNetworkError(err error) *CallError {
	return &CallError{Message: "connection error: " + err.Error(), Err: err}
}

// ExtractErrorMessage reads at most 4 KiB of body and returns the message
// of a ChatErrorResponse, or "" when none can be found.
func ExtractErrorMessage(body io.Reader) string {
	if body == nil {
		return ""
	}

	data, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil || len(data) == 0 {
		return ""
	}

	var errResp ChatErrorResponse
	if err := json.Unmarshal(data, &errResp); err == nil && errResp.Error.Message != "" {
		return errResp.Error.Message
	}
	return ""
}
