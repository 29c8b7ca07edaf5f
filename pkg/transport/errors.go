package transport

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/diarydepresiku/moodlog/pkg/api"
	"github.com/diarydepresiku/moodlog/pkg/assist"
	"github.com/diarydepresiku/moodlog/pkg/storage"
)

// Generic messages returned for assistant failures. Causes and raw
// provider output are logged, never sent to the client.
const (
	msgNotConfigured = "assistant is not configured"
	msgUpstream      = "assistant request failed"
	msgInternal      = "internal server error"
)

// HTTPStatusFromError maps an APIError type to the corresponding HTTP status
// code. Transport-level errors (body too large, unsupported content type)
// are handled separately by the HTTP adapter.
func HTTPStatusFromError(err *api.APIError) int {
	switch err.Type {
	case api.ErrorTypeInvalidRequest:
		return http.StatusBadRequest
	case api.ErrorTypeNotFound:
		return http.StatusNotFound
	case api.ErrorTypeConflict:
		// The mobile client treats any 400 on /register/ as "email taken".
		return http.StatusBadRequest
	case api.ErrorTypeUnauthorized:
		return http.StatusUnauthorized
	case api.ErrorTypeUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// StatusFromError classifies an arbitrary handler error into an HTTP
// status and the APIError body sent to the client.
//
// Assistant errors are reduced to a generic message: a missing provider
// credential is a server configuration problem (500), every other
// assistant failure is an upstream problem (502).
func StatusFromError(err error) (int, *api.APIError) {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		return HTTPStatusFromError(apiErr), apiErr
	}

	var assistErr *assist.Error
	if errors.As(err, &assistErr) {
		if assistErr.Kind == assist.KindMissingCredential {
			return http.StatusInternalServerError, api.NewServerError(msgNotConfigured)
		}
		return http.StatusBadGateway, api.NewUpstreamError(msgUpstream)
	}

	if errors.Is(err, storage.ErrNotFound) {
		return http.StatusNotFound, api.NewNotFoundError("resource not found")
	}

	return http.StatusInternalServerError, api.NewServerError(msgInternal)
}

// WriteErrorResponse writes a JSON error response using the ErrorResponse
// wrapper format from pkg/api. It sets the Content-Type header and writes
// the HTTP status code.
func WriteErrorResponse(w http.ResponseWriter, apiErr *api.APIError, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(api.ErrorResponse{Error: apiErr})
}

// WriteAPIError writes an APIError response, deriving the HTTP status code
// from the error type.
func WriteAPIError(w http.ResponseWriter, apiErr *api.APIError) {
	WriteErrorResponse(w, apiErr, HTTPStatusFromError(apiErr))
}

// WriteError classifies err with StatusFromError and writes the result.
func WriteError(w http.ResponseWriter, err error) {
	status, apiErr := StatusFromError(err)
	WriteErrorResponse(w, apiErr, status)
}
