package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/diarydepresiku/moodlog/pkg/api"
	"github.com/diarydepresiku/moodlog/pkg/assist"
	"github.com/diarydepresiku/moodlog/pkg/storage"
)

func TestHTTPStatusFromError(t *testing.T) {
	tests := []struct {
		name       string
		errType    api.ErrorType
		wantStatus int
	}{
		{"invalid_request -> 400", api.ErrorTypeInvalidRequest, http.StatusBadRequest},
		{"not_found -> 404", api.ErrorTypeNotFound, http.StatusNotFound},
		{"conflict -> 400", api.ErrorTypeConflict, http.StatusBadRequest},
		{"unauthorized -> 401", api.ErrorTypeUnauthorized, http.StatusUnauthorized},
		{"upstream -> 502", api.ErrorTypeUpstream, http.StatusBadGateway},
		{"server_error -> 500", api.ErrorTypeServerError, http.StatusInternalServerError},
		{"unknown type -> 500", api.ErrorType("unknown"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := &api.APIError{Type: tt.errType, Message: "test"}
			got := HTTPStatusFromError(err)
			if got != tt.wantStatus {
				t.Errorf("HTTPStatusFromError(%q) = %d, want %d", tt.errType, got, tt.wantStatus)
			}
		})
	}
}

func TestStatusFromError(t *testing.T) {
	secret := "raw provider output with secrets"

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   api.ErrorType
	}{
		{
			name:       "missing credential -> 500",
			err:        &assist.Error{Kind: assist.KindMissingCredential, Task: "caption"},
			wantStatus: http.StatusInternalServerError,
			wantType:   api.ErrorTypeServerError,
		},
		{
			name:       "provider call -> 502",
			err:        &assist.Error{Kind: assist.KindProviderCall, Task: "sentiment", Cause: errors.New("timeout")},
			wantStatus: http.StatusBadGateway,
			wantType:   api.ErrorTypeUpstream,
		},
		{
			name:       "no payload -> 502",
			err:        &assist.Error{Kind: assist.KindNoPayload, Task: "extract"},
			wantStatus: http.StatusBadGateway,
			wantType:   api.ErrorTypeUpstream,
		},
		{
			name:       "malformed response -> 502",
			err:        &assist.Error{Kind: assist.KindMalformedResponse, Task: "articles", Raw: secret},
			wantStatus: http.StatusBadGateway,
			wantType:   api.ErrorTypeUpstream,
		},
		{
			name:       "wrapped assist error",
			err:        fmt.Errorf("handler: %w", &assist.Error{Kind: assist.KindMalformedResponse, Task: "chat_analysis"}),
			wantStatus: http.StatusBadGateway,
			wantType:   api.ErrorTypeUpstream,
		},
		{
			name:       "storage not found -> 404",
			err:        fmt.Errorf("get entry 7: %w", storage.ErrNotFound),
			wantStatus: http.StatusNotFound,
			wantType:   api.ErrorTypeNotFound,
		},
		{
			name:       "api error keeps its type",
			err:        api.NewInvalidRequestError("mood", "bad mood"),
			wantStatus: http.StatusBadRequest,
			wantType:   api.ErrorTypeInvalidRequest,
		},
		{
			name:       "unknown error -> 500",
			err:        errors.New("connection reset"),
			wantStatus: http.StatusInternalServerError,
			wantType:   api.ErrorTypeServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, apiErr := StatusFromError(tt.err)
			if status != tt.wantStatus {
				t.Errorf("status = %d, want %d", status, tt.wantStatus)
			}
			if apiErr.Type != tt.wantType {
				t.Errorf("type = %q, want %q", apiErr.Type, tt.wantType)
			}
			if strings.Contains(apiErr.Message, secret) {
				t.Errorf("message leaks raw provider output: %q", apiErr.Message)
			}
			if strings.Contains(apiErr.Message, "connection reset") {
				t.Errorf("message leaks internal error: %q", apiErr.Message)
			}
		})
	}
}

func TestWriteErrorResponse(t *testing.T) {
	apiErr := api.NewInvalidRequestError("content", "is required")
	rec := httptest.NewRecorder()

	WriteErrorResponse(rec, apiErr, http.StatusBadRequest)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status code = %d, want %d", rec.Code, http.StatusBadRequest)
	}

	ct := rec.Header().Get("Content-Type")
	if ct != "application/json" {
		t.Errorf("Content-Type = %q, want %q", ct, "application/json")
	}

	var resp api.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if resp.Error.Type != api.ErrorTypeInvalidRequest {
		t.Errorf("error type = %q, want %q", resp.Error.Type, api.ErrorTypeInvalidRequest)
	}
	if resp.Error.Param != "content" {
		t.Errorf("error param = %q, want %q", resp.Error.Param, "content")
	}
}

func TestWriteAPIError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteAPIError(rec, api.NewNotFoundError("entry 3 not found"))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status code = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, &assist.Error{Kind: assist.KindProviderCall, Task: "caption"})

	if rec.Code != http.StatusBadGateway {
		t.Errorf("status code = %d, want %d", rec.Code, http.StatusBadGateway)
	}

	var resp api.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Error.Message != msgUpstream {
		t.Errorf("message = %q, want %q", resp.Error.Message, msgUpstream)
	}
}
