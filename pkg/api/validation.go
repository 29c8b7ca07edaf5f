package api

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"
)

// ValidationConfig holds configurable limits for request validation.
type ValidationConfig struct {
	MaxContentLength int
	MaxActivities    int
	MaxTextLength    int
}

// DefaultValidationConfig returns a ValidationConfig with sensible defaults.
func DefaultValidationConfig() ValidationConfig {
	return ValidationConfig{
		MaxContentLength: 5000,
		MaxActivities:    50,
		MaxTextLength:    20000,
	}
}

// ValidateEntryCreate checks a new diary entry. It returns an *APIError
// describing the first validation failure, or nil if the entry is valid.
func ValidateEntryCreate(e *EntryCreate, cfg ValidationConfig) *APIError {
	n := utf8.RuneCountInString(e.Content)
	if n == 0 {
		return NewInvalidRequestError("content", "content must not be empty")
	}
	if cfg.MaxContentLength > 0 && n > cfg.MaxContentLength {
		return NewInvalidRequestError("content",
			fmt.Sprintf("content exceeds maximum of %d characters", cfg.MaxContentLength))
	}

	if !IsValidMood(e.Mood) {
		return NewInvalidRequestError("mood",
			fmt.Sprintf("mood must be one of %s", strings.Join(Moods, ", ")))
	}

	if e.Timestamp < 0 {
		return NewInvalidRequestError("timestamp", "timestamp must not be negative")
	}

	if cfg.MaxActivities > 0 && len(e.Activities) > cfg.MaxActivities {
		return NewInvalidRequestError("activities",
			fmt.Sprintf("activities exceeds maximum of %d items", cfg.MaxActivities))
	}
	for i, a := range e.Activities {
		if strings.TrimSpace(a) == "" {
			return NewInvalidRequestError(fmt.Sprintf("activities[%d]", i), "activity must not be empty")
		}
	}

	return nil
}

// ValidateText checks a free-text field sent to the assistant endpoints.
func ValidateText(param, text string, cfg ValidationConfig) *APIError {
	if strings.TrimSpace(text) == "" {
		return NewInvalidRequestError(param, param+" must not be empty")
	}
	if cfg.MaxTextLength > 0 && utf8.RuneCountInString(text) > cfg.MaxTextLength {
		return NewInvalidRequestError(param,
			fmt.Sprintf("%s exceeds maximum of %d characters", param, cfg.MaxTextLength))
	}
	return nil
}

// ValidateImageURL checks that raw is an absolute http(s) URL or a data URL.
func ValidateImageURL(raw string) *APIError {
	if strings.TrimSpace(raw) == "" {
		return NewInvalidRequestError("image_url", "image_url is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return NewInvalidRequestError("image_url", "image_url is not a valid URL")
	}
	switch u.Scheme {
	case "http", "https":
		if u.Host == "" {
			return NewInvalidRequestError("image_url", "image_url must include a host")
		}
	case "data":
		// inline base64 image
	default:
		return NewInvalidRequestError("image_url", "image_url must use http, https or data scheme")
	}
	return nil
}

// ValidateUserCreate checks a registration payload.
func ValidateUserCreate(u *UserCreate) *APIError {
	if !strings.Contains(u.Email, "@") {
		return NewInvalidRequestError("email", "email must be a valid address")
	}
	if u.Password == "" {
		return NewInvalidRequestError("password", "password is required")
	}
	if strings.TrimSpace(u.Name) == "" {
		return NewInvalidRequestError("name", "name is required")
	}
	return nil
}

// ValidateUserLogin checks a login payload.
func ValidateUserLogin(u *UserLogin) *APIError {
	if u.Email == "" {
		return NewInvalidRequestError("email", "email is required")
	}
	if u.Password == "" {
		return NewInvalidRequestError("password", "password is required")
	}
	return nil
}
