// Package noop provides an authenticator that admits every request as the
// anonymous identity. It backs auth.type "none".
package noop

import (
	"context"
	"net/http"

	"github.com/diarydepresiku/moodlog/pkg/auth"
)

// Authenticator always votes Yes.
type Authenticator struct{}

// Authenticate returns the anonymous identity.
func (Authenticator) Authenticate(_ context.Context, _ *http.Request) auth.AuthResult {
	return auth.AuthResult{Decision: auth.Yes, Identity: auth.Anonymous()}
}
