package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// AuthDecision is the vote of a single authenticator.
type AuthDecision int

const (
	// Yes: credentials are valid. The chain stops and uses the identity.
	Yes AuthDecision = iota

	// No: credentials are present but invalid. The chain stops and rejects.
	No

	// Abstain: this authenticator does not handle the credentials. The
	// chain asks the next one.
	Abstain
)

// String returns the decision name.
func (d AuthDecision) String() string {
	switch d {
	case Yes:
		return "yes"
	case No:
		return "no"
	case Abstain:
		return "abstain"
	default:
		return "unknown"
	}
}

// AuthResult carries the outcome of an authentication attempt.
type AuthResult struct {
	Decision AuthDecision
	Identity *Identity // set only when Decision == Yes
	Err      error     // set only when Decision == No
}

// Identity is an authenticated caller.
type Identity struct {
	// Subject identifies the caller: a user ID for login tokens, a key
	// name for API keys, "anonymous" when auth is off.
	Subject string

	// Email is set for users authenticated by a login token.
	Email string

	// Method names the authenticator that produced the identity.
	Method string
}

// Anonymous is the identity used when authentication is disabled.
func Anonymous() *Identity {
	return &Identity{Subject: "anonymous", Method: "none"}
}

// Authenticator examines request credentials and votes.
type Authenticator interface {
	Authenticate(ctx context.Context, r *http.Request) AuthResult
}

// Sentinel errors.
var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrInvalidToken    = errors.New("invalid token")
)

// AuthChain evaluates authenticators in order.
type AuthChain struct {
	// Authenticators are evaluated left to right.
	Authenticators []Authenticator

	// DefaultDecision applies when every authenticator abstains. Yes
	// admits the caller as Anonymous.
	DefaultDecision AuthDecision
}

// Authenticate returns the first non-Abstain vote, or the default.
func (c *AuthChain) Authenticate(ctx context.Context, r *http.Request) AuthResult {
	for _, authn := range c.Authenticators {
		if result := authn.Authenticate(ctx, r); result.Decision != Abstain {
			return result
		}
	}

	if c.DefaultDecision == Yes {
		return AuthResult{Decision: Yes, Identity: Anonymous()}
	}
	return AuthResult{Decision: No, Err: ErrUnauthenticated}
}

// BearerToken extracts the token of an "Authorization: Bearer" header.
// ok is false when the header is absent or uses another scheme.
func BearerToken(r *http.Request) (token string, ok bool) {
	header := r.Header.Get("Authorization")
	scheme, rest, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	return strings.TrimSpace(rest), true
}
