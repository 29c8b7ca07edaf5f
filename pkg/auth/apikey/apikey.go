// Package apikey authenticates static bearer keys. Keys are kept only as
// SHA-256 hashes and compared in constant time.
package apikey

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"net/http"

	"github.com/diarydepresiku/moodlog/pkg/auth"
)

// Key is a configured API key and the name it authenticates as.
type Key struct {
	Name  string
	Value string
}

type hashedKey struct {
	name string
	hash [32]byte
}

// Authenticator validates bearer tokens against configured keys.
type Authenticator struct {
	keys []hashedKey
}

// New hashes keys; the plaintext is not retained. Keys with an empty
// value are ignored.
func New(keys []Key) *Authenticator {
	a := &Authenticator{}
	for _, k := range keys {
		if k.Value == "" {
			continue
		}
		a.keys = append(a.keys, hashedKey{name: k.Name, hash: sha256.Sum256([]byte(k.Value))})
	}
	return a
}

// Authenticate votes Abstain without a bearer token, Yes for a known key
// and No otherwise.
func (a *Authenticator) Authenticate(_ context.Context, r *http.Request) auth.AuthResult {
	token, ok := auth.BearerToken(r)
	if !ok {
		return auth.AuthResult{Decision: auth.Abstain}
	}
	if token == "" {
		return auth.AuthResult{Decision: auth.No, Err: auth.ErrUnauthenticated}
	}

	sum := sha256.Sum256([]byte(token))
	for _, k := range a.keys {
		if subtle.ConstantTimeCompare(sum[:], k.hash[:]) == 1 {
			return auth.AuthResult{
				Decision: auth.Yes,
				Identity: &auth.Identity{Subject: k.name, Method: "apikey"},
			}
		}
	}

	return auth.AuthResult{Decision: auth.No, Err: auth.ErrUnauthenticated}
}
