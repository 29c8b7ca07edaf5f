// Package jwt issues and verifies the HS256 login tokens handed out by
// /login/. Tokens carry the user ID as "sub", the email and an expiry.
package jwt

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"

	"github.com/diarydepresiku/moodlog/pkg/auth"
	"github.com/diarydepresiku/moodlog/pkg/debug"
)

// DefaultTTL is the lifetime of an issued token.
const DefaultTTL = 24 * time.Hour

// MinSecretLength is the shortest accepted signing secret in bytes.
const MinSecretLength = 32

// Config holds token settings.
type Config struct {
	// Secret is the HMAC signing key. When empty a random per-process
	// secret is generated and tokens do not survive a restart.
	Secret string

	// Issuer is written to and required in the "iss" claim. Default "moodlog".
	Issuer string

	// TTL is the token lifetime. Default 24h.
	TTL time.Duration
}

// Claims are the registered claims plus the user's email.
type Claims struct {
	Email string `json:"email"`
	jwtlib.RegisteredClaims
}

// Manager signs and verifies tokens. It implements auth.Authenticator.
type Manager struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

var _ auth.Authenticator = (*Manager)(nil)

// New creates a Manager. It fails when a configured secret is shorter
// than MinSecretLength.
func New(cfg Config) (*Manager, error) {
	if cfg.Issuer == "" {
		cfg.Issuer = "moodlog"
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}

	secret := []byte(cfg.Secret)
	switch {
	case len(secret) == 0:
		secret = make([]byte, MinSecretLength)
		if _, err := rand.Read(secret); err != nil {
			return nil, fmt.Errorf("generating token secret: %w", err)
		}
		slog.Warn("no token secret configured, using a random secret; tokens will not survive a restart")
	case len(secret) < MinSecretLength:
		return nil, fmt.Errorf("token secret must be at least %d bytes, got %d", MinSecretLength, len(secret))
	}

	return &Manager{
		secret: secret,
		issuer: cfg.Issuer,
		ttl:    cfg.TTL,
		now:    time.Now,
	}, nil
}

// Issue signs a token for the given user.
func (m *Manager) Issue(userID int64, email string) (string, error) {
	now := m.now()
	claims := Claims{
		Email: email,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			Issuer:    m.issuer,
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(m.ttl)),
		},
	}
	token, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return token, nil
}

// Verify parses and validates a token string.
func (m *Manager) Verify(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwtlib.ParseWithClaims(tokenStr, claims, func(*jwtlib.Token) (any, error) {
		return m.secret, nil
	},
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
		jwtlib.WithIssuer(m.issuer),
		jwtlib.WithExpirationRequired(),
		jwtlib.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", auth.ErrInvalidToken, err)
	}
	if !token.Valid || claims.Subject == "" {
		return nil, auth.ErrInvalidToken
	}
	return claims, nil
}

// Authenticate votes Abstain without a bearer token, Yes for a valid
// token and No otherwise.
func (m *Manager) Authenticate(_ context.Context, r *http.Request) auth.AuthResult {
	tokenStr, ok := auth.BearerToken(r)
	if !ok {
		return auth.AuthResult{Decision: auth.Abstain}
	}
	if tokenStr == "" {
		return auth.AuthResult{Decision: auth.No, Err: errors.New("empty bearer token")}
	}

	claims, err := m.Verify(tokenStr)
	if err != nil {
		debug.Log("auth", "token rejected", "error", err)
		return auth.AuthResult{Decision: auth.No, Err: err}
	}

	return auth.AuthResult{
		Decision: auth.Yes,
		Identity: &auth.Identity{Subject: claims.Subject, Email: claims.Email, Method: "jwt"},
	}
}
