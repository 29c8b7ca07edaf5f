// Package account registers users and exchanges email/password pairs for
// login tokens. Passwords are stored as bcrypt hashes.
package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/diarydepresiku/moodlog/pkg/api"
	"github.com/diarydepresiku/moodlog/pkg/storage"
	"github.com/diarydepresiku/moodlog/pkg/transport"
)

// MaxPasswordBytes is the longest password bcrypt accepts.
const MaxPasswordBytes = 72

var (
	// ErrEmailTaken is returned by Register for an already registered email.
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidCredentials is returned by Login for an unknown email or a
	// wrong password alike.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrPasswordTooLong is returned by Register for passwords over MaxPasswordBytes.
	ErrPasswordTooLong = fmt.Errorf("password exceeds %d bytes", MaxPasswordBytes)
)

// TokenIssuer signs login tokens.
type TokenIssuer interface {
	Issue(userID int64, email string) (string, error)
}

// Service implements transport.Accounts.
type Service struct {
	users  transport.UserStore
	tokens TokenIssuer
	cost   int

	// dummyHash is compared against on unknown emails so both failure
	// paths spend the same bcrypt work.
	dummyHash []byte
}

var _ transport.Accounts = (*Service)(nil)

// New creates a Service. cost is the bcrypt cost; 0 selects bcrypt.DefaultCost.
func New(users transport.UserStore, tokens TokenIssuer, cost int) (*Service, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte("moodlog-dummy-password"), cost)
	if err != nil {
		return nil, fmt.Errorf("preparing password hasher: %w", err)
	}
	return &Service{users: users, tokens: tokens, cost: cost, dummyHash: dummy}, nil
}

// Register creates a user with a hashed password.
func (s *Service) Register(ctx context.Context, req *api.UserCreate) (*api.User, error) {
	if len(req.Password) > MaxPasswordBytes {
		return nil, ErrPasswordTooLong
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	u := &api.User{
		Email:        storage.NormalizeEmail(req.Email),
		Name:         strings.TrimSpace(req.Name),
		PasswordHash: string(hash),
	}
	if err := s.users.CreateUser(ctx, u); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}

	slog.Info("user registered", "user_id", u.ID)
	return u, nil
}

// Login checks the credentials and returns a signed token.
func (s *Service) Login(ctx context.Context, req *api.UserLogin) (string, error) {
	u, err := s.users.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			bcrypt.CompareHashAndPassword(s.dummyHash, []byte(req.Password))
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("looking up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(u.ID, u.Email)
	if err != nil {
		return "", fmt.Errorf("issuing token: %w", err)
	}
	return token, nil
}
