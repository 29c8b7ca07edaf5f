package transport

import (
	"context"

	"github.com/diarydepresiku/moodlog/pkg/api"
)

// Listing defaults for entries.
const (
	DefaultListLimit = 100
	MaxListLimit     = 1000
)

// ListOptions controls offset pagination of entry listings.
type ListOptions struct {
	Skip  int // Number of entries to skip from the newest.
	Limit int // Maximum number of entries to return (default 100, max 1000).
}

// Normalize clamps the options to valid values.
func (o ListOptions) Normalize() ListOptions {
	if o.Skip < 0 {
		o.Skip = 0
	}
	if o.Limit <= 0 {
		o.Limit = DefaultListLimit
	}
	if o.Limit > MaxListLimit {
		o.Limit = MaxListLimit
	}
	return o
}

// EntryStore persists diary entries.
type EntryStore interface {
	// SaveEntry stores a new entry and returns it with its assigned ID.
	SaveEntry(ctx context.Context, e *api.EntryCreate) (*api.Entry, error)

	// GetEntry returns the entry with the given ID or storage.ErrNotFound.
	GetEntry(ctx context.Context, id int64) (*api.Entry, error)

	// ListEntries returns entries newest first (timestamp, then ID).
	ListEntries(ctx context.Context, opts ListOptions) ([]*api.Entry, error)

	// MoodStats counts entries per mood. Moods without entries are absent.
	MoodStats(ctx context.Context) (map[string]int, error)

	// HealthCheck verifies the store is usable.
	HealthCheck(ctx context.Context) error

	// Close releases connections and resources.
	Close() error
}

// UserStore persists user accounts.
type UserStore interface {
	// CreateUser stores u and assigns its ID. Returns storage.ErrConflict
	// when the email is already registered (case-insensitive).
	CreateUser(ctx context.Context, u *api.User) error

	// GetUserByEmail looks a user up case-insensitively. Returns
	// storage.ErrNotFound when absent.
	GetUserByEmail(ctx context.Context, email string) (*api.User, error)
}

// Assistant runs the LLM-backed tasks. Errors are classified task
// failures from the assist package.
type Assistant interface {
	Caption(ctx context.Context, imageURL string) (string, error)
	GenerateArticles(ctx context.Context, seed string) ([]api.ArticleSuggestion, error)
	Analyze(ctx context.Context, text string) (string, error)
	Chat(ctx context.Context, text, history, mood string) (string, error)
}

// Accounts registers users and issues login tokens.
type Accounts interface {
	Register(ctx context.Context, req *api.UserCreate) (*api.User, error)
	Login(ctx context.Context, req *api.UserLogin) (string, error)
}
