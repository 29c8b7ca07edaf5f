// Package memory provides in-memory implementations of transport.EntryStore
// and transport.UserStore for tests and single-process deployments. Data
// is lost when the process exits. An optional cap evicts the oldest
// entries once reached.
package memory

import (
	"container/list"
	"context"
	"sort"
	"sync"
	"time"

	"github.com/diarydepresiku/moodlog/pkg/api"
	"github.com/diarydepresiku/moodlog/pkg/storage"
	"github.com/diarydepresiku/moodlog/pkg/transport"
)

// Store keeps entries and users in maps guarded by one RWMutex.
type Store struct {
	mu sync.RWMutex

	entries map[int64]*list.Element // value: *api.Entry
	order   *list.List              // insertion order, front = oldest
	nextID  int64
	maxSize int

	users      map[string]*api.User // keyed by normalized email
	nextUserID int64
}

var (
	_ transport.EntryStore = (*Store)(nil)
	_ transport.UserStore  = (*Store)(nil)
)

// New creates an empty store. When maxSize > 0 the oldest entry is
// evicted once the store holds maxSize entries.
func New(maxSize int) *Store {
	return &Store{
		entries: make(map[int64]*list.Element),
		order:   list.New(),
		maxSize: maxSize,
		users:   make(map[string]*api.User),
	}
}

// SaveEntry stores a copy of e under the next ID.
func (s *Store) SaveEntry(_ context.Context, e *api.EntryCreate) (*api.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.maxSize > 0 && len(s.entries) >= s.maxSize {
		s.evictOldest()
	}

	s.nextID++
	stored := api.NewEntry(s.nextID, e)
	s.entries[stored.ID] = s.order.PushBack(stored)

	return cloneEntry(stored), nil
}

// GetEntry returns the entry with the given ID.
func (s *Store) GetEntry(_ context.Context, id int64) (*api.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	elem, ok := s.entries[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return cloneEntry(elem.Value.(*api.Entry)), nil
}

// ListEntries returns entries newest first, by timestamp then ID.
func (s *Store) ListEntries(_ context.Context, opts transport.ListOptions) ([]*api.Entry, error) {
	opts = opts.Normalize()

	s.mu.RLock()
	all := make([]*api.Entry, 0, len(s.entries))
	for elem := s.order.Front(); elem != nil; elem = elem.Next() {
		all = append(all, elem.Value.(*api.Entry))
	}
	s.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if all[i].Timestamp != all[j].Timestamp {
			return all[i].Timestamp > all[j].Timestamp
		}
		return all[i].ID > all[j].ID
	})

	if opts.Skip >= len(all) {
		return []*api.Entry{}, nil
	}
	all = all[opts.Skip:]
	if len(all) > opts.Limit {
		all = all[:opts.Limit]
	}

	result := make([]*api.Entry, len(all))
	for i, e := range all {
		result[i] = cloneEntry(e)
	}
	return result, nil
}

// MoodStats counts entries per mood.
func (s *Store) MoodStats(_ context.Context) (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := make(map[string]int)
	for elem := s.order.Front(); elem != nil; elem = elem.Next() {
		stats[elem.Value.(*api.Entry).Mood]++
	}
	return stats, nil
}

// CreateUser stores u, assigning its ID and creation time.
func (s *Store) CreateUser(_ context.Context, u *api.User) error {
	key := storage.NormalizeEmail(u.Email)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[key]; exists {
		return storage.ErrConflict
	}

	s.nextUserID++
	u.ID = s.nextUserID
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	stored := *u
	s.users[key] = &stored
	return nil
}

// GetUserByEmail looks a user up case-insensitively.
func (s *Store) GetUserByEmail(_ context.Context, email string) (*api.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[storage.NormalizeEmail(email)]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

// HealthCheck always returns nil for the in-memory store.
func (s *Store) HealthCheck(_ context.Context) error {
	return nil
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() error {
	return nil
}

// evictOldest removes the earliest inserted entry. Must be called with s.mu held.
func (s *Store) evictOldest() {
	front := s.order.Front()
	if front == nil {
		return
	}
	s.order.Remove(front)
	delete(s.entries, front.Value.(*api.Entry).ID)
}

func cloneEntry(e *api.Entry) *api.Entry {
	cp := *e
	cp.Activities = append([]string{}, e.Activities...)
	return &cp
}
