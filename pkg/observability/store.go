package observability

import (
	"context"

	"github.com/diarydepresiku/moodlog/pkg/api"
	"github.com/diarydepresiku/moodlog/pkg/transport"
)

// instrumentedStore counts successful entry writes.
type instrumentedStore struct {
	transport.EntryStore
}

// InstrumentEntryStore wraps s so every stored entry increments
// moodlog_entries_created_total for its mood.
func InstrumentEntryStore(s transport.EntryStore) transport.EntryStore {
	return instrumentedStore{EntryStore: s}
}

func (s instrumentedStore) SaveEntry(ctx context.Context, e *api.EntryCreate) (*api.Entry, error) {
	entry, err := s.EntryStore.SaveEntry(ctx, e)
	if err != nil {
		return nil, err
	}
	EntriesCreatedTotal.WithLabelValues(entry.Mood).Inc()
	return entry, nil
}
