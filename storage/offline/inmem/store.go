package inmem

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/trezcool/nabha/offline"
)

// Store is an offline.Store kept in memory, used by tests and ephemeral runs.
type Store struct {
	mu       sync.RWMutex
	content  map[string]offline.ContentRecord
	progress map[string]offline.ProgressRecord
	queue    []offline.Entry
	lastID   int64

	// FailWrites makes every write fail with the returned error when non-nil. mockable
	FailWrites func(op string) error
}

var _ offline.Store = (*Store)(nil) // interface compliance check

func New() *Store {
	return &Store{
		content:  make(map[string]offline.ContentRecord),
		progress: make(map[string]offline.ProgressRecord),
	}
}

func (s *Store) Init(context.Context) error { return nil }

func (s *Store) fail(op string) error {
	if s.FailWrites != nil {
		return s.FailWrites(op)
	}
	return nil
}

func (s *Store) StoreContent(_ context.Context, items []offline.ContentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range items {
		if err := s.fail("content"); err != nil {
			return err
		}
		s.content[item.ID] = item
	}
	return nil
}

func (s *Store) sortedContent(keep func(offline.ContentRecord) bool) []offline.ContentRecord {
	items := make([]offline.ContentRecord, 0, len(s.content))
	for _, item := range s.content {
		if keep(item) {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items
}

func (s *Store) GetOfflineContent(context.Context) ([]offline.ContentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedContent(func(offline.ContentRecord) bool { return true }), nil
}

func (s *Store) GetContentByCategory(_ context.Context, categoryID string) ([]offline.ContentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedContent(func(item offline.ContentRecord) bool { return item.CategoryID == categoryID }), nil
}

func (s *Store) StoreProgress(_ context.Context, rec offline.ProgressRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("progress"); err != nil {
		return err
	}
	rec = rec.Keyed()
	s.progress[rec.ID] = rec
	return nil
}

func (s *Store) GetStoredProgress(_ context.Context, studentID string) ([]offline.ProgressRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	recs := make([]offline.ProgressRecord, 0)
	for _, rec := range s.progress {
		if rec.StudentID == studentID {
			recs = append(recs, rec)
		}
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].ID < recs[j].ID })
	return recs, nil
}

func (s *Store) QueueSync(_ context.Context, p offline.Payload) (offline.Entry, error) {
	if _, _, err := offline.EncodePayload(p); err != nil {
		return offline.Entry{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("sync_queue"); err != nil {
		return offline.Entry{}, err
	}
	s.lastID++
	entry := offline.Entry{
		ID:        s.lastID,
		Payload:   p,
		Timestamp: time.Now().UnixNano() / int64(time.Millisecond),
	}
	s.queue = append(s.queue, entry)
	return entry, nil
}

func (s *Store) GetSyncQueue(context.Context) ([]offline.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := make([]offline.Entry, len(s.queue))
	copy(entries, s.queue)
	return entries, nil
}

func (s *Store) ClearSyncQueue(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("sync_queue"); err != nil {
		return err
	}
	s.queue = nil
	return nil
}

func (s *Store) ClearSyncQueueThrough(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("sync_queue"); err != nil {
		return err
	}
	kept := s.queue[:0]
	for _, entry := range s.queue {
		if entry.ID > id {
			kept = append(kept, entry)
		}
	}
	s.queue = kept
	return nil
}

func (s *Store) Close() error { return nil }
