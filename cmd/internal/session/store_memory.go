package session

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store for development and tests. Records are
// kept per user in nested maps; all methods honor context cancellation so
// deadline behavior can be exercised without a real backend.
type MemoryStore struct {
	mu    sync.Mutex
	users map[string]map[string]Record
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{users: make(map[string]map[string]Record)}
}

func (s *MemoryStore) GetActiveByUser(ctx context.Context, userID string) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var recs []Record
	for _, rec := range s.users[userID] {
		if rec.Status == StatusActive {
			recs = append(recs, rec)
		}
	}
	sort.Slice(recs, func(i, j int) bool {
		if !recs[i].CreatedAt.Equal(recs[j].CreatedAt) {
			return recs[i].CreatedAt.Before(recs[j].CreatedAt)
		}
		return recs[i].DeviceID < recs[j].DeviceID
	})
	return recs, nil
}

func (s *MemoryStore) Get(ctx context.Context, userID, deviceID string) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.users[userID][deviceID]
	if !ok {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

func (s *MemoryStore) Upsert(ctx context.Context, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	devices, ok := s.users[rec.UserID]
	if !ok {
		devices = make(map[string]Record)
		s.users[rec.UserID] = devices
	}
	devices[rec.DeviceID] = rec
	return nil
}

func (s *MemoryStore) Touch(ctx context.Context, userID, deviceID string, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.users[userID][deviceID]
	if !ok || rec.Status != StatusActive {
		return nil
	}
	rec.LastSeenAt = at
	s.users[userID][deviceID] = rec
	return nil
}

func (s *MemoryStore) SetStatus(ctx context.Context, userID, deviceID string, status Status, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.users[userID][deviceID]
	if !ok {
		return ErrNotFound
	}
	rec.Status = status
	rec.StatusChangedAt = at
	s.users[userID][deviceID] = rec
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, userID, deviceID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	devices, ok := s.users[userID]
	if !ok {
		return nil
	}
	delete(devices, deviceID)
	if len(devices) == 0 {
		delete(s.users, userID)
	}
	return nil
}

func (s *MemoryStore) PurgeInactiveBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for userID, devices := range s.users {
		for deviceID, rec := range devices {
			if rec.Status.Terminal() && rec.StatusChangedAt.Before(cutoff) {
				delete(devices, deviceID)
				n++
			}
		}
		if len(devices) == 0 {
			delete(s.users, userID)
		}
	}
	return n, nil
}

func (s *MemoryStore) Close() error { return nil }
