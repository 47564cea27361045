package storage

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"advisor-engine/internal/types"
)

// ErrStoreUnavailable is returned by the in-memory store when failure
// injection is enabled
var ErrStoreUnavailable = errors.New("record store unavailable")

// MemoryStore is an in-process RecordStore used in tests and as the
// zero-dependency fallback driver. Supports failure injection so callers'
// fail-soft paths can be exercised.
type MemoryStore struct {
	mu          sync.RWMutex
	records     []*types.QuestionRecord
	preferences []*PreferenceValue

	FailWrites bool
	FailReads  bool
}

// NewMemoryStore creates an empty in-memory record store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// StoreRecord appends a new tracking record
func (s *MemoryStore) StoreRecord(_ context.Context, record *types.QuestionRecord) error {
	if s.FailWrites {
		return ErrStoreUnavailable
	}
	if err := record.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *record
	s.records = append(s.records, &clone)
	return nil
}

// UpdateRecord rewrites an existing record in place
func (s *MemoryStore) UpdateRecord(_ context.Context, record *types.QuestionRecord) error {
	if s.FailWrites {
		return ErrStoreUnavailable
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.records {
		if existing.ID == record.ID {
			clone := *record
			s.records[i] = &clone
			return nil
		}
	}
	return errors.New("question record not found")
}

// LatestUnanswered returns the most recent ASKED record for the question
func (s *MemoryStore) LatestUnanswered(_ context.Context, userID, questionID string) (*types.QuestionRecord, error) {
	if s.FailReads {
		return nil, ErrStoreUnavailable
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	var latest *types.QuestionRecord
	for _, r := range s.records {
		if r.UserID != userID || r.QuestionID != questionID || r.Status != types.StatusAsked {
			continue
		}
		if latest == nil || r.Timestamp.After(latest.Timestamp) {
			latest = r
		}
	}
	if latest == nil {
		return nil, nil
	}
	clone := *latest
	return &clone, nil
}

// QueryRecords returns matching records sorted newest-first
func (s *MemoryStore) QueryRecords(_ context.Context, query *RecordQuery) ([]*types.QuestionRecord, error) {
	if s.FailReads {
		return nil, ErrStoreUnavailable
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	var matched []*types.QuestionRecord
	for _, r := range s.records {
		if r.UserID != query.UserID {
			continue
		}
		if query.QuestionID != "" && r.QuestionID != query.QuestionID {
			continue
		}
		if query.Category != "" && r.Category != query.Category {
			continue
		}
		if query.Since != nil && r.Timestamp.Before(*query.Since) {
			continue
		}
		clone := *r
		matched = append(matched, &clone)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Timestamp.After(matched[j].Timestamp)
	})
	if query.Limit > 0 && len(matched) > query.Limit {
		matched = matched[:query.Limit]
	}
	return matched, nil
}

// QueryByPattern returns records across all users whose question ID or
// category matches the pattern, newest-first
func (s *MemoryStore) QueryByPattern(_ context.Context, pattern string, limit int) ([]*types.QuestionRecord, error) {
	if s.FailReads {
		return nil, ErrStoreUnavailable
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	var matched []*types.QuestionRecord
	for _, r := range s.records {
		if r.QuestionID != pattern && string(r.Category) != pattern {
			continue
		}
		clone := *r
		matched = append(matched, &clone)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Timestamp.After(matched[j].Timestamp)
	})
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

// StorePreferenceValue appends an observed preference value
func (s *MemoryStore) StorePreferenceValue(_ context.Context, value *PreferenceValue) error {
	if s.FailWrites {
		return ErrStoreUnavailable
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *value
	s.preferences = append(s.preferences, &clone)
	return nil
}

// PreferenceHistory returns observed values for a key, newest-first
func (s *MemoryStore) PreferenceHistory(_ context.Context, userID, key string, limit int) ([]*PreferenceValue, error) {
	if s.FailReads {
		return nil, ErrStoreUnavailable
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	var matched []*PreferenceValue
	for _, v := range s.preferences {
		if v.UserID == userID && v.Key == key {
			clone := *v
			matched = append(matched, &clone)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].RecordedAt.After(matched[j].RecordedAt)
	})
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

// DeleteRecordsBefore removes records older than the cutoff
func (s *MemoryStore) DeleteRecordsBefore(_ context.Context, userID string, cutoff time.Time) (int64, error) {
	if s.FailWrites {
		return 0, ErrStoreUnavailable
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	var kept []*types.QuestionRecord
	var deleted int64
	for _, r := range s.records {
		if r.UserID == userID && r.Timestamp.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, r)
	}
	s.records = kept
	return deleted, nil
}

// Close is a no-op for the in-memory store
func (s *MemoryStore) Close() error { return nil }
