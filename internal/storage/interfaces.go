// Package storage provides the durable ledger and recency-cache
// abstractions behind question memory, with PostgreSQL, SQLite and
// in-memory implementations.
package storage

import (
	"context"
	"time"

	"advisor-engine/internal/types"
)

// RecordQuery filters ledger reads. Zero-value fields are ignored.
type RecordQuery struct {
	UserID     string
	QuestionID string
	Category   types.QuestionCategory
	Since      *time.Time
	Limit      int
}

// PreferenceValue is one recorded observation of a preference key
type PreferenceValue struct {
	UserID     string    `json:"user_id"`
	Key        string    `json:"key"`
	Value      string    `json:"value"`
	RecordedAt time.Time `json:"recorded_at"`
}

// RecordStore is the durable question-record ledger. Reads return empty
// results for missing data; errors indicate storage failure. Callers decide
// how to degrade on failure.
type RecordStore interface {
	// StoreRecord appends a new tracking record
	StoreRecord(ctx context.Context, record *types.QuestionRecord) error

	// UpdateRecord rewrites an existing record after the asked→answered transition
	UpdateRecord(ctx context.Context, record *types.QuestionRecord) error

	// LatestUnanswered returns the most recent ASKED record for the
	// question, or nil when every record is already answered
	LatestUnanswered(ctx context.Context, userID, questionID string) (*types.QuestionRecord, error)

	// QueryRecords returns matching records sorted newest-first
	QueryRecords(ctx context.Context, query *RecordQuery) ([]*types.QuestionRecord, error)

	// QueryByPattern returns records across all users whose question ID or
	// category matches the pattern tag, newest-first. Used for mining
	// effective question patterns; pattern is a plain tag, not a query
	// language.
	QueryByPattern(ctx context.Context, pattern string, limit int) ([]*types.QuestionRecord, error)

	// StorePreferenceValue appends an observed preference value
	StorePreferenceValue(ctx context.Context, value *PreferenceValue) error

	// PreferenceHistory returns observed values for a key, newest-first
	PreferenceHistory(ctx context.Context, userID, key string, limit int) ([]*PreferenceValue, error)

	// DeleteRecordsBefore removes records older than the cutoff, returning
	// the number deleted. Used only by retention cleanup.
	DeleteRecordsBefore(ctx context.Context, userID string, cutoff time.Time) (int64, error)

	// Close releases the underlying connection
	Close() error
}

// RecencyCache is a best-effort per-user cache over recent records. It is
// purely an optimization: correctness must hold with the cache disabled.
type RecencyCache interface {
	// Append adds a record to the user's recent list, trimming to the bound
	Append(ctx context.Context, userID string, record *types.QuestionRecord)

	// Recent returns cached records newest-first, or nil on a cold cache
	Recent(ctx context.Context, userID string) []*types.QuestionRecord

	// Invalidate drops the user's cached list
	Invalidate(ctx context.Context, userID string)
}
