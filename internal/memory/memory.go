// Package memory maintains the durable, cross-session ledger of question
// lifecycle events and preference evolution. Writes go through to durable
// storage before the recency cache is touched, so a crash between the two
// never produces a cache-only phantom record. All operations fail soft:
// reads degrade to empty results and writes report success as a boolean, so
// a storage outage never aborts the surrounding conversation.
package memory

import (
	"context"
	"errors"
	"time"

	"advisor-engine/internal/config"
	"advisor-engine/internal/logging"
	"advisor-engine/internal/storage"
	"advisor-engine/internal/types"
)

// EngagementIndicators carries live engagement signals captured alongside a
// response, keyed by signal name
type EngagementIndicators map[string]float64

// EngagementScoreKey is the aggregate engagement signal used by
// effectiveness scoring
const EngagementScoreKey = "engagement_score"

// TrackOptions carries the optional inline-response fields of a tracking
// call
type TrackOptions struct {
	Response             string
	ResponseTimeMs       int64
	EngagementIndicators EngagementIndicators
}

// Memory is the question-memory service
type Memory struct {
	store  storage.RecordStore
	cache  storage.RecencyCache
	cfg    config.StorageConfig
	logger logging.Logger
}

// NewMemory creates a question-memory service. The store is required; a
// missing store is an initialization failure, never a silent degradation.
func NewMemory(store storage.RecordStore, cache storage.RecencyCache, cfg config.StorageConfig, logger logging.Logger) (*Memory, error) {
	if store == nil {
		return nil, errors.New("record store is required")
	}
	if cache == nil {
		cache = storage.NewNoopRecencyCache()
	}
	return &Memory{
		store:  store,
		cache:  cache,
		cfg:    cfg,
		logger: logger.WithComponent("memory"),
	}, nil
}

// TrackQuestion records that a question was asked (or asked and answered,
// when a response is supplied inline). Returns false on storage failure;
// the caller treats that as best-effort tracking lost and continues.
func (m *Memory) TrackQuestion(ctx context.Context, userID string, question *types.Question, sessionID string, opts *TrackOptions) bool {
	record, err := types.NewQuestionRecord(userID, sessionID, question)
	if err != nil {
		m.logger.ErrorContext(ctx, "Cannot build question record", "user_id", userID, "error", err)
		return false
	}

	if opts != nil && opts.Response != "" {
		record.Status = types.StatusAnswered
		response := opts.Response
		record.Response = &response
		if opts.ResponseTimeMs > 0 {
			rt := opts.ResponseTimeMs
			record.ResponseTimeMs = &rt
		}
		score := CalculateQuestionEffectiveness(question, opts.Response, opts.ResponseTimeMs, opts.EngagementIndicators)
		record.EffectivenessScore = &score
	}

	storeCtx, cancel := context.WithTimeout(ctx, m.cfg.QueryTimeout)
	defer cancel()
	if err := m.store.StoreRecord(storeCtx, record); err != nil {
		m.logger.WarnContext(ctx, "Question tracking write failed",
			"user_id", userID, "question_id", question.ID, "error", err)
		return false
	}

	// Write-through succeeded; the cache update is best-effort
	m.cache.Append(ctx, userID, record)
	return true
}

// UpdateQuestionResponse transitions the most recent unanswered record for
// the question to ANSWERED. Returns false when no unanswered record exists
// (a normal condition, e.g. duplicate delivery) or on storage failure.
func (m *Memory) UpdateQuestionResponse(ctx context.Context, userID, questionID, response string, responseTimeMs int64, effectivenessScore *float64) bool {
	storeCtx, cancel := context.WithTimeout(ctx, m.cfg.QueryTimeout)
	defer cancel()

	record, err := m.store.LatestUnanswered(storeCtx, userID, questionID)
	if err != nil {
		m.logger.WarnContext(ctx, "Response update lookup failed",
			"user_id", userID, "question_id", questionID, "error", err)
		return false
	}
	if record == nil {
		return false
	}

	record.Status = types.StatusAnswered
	record.Response = &response
	if responseTimeMs > 0 {
		rt := responseTimeMs
		record.ResponseTimeMs = &rt
	}
	if effectivenessScore != nil {
		record.EffectivenessScore = effectivenessScore
	} else {
		question := &types.Question{
			ID:         record.QuestionID,
			Text:       record.Text,
			Category:   record.Category,
			Complexity: types.ComplexityIntermediate,
		}
		score := CalculateQuestionEffectiveness(question, response, responseTimeMs, nil)
		record.EffectivenessScore = &score
	}

	if err := m.store.UpdateRecord(storeCtx, record); err != nil {
		m.logger.WarnContext(ctx, "Response update write failed",
			"user_id", userID, "question_id", questionID, "error", err)
		return false
	}

	// The cached copy still says ASKED; drop it so reads refetch
	m.cache.Invalidate(ctx, userID)
	return true
}

// HasQuestionBeenAsked reports whether the question appears in the user's
// history. withinDays of 0 means any historical occurrence counts, which is
// how permanent never-repeat rules are enforced; positive values implement
// cooldown-style re-asking for time-sensitive questions.
func (m *Memory) HasQuestionBeenAsked(ctx context.Context, userID, questionID string, withinDays int) bool {
	var since *time.Time
	if withinDays > 0 {
		cutoff := time.Now().UTC().AddDate(0, 0, -withinDays)
		since = &cutoff
	}

	// Cache first: recent records cover the common cooldown windows
	for _, r := range m.cache.Recent(ctx, userID) {
		if r.QuestionID != questionID {
			continue
		}
		if since == nil || !r.Timestamp.Before(*since) {
			return true
		}
	}

	storeCtx, cancel := context.WithTimeout(ctx, m.cfg.QueryTimeout)
	defer cancel()
	records, err := m.store.QueryRecords(storeCtx, &storage.RecordQuery{
		UserID:     userID,
		QuestionID: questionID,
		Since:      since,
		Limit:      1,
	})
	if err != nil {
		m.logger.WarnContext(ctx, "Asked-history read failed, assuming not asked",
			"user_id", userID, "question_id", questionID, "error", err)
		return false
	}
	return len(records) > 0
}

// GetUserQuestionHistory returns the user's tracking records newest-first.
// Category and daysBack are optional filters; storage failure degrades to
// an empty history.
func (m *Memory) GetUserQuestionHistory(ctx context.Context, userID string, category types.QuestionCategory, daysBack, limit int) []*types.QuestionRecord {
	var since *time.Time
	if daysBack > 0 {
		cutoff := time.Now().UTC().AddDate(0, 0, -daysBack)
		since = &cutoff
	}

	storeCtx, cancel := context.WithTimeout(ctx, m.cfg.QueryTimeout)
	defer cancel()
	records, err := m.store.QueryRecords(storeCtx, &storage.RecordQuery{
		UserID:   userID,
		Category: category,
		Since:    since,
		Limit:    limit,
	})
	if err != nil {
		m.logger.WarnContext(ctx, "History read failed, returning empty",
			"user_id", userID, "error", err)
		return []*types.QuestionRecord{}
	}
	return records
}

// CleanupOldRecords applies the retention policy, deleting records older
// than retentionDays. This is the only path that ever removes ledger
// entries.
func (m *Memory) CleanupOldRecords(ctx context.Context, userID string, retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		retentionDays = m.cfg.RetentionDays
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays)

	storeCtx, cancel := context.WithTimeout(ctx, m.cfg.QueryTimeout)
	defer cancel()
	deleted, err := m.store.DeleteRecordsBefore(storeCtx, userID, cutoff)
	if err != nil {
		return 0, err
	}

	if deleted > 0 {
		m.cache.Invalidate(ctx, userID)
		m.logger.InfoContext(ctx, "Retention cleanup removed records",
			"user_id", userID, "deleted", deleted, "retention_days", retentionDays)
	}
	return deleted, nil
}
