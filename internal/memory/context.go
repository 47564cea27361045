package memory

import (
	"context"
	"strings"
	"time"

	"advisor-engine/internal/types"
)

// LiveSignals carries the per-turn inputs the dialogue owner supplies when
// a user context is assembled. Everything else in the context is derived
// from the ledger.
type LiveSignals struct {
	SessionID         string
	Stage             types.ConversationStage
	EngagementLevel   float64
	KnownPreferences  map[types.QuestionCategory]types.UserPreference
	FatigueIndicators map[string]bool
}

// contextHistoryLimit bounds how much ledger history one context rebuild
// reads
const contextHistoryLimit = 200

// recentTopicWindow bounds the recent-topics list on the context
const recentTopicWindow = 5

// BuildUserContext assembles the ephemeral per-turn scoring context from
// the user's ledger history plus the supplied live signals. The context is
// never persisted; it is rebuilt on every selection call.
func (m *Memory) BuildUserContext(ctx context.Context, userID string, signals LiveSignals) *types.UserContext {
	records := m.GetUserQuestionHistory(ctx, userID, "", 0, contextHistoryLimit)

	uc := &types.UserContext{
		UserID:            userID,
		SessionID:         signals.SessionID,
		ConversationStage: signals.Stage,
		KnownPreferences:  signals.KnownPreferences,
		EngagementLevel:   clamp01(signals.EngagementLevel),
		FatigueIndicators: signals.FatigueIndicators,
		AskedQuestionIDs:  map[string]bool{},
		CategoryLastAsked: map[types.QuestionCategory]time.Time{},
		SessionCategories: map[types.QuestionCategory]int{},
	}
	if uc.KnownPreferences == nil {
		uc.KnownPreferences = map[types.QuestionCategory]types.UserPreference{}
	}
	if uc.FatigueIndicators == nil {
		uc.FatigueIndicators = map[string]bool{}
	}

	var answered, totalWords int
	var answeredCount int

	// Records arrive newest-first
	for _, r := range records {
		uc.AskedQuestionIDs[r.QuestionID] = true

		if uc.LastQuestionTimestamp == nil {
			ts := r.Timestamp
			uc.LastQuestionTimestamp = &ts
		}
		if len(uc.LastAskedQuestionIDs) < 3 {
			uc.LastAskedQuestionIDs = append(uc.LastAskedQuestionIDs, r.QuestionID)
		}
		if existing, seen := uc.CategoryLastAsked[r.Category]; !seen || r.Timestamp.After(existing) {
			uc.CategoryLastAsked[r.Category] = r.Timestamp
		}
		if len(uc.RecentTopics) < recentTopicWindow {
			uc.RecentTopics = append(uc.RecentTopics, r.Category)
		}

		if r.SessionID == signals.SessionID {
			uc.SessionQuestionCount++
			uc.SessionCategories[r.Category]++
		}

		if r.Answered() {
			answered++
			if r.Response != nil {
				totalWords += len(strings.Fields(*r.Response))
				answeredCount++
			}
		}
	}

	if len(records) > 0 {
		uc.ResponsePatterns.ResponseRate = float64(answered) / float64(len(records))
	}
	if answeredCount > 0 {
		uc.ResponsePatterns.AvgResponseWords = float64(totalWords) / float64(answeredCount)
	}
	uc.ResponsePatterns.PreferredComplexity = preferredComplexity(uc.ResponsePatterns.AvgResponseWords)

	return uc
}

// preferredComplexity infers how demanding a question the user tends to
// engage with from their average answer length
func preferredComplexity(avgWords float64) types.QuestionComplexity {
	switch {
	case avgWords > 15:
		return types.ComplexityOpen
	case avgWords > 8:
		return types.ComplexityAdvanced
	case avgWords > 3:
		return types.ComplexityIntermediate
	default:
		return types.ComplexityBasic
	}
}
