package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"advisor-engine/internal/catalog"
	"advisor-engine/internal/storage"
	"advisor-engine/internal/types"
)

// Keyword sets for effectiveness scoring. Matching is substring-based on
// the lowercased response, the same approach the conflict rules use.
var (
	preferenceKeywords = []string{
		"prefer", "like", "love", "want", "need", "important", "must",
		"hate", "avoid", "budget", "family", "definitely not", "ideally",
	}
	positiveSentimentKeywords = []string{
		"great", "love", "perfect", "definitely", "absolutely", "excited",
		"yes!", "sounds good", "exactly",
	}
	followUpCues = []string{"?", "what about", "how about", "tell me more"}
)

// CalculateQuestionEffectiveness scores how useful a question/answer
// exchange was, in [0,1]. The score is a deterministic weighted sum over
// response length, response latency, engagement signals and response
// content. Negative latencies are clamped to zero before scoring.
func CalculateQuestionEffectiveness(question *types.Question, response string, responseTimeMs int64, indicators EngagementIndicators) float64 {
	// Any answer at all carries a little signal
	score := 0.1

	words := len(strings.Fields(response))
	switch {
	case words > 15:
		score += 0.3
	case words > 8:
		score += 0.2
	case words > 3:
		score += 0.1
	}

	if responseTimeMs < 0 {
		responseTimeMs = 0
	}
	switch {
	case responseTimeMs > 30000:
		// Very slow answers tend to be considered ones
		score += 0.3
	case responseTimeMs >= 3000 && responseTimeMs <= 15000:
		score += 0.2
	case responseTimeMs > 0 && responseTimeMs < 2000:
		score -= 0.1
	}

	if engagement, ok := indicators[EngagementScoreKey]; ok {
		score += clamp01(engagement) * 0.2
	}

	lower := strings.ToLower(response)
	if containsAny(lower, preferenceKeywords) {
		score += 0.2
	}
	if containsAny(lower, positiveSentimentKeywords) {
		score += 0.1
	}
	if containsAny(lower, followUpCues) {
		score += 0.1
	}

	return clamp01(score)
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// DetectPreferenceChanges compares a new preference value against the most
// recently recorded one. A structurally equal value is a no-op and returns
// nil; the first observation of a key records it and also returns nil. A
// genuine change records the new value and returns an evolution whose
// confidence that the preference is still in flux grows with churn.
func (m *Memory) DetectPreferenceChanges(ctx context.Context, userID, preferenceKey, newValue string) *types.PreferenceEvolution {
	normalized := strings.TrimSpace(newValue)
	if normalized == "" {
		return nil
	}

	storeCtx, cancel := context.WithTimeout(ctx, m.cfg.QueryTimeout)
	defer cancel()

	history, err := m.store.PreferenceHistory(storeCtx, userID, preferenceKey, 50)
	if err != nil {
		m.logger.WarnContext(ctx, "Preference history read failed",
			"user_id", userID, "key", preferenceKey, "error", err)
		return nil
	}

	if len(history) > 0 && strings.EqualFold(strings.TrimSpace(history[0].Value), normalized) {
		return nil
	}

	record := &storage.PreferenceValue{
		UserID:     userID,
		Key:        preferenceKey,
		Value:      normalized,
		RecordedAt: time.Now().UTC(),
	}
	if err := m.store.StorePreferenceValue(storeCtx, record); err != nil {
		m.logger.WarnContext(ctx, "Preference value write failed",
			"user_id", userID, "key", preferenceKey, "error", err)
		return nil
	}

	if len(history) == 0 {
		// First observation, nothing evolved yet
		return nil
	}

	changeCount := len(history)
	return &types.PreferenceEvolution{
		UserID:          userID,
		PreferenceKey:   preferenceKey,
		PreviousValue:   history[0].Value,
		NewValue:        normalized,
		ChangeCount:     changeCount,
		ConfidenceScore: evolutionConfidence(changeCount),
		DetectedAt:      record.RecordedAt,
	}
}

// evolutionConfidence grows with observed churn and saturates at 0.9
func evolutionConfidence(changeCount int) float64 {
	confidence := 0.5 + float64(changeCount)*0.1
	if confidence > 0.9 {
		confidence = 0.9
	}
	return confidence
}

// Example responses carried per mined pattern
const maxPatternExamples = 3

// FindEffectivePatterns mines the cross-user ledger for question templates
// whose average effectiveness reaches minEffectiveness. The pattern is a
// plain question ID or category tag. Results are candidates for
// Catalog.IngestEffectivePattern, sorted best-first. Storage failure
// degrades to an empty result.
func (m *Memory) FindEffectivePatterns(ctx context.Context, pattern string, minEffectiveness float64, limit int) []*catalog.EffectivePattern {
	storeCtx, cancel := context.WithTimeout(ctx, m.cfg.QueryTimeout)
	defer cancel()

	records, err := m.store.QueryByPattern(storeCtx, pattern, 500)
	if err != nil {
		m.logger.WarnContext(ctx, "Pattern query failed",
			"pattern", pattern, "error", err)
		return nil
	}

	type templateStats struct {
		category types.QuestionCategory
		total    float64
		count    int
		examples []string
	}
	perTemplate := map[string]*templateStats{}

	for _, r := range records {
		if r.Status != types.StatusAnswered || r.EffectivenessScore == nil {
			continue
		}
		text := strings.TrimSpace(r.Text)
		if text == "" {
			continue
		}
		ts := perTemplate[text]
		if ts == nil {
			ts = &templateStats{category: r.Category}
			perTemplate[text] = ts
		}
		ts.total += *r.EffectivenessScore
		ts.count++
		if r.Response != nil && len(ts.examples) < maxPatternExamples {
			ts.examples = append(ts.examples, *r.Response)
		}
	}

	patterns := make([]*catalog.EffectivePattern, 0, len(perTemplate))
	for text, ts := range perTemplate {
		avg := ts.total / float64(ts.count)
		if avg < minEffectiveness {
			continue
		}
		patterns = append(patterns, &catalog.EffectivePattern{
			TemplateText:       text,
			Category:           ts.category,
			EffectivenessScore: avg,
			ExampleResponses:   ts.examples,
		})
	}

	sort.Slice(patterns, func(i, j int) bool {
		if patterns[i].EffectivenessScore != patterns[j].EffectivenessScore {
			return patterns[i].EffectivenessScore > patterns[j].EffectivenessScore
		}
		return patterns[i].TemplateText < patterns[j].TemplateText
	})
	if limit > 0 && len(patterns) > limit {
		patterns = patterns[:limit]
	}
	return patterns
}

// Insight keys returned by GetCrossSessionInsights
const (
	InsightCategoryFrequency     = "category_frequency"
	InsightTopQuestions          = "top_effective_questions"
	InsightAvgResponseTimeMs     = "avg_response_time_ms"
	InsightTotalSessions         = "total_sessions"
	InsightQuestionsPerSession   = "questions_per_session"
	InsightCategoryEffectiveness = "category_effectiveness"
)

// GetCrossSessionInsights aggregates the user's history into the derived
// measures the strategy's novelty scoring consumes. Storage failure
// degrades to an empty map.
func (m *Memory) GetCrossSessionInsights(ctx context.Context, userID string) map[string]any {
	records := m.GetUserQuestionHistory(ctx, userID, "", 0, 500)
	insights := map[string]any{}
	if len(records) == 0 {
		return insights
	}

	categoryFreq := map[types.QuestionCategory]int{}
	sessions := map[string]bool{}
	var totalResponseTime int64
	var timedResponses int64

	type questionStats struct {
		total float64
		count int
	}
	perQuestion := map[string]*questionStats{}
	perCategory := map[types.QuestionCategory]*questionStats{}

	for _, r := range records {
		categoryFreq[r.Category]++
		sessions[r.SessionID] = true

		if r.ResponseTimeMs != nil {
			totalResponseTime += *r.ResponseTimeMs
			timedResponses++
		}
		if r.EffectivenessScore != nil {
			qs := perQuestion[r.QuestionID]
			if qs == nil {
				qs = &questionStats{}
				perQuestion[r.QuestionID] = qs
			}
			qs.total += *r.EffectivenessScore
			qs.count++

			cs := perCategory[r.Category]
			if cs == nil {
				cs = &questionStats{}
				perCategory[r.Category] = cs
			}
			cs.total += *r.EffectivenessScore
			cs.count++
		}
	}

	type rankedQuestion struct {
		id  string
		avg float64
	}
	ranked := make([]rankedQuestion, 0, len(perQuestion))
	for id, qs := range perQuestion {
		ranked = append(ranked, rankedQuestion{id: id, avg: qs.total / float64(qs.count)})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].avg != ranked[j].avg {
			return ranked[i].avg > ranked[j].avg
		}
		return ranked[i].id < ranked[j].id
	})
	if len(ranked) > 5 {
		ranked = ranked[:5]
	}
	topQuestions := make([]string, len(ranked))
	for i, r := range ranked {
		topQuestions[i] = r.id
	}

	categoryEffectiveness := map[types.QuestionCategory]float64{}
	for cat, cs := range perCategory {
		categoryEffectiveness[cat] = cs.total / float64(cs.count)
	}

	insights[InsightCategoryFrequency] = categoryFreq
	insights[InsightTopQuestions] = topQuestions
	insights[InsightTotalSessions] = len(sessions)
	insights[InsightQuestionsPerSession] = float64(len(records)) / float64(len(sessions))
	insights[InsightCategoryEffectiveness] = categoryEffectiveness
	if timedResponses > 0 {
		insights[InsightAvgResponseTimeMs] = float64(totalResponseTime) / float64(timedResponses)
	}
	return insights
}
