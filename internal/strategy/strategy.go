// Package strategy implements the question-selection scoring core. Given a
// per-turn user context and the catalog, it scores every eligible question
// on four independent axes, combines them with configured weights, applies
// flow constraints and returns a ranked shortlist. Scoring is pure
// computation: deterministic for identical inputs, no storage access, no
// side effects until the caller explicitly tracks the chosen question.
package strategy

import (
	"fmt"
	"sort"
	"time"

	"advisor-engine/internal/catalog"
	"advisor-engine/internal/config"
	"advisor-engine/internal/conflict"
	"advisor-engine/internal/logging"
	"advisor-engine/internal/types"
)

// categoryWeights is the fixed per-category importance table. Family,
// budget and usage carry the most signal for narrowing vehicle choice.
var categoryWeights = map[types.QuestionCategory]float64{
	types.CategoryFamily:      1.0,
	types.CategoryBudget:      1.0,
	types.CategoryUsage:       0.95,
	types.CategorySafety:      0.85,
	types.CategoryEnvironment: 0.8,
	types.CategoryPerformance: 0.8,
	types.CategoryLifestyle:   0.75,
	types.CategoryTechnology:  0.7,
	types.CategoryFeature:     0.65,
	types.CategoryBrand:       0.6,
}

// stageCategoryBoost lists which categories get a timing boost per stage
var stageCategoryBoost = map[types.ConversationStage][]types.QuestionCategory{
	types.StageGreeting:       {types.CategoryFamily, types.CategoryLifestyle},
	types.StageDiscovery:      {types.CategoryBudget, types.CategoryPerformance, types.CategoryFamily, types.CategoryUsage},
	types.StageRefinement:     {types.CategoryFeature, types.CategoryTechnology, types.CategorySafety},
	types.StageRecommendation: {types.CategoryBudget, types.CategoryFeature},
}

// discoveryCoreCategories get the information-value stage boost during
// discovery
var discoveryCoreCategories = map[types.QuestionCategory]bool{
	types.CategoryFamily: true,
	types.CategoryUsage:  true,
	types.CategoryBudget: true,
}

// ConflictResolutionTag marks catalog questions designed to untangle a
// preference conflict
const ConflictResolutionTag = "conflict_resolution"

// Selector is the questioning strategy service
type Selector struct {
	scoring config.ScoringConfig
	session config.SessionConfig
	catalog *catalog.Catalog
	logger  logging.Logger
}

// NewSelector creates a questioning strategy over the given catalog
func NewSelector(scoring config.ScoringConfig, session config.SessionConfig, cat *catalog.Catalog, logger logging.Logger) (*Selector, error) {
	if cat == nil {
		return nil, fmt.Errorf("question catalog is required")
	}
	return &Selector{
		scoring: scoring,
		session: session,
		catalog: cat,
		logger:  logger.WithComponent("strategy"),
	}, nil
}

// SelectNextQuestion scores all eligible questions and returns up to
// maxQuestions of them, best first. A closing-stage conversation selects
// nothing regardless of eligibility.
func (s *Selector) SelectNextQuestion(uc *types.UserContext, maxQuestions int) []types.QuestionScore {
	return s.SelectNext(uc, nil, maxQuestions)
}

// SelectNext is SelectNextQuestion with conflict awareness: when a HIGH or
// CRITICAL conflict is active, eligible conflict-resolution questions
// touching the conflicting categories are boosted to the front.
func (s *Selector) SelectNext(uc *types.UserContext, conflicts []conflict.PreferenceConflict, maxQuestions int) []types.QuestionScore {
	if uc == nil || maxQuestions <= 0 {
		return []types.QuestionScore{}
	}
	if uc.ConversationStage == types.StageClosing {
		return []types.QuestionScore{}
	}

	now := time.Now().UTC()
	conflictCategories := urgentConflictCategories(conflicts)

	var scored []types.QuestionScore
	for _, q := range s.catalog.All() {
		if !s.eligible(q, uc) {
			continue
		}
		score := s.scoreQuestion(q, uc, now)
		if boost := s.conflictBoost(q, conflictCategories); boost > 1 {
			score.TotalScore = clamp01(score.TotalScore * boost)
			score.SelectionReasons = append(score.SelectionReasons, "Helps resolve a preference conflict")
		}
		scored = append(scored, score)
	}

	selected := s.applyFlowConstraints(scored, maxQuestions)
	s.logger.Debug("Question selection complete",
		"user_id", uc.UserID, "eligible", len(scored), "selected", len(selected))
	return selected
}

// eligible applies the hard filters: never re-ask, and every prerequisite
// must already be in the asked set
func (s *Selector) eligible(q *types.Question, uc *types.UserContext) bool {
	if uc.HasAsked(q.ID) {
		return false
	}
	for _, prereq := range q.PrerequisiteIDs {
		if !uc.HasAsked(prereq) {
			return false
		}
	}
	return true
}

// scoreQuestion computes the four axis scores and their weighted total
func (s *Selector) scoreQuestion(q *types.Question, uc *types.UserContext, now time.Time) types.QuestionScore {
	info := s.informationScore(q, uc)
	engagement := s.engagementScore(q, uc)
	timing := s.timingScore(q, uc, now)
	novelty := s.noveltyScore(q, uc, now)

	total := s.scoring.InformationWeight*info +
		s.scoring.EngagementWeight*engagement +
		s.scoring.TimingWeight*timing +
		s.scoring.NoveltyWeight*novelty

	score := types.QuestionScore{
		QuestionID:       q.ID,
		InformationValue: info,
		EngagementScore:  engagement,
		TimingScore:      timing,
		NoveltyScore:     novelty,
		TotalScore:       clamp01(total),
	}
	score.SelectionReasons = s.selectionReasons(q, uc, &score)
	return score
}

// informationScore weighs the question's baseline value by category
// importance, with diminishing returns inside a session and a discovery
// boost for the core profiling categories
func (s *Selector) informationScore(q *types.Question, uc *types.UserContext) float64 {
	weight, ok := categoryWeights[q.Category]
	if !ok {
		weight = 0.5
	}
	score := q.InformationValue * weight

	if uc.SessionCategories[q.Category] > 0 {
		score *= 0.5
	}
	if uc.ConversationStage == types.StageDiscovery && discoveryCoreCategories[q.Category] {
		score *= 1.2
	}
	return clamp01(score)
}

// engagementScore matches question depth and topic freshness to the user's
// current investment
func (s *Selector) engagementScore(q *types.Question, uc *types.UserContext) float64 {
	score := q.EngagementPotential

	lowEngagement := uc.EngagementLevel < s.scoring.LowEngagementThreshold
	if lowEngagement {
		score *= 1.3
	}

	if topicRepeated(q.Category, uc.RecentTopics) {
		score *= 0.6
	}

	if q.Complexity == types.ComplexityAdvanced && lowEngagement {
		score *= 0.7
	}
	if q.Complexity == types.ComplexityBasic && uc.EngagementLevel > s.scoring.HighEngagementThreshold {
		score *= 0.8
	}

	if uc.FatigueIndicators[types.FatigueBoredom] || uc.FatigueIndicators[types.FatigueIrrelevance] {
		score *= 0.5
	}
	return clamp01(score)
}

// topicRepeated reports whether the category appeared in the last two
// discussed topics
func topicRepeated(category types.QuestionCategory, recentTopics []types.QuestionCategory) bool {
	limit := len(recentTopics)
	if limit > 2 {
		limit = 2
	}
	for _, topic := range recentTopics[:limit] {
		if topic == category {
			return true
		}
	}
	return false
}

// timingScore rates whether now is a good moment for this particular
// question: pacing, session budget, follow-up continuity and stage fit
func (s *Selector) timingScore(q *types.Question, uc *types.UserContext, now time.Time) float64 {
	score := 0.8

	if uc.LastQuestionTimestamp != nil {
		elapsed := now.Sub(*uc.LastQuestionTimestamp)
		switch {
		case elapsed < s.session.MinQuestionGap:
			score *= 0.5
		case elapsed > s.session.LongPause:
			score *= 1.2
		}
	}

	maxPerSession := s.session.MaxQuestionsPerSession
	switch {
	case uc.SessionQuestionCount >= maxPerSession:
		score *= 0.3
	case float64(uc.SessionQuestionCount) >= 0.7*float64(maxPerSession):
		score *= 0.6
	}

	if s.isDeclaredFollowUp(q, uc.LastAskedQuestionIDs) {
		score *= 1.3
	}

	for _, boosted := range stageCategoryBoost[uc.ConversationStage] {
		if q.Category == boosted {
			score *= 1.2
			break
		}
	}
	return clamp01(score)
}

// isDeclaredFollowUp reports whether one of the last three asked questions
// lists this question as its follow-up
func (s *Selector) isDeclaredFollowUp(q *types.Question, lastAskedIDs []string) bool {
	for _, askedID := range lastAskedIDs {
		asked, ok := s.catalog.Get(askedID)
		if !ok {
			continue
		}
		for _, followUp := range asked.FollowUpIDs {
			if followUp == q.ID {
				return true
			}
		}
	}
	return false
}

// noveltyScore decays with how recently the category was touched across the
// user's whole history, not just this session
func (s *Selector) noveltyScore(q *types.Question, uc *types.UserContext, now time.Time) float64 {
	score := 0.7

	lastAsked, touched := uc.CategoryLastAsked[q.Category]
	if touched {
		age := now.Sub(lastAsked)
		switch {
		case age < time.Duration(s.scoring.RecentCooldownDays)*24*time.Hour:
			score *= 0.4
		case age < time.Duration(s.scoring.StaleCooldownDays)*24*time.Hour:
			score *= 0.7
		}
	} else {
		score *= 1.2
	}
	return clamp01(score)
}

// conflictBoost returns the multiplier for conflict-resolution questions
// matching an urgent conflict's categories
func (s *Selector) conflictBoost(q *types.Question, conflictCategories map[types.QuestionCategory]bool) float64 {
	if len(conflictCategories) == 0 || !conflictCategories[q.Category] {
		return 1
	}
	for _, tag := range q.Tags {
		if tag == ConflictResolutionTag {
			return 1.25
		}
	}
	return 1
}

// urgentConflictCategories collects the categories involved in HIGH or
// CRITICAL conflicts
func urgentConflictCategories(conflicts []conflict.PreferenceConflict) map[types.QuestionCategory]bool {
	categories := map[types.QuestionCategory]bool{}
	for i := range conflicts {
		c := &conflicts[i]
		if c.Severity.Weight() < conflict.SeverityHigh.Weight() {
			continue
		}
		for _, pref := range c.Preferences {
			categories[pref.Category] = true
		}
	}
	return categories
}

// applyFlowConstraints greedily picks the shortlist, penalizing category
// repetition against the previous two selections and nudging forward
// questions that unlock outstanding prerequisite chains
func (s *Selector) applyFlowConstraints(scored []types.QuestionScore, maxQuestions int) []types.QuestionScore {
	remaining := make([]types.QuestionScore, len(scored))
	copy(remaining, scored)
	sortScores(remaining)

	var selected []types.QuestionScore
	var recentCategories []types.QuestionCategory

	for len(remaining) > 0 && len(selected) < maxQuestions {
		adjusted := false
		for i := range remaining {
			q, ok := s.catalog.Get(remaining[i].QuestionID)
			if !ok {
				continue
			}
			factor := 1.0
			if categoryInLastTwo(q.Category, recentCategories) {
				factor *= 0.7
			}
			if s.unlocksUnaskedQuestion(q.ID) {
				factor *= 1.1
			}
			if factor != 1.0 {
				remaining[i].TotalScore = clamp01(remaining[i].TotalScore * factor)
				adjusted = true
			}
		}
		if adjusted {
			sortScores(remaining)
		}

		pick := remaining[0]
		remaining = remaining[1:]
		selected = append(selected, pick)
		if q, ok := s.catalog.Get(pick.QuestionID); ok {
			recentCategories = append(recentCategories, q.Category)
		}
	}
	return selected
}

// unlocksUnaskedQuestion reports whether the question is a prerequisite of
// some other catalog question
func (s *Selector) unlocksUnaskedQuestion(questionID string) bool {
	for _, other := range s.catalog.All() {
		for _, prereq := range other.PrerequisiteIDs {
			if prereq == questionID {
				return true
			}
		}
	}
	return false
}

func categoryInLastTwo(category types.QuestionCategory, recent []types.QuestionCategory) bool {
	start := len(recent) - 2
	if start < 0 {
		start = 0
	}
	for _, c := range recent[start:] {
		if c == category {
			return true
		}
	}
	return false
}

// sortScores orders by total descending with question ID as a stable
// tiebreaker, keeping selection deterministic
func sortScores(scores []types.QuestionScore) {
	sort.SliceStable(scores, func(i, j int) bool {
		if scores[i].TotalScore != scores[j].TotalScore {
			return scores[i].TotalScore > scores[j].TotalScore
		}
		return scores[i].QuestionID < scores[j].QuestionID
	})
}

// Thresholds for turning component scores into human-readable reasons
const (
	reasonHighThreshold = 0.7
	reasonLowThreshold  = 0.45
)

// selectionReasons derives the human-readable rationale from which
// component scores crossed the fixed high and low thresholds
func (s *Selector) selectionReasons(q *types.Question, uc *types.UserContext, score *types.QuestionScore) []string {
	var reasons []string

	if score.InformationValue > reasonHighThreshold {
		reasons = append(reasons, fmt.Sprintf("High information value in %s", q.Category))
	}
	if score.EngagementScore > reasonHighThreshold {
		if uc.EngagementLevel < s.scoring.LowEngagementThreshold {
			reasons = append(reasons, "User may be losing engagement")
		} else {
			reasons = append(reasons, "Likely to keep the user engaged")
		}
	}
	if score.NoveltyScore > reasonHighThreshold {
		reasons = append(reasons, "Covers new topic area")
	}
	if score.TimingScore > reasonHighThreshold {
		reasons = append(reasons, "Good timing in the conversation flow")
	}
	if score.TimingScore < reasonLowThreshold {
		reasons = append(reasons, "Timing is not ideal, deprioritized")
	}
	if len(reasons) == 0 {
		reasons = append(reasons, "Balanced fit for the current conversation")
	}
	return reasons
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
