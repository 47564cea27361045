// Package conflict detects pairwise incompatibilities between a user's
// stated vehicle preferences and proposes resolution guidance. Detection is
// rule-driven and idempotent: the same preference set always yields the
// same conflicts. The detector holds no cross-call state beyond its
// configured thresholds.
package conflict

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"advisor-engine/internal/config"
	"advisor-engine/internal/logging"
	"advisor-engine/internal/types"
)

// ConflictType represents a known category of preference incompatibility
type ConflictType string

const (
	TypePerformanceVsEfficiency ConflictType = "performance_vs_efficiency"
	TypeBudgetVsFeatures        ConflictType = "budget_vs_features"
	TypeBudgetVsPerformance     ConflictType = "budget_vs_performance"
	TypeBudgetVsSafety          ConflictType = "budget_vs_safety"
	TypeBrandVsBudget           ConflictType = "brand_vs_budget"
	TypeFamilyVsPerformance     ConflictType = "family_vs_performance"
	TypeUsageVsEfficiency       ConflictType = "usage_vs_efficiency"
)

// Severity represents how pressing a conflict is, ordered LOW < MEDIUM <
// HIGH < CRITICAL
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Weight returns the ordering weight of a severity level
func (s Severity) Weight() int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// ResolutionStrategy is one named way out of a conflict
type ResolutionStrategy struct {
	Name              string   `json:"name"`
	Description       string   `json:"description"`
	TradeOffs         []string `json:"trade_offs"`
	FollowUpQuestions []string `json:"follow_up_questions"`
	Technologies      []string `json:"technologies,omitempty"`
}

// PreferenceConflict is one detected incompatibility between two
// preferences. Conflicts are rebuilt fresh on every detection pass and
// carry no identity across turns.
type PreferenceConflict struct {
	ID                     string                 `json:"id"`
	Type                   ConflictType           `json:"type"`
	Severity               Severity               `json:"severity"`
	Preferences            []types.UserPreference `json:"preferences"`
	Description            string                 `json:"description"`
	Explanation            string                 `json:"explanation"`
	ResolutionStrategies   []ResolutionStrategy   `json:"resolution_strategies"`
	RecommendedQuestions   []string               `json:"recommended_questions"`
	TechnologicalSolutions []string               `json:"technological_solutions,omitempty"`
	DetectedAt             time.Time              `json:"detected_at"`
}

// rule declares that two preference categories can conflict. Soft rules
// fire at a lower confidence band and cap out at LOW severity until both
// sides cross the full trigger threshold.
type rule struct {
	categoryA types.QuestionCategory
	categoryB types.QuestionCategory
	conflict  ConflictType
	soft      bool
}

// softMargin widens the trigger band for soft rules
const softMargin = 0.15

// Detector evaluates preference sets against the conflict rule table
type Detector struct {
	cfg    config.ConflictConfig
	rules  []rule
	logger logging.Logger
}

// NewDetector creates a conflict detector with the standard rule table
func NewDetector(cfg config.ConflictConfig, logger logging.Logger) *Detector {
	return &Detector{
		cfg:    cfg,
		logger: logger.WithComponent("conflict"),
		rules: []rule{
			{types.CategoryPerformance, types.CategoryEnvironment, TypePerformanceVsEfficiency, false},
			{types.CategoryBudget, types.CategoryFeature, TypeBudgetVsFeatures, false},
			{types.CategoryBudget, types.CategoryTechnology, TypeBudgetVsFeatures, true},
			{types.CategoryBudget, types.CategoryPerformance, TypeBudgetVsPerformance, false},
			{types.CategoryBudget, types.CategorySafety, TypeBudgetVsSafety, false},
			{types.CategoryBudget, types.CategoryBrand, TypeBrandVsBudget, true},
			{types.CategoryFamily, types.CategoryPerformance, TypeFamilyVsPerformance, true},
			{types.CategoryUsage, types.CategoryEnvironment, TypeUsageVsEfficiency, true},
		},
	}
}

// Detect finds all conflicts in the supplied preference set, sorted by
// severity descending with input order breaking ties. Fewer than two
// preferences, or no pair matching a rule, yields an empty result.
func (d *Detector) Detect(preferences []types.UserPreference) []PreferenceConflict {
	if len(preferences) < 2 {
		return []PreferenceConflict{}
	}

	ranked := rankByCategory(preferences)

	conflicts := []PreferenceConflict{}
	for i := 0; i < len(ranked); i++ {
		for j := i + 1; j < len(ranked); j++ {
			r, matched := d.lookupRule(ranked[i].Category, ranked[j].Category)
			if !matched {
				continue
			}
			if c := d.evaluate(ranked[i], ranked[j], r); c != nil {
				conflicts = append(conflicts, *c)
			}
		}
	}

	sort.SliceStable(conflicts, func(i, j int) bool {
		return conflicts[i].Severity.Weight() > conflicts[j].Severity.Weight()
	})

	if len(conflicts) > 0 {
		d.logger.Debug("Preference conflicts detected", "count", len(conflicts))
	}
	return conflicts
}

// rankByCategory reduces the preference list to one representative per
// category. A CORRECTED entry supersedes earlier same-category entries
// outright; otherwise the most recent entry wins. Input order is preserved
// for the survivors so detection stays stable.
func rankByCategory(preferences []types.UserPreference) []types.UserPreference {
	best := make(map[types.QuestionCategory]int)
	for i := range preferences {
		p := &preferences[i]
		current, seen := best[p.Category]
		if !seen {
			best[p.Category] = i
			continue
		}
		held := &preferences[current]
		if supersedes(p, held) {
			best[p.Category] = i
		}
	}

	var ranked []types.UserPreference
	for i := range preferences {
		if best[preferences[i].Category] == i {
			ranked = append(ranked, preferences[i])
		}
	}
	return ranked
}

// supersedes reports whether candidate should replace held as a category's
// representative
func supersedes(candidate, held *types.UserPreference) bool {
	if candidate.Source == types.SourceCorrected && held.Source != types.SourceCorrected {
		return true
	}
	if held.Source == types.SourceCorrected && candidate.Source != types.SourceCorrected {
		return false
	}
	return candidate.Timestamp.After(held.Timestamp)
}

// lookupRule finds the rule matching an unordered category pair. The rule
// table is the single source of truth: unknown pairs simply do not conflict.
func (d *Detector) lookupRule(a, b types.QuestionCategory) (rule, bool) {
	for _, r := range d.rules {
		if (r.categoryA == a && r.categoryB == b) || (r.categoryA == b && r.categoryB == a) {
			return r, true
		}
	}
	return rule{}, false
}

// evaluate applies a rule's thresholds to a preference pair
func (d *Detector) evaluate(prefA, prefB types.UserPreference, r rule) *PreferenceConflict {
	trigger := d.cfg.TriggerConfidence
	if r.soft {
		trigger -= softMargin
	}
	if prefA.Confidence < trigger || prefB.Confidence < trigger {
		return nil
	}

	severity := d.severityFor(prefA.Confidence, prefB.Confidence, r)
	profile := profileFor(r.conflict)

	return &PreferenceConflict{
		ID:          "conflict_" + uuid.New().String(),
		Type:        r.conflict,
		Severity:    severity,
		Preferences: []types.UserPreference{prefA, prefB},
		Description: fmt.Sprintf("Your %s preference (%q) is in tension with your %s preference (%q)",
			prefA.Category, prefA.Value, prefB.Category, prefB.Value),
		Explanation:            profile.explanation,
		ResolutionStrategies:   profile.strategies,
		RecommendedQuestions:   profile.recommendedQuestions,
		TechnologicalSolutions: profile.technologies,
		DetectedAt:             time.Now().UTC(),
	}
}

// severityFor classifies a conflict by both preferences' confidence. The
// bands are monotonic: raising either confidence never lowers the result.
func (d *Detector) severityFor(confA, confB float64, r rule) Severity {
	lower := confA
	if confB < lower {
		lower = confB
	}

	switch {
	case lower >= d.cfg.CriticalConfidence:
		return SeverityCritical
	case lower >= d.cfg.HighConfidence:
		return SeverityHigh
	case lower >= d.cfg.TriggerConfidence:
		return SeverityMedium
	default:
		// Only reachable for soft rules inside the widened band
		if r.soft {
			return SeverityLow
		}
		return SeverityMedium
	}
}
