package memory

import (
	"context"
	"testing"
	"time"

	"advisor-engine/internal/catalog"
	"advisor-engine/internal/types"
)

func scoringQuestion() *types.Question {
	return &types.Question{
		ID:                  "usage_commute",
		Text:                "What does your typical week of driving look like?",
		Category:            types.CategoryUsage,
		Complexity:          types.ComplexityIntermediate,
		InformationValue:    0.8,
		EngagementPotential: 0.7,
		CreatedAt:           time.Now().UTC(),
	}
}

func TestEffectivenessDismissiveAnswerScoresLow(t *testing.T) {
	score := CalculateQuestionEffectiveness(scoringQuestion(), "no", 1500, nil)
	if score >= 0.5 {
		t.Errorf("dismissive fast answer scored %f, want < 0.5", score)
	}
}

func TestEffectivenessDetailedAnswerScoresHigh(t *testing.T) {
	response := "I drive about forty minutes each way to work and we also take longer weekend trips up to the mountains regularly"
	score := CalculateQuestionEffectiveness(scoringQuestion(), response, 8000, EngagementIndicators{
		EngagementScoreKey: 0.9,
	})
	if score <= 0.7 {
		t.Errorf("detailed engaged answer scored %f, want > 0.7", score)
	}
}

func TestEffectivenessAlwaysInRange(t *testing.T) {
	cases := []struct {
		name       string
		response   string
		timeMs     int64
		indicators EngagementIndicators
	}{
		{"empty response", "", 0, nil},
		{"negative latency", "sure", -500, nil},
		{"very slow considered answer", "I definitely need something with a lot of space for the family, that is important to me", 45000, EngagementIndicators{EngagementScoreKey: 1.0}},
		{"keyword stuffed", "I love it, perfect, definitely, I prefer and want and need everything, tell me more?", 10000, EngagementIndicators{EngagementScoreKey: 1.0}},
		{"out of range engagement", "okay", 5000, EngagementIndicators{EngagementScoreKey: 7.5}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			score := CalculateQuestionEffectiveness(scoringQuestion(), tc.response, tc.timeMs, tc.indicators)
			if score < 0 || score > 1 {
				t.Errorf("score %f out of [0,1]", score)
			}
		})
	}
}

func TestEffectivenessDeterministic(t *testing.T) {
	response := "We mostly need it for the school run and my commute"
	a := CalculateQuestionEffectiveness(scoringQuestion(), response, 6000, EngagementIndicators{EngagementScoreKey: 0.6})
	b := CalculateQuestionEffectiveness(scoringQuestion(), response, 6000, EngagementIndicators{EngagementScoreKey: 0.6})
	if a != b {
		t.Errorf("same inputs scored differently: %f vs %f", a, b)
	}
}

func TestEffectivenessRewardsPreferenceStatements(t *testing.T) {
	plain := CalculateQuestionEffectiveness(scoringQuestion(), "forty minutes on the highway", 6000, nil)
	stated := CalculateQuestionEffectiveness(scoringQuestion(), "I prefer the highway, comfort is important", 6000, nil)
	if stated <= plain {
		t.Errorf("preference statement scored %f, plain answer %f", stated, plain)
	}
}

func TestFindEffectivePatternsAveragesAcrossUsers(t *testing.T) {
	mem, _ := newTestMemory(t)
	ctx := context.Background()
	q := scoringQuestion()

	high := 0.9
	mid := 0.7
	mem.TrackQuestion(ctx, "user-1", q, "session-1", nil)
	mem.UpdateQuestionResponse(ctx, "user-1", q.ID, "Long commute, lots of highway miles", 6000, &high)
	mem.TrackQuestion(ctx, "user-2", q, "session-9", nil)
	mem.UpdateQuestionResponse(ctx, "user-2", q.ID, "Mostly the school run", 4000, &mid)

	patterns := mem.FindEffectivePatterns(ctx, q.ID, 0.7, 10)
	if len(patterns) != 1 {
		t.Fatalf("got %d patterns, want 1", len(patterns))
	}
	p := patterns[0]
	if p.TemplateText != q.Text {
		t.Errorf("template text %q, want %q", p.TemplateText, q.Text)
	}
	if p.Category != q.Category {
		t.Errorf("category %q, want %q", p.Category, q.Category)
	}
	if p.EffectivenessScore < 0.79 || p.EffectivenessScore > 0.81 {
		t.Errorf("average effectiveness %f, want 0.8", p.EffectivenessScore)
	}
	if len(p.ExampleResponses) != 2 {
		t.Errorf("got %d example responses, want 2", len(p.ExampleResponses))
	}
}

func TestFindEffectivePatternsFiltersWeakTemplates(t *testing.T) {
	mem, _ := newTestMemory(t)
	ctx := context.Background()

	low := 0.3
	mem.TrackQuestion(ctx, "user-1", scoringQuestion(), "session-1", nil)
	mem.UpdateQuestionResponse(ctx, "user-1", "usage_commute", "no", 1200, &low)

	if got := mem.FindEffectivePatterns(ctx, "usage_commute", 0.7, 10); len(got) != 0 {
		t.Errorf("low-effectiveness template surfaced: %+v", got[0])
	}
}

func TestFindEffectivePatternsIgnoresUnanswered(t *testing.T) {
	mem, _ := newTestMemory(t)
	ctx := context.Background()

	mem.TrackQuestion(ctx, "user-1", scoringQuestion(), "session-1", nil)

	if got := mem.FindEffectivePatterns(ctx, "usage_commute", 0.0, 10); len(got) != 0 {
		t.Errorf("unanswered record surfaced as a pattern: %+v", got[0])
	}
}

func TestFindEffectivePatternsFailsSoftOnReadOutage(t *testing.T) {
	mem, store := newTestMemory(t)
	ctx := context.Background()

	high := 0.9
	mem.TrackQuestion(ctx, "user-1", scoringQuestion(), "session-1", nil)
	mem.UpdateQuestionResponse(ctx, "user-1", "usage_commute", "Long highway commute", 6000, &high)

	store.FailReads = true
	if got := mem.FindEffectivePatterns(ctx, "usage_commute", 0.7, 10); got != nil {
		t.Errorf("expected empty result during read outage, got %+v", got)
	}
}

func TestMinedPatternsFeedTheCatalog(t *testing.T) {
	mem, _ := newTestMemory(t)
	ctx := context.Background()

	high := 0.85
	mem.TrackQuestion(ctx, "user-1", scoringQuestion(), "session-1", nil)
	mem.UpdateQuestionResponse(ctx, "user-1", "usage_commute", "I commute daily and road trip monthly", 7000, &high)

	cat, err := catalog.Load(mem.logger)
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	for _, p := range mem.FindEffectivePatterns(ctx, "usage_commute", 0.7, 5) {
		id, ok := cat.IngestEffectivePattern(p)
		if !ok {
			t.Fatalf("mined pattern rejected: %+v", p)
		}
		if q, exists := cat.Get(id); !exists || !q.Dynamic {
			t.Errorf("ingested pattern %s missing or not dynamic", id)
		}
	}
}
