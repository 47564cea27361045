package memory

import (
	"context"
	"testing"
	"time"

	"advisor-engine/internal/config"
	"advisor-engine/internal/logging"
	"advisor-engine/internal/storage"
	"advisor-engine/internal/types"
)

func newTestMemory(t *testing.T) (*Memory, *storage.MemoryStore) {
	t.Helper()
	store := storage.NewMemoryStore()
	cache := storage.NewTTLRecencyCache(time.Hour, 100)
	mem, err := NewMemory(store, cache, config.DefaultConfig().Storage, logging.NewNoOpLogger())
	if err != nil {
		t.Fatalf("new memory: %v", err)
	}
	return mem, store
}

func testQuestion(id string, category types.QuestionCategory) *types.Question {
	return &types.Question{
		ID:                  id,
		Text:                "How large is your household?",
		Category:            category,
		Complexity:          types.ComplexityBasic,
		InformationValue:    0.9,
		EngagementPotential: 0.7,
		CreatedAt:           time.Now().UTC(),
	}
}

func TestNewMemoryRequiresStore(t *testing.T) {
	if _, err := NewMemory(nil, nil, config.DefaultConfig().Storage, logging.NewNoOpLogger()); err == nil {
		t.Fatal("expected error for nil store")
	}
}

func TestTrackQuestionDurability(t *testing.T) {
	mem, _ := newTestMemory(t)
	ctx := context.Background()
	q := testQuestion("family_size", types.CategoryFamily)

	if !mem.TrackQuestion(ctx, "user-1", q, "session-1", nil) {
		t.Fatal("tracking failed against healthy store")
	}
	if !mem.HasQuestionBeenAsked(ctx, "user-1", "family_size", 0) {
		t.Error("tracked question not reported as asked")
	}
	if mem.HasQuestionBeenAsked(ctx, "user-2", "family_size", 0) {
		t.Error("question leaked across users")
	}
	if mem.HasQuestionBeenAsked(ctx, "user-1", "budget_range", 0) {
		t.Error("untracked question reported as asked")
	}
}

func TestTrackQuestionFailsSoftOnStorageOutage(t *testing.T) {
	mem, store := newTestMemory(t)
	ctx := context.Background()
	store.FailWrites = true

	if mem.TrackQuestion(ctx, "user-1", testQuestion("family_size", types.CategoryFamily), "session-1", nil) {
		t.Fatal("tracking reported success while writes were failing")
	}
	store.FailWrites = false
	if mem.HasQuestionBeenAsked(ctx, "user-1", "family_size", 0) {
		t.Error("failed write left a phantom record")
	}
}

func TestHasQuestionBeenAskedFailsSoftOnReadOutage(t *testing.T) {
	mem, store := newTestMemory(t)
	ctx := context.Background()

	mem.TrackQuestion(ctx, "user-1", testQuestion("family_size", types.CategoryFamily), "session-1", nil)
	mem.cache.Invalidate(ctx, "user-1")
	store.FailReads = true

	if mem.HasQuestionBeenAsked(ctx, "user-1", "family_size", 0) {
		t.Error("read outage should degrade to not-asked")
	}
	if history := mem.GetUserQuestionHistory(ctx, "user-1", "", 0, 10); len(history) != 0 {
		t.Errorf("read outage should degrade to empty history, got %d records", len(history))
	}
}

func TestUpdateQuestionResponse(t *testing.T) {
	mem, _ := newTestMemory(t)
	ctx := context.Background()
	q := testQuestion("family_size", types.CategoryFamily)

	mem.TrackQuestion(ctx, "user-1", q, "session-1", nil)

	if !mem.UpdateQuestionResponse(ctx, "user-1", "family_size", "We are five, three kids", 5000, nil) {
		t.Fatal("update failed for tracked question")
	}

	history := mem.GetUserQuestionHistory(ctx, "user-1", "", 0, 10)
	if len(history) != 1 {
		t.Fatalf("expected 1 record, got %d", len(history))
	}
	r := history[0]
	if r.Status != types.StatusAnswered {
		t.Errorf("status = %s, want %s", r.Status, types.StatusAnswered)
	}
	if r.Response == nil || *r.Response == "" {
		t.Error("response not persisted")
	}
	if r.EffectivenessScore == nil {
		t.Error("effectiveness not computed")
	} else if *r.EffectivenessScore < 0 || *r.EffectivenessScore > 1 {
		t.Errorf("effectiveness %f out of [0,1]", *r.EffectivenessScore)
	}
}

func TestUpdateQuestionResponseWithoutMatch(t *testing.T) {
	mem, _ := newTestMemory(t)
	ctx := context.Background()

	if mem.UpdateQuestionResponse(ctx, "user-1", "never_asked", "hello", 1000, nil) {
		t.Error("update succeeded with no unanswered record")
	}

	// A second update for the same record is a duplicate delivery, not an error
	mem.TrackQuestion(ctx, "user-1", testQuestion("family_size", types.CategoryFamily), "session-1", nil)
	mem.UpdateQuestionResponse(ctx, "user-1", "family_size", "five of us", 4000, nil)
	if mem.UpdateQuestionResponse(ctx, "user-1", "family_size", "five of us", 4000, nil) {
		t.Error("second update should find nothing unanswered")
	}
}

func TestInlineAnswerTracking(t *testing.T) {
	mem, _ := newTestMemory(t)
	ctx := context.Background()

	ok := mem.TrackQuestion(ctx, "user-1", testQuestion("budget_range", types.CategoryBudget), "session-1", &TrackOptions{
		Response:       "We would prefer to stay under 35k if possible",
		ResponseTimeMs: 6000,
		EngagementIndicators: EngagementIndicators{
			EngagementScoreKey: 0.8,
		},
	})
	if !ok {
		t.Fatal("inline tracking failed")
	}

	history := mem.GetUserQuestionHistory(ctx, "user-1", types.CategoryBudget, 0, 10)
	if len(history) != 1 {
		t.Fatalf("expected 1 budget record, got %d", len(history))
	}
	if !history[0].Answered() {
		t.Error("inline answer not marked answered")
	}
	if history[0].EffectivenessScore == nil {
		t.Error("inline answer missing effectiveness score")
	}
}

func TestDetectPreferenceChanges(t *testing.T) {
	mem, _ := newTestMemory(t)
	ctx := context.Background()

	// First observation records the value and reports no evolution
	if evo := mem.DetectPreferenceChanges(ctx, "user-1", "budget", "under 30k"); evo != nil {
		t.Errorf("first observation produced evolution: %+v", evo)
	}

	// Re-stating the same value is a no-op
	if evo := mem.DetectPreferenceChanges(ctx, "user-1", "budget", "under 30k"); evo != nil {
		t.Errorf("unchanged value produced evolution: %+v", evo)
	}
	if evo := mem.DetectPreferenceChanges(ctx, "user-1", "budget", "  UNDER 30K  "); evo != nil {
		t.Errorf("case and whitespace variant produced evolution: %+v", evo)
	}

	// A genuine change produces an evolution
	evo := mem.DetectPreferenceChanges(ctx, "user-1", "budget", "up to 45k")
	if evo == nil {
		t.Fatal("changed value produced no evolution")
	}
	if evo.PreviousValue != "under 30k" || evo.NewValue != "up to 45k" {
		t.Errorf("evolution values wrong: %+v", evo)
	}
	if evo.ChangeCount != 1 {
		t.Errorf("change count = %d, want 1", evo.ChangeCount)
	}
	if evo.ConfidenceScore <= 0 || evo.ConfidenceScore > 0.9 {
		t.Errorf("confidence %f outside (0,0.9]", evo.ConfidenceScore)
	}

	// Churn raises confidence that the preference is still in flux
	second := mem.DetectPreferenceChanges(ctx, "user-1", "budget", "30k again actually")
	if second == nil {
		t.Fatal("second change produced no evolution")
	}
	if second.ConfidenceScore <= evo.ConfidenceScore {
		t.Errorf("confidence did not grow with churn: %f then %f", evo.ConfidenceScore, second.ConfidenceScore)
	}
}

func TestCleanupOldRecords(t *testing.T) {
	mem, store := newTestMemory(t)
	ctx := context.Background()

	mem.TrackQuestion(ctx, "user-1", testQuestion("family_size", types.CategoryFamily), "session-1", nil)

	old, err := types.NewQuestionRecord("user-1", "session-0", testQuestion("budget_range", types.CategoryBudget))
	if err != nil {
		t.Fatal(err)
	}
	old.Timestamp = time.Now().UTC().AddDate(0, 0, -400)
	if err := store.StoreRecord(ctx, old); err != nil {
		t.Fatal(err)
	}

	deleted, err := mem.CleanupOldRecords(ctx, "user-1", 365)
	if err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted %d records, want 1", deleted)
	}
	if !mem.HasQuestionBeenAsked(ctx, "user-1", "family_size", 0) {
		t.Error("cleanup removed a record inside the retention window")
	}
}

func TestBuildUserContext(t *testing.T) {
	mem, _ := newTestMemory(t)
	ctx := context.Background()

	mem.TrackQuestion(ctx, "user-1", testQuestion("family_size", types.CategoryFamily), "session-1", &TrackOptions{
		Response:       "Five of us",
		ResponseTimeMs: 4000,
	})
	mem.TrackQuestion(ctx, "user-1", testQuestion("budget_range", types.CategoryBudget), "session-1", nil)

	uc := mem.BuildUserContext(ctx, "user-1", LiveSignals{
		SessionID:       "session-1",
		Stage:           types.StageDiscovery,
		EngagementLevel: 0.7,
	})

	if !uc.HasAsked("family_size") || !uc.HasAsked("budget_range") {
		t.Errorf("asked set incomplete: %v", uc.AskedQuestionIDs)
	}
	if uc.SessionQuestionCount != 2 {
		t.Errorf("session count = %d, want 2", uc.SessionQuestionCount)
	}
	if uc.LastQuestionTimestamp == nil {
		t.Error("last question timestamp missing")
	}
	if _, ok := uc.CategoryLastAsked[types.CategoryFamily]; !ok {
		t.Error("family missing from category-last-asked")
	}
	if err := uc.Validate(); err != nil {
		t.Errorf("built context invalid: %v", err)
	}
}
