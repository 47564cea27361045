package storage

import (
	"context"
	"testing"
	"time"

	"advisor-engine/internal/types"
)

func newRecord(t *testing.T, userID, questionID string, category types.QuestionCategory) *types.QuestionRecord {
	t.Helper()
	record, err := types.NewQuestionRecord(userID, "session-1", &types.Question{
		ID:                  questionID,
		Text:                "example question",
		Category:            category,
		Complexity:          types.ComplexityBasic,
		InformationValue:    0.8,
		EngagementPotential: 0.6,
		CreatedAt:           time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("new record: %v", err)
	}
	return record
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	record := newRecord(t, "user-1", "budget_range", types.CategoryBudget)
	if err := store.StoreRecord(ctx, record); err != nil {
		t.Fatalf("store: %v", err)
	}

	records, err := store.QueryRecords(ctx, &RecordQuery{UserID: "user-1"})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(records) != 1 || records[0].QuestionID != "budget_range" {
		t.Fatalf("unexpected records: %v", records)
	}

	// Mutating the returned record must not touch stored state
	records[0].Status = types.StatusDeclined
	again, _ := store.QueryRecords(ctx, &RecordQuery{UserID: "user-1"})
	if again[0].Status != types.StatusAsked {
		t.Error("stored record aliased by query result")
	}
}

func TestMemoryStoreQueryFilters(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	old := newRecord(t, "user-1", "budget_range", types.CategoryBudget)
	old.Timestamp = time.Now().UTC().Add(-48 * time.Hour)
	store.StoreRecord(ctx, old)
	store.StoreRecord(ctx, newRecord(t, "user-1", "family_size", types.CategoryFamily))
	store.StoreRecord(ctx, newRecord(t, "user-2", "family_size", types.CategoryFamily))

	byCategory, _ := store.QueryRecords(ctx, &RecordQuery{UserID: "user-1", Category: types.CategoryFamily})
	if len(byCategory) != 1 {
		t.Errorf("category filter returned %d records", len(byCategory))
	}

	cutoff := time.Now().UTC().Add(-time.Hour)
	recent, _ := store.QueryRecords(ctx, &RecordQuery{UserID: "user-1", Since: &cutoff})
	if len(recent) != 1 || recent[0].QuestionID != "family_size" {
		t.Errorf("since filter returned %v", recent)
	}

	all, _ := store.QueryRecords(ctx, &RecordQuery{UserID: "user-1"})
	if len(all) != 2 || all[0].QuestionID != "family_size" {
		t.Errorf("records not newest-first: %v", all)
	}

	limited, _ := store.QueryRecords(ctx, &RecordQuery{UserID: "user-1", Limit: 1})
	if len(limited) != 1 {
		t.Errorf("limit ignored, got %d records", len(limited))
	}
}

func TestMemoryStoreLatestUnanswered(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	missing, err := store.LatestUnanswered(ctx, "user-1", "budget_range")
	if err != nil || missing != nil {
		t.Fatalf("expected nil,nil for absent record, got %v, %v", missing, err)
	}

	first := newRecord(t, "user-1", "budget_range", types.CategoryBudget)
	first.Timestamp = time.Now().UTC().Add(-time.Minute)
	store.StoreRecord(ctx, first)
	second := newRecord(t, "user-1", "budget_range", types.CategoryBudget)
	store.StoreRecord(ctx, second)

	latest, err := store.LatestUnanswered(ctx, "user-1", "budget_range")
	if err != nil {
		t.Fatal(err)
	}
	if latest.ID != second.ID {
		t.Errorf("latest = %s, want %s", latest.ID, second.ID)
	}

	latest.Status = types.StatusAnswered
	response := "about 30k"
	latest.Response = &response
	if err := store.UpdateRecord(ctx, latest); err != nil {
		t.Fatalf("update: %v", err)
	}

	remaining, _ := store.LatestUnanswered(ctx, "user-1", "budget_range")
	if remaining == nil || remaining.ID != first.ID {
		t.Errorf("remaining unanswered = %v, want %s", remaining, first.ID)
	}
}

func TestMemoryStoreFailureInjection(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	store.FailWrites = true

	if err := store.StoreRecord(ctx, newRecord(t, "user-1", "q", types.CategoryUsage)); err == nil {
		t.Error("write succeeded with failure injection on")
	}

	store.FailWrites = false
	store.FailReads = true
	if _, err := store.QueryRecords(ctx, &RecordQuery{UserID: "user-1"}); err == nil {
		t.Error("read succeeded with failure injection on")
	}
}

func TestMemoryStoreQueryByPattern(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	old := newRecord(t, "user-1", "budget_range", types.CategoryBudget)
	old.Timestamp = time.Now().UTC().Add(-time.Hour)
	store.StoreRecord(ctx, old)
	store.StoreRecord(ctx, newRecord(t, "user-2", "budget_range", types.CategoryBudget))
	store.StoreRecord(ctx, newRecord(t, "user-3", "budget_monthly", types.CategoryBudget))
	store.StoreRecord(ctx, newRecord(t, "user-1", "family_size", types.CategoryFamily))

	// Question ID pattern crosses user boundaries
	byID, err := store.QueryByPattern(ctx, "budget_range", 0)
	if err != nil {
		t.Fatalf("query by pattern: %v", err)
	}
	if len(byID) != 2 {
		t.Fatalf("got %d records for question ID pattern, want 2", len(byID))
	}
	if byID[0].UserID != "user-2" {
		t.Errorf("results not newest-first: %s", byID[0].UserID)
	}

	// Category pattern matches every budget question
	byCategory, err := store.QueryByPattern(ctx, "budget", 0)
	if err != nil {
		t.Fatalf("query by category pattern: %v", err)
	}
	if len(byCategory) != 3 {
		t.Errorf("got %d records for category pattern, want 3", len(byCategory))
	}

	limited, _ := store.QueryByPattern(ctx, "budget", 1)
	if len(limited) != 1 {
		t.Errorf("limit not applied, got %d records", len(limited))
	}

	store.FailReads = true
	if _, err := store.QueryByPattern(ctx, "budget", 0); err == nil {
		t.Error("read succeeded with failure injection on")
	}
}

func TestTTLRecencyCache(t *testing.T) {
	cache := NewTTLRecencyCache(time.Hour, 3)
	ctx := context.Background()

	if cache.Recent(ctx, "user-1") != nil {
		t.Error("cold cache returned records")
	}

	for _, id := range []string{"q1", "q2", "q3", "q4"} {
		cache.Append(ctx, "user-1", newRecord(t, "user-1", id, types.CategoryUsage))
	}

	recent := cache.Recent(ctx, "user-1")
	if len(recent) != 3 {
		t.Fatalf("cache holds %d records, want bound of 3", len(recent))
	}
	if recent[0].QuestionID != "q4" {
		t.Errorf("newest record is %s, want q4", recent[0].QuestionID)
	}

	cache.Invalidate(ctx, "user-1")
	if cache.Recent(ctx, "user-1") != nil {
		t.Error("invalidated cache returned records")
	}
}

func TestTTLRecencyCacheExpiry(t *testing.T) {
	cache := NewTTLRecencyCache(10*time.Millisecond, 10)
	ctx := context.Background()

	cache.Append(ctx, "user-1", newRecord(t, "user-1", "q1", types.CategoryUsage))
	time.Sleep(30 * time.Millisecond)

	if cache.Recent(ctx, "user-1") != nil {
		t.Error("expired entry still served")
	}
}

func TestMemoryStorePreferenceHistory(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	values := []string{"under 30k", "up to 40k", "35k tops"}
	base := time.Now().UTC().Add(-time.Hour)
	for i, v := range values {
		store.StorePreferenceValue(ctx, &PreferenceValue{
			UserID:     "user-1",
			Key:        "budget",
			Value:      v,
			RecordedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}

	history, err := store.PreferenceHistory(ctx, "user-1", "budget", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 3 || history[0].Value != "35k tops" {
		t.Errorf("history not newest-first: %v", history)
	}

	limited, _ := store.PreferenceHistory(ctx, "user-1", "budget", 1)
	if len(limited) != 1 {
		t.Errorf("limit ignored: %v", limited)
	}

	other, _ := store.PreferenceHistory(ctx, "user-2", "budget", 0)
	if len(other) != 0 {
		t.Error("preference history leaked across users")
	}
}
