package types

import (
	"testing"
	"time"
)

func validQuestion() *Question {
	return &Question{
		ID:                  "budget_range",
		Text:                "What overall budget do you have in mind?",
		Category:            CategoryBudget,
		Complexity:          ComplexityBasic,
		InformationValue:    0.95,
		EngagementPotential: 0.6,
		CreatedAt:           time.Now().UTC(),
	}
}

func TestQuestionValidate(t *testing.T) {
	if err := validQuestion().Validate(); err != nil {
		t.Fatalf("valid question rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Question)
	}{
		{"empty ID", func(q *Question) { q.ID = "" }},
		{"empty text", func(q *Question) { q.Text = "" }},
		{"bad category", func(q *Question) { q.Category = "horoscope" }},
		{"bad complexity", func(q *Question) { q.Complexity = "impossible" }},
		{"information value above one", func(q *Question) { q.InformationValue = 1.2 }},
		{"negative engagement potential", func(q *Question) { q.EngagementPotential = -0.1 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q := validQuestion()
			tc.mutate(q)
			if err := q.Validate(); err == nil {
				t.Error("expected validation failure")
			}
		})
	}
}

func TestNewQuestionRecord(t *testing.T) {
	record, err := NewQuestionRecord("user-1", "session-1", validQuestion())
	if err != nil {
		t.Fatalf("new record: %v", err)
	}
	if record.ID == "" {
		t.Error("record ID not generated")
	}
	if record.Status != StatusAsked {
		t.Errorf("status = %s, want %s", record.Status, StatusAsked)
	}
	if record.Timestamp.IsZero() {
		t.Error("timestamp not set")
	}
	if record.Answered() {
		t.Error("fresh record reports answered")
	}
	if err := record.Validate(); err != nil {
		t.Errorf("fresh record invalid: %v", err)
	}
}

func TestNewQuestionRecordRejectsBadInput(t *testing.T) {
	if _, err := NewQuestionRecord("", "session-1", validQuestion()); err == nil {
		t.Error("empty user ID accepted")
	}
	if _, err := NewQuestionRecord("user-1", "session-1", nil); err == nil {
		t.Error("nil question accepted")
	}
	bad := validQuestion()
	bad.InformationValue = 3
	if _, err := NewQuestionRecord("user-1", "session-1", bad); err == nil {
		t.Error("invalid question accepted")
	}
}

func TestUserPreferenceValidate(t *testing.T) {
	valid := UserPreference{
		Category:   CategoryPerformance,
		Value:      "quick acceleration",
		Weight:     0.9,
		Confidence: 0.8,
		Source:     SourceExplicit,
		Timestamp:  time.Now().UTC(),
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid preference rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*UserPreference)
	}{
		{"bad category", func(p *UserPreference) { p.Category = "astrology" }},
		{"empty value", func(p *UserPreference) { p.Value = "" }},
		{"weight above one", func(p *UserPreference) { p.Weight = 1.5 }},
		{"negative confidence", func(p *UserPreference) { p.Confidence = -0.3 }},
		{"bad source", func(p *UserPreference) { p.Source = "rumor" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := valid
			tc.mutate(&p)
			if err := p.Validate(); err == nil {
				t.Error("expected validation failure")
			}
		})
	}
}

func TestUserContextValidate(t *testing.T) {
	uc := &UserContext{
		UserID:            "user-1",
		ConversationStage: StageDiscovery,
		EngagementLevel:   0.5,
	}
	if err := uc.Validate(); err != nil {
		t.Fatalf("valid context rejected: %v", err)
	}

	uc.EngagementLevel = 1.5
	if err := uc.Validate(); err == nil {
		t.Error("out-of-range engagement accepted")
	}

	uc.EngagementLevel = 0.5
	uc.ConversationStage = "smalltalk"
	if err := uc.Validate(); err == nil {
		t.Error("unknown stage accepted")
	}
}

func TestHasAskedOnNilMap(t *testing.T) {
	uc := &UserContext{UserID: "user-1", ConversationStage: StageGreeting}
	if uc.HasAsked("anything") {
		t.Error("nil asked set reported true")
	}
}

func TestEnumValidity(t *testing.T) {
	for _, c := range AllCategories() {
		if !c.Valid() {
			t.Errorf("category %s reported invalid", c)
		}
	}
	if QuestionCategory("weather").Valid() {
		t.Error("unknown category reported valid")
	}

	for _, s := range []ConversationStage{StageGreeting, StageDiscovery, StageRefinement, StageRecommendation, StageClosing} {
		if !s.Valid() {
			t.Errorf("stage %s reported invalid", s)
		}
	}
	for _, st := range []QuestionStatus{StatusAsked, StatusAnswered, StatusSkipped, StatusDeclined, StatusFollowUp} {
		if !st.Valid() {
			t.Errorf("status %s reported invalid", st)
		}
	}
}
