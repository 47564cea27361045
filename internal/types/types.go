// Package types provides core data structures and type definitions for the
// adaptive questioning engine, including questions, preference records and
// scoring outputs shared across the catalog, memory, conflict and strategy
// packages.
package types

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// QuestionCategory represents the topical category of a question
type QuestionCategory string

const (
	// CategoryFamily covers household composition and passenger needs
	CategoryFamily QuestionCategory = "family"
	// CategoryPerformance covers power, acceleration and driving feel
	CategoryPerformance QuestionCategory = "performance"
	// CategoryBudget covers purchase price and running costs
	CategoryBudget QuestionCategory = "budget"
	// CategoryLifestyle covers hobbies, cargo and usage patterns outside commuting
	CategoryLifestyle QuestionCategory = "lifestyle"
	// CategorySafety covers crash ratings and driver-assistance expectations
	CategorySafety QuestionCategory = "safety"
	// CategoryTechnology covers infotainment and connectivity expectations
	CategoryTechnology QuestionCategory = "technology"
	// CategoryEnvironment covers fuel economy and emissions concerns
	CategoryEnvironment QuestionCategory = "environment"
	// CategoryUsage covers commute distance, terrain and parking
	CategoryUsage QuestionCategory = "usage"
	// CategoryBrand covers marque loyalty and image
	CategoryBrand QuestionCategory = "brand"
	// CategoryFeature covers specific option and trim wishes
	CategoryFeature QuestionCategory = "feature"
)

// Valid returns true if the category is a known question category
func (qc QuestionCategory) Valid() bool {
	switch qc {
	case CategoryFamily, CategoryPerformance, CategoryBudget, CategoryLifestyle,
		CategorySafety, CategoryTechnology, CategoryEnvironment, CategoryUsage,
		CategoryBrand, CategoryFeature:
		return true
	}
	return false
}

// AllCategories returns every known question category in a stable order
func AllCategories() []QuestionCategory {
	return []QuestionCategory{
		CategoryFamily, CategoryPerformance, CategoryBudget, CategoryLifestyle,
		CategorySafety, CategoryTechnology, CategoryEnvironment, CategoryUsage,
		CategoryBrand, CategoryFeature,
	}
}

// QuestionComplexity represents how demanding a question is to answer
type QuestionComplexity string

const (
	// ComplexityBasic is a short factual question
	ComplexityBasic QuestionComplexity = "basic"
	// ComplexityIntermediate requires some reflection
	ComplexityIntermediate QuestionComplexity = "intermediate"
	// ComplexityAdvanced requires weighing trade-offs
	ComplexityAdvanced QuestionComplexity = "advanced"
	// ComplexityOpen invites a free-form narrative answer
	ComplexityOpen QuestionComplexity = "open"
)

// Valid returns true if the complexity level is known
func (qc QuestionComplexity) Valid() bool {
	switch qc {
	case ComplexityBasic, ComplexityIntermediate, ComplexityAdvanced, ComplexityOpen:
		return true
	}
	return false
}

// Question is an immutable question template. Track record for a question
// lives in the memory ledger, never on the template itself.
type Question struct {
	ID                  string             `json:"id"`
	Text                string             `json:"text"`
	Category            QuestionCategory   `json:"category"`
	Complexity          QuestionComplexity `json:"complexity"`
	InformationValue    float64            `json:"information_value"`
	EngagementPotential float64            `json:"engagement_potential"`
	FollowUpIDs         []string           `json:"follow_up_ids,omitempty"`
	PrerequisiteIDs     []string           `json:"prerequisite_ids,omitempty"`
	Tags                []string           `json:"tags,omitempty"`
	ExampleAnswers      []string           `json:"example_answers,omitempty"`
	Dynamic             bool               `json:"dynamic"`
	CreatedAt           time.Time          `json:"created_at"`
}

// Validate checks the question template for structural problems
func (q *Question) Validate() error {
	if q.ID == "" {
		return errors.New("question ID cannot be empty")
	}
	if q.Text == "" {
		return errors.New("question text cannot be empty")
	}
	if !q.Category.Valid() {
		return fmt.Errorf("invalid question category: %s", q.Category)
	}
	if !q.Complexity.Valid() {
		return fmt.Errorf("invalid question complexity: %s", q.Complexity)
	}
	if q.InformationValue < 0 || q.InformationValue > 1 {
		return fmt.Errorf("information value %f out of range [0,1]", q.InformationValue)
	}
	if q.EngagementPotential < 0 || q.EngagementPotential > 1 {
		return fmt.Errorf("engagement potential %f out of range [0,1]", q.EngagementPotential)
	}
	return nil
}

// QuestionStatus represents the lifecycle state of a tracked question
type QuestionStatus string

const (
	// StatusAsked means the question was put to the user and no answer recorded yet
	StatusAsked QuestionStatus = "asked"
	// StatusAnswered means a response was recorded
	StatusAnswered QuestionStatus = "answered"
	// StatusSkipped means the user moved on without answering
	StatusSkipped QuestionStatus = "skipped"
	// StatusDeclined means the user explicitly refused to answer
	StatusDeclined QuestionStatus = "declined"
	// StatusFollowUp means the record was generated as a follow-up probe
	StatusFollowUp QuestionStatus = "follow_up"
)

// Valid returns true if the status is a known lifecycle state
func (qs QuestionStatus) Valid() bool {
	switch qs {
	case StatusAsked, StatusAnswered, StatusSkipped, StatusDeclined, StatusFollowUp:
		return true
	}
	return false
}

// QuestionRecord is one tracking event in the per-user ledger. Records are
// append-only: a record mutates exactly once, on the asked→answered
// transition, and is otherwise removed only by retention cleanup.
type QuestionRecord struct {
	ID                 string           `json:"id"`
	UserID             string           `json:"user_id"`
	QuestionID         string           `json:"question_id"`
	Text               string           `json:"text"`
	Category           QuestionCategory `json:"category"`
	Timestamp          time.Time        `json:"timestamp"`
	SessionID          string           `json:"session_id"`
	Status             QuestionStatus   `json:"status"`
	Response           *string          `json:"response,omitempty"`
	ResponseTimeMs     *int64           `json:"response_time_ms,omitempty"`
	EffectivenessScore *float64         `json:"effectiveness_score,omitempty"`
	FollowUpGenerated  bool             `json:"follow_up_generated"`
	Metadata           map[string]any   `json:"metadata,omitempty"`
}

// NewQuestionRecord creates an ASKED record for a question put to a user
func NewQuestionRecord(userID, sessionID string, question *Question) (*QuestionRecord, error) {
	if userID == "" {
		return nil, errors.New("user ID cannot be empty")
	}
	if sessionID == "" {
		return nil, errors.New("session ID cannot be empty")
	}
	if question == nil {
		return nil, errors.New("question cannot be nil")
	}
	if err := question.Validate(); err != nil {
		return nil, fmt.Errorf("invalid question: %w", err)
	}

	return &QuestionRecord{
		ID:         uuid.New().String(),
		UserID:     userID,
		QuestionID: question.ID,
		Text:       question.Text,
		Category:   question.Category,
		Timestamp:  time.Now().UTC(),
		SessionID:  sessionID,
		Status:     StatusAsked,
		Metadata:   map[string]any{},
	}, nil
}

// Validate checks the record for structural problems
func (qr *QuestionRecord) Validate() error {
	if qr.ID == "" {
		return errors.New("record ID cannot be empty")
	}
	if qr.UserID == "" {
		return errors.New("user ID cannot be empty")
	}
	if qr.QuestionID == "" {
		return errors.New("question ID cannot be empty")
	}
	if qr.SessionID == "" {
		return errors.New("session ID cannot be empty")
	}
	if !qr.Status.Valid() {
		return fmt.Errorf("invalid question status: %s", qr.Status)
	}
	if qr.Timestamp.IsZero() {
		return errors.New("timestamp cannot be zero")
	}
	if qr.EffectivenessScore != nil && (*qr.EffectivenessScore < 0 || *qr.EffectivenessScore > 1) {
		return fmt.Errorf("effectiveness score %f out of range [0,1]", *qr.EffectivenessScore)
	}
	return nil
}

// Answered returns true once a response has been recorded
func (qr *QuestionRecord) Answered() bool {
	return qr.Status == StatusAnswered
}

// PreferenceSource represents how a preference entered the profile
type PreferenceSource string

const (
	// SourceExplicit means the user stated it directly
	SourceExplicit PreferenceSource = "explicit"
	// SourceImplicit means it was inferred from behaviour
	SourceImplicit PreferenceSource = "implicit"
	// SourceContextual means it was derived from surrounding conversation
	SourceContextual PreferenceSource = "contextual"
	// SourceCorrected means the user corrected a previously held value;
	// corrected entries supersede earlier same-category entries in ranking
	SourceCorrected PreferenceSource = "corrected"
)

// Valid returns true if the source is known
func (ps PreferenceSource) Valid() bool {
	switch ps {
	case SourceExplicit, SourceImplicit, SourceContextual, SourceCorrected:
		return true
	}
	return false
}

// UserPreference is one expressed (category, value) pair. Weight measures
// strength of the preference, confidence measures certainty of the belief.
// The two dimensions are independent and never collapsed into each other.
type UserPreference struct {
	Category   QuestionCategory `json:"category"`
	Value      string           `json:"value"`
	Weight     float64          `json:"weight"`
	Confidence float64          `json:"confidence"`
	Source     PreferenceSource `json:"source"`
	Timestamp  time.Time        `json:"timestamp"`
}

// Validate checks range bounds on weight and confidence
func (up *UserPreference) Validate() error {
	if !up.Category.Valid() {
		return fmt.Errorf("invalid preference category: %s", up.Category)
	}
	if up.Value == "" {
		return errors.New("preference value cannot be empty")
	}
	if up.Weight < 0 || up.Weight > 1 {
		return fmt.Errorf("preference weight %f out of range [0,1]", up.Weight)
	}
	if up.Confidence < 0 || up.Confidence > 1 {
		return fmt.Errorf("preference confidence %f out of range [0,1]", up.Confidence)
	}
	if !up.Source.Valid() {
		return fmt.Errorf("invalid preference source: %s", up.Source)
	}
	return nil
}

// PreferenceEvolution records an observed change in a preference value over
// time. ConfidenceScore expresses confidence that the preference is still
// evolving rather than settled; it grows with observed churn.
type PreferenceEvolution struct {
	UserID          string    `json:"user_id"`
	PreferenceKey   string    `json:"preference_key"`
	PreviousValue   string    `json:"previous_value"`
	NewValue        string    `json:"new_value"`
	ChangeCount     int       `json:"change_count"`
	ConfidenceScore float64   `json:"confidence_score"`
	DetectedAt      time.Time `json:"detected_at"`
}

// ConversationStage represents where the dialogue currently is. The stage is
// owned by the caller's dialogue state; the engine only reads it.
type ConversationStage string

const (
	StageGreeting       ConversationStage = "greeting"
	StageDiscovery      ConversationStage = "discovery"
	StageRefinement     ConversationStage = "refinement"
	StageRecommendation ConversationStage = "recommendation"
	StageClosing        ConversationStage = "closing"
)

// Valid returns true if the stage is known
func (cs ConversationStage) Valid() bool {
	switch cs {
	case StageGreeting, StageDiscovery, StageRefinement, StageRecommendation, StageClosing:
		return true
	}
	return false
}

// ResponsePatterns aggregates how a user tends to answer questions
type ResponsePatterns struct {
	AvgResponseWords    float64            `json:"avg_response_words"`
	ResponseRate        float64            `json:"response_rate"`
	PreferredComplexity QuestionComplexity `json:"preferred_complexity"`
}

// Fatigue indicator flags recognised by the scoring engine
const (
	FatigueShortReplies      = "short_replies"
	FatigueNegativeSentiment = "negative_sentiment"
	FatigueTopicRepetition   = "topic_repetition"
	FatigueBoredom           = "boredom"
	FatigueIrrelevance       = "irrelevance"
)

// UserContext is the ephemeral per-turn snapshot the strategy scores
// against. It is rebuilt from the memory ledger plus live signals on every
// selection call and never persisted as a unit.
type UserContext struct {
	UserID                string                               `json:"user_id"`
	SessionID             string                               `json:"session_id"`
	ConversationStage     ConversationStage                    `json:"conversation_stage"`
	KnownPreferences      map[QuestionCategory]UserPreference  `json:"known_preferences"`
	RecentTopics          []QuestionCategory                   `json:"recent_topics"`
	EngagementLevel       float64                              `json:"engagement_level"`
	AskedQuestionIDs      map[string]bool                      `json:"asked_question_ids"`
	SessionQuestionCount  int                                  `json:"session_question_count"`
	LastQuestionTimestamp *time.Time                           `json:"last_question_timestamp,omitempty"`
	LastAskedQuestionIDs  []string                             `json:"last_asked_question_ids,omitempty"`
	CategoryLastAsked     map[QuestionCategory]time.Time       `json:"category_last_asked,omitempty"`
	SessionCategories     map[QuestionCategory]int             `json:"session_categories,omitempty"`
	ResponsePatterns      ResponsePatterns                     `json:"response_patterns"`
	FatigueIndicators     map[string]bool                      `json:"fatigue_indicators,omitempty"`
}

// Validate checks the context for structural problems
func (uc *UserContext) Validate() error {
	if uc.UserID == "" {
		return errors.New("user ID cannot be empty")
	}
	if !uc.ConversationStage.Valid() {
		return fmt.Errorf("invalid conversation stage: %s", uc.ConversationStage)
	}
	if uc.EngagementLevel < 0 || uc.EngagementLevel > 1 {
		return fmt.Errorf("engagement level %f out of range [0,1]", uc.EngagementLevel)
	}
	return nil
}

// HasAsked reports whether the question already appears in the asked set
func (uc *UserContext) HasAsked(questionID string) bool {
	return uc.AskedQuestionIDs[questionID]
}

// QuestionScore is the transient output of one scoring pass. It is
// recomputed on every selection call and never persisted.
type QuestionScore struct {
	QuestionID       string   `json:"question_id"`
	InformationValue float64  `json:"information_value"`
	EngagementScore  float64  `json:"engagement_score"`
	TimingScore      float64  `json:"timing_score"`
	NoveltyScore     float64  `json:"novelty_score"`
	TotalScore       float64  `json:"total_score"`
	SelectionReasons []string `json:"selection_reasons"`
}
