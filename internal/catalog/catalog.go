// Package catalog owns the question bank: a static set of curated question
// templates plus dynamic entries synthesized from high-effectiveness
// patterns observed in question memory. Question templates are immutable
// after creation; their track record lives in the memory ledger.
package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"advisor-engine/internal/logging"
	"advisor-engine/internal/types"
)

// Dynamic entries require at least this effectiveness before ingestion
const minIngestEffectiveness = 0.7

// EffectivePattern is a question-and-outcome pattern observed in memory,
// candidate for promotion into a dynamic catalog entry
type EffectivePattern struct {
	TemplateText       string                   `json:"template_text"`
	Category           types.QuestionCategory   `json:"category"`
	Complexity         types.QuestionComplexity `json:"complexity"`
	EffectivenessScore float64                  `json:"effectiveness_score"`
	Tags               []string                 `json:"tags,omitempty"`
	ExampleResponses   []string                 `json:"example_responses,omitempty"`
}

// Catalog is the bank of candidate questions. Static entries are loaded at
// construction; dynamic entries grow over time via pattern ingestion.
type Catalog struct {
	mu        sync.RWMutex
	questions map[string]*types.Question
	logger    logging.Logger
}

// Load creates a catalog populated with the built-in static question bank
func Load(logger logging.Logger) (*Catalog, error) {
	c := &Catalog{
		questions: make(map[string]*types.Question),
		logger:    logger.WithComponent("catalog"),
	}

	for i := range staticBank {
		q := staticBank[i]
		if err := q.Validate(); err != nil {
			return nil, fmt.Errorf("invalid static question %s: %w", q.ID, err)
		}
		c.questions[q.ID] = &q
	}

	c.logger.Info("Question catalog loaded", "static_questions", len(c.questions))
	return c, nil
}

// bankFile is the YAML layout of an external question bank
type bankFile struct {
	Questions []bankQuestion `yaml:"questions"`
}

type bankQuestion struct {
	ID                  string   `yaml:"id"`
	Text                string   `yaml:"text"`
	Category            string   `yaml:"category"`
	Complexity          string   `yaml:"complexity"`
	InformationValue    float64  `yaml:"information_value"`
	EngagementPotential float64  `yaml:"engagement_potential"`
	FollowUpIDs         []string `yaml:"follow_up_ids"`
	PrerequisiteIDs     []string `yaml:"prerequisite_ids"`
	Tags                []string `yaml:"tags"`
	ExampleAnswers      []string `yaml:"example_answers"`
}

// MergeFile loads a YAML bank file and merges its questions into the
// catalog. File entries override built-in entries with the same ID, so
// deployments can tune question metadata without recompiling.
func (c *Catalog) MergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read question bank file: %w", err)
	}

	var bank bankFile
	if err := yaml.Unmarshal(data, &bank); err != nil {
		return fmt.Errorf("failed to parse question bank file: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range bank.Questions {
		bq := &bank.Questions[i]
		q := &types.Question{
			ID:                  bq.ID,
			Text:                bq.Text,
			Category:            types.QuestionCategory(bq.Category),
			Complexity:          types.QuestionComplexity(bq.Complexity),
			InformationValue:    bq.InformationValue,
			EngagementPotential: bq.EngagementPotential,
			FollowUpIDs:         bq.FollowUpIDs,
			PrerequisiteIDs:     bq.PrerequisiteIDs,
			Tags:                bq.Tags,
			ExampleAnswers:      bq.ExampleAnswers,
			CreatedAt:           time.Now().UTC(),
		}
		if err := q.Validate(); err != nil {
			return fmt.Errorf("invalid question %q in bank file: %w", bq.ID, err)
		}
		c.questions[q.ID] = q
	}

	c.logger.Info("Merged question bank file", "path", path, "questions", len(bank.Questions))
	return nil
}

// IngestEffectivePattern synthesizes a dynamic question from a
// high-effectiveness pattern. The entry is keyed by a stable hash of the
// normalized template text, so re-ingesting the same pattern never
// duplicates entries. Malformed patterns are logged and skipped; the second
// return value reports whether an entry now exists for the pattern.
func (c *Catalog) IngestEffectivePattern(pattern *EffectivePattern) (string, bool) {
	if pattern == nil || strings.TrimSpace(pattern.TemplateText) == "" {
		c.logger.Warn("Skipping pattern with empty template text")
		return "", false
	}
	if !pattern.Category.Valid() {
		c.logger.Warn("Skipping pattern with unknown category", "category", pattern.Category)
		return "", false
	}
	if pattern.EffectivenessScore < minIngestEffectiveness || pattern.EffectivenessScore > 1 {
		c.logger.Warn("Skipping pattern below effectiveness threshold",
			"score", pattern.EffectivenessScore, "threshold", minIngestEffectiveness)
		return "", false
	}

	complexity := pattern.Complexity
	if !complexity.Valid() {
		complexity = types.ComplexityIntermediate
	}

	id := DynamicQuestionID(pattern.TemplateText)

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.questions[id]; exists {
		return id, true
	}

	question := &types.Question{
		ID:                  id,
		Text:                strings.TrimSpace(pattern.TemplateText),
		Category:            pattern.Category,
		Complexity:          complexity,
		InformationValue:    pattern.EffectivenessScore,
		EngagementPotential: pattern.EffectivenessScore,
		Tags:                append([]string{"learned"}, pattern.Tags...),
		ExampleAnswers:      pattern.ExampleResponses,
		Dynamic:             true,
		CreatedAt:           time.Now().UTC(),
	}
	c.questions[id] = question

	c.logger.Info("Ingested dynamic question", "question_id", id, "category", pattern.Category)
	return id, true
}

// DynamicQuestionID derives the stable identifier for a dynamic question
// from its normalized template text
func DynamicQuestionID(templateText string) string {
	normalized := strings.ToLower(strings.Join(strings.Fields(templateText), " "))
	sum := sha256.Sum256([]byte(normalized))
	return "dyn_" + hex.EncodeToString(sum[:])[:12]
}

// Get returns the question with the given ID, if present
func (c *Catalog) Get(id string) (*types.Question, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	q, ok := c.questions[id]
	return q, ok
}

// All returns every question sorted by ID for deterministic iteration
func (c *Catalog) All() []*types.Question {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]*types.Question, 0, len(c.questions))
	for _, q := range c.questions {
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ByCategory returns all questions in a category sorted by ID
func (c *Catalog) ByCategory(category types.QuestionCategory) []*types.Question {
	var out []*types.Question
	for _, q := range c.All() {
		if q.Category == category {
			out = append(out, q)
		}
	}
	return out
}

// Size returns the number of questions in the catalog
func (c *Catalog) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.questions)
}
