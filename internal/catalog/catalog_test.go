package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"advisor-engine/internal/logging"
	"advisor-engine/internal/types"
)

func loadTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := Load(logging.NewNoOpLogger())
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	return c
}

func TestStaticBankIsWellFormed(t *testing.T) {
	c := loadTestCatalog(t)

	if c.Size() == 0 {
		t.Fatal("static bank is empty")
	}

	for _, q := range c.All() {
		if err := q.Validate(); err != nil {
			t.Errorf("question %s invalid: %v", q.ID, err)
		}
		for _, prereq := range q.PrerequisiteIDs {
			if _, ok := c.Get(prereq); !ok {
				t.Errorf("question %s names unknown prerequisite %s", q.ID, prereq)
			}
		}
		for _, followUp := range q.FollowUpIDs {
			if _, ok := c.Get(followUp); !ok {
				t.Errorf("question %s names unknown follow-up %s", q.ID, followUp)
			}
		}
	}
}

func TestAllReturnsStableOrder(t *testing.T) {
	c := loadTestCatalog(t)

	first := c.All()
	second := c.All()
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Fatalf("catalog order unstable at %d: %s vs %s", i, first[i].ID, second[i].ID)
		}
	}
	for i := 1; i < len(first); i++ {
		if first[i-1].ID >= first[i].ID {
			t.Errorf("catalog not sorted by ID: %s before %s", first[i-1].ID, first[i].ID)
		}
	}
}

func TestByCategory(t *testing.T) {
	c := loadTestCatalog(t)

	family := c.ByCategory(types.CategoryFamily)
	if len(family) == 0 {
		t.Fatal("no family questions in bank")
	}
	for _, q := range family {
		if q.Category != types.CategoryFamily {
			t.Errorf("question %s has category %s", q.ID, q.Category)
		}
	}
}

func TestIngestEffectivePattern(t *testing.T) {
	c := loadTestCatalog(t)
	before := c.Size()

	pattern := &EffectivePattern{
		TemplateText:       "How do you feel about charging at home overnight?",
		Category:           types.CategoryEnvironment,
		Complexity:         types.ComplexityIntermediate,
		EffectivenessScore: 0.85,
	}

	id, ok := c.IngestEffectivePattern(pattern)
	if !ok {
		t.Fatal("well-formed pattern rejected")
	}
	if c.Size() != before+1 {
		t.Errorf("size = %d, want %d", c.Size(), before+1)
	}

	q, found := c.Get(id)
	if !found {
		t.Fatal("ingested question not retrievable")
	}
	if !q.Dynamic {
		t.Error("ingested question not marked dynamic")
	}

	// Re-ingesting the same text (modulo case and spacing) is idempotent
	again, ok := c.IngestEffectivePattern(&EffectivePattern{
		TemplateText:       "  how do you feel about   CHARGING at home overnight?  ",
		Category:           types.CategoryEnvironment,
		Complexity:         types.ComplexityIntermediate,
		EffectivenessScore: 0.9,
	})
	if !ok || again != id {
		t.Errorf("re-ingestion produced %q (ok=%v), want %q", again, ok, id)
	}
	if c.Size() != before+1 {
		t.Errorf("re-ingestion grew catalog to %d", c.Size())
	}
}

func TestIngestRejectsWeakOrMalformedPatterns(t *testing.T) {
	c := loadTestCatalog(t)
	before := c.Size()

	cases := []*EffectivePattern{
		nil,
		{TemplateText: "   ", Category: types.CategoryUsage, Complexity: types.ComplexityBasic, EffectivenessScore: 0.9},
		{TemplateText: "Is this useful?", Category: types.CategoryUsage, Complexity: types.ComplexityBasic, EffectivenessScore: 0.4},
		{TemplateText: "Is this useful?", Category: "nonsense", Complexity: types.ComplexityBasic, EffectivenessScore: 0.9},
	}
	for _, pattern := range cases {
		if _, ok := c.IngestEffectivePattern(pattern); ok {
			t.Errorf("pattern %+v accepted", pattern)
		}
	}
	if c.Size() != before {
		t.Errorf("rejected patterns changed catalog size to %d", c.Size())
	}
}

func TestDynamicQuestionIDStable(t *testing.T) {
	a := DynamicQuestionID("What matters most to you?")
	b := DynamicQuestionID("  what MATTERS   most to you?  ")
	if a != b {
		t.Errorf("normalized texts hash differently: %s vs %s", a, b)
	}
	if DynamicQuestionID("Something else entirely") == a {
		t.Error("different texts collide")
	}
}

func TestMergeFile(t *testing.T) {
	c := loadTestCatalog(t)

	path := filepath.Join(t.TempDir(), "bank.yaml")
	content := `questions:
  - id: usage_winter
    text: Do you drive in snow or on unplowed roads in winter?
    category: usage
    complexity: basic
    information_value: 0.7
    engagement_potential: 0.6
  - id: budget_range
    text: What total budget did you settle on?
    category: budget
    complexity: basic
    information_value: 0.95
    engagement_potential: 0.6
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := c.MergeFile(path); err != nil {
		t.Fatalf("merge: %v", err)
	}

	if _, ok := c.Get("usage_winter"); !ok {
		t.Error("new question from file missing")
	}
	q, _ := c.Get("budget_range")
	if q.Text != "What total budget did you settle on?" {
		t.Error("file entry did not override built-in question")
	}
}

func TestMergeFileRejectsInvalidEntries(t *testing.T) {
	c := loadTestCatalog(t)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	content := `questions:
  - id: broken
    text: ""
    category: usage
    complexity: basic
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := c.MergeFile(path); err == nil {
		t.Error("invalid bank file accepted")
	}
	if err := c.MergeFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing bank file accepted")
	}
}
