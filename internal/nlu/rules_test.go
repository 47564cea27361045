package nlu

import (
	"context"
	"testing"
)

func TestRuleParserIntegers(t *testing.T) {
	parser := NewRuleParser()
	schema := Schema{
		Name: "family_size",
		Fields: []Field{
			{Name: "household_size", Type: FieldInt},
			{Name: "adults", Type: FieldInt},
		},
	}

	cases := []struct {
		name       string
		text       string
		wantSize   int
		wantAdults int
		adultsSet  bool
	}{
		{"digits with both counts", "We are 5 people, 2 adults", 5, 2, true},
		{"single digit", "We are 4 people", 4, 0, false},
		{"number word", "There are five of us", 5, 0, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := parser.Parse(context.Background(), tc.text, schema)
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			size, ok := result.Int("household_size")
			if !ok || size != tc.wantSize {
				t.Errorf("household_size = %d (ok=%v), want %d", size, ok, tc.wantSize)
			}
			adults, ok := result.Int("adults")
			if ok != tc.adultsSet {
				t.Errorf("adults set = %v, want %v", ok, tc.adultsSet)
			}
			if tc.adultsSet && adults != tc.wantAdults {
				t.Errorf("adults = %d, want %d", adults, tc.wantAdults)
			}
		})
	}
}

func TestRuleParserIntList(t *testing.T) {
	parser := NewRuleParser()
	schema := Schema{
		Name:   "family_ages",
		Fields: []Field{{Name: "child_ages", Type: FieldIntList}},
	}

	result, err := parser.Parse(context.Background(), "They are 2, 8 and 12", schema)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	ages, ok := result.IntList("child_ages")
	if !ok {
		t.Fatal("child_ages missing")
	}
	want := []int{2, 8, 12}
	if len(ages) != len(want) {
		t.Fatalf("ages = %v, want %v", ages, want)
	}
	for i := range want {
		if ages[i] != want[i] {
			t.Errorf("ages[%d] = %d, want %d", i, ages[i], want[i])
		}
	}
}

func TestRuleParserBooleans(t *testing.T) {
	parser := NewRuleParser()
	schema := Schema{
		Name:   "family_car_seats",
		Fields: []Field{{Name: "uses_car_seats", Type: FieldBool}},
	}

	cases := []struct {
		text string
		want bool
		set  bool
	}{
		{"Yes, two of them", true, true},
		{"Definitely, the youngest needs one", true, true},
		{"No, they have outgrown them", false, true},
		{"Maybe next year", false, false},
	}
	for _, tc := range cases {
		result, err := parser.Parse(context.Background(), tc.text, schema)
		if err != nil {
			t.Fatalf("parse %q: %v", tc.text, err)
		}
		got, ok := result.Bool("uses_car_seats")
		if ok != tc.set {
			t.Errorf("%q: set = %v, want %v", tc.text, ok, tc.set)
			continue
		}
		if tc.set && got != tc.want {
			t.Errorf("%q: value = %v, want %v", tc.text, got, tc.want)
		}
	}
}

func TestRuleParserStringList(t *testing.T) {
	parser := NewRuleParser()
	schema := Schema{
		Name:   "family_activities",
		Fields: []Field{{Name: "activities", Type: FieldStrList}},
	}

	result, err := parser.Parse(context.Background(), "Camping, hauling bikes and weekend soccer", schema)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	activities, ok := result.StringList("activities")
	if !ok || len(activities) != 3 {
		t.Fatalf("activities = %v (ok=%v), want 3 entries", activities, ok)
	}
}

func TestRuleParserEmptyInput(t *testing.T) {
	parser := NewRuleParser()
	if _, err := parser.Parse(context.Background(), "   ", Schema{}); err == nil {
		t.Error("empty input accepted")
	}
}

func TestResultAccessorsHandleJSONNumbers(t *testing.T) {
	// JSON decoding produces float64 for numbers and []interface{} for arrays
	result := Result{
		"count": float64(3),
		"ages":  []interface{}{float64(2), float64(8)},
		"items": []interface{}{"camping", "towing"},
	}

	if n, ok := result.Int("count"); !ok || n != 3 {
		t.Errorf("Int = %d (ok=%v)", n, ok)
	}
	ages, ok := result.IntList("ages")
	if !ok || len(ages) != 2 || ages[1] != 8 {
		t.Errorf("IntList = %v (ok=%v)", ages, ok)
	}
	items, ok := result.StringList("items")
	if !ok || len(items) != 2 {
		t.Errorf("StringList = %v (ok=%v)", items, ok)
	}
}
