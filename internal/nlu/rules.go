package nlu

import (
	"context"
	"regexp"
	"strconv"
	"strings"
)

// RuleParser is a deterministic keyword and pattern extractor. It covers
// the structured-answer shapes the question bank actually produces, so the
// engine keeps working when no language model is configured.
type RuleParser struct{}

// NewRuleParser returns the offline parser
func NewRuleParser() *RuleParser {
	return &RuleParser{}
}

var (
	numberPattern   = regexp.MustCompile(`\b\d{1,3}\b`)
	yesPattern      = regexp.MustCompile(`(?i)\b(yes|yeah|yep|definitely|sure|of course|we do|i do)\b`)
	noPattern       = regexp.MustCompile(`(?i)\b(no|nope|not really|don't|dont|none)\b`)
	listSplitter    = regexp.MustCompile(`\s*(?:,|;|\band\b|\bplus\b)\s*`)
	numberWordTable = map[string]int{
		"one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
		"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
		"a": 1, "an": 1, "both": 2, "twins": 2,
	}
)

// Parse fills each schema field it can recognize and silently skips the
// rest. It never fails for data-driven reasons.
func (p *RuleParser) Parse(_ context.Context, freeText string, schema Schema) (Result, error) {
	text := strings.TrimSpace(freeText)
	if text == "" {
		return nil, ErrEmptyInput
	}

	result := Result{}
	// Successive integer fields consume successive numbers from the text, so
	// "we are 5, 2 adults" fills household size and adult count separately
	nums := allNumbers(text)
	nextNum := 0

	for _, field := range schema.Fields {
		switch field.Type {
		case FieldInt:
			if nextNum < len(nums) {
				result[field.Name] = nums[nextNum]
				nextNum++
			}
		case FieldIntList:
			if nums := allNumbers(text); len(nums) > 0 {
				result[field.Name] = nums
			}
		case FieldBool:
			if yesPattern.MatchString(text) {
				result[field.Name] = true
			} else if noPattern.MatchString(text) {
				result[field.Name] = false
			}
		case FieldString:
			result[field.Name] = text
		case FieldStrList:
			result[field.Name] = splitList(text)
		}
	}
	return result, nil
}

func firstNumber(text string) (int, bool) {
	if match := numberPattern.FindString(text); match != "" {
		n, err := strconv.Atoi(match)
		if err == nil {
			return n, true
		}
	}
	for _, word := range strings.Fields(strings.ToLower(text)) {
		if n, ok := numberWordTable[strings.Trim(word, ".,!?")]; ok {
			return n, true
		}
	}
	return 0, false
}

func allNumbers(text string) []int {
	var nums []int
	for _, match := range numberPattern.FindAllString(text, -1) {
		if n, err := strconv.Atoi(match); err == nil {
			nums = append(nums, n)
		}
	}
	if len(nums) == 0 {
		if n, ok := firstNumber(text); ok {
			nums = append(nums, n)
		}
	}
	return nums
}

func splitList(text string) []string {
	parts := listSplitter.Split(text, -1)
	var items []string
	for _, part := range parts {
		item := strings.Trim(strings.TrimSpace(part), ".,!?")
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}
