// Package nlu turns free-text user answers into structured values. The
// Parser interface is the only thing callers depend on; the OpenAI-backed
// implementation is the production path and the rule-based one keeps the
// engine usable offline and in tests.
package nlu

import (
	"context"
	"fmt"
)

// FieldType describes the expected shape of one extracted field
type FieldType string

const (
	FieldInt     FieldType = "integer"
	FieldIntList FieldType = "integer_list"
	FieldBool    FieldType = "boolean"
	FieldString  FieldType = "string"
	FieldStrList FieldType = "string_list"
)

// Field is one named slot the parser should fill from the text
type Field struct {
	Name        string    `json:"name"`
	Type        FieldType `json:"type"`
	Description string    `json:"description"`
}

// Schema describes the structured result expected from a piece of free text
type Schema struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Fields      []Field `json:"fields"`
}

// Result holds the extracted values keyed by field name. Fields the parser
// could not fill are absent rather than zero-valued.
type Result map[string]interface{}

// Int returns the named field as an int, tolerating the float64 that JSON
// decoding produces
func (r Result) Int(name string) (int, bool) {
	switch v := r[name].(type) {
	case int:
		return v, true
	case float64:
		return int(v), true
	}
	return 0, false
}

// IntList returns the named field as a slice of ints
func (r Result) IntList(name string) ([]int, bool) {
	switch v := r[name].(type) {
	case []int:
		return v, true
	case []interface{}:
		out := make([]int, 0, len(v))
		for _, item := range v {
			switch n := item.(type) {
			case int:
				out = append(out, n)
			case float64:
				out = append(out, int(n))
			default:
				return nil, false
			}
		}
		return out, true
	}
	return nil, false
}

// Bool returns the named field as a bool
func (r Result) Bool(name string) (bool, bool) {
	v, ok := r[name].(bool)
	return v, ok
}

// StringList returns the named field as a slice of strings
func (r Result) StringList(name string) ([]string, bool) {
	switch v := r[name].(type) {
	case []string:
		return v, true
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}

// Parser extracts a structured Result from free text according to a schema.
// Implementations may be slow or fail; callers own any retry policy.
type Parser interface {
	Parse(ctx context.Context, freeText string, schema Schema) (Result, error)
}

// ErrEmptyInput is returned when there is no text to parse
var ErrEmptyInput = fmt.Errorf("nlu: empty input text")
