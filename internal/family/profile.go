// Package family is the specialized questioning module for family needs.
// It walks a fixed prerequisite sequence of catalog questions, folds the
// parsed answers into a derived profile and translates that profile into
// concrete vehicle requirements.
package family

import (
	"sort"
	"time"
)

// Age-group boundaries in years
const (
	infantMaxAge    = 1
	toddlerMaxAge   = 4
	childSeatMaxAge = 7
	schoolMaxAge    = 12
)

// AgeGroup buckets children for seating and safety reasoning
type AgeGroup string

const (
	AgeGroupInfant  AgeGroup = "infant"
	AgeGroupToddler AgeGroup = "toddler"
	AgeGroupSchool  AgeGroup = "school_age"
	AgeGroupTeen    AgeGroup = "teen"
)

// Child is one child in the household
type Child struct {
	Age      int      `json:"age"`
	AgeGroup AgeGroup `json:"age_group"`
}

// Profile is the derived family picture built from parsed answers. It is
// plain data; all reasoning lives in GenerateVehicleRequirements.
type Profile struct {
	HouseholdSize    int       `json:"household_size"`
	Adults           int       `json:"adults"`
	Children         []Child   `json:"children"`
	CarSeatsNeeded   int       `json:"car_seats_needed"`
	SpecialNeeds     []string  `json:"special_needs,omitempty"`
	ActivityPatterns []string  `json:"activity_patterns,omitempty"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// ChildrenByGroup counts children per age group
func (p *Profile) ChildrenByGroup() map[AgeGroup]int {
	counts := map[AgeGroup]int{}
	for _, c := range p.Children {
		counts[c.AgeGroup]++
	}
	return counts
}

// Complete reports whether the core composition questions have been
// answered. Activities and special needs are enrichment, not gates.
func (p *Profile) Complete() bool {
	return p.HouseholdSize > 0 && p.Adults > 0
}

// groupForAge buckets one age
func groupForAge(age int) AgeGroup {
	switch {
	case age <= infantMaxAge:
		return AgeGroupInfant
	case age <= toddlerMaxAge:
		return AgeGroupToddler
	case age <= schoolMaxAge:
		return AgeGroupSchool
	default:
		return AgeGroupTeen
	}
}

// newChildren builds sorted Child entries from raw ages, ignoring ages that
// are clearly adults or noise
func newChildren(ages []int) []Child {
	var children []Child
	for _, age := range ages {
		if age < 0 || age >= 18 {
			continue
		}
		children = append(children, Child{Age: age, AgeGroup: groupForAge(age)})
	}
	sort.Slice(children, func(i, j int) bool { return children[i].Age < children[j].Age })
	return children
}
