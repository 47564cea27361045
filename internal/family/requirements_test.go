package family

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fullProfile() Profile {
	return Profile{
		HouseholdSize:    5,
		Adults:           2,
		Children:         newChildren([]int{2, 8, 14}),
		CarSeatsNeeded:   1,
		ActivityPatterns: []string{"camping trips", "towing a small boat"},
		SpecialNeeds:     []string{"wheelchair access"},
	}
}

func findRequirement(t *testing.T, reqs []Requirement, name string) Requirement {
	t.Helper()
	for _, r := range reqs {
		if r.Name == name {
			return r
		}
	}
	t.Fatalf("requirement %s missing from %v", name, reqs)
	return Requirement{}
}

func TestGenerateVehicleRequirements(t *testing.T) {
	reqs := GenerateVehicleRequirements(fullProfile())
	require.NotEmpty(t, reqs)

	seating := findRequirement(t, reqs, "seating_capacity")
	assert.Equal(t, "5 seats", seating.Minimum)
	assert.Equal(t, "7 seats", seating.Preferred)
	assert.False(t, seating.Flexible)
	assert.Equal(t, 1.0, seating.Priority)

	latch := findRequirement(t, reqs, "latch_anchors")
	assert.False(t, latch.Flexible)

	safety := findRequirement(t, reqs, "crash_safety")
	assert.Equal(t, 1.0, safety.Priority)

	cargo := findRequirement(t, reqs, "cargo_space")
	assert.True(t, cargo.Flexible)

	findRequirement(t, reqs, "towing_capacity")

	access := findRequirement(t, reqs, "accessibility")
	assert.False(t, access.Flexible)

	for _, r := range reqs {
		assert.GreaterOrEqual(t, r.Priority, 0.0, "%s priority", r.Name)
		assert.LessOrEqual(t, r.Priority, 1.0, "%s priority", r.Name)
		assert.NotEmpty(t, r.Minimum, "%s minimum", r.Name)
		assert.NotEmpty(t, r.Preferred, "%s preferred", r.Name)
	}
}

func TestGenerateVehicleRequirementsIncompleteProfile(t *testing.T) {
	assert.Nil(t, GenerateVehicleRequirements(Profile{}))
	assert.Nil(t, GenerateVehicleRequirements(Profile{HouseholdSize: 3}))
}

func TestGenerateVehicleRequirementsPure(t *testing.T) {
	profile := fullProfile()

	first := GenerateVehicleRequirements(profile)
	second := GenerateVehicleRequirements(profile)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("same profile produced different requirements:\n%v\n%v", first, second)
	}
}

func TestSmallHouseholdRequirements(t *testing.T) {
	reqs := GenerateVehicleRequirements(Profile{HouseholdSize: 2, Adults: 2})

	seating := findRequirement(t, reqs, "seating_capacity")
	assert.Equal(t, "5 seats", seating.Minimum)
	assert.Equal(t, 0.8, seating.Priority)

	for _, r := range reqs {
		assert.NotEqual(t, "latch_anchors", r.Name, "no children, no car seats")
		assert.NotEqual(t, "crash_safety", r.Name)
	}
}

func TestTeenLegroomRequirement(t *testing.T) {
	reqs := GenerateVehicleRequirements(Profile{
		HouseholdSize: 3,
		Adults:        2,
		Children:      newChildren([]int{15}),
	})

	legroom := findRequirement(t, reqs, "rear_legroom")
	assert.True(t, legroom.Flexible)
}
