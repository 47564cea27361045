package family

import "strings"

// Requirement is one vehicle constraint derived from the family profile.
// Minimum is the floor the vehicle must meet; Preferred is the comfortable
// target. Flexible requirements can be traded away during refinement.
type Requirement struct {
	Name      string  `json:"name"`
	Minimum   string  `json:"minimum"`
	Preferred string  `json:"preferred"`
	Priority  float64 `json:"priority"`
	Flexible  bool    `json:"flexible"`
}

// GenerateVehicleRequirements translates a profile into concrete vehicle
// requirements. Pure function of the profile: same input, same output, no
// hidden state.
func GenerateVehicleRequirements(profile Profile) []Requirement {
	if !profile.Complete() {
		return nil
	}

	var reqs []Requirement
	groups := profile.ChildrenByGroup()

	reqs = append(reqs, seatingRequirement(profile))

	if profile.CarSeatsNeeded > 0 {
		reqs = append(reqs, Requirement{
			Name:      "latch_anchors",
			Minimum:   latchSpec(profile.CarSeatsNeeded),
			Preferred: latchSpec(profile.CarSeatsNeeded) + " with rear-door wide-opening access",
			Priority:  0.95,
			Flexible:  false,
		})
	}

	if groups[AgeGroupInfant] > 0 || groups[AgeGroupToddler] > 0 {
		reqs = append(reqs, Requirement{
			Name:      "rear_climate_and_shades",
			Minimum:   "rear air vents",
			Preferred: "tri-zone climate control with rear sunshades",
			Priority:  0.6,
			Flexible:  true,
		})
	}

	if len(profile.Children) > 0 {
		reqs = append(reqs, Requirement{
			Name:      "crash_safety",
			Minimum:   "5-star overall crash rating",
			Preferred: "top-tier independent safety pick with standard AEB",
			Priority:  1.0,
			Flexible:  false,
		})
	}

	if groups[AgeGroupTeen] > 0 {
		reqs = append(reqs, Requirement{
			Name:      "rear_legroom",
			Minimum:   "adult-usable second row",
			Preferred: "38+ inches of second-row legroom",
			Priority:  0.55,
			Flexible:  true,
		})
	}

	if req, ok := cargoRequirement(profile); ok {
		reqs = append(reqs, req)
	}
	if req, ok := towingRequirement(profile); ok {
		reqs = append(reqs, req)
	}
	if req, ok := accessibilityRequirement(profile); ok {
		reqs = append(reqs, req)
	}

	return reqs
}

// seatingRequirement sizes seating from household size with one spare seat
// preferred for carpools and guests
func seatingRequirement(profile Profile) Requirement {
	need := profile.HouseholdSize
	if need < 2 {
		need = 2
	}
	preferred := need + 1
	priority := 0.8
	if profile.HouseholdSize >= 5 {
		priority = 1.0
	}
	return Requirement{
		Name:      "seating_capacity",
		Minimum:   seatSpec(need),
		Preferred: seatSpec(preferred),
		Priority:  priority,
		Flexible:  false,
	}
}

func cargoRequirement(profile Profile) (Requirement, bool) {
	if !hasActivity(profile, "camp", "sport", "haul", "bike", "gear", "road trip", "roadtrip", "vacation") {
		return Requirement{}, false
	}
	return Requirement{
		Name:      "cargo_space",
		Minimum:   "fold-flat second row",
		Preferred: "30+ cubic feet behind the last row plus roof rails",
		Priority:  0.7,
		Flexible:  true,
	}, true
}

func towingRequirement(profile Profile) (Requirement, bool) {
	if !hasActivity(profile, "tow", "trailer", "boat", "camper", "caravan") {
		return Requirement{}, false
	}
	return Requirement{
		Name:      "towing_capacity",
		Minimum:   "2000 lb tow rating",
		Preferred: "3500+ lb tow rating with factory hitch",
		Priority:  0.65,
		Flexible:  true,
	}, true
}

func accessibilityRequirement(profile Profile) (Requirement, bool) {
	if len(profile.SpecialNeeds) == 0 {
		return Requirement{}, false
	}
	return Requirement{
		Name:      "accessibility",
		Minimum:   "low step-in height and wide door apertures",
		Preferred: "power sliding doors or power liftgate with flat load floor",
		Priority:  0.9,
		Flexible:  false,
	}, true
}

func hasActivity(profile Profile, keywords ...string) bool {
	for _, activity := range profile.ActivityPatterns {
		lowered := strings.ToLower(activity)
		for _, kw := range keywords {
			if strings.Contains(lowered, kw) {
				return true
			}
		}
	}
	return false
}

func seatSpec(n int) string {
	switch {
	case n <= 5:
		return "5 seats"
	case n <= 7:
		return "7 seats"
	default:
		return "8+ seats"
	}
}

func latchSpec(seats int) string {
	if seats == 1 {
		return "1 full LATCH position"
	}
	return "2+ full LATCH positions"
}
