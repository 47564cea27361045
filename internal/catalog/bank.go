package catalog

import "advisor-engine/internal/types"

// staticBank is the built-in question bank. Information value and
// engagement potential are baseline estimates; the memory ledger refines
// the picture per user over time.
var staticBank = []types.Question{
	{
		ID:                  "family_size",
		Text:                "How many people will regularly ride in the vehicle?",
		Category:            types.CategoryFamily,
		Complexity:          types.ComplexityBasic,
		InformationValue:    0.9,
		EngagementPotential: 0.6,
		FollowUpIDs:         []string{"family_ages", "family_car_seats"},
		Tags:                []string{"core", "identity"},
		ExampleAnswers:      []string{"Just me", "Me and my partner", "Two adults and three kids"},
	},
	{
		ID:                  "family_ages",
		Text:                "What are the ages of the children who will ride along?",
		Category:            types.CategoryFamily,
		Complexity:          types.ComplexityBasic,
		InformationValue:    0.8,
		EngagementPotential: 0.65,
		PrerequisiteIDs:     []string{"family_size"},
		FollowUpIDs:         []string{"family_car_seats"},
		Tags:                []string{"core"},
		ExampleAnswers:      []string{"8 and 12", "A toddler and a newborn"},
	},
	{
		ID:                  "family_car_seats",
		Text:                "Will you need to fit child seats or boosters, and how many?",
		Category:            types.CategoryFamily,
		Complexity:          types.ComplexityBasic,
		InformationValue:    0.7,
		EngagementPotential: 0.5,
		PrerequisiteIDs:     []string{"family_ages"},
		ExampleAnswers:      []string{"Two car seats", "One booster"},
	},
	{
		ID:                  "family_activities",
		Text:                "What family activities or trips do you want the vehicle to handle?",
		Category:            types.CategoryFamily,
		Complexity:          types.ComplexityOpen,
		InformationValue:    0.75,
		EngagementPotential: 0.85,
		PrerequisiteIDs:     []string{"family_size"},
		ExampleAnswers:      []string{"Weekend camping", "Soccer practice runs", "Long road trips every summer"},
	},
	{
		ID:                  "budget_range",
		Text:                "What overall budget do you have in mind for this purchase?",
		Category:            types.CategoryBudget,
		Complexity:          types.ComplexityBasic,
		InformationValue:    0.95,
		EngagementPotential: 0.5,
		FollowUpIDs:         []string{"budget_monthly", "budget_running_costs"},
		Tags:                []string{"core"},
		ExampleAnswers:      []string{"Under 30k", "40 to 50 thousand"},
	},
	{
		ID:                  "budget_monthly",
		Text:                "Are you thinking of financing, and if so what monthly payment feels comfortable?",
		Category:            types.CategoryBudget,
		Complexity:          types.ComplexityIntermediate,
		InformationValue:    0.8,
		EngagementPotential: 0.45,
		PrerequisiteIDs:     []string{"budget_range"},
		ExampleAnswers:      []string{"Around 450 a month", "Paying cash"},
	},
	{
		ID:                  "budget_running_costs",
		Text:                "How much do fuel, insurance and maintenance costs factor into your decision?",
		Category:            types.CategoryBudget,
		Complexity:          types.ComplexityIntermediate,
		InformationValue:    0.7,
		EngagementPotential: 0.5,
		PrerequisiteIDs:     []string{"budget_range"},
	},
	{
		ID:                  "usage_commute",
		Text:                "What does a typical week of driving look like for you?",
		Category:            types.CategoryUsage,
		Complexity:          types.ComplexityOpen,
		InformationValue:    0.9,
		EngagementPotential: 0.8,
		FollowUpIDs:         []string{"usage_terrain", "usage_parking"},
		Tags:                []string{"core"},
		ExampleAnswers:      []string{"30 miles of highway each way", "Short city hops", "Mostly weekend driving"},
	},
	{
		ID:                  "usage_terrain",
		Text:                "Do you drive in snow, on dirt roads, or tow anything?",
		Category:            types.CategoryUsage,
		Complexity:          types.ComplexityBasic,
		InformationValue:    0.75,
		EngagementPotential: 0.6,
		PrerequisiteIDs:     []string{"usage_commute"},
		ExampleAnswers:      []string{"Heavy snow every winter", "I tow a small boat"},
	},
	{
		ID:                  "usage_parking",
		Text:                "Where will the vehicle usually be parked? Street, garage, or a lot?",
		Category:            types.CategoryUsage,
		Complexity:          types.ComplexityBasic,
		InformationValue:    0.5,
		EngagementPotential: 0.4,
		PrerequisiteIDs:     []string{"usage_commute"},
	},
	{
		ID:                  "performance_priority",
		Text:                "How much does driving feel matter to you, things like acceleration and handling?",
		Category:            types.CategoryPerformance,
		Complexity:          types.ComplexityIntermediate,
		InformationValue:    0.7,
		EngagementPotential: 0.85,
		FollowUpIDs:         []string{"performance_tradeoff"},
		ExampleAnswers:      []string{"I want something quick", "Comfort over speed"},
	},
	{
		ID:                  "performance_tradeoff",
		Text:                "If you had to choose, would you trade some performance for better fuel economy?",
		Category:            types.CategoryPerformance,
		Complexity:          types.ComplexityAdvanced,
		InformationValue:    0.8,
		EngagementPotential: 0.7,
		PrerequisiteIDs:     []string{"performance_priority"},
		Tags:                []string{"conflict_resolution"},
	},
	{
		ID:                  "environment_mpg",
		Text:                "Is fuel economy or going electric important to you?",
		Category:            types.CategoryEnvironment,
		Complexity:          types.ComplexityBasic,
		InformationValue:    0.8,
		EngagementPotential: 0.6,
		FollowUpIDs:         []string{"environment_charging"},
		ExampleAnswers:      []string{"I'd love 50+ MPG", "Thinking about an EV"},
	},
	{
		ID:                  "environment_charging",
		Text:                "Would you be able to charge an electric vehicle at home or work?",
		Category:            types.CategoryEnvironment,
		Complexity:          types.ComplexityBasic,
		InformationValue:    0.7,
		EngagementPotential: 0.55,
		PrerequisiteIDs:     []string{"environment_mpg"},
	},
	{
		ID:                  "safety_priorities",
		Text:                "Which safety features matter most to you, like crash ratings or driver assistance?",
		Category:            types.CategorySafety,
		Complexity:          types.ComplexityIntermediate,
		InformationValue:    0.75,
		EngagementPotential: 0.6,
		Tags:                []string{"core"},
	},
	{
		ID:                  "technology_must_haves",
		Text:                "What in-car technology do you consider essential?",
		Category:            types.CategoryTechnology,
		Complexity:          types.ComplexityIntermediate,
		InformationValue:    0.6,
		EngagementPotential: 0.75,
		ExampleAnswers:      []string{"CarPlay", "A good navigation system", "Heated seats"},
	},
	{
		ID:                  "lifestyle_cargo",
		Text:                "Do you haul gear, sports equipment, or anything bulky regularly?",
		Category:            types.CategoryLifestyle,
		Complexity:          types.ComplexityBasic,
		InformationValue:    0.65,
		EngagementPotential: 0.7,
		ExampleAnswers:      []string{"Golf clubs and a stroller", "Mountain bikes most weekends"},
	},
	{
		ID:                  "brand_preferences",
		Text:                "Are there brands you love, or ones you'd never consider?",
		Category:            types.CategoryBrand,
		Complexity:          types.ComplexityBasic,
		InformationValue:    0.55,
		EngagementPotential: 0.8,
		ExampleAnswers:      []string{"Grew up with Toyotas", "No German cars, bad experience"},
	},
	{
		ID:                  "feature_wishlist",
		Text:                "Beyond the basics, what features would make this vehicle feel right for you?",
		Category:            types.CategoryFeature,
		Complexity:          types.ComplexityOpen,
		InformationValue:    0.6,
		EngagementPotential: 0.85,
		ExampleAnswers:      []string{"A panoramic roof", "Third-row seating", "A great sound system"},
	},
}
