package conflict

// conflictProfile bundles the static guidance for one conflict type
type conflictProfile struct {
	explanation          string
	strategies           []ResolutionStrategy
	recommendedQuestions []string
	technologies         []string
}

// profileFor returns the resolution guidance for a conflict type. Unknown
// types fall back to a generic clarification profile rather than failing.
func profileFor(t ConflictType) conflictProfile {
	if profile, ok := resolutionTable[t]; ok {
		return profile
	}
	return conflictProfile{
		explanation: "These two preferences pull a vehicle's design in different directions, so most models lean toward one or the other.",
		strategies: []ResolutionStrategy{
			{
				Name:              "Clarify priorities",
				Description:       "Work out which of the two preferences matters more day to day.",
				TradeOffs:         []string{"One preference will be only partially met"},
				FollowUpQuestions: []string{"If you could only have one of these, which would it be?"},
			},
		},
		recommendedQuestions: []string{"Which of these matters more for your daily driving?"},
	}
}

// resolutionTable is the static per-type guidance the detector attaches to
// conflicts it reports
var resolutionTable = map[ConflictType]conflictProfile{
	TypePerformanceVsEfficiency: {
		explanation: "Strong acceleration usually comes from larger engines that burn more fuel, while high fuel economy comes from smaller engines and lighter tuning. A vehicle optimized for one typically compromises the other.",
		strategies: []ResolutionStrategy{
			{
				Name:        "Hybrid Technology",
				Description: "Performance hybrids pair electric torque with a combustion engine, giving quick acceleration and strong economy in the same package.",
				TradeOffs:   []string{"Higher purchase price", "Smaller cargo area in some models"},
				FollowUpQuestions: []string{
					"Would you consider a hybrid if it were quick off the line?",
					"How important is engine sound to your idea of performance?",
				},
				Technologies: []string{"Hybrid Technology", "Plug-in Hybrid"},
			},
			{
				Name:        "Electric Performance",
				Description: "Electric vehicles deliver instant acceleration with no fuel use at all, resolving the trade-off entirely where charging is practical.",
				TradeOffs:   []string{"Charging access required", "Longer trips need planning"},
				FollowUpQuestions: []string{
					"Could you charge at home or at work?",
					"How often do you drive beyond 200 miles in a day?",
				},
				Technologies: []string{"Battery Electric", "Fast Charging"},
			},
			{
				Name:        "Prioritize one dimension",
				Description: "Decide whether driving feel or running cost matters more. Keep the other as a secondary filter.",
				TradeOffs:   []string{"The secondary preference is only partially satisfied"},
				FollowUpQuestions: []string{
					"Would you trade two seconds of acceleration for 15 more MPG?",
				},
			},
		},
		recommendedQuestions: []string{
			"When you say fast, do you mean highway merging confidence or sports-car quick?",
			"What MPG would feel acceptable if the car were genuinely fun to drive?",
		},
		technologies: []string{"Hybrid Technology", "Plug-in Hybrid", "Battery Electric", "Turbocharged Small Engines"},
	},
	TypeBudgetVsFeatures: {
		explanation: "Feature-rich trims and option packages raise the price quickly; the features wanted here push past the stated budget range.",
		strategies: []ResolutionStrategy{
			{
				Name:        "Trim-level triage",
				Description: "Rank the wanted features and find the lowest trim that carries the top two or three.",
				TradeOffs:   []string{"Some wanted features dropped or aftermarket"},
				FollowUpQuestions: []string{
					"Which single feature would you miss most if it were gone?",
				},
			},
			{
				Name:        "Certified pre-owned",
				Description: "A two-year-old vehicle often carries the full feature set at a substantially lower price.",
				TradeOffs:   []string{"Shorter remaining warranty", "Less choice of color and options"},
				FollowUpQuestions: []string{
					"Would a lightly used vehicle with every feature beat a new one with fewer?",
				},
			},
		},
		recommendedQuestions: []string{
			"Which features are must-haves versus nice-to-haves?",
			"Is there any flexibility in the budget for the right feature set?",
		},
	},
	TypeBudgetVsPerformance: {
		explanation: "Genuinely quick vehicles command a price premium in purchase, insurance and fuel; the stated budget sits below where that performance level usually starts.",
		strategies: []ResolutionStrategy{
			{
				Name:        "Used performance market",
				Description: "Performance models depreciate steeply; a three-year-old example can fit the budget.",
				TradeOffs:   []string{"Higher maintenance risk", "No factory warranty"},
				FollowUpQuestions: []string{
					"Would you consider a used performance model with a clean history?",
				},
			},
			{
				Name:        "Warm over hot",
				Description: "Mid-tier sporty trims deliver most of the driving feel at a much lower price than flagship performance models.",
				TradeOffs:   []string{"Slower outright acceleration"},
				FollowUpQuestions: []string{
					"Is the number on the spec sheet or the feel behind the wheel what matters?",
				},
				Technologies: []string{"Turbocharged Small Engines"},
			},
		},
		recommendedQuestions: []string{
			"What's the most you'd stretch the budget for a noticeably quicker car?",
		},
	},
	TypeBudgetVsSafety: {
		explanation: "The most advanced driver-assistance and crash-protection packages concentrate in higher trims and newer model years, which the stated budget may not reach.",
		strategies: []ResolutionStrategy{
			{
				Name:        "Safety-first allocation",
				Description: "Treat safety equipment as the fixed requirement and flex other features or vehicle size to protect the budget.",
				TradeOffs:   []string{"Fewer comfort and technology features"},
				FollowUpQuestions: []string{
					"Which safety features are non-negotiable for you?",
				},
			},
		},
		recommendedQuestions: []string{
			"Are you comfortable with a smaller vehicle if it carries top safety ratings?",
		},
	},
	TypeBrandVsBudget: {
		explanation: "The preferred brands position themselves above the stated budget; equivalent capability often exists under less premium badges.",
		strategies: []ResolutionStrategy{
			{
				Name:        "Platform siblings",
				Description: "Many premium models share platforms with mainstream brands at a much lower price.",
				TradeOffs:   []string{"Less prestige", "Simpler interior materials"},
				FollowUpQuestions: []string{
					"Is it the badge or the engineering that draws you to the brand?",
				},
			},
		},
		recommendedQuestions: []string{
			"Would a used model from your preferred brand beat a new one from another?",
		},
	},
	TypeFamilyVsPerformance: {
		explanation: "Family hauling needs push toward three-row practicality, which rarely pairs with the sharp driving dynamics preferred here.",
		strategies: []ResolutionStrategy{
			{
				Name:        "Performance family vehicles",
				Description: "A small class of quick SUVs and wagons carries families without giving up driving feel.",
				TradeOffs:   []string{"Price premium", "Higher fuel cost"},
				FollowUpQuestions: []string{
					"Would a quick SUV satisfy the performance itch, or does it need to be a car?",
				},
			},
		},
		recommendedQuestions: []string{
			"How many seats do you actually need on a normal week?",
		},
	},
	TypeUsageVsEfficiency: {
		explanation: "Towing, heavy loads or rough terrain call for drivetrains that work against the high fuel economy preferred here.",
		strategies: []ResolutionStrategy{
			{
				Name:        "Diesel or hybrid towing",
				Description: "Diesel and hybrid torque delivers towing capability with materially better economy than large gas engines.",
				TradeOffs:   []string{"Higher purchase price", "Diesel fueling less convenient in some areas"},
				FollowUpQuestions: []string{
					"How often do you actually tow in a typical month?",
				},
				Technologies: []string{"Diesel", "Hybrid Technology"},
			},
		},
		recommendedQuestions: []string{
			"Could the heavy-duty trips use a rental instead of driving them daily?",
		},
		technologies: []string{"Diesel", "Hybrid Technology"},
	},
}
