package family

import (
	"context"
	"fmt"
	"time"

	"advisor-engine/internal/logging"
	"advisor-engine/internal/nlu"
	"advisor-engine/internal/types"
)

// The fixed question sequence this module owns, in prerequisite order
const (
	QuestionFamilySize       = "family_size"
	QuestionFamilyAges       = "family_ages"
	QuestionFamilyCarSeats   = "family_car_seats"
	QuestionFamilyActivities = "family_activities"
)

// QuestionSequence returns the module's question IDs in ask order
func QuestionSequence() []string {
	return []string{
		QuestionFamilySize,
		QuestionFamilyAges,
		QuestionFamilyCarSeats,
		QuestionFamilyActivities,
	}
}

// Module parses answers to the family question sequence into a Profile.
// The NLU parser is an external collaborator; parse failures leave the
// profile unchanged rather than aborting the turn.
type Module struct {
	parser nlu.Parser
	logger logging.Logger
}

// NewModule wires the module; the parser is required
func NewModule(parser nlu.Parser, logger logging.Logger) (*Module, error) {
	if parser == nil {
		return nil, fmt.Errorf("nlu parser is required")
	}
	return &Module{
		parser: parser,
		logger: logger.WithComponent("family"),
	}, nil
}

// Schemas per question, describing what to extract from each answer
var answerSchemas = map[string]nlu.Schema{
	QuestionFamilySize: {
		Name:        "family_size",
		Description: "The answer describes how many people are in the household.",
		Fields: []nlu.Field{
			{Name: "household_size", Type: nlu.FieldInt, Description: "total people in the household"},
			{Name: "adults", Type: nlu.FieldInt, Description: "number of adults, if stated"},
		},
	},
	QuestionFamilyAges: {
		Name:        "family_ages",
		Description: "The answer lists the ages of the children.",
		Fields: []nlu.Field{
			{Name: "child_ages", Type: nlu.FieldIntList, Description: "each child's age in years"},
		},
	},
	QuestionFamilyCarSeats: {
		Name:        "family_car_seats",
		Description: "The answer says whether child or booster seats are in use and how many.",
		Fields: []nlu.Field{
			{Name: "uses_car_seats", Type: nlu.FieldBool, Description: "whether any car seats are needed"},
			{Name: "car_seat_count", Type: nlu.FieldInt, Description: "how many seats, if stated"},
		},
	},
	QuestionFamilyActivities: {
		Name:        "family_activities",
		Description: "The answer describes trips, hobbies and hauling the family does.",
		Fields: []nlu.Field{
			{Name: "activities", Type: nlu.FieldStrList, Description: "each named activity or trip type"},
			{Name: "special_needs", Type: nlu.FieldStrList, Description: "accessibility or mobility needs, if mentioned"},
		},
	},
}

// ApplyAnswer parses one answer and folds it into the profile, returning
// the updated copy. Unknown question IDs and parse failures return the
// profile unchanged.
func (m *Module) ApplyAnswer(ctx context.Context, profile Profile, questionID, answer string) Profile {
	schema, ok := answerSchemas[questionID]
	if !ok {
		return profile
	}

	result, err := m.parser.Parse(ctx, answer, schema)
	if err != nil {
		m.logger.WarnContext(ctx, "Could not parse family answer",
			"question_id", questionID, "error", err)
		return profile
	}

	switch questionID {
	case QuestionFamilySize:
		if size, ok := result.Int("household_size"); ok && size > 0 {
			profile.HouseholdSize = size
		}
		if adults, ok := result.Int("adults"); ok && adults > 0 {
			profile.Adults = adults
		} else if profile.HouseholdSize > 0 && profile.Adults == 0 {
			// Assume two adults in multi-person households until told otherwise
			profile.Adults = min(2, profile.HouseholdSize)
		}
	case QuestionFamilyAges:
		if ages, ok := result.IntList("child_ages"); ok {
			profile.Children = newChildren(ages)
			if profile.CarSeatsNeeded == 0 {
				profile.CarSeatsNeeded = impliedCarSeats(profile.Children)
			}
		}
	case QuestionFamilyCarSeats:
		uses, usesKnown := result.Bool("uses_car_seats")
		count, countKnown := result.Int("car_seat_count")
		switch {
		case usesKnown && !uses:
			profile.CarSeatsNeeded = 0
		case countKnown && count >= 0:
			profile.CarSeatsNeeded = count
		case usesKnown && uses:
			profile.CarSeatsNeeded = impliedCarSeats(profile.Children)
		}
	case QuestionFamilyActivities:
		if activities, ok := result.StringList("activities"); ok && len(activities) > 0 {
			profile.ActivityPatterns = activities
		}
		if needs, ok := result.StringList("special_needs"); ok && len(needs) > 0 {
			profile.SpecialNeeds = needs
		}
	}

	profile.UpdatedAt = time.Now().UTC()
	return profile
}

// impliedCarSeats counts children young enough to legally need a seat
func impliedCarSeats(children []Child) int {
	count := 0
	for _, c := range children {
		if c.Age <= childSeatMaxAge {
			count++
		}
	}
	return count
}

// NextQuestionID returns the first sequence question not yet asked, honoring
// the prerequisite order, or "" when the sequence is exhausted
func (m *Module) NextQuestionID(uc *types.UserContext) string {
	for _, id := range QuestionSequence() {
		if !uc.HasAsked(id) {
			return id
		}
	}
	return ""
}
