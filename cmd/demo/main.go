// Command demo runs a scripted advisory conversation against a local
// SQLite store, printing each turn's question selection, tracked answers,
// detected conflicts and the family requirements derived along the way.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"

	"advisor-engine/internal/config"
	"advisor-engine/internal/di"
	"advisor-engine/internal/family"
	"advisor-engine/internal/memory"
	"advisor-engine/internal/types"
)

var (
	heading  = color.New(color.FgCyan, color.Bold)
	question = color.New(color.FgYellow)
	answer   = color.New(color.FgGreen)
	warning  = color.New(color.FgRed, color.Bold)
	detail   = color.New(color.Faint)
)

// scriptedTurn is one canned exchange in the demo conversation
type scriptedTurn struct {
	answerText     string
	responseTimeMs int64
	engagement     float64
}

var script = map[string]scriptedTurn{
	"family_size":          {"We're five: two adults and three kids", 6200, 0.8},
	"family_ages":          {"The kids are 2, 8 and 12", 4800, 0.85},
	"family_car_seats":     {"Yes, the youngest still needs a car seat", 3900, 0.8},
	"budget_range":         {"Somewhere around 35 to 40 thousand all in", 7400, 0.75},
	"usage_commute":        {"About 40 minutes each way on the highway, every day", 6800, 0.8},
	"performance_priority": {"I really want something quick, strong acceleration matters to me", 5200, 0.9},
	"environment_mpg":      {"Fuel economy is huge for us, ideally something very efficient", 5900, 0.9},
}

func main() {
	if err := run(); err != nil {
		warning.Fprintf(os.Stderr, "demo failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg.Storage.Driver = config.DriverSQLite
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "./data/demo.db"
	}
	cfg.Cache.Backend = config.CacheMemory

	engine, err := di.NewContainer(ctx, cfg)
	if err != nil {
		return fmt.Errorf("build engine: %w", err)
	}
	defer func() {
		if err := engine.Shutdown(); err != nil {
			warning.Fprintf(os.Stderr, "shutdown: %v\n", err)
		}
	}()

	userID := fmt.Sprintf("demo-user-%d", time.Now().Unix())
	sessionID := fmt.Sprintf("demo-session-%d", time.Now().Unix())
	profile := family.Profile{}
	prefs := []types.UserPreference{}

	heading.Println("Vehicle advisor demo conversation")
	detail.Printf("user=%s session=%s store=%s\n\n", userID, sessionID, cfg.Storage.DSN)

	for turn := 1; turn <= len(script); turn++ {
		uc := engine.Memory.BuildUserContext(ctx, userID, memory.LiveSignals{
			SessionID:       sessionID,
			Stage:           types.StageDiscovery,
			EngagementLevel: 0.7,
		})

		conflicts := engine.Detector.Detect(prefs)
		for i := range conflicts {
			c := &conflicts[i]
			warning.Printf("conflict detected: %s (%s)\n", c.Type, c.Severity)
			detail.Printf("  %s\n", c.Description)
		}

		scores := engine.Selector.SelectNext(uc, conflicts, 3)
		if len(scores) == 0 {
			heading.Println("\nNo further questions, conversation complete.")
			break
		}

		top := scores[0]
		q, ok := engine.Catalog.Get(top.QuestionID)
		if !ok {
			return fmt.Errorf("selected unknown question %q", top.QuestionID)
		}

		heading.Printf("turn %d\n", turn)
		question.Printf("  Q: %s\n", q.Text)
		detail.Printf("     score=%.2f reasons=%v\n", top.TotalScore, top.SelectionReasons)

		turnScript, scripted := script[q.ID]
		if !scripted {
			detail.Println("     (no scripted answer, skipping)")
			engine.Memory.TrackQuestion(ctx, userID, q, sessionID, nil)
			continue
		}

		answer.Printf("  A: %s\n", turnScript.answerText)
		tracked := engine.Memory.TrackQuestion(ctx, userID, q, sessionID, &memory.TrackOptions{
			Response:       turnScript.answerText,
			ResponseTimeMs: turnScript.responseTimeMs,
			EngagementIndicators: map[string]float64{
				memory.EngagementScoreKey: turnScript.engagement,
			},
		})
		if !tracked {
			warning.Println("     tracking failed, continuing without memory of this turn")
		}

		profile = engine.Family.ApplyAnswer(ctx, profile, q.ID, turnScript.answerText)
		prefs = appendPreference(prefs, q, turnScript)
		fmt.Println()
	}

	printRequirements(profile)
	printInsights(ctx, engine, userID)
	return nil
}

// appendPreference records a strong explicit preference for the categories
// the demo script is designed to put in tension
func appendPreference(prefs []types.UserPreference, q *types.Question, turn scriptedTurn) []types.UserPreference {
	switch q.Category {
	case types.CategoryPerformance, types.CategoryEnvironment, types.CategoryBudget:
		prefs = append(prefs, types.UserPreference{
			Category:   q.Category,
			Value:      turn.answerText,
			Weight:     0.9,
			Confidence: 0.95,
			Source:     types.SourceExplicit,
			Timestamp:  time.Now().UTC(),
		})
	}
	return prefs
}

func printRequirements(profile family.Profile) {
	heading.Println("\nDerived family profile")
	detail.Printf("  household=%d adults=%d children=%d car_seats=%d\n",
		profile.HouseholdSize, profile.Adults, len(profile.Children), profile.CarSeatsNeeded)

	reqs := family.GenerateVehicleRequirements(profile)
	if len(reqs) == 0 {
		detail.Println("  profile incomplete, no requirements generated")
		return
	}

	heading.Println("\nVehicle requirements")
	for _, r := range reqs {
		flex := "firm"
		if r.Flexible {
			flex = "flexible"
		}
		fmt.Printf("  %-22s priority=%.2f (%s)\n", r.Name, r.Priority, flex)
		detail.Printf("    minimum:   %s\n", r.Minimum)
		detail.Printf("    preferred: %s\n", r.Preferred)
	}
}

func printInsights(ctx context.Context, engine *di.Container, userID string) {
	insights := engine.Memory.GetCrossSessionInsights(ctx, userID)
	if len(insights) == 0 {
		return
	}
	heading.Println("\nCross-session insights")
	for key, value := range insights {
		detail.Printf("  %s: %v\n", key, value)
	}
}
