// Command analyze runs seeded placement trials for every rule set in the
// configs directory and prints how often fleet placement fails and how many
// random samples a successful placement costs. Each rule set is tried on its
// reference board plus any boards given with -boards.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/wricardo/mcp-training/flota/game/config"
	"github.com/wricardo/mcp-training/flota/game/engine"
	"github.com/wricardo/mcp-training/flota/game/service"
)

// Scenario is one rule set on one board
type Scenario struct {
	RulesID string
	Rules   *engine.Rules
	Board   engine.BoardSpec
}

// TrialResult aggregates the placement trials of a scenario
type TrialResult struct {
	Scenario
	Trials       int
	Failures     int
	MeanAttempts float64
	MaxAttempts  int
}

// FailureRate is the fraction of trials that could not place the fleet
func (r TrialResult) FailureRate() float64 {
	if r.Trials == 0 {
		return 0
	}
	return float64(r.Failures) / float64(r.Trials)
}

func main() {
	configDir := flag.String("dir", "configs", "directory with rules JSON files")
	boards := flag.String("boards", "", "extra boards as ROWSxCOLUMNSxSHIPS, comma separated (e.g. 6x6x3,12x12x8)")
	trials := flag.Int("trials", 200, "seeded trials per scenario")
	workers := flag.Int("workers", runtime.NumCPU(), "scenarios analyzed in parallel")
	flag.Parse()

	extra, err := parseBoards(*boards)
	if err != nil {
		log.Fatal(err)
	}

	manager, err := config.NewManager(*configDir)
	if err != nil {
		log.Fatal(err)
	}

	scenarios, err := loadScenarios(manager, extra)
	if err != nil {
		log.Fatal(err)
	}

	results, err := analyze(context.Background(), scenarios, *trials, *workers)
	if err != nil {
		log.Fatal(err)
	}
	printReport(os.Stdout, results)
}

// parseBoards parses "6x6x3,10x10x5"
func parseBoards(spec string) ([]engine.BoardSpec, error) {
	var boards []engine.BoardSpec
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		var b engine.BoardSpec
		if _, err := fmt.Sscanf(part, "%dx%dx%d", &b.Rows, &b.Columns, &b.Ships); err != nil {
			return nil, fmt.Errorf("invalid board %q: want ROWSxCOLUMNSxSHIPS", part)
		}
		if b.Rows < 1 || b.Columns < 1 || b.Ships < 0 {
			return nil, fmt.Errorf("invalid board %q: dimensions must be positive", part)
		}
		boards = append(boards, b)
	}
	return boards, nil
}

// rulesSource is the part of the rules manager analyze needs
type rulesSource interface {
	ListRules() ([]*service.RulesInfo, error)
	LoadRules(name string) (*engine.Rules, error)
}

func loadScenarios(source rulesSource, extra []engine.BoardSpec) ([]Scenario, error) {
	infos, err := source.ListRules()
	if err != nil {
		return nil, err
	}

	var scenarios []Scenario
	for _, info := range infos {
		rules, err := source.LoadRules(info.RulesID)
		if err != nil {
			return nil, err
		}
		if rules.Board != nil {
			scenarios = append(scenarios, Scenario{RulesID: info.RulesID, Rules: rules, Board: *rules.Board})
		}
		for _, b := range extra {
			if rules.Board != nil && *rules.Board == b {
				continue
			}
			scenarios = append(scenarios, Scenario{RulesID: info.RulesID, Rules: rules, Board: b})
		}
	}
	return scenarios, nil
}

// analyze runs every scenario, at most workers at a time. Results keep the
// scenario order.
func analyze(ctx context.Context, scenarios []Scenario, trials, workers int) ([]TrialResult, error) {
	results := make([]TrialResult, len(scenarios))

	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, s := range scenarios {
		g.Go(func() error {
			r, err := runTrials(ctx, s, trials)
			if err != nil {
				return fmt.Errorf("%s on %dx%d: %w", s.RulesID, s.Board.Rows, s.Board.Columns, err)
			}
			results[i] = r
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func runTrials(ctx context.Context, s Scenario, trials int) (TrialResult, error) {
	result := TrialResult{Scenario: s, Trials: trials}
	rules := *s.Rules

	successes, total := 0, 0
	for seed := uint64(1); seed <= uint64(trials); seed++ {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		rules.Seed = seed
		match, err := engine.NewMatch(s.Board.Rows, s.Board.Columns, s.Board.Ships, &rules)
		if errors.Is(err, engine.ErrPlacementFailed) {
			result.Failures++
			continue
		}
		if err != nil {
			return result, err
		}

		attempts := match.PlacementAttempts()
		successes++
		total += attempts
		result.MaxAttempts = max(result.MaxAttempts, attempts)
	}

	if successes > 0 {
		result.MeanAttempts = float64(total) / float64(successes)
	}
	return result, nil
}

func printReport(w io.Writer, results []TrialResult) {
	current := ""
	for _, r := range results {
		if r.RulesID != current {
			current = r.RulesID
			fmt.Fprintf(w, "\n=== Analyzing %s ===\n", r.RulesID)
			fmt.Fprintf(w, "Ship lengths: %v (clamp %t, min %d)\n", r.Rules.ShipLengths, r.Rules.ClampToBoard, r.Rules.MinLength)
			fmt.Fprintf(w, "Attempts per ship: %d\n", r.Rules.MaxAttempts)
		}

		lengths := r.Rules.FleetLengths(r.Board.Rows, r.Board.Columns, r.Board.Ships)
		cells := 0
		for _, l := range lengths {
			cells += l
		}
		fmt.Fprintf(w, "Board %dx%d, %d ships (%d/%d cells): ", r.Board.Rows, r.Board.Columns, r.Board.Ships, cells, r.Board.Rows*r.Board.Columns)

		switch {
		case r.Failures == r.Trials:
			fmt.Fprintf(w, "⚠️  CRITICAL: placement failed in every one of %d trials\n", r.Trials)
		case r.Failures > 0:
			fmt.Fprintf(w, "⚠️  WARNING: %.1f%% failures, mean %.1f samples (max %d)\n", 100*r.FailureRate(), r.MeanAttempts, r.MaxAttempts)
		default:
			fmt.Fprintf(w, "✅ %d/%d placed, mean %.1f samples (max %d)\n", r.Trials, r.Trials, r.MeanAttempts, r.MaxAttempts)
		}
	}
}
