// Command validate checks the placement rule files in a configs directory.
// It checks:
//   - JSON structure and required fields
//   - Ship lengths, minimum length and attempt budget within limits
//   - The reference board, when declared, is a legal board
//   - The fleet fits its reference board: total length within the cell count
//     and seeded placement trials all succeed
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wricardo/mcp-training/flota/game/engine"
)

// placementTrials is the number of seeded placements tried on the reference board
const placementTrials = 25

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

func (r *ValidationResult) fail(format string, args ...interface{}) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) info(format string, args ...interface{}) {
	r.Errors = append(r.Errors, "✓ "+fmt.Sprintf(format, args...))
}

// validateRules loads and validates a single rules JSON file
func validateRules(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	var rules engine.Rules
	if err := json.Unmarshal(data, &rules); err != nil {
		result.fail("Invalid JSON: %v", err)
		return result
	}

	if rules.MaxAttempts == 0 {
		rules.MaxAttempts = engine.DefaultMaxAttempts
		result.info("max_attempts not set, defaults to %d", engine.DefaultMaxAttempts)
	}

	if err := engine.ValidateRules(&rules); err != nil {
		result.fail("%s", strings.TrimPrefix(err.Error(), engine.ErrInvalidRules.Error()+": "))
		return result
	}

	if rules.Board == nil {
		result.info("Name: %s", rules.Name)
		result.info("Ship lengths: %v", rules.ShipLengths)
		result.info("No reference board declared")
		return result
	}

	fit := validateFit(&rules)
	if !fit.Valid {
		result.Valid = false
	}
	result.Errors = append(result.Errors, fit.Errors...)

	if result.Valid {
		b := rules.Board
		result.info("Name: %s", rules.Name)
		result.info("Ship lengths: %v (clamp %t, min %d)", rules.ShipLengths, rules.ClampToBoard, rules.MinLength)
		result.info("Board: %dx%d, %d ships", b.Rows, b.Columns, b.Ships)
		result.info("Attempts per ship: %d", rules.MaxAttempts)
	}

	return result
}

// validateFit checks that the fleet for the reference board can be placed
func validateFit(rules *engine.Rules) ValidationResult {
	result := ValidationResult{
		Valid:  true,
		Errors: []string{},
	}

	b := rules.Board
	lengths := rules.FleetLengths(b.Rows, b.Columns, b.Ships)
	total := 0
	for i, length := range lengths {
		if length > b.Rows && length > b.Columns {
			result.fail("Ship %d has length %d, longer than any side of the %dx%d board", i, length, b.Rows, b.Columns)
		}
		total += length
	}
	if total > b.Rows*b.Columns {
		result.fail("Fleet needs %d cells, board has %d", total, b.Rows*b.Columns)
	}
	if !result.Valid {
		return result
	}

	trial := *rules
	failures := 0
	var lastErr error
	for seed := uint64(1); seed <= placementTrials; seed++ {
		trial.Seed = seed
		if _, err := engine.NewMatch(b.Rows, b.Columns, b.Ships, &trial); err != nil {
			if !errors.Is(err, engine.ErrPlacementFailed) {
				result.fail("Placement trial: %v", err)
				return result
			}
			failures++
			lastErr = err
		}
	}

	if failures > 0 {
		result.fail("Placement failed in %d/%d seeded trials: %v", failures, placementTrials, lastErr)
	} else {
		result.info("Placement: %d/%d seeded trials succeeded, fleet covers %d/%d cells", placementTrials, placementTrials, total, b.Rows*b.Columns)
	}

	return result
}

// main scans the configs directory for *.json files and validates each one,
// printing a concise report and exiting with non-zero status if any are invalid.
func main() {
	configDir := flag.String("dir", "../configs", "directory with rules JSON files")
	flag.Parse()

	files, err := filepath.Glob(filepath.Join(*configDir, "*.json"))
	if err != nil {
		fmt.Printf("Error finding rules files: %v\n", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Printf("No rules files found in %s\n", *configDir)
		os.Exit(1)
	}

	allValid := true
	for _, file := range files {
		result := validateRules(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Println("  ❌ " + err)
				}
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All rule sets are valid!")
	} else {
		fmt.Println("❌ Some rule sets have errors")
		os.Exit(1)
	}
}
