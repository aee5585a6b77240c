package engine

import (
	"encoding/json"
	"fmt"
	"os"
)

// Rules controls how a fleet is generated for a new match
type Rules struct {
	Name        string `json:"name"`
	Description string `json:"description"`

	// ShipLengths is cycled by ship index: ship i gets ShipLengths[i%len].
	ShipLengths []int `json:"ship_lengths"`
	// MinLength is applied after clamping. Zero means 1.
	MinLength int `json:"min_length,omitempty"`
	// ClampToBoard shrinks lengths that exceed the longest board side.
	ClampToBoard bool `json:"clamp_to_board"`
	// MaxAttempts bounds the random samples spent on each ship.
	MaxAttempts int `json:"max_attempts"`
	// Seed fixes the placement source. Zero seeds from the runtime.
	Seed uint64 `json:"seed,omitempty"`

	// Board is the reference board the preset is designed for. Optional.
	Board *BoardSpec `json:"board,omitempty"`
}

// BoardSpec describes a board size and ship count
type BoardSpec struct {
	Rows    int `json:"rows"`
	Columns int `json:"columns"`
	Ships   int `json:"ships"`
}

// DefaultRules returns the classic length progression with clamping
func DefaultRules() *Rules {
	return &Rules{
		Name:         "classic",
		Description:  "Classic fleet: 5,4,3,3,2 cycled, clamped to the board",
		ShipLengths:  []int{5, 4, 3, 3, 2},
		ClampToBoard: true,
		MaxAttempts:  DefaultMaxAttempts,
		Board:        &BoardSpec{Rows: 10, Columns: 10, Ships: 5},
	}
}

// ValidateRules validates placement rules for correctness
func ValidateRules(rules *Rules) error {
	if rules == nil {
		return fmt.Errorf("%w: rules cannot be nil", ErrInvalidRules)
	}
	if rules.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidRules)
	}
	if len(rules.ShipLengths) == 0 {
		return fmt.Errorf("%w: ship_lengths must not be empty", ErrInvalidRules)
	}
	for i, length := range rules.ShipLengths {
		if length < 1 || length > MaxShipLength {
			return fmt.Errorf("%w: ship_lengths[%d] must be between 1 and %d, got %d", ErrInvalidRules, i, MaxShipLength, length)
		}
	}
	if rules.MinLength < 0 || rules.MinLength > MaxShipLength {
		return fmt.Errorf("%w: min_length must be between 0 and %d, got %d", ErrInvalidRules, MaxShipLength, rules.MinLength)
	}
	if rules.MaxAttempts < 1 || rules.MaxAttempts > MaxAttemptsLimit {
		return fmt.Errorf("%w: max_attempts must be between 1 and %d, got %d", ErrInvalidRules, MaxAttemptsLimit, rules.MaxAttempts)
	}
	if b := rules.Board; b != nil {
		if err := validateDimensions(b.Rows, b.Columns, b.Ships); err != nil {
			return fmt.Errorf("%w: board: %v", ErrInvalidRules, err)
		}
	}
	return nil
}

// LengthFor returns the length of ship i on a rows x columns board
func (r *Rules) LengthFor(i, rows, columns int) int {
	length := r.ShipLengths[i%len(r.ShipLengths)]
	if r.ClampToBoard {
		if longest := max(rows, columns); length > longest {
			length = longest
		}
	}
	return max(length, r.MinLength, 1)
}

// FleetLengths returns the length of every ship in a fleet of the given size
func (r *Rules) FleetLengths(rows, columns, ships int) []int {
	lengths := make([]int, ships)
	for i := range lengths {
		lengths[i] = r.LengthFor(i, rows, columns)
	}
	return lengths
}

// LoadRules loads placement rules from a JSON file
func LoadRules(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var rules Rules
	if err := json.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("failed to parse rules %s: %w", path, err)
	}

	if err := ValidateRules(&rules); err != nil {
		return nil, err
	}

	return &rules, nil
}

func validateDimensions(rows, columns, ships int) error {
	if rows < 1 {
		return fmt.Errorf("%w: rows must be at least 1, got %d", ErrInvalidDimensions, rows)
	}
	if columns < 1 {
		return fmt.Errorf("%w: columns must be at least 1, got %d", ErrInvalidDimensions, columns)
	}
	// Divide instead of multiplying so huge sides cannot overflow
	if rows > MaxBoardCells/columns {
		return fmt.Errorf("%w: a %dx%d board exceeds %d cells", ErrInvalidDimensions, rows, columns, MaxBoardCells)
	}
	if ships < 0 {
		return fmt.Errorf("%w: ship count cannot be negative, got %d", ErrInvalidDimensions, ships)
	}
	return nil
}
