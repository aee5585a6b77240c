package engine

import (
	"fmt"
	"strconv"
	"strings"
)

// Orientation is the direction a ship extends from its origin cell
type Orientation int

const (
	Horizontal Orientation = iota
	Vertical
)

// Result classifies the outcome of a probe
type Result int

const (
	Water Result = iota
	Hit
	AlreadySunk
	NewlySunk
)

// Legacy integer codes used by the text wire format. A newly sunk ship is
// reported with its own (non-negative) identifier.
const (
	CodeWater       = -1
	CodeHit         = -2
	CodeAlreadySunk = -3
)

const (
	// Validation constants. MaxBoardCells bounds rows*columns so the per-cell
	// tables of one match stay small; either side may be as long as that allows.
	MaxBoardCells      = 1_000_000
	MaxShipLength      = 1000
	DefaultMaxAttempts = 5000
	MaxAttemptsLimit   = 1_000_000

	// NoShip marks a water cell in the occupancy table
	NoShip = -1
)

// String returns "H" or "V"
func (o Orientation) String() string {
	if o == Vertical {
		return "V"
	}
	return "H"
}

// MarshalText implements encoding.TextMarshaler
func (o Orientation) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (o *Orientation) UnmarshalText(text []byte) error {
	parsed, err := ParseOrientation(string(text))
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}

// ParseOrientation accepts H/V (any case) and the long forms
func ParseOrientation(s string) (Orientation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "h", "horizontal":
		return Horizontal, nil
	case "v", "vertical":
		return Vertical, nil
	}
	return Horizontal, fmt.Errorf("invalid orientation %q", s)
}

// String returns the lower-case result name
func (r Result) String() string {
	switch r {
	case Water:
		return "water"
	case Hit:
		return "hit"
	case AlreadySunk:
		return "already_sunk"
	case NewlySunk:
		return "newly_sunk"
	}
	return fmt.Sprintf("result(%d)", int(r))
}

// MarshalText implements encoding.TextMarshaler
func (r Result) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (r *Result) UnmarshalText(text []byte) error {
	switch string(text) {
	case "water":
		*r = Water
	case "hit":
		*r = Hit
	case "already_sunk":
		*r = AlreadySunk
	case "newly_sunk":
		*r = NewlySunk
	default:
		return fmt.Errorf("invalid probe result %q", string(text))
	}
	return nil
}

// Position is a (row, column) board coordinate
type Position struct {
	Row    int `json:"row"`
	Column int `json:"column"`
}

// Outcome is the classified result of a single probe
type Outcome struct {
	Result Result `json:"result"`
	ShipID int    `json:"ship_id"` // -1 for water
}

// Code returns the legacy integer encoding of the outcome
func (o Outcome) Code() int {
	switch o.Result {
	case Water:
		return CodeWater
	case Hit:
		return CodeHit
	case AlreadySunk:
		return CodeAlreadySunk
	}
	return o.ShipID
}

// OutcomeFromCode decodes a legacy integer probe code
func OutcomeFromCode(code int) Outcome {
	switch code {
	case CodeWater:
		return Outcome{Result: Water, ShipID: NoShip}
	case CodeHit:
		return Outcome{Result: Hit, ShipID: NoShip}
	case CodeAlreadySunk:
		return Outcome{Result: AlreadySunk, ShipID: NoShip}
	}
	return Outcome{Result: NewlySunk, ShipID: code}
}

// ShipDescriptor is the static placement of a ship
type ShipDescriptor struct {
	Row         int         `json:"row"`
	Column      int         `json:"column"`
	Orientation Orientation `json:"orientation"`
	Length      int         `json:"length"`
}

// String renders the legacy "row#col#orientation#length" record
func (d ShipDescriptor) String() string {
	return fmt.Sprintf("%d#%d#%s#%d", d.Row, d.Column, d.Orientation, d.Length)
}

// Cells returns every cell covered by the descriptor, origin first
func (d ShipDescriptor) Cells() []Position {
	cells := make([]Position, d.Length)
	for i := range cells {
		cells[i] = d.cellAt(i)
	}
	return cells
}

func (d ShipDescriptor) cellAt(offset int) Position {
	if d.Orientation == Vertical {
		return Position{Row: d.Row + offset, Column: d.Column}
	}
	return Position{Row: d.Row, Column: d.Column + offset}
}

// ParseShipDescriptor parses a "row#col#orientation#length" record
func ParseShipDescriptor(s string) (ShipDescriptor, error) {
	parts := strings.Split(strings.TrimSpace(s), "#")
	if len(parts) != 4 {
		return ShipDescriptor{}, fmt.Errorf("invalid ship record %q: expected 4 fields, got %d", s, len(parts))
	}

	row, err := strconv.Atoi(parts[0])
	if err != nil {
		return ShipDescriptor{}, fmt.Errorf("invalid ship record %q: row: %w", s, err)
	}
	col, err := strconv.Atoi(parts[1])
	if err != nil {
		return ShipDescriptor{}, fmt.Errorf("invalid ship record %q: column: %w", s, err)
	}
	orientation, err := ParseOrientation(parts[2])
	if err != nil {
		return ShipDescriptor{}, fmt.Errorf("invalid ship record %q: %w", s, err)
	}
	length, err := strconv.Atoi(parts[3])
	if err != nil {
		return ShipDescriptor{}, fmt.Errorf("invalid ship record %q: length: %w", s, err)
	}
	if length < 1 {
		return ShipDescriptor{}, fmt.Errorf("invalid ship record %q: length must be positive", s)
	}

	return ShipDescriptor{Row: row, Column: col, Orientation: orientation, Length: length}, nil
}

// Stats summarizes the progress of a match
type Stats struct {
	Probes         int  `json:"probes"`
	Hits           int  `json:"hits"`
	Misses         int  `json:"misses"`
	ShipsSunk      int  `json:"ships_sunk"`
	ShipsRemaining int  `json:"ships_remaining"`
	Finished       bool `json:"finished"`
}
