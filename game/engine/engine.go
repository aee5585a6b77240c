package engine

import (
	"fmt"
	"sync"
)

// Match is a single game: the board dimensions, the fleet and the probe history.
// Dimensions and placements never change after NewMatch returns.
type Match struct {
	rows     int
	columns  int
	ships    []*Ship
	attempts int // placement samples drawn, zero for fixed fleets

	mu       sync.Mutex
	occupant []int  // row-major ship index, NoShip for water
	probed   []bool // row-major
	probes   int
	hits     int
	misses   int
	sunk     int
}

// NewMatch creates a match and places its fleet according to rules.
// A nil rules value uses DefaultRules.
func NewMatch(rows, columns, shipCount int, rules *Rules) (*Match, error) {
	if rules == nil {
		rules = DefaultRules()
	}
	if err := ValidateRules(rules); err != nil {
		return nil, err
	}
	if err := validateDimensions(rows, columns, shipCount); err != nil {
		return nil, err
	}
	// Every ship covers at least one cell
	if shipCount > rows*columns {
		return nil, &PlacementError{Ship: -1, Rows: rows, Columns: columns}
	}

	lengths := rules.FleetLengths(rows, columns, shipCount)
	layout, err := placeFleet(rows, columns, lengths, rules.MaxAttempts, newSource(rules.Seed))
	if err != nil {
		return nil, err
	}

	return &Match{
		rows:     rows,
		columns:  columns,
		ships:    layout.ships,
		attempts: layout.attempts,
		occupant: layout.occupant,
		probed:   make([]bool, rows*columns),
	}, nil
}

// NewMatchFromDescriptors builds a match with a fixed fleet. Descriptors must
// be in bounds and disjoint; ship ids follow slice order.
func NewMatchFromDescriptors(rows, columns int, fleet []ShipDescriptor) (*Match, error) {
	if err := validateDimensions(rows, columns, len(fleet)); err != nil {
		return nil, err
	}

	layout := &fleetLayout{
		ships:    make([]*Ship, 0, len(fleet)),
		occupant: make([]int, rows*columns),
	}
	for i := range layout.occupant {
		layout.occupant[i] = NoShip
	}
	for id, d := range fleet {
		if d.Length < 1 {
			return nil, fmt.Errorf("%w: ship %d has length %d", ErrPlacementFailed, id, d.Length)
		}
		if !layout.fits(rows, columns, d) {
			return nil, fmt.Errorf("%w: ship %d (%s) is out of bounds or overlaps", ErrPlacementFailed, id, d)
		}
		layout.occupy(columns, id, d)
		layout.ships = append(layout.ships, newShip(id, d))
	}

	return &Match{
		rows:     rows,
		columns:  columns,
		ships:    layout.ships,
		occupant: layout.occupant,
		probed:   make([]bool, rows*columns),
	}, nil
}

// PlacementAttempts returns the number of random samples spent placing the fleet
func (m *Match) PlacementAttempts() int {
	return m.attempts
}

// Rows returns the number of board rows
func (m *Match) Rows() int {
	return m.rows
}

// Columns returns the number of board columns
func (m *Match) Columns() int {
	return m.columns
}

// ShipCount returns the number of ships in the fleet
func (m *Match) ShipCount() int {
	return len(m.ships)
}

// Ship returns the descriptor of ship id
func (m *Match) Ship(id int) (ShipDescriptor, error) {
	if id < 0 || id >= len(m.ships) {
		return ShipDescriptor{}, &ShipError{ShipID: id, Ships: len(m.ships)}
	}
	return m.ships[id].Descriptor(), nil
}

// Solution returns every ship descriptor in id order
func (m *Match) Solution() []ShipDescriptor {
	solution := make([]ShipDescriptor, len(m.ships))
	for i, ship := range m.ships {
		solution[i] = ship.Descriptor()
	}
	return solution
}

// InBounds reports whether (row, col) lies on the board
func (m *Match) InBounds(row, col int) bool {
	return row >= 0 && row < m.rows && col >= 0 && col < m.columns
}

// Stats returns a snapshot of the match progress
func (m *Match) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	return Stats{
		Probes:         m.probes,
		Hits:           m.hits,
		Misses:         m.misses,
		ShipsSunk:      m.sunk,
		ShipsRemaining: len(m.ships) - m.sunk,
		Finished:       m.sunk == len(m.ships),
	}
}

// IsFinished reports whether every ship has been sunk
func (m *Match) IsFinished() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sunk == len(m.ships)
}
