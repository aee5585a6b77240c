package engine

import (
	"strings"
)

// Board view characters
const (
	CellUnknown = '~'
	CellWater   = 'o'
	CellHit     = 'x'
	CellSunk    = '#'
	CellShip    = 'S'
)

// Render returns one string per row describing what a player has learned:
// unknown cells, water, hits and sunk ships. With reveal set, unprobed ship
// cells are shown as well.
func (m *Match) Render(reveal bool) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	lines := make([]string, m.rows)
	var b strings.Builder
	for row := 0; row < m.rows; row++ {
		b.Reset()
		for col := 0; col < m.columns; col++ {
			b.WriteByte(m.cellChar(row, col, reveal))
		}
		lines[row] = b.String()
	}
	return lines
}

func (m *Match) cellChar(row, col int, reveal bool) byte {
	idx := row*m.columns + col
	shipID := m.occupant[idx]
	if !m.probed[idx] {
		if reveal && shipID != NoShip {
			return CellShip
		}
		return CellUnknown
	}
	if shipID == NoShip {
		return CellWater
	}
	if m.ships[shipID].IsSunk() {
		return CellSunk
	}
	return CellHit
}

// Occupied returns every cell covered by the fleet
func Occupied(fleet []ShipDescriptor) []Position {
	var cells []Position
	for _, d := range fleet {
		cells = append(cells, d.Cells()...)
	}
	return cells
}

// Overlaps reports whether any two descriptors share a cell
func Overlaps(fleet []ShipDescriptor) bool {
	seen := make(map[Position]bool)
	for _, cell := range Occupied(fleet) {
		if seen[cell] {
			return true
		}
		seen[cell] = true
	}
	return false
}

// FleetSize returns the sum of all ship lengths
func FleetSize(fleet []ShipDescriptor) int {
	total := 0
	for _, d := range fleet {
		total += d.Length
	}
	return total
}
