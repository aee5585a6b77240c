package engine

// Ship is an immutable placement plus per-offset hit tracking.
// Hit state is only mutated by Match.Probe under the match lock.
type Ship struct {
	ID          int
	Row         int
	Column      int
	Orientation Orientation
	Length      int

	hits     []bool
	hitCount int
	sunk     bool
}

func newShip(id int, d ShipDescriptor) *Ship {
	return &Ship{
		ID:          id,
		Row:         d.Row,
		Column:      d.Column,
		Orientation: d.Orientation,
		Length:      d.Length,
		hits:        make([]bool, d.Length),
	}
}

// Descriptor returns the static placement of the ship
func (s *Ship) Descriptor() ShipDescriptor {
	return ShipDescriptor{
		Row:         s.Row,
		Column:      s.Column,
		Orientation: s.Orientation,
		Length:      s.Length,
	}
}

// Cells returns the occupied cells, origin first
func (s *Ship) Cells() []Position {
	return s.Descriptor().Cells()
}

// offsetOf returns the offset of (row, col) along the ship, or -1
func (s *Ship) offsetOf(row, col int) int {
	var offset int
	switch s.Orientation {
	case Vertical:
		if col != s.Column {
			return -1
		}
		offset = row - s.Row
	default:
		if row != s.Row {
			return -1
		}
		offset = col - s.Column
	}
	if offset < 0 || offset >= s.Length {
		return -1
	}
	return offset
}

// hit marks an offset and reports whether this hit sank the ship
func (s *Ship) hit(offset int) (newlySunk bool) {
	if s.hits[offset] {
		return false
	}
	s.hits[offset] = true
	s.hitCount++
	if s.hitCount == s.Length && !s.sunk {
		s.sunk = true
		return true
	}
	return false
}

// isHit reports whether the offset has been hit
func (s *Ship) isHit(offset int) bool {
	return s.hits[offset]
}

// IsSunk reports whether every cell of the ship has been hit
func (s *Ship) IsSunk() bool {
	return s.sunk
}

// HitCount returns how many distinct cells have been hit
func (s *Ship) HitCount() int {
	return s.hitCount
}
