package engine

// Probe fires at (row, col) and classifies the outcome.
//
// Water cells are idempotent. Re-probing a ship cell returns Hit until the
// ship is sunk and AlreadySunk afterwards; NewlySunk is returned exactly once
// per ship, for the probe that hits its last unhit cell.
func (m *Match) Probe(row, col int) (Outcome, error) {
	if !m.InBounds(row, col) {
		return Outcome{Result: Water, ShipID: NoShip}, &CoordinateError{Row: row, Column: col, Rows: m.rows, Columns: m.columns}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.probes++
	idx := row*m.columns + col
	shipID := m.occupant[idx]
	first := !m.probed[idx]
	m.probed[idx] = true

	if shipID == NoShip {
		if first {
			m.misses++
		}
		return Outcome{Result: Water, ShipID: NoShip}, nil
	}

	ship := m.ships[shipID]
	if !first {
		if ship.IsSunk() {
			return Outcome{Result: AlreadySunk, ShipID: shipID}, nil
		}
		return Outcome{Result: Hit, ShipID: shipID}, nil
	}

	m.hits++
	if ship.hit(ship.offsetOf(row, col)) {
		m.sunk++
		return Outcome{Result: NewlySunk, ShipID: shipID}, nil
	}
	return Outcome{Result: Hit, ShipID: shipID}, nil
}

// ProbeAt is Probe for a Position
func (m *Match) ProbeAt(p Position) (Outcome, error) {
	return m.Probe(p.Row, p.Column)
}
