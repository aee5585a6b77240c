package engine

import (
	"math/rand/v2"
)

// fleetLayout is the result of a successful placement run
type fleetLayout struct {
	ships    []*Ship
	occupant []int // row-major, NoShip for water
	attempts int
}

// newSource returns the random source for a placement run
func newSource(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// placeFleet lays out one ship per entry in lengths, sampling random origins
// and orientations and rejecting candidates that leave the board or overlap.
// Each ship gets at most maxAttempts samples.
func placeFleet(rows, columns int, lengths []int, maxAttempts int, rng *rand.Rand) (*fleetLayout, error) {
	total := 0
	for _, length := range lengths {
		total += length
	}
	if total > rows*columns {
		return nil, &PlacementError{Ship: -1, Rows: rows, Columns: columns}
	}

	layout := &fleetLayout{
		ships:    make([]*Ship, 0, len(lengths)),
		occupant: make([]int, rows*columns),
	}
	for i := range layout.occupant {
		layout.occupant[i] = NoShip
	}

	for id, length := range lengths {
		placed := false
		for attempt := 1; attempt <= maxAttempts; attempt++ {
			layout.attempts++
			candidate := sampleDescriptor(rows, columns, length, rng)
			if !layout.fits(rows, columns, candidate) {
				continue
			}
			layout.occupy(columns, id, candidate)
			layout.ships = append(layout.ships, newShip(id, candidate))
			placed = true
			break
		}
		if !placed {
			return nil, &PlacementError{
				Ship:     id,
				Length:   length,
				Attempts: maxAttempts,
				Rows:     rows,
				Columns:  columns,
			}
		}
	}

	return layout, nil
}

// sampleDescriptor draws a random origin and orientation. The origin is drawn
// over the whole board so out-of-bounds candidates are possible and rejected.
func sampleDescriptor(rows, columns, length int, rng *rand.Rand) ShipDescriptor {
	orientation := Horizontal
	if rng.IntN(2) == 1 {
		orientation = Vertical
	}
	return ShipDescriptor{
		Row:         rng.IntN(rows),
		Column:      rng.IntN(columns),
		Orientation: orientation,
		Length:      length,
	}
}

func (l *fleetLayout) fits(rows, columns int, d ShipDescriptor) bool {
	for i := 0; i < d.Length; i++ {
		cell := d.cellAt(i)
		if cell.Row < 0 || cell.Row >= rows || cell.Column < 0 || cell.Column >= columns {
			return false
		}
		if l.occupant[cell.Row*columns+cell.Column] != NoShip {
			return false
		}
	}
	return true
}

func (l *fleetLayout) occupy(columns, id int, d ShipDescriptor) {
	for i := 0; i < d.Length; i++ {
		cell := d.cellAt(i)
		l.occupant[cell.Row*columns+cell.Column] = id
	}
}
