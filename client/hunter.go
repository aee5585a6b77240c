package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/wricardo/mcp-training/flota/game/engine"
)

// ErrBoardExhausted is returned by Play when every cell was probed but the
// fleet is still afloat
var ErrBoardExhausted = errors.New("every cell probed without sinking the fleet")

type cellState uint8

const (
	unknown cellState = iota
	water
	hit
	sunk
)

var directions = [4]engine.Position{
	{Row: -1, Column: 0},
	{Row: 1, Column: 0},
	{Row: 0, Column: -1},
	{Row: 0, Column: 1},
}

// Hunter picks probes with a hunt/target strategy: checkerboard sweep until
// something is hit, then neighbours of open hits, preferring cells that extend
// a line of two or more hits.
type Hunter struct {
	rows, columns int
	ships         int
	cells         []cellState
	sunkShips     int
	probes        int
}

// NewHunter creates a hunter for a board with the given fleet size
func NewHunter(rows, columns, ships int) *Hunter {
	return &Hunter{
		rows:    rows,
		columns: columns,
		ships:   ships,
		cells:   make([]cellState, rows*columns),
	}
}

func (h *Hunter) inBounds(p engine.Position) bool {
	return p.Row >= 0 && p.Row < h.rows && p.Column >= 0 && p.Column < h.columns
}

func (h *Hunter) state(p engine.Position) cellState {
	if !h.inBounds(p) {
		return water
	}
	return h.cells[p.Row*h.columns+p.Column]
}

func (h *Hunter) set(p engine.Position, s cellState) {
	if h.inBounds(p) {
		h.cells[p.Row*h.columns+p.Column] = s
	}
}

// Next returns the next cell to probe. ok is false when nothing is left.
func (h *Hunter) Next() (p engine.Position, ok bool) {
	if target, found := h.target(); found {
		return target, true
	}

	// Hunt on the checkerboard first, then sweep what is left for length-1 ships
	for pass := 0; pass < 2; pass++ {
		for r := 0; r < h.rows; r++ {
			for c := 0; c < h.columns; c++ {
				if pass == 0 && (r+c)%2 != 0 {
					continue
				}
				cell := engine.Position{Row: r, Column: c}
				if h.state(cell) == unknown {
					return cell, true
				}
			}
		}
	}
	return engine.Position{}, false
}

func (h *Hunter) target() (engine.Position, bool) {
	var best engine.Position
	bestScore := 0

	for r := 0; r < h.rows; r++ {
		for c := 0; c < h.columns; c++ {
			cell := engine.Position{Row: r, Column: c}
			if h.state(cell) != hit {
				continue
			}
			for _, d := range directions {
				next := engine.Position{Row: r + d.Row, Column: c + d.Column}
				if !h.inBounds(next) || h.state(next) != unknown {
					continue
				}
				score := 1
				if h.state(engine.Position{Row: r - d.Row, Column: c - d.Column}) == hit {
					score = 2
				}
				if score > bestScore {
					best, bestScore = next, score
				}
			}
		}
	}
	return best, bestScore > 0
}

// Record feeds back the outcome of probing p
func (h *Hunter) Record(p engine.Position, outcome engine.Outcome) {
	h.probes++
	switch outcome.Result {
	case engine.Water:
		h.set(p, water)
	case engine.Hit:
		h.set(p, hit)
	case engine.NewlySunk:
		h.set(p, hit)
		h.sunkShips++
	case engine.AlreadySunk:
		h.set(p, sunk)
	}
}

// MarkSunk retires the cells of a ship known to be sunk so they stop
// attracting target probes
func (h *Hunter) MarkSunk(ship engine.ShipDescriptor) {
	for _, cell := range ship.Cells() {
		h.set(cell, sunk)
	}
}

// Done reports whether the whole fleet is sunk
func (h *Hunter) Done() bool {
	return h.sunkShips >= h.ships
}

// Probes is the number of outcomes recorded so far
func (h *Hunter) Probes() int {
	return h.probes
}

// Game is the part of the match API a Hunter needs
type Game interface {
	Probe(ctx context.Context, matchID, row, column int) (int, error)
	GetShip(ctx context.Context, matchID, shipID int) (engine.ShipDescriptor, error)
}

// Report summarizes a finished Play
type Report struct {
	Probes int
	Hits   int
	Misses int
	Sunk   int
}

// Play probes until the fleet is sunk. observe, when non-nil, is called after
// every probe.
func Play(ctx context.Context, game Game, matchID int, h *Hunter, observe func(engine.Position, engine.Outcome)) (Report, error) {
	var report Report
	for !h.Done() {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		p, ok := h.Next()
		if !ok {
			return report, ErrBoardExhausted
		}

		code, err := game.Probe(ctx, matchID, p.Row, p.Column)
		if err != nil {
			return report, fmt.Errorf("probe (%d,%d): %w", p.Row, p.Column, err)
		}
		outcome := engine.OutcomeFromCode(code)
		h.Record(p, outcome)

		report.Probes++
		switch outcome.Result {
		case engine.Water:
			report.Misses++
		case engine.Hit, engine.AlreadySunk:
			report.Hits++
		case engine.NewlySunk:
			report.Hits++
			report.Sunk++
			ship, err := game.GetShip(ctx, matchID, outcome.ShipID)
			if err != nil {
				return report, fmt.Errorf("ship %d: %w", outcome.ShipID, err)
			}
			h.MarkSunk(ship)
		}

		if observe != nil {
			observe(p, outcome)
		}
	}
	return report, nil
}
