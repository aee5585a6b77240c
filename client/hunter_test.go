package client

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wricardo/mcp-training/flota/game/engine"
)

// matchGame plays directly against an in-memory match
type matchGame struct {
	match *engine.Match
}

func (g matchGame) Probe(ctx context.Context, matchID, row, column int) (int, error) {
	outcome, err := g.match.Probe(row, column)
	if err != nil {
		return 0, err
	}
	return outcome.Code(), nil
}

func (g matchGame) GetShip(ctx context.Context, matchID, shipID int) (engine.ShipDescriptor, error) {
	return g.match.Ship(shipID)
}

// oceanGame reports water everywhere
type oceanGame struct{}

func (oceanGame) Probe(ctx context.Context, matchID, row, column int) (int, error) {
	return engine.CodeWater, nil
}

func (oceanGame) GetShip(ctx context.Context, matchID, shipID int) (engine.ShipDescriptor, error) {
	return engine.ShipDescriptor{}, errors.New("no ships")
}

func TestHunterHuntsOnCheckerboard(t *testing.T) {
	h := NewHunter(3, 3, 1)

	var seen []engine.Position
	for i := 0; i < 5; i++ {
		p, ok := h.Next()
		require.True(t, ok)
		assert.Equal(t, 0, (p.Row+p.Column)%2, "probe %d at %+v is off the checkerboard", i, p)
		seen = append(seen, p)
		h.Record(p, engine.Outcome{Result: engine.Water, ShipID: engine.NoShip})
	}
	assert.Equal(t, engine.Position{Row: 0, Column: 0}, seen[0])

	// Checkerboard exhausted, the sweep picks up the remaining cells
	p, ok := h.Next()
	require.True(t, ok)
	assert.Equal(t, engine.Position{Row: 0, Column: 1}, p)
}

func TestHunterTargetsAfterHit(t *testing.T) {
	h := NewHunter(5, 5, 1)
	h.Record(engine.Position{Row: 2, Column: 2}, engine.Outcome{Result: engine.Hit, ShipID: engine.NoShip})

	p, ok := h.Next()
	require.True(t, ok)
	neighbours := []engine.Position{{Row: 1, Column: 2}, {Row: 3, Column: 2}, {Row: 2, Column: 1}, {Row: 2, Column: 3}}
	assert.Contains(t, neighbours, p)

	h.Record(engine.Position{Row: 2, Column: 3}, engine.Outcome{Result: engine.Hit, ShipID: engine.NoShip})
	p, ok = h.Next()
	require.True(t, ok)
	assert.Contains(t, []engine.Position{{Row: 2, Column: 1}, {Row: 2, Column: 4}}, p, "should extend the line of hits")
}

func TestHunterMarkSunkStopsTargeting(t *testing.T) {
	h := NewHunter(4, 4, 2)
	ship := engine.ShipDescriptor{Row: 1, Column: 1, Orientation: engine.Horizontal, Length: 2}
	h.Record(engine.Position{Row: 1, Column: 1}, engine.Outcome{Result: engine.Hit, ShipID: engine.NoShip})
	h.Record(engine.Position{Row: 1, Column: 2}, engine.Outcome{Result: engine.NewlySunk, ShipID: 0})
	h.MarkSunk(ship)

	assert.False(t, h.Done())
	assert.Equal(t, 2, h.Probes())

	// Back to hunting: first unknown checkerboard cell
	p, ok := h.Next()
	require.True(t, ok)
	assert.Equal(t, engine.Position{Row: 0, Column: 0}, p)
}

func TestPlayAdjacentFleet(t *testing.T) {
	fleet := []engine.ShipDescriptor{
		{Row: 0, Column: 0, Orientation: engine.Horizontal, Length: 3},
		{Row: 1, Column: 0, Orientation: engine.Horizontal, Length: 3},
		{Row: 3, Column: 3, Orientation: engine.Vertical, Length: 1},
	}
	match, err := engine.NewMatchFromDescriptors(5, 5, fleet)
	require.NoError(t, err)

	var sunkOrder []int
	report, err := Play(context.Background(), matchGame{match}, 1, NewHunter(5, 5, len(fleet)), func(p engine.Position, o engine.Outcome) {
		if o.Result == engine.NewlySunk {
			sunkOrder = append(sunkOrder, o.ShipID)
		}
	})
	require.NoError(t, err)

	assert.True(t, match.IsFinished())
	assert.Equal(t, 3, report.Sunk)
	assert.Equal(t, 7, report.Hits)
	assert.Equal(t, report.Probes, report.Hits+report.Misses)
	assert.ElementsMatch(t, []int{0, 1, 2}, sunkOrder)
}

func TestPlayRandomMatches(t *testing.T) {
	for seed := uint64(1); seed <= 30; seed++ {
		rules := engine.DefaultRules()
		rules.Seed = seed
		match, err := engine.NewMatch(10, 10, 5, rules)
		require.NoError(t, err)

		report, err := Play(context.Background(), matchGame{match}, 1, NewHunter(10, 10, 5), nil)
		require.NoError(t, err, "seed %d", seed)
		assert.True(t, match.IsFinished(), "seed %d", seed)
		assert.Equal(t, 5, report.Sunk)
		assert.Equal(t, 17, report.Hits, "seed %d", seed)
		assert.LessOrEqual(t, report.Probes, 100)
	}
}

func TestPlayBoardExhausted(t *testing.T) {
	report, err := Play(context.Background(), oceanGame{}, 1, NewHunter(3, 3, 1), nil)
	assert.ErrorIs(t, err, ErrBoardExhausted)
	assert.Equal(t, 9, report.Probes)
	assert.Equal(t, 9, report.Misses)
}

func TestPlayCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Play(ctx, oceanGame{}, 1, NewHunter(3, 3, 1), nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPlayEmptyFleet(t *testing.T) {
	report, err := Play(context.Background(), oceanGame{}, 1, NewHunter(3, 3, 0), nil)
	require.NoError(t, err)
	assert.Zero(t, report.Probes)
}
