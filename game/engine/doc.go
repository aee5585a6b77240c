// Package engine provides the core game logic for the Flota naval combat game.
//
// The engine package implements the match model:
//   - Randomized, non-overlapping fleet placement with a bounded retry budget
//   - Per-ship hit tracking and one-time sink detection
//   - Probe classification (water, hit, already sunk, newly sunk)
//   - Ship descriptors and solution export
//   - Placement rules (ship length policy, attempt budget, seed)
//
// Core Types:
//
// Match owns the board dimensions and the fleet of a single game ("partida").
// Ship is one placement with its hit bitset. Rules controls how a fleet is
// generated, and ShipDescriptor is the public, wire-friendly view of a ship.
//
// Usage:
//
//	rules := engine.DefaultRules()
//	match, err := engine.NewMatch(8, 8, 6, rules)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	outcome, err := match.Probe(3, 4)
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(outcome.Result, outcome.Code())
//
// Concurrency:
//
// Every Match carries its own mutex. Probes against the same match are
// serialized, so a ship reports NewlySunk exactly once even when several
// goroutines race to hit its last cells. Distinct matches never share state.
package engine
