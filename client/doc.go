// Package client talks to a Flota server over the legacy text/XML resource
// under /servicios/partidas and plays matches automatically.
//
// Client mirrors the original match manager API: CreateMatch returns the id
// parsed from the Location header, Probe returns the integer result code
// (-1 water, -2 hit, -3 already sunk, ship id when sunk), GetShip and
// GetSolution decode row#column#orientation#length records.
//
// Hunter is a hunt/target strategy; Play drives a Hunter against any Game
// until every ship is sunk.
package client
