package engine

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCoordinate = errors.New("invalid coordinate")
	ErrShipNotFound      = errors.New("ship not found")
	ErrPlacementFailed   = errors.New("placement failed")
	ErrInvalidDimensions = errors.New("invalid dimensions")
	ErrInvalidRules      = errors.New("invalid rules")
)

// CoordinateError reports a probe outside the board
type CoordinateError struct {
	Row, Column   int
	Rows, Columns int
}

func (e *CoordinateError) Error() string {
	return fmt.Sprintf("%v: (%d,%d) outside %dx%d board", ErrInvalidCoordinate, e.Row, e.Column, e.Rows, e.Columns)
}

func (e *CoordinateError) Unwrap() error { return ErrInvalidCoordinate }

// ShipError reports an unknown ship identifier
type ShipError struct {
	ShipID int
	Ships  int
}

func (e *ShipError) Error() string {
	return fmt.Sprintf("%v: id %d not in [0,%d)", ErrShipNotFound, e.ShipID, e.Ships)
}

func (e *ShipError) Unwrap() error { return ErrShipNotFound }

// PlacementError reports a fleet that could not be laid out
type PlacementError struct {
	Ship     int // index of the ship that could not be placed, -1 when the fleet is rejected up front
	Length   int
	Attempts int
	Rows     int
	Columns  int
}

func (e *PlacementError) Error() string {
	if e.Ship < 0 {
		return fmt.Sprintf("%v: fleet does not fit a %dx%d board", ErrPlacementFailed, e.Rows, e.Columns)
	}
	return fmt.Sprintf("%v: ship %d (length %d) did not fit a %dx%d board after %d attempts",
		ErrPlacementFailed, e.Ship, e.Length, e.Rows, e.Columns, e.Attempts)
}

func (e *PlacementError) Unwrap() error { return ErrPlacementFailed }
