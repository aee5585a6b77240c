package service

import (
	"errors"

	"github.com/wricardo/mcp-training/flota/game/engine"
)

var (
	ErrMatchNotFound = errors.New("match not found")
)

// IsNotFound reports whether err refers to an unknown match or ship
func IsNotFound(err error) bool {
	return errors.Is(err, ErrMatchNotFound) || errors.Is(err, engine.ErrShipNotFound)
}
