package service

import (
	"context"

	"github.com/wricardo/mcp-training/flota/game/engine"
)

// GameService defines all game-related operations
type GameService interface {
	// Match management
	CreateMatch(ctx context.Context, req CreateMatchRequest) (*MatchInfo, error)
	GetMatch(ctx context.Context, matchID int) (*MatchInfo, error)
	ListMatches(ctx context.Context) ([]*MatchInfo, error)
	DeleteMatch(ctx context.Context, matchID int) error

	// Game operations
	Probe(ctx context.Context, matchID, row, column int) (*ProbeResult, error)
	GetShip(ctx context.Context, matchID, shipID int) (engine.ShipDescriptor, error)
	GetSolution(ctx context.Context, matchID int) (*Solution, error)
	GetBoard(ctx context.Context, matchID int, reveal bool) (*BoardView, error)

	// Rules
	ListRules(ctx context.Context) ([]*RulesInfo, error)
	GetRules(ctx context.Context, name string) (*engine.Rules, error)
}

// SessionManager defines match storage operations
type SessionManager interface {
	Create(rows, columns, ships int, rules *engine.Rules) (*Session, error)
	Get(id int) (*Session, error)
	List() []*Session
	Delete(id int) error
}

// RulesManager handles placement rules loading
type RulesManager interface {
	LoadRules(name string) (*engine.Rules, error)
	ListRules() ([]*RulesInfo, error)
	GetDefault() *engine.Rules
}
