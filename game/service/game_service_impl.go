package service

import (
	"context"
	"fmt"
	"time"

	"github.com/wricardo/mcp-training/flota/game/engine"
)

// gameServiceImpl implements the GameService interface.
// It holds no lock of its own: the registry guards the session map and each
// Match serializes its own probes.
type gameServiceImpl struct {
	sessions SessionManager
	rules    RulesManager
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, rules RulesManager) GameService {
	return &gameServiceImpl{
		sessions: sessions,
		rules:    rules,
	}
}

// CreateMatch places a new fleet and registers the match
func (s *gameServiceImpl) CreateMatch(ctx context.Context, req CreateMatchRequest) (*MatchInfo, error) {
	rules, err := s.resolveRules(req.Rules)
	if err != nil {
		return nil, err
	}
	if req.Seed != 0 {
		seeded := *rules
		seeded.Seed = req.Seed
		rules = &seeded
	}

	sess, err := s.sessions.Create(req.Rows, req.Columns, req.Ships, rules)
	if err != nil {
		return nil, fmt.Errorf("failed to create match: %w", err)
	}

	return matchInfo(sess), nil
}

// GetMatch returns information about a match
func (s *gameServiceImpl) GetMatch(ctx context.Context, matchID int) (*MatchInfo, error) {
	sess, err := s.session(matchID)
	if err != nil {
		return nil, err
	}
	return matchInfo(sess), nil
}

// ListMatches returns every registered match ordered by id
func (s *gameServiceImpl) ListMatches(ctx context.Context) ([]*MatchInfo, error) {
	sessions := s.sessions.List()
	result := make([]*MatchInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, matchInfo(sess))
	}
	return result, nil
}

// DeleteMatch removes a match from the registry
func (s *gameServiceImpl) DeleteMatch(ctx context.Context, matchID int) error {
	if err := s.sessions.Delete(matchID); err != nil {
		return fmt.Errorf("match %d: %w", matchID, err)
	}
	return nil
}

// Probe fires at a cell of a match
func (s *gameServiceImpl) Probe(ctx context.Context, matchID, row, column int) (*ProbeResult, error) {
	sess, err := s.session(matchID)
	if err != nil {
		return nil, err
	}

	outcome, err := sess.Match.Probe(row, column)
	if err != nil {
		return nil, fmt.Errorf("match %d: %w", matchID, err)
	}
	stats := sess.Match.Stats()

	return &ProbeResult{
		MatchID: matchID,
		Row:     row,
		Column:  column,
		Result:  outcome.Result,
		ShipID:  outcome.ShipID,
		Code:    outcome.Code(),
		Message: probeMessage(outcome, stats),
		Stats:   stats,
	}, nil
}

// GetShip returns the placement of one ship
func (s *gameServiceImpl) GetShip(ctx context.Context, matchID, shipID int) (engine.ShipDescriptor, error) {
	sess, err := s.session(matchID)
	if err != nil {
		return engine.ShipDescriptor{}, err
	}

	d, err := sess.Match.Ship(shipID)
	if err != nil {
		return engine.ShipDescriptor{}, fmt.Errorf("match %d: %w", matchID, err)
	}
	return d, nil
}

// GetSolution returns every ship of a match
func (s *gameServiceImpl) GetSolution(ctx context.Context, matchID int) (*Solution, error) {
	sess, err := s.session(matchID)
	if err != nil {
		return nil, err
	}
	return &Solution{MatchID: matchID, Ships: sess.Match.Solution()}, nil
}

// GetBoard renders what has been learned about a match
func (s *gameServiceImpl) GetBoard(ctx context.Context, matchID int, reveal bool) (*BoardView, error) {
	sess, err := s.session(matchID)
	if err != nil {
		return nil, err
	}

	legend := fmt.Sprintf("%c unknown, %c water, %c hit, %c sunk", engine.CellUnknown, engine.CellWater, engine.CellHit, engine.CellSunk)
	if reveal {
		legend += fmt.Sprintf(", %c ship", engine.CellShip)
	}

	return &BoardView{
		MatchID:  matchID,
		Rows:     sess.Match.Rows(),
		Columns:  sess.Match.Columns(),
		Cells:    sess.Match.Render(reveal),
		Revealed: reveal,
		Legend:   legend,
		Stats:    sess.Match.Stats(),
	}, nil
}

// ListRules returns the available rule sets
func (s *gameServiceImpl) ListRules(ctx context.Context) ([]*RulesInfo, error) {
	return s.rules.ListRules()
}

// GetRules loads a rule set by id. An empty name returns the default set.
func (s *gameServiceImpl) GetRules(ctx context.Context, name string) (*engine.Rules, error) {
	return s.resolveRules(name)
}

func (s *gameServiceImpl) resolveRules(name string) (*engine.Rules, error) {
	if name == "" {
		return s.rules.GetDefault(), nil
	}
	rules, err := s.rules.LoadRules(name)
	if err != nil {
		return nil, fmt.Errorf("rules %q: %w", name, err)
	}
	return rules, nil
}

// session looks up a match and records the access
func (s *gameServiceImpl) session(matchID int) (*Session, error) {
	sess, err := s.sessions.Get(matchID)
	if err != nil {
		return nil, fmt.Errorf("match %d: %w", matchID, err)
	}
	sess.Touch(time.Now())
	return sess, nil
}

func matchInfo(sess *Session) *MatchInfo {
	rulesName := ""
	if sess.Rules != nil {
		rulesName = sess.Rules.Name
	}
	return &MatchInfo{
		ID:             sess.ID,
		Rows:           sess.Match.Rows(),
		Columns:        sess.Match.Columns(),
		Ships:          sess.Match.ShipCount(),
		Rules:          rulesName,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt(),
		Stats:          sess.Match.Stats(),
	}
}

func probeMessage(outcome engine.Outcome, stats engine.Stats) string {
	switch outcome.Result {
	case engine.Water:
		return "Water."
	case engine.Hit:
		return fmt.Sprintf("Hit on ship %d.", outcome.ShipID)
	case engine.AlreadySunk:
		return fmt.Sprintf("Ship %d is already sunk.", outcome.ShipID)
	}
	if stats.Finished {
		return fmt.Sprintf("Ship %d sunk! All %d ships sunk.", outcome.ShipID, stats.ShipsSunk)
	}
	return fmt.Sprintf("Ship %d sunk! %d remaining.", outcome.ShipID, stats.ShipsRemaining)
}
