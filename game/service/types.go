package service

import (
	"sync/atomic"
	"time"

	"github.com/wricardo/mcp-training/flota/game/engine"
)

// Session represents an active match held by the registry
type Session struct {
	ID        int
	Match     *engine.Match
	Rules     *engine.Rules
	CreatedAt time.Time

	lastAccess atomic.Int64 // unix nanoseconds
}

// NewSession wraps a fully built match
func NewSession(id int, match *engine.Match, rules *engine.Rules) *Session {
	now := time.Now()
	s := &Session{
		ID:        id,
		Match:     match,
		Rules:     rules,
		CreatedAt: now,
	}
	s.lastAccess.Store(now.UnixNano())
	return s
}

// LastAccessedAt returns the time of the last operation on the session
func (s *Session) LastAccessedAt() time.Time {
	return time.Unix(0, s.lastAccess.Load())
}

// Touch records an access at t
func (s *Session) Touch(t time.Time) {
	s.lastAccess.Store(t.UnixNano())
}

// CreateMatchRequest describes a new match
type CreateMatchRequest struct {
	Rows    int    `json:"rows"`
	Columns int    `json:"columns"`
	Ships   int    `json:"ships"`
	Rules   string `json:"rules,omitempty"` // rules id, empty for the default set
	Seed    uint64 `json:"seed,omitempty"`  // overrides the rules seed when non-zero
}

// MatchInfo provides information about a match
type MatchInfo struct {
	ID             int          `json:"id"`
	Rows           int          `json:"rows"`
	Columns        int          `json:"columns"`
	Ships          int          `json:"ships"`
	Rules          string       `json:"rules"`
	CreatedAt      time.Time    `json:"created_at"`
	LastAccessedAt time.Time    `json:"last_accessed_at"`
	Stats          engine.Stats `json:"stats"`
}

// ProbeResult contains the result of a probe
type ProbeResult struct {
	MatchID int           `json:"match_id"`
	Row     int           `json:"row"`
	Column  int           `json:"column"`
	Result  engine.Result `json:"result"`
	ShipID  int           `json:"ship_id"`
	Code    int           `json:"code"` // legacy integer encoding
	Message string        `json:"message"`
	Stats   engine.Stats  `json:"stats"`
}

// Solution lists every ship of a match in id order
type Solution struct {
	MatchID int                     `json:"match_id"`
	Ships   []engine.ShipDescriptor `json:"ships"`
}

// BoardView is a rendered board, one string per row
type BoardView struct {
	MatchID  int          `json:"match_id"`
	Rows     int          `json:"rows"`
	Columns  int          `json:"columns"`
	Cells    []string     `json:"cells"`
	Revealed bool         `json:"revealed"`
	Legend   string       `json:"legend"`
	Stats    engine.Stats `json:"stats"`
}

// RulesInfo provides information about a rules file
type RulesInfo struct {
	Filename     string            `json:"filename"`
	RulesID      string            `json:"rules_id"` // the identifier to use for match creation
	Name         string            `json:"name"`
	Description  string            `json:"description"`
	ShipLengths  []int             `json:"ship_lengths"`
	ClampToBoard bool              `json:"clamp_to_board"`
	MaxAttempts  int               `json:"max_attempts"`
	Board        *engine.BoardSpec `json:"board,omitempty"`
}
