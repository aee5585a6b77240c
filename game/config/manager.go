package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/wricardo/mcp-training/flota/game/engine"
	"github.com/wricardo/mcp-training/flota/game/service"
)

var (
	ErrRulesNotFound = errors.New("rules not found")
	ErrInvalidRules  = errors.New("invalid rules")
)

// DefaultRulesID is the rules file used when a match names none
const DefaultRulesID = "classic"

// Manager handles placement rules loading and caching
type Manager struct {
	configDir    string
	defaultRules *engine.Rules
	rules        map[string]*engine.Rules
	mu           sync.RWMutex
}

// NewManager creates a new rules manager
func NewManager(configDir string) (*Manager, error) {
	// Ensure config directory exists
	if _, err := os.Stat(configDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("config directory does not exist: %s", configDir)
	}

	m := &Manager{
		configDir: configDir,
		rules:     make(map[string]*engine.Rules),
	}

	m.defaultRules = m.loadDefaultRules()
	return m, nil
}

// LoadRules loads a rules file by id (file name without .json)
func (m *Manager) LoadRules(name string) (*engine.Rules, error) {
	name = strings.TrimSuffix(name, ".json")
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return nil, fmt.Errorf("%w: %q", ErrRulesNotFound, name)
	}

	m.mu.RLock()
	// Check cache first
	if rules, exists := m.rules[name]; exists {
		m.mu.RUnlock()
		return rules, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if rules, exists := m.rules[name]; exists {
		return rules, nil
	}

	data, err := os.ReadFile(filepath.Join(m.configDir, name+".json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %q", ErrRulesNotFound, name)
		}
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}

	var rules engine.Rules
	if err := json.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("%w: failed to parse %s: %v", ErrInvalidRules, name, err)
	}
	if rules.MaxAttempts == 0 {
		rules.MaxAttempts = engine.DefaultMaxAttempts
	}

	if err := engine.ValidateRules(&rules); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRules, err)
	}

	m.rules[name] = &rules
	return &rules, nil
}

// ListRules returns information about all valid rules files
func (m *Manager) ListRules() ([]*service.RulesInfo, error) {
	entries, err := os.ReadDir(m.configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read config directory: %w", err)
	}

	var list []*service.RulesInfo

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		id := strings.TrimSuffix(entry.Name(), ".json")
		rules, err := m.LoadRules(id)
		if err != nil {
			// Skip invalid files
			continue
		}

		list = append(list, &service.RulesInfo{
			Filename:     entry.Name(),
			RulesID:      id,
			Name:         rules.Name,
			Description:  rules.Description,
			ShipLengths:  rules.ShipLengths,
			ClampToBoard: rules.ClampToBoard,
			MaxAttempts:  rules.MaxAttempts,
			Board:        rules.Board,
		})
	}

	sort.Slice(list, func(i, j int) bool { return list[i].RulesID < list[j].RulesID })
	return list, nil
}

// GetDefault returns the default rules
func (m *Manager) GetDefault() *engine.Rules {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultRules
}

// SetDefault sets the default rules by id
func (m *Manager) SetDefault(name string) error {
	rules, err := m.LoadRules(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultRules = rules
	return nil
}

// loadDefaultRules prefers classic.json, then the first valid file, then the
// built-in classic progression
func (m *Manager) loadDefaultRules() *engine.Rules {
	if rules, err := m.LoadRules(DefaultRulesID); err == nil {
		return rules
	}

	list, err := m.ListRules()
	if err == nil && len(list) > 0 {
		if rules, err := m.LoadRules(list[0].RulesID); err == nil {
			return rules
		}
	}

	return engine.DefaultRules()
}
