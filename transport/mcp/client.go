package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/wricardo/mcp-training/flota/game/engine"
	"github.com/wricardo/mcp-training/flota/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Flota",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Flota - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Sink every hidden ship on the board by probing cells.

AVAILABLE TOOLS:
- create_match: Start a match (rows, columns, ships, optional rules and seed)
- list_matches: List active matches
- get_match: Match summary and statistics
- delete_match: End a match
- probe_cell: Probe one cell - requires intent explanation
- get_ship: Position of one ship as a row#column#orientation#length record
- get_solution: Every ship of a match (ends the fun)
- get_board: Rendered board of what has been probed so far
- list_rules: Available placement rule sets
- game_instructions: Complete rules and a hunting strategy

NOTE: The 'intent' parameter on probe_cell serves as rubber duck debugging - explain your reasoning!`),
	)

	// Register all tools
	c.registerTools()
}

func matchIDSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":        "integer",
		"description": "Match ID",
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Match management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_match",
		Description: "Create a new match with a randomly placed fleet",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"rows": map[string]interface{}{
					"type":        "integer",
					"description": "Board rows",
				},
				"columns": map[string]interface{}{
					"type":        "integer",
					"description": "Board columns",
				},
				"ships": map[string]interface{}{
					"type":        "integer",
					"description": "Number of ships to place",
				},
				"rules": map[string]interface{}{
					"type":        "string",
					"description": "Rule set id (optional, see list_rules)",
				},
				"seed": map[string]interface{}{
					"type":        "integer",
					"description": "Placement seed for a reproducible fleet (optional, send seeds above 2^53 as a decimal string)",
				},
			},
			Required: []string{"rows", "columns", "ships"},
		},
	}, c.handleCreateMatch)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_matches",
		Description: "List all active matches",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListMatches)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_match",
		Description: "Get the summary and statistics of a match",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"match_id": matchIDSchema()},
			Required:   []string{"match_id"},
		},
	}, c.handleGetMatch)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "delete_match",
		Description: "End a match and release it",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"match_id": matchIDSchema()},
			Required:   []string{"match_id"},
		},
	}, c.handleDeleteMatch)

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "probe_cell",
		Description: "Fire at a cell. Returns water, hit, newly_sunk (first time a ship goes down) or already_sunk",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"match_id": matchIDSchema(),
				"row": map[string]interface{}{
					"type":        "integer",
					"description": "Row, 0-based",
				},
				"column": map[string]interface{}{
					"type":        "integer",
					"description": "Column, 0-based",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Why this cell (rubber duck debugging)",
				},
			},
			Required: []string{"match_id", "row", "column"},
		},
	}, c.handleProbeCell)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_ship",
		Description: "Get the position of one ship",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"match_id": matchIDSchema(),
				"ship_id": map[string]interface{}{
					"type":        "integer",
					"description": "Ship ID, 0-based",
				},
			},
			Required: []string{"match_id", "ship_id"},
		},
	}, c.handleGetShip)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_solution",
		Description: "Reveal every ship of a match",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"match_id": matchIDSchema()},
			Required:   []string{"match_id"},
		},
	}, c.handleGetSolution)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_board",
		Description: "Render the board with the probes made so far",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"match_id": matchIDSchema(),
				"reveal": map[string]interface{}{
					"type":        "boolean",
					"description": "Also show unprobed ship cells",
				},
			},
			Required: []string{"match_id"},
		},
	}, c.handleGetBoard)

	// Rules
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_rules",
		Description: "List available placement rule sets",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListRules)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get complete game instructions and a hunting strategy",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	url := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		json.NewDecoder(resp.Body).Decode(&errResp)
		if errResp.Error != "" {
			return fmt.Errorf("%s", errResp.Error)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	return args
}

// maxExactFloat is the largest magnitude below which every integer is
// representable as a float64
const maxExactFloat = 1 << 53

// argInt reads an integer argument. JSON numbers arrive as float64 and must
// hold an exact integer.
func argInt(args map[string]interface{}, key string) (int, error) {
	switch v := args[key].(type) {
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) {
			return 0, fmt.Errorf("%s must be an integer, got %v", key, v)
		}
		if math.Abs(v) > maxExactFloat {
			return 0, fmt.Errorf("%s is too large for a JSON number, pass it as a string", key)
		}
		return int(v), nil
	case int:
		return v, nil
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, fmt.Errorf("%s must be an integer, got %s", key, v)
		}
		return int(n), nil
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("%s must be an integer, got %q", key, v)
		}
		return n, nil
	case nil:
		return 0, fmt.Errorf("%s is required", key)
	default:
		return 0, fmt.Errorf("%s must be an integer", key)
	}
}

// argSeed reads the optional placement seed. Seeds past 2^53 must be sent as
// strings to survive JSON decoding.
func argSeed(args map[string]interface{}) (uint64, error) {
	switch v := args["seed"].(type) {
	case nil:
		return 0, nil
	case string:
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("seed must be a non-negative integer, got %q", v)
		}
		return seed, nil
	}

	seed, err := argInt(args, "seed")
	if err != nil {
		return 0, err
	}
	if seed < 0 {
		return 0, fmt.Errorf("seed must be a non-negative integer, got %d", seed)
	}
	return uint64(seed), nil
}

// Tool handlers

func (c *Client) handleCreateMatch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)

	var req service.CreateMatchRequest
	var err error
	if req.Rows, err = argInt(args, "rows"); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if req.Columns, err = argInt(args, "columns"); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if req.Ships, err = argInt(args, "ships"); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	req.Rules, _ = args["rules"].(string)
	if req.Seed, err = argSeed(args); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var match service.MatchInfo
	if err := c.apiCall(ctx, "POST", "/api/matches", req, &match); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created match: %d\nBoard: %dx%d\nShips: %d\nRules: %s\n",
		match.ID, match.Rows, match.Columns, match.Ships, match.Rules)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListMatches(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count   int                 `json:"count"`
		Matches []service.MatchInfo `json:"matches"`
	}

	if err := c.apiCall(ctx, "GET", "/api/matches", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Active Matches (%d):\n\n", response.Count)
	for _, m := range response.Matches {
		result += fmt.Sprintf("- %d: %dx%d, %d/%d ships sunk (Rules: %s, Created: %s)\n",
			m.ID, m.Rows, m.Columns, m.Stats.ShipsSunk, m.Ships, m.Rules, m.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGetMatch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	matchID, err := argInt(arguments(request), "match_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var match service.MatchInfo
	if err := c.apiCall(ctx, "GET", fmt.Sprintf("/api/matches/%d", matchID), nil, &match); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatMatchInfo(&match)), nil
}

func (c *Client) handleDeleteMatch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	matchID, err := argInt(arguments(request), "match_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := c.apiCall(ctx, "DELETE", fmt.Sprintf("/api/matches/%d", matchID), nil, nil); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Match %d deleted", matchID)), nil
}

func (c *Client) handleProbeCell(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	matchID, err := argInt(args, "match_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	row, err := argInt(args, "row")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	column, err := argInt(args, "column")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	// Intent parameter serves as rubber duck debugging - we don't need to process it further
	_, _ = args["intent"].(string)

	body := map[string]int{"row": row, "column": column}
	var result service.ProbeResult
	if err := c.apiCall(ctx, "POST", fmt.Sprintf("/api/matches/%d/probe", matchID), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatProbeResult(&result)), nil
}

func (c *Client) handleGetShip(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	matchID, err := argInt(args, "match_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	shipID, err := argInt(args, "ship_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var response struct {
		Ship   engine.ShipDescriptor `json:"ship"`
		Record string                `json:"record"`
	}
	if err := c.apiCall(ctx, "GET", fmt.Sprintf("/api/matches/%d/ships/%d", matchID, shipID), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Ship %d: %s\n%s", shipID, response.Record, describeShip(response.Ship))), nil
}

func (c *Client) handleGetSolution(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	matchID, err := argInt(arguments(request), "match_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var solution service.Solution
	if err := c.apiCall(ctx, "GET", fmt.Sprintf("/api/matches/%d/solution", matchID), nil, &solution); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result strings.Builder
	result.WriteString(fmt.Sprintf("Solution for match %d (%d ships):\n", matchID, len(solution.Ships)))
	for i, ship := range solution.Ships {
		result.WriteString(fmt.Sprintf("  %d: %s  %s\n", i, ship, describeShip(ship)))
	}
	return mcp.NewToolResultText(result.String()), nil
}

func (c *Client) handleGetBoard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	matchID, err := argInt(args, "match_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	reveal, _ := args["reveal"].(bool)

	var board service.BoardView
	if err := c.apiCall(ctx, "GET", fmt.Sprintf("/api/matches/%d/board?reveal=%t", matchID, reveal), nil, &board); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatBoard(&board)), nil
}

func (c *Client) handleListRules(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var rules []service.RulesInfo
	if err := c.apiCall(ctx, "GET", "/api/rules", nil, &rules); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result strings.Builder
	result.WriteString(fmt.Sprintf("Available Rule Sets (%d):\n\n", len(rules)))
	for _, r := range rules {
		result.WriteString(fmt.Sprintf("- %s: %s\n", r.RulesID, r.Name))
		if r.Description != "" {
			result.WriteString(fmt.Sprintf("  %s\n", r.Description))
		}
		result.WriteString(fmt.Sprintf("  Ship lengths: %v (clamp to board: %t)\n", r.ShipLengths, r.ClampToBoard))
		if r.Board != nil {
			result.WriteString(fmt.Sprintf("  Reference board: %dx%d, %d ships\n", r.Board.Rows, r.Board.Columns, r.Board.Ships))
		}
	}
	return mcp.NewToolResultText(result.String()), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `Flota - Complete Instructions

GAME OBJECTIVE:
A fleet of ships is hidden on a rectangular board. Find and sink all of them.

BOARD:
• Rows and columns are 0-based: (0,0) is the top-left cell
• Ships are straight lines, horizontal (H) or vertical (V)
• Ships never overlap; they may touch
• Ship records read row#column#orientation#length, e.g. 2#4#V#3 covers (2,4), (3,4), (4,4)

PROBE RESULTS:
• water - nothing there (legacy code -1)
• hit - part of a ship that is still afloat (legacy code -2)
• newly_sunk - this probe sank the ship; reported once per ship with its id (legacy code = ship id)
• already_sunk - the cell belongs to a ship that is already down (legacy code -3)

Probing the same water cell twice is allowed and still reports water.
Probing outside the board is an error and does not count.

BOARD LEGEND (get_board):
• ~ - not probed yet
• o - water
• x - hit, ship still afloat
• # - part of a sunk ship
• S - unprobed ship cell (reveal mode only)

HUNTING STRATEGY:
1. HUNT: Probe on a checkerboard pattern ((row+column) even). Every ship of
   length 2 or more covers at least one such cell.
2. TARGET: After a hit, probe the four neighbours of the hit cell.
3. EXTEND: Two hits in a line fix the orientation; keep going in that line
   until you find water, then try the other end.
4. When a probe reports newly_sunk, drop back to HUNT mode.
5. Use get_match to see how many ships remain.

VICTORY CONDITIONS:
• The match is finished once every ship is sunk (stats.finished = true)

Good luck, admiral!`

	return mcp.NewToolResultText(instructions), nil
}

// Formatting helpers

func formatMatchInfo(match *service.MatchInfo) string {
	return fmt.Sprintf("Match: %d\nBoard: %dx%d\nRules: %s\nCreated: %s\nLast access: %s\n\n%s",
		match.ID, match.Rows, match.Columns, match.Rules,
		match.CreatedAt.Format("2006-01-02 15:04:05"),
		match.LastAccessedAt.Format("2006-01-02 15:04:05"),
		formatStats(match.Stats))
}

func formatStats(stats engine.Stats) string {
	status := "in progress"
	if stats.Finished {
		status = "FINISHED - every ship sunk"
	}
	return fmt.Sprintf("Probes: %d (hits %d, misses %d)\nShips sunk: %d, remaining: %d\nStatus: %s",
		stats.Probes, stats.Hits, stats.Misses, stats.ShipsSunk, stats.ShipsRemaining, status)
}

func formatProbeResult(result *service.ProbeResult) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Probe (%d,%d): %s", result.Row, result.Column, strings.ToUpper(result.Result.String())))
	if result.ShipID != engine.NoShip {
		b.WriteString(fmt.Sprintf(" (ship %d)", result.ShipID))
	}
	b.WriteString("\n")
	if result.Message != "" {
		b.WriteString(result.Message + "\n")
	}
	b.WriteString(formatStats(result.Stats))
	return b.String()
}

func formatBoard(board *service.BoardView) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Match %d board (%dx%d)", board.MatchID, board.Rows, board.Columns))
	if board.Revealed {
		b.WriteString(" [revealed]")
	}
	b.WriteString("\n\n    ")
	for c := 0; c < board.Columns; c++ {
		b.WriteString(strconv.Itoa(c % 10))
	}
	b.WriteString("\n")
	for r, line := range board.Cells {
		b.WriteString(fmt.Sprintf("%3d %s\n", r, line))
	}
	if board.Legend != "" {
		b.WriteString("\nLegend: " + board.Legend + "\n")
	}
	b.WriteString("\n" + formatStats(board.Stats))
	return b.String()
}

func describeShip(ship engine.ShipDescriptor) string {
	cells := ship.Cells()
	if len(cells) == 0 {
		return ""
	}
	first, last := cells[0], cells[len(cells)-1]
	direction := "horizontal"
	if ship.Orientation == engine.Vertical {
		direction = "vertical"
	}
	return fmt.Sprintf("%s, length %d, from (%d,%d) to (%d,%d)",
		direction, ship.Length, first.Row, first.Column, last.Row, last.Column)
}
