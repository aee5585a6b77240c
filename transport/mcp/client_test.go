package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/wricardo/mcp-training/flota/api"
	"github.com/wricardo/mcp-training/flota/game/config"
	"github.com/wricardo/mcp-training/flota/game/engine"
	"github.com/wricardo/mcp-training/flota/game/service"
	"github.com/wricardo/mcp-training/flota/game/session"
)

func callRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil {
		t.Fatal("Expected result, got nil")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatal("Expected text content in result")
	}
	return text.Text
}

func TestNewClient(t *testing.T) {
	baseURL := "http://localhost:8080"
	client := NewClient(baseURL + "/")

	if client == nil {
		t.Fatal("Expected client to be created")
	}

	if client.baseURL != baseURL {
		t.Errorf("Expected baseURL %s, got %s", baseURL, client.baseURL)
	}

	if client.httpClient == nil {
		t.Error("Expected HTTP client to be initialized")
	}

	if client.GetMCPServer() == nil {
		t.Error("Expected MCP server to be initialized")
	}
}

func TestArgInt(t *testing.T) {
	args := map[string]interface{}{
		"float":  float64(7),
		"int":    3,
		"number": json.Number("12"),
		"string": "5",
		"bad":    "five",
		"bool":   true,

		"fraction":  2.7,
		"negative":  float64(-4),
		"huge":      float64(1 << 60),
		"bigNumber": json.Number("1.5"),
	}

	tests := []struct {
		key     string
		want    int
		wantErr bool
	}{
		{"float", 7, false},
		{"int", 3, false},
		{"number", 12, false},
		{"string", 5, false},
		{"bad", 0, true},
		{"bool", 0, true},
		{"missing", 0, true},
		{"fraction", 0, true},
		{"negative", -4, false},
		{"huge", 0, true},
		{"bigNumber", 0, true},
	}

	for _, tt := range tests {
		got, err := argInt(args, tt.key)
		if (err != nil) != tt.wantErr {
			t.Errorf("argInt(%s) error = %v, wantErr %v", tt.key, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("argInt(%s) = %d, want %d", tt.key, got, tt.want)
		}
	}
}

func TestClient_apiCall(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(service.MatchInfo{ID: 9, Rows: 4, Columns: 5})
	}))
	defer server.Close()

	client := NewClient(server.URL)

	var response service.MatchInfo
	if err := client.apiCall(context.Background(), "GET", "/api/matches/9", nil, &response); err != nil {
		t.Fatalf("apiCall failed: %v", err)
	}

	if response.ID != 9 || response.Columns != 5 {
		t.Errorf("Unexpected response: %+v", response)
	}
}

func TestClient_apiCall_Error(t *testing.T) {
	client := NewClient("http://invalid-url-that-does-not-exist:9999")

	if err := client.apiCall(context.Background(), "GET", "/api/matches", nil, nil); err == nil {
		t.Error("Expected error for invalid URL")
	}
}

func TestClient_apiCall_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/json" {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]interface{}{"error": "match 4: match not found", "code": 404})
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Internal Server Error"))
	}))
	defer server.Close()

	client := NewClient(server.URL)

	err := client.apiCall(context.Background(), "GET", "/json", nil, nil)
	if err == nil || err.Error() != "match 4: match not found" {
		t.Errorf("Expected API error message, got %v", err)
	}

	err = client.apiCall(context.Background(), "GET", "/plain", nil, nil)
	if err == nil || !strings.Contains(err.Error(), "500") {
		t.Errorf("Expected status in error, got %v", err)
	}
}

func TestClient_createMatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" || r.URL.Path != "/api/matches" {
			t.Errorf("Expected POST /api/matches, got %s %s", r.Method, r.URL.Path)
		}

		var req service.CreateMatchRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Rows != 8 || req.Columns != 10 || req.Ships != 3 || req.Rules != "compact" || req.Seed != 11 {
			t.Errorf("Unexpected request: %+v", req)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(service.MatchInfo{ID: 17, Rows: 8, Columns: 10, Ships: 3, Rules: "compact"})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.handleCreateMatch(context.Background(), callRequest("create_match", map[string]interface{}{
		"rows":    float64(8),
		"columns": float64(10),
		"ships":   float64(3),
		"rules":   "compact",
		"seed":    float64(11),
	}))
	if err != nil {
		t.Fatalf("createMatch failed: %v", err)
	}

	text := resultText(t, result)
	if !strings.Contains(text, "Created match: 17") {
		t.Errorf("Expected match ID in result, got: %s", text)
	}
}

func TestArgSeed(t *testing.T) {
	tests := []struct {
		name    string
		seed    interface{}
		want    uint64
		wantErr bool
	}{
		{"absent", nil, 0, false},
		{"number", float64(11), 11, false},
		{"string beyond float precision", "18446744073709551615", 18446744073709551615, false},
		{"fraction", 1.5, 0, true},
		{"negative", float64(-1), 0, true},
		{"bad string", "abc", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := map[string]interface{}{}
			if tt.seed != nil {
				args["seed"] = tt.seed
			}
			got, err := argSeed(args)
			if (err != nil) != tt.wantErr {
				t.Fatalf("argSeed(%v) error = %v, wantErr %v", tt.seed, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("argSeed(%v) = %d, want %d", tt.seed, got, tt.want)
			}
		})
	}
}

func TestClient_createMatch_FractionalArgument(t *testing.T) {
	client := NewClient("http://localhost:8080")

	result, err := client.handleCreateMatch(context.Background(), callRequest("create_match", map[string]interface{}{
		"rows":    2.7,
		"columns": float64(10),
		"ships":   float64(3),
	}))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !result.IsError {
		t.Error("Expected tool error for a fractional row count")
	}
}

func TestClient_createMatch_MissingArgument(t *testing.T) {
	client := NewClient("http://localhost:8080")

	result, err := client.handleCreateMatch(context.Background(), callRequest("create_match", map[string]interface{}{
		"rows": float64(8),
	}))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !result.IsError {
		t.Error("Expected tool error for missing columns")
	}
}

func TestClient_probeCell(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/matches/2/probe" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		var body map[string]int
		json.NewDecoder(r.Body).Decode(&body)

		json.NewEncoder(w).Encode(service.ProbeResult{
			MatchID: 2,
			Row:     body["row"],
			Column:  body["column"],
			Result:  engine.NewlySunk,
			ShipID:  1,
			Code:    1,
			Message: "Ship 1 sunk",
			Stats:   engine.Stats{Probes: 3, Hits: 3, ShipsSunk: 1, ShipsRemaining: 1},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.handleProbeCell(context.Background(), callRequest("probe_cell", map[string]interface{}{
		"match_id": float64(2),
		"row":      float64(4),
		"column":   float64(0),
		"intent":   "finish the vertical ship",
	}))
	if err != nil {
		t.Fatalf("probeCell failed: %v", err)
	}

	text := resultText(t, result)
	for _, want := range []string{"Probe (4,0): NEWLY_SUNK (ship 1)", "Ship 1 sunk", "Ships sunk: 1, remaining: 1"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in result, got: %s", want, text)
		}
	}
}

func TestFormatBoard(t *testing.T) {
	board := &service.BoardView{
		MatchID:  3,
		Rows:     2,
		Columns:  3,
		Cells:    []string{"x~o", "#~~"},
		Revealed: true,
		Legend:   "~ unknown, o water, x hit, # sunk, S ship",
	}

	text := formatBoard(board)
	for _, want := range []string{"Match 3 board (2x3) [revealed]", "    012", "  0 x~o", "  1 #~~", "Legend:"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in board, got:\n%s", want, text)
		}
	}
}

func TestFormatStats_Finished(t *testing.T) {
	text := formatStats(engine.Stats{Probes: 4, Hits: 4, ShipsSunk: 2, Finished: true})
	if !strings.Contains(text, "FINISHED") {
		t.Errorf("Expected finished status, got: %s", text)
	}
}

func TestDescribeShip(t *testing.T) {
	got := describeShip(engine.ShipDescriptor{Row: 2, Column: 4, Orientation: engine.Vertical, Length: 3})
	want := "vertical, length 3, from (2,4) to (4,4)"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestClient_handleGameInstructions(t *testing.T) {
	client := NewClient("http://localhost:8080")

	result, err := client.handleGameInstructions(context.Background(), callRequest("game_instructions", map[string]interface{}{}))
	if err != nil {
		t.Fatalf("handleGameInstructions failed: %v", err)
	}

	text := resultText(t, result)
	expectedContent := []string{
		"Flota - Complete Instructions",
		"GAME OBJECTIVE:",
		"PROBE RESULTS:",
		"BOARD LEGEND",
		"HUNTING STRATEGY:",
		"VICTORY CONDITIONS:",
	}

	for _, content := range expectedContent {
		if !strings.Contains(text, content) {
			t.Errorf("Expected '%s' in instructions", content)
		}
	}
}

// TestClient_Integration drives the tools against the real API stack
func TestClient_Integration(t *testing.T) {
	rules, err := config.NewManager(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create rules manager: %v", err)
	}
	gameService := service.NewGameService(session.NewManager(), rules)
	server := httptest.NewServer(api.NewServer(gameService, nil))
	defer server.Close()

	client := NewClient(server.URL)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	result, err := client.handleCreateMatch(ctx, callRequest("create_match", map[string]interface{}{
		"rows": float64(6), "columns": float64(6), "ships": float64(2), "seed": float64(42),
	}))
	if err != nil || result.IsError {
		t.Fatalf("create_match failed: %v %s", err, resultText(t, result))
	}

	solution, err := gameService.GetSolution(ctx, 1)
	if err != nil {
		t.Fatalf("GetSolution: %v", err)
	}
	target := solution.Ships[0].Cells()[0]

	result, _ = client.handleProbeCell(ctx, callRequest("probe_cell", map[string]interface{}{
		"match_id": float64(1), "row": float64(target.Row), "column": float64(target.Column),
	}))
	text := resultText(t, result)
	if !strings.Contains(text, "HIT") && !strings.Contains(text, "NEWLY_SUNK") {
		t.Errorf("Expected a hit on a ship cell, got: %s", text)
	}

	result, _ = client.handleGetShip(ctx, callRequest("get_ship", map[string]interface{}{
		"match_id": float64(1), "ship_id": float64(0),
	}))
	if text := resultText(t, result); !strings.Contains(text, solution.Ships[0].String()) {
		t.Errorf("Expected ship record %s, got: %s", solution.Ships[0], text)
	}

	result, _ = client.handleGetBoard(ctx, callRequest("get_board", map[string]interface{}{"match_id": float64(1)}))
	if text := resultText(t, result); !strings.Contains(text, "Match 1 board (6x6)") {
		t.Errorf("Unexpected board: %s", text)
	}

	result, _ = client.handleDeleteMatch(ctx, callRequest("delete_match", map[string]interface{}{"match_id": float64(1)}))
	if result.IsError {
		t.Errorf("delete_match failed: %s", resultText(t, result))
	}

	result, _ = client.handleGetMatch(ctx, callRequest("get_match", map[string]interface{}{"match_id": float64(1)}))
	if !result.IsError {
		t.Error("Expected get_match to fail after delete")
	}
}
