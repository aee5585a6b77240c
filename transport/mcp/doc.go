// Package mcp exposes Flota matches to AI agents over the Model Context
// Protocol.
//
// The Client is a thin proxy: every tool call becomes one request against the
// JSON API served by package api, so MCP agents, the CLI and HTTP clients all
// see the same matches.
//
// MCP Tools:
//   - create_match: Create a match (rows, columns, ships, optional rules/seed)
//   - list_matches: List active matches
//   - get_match: Match summary and statistics
//   - delete_match: End a match
//   - probe_cell: Probe one cell
//   - get_ship: One ship as a row#column#orientation#length record
//   - get_solution: Every ship of a match
//   - get_board: Rendered board (optionally revealed)
//   - list_rules: Placement rule sets
//   - game_instructions: Rules and a hunting strategy
//
// Transport Modes:
//   - Stdio: server.ServeStdio(client.GetMCPServer())
//   - HTTP: POST /mcp handled by GetMCPServer().HandleMessage
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
package mcp
