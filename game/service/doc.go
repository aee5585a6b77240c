// Package service provides the business logic layer for Flota.
//
// The service package implements:
//   - Multi-match management on top of the session registry
//   - Rule set resolution for new matches
//   - Probe processing and outcome reporting
//   - Ship and solution queries
//
// Core Interfaces:
//
// GameService is the facade used by every transport (REST, legacy text
// routes, WebSocket, MCP). SessionManager stores matches under integer
// identifiers. RulesManager loads the placement rules a match is built with.
//
// Architecture:
//
// The service layer sits between the transports and the game engine. It
// holds no lock of its own: the registry guards its map and each Match
// serializes probes, so different matches never contend.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	rulesMgr, _ := config.NewManager("configs")
//	gameService := service.NewGameService(sessionMgr, rulesMgr)
//
//	info, err := gameService.CreateMatch(ctx, service.CreateMatchRequest{Rows: 10, Columns: 10, Ships: 5})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := gameService.Probe(ctx, info.ID, 3, 4)
//
// Errors:
//
// Unknown matches wrap ErrMatchNotFound; engine errors (invalid coordinate,
// unknown ship, placement failure) are wrapped unchanged so callers can use
// errors.Is. IsNotFound folds both not-found kinds together.
package service
