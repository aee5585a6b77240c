package api

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/wricardo/mcp-training/flota/game/config"
	"github.com/wricardo/mcp-training/flota/game/engine"
	"github.com/wricardo/mcp-training/flota/game/service"
	"github.com/wricardo/mcp-training/flota/transport/websocket"
)

// RequestIDHeader carries the per-request identifier
const RequestIDHeader = "X-Request-ID"

// Server represents the REST API server
type Server struct {
	service service.GameService
	hub     *websocket.Hub
	router  *mux.Router
}

// NewServer creates a new API server. hub may be nil.
func NewServer(gameService service.GameService, hub *websocket.Hub) *Server {
	s := &Server{
		service: gameService,
		hub:     hub,
		router:  mux.NewRouter(),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	s.router.Use(requestIDMiddleware)

	api := s.router.PathPrefix("/api").Subrouter()

	// Match management
	api.HandleFunc("/matches", s.handleCreateMatch).Methods("POST")
	api.HandleFunc("/matches", s.handleListMatches).Methods("GET")
	api.HandleFunc("/matches/{id}", s.handleGetMatch).Methods("GET")
	api.HandleFunc("/matches/{id}", s.handleDeleteMatch).Methods("DELETE")

	// Game operations
	api.HandleFunc("/matches/{id}/probe", s.handleProbe).Methods("POST")
	api.HandleFunc("/matches/{id}/ships/{ship}", s.handleGetShip).Methods("GET")
	api.HandleFunc("/matches/{id}/solution", s.handleGetSolution).Methods("GET")
	api.HandleFunc("/matches/{id}/board", s.handleGetBoard).Methods("GET")

	// Rules
	api.HandleFunc("/rules", s.handleListRules).Methods("GET")
	api.HandleFunc("/rules/{name}", s.handleGetRules).Methods("GET")

	// Wire-compatible resource for legacy clients
	s.setupLegacyRoutes(s.router.PathPrefix(LegacyPrefix).Subrouter())

	// WebSocket
	s.router.HandleFunc("/ws", s.handleWebSocket)

	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]interface{}{"error": message, "code": status})
}

// statusForError maps domain errors onto HTTP status codes
func statusForError(err error) int {
	switch {
	case service.IsNotFound(err), errors.Is(err, config.ErrRulesNotFound):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrInvalidCoordinate), errors.Is(err, engine.ErrInvalidDimensions):
		return http.StatusBadRequest
	case errors.Is(err, engine.ErrPlacementFailed):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func pathInt(r *http.Request, name string) (int, error) {
	value := mux.Vars(r)[name]
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, value)
	}
	return n, nil
}

// Match Handlers

func (s *Server) handleCreateMatch(w http.ResponseWriter, r *http.Request) {
	var req service.CreateMatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	info, err := s.service.CreateMatch(r.Context(), req)
	if err != nil {
		respondError(w, statusForError(err), err.Error())
		return
	}

	log.Printf("[CREATE] match=%d %dx%d ships=%d rules=%s", info.ID, info.Rows, info.Columns, info.Ships, info.Rules)

	w.Header().Set("Location", fmt.Sprintf("/api/matches/%d", info.ID))
	respondJSON(w, http.StatusCreated, info)
}

func (s *Server) handleListMatches(w http.ResponseWriter, r *http.Request) {
	matches, err := s.service.ListMatches(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	query := r.URL.Query()
	sortBy := query.Get("sort")    // "id" (default), "created", "accessed"
	order := query.Get("order")    // "asc" (default), "desc"
	limitStr := query.Get("limit") // number of matches to return

	if sortBy == "" {
		sortBy = "id"
	}
	if order == "" {
		order = "asc"
	}

	sort.SliceStable(matches, func(i, j int) bool {
		var less bool
		switch sortBy {
		case "created":
			less = matches[i].CreatedAt.Before(matches[j].CreatedAt)
		case "accessed":
			less = matches[i].LastAccessedAt.Before(matches[j].LastAccessedAt)
		default:
			less = matches[i].ID < matches[j].ID
		}
		if order == "desc" {
			return !less
		}
		return less
	})

	total := len(matches)
	if limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l < len(matches) {
			matches = matches[:l]
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(matches),
		"total":   total,
		"matches": matches,
		"sort":    sortBy,
		"order":   order,
	})
}

func (s *Server) handleGetMatch(w http.ResponseWriter, r *http.Request) {
	matchID, err := pathInt(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	info, err := s.service.GetMatch(r.Context(), matchID)
	if err != nil {
		respondError(w, statusForError(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, info)
}

func (s *Server) handleDeleteMatch(w http.ResponseWriter, r *http.Request) {
	matchID, err := pathInt(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.deleteMatch(r, matchID); err != nil {
		respondError(w, statusForError(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Match %d deleted", matchID),
	})
}

// Game Operation Handlers

func (s *Server) handleProbe(w http.ResponseWriter, r *http.Request) {
	matchID, err := pathInt(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req struct {
		Row    *int `json:"row"`
		Column *int `json:"column"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Row == nil || req.Column == nil {
		respondError(w, http.StatusBadRequest, "row and column are required")
		return
	}

	result, err := s.probe(r, matchID, *req.Row, *req.Column)
	if err != nil {
		respondError(w, statusForError(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleGetShip(w http.ResponseWriter, r *http.Request) {
	matchID, err := pathInt(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	shipID, err := pathInt(r, "ship")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	ship, err := s.service.GetShip(r.Context(), matchID, shipID)
	if err != nil {
		respondError(w, statusForError(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"match_id": matchID,
		"ship_id":  shipID,
		"ship":     ship,
		"record":   ship.String(),
	})
}

func (s *Server) handleGetSolution(w http.ResponseWriter, r *http.Request) {
	matchID, err := pathInt(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	solution, err := s.service.GetSolution(r.Context(), matchID)
	if err != nil {
		respondError(w, statusForError(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, solution)
}

func (s *Server) handleGetBoard(w http.ResponseWriter, r *http.Request) {
	matchID, err := pathInt(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	reveal, _ := strconv.ParseBool(r.URL.Query().Get("reveal"))
	board, err := s.service.GetBoard(r.Context(), matchID, reveal)
	if err != nil {
		respondError(w, statusForError(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, board)
}

// Rules Handlers

func (s *Server) handleListRules(w http.ResponseWriter, r *http.Request) {
	rules, err := s.service.ListRules(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, rules)
}

func (s *Server) handleGetRules(w http.ResponseWriter, r *http.Request) {
	rules, err := s.service.GetRules(r.Context(), mux.Vars(r)["name"])
	if err != nil {
		respondError(w, statusForError(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, rules)
}

// probe runs a probe, notifies subscribers and logs a one-line record.
// Shared by the JSON and legacy routes.
func (s *Server) probe(r *http.Request, matchID, row, column int) (*service.ProbeResult, error) {
	result, err := s.service.Probe(r.Context(), matchID, row, column)
	if err != nil {
		log.Printf("[PROBE] match=%d (%d,%d) error=%v request_id=%s", matchID, row, column, err, requestID(r))
		return nil, err
	}

	if s.hub != nil {
		s.hub.BroadcastEvent(matchID, websocket.EventProbe, result)
	}

	log.Printf("[PROBE] match=%d (%d,%d) result=%s ship=%d sunk=%d/%d request_id=%s",
		matchID, row, column, result.Result, result.ShipID,
		result.Stats.ShipsSunk, result.Stats.ShipsSunk+result.Stats.ShipsRemaining, requestID(r))

	return result, nil
}

// deleteMatch removes a match and notifies subscribers
func (s *Server) deleteMatch(r *http.Request, matchID int) error {
	if err := s.service.DeleteMatch(r.Context(), matchID); err != nil {
		return err
	}
	if s.hub != nil {
		s.hub.BroadcastEvent(matchID, websocket.EventMatchDeleted, nil)
	}
	log.Printf("[DELETE] match=%d request_id=%s", matchID, requestID(r))
	return nil
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		http.Error(w, "WebSocket notifications disabled", http.StatusServiceUnavailable)
		return
	}

	matchID, err := strconv.Atoi(r.URL.Query().Get("match"))
	if err != nil {
		http.Error(w, "match parameter required", http.StatusBadRequest)
		return
	}

	if _, err := s.service.GetMatch(r.Context(), matchID); err != nil {
		http.Error(w, "Invalid match", http.StatusNotFound)
		return
	}

	s.hub.ServeWS(w, r, matchID)
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

// Request tracing

type requestIDKey struct{}

// statusRecorder captures the response status for the access log
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

// Hijack lets the WebSocket upgrade take over the connection
func (rec *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := rec.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	rec.status = http.StatusSwitchingProtocols
	return hijacker.Hijack()
}

// requestIDMiddleware tags each request with an X-Request-ID, reusing the
// caller's value when present, and logs one access line per request
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		r = r.WithContext(withRequestID(r.Context(), id))

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		log.Printf("%s %s %d %s request_id=%s", r.Method, r.URL.Path, rec.status, time.Since(start).Round(time.Microsecond), id)
	})
}
