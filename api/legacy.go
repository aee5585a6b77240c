package api

import (
	"encoding/xml"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/wricardo/mcp-training/flota/game/engine"
	"github.com/wricardo/mcp-training/flota/game/service"
)

// LegacyPrefix is the root of the text/XML match resource
const LegacyPrefix = "/servicios/partidas"

func (s *Server) setupLegacyRoutes(r *mux.Router) {
	r.HandleFunc("/{filas}/{columnas}/{barcos}", s.handleLegacyCreate).Methods("POST")
	r.HandleFunc("/{id}", s.handleLegacyDelete).Methods("DELETE")
	r.HandleFunc("/{id}/casilla/{fila},{columna}", s.handleLegacyProbe).Methods("PUT")
	r.HandleFunc("/{id}/barco/{barco}", s.handleLegacyShip).Methods("GET")
	r.HandleFunc("/{id}/solucion", s.handleLegacySolution).Methods("GET")
}

func respondText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	fmt.Fprint(w, body)
}

func respondLegacyError(w http.ResponseWriter, err error) {
	respondText(w, statusForError(err), err.Error())
}

// baseURL reconstructs the externally visible scheme and host
func baseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if forwarded := r.Header.Get("X-Forwarded-Proto"); forwarded != "" {
		scheme = forwarded
	}
	return scheme + "://" + r.Host
}

func (s *Server) handleLegacyCreate(w http.ResponseWriter, r *http.Request) {
	var dims [3]int
	for i, name := range []string{"filas", "columnas", "barcos"} {
		n, err := pathInt(r, name)
		if err != nil {
			respondText(w, http.StatusBadRequest, err.Error())
			return
		}
		dims[i] = n
	}

	info, err := s.service.CreateMatch(r.Context(), service.CreateMatchRequest{
		Rows:    dims[0],
		Columns: dims[1],
		Ships:   dims[2],
	})
	if err != nil {
		respondLegacyError(w, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("%s%s/%d", baseURL(r), LegacyPrefix, info.ID))
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) handleLegacyDelete(w http.ResponseWriter, r *http.Request) {
	matchID, err := pathInt(r, "id")
	if err != nil {
		respondText(w, http.StatusNotFound, err.Error())
		return
	}

	if err := s.deleteMatch(r, matchID); err != nil {
		respondLegacyError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleLegacyProbe(w http.ResponseWriter, r *http.Request) {
	matchID, err := pathInt(r, "id")
	if err != nil {
		respondText(w, http.StatusNotFound, err.Error())
		return
	}
	row, err := pathInt(r, "fila")
	if err != nil {
		respondText(w, http.StatusBadRequest, err.Error())
		return
	}
	column, err := pathInt(r, "columna")
	if err != nil {
		respondText(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.probe(r, matchID, row, column)
	if err != nil {
		respondLegacyError(w, err)
		return
	}

	respondText(w, http.StatusOK, strconv.Itoa(result.Code))
}

func (s *Server) handleLegacyShip(w http.ResponseWriter, r *http.Request) {
	matchID, err := pathInt(r, "id")
	if err != nil {
		respondText(w, http.StatusNotFound, err.Error())
		return
	}
	shipID, err := pathInt(r, "barco")
	if err != nil {
		respondText(w, http.StatusNotFound, err.Error())
		return
	}

	ship, err := s.service.GetShip(r.Context(), matchID, shipID)
	if err != nil {
		respondLegacyError(w, err)
		return
	}

	respondText(w, http.StatusOK, ship.String())
}

func (s *Server) handleLegacySolution(w http.ResponseWriter, r *http.Request) {
	matchID, err := pathInt(r, "id")
	if err != nil {
		respondText(w, http.StatusNotFound, err.Error())
		return
	}

	solution, err := s.service.GetSolution(r.Context(), matchID)
	if err != nil {
		respondLegacyError(w, err)
		return
	}

	data, err := xml.Marshal(engine.NewSolutionDocument(solution.Ships))
	if err != nil {
		respondText(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
