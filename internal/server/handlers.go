package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"PortfolioTracker/internal/portfolio"
	"PortfolioTracker/internal/tracker"
)

const maxBodyBytes = 1 << 20

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":   "healthy",
		"version":  s.version,
		"service":  "portfolio-tracker",
		"holdings": len(s.session.Holdings()),
	})
}

func (s *Server) handleListHoldings(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.session.Holdings())
}

// addHoldingRequest accepts the quantity as a JSON number or as the raw form string.
type addHoldingRequest struct {
	Ticker   string          `json:"ticker"`
	Quantity json.RawMessage `json:"quantity"`
}

func (req addHoldingRequest) quantity() (float64, error) {
	var q float64
	if err := json.Unmarshal(req.Quantity, &q); err == nil {
		return q, nil
	}
	var str string
	if err := json.Unmarshal(req.Quantity, &str); err == nil {
		return tracker.ParseQuantity(str)
	}
	return 0, fmt.Errorf("%w: quantity is required", tracker.ErrValidation)
}

func (s *Server) handleAddHolding(w http.ResponseWriter, r *http.Request) {
	var req addHoldingRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	qty, err := req.quantity()
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	snap, err := s.session.AddHolding(r.Context(), req.Ticker, qty)
	switch {
	case errors.Is(err, tracker.ErrValidation):
		s.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, tracker.ErrFetch):
		s.writeError(w, http.StatusBadGateway, err.Error())
	case err != nil:
		s.log.Error().Err(err).Msg("add holding")
		s.writeError(w, http.StatusInternalServerError, "internal error")
	default:
		s.writeJSON(w, http.StatusCreated, snap)
	}
}

// handleAnalysis returns the latest snapshot; ?refresh=true or no prior run triggers a new pass.
func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	refresh, _ := strconv.ParseBool(r.URL.Query().Get("refresh"))
	snap := s.session.Latest()
	if snap == nil || refresh {
		snap = s.session.Analyze(r.Context())
	}
	s.writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="portfolio.json"`)
	if err := s.session.Export(w); err != nil {
		s.log.Error().Err(err).Msg("export portfolio")
	}
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	err := s.session.Import(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		s.writeError(w, http.StatusRequestEntityTooLarge, "portfolio file too large")
	case errors.Is(err, portfolio.ErrFormat):
		s.writeError(w, http.StatusBadRequest, err.Error())
	case err != nil:
		s.log.Error().Err(err).Msg("import portfolio")
		s.writeError(w, http.StatusInternalServerError, "internal error")
	default:
		s.writeJSON(w, http.StatusOK, s.session.Holdings())
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("failed to encode JSON response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
