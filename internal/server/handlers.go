package server

import (
	"encoding/json"
	"net/http"

	"github.com/finwire/pricefeed/internal/model"
)

// handleInstruments lists every instrument that has received a price.
func (s *Server) handleInstruments(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Instruments())
}

// handleCurrentPrice returns the latest price for one instrument, or
// 404 if the instrument has never been updated.
func (s *Server) handleCurrentPrice(w http.ResponseWriter, r *http.Request) {
	instrument := r.PathValue("instrument")

	price, ok := s.store.Get(instrument)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{
			"message": "instrument not found or no data available",
		})
		return
	}

	writeJSON(w, http.StatusOK, model.PriceQuote{
		Instrument: instrument,
		Price:      price,
	})
}

// handleHealth reports component status.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	if !s.feed.IsConnected() {
		status = "degraded"
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status": status,
		"components": map[string]any{
			"feed": map[string]bool{
				"connected": s.feed.IsConnected(),
			},
			"subscribers": s.registry.Count(),
			"instruments": s.store.Len(),
		},
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
