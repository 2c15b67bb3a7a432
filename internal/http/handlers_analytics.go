package http

import (
	"net/http"

	"bilancio/internal/core"
)

// handleAnalytics serves the dashboard aggregate. The period defaults to
// the current month; an unknown period key is rejected rather than
// silently widened.
func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	period := core.Period(r.URL.Query().Get("period"))
	if period == "" {
		period = core.PeriodCurrentMonth
	}
	if !period.Valid() {
		s.writeError(w, r, core.ErrUnknownPeriod)
		return
	}

	userID, err := queryInt64(r, "user_id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	a, err := s.analytics.Compute(r.Context(), period, userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleRates(w http.ResponseWriter, r *http.Request) {
	if s.rates == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "exchange rates not configured"})
		return
	}

	rates, err := s.rates.GetRates(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rates)
}
