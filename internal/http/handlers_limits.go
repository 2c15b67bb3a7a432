package http

import (
	"net/http"
	"time"

	"bilancio/internal/core"
)

type limitResponse struct {
	ID           int64     `json:"id"`
	CategoryID   int64     `json:"category_id"`
	LimitCents   int64     `json:"limit_cents"`
	CurrentCents int64     `json:"current_cents"`
	Active       bool      `json:"active"`
	AutoCreated  bool      `json:"auto_created"`
	CreatedAt    time.Time `json:"created_at"`
}

type limitUpdateRequest struct {
	Amount string `json:"amount"`
	Active bool   `json:"active"`
}

func toLimitResponse(l core.Limit) limitResponse {
	return limitResponse{
		ID:           l.ID,
		CategoryID:   l.CategoryID,
		LimitCents:   l.LimitAmount.Cents,
		CurrentCents: l.CurrentAmount.Cents,
		Active:       l.Active,
		AutoCreated:  l.AutoCreated,
		CreatedAt:    l.CreatedAt,
	}
}

func (s *Server) handleListLimits(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"
	limits, err := s.limits.List(r.Context(), activeOnly)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]limitResponse, 0, len(limits))
	for _, l := range limits {
		out = append(out, toLimitResponse(l))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetLimit(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	l, err := s.limits.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toLimitResponse(l))
}

func (s *Server) handleUpdateLimit(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req limitUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	amount, err := core.ParseMoney(req.Amount)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	l, err := s.limits.Update(r.Context(), id, amount, req.Active)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.analytics.Invalidate()
	writeJSON(w, http.StatusOK, toLimitResponse(l))
}
