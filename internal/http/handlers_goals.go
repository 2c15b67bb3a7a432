package http

import (
	"net/http"
	"time"

	"bilancio/internal/core"
)

type goalRequest struct {
	Title        string `json:"title"`
	TargetAmount string `json:"target_amount"`
	Deadline     string `json:"deadline,omitempty"`
	Emoji        string `json:"emoji,omitempty"`
	Archived     bool   `json:"archived,omitempty"`
}

type goalResponse struct {
	ID           int64      `json:"id"`
	Title        string     `json:"title"`
	TargetCents  int64      `json:"target_cents"`
	CurrentCents int64      `json:"current_cents"`
	Deadline     *time.Time `json:"deadline,omitempty"`
	Emoji        string     `json:"emoji,omitempty"`
	Archived     bool       `json:"archived"`
	Completed    bool       `json:"completed"`
	CreatedAt    time.Time  `json:"created_at"`
}

type fundRequest struct {
	Amount string `json:"amount"`
}

func toGoalResponse(g core.Goal) goalResponse {
	resp := goalResponse{
		ID:           g.ID,
		Title:        g.Title,
		TargetCents:  g.TargetAmount.Cents,
		CurrentCents: g.CurrentAmount.Cents,
		Emoji:        g.Emoji,
		Archived:     g.Archived,
		Completed:    g.Completed(),
		CreatedAt:    g.CreatedAt,
	}
	if !g.Deadline.IsZero() {
		d := g.Deadline
		resp.Deadline = &d
	}
	return resp
}

func (s *Server) goalFromRequest(req goalRequest) (core.Goal, error) {
	target, err := core.ParseMoney(req.TargetAmount)
	if err != nil {
		return core.Goal{}, err
	}
	g := core.Goal{
		Title:        req.Title,
		TargetAmount: target,
		Emoji:        req.Emoji,
		Archived:     req.Archived,
	}
	if req.Deadline != "" {
		d, err := parseDate(req.Deadline)
		if err != nil {
			return core.Goal{}, err
		}
		g.Deadline = d
	}
	return g, nil
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	var req goalRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	g, err := s.goalFromRequest(req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	g, err = s.goals.Create(r.Context(), g)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.analytics.Invalidate()
	writeJSON(w, http.StatusCreated, toGoalResponse(g))
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	goals, err := s.goals.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]goalResponse, 0, len(goals))
	for _, g := range goals {
		out = append(out, toGoalResponse(g))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetGoal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	g, err := s.goals.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toGoalResponse(g))
}

func (s *Server) handleUpdateGoal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req goalRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	g, err := s.goalFromRequest(req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	g.ID = id

	g, err = s.goals.Update(r.Context(), g)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.analytics.Invalidate()
	writeJSON(w, http.StatusOK, toGoalResponse(g))
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.goals.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.analytics.Invalidate()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleFundGoal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req fundRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	amount, err := core.ParseMoney(req.Amount)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	g, err := s.goals.Fund(r.Context(), id, amount)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.analytics.Invalidate()
	writeJSON(w, http.StatusOK, toGoalResponse(g))
}
