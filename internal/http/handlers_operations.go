package http

import (
	"net/http"
	"time"

	"bilancio/internal/core"
	"bilancio/internal/store"
)

// operationRequest takes the amount as a decimal string ("12.34") so
// clients never deal in cents on the way in.
type operationRequest struct {
	UserID     int64  `json:"user_id"`
	CategoryID int64  `json:"category_id"`
	Type       string `json:"type"`
	Amount     string `json:"amount"`
	Note       string `json:"note,omitempty"`
	Date       string `json:"date"`
}

type operationResponse struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	CategoryID  int64     `json:"category_id"`
	Type        string    `json:"type"`
	AmountCents int64     `json:"amount_cents"`
	Note        string    `json:"note,omitempty"`
	Date        time.Time `json:"date"`
	CreatedAt   time.Time `json:"created_at"`
}

func toOperationResponse(op core.Operation) operationResponse {
	return operationResponse{
		ID:          op.ID,
		UserID:      op.UserID,
		CategoryID:  op.CategoryID,
		Type:        string(op.Type),
		AmountCents: op.Amount.Cents,
		Note:        op.Note,
		Date:        op.Date,
		CreatedAt:   op.CreatedAt,
	}
}

func (s *Server) handleCreateOperation(w http.ResponseWriter, r *http.Request) {
	var req operationRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	amount, err := core.ParseMoney(req.Amount)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	op, err := s.operations.Create(r.Context(), core.Operation{
		UserID:     req.UserID,
		CategoryID: req.CategoryID,
		Type:       core.OperationType(req.Type),
		Amount:     amount,
		Note:       req.Note,
		Date:       date,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.analytics.Invalidate()
	writeJSON(w, http.StatusCreated, toOperationResponse(op))
}

func (s *Server) handleListOperations(w http.ResponseWriter, r *http.Request) {
	f := store.OperationFilter{}

	userID, err := queryInt64(r, "user_id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	f.UserID = userID

	categoryID, err := queryInt64(r, "category_id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	f.CategoryID = categoryID

	if t := r.URL.Query().Get("type"); t != "" {
		opType := core.OperationType(t)
		if !opType.Valid() {
			s.writeError(w, r, core.ErrInvalidType)
			return
		}
		f.Type = opType
	}
	if from := r.URL.Query().Get("from"); from != "" {
		t, err := parseDate(from)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		f.From = t
	}
	if to := r.URL.Query().Get("to"); to != "" {
		t, err := parseDate(to)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		f.To = t
	}

	ops, err := s.operations.List(r.Context(), f)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]operationResponse, 0, len(ops))
	for _, op := range ops {
		out = append(out, toOperationResponse(op))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetOperation(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	op, err := s.operations.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOperationResponse(op))
}

func (s *Server) handleDeleteOperation(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.operations.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.analytics.Invalidate()
	w.WriteHeader(http.StatusNoContent)
}
