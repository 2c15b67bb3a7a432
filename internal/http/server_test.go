package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bilancio/internal/log"
	"bilancio/internal/services"
	"bilancio/internal/store/memory"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	logger := log.New(log.Config{
		Component: log.ComponentHTTP,
		Handler:   slog.NewTextHandler(io.Discard, nil),
	})
	st := memory.New()

	srv := NewServer(":0", Deps{
		Users:      services.NewUserService(st),
		Categories: services.NewCategoryService(st, logger),
		Operations: services.NewOperationService(st, nil, logger),
		Limits:     services.NewLimitService(st),
		Goals:      services.NewGoalService(st, nil, logger),
		Analytics:  services.NewAnalyticsService(st, 8, 30*time.Second, logger),
		Logger:     logger,
	})

	ts := httptest.NewServer(srv.Server.Handler)
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, ts *httptest.Server, method, path string, body any) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, ts.URL+path, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, data
}

func createCategory(t *testing.T, ts *httptest.Server, name, catType string) int64 {
	t.Helper()
	resp, body := doJSON(t, ts, http.MethodPost, "/api/categories", map[string]string{
		"name": name, "type": catType,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create category status = %d: %s", resp.StatusCode, body)
	}
	var out struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("decode category: %v", err)
	}
	return out.ID
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)
	resp, _ := doJSON(t, ts, http.MethodGet, "/healthz", nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("healthz status = %d, want 200", resp.StatusCode)
	}
}

func TestUserLifecycle(t *testing.T) {
	ts := newTestServer(t)

	resp, body := doJSON(t, ts, http.MethodPost, "/api/users", map[string]string{"name": "Alice"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create user status = %d: %s", resp.StatusCode, body)
	}
	var u userResponse
	if err := json.Unmarshal(body, &u); err != nil {
		t.Fatalf("decode user: %v", err)
	}
	if u.ID == 0 || u.Name != "Alice" {
		t.Errorf("created user = %+v", u)
	}

	resp, body = doJSON(t, ts, http.MethodGet, fmt.Sprintf("/api/users/%d", u.ID), nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("get user status = %d: %s", resp.StatusCode, body)
	}

	resp, _ = doJSON(t, ts, http.MethodGet, "/api/users/999", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("missing user status = %d, want 404", resp.StatusCode)
	}

	resp, _ = doJSON(t, ts, http.MethodPost, "/api/users", map[string]string{"name": "  "})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("blank name status = %d, want 422", resp.StatusCode)
	}
}

func TestCategoryCreateAttachesLimit(t *testing.T) {
	ts := newTestServer(t)
	catID := createCategory(t, ts, "Groceries", "expense")

	resp, body := doJSON(t, ts, http.MethodGet, "/api/limits?active=true", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list limits status = %d: %s", resp.StatusCode, body)
	}
	var limits []limitResponse
	if err := json.Unmarshal(body, &limits); err != nil {
		t.Fatalf("decode limits: %v", err)
	}
	if len(limits) != 1 {
		t.Fatalf("limit count = %d, want 1", len(limits))
	}
	if limits[0].CategoryID != catID || !limits[0].AutoCreated {
		t.Errorf("limit = %+v", limits[0])
	}
	if limits[0].LimitCents != 1_000_000 {
		t.Errorf("limit cents = %d, want 1000000", limits[0].LimitCents)
	}
}

func TestOperationLifecycle(t *testing.T) {
	ts := newTestServer(t)
	catID := createCategory(t, ts, "Groceries", "expense")

	resp, body := doJSON(t, ts, http.MethodPost, "/api/operations", map[string]any{
		"user_id":     1,
		"category_id": catID,
		"type":        "expense",
		"amount":      "42.50",
		"date":        "2025-05-10",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create operation status = %d: %s", resp.StatusCode, body)
	}
	var op operationResponse
	if err := json.Unmarshal(body, &op); err != nil {
		t.Fatalf("decode operation: %v", err)
	}
	if op.AmountCents != 4250 {
		t.Errorf("amount cents = %d, want 4250", op.AmountCents)
	}

	// The limit's running total follows the write.
	_, body = doJSON(t, ts, http.MethodGet, "/api/limits?active=true", nil)
	var limits []limitResponse
	if err := json.Unmarshal(body, &limits); err != nil {
		t.Fatalf("decode limits: %v", err)
	}
	if limits[0].CurrentCents != 4250 {
		t.Errorf("limit current = %d, want 4250", limits[0].CurrentCents)
	}

	resp, _ = doJSON(t, ts, http.MethodDelete, fmt.Sprintf("/api/operations/%d", op.ID), nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete operation status = %d, want 204", resp.StatusCode)
	}

	_, body = doJSON(t, ts, http.MethodGet, "/api/limits?active=true", nil)
	if err := json.Unmarshal(body, &limits); err != nil {
		t.Fatalf("decode limits: %v", err)
	}
	if limits[0].CurrentCents != 0 {
		t.Errorf("limit current after delete = %d, want 0", limits[0].CurrentCents)
	}
}

func TestOperationValidationStatuses(t *testing.T) {
	ts := newTestServer(t)
	expenseID := createCategory(t, ts, "Groceries", "expense")
	incomeID := createCategory(t, ts, "Salary", "income")

	cases := []struct {
		name       string
		payload    map[string]any
		wantStatus int
	}{
		{
			"type mismatch",
			map[string]any{"user_id": 1, "category_id": incomeID, "type": "expense", "amount": "10.00", "date": "2025-05-10"},
			http.StatusUnprocessableEntity,
		},
		{
			"unknown category",
			map[string]any{"user_id": 1, "category_id": 9999, "type": "expense", "amount": "10.00", "date": "2025-05-10"},
			http.StatusNotFound,
		},
		{
			"zero amount",
			map[string]any{"user_id": 1, "category_id": expenseID, "type": "expense", "amount": "0", "date": "2025-05-10"},
			http.StatusUnprocessableEntity,
		},
		{
			"negative amount",
			map[string]any{"user_id": 1, "category_id": expenseID, "type": "expense", "amount": "-5.00", "date": "2025-05-10"},
			http.StatusUnprocessableEntity,
		},
		{
			"missing date",
			map[string]any{"user_id": 1, "category_id": expenseID, "type": "expense", "amount": "10.00"},
			http.StatusUnprocessableEntity,
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			resp, body := doJSON(t, ts, http.MethodPost, "/api/operations", c.payload)
			if resp.StatusCode != c.wantStatus {
				t.Errorf("status = %d, want %d: %s", resp.StatusCode, c.wantStatus, body)
			}
		})
	}
}

func TestCategoryDeleteConflict(t *testing.T) {
	ts := newTestServer(t)
	catID := createCategory(t, ts, "Groceries", "expense")

	resp, body := doJSON(t, ts, http.MethodPost, "/api/operations", map[string]any{
		"user_id": 1, "category_id": catID, "type": "expense", "amount": "10.00", "date": "2025-05-10",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create operation status = %d: %s", resp.StatusCode, body)
	}

	resp, _ = doJSON(t, ts, http.MethodDelete, fmt.Sprintf("/api/categories/%d", catID), nil)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("delete in-use category status = %d, want 409", resp.StatusCode)
	}
}

func TestGoalLifecycleAndFunding(t *testing.T) {
	ts := newTestServer(t)

	resp, body := doJSON(t, ts, http.MethodPost, "/api/goals", map[string]any{
		"title":         "Vacation",
		"target_amount": "1000.00",
		"deadline":      "2025-12-31",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create goal status = %d: %s", resp.StatusCode, body)
	}
	var g goalResponse
	if err := json.Unmarshal(body, &g); err != nil {
		t.Fatalf("decode goal: %v", err)
	}
	if g.Deadline == nil {
		t.Error("deadline should be set")
	}

	resp, body = doJSON(t, ts, http.MethodPost, fmt.Sprintf("/api/goals/%d/fund", g.ID), map[string]string{"amount": "1200.00"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("fund goal status = %d: %s", resp.StatusCode, body)
	}
	if err := json.Unmarshal(body, &g); err != nil {
		t.Fatalf("decode goal: %v", err)
	}
	if g.CurrentCents != 120_000 || !g.Completed {
		t.Errorf("funded goal = %+v", g)
	}

	resp, _ = doJSON(t, ts, http.MethodPost, fmt.Sprintf("/api/goals/%d/fund", g.ID), map[string]string{"amount": "0"})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("zero funding status = %d, want 422", resp.StatusCode)
	}

	resp, _ = doJSON(t, ts, http.MethodPost, "/api/goals/999/fund", map[string]string{"amount": "10.00"})
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("funding missing goal status = %d, want 404", resp.StatusCode)
	}
}

func TestAnalyticsEndpoint(t *testing.T) {
	ts := newTestServer(t)
	catID := createCategory(t, ts, "Groceries", "expense")

	today := time.Now().UTC().Format("2006-01-02")
	for _, amount := range []string{"100.00", "300.00"} {
		resp, body := doJSON(t, ts, http.MethodPost, "/api/operations", map[string]any{
			"user_id": 1, "category_id": catID, "type": "expense", "amount": amount, "date": today,
		})
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("create operation status = %d: %s", resp.StatusCode, body)
		}
	}

	resp, body := doJSON(t, ts, http.MethodGet, "/api/analytics?period=current_month", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("analytics status = %d: %s", resp.StatusCode, body)
	}
	var a struct {
		Summary struct {
			TotalExpense int64 `json:"total_expense_cents"`
			Operations   int   `json:"operations"`
		} `json:"summary"`
		Limits []struct {
			Spent    int64   `json:"spent_cents"`
			Progress float64 `json:"progress"`
		} `json:"limits"`
	}
	if err := json.Unmarshal(body, &a); err != nil {
		t.Fatalf("decode analytics: %v", err)
	}
	if a.Summary.TotalExpense != 40_000 {
		t.Errorf("total expense = %d, want 40000", a.Summary.TotalExpense)
	}
	if a.Summary.Operations != 2 {
		t.Errorf("operations = %d, want 2", a.Summary.Operations)
	}
	if len(a.Limits) != 1 || a.Limits[0].Spent != 40_000 {
		t.Errorf("limits = %+v", a.Limits)
	}

	resp, _ = doJSON(t, ts, http.MethodGet, "/api/analytics?period=fortnight", nil)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("unknown period status = %d, want 422", resp.StatusCode)
	}
}

func TestRatesUnconfigured(t *testing.T) {
	ts := newTestServer(t)
	resp, _ := doJSON(t, ts, http.MethodGet, "/api/rates", nil)
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("rates status = %d, want 503 without configuration", resp.StatusCode)
	}
}
