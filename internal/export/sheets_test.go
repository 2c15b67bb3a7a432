package export

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"bilancio/internal/core"
	"bilancio/internal/log"
)

func testLogger() *log.Logger {
	return log.New(log.Config{
		Component: log.ComponentExport,
		Handler:   slog.NewTextHandler(io.Discard, nil),
	})
}

func TestNewSheetsExporterValidation(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name string
		cfg  Config
	}{
		{"missing spreadsheet ID", Config{SheetName: "Analytics", CredentialsJSON: "{}"}},
		{"missing sheet name", Config{SpreadsheetID: "abc", CredentialsJSON: "{}"}},
		{"missing credentials", Config{SpreadsheetID: "abc", SheetName: "Analytics"}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := NewSheetsExporter(ctx, c.cfg, testLogger()); err == nil {
				t.Error("NewSheetsExporter() should reject incomplete config")
			}
		})
	}
}

func TestSummaryRow(t *testing.T) {
	a := core.Analytics{
		Period: core.PeriodCurrentMonth,
		Summary: core.Summary{
			TotalIncome:  core.Money{Cents: 1000_00},
			TotalExpense: core.Money{Cents: 400_50},
			Balance:      core.Money{Cents: 599_50},
			Operations:   3,
		},
		Goals: core.GoalStats{CompletionRate: 50},
		Limits: []core.LimitProgress{
			{OverLimit: true},
			{OverLimit: false},
		},
	}
	exportedAt := time.Date(2025, 5, 15, 8, 0, 0, 0, time.UTC)

	row := summaryRow(a, exportedAt)
	if len(row) != 8 {
		t.Fatalf("row length = %d, want 8", len(row))
	}
	if row[0] != "2025-05-15T08:00:00Z" {
		t.Errorf("timestamp = %v", row[0])
	}
	if row[1] != "current_month" {
		t.Errorf("period = %v", row[1])
	}
	if row[2] != "1000.00" || row[3] != "400.50" || row[4] != "599.50" {
		t.Errorf("money columns = %v %v %v", row[2], row[3], row[4])
	}
	if row[5] != 3 {
		t.Errorf("operations = %v, want 3", row[5])
	}
	if row[6] != "50.0" {
		t.Errorf("completion rate = %v, want 50.0", row[6])
	}
	if row[7] != 1 {
		t.Errorf("over-limit count = %v, want 1", row[7])
	}
}
