// Package export pushes analytics snapshots to a Google Sheets dashboard.
// Each export appends one row per period so the sheet accumulates a
// history of household totals.
package export

import (
	"context"
	"errors"
	"fmt"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"bilancio/internal/core"
	"bilancio/internal/log"
)

// Config selects the target spreadsheet and the credentials to reach it.
// Exactly one of CredentialsFile or CredentialsJSON must be set.
type Config struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsFile string
	CredentialsJSON string
}

// SheetsExporter appends analytics rows to one sheet of a spreadsheet.
type SheetsExporter struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
	logger        *log.Logger
}

func NewSheetsExporter(ctx context.Context, cfg Config, logger *log.Logger) (*SheetsExporter, error) {
	if cfg.SpreadsheetID == "" {
		return nil, errors.New("missing spreadsheet ID")
	}
	if cfg.SheetName == "" {
		return nil, errors.New("missing sheet name")
	}

	var opts []goption.ClientOption
	switch {
	case cfg.CredentialsJSON != "":
		opts = append(opts, goption.WithCredentialsJSON([]byte(cfg.CredentialsJSON)))
	case cfg.CredentialsFile != "":
		opts = append(opts, goption.WithCredentialsFile(cfg.CredentialsFile))
	default:
		return nil, errors.New("missing sheets credentials")
	}
	opts = append(opts, goption.WithScopes(gsheet.SpreadsheetsScope))

	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &SheetsExporter{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		sheetName:     cfg.SheetName,
		logger:        logger.WithComponent(log.ComponentExport),
	}, nil
}

// ExportSummary appends one row with the analytics headline numbers.
func (e *SheetsExporter) ExportSummary(ctx context.Context, a core.Analytics) error {
	row := summaryRow(a, time.Now().UTC())

	rng := fmt.Sprintf("%s!A:H", e.sheetName)
	vr := &gsheet.ValueRange{Values: [][]any{row}}
	_, err := e.svc.Spreadsheets.Values.Append(e.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append summary row: %w", err)
	}

	e.logger.InfoContext(ctx, "exported analytics summary",
		log.FieldPeriod, string(a.Period), "sheet", e.sheetName)
	return nil
}

// summaryRow flattens the analytics headline into one spreadsheet row:
// export time, period, totals in whole currency units, operation count,
// goal completion rate, and how many limits are over.
func summaryRow(a core.Analytics, exportedAt time.Time) []any {
	overLimits := 0
	for _, lp := range a.Limits {
		if lp.OverLimit {
			overLimits++
		}
	}
	return []any{
		exportedAt.Format(time.RFC3339),
		string(a.Period),
		a.Summary.TotalIncome.String(),
		a.Summary.TotalExpense.String(),
		a.Summary.Balance.String(),
		a.Summary.Operations,
		fmt.Sprintf("%.1f", a.Goals.CompletionRate),
		overLimits,
	}
}
