package sheets

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/aquaexport/seatrace/internal/config"
	"github.com/aquaexport/seatrace/internal/domain/models"
)

const reportRange = "Reconciliation!A:G"

const timestampLayout = "2006-01-02 15:04:05"

// Exporter pushes reconciliation findings to a spreadsheet the compliance
// team watches. Optional at runtime; main wires it only when configured.
type Exporter interface {
	AppendReports(ctx context.Context, reports []models.MismatchReport) error
}

// GoogleSheetExporter implements Exporter using the official Google Sheets API.
type GoogleSheetExporter struct {
	service       *sheetsapi.Service
	spreadsheetID string
	logger        *zap.Logger
}

// NewGoogleSheetExporter builds a Google Sheets backed exporter instance.
func NewGoogleSheetExporter(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger) (Exporter, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	service, err := sheetsapi.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsPath), option.WithScopes(sheetsapi.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}

	return &GoogleSheetExporter{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		logger:        logger,
	}, nil
}

// AppendReports appends one row per mismatch finding to the report sheet.
func (e *GoogleSheetExporter) AppendReports(ctx context.Context, reports []models.MismatchReport) error {
	if len(reports) == 0 {
		return nil
	}

	values := make([][]interface{}, 0, len(reports))
	for _, report := range reports {
		values = append(values, []interface{}{
			report.DetectedAt.Format(timestampLayout),
			report.ShipmentID,
			report.ProductID,
			report.ProductCode,
			report.RequiredTotal,
			report.AllocatedTotal,
			report.Difference,
		})
	}

	payload := &sheetsapi.ValueRange{Values: values}

	call := e.service.Spreadsheets.Values.Append(e.spreadsheetID, reportRange, payload).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx)

	if _, err := call.Do(); err != nil {
		return fmt.Errorf("append reports into range %s: %w", reportRange, err)
	}

	e.logger.Debug("reports appended to sheet", zap.Int("rows", len(values)))
	return nil
}
