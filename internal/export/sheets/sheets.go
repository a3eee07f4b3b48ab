// Package sheets exports recorded transactions as rows of a Google Sheet.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"gofinances/internal/core"
	applog "gofinances/internal/log"
)

// rowAppender is the slice of the Sheets API the exporter needs.
type rowAppender interface {
	AppendRow(ctx context.Context, spreadsheetID, rng string, row []any) (updatedRange string, err error)
}

type Exporter struct {
	api           rowAppender
	spreadsheetID string
	sheetName     string
	logger        *applog.Logger
}

// New builds an Exporter backed by the Google Sheets API using
// service-account credentials from the environment.
func New(ctx context.Context, spreadsheetID, sheetName string, logger *applog.Logger) (*Exporter, error) {
	if strings.TrimSpace(spreadsheetID) == "" {
		return nil, errors.New("spreadsheet id is required")
	}
	svc, err := newSheetsService(ctx, logger)
	if err != nil {
		return nil, err
	}
	return newExporter(googleAppender{svc: svc}, spreadsheetID, sheetName, logger), nil
}

func newExporter(api rowAppender, spreadsheetID, sheetName string, logger *applog.Logger) *Exporter {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &Exporter{
		api:           api,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
		logger:        logger.WithComponent(applog.ComponentExport),
	}
}

// Row renders tx as [date, name, type, category, amount].
func Row(tx core.Transaction) []any {
	return []any{
		tx.Date.Format("2006-01-02"),
		tx.Name,
		string(tx.Type),
		tx.Category,
		tx.Amount.String(),
	}
}

// Export appends tx to the configured sheet and returns the written range.
func (e *Exporter) Export(ctx context.Context, tx core.Transaction) (string, error) {
	if err := tx.Validate(); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}
	rng := fmt.Sprintf("%s!A:E", e.sheetName)
	ref, err := e.api.AppendRow(ctx, e.spreadsheetID, rng, Row(tx))
	if err != nil {
		return "", fmt.Errorf("append row to %s: %w", e.sheetName, err)
	}
	e.logger.InfoContext(ctx, "Exported transaction",
		applog.FieldTransactionID, tx.ID,
		applog.FieldOperation, applog.OpExport,
		"range", ref)
	return ref, nil
}

type googleAppender struct {
	svc *gsheet.Service
}

func (g googleAppender) AppendRow(ctx context.Context, spreadsheetID, rng string, row []any) (string, error) {
	vr := &gsheet.ValueRange{Values: [][]any{row}}
	resp, err := g.svc.Spreadsheets.Values.Append(spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", err
	}
	if resp.Updates == nil {
		return rng, nil
	}
	return resp.Updates.UpdatedRange, nil
}

// newSheetsService reads credentials from GOOGLE_SERVICE_ACCOUNT_JSON,
// GOOGLE_SERVICE_ACCOUNT_FILE or GOOGLE_APPLICATION_CREDENTIALS.
func newSheetsService(ctx context.Context, logger *applog.Logger) (*gsheet.Service, error) {
	credentialsJSON, err := loadCredentials()
	if err != nil {
		return nil, err
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	if logger != nil {
		logger.InfoContext(ctx, "Google Sheets service created", "credentials_size", len(credentialsJSON))
	}
	return service, nil
}

func loadCredentials() ([]byte, error) {
	if inline := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON")); inline != "" {
		return []byte(inline), nil
	}
	path := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if path == "" {
		path = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	if path == "" {
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read service account file: %w", err)
	}
	return data, nil
}
