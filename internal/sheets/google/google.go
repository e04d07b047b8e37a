// Package google writes exports to a Google Sheets spreadsheet using a service account.
package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"finanze/internal/core"
	"finanze/internal/log"
	"finanze/internal/sheets"
)

// DefaultSheetName is used when no sheet name is configured.
const DefaultSheetName = "Transazioni"

var _ sheets.TransactionWriter = (*Client)(nil)

// Config selects the spreadsheet and the service account credentials.
// ServiceAccountJSON wins over ServiceAccountFile; when both are empty
// GOOGLE_APPLICATION_CREDENTIALS is consulted.
type Config struct {
	SpreadsheetID      string
	SheetName          string
	ServiceAccountJSON string
	ServiceAccountFile string
	// YearPrefix names the sheet "<year> <SheetName>".
	YearPrefix bool
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
	logger        *log.Logger
}

// New creates a Sheets client authenticated with service account credentials.
func New(ctx context.Context, cfg Config, logger *log.Logger) (*Client, error) {
	spreadsheetID := strings.TrimSpace(cfg.SpreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentSheets)

	credentialsJSON, err := readCredentials(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return newWithService(svc, spreadsheetID, sheetName(cfg, time.Now().Year()), logger), nil
}

func newWithService(svc *gsheet.Service, spreadsheetID, sheetName string, logger *log.Logger) *Client {
	return &Client{svc: svc, spreadsheetID: spreadsheetID, sheetName: sheetName, logger: logger}
}

func readCredentials(ctx context.Context, cfg Config, logger *log.Logger) ([]byte, error) {
	serviceAccountJSON := strings.TrimSpace(cfg.ServiceAccountJSON)
	serviceAccountFile := strings.TrimSpace(cfg.ServiceAccountFile)
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	switch {
	case serviceAccountJSON != "":
		logger.DebugContext(ctx, "Using inline JSON credentials")
		return []byte(serviceAccountJSON), nil
	case serviceAccountFile != "":
		logger.DebugContext(ctx, "Reading credentials from file", "path", serviceAccountFile)
		data, err := os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return data, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
}

// WriteTransactions clears columns A:D of the sheet and writes the export
// rows from A1. It returns the updated range.
func (c *Client) WriteTransactions(ctx context.Context, txns []core.Transaction) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}
	values, err := sheets.Values(txns)
	if err != nil {
		return "", err
	}
	ref, err := c.replace(ctx, values)
	if err != nil {
		return "", err
	}
	c.logger.InfoContext(ctx, "Exported transactions to sheet",
		log.FieldOperation, log.OpExport,
		log.FieldCount, len(txns),
		"range", ref)
	return ref, nil
}

// Clear empties columns A:D and writes back the header row.
func (c *Client) Clear(ctx context.Context) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}
	ref, err := c.replace(ctx, sheets.HeaderValues())
	if err != nil {
		return "", err
	}
	c.logger.InfoContext(ctx, "Cleared sheet", log.FieldOperation, log.OpExport, "range", ref)
	return ref, nil
}

func (c *Client) replace(ctx context.Context, values [][]any) (string, error) {
	clearRange := c.a1("A:D")
	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, clearRange, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return "", fmt.Errorf("clear %s: %w", clearRange, err)
	}

	writeRange := c.a1(fmt.Sprintf("A1:D%d", len(values)))
	resp, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, writeRange, &gsheet.ValueRange{Values: values}).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("update %s: %w", writeRange, err)
	}
	if resp.UpdatedRange == "" {
		return writeRange, nil
	}
	return resp.UpdatedRange, nil
}

// a1 builds an A1 range on the client's sheet, quoting the sheet name when needed.
func (c *Client) a1(cells string) string {
	return quoteSheetName(c.sheetName) + "!" + cells
}

func quoteSheetName(name string) string {
	if strings.ContainsAny(name, " '!") {
		return "'" + strings.ReplaceAll(name, "'", "''") + "'"
	}
	return name
}

func sheetName(cfg Config, year int) string {
	name := strings.TrimSpace(cfg.SheetName)
	if name == "" {
		name = DefaultSheetName
	}
	if cfg.YearPrefix {
		return yearPrefixedName(name, year)
	}
	return name
}

// yearPrefixedName returns "<year> <base>" unless base already starts with a 4-digit year.
func yearPrefixedName(base string, year int) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return base
	}
	if len(base) >= 5 {
		if y, err := strconv.Atoi(base[0:4]); err == nil && base[4] == ' ' && y > 1900 && y < 3000 {
			return base
		}
	}
	return fmt.Sprintf("%d %s", year, base)
}
