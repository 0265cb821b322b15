package export

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// sheetTab is the tab all transaction rows land on. One row per synced
// transaction, keyed by person id and transaction id.
const sheetTab = "Transactions"

// SheetsSyncer mirrors transaction rows into a Google Sheets spreadsheet.
type SheetsSyncer struct {
	svc           *sheets.Service
	spreadsheetID string
}

// NewSheetsSyncer builds a syncer for the given spreadsheet. An empty
// credentials file falls back to application default credentials.
func NewSheetsSyncer(ctx context.Context, spreadsheetID, credentialsFile string) (*SheetsSyncer, error) {
	opts := []option.ClientOption{option.WithScopes(sheets.SpreadsheetsScope)}
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets client: %w", err)
	}

	return &SheetsSyncer{svc: svc, spreadsheetID: spreadsheetID}, nil
}

// SyncTransaction appends a row on create and blanks the matching row on
// delete. Rows are matched by transaction id, so create after delete simply
// appends a fresh row.
func (s *SheetsSyncer) SyncTransaction(ctx context.Context, personID string, payload Payload, action Action) error {
	switch action {
	case ActionCreate:
		return s.appendRow(ctx, personID, payload)
	case ActionDelete:
		return s.clearRow(ctx, payload.TransactionID)
	}
	return fmt.Errorf("unknown export action %q", action)
}

func (s *SheetsSyncer) appendRow(ctx context.Context, personID string, payload Payload) error {
	var original interface{}
	if payload.OriginalAmount != nil {
		original = *payload.OriginalAmount
	}

	row := []interface{}{
		personID,
		payload.TransactionID,
		payload.OccurredAt.Format("2006-01-02"),
		payload.Note,
		payload.Tag,
		payload.ShopName,
		payload.Amount,
		original,
		payload.CashbackSharePercent,
		payload.CashbackShareFixed,
	}

	_, err := s.svc.Spreadsheets.Values.
		Append(s.spreadsheetID, sheetTab+"!A:J", &sheets.ValueRange{Values: [][]interface{}{row}}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to append export row: %w", err)
	}
	return nil
}

func (s *SheetsSyncer) clearRow(ctx context.Context, transactionID string) error {
	resp, err := s.svc.Spreadsheets.Values.
		Get(s.spreadsheetID, sheetTab+"!B:B").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to read export rows: %w", err)
	}

	for i, row := range resp.Values {
		if len(row) == 0 {
			continue
		}
		if id, ok := row[0].(string); ok && id == transactionID {
			rowRange := fmt.Sprintf("%s!A%d:J%d", sheetTab, i+1, i+1)
			_, err := s.svc.Spreadsheets.Values.
				Clear(s.spreadsheetID, rowRange, &sheets.ClearValuesRequest{}).
				Context(ctx).
				Do()
			if err != nil {
				return fmt.Errorf("failed to clear export row: %w", err)
			}
			return nil
		}
	}

	// Nothing to clear; the row was never synced or is already gone.
	return nil
}
