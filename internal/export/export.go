// Package export defines the spreadsheet side-channel that mirrors
// person-linked transactions into an external sheet. Sync calls are
// best-effort: callers fire them off the critical path and only log
// failures.
package export

import (
	"context"
	"time"
)

// Action tells the syncer whether a row should be written or removed.
type Action string

const (
	ActionCreate Action = "create"
	ActionDelete Action = "delete"
)

// Payload is the flat row shape pushed to the sheet for one transaction.
type Payload struct {
	TransactionID        string    `json:"id"`
	OccurredAt           time.Time `json:"occurred_at"`
	Note                 string    `json:"note"`
	Tag                  string    `json:"tag"`
	ShopName             string    `json:"shop_name,omitempty"`
	Amount               int64     `json:"amount"`
	OriginalAmount       *int64    `json:"original_amount,omitempty"`
	CashbackSharePercent float64   `json:"cashback_share_percent,omitempty"`
	CashbackShareFixed   int64     `json:"cashback_share_fixed,omitempty"`
}

// Syncer pushes one transaction row to the external sheet of the given
// person. Implementations must be safe for concurrent use.
type Syncer interface {
	SyncTransaction(ctx context.Context, personID string, payload Payload, action Action) error
}
