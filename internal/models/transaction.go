package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// TransactionType represents the type of transaction
type TransactionType string

const (
	TransactionTypeExpense   TransactionType = "expense"
	TransactionTypeIncome    TransactionType = "income"
	TransactionTypeDebt      TransactionType = "debt"
	TransactionTypeTransfer  TransactionType = "transfer"
	TransactionTypeRepayment TransactionType = "repayment"
)

// TransactionStatus represents the lifecycle status of a transaction.
// "pending" is only reachable for a refund request reopened by voiding
// its confirmation.
type TransactionStatus string

const (
	TransactionStatusPosted  TransactionStatus = "posted"
	TransactionStatusVoid    TransactionStatus = "void"
	TransactionStatusPending TransactionStatus = "pending"
)

// RefundStatus is the closed set of refund-chain states a transaction can
// carry. The zero value means the transaction is not part of a refund chain
// or is the untouched original.
type RefundStatus string

const (
	RefundStatusNone          RefundStatus = ""
	RefundStatusRequested     RefundStatus = "requested"
	RefundStatusConfirmed     RefundStatus = "confirmed"
	RefundStatusWaitingRefund RefundStatus = "waiting_refund"
)

// RefundLink holds the cross-references that tie the three hops of a refund
// chain together: the original transaction, the refund request parked on the
// pending account, and the confirmation that posts the money back in.
//
// These columns are the sole source of truth for chain topology. There is no
// foreign key enforcing them, so every mutation that touches one end of the
// chain must update the other end inside the same database transaction.
type RefundLink struct {
	RefundStatus                 RefundStatus `gorm:"size:16;default:''" json:"refund_status,omitempty"`
	LinkedTransactionID          *string      `gorm:"type:uuid;index" json:"linked_transaction_id,omitempty"`
	PendingRefundID              *string      `gorm:"type:uuid;index" json:"pending_refund_id,omitempty"`
	RefundRequestID              *string      `gorm:"type:uuid" json:"refund_request_id,omitempty"`
	RefundConfirmedTransactionID *string      `gorm:"type:uuid" json:"refund_confirmed_transaction_id,omitempty"`
	RefundAmount                 *int64       `json:"refund_amount,omitempty"`
	RefundedAmount               *int64       `json:"refunded_amount,omitempty"`
	HasRefundRequest             bool         `gorm:"default:false" json:"has_refund_request,omitempty"`
	PartialRefund                bool         `gorm:"default:false" json:"partial_refund,omitempty"`
	RefundRequestedAt            *time.Time   `json:"refund_requested_at,omitempty"`
	RefundConfirmedAt            *time.Time   `json:"refund_confirmed_at,omitempty"`
	OriginalCategoryID           *string      `gorm:"type:uuid" json:"original_category_id,omitempty"`
	OriginalCategoryName         string       `json:"original_category_name,omitempty"`
}

// IsRefundConfirmation reports whether this transaction is the third hop of
// a refund chain (the income posted when a refund is confirmed).
func (r *RefundLink) IsRefundConfirmation() bool {
	return r.PendingRefundID != nil
}

// IsRefundRequest reports whether this transaction is the second hop of a
// refund chain (the request parked on the sentinel pending account).
func (r *RefundLink) IsRefundRequest() bool {
	return r.LinkedTransactionID != nil && r.PendingRefundID == nil
}

// Validate checks the refund link against its closed state set. It runs at
// the store boundary so malformed chain state is rejected before it is
// persisted.
func (r *RefundLink) Validate() error {
	switch r.RefundStatus {
	case RefundStatusNone, RefundStatusRequested, RefundStatusConfirmed, RefundStatusWaitingRefund:
	default:
		return fmt.Errorf("unknown refund status %q", r.RefundStatus)
	}
	if r.PendingRefundID != nil && r.LinkedTransactionID == nil {
		return fmt.Errorf("refund confirmation is missing its linked transaction reference")
	}
	if r.RefundAmount != nil && *r.RefundAmount < 0 {
		return fmt.Errorf("refund amount must not be negative")
	}
	if r.RefundedAmount != nil && *r.RefundedAmount < 0 {
		return fmt.Errorf("refunded amount must not be negative")
	}
	return nil
}

// Transaction represents a single user-facing monetary event. Amount is the
// net value settled on AccountID after any cashback deduction;
// OriginalAmount keeps the pre-cashback value so edits and restores never
// have to reverse the cashback math.
type Transaction struct {
	Base
	UserID     string            `gorm:"type:uuid;not null;index" json:"user_id"`
	Type       TransactionType   `gorm:"size:16;not null" json:"type"`
	Status     TransactionStatus `gorm:"size:16;not null;default:'posted'" json:"status"`
	OccurredAt time.Time         `gorm:"not null;index" json:"occurred_at"`

	Amount         int64 `gorm:"type:bigint;not null" json:"amount"`
	OriginalAmount int64 `gorm:"type:bigint;not null" json:"original_amount"`

	AccountID       string  `gorm:"type:uuid;not null;index" json:"account_id"`
	TargetAccountID *string `gorm:"type:uuid" json:"target_account_id,omitempty"`
	CategoryID      *string `gorm:"type:uuid" json:"category_id,omitempty"`
	ShopID          *string `gorm:"type:uuid" json:"shop_id,omitempty"`
	PersonID        *string `gorm:"type:uuid;index" json:"person_id,omitempty"`

	// Cashback terms agreed at creation time, for debt/transfer types.
	// SharePercent is stored as a ratio in [0,1].
	CashbackSharePercent float64 `gorm:"default:0" json:"cashback_share_percent"`
	CashbackShareFixed   int64   `gorm:"type:bigint;default:0" json:"cashback_share_fixed"`

	Tag string `gorm:"size:120" json:"tag"`
	// CycleTag is resolved from the account's billing configuration once at
	// write time and then frozen. It must never be recomputed on read: the
	// account's statement day may change later and historical transactions
	// keep the cycle they were written under.
	CycleTag string `gorm:"size:10;index" json:"cycle_tag,omitempty"`
	Note     string `gorm:"size:500" json:"note"`

	RefundLink `gorm:"embedded"`

	// Relationships
	Account       Account   `gorm:"foreignKey:AccountID" json:"account,omitempty"`
	TargetAccount *Account  `gorm:"foreignKey:TargetAccountID" json:"target_account,omitempty"`
	Category      *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Shop          *Shop     `gorm:"foreignKey:ShopID" json:"shop,omitempty"`
	Person        *Person   `gorm:"foreignKey:PersonID" json:"person,omitempty"`
}

// BeforeSave validates the refund link on every write, so no code path can
// persist chain state outside the closed state set.
func (t *Transaction) BeforeSave(tx *gorm.DB) error {
	return t.RefundLink.Validate()
}
