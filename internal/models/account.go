package models

// AccountType represents the type of account
type AccountType string

const (
	AccountTypeCash       AccountType = "cash"
	AccountTypeBank       AccountType = "bank"
	AccountTypeCreditCard AccountType = "credit_card"
	AccountTypeDebt       AccountType = "debt"
)

// PendingRefundAccountID is the well-known sentinel account that holds money
// in transit while a refund request is awaiting confirmation. It is seeded by
// the initial migration and must never be deleted.
const PendingRefundAccountID = "00000000-0000-0000-0000-000000000001"

// Account represents a financial account. System accounts (the pending-refund
// sentinel) have no owner and are visible to every user.
type Account struct {
	Base
	UserID      *string     `gorm:"type:uuid;index" json:"user_id,omitempty"`
	Name        string      `gorm:"not null" json:"name"`
	Type        AccountType `gorm:"size:16;not null" json:"type"`
	Currency    string      `gorm:"size:3;not null;default:'USD'" json:"currency"`
	Description string      `json:"description"`
	IsActive    bool        `gorm:"default:true" json:"is_active"`
	IsSystem    bool        `gorm:"default:false" json:"is_system"`

	// StatementDay is the day of month (1-31) a credit card statement cycle
	// starts. Only meaningful for credit card accounts.
	StatementDay *int `json:"statement_day,omitempty"`

	// PersonID links a debt account to the person it shadows.
	PersonID *string `gorm:"type:uuid" json:"person_id,omitempty"`

	// Relationships
	Transactions []Transaction `gorm:"foreignKey:AccountID" json:"transactions,omitempty"`
}
