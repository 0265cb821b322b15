package models

// Person represents someone the user lends to or borrows from. Debt and
// repayment transactions settle against the person's shadow debt account.
type Person struct {
	Base
	UserID string `gorm:"type:uuid;not null;index" json:"user_id"`
	Name   string `gorm:"not null" json:"name"`
	Note   string `json:"note"`

	// AccountID is the person's shadow debt account, created alongside the
	// person and used as the target of debt/repayment transactions.
	AccountID *string `gorm:"type:uuid" json:"account_id,omitempty"`

	// Relationships
	Account *Account `gorm:"foreignKey:AccountID" json:"account,omitempty"`
}
