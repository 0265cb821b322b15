package models

// CategoryType represents the type of category
type CategoryType string

const (
	CategoryTypeIncome  CategoryType = "income"
	CategoryTypeExpense CategoryType = "expense"
)

// Well-known system category names the ledger resolves by name.
const (
	SystemCategoryRefund    = "Refund"
	SystemCategoryRepayment = "Repayment"
)

// DiscountCategoryNames is the ordered name list used to resolve the
// category that tracks cashback given away on debt/transfer transactions.
// The first match wins.
var DiscountCategoryNames = []string{"Cashback Given", "Discount", "Promotion"}

// Category represents a transaction category. System categories (Refund,
// Repayment, the discount fallbacks) have no owner and are visible to every
// user.
type Category struct {
	Base
	UserID      *string      `gorm:"type:uuid;index" json:"user_id,omitempty"`
	Name        string       `gorm:"not null" json:"name"`
	Type        CategoryType `gorm:"size:16;not null" json:"type"`
	Description string       `json:"description"`
	Icon        string       `json:"icon"`
	Color       string       `json:"color"`
	IsSystem    bool         `gorm:"default:false" json:"is_system"`

	// Relationships
	Transactions []Transaction `gorm:"foreignKey:CategoryID" json:"transactions,omitempty"`
}
