package services

import (
	"time"

	"moneta/internal/export"
	"moneta/internal/models"
	"moneta/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, displayName string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	AttemptLogin(email, password string) (*models.User, error)
}

// AccountServicer defines the contract for account lookups and maintenance.
// System accounts (the pending-refund sentinel) are visible to every user.
type AccountServicer interface {
	CreateAccount(userID, name string, accountType models.AccountType, currency, description string, statementDay *int) (*models.Account, error)
	GetUserAccounts(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Account], error)
	GetAccountByID(userID, accountID string) (*models.Account, error)
	UpdateStatementDay(userID, accountID string, statementDay *int) (*models.Account, error)
}

// CategoryServicer defines the contract for category lookups, including the
// resolution of well-known system categories the ledger depends on.
type CategoryServicer interface {
	CreateCategory(userID, name string, categoryType models.CategoryType, description, icon, color string) (*models.Category, error)
	GetUserCategories(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error)
	GetCategoryByID(userID, categoryID string) (*models.Category, error)
	// ResolveSystemCategory finds a well-known category by name, preferring
	// the user's own over the global system one.
	ResolveSystemCategory(userID, name string, categoryType models.CategoryType) (*models.Category, error)
	// ResolveDiscountCategory resolves the category tracking cashback given
	// away: explicit override, then the ordered well-known name list, then
	// any expense category as a last resort.
	ResolveDiscountCategory(userID string, overrideID *string) (*models.Category, error)
}

// DirectoryServicer defines the contract for people and shops.
type DirectoryServicer interface {
	CreatePerson(userID, name, note string) (*models.Person, error)
	GetPersonByID(userID, personID string) (*models.Person, error)
	GetUserPeople(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Person], error)
	CreateShop(userID, name, address string) (*models.Shop, error)
	GetShopByID(userID, shopID string) (*models.Shop, error)
	GetUserShops(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Shop], error)
}

// TransactionInput carries the user-facing fields of a create or update.
// Amount is the original, pre-cashback value; CashbackSharePercent is
// expressed in percent (10 means 10%) and stored as a ratio.
type TransactionInput struct {
	Type            models.TransactionType
	OccurredAt      time.Time
	Amount          int64
	AccountID       string
	TargetAccountID *string
	CategoryID      *string
	ShopID          *string
	PersonID        *string

	CashbackSharePercent float64
	CashbackShareFixed   int64

	Tag  string
	Note string

	// DiscountCategoryID overrides the discount-category resolution chain
	// for the cashback-given line.
	DiscountCategoryID *string
}

// TransactionFilter holds optional filter parameters for listing transactions.
type TransactionFilter struct {
	FromDate   *time.Time
	ToDate     *time.Time
	Type       *models.TransactionType
	Status     *models.TransactionStatus
	AccountID  *string
	CategoryID *string
	PersonID   *string
	CycleTag   *string
}

// TransactionServicer is the ledger facade: every user-facing mutation of
// the transaction ledger goes through it.
type TransactionServicer interface {
	CreateTransaction(userID string, input TransactionInput) (*models.Transaction, error)
	UpdateTransaction(userID, transactionID string, input TransactionInput) (*models.Transaction, error)
	VoidTransaction(userID, transactionID string) (*models.Transaction, error)
	RestoreTransaction(userID, transactionID string) (*models.Transaction, error)
	GetTransactionByID(userID, transactionID string) (*models.Transaction, error)
	GetUserTransactions(userID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
}

// RefundServicer drives the three-hop refund chain: original transaction,
// refund request parked on the pending account, confirmation income.
type RefundServicer interface {
	RequestRefund(userID, originalID string, amount int64, partial bool) (*models.Transaction, error)
	ConfirmRefund(userID, pendingID, targetAccountID string) (*models.Transaction, error)
}

// ExporterServicer dispatches person-linked transactions to the spreadsheet
// side-channel. Dispatch never blocks and never fails the caller.
type ExporterServicer interface {
	Dispatch(transaction *models.Transaction, action export.Action)
}
