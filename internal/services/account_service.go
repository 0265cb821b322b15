package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "moneta/internal/errors"
	"moneta/internal/models"
	"moneta/internal/pagination"
)

// accountService handles account-related business logic. The ledger core
// only reads accounts; balances are owned by whoever maintains the account,
// not by transaction writes.
type accountService struct {
	db *gorm.DB
}

// NewAccountService creates a new AccountServicer.
func NewAccountService(db *gorm.DB) AccountServicer {
	return &accountService{db: db}
}

// CreateAccount creates a new account for a user.
func (s *accountService) CreateAccount(userID, name string, accountType models.AccountType, currency, description string, statementDay *int) (*models.Account, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "account name is required")
	}
	if statementDay != nil && (*statementDay < 1 || *statementDay > 31) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "statement day must be between 1 and 31")
	}
	if statementDay != nil && accountType != models.AccountTypeCreditCard {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "statement day only applies to credit card accounts")
	}
	if currency == "" {
		currency = "USD"
	}

	account := &models.Account{
		UserID:       &userID,
		Name:         name,
		Type:         accountType,
		Currency:     currency,
		Description:  description,
		StatementDay: statementDay,
		IsActive:     true,
	}
	if err := s.db.Create(account).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return account, nil
}

// GetUserAccounts retrieves a paginated list of the user's accounts.
// System accounts are excluded from listings.
func (s *accountService) GetUserAccounts(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Account], error) {
	page.Defaults()

	base := s.db.Model(&models.Account{}).Where("user_id = ? AND is_system = ?", userID, false)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var accounts []models.Account
	if err := base.Scopes(pagination.Paginate(page)).Order("name").Find(&accounts).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(accounts, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetAccountByID retrieves an account by id. The sentinel pending-refund
// account and other system accounts are visible to every user.
func (s *accountService) GetAccountByID(userID, accountID string) (*models.Account, error) {
	var account models.Account
	err := s.db.Where("id = ? AND (user_id = ? OR is_system = ?)", accountID, userID, true).
		First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAccountNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &account, nil
}

// UpdateStatementDay changes the billing-cycle configuration of a credit
// card account. Existing transactions keep the cycle tag they were written
// under; only future writes see the new day.
func (s *accountService) UpdateStatementDay(userID, accountID string, statementDay *int) (*models.Account, error) {
	account, err := s.GetAccountByID(userID, accountID)
	if err != nil {
		return nil, err
	}
	if account.Type != models.AccountTypeCreditCard {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "statement day only applies to credit card accounts")
	}
	if statementDay != nil && (*statementDay < 1 || *statementDay > 31) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "statement day must be between 1 and 31")
	}

	account.StatementDay = statementDay
	if err := s.db.Model(account).Update("statement_day", statementDay).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return account, nil
}
