package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	apperrors "moneta/internal/errors"
	"moneta/internal/export"
	"moneta/internal/ledger"
	"moneta/internal/models"
	"moneta/internal/pagination"
)

// transactionService is the ledger facade. It turns user-facing transaction
// intents into persisted rows via the pure ledger functions, guards the
// refund-chain invariants before any mutation, and triggers the export
// side-channel after successful writes.
type transactionService struct {
	db         *gorm.DB
	accounts   AccountServicer
	categories CategoryServicer
	exporter   ExporterServicer
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB, accounts AccountServicer, categories CategoryServicer, exporter ExporterServicer) TransactionServicer {
	return &transactionService{
		db:         db,
		accounts:   accounts,
		categories: categories,
		exporter:   exporter,
	}
}

// cashbackRatio converts the user-facing percent value (10 means 10%) into
// the stored ratio. ComputeCashback clamps the result to [0,1].
func cashbackRatio(percent float64) float64 {
	return percent / 100
}

// CreateTransaction creates a new transaction: resolve the billing cycle,
// derive and validate the ledger lines, compute the net settlement via the
// cashback calculator, persist, then dispatch the export side-channel.
func (s *transactionService) CreateTransaction(userID string, input TransactionInput) (*models.Transaction, error) {
	if err := validateTransactionInput(&input); err != nil {
		return nil, err
	}

	account, err := s.accounts.GetAccountByID(userID, input.AccountID)
	if err != nil {
		return nil, err
	}
	if input.TargetAccountID != nil {
		if _, err := s.accounts.GetAccountByID(userID, *input.TargetAccountID); err != nil {
			return nil, err
		}
	}
	if input.PersonID != nil {
		if err := s.checkPersonExists(userID, *input.PersonID); err != nil {
			return nil, err
		}
	}

	ratio := cashbackRatio(input.CashbackSharePercent)
	intent, categoryID, err := s.resolveIntent(userID, input, ratio)
	if err != nil {
		return nil, err
	}

	// Building the lines validates the intent: missing categories, missing
	// target accounts and unresolvable discount categories all fail here,
	// before anything is written.
	if _, err := ledger.BuildLines(intent); err != nil {
		return nil, err
	}

	transaction := &models.Transaction{
		UserID:               userID,
		Type:                 input.Type,
		Status:               models.TransactionStatusPosted,
		OccurredAt:           input.OccurredAt,
		Amount:               settledAmount(input.Type, input.Amount, ratio, input.CashbackShareFixed),
		OriginalAmount:       input.Amount,
		AccountID:            input.AccountID,
		TargetAccountID:      input.TargetAccountID,
		CategoryID:           categoryID,
		ShopID:               input.ShopID,
		PersonID:             input.PersonID,
		CashbackSharePercent: cashbackTermsRatio(input.Type, ratio),
		CashbackShareFixed:   cashbackTermsFixed(input.Type, input.CashbackShareFixed),
		Tag:                  input.Tag,
		CycleTag:             ledger.ResolveCycleTag(account, input.OccurredAt),
		Note:                 input.Note,
	}

	if err := s.db.Create(transaction).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.exporter.Dispatch(transaction, export.ActionCreate)
	return transaction, nil
}

// UpdateTransaction edits the header fields of a transaction. The
// transaction's identity in the refund chain is immutable: edits are
// rejected while any non-void transaction still references this one, and
// the refund link itself is never touched here.
func (s *transactionService) UpdateTransaction(userID, transactionID string, input TransactionInput) (*models.Transaction, error) {
	transaction, err := s.GetTransactionByID(userID, transactionID)
	if err != nil {
		return nil, err
	}
	if transaction.Status == models.TransactionStatusVoid {
		return nil, apperrors.WithMessage(apperrors.ErrTransactionVoid, "void transactions cannot be edited")
	}

	children, err := s.countActiveChildren(userID, transactionID)
	if err != nil {
		return nil, err
	}
	if children > 0 {
		return nil, apperrors.ErrHasLinkedChildren
	}

	if input.Type == "" {
		input.Type = transaction.Type
	}
	if input.Type != transaction.Type {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "transaction type cannot be changed")
	}
	if err := validateTransactionInput(&input); err != nil {
		return nil, err
	}

	account, err := s.accounts.GetAccountByID(userID, input.AccountID)
	if err != nil {
		return nil, err
	}
	if input.TargetAccountID != nil {
		if _, err := s.accounts.GetAccountByID(userID, *input.TargetAccountID); err != nil {
			return nil, err
		}
	}
	if input.PersonID != nil {
		if err := s.checkPersonExists(userID, *input.PersonID); err != nil {
			return nil, err
		}
	}

	ratio := cashbackRatio(input.CashbackSharePercent)
	intent, categoryID, err := s.resolveIntent(userID, input, ratio)
	if err != nil {
		return nil, err
	}
	if _, err := ledger.BuildLines(intent); err != nil {
		return nil, err
	}

	// The cycle tag is frozen unless the fields it derives from change.
	// Recomputing it unconditionally would silently move historical
	// transactions into new cycles when the statement day changes.
	if input.AccountID != transaction.AccountID || !input.OccurredAt.Equal(transaction.OccurredAt) {
		transaction.CycleTag = ledger.ResolveCycleTag(account, input.OccurredAt)
	}

	transaction.OccurredAt = input.OccurredAt
	transaction.Amount = settledAmount(input.Type, input.Amount, ratio, input.CashbackShareFixed)
	transaction.OriginalAmount = input.Amount
	transaction.AccountID = input.AccountID
	transaction.TargetAccountID = input.TargetAccountID
	transaction.CategoryID = categoryID
	transaction.ShopID = input.ShopID
	transaction.PersonID = input.PersonID
	transaction.CashbackSharePercent = cashbackTermsRatio(input.Type, ratio)
	transaction.CashbackShareFixed = cashbackTermsFixed(input.Type, input.CashbackShareFixed)
	transaction.Tag = input.Tag
	transaction.Note = input.Note

	if err := s.db.Save(transaction).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.exporter.Dispatch(transaction, export.ActionCreate)
	return transaction, nil
}

// VoidTransaction marks a transaction void, first rolling back the refund
// chain it participates in. Voiding is rejected while non-void transactions
// still reference this one: children must be voided first, or the chain
// would be left pointing at a void parent.
func (s *transactionService) VoidTransaction(userID, transactionID string) (*models.Transaction, error) {
	transaction, err := s.GetTransactionByID(userID, transactionID)
	if err != nil {
		return nil, err
	}
	if transaction.Status == models.TransactionStatusVoid {
		return nil, apperrors.WithMessage(apperrors.ErrTransactionVoid, "transaction is already void")
	}

	children, err := s.countActiveChildren(userID, transactionID)
	if err != nil {
		return nil, err
	}
	if children > 0 {
		return nil, apperrors.ErrHasActiveChildren
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		switch {
		case transaction.IsRefundConfirmation():
			if err := s.rollbackConfirmation(tx, userID, transaction); err != nil {
				return err
			}
		case transaction.IsRefundRequest():
			if err := s.rollbackRequest(tx, userID, transaction); err != nil {
				return err
			}
		}

		transaction.Status = models.TransactionStatusVoid
		if err := tx.Save(transaction).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.exporter.Dispatch(transaction, export.ActionDelete)
	return transaction, nil
}

// rollbackConfirmation undoes a refund confirmation: the request is
// reopened as pending and the original drops back to waiting for its money,
// with the received amount cleared.
func (s *transactionService) rollbackConfirmation(tx *gorm.DB, userID string, confirmation *models.Transaction) error {
	request, err := findUserTransaction(tx, userID, *confirmation.PendingRefundID)
	if err != nil {
		return err
	}
	if request.RefundConfirmedTransactionID == nil || *request.RefundConfirmedTransactionID != confirmation.ID {
		return chainMismatch("request does not point back at the confirmation being voided")
	}

	request.Status = models.TransactionStatusPending
	request.RefundStatus = models.RefundStatusRequested
	request.RefundConfirmedTransactionID = nil
	request.RefundConfirmedAt = nil
	if err := tx.Save(request).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if request.LinkedTransactionID == nil {
		return nil
	}
	original, err := findUserTransaction(tx, userID, *request.LinkedTransactionID)
	if err != nil {
		return err
	}
	if original.RefundRequestID == nil || *original.RefundRequestID != request.ID {
		return chainMismatch("original does not point back at the reopened request")
	}

	original.RefundStatus = models.RefundStatusWaitingRefund
	original.RefundedAmount = nil
	original.RefundConfirmedTransactionID = nil
	original.RefundConfirmedAt = nil
	if err := tx.Save(original).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// rollbackRequest undoes a refund request: the original transaction is
// fully retracted to its pre-request state.
func (s *transactionService) rollbackRequest(tx *gorm.DB, userID string, request *models.Transaction) error {
	original, err := findUserTransaction(tx, userID, *request.LinkedTransactionID)
	if err != nil {
		return err
	}
	if original.RefundRequestID == nil || *original.RefundRequestID != request.ID {
		return chainMismatch("original does not point back at the request being voided")
	}

	original.Status = models.TransactionStatusPosted
	original.RefundStatus = models.RefundStatusNone
	original.RefundedAmount = nil
	original.HasRefundRequest = false
	original.RefundRequestID = nil
	original.RefundRequestedAt = nil
	original.RefundConfirmedTransactionID = nil
	original.RefundConfirmedAt = nil
	if err := tx.Save(original).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// RestoreTransaction sets a void transaction back to posted. There is no
// guard and no reconstruction: refund-chain state mutated on siblings by a
// prior void rollback stays as the rollback left it.
func (s *transactionService) RestoreTransaction(userID, transactionID string) (*models.Transaction, error) {
	transaction, err := s.GetTransactionByID(userID, transactionID)
	if err != nil {
		return nil, err
	}

	transaction.Status = models.TransactionStatusPosted
	if err := s.db.Save(transaction).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.exporter.Dispatch(transaction, export.ActionCreate)
	return transaction, nil
}

// GetTransactionByID retrieves a transaction by ID for a specific user
func (s *transactionService) GetTransactionByID(userID, transactionID string) (*models.Transaction, error) {
	return findUserTransaction(s.db, userID, transactionID)
}

// GetUserTransactions retrieves a paginated, filtered list of transactions.
func (s *transactionService) GetUserTransactions(userID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	page.Defaults()

	base := s.db.Model(&models.Transaction{}).Where("user_id = ?", userID)
	base = applyTransactionFilters(base, filter)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	if err := base.Scopes(pagination.Paginate(page)).
		Order("occurred_at DESC").
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(transactions, page.Page, page.PageSize, totalItems)
	return &result, nil
}

func applyTransactionFilters(q *gorm.DB, f TransactionFilter) *gorm.DB {
	if f.FromDate != nil {
		q = q.Where("occurred_at >= ?", *f.FromDate)
	}
	if f.ToDate != nil {
		q = q.Where("occurred_at <= ?", *f.ToDate)
	}
	if f.Type != nil {
		q = q.Where("type = ?", *f.Type)
	}
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}
	if f.AccountID != nil {
		q = q.Where("account_id = ?", *f.AccountID)
	}
	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	if f.PersonID != nil {
		q = q.Where("person_id = ?", *f.PersonID)
	}
	if f.CycleTag != nil {
		q = q.Where("cycle_tag = ?", *f.CycleTag)
	}
	return q
}

// resolveIntent turns a TransactionInput into a ledger.Intent with all
// system categories resolved, and returns the category id to persist on the
// transaction row (the user's category for expense/income, the resolved
// system category for repayment and cashback-carrying debt/transfer).
func (s *transactionService) resolveIntent(userID string, input TransactionInput, ratio float64) (ledger.Intent, *string, error) {
	intent := ledger.Intent{
		Type:                 input.Type,
		Amount:               input.Amount,
		AccountID:            input.AccountID,
		TargetAccountID:      input.TargetAccountID,
		CategoryID:           input.CategoryID,
		PersonID:             input.PersonID,
		CashbackSharePercent: ratio,
		CashbackShareFixed:   input.CashbackShareFixed,
	}

	switch input.Type {
	case models.TransactionTypeExpense, models.TransactionTypeIncome:
		if input.CategoryID != nil {
			if _, err := s.categories.GetCategoryByID(userID, *input.CategoryID); err != nil {
				return intent, nil, err
			}
		}
		return intent, input.CategoryID, nil

	case models.TransactionTypeRepayment:
		category, err := s.categories.ResolveSystemCategory(userID, models.SystemCategoryRepayment, models.CategoryTypeExpense)
		if err != nil {
			return intent, nil, err
		}
		intent.RepaymentCategoryID = &category.ID
		return intent, &category.ID, nil

	case models.TransactionTypeDebt, models.TransactionTypeTransfer:
		if ledger.ComputeCashback(input.Amount, ratio, input.CashbackShareFixed).Given == 0 {
			return intent, nil, nil
		}
		category, err := s.categories.ResolveDiscountCategory(userID, input.DiscountCategoryID)
		if err != nil {
			return intent, nil, err
		}
		intent.DiscountCategoryID = &category.ID
		return intent, &category.ID, nil
	}

	return intent, nil, apperrors.ErrInvalidTransactionType
}

// countActiveChildren counts non-void transactions referencing the given id
// through the refund chain.
func (s *transactionService) countActiveChildren(userID, transactionID string) (int64, error) {
	var count int64
	err := s.db.Model(&models.Transaction{}).
		Where("user_id = ? AND status <> ? AND (linked_transaction_id = ? OR pending_refund_id = ?)",
			userID, models.TransactionStatusVoid, transactionID, transactionID).
		Count(&count).Error
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return count, nil
}

func (s *transactionService) checkPersonExists(userID, personID string) error {
	var count int64
	err := s.db.Model(&models.Person{}).
		Where("id = ? AND user_id = ?", personID, userID).
		Count(&count).Error
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count == 0 {
		return apperrors.ErrPersonNotFound
	}
	return nil
}

// findUserTransaction loads a transaction scoped to the user, off the given
// handle so chain mutations can run inside one database transaction.
func findUserTransaction(db *gorm.DB, userID, transactionID string) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := db.Where("id = ? AND user_id = ?", transactionID, userID).First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &transaction, nil
}

func validateTransactionInput(input *TransactionInput) error {
	switch input.Type {
	case models.TransactionTypeExpense, models.TransactionTypeIncome,
		models.TransactionTypeDebt, models.TransactionTypeTransfer,
		models.TransactionTypeRepayment:
	default:
		return apperrors.ErrInvalidTransactionType
	}
	if input.Amount <= 0 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	if input.AccountID == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "account ID is required")
	}
	if input.CashbackShareFixed < 0 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "fixed cashback share must not be negative")
	}
	if input.OccurredAt.IsZero() {
		input.OccurredAt = time.Now()
	}
	return nil
}

// settledAmount is the value persisted as Amount: the post-cashback net for
// debt/transfer, the original for everything else.
func settledAmount(transactionType models.TransactionType, amount int64, ratio float64, fixed int64) int64 {
	if transactionType == models.TransactionTypeDebt || transactionType == models.TransactionTypeTransfer {
		return ledger.ComputeCashback(amount, ratio, fixed).Net
	}
	return amount
}

// cashbackTermsRatio and cashbackTermsFixed zero the cashback terms for
// types they do not apply to, so stray form values are not persisted.
func cashbackTermsRatio(transactionType models.TransactionType, ratio float64) float64 {
	if transactionType == models.TransactionTypeDebt || transactionType == models.TransactionTypeTransfer {
		if ratio < 0 {
			return 0
		}
		if ratio > 1 {
			return 1
		}
		return ratio
	}
	return 0
}

func cashbackTermsFixed(transactionType models.TransactionType, fixed int64) int64 {
	if transactionType == models.TransactionTypeDebt || transactionType == models.TransactionTypeTransfer {
		return fixed
	}
	return 0
}

func chainMismatch(detail string) error {
	return apperrors.Wrap(apperrors.ErrInternalServer, fmt.Errorf("refund chain inconsistency: %s", detail))
}
