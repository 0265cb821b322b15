package services

import (
	"time"

	"gorm.io/gorm"

	apperrors "moneta/internal/errors"
	"moneta/internal/ledger"
	"moneta/internal/models"
)

// refundService drives the three-hop refund chain. Requesting a refund
// parks an expense on the sentinel pending account; confirming it posts an
// income on a real account. Both sides of every link are written inside one
// database transaction so the chain can never be observed half-built.
type refundService struct {
	db         *gorm.DB
	accounts   AccountServicer
	categories CategoryServicer
}

// NewRefundService creates a new RefundServicer.
func NewRefundService(db *gorm.DB, accounts AccountServicer, categories CategoryServicer) RefundServicer {
	return &refundService{db: db, accounts: accounts, categories: categories}
}

// RequestRefund opens a refund against an existing transaction. The
// requested amount is clamped to the transaction's refundable cost line:
// the full category amount of an expense, the cashback given away on a
// debt or transfer. amount <= 0 requests the full refundable value. The
// stored partial flag is derived from the clamped amount; the caller's
// flag is advisory.
func (s *refundService) RequestRefund(userID, originalID string, amount int64, partial bool) (*models.Transaction, error) {
	original, err := findUserTransaction(s.db, userID, originalID)
	if err != nil {
		return nil, err
	}
	if original.Status == models.TransactionStatusVoid {
		return nil, apperrors.WithMessage(apperrors.ErrTransactionVoid, "void transactions cannot be refunded")
	}
	if original.HasRefundRequest {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "transaction already has a refund request")
	}

	lines, err := ledger.BuildLines(intentFromTransaction(original))
	if err != nil {
		return nil, err
	}
	refundable, ok := ledger.RefundableAmount(lines)
	if !ok {
		return nil, apperrors.ErrNoCategoryLine
	}

	requested := refundable
	if amount > 0 {
		requested = amount
	}
	if requested > refundable {
		requested = refundable
	}
	if requested <= 0 {
		return nil, apperrors.ErrZeroRefundAmount
	}

	refundCategory, err := s.categories.ResolveSystemCategory(userID, models.SystemCategoryRefund, models.CategoryTypeIncome)
	if err != nil {
		return nil, err
	}

	originalCategoryName := ""
	if original.CategoryID != nil {
		if category, err := s.categories.GetCategoryByID(userID, *original.CategoryID); err == nil {
			originalCategoryName = category.Name
		}
	}

	now := time.Now()
	request := &models.Transaction{
		UserID:         userID,
		Type:           models.TransactionTypeExpense,
		Status:         models.TransactionStatusPosted,
		OccurredAt:     now,
		Amount:         requested,
		OriginalAmount: requested,
		AccountID:      models.PendingRefundAccountID,
		CategoryID:     &refundCategory.ID,
		Tag:            original.Tag,
		Note:           "Refund: " + original.Note,
		RefundLink: models.RefundLink{
			RefundStatus:         models.RefundStatusRequested,
			LinkedTransactionID:  &original.ID,
			RefundAmount:         &requested,
			PartialRefund:        requested < refundable,
			OriginalCategoryID:   original.CategoryID,
			OriginalCategoryName: originalCategoryName,
		},
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(request).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		original.HasRefundRequest = true
		original.RefundRequestID = &request.ID
		original.RefundRequestedAt = &now
		if err := tx.Save(original).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return request, nil
}

// ConfirmRefund settles an open refund request: the money lands on the
// target account as an income, the request leaves the pending state, and
// the original transaction records the amount it got back.
func (s *refundService) ConfirmRefund(userID, pendingID, targetAccountID string) (*models.Transaction, error) {
	request, err := findUserTransaction(s.db, userID, pendingID)
	if err != nil {
		return nil, err
	}
	if request.AccountID != models.PendingRefundAccountID || !request.IsRefundRequest() {
		return nil, apperrors.ErrNoPendingLine
	}
	if request.Status == models.TransactionStatusVoid {
		return nil, apperrors.WithMessage(apperrors.ErrNoPendingLine, "refund request is void")
	}
	if request.RefundStatus == models.RefundStatusConfirmed {
		return nil, apperrors.WithMessage(apperrors.ErrNoPendingLine, "refund request is already confirmed")
	}

	if request.RefundAmount == nil || *request.RefundAmount <= 0 {
		return nil, apperrors.ErrZeroRefundAmount
	}
	amount := *request.RefundAmount

	if _, err := s.accounts.GetAccountByID(userID, targetAccountID); err != nil {
		return nil, err
	}
	refundCategory, err := s.categories.ResolveSystemCategory(userID, models.SystemCategoryRefund, models.CategoryTypeIncome)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	confirmation := &models.Transaction{
		UserID:         userID,
		Type:           models.TransactionTypeIncome,
		Status:         models.TransactionStatusPosted,
		OccurredAt:     now,
		Amount:         amount,
		OriginalAmount: amount,
		AccountID:      targetAccountID,
		CategoryID:     &refundCategory.ID,
		Tag:            request.Tag,
		Note:           request.Note,
		RefundLink: models.RefundLink{
			RefundStatus:        models.RefundStatusConfirmed,
			LinkedTransactionID: request.LinkedTransactionID,
			PendingRefundID:     &request.ID,
			RefundConfirmedAt:   &now,
		},
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(confirmation).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		request.Status = models.TransactionStatusPosted
		request.RefundStatus = models.RefundStatusConfirmed
		request.RefundConfirmedTransactionID = &confirmation.ID
		request.RefundConfirmedAt = &now
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
			return chainMismatch("original does not point back at the request being confirmed")
		}

		original.RefundStatus = models.RefundStatusConfirmed
		original.RefundedAmount = &amount
		original.RefundConfirmedTransactionID = &confirmation.ID
		original.RefundConfirmedAt = &now
		if err := tx.Save(original).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return confirmation, nil
}

// intentFromTransaction rebuilds the ledger intent from a persisted row so
// the refundable cost line can be re-derived. The persisted CategoryID is
// the resolved system category for repayment and cashback-carrying types,
// so it slots straight back into the intent.
func intentFromTransaction(t *models.Transaction) ledger.Intent {
	intent := ledger.Intent{
		Type:                 t.Type,
		Amount:               t.OriginalAmount,
		AccountID:            t.AccountID,
		TargetAccountID:      t.TargetAccountID,
		CategoryID:           t.CategoryID,
		PersonID:             t.PersonID,
		CashbackSharePercent: t.CashbackSharePercent,
		CashbackShareFixed:   t.CashbackShareFixed,
	}
	switch t.Type {
	case models.TransactionTypeRepayment:
		intent.RepaymentCategoryID = t.CategoryID
	case models.TransactionTypeDebt, models.TransactionTypeTransfer:
		intent.DiscountCategoryID = t.CategoryID
	}
	return intent
}
