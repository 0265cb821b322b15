package ledger

import (
	apperrors "moneta/internal/errors"
	"moneta/internal/models"
)

// LineSide tells whether a line adds money to its account/category (debit)
// or removes it (credit).
type LineSide string

const (
	Debit  LineSide = "debit"
	Credit LineSide = "credit"
)

// Line is one conceptual monetary effect derived from a transaction. Lines
// are not persisted individually; they describe the account and category
// impacts a single flat transaction row stands for.
type Line struct {
	AccountID  *string
	CategoryID *string
	Side       LineSide
	Amount     int64
	PersonID   *string

	// Cashback terms carried on the target line of debt/transfer types.
	OriginalAmount       *int64
	CashbackSharePercent float64
	CashbackShareFixed   int64

	// Cost marks a category line that represents money going out (an
	// expense or cashback given away). Only cost lines are refundable.
	Cost bool
}

// Intent is a transaction described by resolved references, ready to be
// turned into lines. The services layer resolves the system categories
// before building: RepaymentCategoryID for repayments, DiscountCategoryID
// for debt/transfer intents whose cashback is positive.
type Intent struct {
	Type            models.TransactionType
	Amount          int64 // original, pre-cashback
	AccountID       string
	TargetAccountID *string
	CategoryID      *string
	PersonID        *string

	CashbackSharePercent float64 // ratio in [0,1]
	CashbackShareFixed   int64

	RepaymentCategoryID *string
	DiscountCategoryID  *string
}

// BuildLines derives the conceptual monetary lines for a transaction intent.
// It returns two lines for expense/income/repayment and debt/transfer, plus
// a third discount-category line when a debt/transfer gives cashback away.
//
// A positive cashback with no resolvable discount category is fatal, not
// skipped: an untracked cashback-given line would corrupt reporting totals.
func BuildLines(intent Intent) ([]Line, error) {
	if intent.Amount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}

	switch intent.Type {
	case models.TransactionTypeExpense:
		if intent.CategoryID == nil {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "expense transactions require a category")
		}
		return []Line{
			{AccountID: &intent.AccountID, Side: Credit, Amount: intent.Amount},
			{CategoryID: intent.CategoryID, Side: Debit, Amount: intent.Amount, Cost: true},
		}, nil

	case models.TransactionTypeIncome:
		if intent.CategoryID == nil {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "income transactions require a category")
		}
		return []Line{
			{AccountID: &intent.AccountID, Side: Debit, Amount: intent.Amount},
			{CategoryID: intent.CategoryID, Side: Credit, Amount: intent.Amount},
		}, nil

	case models.TransactionTypeRepayment:
		if intent.TargetAccountID == nil {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "repayment transactions require a debt account")
		}
		if intent.RepaymentCategoryID == nil {
			return nil, apperrors.ErrSystemCategoryMissing
		}
		return []Line{
			{AccountID: &intent.AccountID, CategoryID: intent.RepaymentCategoryID, Side: Debit, Amount: intent.Amount},
			{AccountID: intent.TargetAccountID, Side: Credit, Amount: intent.Amount, PersonID: intent.PersonID},
		}, nil

	case models.TransactionTypeDebt, models.TransactionTypeTransfer:
		if intent.TargetAccountID == nil {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "debt and transfer transactions require a target account")
		}
		cb := ComputeCashback(intent.Amount, intent.CashbackSharePercent, intent.CashbackShareFixed)
		original := intent.Amount
		lines := []Line{
			{AccountID: &intent.AccountID, Side: Credit, Amount: original},
			{
				AccountID:            intent.TargetAccountID,
				Side:                 Debit,
				Amount:               cb.Net,
				PersonID:             intent.PersonID,
				OriginalAmount:       &original,
				CashbackSharePercent: intent.CashbackSharePercent,
				CashbackShareFixed:   intent.CashbackShareFixed,
			},
		}
		if cb.Given > 0 {
			if intent.DiscountCategoryID == nil {
				return nil, apperrors.ErrSystemCategoryMissing
			}
			// Cashback given away is tracked as a pseudo-expense rather
			// than silently vanishing from the books.
			lines = append(lines, Line{CategoryID: intent.DiscountCategoryID, Side: Debit, Amount: cb.Given, Cost: true})
		}
		return lines, nil
	}

	return nil, apperrors.ErrInvalidTransactionType
}

// RefundableAmount returns the amount of the first cost-side category line,
// the value a refund request clamps against. ok is false when the
// transaction carries no refundable cost.
func RefundableAmount(lines []Line) (amount int64, ok bool) {
	for _, line := range lines {
		if line.CategoryID != nil && line.Cost && line.Amount > 0 {
			return line.Amount, true
		}
	}
	return 0, false
}
