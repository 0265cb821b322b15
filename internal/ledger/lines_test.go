package ledger

import (
	"testing"

	apperrors "moneta/internal/errors"
	"moneta/internal/models"
)

func strPtr(s string) *string { return &s }

func TestBuildLinesExpense(t *testing.T) {
	t.Run("requires a category", func(t *testing.T) {
		_, err := BuildLines(Intent{
			Type:      models.TransactionTypeExpense,
			Amount:    5000,
			AccountID: "acct-1",
		})
		assertErrorCode(t, err, apperrors.ErrInvalidInput.Code)
	})

	t.Run("produces account credit and cost category debit", func(t *testing.T) {
		lines, err := BuildLines(Intent{
			Type:       models.TransactionTypeExpense,
			Amount:     5000,
			AccountID:  "acct-1",
			CategoryID: strPtr("cat-1"),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(lines) != 2 {
			t.Fatalf("expected 2 lines, got %d", len(lines))
		}
		if lines[0].Side != Credit || *lines[0].AccountID != "acct-1" || lines[0].Amount != 5000 {
			t.Errorf("unexpected account line: %+v", lines[0])
		}
		if lines[1].Side != Debit || *lines[1].CategoryID != "cat-1" || !lines[1].Cost {
			t.Errorf("unexpected category line: %+v", lines[1])
		}
	})
}

func TestBuildLinesIncome(t *testing.T) {
	lines, err := BuildLines(Intent{
		Type:       models.TransactionTypeIncome,
		Amount:     8000,
		AccountID:  "acct-1",
		CategoryID: strPtr("cat-1"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0].Side != Debit {
		t.Errorf("income should debit the account, got %+v", lines[0])
	}
	if lines[1].Cost {
		t.Errorf("income category line must not be a cost line")
	}
}

func TestBuildLinesRepayment(t *testing.T) {
	t.Run("requires a target account", func(t *testing.T) {
		_, err := BuildLines(Intent{
			Type:      models.TransactionTypeRepayment,
			Amount:    3000,
			AccountID: "acct-1",
		})
		assertErrorCode(t, err, apperrors.ErrInvalidInput.Code)
	})

	t.Run("requires the repayment category", func(t *testing.T) {
		_, err := BuildLines(Intent{
			Type:            models.TransactionTypeRepayment,
			Amount:          3000,
			AccountID:       "acct-1",
			TargetAccountID: strPtr("debt-1"),
		})
		assertErrorCode(t, err, apperrors.ErrSystemCategoryMissing.Code)
	})

	t.Run("settles the debt account", func(t *testing.T) {
		lines, err := BuildLines(Intent{
			Type:                models.TransactionTypeRepayment,
			Amount:              3000,
			AccountID:           "acct-1",
			TargetAccountID:     strPtr("debt-1"),
			PersonID:            strPtr("person-1"),
			RepaymentCategoryID: strPtr("cat-repay"),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(lines) != 2 {
			t.Fatalf("expected 2 lines, got %d", len(lines))
		}
		if *lines[1].AccountID != "debt-1" || lines[1].Side != Credit || *lines[1].PersonID != "person-1" {
			t.Errorf("unexpected debt line: %+v", lines[1])
		}
		if lines[0].Cost || lines[1].Cost {
			t.Errorf("repayments must not carry a refundable cost line")
		}
	})
}

func TestBuildLinesDebtAndTransfer(t *testing.T) {
	t.Run("no cashback produces two lines at full value", func(t *testing.T) {
		lines, err := BuildLines(Intent{
			Type:            models.TransactionTypeTransfer,
			Amount:          10000,
			AccountID:       "acct-1",
			TargetAccountID: strPtr("acct-2"),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(lines) != 2 {
			t.Fatalf("expected 2 lines, got %d", len(lines))
		}
		if lines[1].Amount != 10000 {
			t.Errorf("target line amount = %d, want 10000", lines[1].Amount)
		}
	})

	t.Run("cashback splits the target line and adds a discount line", func(t *testing.T) {
		lines, err := BuildLines(Intent{
			Type:                 models.TransactionTypeDebt,
			Amount:               1000000,
			AccountID:            "acct-1",
			TargetAccountID:      strPtr("debt-1"),
			PersonID:             strPtr("person-1"),
			CashbackSharePercent: 0.1,
			DiscountCategoryID:   strPtr("cat-discount"),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(lines) != 3 {
			t.Fatalf("expected 3 lines, got %d", len(lines))
		}
		if lines[0].Amount != 1000000 {
			t.Errorf("source line amount = %d, want 1000000", lines[0].Amount)
		}
		if lines[1].Amount != 900000 {
			t.Errorf("target line amount = %d, want 900000", lines[1].Amount)
		}
		if lines[1].OriginalAmount == nil || *lines[1].OriginalAmount != 1000000 {
			t.Errorf("target line must carry the original amount")
		}
		if *lines[2].CategoryID != "cat-discount" || lines[2].Amount != 100000 || !lines[2].Cost {
			t.Errorf("unexpected discount line: %+v", lines[2])
		}
	})

	t.Run("cashback without a discount category is fatal", func(t *testing.T) {
		_, err := BuildLines(Intent{
			Type:                 models.TransactionTypeDebt,
			Amount:               1000000,
			AccountID:            "acct-1",
			TargetAccountID:      strPtr("debt-1"),
			CashbackSharePercent: 0.1,
		})
		assertErrorCode(t, err, apperrors.ErrSystemCategoryMissing.Code)
	})
}

func TestBuildLinesRejectsBadInput(t *testing.T) {
	t.Run("zero amount", func(t *testing.T) {
		_, err := BuildLines(Intent{
			Type:       models.TransactionTypeExpense,
			AccountID:  "acct-1",
			CategoryID: strPtr("cat-1"),
		})
		assertErrorCode(t, err, apperrors.ErrInvalidInput.Code)
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := BuildLines(Intent{
			Type:      models.TransactionType("mystery"),
			Amount:    100,
			AccountID: "acct-1",
		})
		assertErrorCode(t, err, apperrors.ErrInvalidTransactionType.Code)
	})
}

func TestRefundableAmount(t *testing.T) {
	t.Run("expense refunds the full category amount", func(t *testing.T) {
		lines, err := BuildLines(Intent{
			Type:       models.TransactionTypeExpense,
			Amount:     5000,
			AccountID:  "acct-1",
			CategoryID: strPtr("cat-1"),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		amount, ok := RefundableAmount(lines)
		if !ok || amount != 5000 {
			t.Errorf("RefundableAmount = (%d, %v), want (5000, true)", amount, ok)
		}
	})

	t.Run("debt refunds only the cashback given", func(t *testing.T) {
		lines, err := BuildLines(Intent{
			Type:                 models.TransactionTypeDebt,
			Amount:               1000000,
			AccountID:            "acct-1",
			TargetAccountID:      strPtr("debt-1"),
			CashbackSharePercent: 0.1,
			DiscountCategoryID:   strPtr("cat-discount"),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		amount, ok := RefundableAmount(lines)
		if !ok || amount != 100000 {
			t.Errorf("RefundableAmount = (%d, %v), want (100000, true)", amount, ok)
		}
	})

	t.Run("income has no refundable line", func(t *testing.T) {
		lines, err := BuildLines(Intent{
			Type:       models.TransactionTypeIncome,
			Amount:     8000,
			AccountID:  "acct-1",
			CategoryID: strPtr("cat-1"),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, ok := RefundableAmount(lines); ok {
			t.Error("income must not be refundable")
		}
	})
}

func assertErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with code %q, got nil", code)
	}
	appErr, ok := err.(*apperrors.AppError)
	if !ok {
		t.Fatalf("expected *AppError, got %T: %v", err, err)
	}
	if appErr.Code != code {
		t.Errorf("error code = %q, want %q", appErr.Code, code)
	}
}
