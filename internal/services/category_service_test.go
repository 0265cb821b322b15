package services

import (
	"testing"

	apperrors "moneta/internal/errors"
	"moneta/internal/models"
	"moneta/internal/testutil"
)

func TestResolveSystemCategory(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	categories := NewCategoryService(db)
	user := testutil.CreateTestUser(t, db)

	t.Run("missing category is a configuration error", func(t *testing.T) {
		_, err := categories.ResolveSystemCategory(user.ID, models.SystemCategoryRefund, models.CategoryTypeIncome)
		testutil.AssertAppError(t, err, apperrors.ErrSystemCategoryMissing.Code)
	})

	t.Run("finds the seeded system category", func(t *testing.T) {
		seeded := testutil.CreateSystemCategory(t, db, models.SystemCategoryRefund, models.CategoryTypeIncome)

		category, err := categories.ResolveSystemCategory(user.ID, models.SystemCategoryRefund, models.CategoryTypeIncome)
		testutil.AssertNoError(t, err)
		if category.ID != seeded.ID {
			t.Errorf("resolved %s, want the system row %s", category.ID, seeded.ID)
		}
	})

	t.Run("prefers the user's own category over the system row", func(t *testing.T) {
		own := &models.Category{
			UserID: &user.ID,
			Name:   models.SystemCategoryRefund,
			Type:   models.CategoryTypeIncome,
		}
		testutil.AssertNoError(t, db.Create(own).Error)

		category, err := categories.ResolveSystemCategory(user.ID, models.SystemCategoryRefund, models.CategoryTypeIncome)
		testutil.AssertNoError(t, err)
		if category.ID != own.ID {
			t.Errorf("resolved %s, want the user's own %s", category.ID, own.ID)
		}
	})
}

func TestResolveDiscountCategory(t *testing.T) {
	t.Run("explicit override wins", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		categories := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)

		testutil.CreateSystemCategory(t, db, "Cashback Given", models.CategoryTypeExpense)
		override := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)

		category, err := categories.ResolveDiscountCategory(user.ID, &override.ID)
		testutil.AssertNoError(t, err)
		if category.ID != override.ID {
			t.Errorf("resolved %s, want the override %s", category.ID, override.ID)
		}
	})

	t.Run("walks the well-known name list in order", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		categories := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)

		promotion := testutil.CreateSystemCategory(t, db, "Promotion", models.CategoryTypeExpense)

		category, err := categories.ResolveDiscountCategory(user.ID, nil)
		testutil.AssertNoError(t, err)
		if category.ID != promotion.ID {
			t.Errorf("resolved %s, want Promotion %s", category.ID, promotion.ID)
		}

		discount := testutil.CreateSystemCategory(t, db, "Discount", models.CategoryTypeExpense)
		category, err = categories.ResolveDiscountCategory(user.ID, nil)
		testutil.AssertNoError(t, err)
		if category.ID != discount.ID {
			t.Errorf("resolved %s, want the earlier-ranked Discount %s", category.ID, discount.ID)
		}
	})

	t.Run("falls back to any visible expense category", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		categories := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)

		expense := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)

		category, err := categories.ResolveDiscountCategory(user.ID, nil)
		testutil.AssertNoError(t, err)
		if category.ID != expense.ID {
			t.Errorf("resolved %s, want the fallback %s", category.ID, expense.ID)
		}
	})

	t.Run("nothing resolvable is a configuration error", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		categories := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := categories.ResolveDiscountCategory(user.ID, nil)
		testutil.AssertAppError(t, err, apperrors.ErrSystemCategoryMissing.Code)
	})
}
