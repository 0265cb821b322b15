package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"moneta/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    email,
		Password: string(hash),
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestAccount creates an account of the given type.
func CreateTestAccount(t *testing.T, db *gorm.DB, userID string, accountType models.AccountType) *models.Account {
	t.Helper()

	account := &models.Account{
		UserID:   &userID,
		Name:     fmt.Sprintf("Test Account %d", nextID()),
		Type:     accountType,
		Currency: "USD",
		IsActive: true,
	}
	if err := db.Create(account).Error; err != nil {
		t.Fatalf("failed to create test account: %v", err)
	}
	return account
}

// CreateTestCreditCardAccount creates a credit card account with the given
// statement day.
func CreateTestCreditCardAccount(t *testing.T, db *gorm.DB, userID string, statementDay int) *models.Account {
	t.Helper()

	account := &models.Account{
		UserID:       &userID,
		Name:         fmt.Sprintf("Test Credit Card %d", nextID()),
		Type:         models.AccountTypeCreditCard,
		Currency:     "USD",
		IsActive:     true,
		StatementDay: &statementDay,
	}
	if err := db.Create(account).Error; err != nil {
		t.Fatalf("failed to create test credit card account: %v", err)
	}
	return account
}

// CreateTestCategory creates a category of the given type.
func CreateTestCategory(t *testing.T, db *gorm.DB, userID string, categoryType models.CategoryType) *models.Category {
	t.Helper()

	category := &models.Category{
		UserID: &userID,
		Name:   fmt.Sprintf("Test Category %d", nextID()),
		Type:   categoryType,
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateSystemCategory creates a globally visible system category with the
// given well-known name, the way the initial migration seeds them.
func CreateSystemCategory(t *testing.T, db *gorm.DB, name string, categoryType models.CategoryType) *models.Category {
	t.Helper()

	category := &models.Category{
		Name:     name,
		Type:     categoryType,
		IsSystem: true,
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create system category %s: %v", name, err)
	}
	return category
}

// CreateTestPerson creates a person together with their shadow debt account.
func CreateTestPerson(t *testing.T, db *gorm.DB, userID string) *models.Person {
	t.Helper()

	person := &models.Person{
		UserID: userID,
		Name:   fmt.Sprintf("Test Person %d", nextID()),
	}
	if err := db.Create(person).Error; err != nil {
		t.Fatalf("failed to create test person: %v", err)
	}

	account := &models.Account{
		UserID:   &userID,
		Name:     person.Name,
		Type:     models.AccountTypeDebt,
		Currency: "USD",
		IsActive: true,
		PersonID: &person.ID,
	}
	if err := db.Create(account).Error; err != nil {
		t.Fatalf("failed to create test debt account: %v", err)
	}

	person.AccountID = &account.ID
	if err := db.Model(person).Update("account_id", account.ID).Error; err != nil {
		t.Fatalf("failed to link test debt account: %v", err)
	}
	return person
}

// CreateTestShop creates a shop.
func CreateTestShop(t *testing.T, db *gorm.DB, userID string) *models.Shop {
	t.Helper()

	shop := &models.Shop{
		UserID: userID,
		Name:   fmt.Sprintf("Test Shop %d", nextID()),
	}
	if err := db.Create(shop).Error; err != nil {
		t.Fatalf("failed to create test shop: %v", err)
	}
	return shop
}

// CreateTestTransaction creates a posted transaction of the given type and
// amount (in minor units).
func CreateTestTransaction(t *testing.T, db *gorm.DB, userID, accountID string, txType models.TransactionType, amount int64) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		UserID:         userID,
		AccountID:      accountID,
		Type:           txType,
		Status:         models.TransactionStatusPosted,
		Amount:         amount,
		OriginalAmount: amount,
		OccurredAt:     time.Now(),
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}
