package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "moneta/internal/errors"
	"moneta/internal/models"
	"moneta/internal/pagination"
	"moneta/internal/services"
	"moneta/internal/validator"
)

// --- mock services ---

type mockTransactionService struct {
	createTransactionFn   func(userID string, input services.TransactionInput) (*models.Transaction, error)
	updateTransactionFn   func(userID, transactionID string, input services.TransactionInput) (*models.Transaction, error)
	voidTransactionFn     func(userID, transactionID string) (*models.Transaction, error)
	restoreTransactionFn  func(userID, transactionID string) (*models.Transaction, error)
	getTransactionByIDFn  func(userID, transactionID string) (*models.Transaction, error)
	getUserTransactionsFn func(userID string, page pagination.PageRequest, filter services.TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
}

func (m *mockTransactionService) CreateTransaction(userID string, input services.TransactionInput) (*models.Transaction, error) {
	if m.createTransactionFn != nil {
		return m.createTransactionFn(userID, input)
	}
	return &models.Transaction{}, nil
}

func (m *mockTransactionService) UpdateTransaction(userID, transactionID string, input services.TransactionInput) (*models.Transaction, error) {
	if m.updateTransactionFn != nil {
		return m.updateTransactionFn(userID, transactionID, input)
	}
	return &models.Transaction{}, nil
}

func (m *mockTransactionService) VoidTransaction(userID, transactionID string) (*models.Transaction, error) {
	if m.voidTransactionFn != nil {
		return m.voidTransactionFn(userID, transactionID)
	}
	return &models.Transaction{}, nil
}

func (m *mockTransactionService) RestoreTransaction(userID, transactionID string) (*models.Transaction, error) {
	if m.restoreTransactionFn != nil {
		return m.restoreTransactionFn(userID, transactionID)
	}
	return &models.Transaction{}, nil
}

func (m *mockTransactionService) GetTransactionByID(userID, transactionID string) (*models.Transaction, error) {
	if m.getTransactionByIDFn != nil {
		return m.getTransactionByIDFn(userID, transactionID)
	}
	return &models.Transaction{}, nil
}

func (m *mockTransactionService) GetUserTransactions(userID string, page pagination.PageRequest, filter services.TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	if m.getUserTransactionsFn != nil {
		return m.getUserTransactionsFn(userID, page, filter)
	}
	resp := pagination.NewPageResponse([]models.Transaction{}, 1, 20, 0)
	return &resp, nil
}

var _ services.TransactionServicer = (*mockTransactionService)(nil)

type mockRefundService struct {
	requestRefundFn func(userID, originalID string, amount int64, partial bool) (*models.Transaction, error)
	confirmRefundFn func(userID, pendingID, targetAccountID string) (*models.Transaction, error)
}

func (m *mockRefundService) RequestRefund(userID, originalID string, amount int64, partial bool) (*models.Transaction, error) {
	if m.requestRefundFn != nil {
		return m.requestRefundFn(userID, originalID, amount, partial)
	}
	return &models.Transaction{}, nil
}

func (m *mockRefundService) ConfirmRefund(userID, pendingID, targetAccountID string) (*models.Transaction, error) {
	if m.confirmRefundFn != nil {
		return m.confirmRefundFn(userID, pendingID, targetAccountID)
	}
	return &models.Transaction{}, nil
}

var _ services.RefundServicer = (*mockRefundService)(nil)

// --- test helpers ---

const (
	testUserID        = "00000000-0000-0000-0000-0000000000aa"
	testTransactionID = "00000000-0000-0000-0000-0000000000bb"
	testAccountID     = "00000000-0000-0000-0000-0000000000cc"
)

func init() {
	gin.SetMode(gin.TestMode)
	validator.Register()
}

func injectUserID(uid string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", uid)
		c.Next()
	}
}

func setupTransactionRouter(handler *TransactionHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectUserID(testUserID))
	auth.POST("/transactions", handler.CreateTransaction)
	auth.GET("/transactions", handler.GetUserTransactions)
	auth.GET("/transactions/:id", handler.GetTransactionByID)
	auth.PUT("/transactions/:id", handler.UpdateTransaction)
	auth.POST("/transactions/:id/void", handler.VoidTransaction)
	auth.POST("/transactions/:id/restore", handler.RestoreTransaction)
	auth.POST("/transactions/:id/refund", handler.RequestRefund)
	auth.POST("/transactions/:id/refund/confirm", handler.ConfirmRefund)
	return r
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func assertErrorCode(t *testing.T, result map[string]interface{}, code string) {
	t.Helper()
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object in response, got: %v", result)
	}
	if errObj["code"] != code {
		t.Errorf("expected error code %q, got %q", code, errObj["code"])
	}
}

// --- tests ---

func TestTransactionHandler_CreateTransaction(t *testing.T) {
	t.Run("returns 201 and forwards the input", func(t *testing.T) {
		txSvc := &mockTransactionService{
			createTransactionFn: func(userID string, input services.TransactionInput) (*models.Transaction, error) {
				if userID != testUserID {
					t.Errorf("user id = %s, want %s", userID, testUserID)
				}
				if input.CashbackSharePercent != 10 {
					t.Errorf("cashback percent = %f, want 10", input.CashbackSharePercent)
				}
				return &models.Transaction{
					Base:   models.Base{ID: testTransactionID},
					UserID: userID,
					Type:   input.Type,
					Amount: 900000,
				}, nil
			},
		}
		handler := NewTransactionHandler(txSvc, &mockRefundService{})
		r := setupTransactionRouter(handler)

		rec := doRequest(r, "POST", "/transactions",
			`{"type":"debt","amount":1000000,"account_id":"`+testAccountID+`","target_account_id":"`+testAccountID+`","cashback_share_percent":10}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		tx := result["transaction"].(map[string]interface{})
		if tx["amount"].(float64) != 900000 {
			t.Errorf("expected amount 900000, got %v", tx["amount"])
		}
	})

	t.Run("returns 400 on missing account_id", func(t *testing.T) {
		handler := NewTransactionHandler(&mockTransactionService{}, &mockRefundService{})
		r := setupTransactionRouter(handler)

		rec := doRequest(r, "POST", "/transactions", `{"type":"expense","amount":5000}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 400 on unknown type", func(t *testing.T) {
		handler := NewTransactionHandler(&mockTransactionService{}, &mockRefundService{})
		r := setupTransactionRouter(handler)

		rec := doRequest(r, "POST", "/transactions",
			`{"type":"mystery","amount":5000,"account_id":"`+testAccountID+`"}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 400 on invalid date", func(t *testing.T) {
		handler := NewTransactionHandler(&mockTransactionService{}, &mockRefundService{})
		r := setupTransactionRouter(handler)

		rec := doRequest(r, "POST", "/transactions",
			`{"type":"expense","amount":5000,"account_id":"`+testAccountID+`","date":"yesterday"}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestTransactionHandler_VoidTransaction(t *testing.T) {
	t.Run("returns 409 when children block the void", func(t *testing.T) {
		txSvc := &mockTransactionService{
			voidTransactionFn: func(_, _ string) (*models.Transaction, error) {
				return nil, apperrors.ErrHasActiveChildren
			},
		}
		handler := NewTransactionHandler(txSvc, &mockRefundService{})
		r := setupTransactionRouter(handler)

		rec := doRequest(r, "POST", "/transactions/"+testTransactionID+"/void", "")
		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), apperrors.ErrHasActiveChildren.Code)
	})

	t.Run("returns 400 on malformed id", func(t *testing.T) {
		handler := NewTransactionHandler(&mockTransactionService{}, &mockRefundService{})
		r := setupTransactionRouter(handler)

		rec := doRequest(r, "POST", "/transactions/not-a-uuid/void", "")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestTransactionHandler_RequestRefund(t *testing.T) {
	t.Run("returns 201 with an empty body for a full refund", func(t *testing.T) {
		refundSvc := &mockRefundService{
			requestRefundFn: func(_, originalID string, amount int64, partial bool) (*models.Transaction, error) {
				if originalID != testTransactionID {
					t.Errorf("original id = %s, want %s", originalID, testTransactionID)
				}
				if amount != 0 || partial {
					t.Errorf("empty body must request a full refund, got amount=%d partial=%v", amount, partial)
				}
				return &models.Transaction{Base: models.Base{ID: "req"}}, nil
			},
		}
		handler := NewTransactionHandler(&mockTransactionService{}, refundSvc)
		r := setupTransactionRouter(handler)

		rec := doRequest(r, "POST", "/transactions/"+testTransactionID+"/refund", "")
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("forwards a partial amount", func(t *testing.T) {
		refundSvc := &mockRefundService{
			requestRefundFn: func(_, _ string, amount int64, partial bool) (*models.Transaction, error) {
				if amount != 2000 || !partial {
					t.Errorf("got amount=%d partial=%v, want 2000/true", amount, partial)
				}
				return &models.Transaction{}, nil
			},
		}
		handler := NewTransactionHandler(&mockTransactionService{}, refundSvc)
		r := setupTransactionRouter(handler)

		rec := doRequest(r, "POST", "/transactions/"+testTransactionID+"/refund",
			`{"amount":2000,"partial":true}`)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
	})
}

func TestTransactionHandler_ConfirmRefund(t *testing.T) {
	t.Run("returns 400 when the target is not an open request", func(t *testing.T) {
		refundSvc := &mockRefundService{
			confirmRefundFn: func(_, _, _ string) (*models.Transaction, error) {
				return nil, apperrors.ErrNoPendingLine
			},
		}
		handler := NewTransactionHandler(&mockTransactionService{}, refundSvc)
		r := setupTransactionRouter(handler)

		rec := doRequest(r, "POST", "/transactions/"+testTransactionID+"/refund/confirm",
			`{"target_account_id":"`+testAccountID+`"}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), apperrors.ErrNoPendingLine.Code)
	})

	t.Run("returns 400 when target_account_id is missing", func(t *testing.T) {
		handler := NewTransactionHandler(&mockTransactionService{}, &mockRefundService{})
		r := setupTransactionRouter(handler)

		rec := doRequest(r, "POST", "/transactions/"+testTransactionID+"/refund/confirm", `{}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestTransactionHandler_GetUserTransactions(t *testing.T) {
	t.Run("parses cycle tag filter", func(t *testing.T) {
		txSvc := &mockTransactionService{
			getUserTransactionsFn: func(_ string, _ pagination.PageRequest, filter services.TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
				if filter.CycleTag == nil || *filter.CycleTag != "2026-02-10" {
					t.Errorf("cycle tag filter not forwarded: %+v", filter.CycleTag)
				}
				resp := pagination.NewPageResponse([]models.Transaction{}, 1, 20, 0)
				return &resp, nil
			},
		}
		handler := NewTransactionHandler(txSvc, &mockRefundService{})
		r := setupTransactionRouter(handler)

		rec := doRequest(r, "GET", "/transactions?cycle_tag=2026-02-10", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("rejects a malformed cycle tag", func(t *testing.T) {
		handler := NewTransactionHandler(&mockTransactionService{}, &mockRefundService{})
		r := setupTransactionRouter(handler)

		rec := doRequest(r, "GET", "/transactions?cycle_tag=feb", "")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}
