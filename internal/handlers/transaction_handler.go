package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "moneta/internal/errors"
	"moneta/internal/models"
	"moneta/internal/pagination"
	"moneta/internal/services"
	"moneta/internal/uuid"
)

// TransactionHandler handles transaction and refund-chain requests.
type TransactionHandler struct {
	transactionService services.TransactionServicer
	refundService      services.RefundServicer
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transactionService services.TransactionServicer, refundService services.RefundServicer) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService, refundService: refundService}
}

// TransactionRequest represents the request payload for creating or updating
// a transaction. Amount is the original, pre-cashback value in minor units;
// cashback_share_percent is expressed in percent (10 means 10%).
type TransactionRequest struct {
	Type            models.TransactionType `json:"type" binding:"required,transaction_type"`
	Amount          int64                  `json:"amount" binding:"required,gt=0"`
	AccountID       string                 `json:"account_id" binding:"required,uuid"`
	TargetAccountID *string                `json:"target_account_id" binding:"omitempty,uuid"`
	CategoryID      *string                `json:"category_id" binding:"omitempty,uuid"`
	ShopID          *string                `json:"shop_id" binding:"omitempty,uuid"`
	PersonID        *string                `json:"person_id" binding:"omitempty,uuid"`

	CashbackSharePercent float64 `json:"cashback_share_percent" binding:"omitempty,min=0,max=100"`
	CashbackShareFixed   int64   `json:"cashback_share_fixed" binding:"omitempty,min=0"`

	DiscountCategoryID *string `json:"discount_category_id" binding:"omitempty,uuid"`

	Tag  string  `json:"tag" binding:"max=120"`
	Note string  `json:"note" binding:"max=500"`
	Date *string `json:"date"`
}

func (r *TransactionRequest) toInput() (services.TransactionInput, error) {
	input := services.TransactionInput{
		Type:                 r.Type,
		Amount:               r.Amount,
		AccountID:            r.AccountID,
		TargetAccountID:      r.TargetAccountID,
		CategoryID:           r.CategoryID,
		ShopID:               r.ShopID,
		PersonID:             r.PersonID,
		CashbackSharePercent: r.CashbackSharePercent,
		CashbackShareFixed:   r.CashbackShareFixed,
		DiscountCategoryID:   r.DiscountCategoryID,
		Tag:                  r.Tag,
		Note:                 r.Note,
	}
	if r.Date != nil && *r.Date != "" {
		parsed, err := parseFlexibleTime(*r.Date)
		if err != nil {
			return input, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
		}
		input.OccurredAt = parsed
	}
	return input, nil
}

// CreateTransaction handles the creation of a new transaction
// @Summary     Create a transaction
// @Description Create a transaction. Debt/transfer amounts are settled net of cashback; the billing cycle tag is resolved and frozen at creation.
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body TransactionRequest true "Transaction details"
// @Success     201 {object} MessageResponse "Transaction created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions [post]
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	input, err := req.toInput()
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.CreateTransaction(userID, input)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"transaction": transaction})
}

// UpdateTransaction handles updating an existing transaction
// @Summary     Update transaction
// @Description Edit the header fields of a transaction. Rejected while other transactions reference it through the refund chain.
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string             true "Transaction ID"
// @Param       request body TransactionRequest true "Updated fields"
// @Success     200 {object} MessageResponse "Updated transaction"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     409 {object} ErrorResponse "Transaction has linked children"
// @Router      /transactions/{id} [put]
func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	input, err := req.toInput()
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.UpdateTransaction(userID, transactionID, input)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

// GetTransactionByID handles the retrieval of a specific transaction
// @Summary     Get transaction by ID
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     200 {object} MessageResponse "Transaction details"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Router      /transactions/{id} [get]
func (h *TransactionHandler) GetTransactionByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.GetTransactionByID(userID, transactionID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

// GetUserTransactions handles the retrieval of all transactions for the user
// @Summary     List transactions
// @Description Get a paginated list of transactions with optional filters
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       page       query int    false "Page number (default 1)"
// @Param       page_size  query int    false "Items per page (default 20, max 100)"
// @Param       from_date  query string false "Filter by start date (RFC3339 or YYYY-MM-DD)"
// @Param       to_date    query string false "Filter by end date (RFC3339 or YYYY-MM-DD)"
// @Param       type       query string false "Filter by transaction type"
// @Param       status     query string false "Filter by status (posted, pending, void)"
// @Param       account_id query string false "Filter by account ID"
// @Param       category_id query string false "Filter by category ID"
// @Param       person_id  query string false "Filter by person ID"
// @Param       cycle_tag  query string false "Filter by billing cycle tag (YYYY-MM-DD)"
// @Success     200 {object} pagination.PageResponse[models.Transaction] "Paginated transactions"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /transactions [get]
func (h *TransactionHandler) GetUserTransactions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	filter, err := parseTransactionFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.transactionService.GetUserTransactions(userID, page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func parseTransactionFilter(c *gin.Context) (services.TransactionFilter, error) {
	var filter services.TransactionFilter

	if v := c.Query("from_date"); v != "" {
		t, err := parseFlexibleTime(v)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid from_date format, use RFC3339 or YYYY-MM-DD")
		}
		filter.FromDate = &t
	}

	if v := c.Query("to_date"); v != "" {
		t, err := parseFlexibleTime(v)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid to_date format, use RFC3339 or YYYY-MM-DD")
		}
		filter.ToDate = &t
	}

	if v := c.Query("type"); v != "" {
		txType := models.TransactionType(v)
		switch txType {
		case models.TransactionTypeExpense, models.TransactionTypeIncome,
			models.TransactionTypeDebt, models.TransactionTypeTransfer,
			models.TransactionTypeRepayment:
			filter.Type = &txType
		default:
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid type, must be expense, income, debt, transfer, or repayment")
		}
	}

	if v := c.Query("status"); v != "" {
		status := models.TransactionStatus(v)
		switch status {
		case models.TransactionStatusPosted, models.TransactionStatusPending, models.TransactionStatusVoid:
			filter.Status = &status
		default:
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid status, must be posted, pending, or void")
		}
	}

	for param, target := range map[string]**string{
		"account_id":  &filter.AccountID,
		"category_id": &filter.CategoryID,
		"person_id":   &filter.PersonID,
	} {
		if v := c.Query(param); v != "" {
			if !uuid.IsValid(v) {
				return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid "+param)
			}
			value := v
			*target = &value
		}
	}

	if v := c.Query("cycle_tag"); v != "" {
		if _, err := time.Parse("2006-01-02", v); err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid cycle_tag, use YYYY-MM-DD")
		}
		tag := v
		filter.CycleTag = &tag
	}

	return filter, nil
}

// VoidTransaction handles voiding a transaction
// @Summary     Void transaction
// @Description Mark a transaction void, rolling back any refund-chain state it holds. Rejected while non-void children reference it.
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     200 {object} MessageResponse "Voided transaction"
// @Failure     400 {object} ErrorResponse "Transaction already void"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     409 {object} ErrorResponse "Transaction has active children"
// @Router      /transactions/{id}/void [post]
func (h *TransactionHandler) VoidTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.VoidTransaction(userID, transactionID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

// RestoreTransaction handles restoring a void transaction
// @Summary     Restore transaction
// @Description Set a void transaction back to posted
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     200 {object} MessageResponse "Restored transaction"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Router      /transactions/{id}/restore [post]
func (h *TransactionHandler) RestoreTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.RestoreTransaction(userID, transactionID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

// RequestRefundRequest represents the request payload for opening a refund
type RequestRefundRequest struct {
	Amount  int64 `json:"amount" binding:"omitempty,gt=0"`
	Partial bool  `json:"partial"`
}

// RequestRefund handles opening a refund against a transaction
// @Summary     Request a refund
// @Description Open a refund request for a transaction's refundable cost line. The requested amount is clamped to the refundable value; omit it for a full refund.
// @Tags        refunds
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string               true  "Original transaction ID"
// @Param       request body RequestRefundRequest false "Refund amount"
// @Success     201 {object} MessageResponse "Refund request created"
// @Failure     400 {object} ErrorResponse "No refundable line or zero amount"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Router      /transactions/{id}/refund [post]
func (h *TransactionHandler) RequestRefund(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req RequestRefundRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	request, err := h.refundService.RequestRefund(userID, transactionID, req.Amount, req.Partial)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"transaction": request})
}

// ConfirmRefundRequest represents the request payload for confirming a refund
type ConfirmRefundRequest struct {
	TargetAccountID string `json:"target_account_id" binding:"required,uuid"`
}

// ConfirmRefund handles confirming an open refund request
// @Summary     Confirm a refund
// @Description Confirm an open refund request, posting the money to the target account as an income
// @Tags        refunds
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string               true "Refund request transaction ID"
// @Param       request body ConfirmRefundRequest true "Target account"
// @Success     201 {object} MessageResponse "Refund confirmed"
// @Failure     400 {object} ErrorResponse "Not an open refund request"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Router      /transactions/{id}/refund/confirm [post]
func (h *TransactionHandler) ConfirmRefund(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ConfirmRefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	confirmation, err := h.refundService.ConfirmRefund(userID, transactionID, req.TargetAccountID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"transaction": confirmation})
}
