package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"moneta/internal/export"
	"moneta/internal/logger"
	"moneta/internal/models"
)

const exportTimeout = 15 * time.Second

// exporterService pushes person-linked transactions to the spreadsheet
// side-channel off the caller's critical path. Failures are logged and
// dropped; they must never fail or roll back a ledger mutation, and they
// are not retried.
type exporterService struct {
	db     *gorm.DB
	syncer export.Syncer
}

// NewExporterService creates a new ExporterServicer. A nil syncer disables
// export entirely.
func NewExporterService(db *gorm.DB, syncer export.Syncer) ExporterServicer {
	return &exporterService{db: db, syncer: syncer}
}

// Dispatch fires a sync for the transaction if it carries a person link.
func (s *exporterService) Dispatch(transaction *models.Transaction, action export.Action) {
	if s.syncer == nil || transaction == nil || transaction.PersonID == nil {
		return
	}

	payload := s.buildPayload(transaction)
	personID := *transaction.PersonID

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), exportTimeout)
		defer cancel()

		if err := s.syncer.SyncTransaction(ctx, personID, payload, action); err != nil {
			logger.Get().Errorw("transaction export failed",
				"error", err,
				"transaction_id", payload.TransactionID,
				"person_id", personID,
				"action", action,
			)
		}
	}()
}

func (s *exporterService) buildPayload(transaction *models.Transaction) export.Payload {
	payload := export.Payload{
		TransactionID:        transaction.ID,
		OccurredAt:           transaction.OccurredAt,
		Note:                 transaction.Note,
		Tag:                  transaction.Tag,
		Amount:               transaction.Amount,
		CashbackSharePercent: transaction.CashbackSharePercent,
		CashbackShareFixed:   transaction.CashbackShareFixed,
	}

	if transaction.OriginalAmount != transaction.Amount {
		original := transaction.OriginalAmount
		payload.OriginalAmount = &original
	}

	if transaction.ShopID != nil {
		var shop models.Shop
		if err := s.db.Where("id = ?", *transaction.ShopID).First(&shop).Error; err == nil {
			payload.ShopName = shop.Name
		}
	}

	return payload
}
