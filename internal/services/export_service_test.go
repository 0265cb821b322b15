package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"moneta/internal/export"
	"moneta/internal/models"
	"moneta/internal/testutil"
)

// recordingSyncer captures sync calls for assertions.
type recordingSyncer struct {
	mu    sync.Mutex
	calls []syncCall
	done  chan struct{}
}

type syncCall struct {
	personID string
	payload  export.Payload
	action   export.Action
}

func newRecordingSyncer() *recordingSyncer {
	return &recordingSyncer{done: make(chan struct{}, 8)}
}

func (r *recordingSyncer) SyncTransaction(_ context.Context, personID string, payload export.Payload, action export.Action) error {
	r.mu.Lock()
	r.calls = append(r.calls, syncCall{personID: personID, payload: payload, action: action})
	r.mu.Unlock()
	r.done <- struct{}{}
	return nil
}

func (r *recordingSyncer) wait(t *testing.T) syncCall {
	t.Helper()
	select {
	case <-r.done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for sync dispatch")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[len(r.calls)-1]
}

func TestExporterDispatch(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	user := testutil.CreateTestUser(t, db)
	account := testutil.CreateTestAccount(t, db, user.ID, models.AccountTypeBank)
	person := testutil.CreateTestPerson(t, db, user.ID)
	shop := testutil.CreateTestShop(t, db, user.ID)

	syncer := newRecordingSyncer()
	exporter := NewExporterService(db, syncer)

	t.Run("skips transactions without a person link", func(t *testing.T) {
		tx := testutil.CreateTestTransaction(t, db, user.ID, account.ID, models.TransactionTypeExpense, 5000)
		exporter.Dispatch(tx, export.ActionCreate)

		select {
		case <-syncer.done:
			t.Fatal("person-less transaction must not be synced")
		case <-time.After(100 * time.Millisecond):
		}
	})

	t.Run("syncs person-linked transactions with shop name", func(t *testing.T) {
		tx := testutil.CreateTestTransaction(t, db, user.ID, account.ID, models.TransactionTypeDebt, 900000)
		tx.OriginalAmount = 1000000
		tx.PersonID = &person.ID
		tx.ShopID = &shop.ID
		testutil.AssertNoError(t, db.Save(tx).Error)

		exporter.Dispatch(tx, export.ActionCreate)
		call := syncer.wait(t)

		if call.personID != person.ID {
			t.Errorf("synced person %s, want %s", call.personID, person.ID)
		}
		if call.action != export.ActionCreate {
			t.Errorf("action = %s, want create", call.action)
		}
		if call.payload.TransactionID != tx.ID {
			t.Errorf("payload transaction id = %s, want %s", call.payload.TransactionID, tx.ID)
		}
		if call.payload.OriginalAmount == nil || *call.payload.OriginalAmount != 1000000 {
			t.Error("payload must carry the pre-cashback original amount")
		}
		if call.payload.ShopName != shop.Name {
			t.Errorf("payload shop name = %q, want %q", call.payload.ShopName, shop.Name)
		}
	})

	t.Run("omits original amount when equal to net", func(t *testing.T) {
		tx := testutil.CreateTestTransaction(t, db, user.ID, account.ID, models.TransactionTypeExpense, 5000)
		tx.PersonID = &person.ID
		testutil.AssertNoError(t, db.Save(tx).Error)

		exporter.Dispatch(tx, export.ActionDelete)
		call := syncer.wait(t)

		if call.action != export.ActionDelete {
			t.Errorf("action = %s, want delete", call.action)
		}
		if call.payload.OriginalAmount != nil {
			t.Error("payload must omit original amount when it matches the net")
		}
	})
}
