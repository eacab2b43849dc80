package mysql

import (
	"context"
	"errors"
	"testing"
	"time"

	accountDomain "cryptolend/internal/domain/account"
	invoiceDomain "cryptolend/internal/domain/invoice"
	"cryptolend/internal/domain/uow"

	"gorm.io/gorm"
)

func TestGormUoW_WithinTx_Commit(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	guow := NewGormUoW(db)

	err := guow.WithinTx(ctx, func(r uow.Repos) error {
		a := &accountDomain.Account{UserID: "u1", CurrencyBlockchainKey: "eth", AccountType: accountDomain.TypeMain}
		if err := r.Accounts.Create(ctx, a); err != nil {
			return err
		}
		return r.Accounts.AppendEntry(ctx, &accountDomain.MutationEntry{
			AccountID:    a.ID,
			MutationType: accountDomain.MutationDeposit,
			MutationDate: time.Now().UTC(),
			Amount:       "100",
		})
	})
	if err != nil {
		t.Fatalf("WithinTx commit: %v", err)
	}

	acc, err := NewAccountRepository(db).GetByOwner(ctx, "u1", "eth", "", accountDomain.TypeMain)
	if err != nil {
		t.Fatalf("account not visible after commit: %v", err)
	}
	bal, err := NewAccountRepository(db).SumEntries(ctx, acc.ID)
	if err != nil || bal != "100" {
		t.Fatalf("balance after commit = %q, %v", bal, err)
	}
}

func TestGormUoW_WithinTx_RollsBackEverything(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	guow := NewGormUoW(db)

	boom := errors.New("boom")
	err := guow.WithinTx(ctx, func(r uow.Repos) error {
		inv := makeInvoice(55, "0xroll")
		if err := r.Invoices.Create(ctx, inv); err != nil {
			return err
		}
		if err := r.Invoices.CreatePayment(ctx, &invoiceDomain.Payment{
			InvoiceID:   inv.ID,
			PaymentHash: "0xhash",
			Amount:      "10",
			PaymentDate: time.Now().UTC(),
		}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("WithinTx err = %v, want boom", err)
	}

	// nothing from the aborted transaction is observable
	if _, err := NewInvoiceRepository(db).GetByID(ctx, 55); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("invoice visible after rollback: %v", err)
	}
	var count int64
	if err := db.Model(&invoiceDomain.Payment{}).Count(&count).Error; err != nil {
		t.Fatalf("count payments: %v", err)
	}
	if count != 0 {
		t.Fatalf("payments after rollback = %d", count)
	}
}
