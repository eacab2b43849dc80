package mysql

import (
	"context"
	"errors"
	"testing"
	"time"

	invoiceDomain "cryptolend/internal/domain/invoice"
)

func makeInvoice(id int64, addr string) *invoiceDomain.Invoice {
	return &invoiceDomain.Invoice{
		ID:                    id,
		UserID:                "u1",
		CurrencyBlockchainKey: "eth",
		CurrencyTokenID:       "",
		InvoiceType:           invoiceDomain.TypeLoanPrincipal,
		InvoicedAmount:        "1000",
		PaidAmount:            "0",
		WalletAddress:         addr,
		WalletDerivationPath:  "m/44'/60'/0'/0/7",
		Status:                invoiceDomain.StatusPending,
		InvoiceDate:           time.Now().UTC(),
	}
}

func TestInvoiceRepository_PreassignedID(t *testing.T) {
	db := openTestDB(t)
	repo := NewInvoiceRepository(db)
	ctx := context.Background()

	inv := makeInvoice(73014444032, "0xabc")
	if err := repo.Create(ctx, inv); err != nil {
		t.Fatalf("Create: %v", err)
	}
	got, err := repo.GetByID(ctx, 73014444032)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.ID != 73014444032 {
		t.Fatalf("id = %d", got.ID)
	}
}

func TestInvoiceRepository_DuplicatePaymentRejected(t *testing.T) {
	db := openTestDB(t)
	repo := NewInvoiceRepository(db)
	ctx := context.Background()

	inv := makeInvoice(1, "0xabc")
	if err := repo.Create(ctx, inv); err != nil {
		t.Fatalf("Create: %v", err)
	}

	p := &invoiceDomain.Payment{
		InvoiceID:   inv.ID,
		PaymentHash: "0xdeadbeef",
		Amount:      "1000",
		PaymentDate: time.Now().UTC(),
	}
	if err := repo.CreatePayment(ctx, p); err != nil {
		t.Fatalf("first CreatePayment: %v", err)
	}

	dup := &invoiceDomain.Payment{
		InvoiceID:   inv.ID,
		PaymentHash: "0xdeadbeef",
		Amount:      "1000",
		PaymentDate: time.Now().UTC(),
	}
	if err := repo.CreatePayment(ctx, dup); !errors.Is(err, invoiceDomain.ErrDuplicatePayment) {
		t.Fatalf("duplicate payment: got %v, want ErrDuplicatePayment", err)
	}

	// same hash on another invoice is a different payment
	inv2 := makeInvoice(2, "0xdef")
	if err := repo.Create(ctx, inv2); err != nil {
		t.Fatalf("Create inv2: %v", err)
	}
	other := &invoiceDomain.Payment{
		InvoiceID:   inv2.ID,
		PaymentHash: "0xdeadbeef",
		Amount:      "5",
		PaymentDate: time.Now().UTC(),
	}
	if err := repo.CreatePayment(ctx, other); err != nil {
		t.Fatalf("cross-invoice payment: %v", err)
	}
}

func TestInvoiceRepository_ListPendingDue(t *testing.T) {
	db := openTestDB(t)
	repo := NewInvoiceRepository(db)
	ctx := context.Background()

	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	due := makeInvoice(10, "0x1")
	due.DueDate = &past
	notDue := makeInvoice(11, "0x2")
	notDue.DueDate = &future
	noDue := makeInvoice(12, "0x3")

	for _, inv := range []*invoiceDomain.Invoice{due, notDue, noDue} {
		if err := repo.Create(ctx, inv); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	got, err := repo.ListPendingDue(ctx, now, 100)
	if err != nil {
		t.Fatalf("ListPendingDue: %v", err)
	}
	if len(got) != 1 || got[0].ID != 10 {
		t.Fatalf("ListPendingDue = %+v", got)
	}
}

func TestInvoiceRepository_ListPendingPages(t *testing.T) {
	db := openTestDB(t)
	repo := NewInvoiceRepository(db)
	ctx := context.Background()

	for i := int64(1); i <= 4; i++ {
		inv := makeInvoice(i, "0xaddr")
		if i == 4 {
			inv.Status = invoiceDomain.StatusPaid
		}
		if err := repo.Create(ctx, inv); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	first, err := repo.ListPending(ctx, 0, 2)
	if err != nil {
		t.Fatalf("ListPending: %v", err)
	}
	second, err := repo.ListPending(ctx, 2, 2)
	if err != nil {
		t.Fatalf("ListPending page 2: %v", err)
	}
	if len(first) != 2 || len(second) != 1 {
		t.Fatalf("pages = %d, %d", len(first), len(second))
	}
}
