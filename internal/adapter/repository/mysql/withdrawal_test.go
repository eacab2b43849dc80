package mysql

import (
	"context"
	"errors"
	"testing"
	"time"

	withdrawalDomain "cryptolend/internal/domain/withdrawal"

	"gorm.io/gorm"
)

func TestWithdrawalRepositoryBeneficiaryLookups(t *testing.T) {
	ctx := context.Background()
	repo := NewWithdrawalRepository(openTestDB(t))

	b := &withdrawalDomain.Beneficiary{
		BeneficiaryID:         "b1f2e3d4c5b6a7988796a5b4c3d2e1f0",
		UserID:                "u1",
		CurrencyBlockchainKey: "ethereum-sepolia",
		CurrencyTokenID:       "0xtoken",
		Address:               "0xdest",
	}
	if err := repo.CreateBeneficiary(ctx, b); err != nil {
		t.Fatalf("create beneficiary: %v", err)
	}
	if b.ID == 0 {
		t.Fatal("numeric id not assigned")
	}

	byPublic, err := repo.GetBeneficiaryByID(ctx, b.BeneficiaryID)
	if err != nil {
		t.Fatalf("get by public id: %v", err)
	}
	byNumeric, err := repo.GetBeneficiaryByNumericID(ctx, b.ID)
	if err != nil {
		t.Fatalf("get by numeric id: %v", err)
	}
	if byPublic.ID != byNumeric.ID || byNumeric.Address != "0xdest" {
		t.Fatalf("lookups disagree: %+v vs %+v", byPublic, byNumeric)
	}

	if _, err := repo.GetBeneficiaryByID(ctx, "missing"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("err = %v, want ErrRecordNotFound", err)
	}
}

func TestWithdrawalRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewWithdrawalRepository(openTestDB(t))

	w := &withdrawalDomain.Withdrawal{
		WithdrawalID:  "w1a2b3c4d5e6f7081928374655647382",
		BeneficiaryID: 7,
		Amount:        "250000000",
		RequestAmount: "250000000",
		Status:        withdrawalDomain.StatusRequested,
		RequestDate:   time.Date(2026, 4, 2, 9, 0, 0, 0, time.UTC),
	}
	if err := repo.Create(ctx, w); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := repo.GetByWithdrawalIDForUpdate(ctx, w.WithdrawalID)
	if err != nil {
		t.Fatalf("get for update: %v", err)
	}
	sent := "250000000"
	hash := "0xabc"
	now := time.Now().UTC()
	got.Status = withdrawalDomain.StatusSent
	got.SentAmount = &sent
	got.SentHash = &hash
	got.SentDate = &now
	if err := repo.Save(ctx, got); err != nil {
		t.Fatalf("save: %v", err)
	}

	reread, err := repo.GetByWithdrawalID(ctx, w.WithdrawalID)
	if err != nil {
		t.Fatalf("reread: %v", err)
	}
	if reread.Status != withdrawalDomain.StatusSent || reread.SentHash == nil || *reread.SentHash != "0xabc" {
		t.Fatalf("after save: %+v", reread)
	}
}
