package mysql

import (
	"context"
	"errors"
	"testing"

	currencyDomain "cryptolend/internal/domain/currency"

	"gorm.io/gorm"
)

func TestCurrencyRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewCurrencyRepository(openTestDB(t))

	seed := []currencyDomain.Currency{
		{BlockchainKey: "ethereum-sepolia", TokenID: "", Decimals: 18, Symbol: "ETH", Name: "Ether"},
		{BlockchainKey: "ethereum-sepolia", TokenID: "0xusdc", Decimals: 6, Symbol: "USDC", Name: "USD Coin"},
	}
	for i := range seed {
		if err := repo.Create(ctx, &seed[i]); err != nil {
			t.Fatalf("create %s: %v", seed[i].Symbol, err)
		}
	}

	got, err := repo.GetByChainToken(ctx, "ethereum-sepolia", "0xusdc")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Decimals != 6 || got.Symbol != "USDC" {
		t.Fatalf("currency: %+v", got)
	}

	// native coin keys on the empty token id
	native, err := repo.GetByChainToken(ctx, "ethereum-sepolia", "")
	if err != nil {
		t.Fatalf("get native: %v", err)
	}
	if native.Symbol != "ETH" {
		t.Fatalf("native: %+v", native)
	}

	if _, err := repo.GetByChainToken(ctx, "ethereum-sepolia", "0xunknown"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("err = %v, want ErrRecordNotFound", err)
	}

	dup := currencyDomain.Currency{BlockchainKey: "ethereum-sepolia", TokenID: "0xusdc"}
	if err := repo.Create(ctx, &dup); !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("err = %v, want ErrDuplicatedKey", err)
	}

	all, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("list length = %d", len(all))
	}
}
