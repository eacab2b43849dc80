package ledger

import (
	"context"
	"errors"
	"time"

	"cryptolend/internal/domain/account"
	"cryptolend/pkg/money"

	"gorm.io/gorm"
)

type Usecase struct{ accounts account.Repository }

func NewUsecase(r account.Repository) *Usecase { return &Usecase{accounts: r} }

// GetOrCreate looks up the (user, currency, type) account and creates it on
// first use. Exported at package level so transactional callers can reuse it
// against their transaction-bound repository.
func GetOrCreate(ctx context.Context, r account.Repository, userID, blockchainKey, tokenID string, accountType account.Type) (*account.Account, error) {
	a, err := r.GetByOwner(ctx, userID, blockchainKey, tokenID, accountType)
	if err == nil {
		return a, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	a = &account.Account{
		UserID:                userID,
		CurrencyBlockchainKey: blockchainKey,
		CurrencyTokenID:       tokenID,
		AccountType:           accountType,
	}
	if err := r.Create(ctx, a); err != nil {
		// lost a create race; the row now exists
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return r.GetByOwner(ctx, userID, blockchainKey, tokenID, accountType)
		}
		return nil, err
	}
	return a, nil
}

func (u *Usecase) GetOrCreateAccount(ctx context.Context, userID, blockchainKey, tokenID string, accountType account.Type) (*account.Account, error) {
	return GetOrCreate(ctx, u.accounts, userID, blockchainKey, tokenID, accountType)
}

// Balance derives the account balance from its mutation entries.
func (u *Usecase) Balance(ctx context.Context, accountID uint64) (string, error) {
	return u.accounts.SumEntries(ctx, accountID)
}

// Append writes one immutable mutation entry. Amount is a signed integer
// string; zero entries are rejected.
func (u *Usecase) Append(ctx context.Context, accountID uint64, mutationType account.MutationType, amount string, at time.Time) (*account.MutationEntry, error) {
	n, err := money.Parse(amount)
	if err != nil {
		return nil, err
	}
	if n.Sign() == 0 {
		return nil, money.ErrInvalidAmount
	}
	e := &account.MutationEntry{
		AccountID:    accountID,
		MutationType: mutationType,
		MutationDate: at.UTC(),
		Amount:       amount,
	}
	if err := u.accounts.AppendEntry(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

type HistoryPage struct {
	Entries []account.MutationEntry `json:"entries"`
	Total   int64                   `json:"total"`
	Page    int                     `json:"page"`
	Size    int                     `json:"size"`
}

// History pages mutation entries ordered by mutation date descending.
// Pages are 1-based; size defaults to 20.
func (u *Usecase) History(ctx context.Context, accountID uint64, page, size int) (*HistoryPage, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 20
	}
	entries, total, err := u.accounts.ListEntries(ctx, accountID, (page-1)*size, size)
	if err != nil {
		return nil, err
	}
	return &HistoryPage{Entries: entries, Total: total, Page: page, Size: size}, nil
}
