package mysql

import (
	"context"

	"cryptolend/internal/domain/uow"

	"gorm.io/gorm"
)

type GormUoW struct{ db *gorm.DB }

func NewGormUoW(db *gorm.DB) *GormUoW { return &GormUoW{db: db} }

func reposFor(tx *gorm.DB) uow.Repos {
	return uow.Repos{
		Currencies:   &CurrencyRepository{db: tx},
		Accounts:     &AccountRepository{db: tx},
		Invoices:     &InvoiceRepository{db: tx},
		Offers:       &OfferRepository{db: tx},
		Applications: &ApplicationRepository{db: tx},
		Loans:        &LoanRepository{db: tx},
		Withdrawals:  &WithdrawalRepository{db: tx},
		Platform:     &PlatformRepository{db: tx},
	}
}

func (u *GormUoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(reposFor(tx))
	})
}
