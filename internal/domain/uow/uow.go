package uow

import (
	"context"

	"cryptolend/internal/domain/account"
	"cryptolend/internal/domain/application"
	"cryptolend/internal/domain/currency"
	"cryptolend/internal/domain/invoice"
	"cryptolend/internal/domain/loan"
	"cryptolend/internal/domain/offer"
	"cryptolend/internal/domain/platform"
	"cryptolend/internal/domain/withdrawal"
)

type Repos struct {
	Currencies   currency.Repository
	Accounts     account.Repository
	Invoices     invoice.Repository
	Offers       offer.Repository
	Applications application.Repository
	Loans        loan.Repository
	Withdrawals  withdrawal.Repository
	Platform     platform.Repository
}

// UnitOfWork runs fn with every repository bound to one database
// transaction. Any error aborts the whole transaction; partial application
// of a multi-entity transition is never observable.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(r Repos) error) error
}
