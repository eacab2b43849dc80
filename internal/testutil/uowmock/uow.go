package uowmock

import (
	"context"

	"cryptolend/internal/domain/uow"
)

// UoW is a function-backed uow.UnitOfWork. Tests usually bind it straight
// to a Repos value built from the aggregate mocks.
type UoW struct {
	WithinTxFn func(ctx context.Context, fn func(r uow.Repos) error) error
}

func (m *UoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	return m.WithinTxFn(ctx, fn)
}

// Passthrough returns a UoW that simply runs fn against the given repos,
// with no transaction semantics.
func Passthrough(r uow.Repos) *UoW {
	return &UoW{
		WithinTxFn: func(ctx context.Context, fn func(r uow.Repos) error) error {
			return fn(r)
		},
	}
}
