package withdrawal

import (
	"context"
	"errors"
	"strings"
	"time"

	accountDomain "cryptolend/internal/domain/account"
	"cryptolend/internal/domain/uow"
	withdrawalDomain "cryptolend/internal/domain/withdrawal"
	"cryptolend/internal/usecase/ledger"
	"cryptolend/pkg/id"
	"cryptolend/pkg/money"

	"gorm.io/gorm"
)

type Usecase struct {
	uow         uow.UnitOfWork
	withdrawals withdrawalDomain.Repository
}

func NewUsecase(tx uow.UnitOfWork, r withdrawalDomain.Repository) *Usecase {
	return &Usecase{uow: tx, withdrawals: r}
}

type RegisterBeneficiaryInput struct {
	UserID        string `json:"user_id"`
	BlockchainKey string `json:"blockchain_key"`
	TokenID       string `json:"token_id"`
	Address       string `json:"address"`
}

func (u *Usecase) RegisterBeneficiary(ctx context.Context, in RegisterBeneficiaryInput) (*withdrawalDomain.Beneficiary, error) {
	if in.UserID == "" || in.Address == "" {
		return nil, withdrawalDomain.ErrBeneficiaryNotFound
	}
	b := &withdrawalDomain.Beneficiary{
		BeneficiaryID:         id.NewID32(),
		UserID:                in.UserID,
		CurrencyBlockchainKey: in.BlockchainKey,
		CurrencyTokenID:       strings.ToLower(in.TokenID),
		Address:               strings.ToLower(in.Address),
	}
	if err := u.withdrawals.CreateBeneficiary(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

type RequestInput struct {
	BeneficiaryID string    `json:"beneficiary_id"`
	Amount        string    `json:"amount"`
	RequestDate   time.Time `json:"request_date"`
}

// Request opens a withdrawal after checking the requested amount against the
// derived main-account balance, and debits the ledger in the same
// transaction so a second request cannot spend the same funds.
func (u *Usecase) Request(ctx context.Context, in RequestInput) (*withdrawalDomain.Withdrawal, error) {
	if !money.IsPositive(in.Amount) {
		return nil, money.ErrInvalidAmount
	}

	var out *withdrawalDomain.Withdrawal
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		b, err := r.Withdrawals.GetBeneficiaryByID(ctx, in.BeneficiaryID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return withdrawalDomain.ErrBeneficiaryNotFound
			}
			return err
		}

		acct, err := r.Accounts.GetByOwner(ctx, b.UserID,
			b.CurrencyBlockchainKey, b.CurrencyTokenID, accountDomain.TypeMain)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return withdrawalDomain.ErrInsufficientBalance
			}
			return err
		}
		balance, err := r.Accounts.SumEntries(ctx, acct.ID)
		if err != nil {
			return err
		}
		if !money.GTE(balance, in.Amount) {
			return withdrawalDomain.ErrInsufficientBalance
		}

		requestDate := in.RequestDate.UTC()
		w := &withdrawalDomain.Withdrawal{
			WithdrawalID:  id.NewID32(),
			BeneficiaryID: b.ID,
			Amount:        in.Amount,
			RequestAmount: in.Amount,
			Status:        withdrawalDomain.StatusRequested,
			RequestDate:   requestDate,
		}
		if err := r.Withdrawals.Create(ctx, w); err != nil {
			return err
		}

		debit, err := money.Neg(in.Amount)
		if err != nil {
			return err
		}
		if err := r.Accounts.AppendEntry(ctx, &accountDomain.MutationEntry{
			AccountID:    acct.ID,
			MutationType: accountDomain.MutationWithdrawal,
			MutationDate: requestDate,
			Amount:       debit,
		}); err != nil {
			return err
		}
		out = w
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// MarkSent records the on-chain send. The sent amount may differ from the
// requested amount by the network fee.
func (u *Usecase) MarkSent(ctx context.Context, withdrawalID, sentAmount, sentHash string, at time.Time) (*withdrawalDomain.Withdrawal, error) {
	return u.transition(ctx, withdrawalID, func(w *withdrawalDomain.Withdrawal) error {
		if w.Status != withdrawalDomain.StatusRequested {
			return withdrawalDomain.ErrInvalidTransition
		}
		at := at.UTC()
		w.Status = withdrawalDomain.StatusSent
		w.SentAmount = &sentAmount
		w.SentHash = &sentHash
		w.SentDate = &at
		return nil
	})
}

func (u *Usecase) Confirm(ctx context.Context, withdrawalID string, at time.Time) (*withdrawalDomain.Withdrawal, error) {
	return u.transition(ctx, withdrawalID, func(w *withdrawalDomain.Withdrawal) error {
		if w.Status != withdrawalDomain.StatusSent {
			return withdrawalDomain.ErrInvalidTransition
		}
		at := at.UTC()
		w.Status = withdrawalDomain.StatusConfirmed
		w.ConfirmedDate = &at
		return nil
	})
}

// Fail moves a requested or sent withdrawal to Failed, parking it for the
// admin refund decision.
func (u *Usecase) Fail(ctx context.Context, withdrawalID, reason string, at time.Time) (*withdrawalDomain.Withdrawal, error) {
	return u.transition(ctx, withdrawalID, func(w *withdrawalDomain.Withdrawal) error {
		if w.Status.Terminal() {
			return withdrawalDomain.ErrTerminal
		}
		if w.Status != withdrawalDomain.StatusRequested && w.Status != withdrawalDomain.StatusSent {
			return withdrawalDomain.ErrInvalidTransition
		}
		at := at.UTC()
		w.Status = withdrawalDomain.StatusFailed
		w.FailedDate = &at
		w.FailureReason = reason
		return nil
	})
}

// ApproveRefund is the admin gate: only a Failed withdrawal qualifies, and
// approval credits the debited amount back to the ledger.
func (u *Usecase) ApproveRefund(ctx context.Context, withdrawalID string, at time.Time) (*withdrawalDomain.Withdrawal, error) {
	var out *withdrawalDomain.Withdrawal
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		w, err := r.Withdrawals.GetByWithdrawalIDForUpdate(ctx, withdrawalID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return withdrawalDomain.ErrNotFound
			}
			return err
		}
		if w.Status != withdrawalDomain.StatusFailed {
			return withdrawalDomain.ErrNotFailed
		}
		at := at.UTC()
		w.Status = withdrawalDomain.StatusRefundApproved
		w.FailureRefundApprovedDate = &at
		if err := r.Withdrawals.Save(ctx, w); err != nil {
			return err
		}

		b, err := u.beneficiaryOf(ctx, r, w)
		if err != nil {
			return err
		}
		acct, err := ledger.GetOrCreate(ctx, r.Accounts, b.UserID,
			b.CurrencyBlockchainKey, b.CurrencyTokenID, accountDomain.TypeMain)
		if err != nil {
			return err
		}
		if err := r.Accounts.AppendEntry(ctx, &accountDomain.MutationEntry{
			AccountID:    acct.ID,
			MutationType: accountDomain.MutationWithdrawalRefund,
			MutationDate: at,
			Amount:       w.RequestAmount,
		}); err != nil {
			return err
		}
		out = w
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// RejectRefund is the admin gate's other arm; the debit stands.
func (u *Usecase) RejectRefund(ctx context.Context, withdrawalID string, at time.Time) (*withdrawalDomain.Withdrawal, error) {
	return u.transition(ctx, withdrawalID, func(w *withdrawalDomain.Withdrawal) error {
		if w.Status != withdrawalDomain.StatusFailed {
			return withdrawalDomain.ErrNotFailed
		}
		at := at.UTC()
		w.Status = withdrawalDomain.StatusRefundRejected
		w.FailureRefundRejectedDate = &at
		return nil
	})
}

func (u *Usecase) Get(ctx context.Context, withdrawalID string) (*withdrawalDomain.Withdrawal, error) {
	w, err := u.withdrawals.GetByWithdrawalID(ctx, withdrawalID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, withdrawalDomain.ErrNotFound
	}
	return w, err
}

func (u *Usecase) transition(ctx context.Context, withdrawalID string, apply func(*withdrawalDomain.Withdrawal) error) (*withdrawalDomain.Withdrawal, error) {
	var out *withdrawalDomain.Withdrawal
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		w, err := r.Withdrawals.GetByWithdrawalIDForUpdate(ctx, withdrawalID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return withdrawalDomain.ErrNotFound
			}
			return err
		}
		if err := apply(w); err != nil {
			return err
		}
		if err := r.Withdrawals.Save(ctx, w); err != nil {
			return err
		}
		out = w
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// beneficiaryOf loads the beneficiary row behind a withdrawal. The numeric
// FK has no direct getter on the repository, so resolve through the public
// id when available.
func (u *Usecase) beneficiaryOf(ctx context.Context, r uow.Repos, w *withdrawalDomain.Withdrawal) (*withdrawalDomain.Beneficiary, error) {
	b, err := r.Withdrawals.GetBeneficiaryByNumericID(ctx, w.BeneficiaryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, withdrawalDomain.ErrBeneficiaryNotFound
		}
		return nil, err
	}
	return b, nil
}
