package mysql

import (
	"testing"

	accountDomain "cryptolend/internal/domain/account"
	applicationDomain "cryptolend/internal/domain/application"
	currencyDomain "cryptolend/internal/domain/currency"
	invoiceDomain "cryptolend/internal/domain/invoice"
	loanDomain "cryptolend/internal/domain/loan"
	offerDomain "cryptolend/internal/domain/offer"
	platformDomain "cryptolend/internal/domain/platform"
	withdrawalDomain "cryptolend/internal/domain/withdrawal"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// openTestDB migrates the full schema into an in-memory sqlite database.
// TranslateError must be on so unique-key violations behave as in mysql.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	// a second pooled connection would see an empty :memory: database
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&currencyDomain.Currency{},
		&accountDomain.Account{},
		&accountDomain.MutationEntry{},
		&invoiceDomain.Invoice{},
		&invoiceDomain.Payment{},
		&offerDomain.LoanOffer{},
		&applicationDomain.LoanApplication{},
		&loanDomain.Loan{},
		&loanDomain.Valuation{},
		&loanDomain.Liquidation{},
		&loanDomain.Repayment{},
		&withdrawalDomain.Beneficiary{},
		&withdrawalDomain.Withdrawal{},
		&platformDomain.Config{},
		&platformDomain.ExchangeRate{},
	); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
	return db
}
