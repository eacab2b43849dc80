package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"

	"cryptolend/internal/adapter/chain"
	httpadapter "cryptolend/internal/adapter/http"
	"cryptolend/internal/adapter/queue"
	"cryptolend/internal/adapter/repository/mysql"
	"cryptolend/internal/config"
	accountDomain "cryptolend/internal/domain/account"
	applicationDomain "cryptolend/internal/domain/application"
	currencyDomain "cryptolend/internal/domain/currency"
	invoiceDomain "cryptolend/internal/domain/invoice"
	loanDomain "cryptolend/internal/domain/loan"
	offerDomain "cryptolend/internal/domain/offer"
	platformDomain "cryptolend/internal/domain/platform"
	withdrawalDomain "cryptolend/internal/domain/withdrawal"
	"cryptolend/internal/infrastructure/cache"
	"cryptolend/internal/infrastructure/db"
	invoiceUC "cryptolend/internal/usecase/invoice"
	"cryptolend/internal/usecase/loanbook"
	"cryptolend/internal/usecase/settlement"
	"cryptolend/pkg/id"
	"cryptolend/pkg/logger"
)

const sweepBatchSize = 500

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Fatalf("config: %v", err)
	}

	gdb, err := db.OpenGorm(cfg.MySQLDSN())
	if err != nil {
		logger.Fatalf("mysql: %v", err)
	}
	if err := migrate(gdb); err != nil {
		logger.Fatalf("migrate: %v", err)
	}

	rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		logger.Fatalf("redis: %v", err)
	}

	gen, err := id.NewGenerator(cfg.IDEpochMS, cfg.IDWorkerID)
	if err != nil {
		logger.Fatalf("id generator: %v", err)
	}

	invoiceRepo := mysql.NewInvoiceRepository(gdb)
	loanRepo := mysql.NewLoanRepository(gdb)
	platformRepo := mysql.NewPlatformRepository(gdb)
	unit := mysql.NewGormUoW(gdb)

	activeCache := invoiceUC.NewActiveCache(rdb, invoiceRepo)
	invoices := invoiceUC.NewUsecase(invoiceRepo, gen)
	loanbookUC := loanbook.NewUsecase(unit, platformRepo, loanRepo, gen)
	matcher := settlement.NewUsecase(activeCache, unit)

	stream := queue.NewStream(rdb, queue.StreamConfig{
		Stream:        cfg.SettlementStream,
		DLQStream:     cfg.SettlementDLQStream,
		Group:         cfg.SettlementGroup,
		Consumer:      cfg.ConsumerName,
		MaxDeliveries: cfg.MaxDeliveries,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// one watcher per configured chain
	registry := chain.NewAddressRegistry(rdb)
	for _, cc := range cfg.Chains {
		client, err := chain.DialEVM(cc.RPCEndpoint)
		if err != nil {
			logger.Fatalf("dial %s: %v", cc.BlockchainKey, err)
		}
		w := chain.NewWatcher(cc.BlockchainKey,
			chain.NewEVMProvider(client, cc.ChainID),
			chain.NewLease(rdb, cc.BlockchainKey, cfg.LeaseTTL),
			registry, stream,
			chain.WatcherOptions{
				PollInterval:  cc.PollInterval,
				Confirmations: cc.Confirmations,
			})
		go func(key string) {
			if err := w.Run(ctx); err != nil {
				logger.Errorf("watcher[%s]: %v", key, err)
			}
		}(cc.BlockchainKey)
	}

	go func() {
		if err := stream.Run(ctx, matcher.HandleDetected); err != nil {
			logger.Errorf("settlement consumer: %v", err)
		}
	}()

	go runSweeps(ctx, cfg, activeCache, invoices, loanbookUC)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger(), middleware.Recover())
	httpadapter.NewHandler(map[string]httpadapter.CheckFunc{
		"mysql": func(ctx context.Context) error {
			sqlDB, err := gdb.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
		"redis": func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		},
	}).Register(e)

	go func() {
		if err := e.Start(":" + cfg.AppPort); err != nil {
			logger.Infof("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("http shutdown: %v", err)
	}
	_ = rdb.Close()
	os.Exit(0)
}

func migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
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
	)
}

// runSweeps drives the periodic background work: invoice cache rebuilds,
// LTV monitoring and the expiry sweeps.
func runSweeps(ctx context.Context, cfg *config.Config, activeCache *invoiceUC.ActiveCache, invoices *invoiceUC.Usecase, lb *loanbook.Usecase) {
	if err := activeCache.Refresh(ctx); err != nil {
		logger.Warnf("initial cache refresh: %v", err)
	}

	cacheTick := time.NewTicker(cfg.CacheRefreshInterval)
	defer cacheTick.Stop()
	ltvTick := time.NewTicker(cfg.LtvSweepInterval)
	defer ltvTick.Stop()
	expiryTick := time.NewTicker(cfg.ExpirySweepInterval)
	defer expiryTick.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-cacheTick.C:
			if err := activeCache.Refresh(ctx); err != nil {
				logger.Warnf("cache refresh: %v", err)
			}
		case <-ltvTick.C:
			report, err := lb.MonitorLTV(ctx, nil, time.Now().UTC())
			if err != nil {
				logger.Warnf("ltv sweep: %v", err)
				continue
			}
			for _, b := range report.Breaches {
				logger.Warnf("ltv breach: loan=%d status=%s current=%s threshold=%s",
					b.LoanID, b.Status, b.CurrentLtvRatio, report.Threshold)
			}
			logger.Infof("ltv sweep: scanned=%d breaches=%d", report.Scanned, len(report.Breaches))
		case <-expiryTick.C:
			now := time.Now().UTC()
			if n, err := invoices.ExpirePending(ctx, now, sweepBatchSize); err != nil {
				logger.Warnf("invoice expiry sweep: %v", err)
			} else if n > 0 {
				logger.Infof("invoice expiry sweep: expired=%d", n)
			}
			if n, err := lb.ExpireOffers(ctx, now, sweepBatchSize); err != nil {
				logger.Warnf("offer expiry sweep: %v", err)
			} else if n > 0 {
				logger.Infof("offer expiry sweep: expired=%d", n)
			}
			if n, err := lb.ExpireApplications(ctx, now, sweepBatchSize); err != nil {
				logger.Warnf("application expiry sweep: %v", err)
			} else if n > 0 {
				logger.Infof("application expiry sweep: expired=%d", n)
			}
		}
	}
}
