package service

import (
	"testing"
	"time"

	"go-resto-ops/internal/events"
	"go-resto-ops/internal/model"
	"go-resto-ops/internal/repository"
	"go-resto-ops/internal/testutil"
	"go-resto-ops/pkg/jwt"

	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

type testEnv struct {
	db        *gorm.DB
	events    *events.Recorder
	products  repository.ProductRepository
	ledgerTxs repository.StockTransactionRepository
	orderRepo repository.OrderRepository
	profiles  repository.ProfileRepository

	ledger    LedgerService
	catalog   ProductService
	orders    OrderService
	team      TeamService
	auth      AuthService
	dashboard DashboardService
	reports   ReportService

	admin    model.Actor
	staff    model.Actor
	supplier model.Actor
}

type envOption func(*envConfig)

type envConfig struct {
	decrementOnFulfill bool
}

func withSaleLinkage() envOption {
	return func(c *envConfig) { c.decrementOnFulfill = true }
}

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()
	var cfg envConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	db := testutil.NewDB(t)
	log := zaptest.NewLogger(t)
	rec := &events.Recorder{}

	env := &testEnv{
		db:        db,
		events:    rec,
		products:  repository.NewProductRepo(db),
		ledgerTxs: repository.NewStockTransactionRepo(db),
		orderRepo: repository.NewOrderRepo(db),
		profiles:  repository.NewProfileRepo(db),
	}
	env.ledger = NewLedgerService(db, env.products, env.ledgerTxs, rec, log, 0)
	env.catalog = NewProductService(db, env.products, env.ledger, rec, log)
	env.orders = NewOrderService(db, env.orderRepo, env.products, env.profiles, env.ledger, rec, log, cfg.decrementOnFulfill)
	env.team = NewTeamService(env.profiles, log)
	env.auth = NewAuthService(env.profiles, jwt.NewManager("test-secret", time.Hour), log)
	env.dashboard = NewDashboardService(repository.NewStatsRepo(db), env.ledgerTxs, env.orderRepo, env.ledger)
	env.reports = NewReportService(env.products, env.orderRepo, env.ledgerTxs, log)

	env.admin = testutil.Actor(testutil.CreateProfile(t, db, "admin@resto.test", model.RoleAdmin))
	env.staff = testutil.Actor(testutil.CreateProfile(t, db, "staff@resto.test", model.RoleStaff))
	env.supplier = testutil.Actor(testutil.CreateProfile(t, db, "supplier@resto.test", model.RoleSupplier))
	return env
}

func (e *testEnv) countEntries(t *testing.T) int64 {
	t.Helper()
	var n int64
	if err := e.db.Model(&model.StockTransaction{}).Count(&n).Error; err != nil {
		t.Fatal(err)
	}
	return n
}
