// Package storage abre el almacén del libro según DB_DRIVER; lo comparten la API y la importación.
package storage

import (
	"context"
	"fmt"

	"github.com/jhoicas/Fiado-api/internal/application/ledger"
	"github.com/jhoicas/Fiado-api/internal/domain/repository"
	"github.com/jhoicas/Fiado-api/internal/infrastructure/memory"
	"github.com/jhoicas/Fiado-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Fiado-api/internal/infrastructure/sqlite"
	"github.com/jhoicas/Fiado-api/pkg/config"
)

// Storage repositorios del driver elegido y su cierre.
type Storage struct {
	Tx        ledger.TxRunner
	Customers repository.CustomerRepository
	Purchases repository.PurchaseRepository
	Payments  repository.PaymentRepository
	Reports   repository.ReportRepository
	Close     func()
}

// Open abre el almacén según DB_DRIVER.
func Open(ctx context.Context, cfg config.DBConfig) (*Storage, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
		}
		return &Storage{
			Tx:        postgres.NewTxRunner(pool),
			Customers: postgres.NewCustomerRepository(pool),
			Purchases: postgres.NewPurchaseRepository(pool),
			Payments:  postgres.NewPaymentRepository(pool),
			Reports:   postgres.NewReportRepository(pool),
			Close:     pool.Close,
		}, nil

	case config.DriverSQLite:
		store, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("abrir SQLite %s: %w", cfg.SQLitePath, err)
		}
		return &Storage{
			Tx:        store,
			Customers: store.Customers(),
			Purchases: store.Purchases(),
			Payments:  store.Payments(),
			Reports:   store.Reports(),
			Close:     func() { _ = store.Close() },
		}, nil

	case config.DriverMemory:
		store := memory.NewStore()
		return &Storage{
			Tx:        store,
			Customers: store.Customers(),
			Purchases: store.Purchases(),
			Payments:  store.Payments(),
			Reports:   store.Reports(),
			Close:     func() {},
		}, nil
	}
	return nil, fmt.Errorf("DB_DRIVER desconocido: %q", cfg.Driver)
}
