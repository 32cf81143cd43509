// Package sqlite implementa los repositorios del libro sobre SQLite (driver Go puro, sin CGO).
// Pensado para una tienda con un solo equipo: un archivo, sin servidor.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/jhoicas/Fiado-api/internal/application/ledger"
)

// querier lo implementan *sql.DB y *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var _ ledger.TxRunner = (*Store)(nil)

// Store base SQLite con los repositorios del libro.
type Store struct {
	db *sql.DB
}

// Open abre (o crea) la base en dbPath y aplica las migraciones.
// Se usa una sola conexión: SQLite serializa las escrituras y así cada transacción
// bloquea la base completa, que cubre el bloqueo por cliente.
func Open(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("crear directorio de la base: %w", err)
		}
	}

	dsn := dbPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_txlock=immediate"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("abrir base: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migraciones: %w", err)
	}
	return &Store{db: db}, nil
}

// Close cierra la conexión.
func (s *Store) Close() error {
	return s.db.Close()
}

// Run ejecuta fn dentro de una transacción (BEGIN IMMEDIATE) y hace Commit o Rollback.
func (s *Store) Run(ctx context.Context, fn func(repos ledger.Repos) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(ledger.Repos{
		Customers: &CustomerRepo{q: tx},
		Purchases: &PurchaseRepo{q: tx},
		Payments:  &PaymentRepo{q: tx},
	}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Customers repositorio de clientes fuera de transacción.
func (s *Store) Customers() *CustomerRepo { return &CustomerRepo{q: s.db} }

// Purchases repositorio de compras fuera de transacción.
func (s *Store) Purchases() *PurchaseRepo { return &PurchaseRepo{q: s.db} }

// Payments repositorio de pagos fuera de transacción.
func (s *Store) Payments() *PaymentRepo { return &PaymentRepo{q: s.db} }

// Reports repositorio de reportes.
func (s *Store) Reports() *ReportRepo { return &ReportRepo{q: s.db} }

// isUniqueViolation detecta UNIQUE/PRIMARY KEY constraint failed.
func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		return se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE || se.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// Las fechas se guardan como nanosegundos Unix (INTEGER) para ordenar sin ambigüedad de formato.
func toUnix(t time.Time) int64 { return t.UnixNano() }

func fromUnix(n int64) time.Time { return time.Unix(0, n).UTC() }
