package report

import (
	"context"

	"github.com/jhoicas/Fiado-api/internal/domain/entity"
	"github.com/jhoicas/Fiado-api/internal/domain/money"
)

// Sheet hoja de cálculo ya armada: encabezados y filas de texto/números.
type Sheet struct {
	Name    string
	Headers []string
	Rows    [][]any
}

// SpreadsheetWriter puerto de salida para generar el archivo de la exportación (excelize).
type SpreadsheetWriter interface {
	Write(ctx context.Context, sheet Sheet) ([]byte, error)
}

// Statement datos del estado de cuenta de un cliente.
type Statement struct {
	Customer       *entity.Customer
	Purchases      []*entity.Purchase
	Payments       []*entity.Payment
	TotalPurchases money.Money
	TotalPayments  money.Money
	GeneratedAt    string
}

// StatementPDFGenerator puerto de salida para el PDF del estado de cuenta.
type StatementPDFGenerator interface {
	GenerateStatementPDF(ctx context.Context, st *Statement) ([]byte, error)
}
