// Package pdf implementa el estado de cuenta del cliente en PDF.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Nombre del cliente  │  Saldo pendiente + Fecha      │
//	│  ─────────────────────────────────────────────────────────  │
//	│  COMPRAS: Fecha | Productos | Total                          │
//	│  ─────────────────────────────────────────────────────────  │
//	│  PAGOS: Fecha | Monto                                        │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Compras / Pagos / SALDO                            │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/Fiado-api/internal/application/report"
	"github.com/jhoicas/Fiado-api/internal/domain/entity"
	"github.com/jhoicas/Fiado-api/internal/domain/money"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorDebt    = &props.Color{Red: 170, Green: 30, Blue: 30}
)

// ── Generator ─────────────────────────────────────────────────────────────────

var _ report.StatementPDFGenerator = (*MarotoPDFGenerator)(nil)

// MarotoPDFGenerator implementa report.StatementPDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct {
	shopName string
}

// NewMarotoPDFGenerator construye el generador; shopName va como autor del documento.
func NewMarotoPDFGenerator(shopName string) *MarotoPDFGenerator {
	return &MarotoPDFGenerator{shopName: shopName}
}

// GenerateStatementPDF genera el PDF y devuelve sus bytes.
func (g *MarotoPDFGenerator) GenerateStatementPDF(_ context.Context, st *report.Statement) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Estado de cuenta", true).
		WithAuthor(g.shopName, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(st))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	m.AddRows(sectionTitle(fmt.Sprintf("COMPRAS (%d)", len(st.Purchases))))
	m.AddRows(tableHeaderRow("Fecha", "Productos", "Total"))
	m.AddRows(purchaseRows(st.Purchases)...)

	m.AddRows(line.NewRow(3))
	m.AddRows(sectionTitle(fmt.Sprintf("PAGOS (%d)", len(st.Payments))))
	m.AddRows(tableHeaderRow("Fecha", "", "Monto"))
	m.AddRows(paymentRows(st.Payments)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(st))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: nombre del cliente (izq) y saldo + fecha de emisión (der).
func headerRow(st *report.Statement) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New("ESTADO DE CUENTA", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(st.Customer.Name, props.Text{
				Style: fontstyle.Bold, Size: 13, Top: 6,
			}),
			text.New("Cliente desde: "+st.Customer.CreatedAt.Format("02/01/2006"), props.Text{
				Size: 8, Top: 13, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("SALDO PENDIENTE", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New("$"+formatMoney(st.Customer.TotalDebt), props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 6, Color: colorDebt,
			}),
			text.New("Emitido: "+st.GeneratedAt, props.Text{
				Size: 8, Align: align.Right, Top: 13, Color: colorGray,
			}),
		),
	)
}

func sectionTitle(title string) core.Row {
	return row.New(7).Add(col.New(12).Add(
		text.New(title, props.Text{Style: fontstyle.Bold, Size: 9, Color: colorPrimary, Top: 2}),
	))
}

// tableHeaderRow: Fecha (3) | descripción (6) | monto (3).
func tableHeaderRow(date, desc, amount string) core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorGray, Top: 1, Left: 1, Right: 1,
		}))
	}
	return row.New(6).Add(
		h(date, 3, align.Left),
		h(desc, 6, align.Left),
		h(amount, 3, align.Right),
	)
}

// purchaseRows: una fila por compra con los productos resumidos.
func purchaseRows(purchases []*entity.Purchase) []core.Row {
	if len(purchases) == 0 {
		return []core.Row{emptyRow("Sin compras registradas")}
	}
	rows := make([]core.Row, 0, len(purchases))
	for _, p := range purchases {
		rows = append(rows, row.New(6).Add(
			col.New(3).Add(text.New(p.CreatedAt.Format("02/01/2006"), props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(6).Add(text.New(itemsSummary(p.Items), props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(3).Add(text.New("$"+formatMoney(p.PurchaseTotal), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return rows
}

// paymentRows: una fila por pago.
func paymentRows(payments []*entity.Payment) []core.Row {
	if len(payments) == 0 {
		return []core.Row{emptyRow("Sin pagos registrados")}
	}
	rows := make([]core.Row, 0, len(payments))
	for _, p := range payments {
		rows = append(rows, row.New(6).Add(
			col.New(3).Add(text.New(p.CreatedAt.Format("02/01/2006"), props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(6),
			col.New(3).Add(text.New("$"+formatMoney(p.AmountPaid), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return rows
}

func emptyRow(msg string) core.Row {
	return row.New(6).Add(col.New(12).Add(
		text.New(msg, props.Text{Size: 8, Top: 1, Left: 1, Color: colorGray}),
	))
}

// totalsRow: bloque de totales alineado a la derecha.
func totalsRow(st *report.Statement) core.Row {
	label := func(s string) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2})
	}
	value := func(s string, top float64) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1, Top: top})
	}
	return row.New(20).Add(
		col.New(6),
		col.New(3).Add(
			label("Total compras:"),
			text.New("Total pagos:", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2, Top: 5}),
			text.New("SALDO:", props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right, Right: 2, Top: 11, Color: colorPrimary}),
		),
		col.New(3).Add(
			value("$"+formatMoney(st.TotalPurchases), 0),
			value("$"+formatMoney(st.TotalPayments), 5),
			text.New("$"+formatMoney(st.Customer.TotalDebt), props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right, Right: 1, Top: 11, Color: colorPrimary,
			}),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

// itemsSummary "Pan $3.00, Leche $4.25"; se corta a 90 caracteres.
func itemsSummary(items []entity.PurchaseItem) string {
	parts := make([]string, 0, len(items))
	for _, it := range items {
		parts = append(parts, it.Name+" $"+formatMoney(it.Price))
	}
	s := strings.Join(parts, ", ")
	if r := []rune(s); len(r) > 90 {
		s = string(r[:87]) + "..."
	}
	return s
}

// formatMoney inserta comas de miles en la parte entera: 1234567.5 → "1,234,567.50".
func formatMoney(m money.Money) string {
	s := m.String()
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, _ := strings.Cut(s, ".")
	n := len(intPart)
	if n <= 3 {
		return sign + s
	}
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(intPart) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, ',')
		}
		buf = append(buf, c)
	}
	return sign + string(buf) + "." + frac
}
