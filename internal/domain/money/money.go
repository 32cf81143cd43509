// Package money define el tipo Money: montos exactos en centavos (int64) con
// representación de exactamente dos decimales.
//
// Nunca se usa float64 para aritmética; la conversión desde texto o NUMERIC pasa por
// shopspring/decimal y se rechaza cualquier valor con más de dos decimales.
package money

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Fiado-api/internal/domain"
)

const scale = 2

var hundred = decimal.NewFromInt(100)

// Money monto exacto en unidades mínimas (centavos). El valor cero es 0.00.
type Money struct {
	cents int64
}

// Zero es 0.00.
var Zero = Money{}

// FromCents construye un Money desde centavos.
func FromCents(c int64) Money { return Money{cents: c} }

// FromDecimal convierte un decimal exacto; falla si tiene más de dos decimales.
func FromDecimal(d decimal.Decimal) (Money, error) {
	if !d.Equal(d.Truncate(scale)) {
		return Zero, fmt.Errorf("%w: %s tiene más de %d decimales", domain.ErrValidation, d.String(), scale)
	}
	c := d.Mul(hundred)
	if !c.IsInteger() || c.GreaterThan(decimal.NewFromInt(maxAggregateCents)) || c.LessThan(decimal.NewFromInt(-maxAggregateCents)) {
		return Zero, fmt.Errorf("%w: monto fuera de rango: %s", domain.ErrValidation, d.String())
	}
	return Money{cents: c.IntPart()}, nil
}

// maxCents es el mayor monto que cabe en una columna NUMERIC(14,2): 999999999999.99.
// Aplica a precios, pagos, totales de compra y saldos.
const maxCents = int64(99_999_999_999_999)

// maxAggregateCents acota las conversiones de sumas globales (reportes), que pueden
// superar maxCents sin desbordar int64.
const maxAggregateCents = int64(1) << 62

// Max es el mayor monto que el libro acepta guardar.
var Max = Money{cents: maxCents}

// Parse interpreta "15", "15.5" o "15.50".
func Parse(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Zero, fmt.Errorf("%w: monto vacío", domain.ErrValidation)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Zero, fmt.Errorf("%w: monto inválido %q", domain.ErrValidation, s)
	}
	m, err := FromDecimal(d)
	if err != nil {
		return Zero, err
	}
	if !m.InRange() {
		return Zero, fmt.Errorf("%w: monto %s supera el máximo %s", domain.ErrValidation, m, Max)
	}
	return m, nil
}

// MustParse como Parse pero entra en pánico; solo para constantes y tests.
func MustParse(s string) Money {
	m, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return m
}

// Cents devuelve el valor en unidades mínimas.
func (m Money) Cents() int64 { return m.cents }

// Decimal devuelve el valor como decimal (para NUMERIC vía pgx-shopspring-decimal).
func (m Money) Decimal() decimal.Decimal { return decimal.New(m.cents, -scale) }

func (m Money) Add(o Money) Money { return Money{cents: m.cents + o.cents} }
func (m Money) Sub(o Money) Money { return Money{cents: m.cents - o.cents} }
func (m Money) Neg() Money        { return Money{cents: -m.cents} }

// InRange indica si |m| <= Max.
func (m Money) InRange() bool { return m.cents <= maxCents && m.cents >= -maxCents }

// CheckedAdd suma y falla con ErrValidation si el resultado desborda int64 o supera Max.
func (m Money) CheckedAdd(o Money) (Money, error) {
	s := m.cents + o.cents
	overflow := (o.cents > 0 && s < m.cents) || (o.cents < 0 && s > m.cents)
	if overflow || s > maxCents || s < -maxCents {
		return Zero, fmt.Errorf("%w: %s + %s supera el máximo %s", domain.ErrValidation, m, o, Max)
	}
	return Money{cents: s}, nil
}

// Sum suma todos los montos.
func Sum(ms ...Money) Money {
	var total int64
	for _, m := range ms {
		total += m.cents
	}
	return Money{cents: total}
}

// CheckedSum como Sum pero con el límite de CheckedAdd en cada paso.
func CheckedSum(ms ...Money) (Money, error) {
	total := Zero
	for _, m := range ms {
		var err error
		if total, err = total.CheckedAdd(m); err != nil {
			return Zero, err
		}
	}
	return total, nil
}

// Cmp devuelve -1, 0 o 1.
func (m Money) Cmp(o Money) int {
	switch {
	case m.cents < o.cents:
		return -1
	case m.cents > o.cents:
		return 1
	default:
		return 0
	}
}

func (m Money) Equal(o Money) bool              { return m.cents == o.cents }
func (m Money) LessThan(o Money) bool           { return m.cents < o.cents }
func (m Money) LessThanOrEqual(o Money) bool    { return m.cents <= o.cents }
func (m Money) GreaterThan(o Money) bool        { return m.cents > o.cents }
func (m Money) GreaterThanOrEqual(o Money) bool { return m.cents >= o.cents }
func (m Money) IsZero() bool                    { return m.cents == 0 }
func (m Money) IsPositive() bool                { return m.cents > 0 }
func (m Money) IsNegative() bool                { return m.cents < 0 }

// String siempre con dos decimales: "15.00", "-0.50".
func (m Money) String() string {
	return m.Decimal().StringFixed(scale)
}

// MarshalJSON serializa como string con dos decimales para no perder precisión en clientes JS.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON acepta "15.50" o 15.5.
func (m *Money) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*m = Zero
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		s = str
	}
	v, err := Parse(s)
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Value implementa driver.Valuer (texto decimal, para database/sql).
func (m Money) Value() (driver.Value, error) {
	return m.String(), nil
}

// Scan implementa sql.Scanner; acepta TEXT, NUMERIC como texto, enteros y reales.
func (m *Money) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*m = Zero
		return nil
	case string:
		p, err := Parse(v)
		if err != nil {
			return err
		}
		*m = p
		return nil
	case []byte:
		return m.Scan(string(v))
	case int64:
		p, err := FromDecimal(decimal.NewFromInt(v))
		if err != nil {
			return err
		}
		*m = p
		return nil
	case float64:
		// SQLite puede devolver REAL para columnas NUMERIC; se redondea al centavo.
		*m = Money{cents: decimal.NewFromFloat(v).Mul(hundred).Round(0).IntPart()}
		return nil
	default:
		return fmt.Errorf("money: tipo no soportado %T", src)
	}
}
