package main

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/Fiado-api/internal/application/ledger"
	"github.com/jhoicas/Fiado-api/internal/domain/entity"
	"github.com/jhoicas/Fiado-api/internal/domain/money"
)

// Tipos de fila del export.
const (
	kindPurchase = "purchase"
	kindPayment  = "payment"
)

// columnas esperadas en la cabecera (orden libre).
var columns = []string{"type", "customer", "date", "amount", "items"}

// record una fila del export antiguo: una compra o un pago con su fecha original.
type record struct {
	Line     int
	Kind     string
	Customer string
	At       time.Time
	Amount   money.Money
	Items    []entity.PurchaseItem
}

// decodeInput envuelve r según la codificación del archivo y quita el BOM UTF-8.
func decodeInput(r io.Reader, encoding string) (io.Reader, error) {
	switch strings.ToLower(encoding) {
	case "", "utf-8", "utf8":
		br := bufio.NewReader(r)
		if b, err := br.Peek(3); err == nil && string(b) == "\xef\xbb\xbf" {
			_, _ = br.Discard(3)
		}
		return br, nil
	case "windows-1256", "cp1256":
		return transform.NewReader(r, charmap.Windows1256.NewDecoder()), nil
	}
	return nil, fmt.Errorf("codificación no soportada: %q", encoding)
}

// readRecords parsea el CSV completo. Devuelve todos los errores de formato juntos.
func readRecords(r io.Reader) ([]record, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("leer cabecera: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, col := range columns {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("falta la columna %q", col)
		}
	}

	var (
		out  []record
		errs []error
	)
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", line, err)
		}
		rec, err := parseRow(line, func(col string) string { return strings.TrimSpace(row[idx[col]]) })
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out = append(out, rec)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	// Se respeta el orden cronológico; a igual fecha, el orden del archivo.
	sort.SliceStable(out, func(i, j int) bool { return out[i].At.Before(out[j].At) })
	return out, nil
}

func parseRow(line int, get func(string) string) (record, error) {
	rec := record{Line: line, Kind: strings.ToLower(get("type")), Customer: get("customer")}
	if rec.Customer == "" {
		return rec, fmt.Errorf("línea %d: cliente vacío", line)
	}
	at, err := parseDate(get("date"))
	if err != nil {
		return rec, fmt.Errorf("línea %d: %w", line, err)
	}
	rec.At = at

	switch rec.Kind {
	case kindPurchase:
		if raw := get("items"); raw != "" {
			rec.Items, err = parseItems(raw)
			if err != nil {
				return rec, fmt.Errorf("línea %d: %w", line, err)
			}
			return rec, nil
		}
		// Sin detalle: una sola línea con el monto total.
		amount, err := money.Parse(get("amount"))
		if err != nil {
			return rec, fmt.Errorf("línea %d: monto: %w", line, err)
		}
		rec.Items = []entity.PurchaseItem{{Name: "مشتريات", Price: amount}}
	case kindPayment:
		rec.Amount, err = money.Parse(get("amount"))
		if err != nil {
			return rec, fmt.Errorf("línea %d: monto: %w", line, err)
		}
	default:
		return rec, fmt.Errorf("línea %d: tipo desconocido %q", line, rec.Kind)
	}
	return rec, nil
}

// parseItems "pan:1.10|leche:14" → ítems.
func parseItems(raw string) ([]entity.PurchaseItem, error) {
	parts := strings.Split(raw, "|")
	items := make([]entity.PurchaseItem, 0, len(parts))
	for _, p := range parts {
		i := strings.LastIndex(p, ":")
		if i <= 0 {
			return nil, fmt.Errorf("ítem mal formado %q (se espera nombre:precio)", p)
		}
		price, err := money.Parse(strings.TrimSpace(p[i+1:]))
		if err != nil {
			return nil, fmt.Errorf("precio de %q: %w", p[:i], err)
		}
		items = append(items, entity.PurchaseItem{Name: strings.TrimSpace(p[:i]), Price: price})
	}
	return items, nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("fecha inválida %q", s)
}

// summary resultado de la importación.
type summary struct {
	Purchases int
	Payments  int
	Failed    int
}

// replay aplica cada fila con el Ledger, conservando la fecha original.
// Una fila que falla se registra y no detiene el resto.
func replay(ctx context.Context, uc *ledger.LedgerUseCase, records []record, log zerolog.Logger) summary {
	var s summary
	for _, rec := range records {
		if err := apply(ctx, uc, rec); err != nil {
			s.Failed++
			log.Error().Err(err).Int("line", rec.Line).Str("customer", rec.Customer).Str("type", rec.Kind).Msg("fila rechazada")
			continue
		}
		if rec.Kind == kindPurchase {
			s.Purchases++
		} else {
			s.Payments++
		}
	}
	return s
}

func apply(ctx context.Context, uc *ledger.LedgerUseCase, rec record) error {
	if rec.Kind == kindPurchase {
		_, _, err := uc.RecordPurchase(ctx, ledger.RecordPurchaseInput{
			CustomerName: rec.Customer,
			Items:        rec.Items,
			OccurredAt:   rec.At,
		})
		return err
	}
	c, err := uc.GetCustomerByName(ctx, rec.Customer)
	if err != nil {
		return err
	}
	_, _, err = uc.RecordPayment(ctx, c.ID, rec.Amount, rec.At)
	return err
}
