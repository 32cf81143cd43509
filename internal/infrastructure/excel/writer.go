// Package excel genera archivos .xlsx con excelize para las exportaciones.
package excel

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/Fiado-api/internal/application/report"
)

var _ report.SpreadsheetWriter = (*Writer)(nil)

// Writer implementa report.SpreadsheetWriter.
type Writer struct {
	// RightToLeft muestra la hoja de derecha a izquierda (encabezados en árabe).
	RightToLeft bool
}

// NewWriter construye el writer.
func NewWriter(rightToLeft bool) *Writer { return &Writer{RightToLeft: rightToLeft} }

// Write crea un libro con una sola hoja: encabezados en negrita en la fila 1 y los datos debajo.
func (w *Writer) Write(_ context.Context, sheet report.Sheet) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	// El libro nuevo trae "Sheet1"; se renombra en lugar de crear otra hoja.
	if err := f.SetSheetName("Sheet1", sheet.Name); err != nil {
		return nil, fmt.Errorf("excel: renombrar hoja: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("excel: estilo: %w", err)
	}

	for i, h := range sheet.Headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet.Name, cell, h); err != nil {
			return nil, fmt.Errorf("excel: encabezado %s: %w", cell, err)
		}
	}
	if len(sheet.Headers) > 0 {
		last, _ := excelize.CoordinatesToCellName(len(sheet.Headers), 1)
		if err := f.SetCellStyle(sheet.Name, "A1", last, bold); err != nil {
			return nil, fmt.Errorf("excel: estilo encabezado: %w", err)
		}
		lastCol, _ := excelize.ColumnNumberToName(len(sheet.Headers))
		_ = f.SetColWidth(sheet.Name, "A", lastCol, 22)
	}

	for r, row := range sheet.Rows {
		cell, _ := excelize.CoordinatesToCellName(1, r+2)
		if err := f.SetSheetRow(sheet.Name, cell, &row); err != nil {
			return nil, fmt.Errorf("excel: fila %d: %w", r+2, err)
		}
	}

	if w.RightToLeft {
		rtl := true
		if err := f.SetSheetView(sheet.Name, 0, &excelize.ViewOptions{RightToLeft: &rtl}); err != nil {
			return nil, fmt.Errorf("excel: vista: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("excel: escribir: %w", err)
	}
	return buf.Bytes(), nil
}
