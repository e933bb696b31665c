package reports

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const cajaSheet = "Caja"

// WriteXLSX renders the caja report as a spreadsheet: a header block, the
// per-method table and the per-hour table.
func WriteXLSX(w io.Writer, report *CajaReport) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", cajaSheet)

	rows := [][]interface{}{
		{"Caja diaria", report.Fecha},
		{"Negocio", report.TenantID},
		{"Tickets", report.Tickets},
		{"Anuladas", report.Anuladas},
		{"Total", report.Total.StringFixed(2)},
		{},
		{"Método de pago", "Tickets", "Total"},
	}
	for _, m := range report.PorMetodo {
		rows = append(rows, []interface{}{m.Metodo, m.Tickets, m.Total.StringFixed(2)})
	}
	rows = append(rows, []interface{}{}, []interface{}{"Hora", "Unidades", "Ingresos"})
	for _, h := range report.PorHora {
		rows = append(rows, []interface{}{
			fmt.Sprintf("%02d:00", h.Hora), h.Cantidad, h.Ingresos.StringFixed(2),
		})
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("could not build cell name: %w", err)
		}
		if err := f.SetSheetRow(cajaSheet, cell, &row); err != nil {
			return fmt.Errorf("could not write report row: %w", err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("could not write xlsx: %w", err)
	}
	return nil
}

// XLSXFilename builds the conventional spreadsheet name for a report.
func XLSXFilename(report *CajaReport) string {
	return fmt.Sprintf("caja_%s_%s.xlsx", report.TenantID, report.Fecha)
}
