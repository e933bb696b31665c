package reports

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// WriteCSV renders the caja report in the same layout as the spreadsheet.
func WriteCSV(w io.Writer, report *CajaReport) error {
	cw := csv.NewWriter(w)

	records := [][]string{
		{"caja", report.Fecha},
		{"negocio", report.TenantID},
		{"tickets", strconv.Itoa(report.Tickets)},
		{"anuladas", strconv.Itoa(report.Anuladas)},
		{"total", report.Total.StringFixed(2)},
		{},
		{"metodoPago", "tickets", "total"},
	}
	for _, m := range report.PorMetodo {
		records = append(records, []string{m.Metodo, strconv.Itoa(m.Tickets), m.Total.StringFixed(2)})
	}
	records = append(records, []string{}, []string{"hora", "unidades", "ingresos"})
	for _, h := range report.PorHora {
		records = append(records, []string{
			fmt.Sprintf("%02d:00", h.Hora), strconv.Itoa(h.Cantidad), h.Ingresos.StringFixed(2),
		})
	}

	for _, record := range records {
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("error writing caja csv: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// CSVFilename builds the conventional csv name for a report.
func CSVFilename(report *CajaReport) string {
	return fmt.Sprintf("caja_%s_%s.csv", report.TenantID, report.Fecha)
}
