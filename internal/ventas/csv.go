package ventas

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/valenante/alef-gateway/internal/domain"
)

var csvHeader = []string{
	"id", "fecha", "metodoPago", "canal", "estado",
	"lineasCount", "itemsCount", "total", "resumen",
}

// WriteCSV serializes sales to RFC4180 CSV. Exports cover the loaded
// page only, never the whole filtered result set.
func WriteCSV(w io.Writer, items []domain.Venta) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("error writing csv header: %w", err)
	}
	for _, v := range items {
		record := []string{
			v.ID,
			v.Fecha.Format(time.RFC3339),
			v.MetodoPago,
			v.Canal,
			string(v.Estado),
			strconv.Itoa(v.LineasCount),
			strconv.Itoa(v.ItemsCount),
			v.Total.StringFixed(2),
			v.Resumen,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("error writing csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportFilename builds the conventional export name for a tenant and day.
func ExportFilename(tenantID string, now time.Time) string {
	return fmt.Sprintf("ventas_%s_%s.csv", tenantID, now.Format("2006-01-02"))
}
