package handlers

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/valenante/alef-gateway/internal/reports"
	"github.com/valenante/alef-gateway/internal/storage"
)

type CajaHandler struct {
	builder *reports.Builder
	archive storage.ObjectStorage
}

func NewCajaHandler(builder *reports.Builder, archive storage.ObjectStorage) *CajaHandler {
	return &CajaHandler{builder: builder, archive: archive}
}

// Daily serves the cash-register report for one day as JSON, CSV or XLSX.
func (h *CajaHandler) Daily(c *gin.Context) {
	t, ok := scopedTenant(c)
	if !ok {
		errorResponse(c, http.StatusNotFound, "negocio no encontrado")
		return
	}

	dia := time.Now()
	if raw := c.Query("fecha"); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, time.Local)
		if err != nil {
			errorResponse(c, http.StatusBadRequest, "fecha inválida, se espera YYYY-MM-DD")
			return
		}
		dia = parsed
	}

	report, err := h.builder.Daily(c.Request.Context(), t, dia)
	if err != nil {
		log.Error().Err(err).Str("tenant", t.ID).Msg("caja: report build failed")
		errorResponse(c, http.StatusBadGateway, "no se pudo generar el informe de caja")
		return
	}

	switch c.DefaultQuery("formato", "json") {
	case "json":
		c.JSON(http.StatusOK, report)
	case "csv":
		var buf bytes.Buffer
		if err := reports.WriteCSV(&buf, report); err != nil {
			log.Error().Err(err).Msg("caja: csv render failed")
			errorResponse(c, http.StatusInternalServerError, "no se pudo generar el informe de caja")
			return
		}
		h.deliver(c, reports.CSVFilename(report), "text/csv", buf.Bytes())
	case "xlsx":
		var buf bytes.Buffer
		if err := reports.WriteXLSX(&buf, report); err != nil {
			log.Error().Err(err).Msg("caja: xlsx render failed")
			errorResponse(c, http.StatusInternalServerError, "no se pudo generar el informe de caja")
			return
		}
		h.deliver(c, reports.XLSXFilename(report),
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
	default:
		errorResponse(c, http.StatusBadRequest, "formato no soportado")
	}
}

func (h *CajaHandler) deliver(c *gin.Context, filename, contentType string, data []byte) {
	if h.archive != nil {
		t, _ := scopedTenant(c)
		key := t.ID + "/" + filename
		if err := h.archive.Upload(c.Request.Context(), key, contentType, data); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("caja: report archive failed")
		}
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, contentType, data)
}
