package handlers

import (
	"bytes"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/valenante/alef-gateway/internal/domain"
	"github.com/valenante/alef-gateway/internal/storage"
	"github.com/valenante/alef-gateway/internal/ventas"
)

type VentasHandler struct {
	source  ventas.Source
	archive storage.ObjectStorage
}

// NewVentasHandler builds the sales handler. archive may be nil; exports
// are then served without being copied to the bucket.
func NewVentasHandler(source ventas.Source, archive storage.ObjectStorage) *VentasHandler {
	return &VentasHandler{source: source, archive: archive}
}

// List serves one page of normalized sales plus the result-set summary
// and the page-scoped filter option lists.
func (h *VentasHandler) List(c *gin.Context) {
	t, ok := scopedTenant(c)
	if !ok {
		errorResponse(c, http.StatusNotFound, "negocio no encontrado")
		return
	}

	engine := h.buildEngine(c, t)
	snap := engine.Refresh(c.Request.Context())
	if snap.State == ventas.StateError {
		errorResponse(c, http.StatusBadGateway, snap.Err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items":       snap.Items,
		"totalItems":  snap.TotalItems,
		"totalPages":  snap.TotalPages,
		"page":        snap.Filter.Page,
		"resumen":     snap.Resumen,
		"metodosPago": engine.MetodosPagoDisponibles(),
		"canales":     engine.CanalesDisponibles(),
	})
}

// ExportCSV streams the currently filtered page as a CSV download and
// archives a copy when a bucket is configured.
func (h *VentasHandler) ExportCSV(c *gin.Context) {
	t, ok := scopedTenant(c)
	if !ok {
		errorResponse(c, http.StatusNotFound, "negocio no encontrado")
		return
	}

	engine := h.buildEngine(c, t)
	snap := engine.Refresh(c.Request.Context())
	if snap.State == ventas.StateError {
		errorResponse(c, http.StatusBadGateway, snap.Err)
		return
	}

	var buf bytes.Buffer
	if err := ventas.WriteCSV(&buf, snap.Items); err != nil {
		log.Error().Err(err).Msg("ventas: csv export failed")
		errorResponse(c, http.StatusInternalServerError, "no se pudo generar el export")
		return
	}

	filename := ventas.ExportFilename(t.ID, time.Now())
	if h.archive != nil {
		key := t.ID + "/" + filename
		if err := h.archive.Upload(c.Request.Context(), key, "text/csv", buf.Bytes()); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("ventas: export archive failed")
		}
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv", buf.Bytes())
}

// ListExports lists the tenant's archived exports.
func (h *VentasHandler) ListExports(c *gin.Context) {
	t, ok := scopedTenant(c)
	if !ok {
		errorResponse(c, http.StatusNotFound, "negocio no encontrado")
		return
	}
	if h.archive == nil {
		errorResponse(c, http.StatusServiceUnavailable, "archivo de exports no configurado")
		return
	}

	objects, err := h.archive.List(c.Request.Context(), t.ID+"/")
	if err != nil {
		log.Error().Err(err).Msg("ventas: export listing failed")
		errorResponse(c, http.StatusBadGateway, "no se pudieron listar los exports")
		return
	}
	c.JSON(http.StatusOK, gin.H{"exports": objects})
}

// DownloadExport serves one archived export back to the client. Keys are
// flat filenames under the tenant's prefix.
func (h *VentasHandler) DownloadExport(c *gin.Context) {
	t, ok := scopedTenant(c)
	if !ok {
		errorResponse(c, http.StatusNotFound, "negocio no encontrado")
		return
	}
	if h.archive == nil {
		errorResponse(c, http.StatusServiceUnavailable, "archivo de exports no configurado")
		return
	}

	name := c.Param("name")
	if name == "" || strings.Contains(name, "..") {
		errorResponse(c, http.StatusBadRequest, "export inválido")
		return
	}

	data, err := h.archive.Download(c.Request.Context(), t.ID+"/"+name)
	if err != nil {
		log.Warn().Err(err).Str("tenant", t.ID).Str("export", name).Msg("ventas: export download failed")
		errorResponse(c, http.StatusNotFound, "export no encontrado")
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, exportContentType(name), data)
}

func exportContentType(name string) string {
	switch {
	case strings.HasSuffix(name, ".csv"):
		return "text/csv"
	case strings.HasSuffix(name, ".xlsx"):
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/octet-stream"
	}
}

func (h *VentasHandler) buildEngine(c *gin.Context, t domain.Tenant) *ventas.Engine {
	engine := ventas.NewEngine(h.source)
	engine.SetTenant(&t)

	if q := strings.TrimSpace(c.Query("q")); q != "" {
		engine.SetQuery(q)
	}
	if from := strings.TrimSpace(c.Query("from")); from != "" {
		engine.SetDesde(from)
	}
	if to := strings.TrimSpace(c.Query("to")); to != "" {
		engine.SetHasta(to)
	}
	if metodo := strings.TrimSpace(c.Query("metodoPago")); metodo != "" {
		engine.SetMetodoPago(strings.ToLower(metodo))
	}
	if canal := strings.TrimSpace(c.Query("canal")); canal != "" {
		engine.SetCanal(strings.ToLower(canal))
	}
	if estado := strings.TrimSpace(c.Query("estado")); estado != "" {
		engine.SetEstado(strings.ToLower(estado))
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "0")); err == nil && size > 0 {
		engine.SetPageSize(size)
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil && page > 1 {
		engine.SetPage(page)
	}
	return engine
}
