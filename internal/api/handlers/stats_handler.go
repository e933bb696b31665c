package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/valenante/alef-gateway/internal/domain"
	"github.com/valenante/alef-gateway/internal/stats"
)

type StatsHandler struct {
	aggregator *stats.Aggregator
}

func NewStatsHandler(aggregator *stats.Aggregator) *StatsHandler {
	return &StatsHandler{aggregator: aggregator}
}

type categoriaRequest struct {
	Productos []domain.Producto `json:"productos" binding:"required"`
	Fecha     string            `json:"fecha"`
}

// Categoria computes the statistics snapshot for a list of products,
// optionally scoped to one calendar day.
func (h *StatsHandler) Categoria(c *gin.Context) {
	t, ok := scopedTenant(c)
	if !ok {
		errorResponse(c, http.StatusNotFound, "negocio no encontrado")
		return
	}

	var req categoriaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "petición inválida: "+err.Error())
		return
	}

	var dia *time.Time
	if req.Fecha != "" {
		parsed, err := time.ParseInLocation("2006-01-02", req.Fecha, time.Local)
		if err != nil {
			errorResponse(c, http.StatusBadRequest, "fecha inválida, se espera YYYY-MM-DD")
			return
		}
		dia = &parsed
	}

	snap, err := h.aggregator.Categoria(c.Request.Context(), t, req.Productos, dia)
	if err != nil {
		log.Error().Err(err).Str("tenant", t.ID).Msg("stats: snapshot failed")
		errorResponse(c, http.StatusBadGateway, "no se pudieron calcular las estadísticas")
		return
	}

	c.JSON(http.StatusOK, snap)
}
