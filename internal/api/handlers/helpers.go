package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/valenante/alef-gateway/internal/api/middleware"
	"github.com/valenante/alef-gateway/internal/domain"
)

func errorResponse(c *gin.Context, statusCode int, message string) {
	log.Error().Str("path", c.Request.URL.Path).Msg(message)
	c.JSON(statusCode, gin.H{"error": message})
}

func scopedTenant(c *gin.Context) (domain.Tenant, bool) {
	value, ok := c.Get(middleware.TenantKey)
	if !ok {
		return domain.Tenant{}, false
	}
	t, ok := value.(domain.Tenant)
	return t, ok
}
