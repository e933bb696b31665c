package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/valenante/alef-gateway/internal/tenant"
)

// Context keys set by TenantScope.
const (
	TenantIDKey  = "tenantID"
	TenantKey    = "tenant"
	SessionIDKey = "sessionID"
)

const sessionHeader = "X-Session-ID"

// TenantScope resolves the tenant named by the :tenant path parameter and
// stores it in the request context. Reserved application segments are
// rejected; a failed metadata load answers 502 with the resolution error
// so the client can offer an explicit retry.
func TenantScope(svc *tenant.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		slug := c.Param("tenant")

		sessionID := c.GetHeader(sessionHeader)
		if sessionID == "" {
			sessionID = c.ClientIP()
		}
		c.Set(SessionIDKey, sessionID)

		if _, ok := tenant.ResolveFromPath("/" + slug); !ok {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "negocio no encontrado"})
			return
		}

		res := svc.Resolve(c.Request.Context(), sessionID, "/"+slug)
		if res.Err != "" {
			c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": res.Err})
			return
		}
		if !res.Resolved() {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "negocio no encontrado"})
			return
		}

		c.Set(TenantIDKey, res.TenantID)
		c.Set(TenantKey, *res.Tenant)
		c.Next()
	}
}
