package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/valenante/alef-gateway/internal/api/handlers"
	"github.com/valenante/alef-gateway/internal/api/middleware"
	"github.com/valenante/alef-gateway/internal/registry"
	"github.com/valenante/alef-gateway/internal/reports"
	"github.com/valenante/alef-gateway/internal/stats"
	"github.com/valenante/alef-gateway/internal/storage"
	"github.com/valenante/alef-gateway/internal/tenant"
	"github.com/valenante/alef-gateway/internal/ventas"
)

// Deps carries everything the router wires into handlers. Registry and
// Archive are optional.
type Deps struct {
	Tenants  *tenant.Service
	Ventas   ventas.Source
	Stats    *stats.Aggregator
	Caja     *reports.Builder
	Registry *registry.Repository
	Archive  storage.ObjectStorage
}

func NewRouter(deps Deps, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	router.Use(
		middleware.Logger(),
		middleware.Recovery(),
	)

	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Session-ID"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	tenantHandler := handlers.NewTenantHandler(deps.Tenants, deps.Registry)
	ventasHandler := handlers.NewVentasHandler(deps.Ventas, deps.Archive)
	statsHandler := handlers.NewStatsHandler(deps.Stats)
	cajaHandler := handlers.NewCajaHandler(deps.Caja, deps.Archive)

	apiGroup := router.Group("/api/v1")
	{
		apiGroup.POST("/session/resolve", tenantHandler.ResolvePath)
		apiGroup.DELETE("/session", tenantHandler.Logout)
		apiGroup.GET("/superadmin/tenants", tenantHandler.ListTenants)

		tenantGroup := apiGroup.Group("/t/:tenant", middleware.TenantScope(deps.Tenants))
		{
			tenantGroup.GET("/tenant", tenantHandler.Me)
			tenantGroup.GET("/ventas", ventasHandler.List)
			tenantGroup.GET("/ventas/export", ventasHandler.ExportCSV)
			tenantGroup.GET("/exports", ventasHandler.ListExports)
			tenantGroup.GET("/exports/:name", ventasHandler.DownloadExport)
			tenantGroup.POST("/estadisticas/categoria", statsHandler.Categoria)
			tenantGroup.GET("/caja-diaria", cajaHandler.Daily)
		}
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
