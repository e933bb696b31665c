package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/valenante/alef-gateway/internal/registry"
	"github.com/valenante/alef-gateway/internal/tenant"
)

type TenantHandler struct {
	svc      *tenant.Service
	registry *registry.Repository
}

// NewTenantHandler builds the tenant handler. registryRepo may be nil
// when the local directory is disabled.
func NewTenantHandler(svc *tenant.Service, registryRepo *registry.Repository) *TenantHandler {
	return &TenantHandler{svc: svc, registry: registryRepo}
}

// Me returns the scoped tenant's metadata.
func (h *TenantHandler) Me(c *gin.Context) {
	t, ok := scopedTenant(c)
	if !ok {
		errorResponse(c, http.StatusNotFound, "negocio no encontrado")
		return
	}
	c.JSON(http.StatusOK, t)
}

type resolveRequest struct {
	Path string `json:"path" binding:"required"`
}

// ResolvePath mirrors the admin shell's navigation rule: given a route
// path, report whether it is public and which tenant it scopes to.
func (h *TenantHandler) ResolvePath(c *gin.Context) {
	var req resolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "petición inválida: "+err.Error())
		return
	}

	if tenant.IsPublicRoute(req.Path) {
		c.JSON(http.StatusOK, gin.H{"public": true, "tenantId": nil})
		return
	}

	id, ok := tenant.ResolveFromPath(req.Path)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"public": false, "tenantId": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"public": false, "tenantId": id})
}

// Logout clears the session's tenant binding.
func (h *TenantHandler) Logout(c *gin.Context) {
	id := c.GetHeader("X-Session-ID")
	if id == "" {
		id = c.ClientIP()
	}
	h.svc.Clear(c.Request.Context(), id)
	c.Status(http.StatusNoContent)
}

// ListTenants serves the superadmin directory from the local registry.
func (h *TenantHandler) ListTenants(c *gin.Context) {
	if h.registry == nil {
		errorResponse(c, http.StatusServiceUnavailable, "registro de negocios no configurado")
		return
	}
	tenants, err := h.registry.List(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("tenant: registry listing failed")
		errorResponse(c, http.StatusInternalServerError, "no se pudo listar los negocios")
		return
	}
	c.JSON(http.StatusOK, gin.H{"tenants": tenants})
}
