package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	tenantdomain "github.com/smallbiznis/tessera/internal/tenant/domain"
)

func (s *Server) CreateTenant(c *gin.Context) {
	var req tenantdomain.CreateTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	cfg, err := s.tenantSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cfg)
}

func (s *Server) GetTenantConfig(c *gin.Context) {
	cfg, ok := tenantConfig(c)
	if !ok {
		AbortWithError(c, tenantdomain.ErrConfigNotFound)
		return
	}
	c.JSON(http.StatusOK, cfg)
}

func (s *Server) UpdateTenantConfig(c *gin.Context) {
	cfg, ok := tenantConfig(c)
	if !ok {
		AbortWithError(c, tenantdomain.ErrConfigNotFound)
		return
	}

	var req tenantdomain.UpdateConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	updated, err := s.tenantSvc.UpdateConfig(c.Request.Context(), cfg.TenantID, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}
