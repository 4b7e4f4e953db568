package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	tenantdomain "github.com/smallbiznis/tessera/internal/tenant/domain"
	"github.com/smallbiznis/tessera/pkg/db/pagination"
)

func (s *Server) GetBalance(c *gin.Context) {
	cfg, ok := tenantConfig(c)
	if !ok {
		AbortWithError(c, tenantdomain.ErrConfigNotFound)
		return
	}

	balance, err := s.balanceSvc.GetBalance(c.Request.Context(), cfg.TenantID, c.Param("customer_id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, balance)
}

func (s *Server) GetHistory(c *gin.Context) {
	cfg, ok := tenantConfig(c)
	if !ok {
		AbortWithError(c, tenantdomain.ErrConfigNotFound)
		return
	}

	var page pagination.Pagination
	if err := c.ShouldBindQuery(&page); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	entries, info, err := s.ledgerSvc.History(c.Request.Context(), cfg.TenantID, c.Param("customer_id"), page)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries, "page_info": info})
}

func (s *Server) ListStickers(c *gin.Context) {
	cfg, ok := tenantConfig(c)
	if !ok {
		AbortWithError(c, tenantdomain.ErrConfigNotFound)
		return
	}

	var page pagination.Pagination
	if err := c.ShouldBindQuery(&page); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	stickers, err := s.stickerSvc.List(c.Request.Context(), cfg.TenantID, c.Param("customer_id"), page.PageSize)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stickers": stickers})
}
