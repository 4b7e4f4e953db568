package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	tenantdomain "github.com/smallbiznis/tessera/internal/tenant/domain"
)

type redeemRequest struct {
	Code string `json:"code"`
}

// RedeemSticker consumes a sticker exactly once on behalf of the checkout
// integration.
func (s *Server) RedeemSticker(c *gin.Context) {
	cfg, ok := tenantConfig(c)
	if !ok {
		AbortWithError(c, tenantdomain.ErrConfigNotFound)
		return
	}

	var req redeemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	result, err := s.redemptionSvc.Redeem(c.Request.Context(), cfg, req.Code)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
