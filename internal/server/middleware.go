package server

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	tenantdomain "github.com/smallbiznis/tessera/internal/tenant/domain"
	"github.com/smallbiznis/tessera/pkg/tenantctx"
)

const tenantConfigKey = "tenant_config"

const requestIDHeader = "X-Request-ID"

// RequestIDMiddleware tags every request with an ID so log lines and error
// reports from one request can be correlated. An inbound ID is kept so the
// caller's tracing survives the hop.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Writer.Header().Set(requestIDHeader, id)
		c.Set("request_id", id)
		c.Next()
	}
}

// TenantMiddleware resolves the slug path segment to a config snapshot and
// stamps the tenant onto the request context. Handlers downstream read one
// consistent snapshot even if the config is updated mid-flight.
func (s *Server) TenantMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		cfg, err := s.tenantSvc.GetConfigBySlug(c.Request.Context(), c.Param("slug"))
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.Set(tenantConfigKey, cfg)
		c.Request = c.Request.WithContext(tenantctx.WithTenantID(c.Request.Context(), cfg.TenantID))
		c.Next()
	}
}

func tenantConfig(c *gin.Context) (tenantdomain.Config, bool) {
	v, ok := c.Get(tenantConfigKey)
	if !ok {
		return tenantdomain.Config{}, false
	}
	cfg, ok := v.(tenantdomain.Config)
	return cfg, ok
}
