package tenantctx

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type keyType string

const tenantIDKey keyType = "tenant_id"

// WithTenantID stamps the resolved tenant onto the request context.
func WithTenantID(ctx context.Context, id snowflake.ID) context.Context {
	return context.WithValue(ctx, tenantIDKey, id)
}

// TenantID returns the tenant bound to the context, if any.
func TenantID(ctx context.Context) (snowflake.ID, bool) {
	id, ok := ctx.Value(tenantIDKey).(snowflake.ID)
	return id, ok
}
