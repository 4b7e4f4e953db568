package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	balancedomain "github.com/smallbiznis/tessera/internal/balance/domain"
	ledgerdomain "github.com/smallbiznis/tessera/internal/ledger/domain"
	stickerdomain "github.com/smallbiznis/tessera/internal/sticker/domain"
	tenantdomain "github.com/smallbiznis/tessera/internal/tenant/domain"
)

type errorPayload struct {
	Type      string `json:"type"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var ErrInvalidRequest = errors.New("invalid_request")

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, errorPayload) {
	switch {
	case errors.Is(err, tenantdomain.ErrConfigNotFound):
		return http.StatusNotFound, errorPayload{
			Type:    "config_not_found",
			Message: "unknown tenant",
		}
	case errors.Is(err, tenantdomain.ErrTenantExists):
		return http.StatusConflict, errorPayload{
			Type:    "tenant_exists",
			Message: "tenant already exists",
		}
	case errors.Is(err, tenantdomain.ErrInvalidSlug),
		errors.Is(err, tenantdomain.ErrInvalidName),
		errors.Is(err, tenantdomain.ErrInvalidTierTable),
		errors.Is(err, tenantdomain.ErrInvalidActionType),
		errors.Is(err, tenantdomain.ErrInvalidPoints),
		errors.Is(err, tenantdomain.ErrInvalidValidity),
		errors.Is(err, ledgerdomain.ErrInvalidCustomer),
		errors.Is(err, ledgerdomain.ErrInvalidActionType),
		errors.Is(err, ledgerdomain.ErrUnknownActionType),
		errors.Is(err, ledgerdomain.ErrInvalidIdempotencyKey),
		errors.Is(err, ledgerdomain.ErrInvalidOccurredAt),
		errors.Is(err, ledgerdomain.ErrInvalidPageToken),
		errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: err.Error(),
		}
	case errors.Is(err, stickerdomain.ErrStickerNotFound):
		return http.StatusNotFound, errorPayload{
			Type:    "sticker_not_found",
			Message: "sticker not found",
		}
	case errors.Is(err, stickerdomain.ErrStickerExpired):
		return http.StatusGone, errorPayload{
			Type:    "sticker_expired",
			Message: "sticker expired",
		}
	case errors.Is(err, stickerdomain.ErrStickerAlreadyConsumed):
		return http.StatusConflict, errorPayload{
			Type:    "sticker_already_consumed",
			Message: "sticker already consumed",
		}
	case errors.Is(err, stickerdomain.ErrIssuanceConflict),
		errors.Is(err, balancedomain.ErrAggregationConflict):
		return http.StatusServiceUnavailable, errorPayload{
			Type:      "transient_conflict",
			Message:   "conflicting write, retry with the same idempotency key",
			Retryable: true,
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}
