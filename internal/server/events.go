package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	ledgerdomain "github.com/smallbiznis/tessera/internal/ledger/domain"
	stickerdomain "github.com/smallbiznis/tessera/internal/sticker/domain"
	tenantdomain "github.com/smallbiznis/tessera/internal/tenant/domain"
)

type ingestEventRequest struct {
	CustomerID     string     `json:"customer_id"`
	ActionType     string     `json:"action_type"`
	IdempotencyKey string     `json:"idempotency_key"`
	OccurredAt     *time.Time `json:"occurred_at"`
}

type ingestEventResponse struct {
	Entry     *ledgerdomain.LedgerEntry `json:"entry"`
	Duplicate bool                      `json:"duplicate"`
	Stickers  []*stickerdomain.Sticker  `json:"stickers,omitempty"`
}

// IngestEvent is the inbound action-event path: append to the ledger, then
// let the aggregator issue stickers for any thresholds the event crossed.
func (s *Server) IngestEvent(c *gin.Context) {
	cfg, ok := tenantConfig(c)
	if !ok {
		AbortWithError(c, tenantdomain.ErrConfigNotFound)
		return
	}

	var req ingestEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	occurredAt := time.Now().UTC()
	if req.OccurredAt != nil {
		occurredAt = *req.OccurredAt
	}

	entry, err := s.ledgerSvc.Append(c.Request.Context(), ledgerdomain.AppendRequest{
		TenantID:       cfg.TenantID,
		CustomerID:     req.CustomerID,
		ActionType:     req.ActionType,
		IdempotencyKey: req.IdempotencyKey,
		OccurredAt:     occurredAt,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	// Aggregation runs even for replays. A retried request whose first
	// attempt crashed between append and aggregation still owes the customer
	// any crossing the committed entry completed; re-aggregating an already
	// advanced cycle issues nothing.
	stickers, err := s.balanceSvc.OnNewEntry(c.Request.Context(), entry)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	status := http.StatusCreated
	if entry.Duplicate {
		status = http.StatusOK
	}
	c.JSON(status, ingestEventResponse{
		Entry:     entry,
		Duplicate: entry.Duplicate,
		Stickers:  stickers,
	})
}
