package events

import (
	"context"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

type EventType string

const (
	TypeStickerIssued   EventType = "sticker.issued"
	TypeStickerRedeemed EventType = "sticker.redeemed"
)

// Event is the envelope handed to notification-layer subscribers.
type Event struct {
	ID         string       `json:"id"`
	Type       EventType    `json:"type"`
	TenantID   snowflake.ID `json:"tenant_id"`
	CustomerID string       `json:"customer_id"`
	OccurredAt time.Time    `json:"occurred_at"`
	Data       any          `json:"data"`
}

// StickerIssued is the payload of a sticker.issued event.
type StickerIssued struct {
	StickerID       snowflake.ID `json:"sticker_id"`
	TierIndex       int          `json:"tier_index"`
	DiscountPercent int          `json:"discount_percent"`
	Code            string       `json:"code"`
	ExpiresAt       time.Time    `json:"expires_at"`
}

// StickerRedeemed is the payload of a sticker.redeemed event.
type StickerRedeemed struct {
	StickerID       snowflake.ID `json:"sticker_id"`
	DiscountPercent int          `json:"discount_percent"`
	Code            string       `json:"code"`
	ConsumedAt      time.Time    `json:"consumed_at"`
}

type Handler func(ctx context.Context, evt Event)

// Outbox fans events out to in-process subscribers. Delivery is best-effort
// and at-least-once under caller retries; subscribers must tolerate replays.
type Outbox struct {
	mu   sync.RWMutex
	subs []Handler
	log  *zap.Logger
}

func NewOutbox(log *zap.Logger) *Outbox {
	return &Outbox{log: log.Named("events.outbox")}
}

func (o *Outbox) Subscribe(h Handler) {
	if o == nil || h == nil {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.subs = append(o.subs, h)
}

func (o *Outbox) Publish(ctx context.Context, evtType EventType, tenantID snowflake.ID, customerID string, data any) {
	if o == nil {
		return
	}

	evt := Event{
		ID:         ulid.Make().String(),
		Type:       evtType,
		TenantID:   tenantID,
		CustomerID: customerID,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	}

	o.mu.RLock()
	subs := make([]Handler, len(o.subs))
	copy(subs, o.subs)
	o.mu.RUnlock()

	for _, h := range subs {
		h(ctx, evt)
	}

	o.log.Debug("event published",
		zap.String("event_id", evt.ID),
		zap.String("type", string(evtType)),
		zap.String("tenant_id", tenantID.String()),
	)
}
