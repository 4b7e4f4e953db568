package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEffectiveStatus(t *testing.T) {
	expiry := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	active := &Sticker{Status: StatusActive, ExpiresAt: expiry}
	assert.Equal(t, StatusActive, active.EffectiveStatus(expiry.Add(-time.Second)))
	assert.Equal(t, StatusActive, active.EffectiveStatus(expiry), "expiry instant itself is not past")
	assert.Equal(t, StatusExpired, active.EffectiveStatus(expiry.Add(time.Second)))

	// Terminal states never reclassify, whatever the clock says.
	consumed := &Sticker{Status: StatusConsumed, ExpiresAt: expiry}
	assert.Equal(t, StatusConsumed, consumed.EffectiveStatus(expiry.Add(time.Hour)))

	expired := &Sticker{Status: StatusExpired, ExpiresAt: expiry}
	assert.Equal(t, StatusExpired, expired.EffectiveStatus(expiry.Add(-time.Hour)))
}
