package kafkaproducer

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruudy-sib/payhook/internal/domain/entity"
)

func TestNewMessage(t *testing.T) {
	occurred := time.Date(2025, 11, 24, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		name    string
		event   entity.PaymentEvent
		wantKey string
	}{
		{
			name: "keyed by record key",
			event: entity.PaymentEvent{
				Type:           entity.PaymentEventReconciled,
				RecordKey:      "CH-20251124-19981",
				BasketID:       "CHALLAN-CH-20251124-19981-1764448963246",
				StatusCode:     "000",
				TransactionRef: "TXN1",
				Outcome:        entity.OutcomeUpdatedPrimary,
				OccurredAt:     occurred,
			},
			wantKey: "CH-20251124-19981",
		},
		{
			name: "failed payment falls back to basket id",
			event: entity.PaymentEvent{
				Type:       entity.PaymentEventFailed,
				BasketID:   "CHALLAN-CH-1-1",
				StatusCode: "002",
				Outcome:    entity.OutcomePaymentFailed,
				OccurredAt: occurred,
			},
			wantKey: "CHALLAN-CH-1-1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := newMessage("payment-events", tt.event)
			require.NoError(t, err)

			assert.Equal(t, "payment-events", msg.Topic)
			assert.Equal(t, tt.wantKey, string(msg.Key))
			assert.Equal(t, occurred, msg.Time)
			require.Len(t, msg.Headers, 1)
			assert.Equal(t, string(tt.event.Type), string(msg.Headers[0].Value))

			var decoded entity.PaymentEvent
			require.NoError(t, json.Unmarshal(msg.Value, &decoded))
			assert.Equal(t, tt.event.BasketID, decoded.BasketID)
			assert.Equal(t, tt.event.Outcome, decoded.Outcome)
		})
	}
}
