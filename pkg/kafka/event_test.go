package kafka

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type orderPayload struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
}

func TestNewEvent_PopulatesEnvelope(t *testing.T) {
	event, err := NewEvent(EventOrderUpdated, "order-1", "order", "backend", orderPayload{
		OrderID: "order-1",
		Status:  "shipped",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, event.EventID)
	assert.Equal(t, EventOrderUpdated, event.EventType)
	assert.Equal(t, "order-1", event.AggregateID)
	assert.Equal(t, "order", event.AggregateType)
	assert.Equal(t, 1, event.Version)
	assert.False(t, event.Timestamp.IsZero())
}

func TestEvent_MarshalRoundTrip(t *testing.T) {
	event, err := NewEvent(EventOrderCreated, "order-2", "order", "backend", orderPayload{
		OrderID: "order-2",
		Status:  "pending",
	})
	require.NoError(t, err)

	raw, err := event.Marshal()
	require.NoError(t, err)

	decoded, err := UnmarshalEvent(raw)
	require.NoError(t, err)
	assert.Equal(t, event.EventID, decoded.EventID)
	assert.Equal(t, event.AggregateID, decoded.AggregateID)

	var payload orderPayload
	require.NoError(t, decoded.UnmarshalData(&payload))
	assert.Equal(t, "pending", payload.Status)
}

func TestUnmarshalEvent_Garbage(t *testing.T) {
	_, err := UnmarshalEvent([]byte("not json"))
	assert.Error(t, err)
}

func TestDefaultConsumerConfig(t *testing.T) {
	cfg := DefaultConsumerConfig([]string{"k1:9092"}, "spotly-admin", "order.events")

	assert.Equal(t, []string{"k1:9092"}, cfg.Brokers)
	assert.Equal(t, "spotly-admin", cfg.GroupID)
	assert.Equal(t, "order.events", cfg.Topic)
	assert.Positive(t, cfg.MaxBytes)
}
