package rabbitmq

import (
	"context"
	"encoding/json"
	"testing"

	"factory-dispatch/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	body, err := Encode(RoutingOrderPrinted, domain.OrderPrintedEvent{OrderID: 3, OrderNumber: "VEG-20250101-003"})
	require.NoError(t, err)

	var msg struct {
		Pattern string                   `json:"pattern"`
		ID      string                   `json:"id"`
		Data    domain.OrderPrintedEvent `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &msg))
	assert.Equal(t, "order.printed", msg.Pattern)
	assert.Equal(t, uint64(3), msg.Data.OrderID)
	_, err = uuid.Parse(msg.ID)
	assert.NoError(t, err)

	other, err := Encode(RoutingOrderPrinted, nil)
	require.NoError(t, err)
	assert.NotEqual(t, body, other)
}

func TestEncode_Unmarshalable(t *testing.T) {
	_, err := Encode("x", make(chan int))
	assert.Error(t, err)
}

func TestNopPublisher(t *testing.T) {
	assert.NoError(t, NopPublisher{}.Publish(context.Background(), "x", 1))
}
