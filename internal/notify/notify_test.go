package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/bahriwassim/zishop1-sub000/internal/model"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func sampleOrder() *model.Order {
	client := uint(9)
	return &model.Order{
		ID:          3,
		HotelID:     1,
		MerchantID:  2,
		ClientID:    &client,
		OrderNumber: "ZS-ABC-1234",
		TotalAmount: decimal.RequireFromString("12.00"),
		Status:      model.StatusPending,
	}
}

func TestRedisNotifierPublishesToRecipients(t *testing.T) {
	_, client := setupTestRedis(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	n := NewRedis(client, "zishop:orders")
	channels := n.Channels(NewOrderEvent(sampleOrder(), time.Now()))
	assert.Equal(t, []string{"zishop:orders:hotel:1", "zishop:orders:merchant:2", "zishop:orders:client:9"}, channels)

	sub := client.Subscribe(ctx, channels...)
	defer sub.Close()
	for range channels {
		_, err := sub.Receive(ctx)
		require.NoError(t, err)
	}

	require.NoError(t, n.NotifyNewOrder(ctx, sampleOrder()))

	received := map[string]Event{}
	for range channels {
		msg, err := sub.ReceiveMessage(ctx)
		require.NoError(t, err)
		var e Event
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &e))
		received[msg.Channel] = e
	}
	for _, channel := range channels {
		e, ok := received[channel]
		require.True(t, ok, channel)
		assert.Equal(t, EventNewOrder, e.Type)
		assert.Equal(t, "ZS-ABC-1234", e.OrderNumber)
		require.NotNil(t, e.Order)
		assert.True(t, e.Order.TotalAmount.Equal(decimal.RequireFromString("12")))
	}
}

func TestRedisNotifierSkipsClientChannelWithoutClient(t *testing.T) {
	n := NewRedis(nil, "p")
	channels := n.Channels(StatusChangeEvent(StatusChange{HotelID: 4, MerchantID: 5, NewStatus: model.StatusReady}, time.Now()))
	assert.Equal(t, []string{"p:hotel:4", "p:merchant:5"}, channels)
}

func TestRedisNotifierReportsTransportFailure(t *testing.T) {
	mr, client := setupTestRedis(t)
	mr.Close()

	n := NewRedis(client, "zishop:orders")
	err := n.NotifyStatusChange(context.Background(), StatusChange{OrderID: 1, HotelID: 1, MerchantID: 2, NewStatus: model.StatusConfirmed})
	assert.Error(t, err)
}

func TestLogNotifier(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	n := NewLog(zap.New(core))

	require.NoError(t, n.NotifyNewOrder(context.Background(), sampleOrder()))
	require.NoError(t, n.NotifyStatusChange(context.Background(), StatusChange{
		OrderID:     3,
		OrderNumber: "ZS-ABC-1234",
		NewStatus:   model.StatusConfirmed,
		Message:     "Order confirmed",
	}))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "New order", entries[0].Message)
	assert.Equal(t, "ZS-ABC-1234", entries[0].ContextMap()["order_number"])
	assert.Equal(t, "confirmed", entries[1].ContextMap()["status"])
}

type failing struct{ err error }

func (f failing) NotifyNewOrder(context.Context, *model.Order) error     { return f.err }
func (f failing) NotifyStatusChange(context.Context, StatusChange) error { return f.err }

type counting struct{ calls int }

func (c *counting) NotifyNewOrder(context.Context, *model.Order) error {
	c.calls++
	return nil
}

func (c *counting) NotifyStatusChange(context.Context, StatusChange) error {
	c.calls++
	return nil
}

func TestMultiReachesEveryNotifier(t *testing.T) {
	boom := errors.New("boom")
	tail := &counting{}
	m := Multi{failing{err: boom}, Nop{}, tail}

	err := m.NotifyNewOrder(context.Background(), sampleOrder())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, tail.calls)

	err = m.NotifyStatusChange(context.Background(), StatusChange{})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, tail.calls)

	assert.NoError(t, Multi{Nop{}, tail}.NotifyNewOrder(context.Background(), sampleOrder()))
}
