package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bahriwassim/zishop1-sub000/internal/model"
	"github.com/redis/go-redis/v9"
)

// RedisNotifier publishes events on per-recipient pub/sub channels:
// <prefix>:hotel:<id>, <prefix>:merchant:<id> and <prefix>:client:<id>.
type RedisNotifier struct {
	client redis.Cmdable
	prefix string
	now    func() time.Time
}

// NewRedis returns a notifier publishing through client.
func NewRedis(client redis.Cmdable, prefix string) *RedisNotifier {
	return &RedisNotifier{client: client, prefix: prefix, now: time.Now}
}

// Channels returns the channels an event is routed to.
func (n *RedisNotifier) Channels(e Event) []string {
	channels := []string{
		fmt.Sprintf("%s:hotel:%d", n.prefix, e.HotelID),
		fmt.Sprintf("%s:merchant:%d", n.prefix, e.MerchantID),
	}
	if e.ClientID != nil {
		channels = append(channels, fmt.Sprintf("%s:client:%d", n.prefix, *e.ClientID))
	}
	return channels
}

func (n *RedisNotifier) NotifyNewOrder(ctx context.Context, order *model.Order) error {
	return n.publish(ctx, NewOrderEvent(order, n.now()))
}

func (n *RedisNotifier) NotifyStatusChange(ctx context.Context, change StatusChange) error {
	return n.publish(ctx, StatusChangeEvent(change, n.now()))
}

func (n *RedisNotifier) publish(ctx context.Context, e Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", e.Type, err)
	}

	var errs []error
	for _, channel := range n.Channels(e) {
		if err := n.client.Publish(ctx, channel, payload).Err(); err != nil {
			errs = append(errs, fmt.Errorf("publish to %s: %w", channel, err))
		}
	}
	return errors.Join(errs...)
}
