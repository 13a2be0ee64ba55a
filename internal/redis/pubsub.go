package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// BookingEvent tells other instances that a shop's day changed.
type BookingEvent struct {
	Type   string `json:"type"`
	ShopID string `json:"shop_id"`
	Day    string `json:"day"`
	TsUnix int64  `json:"ts_unix"`
}

const (
	EventBookingCreated   = "booking_created"
	EventBookingCancelled = "booking_cancelled"
)

type BookingsPubSub struct {
	rdb     *redis.Client
	channel string
}

func NewBookingsPubSub(rdb *redis.Client) *BookingsPubSub {
	return &BookingsPubSub{
		rdb:     rdb,
		channel: ChannelBookingsChanged(),
	}
}

func (p *BookingsPubSub) PublishBookingCreated(ctx context.Context, shopID, day string) error {
	return p.publish(ctx, "redis.BookingsPubSub.PublishBookingCreated", EventBookingCreated, shopID, day)
}

// PublishBookingCancelled announces that a slot on day became free again.
func (p *BookingsPubSub) PublishBookingCancelled(ctx context.Context, shopID, day string) error {
	return p.publish(ctx, "redis.BookingsPubSub.PublishBookingCancelled", EventBookingCancelled, shopID, day)
}

func (p *BookingsPubSub) publish(ctx context.Context, op, typ, shopID, day string) error {
	b, err := json.Marshal(BookingEvent{
		Type:   typ,
		ShopID: shopID,
		Day:    day,
		TsUnix: time.Now().Unix(),
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := p.rdb.Publish(ctx, p.channel, b).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Subscribe blocks until ctx is done, calling handler for every well formed
// event. Malformed payloads are skipped.
func (p *BookingsPubSub) Subscribe(ctx context.Context, handler func(ctx context.Context, ev BookingEvent)) error {
	sub := p.rdb.Subscribe(ctx, p.channel)
	defer sub.Close()

	ch := sub.Channel(redis.WithChannelSize(256))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m, ok := <-ch:
			if !ok {
				return nil
			}
			var ev BookingEvent
			if err := json.Unmarshal([]byte(m.Payload), &ev); err != nil || ev.ShopID == "" || ev.Day == "" {
				continue
			}
			handler(ctx, ev)
		}
	}
}
