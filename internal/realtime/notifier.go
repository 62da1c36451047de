package realtime

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	feedChannel       = "feed:published"
	userChannelPrefix = "notifications:user:"
)

// UserChannel derives the per-recipient notification channel name
func UserChannel(userID uint) string {
	return userChannelPrefix + strconv.FormatUint(uint64(userID), 10)
}

// Notifier publishes bridge events into Redis channels and feeds incoming
// messages back into the hub. With a nil client every publish is a no-op, so
// the service degrades to direct-delivery only.
type Notifier struct {
	rdb *redis.Client
	log *zap.Logger
}

// NewNotifier creates a Notifier on the given Redis client
func NewNotifier(rdb *redis.Client, log *zap.Logger) *Notifier {
	return &Notifier{rdb: rdb, log: log}
}

// PublishFeed announces a newly published post to every open feed connection
func (n *Notifier) PublishFeed(ctx context.Context, event *Event) error {
	if n.rdb == nil {
		return nil
	}
	data, err := event.Encode()
	if err != nil {
		return err
	}
	return n.rdb.Publish(ctx, feedChannel, data).Err()
}

// PublishUser sends an event to a single recipient's channel
func (n *Notifier) PublishUser(ctx context.Context, userID uint, event *Event) error {
	if n.rdb == nil {
		return nil
	}
	data, err := event.Encode()
	if err != nil {
		return err
	}
	return n.rdb.Publish(ctx, UserChannel(userID), data).Err()
}

// StartSubscriber subscribes to the feed channel and the per-user pattern
// and routes every incoming event into the hub. It returns after spawning
// the pump goroutine; the subscription ends when ctx is cancelled.
func (n *Notifier) StartSubscriber(ctx context.Context, hub *Hub) error {
	if n.rdb == nil {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, feedChannel, userChannelPrefix+"*")
	ch := sub.Channel()

	go func() {
		defer sub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				n.route(msg.Channel, []byte(msg.Payload), hub)
			}
		}
	}()
	return nil
}

func (n *Notifier) route(channel string, payload []byte, hub *Hub) {
	event, err := DecodeEvent(payload)
	if err != nil {
		n.log.Warn("dropping malformed bridge event", zap.String("channel", channel), zap.Error(err))
		return
	}

	if channel == feedChannel {
		hub.BroadcastAll(event)
		return
	}

	idStr, ok := strings.CutPrefix(channel, userChannelPrefix)
	if !ok {
		n.log.Warn("dropping event on unknown channel", zap.String("channel", channel))
		return
	}
	userID, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		n.log.Warn("dropping event with bad user channel", zap.String("channel", channel))
		return
	}
	hub.Broadcast(uint(userID), event)
}

// Ping verifies the Redis connection is alive
func (n *Notifier) Ping(ctx context.Context) error {
	if n.rdb == nil {
		return fmt.Errorf("redis not configured")
	}
	return n.rdb.Ping(ctx).Err()
}
