package realtime

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestNotifier(t *testing.T) (*Notifier, *Hub) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewNotifier(rdb, zap.NewNop()), NewHub(zap.NewNop())
}

func TestPublishUserReachesRecipientOnly(t *testing.T) {
	notifier, hub := newTestNotifier(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, notifier.StartSubscriber(ctx, hub))

	alice := &fakeConn{}
	bob := &fakeConn{}
	hub.Register(1, alice)
	hub.Register(2, bob)

	event := mustEvent(t, EventNotificationCreated)
	require.NoError(t, notifier.PublishUser(ctx, 1, event))

	require.Eventually(t, func() bool {
		return alice.count() == 1
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, bob.count())
}

func TestPublishFeedReachesEveryone(t *testing.T) {
	notifier, hub := newTestNotifier(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, notifier.StartSubscriber(ctx, hub))

	alice := &fakeConn{}
	bob := &fakeConn{}
	hub.Register(1, alice)
	hub.Register(2, bob)

	require.NoError(t, notifier.PublishFeed(ctx, mustEvent(t, EventPostCreated)))

	require.Eventually(t, func() bool {
		return alice.count() == 1 && bob.count() == 1
	}, time.Second, 10*time.Millisecond)
}

func TestEchoedEventCollapsesWithDirectDelivery(t *testing.T) {
	notifier, hub := newTestNotifier(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, notifier.StartSubscriber(ctx, hub))

	conn := &fakeConn{}
	hub.Register(1, conn)

	// direct delivery first, then the same event comes back off pub/sub
	event := mustEvent(t, EventNotificationCreated)
	hub.Broadcast(1, event)
	require.NoError(t, notifier.PublishUser(ctx, 1, event))

	// the echo must be dropped; give the pump time to process it
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 1, conn.count())
}

func TestNilRedisNotifierIsNoOp(t *testing.T) {
	notifier := NewNotifier(nil, zap.NewNop())
	hub := NewHub(zap.NewNop())
	ctx := context.Background()

	require.NoError(t, notifier.StartSubscriber(ctx, hub))
	require.NoError(t, notifier.PublishFeed(ctx, mustEvent(t, EventPostCreated)))
	require.NoError(t, notifier.PublishUser(ctx, 1, mustEvent(t, EventNotificationCreated)))
	assert.Error(t, notifier.Ping(ctx))
}
