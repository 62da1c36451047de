package realtime

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeConn records every frame written to it
type fakeConn struct {
	mu       sync.Mutex
	messages [][]byte
}

func (f *fakeConn) WriteMessage(messageType int, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, data)
	return nil
}

func (f *fakeConn) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.messages)
}

func mustEvent(t *testing.T, eventType string) *Event {
	t.Helper()
	event, err := NewEvent(eventType, map[string]string{"hello": "world"})
	require.NoError(t, err)
	return event
}

func TestDuplicateEventDeliveredOnce(t *testing.T) {
	hub := NewHub(zap.NewNop())
	conn := &fakeConn{}
	hub.Register(1, conn)

	event := mustEvent(t, EventNotificationCreated)

	// a direct delivery racing its pub/sub echo carries the same event id
	hub.Broadcast(1, event)
	hub.Broadcast(1, event)

	assert.Equal(t, 1, conn.count())

	other := mustEvent(t, EventNotificationCreated)
	hub.Broadcast(1, other)
	assert.Equal(t, 2, conn.count())
}

func TestBroadcastTargetsSingleUser(t *testing.T) {
	hub := NewHub(zap.NewNop())
	alice := &fakeConn{}
	aliceTablet := &fakeConn{}
	bob := &fakeConn{}
	hub.Register(1, alice)
	hub.Register(1, aliceTablet)
	hub.Register(2, bob)

	hub.Broadcast(1, mustEvent(t, EventNotificationCreated))

	assert.Equal(t, 1, alice.count())
	assert.Equal(t, 1, aliceTablet.count())
	assert.Equal(t, 0, bob.count())
}

func TestBroadcastAllReachesEveryConnection(t *testing.T) {
	hub := NewHub(zap.NewNop())
	alice := &fakeConn{}
	bob := &fakeConn{}
	hub.Register(1, alice)
	hub.Register(2, bob)

	hub.BroadcastAll(mustEvent(t, EventPostCreated))

	assert.Equal(t, 1, alice.count())
	assert.Equal(t, 1, bob.count())
}

func TestUnregisterStopsDelivery(t *testing.T) {
	hub := NewHub(zap.NewNop())
	conn := &fakeConn{}
	hub.Register(1, conn)
	require.Equal(t, 1, hub.ConnectionCount(1))

	hub.Unregister(1, conn)
	assert.Equal(t, 0, hub.ConnectionCount(1))

	hub.Broadcast(1, mustEvent(t, EventNotificationCreated))
	assert.Equal(t, 0, conn.count())
}

func TestDedupWindowIsPerConnection(t *testing.T) {
	hub := NewHub(zap.NewNop())
	first := &fakeConn{}
	hub.Register(1, first)

	event := mustEvent(t, EventNotificationCreated)
	hub.Broadcast(1, event)

	// a connection opened later has no memory of the event
	second := &fakeConn{}
	hub.Register(1, second)
	hub.Broadcast(1, event)

	assert.Equal(t, 1, first.count())
	assert.Equal(t, 1, second.count())
}

func TestDedupWindowEvictsOldIDs(t *testing.T) {
	hub := NewHub(zap.NewNop())
	conn := &fakeConn{}
	hub.Register(1, conn)

	old := mustEvent(t, EventNotificationCreated)
	hub.Broadcast(1, old)

	for i := 0; i < recentWindow; i++ {
		hub.Broadcast(1, mustEvent(t, EventNotificationCreated))
	}

	// the oldest id has rolled off the ring, so it delivers again
	hub.Broadcast(1, old)
	assert.Equal(t, recentWindow+2, conn.count())
}

// dialTestConn upgrades a real websocket pair and returns the server side
// plus the client for draining.
func dialTestConn(t *testing.T) (server, client *websocket.Conn) {
	t.Helper()

	upgrader := websocket.Upgrader{}
	serverConns := make(chan *websocket.Conn, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Error(err)
			return
		}
		serverConns <- conn
	}))
	t.Cleanup(srv.Close)

	client, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	server = <-serverConns
	t.Cleanup(func() { server.Close() })
	return server, client
}

func TestConcurrentBroadcastsOverRealConnection(t *testing.T) {
	hub := NewHub(zap.NewNop())
	server, client := dialTestConn(t)
	hub.Register(1, server)

	// distinct events from many goroutines must serialize onto the single
	// gorilla writer instead of panicking with a concurrent write
	const workers = 8
	const perWorker = 16
	events := make([]*Event, workers*perWorker)
	for i := range events {
		events[i] = mustEvent(t, EventNotificationCreated)
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(batch []*Event) {
			defer wg.Done()
			for _, event := range batch {
				hub.Broadcast(1, event)
			}
		}(events[w*perWorker : (w+1)*perWorker])
	}

	require.NoError(t, client.SetReadDeadline(time.Now().Add(5*time.Second)))
	received := make(map[string]bool, len(events))
	for len(received) < len(events) {
		_, data, err := client.ReadMessage()
		require.NoError(t, err)
		event, err := DecodeEvent(data)
		require.NoError(t, err)
		assert.False(t, received[event.EventID], "event delivered twice")
		received[event.EventID] = true
	}
	wg.Wait()
}

func TestConcurrentBroadcasts(t *testing.T) {
	hub := NewHub(zap.NewNop())
	conn := &fakeConn{}
	hub.Register(1, conn)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			event, err := NewEvent(EventNotificationCreated, fmt.Sprintf("payload-%d", i))
			if err != nil {
				t.Error(err)
				return
			}
			hub.Broadcast(1, event)
			hub.Broadcast(1, event)
		}(i)
	}
	wg.Wait()

	// each event delivered exactly once despite the duplicate sends
	assert.Equal(t, 20, conn.count())
}
