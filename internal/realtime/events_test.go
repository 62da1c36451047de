package realtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventRoundTrip(t *testing.T) {
	event, err := NewEvent(EventPostCreated, map[string]any{"post_id": "abc"})
	require.NoError(t, err)
	assert.NotEmpty(t, event.EventID)

	data, err := event.Encode()
	require.NoError(t, err)

	decoded, err := DecodeEvent(data)
	require.NoError(t, err)
	assert.Equal(t, event.EventID, decoded.EventID)
	assert.Equal(t, EventPostCreated, decoded.Type)
	assert.JSONEq(t, `{"post_id":"abc"}`, string(decoded.Payload))
}

func TestDecodeEventRejectsGarbage(t *testing.T) {
	_, err := DecodeEvent([]byte("not json"))
	assert.Error(t, err)
}

func TestNewEventIDsAreUnique(t *testing.T) {
	a, err := NewEvent(EventNotificationCreated, nil)
	require.NoError(t, err)
	b, err := NewEvent(EventNotificationCreated, nil)
	require.NoError(t, err)
	assert.NotEqual(t, a.EventID, b.EventID)
}

func TestUserChannelName(t *testing.T) {
	assert.Equal(t, "notifications:user:42", UserChannel(42))
}
