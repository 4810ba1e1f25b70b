package event

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSSEServerDeliversToTopicOnly(t *testing.T) {
	server := NewSSEServer()
	go server.Run()

	alice := NewClient()
	bob := NewClient()
	server.Register(UserTopic("alice"), alice)
	server.Register(UserTopic("bob"), bob)

	server.Broadcast(Event{Topic: UserTopic("alice"), Type: EventTypeNotification, Data: "hello"})

	select {
	case got := <-alice:
		assert.Equal(t, EventTypeNotification, got.Type)
		assert.Equal(t, "hello", got.Data)
	case <-time.After(time.Second):
		t.Fatal("event was not delivered")
	}

	select {
	case got := <-bob:
		t.Fatalf("unexpected event for bob: %+v", got)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSSEServerDropsWhenClientIsFull(t *testing.T) {
	server := NewSSEServer()

	client := make(chan Event, 1)
	server.Register("user:x", client)

	server.deliver(Event{Topic: "user:x", Type: "a"})
	server.deliver(Event{Topic: "user:x", Type: "b"})

	require.Len(t, client, 1)
	assert.Equal(t, "a", (<-client).Type)
}

func TestSSEServerUnregisterClosesClient(t *testing.T) {
	server := NewSSEServer()

	client := NewClient()
	server.Register("user:x", client)
	server.Unregister("user:x", client)

	_, open := <-client
	assert.False(t, open)

	// unregistering twice must not panic on a closed channel
	server.Unregister("user:x", client)
}
