package event

import "fmt"

// Event is a message pushed to the subscribers of a topic.
type Event struct {
	Topic string // e.g. "user:<id>"
	Type  string
	Data  any
}

const (
	EventTypeNotification = "notification"
	EventTypeOrderUpdated = "order_updated"
)

// UserTopic is the topic a user's notification stream subscribes to.
func UserTopic(userID string) string {
	return fmt.Sprintf("user:%s", userID)
}

// EventSender fans events out to the clients subscribed to their topic.
type EventSender interface {
	Register(topic string, client chan Event)
	Unregister(topic string, client chan Event)
	Broadcast(event Event)
	Run()
}
