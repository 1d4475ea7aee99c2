package models

// Wire channel names for events pushed to clients. Clients subscribe by
// event name, so these are part of the client contract.
const (
	EventNewMessage      = "newMessage"
	EventNewNotification = "newNotification"
	EventOnlineUsers     = "getOnlineUsers"
)

// Event is the envelope every real-time push uses: a channel name and a
// name-specific payload. Events are immutable once built and carry no
// delivery metadata; pushes are at-most-once.
type Event struct {
	Name string      `json:"event"`
	Data interface{} `json:"data"`
}
