package models

import "encoding/json"

type EventType string

const (
	EventMessage        EventType = "message"
	EventChannelCreated EventType = "channel_created"
	EventChannelUpdated EventType = "channel_updated"
	EventChannelDeleted EventType = "channel_deleted"
	EventMemberUpdate   EventType = "member_update"
	EventUserOnline     EventType = "user_online"
	EventUserOffline    EventType = "user_offline"
)

// Event is the envelope for everything the server pushes over the
// realtime channel. Data is decoded per Type by the single dispatch path;
// delivery is at least once, so every handler has to be idempotent.
type Event struct {
	Type EventType       `json:"type"`
	Data json.RawMessage `json:"data"`
}

type ChannelDeletedEvent struct {
	ID int `json:"id"`
}

type PresenceEvent struct {
	UserID   int    `json:"user_id"`
	Username string `json:"username,omitempty"`
}

// SendMessageEvent is the one outbound emission the channel supports.
type SendMessageEvent struct {
	Type      string `json:"type"`
	Content   string `json:"content"`
	MemberID  *int   `json:"member_id,omitempty"`
	ChannelID *int   `json:"channel_id,omitempty"`
}
