package domain

import (
	"time"

	"github.com/google/uuid"
)

// NotificationType identifies what kind of event produced a notification.
// The set is closed: the strategy registry is keyed by it and refuses
// anything outside this enumeration.
type NotificationType string

const (
	TypeComment     NotificationType = "COMMENT"
	TypePostLike    NotificationType = "POST_LIKE"
	TypeCommentLike NotificationType = "COMMENT_LIKE"
	TypeFollow      NotificationType = "FOLLOW"
	TypeFeed        NotificationType = "FEED"
	TypeChat        NotificationType = "CHAT"
)

// Types lists every member of the closed enum, in a fixed order.
// The strategy registry iterates this at startup to verify completeness.
func Types() []NotificationType {
	return []NotificationType{TypeComment, TypePostLike, TypeCommentLike, TypeFollow, TypeFeed, TypeChat}
}

// Valid reports whether t is a member of the closed enum.
func (t NotificationType) Valid() bool {
	switch t {
	case TypeComment, TypePostLike, TypeCommentLike, TypeFollow, TypeFeed, TypeChat:
		return true
	}
	return false
}

// Notification is the shared, immutable content of one logical event.
// It is created once even when fanned out to thousands of recipients.
type Notification struct {
	ID          uuid.UUID        `json:"id"`
	Type        NotificationType `json:"type"`
	SenderID    string           `json:"sender_id"`
	Title       string           `json:"title"`
	Content     string           `json:"content"`
	ReferenceID string           `json:"reference_id,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`

	// SourceEventID is the id of the inbound event that produced this
	// notification. Inserts dedup on it, so an at-least-once event bus
	// redelivering the same event never creates a second row.
	SourceEventID string `json:"-"`
}

// RecipientRecord is the per-user delivery unit. Its id is strictly
// increasing and serves as the replay cursor. Many records may reference
// one Notification. IsRead only ever transitions false -> true.
type RecipientRecord struct {
	ID             int64     `json:"id"`
	ReceiverID     string    `json:"receiver_id"`
	NotificationID uuid.UUID `json:"notification_id"`
	IsRead         bool      `json:"is_read"`
	CreatedAt      time.Time `json:"created_at"`

	// Notification is populated on reads that join the shared content
	// (replay, REST listing). Nil on bare inserts.
	Notification *Notification `json:"notification,omitempty"`
}

// NotificationInput is the pre-persistence DTO built by strategies.
type NotificationInput struct {
	Type          NotificationType
	SenderID      string
	Title         string
	Content       string
	ReferenceID   string
	SourceEventID string
}

// RecordFilter holds query parameters for listing recipient records.
type RecordFilter struct {
	ReceiverID string
	IsRead     *bool
	// Before is an exclusive upper-bound record id for descending
	// keyset pagination. Zero means "from the newest".
	Before int64
	Limit  int
}

// Category namespaces push channels: one user may hold independent
// streams for different categories.
type Category string

const (
	CategoryNotification Category = "NOTIFICATION"
)

// EventName is the SSE event label on the outbound envelope.
type EventName string

const (
	// EventConnection is the fixed one-shot handshake pushed right after
	// a successful connect, so idle-timeout proxies see traffic.
	EventConnection EventName = "connection"
	// EventBadge carries the aggregate unread count of durable notifications.
	EventBadge EventName = "notification.badge"
	// EventChatBadge carries the cross-room unread chat message count.
	EventChatBadge EventName = "notification.badge.chat"
	// EventPopup carries a single per-item payload.
	EventPopup EventName = "notification.popup"
)

// Event is the outbound envelope for one SSE write. ID is optional; popup
// events for persisted notifications carry the recipient record id here
// so clients can resume from it on reconnect.
type Event struct {
	ID   string
	Name EventName
	Data any
}

// ChatMessageType tells the chat strategy whether the popup content is
// the literal message text or a fixed placeholder.
type ChatMessageType string

const (
	MessageText  ChatMessageType = "TEXT"
	MessageImage ChatMessageType = "IMAGE"
	MessageVideo ChatMessageType = "VIDEO"
	MessagePost  ChatMessageType = "POST"
)
