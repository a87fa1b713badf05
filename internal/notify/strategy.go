// Package notify holds the per-type dispatch strategies, the dispatch and
// replay orchestrators and the chat presence tracker. Everything here runs
// on the injected worker pool; persistence always commits before any push
// attempt and a push failure never rolls persistence back.
package notify

import (
	"context"
	"strconv"
	"time"

	"github.com/Apple-Square/moment-notification/internal/domain"
)

// Pusher is the delivery-service port, implemented by sse.Hub.
type Pusher interface {
	Send(category domain.Category, userID string, ev domain.Event) error
}

// TaskPool is the bounded background pool port, implemented by
// workerpool.Pool. Submit must never drop the task (caller-runs on
// saturation).
type TaskPool interface {
	Submit(task func())
}

// Request is the input of one dispatch. SenderID and Type are always set;
// the remaining fields depend on the type (ReceiverID for single-recipient
// types, RoomID/MessageType for chat).
type Request struct {
	Type        domain.NotificationType
	SenderID    string
	SenderName  string
	ReceiverID  string
	Title       string
	Content     string
	ReferenceID string

	// SourceEventID dedups redelivered bus events; empty means no dedup.
	SourceEventID string

	// Chat only.
	RoomID      string
	MessageType domain.ChatMessageType
}

// Strategy is the shared capability of every notification type.
type Strategy interface {
	// SaveAndSend persists whatever the type persists, then pushes live
	// events to the affected recipients.
	SaveAndSend(ctx context.Context, req Request) error

	// ResendMissed re-delivers one durable record during reconnect
	// catch-up. Types without durable records make this a no-op.
	ResendMissed(ctx context.Context, rec *domain.RecipientRecord) error
}

// BadgePayload is the data of badge events: a full idempotent replacement
// count, never an increment.
type BadgePayload struct {
	Count int64 `json:"count"`
}

// PopupPayload is the data of per-item popup events.
type PopupPayload struct {
	RecordID    int64                   `json:"record_id,omitempty"`
	Type        domain.NotificationType `json:"type"`
	SenderID    string                  `json:"sender_id"`
	Title       string                  `json:"title"`
	Content     string                  `json:"content"`
	ReferenceID string                  `json:"reference_id,omitempty"`
	CreatedAt   time.Time               `json:"created_at"`
}

// popupEvent builds the popup for a persisted record, tagged with the
// record id so clients can use it as a resumption cursor.
func popupEvent(rec *domain.RecipientRecord, n *domain.Notification) domain.Event {
	return domain.Event{
		ID:   strconv.FormatInt(rec.ID, 10),
		Name: domain.EventPopup,
		Data: PopupPayload{
			RecordID:    rec.ID,
			Type:        n.Type,
			SenderID:    n.SenderID,
			Title:       n.Title,
			Content:     n.Content,
			ReferenceID: n.ReferenceID,
			CreatedAt:   n.CreatedAt,
		},
	}
}
