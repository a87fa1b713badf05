package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// RecordStore is the port for durable Notification / RecipientRecord
// persistence. Implementations live in infrastructure/postgres.
type RecordStore interface {
	// CreateNotification stores the shared content of one logical event.
	// When input carries a SourceEventID already persisted, the insert is
	// skipped and (nil, nil) is returned: redelivery is not an error.
	CreateNotification(ctx context.Context, input NotificationInput) (*Notification, error)

	// AddRecipients bulk-inserts one recipient record per receiver for an
	// existing notification and returns them with their assigned ids.
	AddRecipients(ctx context.Context, notificationID uuid.UUID, receiverIDs []string) ([]*RecipientRecord, error)

	// ListAfter returns up to limit of the user's recipient records with
	// id > afterID, ascending, each joined with its Notification.
	// A cursor past the newest record yields an empty slice, not an error.
	ListAfter(ctx context.Context, receiverID string, afterID int64, limit int) ([]*RecipientRecord, error)

	// List fetches recipient records for REST listing, newest first.
	List(ctx context.Context, filter RecordFilter) ([]*RecipientRecord, error)

	// CountUnread returns the user's unread badge count.
	CountUnread(ctx context.Context, receiverID string) (int64, error)

	// MarkRead flips a single record to read. false -> true only.
	MarkRead(ctx context.Context, recordID int64, receiverID string) error

	// MarkAllRead marks every unread record of the user as read.
	MarkAllRead(ctx context.Context, receiverID string) (int64, error)

	// Delete removes one recipient record. When it was the last record
	// referencing its notification, the notification row goes with it.
	Delete(ctx context.Context, recordID int64, receiverID string) error

	// PurgeOlderThan deletes records (and orphaned notifications) older
	// than the given number of days. Retention cleanup.
	PurgeOlderThan(ctx context.Context, days int) (int64, error)
}

// Follower is one edge of the follow graph, carrying the relation id
// used as the keyset cursor during feed fan-out.
type Follower struct {
	RelationID int64
	UserID     string
}

// FollowStore is the port for cursor-paginated follower listing.
type FollowStore interface {
	// FollowersAfter returns up to limit followers of followeeID whose
	// follow-relation id is greater than afterRelationID, ascending.
	FollowersAfter(ctx context.Context, followeeID string, afterRelationID int64, limit int) ([]Follower, error)
}

// ChatMember is one member of a chat room with their per-room mute flag.
type ChatMember struct {
	UserID string
	Muted  bool
}

// ChatStore is the port for room membership and chat unread aggregation.
type ChatStore interface {
	RoomMembers(ctx context.Context, roomID string) ([]ChatMember, error)
	IsMember(ctx context.Context, roomID, userID string) (bool, error)

	// CountUnread returns the user's unread chat message count across all
	// of their rooms.
	CountUnread(ctx context.Context, userID string) (int64, error)
}

// TTLStore is a generic set-with-expiry cache backing presence markers.
// Core logic stays agnostic of the concrete store; the default
// implementation lives in infrastructure/redisttl.
type TTLStore interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) error
}
