// Package postgres implements the durable store ports over pgx.
//
// Schema (managed externally):
//
//	notifications      (id uuid pk, type, sender_id, title, content, reference_id, created_at,
//	                    source_event_id with a partial unique index where not null)
//	recipient_records  (id bigserial pk, receiver_id, notification_id fk, is_read, created_at)
//	follows            (id bigserial pk, follower_id, followee_id)
//	chat_members       (room_id, user_id, muted, last_read_message_id)
//	chat_messages      (id bigserial pk, room_id, sender_id, type, content, created_at)
package postgres

import (
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Apple-Square/moment-notification/internal/domain"
)

// Store implements domain.RecordStore and domain.FollowStore over one
// connection pool. The chat membership port lives on the Chat type.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a Store.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

var (
	_ domain.RecordStore = (*Store)(nil)
	_ domain.FollowStore = (*Store)(nil)
)

type scannable interface {
	Scan(dest ...any) error
}

// scanRecord reads a recipient_records row joined with its notification.
func scanRecord(row scannable) (*domain.RecipientRecord, error) {
	var (
		rec         domain.RecipientRecord
		n           domain.Notification
		referenceID *string
	)
	err := row.Scan(
		&rec.ID, &rec.ReceiverID, &rec.NotificationID, &rec.IsRead, &rec.CreatedAt,
		&n.ID, &n.Type, &n.SenderID, &n.Title, &n.Content, &referenceID, &n.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("scan recipient record: %w", err)
	}
	if referenceID != nil {
		n.ReferenceID = *referenceID
	}
	rec.Notification = &n
	return &rec, nil
}
