package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Apple-Square/moment-notification/internal/domain"
)

const recordColumns = `
	r.id, r.receiver_id, r.notification_id, r.is_read, r.created_at,
	n.id, n.type, n.sender_id, n.title, n.content, n.reference_id, n.created_at`

// CreateNotification inserts the shared content row. The partial unique
// index on source_event_id absorbs event-bus redelivery: a duplicate
// source event inserts nothing and returns (nil, nil).
func (s *Store) CreateNotification(ctx context.Context, input domain.NotificationInput) (*domain.Notification, error) {
	var referenceID, sourceEventID *string
	if input.ReferenceID != "" {
		referenceID = &input.ReferenceID
	}
	if input.SourceEventID != "" {
		sourceEventID = &input.SourceEventID
	}

	var (
		n         domain.Notification
		refOut    *string
		sourceOut *string
	)
	err := s.pool.QueryRow(ctx, `
		INSERT INTO notifications (type, sender_id, title, content, reference_id, source_event_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (source_event_id) WHERE source_event_id IS NOT NULL DO NOTHING
		RETURNING id, type, sender_id, title, content, reference_id, created_at, source_event_id
	`, string(input.Type), input.SenderID, input.Title, input.Content, referenceID, sourceEventID).
		Scan(&n.ID, &n.Type, &n.SenderID, &n.Title, &n.Content, &refOut, &n.CreatedAt, &sourceOut)
	if errors.Is(err, pgx.ErrNoRows) {
		// Duplicate source_event_id, idempotent — not an error
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("insert notification: %w", err)
	}
	if refOut != nil {
		n.ReferenceID = *refOut
	}
	if sourceOut != nil {
		n.SourceEventID = *sourceOut
	}
	return &n, nil
}

// AddRecipients bulk-inserts recipient rows in a single statement.
func (s *Store) AddRecipients(ctx context.Context, notificationID uuid.UUID, receiverIDs []string) ([]*domain.RecipientRecord, error) {
	if len(receiverIDs) == 0 {
		return nil, nil
	}

	const paramsPerRow = 2
	args := make([]any, 0, len(receiverIDs)*paramsPerRow)
	values := make([]string, 0, len(receiverIDs))
	for i, receiverID := range receiverIDs {
		base := i * paramsPerRow
		values = append(values, fmt.Sprintf("($%d,$%d)", base+1, base+2))
		args = append(args, receiverID, notificationID)
	}

	query := "INSERT INTO recipient_records (receiver_id, notification_id) VALUES " +
		strings.Join(values, ",") +
		" RETURNING id, receiver_id, notification_id, is_read, created_at"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("bulk insert recipient records: %w", err)
	}
	defer rows.Close()

	var recs []*domain.RecipientRecord
	for rows.Next() {
		var rec domain.RecipientRecord
		if err := rows.Scan(&rec.ID, &rec.ReceiverID, &rec.NotificationID, &rec.IsRead, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan inserted recipient record: %w", err)
		}
		recs = append(recs, &rec)
	}
	return recs, rows.Err()
}

// ListAfter pages the user's records past the replay cursor, ascending.
func (s *Store) ListAfter(ctx context.Context, receiverID string, afterID int64, limit int) ([]*domain.RecipientRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+recordColumns+`
		FROM recipient_records r
		JOIN notifications n ON n.id = r.notification_id
		WHERE r.receiver_id = $1 AND r.id > $2
		ORDER BY r.id ASC
		LIMIT $3
	`, receiverID, afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("list records after cursor: %w", err)
	}
	defer rows.Close()

	var recs []*domain.RecipientRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// List fetches records for REST listing, newest first with an optional
// exclusive before-cursor.
func (s *Store) List(ctx context.Context, f domain.RecordFilter) ([]*domain.RecipientRecord, error) {
	query := `
		SELECT ` + recordColumns + `
		FROM recipient_records r
		JOIN notifications n ON n.id = r.notification_id
		WHERE r.receiver_id = $1`
	args := []any{f.ReceiverID}
	paramIdx := 2

	if f.IsRead != nil {
		query += fmt.Sprintf(" AND r.is_read = $%d", paramIdx)
		args = append(args, *f.IsRead)
		paramIdx++
	}
	if f.Before > 0 {
		query += fmt.Sprintf(" AND r.id < $%d", paramIdx)
		args = append(args, f.Before)
		paramIdx++
	}

	query += fmt.Sprintf(" ORDER BY r.id DESC LIMIT $%d", paramIdx)
	args = append(args, f.Limit)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var recs []*domain.RecipientRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// CountUnread returns the unread badge count.
func (s *Store) CountUnread(ctx context.Context, receiverID string) (int64, error) {
	var count int64
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM recipient_records WHERE receiver_id = $1 AND is_read = FALSE`,
		receiverID,
	).Scan(&count)
	return count, err
}

// MarkRead flips one record to read. Already-read rows are left alone.
func (s *Store) MarkRead(ctx context.Context, recordID int64, receiverID string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE recipient_records SET is_read = TRUE
		WHERE id = $1 AND receiver_id = $2 AND is_read = FALSE
	`, recordID, receiverID)
	if err != nil {
		return fmt.Errorf("mark read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrRecordNotFound
	}
	return nil
}

// MarkAllRead marks every unread record of the user as read.
func (s *Store) MarkAllRead(ctx context.Context, receiverID string) (int64, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE recipient_records SET is_read = TRUE
		WHERE receiver_id = $1 AND is_read = FALSE
	`, receiverID)
	if err != nil {
		return 0, fmt.Errorf("mark all read: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Delete removes one recipient record and, when it was the last reference,
// the shared notification row. Both statements run in one transaction so
// the no-orphans invariant holds under concurrent deletes.
func (s *Store) Delete(ctx context.Context, recordID int64, receiverID string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin delete: %w", err)
	}
	defer tx.Rollback(ctx)

	var notificationID uuid.UUID
	err = tx.QueryRow(ctx, `
		DELETE FROM recipient_records WHERE id = $1 AND receiver_id = $2
		RETURNING notification_id
	`, recordID, receiverID).Scan(&notificationID)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrRecordNotFound
	}
	if err != nil {
		return fmt.Errorf("delete recipient record: %w", err)
	}

	_, err = tx.Exec(ctx, `
		DELETE FROM notifications n
		WHERE n.id = $1
		  AND NOT EXISTS (SELECT 1 FROM recipient_records r WHERE r.notification_id = n.id)
	`, notificationID)
	if err != nil {
		return fmt.Errorf("delete orphaned notification: %w", err)
	}

	return tx.Commit(ctx)
}

// PurgeOlderThan drops records past the retention window, then sweeps
// notifications left without any reference.
func (s *Store) PurgeOlderThan(ctx context.Context, days int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -days)

	tag, err := s.pool.Exec(ctx,
		`DELETE FROM recipient_records WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge recipient records: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		DELETE FROM notifications n
		WHERE NOT EXISTS (SELECT 1 FROM recipient_records r WHERE r.notification_id = n.id)
	`)
	if err != nil {
		return tag.RowsAffected(), fmt.Errorf("purge orphaned notifications: %w", err)
	}

	return tag.RowsAffected(), nil
}
