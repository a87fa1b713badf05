package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Apple-Square/moment-notification/internal/domain"
)

// FollowersAfter walks the follow graph with a keyset cursor on the
// relation id, ascending. Used by feed fan-out; the cursor keeps each
// page read bounded regardless of follower count.
func (s *Store) FollowersAfter(ctx context.Context, followeeID string, afterRelationID int64, limit int) ([]domain.Follower, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, follower_id
		FROM follows
		WHERE followee_id = $1 AND id > $2
		ORDER BY id ASC
		LIMIT $3
	`, followeeID, afterRelationID, limit)
	if err != nil {
		return nil, fmt.Errorf("list followers: %w", err)
	}
	defer rows.Close()

	var followers []domain.Follower
	for rows.Next() {
		var f domain.Follower
		if err := rows.Scan(&f.RelationID, &f.UserID); err != nil {
			return nil, fmt.Errorf("scan follower: %w", err)
		}
		followers = append(followers, f)
	}
	return followers, rows.Err()
}

// Chat implements domain.ChatStore. It is a separate type from Store
// because both ports expose a CountUnread method with different meaning.
type Chat struct {
	pool *pgxpool.Pool
}

// NewChat creates the chat membership store over the shared pool.
func NewChat(pool *pgxpool.Pool) *Chat {
	return &Chat{pool: pool}
}

var _ domain.ChatStore = (*Chat)(nil)

// RoomMembers returns every member of a room with their mute flag.
func (s *Chat) RoomMembers(ctx context.Context, roomID string) ([]domain.ChatMember, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT user_id, muted
		FROM chat_members
		WHERE room_id = $1
	`, roomID)
	if err != nil {
		return nil, fmt.Errorf("list room members: %w", err)
	}
	defer rows.Close()

	var members []domain.ChatMember
	for rows.Next() {
		var m domain.ChatMember
		if err := rows.Scan(&m.UserID, &m.Muted); err != nil {
			return nil, fmt.Errorf("scan room member: %w", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// IsMember reports whether the user currently belongs to the room.
func (s *Chat) IsMember(ctx context.Context, roomID, userID string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM chat_members WHERE room_id = $1 AND user_id = $2)`,
		roomID, userID,
	).Scan(&exists)
	return exists, err
}

// CountUnread returns the user's unread chat message count across all of
// their rooms, based on each room's last-read watermark.
func (s *Chat) CountUnread(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM chat_messages m
		JOIN chat_members cm ON cm.room_id = m.room_id
		WHERE cm.user_id = $1
		  AND m.sender_id <> $1
		  AND m.id > COALESCE(cm.last_read_message_id, 0)
	`, userID).Scan(&count)
	return count, err
}
