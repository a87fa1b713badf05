package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/Apple-Square/moment-notification/internal/domain"
)

const defaultPresenceTTL = 30 * time.Second

// Presence tracks "user is viewing room X right now" markers in a TTL
// store. Markers expire passively; no background sweep exists.
type Presence struct {
	ttl       domain.TTLStore
	chat      domain.ChatStore
	markerTTL time.Duration
}

// NewPresence builds a tracker. markerTTL of zero selects the default.
func NewPresence(ttl domain.TTLStore, chat domain.ChatStore, markerTTL time.Duration) *Presence {
	if markerTTL <= 0 {
		markerTTL = defaultPresenceTTL
	}
	return &Presence{ttl: ttl, chat: chat, markerTTL: markerTTL}
}

func presenceKey(userID, roomID string) string {
	return "presence:room:" + roomID + ":" + userID
}

// Heartbeat creates or refreshes the marker. Callers who are not current
// room members are rejected with ErrNotRoomMember and no side effects.
func (p *Presence) Heartbeat(ctx context.Context, userID, roomID string) error {
	member, err := p.chat.IsMember(ctx, roomID, userID)
	if err != nil {
		return fmt.Errorf("membership check: %w", err)
	}
	if !member {
		return domain.ErrNotRoomMember
	}
	return p.ttl.Set(ctx, presenceKey(userID, roomID), "1", p.markerTTL)
}

// IsActive reports whether the marker currently exists.
func (p *Presence) IsActive(ctx context.Context, userID, roomID string) (bool, error) {
	return p.ttl.Exists(ctx, presenceKey(userID, roomID))
}

// Clear removes the marker explicitly, e.g. when the user leaves the
// room view before the TTL runs out.
func (p *Presence) Clear(ctx context.Context, userID, roomID string) error {
	return p.ttl.Delete(ctx, presenceKey(userID, roomID))
}
