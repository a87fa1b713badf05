package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/Apple-Square/moment-notification/internal/domain"
)

// singleStrategy serves the one-recipient types: COMMENT, POST_LIKE,
// COMMENT_LIKE, FOLLOW. One Notification, one RecipientRecord, then a
// recomputed badge and a popup tagged with the record id.
type singleStrategy struct {
	records domain.RecordStore
	pusher  Pusher
}

func (s *singleStrategy) SaveAndSend(ctx context.Context, req Request) error {
	n, err := s.records.CreateNotification(ctx, domain.NotificationInput{
		Type:          req.Type,
		SenderID:      req.SenderID,
		Title:         req.Title,
		Content:       req.Content,
		ReferenceID:   req.ReferenceID,
		SourceEventID: req.SourceEventID,
	})
	if err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	if n == nil {
		log.Debug().Str("source_event", req.SourceEventID).Msg("duplicate source event, already delivered")
		return nil
	}

	recs, err := s.records.AddRecipients(ctx, n.ID, []string{req.ReceiverID})
	if err != nil {
		return fmt.Errorf("add recipient: %w", err)
	}
	rec := recs[0]

	// Delivery is best-effort on top of the committed rows from here on.
	s.sendBadge(ctx, req.ReceiverID)

	if err := s.pusher.Send(domain.CategoryNotification, req.ReceiverID, popupEvent(rec, n)); err != nil {
		// Surfaced for direct single-recipient sends; the record stays
		// committed and will reach the user via badge count and replay.
		return fmt.Errorf("popup push to %s: %w", req.ReceiverID, err)
	}
	return nil
}

func (s *singleStrategy) sendBadge(ctx context.Context, receiverID string) {
	count, err := s.records.CountUnread(ctx, receiverID)
	if err != nil {
		log.Error().Err(err).Str("user", receiverID).Msg("unread count failed")
		return
	}
	err = s.pusher.Send(domain.CategoryNotification, receiverID, domain.Event{
		Name: domain.EventBadge,
		Data: BadgePayload{Count: count},
	})
	if err != nil && !errors.Is(err, domain.ErrChannelNotFound) {
		log.Warn().Err(err).Str("user", receiverID).Msg("badge push failed")
	}
}

// ResendMissed re-sends the popup from the stored record so reconnecting
// clients recover the item itself, not just the badge count.
func (s *singleStrategy) ResendMissed(ctx context.Context, rec *domain.RecipientRecord) error {
	if rec.Notification == nil {
		return nil
	}
	return s.pusher.Send(domain.CategoryNotification, rec.ReceiverID, popupEvent(rec, rec.Notification))
}
