package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/Apple-Square/moment-notification/internal/domain"
	"github.com/Apple-Square/moment-notification/internal/metrics"
)

const defaultFeedBatchSize = 500

// feedStrategy fans one post notification out to every follower of the
// author. Followers are walked with a keyset cursor (last follow-relation
// id) in fixed-size batches; each batch is bulk-persisted and its badge
// delivery handed to the worker pool, so total fan-out latency is bounded
// by query time rather than push throughput.
type feedStrategy struct {
	records   domain.RecordStore
	follows   domain.FollowStore
	pusher    Pusher
	pool      TaskPool
	batchSize int
}

func (s *feedStrategy) SaveAndSend(ctx context.Context, req Request) error {
	size := s.batchSize
	if size <= 0 {
		size = defaultFeedBatchSize
	}

	followers, err := s.follows.FollowersAfter(ctx, req.SenderID, 0, size)
	if err != nil {
		return fmt.Errorf("list followers: %w", err)
	}
	if len(followers) == 0 {
		log.Debug().Str("sender", req.SenderID).Msg("feed fan-out: no followers")
		return nil
	}

	// The shared Notification row is created once, lazily, so an author
	// with zero followers never leaves an orphan behind.
	n, err := s.records.CreateNotification(ctx, domain.NotificationInput{
		Type:          domain.TypeFeed,
		SenderID:      req.SenderID,
		Title:         req.Title,
		Content:       req.Content,
		ReferenceID:   req.ReferenceID,
		SourceEventID: req.SourceEventID,
	})
	if err != nil {
		return fmt.Errorf("create feed notification: %w", err)
	}
	if n == nil {
		log.Debug().Str("source_event", req.SourceEventID).Msg("duplicate source event, fan-out already done")
		return nil
	}

	total := 0
	for {
		receiverIDs := make([]string, len(followers))
		for i, f := range followers {
			receiverIDs[i] = f.UserID
		}

		recs, err := s.records.AddRecipients(ctx, n.ID, receiverIDs)
		if err != nil {
			return fmt.Errorf("add feed recipients after %d rows: %w", total, err)
		}
		total += len(recs)
		metrics.FanoutBatches.Inc()

		batch := recs
		s.pool.Submit(func() { s.deliverBatch(batch) })

		if len(followers) < size {
			break
		}
		cursor := followers[len(followers)-1].RelationID
		followers, err = s.follows.FollowersAfter(ctx, req.SenderID, cursor, size)
		if err != nil {
			return fmt.Errorf("list followers after %d: %w", cursor, err)
		}
		if len(followers) == 0 {
			break
		}
	}

	log.Info().
		Str("sender", req.SenderID).
		Str("notification_id", n.ID.String()).
		Int("recipients", total).
		Msg("feed fan-out persisted")
	return nil
}

// deliverBatch pushes badge updates for one persisted batch. Runs on a
// pool worker; every failure is contained to its recipient.
func (s *feedStrategy) deliverBatch(recs []*domain.RecipientRecord) {
	ctx := context.Background()
	for _, rec := range recs {
		count, err := s.records.CountUnread(ctx, rec.ReceiverID)
		if err != nil {
			log.Error().Err(err).Str("user", rec.ReceiverID).Msg("unread count failed during fan-out")
			continue
		}
		err = s.pusher.Send(domain.CategoryNotification, rec.ReceiverID, domain.Event{
			Name: domain.EventBadge,
			Data: BadgePayload{Count: count},
		})
		if err != nil && !errors.Is(err, domain.ErrChannelNotFound) {
			log.Warn().Err(err).Str("user", rec.ReceiverID).Msg("badge push failed during fan-out")
		}
	}
}

// ResendMissed behaves like the single-recipient types: the stored record
// is pushed back as a popup.
func (s *feedStrategy) ResendMissed(ctx context.Context, rec *domain.RecipientRecord) error {
	if rec.Notification == nil {
		return nil
	}
	return s.pusher.Send(domain.CategoryNotification, rec.ReceiverID, popupEvent(rec, rec.Notification))
}
