package notify

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/Apple-Square/moment-notification/internal/domain"
)

const defaultReplayBatchSize = 500

// Service is the dispatch and replay orchestrator. Callers hand it a
// Request (or a reconnect cursor) and get their goroutine back
// immediately; the actual persistence and delivery run on the pool.
type Service struct {
	registry    *Registry
	pool        TaskPool
	records     domain.RecordStore
	chat        domain.ChatStore
	pusher      Pusher
	replayBatch int
}

// NewService builds the orchestrator. replayBatch bounds the page size of
// the catch-up query; zero selects the default.
func NewService(registry *Registry, pool TaskPool, records domain.RecordStore, chat domain.ChatStore, pusher Pusher, replayBatch int) *Service {
	if replayBatch <= 0 {
		replayBatch = defaultReplayBatchSize
	}
	return &Service{
		registry:    registry,
		pool:        pool,
		records:     records,
		chat:        chat,
		pusher:      pusher,
		replayBatch: replayBatch,
	}
}

// Dispatch resolves the strategy for the request type and submits its
// SaveAndSend to the pool. A resolve miss is a configuration error and is
// returned loudly instead of being dropped.
func (s *Service) Dispatch(req Request) error {
	strategy, err := s.registry.Resolve(req.Type)
	if err != nil {
		log.Error().Err(err).Str("type", string(req.Type)).Msg("dispatch refused: strategy not registered")
		return err
	}

	s.pool.Submit(func() {
		// Detached from the triggering request's context: delivery must
		// outlive short-lived callers.
		if err := strategy.SaveAndSend(context.Background(), req); err != nil {
			log.Error().Err(err).
				Str("type", string(req.Type)).
				Str("sender", req.SenderID).
				Str("receiver", req.ReceiverID).
				Msg("saveAndSend failed")
		}
	})
	return nil
}

// ReplayAsync schedules reconnect catch-up for a client that supplied its
// last-seen recipient record id. The connect path returns immediately;
// catch-up events stream afterwards, ascending by record id, unordered
// relative to concurrently arriving live events.
func (s *Service) ReplayAsync(userID string, lastSeenID int64) {
	s.pool.Submit(func() { s.replay(context.Background(), userID, lastSeenID) })
}

func (s *Service) replay(ctx context.Context, userID string, lastSeenID int64) {
	// Both aggregate badges are resent unconditionally, once each: a full
	// idempotent replace of client state, regardless of what was missed.
	s.sendBadges(ctx, userID)

	cursor := lastSeenID
	replayed := 0
	for {
		recs, err := s.records.ListAfter(ctx, userID, cursor, s.replayBatch)
		if err != nil {
			log.Error().Err(err).Str("user", userID).Int64("cursor", cursor).Msg("replay query failed")
			return
		}
		if len(recs) == 0 {
			break
		}

		for _, rec := range recs {
			if rec.Notification == nil {
				continue
			}
			strategy, err := s.registry.Resolve(rec.Notification.Type)
			if err != nil {
				// Misconfiguration: logged at error level, but one bad
				// record must not starve the rest of the replay.
				log.Error().Err(err).Int64("record", rec.ID).Msg("replay: strategy not registered")
				continue
			}
			if err := strategy.ResendMissed(ctx, rec); err != nil {
				if errors.Is(err, domain.ErrChannelNotFound) || errors.Is(err, domain.ErrChannelWriteFailed) {
					// Client vanished again mid-replay; it will resume
					// from its cursor on the next reconnect.
					log.Debug().Str("user", userID).Int64("record", rec.ID).Msg("replay stopped: channel gone")
					return
				}
				log.Warn().Err(err).Int64("record", rec.ID).Msg("replay: resend failed")
				continue
			}
			replayed++
		}

		cursor = recs[len(recs)-1].ID
		if len(recs) < s.replayBatch {
			break
		}
	}

	log.Info().Str("user", userID).Int64("from", lastSeenID).Int("replayed", replayed).Msg("replay completed")
}

// sendBadges recomputes and pushes both aggregate counts. A missing
// channel is tolerated, everything else is logged.
func (s *Service) sendBadges(ctx context.Context, userID string) {
	if count, err := s.records.CountUnread(ctx, userID); err != nil {
		log.Error().Err(err).Str("user", userID).Msg("unread count failed during replay")
	} else if err := s.pusher.Send(domain.CategoryNotification, userID, domain.Event{
		Name: domain.EventBadge,
		Data: BadgePayload{Count: count},
	}); err != nil && !errors.Is(err, domain.ErrChannelNotFound) {
		log.Warn().Err(err).Str("user", userID).Msg("badge push failed during replay")
	}

	if count, err := s.chat.CountUnread(ctx, userID); err != nil {
		log.Error().Err(err).Str("user", userID).Msg("chat unread count failed during replay")
	} else if err := s.pusher.Send(domain.CategoryNotification, userID, domain.Event{
		Name: domain.EventChatBadge,
		Data: BadgePayload{Count: count},
	}); err != nil && !errors.Is(err, domain.ErrChannelNotFound) {
		log.Warn().Err(err).Str("user", userID).Msg("chat badge push failed during replay")
	}
}
