package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Apple-Square/moment-notification/internal/domain"
	"github.com/Apple-Square/moment-notification/internal/messages"
)

// chatStrategy alerts room members about a new chat message. Nothing is
// persisted here: chat history is the durable source of truth. Members
// who muted the room are skipped outright; members with an active
// presence marker for the room are skipped because their live client is
// already rendering the message.
type chatStrategy struct {
	chat     domain.ChatStore
	presence *Presence
	pusher   Pusher
}

func (s *chatStrategy) SaveAndSend(ctx context.Context, req Request) error {
	members, err := s.chat.RoomMembers(ctx, req.RoomID)
	if err != nil {
		return fmt.Errorf("list room members: %w", err)
	}

	content := messages.ChatContent(req.MessageType, req.Content)
	title := messages.ChatTitle(req.SenderName)

	for _, m := range members {
		if m.UserID == req.SenderID || m.Muted {
			continue
		}

		active, err := s.presence.IsActive(ctx, m.UserID, req.RoomID)
		if err != nil {
			log.Warn().Err(err).Str("user", m.UserID).Str("room", req.RoomID).Msg("presence check failed, delivering anyway")
		}
		if active {
			continue
		}

		s.alertMember(ctx, m.UserID, title, content, req)
	}
	return nil
}

// alertMember sends the chat badge and popup to one member. Failures are
// logged and contained; one member never aborts the room loop.
func (s *chatStrategy) alertMember(ctx context.Context, userID, title, content string, req Request) {
	count, err := s.chat.CountUnread(ctx, userID)
	if err != nil {
		log.Error().Err(err).Str("user", userID).Msg("chat unread count failed")
	} else {
		err = s.pusher.Send(domain.CategoryNotification, userID, domain.Event{
			Name: domain.EventChatBadge,
			Data: BadgePayload{Count: count},
		})
		if err != nil && !errors.Is(err, domain.ErrChannelNotFound) {
			log.Warn().Err(err).Str("user", userID).Msg("chat badge push failed")
		}
	}

	err = s.pusher.Send(domain.CategoryNotification, userID, domain.Event{
		Name: domain.EventPopup,
		Data: PopupPayload{
			Type:        domain.TypeChat,
			SenderID:    req.SenderID,
			Title:       title,
			Content:     content,
			ReferenceID: req.RoomID,
			CreatedAt:   time.Now(),
		},
	})
	if err != nil && !errors.Is(err, domain.ErrChannelNotFound) {
		log.Warn().Err(err).Str("user", userID).Msg("chat popup push failed")
	}
}

// ResendMissed is a no-op: chat notifications are transient and are not
// replayed — the client refetches chat history instead.
func (s *chatStrategy) ResendMissed(context.Context, *domain.RecipientRecord) error {
	return nil
}
