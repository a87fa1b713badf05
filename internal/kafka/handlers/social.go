package handlers

import (
	"encoding/json"

	"github.com/Apple-Square/moment-notification/internal/domain"
	"github.com/Apple-Square/moment-notification/internal/messages"
	"github.com/Apple-Square/moment-notification/internal/notify"
)

func init() {
	Register("social-events", "USER_FOLLOWED", handleUserFollowed)
}

func handleUserFollowed(data []byte) *notify.Request {
	var env struct {
		EventType string `json:"eventType"`
		EventID   string `json:"eventId"`
		Payload   struct {
			FollowerID   string `json:"followerId"`
			FollowerName string `json:"followerName"`
			FolloweeID   string `json:"followeeId"`
		} `json:"payload"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return nil
	}
	if env.Payload.FollowerID == "" || env.Payload.FolloweeID == "" {
		return nil
	}

	title, body := messages.Follow(env.Payload.FollowerName)
	return &notify.Request{
		Type:          domain.TypeFollow,
		SenderID:      env.Payload.FollowerID,
		SenderName:    env.Payload.FollowerName,
		ReceiverID:    env.Payload.FolloweeID,
		Title:         title,
		Content:       body,
		ReferenceID:   env.Payload.FollowerID,
		SourceEventID: env.EventID,
	}
}
