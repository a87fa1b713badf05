package handlers

import (
	"encoding/json"

	"github.com/Apple-Square/moment-notification/internal/domain"
	"github.com/Apple-Square/moment-notification/internal/messages"
	"github.com/Apple-Square/moment-notification/internal/notify"
)

func init() {
	Register("engagement-events", "COMMENT_CREATED", handleCommentCreated)
	Register("engagement-events", "POST_LIKED", handlePostLiked)
	Register("engagement-events", "COMMENT_LIKED", handleCommentLiked)
}

type engagementEnv struct {
	EventType string `json:"eventType"`
	EventID   string `json:"eventId"`
	Payload   struct {
		ActorID   string `json:"actorId"`
		ActorName string `json:"actorName"`
		OwnerID   string `json:"ownerId"`
		PostID    string `json:"postId"`
		CommentID string `json:"commentId"`
		Excerpt   string `json:"excerpt"`
	} `json:"payload"`
}

func parseEngagementEnv(data []byte) (*engagementEnv, bool) {
	var env engagementEnv
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, false
	}
	if env.Payload.ActorID == "" || env.Payload.OwnerID == "" {
		return nil, false
	}
	// Self-engagement never notifies.
	if env.Payload.ActorID == env.Payload.OwnerID {
		return nil, false
	}
	return &env, true
}

func handleCommentCreated(data []byte) *notify.Request {
	env, ok := parseEngagementEnv(data)
	if !ok {
		return nil
	}
	title, body := messages.Comment(env.Payload.ActorName, env.Payload.Excerpt)
	return &notify.Request{
		Type:          domain.TypeComment,
		SenderID:      env.Payload.ActorID,
		SenderName:    env.Payload.ActorName,
		ReceiverID:    env.Payload.OwnerID,
		Title:         title,
		Content:       body,
		ReferenceID:   env.Payload.PostID,
		SourceEventID: env.EventID,
	}
}

func handlePostLiked(data []byte) *notify.Request {
	env, ok := parseEngagementEnv(data)
	if !ok {
		return nil
	}
	title, body := messages.PostLike(env.Payload.ActorName)
	return &notify.Request{
		Type:          domain.TypePostLike,
		SenderID:      env.Payload.ActorID,
		SenderName:    env.Payload.ActorName,
		ReceiverID:    env.Payload.OwnerID,
		Title:         title,
		Content:       body,
		ReferenceID:   env.Payload.PostID,
		SourceEventID: env.EventID,
	}
}

func handleCommentLiked(data []byte) *notify.Request {
	env, ok := parseEngagementEnv(data)
	if !ok {
		return nil
	}
	title, body := messages.CommentLike(env.Payload.ActorName)
	return &notify.Request{
		Type:          domain.TypeCommentLike,
		SenderID:      env.Payload.ActorID,
		SenderName:    env.Payload.ActorName,
		ReceiverID:    env.Payload.OwnerID,
		Title:         title,
		Content:       body,
		ReferenceID:   env.Payload.CommentID,
		SourceEventID: env.EventID,
	}
}
