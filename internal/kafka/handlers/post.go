package handlers

import (
	"encoding/json"

	"github.com/Apple-Square/moment-notification/internal/domain"
	"github.com/Apple-Square/moment-notification/internal/messages"
	"github.com/Apple-Square/moment-notification/internal/notify"
)

func init() {
	Register("post-events", "POST_CREATED", handlePostCreated)
}

// handlePostCreated triggers the large feed fan-out to the author's
// followers.
func handlePostCreated(data []byte) *notify.Request {
	var env struct {
		EventType string `json:"eventType"`
		EventID   string `json:"eventId"`
		Payload   struct {
			AuthorID   string `json:"authorId"`
			AuthorName string `json:"authorName"`
			PostID     string `json:"postId"`
		} `json:"payload"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return nil
	}
	if env.Payload.AuthorID == "" || env.Payload.PostID == "" {
		return nil
	}

	title, body := messages.FeedPost(env.Payload.AuthorName)
	return &notify.Request{
		Type:          domain.TypeFeed,
		SenderID:      env.Payload.AuthorID,
		SenderName:    env.Payload.AuthorName,
		Title:         title,
		Content:       body,
		ReferenceID:   env.Payload.PostID,
		SourceEventID: env.EventID,
	}
}
