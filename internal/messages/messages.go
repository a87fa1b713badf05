// Package messages builds the human-readable strings carried by
// notification payloads. Keeping them in one place keeps strategies free
// of copy and makes localization a single-file swap.
package messages

import (
	"fmt"

	"github.com/Apple-Square/moment-notification/internal/domain"
)

// ─── Engagement builders ─────────────────────────────────────────────────────

func Comment(senderName, excerpt string) (string, string) {
	return CommentTitle, fmt.Sprintf(CommentBody, senderName, excerpt)
}

func PostLike(senderName string) (string, string) {
	return PostLikeTitle, fmt.Sprintf(PostLikeBody, senderName)
}

func CommentLike(senderName string) (string, string) {
	return CommentLikeTitle, fmt.Sprintf(CommentLikeBody, senderName)
}

// ─── Social builders ─────────────────────────────────────────────────────────

func Follow(senderName string) (string, string) {
	return FollowTitle, fmt.Sprintf(FollowBody, senderName)
}

func FeedPost(senderName string) (string, string) {
	return FeedTitle, fmt.Sprintf(FeedBody, senderName)
}

// ─── Chat ────────────────────────────────────────────────────────────────────

func ChatTitle(senderName string) string {
	return fmt.Sprintf(ChatTitleFmt, senderName)
}

// ChatContent returns the popup content for a chat message: the literal
// text for text messages, a fixed placeholder for everything else.
func ChatContent(msgType domain.ChatMessageType, text string) string {
	switch msgType {
	case domain.MessageImage:
		return ChatImagePlaceholder
	case domain.MessageVideo:
		return ChatVideoPlaceholder
	case domain.MessagePost:
		return ChatPostPlaceholder
	default:
		return text
	}
}
