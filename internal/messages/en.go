package messages

// ─── Engagement ──────────────────────────────────────────────────────────────

const (
	CommentTitle = "New comment"
	CommentBody  = "%s commented on your post: %s"

	PostLikeTitle = "New like"
	PostLikeBody  = "%s liked your post."

	CommentLikeTitle = "New like"
	CommentLikeBody  = "%s liked your comment."
)

// ─── Social ──────────────────────────────────────────────────────────────────

const (
	FollowTitle = "New follower"
	FollowBody  = "%s started following you."

	FeedTitle = "New post"
	FeedBody  = "%s shared a new post."
)

// ─── Chat ────────────────────────────────────────────────────────────────────

const (
	ChatTitleFmt = "Message from %s"

	ChatImagePlaceholder = "Sent a photo."
	ChatVideoPlaceholder = "Sent a video."
	ChatPostPlaceholder  = "Shared a post."
)
