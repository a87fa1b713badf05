package handlers

import (
	"testing"

	"github.com/Apple-Square/moment-notification/internal/domain"
)

func TestHandleCommentCreated_MapsFields(t *testing.T) {
	data := []byte(`{
		"eventType": "COMMENT_CREATED",
		"eventId": "evt-1",
		"payload": {
			"actorId": "user-2",
			"actorName": "Dana",
			"ownerId": "user-1",
			"postId": "post-9",
			"excerpt": "nice shot"
		}
	}`)

	req := handleCommentCreated(data)
	if req == nil {
		t.Fatal("expected a request")
	}
	if req.Type != domain.TypeComment {
		t.Fatalf("type = %s", req.Type)
	}
	if req.SenderID != "user-2" || req.ReceiverID != "user-1" {
		t.Fatalf("sender/receiver = %s/%s", req.SenderID, req.ReceiverID)
	}
	if req.ReferenceID != "post-9" {
		t.Fatalf("referenceID = %s", req.ReferenceID)
	}
	if req.Title == "" || req.Content == "" {
		t.Fatal("expected title and content to be built")
	}
	if req.SourceEventID != "evt-1" {
		t.Fatalf("sourceEventID = %q, want the bus event id for dedup", req.SourceEventID)
	}
}

func TestEngagement_SelfEngagementSkipped(t *testing.T) {
	data := []byte(`{
		"eventType": "POST_LIKED",
		"payload": {"actorId": "user-1", "actorName": "Dana", "ownerId": "user-1", "postId": "p"}
	}`)
	if req := handlePostLiked(data); req != nil {
		t.Fatal("self-engagement should not produce a request")
	}
}

func TestEngagement_MissingActorSkipped(t *testing.T) {
	data := []byte(`{
		"eventType": "COMMENT_LIKED",
		"payload": {"ownerId": "user-1", "commentId": "c"}
	}`)
	if req := handleCommentLiked(data); req != nil {
		t.Fatal("missing actor should not produce a request")
	}
}

func TestHandleMessageSent_DefaultsToText(t *testing.T) {
	data := []byte(`{
		"eventType": "MESSAGE_SENT",
		"payload": {"roomId": "room-1", "senderId": "user-2", "senderName": "Dana", "messageType": "STICKER", "text": "hi"}
	}`)

	req := handleMessageSent(data)
	if req == nil {
		t.Fatal("expected a request")
	}
	if req.Type != domain.TypeChat {
		t.Fatalf("type = %s", req.Type)
	}
	if req.MessageType != domain.MessageText {
		t.Fatalf("messageType = %s, want TEXT fallback", req.MessageType)
	}
	if req.RoomID != "room-1" || req.Content != "hi" {
		t.Fatalf("room/content = %s/%s", req.RoomID, req.Content)
	}
}

func TestHandleMessageSent_KeepsKnownType(t *testing.T) {
	data := []byte(`{
		"eventType": "MESSAGE_SENT",
		"payload": {"roomId": "room-1", "senderId": "user-2", "messageType": "IMAGE"}
	}`)

	req := handleMessageSent(data)
	if req == nil {
		t.Fatal("expected a request")
	}
	if req.MessageType != domain.MessageImage {
		t.Fatalf("messageType = %s", req.MessageType)
	}
}

func TestHandleMessageSent_MissingRoomSkipped(t *testing.T) {
	data := []byte(`{"eventType": "MESSAGE_SENT", "payload": {"senderId": "user-2"}}`)
	if req := handleMessageSent(data); req != nil {
		t.Fatal("missing room should not produce a request")
	}
}
