package handlers

import (
	"encoding/json"

	"github.com/Apple-Square/moment-notification/internal/domain"
	"github.com/Apple-Square/moment-notification/internal/notify"
)

func init() {
	Register("chat-events", "MESSAGE_SENT", handleMessageSent)
}

func handleMessageSent(data []byte) *notify.Request {
	var env struct {
		EventType string `json:"eventType"`
		Payload   struct {
			RoomID      string `json:"roomId"`
			SenderID    string `json:"senderId"`
			SenderName  string `json:"senderName"`
			MessageType string `json:"messageType"`
			Text        string `json:"text"`
		} `json:"payload"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return nil
	}
	if env.Payload.RoomID == "" || env.Payload.SenderID == "" {
		return nil
	}

	msgType := domain.ChatMessageType(env.Payload.MessageType)
	switch msgType {
	case domain.MessageText, domain.MessageImage, domain.MessageVideo, domain.MessagePost:
	default:
		msgType = domain.MessageText
	}

	return &notify.Request{
		Type:        domain.TypeChat,
		SenderID:    env.Payload.SenderID,
		SenderName:  env.Payload.SenderName,
		RoomID:      env.Payload.RoomID,
		MessageType: msgType,
		Content:     env.Payload.Text,
	}
}
