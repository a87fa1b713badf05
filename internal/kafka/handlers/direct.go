package handlers

import (
	"encoding/json"

	"github.com/Apple-Square/moment-notification/internal/domain"
	"github.com/Apple-Square/moment-notification/internal/notify"
)

func init() {
	RegisterDirect("notification-commands", handleDirectCommand)
}

// handleDirectCommand serves operator-issued single-recipient
// notifications. Feed and chat types are not accepted here: they require
// their own event payloads.
func handleDirectCommand(data []byte) *notify.Request {
	var cmd struct {
		CommandID  string `json:"commandId"`
		SenderID   string `json:"senderId"`
		SenderName string `json:"senderName"`
		ReceiverID string `json:"receiverId"`
		Type       string `json:"type"`
		Title      string `json:"title"`
		Content    string `json:"content"`
		Reference  string `json:"referenceId"`
	}
	if err := json.Unmarshal(data, &cmd); err != nil {
		return nil
	}
	if cmd.ReceiverID == "" || cmd.Title == "" {
		return nil
	}

	notifType := domain.NotificationType(cmd.Type)
	switch notifType {
	case domain.TypeComment, domain.TypePostLike, domain.TypeCommentLike, domain.TypeFollow:
	default:
		return nil
	}

	return &notify.Request{
		Type:          notifType,
		SenderID:      cmd.SenderID,
		SenderName:    cmd.SenderName,
		ReceiverID:    cmd.ReceiverID,
		Title:         cmd.Title,
		Content:       cmd.Content,
		ReferenceID:   cmd.Reference,
		SourceEventID: cmd.CommandID,
	}
}
