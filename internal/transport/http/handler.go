package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/Apple-Square/moment-notification/internal/domain"
	"github.com/Apple-Square/moment-notification/internal/notify"
	"github.com/Apple-Square/moment-notification/internal/sse"
	"github.com/Apple-Square/moment-notification/internal/transport/mw"
)

// Handler holds all HTTP handler methods.
type Handler struct {
	svc         *notify.Service
	records     domain.RecordStore
	chat        domain.ChatStore
	presence    *notify.Presence
	hub         *sse.Hub
	idleTimeout time.Duration
}

// NewHandler creates a new Handler.
func NewHandler(svc *notify.Service, records domain.RecordStore, chat domain.ChatStore, presence *notify.Presence, hub *sse.Hub, idleTimeout time.Duration) *Handler {
	return &Handler{
		svc:         svc,
		records:     records,
		chat:        chat,
		presence:    presence,
		hub:         hub,
		idleTimeout: idleTimeout,
	}
}

// --- SSE Handler ---

// Stream GET /notifications/stream — the long-lived push endpoint.
// A reconnecting client supplies its highest-seen recipient record id via
// the Last-Event-ID header (or lastEventId query parameter), which
// triggers asynchronous catch-up while the stream is already live.
func (h *Handler) Stream(c echo.Context) error {
	userID := mw.UserID(c)
	category := domain.CategoryNotification
	if raw := c.QueryParam("category"); raw != "" && domain.Category(raw) != category {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown category")
	}

	w := c.Response()
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable Nginx/APISIX buffering

	e, created := h.hub.Connect(category, userID)
	if !created {
		// A live channel already exists for this key; the first
		// registration wins. Acknowledge and end this request rather
		// than fight over one frame queue.
		_, _ = w.Write(sse.Encode(domain.Event{Name: domain.EventConnection, Data: map[string]string{"status": "duplicate"}}))
		w.Flush()
		return nil
	}
	defer h.hub.Disconnect(category, userID, e)

	if cursor, ok := lastSeenCursor(c); ok {
		h.svc.ReplayAsync(userID, cursor)
	}

	log.Info().Str("user", userID).Msg("SSE stream opened")

	ctx := c.Request().Context()
	idle := time.NewTimer(h.idleTimeout)
	defer idle.Stop()

	for {
		select {
		case frame := <-e.Frames():
			if _, err := w.Write(frame); err != nil {
				return nil
			}
			w.Flush()
			if !idle.Stop() {
				select {
				case <-idle.C:
				default:
				}
			}
			idle.Reset(h.idleTimeout)

		case <-idle.C:
			log.Debug().Str("user", userID).Msg("SSE stream idle timeout")
			return nil

		case <-e.Done():
			return nil

		case <-ctx.Done():
			log.Info().Str("user", userID).Msg("SSE stream closed by client")
			return nil
		}
	}
}

// lastSeenCursor extracts the replay cursor from the reconnect request.
// A missing or unparsable cursor means no replay — never an error.
func lastSeenCursor(c echo.Context) (int64, bool) {
	raw := c.Request().Header.Get("Last-Event-ID")
	if raw == "" {
		raw = c.QueryParam("lastEventId")
	}
	if raw == "" {
		return 0, false
	}
	cursor, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || cursor < 0 {
		log.Debug().Str("cursor", raw).Msg("ignoring malformed replay cursor")
		return 0, false
	}
	return cursor, true
}

// --- REST Handlers ---

// ListNotifications GET /notifications
func (h *Handler) ListNotifications(c echo.Context) error {
	userID := mw.UserID(c)

	filter := domain.RecordFilter{
		ReceiverID: userID,
		Limit:      parseIntQuery(c, "limit", 20),
		Before:     int64(parseIntQuery(c, "before", 0)),
	}
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	if r := c.QueryParam("is_read"); r != "" {
		isRead := r == "true"
		filter.IsRead = &isRead
	}

	records, err := h.records.List(c.Request().Context(), filter)
	if err != nil {
		return echo.ErrInternalServerError
	}

	return c.JSON(http.StatusOK, map[string]any{
		"data":  records,
		"limit": filter.Limit,
	})
}

// GetUnreadCount GET /notifications/unread-count
func (h *Handler) GetUnreadCount(c echo.Context) error {
	userID := mw.UserID(c)

	count, err := h.records.CountUnread(c.Request().Context(), userID)
	if err != nil {
		return echo.ErrInternalServerError
	}
	return c.JSON(http.StatusOK, map[string]int64{"count": count})
}

// GetChatUnreadCount GET /notifications/unread-count/chat
func (h *Handler) GetChatUnreadCount(c echo.Context) error {
	userID := mw.UserID(c)

	count, err := h.chat.CountUnread(c.Request().Context(), userID)
	if err != nil {
		return echo.ErrInternalServerError
	}
	return c.JSON(http.StatusOK, map[string]int64{"count": count})
}

// MarkRead PATCH /notifications/:id/read
func (h *Handler) MarkRead(c echo.Context) error {
	userID := mw.UserID(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid notification id")
	}

	if err := h.records.MarkRead(c.Request().Context(), id, userID); err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.ErrInternalServerError
	}
	return c.NoContent(http.StatusNoContent)
}

// MarkAllRead POST /notifications/read-all
func (h *Handler) MarkAllRead(c echo.Context) error {
	userID := mw.UserID(c)

	count, err := h.records.MarkAllRead(c.Request().Context(), userID)
	if err != nil {
		return echo.ErrInternalServerError
	}
	return c.JSON(http.StatusOK, map[string]int64{"marked": count})
}

// Delete DELETE /notifications/:id
func (h *Handler) Delete(c echo.Context) error {
	userID := mw.UserID(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid notification id")
	}

	if err := h.records.Delete(c.Request().Context(), id, userID); err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.ErrInternalServerError
	}
	return c.NoContent(http.StatusNoContent)
}

// --- Presence Handlers ---

// PresenceHeartbeat POST /chat/rooms/:roomId/presence
func (h *Handler) PresenceHeartbeat(c echo.Context) error {
	userID := mw.UserID(c)
	roomID := c.Param("roomId")

	if err := h.presence.Heartbeat(c.Request().Context(), userID, roomID); err != nil {
		if errors.Is(err, domain.ErrNotRoomMember) {
			return echo.NewHTTPError(http.StatusForbidden, err.Error())
		}
		return echo.ErrInternalServerError
	}
	return c.NoContent(http.StatusNoContent)
}

// PresenceClear DELETE /chat/rooms/:roomId/presence
func (h *Handler) PresenceClear(c echo.Context) error {
	userID := mw.UserID(c)
	roomID := c.Param("roomId")

	if err := h.presence.Clear(c.Request().Context(), userID, roomID); err != nil {
		return echo.ErrInternalServerError
	}
	return c.NoContent(http.StatusNoContent)
}

// --- Healthcheck ---

// Health GET /health
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":      "ok",
		"sse_clients": h.hub.ConnectedCount(),
	})
}

// --- Helpers ---

func parseIntQuery(c echo.Context, key string, def int) int {
	v, err := strconv.Atoi(c.QueryParam(key))
	if err != nil || v < 0 {
		return def
	}
	return v
}
