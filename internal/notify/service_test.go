package notify

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/Apple-Square/moment-notification/internal/domain"
)

func replayFixture(t *testing.T) (*Service, *fakeRecordStore, *fakePusher) {
	t.Helper()
	records := newFakeRecordStore()
	chat := &fakeChatStore{unread: map[string]int64{"u1": 5}}
	pusher := newFakePusher("u1")
	registry, _ := newTestRegistry(records, &fakeFollowStore{}, chat, pusher, 0)
	// Replay batch of 2 forces the catch-up loop to paginate.
	svc := NewService(registry, syncPool{}, records, chat, pusher, 2)
	return svc, records, pusher
}

// seedRecords gives u1 recipient record ids 10, 11, 12.
func seedRecords(t *testing.T, records *fakeRecordStore) {
	t.Helper()
	records.mu.Lock()
	records.nextRecordID = 9
	records.mu.Unlock()

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		n, err := records.CreateNotification(ctx, domain.NotificationInput{
			Type:     domain.TypeComment,
			SenderID: "alice",
			Title:    "New comment",
		})
		if err != nil {
			t.Fatalf("seed notification: %v", err)
		}
		if _, err := records.AddRecipients(ctx, n.ID, []string{"u1"}); err != nil {
			t.Fatalf("seed recipient: %v", err)
		}
	}
}

func replayedRecordIDs(pusher *fakePusher) []int64 {
	var ids []int64
	for _, ev := range pusher.eventsNamed("u1", domain.EventPopup) {
		ids = append(ids, ev.Data.(PopupPayload).RecordID)
	}
	return ids
}

func TestReplay_ResendsMissedAscendingPlusBadges(t *testing.T) {
	svc, records, pusher := replayFixture(t)
	seedRecords(t, records)

	svc.ReplayAsync("u1", 10)

	if got := replayedRecordIDs(pusher); !reflect.DeepEqual(got, []int64{11, 12}) {
		t.Fatalf("expected replayed records [11 12], got %v", got)
	}

	badges := pusher.eventsNamed("u1", domain.EventBadge)
	if len(badges) != 1 {
		t.Fatalf("expected exactly 1 badge, got %d", len(badges))
	}
	if badges[0].Data.(BadgePayload).Count != 3 {
		t.Fatalf("expected recomputed unread count 3, got %+v", badges[0].Data)
	}

	chatBadges := pusher.eventsNamed("u1", domain.EventChatBadge)
	if len(chatBadges) != 1 {
		t.Fatalf("expected exactly 1 chat badge, got %d", len(chatBadges))
	}
	if chatBadges[0].Data.(BadgePayload).Count != 5 {
		t.Fatalf("expected chat unread count 5, got %+v", chatBadges[0].Data)
	}
}

func TestReplay_SameCursorIsIdempotent(t *testing.T) {
	svc, records, pusher := replayFixture(t)
	seedRecords(t, records)

	svc.ReplayAsync("u1", 10)
	first := replayedRecordIDs(pusher)

	pusher.reset()
	svc.ReplayAsync("u1", 10)
	second := replayedRecordIDs(pusher)

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("replay not idempotent: first %v, second %v", first, second)
	}
}

func TestReplay_CursorBeyondNewestYieldsOnlyBadges(t *testing.T) {
	svc, records, pusher := replayFixture(t)
	seedRecords(t, records)

	// A cursor referencing no record means "nothing newer", not an error.
	svc.ReplayAsync("u1", 999)

	if got := replayedRecordIDs(pusher); got != nil {
		t.Fatalf("expected no replayed records, got %v", got)
	}
	if got := len(pusher.eventsNamed("u1", domain.EventBadge)); got != 1 {
		t.Fatalf("expected badge resend, got %d", got)
	}
	if got := len(pusher.eventsNamed("u1", domain.EventChatBadge)); got != 1 {
		t.Fatalf("expected chat badge resend, got %d", got)
	}
}

func TestDelete_LastRecipientRemovesSharedNotification(t *testing.T) {
	records := newFakeRecordStore()
	ctx := context.Background()

	n, err := records.CreateNotification(ctx, domain.NotificationInput{
		Type: domain.TypeComment, SenderID: "alice", Title: "New comment",
	})
	if err != nil {
		t.Fatalf("CreateNotification: %v", err)
	}
	recs, err := records.AddRecipients(ctx, n.ID, []string{"bob"})
	if err != nil {
		t.Fatalf("AddRecipients: %v", err)
	}

	if err := records.Delete(ctx, recs[0].ID, "bob"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	// Sole reference gone: the shared content must not linger.
	if got := records.recordCount(); got != 0 {
		t.Fatalf("expected 0 records, got %d", got)
	}
	if got := records.notificationCount(); got != 0 {
		t.Fatalf("expected orphaned notification to be deleted, got %d", got)
	}
}

func TestDelete_SiblingRecipientsKeepNotification(t *testing.T) {
	records := newFakeRecordStore()
	ctx := context.Background()

	n, err := records.CreateNotification(ctx, domain.NotificationInput{
		Type: domain.TypeFeed, SenderID: "author", Title: "New post",
	})
	if err != nil {
		t.Fatalf("CreateNotification: %v", err)
	}
	recs, err := records.AddRecipients(ctx, n.ID, []string{"bob", "carol"})
	if err != nil {
		t.Fatalf("AddRecipients: %v", err)
	}

	if err := records.Delete(ctx, recs[0].ID, "bob"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	// Carol still references the notification, so it must survive.
	if got := records.recordCount(); got != 1 {
		t.Fatalf("expected 1 remaining record, got %d", got)
	}
	if got := records.notificationCount(); got != 1 {
		t.Fatalf("expected shared notification to survive, got %d", got)
	}

	// Deleting someone else's record must not work either.
	if err := records.Delete(ctx, recs[1].ID, "bob"); !errors.Is(err, domain.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound for foreign record, got %v", err)
	}
}

func TestDispatch_StrategyNotRegisteredIsReturned(t *testing.T) {
	svc, _, _ := replayFixture(t)

	err := svc.Dispatch(Request{Type: domain.NotificationType("CARRIER_PIGEON")})
	if !errors.Is(err, domain.ErrStrategyNotRegistered) {
		t.Fatalf("expected ErrStrategyNotRegistered, got %v", err)
	}
}

func TestDispatch_RunsStrategyOnPool(t *testing.T) {
	svc, records, pusher := replayFixture(t)

	err := svc.Dispatch(Request{
		Type:       domain.TypeComment,
		SenderID:   "alice",
		ReceiverID: "u1",
		Title:      "New comment",
	})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	if got := records.recordCount(); got != 1 {
		t.Fatalf("expected 1 persisted record, got %d", got)
	}
	if got := len(pusher.eventsNamed("u1", domain.EventPopup)); got != 1 {
		t.Fatalf("expected 1 popup, got %d", got)
	}
}
