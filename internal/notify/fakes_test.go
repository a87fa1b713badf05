package notify

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Apple-Square/moment-notification/internal/domain"
)

// syncPool runs submitted tasks inline so tests stay deterministic.
type syncPool struct{}

func (syncPool) Submit(task func()) { task() }

// --- record store fake ---

type fakeRecordStore struct {
	mu            sync.Mutex
	nextRecordID  int64
	notifications map[uuid.UUID]*domain.Notification
	records       []*domain.RecipientRecord
	sourceEvents  map[string]bool
}

func newFakeRecordStore() *fakeRecordStore {
	return &fakeRecordStore{
		notifications: make(map[uuid.UUID]*domain.Notification),
		sourceEvents:  make(map[string]bool),
	}
}

func (f *fakeRecordStore) CreateNotification(_ context.Context, input domain.NotificationInput) (*domain.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if input.SourceEventID != "" {
		if f.sourceEvents[input.SourceEventID] {
			return nil, nil
		}
		f.sourceEvents[input.SourceEventID] = true
	}
	n := &domain.Notification{
		ID:            uuid.New(),
		Type:          input.Type,
		SenderID:      input.SenderID,
		Title:         input.Title,
		Content:       input.Content,
		ReferenceID:   input.ReferenceID,
		CreatedAt:     time.Now(),
		SourceEventID: input.SourceEventID,
	}
	f.notifications[n.ID] = n
	return n, nil
}

func (f *fakeRecordStore) AddRecipients(_ context.Context, notificationID uuid.UUID, receiverIDs []string) ([]*domain.RecipientRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.RecipientRecord
	for _, receiverID := range receiverIDs {
		f.nextRecordID++
		rec := &domain.RecipientRecord{
			ID:             f.nextRecordID,
			ReceiverID:     receiverID,
			NotificationID: notificationID,
			CreatedAt:      time.Now(),
		}
		f.records = append(f.records, rec)
		out = append(out, rec)
	}
	return out, nil
}

func (f *fakeRecordStore) ListAfter(_ context.Context, receiverID string, afterID int64, limit int) ([]*domain.RecipientRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.RecipientRecord
	for _, rec := range f.records {
		if rec.ReceiverID != receiverID || rec.ID <= afterID {
			continue
		}
		joined := *rec
		joined.Notification = f.notifications[rec.NotificationID]
		out = append(out, &joined)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeRecordStore) List(_ context.Context, filter domain.RecordFilter) ([]*domain.RecipientRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.RecipientRecord
	for i := len(f.records) - 1; i >= 0; i-- {
		rec := f.records[i]
		if rec.ReceiverID != filter.ReceiverID {
			continue
		}
		if filter.Before > 0 && rec.ID >= filter.Before {
			continue
		}
		joined := *rec
		joined.Notification = f.notifications[rec.NotificationID]
		out = append(out, &joined)
		if len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

func (f *fakeRecordStore) CountUnread(_ context.Context, receiverID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, rec := range f.records {
		if rec.ReceiverID == receiverID && !rec.IsRead {
			count++
		}
	}
	return count, nil
}

func (f *fakeRecordStore) MarkRead(_ context.Context, recordID int64, receiverID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, rec := range f.records {
		if rec.ID == recordID && rec.ReceiverID == receiverID && !rec.IsRead {
			rec.IsRead = true
			return nil
		}
	}
	return domain.ErrRecordNotFound
}

func (f *fakeRecordStore) MarkAllRead(_ context.Context, receiverID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, rec := range f.records {
		if rec.ReceiverID == receiverID && !rec.IsRead {
			rec.IsRead = true
			count++
		}
	}
	return count, nil
}

func (f *fakeRecordStore) Delete(_ context.Context, recordID int64, receiverID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, rec := range f.records {
		if rec.ID != recordID || rec.ReceiverID != receiverID {
			continue
		}
		f.records = append(f.records[:i], f.records[i+1:]...)
		// Orphan sweep, mirroring the SQL invariant.
		for _, other := range f.records {
			if other.NotificationID == rec.NotificationID {
				return nil
			}
		}
		delete(f.notifications, rec.NotificationID)
		return nil
	}
	return domain.ErrRecordNotFound
}

func (f *fakeRecordStore) PurgeOlderThan(context.Context, int) (int64, error) { return 0, nil }

func (f *fakeRecordStore) recordCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.records)
}

func (f *fakeRecordStore) notificationCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.notifications)
}

// --- follow store fake ---

type fakeFollowStore struct {
	followers map[string][]domain.Follower
}

func (f *fakeFollowStore) FollowersAfter(_ context.Context, followeeID string, afterRelationID int64, limit int) ([]domain.Follower, error) {
	var out []domain.Follower
	for _, follower := range f.followers[followeeID] {
		if follower.RelationID <= afterRelationID {
			continue
		}
		out = append(out, follower)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

// --- chat store fake ---

type fakeChatStore struct {
	members map[string][]domain.ChatMember
	unread  map[string]int64
}

func (f *fakeChatStore) RoomMembers(_ context.Context, roomID string) ([]domain.ChatMember, error) {
	return f.members[roomID], nil
}

func (f *fakeChatStore) IsMember(_ context.Context, roomID, userID string) (bool, error) {
	for _, m := range f.members[roomID] {
		if m.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeChatStore) CountUnread(_ context.Context, userID string) (int64, error) {
	return f.unread[userID], nil
}

// --- TTL store fake ---

type fakeTTLStore struct {
	mu   sync.Mutex
	keys map[string]string
}

func newFakeTTLStore() *fakeTTLStore {
	return &fakeTTLStore{keys: make(map[string]string)}
}

func (f *fakeTTLStore) Set(_ context.Context, key, value string, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keys[key] = value
	return nil
}

func (f *fakeTTLStore) Exists(_ context.Context, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.keys[key]
	return ok, nil
}

func (f *fakeTTLStore) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.keys, key)
	return nil
}

// --- pusher fake ---

type fakePusher struct {
	mu        sync.Mutex
	connected map[string]bool
	events    map[string][]domain.Event
}

func newFakePusher(connectedUsers ...string) *fakePusher {
	p := &fakePusher{
		connected: make(map[string]bool),
		events:    make(map[string][]domain.Event),
	}
	for _, u := range connectedUsers {
		p.connected[u] = true
	}
	return p
}

func (p *fakePusher) Send(_ domain.Category, userID string, ev domain.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.connected[userID] {
		return domain.ErrChannelNotFound
	}
	p.events[userID] = append(p.events[userID], ev)
	return nil
}

func (p *fakePusher) eventsFor(userID string) []domain.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.Event, len(p.events[userID]))
	copy(out, p.events[userID])
	return out
}

func (p *fakePusher) eventsNamed(userID string, name domain.EventName) []domain.Event {
	var out []domain.Event
	for _, ev := range p.eventsFor(userID) {
		if ev.Name == name {
			out = append(out, ev)
		}
	}
	return out
}

func (p *fakePusher) reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = make(map[string][]domain.Event)
}
