package notify

import (
	"errors"
	"testing"

	"github.com/Apple-Square/moment-notification/internal/domain"
)

func newTestRegistry(records *fakeRecordStore, follows *fakeFollowStore, chat *fakeChatStore, pusher *fakePusher, feedBatch int) (*Registry, *Presence) {
	ttl := newFakeTTLStore()
	presence := NewPresence(ttl, chat, 0)
	r := NewRegistry(RegistryDeps{
		Records:       records,
		Follows:       follows,
		Chat:          chat,
		Presence:      presence,
		Pusher:        pusher,
		Pool:          syncPool{},
		FeedBatchSize: feedBatch,
	})
	return r, presence
}

func TestRegistry_ResolvesEveryType(t *testing.T) {
	r, _ := newTestRegistry(newFakeRecordStore(), &fakeFollowStore{}, &fakeChatStore{}, newFakePusher(), 0)

	for _, typ := range domain.Types() {
		s, err := r.Resolve(typ)
		if err != nil {
			t.Fatalf("Resolve(%s): %v", typ, err)
		}
		if s == nil {
			t.Fatalf("Resolve(%s) returned nil strategy", typ)
		}
	}
}

func TestRegistry_UnknownTypeFailsLoudly(t *testing.T) {
	r, _ := newTestRegistry(newFakeRecordStore(), &fakeFollowStore{}, &fakeChatStore{}, newFakePusher(), 0)

	_, err := r.Resolve(domain.NotificationType("SMOKE_SIGNAL"))
	if !errors.Is(err, domain.ErrStrategyNotRegistered) {
		t.Fatalf("expected ErrStrategyNotRegistered, got %v", err)
	}
}
