package notify

import (
	"fmt"

	"github.com/Apple-Square/moment-notification/internal/domain"
)

// Registry is the fixed notification-type -> Strategy table. Built once
// at startup; a lookup miss is a configuration error, never a silent skip.
type Registry struct {
	strategies map[domain.NotificationType]Strategy
}

// RegistryDeps carries everything the built-in strategies need.
type RegistryDeps struct {
	Records  domain.RecordStore
	Follows  domain.FollowStore
	Chat     domain.ChatStore
	Presence *Presence
	Pusher   Pusher
	Pool     TaskPool

	// FeedBatchSize bounds each follower page during fan-out.
	FeedBatchSize int
}

// NewRegistry wires one strategy per notification type. Panics when any
// member of the closed enum ends up without a strategy: a process that
// would fail on first dispatch should not start at all.
func NewRegistry(deps RegistryDeps) *Registry {
	single := &singleStrategy{records: deps.Records, pusher: deps.Pusher}

	r := &Registry{strategies: map[domain.NotificationType]Strategy{
		domain.TypeComment:     single,
		domain.TypePostLike:    single,
		domain.TypeCommentLike: single,
		domain.TypeFollow:      single,
		domain.TypeFeed: &feedStrategy{
			records:   deps.Records,
			follows:   deps.Follows,
			pusher:    deps.Pusher,
			pool:      deps.Pool,
			batchSize: deps.FeedBatchSize,
		},
		domain.TypeChat: &chatStrategy{
			chat:     deps.Chat,
			presence: deps.Presence,
			pusher:   deps.Pusher,
		},
	}}

	for _, t := range domain.Types() {
		if _, ok := r.strategies[t]; !ok {
			panic("notify: no strategy wired for notification type " + string(t))
		}
	}
	return r
}

// Resolve returns the strategy for t, or ErrStrategyNotRegistered for
// anything outside the table.
func (r *Registry) Resolve(t domain.NotificationType) (Strategy, error) {
	s, ok := r.strategies[t]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrStrategyNotRegistered, t)
	}
	return s, nil
}
