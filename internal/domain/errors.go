package domain

import "errors"

var (
	// ErrChannelNotFound means a push targeted a (category, user) with no
	// live channel. Non-fatal: ignored during fan-out, surfaced for
	// direct single-recipient sends.
	ErrChannelNotFound = errors.New("push channel not found")

	// ErrChannelWriteFailed means an SSE write could not be completed.
	// The channel is torn down and the client must reconnect; the write
	// is never retried in place.
	ErrChannelWriteFailed = errors.New("push channel write failed")

	// ErrStrategyNotRegistered means the dispatch table has no entry for
	// a notification type. This is a configuration error, not a runtime
	// condition, and must never be silently swallowed.
	ErrStrategyNotRegistered = errors.New("no strategy registered for notification type")

	// ErrNotRoomMember rejects presence heartbeats from users who are not
	// members of the room. No side effects.
	ErrNotRoomMember = errors.New("user is not a member of the room")

	// ErrRecordNotFound means a recipient record does not exist or does
	// not belong to the requesting user.
	ErrRecordNotFound = errors.New("recipient record not found")
)
