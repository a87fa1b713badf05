package sse

import (
	"sync"

	"github.com/Apple-Square/moment-notification/internal/domain"
)

// Emitter is the server-held handle for one open push channel.
// Frames are queued on a buffered channel; the HTTP stream handler is the
// sole reader. Close is idempotent and only latches the done signal —
// eviction from the hub is the hub's job.
type Emitter struct {
	category domain.Category
	userID   string

	frames chan []byte
	done   chan struct{}
	once   sync.Once
}

func newEmitter(category domain.Category, userID string, buffer int) *Emitter {
	return &Emitter{
		category: category,
		userID:   userID,
		frames:   make(chan []byte, buffer),
		done:     make(chan struct{}),
	}
}

// Frames is the outbound frame queue, consumed by the stream handler.
func (e *Emitter) Frames() <-chan []byte { return e.frames }

// Done is closed when the emitter is torn down.
func (e *Emitter) Done() <-chan struct{} { return e.done }

// Close latches the done signal. Safe to call from completion, timeout
// and error paths concurrently.
func (e *Emitter) Close() {
	e.once.Do(func() { close(e.done) })
}

// push queues one encoded frame without blocking. A closed emitter or a
// full buffer both count as a failed write: a client that cannot drain
// its buffer is indistinguishable from a dead one.
func (e *Emitter) push(frame []byte) error {
	select {
	case <-e.done:
		return domain.ErrChannelWriteFailed
	default:
	}
	select {
	case e.frames <- frame:
		return nil
	case <-e.done:
		return domain.ErrChannelWriteFailed
	default:
		return domain.ErrChannelWriteFailed
	}
}
