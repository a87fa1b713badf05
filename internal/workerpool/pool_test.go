package workerpool

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestSubmit_RunsTask(t *testing.T) {
	p := New(2, 4)
	defer p.Shutdown()

	done := make(chan struct{})
	p.Submit(func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("task never ran")
	}
}

func TestSubmit_CallerRunsWhenSaturated(t *testing.T) {
	p := New(1, 1)
	defer p.Shutdown()

	// Park the single worker, then fill the single queue slot.
	started := make(chan struct{})
	release := make(chan struct{})
	p.Submit(func() { close(started); <-release })
	<-started
	p.Submit(func() {})

	// Queue full: the task must run synchronously on this goroutine,
	// before Submit returns.
	ran := false
	p.Submit(func() { ran = true })
	if !ran {
		t.Fatal("saturated Submit must run the task caller-side")
	}

	close(release)
}

func TestSubmit_PanicDoesNotKillWorker(t *testing.T) {
	p := New(1, 4)
	defer p.Shutdown()

	p.Submit(func() { panic("delivery gone wrong") })

	done := make(chan struct{})
	p.Submit(func() { close(done) })
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker died after panicking task")
	}
}

func TestShutdown_DrainsQueuedTasks(t *testing.T) {
	p := New(2, 16)

	var ran atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		p.Submit(func() {
			defer wg.Done()
			ran.Add(1)
		})
	}

	p.Shutdown()
	wg.Wait()

	if got := ran.Load(); got != 10 {
		t.Fatalf("expected 10 tasks to run, got %d", got)
	}
}

func TestSubmit_AfterShutdownRunsCallerSide(t *testing.T) {
	p := New(1, 1)
	p.Shutdown()

	ran := false
	p.Submit(func() { ran = true })
	if !ran {
		t.Fatal("post-shutdown Submit must run the task caller-side")
	}
}
