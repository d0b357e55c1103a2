package runtime

import (
	"sync"
)

// SubQueue decouples a producer from one slow consumer. Enqueue never blocks;
// a dispatcher goroutine moves items from the in-memory queue into Chan().
type SubQueue[T any] struct {
	mu     sync.Mutex
	cond   *sync.Cond
	queue  []T
	closed bool

	outCh  chan T
	paused bool
}

// NewSubQueue returns a paused queue. Call SetPaused(false) to start delivery.
func NewSubQueue[T any](outBuf int) *SubQueue[T] {
	sq := &SubQueue[T]{
		outCh:  make(chan T, outBuf),
		paused: true,
	}
	sq.cond = sync.NewCond(&sq.mu)
	go sq.dispatch()
	return sq
}

// Chan is closed once the queue is closed and the dispatcher has exited.
func (sq *SubQueue[T]) Chan() <-chan T { return sq.outCh }

// Enqueue appends to the queue. It is a no-op after Close.
func (sq *SubQueue[T]) Enqueue(ev T) {
	sq.mu.Lock()
	if !sq.closed {
		sq.queue = append(sq.queue, ev)
		sq.cond.Signal()
	}
	sq.mu.Unlock()
}

// Len reports items accepted but not yet handed to the channel.
func (sq *SubQueue[T]) Len() int {
	sq.mu.Lock()
	defer sq.mu.Unlock()
	return len(sq.queue)
}

// SetPaused gates dispatching. Used to hold back live events during a snapshot.
func (sq *SubQueue[T]) SetPaused(v bool) {
	sq.mu.Lock()
	sq.paused = v
	sq.cond.Broadcast()
	sq.mu.Unlock()
}

// OutOfBandSnapshotSend pushes directly into the channel, bypassing the queue.
// Only valid while paused, with a channel buffer large enough for the burst.
// It is a no-op after Close.
func (sq *SubQueue[T]) OutOfBandSnapshotSend(ev T) {
	sq.mu.Lock()
	defer sq.mu.Unlock()
	if sq.closed {
		return
	}
	sq.outCh <- ev
}

// Close stops the dispatcher. Items still queued are dropped.
func (sq *SubQueue[T]) Close() {
	sq.mu.Lock()
	sq.closed = true
	sq.queue = nil
	sq.cond.Broadcast()
	sq.mu.Unlock()
}

func (sq *SubQueue[T]) dispatch() {
	for {
		ev, ok := sq.next()
		if !ok {
			return
		}
		sq.outCh <- ev
	}
}

func (sq *SubQueue[T]) next() (T, bool) {
	sq.mu.Lock()
	defer sq.mu.Unlock()
	for !sq.closed && (sq.paused || len(sq.queue) == 0) {
		sq.cond.Wait()
	}
	if sq.closed {
		// Closed under mu so a snapshot send never races the close.
		close(sq.outCh)
		var zero T
		return zero, false
	}
	ev := sq.queue[0]
	var zero T
	sq.queue[0] = zero
	sq.queue = sq.queue[1:]
	return ev, true
}
