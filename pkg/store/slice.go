package store

import (
	"bytes"
	"runtime"
	"slices"
	"strconv"
	"sync"
	"sync/atomic"
)

// Subscriber receives the complete new value after every mutation.
type Subscriber[T any] func(T)

// Slice is a reactive container for one immutable record.
// Safe for concurrent use.
type Slice[T any] struct {
	mu      sync.Mutex
	initial T
	value   T
	clone   func(T) T

	nextID uint64
	subs   []*subscription[T]

	// pending preserves commit order for notifications; one goroutine drains it at a time.
	pending   []delivery[T]
	draining  bool
	drainer   uint64
	queued    uint64
	delivered uint64
	settled   *sync.Cond
}

type subscription[T any] struct {
	id     uint64
	fn     Subscriber[T]
	active atomic.Bool
}

type delivery[T any] struct {
	seq   uint64
	value T
	subs  []*subscription[T]
}

// NewSlice creates a slice holding initial. clone must return a copy that shares no
// mutable memory with its argument; nil means T is copied by value.
func NewSlice[T any](initial T, clone func(T) T) *Slice[T] {
	if clone == nil {
		clone = func(v T) T { return v }
	}
	s := &Slice[T]{
		initial: clone(initial),
		value:   clone(initial),
		clone:   clone,
	}
	s.settled = sync.NewCond(&s.mu)
	return s
}

// Get returns a copy of the current value.
func (s *Slice[T]) Get() T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clone(s.value)
}

// Subscribe registers fn. The returned function unsubscribes; calling it more than
// once is a no-op. An unsubscribed listener is never called again, even for a
// notification already queued.
func (s *Slice[T]) Subscribe(fn Subscriber[T]) (unsubscribe func()) {
	s.mu.Lock()
	s.nextID++
	sub := &subscription[T]{id: s.nextID, fn: fn}
	sub.active.Store(true)
	s.subs = append(s.subs, sub)
	s.mu.Unlock()

	return func() {
		if !sub.active.CompareAndSwap(true, false) {
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		s.subs = slices.DeleteFunc(s.subs, func(x *subscription[T]) bool { return x.id == sub.id })
	}
}

// Subscribers reports how many listeners are registered.
func (s *Slice[T]) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

// Update replaces the value with fn(current). fn receives a copy and runs under the
// slice lock, so it must not call back into the slice.
func (s *Slice[T]) Update(fn func(T) T) {
	s.update(func(v T) (T, bool) { return fn(v), true })
}

// Set replaces the value.
func (s *Slice[T]) Set(v T) {
	s.Update(func(T) T { return v })
}

// Reset restores the initial snapshot.
func (s *Slice[T]) Reset() {
	s.Update(func(T) T { return s.clone(s.initial) })
}

// update commits fn's result when fn reports a change, then delivers notifications.
func (s *Slice[T]) update(fn func(T) (T, bool)) bool {
	s.mu.Lock()
	next, changed := fn(s.clone(s.value))
	if !changed {
		s.mu.Unlock()
		return false
	}
	s.value = s.clone(next)
	var seq uint64
	if len(s.subs) > 0 {
		s.queued++
		seq = s.queued
		s.pending = append(s.pending, delivery[T]{seq: seq, value: s.clone(next), subs: slices.Clone(s.subs)})
	}
	s.mu.Unlock()

	s.flush(seq)
	return true
}

// flush delivers queued notifications outside the lock and returns once delivery
// seq has completed. A subscriber that mutates the slice from the draining
// goroutine has its notification delivered after the current round instead.
func (s *Slice[T]) flush(seq uint64) {
	self := goroutineID()
	s.mu.Lock()
	for s.draining {
		if s.drainer == self || s.delivered >= seq {
			s.mu.Unlock()
			return
		}
		s.settled.Wait()
	}
	s.draining = true
	s.drainer = self
	s.mu.Unlock()

	finished := false
	defer func() {
		if !finished {
			s.mu.Lock()
			s.draining = false
			s.drainer = 0
			s.settled.Broadcast()
			s.mu.Unlock()
		}
	}()

	for {
		s.mu.Lock()
		if len(s.pending) == 0 {
			s.draining = false
			s.drainer = 0
			s.settled.Broadcast()
			s.mu.Unlock()
			finished = true
			return
		}
		d := s.pending[0]
		s.pending = s.pending[1:]
		s.mu.Unlock()

		for _, sub := range d.subs {
			if sub.active.Load() {
				sub.fn(s.clone(d.value))
			}
		}

		s.mu.Lock()
		s.delivered = d.seq
		s.settled.Broadcast()
		s.mu.Unlock()
	}
}

// goroutineID parses the current goroutine's id from its stack header.
func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	b := bytes.TrimPrefix(buf[:n], []byte("goroutine "))
	if i := bytes.IndexByte(b, ' '); i >= 0 {
		b = b[:i]
	}
	id, _ := strconv.ParseUint(string(b), 10, 64)
	return id
}
