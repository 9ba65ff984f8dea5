package undo

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/aretw0/conduit/internal/logging"
	"github.com/aretw0/conduit/pkg/domain"
	"github.com/google/uuid"
)

// Effect applies one direction of a reversible operation. It may block, e.g. on a
// network call, and should honour ctx.
type Effect func(ctx context.Context) error

// Entry is one reversible operation.
type Entry struct {
	ID          string
	Description string
	Timestamp   time.Time
	Forward     Effect
	Backward    Effect
}

// Snapshot is the externally observable state of the log.
type Snapshot struct {
	UndoCount int
	RedoCount int
	// NextUndo and NextRedo are the descriptions of the entries the next Undo or
	// Redo would apply, empty when the stack is empty.
	NextUndo string
	NextRedo string
}

func (s Snapshot) CanUndo() bool { return s.UndoCount > 0 }
func (s Snapshot) CanRedo() bool { return s.RedoCount > 0 }

// Log is the undo/redo history. Operations are serialised: an Undo waiting on a
// slow effect blocks a concurrent Push until it completes. Effects and change
// listeners must not call Push, Undo, Redo or Clear.
type Log struct {
	op sync.Mutex

	mu        sync.Mutex
	undo      *ring[Entry]
	redo      *ring[Entry]
	listeners []*listener
	nextID    uint64

	capacity int
	logger   *slog.Logger
	now      func() time.Time
}

type listener struct {
	id uint64
	fn func(Snapshot)
}

// Option configures the Log.
type Option func(*Log)

// WithCapacity bounds the undo stack. Values below 1 are ignored.
func WithCapacity(n int) Option {
	return func(l *Log) {
		if n > 0 {
			l.capacity = n
		}
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Log) {
		l.logger = logger
	}
}

// WithClock overrides the timestamp source for pushed entries.
func WithClock(now func() time.Time) Option {
	return func(l *Log) {
		l.now = now
	}
}

// New creates an empty Log.
func New(opts ...Option) *Log {
	l := &Log{
		capacity: domain.DefaultUndoCapacity,
		logger:   logging.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.undo = newRing[Entry](l.capacity)
	l.redo = newRing[Entry](l.capacity)
	return l
}

// Push records a committed operation and clears the redo stack. A missing ID or
// Timestamp is filled in; nil effects are treated as no-ops. The stored entry is
// returned.
func (l *Log) Push(e Entry) Entry {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = l.now()
	}
	if e.Forward == nil {
		e.Forward = noop
	}
	if e.Backward == nil {
		e.Backward = noop
	}

	l.op.Lock()
	defer l.op.Unlock()

	l.mu.Lock()
	l.redo.clear()
	if evicted, dropped := l.undo.push(e); dropped {
		l.logger.Debug("undo history full, dropping oldest entry", "id", evicted.ID, "description", evicted.Description)
	}
	l.mu.Unlock()

	l.logger.Debug("undo entry pushed", "id", e.ID, "description", e.Description)
	l.notify()
	return e
}

// Undo reverts the newest entry. It returns false with a nil error when there is
// nothing to undo, and false with the effect's error when Backward fails; in that
// case the entry stays on the undo stack.
func (l *Log) Undo(ctx context.Context) (bool, error) {
	return l.move(ctx, l.undo, l.redo, "undo", func(e Entry) Effect { return e.Backward })
}

// Redo re-applies the most recently undone entry. Failure semantics mirror Undo.
func (l *Log) Redo(ctx context.Context) (bool, error) {
	return l.move(ctx, l.redo, l.undo, "redo", func(e Entry) Effect { return e.Forward })
}

func (l *Log) move(ctx context.Context, from, to *ring[Entry], action string, effect func(Entry) Effect) (bool, error) {
	l.op.Lock()
	defer l.op.Unlock()

	l.mu.Lock()
	e, ok := from.peek()
	l.mu.Unlock()
	if !ok {
		return false, nil
	}

	if err := effect(e)(ctx); err != nil {
		l.logger.WarnContext(ctx, action+" failed, entry kept", "id", e.ID, "description", e.Description, "err", err)
		return false, fmt.Errorf("%s %q: %w", action, e.Description, err)
	}

	l.mu.Lock()
	from.pop()
	to.push(e)
	l.mu.Unlock()

	l.logger.DebugContext(ctx, action+" applied", "id", e.ID, "description", e.Description)
	l.notify()
	return true, nil
}

// CanUndo reports whether Undo has an entry to apply.
func (l *Log) CanUndo() bool {
	return l.Snapshot().CanUndo()
}

// CanRedo reports whether Redo has an entry to apply.
func (l *Log) CanRedo() bool {
	return l.Snapshot().CanRedo()
}

// Snapshot returns the current counts and next descriptions.
func (l *Log) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshotLocked()
}

func (l *Log) snapshotLocked() Snapshot {
	s := Snapshot{UndoCount: l.undo.len(), RedoCount: l.redo.len()}
	if e, ok := l.undo.peek(); ok {
		s.NextUndo = e.Description
	}
	if e, ok := l.redo.peek(); ok {
		s.NextRedo = e.Description
	}
	return s
}

// Entries returns the undo stack oldest first.
func (l *Log) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.undo.items()
}

// Clear drops both stacks, as on a project switch or sign-out.
func (l *Log) Clear() {
	l.op.Lock()
	defer l.op.Unlock()

	l.mu.Lock()
	l.undo.clear()
	l.redo.clear()
	l.mu.Unlock()
	l.notify()
}

// OnChange registers fn to receive a Snapshot after every Push, successful Undo or
// Redo, and Clear. The returned function unsubscribes and is idempotent.
func (l *Log) OnChange(fn func(Snapshot)) (unsubscribe func()) {
	l.mu.Lock()
	l.nextID++
	id := l.nextID
	l.listeners = append(l.listeners, &listener{id: id, fn: fn})
	l.mu.Unlock()

	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.listeners = slices.DeleteFunc(l.listeners, func(x *listener) bool { return x.id == id })
	}
}

// notify must be called with op held so listeners observe changes in order.
func (l *Log) notify() {
	l.mu.Lock()
	snap := l.snapshotLocked()
	listeners := slices.Clone(l.listeners)
	l.mu.Unlock()

	for _, ln := range listeners {
		ln.fn(snap)
	}
}

func noop(context.Context) error { return nil }
