package flow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/ytget/soql-studio/internal/model"
)

// AttemptIDPrefix prefixes every attempt ID
const AttemptIDPrefix = "attempt-"

// ErrAttemptActive is returned when a new attempt is requested while one is running
var ErrAttemptActive = errors.New("an attempt is already active")

// Spawner runs a task in the background without blocking the caller.
type Spawner interface {
	Spawn(name string, task func(ctx context.Context)) error
}

// Flow is the consumer side of a task channel. M is the interim message
// type, R the success value and E the typed error.
type Flow[M, R, E any] struct {
	name string

	mu         sync.Mutex
	state      model.FetchState
	generation uint64
	cancelFlag *atomic.Bool
	messages   []M
	outcome    *Outcome[R, E]
}

// New creates an idle flow
func New[M, R, E any](name string) *Flow[M, R, E] {
	return &Flow[M, R, E]{
		name:       name,
		state:      model.FetchStateIdle,
		cancelFlag: new(atomic.Bool),
	}
}

// Name returns the flow name used in logs
func (f *Flow[M, R, E]) Name() string {
	return f.name
}

// Handle begins a new attempt and returns its producer handle. Leftover
// messages of a previous attempt are discarded.
func (f *Flow[M, R, E]) Handle() (*Handle[M, R, E], error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state.IsActive() {
		return nil, ErrAttemptActive
	}

	f.generation++
	f.cancelFlag = new(atomic.Bool)
	f.messages = nil
	f.outcome = nil
	f.state = model.FetchStateIdle

	return &Handle[M, R, E]{
		flow:   f,
		gen:    f.generation,
		id:     generateAttemptID(),
		cancel: f.cancelFlag,
	}, nil
}

// State returns the current lifecycle state
func (f *Flow[M, R, E]) State() model.FetchState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// IsActive returns true until the outcome of the running attempt is finalized
func (f *Flow[M, R, E]) IsActive() bool {
	return f.State().IsActive()
}

// IsCanceled returns true if the last finalized attempt had been canceled
func (f *Flow[M, R, E]) IsCanceled() bool {
	return f.State() == model.FetchStateCanceled
}

// Cancel asks the running attempt to stop. It returns false when nothing is active.
func (f *Flow[M, R, E]) Cancel() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != model.FetchStateActive {
		return false
	}
	f.state = model.FetchStateCanceling
	f.cancelFlag.Store(true)
	return true
}

// Extract passes every buffered message to visit in FIFO order and returns
// a Finalizer for the outcome that was ready at the same instant. Messages
// sent before the outcome are therefore always visited first.
func (f *Flow[M, R, E]) Extract(visit func(M)) *Finalizer[M, R, E] {
	f.mu.Lock()
	msgs := f.messages
	f.messages = nil
	out := f.outcome
	gen := f.generation
	f.mu.Unlock()

	for _, m := range msgs {
		visit(m)
	}
	return &Finalizer[M, R, E]{flow: f, outcome: out, gen: gen}
}

// Finalizer delivers the outcome captured by Extract.
type Finalizer[M, R, E any] struct {
	flow    *Flow[M, R, E]
	outcome *Outcome[R, E]
	gen     uint64
}

// Finalize consumes the outcome, if one was ready, and passes it to visit.
// It returns true when an outcome was delivered.
func (fz *Finalizer[M, R, E]) Finalize(visit func(Outcome[R, E])) bool {
	if fz.outcome == nil {
		return false
	}

	f := fz.flow
	f.mu.Lock()
	if f.generation != fz.gen || f.outcome != fz.outcome {
		f.mu.Unlock()
		return false
	}
	f.outcome = nil
	// A cancel that arrives after a successful report is too late to count.
	if f.cancelFlag.Load() && fz.outcome.Kind != OutcomeSuccess {
		f.state = model.FetchStateCanceled
	} else {
		f.state = model.FetchStateCompleted
	}
	f.mu.Unlock()

	visit(*fz.outcome)
	return true
}

// Handle is the producer side of one attempt.
type Handle[M, R, E any] struct {
	flow     *Flow[M, R, E]
	gen      uint64
	id       string
	cancel   *atomic.Bool
	reported atomic.Bool
}

// ID returns the attempt ID
func (h *Handle[M, R, E]) ID() string {
	return h.id
}

// Activate moves the flow to Active. It must be called before any message is sent.
func (h *Handle[M, R, E]) Activate() {
	f := h.flow
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.generation == h.gen && f.state == model.FetchStateIdle {
		f.state = model.FetchStateActive
	}
}

// Send buffers an interim message. It never blocks; messages from a
// superseded or already finished attempt are dropped and false is returned.
func (h *Handle[M, R, E]) Send(m M) bool {
	f := h.flow
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.generation != h.gen || f.outcome != nil || h.reported.Load() {
		return false
	}
	f.messages = append(f.messages, m)
	return true
}

// ShouldCancel reports whether the consumer asked this attempt to stop
func (h *Handle[M, R, E]) ShouldCancel() bool {
	return h.cancel.Load()
}

// Success reports the terminal result. Only the first report counts.
func (h *Handle[M, R, E]) Success(value R) bool {
	return h.report(Outcome[R, E]{Kind: OutcomeSuccess, Value: value})
}

// Error reports a typed terminal failure. Only the first report counts.
func (h *Handle[M, R, E]) Error(err E) bool {
	return h.report(Outcome[R, E]{Kind: OutcomeError, Err: err})
}

// Reported returns true once a terminal outcome was sent
func (h *Handle[M, R, E]) Reported() bool {
	return h.reported.Load()
}

func (h *Handle[M, R, E]) panicked(msg string) bool {
	return h.report(Outcome[R, E]{Kind: OutcomePanic, Panic: msg})
}

func (h *Handle[M, R, E]) report(out Outcome[R, E]) bool {
	if !h.reported.CompareAndSwap(false, true) {
		return false
	}

	f := h.flow
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.generation != h.gen {
		return false
	}
	f.outcome = &out
	return true
}

// abort rolls back an attempt whose task never started
func (h *Handle[M, R, E]) abort() {
	h.reported.Store(true)

	f := h.flow
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.generation == h.gen {
		f.state = model.FetchStateIdle
		f.messages = nil
		f.outcome = nil
	}
}

// Launch starts a new attempt on f and runs task on sp. A panic inside task,
// or a task that returns without reporting, ends the attempt with an
// OutcomePanic so the consumer always sees exactly one outcome.
func Launch[M, R, E any](sp Spawner, f *Flow[M, R, E], task func(ctx context.Context, h *Handle[M, R, E])) (*Handle[M, R, E], error) {
	h, err := f.Handle()
	if err != nil {
		return nil, err
	}
	h.Activate()

	err = sp.Spawn(f.name+"/"+h.id, func(ctx context.Context) {
		defer func() {
			if r := recover(); r != nil {
				h.panicked(fmt.Sprint(r))
				return
			}
			if !h.Reported() {
				h.panicked("task finished without reporting an outcome")
			}
		}()
		task(ctx, h)
	})
	if err != nil {
		h.abort()
		return nil, fmt.Errorf("spawning %s: %w", f.name, err)
	}
	return h, nil
}

// generateAttemptID generates a unique attempt ID
func generateAttemptID() string {
	return AttemptIDPrefix + uuid.NewString()
}
