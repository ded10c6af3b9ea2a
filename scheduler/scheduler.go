// SPDX-License-Identifier: MIT
// Package: vaxsim/scheduler
//
// scheduler.go - single-timeline discrete-event queue in virtual time.
//
// Contract:
//   • Now() never decreases. Actions run in (time, submission sequence)
//     order, so ties at one instant run FIFO.
//   • Scheduling before Now() fails with ErrPastTime.
//   • Handle.Dispose() removes a pending action; after it ran, Dispose is a
//     no-op. Disposing a recurring handle stops future firings.
//   • Actions after the horizon never run; Run stops with the clock at the
//     horizon.
//   • An action error is fatal: Run/Step return it wrapped with the virtual
//     time, and the clock stays at the failing instant.
//
// Complexity:
//   • Schedule / Dispose / Step: O(log n) heap operations.

package scheduler

import (
	"container/heap"
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/katalvlaran/vaxsim/logging"
)

// Action is a unit of work run at a virtual instant.
type Action func(ctx context.Context, now float64) error

// BeforeAdvance is called each time the clock is about to move forward from
// one instant to a later one. Returning an error aborts the run.
type BeforeAdvance func(ctx context.Context, from, to float64) error

// Scheduler owns the simulation timeline. It is not safe for concurrent use;
// actions run on the goroutine that calls Run/Step.
type Scheduler struct {
	now     float64
	horizon float64
	seq     uint64
	queue   entryPQ
	hooks   []BeforeAdvance
	logger  *slog.Logger
	fired   uint64
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithHorizon bounds the timeline at h. Panics on NaN.
func WithHorizon(h float64) Option {
	if math.IsNaN(h) {
		panic("scheduler: WithHorizon(NaN)")
	}
	return func(s *Scheduler) { s.horizon = h }
}

// WithStart sets the initial clock value (default 0).
func WithStart(t float64) Option {
	return func(s *Scheduler) { s.now = t }
}

// WithBeforeAdvance registers a hook (e.g. Pacing). Panics on nil.
func WithBeforeAdvance(h BeforeAdvance) Option {
	if h == nil {
		panic("scheduler: WithBeforeAdvance(nil)")
	}
	return func(s *Scheduler) { s.hooks = append(s.hooks, h) }
}

// WithLogger routes trace output to l. Panics on nil.
func WithLogger(l *slog.Logger) Option {
	if l == nil {
		panic("scheduler: WithLogger(nil)")
	}
	return func(s *Scheduler) { s.logger = l }
}

// New returns an empty scheduler at time 0 with no horizon.
func New(opts ...Option) *Scheduler {
	s := &Scheduler{
		horizon: math.Inf(1),
		logger:  logging.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	heap.Init(&s.queue)

	return s
}

// Now returns the current virtual time.
func (s *Scheduler) Now() float64 { return s.now }

// Horizon returns the configured horizon (+Inf when unbounded).
func (s *Scheduler) Horizon() float64 { return s.horizon }

// Pending returns the number of queued actions, including those beyond the horizon.
func (s *Scheduler) Pending() int { return s.queue.Len() }

// Fired returns the number of actions executed so far.
func (s *Scheduler) Fired() uint64 { return s.fired }

// NextTime returns the time of the earliest queued action.
func (s *Scheduler) NextTime() (float64, bool) {
	if s.queue.Len() == 0 {
		return 0, false
	}

	return s.queue[0].t, true
}

// ScheduleAt queues a one-shot action at absolute time t.
func (s *Scheduler) ScheduleAt(t float64, a Action) (*Handle, error) {
	if a == nil {
		return nil, fmt.Errorf("ScheduleAt(%g): %w", t, ErrNilAction)
	}
	if math.IsNaN(t) || t < s.now {
		return nil, fmt.Errorf("ScheduleAt(%g): now=%g: %w", t, s.now, ErrPastTime)
	}
	h := &Handle{s: s}
	s.push(h, t, a)

	return h, nil
}

// ScheduleAfter queues a one-shot action d time units from now.
func (s *Scheduler) ScheduleAfter(d float64, a Action) (*Handle, error) {
	if math.IsNaN(d) || d < 0 {
		return nil, fmt.Errorf("ScheduleAfter(%g): %w", d, ErrPastTime)
	}

	return s.ScheduleAt(s.now+d, a)
}

// ScheduleRecurring queues a at every instant of timing from Now on.
// A timing with no instant ≥ Now yields an inert handle.
func (s *Scheduler) ScheduleRecurring(timing Timing, a Action) (*Handle, error) {
	if timing == nil {
		return nil, fmt.Errorf("ScheduleRecurring: nil timing: %w", ErrMalformedTiming)
	}
	if a == nil {
		return nil, fmt.Errorf("ScheduleRecurring: %w", ErrNilAction)
	}
	h := &Handle{s: s, timing: timing}
	if t, ok := timing.Next(s.now); ok {
		s.push(h, t, a)
	}

	return h, nil
}

func (s *Scheduler) push(h *Handle, t float64, a Action) {
	s.seq++
	e := &entry{t: t, seq: s.seq, action: a, handle: h}
	h.entry = e
	heap.Push(&s.queue, e)
}

// advance moves the clock to t, calling every hook first.
func (s *Scheduler) advance(ctx context.Context, t float64) error {
	if t <= s.now {
		return nil
	}
	for _, hook := range s.hooks {
		if err := hook(ctx, s.now, t); err != nil {
			return fmt.Errorf("advance %g→%g: %w", s.now, t, err)
		}
	}
	s.now = t

	return nil
}

// Step runs the earliest action if it lies within the horizon. It reports
// whether an action ran.
func (s *Scheduler) Step(ctx context.Context) (bool, error) {
	if s.queue.Len() == 0 || s.queue[0].t > s.horizon {
		return false, nil
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}

	e := heap.Pop(&s.queue).(*entry)
	h := e.handle
	h.entry = nil
	if err := s.advance(ctx, e.t); err != nil {
		// Put the entry back so the run can resume after the hook failure.
		heap.Push(&s.queue, e)
		h.entry = e
		return false, err
	}

	s.fired++
	logging.Trace(s.logger, "action", "t", e.t, "seq", e.seq)
	if err := e.action(ctx, e.t); err != nil {
		h.done = true
		return true, fmt.Errorf("action at t=%g: %w", e.t, err)
	}

	if h.timing != nil && !h.disposed {
		if t, ok := h.timing.Next(math.Nextafter(e.t, math.Inf(1))); ok {
			s.push(h, t, e.action)
			return true, nil
		}
	}
	h.done = true

	return true, nil
}

// Run executes actions until the queue is empty or the horizon is reached.
// With a finite horizon the clock ends at the horizon.
func (s *Scheduler) Run(ctx context.Context) error {
	return s.RunUntil(ctx, s.horizon)
}

// RunUntil executes every action with time ≤ min(t, horizon) and then moves
// the clock to that bound (when finite).
func (s *Scheduler) RunUntil(ctx context.Context, t float64) error {
	bound := math.Min(t, s.horizon)
	for s.queue.Len() > 0 && s.queue[0].t <= bound {
		if _, err := s.Step(ctx); err != nil {
			return err
		}
	}
	if !math.IsInf(bound, 1) {
		if err := s.advance(ctx, bound); err != nil {
			return err
		}
	}
	s.logger.Debug("timeline paused", "now", s.now, "pending", s.queue.Len(), "fired", s.fired)

	return nil
}

// Handle controls a scheduled action.
type Handle struct {
	s        *Scheduler
	entry    *entry
	timing   Timing
	disposed bool
	done     bool
}

// Dispose removes the pending action (and, for recurring handles, every
// future firing). It is idempotent and a no-op once the action has run.
func (h *Handle) Dispose() {
	if h == nil || h.disposed {
		return
	}
	h.disposed = true
	if h.entry != nil && h.entry.index >= 0 {
		heap.Remove(&h.s.queue, h.entry.index)
		h.entry = nil
	}
}

// Active reports whether the handle still has a pending or future firing.
func (h *Handle) Active() bool {
	return h != nil && !h.disposed && !h.done
}

// entry is one queued firing.
type entry struct {
	t      float64
	seq    uint64
	action Action
	handle *Handle
	index  int
}

// entryPQ is a min-heap of *entry ordered by (t, seq).
type entryPQ []*entry

func (pq entryPQ) Len() int { return len(pq) }

func (pq entryPQ) Less(i, j int) bool {
	if pq[i].t != pq[j].t {
		return pq[i].t < pq[j].t
	}
	return pq[i].seq < pq[j].seq
}

func (pq entryPQ) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

func (pq *entryPQ) Push(x any) {
	e := x.(*entry)
	e.index = len(*pq)
	*pq = append(*pq, e)
}

func (pq *entryPQ) Pop() any {
	old := *pq
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	e.index = -1
	*pq = old[:n-1]

	return e
}
