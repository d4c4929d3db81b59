// Package debounce delays an action until calls to it have stopped for a
// quiet period. Only the trailing call of a burst runs, with its argument.
package debounce

import (
	"sync"
	"time"
)

// DefaultWait is used when a non-positive wait is given
const DefaultWait = 300 * time.Millisecond

// Timer is a pending delayed call
type Timer interface {
	Stop() bool
}

// Scheduler runs f once after d. It must not call f synchronously.
type Scheduler func(d time.Duration, f func()) Timer

func afterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Option configures a Debouncer
type Option func(*options)

type options struct {
	scheduler Scheduler
}

// WithScheduler replaces time.AfterFunc, mostly for tests
func WithScheduler(s Scheduler) Option {
	return func(o *options) {
		if s != nil {
			o.scheduler = s
		}
	}
}

// Debouncer forwards the last Trigger argument to its action once wait has
// elapsed without another Trigger. It is safe for concurrent use.
type Debouncer[T any] struct {
	action   func(T)
	wait     time.Duration
	schedule Scheduler

	mu      sync.Mutex
	timer   Timer
	gen     uint64
	stopped bool
}

// New creates a Debouncer for action
func New[T any](action func(T), wait time.Duration, opts ...Option) *Debouncer[T] {
	o := options{scheduler: afterFunc}
	for _, opt := range opts {
		opt(&o)
	}
	if wait <= 0 {
		wait = DefaultWait
	}
	return &Debouncer[T]{
		action:   action,
		wait:     wait,
		schedule: o.scheduler,
	}
}

// Wait returns the effective quiet period
func (d *Debouncer[T]) Wait() time.Duration { return d.wait }

// Trigger cancels any pending call and schedules a new one with arg
func (d *Debouncer[T]) Trigger(arg T) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}

	d.gen++
	gen := d.gen
	d.timer = d.schedule(d.wait, func() { d.fire(gen, arg) })
}

// fire runs the action unless a later Trigger or Stop superseded gen.
// A timer that could not be stopped in time lands here and is dropped.
func (d *Debouncer[T]) fire(gen uint64, arg T) {
	d.mu.Lock()
	if d.stopped || gen != d.gen {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	d.mu.Unlock()

	d.action(arg)
}

// Pending reports whether a call is scheduled
func (d *Debouncer[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

// Cancel drops the pending call, if any, and keeps the Debouncer usable
func (d *Debouncer[T]) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cancelLocked()
}

// Stop drops the pending call and ignores every later Trigger
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cancelLocked()
	d.stopped = true
}

func (d *Debouncer[T]) cancelLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
}

// Debounce wraps action so that bursts of calls collapse into one trailing
// call carrying the last argument. wait <= 0 means DefaultWait. Each call to
// Debounce owns an independent timer.
func Debounce[T any](action func(T), wait time.Duration, opts ...Option) func(T) {
	return New(action, wait, opts...).Trigger
}

// Func is Debounce for actions without arguments
func Func(action func(), wait time.Duration, opts ...Option) func() {
	d := New(func(struct{}) { action() }, wait, opts...)
	return func() { d.Trigger(struct{}{}) }
}

// Variadic is Debounce for actions taking an argument list, forwarded as is
func Variadic(action func(args ...any), wait time.Duration, opts ...Option) func(args ...any) {
	d := New(func(args []any) { action(args...) }, wait, opts...)
	return func(args ...any) {
		d.Trigger(append([]any(nil), args...))
	}
}
