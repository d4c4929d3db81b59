package debounce

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"campkit/internal/shared/testutil"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func fakeScheduler(clock *testutil.FakeClock) Option {
	return WithScheduler(func(d time.Duration, f func()) Timer {
		return clock.AfterFunc(d, f)
	})
}

// recorder collects the arguments the debounced action received
type recorder[T any] struct {
	mu   sync.Mutex
	args []T
}

func (r *recorder[T]) record(v T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.args = append(r.args, v)
}

func (r *recorder[T]) calls() []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]T(nil), r.args...)
}

func TestDebounce_BurstCollapsesToLastArgument(t *testing.T) {
	clock := testutil.NewFakeClock()
	rec := &recorder[string]{}
	fn := Debounce(rec.record, 300*time.Millisecond, fakeScheduler(clock))

	for _, q := range []string{"c", "ca", "cam", "camp", "campi"} {
		fn(q)
		clock.Advance(50 * time.Millisecond)
	}
	assert.Empty(t, rec.calls())

	clock.Advance(300 * time.Millisecond)
	assert.Equal(t, []string{"campi"}, rec.calls())
	assert.Equal(t, 0, clock.Pending())
}

func TestDebounce_TrailingEdgeTiming(t *testing.T) {
	clock := testutil.NewFakeClock()
	rec := &recorder[int]{}
	fn := Debounce(rec.record, 100*time.Millisecond, fakeScheduler(clock))

	fn(1)
	clock.Advance(99 * time.Millisecond)
	assert.Empty(t, rec.calls(), "must not fire before the quiet period")

	// a new call restarts the window
	fn(2)
	clock.Advance(99 * time.Millisecond)
	assert.Empty(t, rec.calls())

	clock.Advance(1 * time.Millisecond)
	assert.Equal(t, []int{2}, rec.calls())
}

func TestDebounce_SeparatedCallsFireEach(t *testing.T) {
	clock := testutil.NewFakeClock()
	rec := &recorder[int]{}
	fn := Debounce(rec.record, 100*time.Millisecond, fakeScheduler(clock))

	fn(1)
	clock.Advance(150 * time.Millisecond)
	fn(2)
	clock.Advance(150 * time.Millisecond)

	assert.Equal(t, []int{1, 2}, rec.calls())
}

func TestDebounce_IndependentInstances(t *testing.T) {
	clock := testutil.NewFakeClock()
	recA := &recorder[string]{}
	recB := &recorder[string]{}
	a := Debounce(recA.record, 100*time.Millisecond, fakeScheduler(clock))
	b := Debounce(recB.record, 100*time.Millisecond, fakeScheduler(clock))

	a("a1")
	clock.Advance(60 * time.Millisecond)
	b("b1")
	clock.Advance(60 * time.Millisecond)

	assert.Equal(t, []string{"a1"}, recA.calls(), "b must not reset a")
	assert.Empty(t, recB.calls())

	clock.Advance(60 * time.Millisecond)
	assert.Equal(t, []string{"b1"}, recB.calls())
}

func TestDebounce_NonPositiveWaitUsesDefault(t *testing.T) {
	for _, wait := range []time.Duration{0, -time.Second} {
		clock := testutil.NewFakeClock()
		rec := &recorder[int]{}
		d := New(rec.record, wait, fakeScheduler(clock))
		assert.Equal(t, DefaultWait, d.Wait())

		d.Trigger(1)
		clock.Advance(DefaultWait - time.Millisecond)
		assert.Empty(t, rec.calls())
		clock.Advance(time.Millisecond)
		assert.Equal(t, []int{1}, rec.calls())
	}
}

func TestDebouncer_StaleFireIsDropped(t *testing.T) {
	// a scheduler whose timers cannot be stopped, like a timer that already
	// started running when Trigger cancels it
	var fires []func()
	sched := WithScheduler(func(_ time.Duration, f func()) Timer {
		fires = append(fires, f)
		return unstoppable{}
	})

	rec := &recorder[int]{}
	d := New(rec.record, time.Second, sched)
	d.Trigger(1)
	d.Trigger(2)
	require.Len(t, fires, 2)

	fires[0]()
	assert.Empty(t, rec.calls(), "superseded firing must not run the action")

	fires[1]()
	assert.Equal(t, []int{2}, rec.calls())
	assert.False(t, d.Pending())
}

type unstoppable struct{}

func (unstoppable) Stop() bool { return false }

func TestDebouncer_PendingCancelStop(t *testing.T) {
	clock := testutil.NewFakeClock()
	rec := &recorder[int]{}
	d := New(rec.record, 100*time.Millisecond, fakeScheduler(clock))

	assert.False(t, d.Pending())
	d.Trigger(1)
	assert.True(t, d.Pending())

	d.Cancel()
	assert.False(t, d.Pending())
	clock.Advance(time.Second)
	assert.Empty(t, rec.calls())

	d.Trigger(2)
	d.Stop()
	d.Trigger(3)
	clock.Advance(time.Second)
	assert.Empty(t, rec.calls())
	assert.False(t, d.Pending())
	assert.Equal(t, 0, clock.Pending())
}

func TestFunc(t *testing.T) {
	clock := testutil.NewFakeClock()
	var n int
	fn := Func(func() { n++ }, 50*time.Millisecond, fakeScheduler(clock))

	fn()
	fn()
	fn()
	clock.Advance(50 * time.Millisecond)
	assert.Equal(t, 1, n)
}

func TestVariadic_ForwardsArguments(t *testing.T) {
	clock := testutil.NewFakeClock()
	var got []any
	fn := Variadic(func(args ...any) { got = args }, 50*time.Millisecond, fakeScheduler(clock))

	fn("first", 1)
	args := []any{"second", 2, true}
	fn(args...)
	args[0] = "mutated"
	clock.Advance(50 * time.Millisecond)

	assert.Equal(t, []any{"second", 2, true}, got)
}

func TestDebounce_ConcurrentCallersRealTimer(t *testing.T) {
	var fired atomic.Int32
	var last atomic.Int64
	done := make(chan struct{}, 1)

	d := New(func(v int64) {
		fired.Add(1)
		last.Store(v)
		select {
		case done <- struct{}{}:
		default:
		}
	}, 100*time.Millisecond)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(v int64) {
			defer wg.Done()
			d.Trigger(v)
		}(int64(i))
	}
	wg.Wait()

	d.Trigger(1000)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("debounced action never ran")
	}

	// give a stray second firing the chance to show up
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int32(1), fired.Load())
	assert.Equal(t, int64(1000), last.Load())
}
