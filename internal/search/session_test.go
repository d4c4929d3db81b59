package search

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"campkit/internal/debounce"
	"campkit/internal/shared/testutil"
	"campkit/internal/websocket"
)

type fakeSender struct {
	mu   sync.Mutex
	msgs []websocket.SearchSubmit
}

func (f *fakeSender) SendJSON(v any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, v.(websocket.SearchSubmit))
	return nil
}

func (f *fakeSender) sent() []websocket.SearchSubmit {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]websocket.SearchSubmit(nil), f.msgs...)
}

func withClock(clock *testutil.FakeClock) debounce.Option {
	return debounce.WithScheduler(func(d time.Duration, f func()) debounce.Timer {
		return clock.AfterFunc(d, f)
	})
}

func typing(q string) websocket.Inbound {
	return websocket.Inbound{Type: websocket.TypeSearchInput, Scope: "activities", Query: q}
}

func TestSession_SubmitsOnceAfterPause(t *testing.T) {
	clock := testutil.NewFakeClock()
	out := &fakeSender{}
	s := NewSession(out, 0, nil, withClock(clock))
	defer s.Close()
	ctx := context.Background()

	for _, q := range []string{"k", "ka", "kay", "kaya", "kayak"} {
		s.Handle(ctx, typing(q))
		clock.Advance(100 * time.Millisecond)
	}
	assert.Empty(t, out.sent())
	assert.True(t, s.Pending())

	clock.Advance(DefaultWait)
	assert.Equal(t, []websocket.SearchSubmit{{
		Type:  websocket.TypeSearchSubmit,
		Scope: "activities",
		Query: "kayak",
		URL:   "/activities/?q=kayak",
	}}, out.sent())
}

func TestSession_IgnoresOtherMessages(t *testing.T) {
	clock := testutil.NewFakeClock()
	out := &fakeSender{}
	s := NewSession(out, time.Second, nil, withClock(clock))
	defer s.Close()

	s.Handle(context.Background(), websocket.Inbound{Type: "something:else", Query: "x"})
	clock.Advance(time.Minute)
	assert.Empty(t, out.sent())
}

func TestSession_ClientsAreIndependent(t *testing.T) {
	clock := testutil.NewFakeClock()
	outA, outB := &fakeSender{}, &fakeSender{}
	a := NewSession(outA, 0, nil, withClock(clock))
	b := NewSession(outB, 0, nil, withClock(clock))
	ctx := context.Background()

	a.Handle(ctx, typing("voile"))
	clock.Advance(300 * time.Millisecond)
	b.Handle(ctx, typing("tir"))
	clock.Advance(200 * time.Millisecond)

	assert.Len(t, outA.sent(), 1)
	assert.Empty(t, outB.sent())

	clock.Advance(300 * time.Millisecond)
	assert.Len(t, outB.sent(), 1)
	assert.Equal(t, "/activities/?q=tir", outB.sent()[0].URL)
}

func TestSession_CloseDropsPendingSubmit(t *testing.T) {
	clock := testutil.NewFakeClock()
	out := &fakeSender{}
	s := NewSession(out, 0, nil, withClock(clock))

	s.Handle(context.Background(), typing("escalade"))
	s.Close()
	clock.Advance(time.Second)

	assert.Empty(t, out.sent())
	assert.False(t, s.Pending())
}
