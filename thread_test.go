package rowan

import (
	"context"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/phanxgames/rowan/command"
	"github.com/phanxgames/rowan/renderer"
)

func TestHeadlessHostTickOrder(t *testing.T) {
	h := NewHeadlessHost()
	var got []string
	h.RequestTick(func(ts float64) {
		got = append(got, "a")
		h.RequestTick(func(float64) { got = append(got, "late") })
	})
	cancelled := h.RequestTick(func(float64) { got = append(got, "cancelled") })
	h.RequestTick(func(ts float64) {
		if ts != 16 {
			t.Errorf("timestamp = %v, want 16", ts)
		}
		got = append(got, "b")
	})
	h.CancelTick(cancelled)

	h.Advance(16)
	assertStrings(t, "first advance", got, []string{"a", "b"})
	if h.PendingTicks() != 1 {
		t.Errorf("PendingTicks = %d, want 1", h.PendingTicks())
	}
	h.Advance(32)
	assertStrings(t, "second advance", got, []string{"a", "b", "late"})
}

func TestHeadlessHostMessages(t *testing.T) {
	h := NewHeadlessHost()
	h.Deliver([]any{command.Frame, 0.0}) // no handler yet

	var got []any
	h.OnHostMessage(func(msg []any) { got = msg })
	h.Deliver([]any{command.Frame, 1.0})
	if !reflect.DeepEqual(got, []any{command.Frame, 1.0}) {
		t.Errorf("delivered = %v", got)
	}

	h.PostToHost([]any{"a"})
	h.PostToHost([]any{"b"})
	if len(h.Posted()) != 2 {
		t.Errorf("Posted = %d, want 2", len(h.Posted()))
	}
	if taken := h.TakePosted(); len(taken) != 2 || len(h.Posted()) != 0 {
		t.Errorf("TakePosted = %v, remaining = %v", taken, h.Posted())
	}
}

func TestSameThreadConnectsBothSides(t *testing.T) {
	st := NewSameThread()
	st.PostMessage([]any{command.Frame, 0.0}) // no handlers yet
	st.PostToHost([]any{command.With, "body"})

	var toLogic, toRender []any
	st.OnHostMessage(func(msg []any) { toLogic = msg })
	st.OnMessage(func(batch []any) { toRender = batch })
	st.PostMessage([]any{command.Frame, 5.0})
	st.PostToHost([]any{command.With, "body", command.NeedSizeFor})
	if len(toLogic) != 2 || len(toRender) != 3 {
		t.Errorf("toLogic = %v, toRender = %v", toLogic, toRender)
	}
	if st.RequestTick(func(float64) {}) != 0 {
		t.Error("SameThread ticks come from FRAME messages")
	}
}

func TestNewThreadFollowsConfig(t *testing.T) {
	cfg := DefaultConfig()
	ran := 0
	setup := func(host Host) {
		ran++
		if _, ok := host.(*SameThread); !ok {
			t.Errorf("host = %T, want *SameThread", host)
		}
	}
	if th, ok := NewThread(cfg, setup).(*SameThread); !ok || ran != 1 {
		t.Errorf("same-thread: %T, setup ran %d times", th, ran)
	}

	cfg.Worker = true
	ran = 0
	if th, ok := NewThread(cfg, func(Host) { ran++ }).(*Worker); !ok || ran != 0 {
		t.Errorf("worker: %T, setup ran %d times before Run", th, ran)
	}
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestWorkerRoundTrip(t *testing.T) {
	clicked := make(chan any, 1)
	w := NewWorker(func(host Host) {
		e := NewEngine(host, DefaultConfig())
		s, err := e.CreateScene("body")
		if err != nil {
			return
		}
		el, err := NewElement(s.Root().NewChild("button"), "button")
		if err != nil {
			return
		}
		el.On(command.EventClick, func(p any) { clicked <- p })
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	defer func() {
		cancel()
		if err := <-done; err != nil {
			t.Errorf("Run: %v", err)
		}
	}()

	comp := renderer.New()
	tm := NewThreadManager(w, comp, nil)
	tm.Step(0)
	waitFor(t, "element", func() bool {
		tm.Poll()
		return comp.Element("body/0") != nil
	})

	el := comp.Element("body/0")
	if el.Tag != "button" {
		t.Errorf("Tag = %q, want button", el.Tag)
	}
	msg := comp.Trigger("body/0", command.EventClick, []any{3.0, 4.0})
	if msg == nil {
		t.Fatal("click listener not registered on the render side")
	}
	w.PostMessage(msg)

	select {
	case p := <-clicked:
		if !reflect.DeepEqual(p, []any{3.0, 4.0}) {
			t.Errorf("payload = %v, want [3 4]", p)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("click never reached the worker")
	}
}

func TestWorkerStopsOnCancel(t *testing.T) {
	w := NewWorker(func(Host) {})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := w.Run(ctx); err != nil {
		t.Errorf("Run = %v, want nil", err)
	}
}

func TestWorkerPostMessageUnencodable(t *testing.T) {
	buf := captureLogs(t, zerolog.ErrorLevel)
	w := NewWorker(func(Host) {})
	w.PostMessage([]any{make(chan int)})
	if len(w.toLogic) != 0 {
		t.Error("unencodable message should not be queued")
	}
	if !strings.Contains(buf.String(), "encode control message") {
		t.Errorf("log = %q, want an encode error", buf.String())
	}
}

func TestWorkerPollDropsCorruptBatch(t *testing.T) {
	buf := captureLogs(t, zerolog.WarnLevel)
	w := NewWorker(func(Host) {})
	var got [][]any
	w.OnMessage(func(b []any) { got = append(got, b) })
	w.toRender <- []byte("not json")
	w.toRender <- []byte(`["WITH","body","NEED_SIZE_FOR"]`)
	w.Poll()
	if len(got) != 1 || len(got[0]) != 3 {
		t.Errorf("delivered = %v, want the one valid batch", got)
	}
	if !strings.Contains(buf.String(), "render side dropped batch") {
		t.Errorf("log = %q, want a dropped batch warning", buf.String())
	}
}
