package rowan

import (
	"reflect"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/phanxgames/rowan/command"
	"github.com/phanxgames/rowan/renderer"
)

// opIndexes returns the positions of op in batch.
func opIndexes(batch []any, op string) []int {
	var out []int
	for i, tok := range batch {
		if s, ok := tok.(string); ok && s == op {
			out = append(out, i)
		}
	}
	return out
}

func TestEngineLoopOnHeadlessHost(t *testing.T) {
	host := NewHeadlessHost()
	e := NewEngine(host, DefaultConfig())
	s, err := e.CreateScene("body")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewElement(s.Root().NewChild("box"), "div"); err != nil {
		t.Fatal(err)
	}

	e.Start()
	if host.PendingTicks() != 1 {
		t.Fatalf("PendingTicks = %d, want 1", host.PendingTicks())
	}
	host.Advance(16)
	posted := host.TakePosted()
	if len(posted) != 1 {
		t.Fatalf("posted %d batches, want 1", len(posted))
	}
	if len(opIndexes(posted[0], command.InitDOM)) != 1 {
		t.Errorf("batch = %v, want one INIT_DOM", posted[0])
	}
	if host.PendingTicks() != 1 {
		t.Errorf("loop should re-request a tick, pending = %d", host.PendingTicks())
	}

	// An idle tick posts nothing.
	host.Advance(32)
	if got := host.TakePosted(); len(got) != 0 {
		t.Errorf("idle tick posted %v", got)
	}

	e.Stop()
	if e.Running() || host.PendingTicks() != 0 {
		t.Errorf("Stop: running = %v, pending = %d", e.Running(), host.PendingTicks())
	}
}

func TestEngineStartStopIdempotent(t *testing.T) {
	host := NewHeadlessHost()
	e := NewEngine(host, DefaultConfig())
	e.Start()
	e.Start()
	if host.PendingTicks() != 1 {
		t.Errorf("PendingTicks = %d, want 1", host.PendingTicks())
	}
	e.Stop()
	e.Stop()
	if e.Running() {
		t.Error("engine should be stopped")
	}
}

func TestEngineTimeScale(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TimeScale = 2
	e := NewEngine(nil, cfg)
	e.Step(0)
	e.Step(10)
	if e.Clock().Now() != 20 {
		t.Errorf("Now = %v, want 20", e.Clock().Now())
	}
	if e.Config().TimeScale != 2 {
		t.Error("Config should return the settings used")
	}
}

func TestEngineZeroConfigUsesDefaults(t *testing.T) {
	e := NewEngine(nil, Config{})
	e.Step(0)
	e.Step(10)
	if e.Clock().Now() != 10 {
		t.Errorf("Now = %v, want 10", e.Clock().Now())
	}
	if e.Config() != DefaultConfig() {
		t.Errorf("Config = %+v, want defaults", e.Config())
	}

	cfg := DefaultConfig()
	cfg.TimeScale = 0
	paused := NewEngine(nil, cfg)
	paused.Step(0)
	paused.Step(10)
	if paused.Clock().Now() != 0 {
		t.Errorf("paused Now = %v, want 0", paused.Clock().Now())
	}
}

func TestEngineTimersFireDuringStep(t *testing.T) {
	e := NewEngine(nil, DefaultConfig())
	fired := 0
	e.Clock().SetTimeout(func() { fired++ }, 10)
	e.Step(0)
	e.Step(5)
	if fired != 0 {
		t.Fatalf("fired early")
	}
	e.Step(10)
	if fired != 1 {
		t.Errorf("fired = %d, want 1", fired)
	}
}

func TestHandleMessageFrames(t *testing.T) {
	e := NewEngine(nil, DefaultConfig())
	e.HandleMessage([]any{command.Frame, 0.0, command.Frame, 16.0})
	if e.Clock().Frame() != 2 || e.Clock().Now() != 16 {
		t.Errorf("Frame, Now = %d, %v; want 2, 16", e.Clock().Frame(), e.Clock().Now())
	}
}

func TestHandleMessageEngineStartStop(t *testing.T) {
	host := NewHeadlessHost()
	e := NewEngine(host, DefaultConfig())
	host.Deliver([]any{command.Engine, command.Start})
	if !e.Running() {
		t.Error("ENGINE START should start the loop")
	}
	host.Deliver([]any{command.Engine, command.Stop})
	if e.Running() {
		t.Error("ENGINE STOP should stop the loop")
	}
}

func TestHandleMessageUnknownOpcodeDropsRest(t *testing.T) {
	buf := captureLogs(t, zerolog.WarnLevel)
	e := NewEngine(nil, DefaultConfig())
	e.HandleMessage([]any{command.Frame, 0.0, "JUMP", command.Frame, 5.0})
	if e.Clock().Frame() != 1 {
		t.Errorf("Frame = %d, want 1", e.Clock().Frame())
	}
	if !strings.Contains(buf.String(), "unknown control opcode") {
		t.Errorf("log = %q, want an unknown opcode warning", buf.String())
	}
}

func TestHandleMessageMalformed(t *testing.T) {
	tests := []struct {
		name string
		msg  []any
	}{
		{"frame without timestamp", []any{command.Frame}},
		{"frame with string", []any{command.Frame, "soon"}},
		{"engine without verb", []any{command.Engine}},
		{"engine with bad verb", []any{command.Engine, "PAUSE"}},
		{"short trigger", []any{command.With, "body", command.Trigger}},
		{"with without trigger", []any{command.With, "body", "EMIT", "click", nil}},
		{"invoke without value", []any{command.Invoke, 1.0}},
		{"invoke with string handle", []any{command.Invoke, "one", nil}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := captureLogs(t, zerolog.WarnLevel)
			e := NewEngine(nil, DefaultConfig())
			e.HandleMessage(tt.msg)
			if e.Clock().Frame() != 0 || e.Running() {
				t.Error("malformed message had an effect")
			}
			if !strings.Contains(buf.String(), "malformed control message") {
				t.Errorf("log = %q, want a malformed warning", buf.String())
			}
		})
	}
}

func TestQueryRoundTrip(t *testing.T) {
	e, s := newTestScene(t)
	n := s.Root().NewChild("n")
	var answers []any
	if !n.Query(command.QueryRenderSize, func(a any) { answers = append(answers, a) }) {
		t.Fatal("Query on mounted node should succeed")
	}
	batch := e.Step(0)
	want := []any{command.With, "body/0", command.Query, command.QueryRenderSize, 1.0}
	if !reflect.DeepEqual(batch, want) {
		t.Errorf("batch = %v, want %v", batch, want)
	}

	e.HandleMessage([]any{command.Invoke, 1.0, "answer"})
	e.HandleMessage([]any{command.Invoke, 1.0, "again"})
	if len(answers) != 1 || answers[0] != "answer" {
		t.Errorf("answers = %v, want [answer]", answers)
	}
	if e.Functions().Len() != 0 {
		t.Errorf("Functions().Len() = %d, want 0", e.Functions().Len())
	}

	if NewNode("loose").Query(command.QueryRenderSize, func(any) {}) {
		t.Error("Query on detached node should fail")
	}
}

func TestRenderSizeMeasuredByCompositor(t *testing.T) {
	e, s := newTestScene(t)
	n := s.Root().NewChild("label")
	n.SetSizeMode(SizeRender, SizeRender, SizeAbsolute)
	el, err := NewElement(n, "span")
	if err != nil {
		t.Fatal(err)
	}
	el.SetContent("hi")

	comp := renderer.New()
	replies := comp.Receive(e.Step(0))
	if len(opIndexes(replies, command.Invoke)) != 1 {
		t.Fatalf("replies = %v, want one INVOKE", replies)
	}
	e.HandleMessage(replies)
	comp.Receive(e.Step(16))

	assertVec(t, "size", n.Size(), Vec3{16, 16, 0})
	if got := comp.Element("body/0").Size; got != [3]float64{16, 16, 0} {
		t.Errorf("render-side size = %v, want [16 16 0]", got)
	}
}

// storeRecorder is an EntityStore that keeps every event.
type storeRecorder struct {
	events []InteractionEvent
}

func (s *storeRecorder) EmitEvent(ev InteractionEvent) {
	s.events = append(s.events, ev)
}

func TestRouteUIEventMirrorsToEntityStore(t *testing.T) {
	e, s := newTestScene(t)
	s.Root().NewChild("button")
	store := &storeRecorder{}
	e.SetEntityStore(store)
	e.Step(0)
	e.Step(40)

	e.RouteUIEvent("body/0", command.EventClick, []any{1.0, 2.0})
	e.RouteUIEvent("elsewhere/0", command.EventClick, nil)
	if len(store.events) != 1 {
		t.Fatalf("events = %d, want 1", len(store.events))
	}
	ev := store.events[0]
	if ev.Scene != "body" || ev.Path != "body/0" || ev.Event != command.EventClick {
		t.Errorf("event = %+v", ev)
	}
	if ev.Frame != 2 || ev.Time != 40 {
		t.Errorf("Frame, Time = %d, %v; want 2, 40", ev.Frame, ev.Time)
	}
}

func TestBroadcastReachesEveryScene(t *testing.T) {
	e := NewEngine(nil, DefaultConfig())
	var got []string
	for _, sel := range []string{"left", "right"} {
		s, err := e.CreateScene(sel)
		if err != nil {
			t.Fatal(err)
		}
		s.Root().NewChild("c").Dispatch().RegisterGlobalEvent("hello", func(any) {
			got = append(got, sel)
		})
	}
	e.Broadcast("hello", nil)
	assertStrings(t, "scenes", got, []string{"left", "right"})
}

func TestCommandsFramedPerPath(t *testing.T) {
	e, s := newTestScene(t)
	a := s.Root().NewChild("a").RenderProxy()
	b := s.Root().NewChild("b").RenderProxy()
	a.Receive(command.AddClass, "x")
	a.Receive(command.AddClass, "y")
	b.Receive(command.AddClass, "z")
	a.Receive(command.AddClass, "w")
	got := e.Step(0)
	want := []any{
		command.With, "body/0", command.AddClass, "x", command.AddClass, "y",
		command.With, "body/1", command.AddClass, "z",
		command.With, "body/0", command.AddClass, "w",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("batch = %v, want %v", got, want)
	}
}

func BenchmarkStepMovingNodes(b *testing.B) {
	e := NewEngine(nil, DefaultConfig())
	s, _ := e.CreateScene("body")
	for i := 0; i < 200; i++ {
		n := s.Root().NewChild("n")
		p, _ := NewPosition(n)
		p.Set(float64(i), 100, 0, Transition{Duration: 1e9}, nil)
		NewElement(n, "div")
	}
	ts := 0.0
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ts += 16
		e.Step(ts)
	}
}
