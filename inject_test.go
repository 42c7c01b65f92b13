package rowan

import (
	"testing"

	"github.com/phanxgames/rowan/command"
	"github.com/phanxgames/rowan/renderer"
)

// rig is an engine and a compositor joined by a SameThread, with one scene
// and a clickable element at body/0.
type rig struct {
	thread     *SameThread
	engine     *Engine
	scene      *Scene
	compositor *renderer.Compositor
	tm         *ThreadManager
	button     *Node
	clicks     int
}

func newRig(t *testing.T, host Host) *rig {
	t.Helper()
	r := &rig{thread: NewSameThread(), compositor: renderer.New()}
	r.engine = NewEngine(r.thread, DefaultConfig())
	s, err := r.engine.CreateScene("body")
	if err != nil {
		t.Fatal(err)
	}
	r.scene = s
	r.button = s.Root().NewChild("button")
	el, err := NewElement(r.button, "button")
	if err != nil {
		t.Fatal(err)
	}
	el.On(command.EventClick, func(any) { r.clicks++ })
	r.tm = NewThreadManager(r.thread, r.compositor, host)
	return r
}

func TestInjectClickReachesElement(t *testing.T) {
	r := newRig(t, nil)
	r.tm.Step(0)
	if r.compositor.Element("body/0") == nil {
		t.Fatal("element not created on the render side")
	}

	r.tm.InjectClick("body/0")
	if r.tm.PendingInjections() != 1 {
		t.Fatalf("PendingInjections = %d, want 1", r.tm.PendingInjections())
	}
	r.tm.Step(16)
	if r.clicks != 1 {
		t.Errorf("clicks = %d, want 1", r.clicks)
	}
	if r.tm.PendingInjections() != 0 {
		t.Errorf("PendingInjections = %d, want 0", r.tm.PendingInjections())
	}
}

func TestInjectOneEventPerFrame(t *testing.T) {
	r := newRig(t, nil)
	r.tm.Step(0)
	r.tm.InjectClick("body/0")
	r.tm.InjectClick("body/0")

	r.tm.Step(16)
	if r.clicks != 1 || r.tm.PendingInjections() != 1 {
		t.Errorf("after frame 1: clicks = %d, pending = %d; want 1, 1", r.clicks, r.tm.PendingInjections())
	}
	r.tm.Step(32)
	if r.clicks != 2 || r.tm.PendingInjections() != 0 {
		t.Errorf("after frame 2: clicks = %d, pending = %d; want 2, 0", r.clicks, r.tm.PendingInjections())
	}
}

func TestInjectResizeAppliesBeforeFrame(t *testing.T) {
	r := newRig(t, nil)
	r.tm.InjectResize("body", 300, 200)
	r.tm.Step(0)
	assertVec(t, "root size", r.scene.Root().Size(), Vec3{300, 200, 0})
	assertVec(t, "button size", r.button.Size(), Vec3{300, 200, 0})

	el := r.compositor.Element("body/0")
	if el == nil || el.Size != [3]float64{300, 200, 0} {
		t.Errorf("render-side size = %v, want [300 200 0]", el)
	}
}

func TestInjectEventWithPayload(t *testing.T) {
	r := newRig(t, nil)
	var got any
	r.scene.Root().Dispatch().RegisterGlobalEvent("custom", func(p any) { got = p })
	r.tm.InjectEvent("body/0", "custom", "hello")
	r.tm.Step(0)
	if got != "hello" {
		t.Errorf("payload = %v, want hello", got)
	}
}

func TestThreadManagerFramesAndHostControl(t *testing.T) {
	host := NewHeadlessHost()
	r := newRig(t, host)

	host.Deliver([]any{command.Engine, command.Start})
	if !r.tm.Running() || !r.engine.Running() {
		t.Fatal("ENGINE START should start both loops")
	}
	host.Advance(0)
	host.Advance(16)
	if r.tm.Frames() != 2 {
		t.Errorf("Frames = %d, want 2", r.tm.Frames())
	}
	if r.engine.Clock().Frame() != 2 {
		t.Errorf("engine frames = %d, want 2", r.engine.Clock().Frame())
	}

	host.Deliver([]any{command.With, "body/0", command.Trigger, command.EventClick, nil})
	if r.clicks != 1 {
		t.Errorf("relayed click count = %d, want 1", r.clicks)
	}

	host.Deliver([]any{command.Engine, command.Stop})
	if r.tm.Running() || r.engine.Running() {
		t.Error("ENGINE STOP should stop both loops")
	}
	if host.PendingTicks() != 0 {
		t.Errorf("PendingTicks = %d, want 0", host.PendingTicks())
	}
}

func TestThreadManagerAnswersNeedSize(t *testing.T) {
	r := newRig(t, nil)
	r.compositor.Resize(640, 480)
	r.tm.Step(0)
	// The reply to NEED_SIZE_FOR arrives during frame 0 and is applied on
	// the next propagation.
	r.tm.Step(16)
	assertVec(t, "root size", r.scene.Root().Size(), Vec3{640, 480, 0})
}
