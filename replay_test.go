package rowan_test

import (
	"reflect"
	"testing"

	"github.com/phanxgames/rowan"
	"github.com/phanxgames/rowan/command"
	"github.com/phanxgames/rowan/renderer"
)

// buildPanel creates a small tree of elements under the scene root and
// returns its top node.
func buildPanel(t *testing.T, s *rowan.Scene) *rowan.Node {
	t.Helper()
	panel := s.Root().NewChild("panel")
	panel.SetProportionalSize(0.5, 0.5, 1)
	panel.SetAlign(0.25, 0.25, 0)
	el, err := rowan.NewElement(panel, "div")
	if err != nil {
		t.Fatal(err)
	}
	el.SetProperty("background-color", "#202020")
	el.AddClass("panel")

	for i, label := range []string{"ok", "cancel"} {
		b := panel.NewChild(label)
		b.SetSizeMode(rowan.SizeAbsolute, rowan.SizeAbsolute, rowan.SizeAbsolute)
		b.SetAbsoluteSize(60, 20, 0)
		b.SetPosition(float64(10+i*70), 10, 0)
		bel, err := rowan.NewElement(b, "button")
		if err != nil {
			t.Fatal(err)
		}
		bel.SetContent(label)
		bel.SetAttribute("name", label)
		bel.On(command.EventClick, func(any) {})
	}
	return panel
}

func newReplayEngine(t *testing.T) (*rowan.Engine, *rowan.Scene, *renderer.Compositor) {
	t.Helper()
	e := rowan.NewEngine(nil, rowan.DefaultConfig())
	s, err := e.CreateScene("body")
	if err != nil {
		t.Fatal(err)
	}
	comp := renderer.New()
	comp.Resize(400, 300)
	e.HandleMessage(comp.Receive(e.Step(0))) // NEED_SIZE_FOR round trip
	return e, s, comp
}

func TestReplayingABatchIsIdempotent(t *testing.T) {
	e, s, comp := newReplayEngine(t)
	buildPanel(t, s)
	batch := e.Step(16)

	comp.Receive(batch)
	first := comp.Snapshot()
	comp.Receive(batch)
	if second := comp.Snapshot(); !reflect.DeepEqual(first, second) {
		t.Errorf("second replay changed the model:\n got %v\nwant %v", second, first)
	}
}

func TestRemountRebuildsIdenticalModel(t *testing.T) {
	e, s, comp := newReplayEngine(t)
	panel := buildPanel(t, s)
	comp.Receive(e.Step(16))
	want := comp.Snapshot()
	if len(want) != 3 {
		t.Fatalf("model has %d elements, want 3", len(want))
	}

	// A fresh renderer fed only the remount replay reaches the same state.
	panel.RemoveFromParent()
	comp.Receive(e.Step(32))
	if comp.Len() != 0 {
		t.Fatalf("DISMOUNT left %v", comp.Paths())
	}
	comp.Reset()
	s.Root().AddChild(panel)
	comp.Receive(e.Step(48))
	if got := comp.Snapshot(); !reflect.DeepEqual(got, want) {
		t.Errorf("replayed model differs:\n got %v\nwant %v", got, want)
	}
}

func TestHitTestFindsDeepestElement(t *testing.T) {
	e, s, comp := newReplayEngine(t)
	buildPanel(t, s)
	comp.Receive(e.Step(16))

	// The panel covers (100,75)-(300,225); "cancel" sits at +80,+10 inside it.
	tests := []struct {
		x, y float64
		want string
	}{
		{190, 90, "body/0/1"},
		{120, 90, "body/0/0"},
		{250, 200, "body/0"},
		{10, 10, ""},
	}
	for _, tt := range tests {
		got, ok := comp.HitTest(tt.x, tt.y)
		if got != tt.want || ok != (tt.want != "") {
			t.Errorf("HitTest(%v, %v) = %q, %v; want %q", tt.x, tt.y, got, ok, tt.want)
		}
	}

	msg := comp.Trigger("body/0/1", command.EventClick, nil)
	if msg == nil {
		t.Fatal("button should listen for clicks")
	}
	if comp.Trigger("body/0", command.EventClick, nil) != nil {
		t.Error("panel has no click listener")
	}
}
