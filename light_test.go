package rowan

import (
	"errors"
	"reflect"
	"testing"

	"github.com/phanxgames/rowan/command"
	"github.com/phanxgames/rowan/renderer"
)

func TestPointLightLifecycle(t *testing.T) {
	e, s := newTestScene(t)
	n := s.Root().NewChild("lamp")
	n.SetPosition(5, 6, 0)
	l, err := NewPointLight(n, 1, 0.5, 0)
	if err != nil {
		t.Fatal(err)
	}
	if l.Color() != [3]float64{1, 0.5, 0} {
		t.Errorf("Color = %v", l.Color())
	}

	comp := renderer.New()
	batch := e.Step(0)
	if len(opIndexes(batch, command.GLCreateLight)) != 1 {
		t.Errorf("batch = %v, want one GL_CREATE_LIGHT", batch)
	}
	comp.Receive(batch)
	light := comp.Element("body/0").Light
	if light == nil {
		t.Fatal("no light on the render side")
	}
	if light.Color != [3]float64{1, 0.5, 0} || light.Transform[12] != 5 || light.Transform[13] != 6 {
		t.Errorf("light = %+v", light)
	}

	l.SetColor(0, 1, 0)
	got := e.Step(16)
	want := []any{command.With, "body/0", command.GLLightColor, 0.0, 1.0, 0.0}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("color change = %v, want %v", got, want)
	}

	n.SetPosition(9, 9, 0)
	got = e.Step(32)
	if len(got) != 2+17 || got[2] != command.GLLightPosition || got[2+13] != 9.0 {
		t.Errorf("position change = %v", got)
	}

	n.RemoveFromParent()
	got = e.Step(48)
	want = []any{command.With, "body/0", command.Dismount}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("dismount = %v, want %v", got, want)
	}
}

func TestPointLightRequiresMountedNode(t *testing.T) {
	if _, err := NewPointLight(NewNode("loose"), 1, 1, 1); !errors.Is(err, ErrDetached) {
		t.Errorf("err = %v, want ErrDetached", err)
	}
}
