// Package renderer is the render-side half of rowan. A [Compositor] replays
// command batches into a path-keyed model of elements, lights and cameras
// without any access to the scene graph that produced them. Hosts draw from
// that model; the Compositor itself performs no drawing.
package renderer

import (
	"maps"
	"slices"

	"github.com/rs/zerolog"
)

// Element is the renderer-side state at one path.
type Element struct {
	Path       string
	Tag        string // empty until INIT_DOM
	Transform  [16]float64
	Size       [3]float64
	Properties map[string]string
	Attributes map[string]string
	Classes    []string
	Listeners  map[string]Listener
	Light      *Light
	Projection *Projection
	View       *[16]float64
}

// Listener is a renderer-side event listener registration.
type Listener struct {
	Methods    []string
	Properties []string
}

// Light is a point light.
type Light struct {
	Color     [3]float64
	Transform [16]float64
}

// Projection is a camera projection.
type Projection struct {
	Mode  string // the projection opcode
	Depth float64
	Near  float64
	Far   float64
}

var identity = [16]float64{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}

func newElement(path string) *Element {
	return &Element{
		Path:       path,
		Transform:  identity,
		Properties: make(map[string]string),
		Attributes: make(map[string]string),
		Listeners:  make(map[string]Listener),
	}
}

// Displayed reports whether the element is shown.
func (e *Element) Displayed() bool {
	return e.Properties["display"] != "none"
}

// Opacity returns the element's opacity property, or 1.
func (e *Element) Opacity() float64 {
	if v, ok := e.Properties["opacity"]; ok {
		if f, ok := parseFloat(v); ok {
			return f
		}
	}
	return 1
}

// Clone returns a deep copy.
func (e *Element) Clone() Element {
	out := *e
	out.Properties = maps.Clone(e.Properties)
	out.Attributes = maps.Clone(e.Attributes)
	out.Classes = slices.Clone(e.Classes)
	out.Listeners = make(map[string]Listener, len(e.Listeners))
	for k, l := range e.Listeners {
		out.Listeners[k] = Listener{Methods: slices.Clone(l.Methods), Properties: slices.Clone(l.Properties)}
	}
	if e.Light != nil {
		l := *e.Light
		out.Light = &l
	}
	if e.Projection != nil {
		p := *e.Projection
		out.Projection = &p
	}
	if e.View != nil {
		v := *e.View
		out.View = &v
	}
	return out
}

// MeasureFunc reports the natural size of an element for RENDER_SIZE queries.
type MeasureFunc func(e *Element) [3]float64

// DefaultMeasure sizes text content with a fixed 8x16 cell per character and
// falls back to the element's current size.
func DefaultMeasure(e *Element) [3]float64 {
	if text, ok := e.Properties["content"]; ok && text != "" {
		return [3]float64{float64(8 * len([]rune(text))), 16, 0}
	}
	return e.Size
}

// Compositor consumes command batches.
type Compositor struct {
	elements map[string]*Element
	sizeFor  map[string]bool
	width    float64
	height   float64
	sized    bool
	measure  MeasureFunc
	log      zerolog.Logger
}

// New creates an empty Compositor with a silent logger.
func New() *Compositor {
	return &Compositor{
		elements: make(map[string]*Element),
		sizeFor:  make(map[string]bool),
		measure:  DefaultMeasure,
		log:      zerolog.Nop(),
	}
}

// SetLogger sets the logger used for skipped commands.
func (c *Compositor) SetLogger(l zerolog.Logger) {
	c.log = l
}

// SetMeasure replaces the RENDER_SIZE measurement. nil restores DefaultMeasure.
func (c *Compositor) SetMeasure(fn MeasureFunc) {
	if fn == nil {
		fn = DefaultMeasure
	}
	c.measure = fn
}

// Reset drops every element and size request. The surface size is kept.
func (c *Compositor) Reset() {
	clear(c.elements)
	clear(c.sizeFor)
}

// Element returns the element at path, or nil.
func (c *Compositor) Element(path string) *Element {
	return c.elements[path]
}

// Len returns the number of elements.
func (c *Compositor) Len() int {
	return len(c.elements)
}

// Paths returns every element path in sorted order.
func (c *Compositor) Paths() []string {
	return slices.Sorted(maps.Keys(c.elements))
}

// Snapshot returns a deep copy of the element model.
func (c *Compositor) Snapshot() map[string]Element {
	out := make(map[string]Element, len(c.elements))
	for p, e := range c.elements {
		out[p] = e.Clone()
	}
	return out
}

func (c *Compositor) ensure(path string) *Element {
	e := c.elements[path]
	if e == nil {
		e = newElement(path)
		c.elements[path] = e
	}
	return e
}
