package renderer

import (
	"maps"
	"slices"
	"strings"

	"github.com/phanxgames/rowan/command"
)

// Resize records the surface size and returns a CONTEXT_RESIZE message for
// every scene that asked for its size.
func (c *Compositor) Resize(width, height float64) []any {
	if c.sized && width == c.width && height == c.height {
		return nil
	}
	c.width, c.height, c.sized = width, height, true
	var out []any
	for _, path := range slices.Sorted(maps.Keys(c.sizeFor)) {
		out = append(out, resizeMessage(path, width, height)...)
	}
	return out
}

// SurfaceSize returns the last size passed to Resize.
func (c *Compositor) SurfaceSize() (width, height float64) {
	return c.width, c.height
}

func resizeMessage(path string, width, height float64) []any {
	return []any{command.With, path, command.Trigger, command.EventContextResize, []any{width, height, 0.0}}
}

// Trigger builds the message for a UI event on the element at path. Returns
// nil unless the element listens for event.
func (c *Compositor) Trigger(path, event string, payload any) []any {
	e := c.elements[path]
	if e == nil {
		return nil
	}
	if _, ok := e.Listeners[event]; !ok {
		return nil
	}
	return []any{command.With, path, command.Trigger, event, payload}
}

// HitTest returns the path of the topmost displayed element whose rectangle
// contains the surface point (x, y). Deeper paths are above their ancestors;
// ties go to the lexicographically greater path.
func (c *Compositor) HitTest(x, y float64) (string, bool) {
	best := ""
	bestDepth := -1
	for path, e := range c.elements {
		if e.Tag == "" || !c.Visible(path) {
			continue
		}
		lx, ly, ok := inverse2D(&e.Transform, x, y)
		if !ok || lx < 0 || ly < 0 || lx >= e.Size[0] || ly >= e.Size[1] {
			continue
		}
		depth := strings.Count(path, "/")
		if depth > bestDepth || (depth == bestDepth && path > best) {
			best, bestDepth = path, depth
		}
	}
	return best, bestDepth >= 0
}

// Visible reports whether the element at path and every ancestor element are
// displayed.
func (c *Compositor) Visible(path string) bool {
	for {
		if e := c.elements[path]; e != nil && !e.Displayed() {
			return false
		}
		i := strings.LastIndexByte(path, '/')
		if i < 0 {
			return true
		}
		path = path[:i]
	}
}

// inverse2D maps a surface point into the element's local xy plane.
func inverse2D(m *[16]float64, x, y float64) (lx, ly float64, ok bool) {
	a, b, cc, d := m[0], m[1], m[4], m[5]
	det := a*d - b*cc
	if det > -1e-12 && det < 1e-12 {
		return 0, 0, false
	}
	x -= m[12]
	y -= m[13]
	return (d*x - cc*y) / det, (-b*x + a*y) / det, true
}
