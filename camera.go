package rowan

import "github.com/phanxgames/rowan/command"

// Projection selects how a Camera maps the scene onto the surface.
type Projection uint8

const (
	ProjectionOrthographic Projection = iota
	ProjectionPinhole                 // perspective with a focal depth
	ProjectionFrustum                 // perspective with near and far planes
)

// Camera controls the projection used for the scene below its node and
// reports the inverse of its node's world transform as the view transform.
type Camera struct {
	node *Node
	id   int

	projection Projection
	focalDepth float64
	near, far  float64
	view       Transform

	projDirty bool
	viewDirty bool
}

// NewCamera attaches an orthographic Camera to a mounted node.
func NewCamera(node *Node) (*Camera, error) {
	c := &Camera{projDirty: true, viewDirty: true, view: IdentityTransform}
	if node != nil {
		c.view = node.Transform().Invert()
	}
	c.node = node
	id, err := attach(node, c)
	if err != nil {
		return nil, err
	}
	c.id = id
	return c, nil
}

// ID returns the component id on the node.
func (c *Camera) ID() int { return c.id }

// Projection returns the active projection mode.
func (c *Camera) Projection() Projection { return c.projection }

// SetFlat switches to an orthographic projection.
func (c *Camera) SetFlat() {
	c.setProjection(ProjectionOrthographic, 0, 0, 0)
}

// SetDepth switches to a pinhole projection with the given focal depth.
func (c *Camera) SetDepth(depth float64) {
	c.setProjection(ProjectionPinhole, depth, 0, 0)
}

// SetFrustum switches to a frustum projection.
func (c *Camera) SetFrustum(near, far float64) {
	c.setProjection(ProjectionFrustum, 0, near, far)
}

func (c *Camera) setProjection(p Projection, depth, near, far float64) {
	c.projection = p
	c.focalDepth = depth
	c.near = near
	c.far = far
	c.projDirty = true
	c.node.RequestUpdate(c.id)
}

// ViewTransform returns the inverse of the node's world transform.
func (c *Camera) ViewTransform() Transform { return c.view }

// OnTransformChange sends the new view transform.
func (c *Camera) OnTransformChange(t Transform) {
	c.view = t.Invert()
	c.viewDirty = false
	proxy := c.node.RenderProxy()
	proxy.Receive(transformTokens(command.ChangeViewTransform, &c.view)...)
	proxy.Send()
}

// OnMount sends everything again once the node joins a scene.
func (c *Camera) OnMount(n *Node, id int) {
	c.id = id
	c.projDirty = true
	c.viewDirty = true
	n.RequestUpdate(id)
}

// OnUpdate emits pending projection and view changes.
func (c *Camera) OnUpdate(float64) {
	proxy := c.node.RenderProxy()
	if c.projDirty {
		c.projDirty = false
		switch c.projection {
		case ProjectionPinhole:
			proxy.Receive(command.PinholeProjection, c.focalDepth)
		case ProjectionFrustum:
			proxy.Receive(command.FrustumProjection, c.near, c.far)
		default:
			proxy.Receive(command.OrthographicProjection)
		}
	}
	if c.viewDirty {
		c.viewDirty = false
		proxy.Receive(transformTokens(command.ChangeViewTransform, &c.view)...)
	}
	proxy.Send()
}

// transformTokens returns op followed by the 16 cells of t.
func transformTokens(op string, t *Transform) []any {
	tokens := make([]any, 0, 17)
	tokens = append(tokens, op)
	for _, v := range t {
		tokens = append(tokens, v)
	}
	return tokens
}
