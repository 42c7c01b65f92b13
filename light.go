package rowan

import "github.com/phanxgames/rowan/command"

// PointLight places a light at its node's world position.
type PointLight struct {
	node       *Node
	id         int
	color      [3]float64
	transform  Transform
	created    bool
	colorDirty bool
}

// NewPointLight attaches a light with an RGB color (0-1 per channel) to a
// mounted node.
func NewPointLight(node *Node, r, g, b float64) (*PointLight, error) {
	l := &PointLight{color: [3]float64{r, g, b}, transform: IdentityTransform}
	if node != nil {
		l.transform = node.Transform()
	}
	l.node = node
	if _, err := attach(node, l); err != nil {
		return nil, err
	}
	return l, nil
}

// ID returns the component id on the node.
func (l *PointLight) ID() int { return l.id }

// Color returns the light color.
func (l *PointLight) Color() [3]float64 { return l.color }

// SetColor changes the light color.
func (l *PointLight) SetColor(r, g, b float64) {
	l.color = [3]float64{r, g, b}
	l.colorDirty = true
	l.node.RequestUpdate(l.id)
}

// OnMount creates the light on the renderer at the next update.
func (l *PointLight) OnMount(n *Node, id int) {
	l.id = id
	l.created = false
	n.RequestUpdate(id)
}

// OnDismount removes the light from the renderer.
func (l *PointLight) OnDismount() {
	if !l.created {
		return
	}
	l.created = false
	proxy := l.node.RenderProxy()
	proxy.Receive(command.Dismount)
	proxy.Send()
}

// OnTransformChange sends the new light position.
func (l *PointLight) OnTransformChange(t Transform) {
	l.transform = t
	if !l.created {
		return
	}
	proxy := l.node.RenderProxy()
	proxy.Receive(transformTokens(command.GLLightPosition, &t)...)
	proxy.Send()
}

// OnUpdate creates the light or sends a pending color change.
func (l *PointLight) OnUpdate(float64) {
	proxy := l.node.RenderProxy()
	if !l.created {
		l.created = true
		proxy.Receive(command.GLCreateLight)
		proxy.Receive(command.GLLightColor, l.color[0], l.color[1], l.color[2])
		proxy.Receive(transformTokens(command.GLLightPosition, &l.transform)...)
		l.colorDirty = false
	} else if l.colorDirty {
		l.colorDirty = false
		proxy.Receive(command.GLLightColor, l.color[0], l.color[1], l.color[2])
	}
	proxy.Send()
}
