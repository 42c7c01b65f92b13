package rowan

// Opacity drives the node's local opacity with a single tweenable channel.
type Opacity struct {
	node  *Node
	id    int
	spec  *Spec[float64]
	value *Transitionable
}

// NewOpacity attaches an Opacity component to a mounted node.
func NewOpacity(node *Node) (*Opacity, error) {
	if node == nil {
		return nil, ErrNilNode
	}
	clock := node.Clock()
	if clock == nil {
		return nil, ErrDetached
	}
	o := &Opacity{node: node, spec: NewSpec[float64]()}
	ch, err := o.spec.Open("opacity", "", node.LocalOpacity())
	if err != nil {
		return nil, err
	}
	o.value = NewTransitionable(clock, ch)
	if o.id, err = attach(node, o); err != nil {
		return nil, err
	}
	return o, nil
}

// ID returns the component id on the node.
func (o *Opacity) ID() int { return o.id }

// Get returns the current local opacity.
func (o *Opacity) Get() float64 { return o.value.Get() }

// Set transitions to alpha.
func (o *Opacity) Set(alpha float64, tr Transition, done func()) {
	o.value.Set(alpha, tr, done)
	o.node.RequestUpdate(o.id)
}

// IsActive reports whether a transition is running.
func (o *Opacity) IsActive() bool { return o.value.IsActive() }

// Halt stops the transition at the current value.
func (o *Opacity) Halt() { o.value.Halt() }

// OnUpdate samples the transition and writes the value to the node.
func (o *Opacity) OnUpdate(float64) {
	o.value.Update()
	if o.spec.Dirty() {
		o.spec.Flush(func(Change[float64]) {})
		o.node.SetOpacity(o.value.Get())
	}
	if o.value.IsActive() {
		o.node.RequestUpdateOnNextTick(o.id)
	}
}
