package rowan

// attach registers c on node and returns its id. Shared by the built-in
// component constructors.
func attach(node *Node, c Component) (int, error) {
	if node == nil {
		return 0, ErrNilNode
	}
	return node.AddComponent(c)
}

// PositionState is the shared core of the transform components: three
// tweenable channels plus the update step that writes them back to the node.
// Each variant embeds it and supplies only the write-back.
type PositionState struct {
	node  *Node
	id    int
	spec  *Spec[float64]
	axes  [3]*Transitionable
	apply func(n *Node, x, y, z float64)
}

func (s *PositionState) init(node *Node, owner Component, initial Vec3, apply func(n *Node, x, y, z float64)) error {
	if node == nil {
		return ErrNilNode
	}
	clock := node.Clock()
	if clock == nil {
		return ErrDetached
	}
	s.node = node
	s.apply = apply
	s.spec = NewSpec[float64]()
	for i, name := range [3]string{"x", "y", "z"} {
		ch, err := s.spec.Open(name, "", initial[i])
		if err != nil {
			return err
		}
		s.axes[i] = NewTransitionable(clock, ch)
	}
	id, err := attach(node, owner)
	if err != nil {
		return err
	}
	s.id = id
	return nil
}

// ID returns the component id on the node.
func (s *PositionState) ID() int { return s.id }

// Node returns the owning node.
func (s *PositionState) Node() *Node { return s.node }

// Get returns the current values.
func (s *PositionState) Get() Vec3 {
	return Vec3{s.axes[0].Get(), s.axes[1].Get(), s.axes[2].Get()}
}

// X returns the current x value.
func (s *PositionState) X() float64 { return s.axes[0].Get() }

// Y returns the current y value.
func (s *PositionState) Y() float64 { return s.axes[1].Get() }

// Z returns the current z value.
func (s *PositionState) Z() float64 { return s.axes[2].Get() }

// Set transitions all three axes. done, if non-nil, runs once every axis has
// arrived.
func (s *PositionState) Set(x, y, z float64, tr Transition, done func()) {
	remaining := 3
	arrive := func() {
		remaining--
		if remaining == 0 && done != nil {
			done()
		}
	}
	s.axes[0].Set(x, tr, arrive)
	s.axes[1].Set(y, tr, arrive)
	s.axes[2].Set(z, tr, arrive)
	s.node.RequestUpdate(s.id)
}

// SetX transitions the x axis only.
func (s *PositionState) SetX(v float64, tr Transition, done func()) { s.setAxis(0, v, tr, done) }

// SetY transitions the y axis only.
func (s *PositionState) SetY(v float64, tr Transition, done func()) { s.setAxis(1, v, tr, done) }

// SetZ transitions the z axis only.
func (s *PositionState) SetZ(v float64, tr Transition, done func()) { s.setAxis(2, v, tr, done) }

func (s *PositionState) setAxis(i int, v float64, tr Transition, done func()) {
	s.axes[i].Set(v, tr, done)
	s.node.RequestUpdate(s.id)
}

// IsActive reports whether any axis is transitioning.
func (s *PositionState) IsActive() bool {
	return s.axes[0].IsActive() || s.axes[1].IsActive() || s.axes[2].IsActive()
}

// Halt stops every axis at its current value.
func (s *PositionState) Halt() {
	for _, a := range s.axes {
		a.Halt()
	}
}

// OnUpdate samples the transitions and writes changed values to the node.
func (s *PositionState) OnUpdate(float64) {
	s.checkUpdate()
}

// checkUpdate samples every axis, applies the result if a channel changed and
// re-arms for the next tick while a transition is running.
func (s *PositionState) checkUpdate() {
	for _, a := range s.axes {
		a.Update()
	}
	if s.spec.Dirty() {
		s.spec.Flush(func(Change[float64]) {})
		v := s.Get()
		s.apply(s.node, v[0], v[1], v[2])
	}
	if s.IsActive() {
		s.node.RequestUpdateOnNextTick(s.id)
	}
}

// Position drives the node's position.
type Position struct{ PositionState }

// NewPosition attaches a Position component to a mounted node.
func NewPosition(node *Node) (*Position, error) {
	p := &Position{}
	var initial Vec3
	if node != nil {
		initial = node.Position()
	}
	if err := p.init(node, p, initial, (*Node).SetPosition); err != nil {
		return nil, err
	}
	return p, nil
}

// Origin drives the node's rotation and scale pivot.
type Origin struct{ PositionState }

// NewOrigin attaches an Origin component to a mounted node.
func NewOrigin(node *Node) (*Origin, error) {
	o := &Origin{}
	var initial Vec3
	if node != nil {
		initial = node.Origin()
	}
	if err := o.init(node, o, initial, (*Node).SetOrigin); err != nil {
		return nil, err
	}
	return o, nil
}

// MountPoint drives the node's mount point.
type MountPoint struct{ PositionState }

// NewMountPoint attaches a MountPoint component to a mounted node.
func NewMountPoint(node *Node) (*MountPoint, error) {
	m := &MountPoint{}
	var initial Vec3
	if node != nil {
		initial = node.MountPoint()
	}
	if err := m.init(node, m, initial, (*Node).SetMountPoint); err != nil {
		return nil, err
	}
	return m, nil
}

// Align drives the node's align anchor.
type Align struct{ PositionState }

// NewAlign attaches an Align component to a mounted node.
func NewAlign(node *Node) (*Align, error) {
	a := &Align{}
	var initial Vec3
	if node != nil {
		initial = node.Align()
	}
	if err := a.init(node, a, initial, (*Node).SetAlign); err != nil {
		return nil, err
	}
	return a, nil
}

// Rotation drives the node's Euler angles.
type Rotation struct{ PositionState }

// NewRotation attaches a Rotation component to a mounted node.
func NewRotation(node *Node) (*Rotation, error) {
	r := &Rotation{}
	var initial Vec3
	if node != nil {
		initial = node.Rotation()
	}
	if err := r.init(node, r, initial, (*Node).SetRotation); err != nil {
		return nil, err
	}
	return r, nil
}

// Scale drives the node's scale.
type Scale struct{ PositionState }

// NewScale attaches a Scale component to a mounted node.
func NewScale(node *Node) (*Scale, error) {
	s := &Scale{}
	initial := Vec3{1, 1, 1}
	if node != nil {
		initial = node.Scale()
	}
	if err := s.init(node, s, initial, (*Node).SetScale); err != nil {
		return nil, err
	}
	return s, nil
}
