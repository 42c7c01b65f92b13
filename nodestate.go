package rowan

// --- Transform spec ---

// SetPosition sets the translation relative to the aligned anchor.
func (n *Node) SetPosition(x, y, z float64) {
	n.setVec(&n.position, Vec3{x, y, z}, &n.dirtyXform)
}

// Position returns the local translation.
func (n *Node) Position() Vec3 { return n.position }

// SetRotation sets Euler angles in radians, applied x then y then z.
func (n *Node) SetRotation(x, y, z float64) {
	n.setVec(&n.rotation, Vec3{x, y, z}, &n.dirtyXform)
}

// Rotation returns the Euler angles in radians.
func (n *Node) Rotation() Vec3 { return n.rotation }

// SetScale sets the scale factors.
func (n *Node) SetScale(x, y, z float64) {
	n.setVec(&n.scale, Vec3{x, y, z}, &n.dirtyXform)
}

// Scale returns the scale factors.
func (n *Node) Scale() Vec3 { return n.scale }

// SetAlign sets the anchor point in the parent as a fraction of parent size.
func (n *Node) SetAlign(x, y, z float64) {
	n.setVec(&n.align, Vec3{x, y, z}, &n.dirtyXform)
}

// Align returns the anchor point in the parent.
func (n *Node) Align() Vec3 { return n.align }

// SetMountPoint sets the point of the node placed on the align anchor, as a
// fraction of the node's own size.
func (n *Node) SetMountPoint(x, y, z float64) {
	n.setVec(&n.mountPoint, Vec3{x, y, z}, &n.dirtyXform)
}

// MountPoint returns the mount point.
func (n *Node) MountPoint() Vec3 { return n.mountPoint }

// SetOrigin sets the pivot of rotation and scale as a fraction of the node's
// own size.
func (n *Node) SetOrigin(x, y, z float64) {
	n.setVec(&n.origin, Vec3{x, y, z}, &n.dirtyXform)
}

// Origin returns the pivot.
func (n *Node) Origin() Vec3 { return n.origin }

// SetOpacity sets the local opacity. The world opacity is the product of the
// local opacities from the root.
func (n *Node) SetOpacity(alpha float64) {
	if alpha == n.opacity {
		return
	}
	n.opacity = alpha
	n.dirtyAlpha = true
}

// LocalOpacity returns the opacity set on this node.
func (n *Node) LocalOpacity() float64 { return n.opacity }

// Opacity returns the world opacity computed by the last propagation.
func (n *Node) Opacity() float64 { return n.worldOpacity }

// Transform returns the world transform computed by the last propagation.
func (n *Node) Transform() Transform { return n.transform }

// --- Size spec ---

// SetSizeMode sets the size mode of each axis.
func (n *Node) SetSizeMode(x, y, z SizeMode) {
	modes := [3]SizeMode{x, y, z}
	if modes == n.sizeMode {
		return
	}
	n.sizeMode = modes
	n.dirtySize = true
}

// SizeMode returns the size mode of each axis.
func (n *Node) SizeMode() [3]SizeMode { return n.sizeMode }

// SetAbsoluteSize sets the size used by axes in SizeAbsolute mode.
func (n *Node) SetAbsoluteSize(x, y, z float64) {
	n.setVec(&n.absolute, Vec3{x, y, z}, &n.dirtySize)
}

// AbsoluteSize returns the absolute size.
func (n *Node) AbsoluteSize() Vec3 { return n.absolute }

// SetProportionalSize sets the fraction of the parent size used by axes in
// SizeRelative mode. Defaults to 1 on every axis.
func (n *Node) SetProportionalSize(x, y, z float64) {
	n.setVec(&n.proportional, Vec3{x, y, z}, &n.dirtySize)
}

// ProportionalSize returns the proportional size.
func (n *Node) ProportionalSize() Vec3 { return n.proportional }

// SetDifferentialSize sets the offset added to the proportional size.
func (n *Node) SetDifferentialSize(x, y, z float64) {
	n.setVec(&n.differential, Vec3{x, y, z}, &n.dirtySize)
}

// DifferentialSize returns the differential size.
func (n *Node) DifferentialSize() Vec3 { return n.differential }

// SetRenderSize records the size the renderer measured for the node. Used by
// axes in SizeRender mode.
func (n *Node) SetRenderSize(x, y, z float64) {
	n.setVec(&n.renderSize, Vec3{x, y, z}, &n.dirtySize)
}

// RenderSize returns the renderer-measured size.
func (n *Node) RenderSize() Vec3 { return n.renderSize }

// Size returns the size computed by the last propagation.
func (n *Node) Size() Vec3 { return n.size }

func (n *Node) setVec(dst *Vec3, v Vec3, dirty *bool) {
	if *dst == v {
		return
	}
	*dst = v
	*dirty = true
}

// computeSize resolves each axis according to its size mode.
func (n *Node) computeSize(parentSize Vec3) Vec3 {
	var out Vec3
	for i := 0; i < 3; i++ {
		switch n.sizeMode[i] {
		case SizeAbsolute:
			out[i] = n.absolute[i]
		case SizeRender:
			out[i] = n.renderSize[i]
		default:
			out[i] = parentSize[i]*n.proportional[i] + n.differential[i]
		}
	}
	return out
}

// --- Propagation ---

// propagate recomputes size, world transform and world opacity top-down.
// Listeners are told only about values that actually changed, except on the
// first pass after mounting, which reports everything.
func (n *Node) propagate(parentSize Vec3, parentTransform *Transform, parentOpacity float64, sizeDirty, xformDirty, alphaDirty bool) {
	force := n.notifyAll
	n.notifyAll = false

	sizeChanged := force
	if n.dirtySize || sizeDirty {
		n.dirtySize = false
		if s := n.computeSize(parentSize); s != n.size {
			n.size = s
			sizeChanged = true
		}
	}

	xformChanged := force
	if n.dirtyXform || xformDirty || sizeDirty || sizeChanged {
		n.dirtyXform = false
		local := computeLocalTransform(n, parentSize)
		if world := multiply(parentTransform, &local); world != n.transform {
			n.transform = world
			xformChanged = true
		}
	}

	alphaChanged := force
	if n.dirtyAlpha || alphaDirty {
		n.dirtyAlpha = false
		if o := parentOpacity * n.opacity; o != n.worldOpacity {
			n.worldOpacity = o
			alphaChanged = true
		}
	}

	if sizeChanged {
		n.notifySize()
	}
	if xformChanged {
		n.notifyTransform()
	}
	if alphaChanged {
		n.notifyOpacity()
	}

	for _, c := range n.children {
		if c != nil {
			c.propagate(n.size, &n.transform, n.worldOpacity, sizeChanged, xformChanged, alphaChanged)
		}
	}
}

func (n *Node) notifySize() {
	for _, c := range n.components {
		if l, ok := c.(SizeListener); ok {
			l.OnSizeChange(n.size)
		}
	}
	n.dispatch.changes.Trigger(changeSize, n.size)
}

func (n *Node) notifyTransform() {
	for _, c := range n.components {
		if l, ok := c.(TransformListener); ok {
			l.OnTransformChange(n.transform)
		}
	}
	n.dispatch.changes.Trigger(changeTransform, n.transform)
}

func (n *Node) notifyOpacity() {
	for _, c := range n.components {
		if l, ok := c.(OpacityListener); ok {
			l.OnOpacityChange(n.worldOpacity)
		}
	}
	n.dispatch.changes.Trigger(changeOpacity, n.worldOpacity)
}
