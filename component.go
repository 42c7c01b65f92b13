package rowan

// Component is any value hosted by a Node. A component opts into the node
// lifecycle by implementing one or more of the hook interfaces below; the
// node checks for each capability when the event occurs.
type Component any

// Updater is implemented by components that run when their id was passed to
// Node.RequestUpdate.
type Updater interface {
	OnUpdate(time float64)
}

// Mounter is notified when the component's node joins a scene, and when the
// component is added to a node that is already mounted.
type Mounter interface {
	OnMount(node *Node, id int)
}

// Dismounter is notified while the node is leaving the scene. The node's path
// and render proxy are still valid during the call.
type Dismounter interface {
	OnDismount()
}

// Shower is notified when the node becomes visible.
type Shower interface {
	OnShow()
}

// Hider is notified when the node becomes hidden.
type Hider interface {
	OnHide()
}

// TransformListener is notified when the node's world transform changes.
type TransformListener interface {
	OnTransformChange(t Transform)
}

// SizeListener is notified when the node's computed size changes.
type SizeListener interface {
	OnSizeChange(size Vec3)
}

// OpacityListener is notified when the node's world opacity changes.
type OpacityListener interface {
	OnOpacityChange(opacity float64)
}

// Receiver is notified of events dispatched to the node.
type Receiver interface {
	OnReceive(event string, payload any)
}
