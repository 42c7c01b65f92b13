package rowan

import (
	"strconv"
	"sync/atomic"

	"github.com/phanxgames/rowan/command"
)

// nodeIDCounter hands out debug identifiers. Atomic because separate engines
// may live on separate goroutines.
var nodeIDCounter atomic.Uint32

func nextNodeID() uint32 {
	return nodeIDCounter.Add(1)
}

// Node is the scene graph element. A node owns its children and the
// components attached to it; the parent pointer is a back-reference only.
//
// A node has a path only while it is mounted, i.e. reachable from a Scene
// root. The path is the parent's path followed by "/" and the node's index in
// the parent's child slice.
type Node struct {
	// Identity
	ID   uint32
	Name string

	// Hierarchy
	parent   *Node
	index    int
	children []*Node // removed children leave a nil hole, reused by AddChild
	path     string
	scene    *Scene
	proxy    *RenderProxy
	dispatch *Dispatch

	// Components and update scheduling
	components  []Component
	requested   []bool // id is queued in updateQueue
	deferred    []bool // id is waiting in the engine's next-tick list
	updateQueue []int
	updateSpare []int
	requesting  bool   // node is queued with the engine
	lastUpdate  uint64 // clock frame of the last update pass that ran the node

	// State
	mounted    bool
	shown      bool
	disposed   bool
	notifyAll  bool // first propagation after mount reports every value
	dirtySize  bool
	dirtyXform bool
	dirtyAlpha bool

	// Local spec
	position   Vec3
	rotation   Vec3
	scale      Vec3
	align      Vec3
	mountPoint Vec3
	origin     Vec3
	opacity    float64

	sizeMode     [3]SizeMode
	proportional Vec3
	differential Vec3
	absolute     Vec3
	renderSize   Vec3

	// Computed
	size         Vec3
	transform    Transform
	worldOpacity float64
}

// NewNode creates a detached node. It gains a path once added to a mounted
// parent.
func NewNode(name string) *Node {
	n := &Node{
		ID:           nextNodeID(),
		Name:         name,
		scale:        Vec3{1, 1, 1},
		opacity:      1,
		proportional: Vec3{1, 1, 1},
		shown:        true,
		transform:    IdentityTransform,
		worldOpacity: 1,
	}
	n.dispatch = newDispatch(n)
	return n
}

// --- Accessors ---

// Path returns the node's slash-delimited address, or "" when detached.
func (n *Node) Path() string {
	return n.path
}

// Selector is an alias of Path.
func (n *Node) Selector() string {
	return n.path
}

// Parent returns the parent node, or nil.
func (n *Node) Parent() *Node {
	return n.parent
}

// Scene returns the scene the node is mounted in, or nil.
func (n *Node) Scene() *Scene {
	return n.scene
}

// Clock returns the clock of the engine the node is mounted in, or nil.
func (n *Node) Clock() *Clock {
	if n.scene == nil {
		return nil
	}
	return n.scene.engine.clock
}

// Dispatch returns the router fronting this node.
func (n *Node) Dispatch() *Dispatch {
	return n.dispatch
}

// RenderProxy returns the node's command proxy, or nil when detached. Calls on
// a nil proxy are no-ops.
func (n *Node) RenderProxy() *RenderProxy {
	return n.proxy
}

// IsMounted reports whether the node is reachable from a scene root.
func (n *Node) IsMounted() bool {
	return n.mounted
}

// IsDisposed reports whether Dispose has been called.
func (n *Node) IsDisposed() bool {
	return n.disposed
}

// --- Tree manipulation ---

// AddChild attaches child at the lowest free index. If child already has a
// parent it is removed from that parent first. When n is mounted the child's
// subtree mounts with it.
// Panics if child is nil or an ancestor of n (cycle).
func (n *Node) AddChild(child *Node) {
	if child == nil {
		panic("rowan: cannot add nil child")
	}
	if debugEnabled() {
		debugCheckDisposed(n, "AddChild (parent)")
		debugCheckDisposed(child, "AddChild (child)")
	}
	if isAncestor(child, n) {
		panic("rowan: adding child would create a cycle")
	}
	if child.parent != nil {
		child.parent.RemoveChild(child)
	}
	index := n.freeIndex()
	child.parent = n
	child.index = index
	if index == len(n.children) {
		n.children = append(n.children, child)
	} else {
		n.children[index] = child
	}
	if n.mounted {
		child.mount()
	}
	if debugEnabled() {
		debugCheckChildCount(n)
	}
}

// NewChild creates a node, adds it as a child and returns it.
func (n *Node) NewChild(name string) *Node {
	child := NewNode(name)
	n.AddChild(child)
	return child
}

// RemoveChild detaches child and its subtree. Mounted components receive
// OnDismount while their paths are still valid; afterwards every path in the
// subtree is cleared. Panics if child's parent is not n.
func (n *Node) RemoveChild(child *Node) {
	if child == nil || child.parent != n {
		panic("rowan: child's parent is not this node")
	}
	if child.mounted {
		child.dismount()
	}
	n.children[child.index] = nil
	for len(n.children) > 0 && n.children[len(n.children)-1] == nil {
		n.children = n.children[:len(n.children)-1]
	}
	child.parent = nil
	child.index = 0
}

// RemoveFromParent detaches the node from its parent. No-op without a parent.
func (n *Node) RemoveFromParent() {
	if n.parent == nil {
		return
	}
	n.parent.RemoveChild(n)
}

// Children returns the child slice. Entries are nil where a child was removed
// and the index has not been reused. The returned slice MUST NOT be mutated.
func (n *Node) Children() []*Node {
	return n.children
}

// ChildAt returns the child at index, or nil.
func (n *Node) ChildAt(index int) *Node {
	if index < 0 || index >= len(n.children) {
		return nil
	}
	return n.children[index]
}

// NumChildren returns the number of live children.
func (n *Node) NumChildren() int {
	count := 0
	for _, c := range n.children {
		if c != nil {
			count++
		}
	}
	return count
}

func (n *Node) freeIndex() int {
	for i, c := range n.children {
		if c == nil {
			return i
		}
	}
	return len(n.children)
}

func (n *Node) mount() {
	p := n.parent
	n.scene = p.scene
	n.path = p.path + "/" + strconv.Itoa(n.index)
	n.proxy = NewRenderProxy(p.proxy, n.index)
	n.mounted = true
	n.markAllDirty()
	if debugEnabled() {
		debugCheckTreeDepth(n)
	}

	for id, c := range n.components {
		if m, ok := c.(Mounter); ok {
			m.OnMount(n, id)
		}
	}
	if n.IsVisible() {
		n.showComponents()
	}
	if len(n.updateQueue) > 0 {
		n.requestSelf()
	}
	for _, c := range n.children {
		if c != nil {
			c.mount()
		}
	}
}

func (n *Node) dismount() {
	for _, c := range n.components {
		if d, ok := c.(Dismounter); ok {
			d.OnDismount()
		}
	}
	for _, c := range n.children {
		if c != nil {
			c.dismount()
		}
	}
	n.mounted = false
	n.requesting = false
	n.scene = nil
	n.proxy = nil
	n.path = ""
}

func (n *Node) markAllDirty() {
	n.notifyAll = true
	n.dirtySize = true
	n.dirtyXform = true
	n.dirtyAlpha = true
}

// --- Disposal ---

// Dispose detaches the node and destroys its subtree. Components of mounted
// nodes receive OnDismount; afterwards all components are dropped.
func (n *Node) Dispose() {
	if n.disposed {
		return
	}
	if n.parent != nil {
		n.parent.RemoveChild(n)
	} else if n.mounted {
		n.dismount()
	}
	n.dispose()
}

func (n *Node) dispose() {
	n.disposed = true
	n.ID = 0
	for _, c := range n.children {
		if c != nil {
			c.parent = nil
			c.dispose()
		}
	}
	n.children = nil
	n.components = nil
	n.requested = nil
	n.deferred = nil
	n.updateQueue = nil
	n.updateSpare = nil
	n.dispatch.clear()
}

// --- Components ---

// AddComponent attaches c and returns its id. Ids increase monotonically and
// are never reused within a node. The node must be mounted.
func (n *Node) AddComponent(c Component) (int, error) {
	if c == nil {
		return 0, ErrNilComponent
	}
	if n.disposed {
		return 0, ErrDisposed
	}
	if !n.mounted {
		return 0, ErrDetached
	}
	id := len(n.components)
	n.components = append(n.components, c)
	n.requested = append(n.requested, false)
	n.deferred = append(n.deferred, false)

	if m, ok := c.(Mounter); ok {
		m.OnMount(n, id)
	}
	if s, ok := c.(Shower); ok && n.IsVisible() {
		s.OnShow()
	}
	return id, nil
}

// RemoveComponent detaches c, calling OnDismount if the node is mounted.
// Reports whether c was attached. The component's id is not reused.
func (n *Node) RemoveComponent(c Component) bool {
	for id, existing := range n.components {
		if existing == nil || existing != c {
			continue
		}
		if d, ok := c.(Dismounter); ok && n.mounted {
			d.OnDismount()
		}
		n.components[id] = nil
		return true
	}
	return false
}

// Component returns the component with the given id, or nil.
func (n *Node) Component(id int) Component {
	if id < 0 || id >= len(n.components) {
		return nil
	}
	return n.components[id]
}

// Components returns the component slice indexed by id. Entries are nil for
// removed components. The returned slice MUST NOT be mutated.
func (n *Node) Components() []Component {
	return n.components
}

// --- Update scheduling ---

// RequestUpdate queues component id for the engine's next update pass.
// Repeated requests before the component runs collapse into one.
//
// During an update pass, a request for a node that has already run this tick
// (including the node currently updating) is served on the following tick. A
// request for a node still waiting in the pass joins that node's run in the
// current tick.
func (n *Node) RequestUpdate(id int) {
	if id < 0 || id >= len(n.requested) || n.requested[id] {
		return
	}
	n.requested[id] = true
	n.updateQueue = append(n.updateQueue, id)
	n.requestSelf()
}

// RequestUpdateOnNextTick queues component id for the update pass of the next
// tick, even if called before the current tick's pass. Used by components
// whose transition is still running.
func (n *Node) RequestUpdateOnNextTick(id int) {
	if id < 0 || id >= len(n.deferred) {
		return
	}
	if n.scene == nil {
		n.RequestUpdate(id)
		return
	}
	if n.deferred[id] {
		return
	}
	n.deferred[id] = true
	n.scene.engine.deferUpdate(n, id)
}

// IsRequestingUpdate reports whether component id is queued.
func (n *Node) IsRequestingUpdate(id int) bool {
	return id >= 0 && id < len(n.requested) && (n.requested[id] || n.deferred[id])
}

func (n *Node) requestSelf() {
	if n.requesting || n.scene == nil {
		return
	}
	n.requesting = true
	n.scene.engine.requestUpdate(n)
}

// update runs the components queued before this call. It stops early if a
// component disposes the node.
func (n *Node) update(time float64) int {
	n.requesting = false
	queue := n.updateQueue
	n.updateQueue = n.updateSpare[:0]
	ran := 0
	for _, id := range queue {
		if n.disposed {
			break
		}
		n.requested[id] = false
		ran++
		if u, ok := n.components[id].(Updater); ok {
			u.OnUpdate(time)
		}
	}
	if !n.disposed {
		n.updateSpare = queue[:0]
	}
	return ran
}

// --- Visibility ---

// Show makes the node visible. Components of the visible subtree receive
// OnShow.
func (n *Node) Show() {
	if n.shown {
		return
	}
	n.shown = true
	if n.mounted && n.IsVisible() {
		n.showSubtree()
	}
}

// Hide makes the node and its subtree invisible. Components that were visible
// receive OnHide.
func (n *Node) Hide() {
	if !n.shown {
		return
	}
	wasVisible := n.mounted && n.IsVisible()
	n.shown = false
	if wasVisible {
		n.hideSubtree()
	}
}

// IsShown reports the node's own visibility flag.
func (n *Node) IsShown() bool {
	return n.shown
}

// IsVisible reports whether the node and all its ancestors are shown.
func (n *Node) IsVisible() bool {
	for p := n; p != nil; p = p.parent {
		if !p.shown {
			return false
		}
	}
	return true
}

func (n *Node) showComponents() {
	for _, c := range n.components {
		if s, ok := c.(Shower); ok {
			s.OnShow()
		}
	}
}

func (n *Node) showSubtree() {
	n.showComponents()
	for _, c := range n.children {
		if c != nil && c.shown {
			c.showSubtree()
		}
	}
}

func (n *Node) hideSubtree() {
	for _, c := range n.components {
		if h, ok := c.(Hider); ok {
			h.OnHide()
		}
	}
	for _, c := range n.children {
		if c != nil && c.shown {
			c.hideSubtree()
		}
	}
}

// --- Events ---

// Receive delivers an event to the node: every Receiver component in id
// order, then the callbacks registered with RegisterGlobalEvent.
func (n *Node) Receive(event string, payload any) {
	for _, c := range n.components {
		if r, ok := c.(Receiver); ok {
			r.OnReceive(event, payload)
		}
	}
	n.dispatch.global.Trigger(event, payload)
}

// Query asks the renderer a question about this node. fn is called once with
// the renderer's answer. Returns false when the node is not mounted.
func (n *Node) Query(subject string, fn func(answer any)) bool {
	if n.scene == nil {
		return false
	}
	handle := n.scene.engine.functions.Register(fn)
	n.proxy.Receive(command.Query, subject, float64(handle))
	return true
}

// --- Helpers ---

// isAncestor reports whether candidate is node or one of its ancestors.
func isAncestor(candidate, node *Node) bool {
	for p := node; p != nil; p = p.parent {
		if p == candidate {
			return true
		}
	}
	return false
}
