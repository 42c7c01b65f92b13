package rowan

import (
	"strconv"
	"strings"
)

// Change notification keys in Dispatch.changes.
const (
	changeTransform = "transform"
	changeSize      = "size"
	changeOpacity   = "opacity"
)

// Dispatch is the router fronting one Node (its context). It broadcasts
// events breadth-first through the context's subtree, bubbles UI events from
// a path up to the context, and fans out the context's transform, size and
// opacity changes to registered callbacks.
//
// Dispatch is single-goroutine. Its traversal queue is reused across calls; a
// receiver that dispatches again on the same Dispatch gets a private queue
// for the nested sweep.
type Dispatch struct {
	context  *Node
	queue    []*Node
	busy     bool
	global   CallbackStore
	targeted CallbackStore
	changes  CallbackStore
}

func newDispatch(n *Node) *Dispatch {
	return &Dispatch{context: n}
}

// Context returns the node this Dispatch fronts.
func (d *Dispatch) Context() *Node {
	return d.context
}

// LookupNode resolves a path at or below the context. Returns nil if the path
// does not start with the context's path, if a segment is not a child index,
// or if a child is missing. O(depth).
func (d *Dispatch) LookupNode(path string) *Node {
	ctx := d.context
	if ctx.path == "" || !strings.HasPrefix(path, ctx.path) {
		return nil
	}
	rest := path[len(ctx.path):]
	if rest == "" {
		return ctx
	}
	if rest[0] != '/' {
		return nil
	}
	n := ctx
	for _, seg := range strings.Split(rest[1:], "/") {
		i, err := strconv.Atoi(seg)
		if err != nil || strconv.Itoa(i) != seg {
			return nil
		}
		if n = n.ChildAt(i); n == nil {
			return nil
		}
	}
	return n
}

// Dispatch delivers event to the context and every descendant in
// breadth-first order. A receiver that panics is logged and the sweep
// continues with the next node.
func (d *Dispatch) Dispatch(event string, payload any) {
	var queue []*Node
	owned := !d.busy
	if owned {
		d.busy = true
		queue = d.queue[:0]
	} else {
		Logger().Debug().
			Str("path", d.context.path).
			Str("event", event).
			Msg("re-entrant dispatch, using private queue")
	}

	queue = append(queue, d.context)
	for i := 0; i < len(queue); i++ {
		n := queue[i]
		safeReceive(n, event, payload)
		for _, c := range n.children {
			if c != nil {
				queue = append(queue, c)
			}
		}
	}

	if owned {
		clear(queue)
		d.queue = queue[:0]
		d.busy = false
	}
}

// DispatchUIEvent resolves path and delivers event to the resolved node's
// targeted callbacks, then to the resolved node and each ancestor up to and
// including the context. No-op if the path does not resolve.
func (d *Dispatch) DispatchUIEvent(path, event string, payload any) {
	target := d.LookupNode(path)
	if target == nil {
		return
	}
	safeTargeted(target, event, payload)
	for n := target; n != nil; n = n.parent {
		safeReceive(n, event, payload)
		if n == d.context {
			break
		}
	}
}

func safeReceive(n *Node, event string, payload any) {
	defer recoverReceiver(n, event)
	n.Receive(event, payload)
}

func safeTargeted(n *Node, event string, payload any) {
	defer recoverReceiver(n, event)
	n.dispatch.targeted.Trigger(event, payload)
}

func recoverReceiver(n *Node, event string) {
	if r := recover(); r != nil {
		Logger().Error().
			Str("path", n.path).
			Str("event", event).
			Interface("panic", r).
			Msg("receiver failed")
	}
}

// --- Interest registration ---

// RegisterGlobalEvent calls fn whenever event is dispatched to the context.
func (d *Dispatch) RegisterGlobalEvent(event string, fn func(payload any)) CallbackHandle {
	return d.global.On(event, fn)
}

// RegisterGlobalMethod calls recv.ReceiveMethod(method, payload) whenever
// event is dispatched to the context.
func (d *Dispatch) RegisterGlobalMethod(event string, recv MethodReceiver, method string) CallbackHandle {
	return d.global.OnMethod(event, recv, method)
}

// DeregisterGlobalEvent removes a registration made with RegisterGlobalEvent
// or RegisterGlobalMethod.
func (d *Dispatch) DeregisterGlobalEvent(h CallbackHandle) {
	d.global.Off(h)
}

// DeregisterGlobalMethod removes every (recv, method) registration for event.
func (d *Dispatch) DeregisterGlobalMethod(event string, recv MethodReceiver, method string) {
	d.global.OffMethod(event, recv, method)
}

// RegisterTargetedEvent calls fn when a UI event is addressed directly to the
// context's path.
func (d *Dispatch) RegisterTargetedEvent(event string, fn func(payload any)) CallbackHandle {
	return d.targeted.On(event, fn)
}

// RegisterTargetedMethod is the receiver/method form of RegisterTargetedEvent.
func (d *Dispatch) RegisterTargetedMethod(event string, recv MethodReceiver, method string) CallbackHandle {
	return d.targeted.OnMethod(event, recv, method)
}

// DeregisterTargetedEvent removes a targeted registration.
func (d *Dispatch) DeregisterTargetedEvent(h CallbackHandle) {
	d.targeted.Off(h)
}

// DeregisterTargetedMethod removes every targeted (recv, method) registration
// for event.
func (d *Dispatch) DeregisterTargetedMethod(event string, recv MethodReceiver, method string) {
	d.targeted.OffMethod(event, recv, method)
}

// --- Change fan-out ---

// OnTransformChange calls fn with the new world transform whenever the
// context's transform is recomputed to a different value.
func (d *Dispatch) OnTransformChange(fn func(Transform)) CallbackHandle {
	return d.changes.On(changeTransform, func(p any) { fn(p.(Transform)) })
}

// OnSizeChange calls fn with the new size whenever it changes.
func (d *Dispatch) OnSizeChange(fn func(Vec3)) CallbackHandle {
	return d.changes.On(changeSize, func(p any) { fn(p.(Vec3)) })
}

// OnOpacityChange calls fn with the new world opacity whenever it changes.
func (d *Dispatch) OnOpacityChange(fn func(float64)) CallbackHandle {
	return d.changes.On(changeOpacity, func(p any) { fn(p.(float64)) })
}

func (d *Dispatch) clear() {
	d.queue = nil
	d.global.Clear()
	d.targeted.Clear()
	d.changes.Clear()
}
