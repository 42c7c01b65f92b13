package rowan

import (
	"slices"
	"strconv"

	"github.com/phanxgames/rowan/command"
)

// Element mirrors a renderer-side element at its node's path. It keeps the
// full element state (tag, properties, attributes, classes, listeners) so it
// can replay everything after a remount, and sends only changes otherwise.
//
// Transform, size and opacity changes are sent as soon as propagation reports
// them; everything else is sent from OnUpdate.
type Element struct {
	node *Node
	id   int
	tag  string

	properties *Spec[string]
	attributes *Spec[string]
	props      map[string]*Channel[string]
	attrs      map[string]*Channel[string]

	classes  []string
	classOps []classOp

	listeners []ListenerSpec
	sent      int // listeners[:sent] are known to the renderer
	handlers  CallbackStore

	initialized bool
	measure     bool
}

type classOp struct {
	add  bool
	name string
}

// ListenerSpec describes a renderer-side event listener. Methods are called on
// the native event before it is forwarded (for example "preventDefault");
// Properties name the fields of the native event copied into the payload.
type ListenerSpec struct {
	Event      string
	Methods    []string
	Properties []string
}

// NewElement attaches an Element with the given tag to a mounted node. An
// empty tag means "div".
func NewElement(node *Node, tag string) (*Element, error) {
	if tag == "" {
		tag = "div"
	}
	e := &Element{
		node:       node,
		tag:        tag,
		properties: NewSpec[string](),
		attributes: NewSpec[string](),
		props:      make(map[string]*Channel[string]),
		attrs:      make(map[string]*Channel[string]),
	}
	if _, err := attach(node, e); err != nil {
		return nil, err
	}
	return e, nil
}

// ID returns the component id on the node.
func (e *Element) ID() int { return e.id }

// Tag returns the element tag.
func (e *Element) Tag() string { return e.tag }

// --- Properties and attributes ---

// SetProperty sets a style property. An empty value removes it on the
// renderer side.
func (e *Element) SetProperty(name, value string) {
	setChannel(e.properties, e.props, name, command.ChangeProperty, value)
	e.node.RequestUpdate(e.id)
}

// Property returns a property value.
func (e *Element) Property(name string) (string, bool) {
	return e.properties.Lookup(name)
}

// SetAttribute sets an element attribute.
func (e *Element) SetAttribute(name, value string) {
	setChannel(e.attributes, e.attrs, name, command.ChangeAttribute, value)
	e.node.RequestUpdate(e.id)
}

// Attribute returns an attribute value.
func (e *Element) Attribute(name string) (string, bool) {
	return e.attributes.Lookup(name)
}

// SetContent sets the element's text content. Nodes sized by the renderer
// are measured again afterwards.
func (e *Element) SetContent(text string) {
	e.SetProperty("content", text)
	e.measure = true
}

func setChannel(spec *Spec[string], chans map[string]*Channel[string], name, report, value string) {
	ch, ok := chans[name]
	if !ok {
		var err error
		if ch, err = spec.Open(name, report, value); err != nil {
			return
		}
		chans[name] = ch
	}
	ch.Set(value)
}

// --- Classes ---

// AddClass adds a class. No-op if present.
func (e *Element) AddClass(name string) {
	if slices.Contains(e.classes, name) {
		return
	}
	e.classes = append(e.classes, name)
	e.classOps = append(e.classOps, classOp{add: true, name: name})
	e.node.RequestUpdate(e.id)
}

// RemoveClass removes a class. No-op if absent.
func (e *Element) RemoveClass(name string) {
	i := slices.Index(e.classes, name)
	if i < 0 {
		return
	}
	e.classes = slices.Delete(e.classes, i, i+1)
	e.classOps = append(e.classOps, classOp{name: name})
	e.node.RequestUpdate(e.id)
}

// HasClass reports whether the class is present.
func (e *Element) HasClass(name string) bool {
	return slices.Contains(e.classes, name)
}

// Classes returns the classes in insertion order. The returned slice MUST NOT
// be mutated.
func (e *Element) Classes() []string {
	return e.classes
}

// --- UI events ---

// AddUIEvent asks the renderer to listen for event on this element. Events
// arriving for the element's path are delivered to handlers added with On.
func (e *Element) AddUIEvent(spec ListenerSpec) {
	for _, l := range e.listeners {
		if l.Event == spec.Event {
			return
		}
	}
	e.listeners = append(e.listeners, spec)
	if e.node.IsMounted() {
		e.node.Dispatch().RegisterTargetedMethod(spec.Event, e, spec.Event)
	}
	e.node.RequestUpdate(e.id)
}

// On registers fn for a UI event addressed to this element, adding a plain
// renderer listener if none exists yet.
func (e *Element) On(event string, fn func(payload any)) CallbackHandle {
	e.AddUIEvent(ListenerSpec{Event: event})
	return e.handlers.On(event, fn)
}

// ReceiveMethod delivers a targeted UI event to the handlers for it.
func (e *Element) ReceiveMethod(method string, payload any) {
	e.handlers.Trigger(method, payload)
}

// --- Lifecycle ---

// OnMount schedules a full replay and routes the element's UI events to it.
func (e *Element) OnMount(n *Node, id int) {
	e.id = id
	e.initialized = false
	e.measure = true
	for _, l := range e.listeners {
		n.Dispatch().RegisterTargetedMethod(l.Event, e, l.Event)
	}
	n.RequestUpdate(id)
}

// OnDismount stops UI event delivery and removes the renderer-side element.
func (e *Element) OnDismount() {
	for _, l := range e.listeners {
		e.node.Dispatch().DeregisterTargetedMethod(l.Event, e, l.Event)
	}
	if !e.initialized {
		return
	}
	e.initialized = false
	proxy := e.node.RenderProxy()
	proxy.Receive(command.Dismount)
	proxy.Send()
}

// OnShow makes the element displayed.
func (e *Element) OnShow() {
	e.setNow("display", "block")
}

// OnHide hides the element.
func (e *Element) OnHide() {
	e.setNow("display", "none")
}

// OnOpacityChange sends the world opacity.
func (e *Element) OnOpacityChange(opacity float64) {
	e.setNow("opacity", strconv.FormatFloat(opacity, 'g', -1, 64))
}

// OnTransformChange sends the world transform.
func (e *Element) OnTransformChange(t Transform) {
	if !e.initialized {
		return
	}
	proxy := e.node.RenderProxy()
	proxy.Receive(transformTokens(command.ChangeTransform, &t)...)
	proxy.Send()
}

// OnSizeChange sends the computed size.
func (e *Element) OnSizeChange(size Vec3) {
	if !e.initialized {
		return
	}
	proxy := e.node.RenderProxy()
	proxy.Receive(command.ChangeSize, size[0], size[1], size[2])
	proxy.Send()
}

// setNow updates a property and, once the element exists on the renderer,
// sends the pending property changes right away.
func (e *Element) setNow(name, value string) {
	setChannel(e.properties, e.props, name, command.ChangeProperty, value)
	if !e.initialized {
		e.node.RequestUpdate(e.id)
		return
	}
	proxy := e.node.RenderProxy()
	e.flushSpec(proxy, e.properties)
	proxy.Send()
}

// OnUpdate replays the element after a mount, or sends pending changes.
func (e *Element) OnUpdate(float64) {
	proxy := e.node.RenderProxy()
	if !e.initialized {
		e.initialized = true
		e.replay(proxy)
	} else {
		e.flushSpec(proxy, e.properties)
		e.flushSpec(proxy, e.attributes)
		for _, op := range e.classOps {
			if op.add {
				proxy.Receive(command.AddClass, op.name)
			} else {
				proxy.Receive(command.RemoveClass, op.name)
			}
		}
		e.classOps = e.classOps[:0]
		e.sendListeners(proxy)
	}
	if e.measure {
		e.measure = false
		e.measureRenderSize()
	}
	proxy.Send()
}

// replay sends the complete element state. Properties and attributes are sent
// sorted by name so that equal state always yields an equal stream.
func (e *Element) replay(proxy *RenderProxy) {
	n := e.node
	size := n.Size()
	proxy.Receive(command.InitDOM, e.tag)
	proxy.Receive(command.ChangeSize, size[0], size[1], size[2])
	t := n.Transform()
	proxy.Receive(transformTokens(command.ChangeTransform, &t)...)

	replaySpec(proxy, e.properties, command.ChangeProperty)
	replaySpec(proxy, e.attributes, command.ChangeAttribute)
	for _, c := range e.classes {
		proxy.Receive(command.AddClass, c)
	}
	e.classOps = e.classOps[:0]
	e.sent = 0
	e.sendListeners(proxy)
}

func replaySpec(proxy *RenderProxy, spec *Spec[string], op string) {
	type pair struct{ name, value string }
	var all []pair
	spec.Each(func(name, _ string, value string) {
		all = append(all, pair{name, value})
	})
	slices.SortFunc(all, func(a, b pair) int {
		switch {
		case a.name < b.name:
			return -1
		case a.name > b.name:
			return 1
		}
		return 0
	})
	for _, p := range all {
		proxy.Receive(op, p.name, p.value)
	}
	spec.Flush(func(Change[string]) {})
}

func (e *Element) flushSpec(proxy *RenderProxy, spec *Spec[string]) {
	spec.Flush(func(c Change[string]) {
		proxy.Receive(c.Report, c.Name, c.Value)
	})
}

// sendListeners emits ADD_EVENT_LISTENER for listeners the renderer has not
// seen: the event name, the method count, the methods, the properties, then
// EVENT_END.
func (e *Element) sendListeners(proxy *RenderProxy) {
	for _, l := range e.listeners[e.sent:] {
		tokens := make([]any, 0, 4+len(l.Methods)+len(l.Properties))
		tokens = append(tokens, command.AddEventListener, l.Event, float64(len(l.Methods)))
		for _, m := range l.Methods {
			tokens = append(tokens, m)
		}
		for _, p := range l.Properties {
			tokens = append(tokens, p)
		}
		tokens = append(tokens, command.EventEnd)
		proxy.Receive(tokens...)
	}
	e.sent = len(e.listeners)
}

// measureRenderSize asks the renderer for the element's size when any axis of
// the node is sized by the renderer.
func (e *Element) measureRenderSize() {
	n := e.node
	modes := n.SizeMode()
	if modes[0] != SizeRender && modes[1] != SizeRender && modes[2] != SizeRender {
		return
	}
	n.Query(command.QueryRenderSize, func(answer any) {
		if size, ok := command.Vec3(answer); ok {
			n.SetRenderSize(size[0], size[1], size[2])
		}
	})
}
