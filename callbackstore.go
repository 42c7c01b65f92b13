package rowan

// MethodReceiver is implemented by objects registered as (receiver, method
// name) pairs. The dynamic type must be comparable (normally a pointer) so the
// pair can be removed again.
type MethodReceiver interface {
	ReceiveMethod(method string, payload any)
}

type listenerKind uint8

const (
	listenerFunc listenerKind = iota
	listenerMethod
)

// listener is one registered interest: either a plain function or a
// receiver/method pair.
type listener struct {
	kind   listenerKind
	id     uint32
	fn     func(payload any)
	recv   MethodReceiver
	method string
}

func (l *listener) call(payload any) {
	switch l.kind {
	case listenerFunc:
		l.fn(payload)
	case listenerMethod:
		l.recv.ReceiveMethod(l.method, payload)
	}
}

// CallbackStore maps event names to ordered listener lists. Listeners fire in
// registration order. The zero value is ready to use.
type CallbackStore struct {
	events map[string][]listener
	nextID uint32
}

// CallbackHandle identifies one registration in a CallbackStore.
type CallbackHandle struct {
	store *CallbackStore
	event string
	id    uint32
}

// Remove unregisters the callback. No-op on the zero handle or if the callback
// was already removed.
func (h CallbackHandle) Remove() {
	if h.store == nil {
		return
	}
	h.store.remove(h.event, func(l *listener) bool { return l.id == h.id })
}

// Event returns the event name the handle was registered for.
func (h CallbackHandle) Event() string {
	return h.event
}

// On registers fn for event.
func (s *CallbackStore) On(event string, fn func(payload any)) CallbackHandle {
	return s.add(event, listener{kind: listenerFunc, fn: fn})
}

// OnMethod registers recv.ReceiveMethod(method, payload) for event.
func (s *CallbackStore) OnMethod(event string, recv MethodReceiver, method string) CallbackHandle {
	return s.add(event, listener{kind: listenerMethod, recv: recv, method: method})
}

// Off removes the registration named by h.
func (s *CallbackStore) Off(h CallbackHandle) {
	if h.store != s {
		return
	}
	h.Remove()
}

// OffMethod removes every registration of (recv, method) for event.
func (s *CallbackStore) OffMethod(event string, recv MethodReceiver, method string) {
	s.remove(event, func(l *listener) bool {
		return l.kind == listenerMethod && l.recv == recv && l.method == method
	})
}

// Trigger invokes every listener of event with payload, in registration
// order. Listeners added or removed during the call take effect on the next
// Trigger.
func (s *CallbackStore) Trigger(event string, payload any) {
	ls := s.events[event]
	for i := range ls {
		ls[i].call(payload)
	}
}

// Len returns the number of listeners registered for event.
func (s *CallbackStore) Len(event string) int {
	return len(s.events[event])
}

// Clear drops every registration.
func (s *CallbackStore) Clear() {
	s.events = nil
}

func (s *CallbackStore) add(event string, l listener) CallbackHandle {
	if s.events == nil {
		s.events = make(map[string][]listener)
	}
	s.nextID++
	l.id = s.nextID
	s.events[event] = append(s.events[event], l)
	return CallbackHandle{store: s, event: event, id: l.id}
}

// remove rebuilds the list without matching entries. A fresh backing array is
// used so a Trigger already iterating the old list is unaffected.
func (s *CallbackStore) remove(event string, match func(*listener) bool) {
	ls := s.events[event]
	if len(ls) == 0 {
		return
	}
	kept := make([]listener, 0, len(ls))
	for i := range ls {
		if !match(&ls[i]) {
			kept = append(kept, ls[i])
		}
	}
	if len(kept) == len(ls) {
		return
	}
	if len(kept) == 0 {
		delete(s.events, event)
		return
	}
	s.events[event] = kept
}
