package rowan

// TickHandle identifies a pending tick request.
type TickHandle uint64

// Host is the surface the logic side runs against. It replaces any ambient
// window or document: frame callbacks, outbound batches and inbound control
// messages all go through it.
type Host interface {
	// RequestTick schedules fn to run once on the next frame with the frame
	// timestamp in milliseconds.
	RequestTick(fn func(timestamp float64)) TickHandle
	// CancelTick cancels a pending request. No-op for unknown handles.
	CancelTick(h TickHandle)
	// PostToHost hands a drained command batch to the renderer side.
	PostToHost(batch []any)
	// OnHostMessage installs the handler for control messages from the
	// renderer side. A later call replaces the handler.
	OnHostMessage(fn func(msg []any))
}

// HeadlessHost is a Host with no display, driven by explicit Advance calls.
// It records every posted batch.
type HeadlessHost struct {
	pending map[TickHandle]func(float64)
	order   []TickHandle
	next    TickHandle
	posted  [][]any
	handler func([]any)
}

// NewHeadlessHost creates a HeadlessHost.
func NewHeadlessHost() *HeadlessHost {
	return &HeadlessHost{pending: make(map[TickHandle]func(float64))}
}

// RequestTick queues fn for the next Advance.
func (h *HeadlessHost) RequestTick(fn func(float64)) TickHandle {
	h.next++
	h.pending[h.next] = fn
	h.order = append(h.order, h.next)
	return h.next
}

// CancelTick drops a queued request.
func (h *HeadlessHost) CancelTick(handle TickHandle) {
	delete(h.pending, handle)
}

// PostToHost records batch.
func (h *HeadlessHost) PostToHost(batch []any) {
	h.posted = append(h.posted, batch)
}

// OnHostMessage installs the control handler.
func (h *HeadlessHost) OnHostMessage(fn func([]any)) {
	h.handler = fn
}

// Advance runs every tick requested before the call, in request order, with
// timestamp. Ticks requested by those callbacks wait for the next Advance.
func (h *HeadlessHost) Advance(timestamp float64) {
	order := h.order
	h.order = nil
	for _, handle := range order {
		fn, ok := h.pending[handle]
		if !ok {
			continue
		}
		delete(h.pending, handle)
		fn(timestamp)
	}
}

// Deliver sends a control message to the installed handler.
func (h *HeadlessHost) Deliver(msg []any) {
	if h.handler != nil {
		h.handler(msg)
	}
}

// Posted returns every batch posted so far.
func (h *HeadlessHost) Posted() [][]any {
	return h.posted
}

// TakePosted returns the posted batches and forgets them.
func (h *HeadlessHost) TakePosted() [][]any {
	out := h.posted
	h.posted = nil
	return out
}

// PendingTicks returns the number of queued tick requests.
func (h *HeadlessHost) PendingTicks() int {
	return len(h.pending)
}
