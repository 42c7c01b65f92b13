package rowan

import (
	"strconv"

	"github.com/phanxgames/rowan/command"
)

// RenderProxy is one link of a chain that mirrors the node tree. Commands
// received by any proxy travel up the chain unchanged; the root proxy frames
// them with the originating path and enqueues them on the engine's
// CommandQueue.
//
// All methods are safe on a nil *RenderProxy and do nothing.
type RenderProxy struct {
	parent  *RenderProxy
	queue   *CommandQueue // root only
	segment string
	path    string
}

// NewRenderProxy creates the proxy of the child at index below parent.
func NewRenderProxy(parent *RenderProxy, index int) *RenderProxy {
	return &RenderProxy{parent: parent, segment: strconv.Itoa(index)}
}

// newRootProxy creates the proxy of a scene root.
func newRootProxy(selector string, queue *CommandQueue) *RenderProxy {
	return &RenderProxy{queue: queue, segment: selector, path: selector}
}

// RenderPath returns the concatenated segments of the chain. The chain is
// immutable after construction, so the result is memoized.
func (p *RenderProxy) RenderPath() string {
	if p == nil {
		return ""
	}
	if p.path == "" {
		p.path = p.parent.RenderPath() + "/" + p.segment
	}
	return p.path
}

// Receive forwards one command, an opcode followed by its arguments, toward
// the root.
func (p *RenderProxy) Receive(tokens ...any) {
	if p == nil || len(tokens) == 0 {
		return
	}
	path := p.RenderPath()
	root := p
	for root.parent != nil {
		root = root.parent
	}
	if root.queue != nil {
		root.queue.enqueue(path, tokens)
	}
}

// Send signals that this proxy has no more commands for the moment. The next
// command from any path is framed with a fresh WITH.
func (p *RenderProxy) Send() {
	if p == nil {
		return
	}
	root := p
	for root.parent != nil {
		root = root.parent
	}
	if root.queue != nil {
		root.queue.EndRun()
	}
}

// CommandQueue is the renderer-facing buffer. Every command is preceded by a
// WITH marker unless it continues a contiguous run for the same path.
type CommandQueue struct {
	mq      MessageQueue
	current string
	open    bool
}

func (q *CommandQueue) enqueue(path string, tokens []any) {
	if !q.open || q.current != path {
		q.mq.Enqueue(command.With, path)
		q.current = path
		q.open = true
	}
	q.mq.Enqueue(tokens...)
}

// EndRun closes the current run.
func (q *CommandQueue) EndRun() {
	q.open = false
}

// Len returns the number of buffered tokens.
func (q *CommandQueue) Len() int {
	return q.mq.Len()
}

// Drain returns the buffered batch and starts a new one. The first command of
// the next batch is always framed.
func (q *CommandQueue) Drain() []any {
	q.open = false
	q.current = ""
	return q.mq.Flush()
}
