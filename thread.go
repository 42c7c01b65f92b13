package rowan

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/phanxgames/rowan/command"
)

// Thread is the render side's view of the logic side: a message channel in
// each direction. Whether the logic runs in-process or on another goroutine
// is hidden behind it.
type Thread interface {
	// PostMessage sends a control message (FRAME, ENGINE, TRIGGER, INVOKE) to
	// the logic side.
	PostMessage(msg []any)
	// OnMessage installs the handler for command batches from the logic side.
	OnMessage(fn func(batch []any))
}

// Poller is implemented by threads whose inbound batches must be pumped on
// the render goroutine.
type Poller interface {
	Poll()
}

// SameThread connects both sides with direct calls. It is the Thread seen by
// the renderer and the Host seen by the Engine. Frames arrive as FRAME
// messages, so RequestTick never fires.
type SameThread struct {
	toLogic  func([]any)
	toRender func([]any)
}

// NewSameThread creates an in-process connection.
func NewSameThread() *SameThread {
	return &SameThread{}
}

// PostMessage calls the engine's message handler.
func (t *SameThread) PostMessage(msg []any) {
	if t.toLogic != nil {
		t.toLogic(msg)
	}
}

// OnMessage installs the render-side batch handler.
func (t *SameThread) OnMessage(fn func([]any)) {
	t.toRender = fn
}

// RequestTick is a no-op; ticks are driven by FRAME messages.
func (t *SameThread) RequestTick(func(float64)) TickHandle {
	return 0
}

// CancelTick is a no-op.
func (t *SameThread) CancelTick(TickHandle) {}

// PostToHost calls the render-side batch handler.
func (t *SameThread) PostToHost(batch []any) {
	if t.toRender != nil {
		t.toRender(batch)
	}
}

// OnHostMessage installs the engine's message handler.
func (t *SameThread) OnHostMessage(fn func([]any)) {
	t.toLogic = fn
}

// NewThread returns the connection selected by cfg.Worker. With Worker set it
// returns a *Worker whose setup runs once Run starts; otherwise setup runs
// before NewThread returns, against a *SameThread.
func NewThread(cfg Config, setup func(host Host)) Thread {
	if cfg.Worker {
		return NewWorker(setup)
	}
	t := NewSameThread()
	setup(t)
	return t
}

// Worker runs the logic side on its own goroutine. Messages cross in both
// directions JSON-encoded over buffered channels, the same bytes a process
// boundary would carry.
type Worker struct {
	toLogic  chan []byte
	toRender chan []byte
	setup    func(host Host)
	onLogic  func([]any) // worker goroutine only
	onRender func([]any) // render goroutine only
}

// workerBuffer is the channel depth in each direction.
const workerBuffer = 64

// NewWorker creates a worker. setup runs on the worker goroutine when Run
// starts and typically builds the Engine and its scenes against host.
func NewWorker(setup func(host Host)) *Worker {
	return &Worker{
		toLogic:  make(chan []byte, workerBuffer),
		toRender: make(chan []byte, workerBuffer),
		setup:    setup,
	}
}

// Run executes the logic side until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		w.setup(workerHost{w: w, ctx: ctx})
		for {
			select {
			case <-ctx.Done():
				return nil
			case data := <-w.toLogic:
				msg, err := command.Decode(data)
				if err != nil {
					Logger().Warn().Err(err).Msg("worker dropped control message")
					continue
				}
				if w.onLogic != nil {
					w.onLogic(msg)
				}
			}
		}
	})
	return g.Wait()
}

// PostMessage encodes msg and queues it for the worker goroutine.
func (w *Worker) PostMessage(msg []any) {
	data, err := command.Encode(msg)
	if err != nil {
		Logger().Error().Err(err).Msg("encode control message")
		return
	}
	w.toLogic <- data
}

// OnMessage installs the render-side batch handler.
func (w *Worker) OnMessage(fn func([]any)) {
	w.onRender = fn
}

// Poll delivers every batch the worker has posted so far, in order. Call it
// on the render goroutine.
func (w *Worker) Poll() {
	for {
		select {
		case data := <-w.toRender:
			batch, err := command.Decode(data)
			if err != nil {
				Logger().Warn().Err(err).Msg("render side dropped batch")
				continue
			}
			if w.onRender != nil {
				w.onRender(batch)
			}
		default:
			return
		}
	}
}

// workerHost is the Host the engine sees on the worker goroutine.
type workerHost struct {
	w   *Worker
	ctx context.Context
}

func (h workerHost) RequestTick(func(float64)) TickHandle { return 0 }

func (h workerHost) CancelTick(TickHandle) {}

func (h workerHost) PostToHost(batch []any) {
	data, err := command.Encode(batch)
	if err != nil {
		Logger().Error().Err(err).Msg("encode command batch")
		return
	}
	select {
	case h.w.toRender <- data:
	case <-h.ctx.Done():
	}
}

func (h workerHost) OnHostMessage(fn func([]any)) {
	h.w.onLogic = fn
}
