package rowan

import "github.com/phanxgames/rowan/command"

// Compositor consumes command batches on the render side. Receive returns any
// control messages the batch produced (query answers, resize events) for the
// logic side; nil when there are none.
type Compositor interface {
	Receive(batch []any) []any
}

// ThreadManager is the render-side loop. Each frame it pumps batches that
// arrived from the logic side into the Compositor, feeds one injected UI event
// and posts FRAME with the host's timestamp. It also relays the host's control
// messages to the logic side.
type ThreadManager struct {
	thread     Thread
	compositor Compositor
	host       Host

	tick    TickHandle
	running bool
	frames  uint64

	injectQueue []injectedEvent
	runner      *ScriptRunner
}

// NewThreadManager connects thread, compositor and host. host may be nil when
// frames are driven by calling Step directly.
func NewThreadManager(thread Thread, compositor Compositor, host Host) *ThreadManager {
	tm := &ThreadManager{thread: thread, compositor: compositor, host: host}
	thread.OnMessage(tm.receive)
	if host != nil {
		host.OnHostMessage(tm.control)
	}
	return tm
}

// Thread returns the connection to the logic side.
func (tm *ThreadManager) Thread() Thread {
	return tm.thread
}

// Frames returns the number of frames posted.
func (tm *ThreadManager) Frames() uint64 {
	return tm.frames
}

// Running reports whether the frame loop is active.
func (tm *ThreadManager) Running() bool {
	return tm.running
}

// Start tells the logic side to start and begins requesting frames from the
// host.
func (tm *ThreadManager) Start() {
	if tm.running {
		return
	}
	tm.running = true
	tm.thread.PostMessage([]any{command.Engine, command.Start})
	if tm.host != nil {
		tm.tick = tm.host.RequestTick(tm.loop)
	}
}

// Stop cancels the frame loop and tells the logic side to stop.
func (tm *ThreadManager) Stop() {
	if !tm.running {
		return
	}
	tm.running = false
	if tm.host != nil {
		tm.host.CancelTick(tm.tick)
	}
	tm.thread.PostMessage([]any{command.Engine, command.Stop})
}

func (tm *ThreadManager) loop(timestamp float64) {
	tm.Step(timestamp)
	if tm.running && tm.host != nil {
		tm.tick = tm.host.RequestTick(tm.loop)
	}
}

// Step runs one render-side frame at timestamp.
func (tm *ThreadManager) Step(timestamp float64) {
	tm.Poll()
	if tm.runner != nil {
		tm.runner.step(tm)
	}
	tm.processInjected()
	tm.thread.PostMessage([]any{command.Frame, timestamp})
	tm.frames++
}

// Poll pumps pending batches when the thread needs pumping.
func (tm *ThreadManager) Poll() {
	if p, ok := tm.thread.(Poller); ok {
		p.Poll()
	}
}

func (tm *ThreadManager) receive(batch []any) {
	replies := tm.compositor.Receive(batch)
	if len(replies) > 0 {
		tm.thread.PostMessage(replies)
	}
}

// control handles a message from the host. ENGINE START and STOP drive the
// local loop; everything else is relayed to the logic side.
func (tm *ThreadManager) control(msg []any) {
	if len(msg) == 2 {
		if op, _ := command.String(msg[0]); op == command.Engine {
			switch sub, _ := command.String(msg[1]); sub {
			case command.Start:
				tm.Start()
				return
			case command.Stop:
				tm.Stop()
				return
			}
		}
	}
	tm.thread.PostMessage(msg)
}
