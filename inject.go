package rowan

import "github.com/phanxgames/rowan/command"

// injectedEvent is a synthetic UI event waiting to be sent to the logic side.
type injectedEvent struct {
	path    string
	event   string
	payload any
}

// InjectEvent queues a UI event addressed to path. One queued event is sent
// per frame, ahead of that frame's FRAME message, exactly as if the renderer
// had produced it.
func (tm *ThreadManager) InjectEvent(path, event string, payload any) {
	tm.injectQueue = append(tm.injectQueue, injectedEvent{
		path:    path,
		event:   event,
		payload: payload,
	})
}

// InjectClick queues a click on path.
func (tm *ThreadManager) InjectClick(path string) {
	tm.InjectEvent(path, command.EventClick, nil)
}

// InjectResize queues a CONTEXT_RESIZE for a scene root.
func (tm *ThreadManager) InjectResize(selector string, width, height float64) {
	tm.InjectEvent(selector, command.EventContextResize, []any{width, height, 0.0})
}

// PendingInjections returns the number of queued events.
func (tm *ThreadManager) PendingInjections() int {
	return len(tm.injectQueue)
}

// processInjected sends the oldest queued event. Returns true if one was sent.
func (tm *ThreadManager) processInjected() bool {
	if len(tm.injectQueue) == 0 {
		return false
	}
	evt := tm.injectQueue[0]
	copy(tm.injectQueue, tm.injectQueue[1:])
	tm.injectQueue[len(tm.injectQueue)-1] = injectedEvent{}
	tm.injectQueue = tm.injectQueue[:len(tm.injectQueue)-1]

	tm.thread.PostMessage([]any{command.With, evt.path, command.Trigger, evt.event, evt.payload})
	return true
}
