package rowan

import (
	"strings"
	"time"

	"github.com/phanxgames/rowan/command"
)

// deferredUpdate is a RequestUpdateOnNextTick waiting for the next tick.
type deferredUpdate struct {
	node *Node
	id   int
}

// Engine is the logic-side loop. Each tick it steps the clock, runs the
// components that asked for an update, propagates size, transform and
// opacity through every scene, and hands the drained command batch to the
// host.
type Engine struct {
	host     Host
	cfg      Config
	clock    *Clock
	commands CommandQueue

	scenes map[string]*Scene
	order  []*Scene

	updates       []*Node
	updateSpare   []*Node
	deferred      []deferredUpdate
	deferredSpare []deferredUpdate

	functions FunctionRegistry
	store     EntityStore

	tick    TickHandle
	running bool
}

// NewEngine creates an engine on host. host may be nil, in which case Step
// only returns its batches. The engine installs itself as the host's message
// handler.
//
// A zero Config is replaced by DefaultConfig. Otherwise cfg.TimeScale is used
// as given, so a scale of 0 starts the clock paused.
func NewEngine(host Host, cfg Config) *Engine {
	if cfg == (Config{}) {
		cfg = DefaultConfig()
	}
	e := &Engine{
		host:   host,
		cfg:    cfg,
		clock:  NewClock(),
		scenes: make(map[string]*Scene),
	}
	e.clock.SetScale(cfg.TimeScale)
	if cfg.Debug {
		SetDebug(true)
	}
	if host != nil {
		host.OnHostMessage(e.HandleMessage)
	}
	return e
}

// Clock returns the engine's clock.
func (e *Engine) Clock() *Clock {
	return e.clock
}

// Config returns the settings the engine was created with.
func (e *Engine) Config() Config {
	return e.cfg
}

// Scene returns the scene registered under selector, or nil.
func (e *Engine) Scene(selector string) *Scene {
	return e.scenes[selector]
}

// Scenes returns the scenes in creation order. The returned slice MUST NOT be
// mutated.
func (e *Engine) Scenes() []*Scene {
	return e.order
}

// Functions returns the registry used for renderer round-trips.
func (e *Engine) Functions() *FunctionRegistry {
	return &e.functions
}

// SetEntityStore sets the optional ECS store that receives routed UI events.
func (e *Engine) SetEntityStore(store EntityStore) {
	e.store = store
}

// Running reports whether the tick loop is active.
func (e *Engine) Running() bool {
	return e.running
}

// Start begins requesting ticks from the host. Hosts that deliver frames as
// FRAME messages instead may ignore the request.
func (e *Engine) Start() {
	if e.running {
		return
	}
	e.running = true
	if e.host != nil {
		e.tick = e.host.RequestTick(e.loop)
	}
}

// Stop cancels the pending tick request.
func (e *Engine) Stop() {
	if !e.running {
		return
	}
	e.running = false
	if e.host != nil {
		e.host.CancelTick(e.tick)
	}
}

func (e *Engine) loop(timestamp float64) {
	e.Step(timestamp)
	if e.running && e.host != nil {
		e.tick = e.host.RequestTick(e.loop)
	}
}

// Step runs one tick at the raw timestamp (milliseconds) and returns the
// drained command batch, which is also posted to the host when non-empty.
func (e *Engine) Step(timestamp float64) []any {
	debug := debugEnabled()
	var stats debugStats
	var mark time.Time
	if debug {
		mark = time.Now()
	}

	e.clock.Step(timestamp)
	now := e.clock.Now()
	frame := e.clock.Frame()

	e.promoteDeferred()

	nodes := e.updates
	e.updates = e.updateSpare[:0]
	for _, n := range nodes {
		if n.scene == nil || n.lastUpdate == frame {
			continue
		}
		n.lastUpdate = frame
		stats.componentRuns += n.update(now)
		stats.nodesUpdated++
	}
	clear(nodes)
	e.updateSpare = nodes[:0]

	if debug {
		stats.updateTime = time.Since(mark)
		mark = time.Now()
	}

	for _, s := range e.order {
		s.root.propagate(Vec3{}, &IdentityTransform, 1, false, false, false)
	}

	if debug {
		stats.propagateTime = time.Since(mark)
		mark = time.Now()
	}

	batch := e.commands.Drain()
	if len(batch) > 0 && e.host != nil {
		e.host.PostToHost(batch)
	}

	if debug {
		stats.flushTime = time.Since(mark)
		stats.commandTokens = len(batch)
		e.debugLog(stats)
	}
	return batch
}

func (e *Engine) requestUpdate(n *Node) {
	e.updates = append(e.updates, n)
}

func (e *Engine) deferUpdate(n *Node, id int) {
	e.deferred = append(e.deferred, deferredUpdate{node: n, id: id})
}

// promoteDeferred turns next-tick requests made before this tick into regular
// requests. Requests deferred during this tick wait for the next one.
func (e *Engine) promoteDeferred() {
	pending := e.deferred
	e.deferred = e.deferredSpare[:0]
	for _, d := range pending {
		n := d.node
		if d.id >= len(n.deferred) {
			continue
		}
		n.deferred[d.id] = false
		n.RequestUpdate(d.id)
	}
	clear(pending)
	e.deferredSpare = pending[:0]
}

// HandleMessage interprets a control message from the renderer side:
//
//	ENGINE START | ENGINE STOP
//	FRAME <timestamp>
//	WITH <path> TRIGGER <event> <payload>
//	INVOKE <handle> <value>
//
// Several commands may be concatenated. An unknown or malformed command is
// logged and the rest of the message is dropped.
func (e *Engine) HandleMessage(msg []any) {
	for i := 0; i < len(msg); {
		op, _ := command.String(msg[i])
		i++
		switch op {
		case command.Engine:
			if i >= len(msg) {
				e.malformed(op, msg)
				return
			}
			switch sub, _ := command.String(msg[i]); sub {
			case command.Start:
				e.Start()
			case command.Stop:
				e.Stop()
			default:
				e.malformed(op, msg)
				return
			}
			i++

		case command.Frame:
			ts, ok := 0.0, false
			if i < len(msg) {
				ts, ok = command.Float(msg[i])
			}
			if !ok {
				e.malformed(op, msg)
				return
			}
			i++
			e.Step(ts)

		case command.With:
			if i+3 >= len(msg) {
				e.malformed(op, msg)
				return
			}
			path, okPath := command.String(msg[i])
			trig, _ := command.String(msg[i+1])
			event, okEvent := command.String(msg[i+2])
			if !okPath || !okEvent || trig != command.Trigger {
				e.malformed(op, msg)
				return
			}
			e.RouteUIEvent(path, event, msg[i+3])
			i += 4

		case command.Invoke:
			if i+1 >= len(msg) {
				e.malformed(op, msg)
				return
			}
			handle, ok := command.Float(msg[i])
			if !ok {
				e.malformed(op, msg)
				return
			}
			e.functions.Invoke(int(handle), msg[i+1])
			i += 2

		default:
			Logger().Warn().
				Interface("opcode", msg[i-1]).
				Msg("unknown control opcode")
			return
		}
	}
}

func (e *Engine) malformed(op string, msg []any) {
	Logger().Warn().
		Str("opcode", op).
		Int("tokens", len(msg)).
		Msg("malformed control message")
}

// RouteUIEvent delivers a renderer-originated UI event to the scene owning
// path, bubbling from the addressed node to the scene root, then mirrors it
// to the EntityStore if one is set. Unknown scenes are ignored.
func (e *Engine) RouteUIEvent(path, event string, payload any) {
	selector := path
	if i := strings.IndexByte(path, '/'); i >= 0 {
		selector = path[:i]
	}
	s := e.scenes[selector]
	if s == nil {
		Logger().Debug().
			Str("path", path).
			Str("event", event).
			Msg("UI event for unknown scene")
		return
	}
	s.root.dispatch.DispatchUIEvent(path, event, payload)
	if e.store != nil {
		e.store.EmitEvent(InteractionEvent{
			Scene:   selector,
			Path:    path,
			Event:   event,
			Payload: payload,
			Frame:   e.clock.Frame(),
			Time:    e.clock.Now(),
		})
	}
}

// Broadcast dispatches event breadth-first through every scene.
func (e *Engine) Broadcast(event string, payload any) {
	for _, s := range e.order {
		s.root.dispatch.Dispatch(event, payload)
	}
}
