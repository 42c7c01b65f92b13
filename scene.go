package rowan

import (
	"strings"

	"github.com/phanxgames/rowan/command"
)

// Scene binds a root node to a selector known to the renderer. The root's
// path is the selector; every node below it is addressed relative to it.
//
// The root is sized absolutely. On creation it asks the renderer for the size
// of its surface (NEED_SIZE_FOR) and resizes itself whenever a CONTEXT_RESIZE
// UI event arrives with a [width, height, depth] payload.
type Scene struct {
	root     *Node
	selector string
	engine   *Engine
	resize   CallbackHandle
}

// CreateScene creates and registers a scene. The selector must be non-empty,
// must not contain "/" and must not be in use on this engine.
func (e *Engine) CreateScene(selector string) (*Scene, error) {
	if selector == "" || strings.Contains(selector, "/") {
		return nil, ErrInvalidSelector
	}
	if _, ok := e.scenes[selector]; ok {
		return nil, ErrSceneExists
	}

	s := &Scene{selector: selector, engine: e}
	root := NewNode(selector)
	root.path = selector
	root.scene = s
	root.proxy = newRootProxy(selector, &e.commands)
	root.mounted = true
	root.sizeMode = [3]SizeMode{SizeAbsolute, SizeAbsolute, SizeAbsolute}
	root.markAllDirty()
	s.root = root

	s.resize = root.dispatch.RegisterTargetedEvent(command.EventContextResize, s.onResize)
	root.proxy.Receive(command.NeedSizeFor)

	e.scenes[selector] = s
	e.order = append(e.order, s)
	return s, nil
}

// Root returns the scene's root node.
func (s *Scene) Root() *Node {
	return s.root
}

// Selector returns the scene's selector, which is also its root path.
func (s *Scene) Selector() string {
	return s.selector
}

// Engine returns the owning engine.
func (s *Scene) Engine() *Engine {
	return s.engine
}

// Dispatch returns the root node's router.
func (s *Scene) Dispatch() *Dispatch {
	return s.root.dispatch
}

// LookupNode resolves a path within the scene. Returns nil on a miss.
func (s *Scene) LookupNode(path string) *Node {
	return s.root.dispatch.LookupNode(path)
}

// Dispose dismounts and destroys the whole tree and unregisters the scene.
func (s *Scene) Dispose() {
	e := s.engine
	if e == nil {
		return
	}
	s.resize.Remove()
	s.root.Dispose()
	delete(e.scenes, s.selector)
	for i, other := range e.order {
		if other == s {
			e.order = append(e.order[:i], e.order[i+1:]...)
			break
		}
	}
	s.engine = nil
}

func (s *Scene) onResize(payload any) {
	size, ok := command.Vec3(payload)
	if !ok {
		Logger().Warn().
			Str("scene", s.selector).
			Interface("payload", payload).
			Msg("malformed resize payload")
		return
	}
	s.root.SetAbsoluteSize(size[0], size[1], size[2])
}
