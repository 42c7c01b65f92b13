package rowan

import "errors"

// Vec3 is a three-component vector used for positions, sizes, rotations,
// scales and the fractional anchors (align, mount point, origin).
type Vec3 [3]float64

// Transform is a 4x4 column-major matrix. Translation lives in cells 12-14.
type Transform [16]float64

// IdentityTransform is the identity matrix.
var IdentityTransform = Transform{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 1, 0,
	0, 0, 0, 1,
}

// SizeMode selects how a Node derives its size along one axis.
type SizeMode uint8

const (
	SizeRelative SizeMode = iota // parent size * proportional + differential
	SizeAbsolute                 // fixed absolute size
	SizeRender                   // size reported by the renderer
)

// String returns the mode name.
func (m SizeMode) String() string {
	switch m {
	case SizeRelative:
		return "relative"
	case SizeAbsolute:
		return "absolute"
	case SizeRender:
		return "render"
	default:
		return "unknown"
	}
}

// Sentinel errors returned by constructors and tree operations.
var (
	ErrNilNode          = errors.New("rowan: component requires a node")
	ErrNilComponent     = errors.New("rowan: nil component")
	ErrDetached         = errors.New("rowan: node is not attached to a scene")
	ErrDisposed         = errors.New("rowan: node is disposed")
	ErrChannelInUse     = errors.New("rowan: channel name already open")
	ErrEmptyChannelName = errors.New("rowan: channel name is empty")
	ErrInvalidSelector  = errors.New("rowan: invalid scene selector")
	ErrSceneExists      = errors.New("rowan: scene already exists")
)

// InteractionEvent carries a UI event routed through the engine. It is handed
// to the optional EntityStore after the scene graph has seen it.
type InteractionEvent struct {
	Scene   string
	Path    string
	Event   string
	Payload any
	Frame   uint64
	Time    float64
}

// EntityStore is the interface for optional ECS integration.
// When set on an Engine, routed UI events are forwarded to the store.
type EntityStore interface {
	EmitEvent(event InteractionEvent)
}
