// Package command defines the token vocabulary shared by the logic and render
// sides of rowan, plus the wire encoding used when a batch crosses a goroutine
// or process boundary.
//
// A batch is a flat []any of tokens. Tokens are strings, float64 numbers, bools,
// or (for UI event payloads only) nested []any values. A renderer consumes a
// batch positionally: an opcode string is followed by a fixed number of
// arguments (see [Arity]), except for ADD_EVENT_LISTENER which runs until the
// matching EVENT_END.
package command

// Render opcodes (logic → renderer).
const (
	With             = "WITH"
	InitDOM          = "INIT_DOM"
	ChangeTransform  = "CHANGE_TRANSFORM"
	ChangeSize       = "CHANGE_SIZE"
	ChangeProperty   = "CHANGE_PROPERTY"
	ChangeAttribute  = "CHANGE_ATTRIBUTE"
	AddClass         = "ADD_CLASS"
	RemoveClass      = "REMOVE_CLASS"
	AddEventListener = "ADD_EVENT_LISTENER"
	EventEnd         = "EVENT_END"
	Dismount         = "DISMOUNT"
	NeedSizeFor      = "NEED_SIZE_FOR"
	Query            = "QUERY"

	GLCreateLight   = "GL_CREATE_LIGHT"
	GLLightColor    = "GL_LIGHT_COLOR"
	GLLightPosition = "GL_LIGHT_POSITION"

	OrthographicProjection = "ORTHOGRAPHIC_PROJECTION"
	PinholeProjection      = "PINHOLE_PROJECTION"
	FrustumProjection      = "FRUSTUM_PROJECTION"
	ChangeViewTransform    = "CHANGE_VIEW_TRANSFORM"
)

// Control opcodes (renderer/host → logic).
const (
	Engine  = "ENGINE"
	Start   = "START"
	Stop    = "STOP"
	Frame   = "FRAME"
	Trigger = "TRIGGER"
	Invoke  = "INVOKE"
)

// Well-known UI event names carried by TRIGGER.
const (
	EventContextResize = "CONTEXT_RESIZE"
	EventClick         = "click"
)

// Query subjects carried by QUERY.
const (
	QueryRenderSize = "RENDER_SIZE"
)

// Variadic is returned by Arity for opcodes whose argument list is terminated
// by EVENT_END rather than having a fixed length.
const Variadic = -1

var arity = map[string]int{
	With:                   1,
	InitDOM:                1,
	ChangeTransform:        16,
	ChangeSize:             3,
	ChangeProperty:         2,
	ChangeAttribute:        2,
	AddClass:               1,
	RemoveClass:            1,
	AddEventListener:       Variadic,
	Dismount:               0,
	NeedSizeFor:            0,
	Query:                  2,
	GLCreateLight:          0,
	GLLightColor:           3,
	GLLightPosition:        16,
	OrthographicProjection: 0,
	PinholeProjection:      1,
	FrustumProjection:      2,
	ChangeViewTransform:    16,
}

// Arity returns the number of argument tokens that follow op in a render
// stream, or Variadic. ok is false for opcodes this vocabulary does not know.
func Arity(op string) (n int, ok bool) {
	n, ok = arity[op]
	return n, ok
}

// Known reports whether tok is a render opcode.
func Known(tok any) bool {
	s, ok := tok.(string)
	if !ok {
		return false
	}
	_, ok = arity[s]
	return ok
}
