package renderer

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/phanxgames/rowan/command"
)

var (
	errMissingArgs = errors.New("missing arguments")
	errBadArg      = errors.New("bad argument")
	errNoTarget    = errors.New("command before WITH")
	errNoEventEnd  = errors.New("ADD_EVENT_LISTENER without EVENT_END")
)

// Receive replays a batch and returns the control messages it produced for
// the logic side (resize events, query answers), or nil.
//
// The batch is read positionally. An unknown opcode is logged and every token
// up to the next known opcode is skipped. A malformed command is logged and
// skipped. Neither aborts the batch.
func (c *Compositor) Receive(batch []any) []any {
	var replies []any
	target := ""
	for i := 0; i < len(batch); {
		op, ok := batch[i].(string)
		if !ok || !command.Known(op) {
			next := c.skip(batch, i+1)
			c.log.Warn().
				Interface("opcode", batch[i]).
				Int("index", i).
				Int("skipped", next-i).
				Msg("unknown render opcode")
			i = next
			continue
		}
		i++

		var args []any
		n, _ := command.Arity(op)
		if n == command.Variadic {
			end := slices.Index(batch[i:], any(command.EventEnd))
			if end < 0 {
				c.malformed(op, target, errNoEventEnd)
				return replies
			}
			args = batch[i : i+end]
			i += end + 1
		} else {
			if i+n > len(batch) {
				c.malformed(op, target, errMissingArgs)
				return replies
			}
			args = batch[i : i+n]
			i += n
		}

		if op == command.With {
			path, ok := args[0].(string)
			if !ok {
				c.malformed(op, target, errBadArg)
				target = ""
				continue
			}
			target = path
			continue
		}
		if target == "" {
			c.malformed(op, target, errNoTarget)
			continue
		}
		out, err := c.apply(target, op, args)
		if err != nil {
			c.malformed(op, target, err)
			continue
		}
		replies = append(replies, out...)
	}
	return replies
}

func (c *Compositor) skip(batch []any, i int) int {
	for i < len(batch) && !command.Known(batch[i]) {
		i++
	}
	return i
}

func (c *Compositor) malformed(op, path string, err error) {
	c.log.Warn().
		Str("opcode", op).
		Str("path", path).
		Err(err).
		Msg("skipped malformed command")
}

func (c *Compositor) apply(path, op string, args []any) ([]any, error) {
	switch op {
	case command.InitDOM:
		tag, ok := args[0].(string)
		if !ok {
			return nil, errBadArg
		}
		e := newElement(path)
		e.Tag = tag
		c.elements[path] = e

	case command.ChangeTransform:
		m, err := floats16(args)
		if err != nil {
			return nil, err
		}
		c.ensure(path).Transform = m

	case command.ChangeSize:
		var s [3]float64
		for i := range s {
			f, ok := command.Float(args[i])
			if !ok {
				return nil, errBadArg
			}
			s[i] = f
		}
		c.ensure(path).Size = s

	case command.ChangeProperty, command.ChangeAttribute:
		name, ok1 := args[0].(string)
		value, ok2 := args[1].(string)
		if !ok1 || !ok2 {
			return nil, errBadArg
		}
		e := c.ensure(path)
		dst := e.Properties
		if op == command.ChangeAttribute {
			dst = e.Attributes
		}
		if value == "" {
			delete(dst, name)
		} else {
			dst[name] = value
		}

	case command.AddClass:
		name, ok := args[0].(string)
		if !ok {
			return nil, errBadArg
		}
		e := c.ensure(path)
		if !slices.Contains(e.Classes, name) {
			e.Classes = append(e.Classes, name)
		}

	case command.RemoveClass:
		name, ok := args[0].(string)
		if !ok {
			return nil, errBadArg
		}
		e := c.ensure(path)
		if i := slices.Index(e.Classes, name); i >= 0 {
			e.Classes = slices.Delete(e.Classes, i, i+1)
		}

	case command.AddEventListener:
		return nil, c.addListener(path, args)

	case command.Dismount:
		prefix := path + "/"
		for p := range c.elements {
			if p == path || strings.HasPrefix(p, prefix) {
				delete(c.elements, p)
			}
		}

	case command.NeedSizeFor:
		c.sizeFor[path] = true
		if c.sized {
			return resizeMessage(path, c.width, c.height), nil
		}

	case command.Query:
		return c.query(path, args)

	case command.GLCreateLight:
		c.ensure(path).Light = &Light{Color: [3]float64{1, 1, 1}, Transform: identity}

	case command.GLLightColor:
		var rgb [3]float64
		for i := range rgb {
			f, ok := command.Float(args[i])
			if !ok {
				return nil, errBadArg
			}
			rgb[i] = f
		}
		light(c.ensure(path)).Color = rgb

	case command.GLLightPosition:
		m, err := floats16(args)
		if err != nil {
			return nil, err
		}
		light(c.ensure(path)).Transform = m

	case command.OrthographicProjection:
		c.ensure(path).Projection = &Projection{Mode: op}

	case command.PinholeProjection:
		depth, ok := command.Float(args[0])
		if !ok {
			return nil, errBadArg
		}
		c.ensure(path).Projection = &Projection{Mode: op, Depth: depth}

	case command.FrustumProjection:
		near, ok1 := command.Float(args[0])
		far, ok2 := command.Float(args[1])
		if !ok1 || !ok2 {
			return nil, errBadArg
		}
		c.ensure(path).Projection = &Projection{Mode: op, Near: near, Far: far}

	case command.ChangeViewTransform:
		m, err := floats16(args)
		if err != nil {
			return nil, err
		}
		c.ensure(path).View = &m
	}
	return nil, nil
}

// addListener reads: event name, method count, methods, properties.
func (c *Compositor) addListener(path string, args []any) error {
	if len(args) < 2 {
		return errMissingArgs
	}
	name, ok := args[0].(string)
	if !ok {
		return errBadArg
	}
	count, ok := command.Float(args[1])
	if !ok || count < 0 || int(count) > len(args)-2 {
		return errBadArg
	}
	var l Listener
	for i, tok := range args[2:] {
		s, ok := tok.(string)
		if !ok {
			return errBadArg
		}
		if i < int(count) {
			l.Methods = append(l.Methods, s)
		} else {
			l.Properties = append(l.Properties, s)
		}
	}
	c.ensure(path).Listeners[name] = l
	return nil
}

func (c *Compositor) query(path string, args []any) ([]any, error) {
	subject, ok1 := args[0].(string)
	handle, ok2 := command.Float(args[1])
	if !ok1 || !ok2 {
		return nil, errBadArg
	}
	var answer any
	switch subject {
	case command.QueryRenderSize:
		s := c.measure(c.ensure(path))
		answer = []any{s[0], s[1], s[2]}
	default:
		c.log.Warn().Str("subject", subject).Str("path", path).Msg("unknown query subject")
	}
	return []any{command.Invoke, handle, answer}, nil
}

func light(e *Element) *Light {
	if e.Light == nil {
		e.Light = &Light{Color: [3]float64{1, 1, 1}, Transform: identity}
	}
	return e.Light
}

func floats16(args []any) ([16]float64, error) {
	var m [16]float64
	for i := range m {
		f, ok := command.Float(args[i])
		if !ok {
			return m, fmt.Errorf("%w: cell %d", errBadArg, i)
		}
		m[i] = f
	}
	return m, nil
}

func parseFloat(s string) (float64, bool) {
	f, err := strconv.ParseFloat(s, 64)
	return f, err == nil
}
