package rowan

// emptySlot marks a freed Spec slot. Channel names are never empty, so the
// empty string cannot collide with a live channel.
const emptySlot = ""

// Change is one entry of a Spec's pending change log.
type Change[T any] struct {
	Name   string
	Report string // how the change should be reported, usually a render opcode
	Value  T
}

// Spec is the backing store for a set of named Channels. It holds the
// authoritative value of every open channel and a log of changes made since
// the last Flush.
type Spec[T any] struct {
	names   []string
	reports []string
	values  []T
	pending []int // slot -> index into changes, or -1
	index   map[string]int
	free    []int
	changes []Change[T]
	spare   []Change[T]
}

// NewSpec creates an empty Spec.
func NewSpec[T any]() *Spec[T] {
	return &Spec[T]{index: make(map[string]int)}
}

// Channel is a named handle into a Spec slot.
type Channel[T any] struct {
	spec  *Spec[T]
	slot  int
	name  string
	freed bool
}

// Open creates a channel. The name must be non-empty and not currently open on
// this Spec. report is copied into every Change the channel logs.
func (s *Spec[T]) Open(name, report string, initial T) (*Channel[T], error) {
	if name == emptySlot {
		return nil, ErrEmptyChannelName
	}
	if _, ok := s.index[name]; ok {
		return nil, ErrChannelInUse
	}
	var slot int
	if n := len(s.free); n > 0 {
		slot = s.free[n-1]
		s.free = s.free[:n-1]
		s.names[slot] = name
		s.reports[slot] = report
		s.values[slot] = initial
		s.pending[slot] = -1
	} else {
		slot = len(s.names)
		s.names = append(s.names, name)
		s.reports = append(s.reports, report)
		s.values = append(s.values, initial)
		s.pending = append(s.pending, -1)
	}
	s.index[name] = slot
	return &Channel[T]{spec: s, slot: slot, name: name}, nil
}

// Lookup returns the open channel value for name.
func (s *Spec[T]) Lookup(name string) (T, bool) {
	slot, ok := s.index[name]
	if !ok {
		var zero T
		return zero, false
	}
	return s.values[slot], true
}

// Len returns the number of open channels.
func (s *Spec[T]) Len() int {
	return len(s.index)
}

// Each calls fn for every open channel in slot order.
func (s *Spec[T]) Each(fn func(name, report string, value T)) {
	for slot, name := range s.names {
		if name == emptySlot {
			continue
		}
		fn(name, s.reports[slot], s.values[slot])
	}
}

// Changes returns a copy of the pending change log.
func (s *Spec[T]) Changes() []Change[T] {
	out := make([]Change[T], 0, len(s.changes))
	for _, ch := range s.changes {
		if ch.Name != emptySlot {
			out = append(out, ch)
		}
	}
	return out
}

// Dirty reports whether any change is pending.
func (s *Spec[T]) Dirty() bool {
	for i := range s.changes {
		if s.changes[i].Name != emptySlot {
			return true
		}
	}
	return false
}

// Flush hands each pending change to fn in the order channels first changed,
// then clears the log. Changes logged by fn are kept for the next Flush.
func (s *Spec[T]) Flush(fn func(Change[T])) {
	changes := s.changes
	s.changes = s.spare[:0]
	for _, ch := range changes {
		if ch.Name == emptySlot {
			continue
		}
		s.pending[s.index[ch.Name]] = -1
	}
	for _, ch := range changes {
		if ch.Name == emptySlot {
			continue
		}
		fn(ch)
	}
	clear(changes)
	s.spare = changes[:0]
}

func (s *Spec[T]) set(slot int, v T) {
	s.values[slot] = v
	if i := s.pending[slot]; i >= 0 {
		s.changes[i].Value = v
		return
	}
	s.pending[slot] = len(s.changes)
	s.changes = append(s.changes, Change[T]{Name: s.names[slot], Report: s.reports[slot], Value: v})
}

func (s *Spec[T]) release(slot int) {
	if i := s.pending[slot]; i >= 0 {
		s.changes[i].Name = emptySlot
	}
	delete(s.index, s.names[slot])
	var zero T
	s.names[slot] = emptySlot
	s.reports[slot] = emptySlot
	s.values[slot] = zero
	s.pending[slot] = -1
	s.free = append(s.free, slot)
}

// Name returns the channel name.
func (c *Channel[T]) Name() string {
	return c.name
}

// Get returns the channel's current value. A freed channel returns the zero
// value.
func (c *Channel[T]) Get() T {
	if c.freed {
		var zero T
		return zero
	}
	return c.spec.values[c.slot]
}

// Set stores v and logs a change. Several Sets before a Flush collapse into one
// change carrying the last value. No-op on a freed channel.
func (c *Channel[T]) Set(v T) {
	if c.freed {
		return
	}
	c.spec.set(c.slot, v)
}

// Free releases the channel's slot. The name may be opened again afterwards.
func (c *Channel[T]) Free() {
	if c.freed {
		return
	}
	c.freed = true
	c.spec.release(c.slot)
}
