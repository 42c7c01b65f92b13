package rowan

import "container/heap"

// TimerID identifies a pending timer. The zero value never names a timer.
type TimerID uint64

type timer struct {
	id      TimerID
	trigger float64
	period  float64
	repeat  bool
	fn      func()
	seq     uint64 // registration order, breaks trigger ties
	armed   uint64 // first frame on which the timer may fire
	index   int    // heap position, -1 when not in the heap
}

// timerHeap orders timers by trigger time, then registration order.
type timerHeap []*timer

func (h timerHeap) Len() int { return len(h) }

func (h timerHeap) Less(i, j int) bool {
	if h[i].trigger != h[j].trigger {
		return h[i].trigger < h[j].trigger
	}
	return h[i].seq < h[j].seq
}

func (h timerHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *timerHeap) Push(x any) {
	t := x.(*timer)
	t.index = len(*h)
	*h = append(*h, t)
}

func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*h = old[:n-1]
	return t
}

// Clock is the virtual time source of an Engine. Time is expressed in
// milliseconds. Virtual time starts at 0, advances by scale times the raw delta
// passed to Step, and never decreases.
//
// Clock is not safe for concurrent use; it belongs to the logic goroutine.
type Clock struct {
	time    float64
	lastRaw float64
	frame   uint64
	scale   float64

	timers  timerHeap
	byID    map[TimerID]*timer
	nextID  TimerID
	nextSeq uint64
	held    []*timer
}

// NewClock creates a clock at time 0 with scale 1.
func NewClock() *Clock {
	return &Clock{
		scale: 1,
		byID:  make(map[TimerID]*timer),
	}
}

// Step advances virtual time by scale * (raw - previous raw), increments the
// frame counter by one, and fires every due timer in trigger order. A raw time
// that moves backwards advances nothing and becomes the new anchor.
func (c *Clock) Step(raw float64) *Clock {
	delta := raw - c.lastRaw
	if delta < 0 {
		delta = 0
	}
	c.lastRaw = raw
	c.time += delta * c.scale
	c.frame++
	c.fire()
	return c
}

// Now returns the current virtual time.
func (c *Clock) Now() float64 {
	return c.time
}

// Time is an alias of Now.
func (c *Clock) Time() float64 {
	return c.time
}

// Frame returns the number of Step calls so far.
func (c *Clock) Frame() uint64 {
	return c.frame
}

// Scale returns the multiplier applied to raw deltas.
func (c *Clock) Scale() float64 {
	return c.scale
}

// SetScale changes the multiplier applied to future raw deltas. Elapsed
// virtual time is not rescaled. Negative factors are clamped to 0.
func (c *Clock) SetScale(factor float64) {
	if factor < 0 {
		factor = 0
	}
	c.scale = factor
}

// SetTimeout schedules fn once at Now()+delay. It fires during the first Step
// whose resulting time reaches the trigger, and never on the Step that is
// currently running.
func (c *Clock) SetTimeout(fn func(), delay float64) TimerID {
	return c.schedule(fn, delay, false)
}

// SetInterval schedules fn every period, starting at Now()+period. Each firing
// reschedules at previous trigger + period, so drift does not accumulate. A
// non-positive period fires at most once per Step.
func (c *Clock) SetInterval(fn func(), period float64) TimerID {
	return c.schedule(fn, period, true)
}

// ClearTimer cancels a pending timer. No-op if it already fired or was cleared.
func (c *Clock) ClearTimer(id TimerID) {
	t, ok := c.byID[id]
	if !ok {
		return
	}
	delete(c.byID, id)
	if t.index >= 0 {
		heap.Remove(&c.timers, t.index)
	}
}

// PendingTimers returns the number of scheduled timers.
func (c *Clock) PendingTimers() int {
	return len(c.byID)
}

func (c *Clock) schedule(fn func(), delay float64, repeat bool) TimerID {
	c.nextID++
	c.nextSeq++
	t := &timer{
		id:      c.nextID,
		trigger: c.time + delay,
		period:  delay,
		repeat:  repeat,
		fn:      fn,
		seq:     c.nextSeq,
		armed:   c.frame + 1,
	}
	c.byID[t.id] = t
	heap.Push(&c.timers, t)
	return t.id
}

func (c *Clock) fire() {
	for len(c.timers) > 0 && c.timers[0].trigger <= c.time {
		t := heap.Pop(&c.timers).(*timer)
		if t.armed > c.frame {
			c.held = append(c.held, t)
			continue
		}
		if t.repeat {
			// A period too small to move the trigger fires once per step.
			if next := t.trigger + t.period; next > t.trigger {
				t.trigger = next
			} else {
				t.trigger = c.time
				t.armed = c.frame + 1
			}
			heap.Push(&c.timers, t)
		} else {
			delete(c.byID, t.id)
		}
		t.fn()
	}
	for i, t := range c.held {
		if _, live := c.byID[t.id]; live {
			heap.Push(&c.timers, t)
		}
		c.held[i] = nil
	}
	c.held = c.held[:0]
}
