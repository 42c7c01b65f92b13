package rowan

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Transition describes how a tweenable value moves to a new target. A zero
// Duration applies the target immediately. Curve defaults to ease.Linear.
type Transition struct {
	Duration float64 // virtual milliseconds
	Curve    ease.TweenFunc
}

// Transitionable is a scalar channel driven by a gween tween over the Clock's
// virtual time. Each Update samples the tween at Clock.Now and writes the
// result into the channel.
type Transitionable struct {
	clock *Clock
	ch    *Channel[float64]

	tween  *gween.Tween
	start  float64
	target float64
	done   func()
	active bool
}

// NewTransitionable binds a tween driver to ch, reading time from clock.
func NewTransitionable(clock *Clock, ch *Channel[float64]) *Transitionable {
	return &Transitionable{clock: clock, ch: ch, target: ch.Get()}
}

// Set starts a transition from the current value to target. A running
// transition is replaced (its done callback is dropped). done, if non-nil,
// runs once the target is reached.
func (t *Transitionable) Set(target float64, tr Transition, done func()) {
	t.target = target
	t.done = done
	if tr.Duration <= 0 {
		t.tween = nil
		t.active = false
		t.ch.Set(target)
		t.finish()
		return
	}
	curve := tr.Curve
	if curve == nil {
		curve = ease.Linear
	}
	t.tween = gween.New(float32(t.ch.Get()), float32(target), float32(tr.Duration), curve)
	t.start = t.clock.Now()
	t.active = true
}

// Update samples the transition at the current clock time, stores the value in
// the channel and returns it.
func (t *Transitionable) Update() float64 {
	if !t.active {
		return t.ch.Get()
	}
	v, finished := t.tween.Set(float32(t.clock.Now() - t.start))
	if finished {
		t.active = false
		t.tween = nil
		t.ch.Set(t.target)
		t.finish()
		return t.target
	}
	t.ch.Set(float64(v))
	return float64(v)
}

// Get returns the last sampled value.
func (t *Transitionable) Get() float64 {
	return t.ch.Get()
}

// Target returns the value the transition is heading to.
func (t *Transitionable) Target() float64 {
	return t.target
}

// IsActive reports whether a transition is in progress.
func (t *Transitionable) IsActive() bool {
	return t.active
}

// Halt stops the transition at its last sampled value. The done callback is
// not called.
func (t *Transitionable) Halt() {
	t.active = false
	t.tween = nil
	t.done = nil
	t.target = t.ch.Get()
}

func (t *Transitionable) finish() {
	if fn := t.done; fn != nil {
		t.done = nil
		fn()
	}
}
