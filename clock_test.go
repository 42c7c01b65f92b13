package rowan

import (
	"reflect"
	"testing"
)

func TestClockStartsAtZero(t *testing.T) {
	c := NewClock()
	if c.Now() != 0 || c.Frame() != 0 {
		t.Errorf("Now, Frame = %v, %v; want 0, 0", c.Now(), c.Frame())
	}
	if c.Scale() != 1 {
		t.Errorf("Scale = %v, want 1", c.Scale())
	}
}

func TestClockFollowsRawTimeAtUnitScale(t *testing.T) {
	c := NewClock()
	for _, raw := range []float64{0, 5, 16, 16, 33.5, 100} {
		c.Step(raw)
		if c.Now() != raw {
			t.Errorf("after Step(%v): Now = %v", raw, c.Now())
		}
		if c.Time() != c.Now() {
			t.Errorf("Time() = %v, Now() = %v", c.Time(), c.Now())
		}
	}
	if c.Frame() != 6 {
		t.Errorf("Frame = %d, want 6", c.Frame())
	}
}

func TestClockScaling(t *testing.T) {
	c := NewClock()
	c.Step(100)
	c.SetScale(0.5)
	c.Step(150)
	if c.Now() != 125 {
		t.Errorf("Now = %v, want 125", c.Now())
	}
	c.Step(210)
	if c.Now() != 155 {
		t.Errorf("Now = %v, want 155", c.Now())
	}
}

func TestClockNeverRewinds(t *testing.T) {
	c := NewClock()
	c.Step(100)
	c.Step(40)
	if c.Now() != 100 {
		t.Errorf("Now = %v after regression, want 100", c.Now())
	}
	c.Step(50)
	if c.Now() != 110 {
		t.Errorf("Now = %v, want 110 (re-anchored at 40)", c.Now())
	}
	c.SetScale(-2)
	if c.Scale() != 0 {
		t.Errorf("negative scale should clamp to 0, got %v", c.Scale())
	}
}

func TestClockTimeoutTiesFireInRegistrationOrder(t *testing.T) {
	c := NewClock()
	var first, second bool
	var firstSawSecond, secondSawFirst bool
	c.SetTimeout(func() {
		firstSawSecond = second
		first = true
	}, 10)
	c.SetTimeout(func() {
		secondSawFirst = first
		second = true
	}, 10)
	c.Step(10)
	if !first || !second {
		t.Fatal("both timeouts should have fired")
	}
	if firstSawSecond {
		t.Error("first callback observed second == true")
	}
	if !secondSawFirst {
		t.Error("second callback should observe first == true")
	}
}

func TestClockTimeoutFiresOnce(t *testing.T) {
	c := NewClock()
	count := 0
	c.SetTimeout(func() { count++ }, 5)
	c.Step(4)
	if count != 0 {
		t.Fatal("fired early")
	}
	c.Step(5)
	c.Step(50)
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
	if c.PendingTimers() != 0 {
		t.Errorf("PendingTimers = %d, want 0", c.PendingTimers())
	}
}

func TestClockIntervalDoesNotDrift(t *testing.T) {
	c := NewClock()
	var fired []float64
	c.SetInterval(func() { fired = append(fired, c.Now()) }, 7)
	for i := 0; i < 100; i++ {
		c.Step(float64(i))
	}
	var want []float64
	for v := 7.0; v < 100; v += 7 {
		want = append(want, v)
	}
	if !reflect.DeepEqual(fired, want) {
		t.Errorf("fired = %v, want %v", fired, want)
	}
}

func TestClockIntervalCatchesUpOnLargeStep(t *testing.T) {
	c := NewClock()
	count := 0
	c.SetInterval(func() { count++ }, 10)
	c.Step(35)
	if count != 3 {
		t.Errorf("count = %d, want 3", count)
	}
}

func TestClockClearTimer(t *testing.T) {
	c := NewClock()
	count := 0
	id := c.SetInterval(func() { count++ }, 1)
	c.Step(1)
	c.ClearTimer(id)
	c.Step(5)
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
	c.ClearTimer(id) // already cleared
	c.ClearTimer(0)
}

func TestClockIntervalCanClearItself(t *testing.T) {
	c := NewClock()
	count := 0
	var id TimerID
	id = c.SetInterval(func() {
		count++
		if count == 2 {
			c.ClearTimer(id)
		}
	}, 1)
	for i := 1; i <= 5; i++ {
		c.Step(float64(i))
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
}

func TestClockNonPositivePeriodFiresOncePerStep(t *testing.T) {
	c := NewClock()
	count := 0
	c.SetInterval(func() { count++ }, 0)
	c.Step(1)
	c.Step(2)
	c.Step(2)
	if count != 3 {
		t.Errorf("count = %d, want 3", count)
	}
}

func TestClockUnresolvablePeriodFiresOncePerStep(t *testing.T) {
	c := NewClock()
	c.Step(1e6)
	count := 0
	c.SetInterval(func() { count++ }, 1e-11)
	c.Step(1e6 + 1)
	c.Step(1e6 + 2)
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
}

func TestClockTimeoutScheduledDuringStepWaitsForNextStep(t *testing.T) {
	c := NewClock()
	var order []string
	c.SetTimeout(func() {
		order = append(order, "outer")
		c.SetTimeout(func() { order = append(order, "inner") }, 0)
	}, 1)
	c.Step(1)
	if !reflect.DeepEqual(order, []string{"outer"}) {
		t.Fatalf("order = %v after first step", order)
	}
	c.Step(1)
	if !reflect.DeepEqual(order, []string{"outer", "inner"}) {
		t.Errorf("order = %v, want [outer inner]", order)
	}
}
