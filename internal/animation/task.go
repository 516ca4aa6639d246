package animation

import (
	"sync/atomic"
	"time"
)

// Channel is an animatable property of a target.
type Channel int

const (
	// ChannelMove animates the Y position during stack reflow.
	ChannelMove Channel = iota + 1
	// ChannelShake animates the X/Y offset of a shake effect.
	ChannelShake
	// ChannelProgress animates the auto-hide progress bar.
	ChannelProgress
)

// String returns the channel name.
func (c Channel) String() string {
	switch c {
	case ChannelMove:
		return "move"
	case ChannelShake:
		return "shake"
	case ChannelProgress:
		return "progress"
	default:
		return "unknown"
	}
}

// Target is something the animator can drive. Values returns the current
// values of a channel and SetValues applies interpolated ones.
type Target interface {
	Values(ch Channel) []float64
	SetValues(ch Channel, values []float64)
}

// State is the lifecycle state of a Task.
type State int32

const (
	StateScheduled State = iota
	StateRunning
	StateCompleted
	StateCancelled
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateScheduled:
		return "scheduled"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// EventKind is the kind of an animation event.
type EventKind int

const (
	// EventComplete is delivered once when a task reaches its end.
	EventComplete EventKind = iota
	// EventCancelled is delivered when a task is cancelled or replaced.
	EventCancelled
)

// Event is delivered to a task's Listener when it terminates.
type Event struct {
	Kind    EventKind
	Channel Channel
	Target  Target
}

// Listener receives the terminal event of a task.
type Listener interface {
	OnAnimationEvent(ev Event)
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(ev Event)

// OnAnimationEvent implements Listener.
func (f ListenerFunc) OnAnimationEvent(ev Event) { f(ev) }

// OnComplete returns a Listener that only reacts to EventComplete.
func OnComplete(fn func()) Listener {
	return ListenerFunc(func(ev Event) {
		if ev.Kind == EventComplete {
			fn()
		}
	})
}

// Tween describes one interpolation.
type Tween struct {
	// To holds the end values, one per channel component.
	To []float64
	// Relative makes To an offset from the values at start.
	Relative bool
	// Duration of a single leg. Zero jumps straight to the end.
	Duration time.Duration
	// Easing defaults to Linear.
	Easing Easing
	// Repeat is the number of extra legs after the first.
	Repeat int
	// AutoReverse plays every odd leg backwards.
	AutoReverse bool
}

// Total returns the duration of all legs.
func (tw Tween) Total() time.Duration {
	return tw.Duration * time.Duration(tw.Repeat+1)
}

// Task is one scheduled tween on a (target, channel) pair.
type Task struct {
	target   Target
	channel  Channel
	tween    Tween
	listener Listener

	state   atomic.Int32
	from    []float64
	to      []float64
	elapsed time.Duration
}

// State returns the current lifecycle state.
func (t *Task) State() State {
	return State(t.state.Load())
}

// Channel returns the channel the task animates.
func (t *Task) Channel() Channel { return t.channel }

func (t *Task) setState(s State) {
	t.state.Store(int32(s))
}

// start captures the start values and resolves relative targets.
func (t *Task) start() {
	t.from = t.target.Values(t.channel)
	t.to = make([]float64, len(t.from))
	for i := range t.from {
		if i >= len(t.tween.To) {
			t.to[i] = t.from[i]
			continue
		}
		if t.tween.Relative {
			t.to[i] = t.from[i] + t.tween.To[i]
		} else {
			t.to[i] = t.tween.To[i]
		}
	}
	t.setState(StateRunning)
}

// step advances the task by delta and reports whether it finished.
func (t *Task) step(delta time.Duration) bool {
	if t.State() == StateScheduled {
		t.start()
	}
	t.elapsed += delta

	tw := t.tween
	if tw.Duration <= 0 || t.elapsed >= tw.Total() {
		end := t.to
		if tw.AutoReverse && tw.Repeat%2 == 1 {
			end = t.from
		}
		t.apply(end)
		return true
	}

	leg := int(t.elapsed / tw.Duration)
	frac := float64(t.elapsed%tw.Duration) / float64(tw.Duration)
	if tw.AutoReverse && leg%2 == 1 {
		frac = 1 - frac
	}

	ease := tw.Easing
	if ease == nil {
		ease = Linear
	}
	e := ease(frac)

	values := make([]float64, len(t.from))
	for i := range t.from {
		values[i] = t.from[i] + (t.to[i]-t.from[i])*e
	}
	t.apply(values)
	return false
}

func (t *Task) apply(values []float64) {
	out := make([]float64, len(values))
	copy(out, values)
	t.target.SetValues(t.channel, out)
}

func (t *Task) notify(kind EventKind) {
	if t.listener == nil {
		return
	}
	t.listener.OnAnimationEvent(Event{Kind: kind, Channel: t.channel, Target: t.target})
}
