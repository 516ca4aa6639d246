package animation

import (
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"
)

// DefaultFrameRate is the number of frames per second of the frame loop.
const DefaultFrameRate = 60

// ShakeLeg is the duration of one leg of a shake oscillation.
const ShakeLeg = 50 * time.Millisecond

// FrameHandler runs after every frame with the delta that was applied.
type FrameHandler func(delta time.Duration)

type taskKey struct {
	target  Target
	channel Channel
}

// Animator schedules tweens and advances them on a shared frame loop.
type Animator struct {
	mu     sync.Mutex
	logger *slog.Logger

	tasks map[taskKey]*Task
	order []*Task

	frameInterval time.Duration
	manual        bool
	now           func() time.Time
	rand          *rand.Rand

	frameHandlers map[int]FrameHandler
	nextHandler   int
	onIdle        func()

	// Frame loop control
	running bool
	stopped bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// Option configures an Animator.
type Option func(*Animator)

// WithFrameRate sets the frame loop rate in frames per second.
func WithFrameRate(fps int) Option {
	return func(a *Animator) {
		if fps > 0 {
			a.frameInterval = time.Second / time.Duration(fps)
		}
	}
}

// WithManualTicks disables the frame loop. The owner calls Update.
func WithManualTicks() Option {
	return func(a *Animator) { a.manual = true }
}

// WithClock overrides the wall clock used to compute frame deltas.
func WithClock(now func() time.Time) Option {
	return func(a *Animator) { a.now = now }
}

// WithRand sets the random source used for shake offsets.
func WithRand(r *rand.Rand) Option {
	return func(a *Animator) { a.rand = r }
}

// NewAnimator creates an animator.
func NewAnimator(logger *slog.Logger, opts ...Option) *Animator {
	if logger == nil {
		logger = slog.Default()
	}

	a := &Animator{
		logger:        logger,
		tasks:         make(map[taskKey]*Task),
		frameInterval: time.Second / DefaultFrameRate,
		now:           time.Now,
		frameHandlers: make(map[int]FrameHandler),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.rand == nil {
		a.rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return a
}

// Schedule starts a tween on (target, ch). A task already running on the
// same pair is cancelled first and never completes.
func (a *Animator) Schedule(target Target, ch Channel, tw Tween, listener Listener) *Task {
	task := &Task{
		target:   target,
		channel:  ch,
		tween:    tw,
		listener: listener,
	}

	a.mu.Lock()
	replaced := a.removeLocked(taskKey{target, ch})
	a.tasks[taskKey{target, ch}] = task
	a.order = append(a.order, task)
	a.startLoopLocked()
	a.mu.Unlock()

	if replaced != nil {
		replaced.notify(EventCancelled)
	}
	return task
}

// Cancel stops the task on (target, ch), if any. It reports whether a task
// was cancelled. Once Cancel returns the task can no longer complete.
func (a *Animator) Cancel(target Target, ch Channel) bool {
	a.mu.Lock()
	task := a.removeLocked(taskKey{target, ch})
	a.mu.Unlock()

	if task == nil {
		return false
	}
	task.notify(EventCancelled)
	return true
}

// CancelAll cancels every channel of target.
func (a *Animator) CancelAll(target Target) {
	for _, ch := range []Channel{ChannelMove, ChannelShake, ChannelProgress} {
		a.Cancel(target, ch)
	}
}

// removeLocked unlinks the task on key and marks it cancelled.
func (a *Animator) removeLocked(key taskKey) *Task {
	task, ok := a.tasks[key]
	if !ok {
		return nil
	}
	delete(a.tasks, key)
	for i, t := range a.order {
		if t == task {
			a.order = append(a.order[:i], a.order[i+1:]...)
			break
		}
	}
	task.setState(StateCancelled)
	return task
}

// Active reports whether a task is scheduled or running on (target, ch).
func (a *Animator) Active(target Target, ch Channel) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.tasks[taskKey{target, ch}]
	return ok
}

// Len returns the number of active tasks.
func (a *Animator) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.order)
}

// Running reports whether the frame loop goroutine is active.
func (a *Animator) Running() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.running
}

// AddFrameHandler registers a handler run after every frame and returns a
// token for RemoveFrameHandler.
func (a *Animator) AddFrameHandler(h FrameHandler) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nextHandler++
	a.frameHandlers[a.nextHandler] = h
	return a.nextHandler
}

// RemoveFrameHandler unregisters a frame handler.
func (a *Animator) RemoveFrameHandler(id int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.frameHandlers, id)
}

// SetFrameRate changes the frame rate. It takes effect the next time the
// frame loop starts.
func (a *Animator) SetFrameRate(fps int) {
	if fps <= 0 {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.frameInterval = time.Second / time.Duration(fps)
}

// FrameRate returns the configured frames per second.
func (a *Animator) FrameRate() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return int(time.Second / a.frameInterval)
}

// SetIdleHandler sets a callback run when the frame loop stops because no
// tasks remain.
func (a *Animator) SetIdleHandler(fn func()) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onIdle = fn
}

// Update advances every task by delta, delivers completion events and then
// runs the frame handlers.
func (a *Animator) Update(delta time.Duration) {
	a.mu.Lock()
	var completed []*Task
	live := make([]*Task, 0, len(a.order))
	for _, task := range a.order {
		if task.step(delta) {
			task.setState(StateCompleted)
			delete(a.tasks, taskKey{task.target, task.channel})
			completed = append(completed, task)
			continue
		}
		live = append(live, task)
	}
	a.order = live

	handlers := make([]FrameHandler, 0, len(a.frameHandlers))
	for _, h := range a.frameHandlers {
		handlers = append(handlers, h)
	}
	a.mu.Unlock()

	for _, task := range completed {
		task.notify(EventComplete)
	}
	for _, h := range handlers {
		h(delta)
	}
}

// Shake schedules an auto-reversing oscillation around the target's current
// X/Y position. The repeat count is always odd so the target ends where it
// started.
func (a *Animator) Shake(target Target, amplitude int, duration time.Duration, listener Listener) *Task {
	a.mu.Lock()
	dx := a.shakeOffsetLocked(amplitude)
	dy := a.shakeOffsetLocked(amplitude)
	a.mu.Unlock()

	return a.Schedule(target, ChannelShake, Tween{
		To:          []float64{float64(dx), float64(dy)},
		Relative:    true,
		Duration:    ShakeLeg,
		Easing:      Linear,
		Repeat:      ShakeRepeatCount(int(duration.Milliseconds())),
		AutoReverse: true,
	}, listener)
}

// shakeOffsetLocked returns a random displacement of roughly amplitude/4
// pixels with a random sign. It is never zero.
func (a *Animator) shakeOffsetLocked(amplitude int) int {
	if amplitude < 0 {
		amplitude = -amplitude
	}
	offset := (a.rand.IntN((amplitude<<2)+1) - amplitude) >> 2

	floor := max(amplitude>>2, 1)
	if offset < 0 {
		return offset - floor
	}
	return offset + floor
}

// ShakeRepeatCount returns the number of extra legs for a shake lasting
// durationMs. The count is forced odd so the motion returns to its origin.
func ShakeRepeatCount(durationMs int) int {
	count := durationMs / int(ShakeLeg/time.Millisecond)
	if count&1 == 0 {
		count++
	}
	return count
}

// Stop terminates the frame loop and prevents it from starting again.
// Pending tasks are left in place and can still be advanced with Update.
func (a *Animator) Stop() {
	a.mu.Lock()
	if a.stopped {
		a.mu.Unlock()
		return
	}
	a.stopped = true
	running := a.running
	stopCh, doneCh := a.stopCh, a.doneCh
	a.mu.Unlock()

	if running {
		close(stopCh)
		<-doneCh
	}
	a.logger.Debug("animator stopped")
}

// startLoopLocked lazily starts the frame loop.
func (a *Animator) startLoopLocked() {
	if a.manual || a.running || a.stopped {
		return
	}
	a.running = true
	a.stopCh = make(chan struct{})
	a.doneCh = make(chan struct{})

	go a.loop(a.stopCh, a.doneCh, a.frameInterval)
	a.logger.Debug("animation frame loop started", "interval", a.frameInterval)
}

// loop ticks until no tasks remain or Stop is called.
func (a *Animator) loop(stopCh, doneCh chan struct{}, interval time.Duration) {
	defer close(doneCh)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := a.now()
	for {
		select {
		case <-stopCh:
			a.mu.Lock()
			a.running = false
			a.mu.Unlock()
			return
		case <-ticker.C:
			now := a.now()
			delta := now.Sub(last)
			last = now

			a.Update(delta)

			a.mu.Lock()
			if len(a.order) > 0 {
				a.mu.Unlock()
				continue
			}
			a.running = false
			onIdle := a.onIdle
			a.mu.Unlock()

			a.logger.Debug("animation frame loop idle")
			if onIdle != nil {
				onIdle()
			}
			return
		}
	}
}
