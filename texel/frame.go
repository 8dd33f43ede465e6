// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: texel/frame.go
// Summary: Single-goroutine frame loop driving input, hover polling, tasks,
// deferred actions, ramps and rendering.
// Usage: The shell builds one FrameDriver and calls Run; tests call Step with
// synthetic clocks.

package texel

import (
	"context"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"
)

// DefaultFrameRate is used when the configured rate is not positive.
const DefaultFrameRate = 60

// FrameTask runs once per frame after hover polling.
type FrameTask func(now time.Time, p Pointer)

// FrameDriver owns the frame loop. Everything except Post, PushEvent and
// Stop must be called from the loop goroutine.
type FrameDriver struct {
	log      *zap.Logger
	sched    *Scheduler
	anim     *Animator
	hits     *HitTestRegistry
	tasks    []FrameTask
	input    InputHandler
	renderer Renderer
	pointer  Pointer
	interval time.Duration

	mu     sync.Mutex
	posted []func()

	events   chan tcell.Event
	stop     chan struct{}
	stopOnce sync.Once
}

// NewFrameDriver creates a driver ticking fps times per second.
func NewFrameDriver(sched *Scheduler, anim *Animator, hits *HitTestRegistry, fps int, log *zap.Logger) *FrameDriver {
	if log == nil {
		log = zap.NewNop()
	}
	if fps <= 0 {
		fps = DefaultFrameRate
	}
	return &FrameDriver{
		log:      log,
		sched:    sched,
		anim:     anim,
		hits:     hits,
		interval: time.Second / time.Duration(fps),
		events:   make(chan tcell.Event, 256),
		stop:     make(chan struct{}),
	}
}

// Interval returns the time between frames.
func (f *FrameDriver) Interval() time.Duration { return f.interval }

// AddTask appends a per-frame task. Tasks run in registration order.
func (f *FrameDriver) AddTask(task FrameTask) {
	f.tasks = append(f.tasks, task)
}

// SetInput installs the terminal event consumer.
func (f *FrameDriver) SetInput(h InputHandler) { f.input = h }

// SetRenderer installs the frame renderer.
func (f *FrameDriver) SetRenderer(r Renderer) { f.renderer = r }

// SetPointer overrides the pointer sample used for the next frames.
func (f *FrameDriver) SetPointer(p Pointer) { f.pointer = p }

// Pointer returns the current pointer sample.
func (f *FrameDriver) Pointer() Pointer { return f.pointer }

// Post queues fn to run at the start of the next frame. Safe for concurrent use.
func (f *FrameDriver) Post(fn func()) {
	if fn == nil {
		return
	}
	f.mu.Lock()
	f.posted = append(f.posted, fn)
	f.mu.Unlock()
}

// PushEvent hands a terminal event to the loop. It blocks while the queue is
// full and gives up once the driver is stopped.
func (f *FrameDriver) PushEvent(ev tcell.Event) {
	select {
	case f.events <- ev:
	case <-f.stop:
	}
}

// PollInput starts a goroutine feeding screen events into the loop. It ends
// when the screen is finalized.
func (f *FrameDriver) PollInput(screen ScreenDriver) {
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			f.PushEvent(ev)
		}
	}()
}

func (f *FrameDriver) drainPosted() {
	f.mu.Lock()
	fns := f.posted
	f.posted = nil
	f.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

func (f *FrameDriver) drainEvents() {
	for {
		select {
		case ev := <-f.events:
			if f.input != nil {
				f.input.HandleEvent(ev)
				f.pointer = f.input.Pointer()
			}
		default:
			return
		}
	}
}

// Step runs one frame at now.
func (f *FrameDriver) Step(now time.Time) {
	f.sched.setNow(now)
	f.drainPosted()
	f.drainEvents()
	f.hits.Poll(f.pointer)
	for _, task := range f.tasks {
		task(now, f.pointer)
	}
	f.sched.Advance(now)
	f.anim.Tick(now)
	if f.renderer != nil {
		f.renderer.Render()
	}
}

// Run steps frames until ctx is done or Stop is called.
func (f *FrameDriver) Run(ctx context.Context) error {
	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()
	f.log.Info("frame loop started", zap.Duration("interval", f.interval))
	f.Step(time.Now())
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-f.stop:
			f.log.Info("frame loop stopped")
			return nil
		case now := <-ticker.C:
			f.Step(now)
		}
	}
}

// Stop ends Run. Safe for concurrent use and idempotent.
func (f *FrameDriver) Stop() {
	f.stopOnce.Do(func() { close(f.stop) })
}
