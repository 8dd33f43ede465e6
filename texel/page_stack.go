// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: texel/page_stack.go
// Summary: Registry of full-screen pages with instant, faded and back navigation.
// Usage: Owned by the shell. Fade transitions are a small state machine driven
// by the frame loop's scheduler and animator.

package texel

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// TransitionState is the phase of the page cross-fade machine.
type TransitionState int

const (
	TransitionIdle TransitionState = iota
	TransitionFadingIn
	TransitionFadingOut
)

func (s TransitionState) String() string {
	switch s {
	case TransitionIdle:
		return "idle"
	case TransitionFadingIn:
		return "fading-in"
	case TransitionFadingOut:
		return "fading-out"
	default:
		return fmt.Sprintf("TransitionState(%d)", int(s))
	}
}

type fadeRequest struct {
	name     string
	duration time.Duration
}

// PageStack maps names to pages and tracks the active and previous page by
// name. It is driven from the frame loop only.
type PageStack struct {
	log   *zap.Logger
	scene *Scene
	sched *Scheduler
	anim  *Animator

	pages    map[string]*Page
	order    []string
	active   string
	previous string

	state    TransitionState
	incoming string
	outgoing string
	timers   []TimerID
	queued   *fadeRequest
}

// NewPageStack creates an empty stack mounting page roots into scene.
func NewPageStack(scene *Scene, sched *Scheduler, anim *Animator, log *zap.Logger) *PageStack {
	if log == nil {
		log = zap.NewNop()
	}
	return &PageStack{
		log:   log,
		scene: scene,
		sched: sched,
		anim:  anim,
		pages: make(map[string]*Page),
	}
}

// Register adds a top-level page. The first page registered becomes active
// and visible; every later page starts hidden.
func (ps *PageStack) Register(page *Page) error {
	return ps.RegisterChild(page, "")
}

// RegisterChild adds a page nested under parent. An empty parent registers a
// top-level page.
func (ps *PageStack) RegisterChild(page *Page, parent string) error {
	if page == nil {
		return fmt.Errorf("register page: nil page")
	}
	if _, exists := ps.pages[page.name]; exists {
		ps.log.Warn("page already exists", zap.String("page", page.name))
		return fmt.Errorf("register %q: %w", page.name, ErrPageExists)
	}
	if parent != "" {
		if _, ok := ps.pages[parent]; !ok {
			ps.log.Warn("parent page not found", zap.String("page", page.name), zap.String("parent", parent))
			return fmt.Errorf("register %q under %q: %w", page.name, parent, ErrPageNotFound)
		}
	}

	ps.pages[page.name] = page
	ps.order = append(ps.order, page.name)
	ps.attach(page, parent)

	if ps.active == "" {
		ps.active = page.name
		page.Show()
	} else {
		page.Hide()
	}
	ps.log.Debug("page registered", zap.String("page", page.name), zap.String("parent", parent))
	return nil
}

func (ps *PageStack) attach(page *Page, parent string) {
	page.parent = parent
	if parent == "" {
		ps.scene.Pages.AddChild(page.Root)
		ps.scene.Overlays.AddChild(page.Overlay)
		return
	}
	pp := ps.pages[parent]
	pp.children = append(pp.children, page.name)
	pp.Root.AddChild(page.Root)
	pp.Overlay.AddChild(page.Overlay)
}

func (ps *PageStack) detach(page *Page) {
	if page.parent != "" {
		if pp, ok := ps.pages[page.parent]; ok {
			pp.removeChild(page.name)
		}
	}
	page.parent = ""
	page.Root.Detach()
	page.Overlay.Detach()
}

// Page looks up a page by name.
func (ps *PageStack) Page(name string) (*Page, bool) {
	p, ok := ps.pages[name]
	return p, ok
}

// Active returns the active page name, empty before any registration.
func (ps *PageStack) Active() string { return ps.active }

// Previous returns the page to return to with GoBack, possibly empty.
func (ps *PageStack) Previous() string { return ps.previous }

// State returns the transition phase.
func (ps *PageStack) State() TransitionState { return ps.state }

// Names returns page names in registration order.
func (ps *PageStack) Names() []string {
	out := make([]string, len(ps.order))
	copy(out, ps.order)
	return out
}

// SwitchTo makes name active immediately, cancelling any running fade.
func (ps *PageStack) SwitchTo(name string) error {
	target, ok := ps.pages[name]
	if !ok {
		ps.log.Warn("page not found", zap.String("page", name), zap.String("op", "switch"))
		return fmt.Errorf("switch to %q: %w", name, ErrPageNotFound)
	}
	ps.cancelTransition()
	if name == ps.active {
		target.Show()
		return nil
	}
	if cur, ok := ps.pages[ps.active]; ok {
		cur.Hide()
	}
	target.SetAlpha(1)
	target.Show()
	ps.previous = ps.active
	ps.active = name
	ps.log.Debug("page switched", zap.String("active", ps.active), zap.String("previous", ps.previous))
	return nil
}

// FadeTo cross-fades to name over d. The incoming page ramps in over d; at d
// the outgoing page starts ramping out and, independently, the active and
// previous pointers are committed and the outgoing page is hidden. The
// machine returns to idle at 2d. A request made while a fade is running is
// queued (latest wins) and started when the machine is idle again.
func (ps *PageStack) FadeTo(name string, d time.Duration) error {
	target, ok := ps.pages[name]
	if !ok {
		ps.log.Warn("page not found", zap.String("page", name), zap.String("op", "fade"))
		return fmt.Errorf("fade to %q: %w", name, ErrPageNotFound)
	}
	if ps.state != TransitionIdle {
		ps.queued = &fadeRequest{name: name, duration: d}
		ps.log.Debug("fade queued", zap.String("page", name), zap.Stringer("state", ps.state))
		return nil
	}
	if name == ps.active {
		return nil
	}
	if d <= 0 {
		return ps.SwitchTo(name)
	}

	outgoing := ps.pages[ps.active]
	outgoing.SetTransparency(true)
	target.SetTransparency(true)
	target.Root.Raise()
	target.Overlay.Raise()

	start := ps.sched.Now()
	target.Show()
	ps.anim.Start(target, target.SetAlpha, 0, 1, start, d)

	ps.state = TransitionFadingIn
	ps.incoming = name
	ps.outgoing = outgoing.name

	fadeOut := ps.sched.After(d, "fadeToPage", func(now time.Time) {
		ps.state = TransitionFadingOut
		ps.anim.Start(outgoing, outgoing.SetAlpha, 1, 0, now, d)
	})
	commit := ps.sched.After(d, "fadeToPage_final", func(time.Time) {
		ps.previous = outgoing.name
		ps.active = name
		outgoing.Hide()
		ps.log.Debug("fade committed", zap.String("active", ps.active), zap.String("previous", ps.previous))
	})
	settle := ps.sched.After(2*d, "fadeToPage_settle", func(time.Time) {
		ps.finishTransition()
	})
	ps.timers = []TimerID{fadeOut, commit, settle}
	return nil
}

func (ps *PageStack) finishTransition() {
	ps.anim.Cancel(ps.pages[ps.incoming])
	ps.anim.Cancel(ps.pages[ps.outgoing])
	if p, ok := ps.pages[ps.incoming]; ok {
		p.SetAlpha(1)
		p.SetTransparency(false)
	}
	if p, ok := ps.pages[ps.outgoing]; ok {
		p.SetAlpha(1)
		p.SetTransparency(false)
	}
	ps.state = TransitionIdle
	ps.incoming, ps.outgoing = "", ""
	ps.timers = nil

	if q := ps.queued; q != nil {
		ps.queued = nil
		if err := ps.FadeTo(q.name, q.duration); err != nil {
			ps.log.Warn("queued fade failed", zap.Error(err))
		}
	}
}

// cancelTransition aborts a running fade, leaving the committed pointers as
// they are and hiding an incoming page that was never committed.
func (ps *PageStack) cancelTransition() {
	if ps.state == TransitionIdle {
		return
	}
	for _, id := range ps.timers {
		ps.sched.Cancel(id)
	}
	if p, ok := ps.pages[ps.incoming]; ok && ps.incoming != ps.active {
		p.Hide()
	}
	if p, ok := ps.pages[ps.outgoing]; ok && ps.outgoing != ps.active {
		p.Hide()
	}
	ps.queued = nil
	ps.log.Debug("fade cancelled", zap.String("incoming", ps.incoming))
	ps.finishTransition()
}

// GoBack returns to the previous page. Back navigation is a single level: the
// previous slot is cleared afterwards.
func (ps *PageStack) GoBack() error {
	if ps.previous == "" {
		ps.log.Info("no previous page")
		return ErrNoPrevious
	}
	ps.cancelTransition()
	prev, ok := ps.pages[ps.previous]
	if !ok {
		ps.previous = ""
		return ErrNoPrevious
	}
	if cur, ok := ps.pages[ps.active]; ok {
		cur.Hide()
	}
	prev.SetAlpha(1)
	prev.Show()
	ps.active = ps.previous
	ps.previous = ""
	return nil
}

// Remove deletes a page and, first, all of its descendants.
func (ps *PageStack) Remove(name string) error {
	page, ok := ps.pages[name]
	if !ok {
		ps.log.Warn("page not found", zap.String("page", name), zap.String("op", "remove"))
		return fmt.Errorf("remove %q: %w", name, ErrPageNotFound)
	}
	ps.cancelTransition()
	for _, child := range page.Children() {
		if err := ps.Remove(child); err != nil {
			return err
		}
	}

	ps.detach(page)
	page.Hide()
	page.Root.Remove()
	page.Overlay.Remove()
	delete(ps.pages, name)
	for i, n := range ps.order {
		if n == name {
			ps.order = append(ps.order[:i], ps.order[i+1:]...)
			break
		}
	}

	if ps.previous == name {
		ps.previous = ""
	}
	if ps.active == name {
		ps.active = ps.previous
		ps.previous = ""
		if ps.active == "" && len(ps.order) > 0 {
			ps.active = ps.order[0]
		}
		if p, ok := ps.pages[ps.active]; ok {
			p.Show()
		}
	}
	return nil
}

// Reparent moves a page under a new parent; an empty parent makes it
// top-level. Moves that would make a page its own ancestor are rejected.
func (ps *PageStack) Reparent(name, parent string) error {
	page, ok := ps.pages[name]
	if !ok {
		return fmt.Errorf("reparent %q: %w", name, ErrPageNotFound)
	}
	if parent != "" {
		if _, ok := ps.pages[parent]; !ok {
			return fmt.Errorf("reparent %q under %q: %w", name, parent, ErrPageNotFound)
		}
		for cur := parent; cur != ""; cur = ps.pages[cur].parent {
			if cur == name {
				ps.log.Warn("page cycle rejected", zap.String("page", name), zap.String("parent", parent))
				return fmt.Errorf("reparent %q under %q: %w", name, parent, ErrPageCycle)
			}
		}
	}
	ps.detach(page)
	ps.attach(page, parent)
	return nil
}
