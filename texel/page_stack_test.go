// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: texel/page_stack_test.go
// Summary: Exercises page registration, navigation and cross-fades.

package texel

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var epoch = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

type pageHarness struct {
	stack *PageStack
	sched *Scheduler
	anim  *Animator
	scene *Scene
}

func newPageHarness(t *testing.T, names ...string) *pageHarness {
	t.Helper()
	h := &pageHarness{
		sched: NewScheduler(epoch),
		anim:  NewAnimator(),
		scene: NewScene(),
	}
	h.stack = NewPageStack(h.scene, h.sched, h.anim, zap.NewNop())
	for _, n := range names {
		require.NoError(t, h.stack.Register(NewPage(n)))
	}
	return h
}

// at runs the scheduler and animator the way the frame driver does.
func (h *pageHarness) at(d time.Duration) {
	now := epoch.Add(d)
	h.sched.Advance(now)
	h.anim.Tick(now)
}

func (h *pageHarness) page(t *testing.T, name string) *Page {
	t.Helper()
	p, ok := h.stack.Page(name)
	require.True(t, ok, "page %q", name)
	return p
}

func TestPageStackFirstRegisteredIsActive(t *testing.T) {
	h := newPageHarness(t, "lockScreen", "login", "home")

	assert.Equal(t, "lockScreen", h.stack.Active())
	assert.Empty(t, h.stack.Previous())
	assert.True(t, h.page(t, "lockScreen").Visible())
	assert.False(t, h.page(t, "login").Visible())
	assert.False(t, h.page(t, "home").Visible())
	assert.Equal(t, []string{"lockScreen", "login", "home"}, h.stack.Names())
}

func TestPageStackDuplicateRegister(t *testing.T) {
	h := newPageHarness(t, "home")
	err := h.stack.Register(NewPage("home"))
	assert.ErrorIs(t, err, ErrPageExists)
	assert.Len(t, h.stack.Names(), 1)
}

func TestPageStackSwitchTo(t *testing.T) {
	h := newPageHarness(t, "a", "b")

	require.NoError(t, h.stack.SwitchTo("b"))
	assert.Equal(t, "b", h.stack.Active())
	assert.Equal(t, "a", h.stack.Previous())
	assert.False(t, h.page(t, "a").Visible())
	assert.True(t, h.page(t, "b").Visible())
}

func TestPageStackSwitchToUnknownIsNoop(t *testing.T) {
	h := newPageHarness(t, "a", "b")
	require.NoError(t, h.stack.SwitchTo("b"))

	err := h.stack.SwitchTo("nope")
	assert.ErrorIs(t, err, ErrPageNotFound)
	assert.Equal(t, "b", h.stack.Active())
	assert.Equal(t, "a", h.stack.Previous())
	assert.True(t, h.page(t, "b").Visible())
}

func TestPageStackGoBackIsSingleLevel(t *testing.T) {
	h := newPageHarness(t, "a", "b", "c")
	require.NoError(t, h.stack.SwitchTo("b"))
	require.NoError(t, h.stack.SwitchTo("c"))

	require.NoError(t, h.stack.GoBack())
	assert.Equal(t, "b", h.stack.Active())
	assert.Empty(t, h.stack.Previous())
	assert.True(t, h.page(t, "b").Visible())
	assert.False(t, h.page(t, "c").Visible())

	assert.ErrorIs(t, h.stack.GoBack(), ErrNoPrevious)
	assert.Equal(t, "b", h.stack.Active())
}

func TestPageStackGoBackWithoutPrevious(t *testing.T) {
	h := newPageHarness(t, "a")
	assert.ErrorIs(t, h.stack.GoBack(), ErrNoPrevious)
	assert.Equal(t, "a", h.stack.Active())
}

func TestPageStackFadeTimeline(t *testing.T) {
	h := newPageHarness(t, "lockScreen", "login")
	lock, login := h.page(t, "lockScreen"), h.page(t, "login")
	d := 200 * time.Millisecond

	require.NoError(t, h.stack.FadeTo("login", d))
	assert.Equal(t, TransitionFadingIn, h.stack.State())
	assert.True(t, login.Visible())
	assert.True(t, login.Root.Transparent())
	assert.True(t, lock.Root.Transparent())
	assert.InDelta(t, 0, login.Alpha(), 1e-9)
	assert.Equal(t, "lockScreen", h.stack.Active())

	h.at(d / 2)
	assert.InDelta(t, 0.5, login.Alpha(), 1e-9)
	assert.InDelta(t, 1, lock.Alpha(), 1e-9)
	assert.Equal(t, "lockScreen", h.stack.Active())

	h.at(d)
	assert.Equal(t, TransitionFadingOut, h.stack.State())
	assert.Equal(t, "login", h.stack.Active())
	assert.Equal(t, "lockScreen", h.stack.Previous())
	assert.False(t, lock.Visible())
	assert.InDelta(t, 1, login.Alpha(), 1e-9)

	h.at(2 * d)
	assert.Equal(t, TransitionIdle, h.stack.State())
	assert.InDelta(t, 1, lock.Alpha(), 1e-9)
	assert.False(t, login.Root.Transparent())
	assert.False(t, lock.Root.Transparent())
	assert.Zero(t, h.sched.Pending())
}

func TestPageStackFadeUnknownIsNoop(t *testing.T) {
	h := newPageHarness(t, "a")
	assert.ErrorIs(t, h.stack.FadeTo("missing", time.Second), ErrPageNotFound)
	assert.Equal(t, TransitionIdle, h.stack.State())
	assert.Zero(t, h.sched.Pending())
}

func TestPageStackFadeQueuesWhileRunning(t *testing.T) {
	h := newPageHarness(t, "a", "b", "c", "d")
	dur := 100 * time.Millisecond

	require.NoError(t, h.stack.FadeTo("b", dur))
	require.NoError(t, h.stack.FadeTo("c", dur))
	require.NoError(t, h.stack.FadeTo("d", dur))
	assert.False(t, h.page(t, "d").Visible())

	h.at(2 * dur)
	assert.Equal(t, "b", h.stack.Active())
	assert.Equal(t, TransitionFadingIn, h.stack.State())
	assert.True(t, h.page(t, "d").Visible())
	assert.False(t, h.page(t, "c").Visible())

	h.at(4 * dur)
	assert.Equal(t, TransitionIdle, h.stack.State())
	assert.Equal(t, "d", h.stack.Active())
	assert.Equal(t, "b", h.stack.Previous())
}

func TestPageStackSwitchCancelsFade(t *testing.T) {
	h := newPageHarness(t, "a", "b", "c")
	require.NoError(t, h.stack.FadeTo("b", time.Second))

	require.NoError(t, h.stack.SwitchTo("c"))
	assert.Equal(t, TransitionIdle, h.stack.State())
	assert.Zero(t, h.sched.Pending())
	assert.Equal(t, "c", h.stack.Active())
	assert.Equal(t, "a", h.stack.Previous())
	assert.False(t, h.page(t, "b").Visible())
	assert.InDelta(t, 1, h.page(t, "b").Alpha(), 1e-9)

	h.at(3 * time.Second)
	assert.Equal(t, "c", h.stack.Active())
}

func TestPageStackFadeToActiveIsNoop(t *testing.T) {
	h := newPageHarness(t, "a", "b")
	require.NoError(t, h.stack.FadeTo("a", time.Second))
	assert.Equal(t, TransitionIdle, h.stack.State())
	assert.Zero(t, h.sched.Pending())
}

func TestPageStackRemoveIsRecursive(t *testing.T) {
	h := newPageHarness(t, "home", "settings")
	require.NoError(t, h.stack.RegisterChild(NewPage("display"), "settings"))
	require.NoError(t, h.stack.RegisterChild(NewPage("colors"), "display"))
	display := h.page(t, "display")

	require.NoError(t, h.stack.Remove("settings"))
	for _, n := range []string{"settings", "display", "colors"} {
		_, ok := h.stack.Page(n)
		assert.False(t, ok, n)
	}
	assert.True(t, display.Root.IsEmpty())
	assert.Equal(t, []string{"home"}, h.stack.Names())
	assert.Equal(t, "home", h.stack.Active())
}

func TestPageStackRemoveActiveFallsBack(t *testing.T) {
	h := newPageHarness(t, "a", "b")
	require.NoError(t, h.stack.SwitchTo("b"))

	require.NoError(t, h.stack.Remove("b"))
	assert.Equal(t, "a", h.stack.Active())
	assert.Empty(t, h.stack.Previous())
	assert.True(t, h.page(t, "a").Visible())
}

func TestPageStackReparentRejectsCycle(t *testing.T) {
	h := newPageHarness(t, "a", "b")
	require.NoError(t, h.stack.RegisterChild(NewPage("c"), "b"))

	assert.ErrorIs(t, h.stack.Reparent("b", "c"), ErrPageCycle)
	assert.ErrorIs(t, h.stack.Reparent("b", "b"), ErrPageCycle)
	assert.Equal(t, "b", h.page(t, "c").Parent())

	require.NoError(t, h.stack.Reparent("c", "a"))
	assert.Equal(t, "a", h.page(t, "c").Parent())
	assert.Equal(t, []string{"c"}, h.page(t, "a").Children())
	assert.Empty(t, h.page(t, "b").Children())
}

func TestPageChildHiddenWithParent(t *testing.T) {
	h := newPageHarness(t, "a", "b")
	require.NoError(t, h.stack.RegisterChild(NewPage("b1"), "b"))
	b1 := h.page(t, "b1")
	b1.Show()
	assert.True(t, b1.Root.IsHidden(), "parent page b is hidden")

	require.NoError(t, h.stack.SwitchTo("b"))
	assert.False(t, b1.Root.IsHidden())
}
