// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: texel/window_stack_test.go
// Summary: Exercises floating window focus, defocus policy, closing and drag.

package texel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestWindows() (*WindowStack, *Scene) {
	scene := NewScene()
	return NewWindowStack(scene.Windows, zap.NewNop()), scene
}

func TestWindowOpenFocusesNewest(t *testing.T) {
	ws, scene := newTestWindows()
	a := ws.Open("A", Vec2{}, Vec2{400, 300}, ClassApplication)
	b := ws.Open("B", Vec2{}, Vec2{400, 300}, ClassApplication)

	assert.Equal(t, WindowID(1), a)
	assert.Equal(t, WindowID(2), b)
	assert.Equal(t, b, ws.Active())
	assert.Equal(t, a, ws.Previous())
	assert.Equal(t, 2, ws.Len())

	wa, _ := ws.Window(a)
	wb, _ := ws.Window(b)
	assert.Greater(t, wb.Bin(), wa.Bin())

	children := scene.Windows.Children()
	require.Len(t, children, 2)
	assert.Same(t, wb.Root, children[1])
}

func TestWindowFocusRaises(t *testing.T) {
	ws, scene := newTestWindows()
	a := ws.Open("A", Vec2{}, Vec2{400, 300}, ClassApplication)
	b := ws.Open("B", Vec2{}, Vec2{400, 300}, ClassApplication)

	require.NoError(t, ws.Focus(a))
	assert.Equal(t, a, ws.Active())
	assert.Equal(t, b, ws.Previous())

	ordered := ws.Ordered()
	require.Len(t, ordered, 2)
	assert.Equal(t, a, ordered[1].ID())
	assert.Same(t, ordered[1].Root, scene.Windows.Children()[1])
}

func TestWindowFocusUnknownIsNoop(t *testing.T) {
	ws, _ := newTestWindows()
	a := ws.Open("A", Vec2{}, Vec2{400, 300}, ClassApplication)

	assert.ErrorIs(t, ws.Focus(99), ErrWindowNotFound)
	assert.Equal(t, a, ws.Active())
}

func TestSystemWindowClosesOnDefocus(t *testing.T) {
	ws, _ := newTestWindows()
	sys := ws.Open("Info", Vec2{}, Vec2{300, 200}, ClassSystem)
	sw, _ := ws.Window(sys)
	app := ws.Open("App", Vec2{}, Vec2{300, 200}, ClassApplication)

	_, open := ws.Window(sys)
	assert.False(t, open)
	assert.True(t, sw.Root.IsEmpty())
	assert.Equal(t, app, ws.Active())
	assert.Equal(t, 1, ws.Len())
}

func TestApplicationWindowSurvivesDefocus(t *testing.T) {
	ws, _ := newTestWindows()
	app := ws.Open("App", Vec2{}, Vec2{300, 200}, ClassApplication)
	sys := ws.Open("Info", Vec2{}, Vec2{300, 200}, ClassSystem)

	_, open := ws.Window(app)
	assert.True(t, open)
	assert.Equal(t, sys, ws.Active())

	require.NoError(t, ws.Focus(app))
	_, open = ws.Window(sys)
	assert.False(t, open)
	assert.Equal(t, app, ws.Active())
}

func TestCloseActiveRefocusesPrevious(t *testing.T) {
	ws, _ := newTestWindows()
	a := ws.Open("A", Vec2{}, Vec2{300, 200}, ClassApplication)
	b := ws.Open("B", Vec2{}, Vec2{300, 200}, ClassApplication)

	require.NoError(t, ws.Close(b))
	assert.Equal(t, a, ws.Active())
	assert.Equal(t, 1, ws.Len())
}

func TestCloseDoesNotResurrectClosedPrevious(t *testing.T) {
	ws, _ := newTestWindows()
	a := ws.Open("A", Vec2{}, Vec2{300, 200}, ClassApplication)
	b := ws.Open("B", Vec2{}, Vec2{300, 200}, ClassApplication)

	require.NoError(t, ws.Close(a))
	require.NoError(t, ws.Close(b))
	assert.Equal(t, WindowID(0), ws.Active())
	_, ok := ws.Window(a)
	assert.False(t, ok)
	assert.Zero(t, ws.Len())
}

func TestCloseUnknownIsNoop(t *testing.T) {
	ws, _ := newTestWindows()
	a := ws.Open("A", Vec2{}, Vec2{300, 200}, ClassApplication)
	assert.ErrorIs(t, ws.Close(42), ErrWindowNotFound)
	assert.Equal(t, a, ws.Active())
	assert.Equal(t, 1, ws.Len())
}

func TestWindowIdentitiesNeverReused(t *testing.T) {
	ws, _ := newTestWindows()
	a := ws.Open("A", Vec2{}, Vec2{300, 200}, ClassApplication)
	require.NoError(t, ws.Close(a))
	b := ws.Open("B", Vec2{}, Vec2{300, 200}, ClassApplication)
	assert.Greater(t, b, a)
}

func TestWindowFrameSize(t *testing.T) {
	ws, _ := newTestWindows()
	id := ws.Open("Full", Vec2{}, Vec2{DesignWidth, DesignHeight}, ClassApplication)
	w, _ := ws.Window(id)

	b := w.Root.Bounds()
	assert.InDelta(t, AspectRatio, b.XMax, 1e-9)
	assert.InDelta(t, -AspectRatio, b.XMin, 1e-9)
	assert.InDelta(t, 1, b.YMax, 1e-9)

	// A design-resolution window covers the whole display.
	db := w.Root.DisplayBox()
	assert.InDelta(t, -1, db.XMin, 1e-9)
	assert.InDelta(t, 1, db.XMax, 1e-9)
}

func TestWindowDragFollowsPointer(t *testing.T) {
	ws, _ := newTestWindows()
	a := ws.Open("A", Vec2{}, Vec2{300, 200}, ClassApplication)
	b := ws.Open("B", Vec2{}, Vec2{300, 200}, ClassApplication)
	wa, _ := ws.Window(a)

	require.NoError(t, ws.BeginDrag(a, Vec2{0, 0}))
	assert.Equal(t, a, ws.Active())
	assert.Equal(t, b, ws.Previous())
	assert.True(t, wa.Dragging())

	ws.Update(Pointer{Pos: Vec2{0.1, 0.2}, Present: true})
	assert.InDelta(t, 0.1*AspectRatio, wa.Position().X, 1e-9)
	assert.InDelta(t, 0.2, wa.Position().Y, 1e-9)

	ws.Update(Pointer{Pos: Vec2{0.1, 0.3}, Present: true})
	assert.InDelta(t, 0.3, wa.Position().Y, 1e-9)

	ws.EndAllDrags()
	assert.False(t, wa.Dragging())
	ws.Update(Pointer{Pos: Vec2{0.5, 0.5}, Present: true})
	assert.InDelta(t, 0.3, wa.Position().Y, 1e-9)
}

func TestWindowDragIgnoresMissingPointer(t *testing.T) {
	ws, _ := newTestWindows()
	a := ws.Open("A", Vec2{}, Vec2{300, 200}, ClassApplication)
	wa, _ := ws.Window(a)
	require.NoError(t, ws.BeginDrag(a, Vec2{0, 0}))

	ws.Update(Pointer{Pos: Vec2{0.4, 0.4}})
	assert.Equal(t, Vec2{}, wa.Position())
}

func TestWindowTopmostAtParts(t *testing.T) {
	ws, _ := newTestWindows()
	id := ws.Open("A", Vec2{}, Vec2{640, 360}, ClassApplication)

	w, part := ws.TopmostAt(Vec2{0.47, 0.46})
	require.NotNil(t, w)
	assert.Equal(t, id, w.ID())
	assert.Equal(t, PartCloseButton, part)

	_, part = ws.TopmostAt(Vec2{0, 0.46})
	assert.Equal(t, PartTitleBar, part)

	_, part = ws.TopmostAt(Vec2{0, 0})
	assert.Equal(t, PartBody, part)

	w, part = ws.TopmostAt(Vec2{0.9, 0})
	assert.Nil(t, w)
	assert.Equal(t, PartNone, part)
}

func TestWindowTopmostPrefersHighestBin(t *testing.T) {
	ws, _ := newTestWindows()
	a := ws.Open("A", Vec2{}, Vec2{640, 360}, ClassApplication)
	b := ws.Open("B", Vec2{}, Vec2{640, 360}, ClassApplication)

	w, _ := ws.TopmostAt(Vec2{0, 0})
	assert.Equal(t, b, w.ID())

	require.NoError(t, ws.Focus(a))
	w, _ = ws.TopmostAt(Vec2{0, 0})
	assert.Equal(t, a, w.ID())
}

func TestSystemWindowHasNoChrome(t *testing.T) {
	ws, _ := newTestWindows()
	id := ws.Open("Info", Vec2{}, Vec2{640, 360}, ClassSystem)
	w, _ := ws.Window(id)
	assert.Nil(t, w.TitleBar)
	assert.Nil(t, w.CloseButton)

	_, part := ws.TopmostAt(Vec2{0, 0.46})
	assert.Equal(t, PartBody, part)
}
