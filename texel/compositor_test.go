// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: texel/compositor_test.go
// Summary: Exercises cell mapping, alpha compositing and input routing.

package texel

import (
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newSimCompositor(t *testing.T) (*Compositor, *Scene, *WindowStack, tcell.SimulationScreen) {
	t.Helper()
	sim := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, sim.Init())
	sim.SetSize(80, 24)
	t.Cleanup(sim.Fini)

	scene := NewScene()
	ws := NewWindowStack(scene.Windows, zap.NewNop())
	return NewCompositor(NewTcellScreenDriver(sim), scene, ws, zap.NewNop()), scene, ws, sim
}

func cellBackground(sim tcell.SimulationScreen, x, y int) tcell.Color {
	_, _, style, _ := sim.GetContent(x, y)
	_, bg, _ := style.Decompose()
	return bg
}

func TestCompositorCellMapping(t *testing.T) {
	c, _, _, _ := newSimCompositor(t)

	p := c.CellToDisplay(0, 0)
	assert.InDelta(t, -1+1.0/80, p.X, 1e-9)
	assert.InDelta(t, 1-1.0/24, p.Y, 1e-9)

	x0, y0, x1, y1 := c.cellRect(Box{XMin: -1, XMax: 1, YMin: -1, YMax: 1})
	assert.Equal(t, [4]int{0, 0, 80, 24}, [4]int{x0, y0, x1, y1})

	x0, y0, x1, y1 = c.cellRect(Box{XMin: 0, XMax: 0.001, YMin: 0, YMax: 0.001})
	assert.Equal(t, 1, x1-x0)
	assert.Equal(t, 1, y1-y0)
}

func TestCompositorDrawsVisibleNodes(t *testing.T) {
	c, scene, _, sim := newSimCompositor(t)

	shown := NewNode("shown")
	shown.SetBounds(Box{XMin: -1, XMax: 0, YMin: -1, YMax: 1})
	shown.Visual.Fill = tcell.ColorRed
	scene.Overlays.AddChild(shown)

	hidden := NewNode("hidden")
	hidden.SetBounds(Box{XMin: 0, XMax: 1, YMin: -1, YMax: 1})
	hidden.Visual.Fill = tcell.ColorBlue
	hidden.Hide()
	scene.Overlays.AddChild(hidden)

	c.Render()
	assert.Equal(t, tcell.ColorRed, cellBackground(sim, 10, 10))
	assert.Equal(t, tcell.ColorBlack, cellBackground(sim, 60, 10))
}

func TestCompositorBlendsTransparentNodes(t *testing.T) {
	c, scene, _, sim := newSimCompositor(t)
	c.Background = tcell.NewRGBColor(0, 0, 0)

	n := NewNode("half")
	n.SetBounds(Box{XMin: -1, XMax: 1, YMin: -1, YMax: 1})
	n.Visual.Fill = tcell.NewRGBColor(200, 100, 50)
	n.SetAlpha(0.5)
	scene.Overlays.AddChild(n)

	c.Render()
	assert.Equal(t, tcell.NewRGBColor(200, 100, 50), cellBackground(sim, 40, 12), "opaque nodes ignore alpha")

	n.SetTransparency(true)
	c.Render()
	assert.Equal(t, tcell.NewRGBColor(100, 50, 25), cellBackground(sim, 40, 12))
}

func TestCompositorCentresText(t *testing.T) {
	c, scene, _, sim := newSimCompositor(t)
	label := NewNode("label")
	label.Visual.Text = "hi"
	scene.Overlays.AddChild(label)

	c.Render()
	r, _, _, _ := sim.GetContent(39, 12)
	assert.Equal(t, 'h', r)
	r, _, _, _ = sim.GetContent(40, 12)
	assert.Equal(t, 'i', r)
}

func TestCompositorClickRoutesToPageNode(t *testing.T) {
	c, scene, _, _ := newSimCompositor(t)
	clicked, secondary := 0, 0
	bg := NewNode("background")
	bg.SetBounds(Box{XMin: -AspectRatio, XMax: AspectRatio, YMin: -1, YMax: 1})
	bg.OnClick = func() { clicked++ }
	bg.OnSecondary = func() { secondary++ }
	scene.Pages.AddChild(bg)

	c.HandleEvent(tcell.NewEventMouse(10, 10, tcell.ButtonPrimary, tcell.ModNone))
	c.HandleEvent(tcell.NewEventMouse(10, 10, tcell.ButtonPrimary, tcell.ModNone))
	c.HandleEvent(tcell.NewEventMouse(10, 10, tcell.ButtonNone, tcell.ModNone))
	c.HandleEvent(tcell.NewEventMouse(10, 10, tcell.ButtonSecondary, tcell.ModNone))
	assert.Equal(t, 1, clicked, "held buttons do not repeat")
	assert.Equal(t, 1, secondary)

	bg.Hide()
	c.HandleEvent(tcell.NewEventMouse(10, 10, tcell.ButtonNone, tcell.ModNone))
	c.HandleEvent(tcell.NewEventMouse(10, 10, tcell.ButtonPrimary, tcell.ModNone))
	assert.Equal(t, 1, clicked)
}

func TestCompositorClickRoutesToWindows(t *testing.T) {
	c, scene, ws, _ := newSimCompositor(t)
	pageClicks := 0
	bg := NewNode("background")
	bg.SetBounds(Box{XMin: -AspectRatio, XMax: AspectRatio, YMin: -1, YMax: 1})
	bg.OnClick = func() { pageClicks++ }
	scene.Pages.AddChild(bg)

	id := ws.Open("A", Vec2{}, Vec2{640, 360}, ClassApplication)
	w, _ := ws.Window(id)

	// Title bar row: display y just below the top edge of the frame.
	c.HandleEvent(tcell.NewEventMouse(40, 6, tcell.ButtonPrimary, tcell.ModNone))
	assert.True(t, w.Dragging())
	c.HandleEvent(tcell.NewEventMouse(44, 6, tcell.ButtonPrimary, tcell.ModNone))
	ws.Update(c.Pointer())
	assert.InDelta(t, 4.0/40*AspectRatio, w.Position().X, 1e-9)

	c.HandleEvent(tcell.NewEventMouse(44, 6, tcell.ButtonNone, tcell.ModNone))
	assert.False(t, w.Dragging())
	assert.Zero(t, pageClicks)

	c.HandleEvent(tcell.NewEventMouse(1, 1, tcell.ButtonPrimary, tcell.ModNone))
	assert.Equal(t, 1, pageClicks)
}

func TestCompositorFocusLossDropsPointer(t *testing.T) {
	c, _, _, _ := newSimCompositor(t)
	c.HandleEvent(tcell.NewEventMouse(3, 3, tcell.ButtonNone, tcell.ModNone))
	assert.True(t, c.Pointer().Present)

	c.HandleEvent(tcell.NewEventFocus(false))
	assert.False(t, c.Pointer().Present)
}

func TestCompositorKeyHandler(t *testing.T) {
	c, _, _, _ := newSimCompositor(t)
	var got tcell.Key
	c.SetKeyHandler(func(ev *tcell.EventKey) bool {
		got = ev.Key()
		return true
	})
	c.HandleEvent(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone))
	assert.Equal(t, tcell.KeyEscape, got)
}

func TestBlendColor(t *testing.T) {
	black := tcell.NewRGBColor(0, 0, 0)
	white := tcell.NewRGBColor(255, 255, 255)
	assert.Equal(t, white, blendColor(black, white, 1))
	assert.Equal(t, black, blendColor(black, white, 0))
	assert.Equal(t, tcell.NewRGBColor(127, 127, 127), blendColor(black, white, 0.5))
	assert.Equal(t, tcell.ColorRed, blendColor(tcell.ColorDefault, tcell.ColorRed, 0.3))
}
