// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: texel/hittest_test.go
// Summary: Exercises edge-triggered hover detection.

package texel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type hoverEvent struct {
	hover   bool
	payload interface{}
}

type hoverRecorder struct {
	events []hoverEvent
}

func (r *hoverRecorder) callback(hover bool, payload interface{}) {
	r.events = append(r.events, hoverEvent{hover, payload})
}

// squareNode returns a 0.2 x 0.2 box centred on pos under root.
func squareNode(root *Node, name string, pos Vec2) *Node {
	n := NewNode(name)
	n.SetPos(pos)
	n.SetUniformScale(0.1)
	n.SetBounds(Box{XMin: -1, XMax: 1, YMin: -1, YMax: 1})
	root.AddChild(n)
	return n
}

func at(x, y float64) Pointer { return Pointer{Pos: Vec2{x, y}, Present: true} }

func TestHitBoxScalesAboutCentre(t *testing.T) {
	root := NewNode("root")
	n := squareNode(root, "btn", Vec2{0.5, 0.5})

	box := HitBox(n, Vec2{0.6, 0.6})
	assert.InDelta(t, 0.44, box.XMin, 1e-9)
	assert.InDelta(t, 0.56, box.XMax, 1e-9)
	assert.InDelta(t, 0.44, box.YMin, 1e-9)
	assert.InDelta(t, 0.56, box.YMax, 1e-9)
}

func TestHitTestEnterLeaveAreEdgeTriggered(t *testing.T) {
	root := NewNode("root")
	n := squareNode(root, "btn", Vec2{})
	rec := &hoverRecorder{}
	reg := NewHitTestRegistry(zap.NewNop())
	id := reg.Register(n, Vec2{1, 1}, rec.callback, "payload")

	reg.Poll(at(0.05, 0.05))
	reg.Poll(at(0.06, 0.05))
	reg.Poll(at(0.07, 0.05))
	require.Len(t, rec.events, 1)
	assert.Equal(t, hoverEvent{true, "payload"}, rec.events[0])
	assert.True(t, reg.Hovered(id))

	reg.Poll(at(0.5, 0.5))
	reg.Poll(at(0.6, 0.5))
	require.Len(t, rec.events, 2)
	assert.Equal(t, hoverEvent{false, "payload"}, rec.events[1])
	assert.False(t, reg.Hovered(id))
}

func TestHitTestBoundaryIsInclusive(t *testing.T) {
	root := NewNode("root")
	n := squareNode(root, "btn", Vec2{})
	rec := &hoverRecorder{}
	reg := NewHitTestRegistry(nil)
	reg.Register(n, Vec2{1, 1}, rec.callback, nil)

	reg.Poll(at(0.1, 0.1))
	assert.Len(t, rec.events, 1)
}

func TestHitTestHitboxScaleShrinksRegion(t *testing.T) {
	root := NewNode("root")
	n := squareNode(root, "btn", Vec2{})
	rec := &hoverRecorder{}
	reg := NewHitTestRegistry(nil)
	reg.Register(n, Vec2{0.6, 0.6}, rec.callback, nil)

	reg.Poll(at(0.08, 0))
	assert.Empty(t, rec.events)
	reg.Poll(at(0.05, 0))
	assert.Len(t, rec.events, 1)
}

func TestHitTestHiddenAncestorLeaves(t *testing.T) {
	root := NewNode("root")
	group := NewNode("group")
	root.AddChild(group)
	n := squareNode(group, "btn", Vec2{})
	rec := &hoverRecorder{}
	reg := NewHitTestRegistry(nil)
	reg.Register(n, Vec2{1, 1}, rec.callback, nil)

	reg.Poll(at(0, 0))
	group.Hide()
	reg.Poll(at(0, 0))
	require.Len(t, rec.events, 2)
	assert.False(t, rec.events[1].hover)

	reg.Poll(at(0, 0))
	assert.Len(t, rec.events, 2)
}

func TestHitTestRemovedElementLeavesOnce(t *testing.T) {
	root := NewNode("root")
	n := squareNode(root, "btn", Vec2{})
	rec := &hoverRecorder{}
	reg := NewHitTestRegistry(nil)
	reg.Register(n, Vec2{1, 1}, rec.callback, nil)

	reg.Poll(at(0, 0))
	n.Remove()
	reg.Poll(at(0, 0))
	reg.Poll(at(0, 0))
	require.Len(t, rec.events, 2)
	assert.False(t, rec.events[1].hover)
}

func TestHitTestNilElementNeverHovers(t *testing.T) {
	rec := &hoverRecorder{}
	reg := NewHitTestRegistry(nil)
	reg.Register(nil, Vec2{1, 1}, rec.callback, nil)

	reg.Poll(at(0, 0))
	assert.Empty(t, rec.events)
}

func TestHitTestOverlappingRegionsAllFireInOrder(t *testing.T) {
	root := NewNode("root")
	n := squareNode(root, "btn", Vec2{})
	var order []string
	reg := NewHitTestRegistry(nil)
	reg.Register(n, Vec2{1, 1}, func(bool, interface{}) { order = append(order, "first") }, nil)
	reg.Register(n, Vec2{2, 2}, func(bool, interface{}) { order = append(order, "second") }, nil)

	reg.Poll(at(0, 0))
	assert.Equal(t, []string{"first", "second"}, order)
	assert.Equal(t, 2, reg.HoveredCount())
}

func TestHitTestPointerLossLeaves(t *testing.T) {
	root := NewNode("root")
	n := squareNode(root, "btn", Vec2{})
	rec := &hoverRecorder{}
	reg := NewHitTestRegistry(nil)
	reg.Register(n, Vec2{1, 1}, rec.callback, nil)

	reg.Poll(at(0, 0))
	reg.Poll(Pointer{Pos: Vec2{0, 0}})
	require.Len(t, rec.events, 2)
	assert.False(t, rec.events[1].hover)
}

func TestHitTestUnregisterIsSilent(t *testing.T) {
	root := NewNode("root")
	n := squareNode(root, "btn", Vec2{})
	rec := &hoverRecorder{}
	reg := NewHitTestRegistry(nil)
	id := reg.Register(n, Vec2{1, 1}, rec.callback, nil)

	reg.Poll(at(0, 0))
	assert.True(t, reg.Unregister(id))
	reg.Poll(at(0.9, 0.9))
	assert.Len(t, rec.events, 1)
	assert.Zero(t, reg.Len())
	assert.False(t, reg.Unregister(id))
}

func TestHitTestCallbackMayClearRegistry(t *testing.T) {
	root := NewNode("root")
	n := squareNode(root, "btn", Vec2{})
	reg := NewHitTestRegistry(nil)
	fired := 0
	reg.Register(n, Vec2{1, 1}, func(bool, interface{}) { reg.Clear() }, nil)
	reg.Register(n, Vec2{1, 1}, func(bool, interface{}) { fired++ }, nil)

	reg.Poll(at(0, 0))
	assert.Zero(t, fired)
	assert.Zero(t, reg.Len())
}
