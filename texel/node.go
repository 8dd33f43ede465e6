// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: texel/node.go
// Summary: Scene graph nodes with local transforms, visibility and opacity.
// Usage: Pages, floating windows and taskbar widgets are trees of nodes; the
// compositor draws them and the hit-test registry measures them.

package texel

import "github.com/gdamore/tcell/v2"

// Span is a run of text drawn in one colour.
type Span struct {
	Text  string
	Color tcell.Color
}

// Visual describes what a node paints inside its display box. Zero values
// paint nothing.
type Visual struct {
	Fill      tcell.Color // ColorDefault leaves the area untouched
	Text      string      // centred in the box
	TextColor tcell.Color
	Bold      bool
	Lines     [][]Span // top-left aligned rows, used for multi-line content
}

// Node is an element of the scene graph. Position and scale are relative to
// the parent; bounds are in the node's local units.
type Node struct {
	name     string
	parent   *Node
	children []*Node

	pos    Vec2
	scale  Vec2
	bounds Box

	hidden      bool
	removed     bool
	alpha       float64
	transparent bool

	Visual Visual

	// OnClick runs on a primary press over the node's box.
	OnClick func()
	// OnSecondary runs on a secondary (right) press over the node's box.
	OnSecondary func()
}

// NewNode creates a detached node with unit scale and full opacity.
func NewNode(name string) *Node {
	return &Node{
		name:  name,
		scale: Vec2{1, 1},
		alpha: 1,
	}
}

func (n *Node) Name() string { return n.name }

// Parent returns the parent node or nil for a root.
func (n *Node) Parent() *Node { return n.parent }

// Children returns a copy of the child list in draw order.
func (n *Node) Children() []*Node {
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// AddChild attaches child as the last (topmost) child, detaching it from any
// previous parent first.
func (n *Node) AddChild(child *Node) {
	if child == nil || child == n {
		return
	}
	child.Detach()
	child.parent = n
	n.children = append(n.children, child)
}

// Detach removes the node from its parent without destroying it.
func (n *Node) Detach() {
	p := n.parent
	if p == nil {
		return
	}
	for i, c := range p.children {
		if c == n {
			p.children = append(p.children[:i], p.children[i+1:]...)
			break
		}
	}
	n.parent = nil
}

// Raise moves the node to the end of its parent's child list so it draws last.
func (n *Node) Raise() {
	p := n.parent
	if p == nil {
		return
	}
	n.Detach()
	n.parent = p
	p.children = append(p.children, n)
}

// Remove detaches the node and marks it and its whole subtree as removed.
// Removed nodes report IsEmpty and are never drawn or hit.
func (n *Node) Remove() {
	n.Detach()
	n.markRemoved()
}

func (n *Node) markRemoved() {
	n.removed = true
	for _, c := range n.children {
		c.markRemoved()
	}
	n.children = nil
}

// IsEmpty reports whether the node is nil or has been removed.
func (n *Node) IsEmpty() bool { return n == nil || n.removed }

func (n *Node) Show() { n.hidden = false }
func (n *Node) Hide() { n.hidden = true }

// IsHidden reports whether the node or any ancestor is hidden.
func (n *Node) IsHidden() bool {
	for cur := n; cur != nil; cur = cur.parent {
		if cur.hidden {
			return true
		}
	}
	return false
}

func (n *Node) SetPos(p Vec2)     { n.pos = p }
func (n *Node) Pos() Vec2         { return n.pos }
func (n *Node) SetScale(s Vec2)   { n.scale = s }
func (n *Node) Scale() Vec2       { return n.scale }
func (n *Node) SetBounds(b Box)   { n.bounds = b }
func (n *Node) Bounds() Box       { return n.bounds }
func (n *Node) Alpha() float64    { return n.alpha }
func (n *Node) Transparent() bool { return n.transparent }

// SetUniformScale sets the same scale on both axes.
func (n *Node) SetUniformScale(s float64) { n.scale = Vec2{s, s} }

// SetAlpha clamps and stores the node's own opacity.
func (n *Node) SetAlpha(a float64) {
	if a < 0 {
		a = 0
	} else if a > 1 {
		a = 1
	}
	n.alpha = a
}

// SetTransparency marks the node as alpha-blended. Opaque nodes ignore their
// alpha when composited.
func (n *Node) SetTransparency(on bool) { n.transparent = on }

// EffectiveAlpha is the product of the alphas of every transparent node on the
// path from the root to n.
func (n *Node) EffectiveAlpha() float64 {
	a := 1.0
	for cur := n; cur != nil; cur = cur.parent {
		if cur.transparent {
			a *= cur.alpha
		}
	}
	return a
}

// NetTransform returns the accumulated scale and translation from the node's
// local space to the root's space.
func (n *Node) NetTransform() (scale, offset Vec2) {
	var chain []*Node
	for cur := n; cur != nil; cur = cur.parent {
		chain = append(chain, cur)
	}
	scale = Vec2{1, 1}
	for i := len(chain) - 1; i >= 0; i-- {
		c := chain[i]
		offset = offset.Add(scale.Mul(c.pos))
		scale = scale.Mul(c.scale)
	}
	return scale, offset
}

// DisplayBox returns the node's local bounds transformed into root space.
func (n *Node) DisplayBox() Box {
	scale, offset := n.NetTransform()
	return n.bounds.transform(scale, offset)
}

// Root walks up to the topmost ancestor.
func (n *Node) Root() *Node {
	cur := n
	for cur.parent != nil {
		cur = cur.parent
	}
	return cur
}

// Walk visits the subtree depth-first in draw order. Returning false from fn
// skips the node's children.
func (n *Node) Walk(fn func(*Node) bool) {
	if n == nil || n.removed {
		return
	}
	if !fn(n) {
		return
	}
	for _, c := range n.Children() {
		c.Walk(fn)
	}
}
