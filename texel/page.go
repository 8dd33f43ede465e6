// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: texel/page.go
// Summary: Full-screen pages with a widget root and an overlay root.

package texel

// Page is a named full-screen container. Its parent and children are page
// names resolved through the owning PageStack.
type Page struct {
	name     string
	visible  bool
	parent   string
	children []string
	alpha    float64

	// Root holds widgets in aspect-corrected space.
	Root *Node
	// Overlay holds full-width elements in raw display space.
	Overlay *Node
}

// NewPage creates a hidden, detached page.
func NewPage(name string) *Page {
	p := &Page{
		name:    name,
		alpha:   1,
		Root:    NewNode(name),
		Overlay: NewNode(name + "_2"),
	}
	p.Hide()
	return p
}

func (p *Page) Name() string   { return p.name }
func (p *Page) Visible() bool  { return p.visible }
func (p *Page) Parent() string { return p.parent }
func (p *Page) Alpha() float64 { return p.alpha }

// Children returns the child page names in insertion order.
func (p *Page) Children() []string {
	out := make([]string, len(p.children))
	copy(out, p.children)
	return out
}

func (p *Page) Show() {
	p.visible = true
	p.Root.Show()
	p.Overlay.Show()
}

func (p *Page) Hide() {
	p.visible = false
	p.Root.Hide()
	p.Overlay.Hide()
}

// SetAlpha sets the opacity of both roots.
func (p *Page) SetAlpha(a float64) {
	p.Root.SetAlpha(a)
	p.Overlay.SetAlpha(a)
	p.alpha = p.Root.Alpha()
}

// SetTransparency toggles alpha blending on both roots.
func (p *Page) SetTransparency(on bool) {
	p.Root.SetTransparency(on)
	p.Overlay.SetTransparency(on)
}

func (p *Page) removeChild(name string) {
	for i, c := range p.children {
		if c == name {
			p.children = append(p.children[:i], p.children[i+1:]...)
			return
		}
	}
}
