// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: texel/scene.go
// Summary: Root layers of the shell's scene graph.

package texel

// Scene holds the fixed layer nodes every page and window hangs from.
//
//	Display            raw display space, x and y in [-1, 1]
//	├── Overlays       page overlay roots (full-width strips)
//	└── Aspect         aspect-corrected space, x scaled by 1/AspectRatio
//	    ├── Pages      page widget roots
//	    └── Windows    floating windows, ordered by bin
type Scene struct {
	Display  *Node
	Overlays *Node
	Aspect   *Node
	Pages    *Node
	Windows  *Node
}

// NewScene builds the layer skeleton.
func NewScene() *Scene {
	s := &Scene{
		Display:  NewNode("render2d"),
		Overlays: NewNode("overlays"),
		Aspect:   NewNode("aspect2d"),
		Pages:    NewNode("pages"),
		Windows:  NewNode("windows"),
	}
	s.Aspect.SetScale(Vec2{1 / AspectRatio, 1})
	s.Display.AddChild(s.Overlays)
	s.Display.AddChild(s.Aspect)
	s.Aspect.AddChild(s.Pages)
	s.Aspect.AddChild(s.Windows)
	return s
}
