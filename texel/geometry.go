// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: texel/geometry.go
// Summary: Display-space vectors, boxes and design-resolution unit conversion.
// Usage: Shared by the scene graph, window sizing, hit testing and the compositor.

package texel

// The shell is laid out against a fixed logical design resolution. Requested
// pixel sizes are converted into normalized display units relative to it, so a
// window keeps its proportions whatever the real terminal size is.
const (
	DesignWidth  = 1280
	DesignHeight = 720
)

// AspectRatio of the design resolution. Horizontal extents in aspect-corrected
// space are multiplied by it.
const AspectRatio = float64(DesignWidth) / float64(DesignHeight)

// Vec2 is a point or extent in display units.
type Vec2 struct {
	X, Y float64
}

// Add returns v+o.
func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }

// Sub returns v-o.
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }

// Mul multiplies component-wise.
func (v Vec2) Mul(o Vec2) Vec2 { return Vec2{v.X * o.X, v.Y * o.Y} }

// Box is an axis-aligned rectangle in display units. Y grows upwards.
type Box struct {
	XMin, XMax, YMin, YMax float64
}

// Contains reports whether p lies inside the box, edges included.
func (b Box) Contains(p Vec2) bool {
	return p.X >= b.XMin && p.X <= b.XMax && p.Y >= b.YMin && p.Y <= b.YMax
}

// Center returns the midpoint of the box.
func (b Box) Center() Vec2 {
	return Vec2{(b.XMin + b.XMax) / 2, (b.YMin + b.YMax) / 2}
}

// Width of the box.
func (b Box) Width() float64 { return b.XMax - b.XMin }

// Height of the box.
func (b Box) Height() float64 { return b.YMax - b.YMin }

// Empty reports whether the box has no area.
func (b Box) Empty() bool { return b.XMax <= b.XMin || b.YMax <= b.YMin }

// ScaleAbout grows or shrinks the box by s around its own centre.
func (b Box) ScaleAbout(s Vec2) Box {
	c := b.Center()
	hw := b.Width() / 2 * s.X
	hh := b.Height() / 2 * s.Y
	return Box{XMin: c.X - hw, XMax: c.X + hw, YMin: c.Y - hh, YMax: c.Y + hh}
}

// transform maps a local box through a scale then a translation. Negative
// scales flip the box, so the edges are re-ordered.
func (b Box) transform(scale, offset Vec2) Box {
	x0, x1 := b.XMin*scale.X+offset.X, b.XMax*scale.X+offset.X
	y0, y1 := b.YMin*scale.Y+offset.Y, b.YMax*scale.Y+offset.Y
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	return Box{XMin: x0, XMax: x1, YMin: y0, YMax: y1}
}

// FrameSize converts a size in design pixels into a frame box centred on the
// origin in aspect-corrected units. The vertical axis spans [-1, 1] over the
// design height; the horizontal extent is scaled by the aspect ratio.
func FrameSize(size Vec2) Box {
	hw := (1 / (float64(DesignWidth) / 2)) * (size.X / 2) * AspectRatio
	hh := (1 / (float64(DesignHeight) / 2)) * (size.Y / 2)
	return Box{XMin: -hw, XMax: hw, YMin: -hh, YMax: hh}
}
