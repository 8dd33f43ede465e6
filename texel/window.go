// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: texel/window.go
// Summary: Floating window frames and window classes.

package texel

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
)

// WindowClass selects how a window reacts to losing focus.
type WindowClass int

const (
	// ClassApplication windows stay open when another window is focused.
	ClassApplication WindowClass = iota
	// ClassSystem windows are transient popups closed as soon as they lose focus.
	ClassSystem
)

func (c WindowClass) String() string {
	switch c {
	case ClassApplication:
		return "application"
	case ClassSystem:
		return "system"
	default:
		return fmt.Sprintf("WindowClass(%d)", int(c))
	}
}

// ParseWindowClass accepts "application" or "system", case-insensitively. An
// empty string means application.
func ParseWindowClass(s string) (WindowClass, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "application", "app":
		return ClassApplication, nil
	case "system":
		return ClassSystem, nil
	default:
		return ClassApplication, fmt.Errorf("unknown window class %q", s)
	}
}

// WindowID is a window identity. Identities are never reused.
type WindowID int

// WindowPart names the region of a window under the pointer.
type WindowPart int

const (
	PartNone WindowPart = iota
	PartBody
	PartTitleBar
	PartCloseButton
)

const (
	titleBarHeight   = 0.075
	closeButtonScale = 0.036
)

// Window is a draggable floating frame.
type Window struct {
	id    WindowID
	name  string
	class WindowClass
	size  Vec2
	bin   int

	dragging    bool
	lastPointer Vec2

	Root        *Node
	TitleBar    *Node
	CloseButton *Node
	Content     *Node
}

func newWindow(id WindowID, name string, pos, size Vec2, class WindowClass) *Window {
	frame := FrameSize(size)
	w := &Window{
		id:    id,
		name:  name,
		class: class,
		size:  size,
	}

	w.Root = NewNode(fmt.Sprintf("window-%d", id))
	w.Root.SetPos(pos)
	w.Root.SetBounds(frame)
	w.Root.Visual.Fill = tcell.ColorWhite

	content := frame
	if class == ClassApplication {
		w.TitleBar = NewNode("topBar")
		w.TitleBar.SetBounds(Box{XMin: frame.XMin, XMax: frame.XMax, YMin: frame.YMax - titleBarHeight, YMax: frame.YMax})
		w.TitleBar.Visual = Visual{Fill: tcell.ColorSilver, Text: name, TextColor: tcell.ColorBlack}
		w.Root.AddChild(w.TitleBar)

		w.CloseButton = NewNode("topBarCloseButton")
		w.CloseButton.SetPos(Vec2{frame.XMax - 0.05, frame.YMax - 0.0365})
		w.CloseButton.SetUniformScale(closeButtonScale)
		w.CloseButton.SetBounds(Box{XMin: -1.2, XMax: 1.2, YMin: -1, YMax: 1})
		w.CloseButton.Visual = Visual{Fill: tcell.NewRGBColor(230, 26, 51), Text: "X", TextColor: tcell.ColorWhite}
		w.TitleBar.AddChild(w.CloseButton)

		content.YMax -= titleBarHeight
	}

	w.Content = NewNode("content")
	w.Content.SetBounds(content)
	w.Content.Visual.TextColor = tcell.ColorBlack
	w.Root.AddChild(w.Content)
	return w
}

func (w *Window) ID() WindowID       { return w.id }
func (w *Window) Name() string       { return w.name }
func (w *Window) Class() WindowClass { return w.class }
func (w *Window) Size() Vec2         { return w.size }
func (w *Window) Bin() int           { return w.bin }
func (w *Window) Dragging() bool     { return w.dragging }
func (w *Window) Position() Vec2     { return w.Root.Pos() }
func (w *Window) SetPosition(p Vec2) { w.Root.SetPos(p) }

// partAt reports which part of the window contains p (display space).
func (w *Window) partAt(p Vec2) WindowPart {
	if w.Root.IsEmpty() || w.Root.IsHidden() || !w.Root.DisplayBox().Contains(p) {
		return PartNone
	}
	if w.CloseButton != nil && w.CloseButton.DisplayBox().Contains(p) {
		return PartCloseButton
	}
	if w.TitleBar != nil && w.TitleBar.DisplayBox().Contains(p) {
		return PartTitleBar
	}
	return PartBody
}
