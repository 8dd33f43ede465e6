// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: texel/runtime_interfaces.go
// Summary: Interfaces decoupling the shell engine from the terminal.
// Usage: The compositor draws through ScreenDriver; tests substitute a
// tcell simulation screen or a stub.

package texel

import "github.com/gdamore/tcell/v2"

// ScreenDriver abstracts the rendering surface used by the shell. It mirrors
// the subset of tcell.Screen functionality the compositor needs.
type ScreenDriver interface {
	Init() error
	Fini()
	Size() (int, int)
	SetStyle(style tcell.Style)
	HideCursor()
	EnableMouse(flags ...tcell.MouseFlags)
	EnableFocus()
	Clear()
	Show()
	Sync()
	PollEvent() tcell.Event
	SetContent(x, y int, mainc rune, combc []rune, style tcell.Style)
	GetContent(x, y int) (rune, []rune, tcell.Style, int)
}

// Renderer draws one frame.
type Renderer interface {
	Render()
}

// InputHandler consumes terminal events on the frame goroutine and reports
// the resulting pointer state.
type InputHandler interface {
	HandleEvent(ev tcell.Event)
	Pointer() Pointer
}
