// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: apps/desktop/entry.go
// Summary: Single-line text entry used by the login page.

package desktop

import (
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/framegrace/texelshell/texel"
)

const obscureRune = '•'

// Entry is a one-line text field. While it is empty and unfocused it shows
// its placeholder instead of the typed text.
type Entry struct {
	Node *texel.Node

	placeholder string
	text        []rune
	obscured    bool
	focused     bool
}

func newEntry(name, placeholder string, pos texel.Vec2, obscured bool) *Entry {
	e := &Entry{placeholder: placeholder, obscured: obscured}
	e.Node = texel.NewNode(name)
	e.Node.SetPos(pos)
	e.Node.SetUniformScale(0.05)
	e.Node.SetBounds(texel.Box{XMin: -6, XMax: 6, YMin: -0.9, YMax: 0.9})
	e.Node.Visual.Fill = tcell.NewRGBColor(96, 96, 104)
	e.refresh()
	return e
}

// Text returns the typed text. The placeholder is never part of it.
func (e *Entry) Text() string { return string(e.text) }

// Focused reports whether the entry receives typed keys.
func (e *Entry) Focused() bool { return e.focused }

// ShowingPlaceholder reports whether the placeholder is displayed.
func (e *Entry) ShowingPlaceholder() bool {
	return !e.focused && strings.TrimSpace(string(e.text)) == ""
}

// Display returns what the entry currently draws.
func (e *Entry) Display() string { return e.Node.Visual.Text }

// Focus clears the placeholder and starts accepting keys.
func (e *Entry) Focus() {
	if strings.TrimSpace(string(e.text)) == "" {
		e.text = e.text[:0]
	}
	e.focused = true
	e.refresh()
}

// Blur stops accepting keys; an entry left blank shows its placeholder again.
func (e *Entry) Blur() {
	e.focused = false
	if strings.TrimSpace(string(e.text)) == "" {
		e.text = e.text[:0]
	}
	e.refresh()
}

// Clear drops the typed text.
func (e *Entry) Clear() {
	e.text = e.text[:0]
	e.refresh()
}

// HandleKey edits the text. It returns false for keys an entry does not use.
func (e *Entry) HandleKey(ev *tcell.EventKey) bool {
	if !e.focused {
		return false
	}
	switch ev.Key() {
	case tcell.KeyRune:
		e.text = append(e.text, ev.Rune())
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if n := len(e.text); n > 0 {
			e.text = e.text[:n-1]
		}
	case tcell.KeyCtrlU:
		e.text = e.text[:0]
	default:
		return false
	}
	e.refresh()
	return true
}

func (e *Entry) refresh() {
	switch {
	case e.ShowingPlaceholder():
		e.Node.Visual.Text = e.placeholder
		e.Node.Visual.TextColor = tcell.NewRGBColor(200, 200, 200)
	case e.obscured:
		e.Node.Visual.Text = strings.Repeat(string(obscureRune), len(e.text))
		e.Node.Visual.TextColor = tcell.ColorWhite
	default:
		e.Node.Visual.Text = string(e.text)
		e.Node.Visual.TextColor = tcell.ColorWhite
	}
	if e.focused {
		e.Node.Visual.Text += "▏"
	}
}
