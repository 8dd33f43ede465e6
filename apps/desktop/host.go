// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: apps/desktop/host.go
// Summary: The shell surface programs reach through the "shell" global.

package desktop

import (
	"fmt"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/framegrace/texelshell/internal/progrt"
	"github.com/framegrace/texelshell/texel"
)

var _ progrt.Host = (*Shell)(nil)

// Log records a message on behalf of a program.
func (s *Shell) Log(program, message string) {
	s.log.Info(message, zap.String("program", program))
}

// OpenWindow opens a floating window. x and y are aspect-corrected units,
// width and height design pixels.
func (s *Shell) OpenWindow(name string, x, y, width, height float64, class string) (int, error) {
	cls, err := texel.ParseWindowClass(class)
	if err != nil {
		return 0, err
	}
	if width <= 0 || height <= 0 {
		return 0, fmt.Errorf("window size %gx%g must be positive", width, height)
	}
	id := s.windows.Open(name, texel.Vec2{X: x, Y: y}, texel.Vec2{X: width, Y: height}, cls)
	return int(id), nil
}

func (s *Shell) CloseWindow(id int) error {
	return s.windows.Close(texel.WindowID(id))
}

func (s *Shell) FocusWindow(id int) error {
	return s.windows.Focus(texel.WindowID(id))
}

// SetWindowText replaces the content of a window with text, one row per line.
func (s *Shell) SetWindowText(id int, text string) error {
	w, ok := s.windows.Window(texel.WindowID(id))
	if !ok {
		return fmt.Errorf("window %d: %w", id, texel.ErrWindowNotFound)
	}
	var lines [][]texel.Span
	for _, line := range strings.Split(text, "\n") {
		lines = append(lines, []texel.Span{{Text: line, Color: tcell.ColorBlack}})
	}
	w.Content.Visual.Lines = lines
	return nil
}

func (s *Shell) GoToPage(name string) error {
	return s.pages.SwitchTo(name)
}

// FadeToPage fades to name over the given number of seconds.
func (s *Shell) FadeToPage(name string, seconds float64) error {
	if seconds < 0 {
		seconds = 0
	}
	return s.pages.FadeTo(name, time.Duration(seconds*float64(time.Second)))
}

func (s *Shell) GoBack() error {
	return s.pages.GoBack()
}

func (s *Shell) ActivePage() string {
	return s.pages.Active()
}
