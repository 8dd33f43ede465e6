// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: texel/window_stack.go
// Summary: Floating window z-order, focus, defocus policy and dragging.
// Usage: Owned by the shell; the compositor routes pointer presses here and
// the frame driver calls Update every frame.

package texel

import (
	"fmt"
	"sort"

	"go.uber.org/zap"
)

// defocusFunc is run on a window that just lost focus.
type defocusFunc func(s *WindowStack, w *Window)

// WindowStack owns every open floating window.
type WindowStack struct {
	log   *zap.Logger
	layer *Node

	windows  map[WindowID]*Window
	active   WindowID
	previous WindowID
	lastID   int
	lastBin  int

	defocus map[WindowClass]defocusFunc
}

// NewWindowStack creates an empty stack whose frames hang from layer.
func NewWindowStack(layer *Node, log *zap.Logger) *WindowStack {
	if log == nil {
		log = zap.NewNop()
	}
	return &WindowStack{
		log:     log,
		layer:   layer,
		windows: make(map[WindowID]*Window),
		defocus: map[WindowClass]defocusFunc{
			ClassApplication: func(*WindowStack, *Window) {},
			ClassSystem: func(s *WindowStack, w *Window) {
				if err := s.Close(w.id); err != nil {
					s.log.Warn("close transient window", zap.Error(err))
				}
			},
		},
	}
}

func (s *WindowStack) nextID() WindowID {
	s.lastID++
	return WindowID(s.lastID)
}

func (s *WindowStack) nextBin() int {
	s.lastBin++
	return s.lastBin
}

// raise gives w a bin above every other window.
func (s *WindowStack) raise(w *Window) {
	w.bin = s.nextBin()
	w.Root.Raise()
}

// Open creates a window at pos (aspect-corrected units) with a size in design
// pixels, puts it on top and focuses it.
func (s *WindowStack) Open(name string, pos, size Vec2, class WindowClass) WindowID {
	id := s.nextID()
	w := newWindow(id, name, pos, size, class)
	s.layer.AddChild(w.Root)
	s.windows[id] = w
	s.raise(w)

	old := s.active
	s.previous = old
	s.active = id
	s.log.Debug("window opened",
		zap.Int("id", int(id)), zap.String("name", name), zap.Stringer("class", class), zap.Int("bin", w.bin))
	if ow, ok := s.windows[old]; ok {
		s.defocusWindow(ow)
	}
	return id
}

func (s *WindowStack) defocusWindow(w *Window) {
	if fn, ok := s.defocus[w.class]; ok {
		fn(s, w)
	}
}

// Focus raises id and makes it the active window. Unknown ids are ignored.
func (s *WindowStack) Focus(id WindowID) error {
	w, ok := s.windows[id]
	if !ok {
		s.log.Debug("focus on unknown window", zap.Int("id", int(id)))
		return fmt.Errorf("focus %d: %w", id, ErrWindowNotFound)
	}
	s.raise(w)
	if s.active == id {
		return nil
	}
	old := s.active
	s.previous = old
	s.active = id
	if ow, ok := s.windows[old]; ok {
		s.defocusWindow(ow)
	}
	return nil
}

// Close removes a window. When the active window closes, focus returns to the
// previously focused window if it is still open.
func (s *WindowStack) Close(id WindowID) error {
	w, ok := s.windows[id]
	if !ok {
		s.log.Debug("close on unknown window", zap.Int("id", int(id)))
		return fmt.Errorf("close %d: %w", id, ErrWindowNotFound)
	}
	w.dragging = false
	delete(s.windows, id)
	w.Root.Remove()

	if s.previous == id {
		s.previous = 0
	}
	if s.active == id {
		s.active = 0
		if prev, ok := s.windows[s.previous]; ok {
			s.previous = 0
			s.active = prev.id
			s.raise(prev)
		}
	}
	s.log.Debug("window closed", zap.Int("id", int(id)), zap.Int("active", int(s.active)))
	return nil
}

// Window looks up an open window.
func (s *WindowStack) Window(id WindowID) (*Window, bool) {
	w, ok := s.windows[id]
	return w, ok
}

// Active returns the focused window id, 0 when none.
func (s *WindowStack) Active() WindowID { return s.active }

// Previous returns the window focused before the active one, 0 when none.
func (s *WindowStack) Previous() WindowID { return s.previous }

// Len returns the number of open windows.
func (s *WindowStack) Len() int { return len(s.windows) }

// Ordered returns open windows bottom to top.
func (s *WindowStack) Ordered() []*Window {
	out := make([]*Window, 0, len(s.windows))
	for _, w := range s.windows {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].bin < out[j].bin })
	return out
}

// TopmostAt returns the highest window under p and the part that was hit.
func (s *WindowStack) TopmostAt(p Vec2) (*Window, WindowPart) {
	ordered := s.Ordered()
	for i := len(ordered) - 1; i >= 0; i-- {
		if part := ordered[i].partAt(p); part != PartNone {
			return ordered[i], part
		}
	}
	return nil, PartNone
}

// BeginDrag starts dragging id from pointer position p and focuses it.
func (s *WindowStack) BeginDrag(id WindowID, p Vec2) error {
	w, ok := s.windows[id]
	if !ok {
		return fmt.Errorf("drag %d: %w", id, ErrWindowNotFound)
	}
	w.dragging = true
	w.lastPointer = p
	return s.Focus(id)
}

// EndAllDrags stops every drag; called on pointer release.
func (s *WindowStack) EndAllDrags() {
	for _, w := range s.windows {
		w.dragging = false
	}
}

// Update moves dragging windows by the pointer delta since the last sample.
// Display-space x deltas are converted to aspect-corrected units.
func (s *WindowStack) Update(p Pointer) {
	if !p.Present {
		return
	}
	for _, w := range s.Ordered() {
		if !w.dragging {
			continue
		}
		delta := p.Pos.Sub(w.lastPointer)
		w.Root.SetPos(w.Root.Pos().Add(Vec2{delta.X * AspectRatio, delta.Y}))
		w.lastPointer = p.Pos
	}
}
