// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: apps/desktop/pages.go
// Summary: Builds the lock, login and home pages.

package desktop

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/framegrace/texelshell/texel"
)

// fullScreen covers the whole display in aspect-corrected units.
var fullScreen = texel.Box{XMin: -texel.AspectRatio, XMax: texel.AspectRatio, YMin: -1, YMax: 1}

func background(name string, fill tcell.Color) *texel.Node {
	n := texel.NewNode(name)
	n.SetBounds(fullScreen)
	n.Visual.Fill = fill
	return n
}

func label(name string, pos texel.Vec2, scale float64, bounds texel.Box) *texel.Node {
	n := texel.NewNode(name)
	n.SetPos(pos)
	n.SetUniformScale(scale)
	n.SetBounds(bounds)
	n.Visual.TextColor = tcell.ColorWhite
	return n
}

// buildPages registers the three pages. The lock screen is registered first
// and so starts active.
func (s *Shell) buildPages() error {
	s.lock = texel.NewPage(PageLock)
	s.login = texel.NewPage(PageLogin)
	s.home = texel.NewPage(PageHome)

	s.buildLockScreen()
	s.buildLogin()
	s.buildHome()

	for _, p := range []*texel.Page{s.lock, s.login, s.home} {
		if err := s.pages.Register(p); err != nil {
			return fmt.Errorf("register page %s: %w", p.Name(), err)
		}
	}
	return nil
}

func (s *Shell) buildLockScreen() {
	bg := background("lockScreenBackground", tcell.NewRGBColor(22, 44, 84))
	bg.OnClick = s.Unlock
	s.lock.Root.AddChild(bg)

	s.timeLabel = label("lockScreenTime", texel.Vec2{X: 0, Y: 0.45}, 0.2, texel.Box{XMin: -3, XMax: 3, YMin: -0.3, YMax: 0.3})
	s.timeLabel.Visual.Bold = true
	s.lock.Root.AddChild(s.timeLabel)

	s.dateLabel = label("lockScreenDate", texel.Vec2{X: 0, Y: 0.35}, 0.075, texel.Box{XMin: -8, XMax: 8, YMin: -0.4, YMax: 0.4})
	s.lock.Root.AddChild(s.dateLabel)

	hint := label("lockScreenHint", texel.Vec2{X: 0, Y: -0.8}, 0.05, texel.Box{XMin: -12, XMax: 12, YMin: -0.6, YMax: 0.6})
	hint.Visual.Text = "click or press any key"
	hint.Visual.TextColor = tcell.NewRGBColor(170, 180, 200)
	s.lock.Root.AddChild(hint)
}

func (s *Shell) buildLogin() {
	bg := background("loginScreenBackground", tcell.NewRGBColor(16, 30, 58))
	bg.OnClick = s.blurEntries
	s.login.Root.AddChild(bg)

	profile := label("loginScreenProfile", texel.Vec2{X: 0, Y: 0.35}, 0.2, texel.Box{XMin: -0.6, XMax: 0.6, YMin: -0.5, YMax: 0.5})
	profile.Visual.Fill = tcell.NewRGBColor(60, 80, 120)
	profile.Visual.Text = "◉"
	s.login.Root.AddChild(profile)

	title := label("loginScreenTitle", texel.Vec2{X: 0, Y: 0.15}, 0.05, texel.Box{XMin: -10, XMax: 10, YMin: -0.6, YMax: 0.6})
	title.Visual.Text = s.Title()
	s.login.Root.AddChild(title)

	s.username = newEntry("loginScreenUsername", "Username", texel.Vec2{X: 0, Y: 0}, false)
	s.username.Node.OnClick = func() { s.focusEntry(s.username) }
	s.login.Root.AddChild(s.username.Node)

	s.password = newEntry("loginScreenPassword", "Password", texel.Vec2{X: 0, Y: -0.15}, true)
	s.password.Node.OnClick = func() { s.focusEntry(s.password) }
	s.login.Root.AddChild(s.password.Node)
}

func (s *Shell) buildHome() {
	s.home.Root.AddChild(background("homeScreenBackground", tcell.NewRGBColor(0, 84, 147)))
}
