// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: apps/taskbar/taskbar.go
// Summary: Taskbar of installed programs along the bottom of the home page.
// Usage: The shell calls Load after every login; buttons launch programs on
// click and show a program info popup on right click.

package taskbar

import (
	"context"
	"fmt"
	"os"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
	"go.uber.org/zap"

	"github.com/framegrace/texelshell/internal/history"
	"github.com/framegrace/texelshell/internal/preview"
	"github.com/framegrace/texelshell/registry"
	"github.com/framegrace/texelshell/texel"
)

// Layout constants, in aspect-corrected units.
const (
	Spacing = 0.135
	ButtonY = -0.925
	LabelY  = -0.825

	buttonScale  = 0.06
	outlineScale = 0.07
	labelScale   = 0.05
	// labelCharWidth is the width of one terminal column in label units.
	labelCharWidth = 0.6
)

// HitboxScale shrinks each button's hover region about its centre.
var HitboxScale = texel.Vec2{X: 0.6, Y: 0.6}

// infoWindowSize is the program info popup size in design pixels.
var infoWindowSize = texel.Vec2{X: 560, Y: 400}

// Runner executes a program.
type Runner interface {
	Run(ctx context.Context, m *registry.Manifest) error
}

// LaunchHistory reports past runs of a program.
type LaunchHistory interface {
	Count(program string) (int, error)
	Last(program string) (history.Record, bool, error)
}

// Config wires a taskbar to the rest of the shell.
type Config struct {
	// ProgramsDir is scanned on every Load.
	ProgramsDir string
	Hits        *texel.HitTestRegistry
	Windows     *texel.WindowStack
	Runner      Runner
	// History is optional; without it the info popup omits launch counts.
	History LaunchHistory
	// Context is passed to every program run. Defaults to context.Background.
	Context context.Context
	Log     *zap.Logger
}

// Button is one program entry on the taskbar.
type Button struct {
	Manifest *registry.Manifest
	Node     *texel.Node
	Outline  *texel.Node
	Label    *texel.Node

	region texel.RegionID
}

// Hovered reports whether the hover feedback is showing.
func (b *Button) Hovered() bool { return b.Outline.Alpha() > 0 }

func (b *Button) setHover(on bool) {
	a := 0.0
	if on {
		a = 1
	}
	b.Outline.SetAlpha(a)
	b.Label.SetAlpha(a)
}

// Taskbar lays program buttons out in a row centred on the page.
type Taskbar struct {
	cfg Config
	log *zap.Logger

	page    *texel.Page
	border  *texel.Node
	root    *texel.Node
	catalog *registry.Catalog

	programs []*registry.Manifest
	buttons  []*Button
}

// New creates an unmounted taskbar.
func New(cfg Config) *Taskbar {
	if cfg.Log == nil {
		cfg.Log = zap.NewNop()
	}
	if cfg.Context == nil {
		cfg.Context = context.Background()
	}
	t := &Taskbar{cfg: cfg, log: cfg.Log}

	t.border = texel.NewNode("taskbarBorder")
	t.border.SetPos(texel.Vec2{X: 0, Y: ButtonY})
	t.border.SetBounds(texel.Box{XMin: -1, XMax: 1, YMin: -0.075, YMax: 0.075})
	t.border.Visual.Fill = tcell.NewRGBColor(230, 230, 230)

	t.root = texel.NewNode("taskbar")
	return t
}

// Positions returns the x coordinate of each of n buttons spaced evenly about
// centre.
func Positions(n int, centre float64) []float64 {
	xs := make([]float64, n)
	mid := float64(n-1) / 2
	for i := range xs {
		xs[i] = centre + (float64(i)-mid)*Spacing
	}
	return xs
}

// Load mounts the taskbar on page, rescans the programs directory and
// rebuilds every button. Scan errors are returned after the taskbar has been
// rebuilt from an empty catalog.
func (t *Taskbar) Load(page *texel.Page) error {
	if page != t.page {
		page.Overlay.AddChild(t.border)
		page.Root.AddChild(t.root)
		t.page = page
	}

	cat, err := registry.Scan(t.cfg.ProgramsDir, t.log)
	if err != nil {
		t.log.Error("taskbar scan failed", zap.String("dir", t.cfg.ProgramsDir), zap.Error(err))
		t.catalog = &registry.Catalog{Dir: t.cfg.ProgramsDir}
		t.SetPrograms(nil)
		return err
	}
	t.catalog = cat
	t.SetPrograms(cat.Programs)
	return nil
}

// Reload rescans onto the page the taskbar is mounted on. It is a no-op
// before the first Load.
func (t *Taskbar) Reload() error {
	if t.page == nil {
		return nil
	}
	return t.Load(t.page)
}

// Catalog returns the result of the last scan, or nil before Load.
func (t *Taskbar) Catalog() *registry.Catalog { return t.catalog }

// Page returns the page the taskbar is mounted on.
func (t *Taskbar) Page() *texel.Page { return t.page }

// Programs returns the programs currently shown, in button order.
func (t *Taskbar) Programs() []*registry.Manifest {
	out := make([]*registry.Manifest, len(t.programs))
	copy(out, t.programs)
	return out
}

// Buttons returns the current buttons in layout order.
func (t *Taskbar) Buttons() []*Button {
	out := make([]*Button, len(t.buttons))
	copy(out, t.buttons)
	return out
}

// Len returns the number of buttons.
func (t *Taskbar) Len() int { return len(t.buttons) }

// SetPrograms replaces the program list and rebuilds.
func (t *Taskbar) SetPrograms(programs []*registry.Manifest) {
	t.programs = append([]*registry.Manifest(nil), programs...)
	t.rebuild()
}

// AddProgram appends a program and rebuilds.
func (t *Taskbar) AddProgram(m *registry.Manifest) {
	if m == nil {
		return
	}
	t.programs = append(t.programs, m)
	t.rebuild()
}

// RemoveProgram drops the first program with the given name and rebuilds.
func (t *Taskbar) RemoveProgram(name string) bool {
	for i, m := range t.programs {
		if m.Name == name {
			t.programs = append(t.programs[:i], t.programs[i+1:]...)
			t.rebuild()
			return true
		}
	}
	return false
}

// rebuild tears every button down and lays the current program list out again.
func (t *Taskbar) rebuild() {
	for _, b := range t.buttons {
		if t.cfg.Hits != nil {
			t.cfg.Hits.Unregister(b.region)
		}
		b.Outline.Remove()
		b.Node.Remove()
		b.Label.Remove()
	}
	t.buttons = t.buttons[:0]

	xs := Positions(len(t.programs), 0)
	for i, m := range t.programs {
		t.buttons = append(t.buttons, t.newButton(m, xs[i]))
	}
	t.log.Debug("taskbar rebuilt", zap.Int("buttons", len(t.buttons)))
}

func (t *Taskbar) newButton(m *registry.Manifest, x float64) *Button {
	b := &Button{Manifest: m}
	square := texel.Box{XMin: -1, XMax: 1, YMin: -1, YMax: 1}

	b.Outline = texel.NewNode(m.Name + "_outline")
	b.Outline.SetPos(texel.Vec2{X: x, Y: ButtonY})
	b.Outline.SetUniformScale(outlineScale)
	b.Outline.SetBounds(square)
	b.Outline.Visual.Fill = tcell.NewRGBColor(128, 128, 128)
	b.Outline.SetTransparency(true)
	b.Outline.SetAlpha(0)

	b.Node = texel.NewNode(m.Name)
	b.Node.SetPos(texel.Vec2{X: x, Y: ButtonY})
	b.Node.SetUniformScale(buttonScale)
	b.Node.SetBounds(square)
	b.Node.Visual = texel.Visual{Fill: tcell.NewRGBColor(40, 40, 48), Text: m.Icon, TextColor: tcell.ColorWhite}
	b.Node.OnClick = func() { t.activate(b.Manifest) }
	b.Node.OnSecondary = func() {
		if _, err := t.ShowInfo(b.Manifest.Name); err != nil {
			t.log.Warn("program info failed", zap.String("program", b.Manifest.Name), zap.Error(err))
		}
	}

	half := float64(runewidth.StringWidth(m.HoverText)+2) * labelCharWidth / 2
	b.Label = texel.NewNode(m.Name + "_label")
	b.Label.SetPos(texel.Vec2{X: x, Y: LabelY})
	b.Label.SetUniformScale(labelScale)
	b.Label.SetBounds(texel.Box{XMin: -half, XMax: half, YMin: -0.6, YMax: 0.6})
	b.Label.Visual = texel.Visual{Fill: tcell.NewRGBColor(64, 64, 64), Text: m.HoverText, TextColor: tcell.ColorWhite}
	b.Label.SetTransparency(true)
	b.Label.SetAlpha(0)

	t.root.AddChild(b.Outline)
	t.root.AddChild(b.Node)
	t.root.AddChild(b.Label)

	if t.cfg.Hits != nil {
		b.region = t.cfg.Hits.Register(b.Node, HitboxScale, t.onHover, b)
	}
	return b
}

func (t *Taskbar) onHover(hover bool, payload interface{}) {
	b, ok := payload.(*Button)
	if !ok {
		return
	}
	b.setHover(hover)
}

// Launch runs the named program. Program failures are returned, never
// propagated as panics.
func (t *Taskbar) Launch(name string) error {
	m := t.lookup(name)
	if m == nil {
		return fmt.Errorf("program %q is not on the taskbar", name)
	}
	if t.cfg.Runner == nil {
		return fmt.Errorf("no program runner configured")
	}
	return t.cfg.Runner.Run(t.cfg.Context, m)
}

func (t *Taskbar) activate(m *registry.Manifest) {
	t.log.Info("launching program", zap.String("program", m.Name))
	if err := t.Launch(m.Name); err != nil {
		t.log.Error("program failed", zap.String("program", m.Name), zap.Error(err))
	}
}

func (t *Taskbar) lookup(name string) *registry.Manifest {
	for _, m := range t.programs {
		if m.Name == name {
			return m
		}
	}
	return nil
}

func lastRunLine(r history.Record) []texel.Span {
	when := r.StartedAt.Local().Format("2006-01-02 15:04")
	if r.Failed() {
		return []texel.Span{{Text: "Last run " + when + ": " + r.Err, Color: tcell.ColorMaroon}}
	}
	return []texel.Span{{Text: "Last run " + when + ": ok", Color: tcell.ColorGray}}
}

// ShowInfo opens a transient popup describing the named program: its
// description, launch count, last outcome and a coloured preview of its script.
func (t *Taskbar) ShowInfo(name string) (texel.WindowID, error) {
	m := t.lookup(name)
	if m == nil {
		return 0, fmt.Errorf("program %q is not on the taskbar", name)
	}
	if t.cfg.Windows == nil {
		return 0, fmt.Errorf("no window stack configured")
	}

	lines := [][]texel.Span{
		{{Text: m.Icon + " " + m.Name, Color: tcell.ColorNavy}},
		{{Text: m.Description, Color: tcell.ColorBlack}},
	}
	if t.cfg.History != nil {
		n, err := t.cfg.History.Count(m.Name)
		if err != nil {
			t.log.Warn("launch count unavailable", zap.String("program", m.Name), zap.Error(err))
		} else {
			lines = append(lines, []texel.Span{{Text: fmt.Sprintf("Launched %d times", n), Color: tcell.ColorGray}})
		}
		if last, ok, err := t.cfg.History.Last(m.Name); err != nil {
			t.log.Warn("last launch unavailable", zap.String("program", m.Name), zap.Error(err))
		} else if ok {
			lines = append(lines, lastRunLine(last))
		}
	}
	lines = append(lines, nil)

	src, err := os.ReadFile(m.ExecutableFile())
	if err != nil {
		lines = append(lines, []texel.Span{{Text: "source unavailable", Color: tcell.ColorMaroon}})
	} else {
		code, lang := preview.Highlight(m.ExecutableFile(), src, preview.Options{})
		if lang != "" {
			lines = append(lines, []texel.Span{{Text: lang, Color: tcell.ColorGray}})
		}
		lines = append(lines, code...)
	}

	id := t.cfg.Windows.Open(m.Name, texel.Vec2{X: 0, Y: 0.1}, infoWindowSize, texel.ClassSystem)
	if w, ok := t.cfg.Windows.Window(id); ok {
		w.Content.Visual.Lines = lines
	}
	return id, nil
}
