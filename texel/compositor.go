// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: texel/compositor.go
// Summary: Draws the scene graph into terminal cells and routes terminal
// input to windows, pages and the shell's key handler.
// Usage: Installed as the frame driver's renderer and input handler.

package texel

import (
	"math"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
	"go.uber.org/zap"
)

// Cell is one rendered terminal cell. Ch is zero for the trailing half of a
// wide rune.
type Cell struct {
	Ch    rune
	Style tcell.Style
}

// KeyHandler receives key presses. Returning true marks the key consumed.
type KeyHandler func(ev *tcell.EventKey) bool

// Compositor maps display space onto the terminal grid. Display x and y both
// span [-1, 1]; y grows upwards.
type Compositor struct {
	log     *zap.Logger
	screen  ScreenDriver
	scene   *Scene
	windows *WindowStack

	// Background is the colour transparent content fades towards.
	Background tcell.Color

	width, height int
	buf           [][]Cell

	pointer Pointer
	buttons tcell.ButtonMask
	keys    KeyHandler
}

// NewCompositor creates a compositor drawing scene onto screen.
func NewCompositor(screen ScreenDriver, scene *Scene, windows *WindowStack, log *zap.Logger) *Compositor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Compositor{
		log:        log,
		screen:     screen,
		scene:      scene,
		windows:    windows,
		Background: tcell.ColorBlack,
	}
}

// SetKeyHandler installs the key press consumer.
func (c *Compositor) SetKeyHandler(h KeyHandler) { c.keys = h }

// Pointer returns the last pointer sample in display space.
func (c *Compositor) Pointer() Pointer { return c.pointer }

// Buffer returns the most recently rendered frame.
func (c *Compositor) Buffer() [][]Cell { return c.buf }

// CellToDisplay maps the centre of a terminal cell to display space.
func (c *Compositor) CellToDisplay(x, y int) Vec2 {
	w, h := c.size()
	return Vec2{
		X: (float64(x)+0.5)/float64(w)*2 - 1,
		Y: 1 - (float64(y)+0.5)/float64(h)*2,
	}
}

// cellRect returns the half-open cell rectangle covered by a display box.
// Non-empty boxes cover at least one cell.
func (c *Compositor) cellRect(b Box) (x0, y0, x1, y1 int) {
	w, h := c.size()
	x0 = int(math.Round((b.XMin + 1) / 2 * float64(w)))
	x1 = int(math.Round((b.XMax + 1) / 2 * float64(w)))
	y0 = int(math.Round((1 - b.YMax) / 2 * float64(h)))
	y1 = int(math.Round((1 - b.YMin) / 2 * float64(h)))
	if !b.Empty() {
		if x1 <= x0 {
			x1 = x0 + 1
		}
		if y1 <= y0 {
			y1 = y0 + 1
		}
	}
	return x0, y0, x1, y1
}

func (c *Compositor) size() (int, int) {
	if c.width <= 0 || c.height <= 0 {
		c.width, c.height = c.screen.Size()
	}
	if c.width <= 0 {
		c.width = 1
	}
	if c.height <= 0 {
		c.height = 1
	}
	return c.width, c.height
}

func (c *Compositor) resize() {
	c.width, c.height = 0, 0
	w, h := c.size()
	c.buf = make([][]Cell, h)
	for y := range c.buf {
		c.buf[y] = make([]Cell, w)
	}
}

// Render composites the scene and flushes it to the screen. Pages are drawn in
// registration order, floating windows on top by ascending bin.
func (c *Compositor) Render() {
	w, h := c.screen.Size()
	if len(c.buf) != h || (h > 0 && len(c.buf[0]) != w) {
		c.resize()
	}
	base := tcell.StyleDefault.Background(c.Background)
	for y := range c.buf {
		for x := range c.buf[y] {
			c.buf[y][x] = Cell{Ch: ' ', Style: base}
		}
	}

	c.scene.Display.Walk(func(n *Node) bool {
		if n.hidden {
			return false
		}
		c.paint(n)
		return true
	})

	for y, row := range c.buf {
		for x, cell := range row {
			if cell.Ch == 0 {
				continue
			}
			c.screen.SetContent(x, y, cell.Ch, nil, cell.Style)
		}
	}
	c.screen.Show()
}

func (c *Compositor) paint(n *Node) {
	v := n.Visual
	if v.Fill == tcell.ColorDefault && v.Text == "" && len(v.Lines) == 0 {
		return
	}
	alpha := n.EffectiveAlpha()
	if alpha <= 0 {
		return
	}
	x0, y0, x1, y1 := c.cellRect(n.DisplayBox())

	if v.Fill != tcell.ColorDefault {
		fill := blendColor(c.Background, v.Fill, alpha)
		c.eachCell(x0, y0, x1, y1, func(cell *Cell) {
			cell.Ch = ' '
			cell.Style = cell.Style.Background(fill)
		})
	}

	if v.Text != "" {
		row := y0 + (y1-y0-1)/2
		col := x0 + ((x1-x0)-runewidth.StringWidth(v.Text))/2
		c.printText(col, row, -1, v.Text, c.textColor(v.TextColor), alpha, v.Bold)
	}

	for i, line := range v.Lines {
		row := y0 + i
		if row >= y1 {
			break
		}
		col := x0
		for _, span := range line {
			col = c.printText(col, row, x1, span.Text, c.textColor(span.Color), alpha, v.Bold)
		}
	}
}

func (c *Compositor) textColor(col tcell.Color) tcell.Color {
	if col == tcell.ColorDefault {
		return tcell.ColorWhite
	}
	return col
}

func (c *Compositor) eachCell(x0, y0, x1, y1 int, fn func(*Cell)) {
	for y := max(y0, 0); y < min(y1, len(c.buf)); y++ {
		row := c.buf[y]
		for x := max(x0, 0); x < min(x1, len(row)); x++ {
			fn(&row[x])
		}
	}
}

// printText writes s from col on row keeping each cell's background. limit
// clips at a column when non-negative. It returns the column after the text.
func (c *Compositor) printText(col, row, limit int, s string, fg tcell.Color, alpha float64, bold bool) int {
	if row < 0 || row >= len(c.buf) {
		return col + runewidth.StringWidth(s)
	}
	line := c.buf[row]
	for _, r := range s {
		rw := runewidth.RuneWidth(r)
		if rw == 0 {
			continue
		}
		if limit >= 0 && col+rw > limit {
			return limit
		}
		if col >= 0 && col+rw <= len(line) {
			cell := &line[col]
			_, bg, _ := cell.Style.Decompose()
			cell.Ch = r
			cell.Style = cell.Style.Foreground(blendColor(bg, fg, alpha)).Bold(bold)
			if rw == 2 {
				line[col+1].Ch = 0
			}
		}
		col += rw
	}
	return col
}

// blendColor interpolates linearly from base towards over by intensity.
func blendColor(base, over tcell.Color, intensity float64) tcell.Color {
	if intensity >= 1 || !base.Valid() || !over.Valid() {
		return over
	}
	if intensity <= 0 {
		return base
	}

	r1, g1, b1 := base.RGB()
	r2, g2, b2 := over.RGB()

	r := int32(float64(r1)*(1-intensity) + float64(r2)*intensity)
	g := int32(float64(g1)*(1-intensity) + float64(g2)*intensity)
	b := int32(float64(b1)*(1-intensity) + float64(b2)*intensity)

	return tcell.NewRGBColor(clampChannel(r), clampChannel(g), clampChannel(b))
}

func clampChannel(v int32) int32 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}

// HandleEvent processes one terminal event on the frame goroutine.
func (c *Compositor) HandleEvent(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		c.resize()
		c.screen.Sync()
	case *tcell.EventFocus:
		if !ev.Focused {
			c.pointer.Present = false
			c.buttons = 0
			c.windows.EndAllDrags()
		}
	case *tcell.EventMouse:
		c.handleMouse(ev)
	case *tcell.EventKey:
		if c.keys != nil {
			c.keys(ev)
		}
	}
}

func (c *Compositor) handleMouse(ev *tcell.EventMouse) {
	x, y := ev.Position()
	p := c.CellToDisplay(x, y)
	c.pointer = Pointer{Pos: p, Present: true}

	buttons := ev.Buttons() & (tcell.ButtonPrimary | tcell.ButtonSecondary | tcell.ButtonMiddle)
	pressed := buttons &^ c.buttons
	released := c.buttons &^ buttons
	c.buttons = buttons

	if released&tcell.ButtonPrimary != 0 {
		c.windows.EndAllDrags()
	}
	if pressed&tcell.ButtonPrimary != 0 {
		c.primaryPress(p)
	}
	if pressed&tcell.ButtonSecondary != 0 {
		c.secondaryPress(p)
	}
}

func (c *Compositor) primaryPress(p Vec2) {
	if w, part := c.windows.TopmostAt(p); w != nil {
		var err error
		switch part {
		case PartCloseButton:
			err = c.windows.Close(w.id)
		case PartTitleBar:
			err = c.windows.BeginDrag(w.id, p)
		default:
			err = c.windows.Focus(w.id)
		}
		if err != nil {
			c.log.Warn("window press", zap.Error(err))
		}
		return
	}
	if n := c.topmostNode(p, func(n *Node) bool { return n.OnClick != nil }); n != nil {
		n.OnClick()
	}
}

func (c *Compositor) secondaryPress(p Vec2) {
	if w, _ := c.windows.TopmostAt(p); w != nil {
		return
	}
	if n := c.topmostNode(p, func(n *Node) bool { return n.OnSecondary != nil }); n != nil {
		n.OnSecondary()
	}
}

// topmostNode returns the last drawn visible node under p accepted by match.
func (c *Compositor) topmostNode(p Vec2, match func(*Node) bool) *Node {
	var hit *Node
	c.scene.Display.Walk(func(n *Node) bool {
		if n.hidden || n == c.scene.Windows {
			return false
		}
		if match(n) && n.DisplayBox().Contains(p) {
			hit = n
		}
		return true
	})
	return hit
}
