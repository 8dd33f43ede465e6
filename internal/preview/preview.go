// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: internal/preview/preview.go
// Summary: Syntax-coloured source previews for the program info popup.
// Usage: Highlight detects the language of a program's script and returns
// coloured spans ready to be drawn into a window's content node.

package preview

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/gdamore/tcell/v2"
	"github.com/go-enry/go-enry/v2"
	"github.com/mattn/go-runewidth"

	"github.com/framegrace/texelshell/texel"
)

const (
	// DefaultStyle suits the light window background.
	DefaultStyle    = "github"
	defaultMaxLines = 12
	defaultMaxWidth = 60
)

// Options bound the preview.
type Options struct {
	Style    string
	MaxLines int
	MaxWidth int
}

func (o Options) withDefaults() Options {
	if o.Style == "" {
		o.Style = DefaultStyle
	}
	if o.MaxLines <= 0 {
		o.MaxLines = defaultMaxLines
	}
	if o.MaxWidth <= 0 {
		o.MaxWidth = defaultMaxWidth
	}
	return o
}

// DetectLanguage names the language of a file from its name and content.
// It returns an empty string when nothing matches.
func DetectLanguage(filename string, content []byte) string {
	if lang := enry.GetLanguage(filename, content); lang != "" {
		return lang
	}
	if l := lexers.Match(filename); l != nil {
		return l.Config().Name
	}
	return ""
}

// getLexer returns a lexer by language name, or by file name, or auto-detects
// from content.
func getLexer(language, filename, text string) chroma.Lexer {
	if language != "" {
		if l := lexers.Get(language); l != nil {
			return l
		}
	}
	if l := lexers.Match(filename); l != nil {
		return l
	}
	if l := lexers.Analyse(text); l != nil {
		return l
	}
	return lexers.Fallback
}

// Highlight colours the first lines of content. It returns the preview rows
// and the detected language.
func Highlight(filename string, content []byte, opts Options) ([][]texel.Span, string) {
	opts = opts.withDefaults()
	text := firstLines(strings.ReplaceAll(string(content), "\t", "    "), opts.MaxLines)
	language := DetectLanguage(filename, content)

	style := styles.Get(opts.Style)
	base := style.Get(chroma.Text).Colour
	baseColor := tcell.ColorBlack
	if base.IsSet() {
		baseColor = toTcell(base)
	}

	lexer := chroma.Coalesce(getLexer(language, filename, text))
	tokens, err := chroma.Tokenise(lexer, nil, text)
	if err != nil {
		return plain(text, baseColor, opts.MaxWidth), language
	}

	rows := [][]texel.Span{nil}
	widths := []int{0}
	for _, tok := range tokens {
		if tok.Type == chroma.EOFType {
			break
		}
		color := baseColor
		if c := style.Get(tok.Type).Colour; c.IsSet() {
			color = toTcell(c)
		}
		parts := strings.Split(tok.Value, "\n")
		for i, part := range parts {
			if i > 0 {
				if len(rows) == opts.MaxLines {
					return rows, language
				}
				rows = append(rows, nil)
				widths = append(widths, 0)
			}
			last := len(rows) - 1
			clipped, w := clip(part, opts.MaxWidth-widths[last])
			if clipped == "" {
				continue
			}
			rows[last] = append(rows[last], texel.Span{Text: clipped, Color: color})
			widths[last] += w
		}
	}
	if len(rows) > 0 && len(rows[len(rows)-1]) == 0 {
		rows = rows[:len(rows)-1]
	}
	return rows, language
}

func toTcell(c chroma.Colour) tcell.Color {
	return tcell.NewRGBColor(int32(c.Red()), int32(c.Green()), int32(c.Blue()))
}

func firstLines(s string, n int) string {
	lines := strings.SplitN(s, "\n", n+1)
	if len(lines) > n {
		lines = lines[:n]
	}
	return strings.Join(lines, "\n")
}

// clip truncates s to at most width cells.
func clip(s string, width int) (string, int) {
	if width <= 0 {
		return "", 0
	}
	w := runewidth.StringWidth(s)
	if w <= width {
		return s, w
	}
	s = runewidth.Truncate(s, width, "")
	return s, runewidth.StringWidth(s)
}

func plain(text string, color tcell.Color, maxWidth int) [][]texel.Span {
	var rows [][]texel.Span
	for _, line := range strings.Split(text, "\n") {
		line, _ = clip(line, maxWidth)
		rows = append(rows, []texel.Span{{Text: line, Color: color}})
	}
	return rows
}
