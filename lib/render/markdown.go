// Copyright 2026 The Habitude Authors
// SPDX-License-Identifier: Apache-2.0

package render

import (
	"os"
	"strings"
	"sync"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

var (
	markdownParserInstance goldmark.Markdown
	markdownParserOnce     sync.Once
)

func getMarkdownParser() goldmark.Markdown {
	markdownParserOnce.Do(func() {
		markdownParserInstance = goldmark.New(goldmark.WithExtensions(extension.GFM))
	})
	return markdownParserInstance
}

// renderMarkdown renders markdown-formatted report text for a
// terminal of the given width. Only the subset of markdown
// BuildReportMarkdown ever emits is handled: headings, paragraphs,
// GFM tables, fenced code blocks, and inline emphasis/code spans.
func renderMarkdown(input string, theme Theme, width int) string {
	if input == "" {
		return ""
	}
	source := []byte(input)
	reader := text.NewReader(source)
	document := getMarkdownParser().Parser().Parse(reader)

	lipRenderer := lipgloss.NewRenderer(os.Stdout, termenv.WithProfile(termenv.ANSI256))
	lipRenderer.SetColorProfile(termenv.ANSI256)

	renderer := &markdownRenderer{source: source, theme: theme, width: width, lipRenderer: lipRenderer}
	ast.Walk(document, renderer.walk)
	return strings.TrimRight(renderer.output.String(), "\n")
}

type markdownRenderer struct {
	source []byte
	theme  Theme
	width  int

	output strings.Builder
	inline strings.Builder

	boldCount   int
	italicCount int

	lipRenderer      *lipgloss.Renderer
	trailingNewlines int
}

func (r *markdownRenderer) newStyle() lipgloss.Style { return r.lipRenderer.NewStyle() }

func (r *markdownRenderer) writeOutput(s string) {
	if s == "" {
		return
	}
	r.output.WriteString(s)
	trailing := 0
	allNewlines := true
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '\n' {
			trailing++
		} else {
			allNewlines = false
			break
		}
	}
	if allNewlines {
		r.trailingNewlines += trailing
	} else {
		r.trailingNewlines = trailing
	}
}

func (r *markdownRenderer) ensureNewline() {
	if r.trailingNewlines < 1 {
		r.writeOutput("\n")
	}
}

func (r *markdownRenderer) ensureBlankLine() {
	for r.trailingNewlines < 2 {
		r.writeOutput("\n")
	}
}

func (r *markdownRenderer) flushInline() string {
	content := r.inline.String()
	r.inline.Reset()
	if content == "" {
		return ""
	}
	return ansi.Wrap(content, r.width, " ,.;-+|")
}

func (r *markdownRenderer) styledText(content string) string {
	style := r.newStyle().Foreground(r.theme.NormalText)
	if r.boldCount > 0 {
		style = style.Bold(true)
	}
	if r.italicCount > 0 {
		style = style.Italic(true)
	}
	return style.Render(content)
}

func (r *markdownRenderer) renderInlineContent(node ast.Node) string {
	saved := r.inline.String()
	r.inline.Reset()
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		ast.Walk(child, r.walk)
	}
	result := r.inline.String()
	r.inline.Reset()
	r.inline.WriteString(saved)
	return result
}

func (r *markdownRenderer) highlightCode(code, language string) string {
	if language == "" {
		return r.newStyle().Foreground(r.theme.FaintText).Render(code)
	}
	var buf strings.Builder
	if err := quick.Highlight(&buf, code, language, "terminal256", "monokai"); err != nil {
		return r.newStyle().Foreground(r.theme.FaintText).Render(code)
	}
	return buf.String()
}

func (r *markdownRenderer) walk(node ast.Node, entering bool) (ast.WalkStatus, error) {
	switch node.Kind() {
	case ast.KindParagraph, ast.KindTextBlock:
		if entering {
			r.inline.Reset()
		} else if flushed := r.flushInline(); flushed != "" {
			r.writeOutput(flushed)
			r.ensureNewline()
			r.ensureBlankLine()
		}

	case ast.KindHeading:
		if entering {
			r.inline.Reset()
		} else {
			r.leaveHeading(node.(*ast.Heading))
		}

	case ast.KindFencedCodeBlock:
		if entering {
			r.renderFencedCodeBlock(node.(*ast.FencedCodeBlock))
			return ast.WalkSkipChildren, nil
		}

	case ast.KindText:
		if entering {
			text := node.(*ast.Text)
			segment := text.Segment
			r.inline.WriteString(r.styledText(string(segment.Value(r.source))))
			if text.SoftLineBreak() {
				r.inline.WriteString(" ")
			}
			if text.HardLineBreak() {
				r.inline.WriteString("\n")
			}
		}

	case ast.KindEmphasis:
		em := node.(*ast.Emphasis)
		if em.Level >= 2 {
			if entering {
				r.boldCount++
			} else {
				r.boldCount--
			}
		} else {
			if entering {
				r.italicCount++
			} else {
				r.italicCount--
			}
		}

	case ast.KindCodeSpan:
		if entering {
			var code strings.Builder
			for child := node.FirstChild(); child != nil; child = child.NextSibling() {
				if t, ok := child.(*ast.Text); ok {
					code.Write(t.Segment.Value(r.source))
				}
			}
			r.inline.WriteString(r.newStyle().Foreground(r.theme.FaintText).Render(code.String()))
			return ast.WalkSkipChildren, nil
		}

	case extast.KindTable:
		if entering {
			r.renderTable(node)
			return ast.WalkSkipChildren, nil
		}
	}

	return ast.WalkContinue, nil
}

func (r *markdownRenderer) leaveHeading(heading *ast.Heading) {
	content := ansi.Strip(r.inline.String())
	r.inline.Reset()
	if content == "" {
		return
	}
	style := r.newStyle().Bold(true)
	if heading.Level <= 2 {
		style = style.Foreground(r.theme.HeaderForeground)
	} else {
		style = style.Foreground(r.theme.NormalText)
	}
	r.ensureBlankLine()
	r.writeOutput(ansi.Wrap(style.Render(content), r.width, " ,.;-+|"))
	r.ensureNewline()
	r.ensureBlankLine()
}

func (r *markdownRenderer) renderFencedCodeBlock(node *ast.FencedCodeBlock) {
	language := string(node.Language(r.source))
	var code strings.Builder
	lines := node.Lines()
	for i := 0; i < lines.Len(); i++ {
		segment := lines.At(i)
		code.Write(segment.Value(r.source))
	}
	highlighted := r.highlightCode(code.String(), language)
	r.ensureBlankLine()
	for _, line := range strings.Split(strings.TrimRight(highlighted, "\n"), "\n") {
		r.writeOutput(line)
		r.ensureNewline()
	}
	r.ensureBlankLine()
}

func (r *markdownRenderer) renderTable(node ast.Node) {
	table := node.(*extast.Table)
	alignments := table.Alignments

	var header []string
	var rows [][]string
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		switch child.Kind() {
		case extast.KindTableHeader:
			header = r.collectRow(child)
		case extast.KindTableRow:
			rows = append(rows, r.collectRow(child))
		}
	}

	columns := len(header)
	if columns == 0 && len(rows) > 0 {
		columns = len(rows[0])
	}
	if columns == 0 {
		return
	}

	widths := make([]int, columns)
	for i, cell := range header {
		if i < columns && lipgloss.Width(cell) > widths[i] {
			widths[i] = lipgloss.Width(cell)
		}
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < columns && lipgloss.Width(cell) > widths[i] {
				widths[i] = lipgloss.Width(cell)
			}
		}
	}

	r.ensureBlankLine()
	if len(header) > 0 {
		bold := r.newStyle().Bold(true).Foreground(r.theme.NormalText)
		r.writeOutput(r.formatRow(header, widths, alignments, bold))
		r.ensureNewline()

		var seps []string
		for _, w := range widths {
			seps = append(seps, strings.Repeat("─", w))
		}
		border := r.newStyle().Foreground(r.theme.BorderColor)
		r.writeOutput(border.Render(strings.Join(seps, "  ")))
		r.ensureNewline()
	}
	for _, row := range rows {
		r.writeOutput(r.formatRow(row, widths, alignments, r.newStyle()))
		r.ensureNewline()
	}
	r.ensureBlankLine()
}

func (r *markdownRenderer) collectRow(row ast.Node) []string {
	var cells []string
	for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
		if cell.Kind() == extast.KindTableCell {
			cells = append(cells, r.renderInlineContent(cell))
		}
	}
	return cells
}

func (r *markdownRenderer) formatRow(cells []string, widths []int, alignments []extast.Alignment, base lipgloss.Style) string {
	var parts []string
	for i, width := range widths {
		var cell string
		if i < len(cells) {
			cell = cells[i]
		}
		visible := lipgloss.Width(cell)
		if visible > width {
			cell = ansi.Truncate(cell, width, "…")
			visible = lipgloss.Width(cell)
		}
		padding := width - visible
		if padding < 0 {
			padding = 0
		}
		var alignment extast.Alignment
		if i < len(alignments) {
			alignment = alignments[i]
		}
		switch alignment {
		case extast.AlignRight:
			cell = strings.Repeat(" ", padding) + cell
		case extast.AlignCenter:
			left := padding / 2
			cell = strings.Repeat(" ", left) + cell + strings.Repeat(" ", padding-left)
		default:
			cell = cell + strings.Repeat(" ", padding)
		}
		parts = append(parts, cell)
	}
	return base.Render(strings.Join(parts, "  "))
}
