package goldmark

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/localchat"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

const minWrapWidth = 10

var parser = goldmark.New(goldmark.WithExtensions(extension.Strikethrough)).Parser()

type renderer struct {
	src []byte
	out bytes.Buffer

	strong  lipgloss.Style
	em      lipgloss.Style
	strike  lipgloss.Style
	heading lipgloss.Style
	code    lipgloss.Style
	faint   lipgloss.Style
	link    lipgloss.Style
}

func newRenderer(theme localchat.Theme, src []byte) *renderer {
	return &renderer{
		src:     src,
		strong:  lipgloss.NewStyle().Bold(true),
		em:      lipgloss.NewStyle().Italic(true),
		strike:  lipgloss.NewStyle().Strikethrough(true),
		heading: lipgloss.NewStyle().Foreground(ansiColor(theme.Accent)).Bold(true),
		code:    lipgloss.NewStyle().Foreground(ansiColor(theme.Reply)),
		faint:   lipgloss.NewStyle().Foreground(ansiColor(theme.Muted)).Faint(true),
		link:    lipgloss.NewStyle().Underline(true),
	}
}

func ansiColor(index int) lipgloss.TerminalColor {
	if index < 0 {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(strconv.Itoa(index))
}

func (r *renderer) run(width int) string {
	doc := parser.Parse(text.NewReader(r.src))
	r.blocks(doc, width, "")
	return strings.TrimRight(r.out.String(), "\n")
}

// blocks renders the block children of parent, each line prefixed with
// gutter, separating siblings with a blank line.
func (r *renderer) blocks(parent ast.Node, width int, gutter string) {
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		r.block(n, width, gutter)
		if n.NextSibling() != nil && !isHTML(n) {
			r.line(gutter, "")
		}
	}
}

func (r *renderer) block(n ast.Node, width int, gutter string) {
	switch b := n.(type) {
	case *ast.Paragraph, *ast.TextBlock:
		r.wrapped(gutter, "", r.inline(b), width)
	case *ast.Heading:
		r.wrapped(gutter, "", r.heading.Render(r.inline(b)), width)
	case *ast.FencedCodeBlock:
		if lang := string(b.Language(r.src)); lang != "" {
			r.line(gutter, r.faint.Render(lang))
		}
		r.codeLines(b, gutter)
	case *ast.CodeBlock:
		r.codeLines(b, gutter)
	case *ast.Blockquote:
		r.blocks(b, width-2, gutter+r.faint.Render(">")+" ")
	case *ast.List:
		r.list(b, width, gutter, 0)
	case *ast.ThematicBreak:
		r.line(gutter, r.faint.Render("---"))
	case *ast.HTMLBlock:
		for i := 0; i < b.Lines().Len(); i++ {
			seg := b.Lines().At(i)
			r.out.Write(seg.Value(r.src))
		}
	default:
		r.blocks(n, width, gutter)
	}
}

// codeLines writes the raw lines of a code block behind a bar.
func (r *renderer) codeLines(n ast.Node, gutter string) {
	bar := gutter + r.faint.Render("│") + " "
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		r.line(bar, strings.TrimRight(string(seg.Value(r.src)), "\n"))
	}
}

func (r *renderer) list(l *ast.List, width int, gutter string, depth int) {
	num := l.Start
	for n := l.FirstChild(); n != nil; n = n.NextSibling() {
		item, ok := n.(*ast.ListItem)
		if !ok {
			continue
		}
		marker := "- "
		if l.IsOrdered() {
			marker = strconv.Itoa(num) + ". "
			num++
		}
		indent := strings.Repeat("  ", depth)

		var pending strings.Builder
		flush := func() {
			if pending.Len() == 0 {
				return
			}
			r.wrapped(gutter+indent, marker, pending.String(), width)
			pending.Reset()
			marker = strings.Repeat(" ", len(marker))
		}
		for c := item.FirstChild(); c != nil; c = c.NextSibling() {
			switch child := c.(type) {
			case *ast.Paragraph, *ast.TextBlock:
				pending.WriteString(r.inline(child))
			case *ast.List:
				flush()
				r.list(child, width, gutter, depth+1)
			default:
				flush()
				r.block(c, width-len(indent)-len(marker), gutter+indent+strings.Repeat(" ", len(marker)))
			}
		}
		flush()
	}
}

// wrapped word-wraps s to width and writes it, putting marker before the
// first line and aligning the rest under it.
func (r *renderer) wrapped(gutter, marker, s string, width int) {
	w := max(width-lipgloss.Width(gutter)-len(marker), minWrapWidth)
	hang := strings.Repeat(" ", len(marker))
	for i, l := range strings.Split(lipgloss.NewStyle().Width(w).Render(s), "\n") {
		if i == 0 {
			r.line(gutter, marker+l)
		} else {
			r.line(gutter, hang+l)
		}
	}
}

func (r *renderer) line(gutter, s string) {
	if s == "" {
		r.out.WriteString(strings.TrimRight(gutter, " "))
	} else {
		r.out.WriteString(gutter + s)
	}
	r.out.WriteByte('\n')
}

// inline renders the inline children of n into a single styled string.
func (r *renderer) inline(n ast.Node) string {
	var sb strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		r.span(c, &sb)
	}
	return sb.String()
}

func (r *renderer) span(n ast.Node, sb *strings.Builder) {
	switch s := n.(type) {
	case *ast.Text:
		sb.Write(s.Segment.Value(r.src))
		switch {
		case s.HardLineBreak():
			sb.WriteByte('\n')
		case s.SoftLineBreak():
			sb.WriteByte(' ')
		}
	case *ast.String:
		sb.Write(s.Value)
	case *ast.Emphasis:
		if s.Level == 1 {
			sb.WriteString(r.em.Render(r.inline(s)))
		} else {
			sb.WriteString(r.strong.Render(r.inline(s)))
		}
	case *extast.Strikethrough:
		sb.WriteString(r.strike.Render(r.inline(s)))
	case *ast.CodeSpan:
		sb.WriteString(r.code.Render(r.inline(s)))
	case *ast.Link:
		sb.WriteString(r.link.Render(r.inline(s)) + " " + r.faint.Render("("+string(s.Destination)+")"))
	case *ast.Image:
		sb.WriteString(r.link.Render(r.inline(s)) + " " + r.faint.Render("("+string(s.Destination)+")"))
	case *ast.AutoLink:
		sb.WriteString(r.link.Render(string(s.URL(r.src))))
	case *ast.RawHTML:
		for i := 0; i < s.Segments.Len(); i++ {
			seg := s.Segments.At(i)
			sb.Write(seg.Value(r.src))
		}
	default:
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			r.span(c, sb)
		}
	}
}

func isHTML(n ast.Node) bool {
	_, ok := n.(*ast.HTMLBlock)
	return ok
}
