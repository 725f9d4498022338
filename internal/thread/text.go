package thread

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Paragraphs converts a comment body to plain-text paragraphs.
//
// HN comment markup is small: bare text for the first paragraph, <p> for the
// following ones, <a>, <i>, <code> inline, and <pre><code> for code blocks.
// Inline elements are reduced to their text, <br> becomes a line break and
// <pre> keeps its lines as they are.
func Paragraphs(n *html.Node) []string {
	if n == nil {
		return nil
	}
	var p paragraphWriter
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		p.walk(c)
	}
	p.flush()
	return p.out
}

// ParagraphsFromHTML is Paragraphs for a raw HTML fragment, such as the
// "text" field of an API item.
func ParagraphsFromHTML(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	ctx := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	nodes, err := html.ParseFragment(strings.NewReader(raw), ctx)
	if err != nil {
		return nil
	}
	for _, n := range nodes {
		ctx.AppendChild(n)
	}
	return Paragraphs(ctx)
}

type paragraphWriter struct {
	out []string
	cur strings.Builder
	// verbatim is set when the pending paragraph came from a <pre> block.
	verbatim bool
}

func (p *paragraphWriter) walk(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		p.cur.WriteString(n.Data)
		return
	case html.ElementNode:
	default:
		return
	}

	switch n.DataAtom {
	case atom.Script, atom.Style:
		return
	case atom.Br:
		p.cur.WriteString("\n")
		return
	case atom.P:
		p.flush()
		p.children(n)
		p.flush()
		return
	case atom.Pre:
		p.flush()
		p.verbatim = true
		p.children(n)
		p.flush()
		return
	case atom.Div:
		if hasClass(n, "reply") {
			return
		}
	}
	p.children(n)
}

func (p *paragraphWriter) children(n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		p.walk(c)
	}
}

func (p *paragraphWriter) flush() {
	raw := p.cur.String()
	p.cur.Reset()
	verbatim := p.verbatim
	p.verbatim = false

	var text string
	if verbatim {
		text = tidyPre(raw)
	} else {
		text = tidyText(raw)
	}
	if text != "" {
		p.out = append(p.out, text)
	}
}

// tidyText collapses whitespace on every line and drops blank lines.
func tidyText(s string) string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

// tidyPre keeps indentation but trims trailing space and blank edges.
func tidyPre(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t\r")
	}
	for len(lines) > 0 && lines[0] == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}

func hasClass(n *html.Node, class string) bool {
	for _, a := range n.Attr {
		if a.Key != "class" {
			continue
		}
		for _, f := range strings.Fields(a.Val) {
			if f == class {
				return true
			}
		}
	}
	return false
}
