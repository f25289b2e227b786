package sanitizer

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// HTMLToText derives a plain-text fallback from sanitized HTML. Block
// elements become line breaks, links render as "text (href)" unless the text
// already equals the href, and images are dropped.
func HTMLToText(s string) string {
	root, err := html.Parse(strings.NewReader(s))
	if err != nil {
		// Parser repaired nothing we can use; strip tags the hard way.
		return strings.TrimSpace(SanitizeHTML(s))
	}

	var b strings.Builder
	walkText(root, &b)

	return collapseBlankLines(b.String())
}

func walkText(n *html.Node, b *strings.Builder) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		return
	case html.ElementNode:
		switch n.DataAtom {
		case atom.Img, atom.Script, atom.Style:
			return
		case atom.Br:
			b.WriteString("\n")
			return
		case atom.A:
			writeLink(n, b)
			return
		case atom.Li:
			b.WriteString("- ")
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkText(c, b)
	}

	if n.Type == html.ElementNode && isBlock(n.DataAtom) {
		b.WriteString("\n")
	}
}

func writeLink(n *html.Node, b *strings.Builder) {
	var inner strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkText(c, &inner)
	}
	text := strings.TrimSpace(inner.String())

	var href string
	for _, attr := range n.Attr {
		if attr.Key == "href" {
			href = attr.Val
			break
		}
	}

	switch {
	case text == "" && href == "":
	case text == "":
		b.WriteString(href)
	case href == "" || text == href:
		b.WriteString(text)
	default:
		b.WriteString(text)
		b.WriteString(" (")
		b.WriteString(href)
		b.WriteString(")")
	}
}

func isBlock(a atom.Atom) bool {
	switch a {
	case atom.P, atom.Div, atom.Li, atom.Ul, atom.Ol, atom.Blockquote, atom.Pre:
		return true
	}
	return false
}

func collapseBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	blank := 0
	for _, line := range lines {
		trimmed := strings.TrimRight(line, " \t")
		if strings.TrimSpace(trimmed) == "" {
			blank++
			if blank > 1 {
				continue
			}
			trimmed = ""
		} else {
			blank = 0
		}
		out = append(out, trimmed)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
