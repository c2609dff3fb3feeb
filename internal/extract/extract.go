// Package extract pulls readable text out of HTML pages for content
// ingested by URL.
package extract

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

// skippedElements are elements whose subtrees carry no readable content
var skippedElements = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"head":     true,
	"nav":      true,
	"footer":   true,
	"aside":    true,
	"iframe":   true,
	"svg":      true,
	"form":     true,
}

// blockElements end a line of extracted text
var blockElements = map[string]bool{
	"p":          true,
	"div":        true,
	"section":    true,
	"article":    true,
	"h1":         true,
	"h2":         true,
	"h3":         true,
	"h4":         true,
	"h5":         true,
	"h6":         true,
	"li":         true,
	"tr":         true,
	"br":         true,
	"blockquote": true,
}

// Text parses HTML and returns its visible text, one line per block
// element, with whitespace collapsed
func Text(r io.Reader) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", err
	}
	return TextFromNode(doc), nil
}

// TextFromNode extracts visible text from a parsed HTML tree
func TextFromNode(doc *html.Node) string {
	var b strings.Builder
	walk(doc, &b)

	lines := make([]string, 0, 64)
	for _, line := range strings.Split(b.String(), "\n") {
		line = collapseSpaces(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

func walk(n *html.Node, b *strings.Builder) {
	if n.Type == html.ElementNode && skippedElements[n.Data] {
		return
	}
	if n.Type == html.TextNode {
		b.WriteString(n.Data)
		b.WriteString(" ")
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, b)
	}

	if n.Type == html.ElementNode && blockElements[n.Data] {
		b.WriteString("\n")
	}
}

// Title returns the document title, or empty when absent
func Title(doc *html.Node) string {
	var title string
	var find func(*html.Node)
	find = func(n *html.Node) {
		if title != "" {
			return
		}
		if n.Type == html.ElementNode && n.Data == "title" && n.FirstChild != nil {
			title = collapseSpaces(n.FirstChild.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			find(c)
		}
	}
	find(doc)
	return title
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
