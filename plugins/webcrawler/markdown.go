package webcrawler

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// markdownFromHTML renders a parsed HTML document as readable markdown.
// Script, style, and head content is skipped.
func markdownFromHTML(doc *html.Node) string {
	var b strings.Builder
	walk(doc, &b)
	return tidy(b.String())
}

func walk(n *html.Node, b *strings.Builder) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(collapseSpace(n.Data))
		return
	case html.ElementNode:
		renderElement(n, b)
		return
	}
	renderChildren(n, b)
}

func renderChildren(n *html.Node, b *strings.Builder) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, b)
	}
}

func renderElement(n *html.Node, b *strings.Builder) {
	switch n.Data {
	case "head", "script", "style", "noscript", "iframe", "svg":
		return
	case "h1", "h2", "h3", "h4", "h5", "h6":
		level := int(n.Data[1] - '0')
		b.WriteString("\n\n" + strings.Repeat("#", level) + " ")
		renderChildren(n, b)
		b.WriteString("\n\n")
	case "p":
		b.WriteString("\n\n")
		renderChildren(n, b)
		b.WriteString("\n\n")
	case "br":
		b.WriteString("\n")
	case "hr":
		b.WriteString("\n\n---\n\n")
	case "strong", "b":
		b.WriteString("**")
		renderChildren(n, b)
		b.WriteString("**")
	case "em", "i":
		b.WriteString("*")
		renderChildren(n, b)
		b.WriteString("*")
	case "code":
		if n.Parent != nil && n.Parent.Data == "pre" {
			renderChildren(n, b)
			return
		}
		b.WriteString("`")
		renderChildren(n, b)
		b.WriteString("`")
	case "pre":
		var raw strings.Builder
		rawText(n, &raw)
		b.WriteString("\n\n```\n")
		b.WriteString(strings.Trim(raw.String(), "\n"))
		b.WriteString("\n```\n\n")
	case "ul", "ol":
		b.WriteString("\n")
		renderChildren(n, b)
		b.WriteString("\n")
	case "li":
		b.WriteString("\n- ")
		renderChildren(n, b)
	case "a":
		href := attr(n, "href")
		var inner strings.Builder
		renderChildren(n, &inner)
		text := strings.TrimSpace(inner.String())
		if text == "" {
			text = href
		}
		if href == "" {
			b.WriteString(text)
			return
		}
		fmt.Fprintf(b, "[%s](%s)", text, href)
	case "img":
		if src := attr(n, "src"); src != "" {
			fmt.Fprintf(b, "![%s](%s)", attr(n, "alt"), src)
		}
	case "blockquote":
		b.WriteString("\n\n> ")
		renderChildren(n, b)
		b.WriteString("\n\n")
	default:
		renderChildren(n, b)
	}
}

// pageTitle returns the text of the first <title> element, or "".
func pageTitle(doc *html.Node) string {
	var title string
	var find func(*html.Node)
	find = func(n *html.Node) {
		if title != "" {
			return
		}
		if n.Type == html.ElementNode && n.Data == "title" {
			var raw strings.Builder
			rawText(n, &raw)
			title = strings.TrimSpace(raw.String())
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			find(c)
		}
	}
	find(doc)
	return title
}

func rawText(n *html.Node, b *strings.Builder) {
	if n.Type == html.TextNode {
		b.WriteString(n.Data)
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		rawText(c, b)
	}
}

func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

// collapseSpace squeezes runs of whitespace to single spaces while keeping
// one leading or trailing space, so inline markup stays separated.
func collapseSpace(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	out := strings.Join(fields, " ")
	if isSpace(s[0]) {
		out = " " + out
	}
	if isSpace(s[len(s)-1]) {
		out += " "
	}
	return out
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\n' || c == '\t' || c == '\r'
}

var (
	paddedNewline = regexp.MustCompile(`[ \t]*\n[ \t]*`)
	blankRuns     = regexp.MustCompile(`\n{3,}`)
)

func tidy(s string) string {
	s = paddedNewline.ReplaceAllString(s, "\n")
	s = blankRuns.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
