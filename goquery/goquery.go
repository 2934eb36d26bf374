// Package goquery implements the HTML sanitizer, content extractor and
// structural analyzer on top of goquery and golang.org/x/net/html.
package goquery

import (
	"bytes"
	"errors"
	"strings"

	"github.com/poozantata/pagelens"
	"golang.org/x/net/html"
)

// attr returns the value of the named attribute or the empty string.
func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// attrMap copies a node's attributes. Later duplicates win.
func attrMap(n *html.Node) map[string]string {
	m := make(map[string]string, len(n.Attr))
	for _, a := range n.Attr {
		m[a.Key] = a.Val
	}
	return m
}

// classList splits the class attribute into tokens; never nil.
func classList(n *html.Node) []string {
	classes := strings.Fields(attr(n, "class"))
	if classes == nil {
		return []string{}
	}
	return classes
}

// collapseWhitespace replaces runs of whitespace with one space and trims.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// textPrefix returns the concatenated text of n's subtree, stopping once
// limit runes have been gathered.
func textPrefix(n *html.Node, limit int) string {
	var sb strings.Builder
	runes := 0
	var walk func(*html.Node) bool
	walk = func(n *html.Node) bool {
		if n.Type == html.TextNode {
			for _, r := range n.Data {
				if runes == limit {
					return false
				}
				sb.WriteRune(r)
				runes++
			}
			return true
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if !walk(c) {
				return false
			}
		}
		return true
	}
	walk(n)
	return sb.String()
}

// textContent returns the concatenated text of n's subtree.
func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

var errPrefixFull = errors.New("prefix full")

// prefixWriter keeps the first limit bytes written and then refuses more,
// which stops html.Render early.
type prefixWriter struct {
	buf   bytes.Buffer
	limit int
}

func (w *prefixWriter) Write(p []byte) (int, error) {
	room := w.limit - w.buf.Len()
	if len(p) > room {
		w.buf.Write(p[:room])
		return room, errPrefixFull
	}
	return w.buf.Write(p)
}

// renderPrefix serializes n and returns at most chars runes of the markup.
func renderPrefix(n *html.Node, chars int) string {
	w := &prefixWriter{limit: chars * 4}
	_ = html.Render(w, n)
	return pagelens.TruncateRunes(strings.ToValidUTF8(w.buf.String(), ""), chars)
}

// render serializes n in full.
func render(n *html.Node) string {
	var buf bytes.Buffer
	_ = html.Render(&buf, n)
	return buf.String()
}

// findElement returns the first element named tag in document order.
func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}
