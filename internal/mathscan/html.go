// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mathscan

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/pdiddy/paperlens/pkg/types"
)

// ScanHTML returns the equations carried by an HTML fragment: <math>
// elements, serialized back to MathML, and MathJax
// <script type="math/tex"> blocks. Equations are returned in document
// order; the text of the enclosing element becomes the context.
func ScanHTML(r io.Reader) ([]types.RawEquation, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing html: %w", err)
	}

	var out []types.RawEquation
	var walk func(n *html.Node) error
	walk = func(n *html.Node) error {
		if n.Type == html.ElementNode {
			switch {
			case strings.EqualFold(n.Data, "math"):
				var buf bytes.Buffer
				if err := html.Render(&buf, n); err != nil {
					return fmt.Errorf("rendering math element: %w", err)
				}
				out = append(out, types.RawEquation{
					Markup:  buf.String(),
					Format:  types.FormatMathML,
					Context: enclosingText(n),
					Display: strings.EqualFold(attr(n, "display"), "block"),
				})
				return nil

			case strings.EqualFold(n.Data, "script"):
				kind := strings.ToLower(attr(n, "type"))
				if !strings.HasPrefix(kind, "math/tex") {
					return nil
				}
				markup := strings.TrimSpace(textOf(n))
				if markup != "" {
					out = append(out, types.RawEquation{
						Markup:  markup,
						Format:  types.FormatLaTeX,
						Context: enclosingText(n),
						Display: strings.Contains(kind, "mode=display"),
					})
				}
				return nil

			case strings.EqualFold(n.Data, "style"), strings.EqualFold(n.Data, "noscript"):
				return nil
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if err := walk(c); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(doc); err != nil {
		return nil, err
	}
	return out, nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}

func textOf(n *html.Node) string {
	var b strings.Builder
	var collect func(*html.Node)
	collect = func(c *html.Node) {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
		for k := c.FirstChild; k != nil; k = k.NextSibling {
			collect(k)
		}
	}
	collect(n)
	return b.String()
}

// enclosingText returns the prose of the element enclosing n, excluding math and
// scripts, truncated to twice contextRadius runes.
func enclosingText(n *html.Node) string {
	parent := n.Parent
	if parent == nil || parent.Type != html.ElementNode || strings.EqualFold(parent.Data, "body") {
		return ""
	}
	var b strings.Builder
	var collect func(*html.Node)
	collect = func(c *html.Node) {
		if c.Type == html.ElementNode {
			switch strings.ToLower(c.Data) {
			case "math", "script", "style":
				b.WriteByte(' ')
				return
			}
		}
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
		for k := c.FirstChild; k != nil; k = k.NextSibling {
			collect(k)
		}
	}
	collect(parent)
	text := strings.Join(strings.Fields(b.String()), " ")
	if r := []rune(text); len(r) > 2*contextRadius {
		text = string(r[:2*contextRadius])
	}
	return text
}
