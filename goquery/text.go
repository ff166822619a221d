package goquery

import (
	"net/url"
	"strings"

	"github.com/fwojciec/knowcore"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// blockAtoms are elements that break inline flow. Text on either side of
// them is separated by a space when flattened.
var blockAtoms = map[atom.Atom]bool{
	atom.Address: true, atom.Article: true, atom.Aside: true, atom.Blockquote: true,
	atom.Br: true, atom.Dd: true, atom.Div: true, atom.Dl: true, atom.Dt: true,
	atom.Figcaption: true, atom.Figure: true, atom.Footer: true, atom.H1: true,
	atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Header: true, atom.Hr: true, atom.Li: true, atom.Main: true, atom.Nav: true,
	atom.Ol: true, atom.P: true, atom.Pre: true, atom.Section: true, atom.Table: true,
	atom.Td: true, atom.Th: true, atom.Tr: true, atom.Ul: true,
}

// skippedAtoms never contribute text.
var skippedAtoms = map[atom.Atom]bool{
	atom.Script: true, atom.Style: true, atom.Noscript: true, atom.Template: true,
}

// collapse trims s and replaces runs of whitespace with a single space.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// rawText concatenates every text node under n without altering whitespace.
func rawText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			return
		}
		if n.Type == html.ElementNode && skippedAtoms[n.DataAtom] {
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// flatText returns the visible text of n with whitespace collapsed.
func flatText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
			return
		case html.ElementNode:
			if skippedAtoms[n.DataAtom] {
				return
			}
			if blockAtoms[n.DataAtom] {
				b.WriteByte(' ')
				defer b.WriteByte(' ')
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return collapse(b.String())
}

// inline renders text with links rewritten as [anchor](href).
type inline struct {
	base  *url.URL
	skip  func(*html.Node) bool
	b     strings.Builder
	links []knowcore.Link
}

// renderInline returns the text of n with inline links rewritten and the
// links it rendered. Nodes for which skip reports true are left out.
func renderInline(n *html.Node, base *url.URL, skip func(*html.Node) bool) (string, []knowcore.Link) {
	w := &inline{base: base, skip: skip}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.walk(c)
	}
	return collapse(w.b.String()), w.links
}

func (w *inline) walk(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		w.b.WriteString(n.Data)
		return
	case html.ElementNode:
	default:
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			w.walk(c)
		}
		return
	}

	if skippedAtoms[n.DataAtom] || (w.skip != nil && w.skip(n)) {
		return
	}
	if n.DataAtom == atom.A {
		w.link(n)
		return
	}
	if blockAtoms[n.DataAtom] {
		w.b.WriteByte(' ')
		defer w.b.WriteByte(' ')
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.walk(c)
	}
}

func (w *inline) link(n *html.Node) {
	anchor := flatText(n)
	href := resolveHref(w.base, attr(n, "href"))
	if href == "" {
		w.b.WriteString(anchor)
		return
	}
	w.b.WriteString("[" + anchor + "](" + href + ")")
	w.links = append(w.links, knowcore.Link{Href: href, Text: anchor})
}

// resolveHref resolves a relative href against base. Fragment-only hrefs
// and hrefs without a base are returned unchanged.
func resolveHref(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || base == nil || strings.HasPrefix(href, "#") {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

// baseURL returns the parsed source URI when it is an absolute HTTP(S) URL.
func baseURL(sourceURI string) *url.URL {
	s := knowcore.HTTPBase(sourceURI)
	if s == "" {
		return nil
	}
	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return nil
	}
	return u
}

// attr returns the trimmed value of the named attribute of n.
func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, name) {
			return strings.TrimSpace(a.Val)
		}
	}
	return ""
}

// firstChild returns the first descendant element of n with the given atom.
func firstChild(n *html.Node, a atom.Atom) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == a {
			return c
		}
		if found := firstChild(c, a); found != nil {
			return found
		}
	}
	return nil
}

// isList reports whether n is a ul or ol element.
func isList(n *html.Node) bool {
	return n.Type == html.ElementNode && (n.DataAtom == atom.Ul || n.DataAtom == atom.Ol)
}
