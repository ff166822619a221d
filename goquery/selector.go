package goquery

import (
	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// compile turns a bare CSS selector into a goquery matcher. A selector that
// does not compile reports false; callers treat that as "no match".
func compile(css string) (goquery.Matcher, bool) {
	if css == "" {
		return nil, false
	}
	m, err := cascadia.Compile(css)
	if err != nil {
		return nil, false
	}
	return m, true
}

// Evaluate returns the descendants of sel matching css, in document order.
// A malformed selector yields an empty result.
func Evaluate(sel *goquery.Selection, css string) []*html.Node {
	if sel == nil {
		return nil
	}
	m, ok := compile(css)
	if !ok {
		return nil
	}
	return sel.FindMatcher(m).Nodes
}

// EvaluateOne returns the first descendant of sel matching css, or nil.
func EvaluateOne(sel *goquery.Selection, css string) *html.Node {
	nodes := Evaluate(sel, css)
	if len(nodes) == 0 {
		return nil
	}
	return nodes[0]
}

// MatchSet returns the descendants of sel matching css as an identity set.
func MatchSet(sel *goquery.Selection, css string) map[*html.Node]struct{} {
	nodes := Evaluate(sel, css)
	set := make(map[*html.Node]struct{}, len(nodes))
	for _, n := range nodes {
		set[n] = struct{}{}
	}
	return set
}
