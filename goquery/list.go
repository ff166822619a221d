package goquery

import (
	"net/url"

	"github.com/fwojciec/knowcore"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// listItems builds the nested item tree of a ul or ol element. Only direct
// li children are items; lists nested anywhere inside an item become its
// sub-items.
func listItems(list *html.Node, base *url.URL) ([]knowcore.ListItem, []knowcore.Link) {
	var (
		items []knowcore.ListItem
		links []knowcore.Link
	)
	for li := list.FirstChild; li != nil; li = li.NextSibling {
		if li.Type != html.ElementNode || li.DataAtom != atom.Li {
			continue
		}
		text, l := renderInline(li, base, isList)
		links = append(links, l...)

		item := knowcore.ListItem{Text: text}
		for _, nested := range nestedLists(li) {
			sub, l := listItems(nested, base)
			item.Items = append(item.Items, sub...)
			links = append(links, l...)
		}
		items = append(items, item)
	}
	return items, links
}

// nestedLists returns the outermost lists below n in document order,
// including lists wrapped in other elements.
func nestedLists(n *html.Node) []*html.Node {
	var lists []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if isList(c) {
			lists = append(lists, c)
			continue
		}
		lists = append(lists, nestedLists(c)...)
	}
	return lists
}
