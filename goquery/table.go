package goquery

import (
	"net/url"

	"github.com/fwojciec/knowcore"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// tableRows extracts the header and data rows of a table element. The header
// comes from the first row holding th cells; rows without td cells are
// dropped. Rows of nested tables are not included.
func tableRows(table *html.Node, base *url.URL) ([]string, [][]string, []knowcore.Link) {
	var (
		header []string
		rows   [][]string
		links  []knowcore.Link
	)
	for _, tr := range rowsOf(table) {
		var cells, heads []string
		hasData := false
		for c := tr.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			switch c.DataAtom {
			case atom.Th:
				text, l := renderInline(c, base, nil)
				links = append(links, l...)
				heads = append(heads, text)
				cells = append(cells, text)
			case atom.Td:
				text, l := renderInline(c, base, nil)
				links = append(links, l...)
				cells = append(cells, text)
				hasData = true
			}
		}
		if header == nil && len(heads) > 0 {
			header = heads
		}
		if hasData {
			rows = append(rows, cells)
		}
	}
	return header, rows, links
}

// rowsOf returns the tr elements belonging to table, either directly or
// through thead, tbody and tfoot sections.
func rowsOf(table *html.Node) []*html.Node {
	var rows []*html.Node
	for c := table.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.DataAtom {
		case atom.Tr:
			rows = append(rows, c)
		case atom.Thead, atom.Tbody, atom.Tfoot:
			for r := c.FirstChild; r != nil; r = r.NextSibling {
				if r.Type == html.ElementNode && r.DataAtom == atom.Tr {
					rows = append(rows, r)
				}
			}
		}
	}
	return rows
}
