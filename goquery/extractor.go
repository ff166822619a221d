package goquery

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/knowcore"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var _ knowcore.Extractor = (*Extractor)(nil)

// Extractor applies an adapter to an HTML page and emits its metadata and
// content blocks in document order.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract parses rawHTML and applies the adapter.
//
// Subtrees matched by ignore selectors are detached from the parsed tree
// before metadata and blocks are read. Each element below the content root
// is classified by the first block rule whose selector matches it; elements
// inside an already emitted list, table, blockquote or figure container are
// not emitted again.
func (e *Extractor) Extract(rawHTML string, adapter *knowcore.Adapter, sourceURI string) (*knowcore.ExtractResult, error) {
	if adapter == nil {
		return nil, knowcore.Errorf(knowcore.EINVALID, "adapter required")
	}
	if strings.TrimSpace(rawHTML) == "" {
		return nil, knowcore.Errorf(knowcore.EINVALID, "empty HTML input")
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, knowcore.Errorf(knowcore.EINVALID, "failed to parse HTML: %v", err)
	}

	for _, css := range adapter.Content.Ignore {
		for _, n := range Evaluate(doc.Selection, knowcore.TrimSelector(css)) {
			if n.Parent != nil {
				n.Parent.RemoveChild(n)
			}
		}
	}

	meta := ExtractMeta(doc.Selection, adapter.Meta, sourceURI)
	if meta.Language == "" {
		if n := EvaluateOne(doc.Selection, "html[lang]"); n != nil {
			meta.Language = attr(n, "lang")
		}
	}

	root := contentRoot(doc, adapter.Content.Root)
	x := newExtraction(root, adapter.Content.Blocks, baseURL(sourceURI))
	x.run()

	return &knowcore.ExtractResult{
		Meta:          meta,
		Blocks:        x.blocks,
		ParserVersion: knowcore.ParserVersion,
	}, nil
}

// contentRoot returns the node matched by the root selector, falling back to
// the body and then to the document itself.
func contentRoot(doc *goquery.Document, rootSelector string) *html.Node {
	if css := knowcore.TrimSelector(rootSelector); css != "" {
		if n := EvaluateOne(doc.Selection, css); n != nil {
			return n
		}
	}
	if n := EvaluateOne(doc.Selection, "body"); n != nil {
		return n
	}
	return doc.Nodes[0]
}

type rule struct {
	knowcore.BlockRule
	matches map[*html.Node]struct{}
}

// extraction is the state of one Extract call. The consumed set marks nodes
// already covered by an emitted block; the tree itself is never annotated.
type extraction struct {
	root     *html.Node
	rules    []rule
	base     *url.URL
	consumed map[*html.Node]struct{}
	blocks   []knowcore.Block
}

func newExtraction(root *html.Node, rules []knowcore.BlockRule, base *url.URL) *extraction {
	sel := goquery.NewDocumentFromNode(root).Selection
	x := &extraction{
		root:     root,
		base:     base,
		consumed: make(map[*html.Node]struct{}),
		blocks:   []knowcore.Block{},
	}
	for _, r := range rules {
		x.rules = append(x.rules, rule{BlockRule: r, matches: MatchSet(sel, knowcore.TrimSelector(r.Selector))})
	}
	return x
}

func (x *extraction) run() {
	if len(x.rules) == 0 {
		return
	}
	for c := x.root.FirstChild; c != nil; c = c.NextSibling {
		x.walk(c)
	}
}

func (x *extraction) walk(n *html.Node) {
	if n.Type == html.ElementNode {
		if _, done := x.consumed[n]; !done {
			if r := x.classify(n); r != nil {
				x.consumed[n] = struct{}{}
				x.emit(n, r)
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		x.walk(c)
	}
}

// classify returns the first rule matching n, or nil.
func (x *extraction) classify(n *html.Node) *rule {
	for i := range x.rules {
		if _, ok := x.rules[i].matches[n]; ok {
			return &x.rules[i]
		}
	}
	return nil
}

func (x *extraction) emit(n *html.Node, r *rule) {
	build, ok := builders[r.Type]
	if !ok {
		return
	}
	b, ok := build(x, n, r.BlockRule)
	if !ok {
		return
	}
	b.Type = r.Type
	b.SectionID = attr(n, r.Attr("id", "data-id"))
	b.Annotations.Attrs = mappedAttrs(n, r.BlockRule)
	x.blocks = append(x.blocks, b)

	if opaque(n, r.Type) {
		x.consumeDescendants(n)
	}
}

func (x *extraction) consumeDescendants(n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		x.consumed[c] = struct{}{}
		x.consumeDescendants(c)
	}
}

// opaque reports whether an emitted block already covers the content of
// its descendants.
func opaque(n *html.Node, t knowcore.BlockType) bool {
	switch t {
	case knowcore.BlockList, knowcore.BlockTable:
		return true
	case knowcore.BlockParagraph:
		return n.DataAtom == atom.Blockquote
	case knowcore.BlockFigure:
		return n.DataAtom == atom.Figure
	}
	return false
}

type builder func(x *extraction, n *html.Node, r knowcore.BlockRule) (knowcore.Block, bool)

// builders dispatches block construction by kind. A builder returning false
// skips the node.
var builders = map[knowcore.BlockType]builder{
	knowcore.BlockHeading:   buildHeading,
	knowcore.BlockParagraph: buildText,
	knowcore.BlockGeneric:   buildText,
	knowcore.BlockCode:      buildCode,
	knowcore.BlockFigure:    buildFigure,
	knowcore.BlockList:      buildList,
	knowcore.BlockTable:     buildTable,
}

var headingLevels = map[atom.Atom]int{
	atom.H1: 1, atom.H2: 2, atom.H3: 3, atom.H4: 4, atom.H5: 5, atom.H6: 6,
}

func buildHeading(_ *extraction, n *html.Node, _ knowcore.BlockRule) (knowcore.Block, bool) {
	level, ok := headingLevels[n.DataAtom]
	if !ok {
		level = 1
	}
	text := flatText(n)
	return knowcore.Block{Level: level, Content: text}, text != ""
}

func buildText(x *extraction, n *html.Node, _ knowcore.BlockRule) (knowcore.Block, bool) {
	text, links := renderInline(n, x.base, nil)
	return knowcore.Block{Content: text, Annotations: knowcore.Annotations{Links: links}}, text != ""
}

func buildCode(_ *extraction, n *html.Node, r knowcore.BlockRule) (knowcore.Block, bool) {
	text := strings.TrimRight(strings.TrimLeft(rawText(n), "\r\n"), " \t\r\n")
	if text == "" {
		return knowcore.Block{}, false
	}
	return knowcore.Block{
		Content:     text,
		Annotations: knowcore.Annotations{Language: codeLanguage(n, r)},
	}, true
}

// codeLanguage reads the language from the mapped attribute (default lang),
// then from a language-X or lang-X class on the node or a nested code
// element.
func codeLanguage(n *html.Node, r knowcore.BlockRule) string {
	if lang := attr(n, r.Attr("language", "lang")); lang != "" {
		return lang
	}
	if lang := classLanguage(n); lang != "" {
		return lang
	}
	if code := firstChild(n, atom.Code); code != nil {
		return classLanguage(code)
	}
	return ""
}

func classLanguage(n *html.Node) string {
	for _, class := range strings.Fields(attr(n, "class")) {
		for _, prefix := range []string{"language-", "lang-"} {
			if lang, ok := strings.CutPrefix(class, prefix); ok && lang != "" {
				return lang
			}
		}
	}
	return ""
}

// buildFigure emits one asset per image with a source. On a figure element
// the images are looked up inside it and a figcaption supplies the caption.
func buildFigure(_ *extraction, n *html.Node, r knowcore.BlockRule) (knowcore.Block, bool) {
	srcAttr := r.Attr("src", "src")
	captionAttr := r.Attr("caption", "alt")

	images := []*html.Node{n}
	caption := ""
	if n.DataAtom == atom.Figure {
		images = descendantsOf(n, atom.Img)
		if fc := firstChild(n, atom.Figcaption); fc != nil {
			caption = flatText(fc)
		}
	}

	var assets []knowcore.AssetRef
	for _, img := range images {
		src := attr(img, srcAttr)
		if src == "" {
			src = attr(img, "data-src")
		}
		if src == "" {
			continue
		}
		c := caption
		if c == "" {
			c = attr(img, captionAttr)
		}
		assets = append(assets, knowcore.AssetRef{OriginalSrc: src, Caption: c})
	}
	return knowcore.Block{Assets: assets}, len(assets) > 0
}

func buildList(x *extraction, n *html.Node, _ knowcore.BlockRule) (knowcore.Block, bool) {
	list := n
	if !isList(n) {
		if list = firstList(n); list == nil {
			return knowcore.Block{}, false
		}
	}
	items, links := listItems(list, x.base)
	return knowcore.Block{Items: items, Annotations: knowcore.Annotations{Links: links}}, len(items) > 0
}

func buildTable(x *extraction, n *html.Node, _ knowcore.BlockRule) (knowcore.Block, bool) {
	table := n
	if n.DataAtom != atom.Table {
		if table = firstChild(n, atom.Table); table == nil {
			return knowcore.Block{}, false
		}
	}
	header, rows, links := tableRows(table, x.base)
	return knowcore.Block{
		Header:      header,
		Rows:        rows,
		Annotations: knowcore.Annotations{Links: links},
	}, len(header) > 0 || len(rows) > 0
}

// reservedAttrs are attribute mappings consumed by the block builders.
var reservedAttrs = map[string]bool{"src": true, "caption": true, "id": true, "language": true}

// mappedAttrs copies the values of any other mapped attributes present on n.
func mappedAttrs(n *html.Node, r knowcore.BlockRule) map[string]string {
	var out map[string]string
	for field, source := range r.Attrs {
		if reservedAttrs[field] {
			continue
		}
		if v := attr(n, source); v != "" {
			if out == nil {
				out = make(map[string]string)
			}
			out[field] = v
		}
	}
	return out
}

// descendantsOf returns the descendant elements of n with the given atom, in
// document order.
func descendantsOf(n *html.Node, a atom.Atom) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == a {
			out = append(out, c)
		}
		out = append(out, descendantsOf(c, a)...)
	}
	return out
}

func firstList(n *html.Node) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if isList(c) {
			return c
		}
		if found := firstList(c); found != nil {
			return found
		}
	}
	return nil
}
